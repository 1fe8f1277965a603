package observability

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// ErrorRateWindow tracks ingestion outcomes over a sliding time window and
// reports the failure share. It replaces process-wide mutable counters with
// an injected component: the pipeline owns an instance and exports its rate
// through the IngestErrorRate gauge.
type ErrorRateWindow struct {
	mu      sync.Mutex
	window  time.Duration
	clock   clockwork.Clock
	samples []outcomeSample
}

type outcomeSample struct {
	at     time.Time
	failed bool
}

// NewErrorRateWindow creates a tracker covering the given duration.
func NewErrorRateWindow(window time.Duration) *ErrorRateWindow {
	return newErrorRateWindow(window, clockwork.NewRealClock())
}

func newErrorRateWindow(window time.Duration, clock clockwork.Clock) *ErrorRateWindow {
	return &ErrorRateWindow{window: window, clock: clock}
}

// Observe records one completed operation.
func (w *ErrorRateWindow) Observe(failed bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.prune()
	w.samples = append(w.samples, outcomeSample{at: w.clock.Now(), failed: failed})
}

// Rate returns failures divided by total within the window, or 0 when the
// window holds no samples.
func (w *ErrorRateWindow) Rate() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.prune()

	if len(w.samples) == 0 {
		return 0
	}
	failed := 0
	for _, s := range w.samples {
		if s.failed {
			failed++
		}
	}
	return float64(failed) / float64(len(w.samples))
}

// prune drops samples older than the window. Callers hold the mutex.
func (w *ErrorRateWindow) prune() {
	cutoff := w.clock.Now().Add(-w.window)
	drop := 0
	for drop < len(w.samples) && w.samples[drop].at.Before(cutoff) {
		drop++
	}
	if drop > 0 {
		w.samples = append(w.samples[:0], w.samples[drop:]...)
	}
}
