package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"weather-audit/internal/domain"
	"weather-audit/internal/store"
)

// AuditStore is a thread-safe in-memory implementation of store.AuditStore.
// Audits are append-only: Create rejects duplicate audit IDs and nothing
// mutates a stored record.
type AuditStore struct {
	mu     sync.RWMutex
	audits []domain.Audit
	byID   map[string]int // auditID → index into audits
}

// NewAuditStore creates an empty in-memory audit store.
func NewAuditStore() *AuditStore {
	return &AuditStore{byID: make(map[string]int)}
}

func (s *AuditStore) Create(_ context.Context, audit *domain.Audit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[audit.AuditID]; ok {
		return fmt.Errorf("audit %s already exists", audit.AuditID)
	}
	s.byID[audit.AuditID] = len(s.audits)
	s.audits = append(s.audits, *audit)
	return nil
}

func (s *AuditStore) FindByAuditID(_ context.Context, auditID string) (*domain.Audit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.byID[auditID]
	if !ok {
		return nil, store.ErrNotFound
	}
	audit := s.audits[idx]
	return &audit, nil
}

func (s *AuditStore) FindAll(_ context.Context, opts store.ListOptions) ([]domain.Audit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []domain.Audit
	for _, a := range s.audits {
		if !opts.DateFrom.IsZero() && a.DateFrom.Before(opts.DateFrom.Time) {
			continue
		}
		if !opts.DateTo.IsZero() && a.DateFrom.After(opts.DateTo.Time) {
			continue
		}
		matched = append(matched, a)
	}
	return paginate(matched, opts), nil
}

func (s *AuditStore) FindByCity(_ context.Context, city, countryCode string, opts store.ListOptions) ([]domain.Audit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []domain.Audit
	for _, a := range s.audits {
		if a.City != city || a.CountryCode != countryCode {
			continue
		}
		if !opts.DateFrom.IsZero() && a.DateFrom.Before(opts.DateFrom.Time) {
			continue
		}
		if !opts.DateTo.IsZero() && a.DateFrom.After(opts.DateTo.Time) {
			continue
		}
		matched = append(matched, a)
	}
	return paginate(matched, opts), nil
}

// paginate sorts by createdAt (descending unless SortAsc) and applies
// skip/limit with the same defaults as the postgres store.
func paginate(audits []domain.Audit, opts store.ListOptions) []domain.Audit {
	sort.SliceStable(audits, func(i, j int) bool {
		if opts.SortAsc {
			return audits[i].CreatedAt.Before(audits[j].CreatedAt)
		}
		return audits[i].CreatedAt.After(audits[j].CreatedAt)
	})

	skip := opts.Skip
	if skip > len(audits) {
		skip = len(audits)
	}
	audits = audits[skip:]

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit < len(audits) {
		audits = audits[:limit]
	}
	return audits
}
