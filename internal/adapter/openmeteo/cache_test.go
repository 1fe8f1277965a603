package openmeteo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weather-audit/internal/adapter/openmeteo"
	"weather-audit/internal/domain"
)

type countingGeocoder struct {
	calls  int
	coords domain.Coordinates
	err    error
}

func (c *countingGeocoder) Resolve(_ context.Context, _, _ string) (domain.Coordinates, error) {
	c.calls++
	return c.coords, c.err
}

func TestCachedGeocoder_ServesRepeatsFromCache(t *testing.T) {
	inner := &countingGeocoder{coords: domain.Coordinates{Latitude: 40.4, Longitude: -3.7}}
	cached := openmeteo.NewCachedGeocoder(inner, 10)
	ctx := context.Background()

	for range 3 {
		coords, err := cached.Resolve(ctx, "Madrid", "ES")
		require.NoError(t, err)
		assert.InDelta(t, 40.4, coords.Latitude, 1e-9)
	}
	assert.Equal(t, 1, inner.calls)

	// Same city under a different country is a different key.
	_, err := cached.Resolve(ctx, "Madrid", "US")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedGeocoder_DoesNotCacheFailures(t *testing.T) {
	inner := &countingGeocoder{err: errors.New("upstream down")}
	cached := openmeteo.NewCachedGeocoder(inner, 10)
	ctx := context.Background()

	_, err := cached.Resolve(ctx, "Madrid", "ES")
	require.Error(t, err)
	_, err = cached.Resolve(ctx, "Madrid", "ES")
	require.Error(t, err)
	assert.Equal(t, 2, inner.calls, "failures are retried, not cached")

	// Once the upstream recovers, the success is cached.
	inner.err = nil
	_, err = cached.Resolve(ctx, "Madrid", "ES")
	require.NoError(t, err)
	_, err = cached.Resolve(ctx, "Madrid", "ES")
	require.NoError(t, err)
	assert.Equal(t, 3, inner.calls)
}

func TestCachedGeocoder_EvictsLeastRecentlyUsed(t *testing.T) {
	inner := &countingGeocoder{}
	cached := openmeteo.NewCachedGeocoder(inner, 2)
	ctx := context.Background()

	_, _ = cached.Resolve(ctx, "Madrid", "ES")
	_, _ = cached.Resolve(ctx, "Berlin", "DE")
	_, _ = cached.Resolve(ctx, "Madrid", "ES") // touch Madrid so Berlin is LRU
	_, _ = cached.Resolve(ctx, "Oslo", "NO")   // evicts Berlin
	require.Equal(t, 3, inner.calls)

	_, _ = cached.Resolve(ctx, "Madrid", "ES")
	assert.Equal(t, 3, inner.calls, "Madrid survived the eviction")

	_, _ = cached.Resolve(ctx, "Berlin", "DE")
	assert.Equal(t, 4, inner.calls, "Berlin was evicted")
}
