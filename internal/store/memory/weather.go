// Package memory provides in-memory store implementations used by unit tests
// and local development. They mirror the postgres stores' observable
// behavior, including the (city, countryCode, date) uniqueness constraint.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"weather-audit/internal/domain"
	"weather-audit/internal/store"
)

// WeatherStore is a thread-safe in-memory implementation of
// store.WeatherStore.
type WeatherStore struct {
	mu       sync.RWMutex
	readings map[string]domain.Reading // keyed by Reading.Key()
}

// NewWeatherStore creates an empty in-memory weather store.
func NewWeatherStore() *WeatherStore {
	return &WeatherStore{readings: make(map[string]domain.Reading)}
}

func (s *WeatherStore) FindExistingDates(_ context.Context, city, countryCode string, dates []domain.Date) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	existing := make(map[string]struct{})
	for _, d := range dates {
		key := city + "|" + countryCode + "|" + d.String()
		if _, ok := s.readings[key]; ok {
			existing[d.String()] = struct{}{}
		}
	}
	return existing, nil
}

func (s *WeatherStore) InsertMany(_ context.Context, readings []domain.Reading) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inserted := 0
	for _, r := range readings {
		key := r.Key()
		if _, ok := s.readings[key]; ok {
			continue // duplicate, skip without failing the batch
		}
		if r.CreatedAt.IsZero() {
			r.CreatedAt = domain.Now()
		}
		s.readings[key] = r
		inserted++
	}
	return inserted, nil
}

func (s *WeatherStore) FindRange(_ context.Context, city, countryCode string, from, to domain.Date) ([]domain.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.Reading
	for _, r := range s.readings {
		if r.City != city || r.CountryCode != countryCode {
			continue
		}
		if r.Date.Before(from.Time) || r.Date.After(to.Time) {
			continue
		}
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date.Time)
	})
	return result, nil
}

func (s *WeatherStore) FindByCityAndDate(_ context.Context, city, countryCode string, date domain.Date) (domain.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := city + "|" + countryCode + "|" + date.String()
	r, ok := s.readings[key]
	if !ok {
		return domain.Reading{}, store.ErrNotFound
	}
	return r, nil
}

func (s *WeatherStore) FindDistinctCities(_ context.Context) ([]domain.CityCountry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]domain.CityCountry)
	for _, r := range s.readings {
		seen[r.City+"|"+r.CountryCode] = domain.CityCountry{City: r.City, CountryCode: r.CountryCode}
	}

	cities := make([]domain.CityCountry, 0, len(seen))
	for _, c := range seen {
		cities = append(cities, c)
	}
	sort.Slice(cities, func(i, j int) bool {
		if cities[i].City != cities[j].City {
			return strings.Compare(cities[i].City, cities[j].City) < 0
		}
		return cities[i].CountryCode < cities[j].CountryCode
	})
	return cities, nil
}
