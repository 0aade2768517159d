package service

import (
	"context"
	"sync"

	"github.com/guttosm/freightrates/internal/domain/models"
	"github.com/guttosm/freightrates/internal/storage"
)

type stubLocations struct {
	children map[string][]string
	err      error
}

func (s *stubLocations) PortCodesUnder(_ context.Context, slug string) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return append([]string(nil), s.children[slug]...), nil
}
func (s *stubLocations) UpsertRegions(context.Context, []models.Region) error { return nil }
func (s *stubLocations) UpsertPorts(context.Context, []models.Port) error     { return nil }

type stubPrices struct {
	mu       sync.Mutex
	rows     []models.PriceObservation
	filter   storage.PriceFilter
	queryErr error
	writeErr error
	writes   int
	mode     storage.WriteMode
}

func (s *stubPrices) Query(_ context.Context, f storage.PriceFilter) ([]models.PriceObservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = f
	return s.rows, s.queryErr
}

func (s *stubPrices) Write(_ context.Context, batch []models.PriceObservation, mode storage.WriteMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.writes++
	s.mode = mode
	s.rows = append(s.rows, batch...)
	return nil
}

type stubConverter struct {
	rates map[string]int64
	err   error
	calls int
}

func (c *stubConverter) ConvertAll(_ context.Context, amounts []int64, code string) ([]int64, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	out := make([]int64, len(amounts))
	for i, a := range amounts {
		out[i] = a / c.rates[code]
	}
	return out, nil
}
