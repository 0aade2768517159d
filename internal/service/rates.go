package service

import (
	"context"
	"strconv"
	"time"

	"github.com/guttosm/freightrates/internal/apperrors"
	"github.com/guttosm/freightrates/internal/domain/models"
	"github.com/guttosm/freightrates/internal/metrics"
	"github.com/guttosm/freightrates/internal/storage"
	"golang.org/x/sync/errgroup"
)

// RatesQuery selects the daily averages for a route over an inclusive range.
// Origin and Destination are port codes or region slugs.
type RatesQuery struct {
	DateFrom              time.Time
	DateTo                time.Time
	Origin                string
	Destination           string
	SuppressLowConfidence bool
}

// RatesService defines the read path for daily average prices.
type RatesService interface {
	GetRates(ctx context.Context, q RatesQuery) ([]models.DailyAverage, error)
}

type ratesService struct {
	resolver *LocationResolver
	prices   storage.PriceStore
}

func NewRatesService(resolver *LocationResolver, prices storage.PriceStore) RatesService {
	return &ratesService{resolver: resolver, prices: prices}
}

func (s *ratesService) GetRates(ctx context.Context, q RatesQuery) (out []models.DailyAverage, err error) {
	suppress := strconv.FormatBool(q.SuppressLowConfidence)
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		metrics.RatesQueriesTotal.WithLabelValues(suppress, outcome).Inc()
	}()

	if err := ValidateRange(q.DateFrom, q.DateTo); err != nil {
		return nil, err
	}

	var origins, destinations []string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		codes, err := s.resolver.Resolve(gctx, q.Origin)
		origins = codes
		return err
	})
	g.Go(func() error {
		codes, err := s.resolver.Resolve(gctx, q.Destination)
		destinations = codes
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}

	observations, err := s.prices.Query(ctx, storage.PriceFilter{
		DateFrom:     q.DateFrom,
		DateTo:       q.DateTo,
		Origins:      origins,
		Destinations: destinations,
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}
	return AggregateDaily(observations, q.SuppressLowConfidence), nil
}
