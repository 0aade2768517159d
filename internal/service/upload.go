package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/guttosm/freightrates/internal/apperrors"
	"github.com/guttosm/freightrates/internal/domain/models"
	"github.com/guttosm/freightrates/internal/logger"
	"github.com/guttosm/freightrates/internal/metrics"
	"github.com/guttosm/freightrates/internal/storage"
)

// Upload outcome messages returned to clients.
const (
	MsgIngested     = "Data successfully ingested"
	MsgIngestFailed = "Failed to ingest data"
)

// MaxPrice is the largest price the price column holds.
const MaxPrice int64 = math.MaxInt32

// Converter converts amounts quoted in a foreign currency into reference
// currency units, all against the same rate lookup.
type Converter interface {
	ConvertAll(ctx context.Context, amounts []int64, currencyCode string) ([]int64, error)
}

// UploadRequest is one validated-on-ingest price upload: one price per day of
// [DateFrom, DateTo]. CurrencyCode is empty when prices are already in the
// reference currency.
type UploadRequest struct {
	OriginCode      string
	DestinationCode string
	DateFrom        time.Time
	DateTo          time.Time
	Prices          []int64
	CurrencyCode    string
}

// UploadResult reports what was written.
type UploadResult struct {
	Observations []models.PriceObservation
}

// IngestionStage names where an upload failed after validation passed.
type IngestionStage string

const (
	StageConversion IngestionStage = "conversion"
	StageStorage    IngestionStage = "storage"
)

// IngestionError is returned when a valid upload could not be stored. No rows
// are written when it is returned.
type IngestionError struct {
	Stage IngestionStage
	Err   error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("ingest %s: %v", e.Stage, e.Err)
}

func (e *IngestionError) Unwrap() error { return e.Err }

// UploadReconciler validates uploads, converts currency and writes the batch.
type UploadReconciler struct {
	prices    storage.PriceStore
	converter Converter
	mode      storage.WriteMode
	reference string
}

// NewUploadReconciler wires the write path. converter may be nil, in which
// case uploads in a foreign currency fail at the conversion stage.
func NewUploadReconciler(prices storage.PriceStore, converter Converter, mode storage.WriteMode, referenceCurrency string) *UploadReconciler {
	if mode == "" {
		mode = storage.WriteUpsert
	}
	return &UploadReconciler{
		prices:    prices,
		converter: converter,
		mode:      mode,
		reference: strings.ToUpper(referenceCurrency),
	}
}

// Ingest validates req and stores one observation per day. Validation errors
// are *apperrors.AppError; failures after validation are *IngestionError.
func (u *UploadReconciler) Ingest(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	log := logger.Component("upload")

	if err := ValidateRange(req.DateFrom, req.DateTo); err != nil {
		return nil, err
	}
	if int64(len(req.Prices)) != DayCount(req.DateFrom, req.DateTo) {
		return nil, apperrors.Validation(msgLengthMismatch)
	}
	for _, p := range req.Prices {
		if p < 0 {
			return nil, apperrors.Validation("price must be a non-negative integer")
		}
		if p > MaxPrice {
			return nil, apperrors.Validation(fmt.Sprintf("price must be at most %d", MaxPrice))
		}
	}
	days := ExpandDays(req.DateFrom, req.DateTo)

	prices, err := u.convertAll(ctx, req.Prices, req.CurrencyCode)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("conversion_failed").Inc()
		log.Error().Err(err).
			Str("origin", req.OriginCode).
			Str("destination", req.DestinationCode).
			Str("currency", req.CurrencyCode).
			Msg("currency conversion failed")
		return nil, &IngestionError{Stage: StageConversion, Err: err}
	}

	for _, p := range prices {
		if p > MaxPrice {
			err = fmt.Errorf("converted price %d exceeds %d", p, MaxPrice)
			metrics.UploadsTotal.WithLabelValues("conversion_failed").Inc()
			log.Error().Err(err).Str("currency", req.CurrencyCode).Msg("converted price out of range")
			return nil, &IngestionError{Stage: StageConversion, Err: err}
		}
	}

	observations := make([]models.PriceObservation, len(days))
	for i, d := range days {
		observations[i] = models.PriceObservation{
			OriginCode:      req.OriginCode,
			DestinationCode: req.DestinationCode,
			Day:             d,
			Price:           prices[i],
		}
	}

	if err := u.prices.Write(ctx, observations, u.mode); err != nil {
		metrics.UploadsTotal.WithLabelValues("storage_failed").Inc()
		log.Error().Err(err).
			Str("origin", req.OriginCode).
			Str("destination", req.DestinationCode).
			Int("rows", len(observations)).
			Msg("price write failed")
		return nil, &IngestionError{Stage: StageStorage, Err: err}
	}

	metrics.UploadsTotal.WithLabelValues("ok").Inc()
	metrics.PricesIngested.Add(float64(len(observations)))
	log.Info().
		Str("origin", req.OriginCode).
		Str("destination", req.DestinationCode).
		Str("mode", string(u.mode)).
		Int("rows", len(observations)).
		Msg("prices ingested")
	return &UploadResult{Observations: observations}, nil
}

// convertAll returns prices in reference units. Every conversion must succeed
// before anything is written.
func (u *UploadReconciler) convertAll(ctx context.Context, prices []int64, code string) ([]int64, error) {
	out := make([]int64, len(prices))
	if code == "" || strings.EqualFold(code, u.reference) {
		copy(out, prices)
		return out, nil
	}
	if u.converter == nil {
		return nil, errors.New("no currency converter configured")
	}
	return u.converter.ConvertAll(ctx, prices, code)
}
