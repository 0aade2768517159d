package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/guttosm/freightrates/internal/domain/models"
)

// WriteMode selects how a batch of observations reconciles with stored rows.
type WriteMode string

const (
	// WriteUpsert replaces any stored rows sharing (origin, destination, day)
	// with the uploaded price, leaving exactly one row per key.
	WriteUpsert WriteMode = "upsert"
	// WriteInsert appends rows unconditionally, keeping a history of quotes
	// that later averages span.
	WriteInsert WriteMode = "insert"
)

// ParseWriteMode validates a configured write mode.
func ParseWriteMode(s string) (WriteMode, error) {
	switch WriteMode(s) {
	case WriteUpsert, WriteInsert:
		return WriteMode(s), nil
	default:
		return "", fmt.Errorf("unknown write mode %q", s)
	}
}

// PriceFilter selects observations for a rates query. Both date bounds are
// inclusive; a row matches when its origin is in Origins and its destination
// is in Destinations.
type PriceFilter struct {
	DateFrom     time.Time
	DateTo       time.Time
	Origins      []string
	Destinations []string
}

// PriceStore owns persisted price observations.
type PriceStore interface {
	Query(ctx context.Context, filter PriceFilter) ([]models.PriceObservation, error)
	// Write persists the whole batch atomically: either every observation is
	// stored or none is.
	Write(ctx context.Context, observations []models.PriceObservation, mode WriteMode) error
}

// LocationStore exposes the port/region hierarchy.
type LocationStore interface {
	// PortCodesUnder returns the codes of every port whose parent is slug or
	// any region nested beneath slug, sorted. Unknown slugs yield no codes.
	PortCodesUnder(ctx context.Context, slug string) ([]string, error)
	UpsertRegions(ctx context.Context, regions []models.Region) error
	UpsertPorts(ctx context.Context, ports []models.Port) error
}

const dayLayout = "2006-01-02"

// dateOnly normalizes t to midnight UTC of its calendar day.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// routeKey groups observations by route for bulk deletes.
type routeKey struct {
	origin      string
	destination string
}

func groupDaysByRoute(observations []models.PriceObservation) (map[routeKey][]string, []routeKey) {
	days := make(map[routeKey][]string)
	var order []routeKey
	for _, o := range observations {
		k := routeKey{origin: o.OriginCode, destination: o.DestinationCode}
		if _, ok := days[k]; !ok {
			order = append(order, k)
		}
		days[k] = append(days[k], dateOnly(o.Day).Format(dayLayout))
	}
	return days, order
}
