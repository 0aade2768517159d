package ingestion

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/guttosm/freightrates/internal/domain/models"
)

const dayLayout = "2006-01-02"

// Header rows are checked strictly: same names, same order, same count.
var (
	regionHeaders = []string{"slug", "name", "parent_slug"}
	portHeaders   = []string{"code", "name", "parent_slug"}
	priceHeaders  = []string{"orig_code", "dest_code", "day", "price"}
)

// readCSV validates the header of path against expected and hands every
// following record to fn together with its 1-based line number.
func readCSV(ctx context.Context, path string, expected []string, fn func(line int, rec []string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	if len(header) != len(expected) {
		return fmt.Errorf("invalid header length: expected %d, got %d", len(expected), len(header))
	}
	for i, h := range header {
		// Spreadsheet exports often prefix the first cell with a BOM.
		h = strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")
		if h != expected[i] {
			return fmt.Errorf("invalid header at col %d: expected %q, got %q", i+1, expected[i], h)
		}
	}

	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read line after %d: %w", line, err)
		}
		line++

		if len(rec) != len(expected) {
			return fmt.Errorf("invalid column count on line %d: expected %d got %d", line, len(expected), len(rec))
		}
		if err := fn(line, rec); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
}

// parseRegions reads a regions file (slug,name,parent_slug).
func parseRegions(ctx context.Context, path string) ([]models.Region, error) {
	var out []models.Region
	err := readCSV(ctx, path, regionHeaders, func(_ int, rec []string) error {
		r := models.Region{
			Slug:       strings.TrimSpace(rec[0]),
			Name:       strings.TrimSpace(rec[1]),
			ParentSlug: strings.TrimSpace(rec[2]),
		}
		if r.Slug == "" {
			return errors.New("slug is required")
		}
		if r.ParentSlug == r.Slug {
			return fmt.Errorf("region %q cannot be its own parent", r.Slug)
		}
		out = append(out, r)
		return nil
	})
	return out, err
}

// parsePorts reads a ports file (code,name,parent_slug).
func parsePorts(ctx context.Context, path string) ([]models.Port, error) {
	var out []models.Port
	err := readCSV(ctx, path, portHeaders, func(_ int, rec []string) error {
		p := models.Port{
			Code:       strings.TrimSpace(rec[0]),
			Name:       strings.TrimSpace(rec[1]),
			ParentSlug: strings.TrimSpace(rec[2]),
		}
		if p.Code == "" {
			return errors.New("code is required")
		}
		out = append(out, p)
		return nil
	})
	return out, err
}

// parsePrices reads a prices file (orig_code,dest_code,day,price). Prices
// are already in the reference currency.
func parsePrices(ctx context.Context, path string) ([]models.PriceObservation, error) {
	var out []models.PriceObservation
	err := readCSV(ctx, path, priceHeaders, func(_ int, rec []string) error {
		o, err := recordToPrice(rec)
		if err != nil {
			return err
		}
		out = append(out, o)
		return nil
	})
	return out, err
}

func recordToPrice(rec []string) (models.PriceObservation, error) {
	var o models.PriceObservation

	o.OriginCode = strings.TrimSpace(rec[0])
	o.DestinationCode = strings.TrimSpace(rec[1])
	if o.OriginCode == "" || o.DestinationCode == "" {
		return o, errors.New("orig_code and dest_code are required")
	}

	d, err := time.Parse(dayLayout, strings.TrimSpace(rec[2]))
	if err != nil {
		return o, fmt.Errorf("invalid day: %v", err)
	}
	o.Day = d

	p, err := strconv.ParseInt(strings.TrimSpace(rec[3]), 10, 64)
	if err != nil {
		return o, fmt.Errorf("invalid price: %v", err)
	}
	if p < 0 {
		return o, fmt.Errorf("invalid price: %d is negative", p)
	}
	o.Price = p

	return o, nil
}
