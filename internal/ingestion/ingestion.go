package ingestion

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/guttosm/freightrates/internal/domain/models"
	"github.com/guttosm/freightrates/internal/logger"
	"github.com/guttosm/freightrates/internal/storage"
)

const (
	RegionsFile = "regions.csv"
	PortsFile   = "ports.csv"
	PricesFile  = "prices.csv"

	defaultBatchSize = 5000
	maxParallel      = 8
)

// Summary reports how many rows a seed run wrote.
type Summary struct {
	Regions int
	Ports   int
	Prices  int
}

// LoadDirectory seeds the location hierarchy and, when present, historical
// prices from the CSV files in dir.
//
// Parameters:
//   - dir:       directory holding regions.csv, ports.csv and optionally prices.csv.
//   - locations: destination for regions and ports.
//   - prices:    destination for price observations.
//   - parallel:  concurrent price batch writers (0 picks min(8, NumCPU)).
//
// Behavior:
//   - regions.csv and ports.csv are required; their absence fails the run before any write.
//   - The three files are parsed concurrently; the first parse error cancels the rest.
//   - Regions are written before ports, and ports before prices.
//   - Prices are upserted in batches that never split a route, so re-running a
//     seed replaces the (route, day) keys it covers instead of duplicating them.
func LoadDirectory(ctx context.Context, dir string, locations storage.LocationStore, prices storage.PriceStore, parallel int) (Summary, error) {
	var sum Summary

	var missing []string
	for _, name := range []string{RegionsFile, PortsFile} {
		full := filepath.Join(dir, name)
		if _, err := os.Stat(full); err != nil {
			if os.IsNotExist(err) {
				missing = append(missing, name)
				continue
			}
			return sum, fmt.Errorf("stat failed for %s: %w", full, err)
		}
	}
	if len(missing) > 0 {
		return sum, fmt.Errorf("missing required files: %s", strings.Join(missing, ", "))
	}

	pricesPath := filepath.Join(dir, PricesFile)
	hasPrices := true
	if _, err := os.Stat(pricesPath); os.IsNotExist(err) {
		hasPrices = false
	} else if err != nil {
		return sum, fmt.Errorf("stat failed for %s: %w", pricesPath, err)
	}

	log := logger.Component("seed")
	log.Info().Str("dir", dir).Bool("prices", hasPrices).Msg("seed start")
	start := time.Now()

	var (
		regions      []models.Region
		ports        []models.Port
		observations []models.PriceObservation
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		regions, err = parseRegions(gctx, filepath.Join(dir, RegionsFile))
		return wrapFile(RegionsFile, err)
	})
	g.Go(func() (err error) {
		ports, err = parsePorts(gctx, filepath.Join(dir, PortsFile))
		return wrapFile(PortsFile, err)
	})
	if hasPrices {
		g.Go(func() (err error) {
			observations, err = parsePrices(gctx, pricesPath)
			return wrapFile(PricesFile, err)
		})
	}
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("seed parse failed")
		return sum, err
	}

	if err := locations.UpsertRegions(ctx, regions); err != nil {
		return sum, fmt.Errorf("write regions: %w", err)
	}
	sum.Regions = len(regions)

	if err := locations.UpsertPorts(ctx, ports); err != nil {
		return sum, fmt.Errorf("write ports: %w", err)
	}
	sum.Ports = len(ports)

	n, err := writePrices(ctx, prices, observations, workers(parallel), defaultBatchSize)
	sum.Prices = n
	if err != nil {
		log.Error().Err(err).Int("prices_written", n).Msg("seed prices failed")
		return sum, err
	}

	log.Info().
		Int("regions", sum.Regions).
		Int("ports", sum.Ports).
		Int("prices", sum.Prices).
		Dur("elapsed", time.Since(start)).
		Msg("seed done")
	return sum, nil
}

// workers clamps the requested parallelism to 1..maxParallel, defaulting to
// min(maxParallel, NumCPU).
func workers(parallel int) int {
	if parallel > 0 {
		if parallel > maxParallel {
			return maxParallel
		}
		return parallel
	}
	if c := runtime.NumCPU(); c < maxParallel {
		return c
	}
	return maxParallel
}

// writePrices upserts observations batch by batch with up to n concurrent
// writers and returns how many rows landed in committed batches.
func writePrices(ctx context.Context, store storage.PriceStore, observations []models.PriceObservation, n, size int) (int, error) {
	batches := batchByRoute(observations, size)
	if len(batches) == 0 {
		return 0, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(n)

	written := make([]int, len(batches))
	for i, b := range batches {
		g.Go(func() error {
			if err := store.Write(gctx, b, storage.WriteUpsert); err != nil {
				return fmt.Errorf("write prices batch %d/%d: %w", i+1, len(batches), err)
			}
			written[i] = len(b)
			return nil
		})
	}
	err := g.Wait()

	total := 0
	for _, w := range written {
		total += w
	}
	return total, err
}

// batchByRoute groups observations into batches of roughly size rows. All
// rows of one route land in the same batch, so concurrent upserts never
// replace each other's keys.
func batchByRoute(observations []models.PriceObservation, size int) [][]models.PriceObservation {
	if size <= 0 {
		size = defaultBatchSize
	}

	type route struct{ origin, destination string }
	byRoute := make(map[route][]models.PriceObservation)
	var order []route
	for _, o := range observations {
		k := route{o.OriginCode, o.DestinationCode}
		if _, ok := byRoute[k]; !ok {
			order = append(order, k)
		}
		byRoute[k] = append(byRoute[k], o)
	}

	var (
		out [][]models.PriceObservation
		cur []models.PriceObservation
	)
	for _, k := range order {
		cur = append(cur, byRoute[k]...)
		if len(cur) >= size {
			out = append(out, cur)
			cur = nil
		}
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

func wrapFile(name string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("file %s: %w", name, err)
}
