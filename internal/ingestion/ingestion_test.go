package ingestion

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/guttosm/freightrates/internal/domain/models"
	"github.com/guttosm/freightrates/internal/storage"
)

const (
	regionsCSV = "slug,name,parent_slug\n" +
		"china_main,China Main,\n" +
		"china_east_main,China East Main,china_main\n" +
		"north_europe_main,North Europe Main,\n"
	portsCSV = "code,name,parent_slug\n" +
		"CNSGH,Shanghai,china_east_main\n" +
		"CNYTN,Yantian,china_main\n" +
		"NLRTM,Rotterdam,north_europe_main\n"
	pricesCSV = "orig_code,dest_code,day,price\n" +
		"CNSGH,NLRTM,2016-01-01,1000\n" +
		"CNYTN,NLRTM,2016-01-01,2000\n" +
		"CNSGH,NLRTM,2016-01-01,3000\n"
)

// fakeLocations records upserts and the order they happened in.
type fakeLocations struct {
	mu      sync.Mutex
	calls   []string
	regions []models.Region
	ports   []models.Port
	err     error
}

func (f *fakeLocations) PortCodesUnder(context.Context, string) ([]string, error) { return nil, nil }

func (f *fakeLocations) UpsertRegions(_ context.Context, r []models.Region) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "regions")
	f.regions = r
	return f.err
}

func (f *fakeLocations) UpsertPorts(_ context.Context, p []models.Port) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "ports")
	f.ports = p
	return nil
}

type fakePrices struct {
	mu      sync.Mutex
	batches [][]models.PriceObservation
	modes   []storage.WriteMode
	err     error
}

func (f *fakePrices) Query(context.Context, storage.PriceFilter) ([]models.PriceObservation, error) {
	return nil, nil
}

func (f *fakePrices) Write(_ context.Context, obs []models.PriceObservation, mode storage.WriteMode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, obs)
	f.modes = append(f.modes, mode)
	return nil
}

func TestLoadDirectory_MissingRequiredFiles(t *testing.T) {
	dir := t.TempDir()
	writeTempFile(t, dir, PricesFile, pricesCSV)

	_, err := LoadDirectory(context.Background(), dir, &fakeLocations{}, &fakePrices{}, 1)
	if err == nil {
		t.Fatalf("expected error")
	}
	for _, name := range []string{RegionsFile, PortsFile} {
		if !strings.Contains(err.Error(), name) {
			t.Fatalf("error %q should name %s", err, name)
		}
	}
}

func TestLoadDirectory_PricesOptional(t *testing.T) {
	dir := t.TempDir()
	writeTempFile(t, dir, RegionsFile, regionsCSV)
	writeTempFile(t, dir, PortsFile, portsCSV)

	locs, prices := &fakeLocations{}, &fakePrices{}
	sum, err := LoadDirectory(context.Background(), dir, locs, prices, 0)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if sum != (Summary{Regions: 3, Ports: 3}) {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if !reflect.DeepEqual(locs.calls, []string{"regions", "ports"}) {
		t.Fatalf("regions must be written before ports, got %v", locs.calls)
	}
	if len(prices.batches) != 0 {
		t.Fatalf("no price writes expected, got %d", len(prices.batches))
	}
}

func TestLoadDirectory_ParseErrorWritesNothing(t *testing.T) {
	dir := t.TempDir()
	writeTempFile(t, dir, RegionsFile, regionsCSV)
	writeTempFile(t, dir, PortsFile, portsCSV)
	writeTempFile(t, dir, PricesFile, "orig_code,dest_code,day,price\nCNSGH,NLRTM,2016-01-01,abc\n")

	locs := &fakeLocations{}
	_, err := LoadDirectory(context.Background(), dir, locs, &fakePrices{}, 1)
	if err == nil || !strings.Contains(err.Error(), PricesFile) {
		t.Fatalf("expected prices.csv error, got %v", err)
	}
	if len(locs.calls) != 0 {
		t.Fatalf("no writes expected after a parse failure, got %v", locs.calls)
	}
}

func TestLoadDirectory_WriteErrors(t *testing.T) {
	dir := t.TempDir()
	writeTempFile(t, dir, RegionsFile, regionsCSV)
	writeTempFile(t, dir, PortsFile, portsCSV)
	writeTempFile(t, dir, PricesFile, pricesCSV)

	cases := []struct {
		name   string
		locs   *fakeLocations
		prices *fakePrices
	}{
		{name: "regions", locs: &fakeLocations{err: errors.New("fk violation")}, prices: &fakePrices{}},
		{name: "prices", locs: &fakeLocations{}, prices: &fakePrices{err: errors.New("disk full")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := LoadDirectory(context.Background(), dir, tc.locs, tc.prices, 2); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadDirectory_SQLiteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	writeTempFile(t, dir, RegionsFile, regionsCSV)
	writeTempFile(t, dir, PortsFile, portsCSV)
	writeTempFile(t, dir, PricesFile, pricesCSV)

	store, err := storage.NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	// Seeding twice must not duplicate prices.
	for i := 0; i < 2; i++ {
		sum, err := LoadDirectory(ctx, dir, store, store, 2)
		if err != nil {
			t.Fatalf("seed run %d: %v", i+1, err)
		}
		if sum.Prices != 3 {
			t.Fatalf("seed run %d wrote %d prices", i+1, sum.Prices)
		}
	}

	codes, err := store.PortCodesUnder(ctx, "china_main")
	if err != nil || !reflect.DeepEqual(codes, []string{"CNSGH", "CNYTN"}) {
		t.Fatalf("codes=%v err=%v", codes, err)
	}

	day := time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)
	out, err := store.Query(ctx, storage.PriceFilter{
		DateFrom: day, DateTo: day,
		Origins: codes, Destinations: []string{"NLRTM"},
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 prices after two seeds, got %d", len(out))
	}
}

func TestWritePrices_BatchesUpsertPerRoute(t *testing.T) {
	var obs []models.PriceObservation
	for i := 0; i < 5; i++ {
		obs = append(obs,
			models.PriceObservation{OriginCode: "A", DestinationCode: "B", Day: time.Date(2016, 1, i+1, 0, 0, 0, 0, time.UTC), Price: 1},
			models.PriceObservation{OriginCode: fmt.Sprintf("O%d", i), DestinationCode: "B", Day: time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC), Price: 2},
		)
	}

	prices := &fakePrices{}
	n, err := writePrices(context.Background(), prices, obs, 3, 4)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if n != len(obs) {
		t.Fatalf("written=%d want %d", n, len(obs))
	}
	for _, m := range prices.modes {
		if m != storage.WriteUpsert {
			t.Fatalf("seed must upsert, got %s", m)
		}
	}

	// Route A-B has five rows and must sit entirely inside one batch.
	holders := 0
	for _, b := range prices.batches {
		for _, o := range b {
			if o.OriginCode == "A" {
				holders++
				break
			}
		}
	}
	if holders != 1 {
		t.Fatalf("route A-B split across %d batches", holders)
	}
}

func TestBatchByRoute(t *testing.T) {
	mk := func(orig string, n int) []models.PriceObservation {
		out := make([]models.PriceObservation, n)
		for i := range out {
			out[i] = models.PriceObservation{OriginCode: orig, DestinationCode: "X"}
		}
		return out
	}
	var obs []models.PriceObservation
	obs = append(obs, mk("A", 3)...)
	obs = append(obs, mk("B", 1)...)
	obs = append(obs, mk("C", 2)...)

	batches := batchByRoute(obs, 4)
	var sizes []int
	for _, b := range batches {
		sizes = append(sizes, len(b))
	}
	if !reflect.DeepEqual(sizes, []int{4, 2}) {
		t.Fatalf("batch sizes = %v", sizes)
	}
	if batchByRoute(nil, 4) != nil {
		t.Fatalf("expected no batches for no input")
	}
}

func TestWorkers(t *testing.T) {
	def := runtime.NumCPU()
	if def > maxParallel {
		def = maxParallel
	}
	cases := map[int]int{0: def, -3: def, 1: 1, 5: 5, 99: maxParallel}
	for in, want := range cases {
		if got := workers(in); got != want {
			t.Fatalf("workers(%d) = %d, want %d", in, got, want)
		}
	}
}
