package storage

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/guttosm/freightrates/internal/domain/models"
)

func newMockDB(t *testing.T) (sqlmock.Sqlmock, *priceStore, *locationStore) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return mock, &priceStore{db: db}, &locationStore{db: db}
}

func day(d int) time.Time { return time.Date(2016, 1, d, 0, 0, 0, 0, time.UTC) }

func TestPriceStore_Query_SQLMock(t *testing.T) {
	mock, prices, _ := newMockDB(t)

	selectRegex := `SELECT orig_code, dest_code, day, price\s+FROM prices\s+WHERE day BETWEEN \$1 AND \$2`
	rows := sqlmock.NewRows([]string{"orig_code", "dest_code", "day", "price"}).
		AddRow("CNSGH", "NLRTM", day(1), int64(1000)).
		AddRow("CNNGB", "NLRTM", day(1), int64(2000))
	mock.ExpectQuery(selectRegex).
		WithArgs(day(1), day(3), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(rows)

	out, err := prices.Query(context.Background(), PriceFilter{
		DateFrom:     day(1),
		DateTo:       day(3),
		Origins:      []string{"CNNGB", "CNSGH"},
		Destinations: []string{"NLRTM"},
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(out) != 2 || out[0].OriginCode != "CNSGH" || out[1].Price != 2000 || !out[1].Day.Equal(day(1)) {
		t.Fatalf("unexpected rows: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPriceStore_Query_Error(t *testing.T) {
	mock, prices, _ := newMockDB(t)
	mock.ExpectQuery("SELECT orig_code").WillReturnError(errors.New("boom"))

	if _, err := prices.Query(context.Background(), PriceFilter{DateFrom: day(1), DateTo: day(1)}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestPriceStore_Write_SQLMock(t *testing.T) {
	batch := []models.PriceObservation{
		{OriginCode: "CNSGH", DestinationCode: "NLRTM", Day: day(1), Price: 217},
		{OriginCode: "CNSGH", DestinationCode: "NLRTM", Day: day(2), Price: 315},
	}

	cases := []struct {
		name   string
		mode   WriteMode
		delete bool
	}{
		{name: "upsert replaces keys first", mode: WriteUpsert, delete: true},
		{name: "insert appends", mode: WriteInsert, delete: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mock, prices, _ := newMockDB(t)

			mock.ExpectBegin()
			if tc.delete {
				mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock(hashtext($1::text || '|' || $2::text))")).
					WithArgs("CNSGH", "NLRTM").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(regexp.QuoteMeta("DELETE FROM prices WHERE orig_code = $1 AND dest_code = $2")).
					WithArgs("CNSGH", "NLRTM", sqlmock.AnyArg()).
					WillReturnResult(sqlmock.NewResult(0, 1))
			}
			prep := mock.ExpectPrepare("COPY")
			prep.ExpectExec().WithArgs("CNSGH", "NLRTM", day(1), int64(217)).WillReturnResult(sqlmock.NewResult(1, 1))
			prep.ExpectExec().WithArgs("CNSGH", "NLRTM", day(2), int64(315)).WillReturnResult(sqlmock.NewResult(1, 1))
			prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectCommit()

			if err := prices.Write(context.Background(), batch, tc.mode); err != nil {
				t.Fatalf("write: %v", err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("unmet expectations: %v", err)
			}
		})
	}
}

func TestPriceStore_Write_RollsBackOnFailure(t *testing.T) {
	mock, prices, _ := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("SELECT pg_advisory_xact_lock").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM prices").WillReturnResult(sqlmock.NewResult(0, 0))
	prep := mock.ExpectPrepare("COPY")
	prep.ExpectExec().WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := prices.Write(context.Background(), []models.PriceObservation{
		{OriginCode: "CNSGH", DestinationCode: "NLRTM", Day: day(1), Price: 1},
	}, WriteUpsert)
	if err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPriceStore_Write_LocksRoutesInOrder(t *testing.T) {
	mock, prices, _ := newMockDB(t)

	mock.ExpectBegin()
	for _, route := range [][2]string{{"CNNGB", "NLRTM"}, {"CNSGH", "GBFXT"}, {"CNSGH", "NLRTM"}} {
		mock.ExpectExec("SELECT pg_advisory_xact_lock").
			WithArgs(route[0], route[1]).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("DELETE FROM prices").
			WithArgs(route[0], route[1], sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}
	prep := mock.ExpectPrepare("COPY")
	for i := 0; i < 4; i++ {
		prep.ExpectExec().WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectCommit()

	err := prices.Write(context.Background(), []models.PriceObservation{
		{OriginCode: "CNSGH", DestinationCode: "NLRTM", Day: day(1), Price: 1},
		{OriginCode: "CNNGB", DestinationCode: "NLRTM", Day: day(1), Price: 2},
		{OriginCode: "CNSGH", DestinationCode: "GBFXT", Day: day(1), Price: 3},
	}, WriteUpsert)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPriceStore_Write_LockFailureRollsBack(t *testing.T) {
	mock, prices, _ := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("SELECT pg_advisory_xact_lock").WillReturnError(errors.New("canceling statement due to lock timeout"))
	mock.ExpectRollback()

	err := prices.Write(context.Background(), []models.PriceObservation{
		{OriginCode: "CNSGH", DestinationCode: "NLRTM", Day: day(1), Price: 1},
	}, WriteUpsert)
	if err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPriceStore_Write_EmptyBatchIsNoop(t *testing.T) {
	mock, prices, _ := newMockDB(t)
	if err := prices.Write(context.Background(), nil, WriteUpsert); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected calls: %v", err)
	}
}

func TestLocationStore_PortCodesUnder_SQLMock(t *testing.T) {
	mock, _, locations := newMockDB(t)

	mock.ExpectQuery(`WITH RECURSIVE tree`).
		WithArgs("china_main").
		WillReturnRows(sqlmock.NewRows([]string{"code"}).AddRow("CNNGB").AddRow("CNSGH"))

	codes, err := locations.PortCodesUnder(context.Background(), "china_main")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(codes) != 2 || codes[0] != "CNNGB" || codes[1] != "CNSGH" {
		t.Fatalf("unexpected codes: %v", codes)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestLocationStore_UpsertPorts_SQLMock(t *testing.T) {
	mock, _, locations := newMockDB(t)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO ports")
	prep.ExpectExec().WithArgs("CNSGH", "Shanghai", "china_east_main").WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WithArgs("XXORP", "Orphan", nil).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := locations.UpsertPorts(context.Background(), []models.Port{
		{Code: "CNSGH", Name: "Shanghai", ParentSlug: "china_east_main"},
		{Code: "XXORP", Name: "Orphan"},
	})
	if err != nil {
		t.Fatalf("upsert ports: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestLocationStore_UpsertRegions_RollsBack(t *testing.T) {
	mock, _, locations := newMockDB(t)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO regions")
	prep.ExpectExec().WillReturnError(errors.New("constraint"))
	mock.ExpectRollback()

	err := locations.UpsertRegions(context.Background(), []models.Region{{Slug: "china_main", Name: "China Main"}})
	if err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestParseWriteMode(t *testing.T) {
	for _, in := range []string{"upsert", "insert"} {
		if m, err := ParseWriteMode(in); err != nil || string(m) != in {
			t.Fatalf("ParseWriteMode(%q) = %q, %v", in, m, err)
		}
	}
	if _, err := ParseWriteMode("merge"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}
