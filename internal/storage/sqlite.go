package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/guttosm/freightrates/internal/domain/models"
	_ "modernc.org/sqlite"
)

// SQLiteStore is a single-file PriceStore and LocationStore used for local
// runs and tests. Days are stored as ISO text so range predicates compare
// lexically.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database at path and applies the schema.
// ":memory:" yields a private in-memory database.
func NewSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite: path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// DB exposes the underlying handle for health probes.
func (s *SQLiteStore) DB() *sql.DB { return s.db }

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS regions (
			slug TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			parent_slug TEXT REFERENCES regions(slug)
		)`,
		`CREATE TABLE IF NOT EXISTS ports (
			code TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			parent_slug TEXT REFERENCES regions(slug)
		)`,
		`CREATE TABLE IF NOT EXISTS prices (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			orig_code TEXT NOT NULL,
			dest_code TEXT NOT NULL,
			day TEXT NOT NULL,
			price INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_prices_route_day ON prices (orig_code, dest_code, day)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("sqlite migrate: %w", err)
		}
	}
	return nil
}

// Query returns observations matching filter ordered by day.
func (s *SQLiteStore) Query(ctx context.Context, filter PriceFilter) ([]models.PriceObservation, error) {
	if len(filter.Origins) == 0 || len(filter.Destinations) == 0 {
		return nil, nil
	}

	args := make([]any, 0, 2+len(filter.Origins)+len(filter.Destinations))
	args = append(args, dateOnly(filter.DateFrom).Format(dayLayout), dateOnly(filter.DateTo).Format(dayLayout))
	for _, o := range filter.Origins {
		args = append(args, o)
	}
	for _, d := range filter.Destinations {
		args = append(args, d)
	}

	query := fmt.Sprintf(`
		SELECT orig_code, dest_code, day, price
		FROM prices
		WHERE day BETWEEN ? AND ?
		  AND orig_code IN (%s)
		  AND dest_code IN (%s)
		ORDER BY day`,
		placeholders(len(filter.Origins)), placeholders(len(filter.Destinations)))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query prices: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.PriceObservation
	for rows.Next() {
		var (
			o   models.PriceObservation
			day string
		)
		if err := rows.Scan(&o.OriginCode, &o.DestinationCode, &day, &o.Price); err != nil {
			return nil, fmt.Errorf("scan price: %w", err)
		}
		if o.Day, err = time.Parse(dayLayout, day); err != nil {
			return nil, fmt.Errorf("parse day %q: %w", day, err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prices: %w", err)
	}
	return out, nil
}

// Write stores the batch in one transaction; see PriceStore.
func (s *SQLiteStore) Write(ctx context.Context, observations []models.PriceObservation, mode WriteMode) (err error) {
	if len(observations) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if mode == WriteUpsert {
		days, order := groupDaysByRoute(observations)
		for _, k := range order {
			args := []any{k.origin, k.destination}
			for _, d := range days[k] {
				args = append(args, d)
			}
			q := fmt.Sprintf(`DELETE FROM prices WHERE orig_code = ? AND dest_code = ? AND day IN (%s)`, placeholders(len(days[k])))
			if _, err = tx.ExecContext(ctx, q, args...); err != nil {
				return fmt.Errorf("replace prices %s-%s: %w", k.origin, k.destination, err)
			}
		}
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO prices (orig_code, dest_code, day, price) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, o := range observations {
		if _, err = stmt.ExecContext(ctx, o.OriginCode, o.DestinationCode, dateOnly(o.Day).Format(dayLayout), o.Price); err != nil {
			return err
		}
	}

	err = tx.Commit()
	return err
}

// PortCodesUnder resolves a region slug to its port codes.
func (s *SQLiteStore) PortCodesUnder(ctx context.Context, slug string) ([]string, error) {
	return queryCodes(ctx, s.db, fmt.Sprintf(portCodesUnderSQL, "?"), slug)
}

// UpsertRegions inserts or refreshes region rows.
func (s *SQLiteStore) UpsertRegions(ctx context.Context, regions []models.Region) error {
	return execBatch(ctx, s.db, `
		INSERT INTO regions (slug, name, parent_slug)
		VALUES (?, ?, ?)
		ON CONFLICT(slug)
		DO UPDATE SET name = excluded.name,
		              parent_slug = excluded.parent_slug`,
		len(regions), func(i int) []any {
			return []any{regions[i].Slug, regions[i].Name, nullIfEmpty(regions[i].ParentSlug)}
		})
}

// UpsertPorts inserts or refreshes port rows.
func (s *SQLiteStore) UpsertPorts(ctx context.Context, ports []models.Port) error {
	return execBatch(ctx, s.db, `
		INSERT INTO ports (code, name, parent_slug)
		VALUES (?, ?, ?)
		ON CONFLICT(code)
		DO UPDATE SET name = excluded.name,
		              parent_slug = excluded.parent_slug`,
		len(ports), func(i int) []any {
			return []any{ports[i].Code, ports[i].Name, nullIfEmpty(ports[i].ParentSlug)}
		})
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
