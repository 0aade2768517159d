package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/guttosm/freightrates/internal/domain/models"
	pq "github.com/lib/pq"
)

type priceStore struct {
	db *sql.DB
}

// NewPriceStore returns a PostgreSQL-backed PriceStore.
func NewPriceStore(db *sql.DB) PriceStore {
	return &priceStore{db: db}
}

// Query returns observations matching filter ordered by day.
func (r *priceStore) Query(ctx context.Context, filter PriceFilter) ([]models.PriceObservation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT orig_code, dest_code, day, price
		FROM prices
		WHERE day BETWEEN $1 AND $2
		  AND orig_code = ANY($3)
		  AND dest_code = ANY($4)
		ORDER BY day`,
		dateOnly(filter.DateFrom), dateOnly(filter.DateTo),
		pq.Array(filter.Origins), pq.Array(filter.Destinations),
	)
	if err != nil {
		return nil, fmt.Errorf("query prices: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.PriceObservation
	for rows.Next() {
		var o models.PriceObservation
		if err := rows.Scan(&o.OriginCode, &o.DestinationCode, &o.Day, &o.Price); err != nil {
			return nil, fmt.Errorf("scan price: %w", err)
		}
		o.Day = dateOnly(o.Day)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prices: %w", err)
	}
	return out, nil
}

// routeLockSQL serializes upserts of one route across transactions.
const routeLockSQL = `SELECT pg_advisory_xact_lock(hashtext($1::text || '|' || $2::text))`

// Write stores the batch in a single transaction. In upsert mode the rows
// already stored for the uploaded (route, day) keys are removed first, then
// the batch is bulk-loaded with COPY.
func (r *priceStore) Write(ctx context.Context, observations []models.PriceObservation, mode WriteMode) error {
	if len(observations) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if mode == WriteUpsert {
		days, order := groupDaysByRoute(observations)
		// Locks are taken in a fixed order so overlapping batches cannot deadlock.
		sort.Slice(order, func(i, j int) bool {
			if order[i].origin != order[j].origin {
				return order[i].origin < order[j].origin
			}
			return order[i].destination < order[j].destination
		})
		for _, k := range order {
			// Held until commit; the DELETE below then sees rows committed by
			// any upsert of the same route that ran first.
			if _, err := tx.ExecContext(ctx, routeLockSQL, k.origin, k.destination); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("lock route %s-%s: %w", k.origin, k.destination, err)
			}
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM prices WHERE orig_code = $1 AND dest_code = $2 AND day = ANY($3::date[])`,
				k.origin, k.destination, pq.Array(days[k]),
			); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("replace prices %s-%s: %w", k.origin, k.destination, err)
			}
		}
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("prices", "orig_code", "dest_code", "day", "price"))
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	for _, o := range observations {
		if _, err := stmt.ExecContext(ctx, o.OriginCode, o.DestinationCode, dateOnly(o.Day), o.Price); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return err
		}
	}

	if _, err := stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		_ = tx.Rollback()
		return err
	}
	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

type locationStore struct {
	db *sql.DB
}

// NewLocationStore returns a PostgreSQL-backed LocationStore.
func NewLocationStore(db *sql.DB) LocationStore {
	return &locationStore{db: db}
}

// portCodesUnderSQL walks the region tree from the given slug and collects the
// ports hanging off any node. The seed row is the slug itself, so ports that
// name a parent with no regions row are still found.
const portCodesUnderSQL = `
	WITH RECURSIVE tree(slug) AS (
		SELECT CAST(%[1]s AS TEXT)
		UNION
		SELECT r.slug FROM regions r JOIN tree t ON r.parent_slug = t.slug
	)
	SELECT DISTINCT p.code FROM ports p JOIN tree t ON p.parent_slug = t.slug
	ORDER BY p.code`

// PortCodesUnder resolves a region slug to its port codes.
func (r *locationStore) PortCodesUnder(ctx context.Context, slug string) ([]string, error) {
	return queryCodes(ctx, r.db, fmt.Sprintf(portCodesUnderSQL, "$1"), slug)
}

// UpsertRegions inserts or refreshes region rows.
func (r *locationStore) UpsertRegions(ctx context.Context, regions []models.Region) error {
	return execBatch(ctx, r.db, `
		INSERT INTO regions (slug, name, parent_slug)
		VALUES ($1, $2, $3)
		ON CONFLICT (slug)
		DO UPDATE SET name = EXCLUDED.name,
		              parent_slug = EXCLUDED.parent_slug`,
		len(regions), func(i int) []any {
			return []any{regions[i].Slug, regions[i].Name, nullIfEmpty(regions[i].ParentSlug)}
		})
}

// UpsertPorts inserts or refreshes port rows.
func (r *locationStore) UpsertPorts(ctx context.Context, ports []models.Port) error {
	return execBatch(ctx, r.db, `
		INSERT INTO ports (code, name, parent_slug)
		VALUES ($1, $2, $3)
		ON CONFLICT (code)
		DO UPDATE SET name = EXCLUDED.name,
		              parent_slug = EXCLUDED.parent_slug`,
		len(ports), func(i int) []any {
			return []any{ports[i].Code, ports[i].Name, nullIfEmpty(ports[i].ParentSlug)}
		})
}

func queryCodes(ctx context.Context, db *sql.DB, query string, args ...any) ([]string, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query port codes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("scan port code: %w", err)
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

// execBatch runs one prepared statement n times inside a transaction.
func execBatch(ctx context.Context, db *sql.DB, query string, n int, args func(i int) []any) error {
	if n == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, args(i)...); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return err
		}
	}
	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// nullIfEmpty maps an absent parent reference to SQL NULL.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
