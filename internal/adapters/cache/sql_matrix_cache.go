package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"fleet-route-optimizer/internal/platform/obs"
	"fleet-route-optimizer/internal/ports"
)

// SQLMatrixCache is a Postgres-backed cache for origin->destination travel
// legs. Keys are location ids; callers must keep them stable across runs
// for the cache to pay off.
type SQLMatrixCache struct {
	DB  *sql.DB
	Log *slog.Logger
}

func NewSQLMatrixCache(db *sql.DB, log *slog.Logger) *SQLMatrixCache {
	return &SQLMatrixCache{DB: db, Log: log}
}

// Fetch cached legs for one origin and multiple destinations. Destinations
// without a cached row are simply absent from the result.
func (s *SQLMatrixCache) GetMany(
	ctx context.Context,
	origin string,
	destinations []string,
) (_ map[string]ports.Leg, err error) {
	defer obs.Time(s.Log, "matrix.cache.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("matrix cache: db is nil")
	}

	if origin == "" {
		return nil, errors.New("get matrix cache: origin must not be empty")
	}

	if len(destinations) == 0 {
		return map[string]ports.Leg{}, nil
	}

	seen := map[string]struct{}{}
	uniq := make([]string, 0, len(destinations))
	for _, d := range destinations {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}

		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		uniq = append(uniq, d)
	}

	if len(uniq) == 0 {
		return map[string]ports.Leg{}, nil
	}

	q := `
	SELECT destination, distance_km, duration_min, toll_cost
    FROM matrix_cache
    WHERE origin = $1
        AND destination = ANY($2::text[]);
	`

	rows, err := s.DB.QueryContext(ctx, q, origin, uniq)
	if err != nil {
		return nil, fmt.Errorf("get matrix cache: query matrix_cache table: %w", err)
	}
	defer rows.Close()

	out := make(map[string]ports.Leg, len(uniq))
	for rows.Next() {
		var dest string
		var km, min, toll float64
		if err := rows.Scan(&dest, &km, &min, &toll); err != nil {
			return nil, fmt.Errorf("get matrix cache: scan rows: %w", err)
		}
		out[dest] = ports.Leg{
			DistanceKm:  km,
			DurationMin: min,
			TollCost:    toll,
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get matrix cache: row iteration: %w", err)
	}

	return out, nil
}

// Store many cached legs for a single origin.
func (s *SQLMatrixCache) PutMany(
	ctx context.Context,
	origin string,
	legs map[string]ports.Leg,
) error {
	if s.DB == nil {
		return errors.New("matrix cache: db is nil")
	}

	if origin == "" {
		return errors.New("insert matrix cache: origin must not be empty")
	}

	if len(legs) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert matrix cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO matrix_cache (origin, destination, distance_km, duration_min, toll_cost)
    VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (origin, destination) DO UPDATE
	SET distance_km = EXCLUDED.distance_km,
		duration_min = EXCLUDED.duration_min,
		toll_cost = EXCLUDED.toll_cost;
	`)
	if err != nil {
		return fmt.Errorf("insert matrix cache: db prepare: %w", err)
	}
	defer stmt.Close()

	for dest, l := range legs {
		if strings.TrimSpace(dest) == "" {
			return fmt.Errorf("insert matrix cache: empty destination key")
		}

		if _, err := stmt.ExecContext(ctx, origin, dest, l.DistanceKm, l.DurationMin, l.TollCost); err != nil {
			return fmt.Errorf("insert matrix cache dest=%q: %w", dest, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert matrix cache commit: %w", err)
	}

	return nil
}
