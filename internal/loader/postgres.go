package loader

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// IsNoRows reports whether err is pgx's "no rows" sentinel, following the
// helper the reference repository layer exposes for the same check.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// LoadPostgres is an alternate build-time source to LoadStdin: it reads
// stops, buses, and road_distances from three tables instead of a JSON
// document, producing the same BuildRequest shape. Render and routing
// settings are not stored in the database, so callers must fill
// req.Render and req.Routing themselves before building.
//
// Expected schema:
//
//	stops(name text primary key, latitude double precision, longitude double precision)
//	buses(number text primary key, is_roundtrip boolean, stop_sequence text[])
//	road_distances(src_name text, dst_name text, meters integer)
func LoadPostgres(ctx context.Context, pool *pgxpool.Pool) (BuildRequest, error) {
	stops, err := loadStops(ctx, pool)
	if err != nil {
		return BuildRequest{}, fmt.Errorf("loader: load stops: %w", err)
	}

	distances, err := loadDistances(ctx, pool)
	if err != nil {
		return BuildRequest{}, fmt.Errorf("loader: load road_distances: %w", err)
	}
	for _, d := range distances {
		stop, ok := stops[d.src]
		if !ok {
			continue
		}
		if stop.RoadDistances == nil {
			stop.RoadDistances = make(map[string]int)
		}
		stop.RoadDistances[d.dst] = d.meters
		stops[d.src] = stop
	}

	buses, err := loadBuses(ctx, pool)
	if err != nil {
		return BuildRequest{}, fmt.Errorf("loader: load buses: %w", err)
	}

	req := BuildRequest{Buses: buses}
	for _, s := range stops {
		req.Stops = append(req.Stops, s)
	}
	return req, nil
}

func loadStops(ctx context.Context, pool *pgxpool.Pool) (map[string]StopRequest, error) {
	rows, err := pool.Query(ctx, `SELECT name, latitude, longitude FROM stops`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]StopRequest)
	for rows.Next() {
		var s StopRequest
		if err := rows.Scan(&s.Name, &s.Latitude, &s.Longitude); err != nil {
			return nil, err
		}
		out[s.Name] = s
	}
	return out, rows.Err()
}

type distanceRow struct {
	src, dst string
	meters   int
}

func loadDistances(ctx context.Context, pool *pgxpool.Pool) ([]distanceRow, error) {
	rows, err := pool.Query(ctx, `SELECT src_name, dst_name, meters FROM road_distances`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []distanceRow
	for rows.Next() {
		var d distanceRow
		if err := rows.Scan(&d.src, &d.dst, &d.meters); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func loadBuses(ctx context.Context, pool *pgxpool.Pool) ([]BusRequest, error) {
	rows, err := pool.Query(ctx, `SELECT number, is_roundtrip, stop_sequence FROM buses ORDER BY number ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BusRequest
	for rows.Next() {
		var b BusRequest
		if err := rows.Scan(&b.Name, &b.IsRoundtrip, &b.Stops); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
