package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	intconfig "busbooking/internal/config"
	"busbooking/internal/domain"
	"busbooking/internal/domain/models"
)

type RouteRepository struct {
	DB *sql.DB
}

func (r RouteRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// GetRoute loads a route with its stops ordered by stop_order.
func (r RouteRepository) GetRoute(ctx context.Context, id string) (models.Route, error) {
	db := r.db()
	var route models.Route
	err := db.QueryRowContext(ctx, `SELECT id, name, city FROM routes WHERE id=? LIMIT 1`, id).
		Scan(&route.ID, &route.Name, &route.City)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Route{}, domain.NotFoundError{Resource: "route", Err: err}
		}
		return models.Route{}, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, name, stop_order, lat, lng
		FROM stops
		WHERE route_id=?
		ORDER BY stop_order ASC
	`, id)
	if err != nil {
		return models.Route{}, err
	}
	defer rows.Close()

	route.Stops = []models.Stop{}
	for rows.Next() {
		var s models.Stop
		if err := rows.Scan(&s.ID, &s.Name, &s.Order, &s.Lat, &s.Lng); err != nil {
			return models.Route{}, err
		}
		route.Stops = append(route.Stops, s)
	}
	return route, rows.Err()
}

// ReplaceStops rewrites the route's stop list in one transaction.
func (r RouteRepository) ReplaceStops(ctx context.Context, route models.Route) (err error) {
	tx, err := r.db().BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM stops WHERE route_id=?`, route.ID); err != nil {
		return fmt.Errorf("delete stops: %w", err)
	}
	for _, s := range route.Stops {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO stops (id, route_id, name, stop_order, lat, lng)
			VALUES (?, ?, ?, ?, ?, ?)
		`, s.ID, route.ID, s.Name, s.Order, s.Lat, s.Lng); err != nil {
			return fmt.Errorf("insert stop %s: %w", s.ID, err)
		}
	}
	if _, err = tx.ExecContext(ctx, `UPDATE routes SET updated_at=NOW() WHERE id=?`, route.ID); err != nil {
		return err
	}
	return tx.Commit()
}
