package repositories

import (
	"context"
	"database/sql"
	"errors"

	intconfig "busbooking/internal/config"
	"busbooking/internal/domain"
	"busbooking/internal/domain/models"
)

type BusRepository struct {
	DB     *sql.DB
	Routes RouteRepository
}

func (r BusRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r BusRepository) routes() RouteRepository {
	if r.Routes.DB != nil {
		return r.Routes
	}
	return RouteRepository{DB: r.db()}
}

// GetBus loads a bus together with its route snapshot.
func (r BusRepository) GetBus(ctx context.Context, id string) (models.Bus, error) {
	var (
		b       models.Bus
		routeID string
	)
	err := r.db().QueryRowContext(ctx, `
		SELECT id, bus_number, category, bus_type, capacity, status, route_id
		FROM buses
		WHERE id=? LIMIT 1
	`, id).Scan(&b.ID, &b.Number, &b.Category, &b.Type, &b.Capacity, &b.Status, &routeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Bus{}, domain.NotFoundError{Resource: "bus", Err: err}
		}
		return models.Bus{}, err
	}

	route, err := r.routes().GetRoute(ctx, routeID)
	if err != nil {
		return models.Bus{}, err
	}
	b.Route = route
	return b, nil
}
