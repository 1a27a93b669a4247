package services

import (
	"context"
	"fmt"
	"strings"

	"busbooking/internal/domain"
	"busbooking/internal/domain/models"
	"busbooking/internal/utils"

	"github.com/google/uuid"
)

// RouteService edits route topology and serves bus lookups.
type RouteService struct {
	Routes RouteStore
	Buses  BusStore
}

func (s RouteService) GetRoute(ctx context.Context, id string) (models.Route, error) {
	if strings.TrimSpace(id) == "" {
		return models.Route{}, domain.ValidationError{Field: "id", Msg: "is required"}
	}
	r, err := s.Routes.GetRoute(ctx, id)
	if err != nil {
		return models.Route{}, err
	}
	r.Stops = domain.SortedStops(r)
	return r, nil
}

func (s RouteService) GetBus(ctx context.Context, id string) (models.Bus, error) {
	if strings.TrimSpace(id) == "" {
		return models.Bus{}, domain.ValidationError{Field: "id", Msg: "is required"}
	}
	b, err := s.Buses.GetBus(ctx, id)
	if err != nil {
		return models.Bus{}, err
	}
	b.Route.Stops = domain.SortedStops(b.Route)
	return b, nil
}

// InsertStop adds a stop at atOrder. Existing schedules for buses on the route must be rebuilt.
func (s RouteService) InsertStop(ctx context.Context, rc domain.RequestContext, routeID string, stop models.Stop, atOrder int) (models.Route, error) {
	if !rc.IsAdmin() {
		return models.Route{}, domain.ForbiddenError{Msg: "only admins can edit routes"}
	}
	stop.Name = utils.NormalizeSpace(stop.Name)
	if stop.Name == "" {
		return models.Route{}, domain.ValidationError{Field: "stop.name", Msg: "is required"}
	}
	if strings.TrimSpace(stop.ID) == "" {
		stop.ID = uuid.NewString()
	}
	route, err := s.Routes.GetRoute(ctx, routeID)
	if err != nil {
		return models.Route{}, err
	}
	if _, dup := domain.FindStopByName(route, stop.Name); dup {
		return models.Route{}, domain.ConflictError{Resource: "stop", Msg: fmt.Sprintf("a stop named %q already exists on route %s", stop.Name, routeID)}
	}
	updated, err := domain.InsertStop(route, stop, atOrder)
	if err != nil {
		return models.Route{}, err
	}
	if err := s.Routes.ReplaceStops(ctx, updated); err != nil {
		return models.Route{}, err
	}
	utils.LogEvent(rc.RequestID, "route", "insert_stop", fmt.Sprintf("route_id=%s stop_id=%s order=%d", routeID, stop.ID, atOrder))
	return updated, nil
}

func (s RouteService) RemoveStop(ctx context.Context, rc domain.RequestContext, routeID, stopID string) (models.Route, error) {
	if !rc.IsAdmin() {
		return models.Route{}, domain.ForbiddenError{Msg: "only admins can edit routes"}
	}
	route, err := s.Routes.GetRoute(ctx, routeID)
	if err != nil {
		return models.Route{}, err
	}
	updated, err := domain.RemoveStop(route, stopID)
	if err != nil {
		return models.Route{}, err
	}
	if err := s.Routes.ReplaceStops(ctx, updated); err != nil {
		return models.Route{}, err
	}
	utils.LogEvent(rc.RequestID, "route", "remove_stop", "route_id="+routeID+" stop_id="+stopID)
	return updated, nil
}
