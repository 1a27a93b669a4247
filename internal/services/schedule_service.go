package services

import (
	"context"
	"fmt"
	"strings"

	"busbooking/internal/domain"
	"busbooking/internal/domain/models"
	"busbooking/internal/metrics"
	"busbooking/internal/utils"

	"github.com/google/uuid"
)

type ScheduleService struct {
	Buses     BusStore
	Schedules ScheduleStore
	Metrics   *metrics.Collector
}

// Draft builds a fresh timetable skeleton for the bus's current route.
func (s ScheduleService) Draft(ctx context.Context, busID string) (models.Schedule, error) {
	bus, err := s.bus(ctx, busID)
	if err != nil {
		return models.Schedule{}, err
	}
	return models.Schedule{BusID: bus.ID, StopTimings: domain.BuildStopTimings(bus)}, nil
}

func (s ScheduleService) List(ctx context.Context, busID string) ([]models.Schedule, error) {
	if strings.TrimSpace(busID) == "" {
		return nil, domain.ValidationError{Field: "busId", Msg: "is required"}
	}
	return s.Schedules.ListByBus(ctx, busID)
}

func (s ScheduleService) Get(ctx context.Context, id string) (models.Schedule, error) {
	return s.Schedules.GetByID(ctx, id)
}

func (s ScheduleService) Create(ctx context.Context, rc domain.RequestContext, in models.Schedule) (models.Schedule, error) {
	if !rc.IsAdmin() {
		return models.Schedule{}, domain.ForbiddenError{Msg: "only admins can manage schedules"}
	}
	bus, err := s.bus(ctx, in.BusID)
	if err != nil {
		return models.Schedule{}, err
	}
	if err := s.validate(in, bus.Route); err != nil {
		return models.Schedule{}, err
	}
	in.ID = uuid.NewString()
	in.BusID = bus.ID
	fillStopNames(&in, bus.Route)
	if err := s.Schedules.Create(ctx, in); err != nil {
		return models.Schedule{}, err
	}
	s.Metrics.ScheduleSaved()
	utils.LogEvent(rc.RequestID, "schedule", "create", fmt.Sprintf("schedule_id=%s bus_id=%s days=%d", in.ID, in.BusID, len(in.DaysActive)))
	return in, nil
}

// Update replaces timings and days. The bus stays the same unless a new busId is sent.
func (s ScheduleService) Update(ctx context.Context, rc domain.RequestContext, id string, in models.Schedule) (models.Schedule, error) {
	if !rc.IsAdmin() {
		return models.Schedule{}, domain.ForbiddenError{Msg: "only admins can manage schedules"}
	}
	existing, err := s.Schedules.GetByID(ctx, id)
	if err != nil {
		return models.Schedule{}, err
	}
	if strings.TrimSpace(in.BusID) == "" {
		in.BusID = existing.BusID
	}
	bus, err := s.bus(ctx, in.BusID)
	if err != nil {
		return models.Schedule{}, err
	}
	if err := s.validate(in, bus.Route); err != nil {
		return models.Schedule{}, err
	}
	in.ID = existing.ID
	fillStopNames(&in, bus.Route)
	if err := s.Schedules.Update(ctx, in); err != nil {
		return models.Schedule{}, err
	}
	s.Metrics.ScheduleSaved()
	utils.LogEvent(rc.RequestID, "schedule", "update", "schedule_id="+in.ID)
	return in, nil
}

func (s ScheduleService) Delete(ctx context.Context, rc domain.RequestContext, id string) error {
	if !rc.IsAdmin() {
		return domain.ForbiddenError{Msg: "only admins can manage schedules"}
	}
	if err := s.Schedules.Delete(ctx, id); err != nil {
		return err
	}
	utils.LogEvent(rc.RequestID, "schedule", "delete", "schedule_id="+id)
	return nil
}

func (s ScheduleService) bus(ctx context.Context, busID string) (models.Bus, error) {
	if strings.TrimSpace(busID) == "" {
		return models.Bus{}, domain.ValidationError{Field: "busId", Msg: "is required"}
	}
	return s.Buses.GetBus(ctx, busID)
}

func (s ScheduleService) validate(in models.Schedule, route models.Route) error {
	err := domain.ValidateSchedule(in, route)
	switch {
	case err == nil:
		return nil
	case domain.IsScheduleIncomplete(err):
		s.Metrics.ScheduleRejectedInc("incomplete")
	default:
		s.Metrics.ScheduleRejectedInc("invalid")
	}
	return err
}

// fillStopNames copies names from the route so timings can be looked up by stop name.
func fillStopNames(in *models.Schedule, route models.Route) {
	stops := domain.SortedStops(route)
	for i := range in.StopTimings {
		if i < len(stops) && in.StopTimings[i].StopID == stops[i].ID {
			in.StopTimings[i].StopName = stops[i].Name
		}
	}
}
