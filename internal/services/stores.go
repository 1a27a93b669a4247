package services

import (
	"context"
	"time"

	"busbooking/internal/domain/models"
	"busbooking/internal/events"
)

// Narrow views over the repositories so services can be tested without MySQL.

type RouteStore interface {
	GetRoute(ctx context.Context, id string) (models.Route, error)
	ReplaceStops(ctx context.Context, route models.Route) error
}

type BusStore interface {
	GetBus(ctx context.Context, id string) (models.Bus, error)
}

type ScheduleStore interface {
	ListByBus(ctx context.Context, busID string) ([]models.Schedule, error)
	GetByID(ctx context.Context, id string) (models.Schedule, error)
	Create(ctx context.Context, s models.Schedule) error
	Update(ctx context.Context, s models.Schedule) error
	Delete(ctx context.Context, id string) error
}

type TicketStore interface {
	Create(ctx context.Context, t models.Ticket) error
	GetByID(ctx context.Context, id string) (models.Ticket, error)
	List(ctx context.Context, f models.TicketFilter) ([]models.Ticket, error)
	Count(ctx context.Context, f models.TicketFilter) (int, error)
	ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Ticket, error)
	PaidSeats(ctx context.Context, busID, travelDate, scheduleID string) (int, error)
	Update(ctx context.Context, t models.Ticket, fromStatus models.TicketStatus) error
	MarkPaid(ctx context.Context, t models.Ticket) error
}

type EventPublisher interface {
	PublishTicketEvent(ctx context.Context, ev events.TicketEvent) error
}

type TripLocker interface {
	Lock(ctx context.Context, key string) (release func(), err error)
}
