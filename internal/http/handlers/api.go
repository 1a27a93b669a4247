package handlers

import (
	"database/sql"

	"busbooking/internal/services"
)

// API holds the services behind the HTTP handlers.
type API struct {
	DB        *sql.DB
	Routes    services.RouteService
	Schedules services.ScheduleService
	Booking   services.BookingService
	Payments  services.PaymentService
	Docs      services.DocsService
}
