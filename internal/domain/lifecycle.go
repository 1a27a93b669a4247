package domain

import (
	"fmt"
	"strings"
	"time"

	"busbooking/internal/domain/models"
)

var transitions = map[models.TicketStatus][]models.TicketStatus{
	models.TicketPending:   {models.TicketPaid, models.TicketCancelled},
	models.TicketPaid:      {models.TicketCancelled, models.TicketRefunded},
	models.TicketCancelled: {},
	models.TicketRefunded:  {},
}

func ValidStatus(s models.TicketStatus) bool {
	_, ok := transitions[s]
	return ok
}

// AllowedTransitions lists the states reachable in one step from s.
func AllowedTransitions(s models.TicketStatus) []models.TicketStatus {
	next := transitions[s]
	out := make([]models.TicketStatus, len(next))
	copy(out, next)
	return out
}

func IsTerminal(s models.TicketStatus) bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// Transition is the pure lifecycle step function.
func Transition(from, to models.TicketStatus) (models.TicketStatus, error) {
	for _, s := range transitions[from] {
		if s == to {
			return to, nil
		}
	}
	return from, InvalidTransitionError{From: from, To: to}
}

// NewTicketInput carries everything needed to price and time a booking.
type NewTicketInput struct {
	ID         string
	BookingID  string
	UserID     string
	Bus        models.Bus
	FromStopID string
	ToStopID   string
	SeatCount  int
	TravelDate string
	Schedule   *models.Schedule
	Now        time.Time
}

// NewTicket prices and times a booking. The result is always PENDING.
// The destination must come after the origin in stop order.
// Remaining-seat checks against other tickets are the caller's job.
func NewTicket(in NewTicketInput) (models.Ticket, error) {
	if in.Bus.Status != models.BusActive {
		return models.Ticket{}, ConflictError{Resource: "bus", Msg: "bus " + in.Bus.ID + " is " + string(in.Bus.Status)}
	}
	if err := checkSeatCount(in.SeatCount, in.Bus.Capacity); err != nil {
		return models.Ticket{}, err
	}
	fare, err := FarePerSeat(in.Bus.Route, in.FromStopID, in.ToStopID)
	if err != nil {
		return models.Ticket{}, err
	}
	from, _ := findStop(in.Bus.Route, in.FromStopID)
	to, _ := findStop(in.Bus.Route, in.ToStopID)
	if from.Order > to.Order {
		return models.Ticket{}, ValidationError{
			Field: "toStopId",
			Msg:   fmt.Sprintf("stop %q comes before %q on route %q, buses only run forward", to.ID, from.ID, in.Bus.Route.ID),
		}
	}
	scheduleID := ""
	if in.Schedule != nil {
		scheduleID = in.Schedule.ID
	}

	return models.Ticket{
		ID:            in.ID,
		BookingID:     in.BookingID,
		UserID:        in.UserID,
		BusID:         in.Bus.ID,
		ScheduleID:    scheduleID,
		FromStop:      from.Name,
		ToStop:        to.Name,
		SeatCount:     in.SeatCount,
		FarePerSeat:   fare,
		TotalFare:     TotalFare(fare, in.SeatCount),
		Status:        models.TicketPending,
		TravelDate:    in.TravelDate,
		DepartureTime: DepartureAt(in.Schedule, from.Name),
		ArrivalTime:   ArrivalAt(in.Schedule, to.Name),
		CreatedAt:     in.Now,
		UpdatedAt:     in.Now,
	}, nil
}

func checkSeatCount(n, capacity int) error {
	if n < 1 {
		return ValidationError{Field: "seatCount", Msg: "must be at least 1"}
	}
	if n > capacity {
		return CapacityExceededError{Requested: n, Available: capacity}
	}
	return nil
}

func apply(t *models.Ticket, to models.TicketStatus, now time.Time) error {
	next, err := Transition(t.Status, to)
	if err != nil {
		return err
	}
	t.Status = next
	t.UpdatedAt = now
	return nil
}

// Pay confirms payment. Seats and fare are frozen from here on.
func Pay(t *models.Ticket, paymentID string, now time.Time) error {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return ValidationError{Field: "paymentId", Msg: "is required"}
	}
	if err := apply(t, models.TicketPaid, now); err != nil {
		return err
	}
	t.PaymentID = paymentID
	t.LastPaymentError = ""
	return nil
}

// Cancel works before or after payment. No refund is recorded; PaymentID is kept.
func Cancel(t *models.Ticket, now time.Time) error {
	return apply(t, models.TicketCancelled, now)
}

// Refund is only possible for a paid ticket.
func Refund(t *models.Ticket, now time.Time) error {
	return apply(t, models.TicketRefunded, now)
}

// ChangeSeatCount reprices a PENDING ticket.
func ChangeSeatCount(t *models.Ticket, seatCount, capacity int, now time.Time) error {
	if t.Status != models.TicketPending {
		return ConflictError{Resource: "ticket", Msg: "seat count is frozen once the ticket is " + string(t.Status)}
	}
	if err := checkSeatCount(seatCount, capacity); err != nil {
		return err
	}
	t.SeatCount = seatCount
	t.TotalFare = TotalFare(t.FarePerSeat, seatCount)
	t.UpdatedAt = now
	return nil
}

// RecordPaymentFailure keeps the ticket PENDING and remembers why the payment failed.
func RecordPaymentFailure(t *models.Ticket, reason string, now time.Time) error {
	if t.Status != models.TicketPending {
		return InvalidTransitionError{From: t.Status, To: models.TicketPending}
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "payment failed"
	}
	t.LastPaymentError = reason
	t.UpdatedAt = now
	return nil
}

// PendingExpired reports whether an unpaid ticket has outlived ttl.
func PendingExpired(t models.Ticket, now time.Time, ttl time.Duration) bool {
	return ttl > 0 && t.Status == models.TicketPending && now.Sub(t.CreatedAt) >= ttl
}
