package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"busbooking/internal/domain"
	"busbooking/internal/domain/models"
	"busbooking/internal/events"
	"busbooking/internal/locks"
	"busbooking/internal/metrics"
	"busbooking/internal/utils"

	"github.com/google/uuid"
)

const (
	expireBatch     = 100
	defaultPageSize = 10
	maxPageSize     = 100
)

// BookingService drives tickets through PENDING, PAID, CANCELLED and REFUNDED.
type BookingService struct {
	Buses     BusStore
	Schedules ScheduleStore
	Tickets   TicketStore
	Locker    TripLocker
	Events    EventPublisher
	Metrics   *metrics.Collector

	PendingTTL time.Duration
	Now        func() time.Time
}

type QuoteInput struct {
	BusID      string `json:"busId"`
	FromStopID string `json:"fromStopId"`
	ToStopID   string `json:"toStopId"`
	SeatCount  int    `json:"seatCount"`
	TravelDate string `json:"travelDate"`
}

type Quote struct {
	BusID           string `json:"busId"`
	FromStop        string `json:"fromStop"`
	ToStop          string `json:"toStop"`
	DistanceInStops int    `json:"distanceInStops"`
	SeatCount       int    `json:"seatCount"`
	FarePerSeat     int64  `json:"farePerSeat"`
	TotalFare       int64  `json:"totalFare"`
	DepartureTime   string `json:"departureTime"`
	ArrivalTime     string `json:"arrivalTime"`
	SeatsLeft       int    `json:"seatsLeft"`
}

func (s BookingService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return utils.NowUTC()
}

// Quote prices a trip without creating anything.
func (s BookingService) Quote(ctx context.Context, in QuoteInput) (Quote, error) {
	if in.SeatCount == 0 {
		in.SeatCount = 1
	}
	bus, sched, date, err := s.loadTrip(ctx, in.BusID, in.TravelDate)
	if err != nil {
		return Quote{}, err
	}
	candidate, err := domain.NewTicket(domain.NewTicketInput{
		Bus:        bus,
		FromStopID: in.FromStopID,
		ToStopID:   in.ToStopID,
		SeatCount:  in.SeatCount,
		TravelDate: date,
		Schedule:   sched,
		Now:        s.now(),
	})
	if err != nil {
		return Quote{}, err
	}
	dist, err := domain.DistanceInStops(bus.Route, in.FromStopID, in.ToStopID)
	if err != nil {
		return Quote{}, err
	}
	paid, err := s.Tickets.PaidSeats(ctx, bus.ID, candidate.TravelDate, candidate.ScheduleID)
	if err != nil {
		return Quote{}, err
	}
	return Quote{
		BusID:           bus.ID,
		FromStop:        candidate.FromStop,
		ToStop:          candidate.ToStop,
		DistanceInStops: dist,
		SeatCount:       candidate.SeatCount,
		FarePerSeat:     candidate.FarePerSeat,
		TotalFare:       candidate.TotalFare,
		DepartureTime:   candidate.DepartureTime,
		ArrivalTime:     candidate.ArrivalTime,
		SeatsLeft:       max(bus.Capacity-paid, 0),
	}, nil
}

type CreateTicketInput struct {
	BusID      string `json:"busId"`
	FromStopID string `json:"fromStopId"`
	ToStopID   string `json:"toStopId"`
	SeatCount  int    `json:"seatCount"`
	TravelDate string `json:"travelDate"`
}

func (s BookingService) Create(ctx context.Context, rc domain.RequestContext, in CreateTicketInput) (models.Ticket, error) {
	if strings.TrimSpace(rc.UserID) == "" {
		return models.Ticket{}, domain.ForbiddenError{Msg: "a signed-in user is required to book"}
	}
	bus, sched, date, err := s.loadTrip(ctx, in.BusID, in.TravelDate)
	if err != nil {
		return models.Ticket{}, err
	}

	id := uuid.NewString()
	t, err := domain.NewTicket(domain.NewTicketInput{
		ID:         id,
		BookingID:  newBookingID(),
		UserID:     rc.UserID,
		Bus:        bus,
		FromStopID: in.FromStopID,
		ToStopID:   in.ToStopID,
		SeatCount:  in.SeatCount,
		TravelDate: date,
		Schedule:   sched,
		Now:        s.now(),
	})
	if err != nil {
		s.reject(err)
		return models.Ticket{}, err
	}
	if err := s.checkSeatsLeft(ctx, t, bus.Capacity); err != nil {
		s.reject(err)
		return models.Ticket{}, err
	}
	if err := s.Tickets.Create(ctx, t); err != nil {
		return models.Ticket{}, err
	}

	s.Metrics.TicketCreated(t.SeatCount)
	utils.LogEvent(rc.RequestID, "booking", "create", fmt.Sprintf("ticket_id=%s booking_id=%s bus_id=%s seats=%d total=%d",
		t.ID, t.BookingID, t.BusID, t.SeatCount, t.TotalFare))
	s.publish(ctx, rc, t, "")
	return t, nil
}

func (s BookingService) Get(ctx context.Context, rc domain.RequestContext, id string) (models.Ticket, error) {
	t, err := s.Tickets.GetByID(ctx, id)
	if err != nil {
		return models.Ticket{}, err
	}
	if !rc.CanAccess(t.UserID) {
		return models.Ticket{}, domain.ForbiddenError{Msg: "ticket belongs to another user"}
	}
	return t, nil
}

type ListTicketsInput struct {
	Status  string
	BusID   string
	RouteID string
	Page    int
	Limit   int
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

type TicketPage struct {
	Tickets    []models.Ticket `json:"tickets"`
	Pagination Pagination      `json:"pagination"`
}

// List pages through tickets newest first. Riders only see their own; admins see everyone's.
func (s BookingService) List(ctx context.Context, rc domain.RequestContext, in ListTicketsInput) (TicketPage, error) {
	if strings.TrimSpace(rc.UserID) == "" && !rc.IsAdmin() {
		return TicketPage{}, domain.ForbiddenError{Msg: "a signed-in user is required"}
	}
	f := models.TicketFilter{
		BusID:   strings.TrimSpace(in.BusID),
		RouteID: strings.TrimSpace(in.RouteID),
	}
	if !rc.IsAdmin() {
		f.UserID = rc.UserID
	}
	if v := strings.TrimSpace(in.Status); v != "" {
		st := models.TicketStatus(strings.ToUpper(v))
		if !domain.ValidStatus(st) {
			return TicketPage{}, domain.ValidationError{Field: "status", Msg: fmt.Sprintf("unknown status %q", v)}
		}
		f.Status = st
	}

	page, limit := in.Page, in.Limit
	if page < 1 {
		page = 1
	}
	switch {
	case limit < 1:
		limit = defaultPageSize
	case limit > maxPageSize:
		limit = maxPageSize
	}
	f.Limit, f.Offset = limit, (page-1)*limit

	total, err := s.Tickets.Count(ctx, f)
	if err != nil {
		return TicketPage{}, err
	}
	list, err := s.Tickets.List(ctx, f)
	if err != nil {
		return TicketPage{}, err
	}
	return TicketPage{
		Tickets:    list,
		Pagination: Pagination{Page: page, Limit: limit, Total: total, Pages: (total + limit - 1) / limit},
	}, nil
}

// ChangeSeats reprices a PENDING ticket against the seats still unsold on its trip.
func (s BookingService) ChangeSeats(ctx context.Context, rc domain.RequestContext, id string, seatCount int) (models.Ticket, error) {
	t, err := s.Get(ctx, rc, id)
	if err != nil {
		return models.Ticket{}, err
	}
	bus, err := s.Buses.GetBus(ctx, t.BusID)
	if err != nil {
		return models.Ticket{}, err
	}
	if err := domain.ChangeSeatCount(&t, seatCount, bus.Capacity, s.now()); err != nil {
		return models.Ticket{}, err
	}
	if err := s.checkSeatsLeft(ctx, t, bus.Capacity); err != nil {
		s.reject(err)
		return models.Ticket{}, err
	}
	if err := s.Tickets.Update(ctx, t, models.TicketPending); err != nil {
		return models.Ticket{}, err
	}
	utils.LogEvent(rc.RequestID, "booking", "change_seats", fmt.Sprintf("ticket_id=%s seats=%d total=%d", t.ID, t.SeatCount, t.TotalFare))
	return t, nil
}

// Pay confirms a payment. Capacity is re-checked under the trip lock and inside the DB transaction.
func (s BookingService) Pay(ctx context.Context, rc domain.RequestContext, id, paymentID string) (models.Ticket, error) {
	t, err := s.Get(ctx, rc, id)
	if err != nil {
		return models.Ticket{}, err
	}
	if err := domain.Pay(&t, paymentID, s.now()); err != nil {
		return models.Ticket{}, err
	}

	release, err := s.locker().Lock(ctx, locks.TripKey(t.BusID, t.TravelDate, t.ScheduleID))
	if err != nil {
		if errors.Is(err, locks.ErrLockBusy) {
			return models.Ticket{}, domain.ConflictError{Resource: "trip", Msg: "another payment for this trip is in progress, retry", Err: err}
		}
		return models.Ticket{}, err
	}
	defer release()

	if err := s.Tickets.MarkPaid(ctx, t); err != nil {
		s.reject(err)
		return models.Ticket{}, err
	}
	s.transitioned(ctx, rc, t, "")
	return t, nil
}

func (s BookingService) Cancel(ctx context.Context, rc domain.RequestContext, id string) (models.Ticket, error) {
	t, err := s.Get(ctx, rc, id)
	if err != nil {
		return models.Ticket{}, err
	}
	from := t.Status
	if err := domain.Cancel(&t, s.now()); err != nil {
		return models.Ticket{}, err
	}
	if err := s.Tickets.Update(ctx, t, from); err != nil {
		return models.Ticket{}, err
	}
	s.transitioned(ctx, rc, t, "")
	return t, nil
}

func (s BookingService) Refund(ctx context.Context, rc domain.RequestContext, id string) (models.Ticket, error) {
	if !rc.IsAdmin() {
		return models.Ticket{}, domain.ForbiddenError{Msg: "only admins can refund tickets"}
	}
	t, err := s.Tickets.GetByID(ctx, id)
	if err != nil {
		return models.Ticket{}, err
	}
	if err := domain.Refund(&t, s.now()); err != nil {
		return models.Ticket{}, err
	}
	if err := s.Tickets.Update(ctx, t, models.TicketPaid); err != nil {
		return models.Ticket{}, err
	}
	s.transitioned(ctx, rc, t, "")
	return t, nil
}

// RecordPaymentFailure keeps the ticket PENDING so the rider can retry.
func (s BookingService) RecordPaymentFailure(ctx context.Context, rc domain.RequestContext, id, reason string) (models.Ticket, error) {
	t, err := s.Get(ctx, rc, id)
	if err != nil {
		return models.Ticket{}, err
	}
	if err := domain.RecordPaymentFailure(&t, reason, s.now()); err != nil {
		return models.Ticket{}, err
	}
	if err := s.Tickets.Update(ctx, t, models.TicketPending); err != nil {
		return models.Ticket{}, err
	}
	s.Metrics.PaymentFailed()
	utils.LogEvent(rc.RequestID, "booking", "payment_failed", "ticket_id="+t.ID+" reason="+t.LastPaymentError)
	s.publish(ctx, rc, t, t.LastPaymentError)
	return t, nil
}

// ExpirePending cancels PENDING tickets older than PendingTTL and returns how many were cancelled.
func (s BookingService) ExpirePending(ctx context.Context) (int, error) {
	if s.PendingTTL <= 0 {
		return 0, nil
	}
	now := s.now()
	list, err := s.Tickets.ListPendingBefore(ctx, now.Add(-s.PendingTTL), expireBatch)
	if err != nil {
		return 0, err
	}
	rc := domain.RequestContext{RequestID: "sweeper"}
	n := 0
	for _, t := range list {
		if !domain.PendingExpired(t, now, s.PendingTTL) {
			continue
		}
		if err := domain.Cancel(&t, now); err != nil {
			continue
		}
		if err := s.Tickets.Update(ctx, t, models.TicketPending); err != nil {
			if domain.IsConflict(err) {
				// paid or cancelled since the listing
				continue
			}
			return n, err
		}
		n++
		s.publish(ctx, rc, t, "payment window expired")
	}
	if n > 0 {
		s.Metrics.Expired(n)
		utils.LogEvent(rc.RequestID, "booking", "expire_pending", fmt.Sprintf("cancelled=%d", n))
	}
	return n, nil
}

func (s BookingService) loadTrip(ctx context.Context, busID, travelDate string) (models.Bus, *models.Schedule, string, error) {
	if strings.TrimSpace(busID) == "" {
		return models.Bus{}, nil, "", domain.ValidationError{Field: "busId", Msg: "is required"}
	}
	var date time.Time
	travelDate = strings.TrimSpace(travelDate)
	if travelDate != "" {
		d, err := utils.ParseDate(travelDate)
		if err != nil {
			return models.Bus{}, nil, "", domain.ValidationError{Field: "travelDate", Msg: "must be YYYY-MM-DD", Err: err}
		}
		date = d
		travelDate = utils.FormatDate(d)
	}
	bus, err := s.Buses.GetBus(ctx, busID)
	if err != nil {
		return models.Bus{}, nil, "", err
	}
	schedules, err := s.Schedules.ListByBus(ctx, bus.ID)
	if err != nil {
		return models.Bus{}, nil, "", err
	}
	return bus, domain.PickSchedule(schedules, date), travelDate, nil
}

func (s BookingService) checkSeatsLeft(ctx context.Context, t models.Ticket, capacity int) error {
	paid, err := s.Tickets.PaidSeats(ctx, t.BusID, t.TravelDate, t.ScheduleID)
	if err != nil {
		return err
	}
	if paid+t.SeatCount > capacity {
		return domain.CapacityExceededError{Requested: t.SeatCount, Available: max(capacity-paid, 0)}
	}
	return nil
}

func (s BookingService) locker() TripLocker {
	if s.Locker != nil {
		return s.Locker
	}
	return locks.NoopLocker{}
}

func (s BookingService) reject(err error) {
	switch {
	case domain.IsCapacityExceeded(err):
		s.Metrics.Rejected("capacity")
	case domain.IsConflict(err):
		s.Metrics.Rejected("conflict")
	case domain.IsValidation(err), domain.IsStopNotFound(err), domain.IsInvalidPair(err):
		s.Metrics.Rejected("invalid")
	}
}

func (s BookingService) transitioned(ctx context.Context, rc domain.RequestContext, t models.Ticket, reason string) {
	s.Metrics.Transitioned(string(t.Status), t.TotalFare)
	utils.LogEvent(rc.RequestID, "booking", strings.ToLower(string(t.Status)), "ticket_id="+t.ID+" booking_id="+t.BookingID)
	s.publish(ctx, rc, t, reason)
}

// publish never fails the request; events are best-effort notifications.
func (s BookingService) publish(ctx context.Context, rc domain.RequestContext, t models.Ticket, reason string) {
	if s.Events == nil {
		return
	}
	if err := s.Events.PublishTicketEvent(ctx, events.NewTicketEvent(t, reason)); err != nil {
		utils.LogEvent(rc.RequestID, "booking", "publish", "ticket_id="+t.ID+" error="+err.Error())
	}
}

func newBookingID() string {
	return "BK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}
