package repositories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"busbooking/internal/domain"
	"busbooking/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestGetBusLoadsRouteStops(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery("FROM buses").WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "bus_number", "category", "bus_type", "capacity", "status", "route_id"}).
			AddRow("b1", "MH12-0001", "city", "AC", 40, "ACTIVE", "r1"))
	mock.ExpectQuery("FROM routes").WithArgs("r1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "city"}).AddRow("r1", "Ring", "Pune"))
	mock.ExpectQuery("FROM stops").WithArgs("r1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "stop_order", "lat", "lng"}).
			AddRow("s1", "Swargate", 1, 18.5, 73.8).
			AddRow("s2", "Shivajinagar", 2, 18.53, 73.85))

	bus, err := BusRepository{DB: db}.GetBus(context.Background(), "b1")
	if err != nil {
		t.Fatalf("GetBus returned error: %v", err)
	}
	if bus.Type != models.BusTypeAC || bus.Status != models.BusActive || bus.Capacity != 40 {
		t.Fatalf("unexpected bus %+v", bus)
	}
	if len(bus.Route.Stops) != 2 || bus.Route.Stops[1].Order != 2 {
		t.Fatalf("unexpected stops %+v", bus.Route.Stops)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetBusNotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("FROM buses").WithArgs("nope").WillReturnError(sql.ErrNoRows)

	_, err := BusRepository{DB: db}.GetBus(context.Background(), "nope")
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestReplaceStopsRollsBackOnFailure(t *testing.T) {
	db, mock := newMock(t)
	route := models.Route{ID: "r1", Stops: []models.Stop{{ID: "s1", Name: "A", Order: 1}, {ID: "s2", Name: "B", Order: 2}}}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM stops").WithArgs("r1").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("INSERT INTO stops").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO stops").WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	if err := (RouteRepository{DB: db}).ReplaceStops(context.Background(), route); err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestScheduleRoundTripsJSONColumns(t *testing.T) {
	db, mock := newMock(t)
	freq := 30
	s := models.Schedule{
		ID:               "sch1",
		BusID:            "b1",
		DaysActive:       []models.Weekday{models.Weekday(time.Monday), models.Weekday(time.Friday)},
		StopTimings:      []models.StopTiming{{StopID: "s1", StopName: "A", DepartureTime: "08:00"}, {StopID: "s2", StopName: "B", ArrivalTime: "08:30"}},
		FrequencyMinutes: &freq,
	}
	days, timings, _, err := encodeSchedule(s)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if string(days) != `["Monday","Friday"]` {
		t.Fatalf("days encoded as %s", days)
	}

	mock.ExpectQuery("FROM schedules WHERE bus_id").WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "bus_id", "days_active", "stop_timings", "frequency_min"}).
			AddRow("sch1", "b1", days, timings, 30).
			AddRow("sch2", "b1", []byte(`[]`), []byte(`[]`), nil))

	list, err := ScheduleRepository{DB: db}.ListByBus(context.Background(), "b1")
	if err != nil {
		t.Fatalf("ListByBus: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 schedules, got %d", len(list))
	}
	got := list[0]
	if len(got.DaysActive) != 2 || got.StopTimings[1].ArrivalTime != "08:30" || got.FrequencyMinutes == nil || *got.FrequencyMinutes != 30 {
		t.Fatalf("unexpected schedule %+v", got)
	}
	if list[1].FrequencyMinutes != nil {
		t.Fatalf("NULL frequency should stay nil")
	}
}

func TestDeleteScheduleMissing(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec("DELETE FROM schedules").WithArgs("x").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := (ScheduleRepository{DB: db}).Delete(context.Background(), "x"); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func paidCandidate() models.Ticket {
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	return models.Ticket{
		ID: "t1", BusID: "b1", SeatCount: 3, PaymentID: "PAY1",
		ScheduleID: "sc1", TravelDate: "2026-10-20", DepartureTime: "08:00", Status: models.TicketPaid, UpdatedAt: now,
	}
}

func TestMarkPaidRejectsOversell(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT capacity FROM buses").WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"capacity"}).AddRow(40))
	mock.ExpectQuery("SUM\\(seat_count\\)").WithArgs("b1", "2026-10-20", "sc1", models.TicketPaid, "t1").
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(39))
	mock.ExpectRollback()

	err := TicketRepository{DB: db}.MarkPaid(context.Background(), paidCandidate())
	if !domain.IsCapacityExceeded(err) {
		t.Fatalf("expected CapacityExceeded, got %v", err)
	}
	ce := err.(domain.CapacityExceededError)
	if ce.Available != 1 || ce.Requested != 3 {
		t.Fatalf("unexpected error detail %+v", ce)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMarkPaidCommits(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT capacity FROM buses").WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"capacity"}).AddRow(40))
	mock.ExpectQuery("SUM\\(seat_count\\)").
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(10))
	mock.ExpectExec("UPDATE tickets").
		WithArgs(models.TicketPaid, "PAY1", sqlmock.AnyArg(), "t1", models.TicketPending, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := (TicketRepository{DB: db}).MarkPaid(context.Background(), paidCandidate()); err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMarkPaidLosesRace(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT capacity FROM buses").
		WillReturnRows(sqlmock.NewRows([]string{"capacity"}).AddRow(40))
	mock.ExpectQuery("SUM\\(seat_count\\)").
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(0))
	mock.ExpectExec("UPDATE tickets").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	if err := (TicketRepository{DB: db}).MarkPaid(context.Background(), paidCandidate()); !domain.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

// A seat change committed after the capacity check leaves a different seat_count on the row.
func TestMarkPaidPinsSeatCount(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT capacity FROM buses").
		WillReturnRows(sqlmock.NewRows([]string{"capacity"}).AddRow(40))
	mock.ExpectQuery("SUM\\(seat_count\\)").
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(0))
	mock.ExpectExec("WHERE id=\\? AND status=\\? AND seat_count=\\?").
		WithArgs(models.TicketPaid, "PAY1", sqlmock.AnyArg(), "t1", models.TicketPending, 3).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	if err := (TicketRepository{DB: db}).MarkPaid(context.Background(), paidCandidate()); !domain.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateRequiresExpectedStatus(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec("UPDATE tickets").WillReturnResult(sqlmock.NewResult(0, 0))

	tk := paidCandidate()
	tk.Status = models.TicketCancelled
	if err := (TicketRepository{DB: db}).Update(context.Background(), tk, models.TicketPaid); !domain.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestListTicketsAppliesFilter(t *testing.T) {
	db, mock := newMock(t)
	created := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM tickets WHERE user_id=\\? AND status=\\? AND bus_id IN \\(SELECT id FROM buses WHERE route_id=\\?\\) ORDER BY created_at DESC LIMIT \\? OFFSET \\?").
		WithArgs("u1", models.TicketPaid, "r1", 10, 20).
		WillReturnRows(sqlmock.NewRows(ticketCols).AddRow("t1", "BK-1", "u1", "b1", "sc1", "A", "B", 1, 10, 10,
			"PAID", "PAY1", "", "2026-10-20", "08:00", "08:30", created, created))

	list, err := TicketRepository{DB: db}.List(context.Background(), models.TicketFilter{
		UserID: "u1", Status: models.TicketPaid, RouteID: "r1", Limit: 10, Offset: 20,
	})
	if err != nil || len(list) != 1 || list[0].PaymentID != "PAY1" {
		t.Fatalf("List = %+v, %v", list, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListTicketsUnfiltered(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM tickets$").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(7))
	mock.ExpectQuery("FROM tickets ORDER BY created_at DESC$").
		WillReturnRows(sqlmock.NewRows(ticketCols))

	repo := TicketRepository{DB: db}
	n, err := repo.Count(context.Background(), models.TicketFilter{Limit: 5})
	if err != nil || n != 7 {
		t.Fatalf("Count = %d, %v", n, err)
	}
	list, err := repo.List(context.Background(), models.TicketFilter{})
	if err != nil || len(list) != 0 {
		t.Fatalf("List = %+v, %v", list, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

var ticketCols = []string{"id", "booking_id", "user_id", "bus_id", "schedule_id", "from_stop", "to_stop", "seat_count", "fare_per_seat", "total_fare",
	"status", "payment_id", "last_payment_error", "travel_date", "departure_time", "arrival_time", "created_at", "updated_at"}

func TestGetTicketScansNullableColumns(t *testing.T) {
	db, mock := newMock(t)
	created := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM tickets WHERE id").WithArgs("t1").
		WillReturnRows(sqlmock.NewRows(ticketCols).AddRow("t1", "BK-1", "u1", "b1", "", "A", "B", 2, 10, 20,
			"PENDING", "", "", "", "N/A", "N/A", created, created))

	tk, err := TicketRepository{DB: db}.GetByID(context.Background(), "t1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if tk.Status != models.TicketPending || tk.TotalFare != 20 || tk.PaymentID != "" {
		t.Fatalf("unexpected ticket %+v", tk)
	}
}
