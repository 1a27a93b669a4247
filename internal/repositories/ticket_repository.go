package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	intconfig "busbooking/internal/config"
	intdb "busbooking/internal/db"
	"busbooking/internal/domain"
	"busbooking/internal/domain/models"
)

type TicketRepository struct {
	DB *sql.DB
}

func (r TicketRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const ticketColumns = `id, booking_id, user_id, bus_id, schedule_id, from_stop, to_stop, seat_count, fare_per_seat, total_fare,
	status, COALESCE(payment_id,''), COALESCE(last_payment_error,''), travel_date, departure_time, arrival_time,
	created_at, updated_at`

func scanTicket(row rowScanner) (models.Ticket, error) {
	var t models.Ticket
	err := row.Scan(
		&t.ID, &t.BookingID, &t.UserID, &t.BusID, &t.ScheduleID, &t.FromStop, &t.ToStop,
		&t.SeatCount, &t.FarePerSeat, &t.TotalFare,
		&t.Status, &t.PaymentID, &t.LastPaymentError,
		&t.TravelDate, &t.DepartureTime, &t.ArrivalTime,
		&t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

func (r TicketRepository) Create(ctx context.Context, t models.Ticket) error {
	_, err := r.db().ExecContext(ctx, `
		INSERT INTO tickets (id, booking_id, user_id, bus_id, schedule_id, from_stop, to_stop, seat_count, fare_per_seat, total_fare,
			status, payment_id, last_payment_error, travel_date, departure_time, arrival_time, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		t.ID, t.BookingID, t.UserID, t.BusID, t.ScheduleID, t.FromStop, t.ToStop, t.SeatCount, t.FarePerSeat, t.TotalFare,
		t.Status, intdb.NullIfEmpty(t.PaymentID), intdb.NullIfEmpty(t.LastPaymentError),
		t.TravelDate, t.DepartureTime, t.ArrivalTime, t.CreatedAt, t.UpdatedAt,
	)
	return err
}

func (r TicketRepository) GetByID(ctx context.Context, id string) (models.Ticket, error) {
	t, err := scanTicket(r.db().QueryRowContext(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id=? LIMIT 1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Ticket{}, domain.NotFoundError{Resource: "ticket", Err: err}
		}
		return models.Ticket{}, err
	}
	return t, nil
}

// List returns tickets matching f, newest first.
func (r TicketRepository) List(ctx context.Context, f models.TicketFilter) ([]models.Ticket, error) {
	where, args := ticketWhere(f)
	query := `SELECT ` + ticketColumns + ` FROM tickets` + where + ` ORDER BY created_at DESC`
	if f.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, f.Offset)
	}
	return r.list(ctx, query, args...)
}

// Count ignores Limit and Offset.
func (r TicketRepository) Count(ctx context.Context, f models.TicketFilter) (int, error) {
	where, args := ticketWhere(f)
	var n int
	err := r.db().QueryRowContext(ctx, `SELECT COUNT(*) FROM tickets`+where, args...).Scan(&n)
	return n, err
}

func ticketWhere(f models.TicketFilter) (string, []any) {
	conds := []string{}
	args := []any{}
	if f.UserID != "" {
		conds = append(conds, "user_id=?")
		args = append(args, f.UserID)
	}
	if f.Status != "" {
		conds = append(conds, "status=?")
		args = append(args, f.Status)
	}
	if f.BusID != "" {
		conds = append(conds, "bus_id=?")
		args = append(args, f.BusID)
	}
	if f.RouteID != "" {
		conds = append(conds, "bus_id IN (SELECT id FROM buses WHERE route_id=?)")
		args = append(args, f.RouteID)
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListPendingBefore returns PENDING tickets created before cutoff, oldest first.
func (r TicketRepository) ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Ticket, error) {
	return r.list(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE status=? AND created_at<? ORDER BY created_at ASC LIMIT ?`,
		models.TicketPending, cutoff, limit)
}

func (r TicketRepository) list(ctx context.Context, query string, args ...any) ([]models.Ticket, error) {
	rows, err := r.db().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Ticket{}
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return out, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// PaidSeats sums seats held by PAID tickets on the same run.
func (r TicketRepository) PaidSeats(ctx context.Context, busID, travelDate, scheduleID string) (int, error) {
	var n int
	err := r.db().QueryRowContext(ctx, `
		SELECT COALESCE(SUM(seat_count),0)
		FROM tickets
		WHERE bus_id=? AND travel_date=? AND schedule_id=? AND status=?
	`, busID, travelDate, scheduleID, models.TicketPaid).Scan(&n)
	return n, err
}

// Update persists a transition computed by the caller. The write only lands when the row
// still has fromStatus, so a concurrent transition surfaces as a conflict.
func (r TicketRepository) Update(ctx context.Context, t models.Ticket, fromStatus models.TicketStatus) error {
	res, err := r.db().ExecContext(ctx, `
		UPDATE tickets
		SET seat_count=?, total_fare=?, status=?, payment_id=?, last_payment_error=?, updated_at=?
		WHERE id=? AND status=?
	`, t.SeatCount, t.TotalFare, t.Status, intdb.NullIfEmpty(t.PaymentID), intdb.NullIfEmpty(t.LastPaymentError), t.UpdatedAt,
		t.ID, fromStatus)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ConflictError{Resource: "ticket", Msg: "ticket " + t.ID + " is no longer " + string(fromStatus)}
	}
	return nil
}

// MarkPaid writes the PAID transition after re-checking capacity inside a transaction.
// The bus row is locked so concurrent payments for the same bus serialize here.
func (r TicketRepository) MarkPaid(ctx context.Context, t models.Ticket) (err error) {
	tx, err := r.db().BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var capacity int
	if err = tx.QueryRowContext(ctx, `SELECT capacity FROM buses WHERE id=? FOR UPDATE`, t.BusID).Scan(&capacity); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = domain.NotFoundError{Resource: "bus", Err: err}
		}
		return err
	}

	var paid int
	if err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(seat_count),0)
		FROM tickets
		WHERE bus_id=? AND travel_date=? AND schedule_id=? AND status=? AND id<>?
	`, t.BusID, t.TravelDate, t.ScheduleID, models.TicketPaid, t.ID).Scan(&paid); err != nil {
		return err
	}
	if paid+t.SeatCount > capacity {
		available := capacity - paid
		if available < 0 {
			available = 0
		}
		err = domain.CapacityExceededError{Requested: t.SeatCount, Available: available}
		return err
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE tickets
		SET status=?, payment_id=?, last_payment_error=NULL, updated_at=?
		WHERE id=? AND status=? AND seat_count=?
	`, models.TicketPaid, t.PaymentID, t.UpdatedAt, t.ID, models.TicketPending, t.SeatCount)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		err = domain.ConflictError{Resource: "ticket", Msg: "ticket " + t.ID + " changed since it was read, retry"}
		return err
	}
	return tx.Commit()
}
