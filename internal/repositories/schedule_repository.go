package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	intconfig "busbooking/internal/config"
	"busbooking/internal/domain"
	"busbooking/internal/domain/models"
)

type ScheduleRepository struct {
	DB *sql.DB
}

func (r ScheduleRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const scheduleColumns = `id, bus_id, days_active, stop_timings, frequency_min`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSchedule(row rowScanner) (models.Schedule, error) {
	var (
		s          models.Schedule
		days, tims []byte
		freq       sql.NullInt64
	)
	if err := row.Scan(&s.ID, &s.BusID, &days, &tims, &freq); err != nil {
		return models.Schedule{}, err
	}
	if err := json.Unmarshal(days, &s.DaysActive); err != nil {
		return models.Schedule{}, domain.InternalError{Msg: "corrupt days_active for schedule " + s.ID, Err: err}
	}
	if err := json.Unmarshal(tims, &s.StopTimings); err != nil {
		return models.Schedule{}, domain.InternalError{Msg: "corrupt stop_timings for schedule " + s.ID, Err: err}
	}
	if freq.Valid {
		f := int(freq.Int64)
		s.FrequencyMinutes = &f
	}
	return s, nil
}

func encodeSchedule(s models.Schedule) (days, timings []byte, freq any, err error) {
	if days, err = json.Marshal(s.DaysActive); err != nil {
		return nil, nil, nil, err
	}
	if timings, err = json.Marshal(s.StopTimings); err != nil {
		return nil, nil, nil, err
	}
	if s.FrequencyMinutes != nil {
		freq = *s.FrequencyMinutes
	}
	return days, timings, freq, nil
}

func (r ScheduleRepository) ListByBus(ctx context.Context, busID string) ([]models.Schedule, error) {
	rows, err := r.db().QueryContext(ctx, `SELECT `+scheduleColumns+` FROM schedules WHERE bus_id=? ORDER BY created_at ASC, id ASC`, busID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Schedule{}
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return out, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r ScheduleRepository) GetByID(ctx context.Context, id string) (models.Schedule, error) {
	row := r.db().QueryRowContext(ctx, `SELECT `+scheduleColumns+` FROM schedules WHERE id=? LIMIT 1`, id)
	s, err := scanSchedule(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Schedule{}, domain.NotFoundError{Resource: "schedule", Err: err}
		}
		return models.Schedule{}, err
	}
	return s, nil
}

func (r ScheduleRepository) Create(ctx context.Context, s models.Schedule) error {
	days, timings, freq, err := encodeSchedule(s)
	if err != nil {
		return err
	}
	_, err = r.db().ExecContext(ctx, `
		INSERT INTO schedules (id, bus_id, days_active, stop_timings, frequency_min)
		VALUES (?, ?, ?, ?, ?)
	`, s.ID, s.BusID, days, timings, freq)
	return err
}

func (r ScheduleRepository) Update(ctx context.Context, s models.Schedule) error {
	days, timings, freq, err := encodeSchedule(s)
	if err != nil {
		return err
	}
	// MySQL reports 0 affected rows for a no-op update, so existence is checked by the caller.
	_, err = r.db().ExecContext(ctx, `
		UPDATE schedules
		SET bus_id=?, days_active=?, stop_timings=?, frequency_min=?, updated_at=NOW()
		WHERE id=?
	`, s.BusID, days, timings, freq, s.ID)
	return err
}

func (r ScheduleRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db().ExecContext(ctx, `DELETE FROM schedules WHERE id=?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res, "schedule")
}

func requireAffected(res sql.Result, resource string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFoundError{Resource: resource}
	}
	return nil
}
