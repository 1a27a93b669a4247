package db

import (
	"context"
	"fmt"
)

type tableDDL struct {
	name string
	ddl  string
}

var tables = []tableDDL{
	{"routes", `
CREATE TABLE IF NOT EXISTS routes (
	id VARCHAR(64) PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	city VARCHAR(120) NOT NULL DEFAULT '',
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
	{"stops", `
CREATE TABLE IF NOT EXISTS stops (
	id VARCHAR(64) NOT NULL,
	route_id VARCHAR(64) NOT NULL,
	name VARCHAR(255) NOT NULL,
	stop_order INT NOT NULL,
	lat DOUBLE NOT NULL DEFAULT 0,
	lng DOUBLE NOT NULL DEFAULT 0,
	PRIMARY KEY (route_id, id),
	KEY idx_route_order (route_id, stop_order)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
	{"buses", `
CREATE TABLE IF NOT EXISTS buses (
	id VARCHAR(64) PRIMARY KEY,
	bus_number VARCHAR(64) NOT NULL,
	category VARCHAR(64) NOT NULL DEFAULT '',
	bus_type VARCHAR(16) NOT NULL,
	capacity INT NOT NULL,
	status VARCHAR(16) NOT NULL DEFAULT 'ACTIVE',
	route_id VARCHAR(64) NOT NULL,
	KEY idx_route (route_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
	{"schedules", `
CREATE TABLE IF NOT EXISTS schedules (
	id VARCHAR(64) PRIMARY KEY,
	bus_id VARCHAR(64) NOT NULL,
	days_active JSON NOT NULL,
	stop_timings JSON NOT NULL,
	frequency_min INT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	KEY idx_bus (bus_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
	{"tickets", `
CREATE TABLE IF NOT EXISTS tickets (
	id VARCHAR(64) PRIMARY KEY,
	booking_id VARCHAR(64) NOT NULL,
	user_id VARCHAR(64) NOT NULL,
	bus_id VARCHAR(64) NOT NULL,
	schedule_id VARCHAR(64) NOT NULL DEFAULT '',
	from_stop VARCHAR(255) NOT NULL,
	to_stop VARCHAR(255) NOT NULL,
	seat_count INT NOT NULL,
	fare_per_seat BIGINT NOT NULL,
	total_fare BIGINT NOT NULL,
	status VARCHAR(16) NOT NULL,
	payment_id VARCHAR(128) NULL,
	last_payment_error VARCHAR(255) NULL,
	travel_date VARCHAR(10) NOT NULL DEFAULT '',
	departure_time VARCHAR(8) NOT NULL,
	arrival_time VARCHAR(8) NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	UNIQUE KEY uniq_booking (booking_id),
	KEY idx_trip (bus_id, travel_date, schedule_id, status),
	KEY idx_user (user_id),
	KEY idx_status_created (status, created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
}

type SchemaDB interface {
	QueryRower
	Execer
}

// columnUpgrades are added to tables created by older releases.
var columnUpgrades = []columnDDL{
	{"tickets", "last_payment_error", "ALTER TABLE tickets ADD COLUMN last_payment_error VARCHAR(255) NULL AFTER payment_id"},
	{"tickets", "schedule_id", "ALTER TABLE tickets ADD COLUMN schedule_id VARCHAR(64) NOT NULL DEFAULT '' AFTER bus_id"},
}

type columnDDL struct {
	table  string
	column string
	ddl    string
}

// EnsureSchema creates missing tables and adds missing columns to existing ones.
// Nothing is ever dropped or altered in place.
func EnsureSchema(ctx context.Context, db SchemaDB) error {
	if db == nil {
		return fmt.Errorf("db not available")
	}
	created := map[string]bool{}
	for _, t := range tables {
		if HasTable(ctx, db, t.name) {
			continue
		}
		if _, err := db.ExecContext(ctx, t.ddl); err != nil {
			return fmt.Errorf("create table %s: %w", t.name, err)
		}
		created[t.name] = true
	}
	for _, c := range columnUpgrades {
		if created[c.table] || HasColumn(ctx, db, c.table, c.column) {
			continue
		}
		if _, err := db.ExecContext(ctx, c.ddl); err != nil {
			return fmt.Errorf("add column %s.%s: %w", c.table, c.column, err)
		}
	}
	return nil
}
