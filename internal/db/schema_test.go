package db

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestEnsureSchemaCreatesOnlyMissingTables(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer sqlDB.Close()

	for _, tbl := range tables {
		if tbl.name == "tickets" {
			mock.ExpectQuery("information_schema\\.tables").WithArgs(tbl.name).
				WillReturnRows(sqlmock.NewRows([]string{"table_name"}))
			mock.ExpectExec("CREATE TABLE IF NOT EXISTS tickets").
				WillReturnResult(sqlmock.NewResult(0, 0))
			continue
		}
		mock.ExpectQuery("information_schema\\.tables").WithArgs(tbl.name).
			WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow(tbl.name))
	}

	if err := EnsureSchema(context.Background(), sqlDB); err != nil {
		t.Fatalf("EnsureSchema returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEnsureSchemaAddsMissingColumns(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer sqlDB.Close()

	for _, tbl := range tables {
		mock.ExpectQuery("information_schema\\.tables").WithArgs(tbl.name).
			WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow(tbl.name))
	}
	mock.ExpectQuery("information_schema\\.columns").WithArgs("tickets", "last_payment_error").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow("last_payment_error"))
	mock.ExpectQuery("information_schema\\.columns").WithArgs("tickets", "schedule_id").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}))
	mock.ExpectExec("ALTER TABLE tickets ADD COLUMN schedule_id").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := EnsureSchema(context.Background(), sqlDB); err != nil {
		t.Fatalf("EnsureSchema returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestNullIfEmpty(t *testing.T) {
	if NullIfEmpty("") != nil {
		t.Fatalf("empty string should map to nil")
	}
	if NullIfEmpty("x") != "x" {
		t.Fatalf("non-empty string should pass through")
	}
}
