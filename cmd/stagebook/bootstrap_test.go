package main

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"stagebook/internal/app/settings"
	"stagebook/internal/models"
	"stagebook/internal/store"
)

func TestBootstrapSeedsTemplate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT to_regclass($1)`)).
		WithArgs("settings").
		WillReturnRows(sqlmock.NewRows([]string{"to_regclass"}).AddRow("settings"))
	mock.ExpectExec(regexp.QuoteMeta(`ON CONFLICT (key) DO NOTHING`)).
		WithArgs(models.MessageTemplateKey, settings.DefaultMessageTemplate).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := bootstrapSettings(context.Background(), db, store.New(db)); err != nil {
		t.Fatalf("bootstrapSettings: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBootstrapSkipsWithoutTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT to_regclass($1)`)).
		WithArgs("settings").
		WillReturnRows(sqlmock.NewRows([]string{"to_regclass"}).AddRow(nil))

	if err := bootstrapSettings(context.Background(), db, store.New(db)); err != nil {
		t.Fatalf("bootstrapSettings: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
