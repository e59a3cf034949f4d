package db

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/lib/pq"
)

func TestMapErr(t *testing.T) {
	if MapErr(nil) != nil {
		t.Fatalf("expected nil")
	}
	if !errors.Is(MapErr(sql.ErrNoRows), ErrNotFound) {
		t.Fatalf("expected ErrNotFound")
	}
	if !errors.Is(MapErr(&pq.Error{Code: "23505"}), ErrConflict) {
		t.Fatalf("expected ErrConflict")
	}
	if !errors.Is(MapErr(&pq.Error{Code: "22P02", Message: `invalid input syntax for type uuid: "bogus"`}), ErrNotFound) {
		t.Fatalf("expected malformed uuid to map to ErrNotFound")
	}
	serialization := &pq.Error{Code: "40001"}
	if MapErr(serialization) != serialization {
		t.Fatalf("expected other pq errors to pass through")
	}
	other := errors.New("boom")
	if MapErr(other) != other {
		t.Fatalf("expected passthrough")
	}
}

func TestMaintenanceDSN(t *testing.T) {
	dsn, name, err := maintenanceDSN("postgres://u:p@localhost:5432/horoscope?sslmode=disable")
	if err != nil || name != "horoscope" {
		t.Fatalf("expected horoscope got %q (%v)", name, err)
	}
	if dsn != "postgres://u:p@localhost:5432/postgres?sslmode=disable" {
		t.Fatalf("unexpected maintenance url %q", dsn)
	}

	dsn, name, err = maintenanceDSN("host=localhost dbname=astro user=x")
	if err != nil || name != "astro" {
		t.Fatalf("expected astro got %q (%v)", name, err)
	}
	if dsn != "host=localhost dbname=postgres user=x" {
		t.Fatalf("unexpected maintenance conn string %q", dsn)
	}

	if _, _, err := maintenanceDSN("host=localhost user=x"); err == nil {
		t.Fatalf("expected error without dbname")
	}
}
