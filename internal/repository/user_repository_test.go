package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"horoscope/internal/db"
	"horoscope/internal/models"
)

var userRowColumns = []string{"id", "email", "name", "password_hash", "email_verified", "birth_date", "onboarding_completed_at", "created_at"}

func TestGetByEmailScansNullableColumns(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer conn.Close()

	birth := time.Date(1990, 3, 25, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM users WHERE LOWER\(email\) = LOWER\(\$1\)`).
		WithArgs("U@x.com").
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow("u1", "u@x.com", "U", "hash", nil, birth, time.Now().UTC(), time.Now().UTC()))

	u, err := NewUserRepository(conn).GetByEmail(context.Background(), "U@x.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if u.EmailVerified != nil {
		t.Fatalf("expected nil email_verified got %v", u.EmailVerified)
	}
	if !u.IsOnboardingComplete() {
		t.Fatalf("expected onboarding complete")
	}
}

func TestGetByIDNotFound(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer conn.Close()

	mock.ExpectQuery(`FROM users WHERE id = \$1`).WithArgs("missing").WillReturnRows(sqlmock.NewRows(userRowColumns))

	if _, err := NewUserRepository(conn).GetByID(context.Background(), "missing"); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer conn.Close()

	mock.ExpectQuery("INSERT INTO users").WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

	err = NewUserRepository(conn).Create(context.Background(), &models.User{ID: "u1", Email: "a@b.com", CreatedAt: time.Now().UTC()})
	if !errors.Is(err, db.ErrConflict) {
		t.Fatalf("expected ErrConflict got %v", err)
	}
}

func TestCompleteOnboardingMissingUser(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer conn.Close()

	mock.ExpectExec("UPDATE users").WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewUserRepository(conn).CompleteOnboarding(context.Background(), "u1", time.Now(), "")
	if !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}
}
