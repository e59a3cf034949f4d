package repository

import (
	"context"
	"database/sql"
	"time"

	"horoscope/internal/db"
	"horoscope/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	CompleteOnboarding(ctx context.Context, id string, birthDate time.Time, name string) error
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, name, password_hash, email_verified, birth_date, onboarding_completed_at, created_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var (
		u         models.User
		verified  sql.NullTime
		birthDate sql.NullTime
		onboarded sql.NullTime
	)
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &verified, &birthDate, &onboarded, &u.CreatedAt); err != nil {
		return nil, db.MapErr(err)
	}
	if verified.Valid {
		u.EmailVerified = &verified.Time
	}
	if birthDate.Valid {
		u.BirthDate = &birthDate.Time
	}
	if onboarded.Valid {
		u.OnboardingCompletedAt = &onboarded.Time
	}
	return &u, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, name, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, query, user.ID, user.Email, user.Name, user.PasswordHash, user.CreatedAt).Scan(&user.CreatedAt)
	return db.MapErr(err)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *userRepository) CompleteOnboarding(ctx context.Context, id string, birthDate time.Time, name string) error {
	query := `
		UPDATE users
		SET birth_date = $1,
			name = COALESCE(NULLIF($2, ''), name),
			onboarding_completed_at = COALESCE(onboarding_completed_at, NOW())
		WHERE id = $3
	`
	res, err := r.db.ExecContext(ctx, query, birthDate, name, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return db.ErrNotFound
	}
	return nil
}
