package repository

import (
	"context"
	"database/sql"
	"time"

	"horoscope/internal/db"
	"horoscope/internal/models"
)

type SessionRepository interface {
	Create(ctx context.Context, s *models.Session) error
	// GetValid returns the session if it exists and has not expired at now.
	GetValid(ctx context.Context, id string, now time.Time) (*models.Session, error)
	Delete(ctx context.Context, id string) error
}

type sessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, s *models.Session) error {
	query := `
		INSERT INTO sessions (id, user_id, user_agent, ip, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query, s.ID, s.UserID, s.UserAgent, s.IP, s.CreatedAt, s.ExpiresAt)
	return db.MapErr(err)
}

func (r *sessionRepository) GetValid(ctx context.Context, id string, now time.Time) (*models.Session, error) {
	query := `
		SELECT id, user_id, user_agent, ip, created_at, expires_at
		FROM sessions
		WHERE id = $1 AND expires_at > $2
	`
	var s models.Session
	err := r.db.QueryRowContext(ctx, query, id, now).Scan(&s.ID, &s.UserID, &s.UserAgent, &s.IP, &s.CreatedAt, &s.ExpiresAt)
	if err != nil {
		return nil, db.MapErr(err)
	}
	return &s, nil
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}
