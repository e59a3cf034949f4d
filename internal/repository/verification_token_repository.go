package repository

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"time"

	"horoscope/internal/db"
	"horoscope/internal/models"
)

// VerificationTokenRepository stores tokens by the SHA-256 of their value.
// Callers always pass and receive the raw token; only its digest is persisted.
type VerificationTokenRepository interface {
	Create(ctx context.Context, token *models.VerificationToken) error
	// GetValid looks the token up by exact value and returns it only if
	// expires > now. Unknown and expired tokens both yield db.ErrNotFound.
	GetValid(ctx context.Context, token string, now time.Time) (*models.VerificationToken, error)
}

type verificationTokenRepository struct {
	db *sql.DB
}

func NewVerificationTokenRepository(db *sql.DB) VerificationTokenRepository {
	return &verificationTokenRepository{db: db}
}

// HashToken is the digest stored in verification_tokens.token.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func (r *verificationTokenRepository) Create(ctx context.Context, token *models.VerificationToken) error {
	query := `
		INSERT INTO verification_tokens (identifier, token, expires)
		VALUES ($1, $2, $3)
	`
	_, err := r.db.ExecContext(ctx, query, token.Identifier, HashToken(token.Token), token.Expires)
	return db.MapErr(err)
}

func (r *verificationTokenRepository) GetValid(ctx context.Context, token string, now time.Time) (*models.VerificationToken, error) {
	query := `
		SELECT identifier, expires
		FROM verification_tokens
		WHERE token = $1
		AND expires > $2
	`
	t := models.VerificationToken{Token: token}
	if err := r.db.QueryRowContext(ctx, query, HashToken(token), now).Scan(&t.Identifier, &t.Expires); err != nil {
		return nil, db.MapErr(err)
	}
	return &t, nil
}
