package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"horoscope/internal/db"
)

// ErrTokenRedeemed means the token was gone or expired by the time the reset
// transaction tried to claim it, typically because a concurrent reset won.
var ErrTokenRedeemed = errors.New("verification token already redeemed")

// ResetPasswordParams describes one password reset commit. Token is the raw
// token being redeemed; VerifiedAt doubles as the expiry cutoff.
type ResetPasswordParams struct {
	UserID       string
	Identifier   string
	Token        string
	PasswordHash string
	VerifiedAt   time.Time
}

// ResetPasswordResult reports what the reset transaction removed.
type ResetPasswordResult struct {
	TokensDeleted   int64
	SessionsRevoked int64
}

// ResetStore commits a password reset as a single transaction: claiming the
// redeemed token, the new password hash, the removal of every verification
// token for the identifier and the removal of every session of the user.
// Either all of it is visible after the call or none is. Only one transaction
// can claim a given token; the others get ErrTokenRedeemed.
type ResetStore interface {
	ResetPassword(ctx context.Context, p ResetPasswordParams) (*ResetPasswordResult, error)
}

type resetStore struct {
	db *sql.DB
}

func NewResetStore(db *sql.DB) ResetStore {
	return &resetStore{db: db}
}

func (s *resetStore) ResetPassword(ctx context.Context, p ResetPasswordParams) (*ResetPasswordResult, error) {
	res := &ResetPasswordResult{}
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		claimed, err := execCount(ctx, tx, `
			DELETE FROM verification_tokens
			WHERE token = $1 AND identifier = $2 AND expires > $3
		`, HashToken(p.Token), p.Identifier, p.VerifiedAt)
		if err != nil {
			return fmt.Errorf("claim token: %w", err)
		}
		if claimed == 0 {
			return ErrTokenRedeemed
		}

		updated, err := execCount(ctx, tx, `
			UPDATE users
			SET password_hash = $1,
				email_verified = COALESCE(email_verified, $2)
			WHERE id = $3
		`, p.PasswordHash, p.VerifiedAt, p.UserID)
		if err != nil {
			return fmt.Errorf("update password: %w", err)
		}
		if updated == 0 {
			return db.ErrNotFound
		}

		siblings, err := execCount(ctx, tx, `DELETE FROM verification_tokens WHERE identifier = $1`, p.Identifier)
		if err != nil {
			return fmt.Errorf("delete tokens: %w", err)
		}
		res.TokensDeleted = claimed + siblings

		res.SessionsRevoked, err = execCount(ctx, tx, `DELETE FROM sessions WHERE user_id = $1`, p.UserID)
		if err != nil {
			return fmt.Errorf("delete sessions: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// withTx runs fn inside a transaction, committing only if fn returns nil.
func withTx(ctx context.Context, conn *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func execCount(ctx context.Context, tx *sql.Tx, query string, args ...any) (int64, error) {
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
