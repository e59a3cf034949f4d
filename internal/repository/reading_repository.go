package repository

import (
	"context"
	"database/sql"
	"time"

	"horoscope/internal/db"
	"horoscope/internal/models"
)

type ReadingRepository interface {
	Upsert(ctx context.Context, reading *models.Reading) error
	Get(ctx context.Context, userID string, date string) (*models.Reading, error)
}

type readingRepository struct {
	db *sql.DB
}

func NewReadingRepository(db *sql.DB) ReadingRepository {
	return &readingRepository{db: db}
}

func (r *readingRepository) Upsert(ctx context.Context, reading *models.Reading) error {
	query := `
		INSERT INTO daily_readings (user_id, reading_date, sign, headline, body, lucky_number, mood, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, reading_date) DO UPDATE
		SET sign = EXCLUDED.sign,
			headline = EXCLUDED.headline,
			body = EXCLUDED.body,
			lucky_number = EXCLUDED.lucky_number,
			mood = EXCLUDED.mood,
			generated_at = EXCLUDED.generated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		reading.UserID, reading.Date, reading.Sign, reading.Headline,
		reading.Body, reading.LuckyNumber, reading.Mood, reading.GeneratedAt,
	)
	return err
}

func (r *readingRepository) Get(ctx context.Context, userID string, date string) (*models.Reading, error) {
	query := `
		SELECT user_id, reading_date, sign, headline, body, lucky_number, mood, generated_at
		FROM daily_readings
		WHERE user_id = $1 AND reading_date = $2
	`
	var (
		rd  models.Reading
		day time.Time
	)
	err := r.db.QueryRowContext(ctx, query, userID, date).Scan(
		&rd.UserID, &day, &rd.Sign, &rd.Headline, &rd.Body, &rd.LuckyNumber, &rd.Mood, &rd.GeneratedAt,
	)
	if err != nil {
		return nil, db.MapErr(err)
	}
	rd.Date = day.Format(models.DateLayout)
	return &rd, nil
}
