package models

import "time"

// DateLayout is the calendar-day format used in cache keys, URLs and the
// daily_readings table.
const DateLayout = "2006-01-02"

// Reading is one user's horoscope for one calendar day.
type Reading struct {
	UserID      string    `json:"user_id"`
	Date        string    `json:"date"`
	Sign        string    `json:"sign"`
	Headline    string    `json:"headline"`
	Body        string    `json:"body"`
	LuckyNumber int       `json:"lucky_number"`
	Mood        string    `json:"mood"`
	GeneratedAt time.Time `json:"generated_at"`
}
