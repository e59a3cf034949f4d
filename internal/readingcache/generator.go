package readingcache

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"horoscope/internal/models"
)

// ErrNoBirthData is returned when a reading is requested for a user who has
// not completed onboarding.
var ErrNoBirthData = errors.New("readingcache: user has no birth date")

// Generator computes a user's reading for a day.
type Generator interface {
	Generate(ctx context.Context, u *models.User, day time.Time) (*models.Reading, error)
}

// ZodiacGenerator derives the reading from the user's sun sign and the day.
// Output is a pure function of (user id, birth date, day), so regenerating an
// entry yields the same reading.
type ZodiacGenerator struct {
	Now func() time.Time
}

func (g ZodiacGenerator) Generate(_ context.Context, u *models.User, day time.Time) (*models.Reading, error) {
	if u.BirthDate == nil {
		return nil, ErrNoBirthData
	}
	sign := SunSign(*u.BirthDate)
	date := day.Format(models.DateLayout)

	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%s|%s", u.ID, sign, date)
	seed := h.Sum64()

	now := time.Now().UTC()
	if g.Now != nil {
		now = g.Now()
	}
	return &models.Reading{
		UserID:      u.ID,
		Date:        date,
		Sign:        sign,
		Headline:    headlines[seed%uint64(len(headlines))],
		Body:        fmt.Sprintf(bodies[(seed>>8)%uint64(len(bodies))], sign),
		LuckyNumber: int((seed>>16)%99) + 1,
		Mood:        moods[(seed>>24)%uint64(len(moods))],
		GeneratedAt: now,
	}, nil
}

type signBoundary struct {
	month time.Month
	day   int
	sign  string
}

// Each entry is the first day of the sign; the year wraps at Capricorn.
var signStarts = []signBoundary{
	{time.January, 20, "Aquarius"},
	{time.February, 19, "Pisces"},
	{time.March, 21, "Aries"},
	{time.April, 20, "Taurus"},
	{time.May, 21, "Gemini"},
	{time.June, 21, "Cancer"},
	{time.July, 23, "Leo"},
	{time.August, 23, "Virgo"},
	{time.September, 23, "Libra"},
	{time.October, 23, "Scorpio"},
	{time.November, 22, "Sagittarius"},
	{time.December, 22, "Capricorn"},
}

// SunSign returns the tropical zodiac sign for a birth date.
func SunSign(birth time.Time) string {
	sign := "Capricorn"
	for _, b := range signStarts {
		if birth.Month() > b.month || (birth.Month() == b.month && birth.Day() >= b.day) {
			sign = b.sign
		}
	}
	return sign
}

var headlines = []string{
	"A door you thought was closed swings open",
	"Slow down and the answer arrives",
	"Someone close has news worth hearing",
	"Your patience is about to pay off",
	"Trust the plan you already made",
	"An old idea deserves a second look",
	"Say yes to the unexpected invitation",
	"Money matters find a calmer rhythm",
}

var bodies = []string{
	"The Moon favors careful conversations today, %s. Listen first and your point will land.",
	"Energy is high, %s, but scattered. Pick one task and finish it before noon.",
	"A practical streak serves you well, %s. Review commitments before adding new ones.",
	"Creative momentum builds through the afternoon, %s. Leave room for play.",
	"%s, relationships take center stage. A small gesture carries more weight than usual.",
	"Rest is productive today, %s. What you postpone now you will do better tomorrow.",
}

var moods = []string{"hopeful", "focused", "reflective", "bold", "calm", "curious"}
