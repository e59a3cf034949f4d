package readingcache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"horoscope/internal/db"
	"horoscope/internal/models"
)

var fixedNow = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

// go-cache runs one janitor goroutine per Memory backend.
var ignoreJanitor = goleak.IgnoreTopFunction("github.com/patrickmn/go-cache.(*janitor).Run")

type fakeUsers map[string]*models.User

func (f fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, db.ErrNotFound
}

type fakeReadings struct {
	mu   sync.Mutex
	rows map[string]*models.Reading
	ups  int
}

func newFakeReadings() *fakeReadings {
	return &fakeReadings{rows: map[string]*models.Reading{}}
}

func (f *fakeReadings) Upsert(_ context.Context, r *models.Reading) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *r
	f.rows[r.UserID+"|"+r.Date] = &cp
	f.ups++
	return nil
}

func (f *fakeReadings) Get(_ context.Context, userID, date string) (*models.Reading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.rows[userID+"|"+date]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, db.ErrNotFound
}

type downBackend struct{ *Memory }

func (downBackend) Ping(context.Context) error { return errors.New("connection refused") }

func testUsers() fakeUsers {
	birth := time.Date(1990, time.March, 25, 0, 0, 0, 0, time.UTC)
	return fakeUsers{
		"u1":      {ID: "u1", Email: "u1@example.com", BirthDate: &birth},
		"u2":      {ID: "u2", Email: "u2@example.com", BirthDate: &birth},
		"nobirth": {ID: "nobirth", Email: "n@example.com"},
	}
}

func newTestCache(t *testing.T, backend Backend, readings *fakeReadings) *Cache {
	t.Helper()
	if backend == nil {
		backend = NewMemory(time.Hour)
	}
	opts := Options{
		Backend: backend,
		Users:   testUsers(),
		TTL:     time.Hour,
		Now:     func() time.Time { return fixedNow },
	}
	if readings != nil {
		opts.Readings = readings
	}
	return New(opts)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "reading:u1:2026-10-19", Key("u1", "2026-10-19"))
}

func TestGetMissThenHit(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t, nil, nil)

	first, err := c.Get(ctx, "u1", "2026-10-19")
	require.NoError(t, err)
	assert.Equal(t, "Aries", first.Sign)

	second, err := c.Get(ctx, "u1", "2026-10-19")
	require.NoError(t, err)
	assert.Equal(t, first.Headline, second.Headline)

	s := c.Stats()
	assert.EqualValues(t, 1, s.Hits)
	assert.EqualValues(t, 1, s.Misses)
	assert.EqualValues(t, 1, s.Sets)
	assert.EqualValues(t, 2, s.Lookups)
	assert.InDelta(t, 0.5, s.HitRate, 1e-9)
	assert.Equal(t, 50.0, s.Efficiency)
}

func TestGetPersistsAndReusesStoredReading(t *testing.T) {
	ctx := context.Background()
	readings := newFakeReadings()
	stored := &models.Reading{UserID: "u1", Date: "2026-10-18", Sign: "Aries", Headline: "stored"}
	require.NoError(t, readings.Upsert(ctx, stored))

	c := newTestCache(t, nil, readings)

	rd, err := c.Get(ctx, "u1", "2026-10-18")
	require.NoError(t, err)
	assert.Equal(t, "stored", rd.Headline)

	_, err = c.Get(ctx, "u1", "2026-10-19")
	require.NoError(t, err)
	assert.Equal(t, 2, readings.ups)
}

func TestGetErrors(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t, nil, nil)

	_, err := c.Get(ctx, "u1", "19/10/2026")
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = c.Get(ctx, "ghost", "2026-10-19")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = c.Get(ctx, "nobirth", "2026-10-19")
	assert.ErrorIs(t, err, ErrNoBirthData)
}

func TestStatsEmpty(t *testing.T) {
	s := newTestCache(t, nil, nil).Stats()
	assert.Zero(t, s.HitRate)
	assert.Zero(t, s.Efficiency)
	assert.Equal(t, fixedNow, s.Since)
}

func TestEfficiencyRounding(t *testing.T) {
	c := newTestCache(t, nil, nil)
	c.hits.Store(2)
	c.misses.Store(1)
	assert.Equal(t, 66.67, c.Stats().Efficiency)
}

func TestResetStats(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t, nil, nil)
	_, err := c.Get(ctx, "u1", "2026-10-19")
	require.NoError(t, err)
	_, err = c.Get(ctx, "u1", "2026-10-19")
	require.NoError(t, err)

	c.ResetStats()

	s := c.Stats()
	assert.Zero(t, s.Hits)
	assert.Zero(t, s.Misses)
	assert.Zero(t, s.Sets)
	assert.Zero(t, s.Lookups)

	d, err := c.UserDebug(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, d.LastAccess)
	assert.Equal(t, 1, d.Entries, "entries survive a stats reset")
}

func TestHealth(t *testing.T) {
	ctx := context.Background()

	c := newTestCache(t, nil, nil)
	h := c.Health(ctx)
	assert.Equal(t, StatusHealthy, h.Status)
	assert.Equal(t, "memory", h.Backend.Driver)

	c.misses.Store(150)
	c.hits.Store(10)
	assert.Equal(t, StatusDegraded, c.Health(ctx).Status)

	down := newTestCache(t, downBackend{NewMemory(time.Hour)}, nil)
	h = down.Health(ctx)
	assert.Equal(t, StatusUnhealthy, h.Status)
	assert.Contains(t, h.Error, "refused")
}

func TestUserDebug(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t, nil, nil)
	for _, d := range []string{"2026-10-18", "2026-10-19"} {
		_, err := c.Get(ctx, "u1", d)
		require.NoError(t, err)
	}
	_, err := c.Get(ctx, "u1", "2026-10-19")
	require.NoError(t, err)
	_, err = c.Get(ctx, "u2", "2026-10-19")
	require.NoError(t, err)

	d, err := c.UserDebug(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"reading:u1:2026-10-18", "reading:u1:2026-10-19"}, d.Keys)
	assert.EqualValues(t, 1, d.Hits)
	assert.EqualValues(t, 2, d.Misses)
	require.NotNil(t, d.LastAccess)
	assert.Equal(t, fixedNow, *d.LastAccess)

	empty, err := c.UserDebug(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty.Keys)
	assert.NotNil(t, empty.Keys)
}

func TestInvalidateUser(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory(time.Hour)
	c := newTestCache(t, mem, nil)
	for _, k := range []string{Key("u1", "2026-10-18"), Key("u1", "2026-10-19"), Key("u2", "2026-10-19")} {
		require.NoError(t, mem.Set(ctx, k, []byte("{}"), 0))
	}

	dry, err := c.InvalidateUser(ctx, "u1", true)
	require.NoError(t, err)
	assert.Len(t, dry.Keys, 2)
	assert.Zero(t, dry.Deleted)
	keys, _ := mem.Keys(ctx, DefaultPattern)
	assert.Len(t, keys, 3, "dry run must not delete")

	res, err := c.InvalidateUser(ctx, "u1", false)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Deleted)
	keys, _ = mem.Keys(ctx, DefaultPattern)
	assert.Equal(t, []string{Key("u2", "2026-10-19")}, keys)
	assert.EqualValues(t, 2, c.Stats().Invalidations)
}

func TestInvalidateUserEscapesPattern(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory(time.Hour)
	c := newTestCache(t, mem, nil)
	require.NoError(t, mem.Set(ctx, Key("u1", "2026-10-19"), []byte("{}"), 0))

	res, err := c.InvalidateUser(ctx, "*", false)
	require.NoError(t, err)
	assert.Zero(t, res.Deleted)
}

func TestCleanupOld(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory(time.Hour)
	c := newTestCache(t, mem, nil)
	for _, k := range []string{
		Key("u1", "2026-09-01"),
		Key("u1", "2026-09-19"),
		Key("u2", "2026-09-18"),
		Key("u2", "2026-10-19"),
		"reading:u2:not-a-date",
	} {
		require.NoError(t, mem.Set(ctx, k, []byte("{}"), 0))
	}

	dry, err := c.CleanupOld(ctx, 30, true)
	require.NoError(t, err)
	assert.Equal(t, "2026-09-19", dry.Cutoff)
	assert.Equal(t, 5, dry.Scanned)
	assert.ElementsMatch(t, []string{Key("u1", "2026-09-01"), Key("u2", "2026-09-18")}, dry.Keys)
	assert.Zero(t, dry.Deleted)

	res, err := c.CleanupOld(ctx, 30, false)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Deleted)
	keys, _ := mem.Keys(ctx, DefaultPattern)
	assert.Len(t, keys, 3)

	_, err = c.CleanupOld(ctx, -1, false)
	assert.ErrorIs(t, err, ErrInvalidDays)
}

func TestWarm(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent(), ignoreJanitor)

	ctx := context.Background()
	mem := NewMemory(time.Hour)
	readings := newFakeReadings()
	c := newTestCache(t, mem, readings)
	require.NoError(t, mem.Set(ctx, Key("u1", "2026-10-19"), []byte("{}"), 0))

	res, err := c.Warm(ctx, "u1", 7)
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-10-19"}, res.AlreadyCached)
	assert.Equal(t, []string{
		"2026-10-20", "2026-10-21", "2026-10-22",
		"2026-10-23", "2026-10-24", "2026-10-25",
	}, res.Warmed)
	assert.Equal(t, 6, readings.ups)

	keys, _ := mem.Keys(ctx, userPattern("u1"))
	assert.Len(t, keys, 7)
	assert.Zero(t, c.Stats().Lookups, "warming does not count as lookups")
}

func TestWarmErrors(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent(), ignoreJanitor)

	ctx := context.Background()
	c := newTestCache(t, nil, nil)

	_, err := c.Warm(ctx, "ghost", 3)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = c.Warm(ctx, "u1", 0)
	assert.ErrorIs(t, err, ErrInvalidDays)

	_, err = c.Warm(ctx, "nobirth", 3)
	assert.ErrorIs(t, err, ErrNoBirthData)
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory(time.Hour)
	readings := newFakeReadings()
	c := newTestCache(t, mem, readings)
	require.NoError(t, readings.Upsert(ctx, &models.Reading{UserID: "u1", Date: "2026-10-19", Headline: "stale"}))

	first, err := c.Refresh(ctx, "u1", "2026-10-19", false)
	require.NoError(t, err)
	assert.True(t, first.Refreshed)
	assert.Equal(t, "stale", first.Reading.Headline)

	kept, err := c.Refresh(ctx, "u1", "2026-10-19", false)
	require.NoError(t, err)
	assert.False(t, kept.Refreshed)
	assert.Equal(t, "stale", kept.Reading.Headline)

	forced, err := c.Refresh(ctx, "u1", "2026-10-19", true)
	require.NoError(t, err)
	assert.True(t, forced.Refreshed)
	assert.NotEqual(t, "stale", forced.Reading.Headline)

	stored, err := readings.Get(ctx, "u1", "2026-10-19")
	require.NoError(t, err)
	assert.Equal(t, forced.Reading.Headline, stored.Headline)

	_, err = c.Refresh(ctx, "u1", "tomorrow", true)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestEmergencyFlush(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory(time.Hour)
	c := newTestCache(t, mem, nil)
	for _, k := range []string{Key("u1", "2026-10-19"), Key("u2", "2026-10-19"), "session:abc"} {
		require.NoError(t, mem.Set(ctx, k, []byte("{}"), 0))
	}

	res, err := c.EmergencyFlush(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultPattern, res.Pattern)
	assert.Equal(t, 2, res.Deleted)

	_, err = mem.Get(ctx, "session:abc")
	assert.NoError(t, err, "keys outside the pattern survive")
}

func TestGeneratorDeterministic(t *testing.T) {
	u := testUsers()["u1"]
	g := ZodiacGenerator{Now: func() time.Time { return fixedNow }}
	a, err := g.Generate(context.Background(), u, fixedNow)
	require.NoError(t, err)
	b, err := g.Generate(context.Background(), u, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.True(t, a.LuckyNumber >= 1 && a.LuckyNumber <= 99)
}

func TestSunSign(t *testing.T) {
	cases := map[string]string{
		"2000-01-05": "Capricorn",
		"2000-01-20": "Aquarius",
		"2000-03-21": "Aries",
		"2000-07-22": "Cancer",
		"2000-07-23": "Leo",
		"2000-12-21": "Sagittarius",
		"2000-12-31": "Capricorn",
	}
	for in, want := range cases {
		d, err := time.Parse(models.DateLayout, in)
		require.NoError(t, err)
		assert.Equal(t, want, SunSign(d), in)
	}
}
