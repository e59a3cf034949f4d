// Package readingcache caches daily horoscope readings in front of the
// generator and the daily_readings table, and exposes the statistics and
// lifecycle operations used by the admin API.
package readingcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"horoscope/internal/db"
	"horoscope/internal/logger"
	"horoscope/internal/metrics"
	"horoscope/internal/models"
	"horoscope/internal/repository"
)

const (
	KeyPrefix      = "reading:"
	DefaultPattern = "reading:*"

	// Below this many lookups the hit rate says nothing about health.
	healthMinLookups = 100
	healthMinHitRate = 0.5

	warmConcurrency = 4
	maxWarmDays     = 31
)

var (
	ErrUserNotFound = errors.New("readingcache: user not found")
	ErrInvalidDate  = errors.New("readingcache: invalid date")
	ErrInvalidDays  = errors.New("readingcache: days out of range")
)

// UserSource resolves the user a reading is generated for.
type UserSource interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

type Options struct {
	Backend   Backend
	Users     UserSource
	Readings  repository.ReadingRepository // optional
	Generator Generator
	TTL       time.Duration
	Now       func() time.Time
	Metrics   *metrics.Metrics
}

type Cache struct {
	backend   Backend
	users     UserSource
	readings  repository.ReadingRepository
	generator Generator
	ttl       time.Duration
	now       func() time.Time
	metrics   *metrics.Metrics

	hits          atomic.Int64
	misses        atomic.Int64
	sets          atomic.Int64
	invalidations atomic.Int64
	errs          atomic.Int64

	mu      sync.Mutex
	since   time.Time
	perUser map[string]*userCounters
}

type userCounters struct {
	hits       int64
	misses     int64
	lastAccess time.Time
}

func New(opts Options) *Cache {
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	gen := opts.Generator
	if gen == nil {
		gen = ZodiacGenerator{Now: now}
	}
	return &Cache{
		backend:   opts.Backend,
		users:     opts.Users,
		readings:  opts.Readings,
		generator: gen,
		ttl:       opts.TTL,
		now:       now,
		metrics:   opts.Metrics,
		since:     now(),
		perUser:   make(map[string]*userCounters),
	}
}

// Key returns the cache key of a user's reading for a day (YYYY-MM-DD).
func Key(userID, date string) string {
	return KeyPrefix + userID + ":" + date
}

func userPattern(userID string) string {
	return KeyPrefix + escapeGlob(userID) + ":*"
}

// escapeGlob quotes glob metacharacters so a user id only matches itself.
func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// dateOf extracts the trailing YYYY-MM-DD of a reading key.
func dateOf(key string) (time.Time, bool) {
	i := strings.LastIndexByte(key, ':')
	if i < 0 {
		return time.Time{}, false
	}
	t, err := time.Parse(models.DateLayout, key[i+1:])
	return t, err == nil
}

func (c *Cache) today() time.Time {
	n := c.now().UTC()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// Get returns the reading for userID on date, generating and caching it on a
// miss. Backend read failures are counted and served from the generator.
func (c *Cache) Get(ctx context.Context, userID, date string) (*models.Reading, error) {
	day, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return nil, ErrInvalidDate
	}
	key := Key(userID, date)

	raw, err := c.backend.Get(ctx, key)
	switch {
	case err == nil:
		var rd models.Reading
		if jerr := json.Unmarshal(raw, &rd); jerr == nil {
			c.hits.Add(1)
			c.metrics.CacheLookup("hit")
			c.touch(userID, true)
			return &rd, nil
		}
		// Undecodable entry: treat as a miss and overwrite it below.
		c.misses.Add(1)
		c.metrics.CacheLookup("miss")
	case errors.Is(err, ErrMiss):
		c.misses.Add(1)
		c.metrics.CacheLookup("miss")
	default:
		c.errs.Add(1)
		c.metrics.CacheLookup("error")
		logger.From(ctx).Warn("reading cache read failed", logger.Key(key), logger.Err(err))
	}
	c.touch(userID, false)

	rd, err := c.load(ctx, userID, day, false)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, rd)
	return rd, nil
}

// load returns the persisted reading, or generates and persists a new one.
// With regenerate set the persisted row is ignored.
func (c *Cache) load(ctx context.Context, userID string, day time.Time, regenerate bool) (*models.Reading, error) {
	date := day.Format(models.DateLayout)
	if c.readings != nil && !regenerate {
		rd, err := c.readings.Get(ctx, userID, date)
		if err == nil {
			return rd, nil
		}
		if !errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("load reading: %w", err)
		}
	}

	u, err := c.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	rd, err := c.generator.Generate(ctx, u, day)
	if err != nil {
		return nil, err
	}
	if c.readings != nil {
		if err := c.readings.Upsert(ctx, rd); err != nil {
			return nil, fmt.Errorf("persist reading: %w", err)
		}
	}
	return rd, nil
}

func (c *Cache) user(ctx context.Context, userID string) (*models.User, error) {
	u, err := c.users.GetByID(ctx, userID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

// store writes rd under key. A failed write is counted but not returned;
// the caller already has the reading.
func (c *Cache) store(ctx context.Context, key string, rd *models.Reading) bool {
	b, err := json.Marshal(rd)
	if err == nil {
		err = c.backend.Set(ctx, key, b, c.ttl)
	}
	if err != nil {
		c.errs.Add(1)
		logger.From(ctx).Warn("reading cache write failed", logger.Key(key), logger.Err(err))
		return false
	}
	c.sets.Add(1)
	c.metrics.CacheWrite()
	return true
}

func (c *Cache) touch(userID string, hit bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	uc, ok := c.perUser[userID]
	if !ok {
		uc = &userCounters{}
		c.perUser[userID] = uc
	}
	if hit {
		uc.hits++
	} else {
		uc.misses++
	}
	uc.lastAccess = c.now()
}

type Stats struct {
	Hits          int64     `json:"hits"`
	Misses        int64     `json:"misses"`
	Sets          int64     `json:"sets"`
	Invalidations int64     `json:"invalidations"`
	Errors        int64     `json:"errors"`
	Lookups       int64     `json:"lookups"`
	HitRate       float64   `json:"hitRate"`
	Efficiency    float64   `json:"efficiency"`
	Since         time.Time `json:"since"`
}

// Stats returns a snapshot of the aggregate counters.
func (c *Cache) Stats() Stats {
	s := Stats{
		Hits:          c.hits.Load(),
		Misses:        c.misses.Load(),
		Sets:          c.sets.Load(),
		Invalidations: c.invalidations.Load(),
		Errors:        c.errs.Load(),
	}
	s.Lookups = s.Hits + s.Misses
	if s.Lookups > 0 {
		s.HitRate = float64(s.Hits) / float64(s.Lookups)
	}
	s.Efficiency = math.Round(s.HitRate*10000) / 100

	c.mu.Lock()
	s.Since = c.since
	c.mu.Unlock()
	return s
}

// ResetStats zeroes the aggregate and per-user counters. Cached entries are
// untouched.
func (c *Cache) ResetStats() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.sets.Store(0)
	c.invalidations.Store(0)
	c.errs.Store(0)

	c.mu.Lock()
	c.since = c.now()
	c.perUser = make(map[string]*userCounters)
	c.mu.Unlock()
}

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

type Health struct {
	Status    string      `json:"status"`
	Backend   BackendInfo `json:"backend"`
	HitRate   float64     `json:"hitRate"`
	Lookups   int64       `json:"lookups"`
	Error     string      `json:"error,omitempty"`
	CheckedAt time.Time   `json:"checkedAt"`
}

func (c *Cache) Health(ctx context.Context) Health {
	s := c.Stats()
	h := Health{
		Status:    StatusHealthy,
		HitRate:   s.HitRate,
		Lookups:   s.Lookups,
		CheckedAt: c.now(),
	}
	if err := c.backend.Ping(ctx); err != nil {
		h.Status = StatusUnhealthy
		h.Error = err.Error()
		return h
	}
	info, err := c.backend.Info(ctx)
	if err != nil {
		logger.From(ctx).Warn("reading cache info failed", logger.Err(err))
	}
	h.Backend = info
	if s.Lookups >= healthMinLookups && s.HitRate < healthMinHitRate {
		h.Status = StatusDegraded
	}
	return h
}

type UserDebug struct {
	UserID     string     `json:"userId"`
	Keys       []string   `json:"keys"`
	Entries    int        `json:"entries"`
	Hits       int64      `json:"hits"`
	Misses     int64      `json:"misses"`
	LastAccess *time.Time `json:"lastAccess,omitempty"`
}

// UserDebug reports the cached keys and lookup counters of one user.
func (c *Cache) UserDebug(ctx context.Context, userID string) (UserDebug, error) {
	keys, err := c.backend.Keys(ctx, userPattern(userID))
	if err != nil {
		return UserDebug{}, err
	}
	d := UserDebug{UserID: userID, Keys: keys, Entries: len(keys)}
	if d.Keys == nil {
		d.Keys = []string{}
	}

	c.mu.Lock()
	if uc, ok := c.perUser[userID]; ok {
		d.Hits = uc.hits
		d.Misses = uc.misses
		la := uc.lastAccess
		d.LastAccess = &la
	}
	c.mu.Unlock()
	return d, nil
}

type InvalidateResult struct {
	UserID  string   `json:"userId"`
	Keys    []string `json:"keys"`
	Deleted int      `json:"deleted"`
	DryRun  bool     `json:"dryRun"`
}

// InvalidateUser removes every cached reading of userID. With dryRun it only
// reports the keys it would remove.
func (c *Cache) InvalidateUser(ctx context.Context, userID string, dryRun bool) (InvalidateResult, error) {
	keys, err := c.backend.Keys(ctx, userPattern(userID))
	if err != nil {
		return InvalidateResult{}, err
	}
	res := InvalidateResult{UserID: userID, Keys: nonNil(keys), DryRun: dryRun}
	if dryRun || len(keys) == 0 {
		return res, nil
	}
	n, err := c.backend.Delete(ctx, keys...)
	res.Deleted = n
	c.evicted("invalidate", n)
	return res, err
}

type CleanupResult struct {
	MaxAgeDays int      `json:"maxAgeDays"`
	Cutoff     string   `json:"cutoff"`
	Scanned    int      `json:"scanned"`
	Keys       []string `json:"keys"`
	Deleted    int      `json:"deleted"`
	DryRun     bool     `json:"dryRun"`
}

// CleanupOld removes readings dated more than maxAgeDays before today. Keys
// whose date cannot be parsed are left alone.
func (c *Cache) CleanupOld(ctx context.Context, maxAgeDays int, dryRun bool) (CleanupResult, error) {
	if maxAgeDays < 0 {
		return CleanupResult{}, ErrInvalidDays
	}
	cutoff := c.today().AddDate(0, 0, -maxAgeDays)
	keys, err := c.backend.Keys(ctx, DefaultPattern)
	if err != nil {
		return CleanupResult{}, err
	}

	res := CleanupResult{
		MaxAgeDays: maxAgeDays,
		Cutoff:     cutoff.Format(models.DateLayout),
		Scanned:    len(keys),
		Keys:       []string{},
		DryRun:     dryRun,
	}
	for _, k := range keys {
		if d, ok := dateOf(k); ok && d.Before(cutoff) {
			res.Keys = append(res.Keys, k)
		}
	}
	if dryRun || len(res.Keys) == 0 {
		return res, nil
	}
	n, err := c.backend.Delete(ctx, res.Keys...)
	res.Deleted = n
	c.evicted("cleanup", n)
	return res, err
}

type WarmResult struct {
	UserID        string   `json:"userId"`
	Days          int      `json:"days"`
	Warmed        []string `json:"warmed"`
	AlreadyCached []string `json:"alreadyCached"`
}

// Warm populates the cache for userID from today forward for days days.
func (c *Cache) Warm(ctx context.Context, userID string, days int) (WarmResult, error) {
	if days < 1 || days > maxWarmDays {
		return WarmResult{}, ErrInvalidDays
	}
	if _, err := c.user(ctx, userID); err != nil {
		return WarmResult{}, err
	}

	start := c.today()
	warmed := make([]bool, days)
	cached := make([]bool, days)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(warmConcurrency)
	for i := range days {
		day := start.AddDate(0, 0, i)
		g.Go(func() error {
			key := Key(userID, day.Format(models.DateLayout))
			_, err := c.backend.Get(gctx, key)
			if err == nil {
				cached[i] = true
				return nil
			}
			if !errors.Is(err, ErrMiss) {
				return err
			}
			rd, err := c.load(gctx, userID, day, false)
			if err != nil {
				return err
			}
			warmed[i] = c.store(gctx, key, rd)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return WarmResult{}, err
	}

	res := WarmResult{UserID: userID, Days: days, Warmed: []string{}, AlreadyCached: []string{}}
	for i := range days {
		date := start.AddDate(0, 0, i).Format(models.DateLayout)
		switch {
		case cached[i]:
			res.AlreadyCached = append(res.AlreadyCached, date)
		case warmed[i]:
			res.Warmed = append(res.Warmed, date)
		}
	}
	return res, nil
}

type RefreshResult struct {
	UserID    string          `json:"userId"`
	Date      string          `json:"date"`
	Key       string          `json:"key"`
	Refreshed bool            `json:"refreshed"`
	Reading   *models.Reading `json:"reading"`
}

// Refresh recomputes one reading. Without force an existing entry is kept and
// returned as is.
func (c *Cache) Refresh(ctx context.Context, userID, date string, force bool) (RefreshResult, error) {
	day, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return RefreshResult{}, ErrInvalidDate
	}
	key := Key(userID, date)
	res := RefreshResult{UserID: userID, Date: date, Key: key}

	if !force {
		raw, err := c.backend.Get(ctx, key)
		if err == nil {
			var rd models.Reading
			if json.Unmarshal(raw, &rd) == nil {
				res.Reading = &rd
				return res, nil
			}
		} else if !errors.Is(err, ErrMiss) {
			return RefreshResult{}, err
		}
	}

	rd, err := c.load(ctx, userID, day, force)
	if err != nil {
		return RefreshResult{}, err
	}
	res.Reading = rd
	res.Refreshed = c.store(ctx, key, rd)
	return res, nil
}

type FlushResult struct {
	Pattern string `json:"pattern"`
	Matched int    `json:"matched"`
	Deleted int    `json:"deleted"`
}

// EmergencyFlush deletes every key matching pattern (default reading:*).
func (c *Cache) EmergencyFlush(ctx context.Context, pattern string) (FlushResult, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	keys, err := c.backend.Keys(ctx, pattern)
	if err != nil {
		return FlushResult{Pattern: pattern}, err
	}
	res := FlushResult{Pattern: pattern, Matched: len(keys)}
	if len(keys) == 0 {
		return res, nil
	}
	n, err := c.backend.Delete(ctx, keys...)
	res.Deleted = n
	c.evicted("flush", n)
	logger.From(ctx).Info("reading cache flushed", logger.Pattern(pattern), logger.Count(n))
	return res, err
}

func (c *Cache) evicted(cause string, n int) {
	c.invalidations.Add(int64(n))
	c.metrics.CacheEvicted(cause, n)
}

// Close releases the backend.
func (c *Cache) Close() error {
	return c.backend.Close()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
