package cacheadmin

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"horoscope/internal/apperr"
	"horoscope/internal/audit"
	"horoscope/internal/logger"
	"horoscope/internal/metrics"
	"horoscope/internal/models"
	"horoscope/internal/readingcache"
)

// Cache is the set of reading cache operations the admin surface drives.
// *readingcache.Cache implements it.
type Cache interface {
	Stats() readingcache.Stats
	ResetStats()
	Health(ctx context.Context) readingcache.Health
	UserDebug(ctx context.Context, userID string) (readingcache.UserDebug, error)
	InvalidateUser(ctx context.Context, userID string, dryRun bool) (readingcache.InvalidateResult, error)
	CleanupOld(ctx context.Context, maxAgeDays int, dryRun bool) (readingcache.CleanupResult, error)
	Warm(ctx context.Context, userID string, days int) (readingcache.WarmResult, error)
	Refresh(ctx context.Context, userID, date string, force bool) (readingcache.RefreshResult, error)
	EmergencyFlush(ctx context.Context, pattern string) (readingcache.FlushResult, error)
}

type Dispatcher struct {
	cache   Cache
	sink    audit.Sink
	metrics *metrics.Metrics
	now     func() time.Time
}

type Option func(*Dispatcher)

// WithClock overrides the time source used for audit timestamps.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

// NewDispatcher wires the admin surface. sink and m may be nil.
func NewDispatcher(cache Cache, sink audit.Sink, m *metrics.Metrics, opts ...Option) *Dispatcher {
	if sink == nil {
		sink = audit.LogSink{}
	}
	d := &Dispatcher{
		cache:   cache,
		sink:    sink,
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type Performance struct {
	HitRate    float64 `json:"hitRate"`
	Efficiency float64 `json:"efficiency"`
	Lookups    int64   `json:"lookups"`
	ErrorRate  float64 `json:"errorRate"`
	Uptime     string  `json:"uptime"`
}

type StatsResponse struct {
	Stats       readingcache.Stats      `json:"stats"`
	Health      readingcache.Health     `json:"health"`
	Performance Performance             `json:"performance"`
	UserDebug   *readingcache.UserDebug `json:"userDebug,omitempty"`
}

// Stats reports the aggregate counters and health. Per-user debug data is
// included only when userID is set and debug is true.
func (d *Dispatcher) Stats(ctx context.Context, userID string, debug bool) (*StatsResponse, error) {
	s := d.cache.Stats()
	resp := &StatsResponse{
		Stats:  s,
		Health: d.cache.Health(ctx),
		Performance: Performance{
			HitRate:    s.HitRate,
			Efficiency: s.Efficiency,
			Lookups:    s.Lookups,
			Uptime:     d.now().Sub(s.Since).Truncate(time.Second).String(),
		},
	}
	if s.Lookups > 0 {
		resp.Performance.ErrorRate = float64(s.Errors) / float64(s.Lookups)
	}

	if userID != "" && debug {
		ud, err := d.cache.UserDebug(ctx, userID)
		if err != nil {
			return nil, mapCacheErr(err)
		}
		resp.UserDebug = &ud
	}
	return resp, nil
}

type ActionResponse struct {
	audit.Entry
	Success bool `json:"success"`
	Result  any  `json:"result"`
}

// Execute runs cmd against exactly one cache operation and returns its result
// with the audit envelope.
func (d *Dispatcher) Execute(ctx context.Context, actor string, cmd Command) (*ActionResponse, error) {
	result, err := cmd.run(ctx, d.cache)
	if err != nil {
		return nil, mapCacheErr(err)
	}

	entry := audit.Entry{
		Action:     cmd.Action(),
		ExecutedBy: actor,
		Timestamp:  d.now(),
	}
	dry := false
	if supported, enabled := cmd.DryRun(); supported {
		dry = enabled
		entry.DryRun = &dry
	}
	d.record(ctx, entry)
	d.metrics.CacheAdminAction(cmd.Action(), dry)

	return &ActionResponse{Entry: entry, Success: true, Result: result}, nil
}

type ResetResponse struct {
	audit.Entry
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ResetStats zeroes the aggregate counters when confirm is set.
func (d *Dispatcher) ResetStats(ctx context.Context, actor string, confirm bool) (*ResetResponse, error) {
	if !confirm {
		return nil, apperr.ErrConfirmationRequired.WithMessage("Add ?confirm=true to reset cache statistics")
	}
	d.cache.ResetStats()

	entry := audit.Entry{Action: ActionResetStats, ExecutedBy: actor, Timestamp: d.now()}
	d.record(ctx, entry)
	d.metrics.CacheAdminAction(ActionResetStats, false)

	return &ResetResponse{Entry: entry, Success: true, Message: "Cache statistics reset"}, nil
}

type FlushResponse struct {
	audit.Entry
	Success bool                     `json:"success"`
	Warning string                   `json:"warning"`
	Result  readingcache.FlushResult `json:"result"`
}

// EmergencyFlush deletes every cache key matching req.Pattern. It requires
// the emergency_flush operation tag and an explicit confirm.
func (d *Dispatcher) EmergencyFlush(ctx context.Context, actor string, req models.EmergencyFlushRequest) (*FlushResponse, error) {
	if req.Operation != OperationEmergencyFlush {
		if req.Operation == "" {
			return nil, apperr.MissingParam("operation")
		}
		return nil, apperr.InvalidAction(req.Operation)
	}
	if !req.Confirm {
		return nil, apperr.ErrConfirmationRequired.WithMessage("Emergency flush requires confirm: true")
	}
	pattern := req.Pattern
	if pattern == "" {
		pattern = readingcache.DefaultPattern
	}
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, invalidField("pattern", "Pattern is not a valid glob")
	}

	logger.From(ctx).Warn("emergency cache flush requested",
		logger.Actor(actor),
		logger.Pattern(pattern),
	)
	res, err := d.cache.EmergencyFlush(ctx, pattern)
	if err != nil {
		return nil, mapCacheErr(err)
	}

	entry := audit.Entry{Operation: OperationEmergencyFlush, ExecutedBy: actor, Timestamp: d.now()}
	d.record(ctx, entry)
	d.metrics.CacheAdminAction(OperationEmergencyFlush, false)

	return &FlushResponse{
		Entry:   entry,
		Success: true,
		Warning: fmt.Sprintf("Emergency flush removed %d cache entries matching %q", res.Deleted, pattern),
		Result:  res,
	}, nil
}

func (d *Dispatcher) record(ctx context.Context, e audit.Entry) {
	if err := d.sink.Record(ctx, e); err != nil {
		logger.From(ctx).Error("audit record failed",
			logger.Action(e.Name()),
			logger.Actor(e.ExecutedBy),
			logger.Err(err),
		)
	}
}

func mapCacheErr(err error) error {
	switch {
	case errors.Is(err, readingcache.ErrUserNotFound):
		return apperr.ErrUserNotFound
	case errors.Is(err, readingcache.ErrNoBirthData):
		return apperr.ErrValidationFailed.WithMessage("User has not completed onboarding")
	case errors.Is(err, readingcache.ErrInvalidDate):
		return invalidField("date", "must be a date in YYYY-MM-DD format")
	case errors.Is(err, readingcache.ErrInvalidDays):
		return apperr.ErrValidationFailed.WithMessage("Day count out of range")
	default:
		return fmt.Errorf("cache admin: %w", err)
	}
}
