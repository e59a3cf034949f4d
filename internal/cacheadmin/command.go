// Package cacheadmin maps admin requests onto reading cache operations and
// stamps every result with an audit envelope.
package cacheadmin

import (
	"context"
	"strings"
	"time"

	"horoscope/internal/apperr"
	"horoscope/internal/models"
)

const (
	ActionInvalidateUser = "invalidate_user"
	ActionCleanupOld     = "cleanup_old"
	ActionWarmCache      = "warm_cache"
	ActionRefreshReading = "refresh_reading"
	ActionGetUserDebug   = "get_user_debug"
	ActionResetStats     = "reset_stats"

	OperationEmergencyFlush = "emergency_flush"

	DefaultMaxAgeDays = 30
	DefaultWarmDays   = 7
	MaxWarmDays       = 31
)

// Command is one admin action with its validated parameters. The concrete
// types below are the only implementations.
type Command interface {
	Action() string
	// DryRun reports whether the command supports dry runs and, if so, whether
	// this one is.
	DryRun() (supported, enabled bool)
	run(ctx context.Context, c Cache) (any, error)
}

type InvalidateUser struct {
	UserID string
	Dry    bool
}

type CleanupOld struct {
	MaxAgeDays int
	Dry        bool
}

type WarmCache struct {
	UserID string
	Days   int
}

type RefreshReading struct {
	UserID string
	Date   string
	Force  bool
}

type GetUserDebug struct {
	UserID string
}

func (InvalidateUser) Action() string { return ActionInvalidateUser }
func (CleanupOld) Action() string     { return ActionCleanupOld }
func (WarmCache) Action() string      { return ActionWarmCache }
func (RefreshReading) Action() string { return ActionRefreshReading }
func (GetUserDebug) Action() string   { return ActionGetUserDebug }

func (c InvalidateUser) DryRun() (bool, bool) { return true, c.Dry }
func (c CleanupOld) DryRun() (bool, bool)     { return true, c.Dry }
func (WarmCache) DryRun() (bool, bool)        { return false, false }
func (RefreshReading) DryRun() (bool, bool)   { return false, false }
func (GetUserDebug) DryRun() (bool, bool)     { return false, false }

func (c InvalidateUser) run(ctx context.Context, cache Cache) (any, error) {
	return cache.InvalidateUser(ctx, c.UserID, c.Dry)
}

func (c CleanupOld) run(ctx context.Context, cache Cache) (any, error) {
	return cache.CleanupOld(ctx, c.MaxAgeDays, c.Dry)
}

func (c WarmCache) run(ctx context.Context, cache Cache) (any, error) {
	return cache.Warm(ctx, c.UserID, c.Days)
}

func (c RefreshReading) run(ctx context.Context, cache Cache) (any, error) {
	return cache.Refresh(ctx, c.UserID, c.Date, c.Force)
}

func (c GetUserDebug) run(ctx context.Context, cache Cache) (any, error) {
	return cache.UserDebug(ctx, c.UserID)
}

// ParseCommand validates req for its action. Errors are MissingParam naming
// the absent field, InvalidAction for unknown tags, or ValidationFailed for
// out-of-range values.
func ParseCommand(req models.CacheActionRequest) (Command, error) {
	userID := strings.TrimSpace(req.UserID)

	switch req.Action {
	case ActionInvalidateUser:
		if userID == "" {
			return nil, apperr.MissingParam("userId")
		}
		return InvalidateUser{UserID: userID, Dry: req.DryRun}, nil

	case ActionCleanupOld:
		maxAge := DefaultMaxAgeDays
		if req.MaxAge != nil {
			maxAge = *req.MaxAge
		}
		if maxAge < 0 {
			return nil, invalidField("maxAge", "must be zero or greater")
		}
		return CleanupOld{MaxAgeDays: maxAge, Dry: req.DryRun}, nil

	case ActionWarmCache:
		if userID == "" {
			return nil, apperr.MissingParam("userId")
		}
		days := DefaultWarmDays
		if req.Days != nil {
			days = *req.Days
		}
		if days < 1 || days > MaxWarmDays {
			return nil, invalidField("days", "must be between 1 and 31")
		}
		return WarmCache{UserID: userID, Days: days}, nil

	case ActionRefreshReading:
		if userID == "" {
			return nil, apperr.MissingParam("userId")
		}
		if req.Date == "" {
			return nil, apperr.MissingParam("date")
		}
		if _, err := time.Parse(models.DateLayout, req.Date); err != nil {
			return nil, invalidField("date", "must be a date in YYYY-MM-DD format")
		}
		return RefreshReading{UserID: userID, Date: req.Date, Force: req.Force}, nil

	case ActionGetUserDebug:
		if userID == "" {
			return nil, apperr.MissingParam("userId")
		}
		return GetUserDebug{UserID: userID}, nil

	case "":
		return nil, apperr.MissingParam("action")

	default:
		return nil, apperr.InvalidAction(req.Action)
	}
}

func invalidField(field, msg string) error {
	return apperr.ErrValidationFailed.WithFields(map[string]string{field: msg})
}
