// Package audit records administrative cache operations.
package audit

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"horoscope/internal/logger"
)

// Entry is the audit envelope attached to every admin response.
type Entry struct {
	Action     string    `json:"action,omitempty"`
	Operation  string    `json:"operation,omitempty"`
	DryRun     *bool     `json:"dryRun,omitempty"`
	ExecutedBy string    `json:"executedBy"`
	Timestamp  time.Time `json:"timestamp"`
}

// Name is the action or operation the entry describes.
func (e Entry) Name() string {
	if e.Action != "" {
		return e.Action
	}
	return e.Operation
}

type Sink interface {
	Record(ctx context.Context, e Entry) error
}

// LogSink writes entries to the structured log.
type LogSink struct {
	Logger *zap.Logger
}

func (s LogSink) Record(ctx context.Context, e Entry) error {
	l := s.Logger
	if l == nil {
		l = logger.From(ctx)
	}
	fields := []zap.Field{
		logger.Action(e.Name()),
		logger.Actor(e.ExecutedBy),
		zap.Time("timestamp", e.Timestamp),
	}
	if e.DryRun != nil {
		fields = append(fields, zap.Bool("dry_run", *e.DryRun))
	}
	l.Info("cache admin audit", fields...)
	return nil
}

// MultiSink fans an entry out to every sink and joins their errors.
type MultiSink []Sink

func (m MultiSink) Record(ctx context.Context, e Entry) error {
	var errs []error
	for _, s := range m {
		if err := s.Record(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
