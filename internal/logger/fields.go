package logger

import "go.uber.org/zap"

func RequestID(v string) zap.Field { return zap.String("request_id", v) }
func UserID(v string) zap.Field    { return zap.String("user_id", v) }
func Actor(v string) zap.Field     { return zap.String("actor", v) }
func Op(v string) zap.Field        { return zap.String("op", v) }
func Action(v string) zap.Field    { return zap.String("action", v) }
func Pattern(v string) zap.Field   { return zap.String("pattern", v) }
func Key(v string) zap.Field       { return zap.String("key", v) }
func Count(v int) zap.Field        { return zap.Int("count", v) }
func Err(err error) zap.Field      { return zap.Error(err) }
