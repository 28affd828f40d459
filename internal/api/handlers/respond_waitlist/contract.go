package respond_waitlist

import (
	"context"
	"time"
)

type WaitlistService interface {
	Respond(ctx context.Context, entryID int64, accepted bool) error
	ExtendExpiry(ctx context.Context, entryID int64, extension time.Duration) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
