package match_waitlist

import (
	"context"

	matchWaitlist "github.com/lumispa/spa-core/internal/usecase/match_waitlist"
)

type MatchWaitlistUseCase interface {
	Execute(ctx context.Context, req *matchWaitlist.Request) (*matchWaitlist.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
