package get_waitlist

import (
	"context"

	"github.com/lumispa/spa-core/internal/service/waitlist/models"
)

type WaitlistService interface {
	GetByID(ctx context.Context, id int64) (*models.WaitlistEntryResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
