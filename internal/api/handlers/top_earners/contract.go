package top_earners

import (
	"context"
	"time"

	"github.com/lumispa/spa-core/internal/service/commissions/models"
)

type CommissionsService interface {
	GetTopEarners(ctx context.Context, branchID int64, from, to time.Time, limit uint64) (*models.TopEarnersResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
