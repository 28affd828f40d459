package branch_capacity

import (
	"context"
	"time"

	"github.com/lumispa/spa-core/internal/service/capacity/models"
)

type CapacityService interface {
	GetBranchCapacity(ctx context.Context, branchID int64, date time.Time) (*models.BranchCapacityResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
