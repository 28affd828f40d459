package staff_utilization

import (
	"context"
	"time"

	"github.com/lumispa/spa-core/internal/service/capacity/models"
)

type CapacityService interface {
	GetStaffUtilization(ctx context.Context, staffID int64, from, to time.Time) (*models.StaffUtilizationResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
