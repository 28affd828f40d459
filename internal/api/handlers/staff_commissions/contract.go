package staff_commissions

import (
	"context"
	"time"

	"github.com/lumispa/spa-core/internal/service/commissions/models"
)

type CommissionsService interface {
	GetStaffCommissions(ctx context.Context, staffID int64, from, to time.Time) (*models.CommissionListResponse, error)
	GetPendingCommissions(ctx context.Context, staffID int64) (*models.CommissionListResponse, error)
	GetTotalEarnings(ctx context.Context, staffID int64, from, to time.Time) (float64, error)
	GetCommissionSummary(ctx context.Context, staffID int64, from, to time.Time) (*models.CommissionSummaryResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
