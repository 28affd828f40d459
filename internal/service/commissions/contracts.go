package commissions

import (
	"context"
	"time"

	"github.com/lumispa/spa-core/internal/domain"
)

// CommissionRepository интерфейс репозитория комиссий
type CommissionRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.StaffCommission, error)
	GetByStaffAndPeriod(ctx context.Context, staffID int64, from, to time.Time) ([]*domain.StaffCommission, error)
	GetPendingByStaff(ctx context.Context, staffID int64) ([]*domain.StaffCommission, error)
	SumEarnings(ctx context.Context, staffID int64, from, to time.Time) (float64, error)
	Summary(ctx context.Context, staffID int64, from, to time.Time) (*domain.CommissionSummary, error)
	TopEarners(ctx context.Context, branchID int64, from, to time.Time, limit uint64) ([]*domain.StaffEarnings, error)
	Approve(ctx context.Context, id int64) error
	Reject(ctx context.Context, id int64) error
	MarkPaid(ctx context.Context, id int64) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
