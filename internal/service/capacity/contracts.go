package capacity

import (
	"context"
	"time"

	"github.com/lumispa/spa-core/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByStaffAndPeriod(ctx context.Context, staffID int64, from, to time.Time, statuses []domain.BookingStatus) ([]*domain.Booking, error)
	GetByBranchWithFilter(ctx context.Context, filter domain.BranchBookingsFilter) ([]*domain.Booking, error)
}

// ScheduleRepository интерфейс репозитория расписаний
type ScheduleRepository interface {
	GetByStaffAndPeriod(ctx context.Context, staffID int64, from, to time.Time) ([]*domain.StaffSchedule, error)
	GetByBranchAndDate(ctx context.Context, branchID int64, date time.Time) ([]*domain.StaffSchedule, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
