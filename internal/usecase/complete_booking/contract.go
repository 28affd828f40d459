package complete_booking

import (
	"context"
	"time"

	"github.com/lumispa/spa-core/internal/domain"
	"github.com/lumispa/spa-core/internal/integrations/performance"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Booking, error)
	MarkCompleted(ctx context.Context, id int64) error
	UpdatePaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus) error
}

// PaymentRepository интерфейс репозитория платежей
type PaymentRepository interface {
	GetByBookingID(ctx context.Context, bookingID int64) (*domain.Payment, error)
	Create(ctx context.Context, payment *domain.Payment) (*domain.Payment, error)
	MarkCompleted(ctx context.Context, id int64) error
}

// CommissionRepository интерфейс репозитория комиссий
type CommissionRepository interface {
	GetStructureWithHierarchy(ctx context.Context, staffID, serviceID int64) (domain.CommissionStructure, error)
	CreateIdempotent(ctx context.Context, c *domain.StaffCommission) (*domain.StaffCommission, error)
}

// PerformanceClient интерфейс клиента сервиса оценок
type PerformanceClient interface {
	GetAverageRatingWithGracefulDegradation(ctx context.Context, staffID int64) (*performance.StaffRating, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
