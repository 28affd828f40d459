package waitlist

import (
	"context"
	"time"

	"github.com/lumispa/spa-core/internal/domain"
)

// WaitlistRepository интерфейс репозитория листа ожидания
type WaitlistRepository interface {
	Create(ctx context.Context, entry *domain.WaitlistEntry) (*domain.WaitlistEntry, error)
	GetByID(ctx context.Context, id int64) (*domain.WaitlistEntry, error)
	MarkConverted(ctx context.Context, id int64) error
	MarkDeclined(ctx context.Context, id int64) error
	ExtendExpiry(ctx context.Context, id int64, expiresAt time.Time) error
	ExpireOverdue(ctx context.Context, now time.Time) ([]int64, error)
}

// BookingRepository интерфейс репозитория бронирований
// Используется для подсчета лояльности клиента при создании записи
type BookingRepository interface {
	CountByClient(ctx context.Context, clientID int64) (int, error)
}

// TimeProvider интерфейс получения текущего времени (для тестируемости)
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
