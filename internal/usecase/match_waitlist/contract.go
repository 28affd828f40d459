package match_waitlist

import (
	"context"
	"time"

	"github.com/lumispa/spa-core/internal/domain"
)

// WaitlistRepository интерфейс репозитория листа ожидания
type WaitlistRepository interface {
	GetPendingByBranch(ctx context.Context, branchID, serviceID int64) ([]*domain.WaitlistEntry, error)
	MarkNotified(ctx context.Context, id int64, expiresAt time.Time) error
	UpdatePriorityScore(ctx context.Context, id int64, score int) error
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
