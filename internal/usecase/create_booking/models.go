package create_booking

import (
	"time"

	"github.com/lumispa/spa-core/internal/domain"
	"github.com/lumispa/spa-core/pkg/types"
)

// Request модель запроса на создание бронирования
type Request struct {
	BranchID  int64            // ID филиала
	ServiceID int64            // ID услуги
	ClientID  int64            // ID клиента
	StaffID   *int64           // ID мастера (опционально, nil = назначат позже)
	Date      time.Time        // Дата записи (без времени)
	StartTime types.TimeString // Время начала (например, "10:00")
	EndTime   types.TimeString // Время конца (например, "11:00")

	TotalAmount   float64               // Стоимость услуги
	PaymentMethod *domain.PaymentMethod // Способ оплаты (опционально, создаст pending платеж)
	Notes         *string               // Дополнительные заметки (опционально)
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID        int64  // ID созданного бронирования
	Reference string // Уникальный код бронирования (BK-XXXXXXXX)
	BranchID  int64  // ID филиала
	ServiceID int64  // ID услуги
	ClientID  int64  // ID клиента
	StaffID   *int64 // ID мастера

	AppointmentDate time.Time        // Дата записи
	StartTime       types.TimeString // Время начала
	EndTime         types.TimeString // Время конца

	Status        string  // Статус бронирования
	PaymentStatus string  // Статус оплаты
	TotalAmount   float64 // Стоимость
	PaymentID     *int64  // ID созданного pending платежа (если запрошен)

	Notes *string // Заметки

	CreatedAt time.Time // Время создания
	UpdatedAt time.Time // Время обновления
}
