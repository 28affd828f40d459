package cancel_booking

import "time"

// Request модель запроса на отмену бронирования
type Request struct {
	BookingID int64  // ID бронирования
	Reason    string // Причина отмены
}

// Response модель ответа с результатом отмены
type Response struct {
	BookingID     int64     // ID бронирования
	Status        string    // Итоговый статус (cancelled)
	PaymentFailed bool      // Был ли pending платеж переведён в failed
	CancelledAt   time.Time // Время отмены

	// Количество записей листа ожидания, уведомлённых об освободившемся слоте
	WaitlistNotified int
}
