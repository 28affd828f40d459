package bookings

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking not found")

	// ErrPaymentRequired возвращается при попытке подтвердить бронирование
	// без завершённого платежа
	ErrPaymentRequired = errors.New("booking has no completed payment")

	// ErrCannotConfirm возвращается, когда бронирование не в статусе pending
	ErrCannotConfirm = errors.New("booking cannot be confirmed")

	// ErrCannotStart возвращается, когда услуга не может быть начата
	// (бронирование не в статусе confirmed)
	ErrCannotStart = errors.New("service cannot be started")

	// ErrCannotMarkNoShow возвращается, когда неявка не может быть зафиксирована
	ErrCannotMarkNoShow = errors.New("booking cannot be marked as no-show")

	// ErrCannotRefund возвращается, когда возврат невозможен: платежа нет,
	// он не завершён или сумма возврата превышает исходную
	ErrCannotRefund = errors.New("payment cannot be refunded")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
