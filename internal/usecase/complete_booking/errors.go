package complete_booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("complete_booking: booking not found")

	// ErrNotInProgress возвращается, когда бронирование не в статусе in_progress
	ErrNotInProgress = errors.New("complete_booking: booking is not in progress")

	// ErrPaymentNotValid возвращается, когда платеж бронирования в терминальном
	// неуспешном статусе (failed / refunded) - завершение услуги невозможно
	ErrPaymentNotValid = errors.New("complete_booking: booking payment is not valid")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("complete_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("complete_booking: internal error")
)
