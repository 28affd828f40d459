package cancel_booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("cancel_booking: booking not found")

	// ErrCannotCancel возвращается, когда бронирование не в статусе pending/confirmed
	ErrCannotCancel = errors.New("cancel_booking: booking cannot be cancelled")

	// ErrTooLateToCancel возвращается, когда до визита осталось меньше 24 часов
	ErrTooLateToCancel = errors.New("cancel_booking: too late to cancel")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("cancel_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("cancel_booking: internal error")
)
