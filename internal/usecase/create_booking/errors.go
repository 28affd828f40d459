package create_booking

import "errors"

var (
	// ErrInvalidDate возвращается при дате бронирования в прошлом
	ErrInvalidDate = errors.New("create_booking: invalid booking date")

	// ErrInvalidTimeRange возвращается, когда start_time >= end_time
	ErrInvalidTimeRange = errors.New("create_booking: invalid time range")

	// ErrStaffNotAvailable возвращается, когда у мастера нет расписания на дату
	// или слот выходит за рабочее окно / пересекается с перерывом
	ErrStaffNotAvailable = errors.New("create_booking: staff is not available for this slot")

	// ErrSlotConflict возвращается, когда слот мастера уже занят активным бронированием
	ErrSlotConflict = errors.New("create_booking: slot conflicts with an existing booking")

	// ErrDuplicateBooking возвращается, когда клиент уже держит этот слот
	ErrDuplicateBooking = errors.New("create_booking: duplicate booking for this slot")

	// ErrInvalidPaymentMethod возвращается при неизвестном способе оплаты
	ErrInvalidPaymentMethod = errors.New("create_booking: invalid payment method")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
