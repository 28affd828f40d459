package create_booking

import (
	"fmt"
	"time"

	"github.com/lumispa/spa-core/internal/domain"
	"github.com/lumispa/spa-core/pkg/types"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.BranchID <= 0 {
		return fmt.Errorf("%w: branchID must be positive", ErrInvalidInput)
	}

	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}

	if req.ClientID <= 0 {
		return fmt.Errorf("%w: clientID must be positive", ErrInvalidInput)
	}

	if req.StaffID != nil && *req.StaffID <= 0 {
		return fmt.Errorf("%w: staffID must be positive", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if req.StartTime.IsZero() || req.EndTime.IsZero() {
		return fmt.Errorf("%w: startTime and endTime are required", ErrInvalidInput)
	}

	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid startTime format: %v", ErrInvalidInput, err)
	}
	if err := req.EndTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid endTime format: %v", ErrInvalidInput, err)
	}

	// Жёсткий инвариант: начало строго раньше конца
	if !req.StartTime.IsBefore(req.EndTime) {
		return ErrInvalidTimeRange
	}

	if req.TotalAmount < 0 {
		return fmt.Errorf("%w: totalAmount must not be negative", ErrInvalidInput)
	}

	if req.PaymentMethod != nil && !domain.ValidPaymentMethod(*req.PaymentMethod) {
		return fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, *req.PaymentMethod)
	}

	return nil
}

// validateDate проверяет, что дата записи не в прошлом
func validateDate(bookingDate, now time.Time) error {
	dateOnly := time.Date(bookingDate.Year(), bookingDate.Month(), bookingDate.Day(), 0, 0, 0, 0, bookingDate.Location())
	nowOnly := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if dateOnly.Before(nowOnly) {
		return ErrInvalidDate
	}
	return nil
}

// hasStaffConflict проверяет, что слот мастера свободен от активных бронирований
// Пересечение по строгим неравенствам - граничные случаи конфликтом не считаются
func hasStaffConflict(staffID int64, start, end types.TimeString, bookings []*domain.Booking) bool {
	for _, booking := range bookings {
		if booking.StaffID == nil || *booking.StaffID != staffID {
			continue
		}
		if !booking.IsActive() {
			continue
		}
		if booking.StartTime.IsBefore(end) && booking.EndTime.IsAfter(start) {
			return true
		}
	}
	return false
}

// hasClientDuplicate проверяет, что клиент ещё не держит пересекающийся слот
func hasClientDuplicate(clientID int64, start, end types.TimeString, bookings []*domain.Booking) bool {
	for _, booking := range bookings {
		if booking.ClientID != clientID {
			continue
		}
		if !booking.IsActive() {
			continue
		}
		if booking.StartTime.IsBefore(end) && booking.EndTime.IsAfter(start) {
			return true
		}
	}
	return false
}
