package domain

import (
	"time"

	"github.com/lumispa/spa-core/pkg/types"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusConfirmed  BookingStatus = "confirmed"
	StatusInProgress BookingStatus = "in_progress"
	StatusCompleted  BookingStatus = "completed"
	StatusCancelled  BookingStatus = "cancelled"
	StatusNoShow     BookingStatus = "no_show"
)

// Booking represents a scheduled appointment for a service at a branch
type Booking struct {
	ID        int64
	Reference string // Уникальный код бронирования (BK-XXXXXXXX)
	BranchID  int64
	ServiceID int64
	ClientID  int64
	StaffID   *int64 // nil = мастер ещё не назначен

	AppointmentDate time.Time
	StartTime       types.TimeString
	EndTime         types.TimeString

	Status        BookingStatus
	PaymentStatus PaymentStatus
	TotalAmount   float64

	Notes              *string
	CancellationReason *string

	ConfirmedAt        *time.Time
	CancelledAt        *time.Time
	ServiceStartedAt   *time.Time
	ServiceCompletedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the booking still occupies its slot
func (b *Booking) IsActive() bool {
	return b.Status == StatusPending ||
		b.Status == StatusConfirmed ||
		b.Status == StatusInProgress
}

// IsTerminal returns true if the booking has reached a final state
func (b *Booking) IsTerminal() bool {
	return b.Status == StatusCompleted ||
		b.Status == StatusCancelled ||
		b.Status == StatusNoShow
}

// CanBeConfirmed returns true if the booking may transition to confirmed
func (b *Booking) CanBeConfirmed() bool {
	return b.Status == StatusPending
}

// CanBeStarted returns true if the service may be started
func (b *Booking) CanBeStarted() bool {
	return b.Status == StatusConfirmed
}

// CanBeCompleted returns true if the service may be completed.
// The payment gate is checked separately, see HasValidPayment
func (b *Booking) CanBeCompleted() bool {
	return b.Status == StatusInProgress
}

// HasValidPayment returns true if the booking itself reports a completed payment.
// A completed row in the payment ledger satisfies the gate as well - callers that
// have the ledger row at hand should accept either
func (b *Booking) HasValidPayment() bool {
	return b.PaymentStatus == PaymentCompleted
}

// CanBeCancelled returns true if a client-initiated cancellation is allowed:
// the booking is still pending/confirmed and the appointment is at least
// CancellationNoticeHours away
func (b *Booking) CanBeCancelled(now time.Time) bool {
	if b.Status != StatusPending && b.Status != StatusConfirmed {
		return false
	}
	return b.HoursUntilAppointment(now) >= CancellationNoticeHours
}

// AppointmentStart returns the appointment date combined with the start time
func (b *Booking) AppointmentStart() time.Time {
	minutes := 0
	if m, err := types.TimeString("00:00").MinutesUntil(b.StartTime); err == nil {
		minutes = m
	}
	d := b.AppointmentDate
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location()).
		Add(time.Duration(minutes) * time.Minute)
}

// HoursUntilAppointment returns the number of full hours between now and the
// appointment start. Negative if the appointment is in the past
func (b *Booking) HoursUntilAppointment(now time.Time) float64 {
	return b.AppointmentStart().Sub(now).Hours()
}

// DurationMinutes returns the booked duration (end - start)
func (b *Booking) DurationMinutes() int {
	m, err := b.StartTime.MinutesUntil(b.EndTime)
	if err != nil || m < 0 {
		return 0
	}
	return m
}

// ValidateTimeRange checks the start_time < end_time invariant
func (b *Booking) ValidateTimeRange() bool {
	return b.StartTime.IsBefore(b.EndTime)
}

// BranchBookingsFilter фильтр для выборки бронирований филиала
type BranchBookingsFilter struct {
	BranchID        int64           // Обязательный параметр
	StaffID         *int64          // Фильтр по мастеру (опционально)
	ClientID        *int64          // Фильтр по клиенту (опционально)
	StartDate       *time.Time      // Начало периода (опционально)
	EndDate         *time.Time      // Конец периода (опционально)
	Status          *BookingStatus  // Фильтр по конкретному статусу (опционально)
	Statuses        []BookingStatus // Фильтр по набору статусов (опционально)
	IncludeInactive bool            // Включать ли отменённые и no-show
}
