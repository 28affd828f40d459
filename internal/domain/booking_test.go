package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lumispa/spa-core/pkg/types"
)

func TestBooking_TransitionGuards(t *testing.T) {
	tests := []struct {
		status       BookingStatus
		canConfirm   bool
		canStart     bool
		canComplete  bool
	}{
		{StatusPending, true, false, false},
		{StatusConfirmed, false, true, false},
		{StatusInProgress, false, false, true},
		{StatusCompleted, false, false, false},
		{StatusCancelled, false, false, false},
		{StatusNoShow, false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			b := &Booking{Status: tt.status}
			assert.Equal(t, tt.canConfirm, b.CanBeConfirmed())
			assert.Equal(t, tt.canStart, b.CanBeStarted())
			assert.Equal(t, tt.canComplete, b.CanBeCompleted())
		})
	}
}

func TestBooking_CanBeCancelled_NoticeWindow(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	newBooking := func(hoursAhead int, status BookingStatus) *Booking {
		appt := now.Add(time.Duration(hoursAhead) * time.Hour)
		return &Booking{
			Status:          status,
			AppointmentDate: time.Date(appt.Year(), appt.Month(), appt.Day(), 0, 0, 0, 0, time.UTC),
			StartTime:       types.NewTimeString(appt),
			EndTime:         types.TimeString("23:59"),
		}
	}

	// Ровно 23 часа до визита - отмена запрещена
	assert.False(t, newBooking(23, StatusConfirmed).CanBeCancelled(now))

	// 25 часов до визита - отмена разрешена
	assert.True(t, newBooking(25, StatusConfirmed).CanBeCancelled(now))
	assert.True(t, newBooking(25, StatusPending).CanBeCancelled(now))

	// Статусы, из которых отмена невозможна независимо от времени
	assert.False(t, newBooking(48, StatusInProgress).CanBeCancelled(now))
	assert.False(t, newBooking(48, StatusCompleted).CanBeCancelled(now))
	assert.False(t, newBooking(48, StatusCancelled).CanBeCancelled(now))
}

func TestBooking_HasValidPayment(t *testing.T) {
	assert.True(t, (&Booking{PaymentStatus: PaymentCompleted}).HasValidPayment())
	assert.False(t, (&Booking{PaymentStatus: PaymentPending}).HasValidPayment())
	assert.False(t, (&Booking{PaymentStatus: PaymentFailed}).HasValidPayment())
	assert.False(t, (&Booking{PaymentStatus: PaymentRefunded}).HasValidPayment())
}

func TestBooking_DurationMinutes(t *testing.T) {
	b := &Booking{StartTime: "10:00", EndTime: "11:30"}
	assert.Equal(t, 90, b.DurationMinutes())

	// start >= end - длительность 0
	b = &Booking{StartTime: "11:00", EndTime: "10:00"}
	assert.Equal(t, 0, b.DurationMinutes())
}

func TestBooking_ValidateTimeRange(t *testing.T) {
	assert.True(t, (&Booking{StartTime: "09:00", EndTime: "10:00"}).ValidateTimeRange())
	assert.False(t, (&Booking{StartTime: "10:00", EndTime: "10:00"}).ValidateTimeRange())
	assert.False(t, (&Booking{StartTime: "11:00", EndTime: "10:00"}).ValidateTimeRange())
}

func TestBooking_IsActiveAndTerminal(t *testing.T) {
	for _, s := range []BookingStatus{StatusPending, StatusConfirmed, StatusInProgress} {
		b := &Booking{Status: s}
		assert.True(t, b.IsActive(), "status %s", s)
		assert.False(t, b.IsTerminal(), "status %s", s)
	}
	for _, s := range []BookingStatus{StatusCompleted, StatusCancelled, StatusNoShow} {
		b := &Booking{Status: s}
		assert.False(t, b.IsActive(), "status %s", s)
		assert.True(t, b.IsTerminal(), "status %s", s)
	}
}
