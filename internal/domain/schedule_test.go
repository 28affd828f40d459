package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lumispa/spa-core/pkg/types"
)

func ts(s string) *types.TimeString {
	t := types.TimeString(s)
	return &t
}

func TestStaffSchedule_AvailableMinutes(t *testing.T) {
	// 09:00-17:00 без перерыва = 480 минут
	s := &StaffSchedule{StartTime: "09:00", EndTime: "17:00", IsAvailable: true}
	assert.Equal(t, 480, s.AvailableMinutes())

	// С часовым перерывом = 420 минут
	s.BreakStart, s.BreakEnd = ts("12:00"), ts("13:00")
	assert.Equal(t, 420, s.AvailableMinutes())

	// Недоступный день = 0
	s.IsAvailable = false
	assert.Equal(t, 0, s.AvailableMinutes())
}

func TestStaffSchedule_ValidateBreak(t *testing.T) {
	s := &StaffSchedule{StartTime: "09:00", EndTime: "17:00", IsAvailable: true}
	assert.True(t, s.ValidateBreak(), "no break is valid")

	s.BreakStart, s.BreakEnd = ts("12:00"), ts("13:00")
	assert.True(t, s.ValidateBreak())

	// Перерыв выходит за рабочее окно
	s.BreakStart, s.BreakEnd = ts("08:00"), ts("09:30")
	assert.False(t, s.ValidateBreak())

	s.BreakStart, s.BreakEnd = ts("16:30"), ts("17:30")
	assert.False(t, s.ValidateBreak())

	// Перевёрнутый перерыв
	s.BreakStart, s.BreakEnd = ts("13:00"), ts("12:00")
	assert.False(t, s.ValidateBreak())
}

func TestStaffSchedule_CoversSlot(t *testing.T) {
	s := &StaffSchedule{
		StartTime:   "09:00",
		EndTime:     "17:00",
		BreakStart:  ts("12:00"),
		BreakEnd:    ts("13:00"),
		IsAvailable: true,
	}

	assert.True(t, s.CoversSlot("10:00", "11:00"))
	assert.True(t, s.CoversSlot("09:00", "10:00"), "slot at window start")
	assert.True(t, s.CoversSlot("16:00", "17:00"), "slot at window end")

	// Слот, граничащий с перерывом, допустим
	assert.True(t, s.CoversSlot("11:00", "12:00"))
	assert.True(t, s.CoversSlot("13:00", "14:00"))

	// Пересечение с перерывом
	assert.False(t, s.CoversSlot("11:30", "12:30"))
	assert.False(t, s.CoversSlot("12:15", "12:45"))

	// Вне рабочего окна
	assert.False(t, s.CoversSlot("08:00", "09:30"))
	assert.False(t, s.CoversSlot("16:30", "17:30"))

	s.IsAvailable = false
	assert.False(t, s.CoversSlot("10:00", "11:00"))
}
