package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lumispa/spa-core/pkg/ptr"
)

func TestWaitlistEntry_CalculatePriorityScore(t *testing.T) {
	now := time.Date(2026, 3, 10, 22, 0, 0, 0, time.UTC)

	// VIP (80) + 10 часов ожидания (10) + 3 прошлых бронирования (15) = 105
	e := &WaitlistEntry{
		PriorityLevel:      PriorityVIP,
		CreatedAt:          now.Add(-10 * time.Hour),
		ClientBookingCount: 3,
	}
	assert.Equal(t, 105, e.CalculatePriorityScore(now))

	// Бонус за ожидание ограничен 48 часами
	e.CreatedAt = now.Add(-100 * time.Hour)
	assert.Equal(t, 80+48+15, e.CalculatePriorityScore(now))

	// Лояльность ограничена 30 баллами
	e.ClientBookingCount = 20
	assert.Equal(t, 80+48+30, e.CalculatePriorityScore(now))

	// Бонусы за гибкость: >=2 альтернативных мастера и >=1 альтернативная дата
	e.AlternativeStaffIDs = []int64{7, 8}
	e.AlternativeDates = []time.Time{now.AddDate(0, 0, 1)}
	assert.Equal(t, 80+48+30+10+10, e.CalculatePriorityScore(now))

	// Один альтернативный мастер бонуса не дает
	e.AlternativeStaffIDs = []int64{7}
	assert.Equal(t, 80+48+30+10, e.CalculatePriorityScore(now))
}

func TestPriorityLevel_BaseScore(t *testing.T) {
	assert.Equal(t, 10, PriorityLow.BaseScore())
	assert.Equal(t, 20, PriorityMedium.BaseScore())
	assert.Equal(t, 40, PriorityHigh.BaseScore())
	assert.Equal(t, 80, PriorityVIP.BaseScore())
}

func TestWaitlistEntry_MatchesSlot(t *testing.T) {
	date := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	altDate := date.AddDate(0, 0, 2)

	e := &WaitlistEntry{
		PreferredDate:       date,
		PreferredStart:      ts("10:00"),
		PreferredEnd:        ts("14:00"),
		PreferredStaffID:    ptr.Ptr(int64(5)),
		AlternativeDates:    []time.Time{altDate},
		AlternativeStaffIDs: []int64{6},
	}

	staff5 := ptr.Ptr(int64(5))
	staff6 := ptr.Ptr(int64(6))
	staff9 := ptr.Ptr(int64(9))

	assert.True(t, e.MatchesSlot(date, "10:00", "11:00", staff5))
	assert.True(t, e.MatchesSlot(altDate, "10:00", "11:00", staff5), "alternative date matches")
	assert.True(t, e.MatchesSlot(date, "13:30", "15:00", staff5), "overlapping window matches")
	assert.True(t, e.MatchesSlot(date, "10:00", "11:00", staff6), "alternative staff matches")

	assert.False(t, e.MatchesSlot(date.AddDate(0, 0, 1), "10:00", "11:00", staff5), "wrong date")
	assert.False(t, e.MatchesSlot(date, "14:00", "15:00", staff5), "adjacent window does not overlap")
	assert.False(t, e.MatchesSlot(date, "08:00", "10:00", staff5), "slot ends where window starts")
	assert.False(t, e.MatchesSlot(date, "10:00", "11:00", staff9), "wrong staff")

	// Без предпочтений по времени и мастеру подходит любой слот на дату
	open := &WaitlistEntry{PreferredDate: date}
	assert.True(t, open.MatchesSlot(date, "08:00", "08:30", staff9))
	assert.True(t, open.MatchesSlot(date, "08:00", "08:30", nil))
	assert.False(t, open.MatchesSlot(altDate, "08:00", "08:30", nil))
}

func TestWaitlistEntry_ExpiryGuards(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	e := &WaitlistEntry{Status: WaitlistNotified, ExpiresAt: ptr.Ptr(now.Add(time.Hour))}
	assert.False(t, e.IsExpired(now))
	assert.True(t, e.CanRespond(now))

	e.ExpiresAt = ptr.Ptr(now.Add(-time.Minute))
	assert.True(t, e.IsExpired(now))
	assert.False(t, e.CanRespond(now))

	// pending не может быть просрочен и не может отвечать
	e = &WaitlistEntry{Status: WaitlistPending}
	assert.False(t, e.IsExpired(now))
	assert.False(t, e.CanRespond(now))
}
