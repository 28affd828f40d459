package domain

import (
	"time"

	"github.com/lumispa/spa-core/pkg/types"
)

// WaitlistStatus represents the lifecycle state of a waitlist entry
type WaitlistStatus string

const (
	WaitlistPending   WaitlistStatus = "pending"
	WaitlistNotified  WaitlistStatus = "notified"
	WaitlistConverted WaitlistStatus = "converted"
	WaitlistDeclined  WaitlistStatus = "declined"
	WaitlistExpired   WaitlistStatus = "expired"
)

// PriorityLevel base priority band of a waitlist entry
type PriorityLevel string

const (
	PriorityLow    PriorityLevel = "low"
	PriorityMedium PriorityLevel = "medium"
	PriorityHigh   PriorityLevel = "high"
	PriorityVIP    PriorityLevel = "vip"
)

// BaseScore returns the base priority score for the level
func (p PriorityLevel) BaseScore() int {
	switch p {
	case PriorityLow:
		return 10
	case PriorityMedium:
		return 20
	case PriorityHigh:
		return 40
	case PriorityVIP:
		return 80
	default:
		return 10
	}
}

// WaitlistEntry represents a client's standing request for a slot that was
// unavailable at request time
type WaitlistEntry struct {
	ID        int64
	BranchID  int64
	ClientID  int64
	ServiceID int64

	PreferredStaffID *int64 // nil = любой мастер
	PreferredDate    time.Time
	PreferredStart   *types.TimeString // nil = любое время
	PreferredEnd     *types.TimeString

	AlternativeDates    []time.Time
	AlternativeStaffIDs []int64

	Status        WaitlistStatus
	PriorityLevel PriorityLevel
	PriorityScore int

	// Количество прошлых бронирований клиента, денормализовано при создании записи
	ClientBookingCount int

	ExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// MatchesSlot returns true if a freed slot satisfies the entry's preferences:
// the date matches the preferred or an alternative date, the time range
// overlaps the preferred window (or there is no time preference), and the
// staff member is the preferred one or an accepted alternative (or there is
// no staff preference)
func (e *WaitlistEntry) MatchesSlot(date time.Time, start, end types.TimeString, staffID *int64) bool {
	if !e.matchesDate(date) {
		return false
	}
	if !e.matchesTime(start, end) {
		return false
	}
	return e.matchesStaff(staffID)
}

func (e *WaitlistEntry) matchesDate(date time.Time) bool {
	if sameDay(e.PreferredDate, date) {
		return true
	}
	for _, alt := range e.AlternativeDates {
		if sameDay(alt, date) {
			return true
		}
	}
	return false
}

func (e *WaitlistEntry) matchesTime(start, end types.TimeString) bool {
	// Нет предпочтения по времени - подходит любой слот
	if e.PreferredStart == nil || e.PreferredEnd == nil {
		return true
	}
	// Пересечение [start, end) с предпочитаемым окном, строгие неравенства
	return start.IsBefore(*e.PreferredEnd) && end.IsAfter(*e.PreferredStart)
}

func (e *WaitlistEntry) matchesStaff(staffID *int64) bool {
	// Нет предпочтения по мастеру - подходит любой
	if e.PreferredStaffID == nil {
		return true
	}
	if staffID == nil {
		return true
	}
	if *e.PreferredStaffID == *staffID {
		return true
	}
	for _, alt := range e.AlternativeStaffIDs {
		if alt == *staffID {
			return true
		}
	}
	return false
}

// CalculatePriorityScore recomputes the entry's score on demand:
// level base + capped hours waited + capped loyalty bonus + flexibility bonuses
func (e *WaitlistEntry) CalculatePriorityScore(now time.Time) int {
	score := e.PriorityLevel.BaseScore()

	hoursWaited := int(now.Sub(e.CreatedAt).Hours())
	if hoursWaited < 0 {
		hoursWaited = 0
	}
	if hoursWaited > WaitlistMaxWaitHoursBonus {
		hoursWaited = WaitlistMaxWaitHoursBonus
	}
	score += hoursWaited

	loyalty := e.ClientBookingCount * WaitlistLoyaltyPointsPerBooking
	if loyalty > WaitlistMaxLoyaltyBonus {
		loyalty = WaitlistMaxLoyaltyBonus
	}
	score += loyalty

	if len(e.AlternativeStaffIDs) >= 2 {
		score += WaitlistFlexibilityBonus
	}
	if len(e.AlternativeDates) >= 1 {
		score += WaitlistFlexibilityBonus
	}

	return score
}

// IsExpired returns true if a notified entry's response window has passed
func (e *WaitlistEntry) IsExpired(now time.Time) bool {
	if e.Status != WaitlistNotified || e.ExpiresAt == nil {
		return false
	}
	return now.After(*e.ExpiresAt)
}

// CanRespond returns true if the entry is notified and still within its
// response window
func (e *WaitlistEntry) CanRespond(now time.Time) bool {
	return e.Status == WaitlistNotified && !e.IsExpired(now)
}

// sameDay проверяет, что две даты относятся к одному и тому же дню
func sameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
