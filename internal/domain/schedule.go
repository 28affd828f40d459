package domain

import (
	"time"

	"github.com/lumispa/spa-core/pkg/types"
)

// StaffSchedule represents a staff member's availability window on a date,
// with an optional break inside the window
type StaffSchedule struct {
	ID       int64
	StaffID  int64
	BranchID int64

	WorkDate  time.Time
	StartTime types.TimeString
	EndTime   types.TimeString

	BreakStart *types.TimeString
	BreakEnd   *types.TimeString

	IsAvailable bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasBreak returns true if both break boundaries are set
func (s *StaffSchedule) HasBreak() bool {
	return s.BreakStart != nil && s.BreakEnd != nil
}

// ValidateBreak checks that the break window, if present, falls within
// [StartTime, EndTime]
func (s *StaffSchedule) ValidateBreak() bool {
	if !s.HasBreak() {
		return true
	}
	if s.BreakEnd.IsBefore(*s.BreakStart) {
		return false
	}
	if s.BreakStart.IsBefore(s.StartTime) {
		return false
	}
	return !s.BreakEnd.IsAfter(s.EndTime)
}

// AvailableMinutes returns the number of workable minutes in the window,
// with the break subtracted. Returns 0 when the row is marked unavailable
func (s *StaffSchedule) AvailableMinutes() int {
	if !s.IsAvailable {
		return 0
	}

	total, err := s.StartTime.MinutesUntil(s.EndTime)
	if err != nil || total <= 0 {
		return 0
	}

	if s.HasBreak() && s.ValidateBreak() {
		if brk, err := s.BreakStart.MinutesUntil(*s.BreakEnd); err == nil && brk > 0 {
			total -= brk
		}
	}

	if total < 0 {
		return 0
	}
	return total
}

// CoversSlot returns true if the slot [start, end) lies inside the working
// window and does not intersect the break
func (s *StaffSchedule) CoversSlot(start, end types.TimeString) bool {
	if !s.IsAvailable {
		return false
	}
	if start.IsBefore(s.StartTime) || end.IsAfter(s.EndTime) {
		return false
	}
	if s.HasBreak() {
		// Пересечение с перерывом - строгие неравенства, граничные случаи не считаются
		if start.IsBefore(*s.BreakEnd) && end.IsAfter(*s.BreakStart) {
			return false
		}
	}
	return true
}
