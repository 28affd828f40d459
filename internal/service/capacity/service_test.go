package capacity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumispa/spa-core/internal/domain"
	"github.com/lumispa/spa-core/pkg/ptr"
	"github.com/lumispa/spa-core/pkg/types"
)

// Фейки зависимостей

type fakeBookingRepo struct {
	bookings []*domain.Booking

	gotStatuses []domain.BookingStatus
	gotFilter   domain.BranchBookingsFilter
}

func (f *fakeBookingRepo) GetByStaffAndPeriod(_ context.Context, _ int64, _, _ time.Time, statuses []domain.BookingStatus) ([]*domain.Booking, error) {
	f.gotStatuses = statuses
	return f.bookings, nil
}

func (f *fakeBookingRepo) GetByBranchWithFilter(_ context.Context, filter domain.BranchBookingsFilter) ([]*domain.Booking, error) {
	f.gotFilter = filter
	return f.bookings, nil
}

type fakeScheduleRepo struct {
	schedules []*domain.StaffSchedule
}

func (f *fakeScheduleRepo) GetByStaffAndPeriod(_ context.Context, _ int64, _, _ time.Time) ([]*domain.StaffSchedule, error) {
	return f.schedules, nil
}

func (f *fakeScheduleRepo) GetByBranchAndDate(_ context.Context, _ int64, _ time.Time) ([]*domain.StaffSchedule, error) {
	return f.schedules, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

var (
	periodFrom = time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	periodTo   = time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
)

func workDay(staffID int64, start, end types.TimeString) *domain.StaffSchedule {
	return &domain.StaffSchedule{
		StaffID:     staffID,
		BranchID:    1,
		WorkDate:    periodFrom,
		StartTime:   start,
		EndTime:     end,
		IsAvailable: true,
	}
}

func bookedSlot(staffID int64, start, end types.TimeString) *domain.Booking {
	return &domain.Booking{
		ID:              10,
		BranchID:        1,
		StaffID:         ptr.Ptr(staffID),
		AppointmentDate: periodFrom,
		StartTime:       start,
		EndTime:         end,
		Status:          domain.StatusConfirmed,
	}
}

func TestStaffUtilization_Basic(t *testing.T) {
	// 480 доступных минут, 60 занятых = 12.5%
	b := &fakeBookingRepo{bookings: []*domain.Booking{bookedSlot(7, "10:00", "11:00")}}
	sch := &fakeScheduleRepo{schedules: []*domain.StaffSchedule{workDay(7, "09:00", "17:00")}}

	resp, err := NewService(b, sch, nopLogger{}).GetStaffUtilization(context.Background(), 7, periodFrom, periodTo)
	require.NoError(t, err)

	assert.Equal(t, 480, resp.AvailableMinutes)
	assert.Equal(t, 60, resp.BookedMinutes)
	assert.Equal(t, 12.5, resp.UtilizationPercent)
	assert.Equal(t, "2026-09-01", resp.PeriodStart)
	assert.Equal(t, "2026-09-07", resp.PeriodEnd)

	// Занятыми считаются только активные статусы
	assert.Equal(t, domain.BookedStatuses, b.gotStatuses)
}

func TestStaffUtilization_Rounding(t *testing.T) {
	// 100 из 480 минут = 20.833... -> 20.83
	sch := &fakeScheduleRepo{schedules: []*domain.StaffSchedule{workDay(7, "09:00", "17:00")}}
	b := &fakeBookingRepo{bookings: []*domain.Booking{
		bookedSlot(7, "10:00", "11:00"),
		bookedSlot(7, "12:00", "12:40"),
	}}

	resp, err := NewService(b, sch, nopLogger{}).GetStaffUtilization(context.Background(), 7, periodFrom, periodTo)
	require.NoError(t, err)

	assert.Equal(t, 100, resp.BookedMinutes)
	assert.Equal(t, 20.83, resp.UtilizationPercent)
}

func TestStaffUtilization_NoAvailability(t *testing.T) {
	// Без расписания загрузка равна нулю даже при занятых минутах
	b := &fakeBookingRepo{bookings: []*domain.Booking{bookedSlot(7, "10:00", "11:00")}}

	resp, err := NewService(b, &fakeScheduleRepo{}, nopLogger{}).GetStaffUtilization(context.Background(), 7, periodFrom, periodTo)
	require.NoError(t, err)

	assert.Equal(t, 0, resp.AvailableMinutes)
	assert.Equal(t, 0.0, resp.UtilizationPercent)
}

func TestStaffUtilization_UnavailableDayExcluded(t *testing.T) {
	offDay := workDay(7, "09:00", "17:00")
	offDay.IsAvailable = false

	sch := &fakeScheduleRepo{schedules: []*domain.StaffSchedule{
		workDay(7, "09:00", "13:00"),
		offDay,
	}}

	resp, err := NewService(&fakeBookingRepo{}, sch, nopLogger{}).GetStaffUtilization(context.Background(), 7, periodFrom, periodTo)
	require.NoError(t, err)

	assert.Equal(t, 240, resp.AvailableMinutes)
}

func TestStaffUtilization_InvalidPeriod(t *testing.T) {
	_, err := NewService(&fakeBookingRepo{}, &fakeScheduleRepo{}, nopLogger{}).
		GetStaffUtilization(context.Background(), 7, periodTo, periodFrom)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestBranchCapacity_FreeSlots(t *testing.T) {
	// Мастер 7: 480 - 60 занятых = 420 свободных = 14 слотов по 30 минут
	// Мастер 8: 240 свободных = 8 слотов
	sch := &fakeScheduleRepo{schedules: []*domain.StaffSchedule{
		workDay(7, "09:00", "17:00"),
		workDay(8, "09:00", "13:00"),
	}}
	b := &fakeBookingRepo{bookings: []*domain.Booking{bookedSlot(7, "10:00", "11:00")}}

	resp, err := NewService(b, sch, nopLogger{}).GetBranchCapacity(context.Background(), 1, periodFrom)
	require.NoError(t, err)

	require.Len(t, resp.Staff, 2)
	assert.Equal(t, 14, resp.Staff[0].FreeSlots)
	assert.Equal(t, 8, resp.Staff[1].FreeSlots)
	assert.Equal(t, 22, resp.TotalFreeSlots)
	assert.Equal(t, "2026-09-01", resp.Date)

	// Слоты филиала - от суммарных минут: 720 доступных и 60 занятых
	assert.Equal(t, 24, resp.TotalCapacitySlots)
	assert.Equal(t, 2, resp.BookedCapacitySlots)
}

func TestBranchCapacity_TotalsFromSummedMinutes(t *testing.T) {
	// Два мастера по 45 минут: суммарно 90 минут = 3 слота филиала,
	// хотя свободных слотов по мастерам только 1 + 1
	sch := &fakeScheduleRepo{schedules: []*domain.StaffSchedule{
		workDay(7, "09:00", "09:45"),
		workDay(8, "09:00", "09:45"),
	}}

	resp, err := NewService(&fakeBookingRepo{}, sch, nopLogger{}).GetBranchCapacity(context.Background(), 1, periodFrom)
	require.NoError(t, err)

	assert.Equal(t, 3, resp.TotalCapacitySlots)
	assert.Equal(t, 0, resp.BookedCapacitySlots)
	assert.Equal(t, 2, resp.TotalFreeSlots)
}

func TestBranchCapacity_PartialSlotNotCounted(t *testing.T) {
	// 480 - 25 занятых = 455 свободных минут = 15 полных слотов, остаток отбрасывается
	sch := &fakeScheduleRepo{schedules: []*domain.StaffSchedule{workDay(7, "09:00", "17:00")}}
	b := &fakeBookingRepo{bookings: []*domain.Booking{bookedSlot(7, "10:00", "10:25")}}

	resp, err := NewService(b, sch, nopLogger{}).GetBranchCapacity(context.Background(), 1, periodFrom)
	require.NoError(t, err)

	require.Len(t, resp.Staff, 1)
	assert.Equal(t, 15, resp.Staff[0].FreeSlots)
	assert.Equal(t, 0, resp.BookedCapacitySlots)
}

func TestBranchCapacity_UnassignedBookings(t *testing.T) {
	// Бронирование без мастера не уменьшает ёмкость конкретного мастера,
	// но входит в суммарные занятые минуты филиала
	unassigned := bookedSlot(7, "10:00", "11:00")
	unassigned.StaffID = nil

	sch := &fakeScheduleRepo{schedules: []*domain.StaffSchedule{workDay(7, "09:00", "17:00")}}
	b := &fakeBookingRepo{bookings: []*domain.Booking{unassigned}}

	resp, err := NewService(b, sch, nopLogger{}).GetBranchCapacity(context.Background(), 1, periodFrom)
	require.NoError(t, err)

	require.Len(t, resp.Staff, 1)
	assert.Equal(t, 0, resp.Staff[0].BookedMinutes)
	assert.Equal(t, 16, resp.Staff[0].FreeSlots)
	assert.Equal(t, 2, resp.BookedCapacitySlots)
}

func TestBranchCapacity_OverbookedClampedToZero(t *testing.T) {
	// Занято больше, чем доступно - отрицательной ёмкости не бывает
	sch := &fakeScheduleRepo{schedules: []*domain.StaffSchedule{workDay(7, "09:00", "10:00")}}
	b := &fakeBookingRepo{bookings: []*domain.Booking{
		bookedSlot(7, "09:00", "10:00"),
		bookedSlot(7, "10:00", "11:00"),
	}}

	resp, err := NewService(b, sch, nopLogger{}).GetBranchCapacity(context.Background(), 1, periodFrom)
	require.NoError(t, err)

	require.Len(t, resp.Staff, 1)
	assert.Equal(t, 0, resp.Staff[0].FreeSlots)
	assert.Equal(t, 0, resp.TotalFreeSlots)
}
