package capacity

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/lumispa/spa-core/internal/domain"
	"github.com/lumispa/spa-core/internal/service/capacity/models"
	"github.com/lumispa/spa-core/pkg/ptr"
)

// Service расчет загрузки мастеров и свободной ёмкости филиала
type Service struct {
	bookingRepo  BookingRepository
	scheduleRepo ScheduleRepository
	logger       Logger
}

// NewService создает новый экземпляр сервиса ёмкости
func NewService(bookingRepo BookingRepository, scheduleRepo ScheduleRepository, logger Logger) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		scheduleRepo: scheduleRepo,
		logger:       logger,
	}
}

// GetStaffUtilization считает загрузку мастера за период:
// booked / available * 100, занятыми считаются confirmed, in_progress и completed.
// Если доступных минут нет, загрузка равна 0 - деления на ноль не происходит
func (s *Service) GetStaffUtilization(ctx context.Context, staffID int64, from, to time.Time) (*models.StaffUtilizationResponse, error) {
	s.logger.Info("GetStaffUtilization: calculating utilization for staff=%d, period=%s to %s",
		staffID, from.Format(domain.DateFormat), to.Format(domain.DateFormat))

	if to.Before(from) {
		return nil, fmt.Errorf("%w: end before start", ErrInvalidPeriod)
	}

	schedules, err := s.scheduleRepo.GetByStaffAndPeriod(ctx, staffID, from, to)
	if err != nil {
		s.logger.Error("GetStaffUtilization: schedule repository error for staff=%d: %v", staffID, err)
		return nil, fmt.Errorf("%w: GetStaffUtilization - schedule repository error: %v", ErrInternal, err)
	}

	availableMinutes := 0
	for _, schedule := range schedules {
		availableMinutes += schedule.AvailableMinutes()
	}

	bookings, err := s.bookingRepo.GetByStaffAndPeriod(ctx, staffID, from, to, domain.BookedStatuses)
	if err != nil {
		s.logger.Error("GetStaffUtilization: booking repository error for staff=%d: %v", staffID, err)
		return nil, fmt.Errorf("%w: GetStaffUtilization - booking repository error: %v", ErrInternal, err)
	}

	bookedMinutes := 0
	for _, booking := range bookings {
		bookedMinutes += booking.DurationMinutes()
	}

	utilization := 0.0
	if availableMinutes > 0 {
		utilization = float64(bookedMinutes) / float64(availableMinutes) * 100
		// Два знака после запятой, как в отчетах
		utilization = math.Round(utilization*100) / 100
	}

	s.logger.Info("GetStaffUtilization: staff=%d booked=%dm available=%dm utilization=%.2f%%",
		staffID, bookedMinutes, availableMinutes, utilization)

	return &models.StaffUtilizationResponse{
		StaffID:            staffID,
		PeriodStart:        from.Format(domain.DateFormat),
		PeriodEnd:          to.Format(domain.DateFormat),
		AvailableMinutes:   availableMinutes,
		BookedMinutes:      bookedMinutes,
		UtilizationPercent: utilization,
	}, nil
}

// GetBranchCapacity считает свободную ёмкость филиала на дату
// Свободные слоты - 30-минутные, неполный остаток слотом не считается
func (s *Service) GetBranchCapacity(ctx context.Context, branchID int64, date time.Time) (*models.BranchCapacityResponse, error) {
	s.logger.Info("GetBranchCapacity: calculating capacity for branch=%d, date=%s",
		branchID, date.Format(domain.DateFormat))

	schedules, err := s.scheduleRepo.GetByBranchAndDate(ctx, branchID, date)
	if err != nil {
		s.logger.Error("GetBranchCapacity: schedule repository error for branch=%d: %v", branchID, err)
		return nil, fmt.Errorf("%w: GetBranchCapacity - schedule repository error: %v", ErrInternal, err)
	}

	bookings, err := s.bookingRepo.GetByBranchWithFilter(ctx, domain.BranchBookingsFilter{
		BranchID:  branchID,
		StartDate: ptr.Ptr(date),
		EndDate:   ptr.Ptr(date),
		Statuses:  domain.BookedStatuses,
	})
	if err != nil {
		s.logger.Error("GetBranchCapacity: booking repository error for branch=%d: %v", branchID, err)
		return nil, fmt.Errorf("%w: GetBranchCapacity - booking repository error: %v", ErrInternal, err)
	}

	// Занятые минуты по мастерам. Бронирования без назначенного мастера
	// ёмкость конкретного мастера не уменьшают, но в суммарные занятые
	// минуты филиала входят
	totalBookedMinutes := 0
	bookedByStaff := make(map[int64]int)
	for _, booking := range bookings {
		totalBookedMinutes += booking.DurationMinutes()
		if booking.StaffID == nil {
			continue
		}
		bookedByStaff[*booking.StaffID] += booking.DurationMinutes()
	}

	resp := &models.BranchCapacityResponse{
		BranchID: branchID,
		Date:     date.Format(domain.DateFormat),
		Staff:    make([]models.StaffSlotCapacity, 0, len(schedules)),
	}

	totalAvailableMinutes := 0
	for _, schedule := range schedules {
		available := schedule.AvailableMinutes()
		booked := bookedByStaff[schedule.StaffID]
		totalAvailableMinutes += available

		free := available - booked
		if free < 0 {
			free = 0
		}
		freeSlots := free / domain.CapacitySlotMinutes

		resp.Staff = append(resp.Staff, models.StaffSlotCapacity{
			StaffID:          schedule.StaffID,
			AvailableMinutes: available,
			BookedMinutes:    booked,
			FreeSlots:        freeSlots,
		})
		resp.TotalFreeSlots += freeSlots
	}

	// Слоты филиала округляются от суммарных минут, а не по мастерам:
	// floor разности не равен разности floor
	resp.TotalCapacitySlots = totalAvailableMinutes / domain.CapacitySlotMinutes
	resp.BookedCapacitySlots = totalBookedMinutes / domain.CapacitySlotMinutes

	s.logger.Info("GetBranchCapacity: branch=%d capacity=%d booked=%d free=%d slots across %d staff",
		branchID, resp.TotalCapacitySlots, resp.BookedCapacitySlots, resp.TotalFreeSlots, len(resp.Staff))

	return resp, nil
}
