package create_booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/lumispa/spa-core/internal/domain"
	bookingRepo "github.com/lumispa/spa-core/internal/infra/storage/booking"
	scheduleRepo "github.com/lumispa/spa-core/internal/infra/storage/schedule"
	"github.com/lumispa/spa-core/pkg/ptr"
)

// referenceAttempts предел попыток сгенерировать уникальный код бронирования
const referenceAttempts = 3

// UseCase use case для создания бронирования
type UseCase struct {
	bookingRepo  BookingRepository
	scheduleRepo ScheduleRepository
	paymentRepo  PaymentRepository
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	scheduleRepo ScheduleRepository,
	paymentRepo PaymentRepository,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		scheduleRepo: scheduleRepo,
		paymentRepo:  paymentRepo,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case создания бронирования
// Использует сериализуемую транзакцию для предотвращения гонки данных:
// два конкурентных запроса на один слот мастера не пройдут оба
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: client=%d, branch=%d, service=%d, date=%s, time=%s-%s",
		req.ClientID, req.BranchID, req.ServiceID, req.Date.Format(domain.DateFormat), req.StartTime, req.EndTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Валидация даты
	if err := validateDate(req.Date, now); err != nil {
		uc.logger.Warn("CreateBooking: date %s is in the past", req.Date.Format(domain.DateFormat))
		return nil, err
	}

	// 4. Генерируем уникальный код бронирования
	reference := newReference()

	var result *domain.Booking
	var paymentID *int64

	// 5. Выполняем операции с БД в сериализуемой транзакции
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 5.1. Если мастер указан, проверяем его расписание
		if req.StaffID != nil {
			schedule, err := uc.scheduleRepo.GetByStaffAndDate(txCtx, *req.StaffID, req.Date)
			if err != nil {
				if errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
					uc.logger.Warn("CreateBooking: staff=%d has no schedule on %s",
						*req.StaffID, req.Date.Format(domain.DateFormat))
					return ErrStaffNotAvailable
				}
				uc.logger.Error("CreateBooking: failed to get schedule: %v", err)
				return fmt.Errorf("%w: failed to get schedule: %v", ErrInternal, err)
			}

			if !schedule.CoversSlot(req.StartTime, req.EndTime) {
				uc.logger.Warn("CreateBooking: slot %s-%s is outside staff=%d working window",
					req.StartTime, req.EndTime, *req.StaffID)
				return ErrStaffNotAvailable
			}
		}

		// 5.2. Получаем все активные бронирования на эту дату с блокировкой (FOR UPDATE)
		filter := domain.BranchBookingsFilter{
			BranchID:  req.BranchID,
			StartDate: ptr.Ptr(req.Date),
			EndDate:   ptr.Ptr(req.Date),
		}

		bookings, err := uc.bookingRepo.GetByBranchWithFilter(txCtx, filter)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to get bookings: %v", err)
			return fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
		}

		// 5.3. Проверяем конфликты
		if req.StaffID != nil && hasStaffConflict(*req.StaffID, req.StartTime, req.EndTime, bookings) {
			uc.logger.Warn("CreateBooking: slot %s-%s conflicts with existing booking of staff=%d",
				req.StartTime, req.EndTime, *req.StaffID)
			return ErrSlotConflict
		}

		if hasClientDuplicate(req.ClientID, req.StartTime, req.EndTime, bookings) {
			uc.logger.Warn("CreateBooking: client=%d already holds an overlapping slot", req.ClientID)
			return ErrDuplicateBooking
		}

		// 5.4. Создаем бронирование
		booking := &domain.Booking{
			Reference:       reference,
			BranchID:        req.BranchID,
			ServiceID:       req.ServiceID,
			ClientID:        req.ClientID,
			StaffID:         req.StaffID,
			AppointmentDate: req.Date,
			StartTime:       req.StartTime,
			EndTime:         req.EndTime,
			Status:          domain.StatusPending,
			PaymentStatus:   domain.PaymentPending,
			TotalAmount:     req.TotalAmount,
			Notes:           req.Notes,
		}

		created, err := uc.bookingRepo.Create(txCtx, booking)

		// Коллизия кода бронирования крайне маловероятна, но уникальный
		// индекс её ловит - перегенерируем код и пробуем ещё раз
		for attempt := 1; errors.Is(err, bookingRepo.ErrDuplicateReference) && attempt < referenceAttempts; attempt++ {
			booking.Reference = newReference()
			uc.logger.Warn("CreateBooking: reference collision, retrying with %s", booking.Reference)
			created, err = uc.bookingRepo.Create(txCtx, booking)
		}

		if err != nil {
			// Дубликат слота ловится и уникальным индексом БД -
			// это страховка от гонок, которые прошли мимо проверки выше
			if errors.Is(err, bookingRepo.ErrDuplicateSlot) {
				return ErrDuplicateBooking
			}
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		// 5.5. Создаем pending платеж, если указан способ оплаты
		if req.PaymentMethod != nil {
			payment := &domain.Payment{
				BookingID: ptr.Ptr(created.ID),
				Amount:    req.TotalAmount,
				Method:    *req.PaymentMethod,
				Status:    domain.PaymentPending,
			}

			createdPayment, err := uc.paymentRepo.Create(txCtx, payment)
			if err != nil {
				uc.logger.Error("CreateBooking: failed to create payment: %v", err)
				return fmt.Errorf("%w: failed to create payment: %v", ErrInternal, err)
			}
			paymentID = ptr.Ptr(createdPayment.ID)
		}

		result = created
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("CreateBooking: successfully created booking id=%d reference=%s", result.ID, result.Reference)

	return &Response{
		ID:              result.ID,
		Reference:       result.Reference,
		BranchID:        result.BranchID,
		ServiceID:       result.ServiceID,
		ClientID:        result.ClientID,
		StaffID:         result.StaffID,
		AppointmentDate: result.AppointmentDate,
		StartTime:       result.StartTime,
		EndTime:         result.EndTime,
		Status:          string(result.Status),
		PaymentStatus:   string(result.PaymentStatus),
		TotalAmount:     result.TotalAmount,
		PaymentID:       paymentID,
		Notes:           result.Notes,
		CreatedAt:       result.CreatedAt,
		UpdatedAt:       result.UpdatedAt,
	}, nil
}

// newReference генерирует уникальный код бронирования вида BK-3F2A9C01
func newReference() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "BK-" + strings.ToUpper(raw[:8])
}
