package complete_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/lumispa/spa-core/internal/domain"
	bookingRepo "github.com/lumispa/spa-core/internal/infra/storage/booking"
	commissionRepo "github.com/lumispa/spa-core/internal/infra/storage/commission"
	paymentRepo "github.com/lumispa/spa-core/internal/infra/storage/payment"
	"github.com/lumispa/spa-core/internal/integrations/performance"
	"github.com/lumispa/spa-core/pkg/ptr"
)

// neutralMultiplier применяется, когда рейтинг мастера недоступен:
// новый мастер без оценок или недоступность сервиса оценок
const neutralMultiplier = 1.0

// UseCase use case завершения услуги: платёжный шлюз, перевод бронирования
// в completed и идемпотентное начисление комиссии мастеру - всё в одной транзакции
type UseCase struct {
	bookingRepo       BookingRepository
	paymentRepo       PaymentRepository
	commissionRepo    CommissionRepository
	performanceClient PerformanceClient
	txManager         TransactionManager
	timeProvider      TimeProvider
	logger            Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	paymentRepo PaymentRepository,
	commissionRepo CommissionRepository,
	performanceClient PerformanceClient,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:       bookingRepo,
		paymentRepo:       paymentRepo,
		commissionRepo:    commissionRepo,
		performanceClient: performanceClient,
		txManager:         txManager,
		timeProvider:      &RealTimeProvider{},
		logger:            logger,
	}
}

// Execute выполняет use case завершения услуги
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CompleteBooking: booking id=%d", req.BookingID)

	// 1. Валидация входных данных
	if req.BookingID <= 0 {
		return nil, fmt.Errorf("%w: bookingID must be positive", ErrInvalidInput)
	}
	if req.TipAmount < 0 {
		return nil, fmt.Errorf("%w: tipAmount must not be negative", ErrInvalidInput)
	}

	// 2. Предварительное чтение - нужен мастер для запроса рейтинга
	preview, err := uc.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Warn("CompleteBooking: booking id=%d not found", req.BookingID)
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("CompleteBooking: failed to get booking id=%d: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
	}

	if !preview.CanBeCompleted() {
		uc.logger.Warn("CompleteBooking: booking id=%d is not in progress, status=%s",
			req.BookingID, preview.Status)
		return nil, ErrNotInProgress
	}

	// 3. Получаем рейтинг мастера до транзакции - внешний HTTP-вызов
	// не должен держать блокировку строки бронирования
	multiplier := neutralMultiplier
	if preview.StaffID != nil {
		multiplier = uc.fetchQualityMultiplier(ctx, *preview.StaffID)
	}

	var result *Response

	// 4. Выполняем операции с БД в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 4.1. Перечитываем бронирование с блокировкой строки
		booking, err := uc.bookingRepo.GetByIDForUpdate(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: failed to lock booking: %v", ErrInternal, err)
		}

		if !booking.CanBeCompleted() {
			uc.logger.Warn("CompleteBooking: booking id=%d lost the race, status=%s",
				req.BookingID, booking.Status)
			return ErrNotInProgress
		}

		// 4.2. Платёжный шлюз
		synthesized, paymentStatus, err := uc.settlePayment(txCtx, booking)
		if err != nil {
			return err
		}

		// 4.3. Переводим бронирование в completed
		if err := uc.bookingRepo.MarkCompleted(txCtx, booking.ID); err != nil {
			return fmt.Errorf("%w: failed to mark completed: %v", ErrInternal, err)
		}

		result = &Response{
			BookingID:          booking.ID,
			Status:             string(domain.StatusCompleted),
			PaymentStatus:      string(paymentStatus),
			PaymentSynthesized: synthesized,
			CompletedAt:        uc.timeProvider.Now(),
		}

		// 4.4. Начисляем комиссию мастеру в той же транзакции
		if booking.StaffID != nil {
			commission, err := uc.recordCommission(txCtx, booking, multiplier, req.TipAmount)
			if err != nil {
				return err
			}
			result.Commission = commission
		} else {
			uc.logger.Info("CompleteBooking: booking id=%d has no assigned staff, no commission", booking.ID)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("CompleteBooking: successfully completed booking id=%d", req.BookingID)
	return result, nil
}

// settlePayment реализует платёжный шлюз завершения услуги:
// - платежа нет -> синтезируем завершённый платеж наличными (оплата на месте)
// - платеж pending -> переводим в completed
// - платеж completed -> ничего не делаем
// - платеж failed/refunded -> завершение невозможно
func (uc *UseCase) settlePayment(ctx context.Context, booking *domain.Booking) (bool, domain.PaymentStatus, error) {
	payment, err := uc.paymentRepo.GetByBookingID(ctx, booking.ID)
	if err != nil {
		if errors.Is(err, paymentRepo.ErrPaymentNotFound) {
			if err := uc.synthesizeCashPayment(ctx, booking); err != nil {
				return false, "", err
			}
			return true, domain.PaymentCompleted, nil
		}
		return false, "", fmt.Errorf("%w: failed to get payment: %v", ErrInternal, err)
	}

	switch payment.Status {
	case domain.PaymentCompleted:
		return false, domain.PaymentCompleted, nil

	case domain.PaymentPending:
		if err := uc.paymentRepo.MarkCompleted(ctx, payment.ID); err != nil {
			return false, "", fmt.Errorf("%w: failed to complete payment: %v", ErrInternal, err)
		}
		if err := uc.bookingRepo.UpdatePaymentStatus(ctx, booking.ID, domain.PaymentCompleted); err != nil {
			return false, "", fmt.Errorf("%w: failed to update payment status: %v", ErrInternal, err)
		}
		uc.logger.Info("CompleteBooking: promoted pending payment id=%d to completed", payment.ID)
		return false, domain.PaymentCompleted, nil

	default:
		uc.logger.Warn("CompleteBooking: booking id=%d payment is %s, cannot complete",
			booking.ID, payment.Status)
		return false, "", ErrPaymentNotValid
	}
}

// synthesizeCashPayment создает завершённый платеж наличными на полную стоимость
// услуги. Применяется, когда клиент платит на месте и записи в реестре ещё нет
func (uc *UseCase) synthesizeCashPayment(ctx context.Context, booking *domain.Booking) error {
	uc.logger.Info("CompleteBooking: synthesizing cash payment for booking id=%d, amount=%.2f",
		booking.ID, booking.TotalAmount)

	payment := &domain.Payment{
		BookingID: ptr.Ptr(booking.ID),
		Amount:    booking.TotalAmount,
		Method:    domain.MethodCash,
		Status:    domain.PaymentCompleted,
	}

	if _, err := uc.paymentRepo.Create(ctx, payment); err != nil {
		return fmt.Errorf("%w: failed to synthesize cash payment: %v", ErrInternal, err)
	}

	if err := uc.bookingRepo.UpdatePaymentStatus(ctx, booking.ID, domain.PaymentCompleted); err != nil {
		return fmt.Errorf("%w: failed to update payment status: %v", ErrInternal, err)
	}

	return nil
}

// recordCommission разрешает структуру комиссии (персональная -> по услуге ->
// глобальный дефолт) и идемпотентно создает запись начисления
func (uc *UseCase) recordCommission(ctx context.Context, booking *domain.Booking, multiplier, tipAmount float64) (*CommissionResult, error) {
	staffID := *booking.StaffID

	structure, err := uc.commissionRepo.GetStructureWithHierarchy(ctx, staffID, booking.ServiceID)
	if err != nil {
		if errors.Is(err, commissionRepo.ErrStructureNotFound) {
			structure = domain.DefaultCommissionStructure()
			uc.logger.Info("CompleteBooking: no commission structure for staff=%d service=%d, using default",
				staffID, booking.ServiceID)
		} else {
			// Некорректно настроенная структура - ошибка конфигурации,
			// комиссию молча по дефолту не считаем
			uc.logger.Error("CompleteBooking: failed to resolve commission structure: %v", err)
			return nil, fmt.Errorf("%w: failed to resolve commission structure: %v", ErrInternal, err)
		}
	}

	base, err := structure.Calculate(booking.TotalAmount)
	if err != nil {
		uc.logger.Error("CompleteBooking: commission calculation failed: %v", err)
		return nil, fmt.Errorf("%w: commission calculation failed: %v", ErrInternal, err)
	}

	totalEarning := base * multiplier

	commission := &domain.StaffCommission{
		StaffID:           staffID,
		BranchID:          booking.BranchID,
		BookingID:         booking.ID,
		ServiceID:         booking.ServiceID,
		CommissionType:    structure.Type(),
		ServiceAmount:     booking.TotalAmount,
		CommissionAmount:  base,
		QualityMultiplier: multiplier,
		TotalEarning:      totalEarning,
		TipAmount:         tipAmount,
		PayoutStatus:      domain.PayoutPending,
		ApprovalStatus:    domain.ApprovalPending,
		EarnedDate:        booking.AppointmentDate,
	}

	created, err := uc.commissionRepo.CreateIdempotent(ctx, commission)
	if err != nil {
		if errors.Is(err, commissionRepo.ErrAlreadyRecorded) {
			// Комиссия по этому бронированию уже начислена - не дублируем
			uc.logger.Warn("CompleteBooking: commission for booking id=%d already recorded", booking.ID)
			return &CommissionResult{
				StaffID:         staffID,
				AlreadyRecorded: true,
			}, nil
		}
		uc.logger.Error("CompleteBooking: failed to create commission: %v", err)
		return nil, fmt.Errorf("%w: failed to create commission: %v", ErrInternal, err)
	}

	uc.logger.Info("CompleteBooking: recorded commission id=%d for staff=%d: base=%.2f x%.2f = %.2f",
		created.ID, staffID, base, multiplier, totalEarning)

	return &CommissionResult{
		CommissionID:      created.ID,
		StaffID:           staffID,
		CommissionType:    string(created.CommissionType),
		CommissionAmount:  created.CommissionAmount,
		QualityMultiplier: created.QualityMultiplier,
		TotalEarning:      created.TotalEarning,
	}, nil
}

// fetchQualityMultiplier получает множитель качества мастера
// Недоступность сервиса оценок и отсутствие оценок дают нейтральный множитель
func (uc *UseCase) fetchQualityMultiplier(ctx context.Context, staffID int64) float64 {
	rating, err := uc.performanceClient.GetAverageRatingWithGracefulDegradation(ctx, staffID)
	if err != nil {
		if errors.Is(err, performance.ErrRatingNotFound) {
			uc.logger.Info("CompleteBooking: staff=%d has no ratings yet, neutral multiplier", staffID)
		} else {
			uc.logger.Warn("CompleteBooking: rating unavailable for staff=%d, neutral multiplier: %v", staffID, err)
		}
		return neutralMultiplier
	}

	return domain.QualityMultiplier(rating.AverageRating)
}
