package cancel_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/lumispa/spa-core/internal/domain"
	bookingRepo "github.com/lumispa/spa-core/internal/infra/storage/booking"
	paymentRepo "github.com/lumispa/spa-core/internal/infra/storage/payment"
	"github.com/lumispa/spa-core/internal/usecase/match_waitlist"
)

// UseCase use case отмены бронирования клиентом
// После успешной отмены освободившийся слот предлагается листу ожидания
type UseCase struct {
	bookingRepo  BookingRepository
	paymentRepo  PaymentRepository
	matcher      WaitlistMatcher
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	paymentRepo PaymentRepository,
	matcher WaitlistMatcher,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		paymentRepo:  paymentRepo,
		matcher:      matcher,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case отмены бронирования
// Правило 24 часов: отмена допускается только если до визита не меньше суток
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CancelBooking: booking id=%d, reason=%q", req.BookingID, req.Reason)

	// 1. Валидация входных данных
	if req.BookingID <= 0 {
		return nil, fmt.Errorf("%w: bookingID must be positive", ErrInvalidInput)
	}
	if len(req.Reason) > domain.MaxCancellationReasonLength {
		return nil, fmt.Errorf("%w: reason is too long", ErrInvalidInput)
	}

	now := uc.timeProvider.Now()

	var cancelled *domain.Booking
	var paymentFailed bool

	// 2. Выполняем операции с БД в сериализуемой транзакции
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 2.1. Читаем бронирование с блокировкой строки
		booking, err := uc.bookingRepo.GetByIDForUpdate(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				uc.logger.Warn("CancelBooking: booking id=%d not found", req.BookingID)
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: failed to lock booking: %v", ErrInternal, err)
		}

		// 2.2. Проверяем статус и правило 24 часов раздельно,
		// чтобы вернуть точную причину отказа
		if booking.Status != domain.StatusPending && booking.Status != domain.StatusConfirmed {
			uc.logger.Warn("CancelBooking: booking id=%d cannot be cancelled, status=%s",
				req.BookingID, booking.Status)
			return ErrCannotCancel
		}

		if !booking.CanBeCancelled(now) {
			uc.logger.Warn("CancelBooking: booking id=%d is %.1f hours away, notice period is %d hours",
				req.BookingID, booking.HoursUntilAppointment(now), domain.CancellationNoticeHours)
			return ErrTooLateToCancel
		}

		// 2.3. Отменяем бронирование
		if err := uc.bookingRepo.Cancel(txCtx, req.BookingID, req.Reason); err != nil {
			return fmt.Errorf("%w: failed to cancel booking: %v", ErrInternal, err)
		}

		// 2.4. Незавершённый платеж переводим в failed - деньги не списаны.
		// Денормализованный payment_status бронирования обновляется той же
		// транзакцией, иначе отменённое бронирование продолжит отчитываться pending
		payment, err := uc.paymentRepo.GetByBookingID(txCtx, req.BookingID)
		if err != nil && !errors.Is(err, paymentRepo.ErrPaymentNotFound) {
			return fmt.Errorf("%w: failed to get payment: %v", ErrInternal, err)
		}
		if payment != nil && payment.CanFail() {
			if err := uc.paymentRepo.MarkFailed(txCtx, payment.ID); err != nil {
				return fmt.Errorf("%w: failed to fail payment: %v", ErrInternal, err)
			}
			if err := uc.bookingRepo.UpdatePaymentStatus(txCtx, req.BookingID, domain.PaymentFailed); err != nil {
				return fmt.Errorf("%w: failed to update booking payment status: %v", ErrInternal, err)
			}
			paymentFailed = true
			uc.logger.Info("CancelBooking: pending payment id=%d marked failed", payment.ID)
		}

		cancelled = booking
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("CancelBooking: successfully cancelled booking id=%d", req.BookingID)

	// 3. Предлагаем освободившийся слот листу ожидания - уже вне транзакции,
	// неудача подбора не откатывает отмену
	notified := uc.offerFreedSlot(ctx, cancelled)

	return &Response{
		BookingID:        req.BookingID,
		Status:           string(domain.StatusCancelled),
		PaymentFailed:    paymentFailed,
		CancelledAt:      now,
		WaitlistNotified: notified,
	}, nil
}

// offerFreedSlot запускает подбор листа ожидания под освободившийся слот
func (uc *UseCase) offerFreedSlot(ctx context.Context, booking *domain.Booking) int {
	resp, err := uc.matcher.Execute(ctx, &match_waitlist.Request{
		BranchID:  booking.BranchID,
		ServiceID: booking.ServiceID,
		Date:      booking.AppointmentDate,
		StartTime: booking.StartTime,
		EndTime:   booking.EndTime,
		StaffID:   booking.StaffID,
	})
	if err != nil {
		uc.logger.Error("CancelBooking: waitlist match failed for booking id=%d: %v", booking.ID, err)
		return 0
	}

	return len(resp.Matched)
}
