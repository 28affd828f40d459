package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/lumispa/spa-core/internal/domain"
	bookingRepo "github.com/lumispa/spa-core/internal/infra/storage/booking"
	paymentRepo "github.com/lumispa/spa-core/internal/infra/storage/payment"
	"github.com/lumispa/spa-core/internal/service/bookings/models"
)

// Service сервис простых переходов жизненного цикла бронирования.
// Создание, завершение и отмена - отдельные usecase-пакеты
type Service struct {
	bookingRepo BookingRepository
	paymentRepo PaymentRepository
	txManager   TransactionManager
	logger      Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	paymentRepo PaymentRepository,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo: bookingRepo,
		paymentRepo: paymentRepo,
		txManager:   txManager,
		logger:      logger,
	}
}

// GetByID получает бронирование по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d", id)

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainBooking(booking), nil
}

// GetByReference получает бронирование по уникальному коду
func (s *Service) GetByReference(ctx context.Context, reference string) (*models.BookingResponse, error) {
	s.logger.Info("GetByReference: fetching booking reference=%s", reference)

	booking, err := s.bookingRepo.GetByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByReference: booking reference=%s not found", reference)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByReference: repository error for reference=%s: %v", reference, err)
		return nil, fmt.Errorf("%w: GetByReference - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainBooking(booking), nil
}

// GetBranchBookings получает бронирования филиала с гибкой фильтрацией
// Поддерживает фильтрацию по мастеру, клиенту, периоду, статусу
// и включению неактивных бронирований
func (s *Service) GetBranchBookings(ctx context.Context, req *models.GetBranchBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetBranchBookings: fetching bookings for branch=%d", req.BranchID)

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetBranchBookings: invalid filter for branch=%d: %v", req.BranchID, err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}

	bookings, err := s.bookingRepo.GetByBranchWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetBranchBookings: repository error for branch=%d: %v", req.BranchID, err)
		return nil, fmt.Errorf("%w: GetBranchBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetBranchBookings: successfully fetched %d bookings for branch=%d", len(bookings), req.BranchID)
	return models.FromDomainBookingList(bookings), nil
}

// Confirm подтверждает бронирование
// Платёжный шлюз: переход pending -> confirmed допускается только при
// завершённом платеже (на самом бронировании или в платёжном реестре).
// Читаем бронирование с блокировкой строки, чтобы параллельное подтверждение
// не прошло дважды
func (s *Service) Confirm(ctx context.Context, bookingID int64) error {
	s.logger.Info("Confirm: confirming booking id=%d", bookingID)

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		booking, err := s.bookingRepo.GetByIDForUpdate(ctx, bookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: Confirm - repository error: %v", ErrInternal, err)
		}

		if !booking.CanBeConfirmed() {
			s.logger.Warn("Confirm: booking id=%d cannot be confirmed, status=%s", bookingID, booking.Status)
			return ErrCannotConfirm
		}

		if !s.hasCompletedPayment(ctx, booking) {
			s.logger.Warn("Confirm: booking id=%d has no completed payment, payment_status=%s",
				bookingID, booking.PaymentStatus)
			return ErrPaymentRequired
		}

		if err := s.bookingRepo.MarkConfirmed(ctx, bookingID); err != nil {
			return fmt.Errorf("%w: Confirm - mark confirmed: %v", ErrInternal, err)
		}

		return nil
	})

	if err != nil {
		return err
	}

	s.logger.Info("Confirm: successfully confirmed booking id=%d", bookingID)
	return nil
}

// Start отмечает начало оказания услуги
// Допускается только из статуса confirmed
func (s *Service) Start(ctx context.Context, bookingID int64) error {
	s.logger.Info("Start: starting service for booking id=%d", bookingID)

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("Start: booking id=%d not found", bookingID)
			return ErrBookingNotFound
		}
		s.logger.Error("Start: repository error for booking id=%d: %v", bookingID, err)
		return fmt.Errorf("%w: Start - repository error: %v", ErrInternal, err)
	}

	if !booking.CanBeStarted() {
		s.logger.Warn("Start: booking id=%d cannot be started, status=%s", bookingID, booking.Status)
		return ErrCannotStart
	}

	// Условие по статусу продублировано в WHERE - параллельный старт
	// того же бронирования завершится ErrBookingNotFound
	if err := s.bookingRepo.MarkInProgress(ctx, bookingID); err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("Start: booking id=%d lost the race, state unchanged", bookingID)
			return ErrCannotStart
		}
		s.logger.Error("Start: repository error for booking id=%d: %v", bookingID, err)
		return fmt.Errorf("%w: Start - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Start: successfully started service for booking id=%d", bookingID)
	return nil
}

// MarkNoShow фиксирует неявку клиента
// Допускается из любого активного статуса, комиссия не начисляется.
// Подбор листа ожидания не запускается: неявка фиксируется во время
// или после слота, когда слот уже не продать
func (s *Service) MarkNoShow(ctx context.Context, bookingID int64) error {
	s.logger.Info("MarkNoShow: marking booking id=%d as no-show", bookingID)

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("MarkNoShow: booking id=%d not found", bookingID)
			return ErrBookingNotFound
		}
		s.logger.Error("MarkNoShow: repository error for booking id=%d: %v", bookingID, err)
		return fmt.Errorf("%w: MarkNoShow - repository error: %v", ErrInternal, err)
	}

	if !booking.IsActive() {
		s.logger.Warn("MarkNoShow: booking id=%d cannot be marked no-show, status=%s", bookingID, booking.Status)
		return ErrCannotMarkNoShow
	}

	if err := s.bookingRepo.MarkNoShow(ctx, bookingID); err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return ErrCannotMarkNoShow
		}
		s.logger.Error("MarkNoShow: repository error for booking id=%d: %v", bookingID, err)
		return fmt.Errorf("%w: MarkNoShow - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("MarkNoShow: successfully marked booking id=%d as no-show", bookingID)
	return nil
}

// Refund оформляет возврат по платежу бронирования
// Допускается только из completed, сумма не может превышать исходную.
// Денормализованный payment_status бронирования обновляется в той же транзакции
func (s *Service) Refund(ctx context.Context, bookingID int64, amount float64) error {
	s.logger.Info("Refund: refunding %.2f for booking id=%d", amount, bookingID)

	if amount <= 0 {
		return fmt.Errorf("%w: refund amount must be positive", ErrInvalidInput)
	}

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		if _, err := s.bookingRepo.GetByIDForUpdate(ctx, bookingID); err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: Refund - repository error: %v", ErrInternal, err)
		}

		payment, err := s.paymentRepo.GetByBookingID(ctx, bookingID)
		if err != nil {
			if errors.Is(err, paymentRepo.ErrPaymentNotFound) {
				s.logger.Warn("Refund: booking id=%d has no payment to refund", bookingID)
				return ErrCannotRefund
			}
			return fmt.Errorf("%w: Refund - payment lookup: %v", ErrInternal, err)
		}

		if !payment.CanRefund(amount) {
			s.logger.Warn("Refund: payment id=%d cannot refund %.2f, status=%s amount=%.2f",
				payment.ID, amount, payment.Status, payment.Amount)
			return ErrCannotRefund
		}

		if err := s.paymentRepo.Refund(ctx, payment.ID, amount); err != nil {
			if errors.Is(err, paymentRepo.ErrInvalidState) {
				return ErrCannotRefund
			}
			return fmt.Errorf("%w: Refund - mark refunded: %v", ErrInternal, err)
		}

		if err := s.bookingRepo.UpdatePaymentStatus(ctx, bookingID, domain.PaymentRefunded); err != nil {
			return fmt.Errorf("%w: Refund - update booking payment status: %v", ErrInternal, err)
		}

		return nil
	})

	if err != nil {
		return err
	}

	s.logger.Info("Refund: successfully refunded %.2f for booking id=%d", amount, bookingID)
	return nil
}

// hasCompletedPayment проверяет платёжный шлюз: завершённый платеж на
// бронировании или завершённая запись в платёжном реестре
func (s *Service) hasCompletedPayment(ctx context.Context, booking *domain.Booking) bool {
	if booking.HasValidPayment() {
		return true
	}

	payment, err := s.paymentRepo.GetByBookingID(ctx, booking.ID)
	if err != nil {
		if !errors.Is(err, paymentRepo.ErrPaymentNotFound) {
			s.logger.Error("hasCompletedPayment: payment lookup failed for booking id=%d: %v", booking.ID, err)
		}
		return false
	}

	return payment.IsCompleted()
}
