package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumispa/spa-core/internal/domain"
	bookingRepo "github.com/lumispa/spa-core/internal/infra/storage/booking"
	paymentRepo "github.com/lumispa/spa-core/internal/infra/storage/payment"
)

// Фейки зависимостей

type fakeBookingRepo struct {
	booking *domain.Booking

	confirmedID  int64
	inProgressID int64
	noShowID     int64

	paymentStatusID int64
	paymentStatus   domain.PaymentStatus

	markInProgressErr error
}

func (f *fakeBookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	if f.booking == nil || f.booking.ID != id {
		return nil, bookingRepo.ErrBookingNotFound
	}
	copied := *f.booking
	return &copied, nil
}

func (f *fakeBookingRepo) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Booking, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeBookingRepo) GetByReference(_ context.Context, reference string) (*domain.Booking, error) {
	if f.booking == nil || f.booking.Reference != reference {
		return nil, bookingRepo.ErrBookingNotFound
	}
	copied := *f.booking
	return &copied, nil
}

func (f *fakeBookingRepo) GetByBranchWithFilter(_ context.Context, _ domain.BranchBookingsFilter) ([]*domain.Booking, error) {
	if f.booking == nil {
		return nil, nil
	}
	copied := *f.booking
	return []*domain.Booking{&copied}, nil
}

func (f *fakeBookingRepo) MarkConfirmed(_ context.Context, id int64) error {
	f.confirmedID = id
	f.booking.Status = domain.StatusConfirmed
	return nil
}

func (f *fakeBookingRepo) MarkInProgress(_ context.Context, id int64) error {
	if f.markInProgressErr != nil {
		return f.markInProgressErr
	}
	f.inProgressID = id
	f.booking.Status = domain.StatusInProgress
	return nil
}

func (f *fakeBookingRepo) MarkNoShow(_ context.Context, id int64) error {
	f.noShowID = id
	f.booking.Status = domain.StatusNoShow
	return nil
}

func (f *fakeBookingRepo) UpdatePaymentStatus(_ context.Context, id int64, status domain.PaymentStatus) error {
	f.paymentStatusID = id
	f.paymentStatus = status
	return nil
}

type fakePaymentRepo struct {
	payment *domain.Payment

	refundedID   int64
	refundAmount float64
	refundErr    error
}

func (f *fakePaymentRepo) GetByBookingID(_ context.Context, _ int64) (*domain.Payment, error) {
	if f.payment == nil {
		return nil, paymentRepo.ErrPaymentNotFound
	}
	copied := *f.payment
	return &copied, nil
}

func (f *fakePaymentRepo) Refund(_ context.Context, id int64, amount float64) error {
	if f.refundErr != nil {
		return f.refundErr
	}
	f.refundedID = id
	f.refundAmount = amount
	return nil
}

type fakeTxManager struct{}

func (f *fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeTxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func testBooking(status domain.BookingStatus, paymentStatus domain.PaymentStatus) *domain.Booking {
	return &domain.Booking{
		ID:              10,
		Reference:       "BK-A1B2C3D4",
		BranchID:        1,
		ServiceID:       2,
		ClientID:        3,
		AppointmentDate: time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC),
		StartTime:       "10:00",
		EndTime:         "11:00",
		Status:          status,
		PaymentStatus:   paymentStatus,
		TotalAmount:     5000,
	}
}

func newTestService(b *fakeBookingRepo, p *fakePaymentRepo) *Service {
	return NewService(b, p, &fakeTxManager{}, nopLogger{})
}

func TestConfirm_RequiresCompletedPayment(t *testing.T) {
	b := &fakeBookingRepo{booking: testBooking(domain.StatusPending, domain.PaymentPending)}
	p := &fakePaymentRepo{}

	err := newTestService(b, p).Confirm(context.Background(), 10)
	assert.ErrorIs(t, err, ErrPaymentRequired)
	assert.Zero(t, b.confirmedID)
}

func TestConfirm_PaymentOnBooking(t *testing.T) {
	b := &fakeBookingRepo{booking: testBooking(domain.StatusPending, domain.PaymentCompleted)}
	p := &fakePaymentRepo{}

	err := newTestService(b, p).Confirm(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), b.confirmedID)
}

func TestConfirm_PaymentInLedger(t *testing.T) {
	// Бронирование ещё помечено pending, но в реестре платеж завершён
	b := &fakeBookingRepo{booking: testBooking(domain.StatusPending, domain.PaymentPending)}
	p := &fakePaymentRepo{payment: &domain.Payment{ID: 42, Status: domain.PaymentCompleted}}

	err := newTestService(b, p).Confirm(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), b.confirmedID)
}

func TestConfirm_StatusGate(t *testing.T) {
	for _, status := range []domain.BookingStatus{
		domain.StatusConfirmed,
		domain.StatusInProgress,
		domain.StatusCompleted,
		domain.StatusCancelled,
		domain.StatusNoShow,
	} {
		t.Run(string(status), func(t *testing.T) {
			b := &fakeBookingRepo{booking: testBooking(status, domain.PaymentCompleted)}
			err := newTestService(b, &fakePaymentRepo{}).Confirm(context.Background(), 10)
			assert.ErrorIs(t, err, ErrCannotConfirm)
		})
	}
}

func TestStart_FromConfirmed(t *testing.T) {
	b := &fakeBookingRepo{booking: testBooking(domain.StatusConfirmed, domain.PaymentCompleted)}

	svc := newTestService(b, &fakePaymentRepo{})
	require.NoError(t, svc.Start(context.Background(), 10))
	assert.Equal(t, int64(10), b.inProgressID)

	// Повторный старт того же бронирования не проходит, статус не меняется
	err := svc.Start(context.Background(), 10)
	assert.ErrorIs(t, err, ErrCannotStart)
	assert.Equal(t, domain.StatusInProgress, b.booking.Status)
}

func TestStart_LosesRace(t *testing.T) {
	// Статус прошёл проверку, но UPDATE не нашёл строку - параллельный старт
	b := &fakeBookingRepo{
		booking:           testBooking(domain.StatusConfirmed, domain.PaymentCompleted),
		markInProgressErr: bookingRepo.ErrBookingNotFound,
	}

	err := newTestService(b, &fakePaymentRepo{}).Start(context.Background(), 10)
	assert.ErrorIs(t, err, ErrCannotStart)
}

func TestMarkNoShow_FromAnyActiveStatus(t *testing.T) {
	// Неявка - голая мутация без дополнительных условий,
	// допускается из любого активного статуса
	for _, status := range []domain.BookingStatus{
		domain.StatusPending,
		domain.StatusConfirmed,
		domain.StatusInProgress,
	} {
		t.Run(string(status), func(t *testing.T) {
			b := &fakeBookingRepo{booking: testBooking(status, domain.PaymentPending)}
			require.NoError(t, newTestService(b, &fakePaymentRepo{}).MarkNoShow(context.Background(), 10))
			assert.Equal(t, int64(10), b.noShowID)
		})
	}
}

func TestMarkNoShow_TerminalStatusesRejected(t *testing.T) {
	for _, status := range []domain.BookingStatus{
		domain.StatusCompleted,
		domain.StatusCancelled,
		domain.StatusNoShow,
	} {
		t.Run(string(status), func(t *testing.T) {
			b := &fakeBookingRepo{booking: testBooking(status, domain.PaymentPending)}
			err := newTestService(b, &fakePaymentRepo{}).MarkNoShow(context.Background(), 10)
			assert.ErrorIs(t, err, ErrCannotMarkNoShow)
		})
	}
}

func TestRefund_Success(t *testing.T) {
	b := &fakeBookingRepo{booking: testBooking(domain.StatusCancelled, domain.PaymentCompleted)}
	p := &fakePaymentRepo{payment: &domain.Payment{ID: 42, Status: domain.PaymentCompleted, Amount: 5000}}

	require.NoError(t, newTestService(b, p).Refund(context.Background(), 10, 5000))
	assert.Equal(t, int64(42), p.refundedID)
	assert.Equal(t, 5000.0, p.refundAmount)

	// Денормализованный статус оплаты бронирования переведён в refunded
	assert.Equal(t, int64(10), b.paymentStatusID)
	assert.Equal(t, domain.PaymentRefunded, b.paymentStatus)
}

func TestRefund_PartialAmount(t *testing.T) {
	b := &fakeBookingRepo{booking: testBooking(domain.StatusCancelled, domain.PaymentCompleted)}
	p := &fakePaymentRepo{payment: &domain.Payment{ID: 42, Status: domain.PaymentCompleted, Amount: 5000}}

	require.NoError(t, newTestService(b, p).Refund(context.Background(), 10, 1500))
	assert.Equal(t, 1500.0, p.refundAmount)
}

func TestRefund_AboveOriginalAmount(t *testing.T) {
	b := &fakeBookingRepo{booking: testBooking(domain.StatusCancelled, domain.PaymentCompleted)}
	p := &fakePaymentRepo{payment: &domain.Payment{ID: 42, Status: domain.PaymentCompleted, Amount: 5000}}

	err := newTestService(b, p).Refund(context.Background(), 10, 5000.01)
	assert.ErrorIs(t, err, ErrCannotRefund)
	assert.Zero(t, p.refundedID)
	assert.Zero(t, b.paymentStatusID)
}

func TestRefund_NotCompleted(t *testing.T) {
	for _, status := range []domain.PaymentStatus{
		domain.PaymentPending,
		domain.PaymentFailed,
		domain.PaymentRefunded,
	} {
		t.Run(string(status), func(t *testing.T) {
			b := &fakeBookingRepo{booking: testBooking(domain.StatusCancelled, status)}
			p := &fakePaymentRepo{payment: &domain.Payment{ID: 42, Status: status, Amount: 5000}}

			err := newTestService(b, p).Refund(context.Background(), 10, 1000)
			assert.ErrorIs(t, err, ErrCannotRefund)
		})
	}
}

func TestRefund_NoPayment(t *testing.T) {
	b := &fakeBookingRepo{booking: testBooking(domain.StatusCancelled, domain.PaymentPending)}

	err := newTestService(b, &fakePaymentRepo{}).Refund(context.Background(), 10, 1000)
	assert.ErrorIs(t, err, ErrCannotRefund)
}

func TestRefund_LosesRace(t *testing.T) {
	// Guarded UPDATE не нашёл строку в completed - конкурентный возврат успел раньше
	b := &fakeBookingRepo{booking: testBooking(domain.StatusCancelled, domain.PaymentCompleted)}
	p := &fakePaymentRepo{
		payment:   &domain.Payment{ID: 42, Status: domain.PaymentCompleted, Amount: 5000},
		refundErr: paymentRepo.ErrInvalidState,
	}

	err := newTestService(b, p).Refund(context.Background(), 10, 1000)
	assert.ErrorIs(t, err, ErrCannotRefund)
	assert.Zero(t, b.paymentStatusID)
}

func TestRefund_Validation(t *testing.T) {
	b := &fakeBookingRepo{booking: testBooking(domain.StatusCancelled, domain.PaymentCompleted)}

	err := newTestService(b, &fakePaymentRepo{}).Refund(context.Background(), 10, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = newTestService(b, &fakePaymentRepo{}).Refund(context.Background(), 10, -100)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRefund_BookingNotFound(t *testing.T) {
	err := newTestService(&fakeBookingRepo{}, &fakePaymentRepo{}).Refund(context.Background(), 99, 1000)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestGetByID(t *testing.T) {
	b := &fakeBookingRepo{booking: testBooking(domain.StatusPending, domain.PaymentPending)}
	svc := newTestService(b, &fakePaymentRepo{})

	resp, err := svc.GetByID(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, "BK-A1B2C3D4", resp.Reference)
	assert.Equal(t, "2026-09-05", resp.AppointmentDate)
	assert.Equal(t, 60, resp.DurationMinutes)

	_, err = svc.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestGetByReference(t *testing.T) {
	b := &fakeBookingRepo{booking: testBooking(domain.StatusPending, domain.PaymentPending)}
	svc := newTestService(b, &fakePaymentRepo{})

	resp, err := svc.GetByReference(context.Background(), "BK-A1B2C3D4")
	require.NoError(t, err)
	assert.Equal(t, int64(10), resp.ID)

	_, err = svc.GetByReference(context.Background(), "BK-UNKNOWN1")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}
