package cancel_booking

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumispa/spa-core/internal/domain"
	bookingRepo "github.com/lumispa/spa-core/internal/infra/storage/booking"
	paymentRepo "github.com/lumispa/spa-core/internal/infra/storage/payment"
	"github.com/lumispa/spa-core/internal/usecase/match_waitlist"
	"github.com/lumispa/spa-core/pkg/ptr"
)

// Фейки зависимостей

type fakeBookingRepo struct {
	booking      *domain.Booking
	cancelledID  int64
	cancelReason string

	paymentStatusID int64
	paymentStatus   domain.PaymentStatus
}

func (f *fakeBookingRepo) GetByIDForUpdate(_ context.Context, id int64) (*domain.Booking, error) {
	if f.booking == nil || f.booking.ID != id {
		return nil, bookingRepo.ErrBookingNotFound
	}
	copied := *f.booking
	return &copied, nil
}

func (f *fakeBookingRepo) Cancel(_ context.Context, id int64, reason string) error {
	f.cancelledID = id
	f.cancelReason = reason
	return nil
}

func (f *fakeBookingRepo) UpdatePaymentStatus(_ context.Context, id int64, status domain.PaymentStatus) error {
	f.paymentStatusID = id
	f.paymentStatus = status
	return nil
}

type fakePaymentRepo struct {
	payment  *domain.Payment
	failedID int64
}

func (f *fakePaymentRepo) GetByBookingID(_ context.Context, _ int64) (*domain.Payment, error) {
	if f.payment == nil {
		return nil, paymentRepo.ErrPaymentNotFound
	}
	copied := *f.payment
	return &copied, nil
}

func (f *fakePaymentRepo) MarkFailed(_ context.Context, id int64) error {
	f.failedID = id
	return nil
}

type fakeMatcher struct {
	req     *match_waitlist.Request
	matched int
	err     error
}

func (f *fakeMatcher) Execute(_ context.Context, req *match_waitlist.Request) (*match_waitlist.Response, error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	resp := &match_waitlist.Response{}
	for i := 0; i < f.matched; i++ {
		resp.Matched = append(resp.Matched, match_waitlist.MatchedEntry{EntryID: int64(i + 1)})
	}
	return resp, nil
}

type fakeTxManager struct{}

func (f *fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

var testNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

// cancellableBooking бронирование с визитом через 48 часов
func cancellableBooking(status domain.BookingStatus) *domain.Booking {
	return &domain.Booking{
		ID:              10,
		BranchID:        1,
		ServiceID:       2,
		ClientID:        3,
		StaffID:         ptr.Ptr(int64(7)),
		AppointmentDate: time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC),
		StartTime:       "12:00",
		EndTime:         "13:00",
		Status:          status,
		PaymentStatus:   domain.PaymentPending,
		TotalAmount:     5000,
	}
}

func newTestUseCase(b *fakeBookingRepo, p *fakePaymentRepo, m *fakeMatcher) *UseCase {
	uc := NewUseCase(b, p, m, &fakeTxManager{}, nopLogger{})
	uc.timeProvider = fixedTime{now: testNow}
	return uc
}

func TestCancelBooking_Success(t *testing.T) {
	b := &fakeBookingRepo{booking: cancellableBooking(domain.StatusConfirmed)}
	p := &fakePaymentRepo{}
	m := &fakeMatcher{matched: 2}

	resp, err := newTestUseCase(b, p, m).Execute(context.Background(), &Request{
		BookingID: 10,
		Reason:    "клиент заболел",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(10), b.cancelledID)
	assert.Equal(t, "клиент заболел", b.cancelReason)
	assert.Equal(t, string(domain.StatusCancelled), resp.Status)
	assert.False(t, resp.PaymentFailed)
	assert.Equal(t, 2, resp.WaitlistNotified)

	// Освободившийся слот передан подбору как есть
	require.NotNil(t, m.req)
	assert.Equal(t, int64(1), m.req.BranchID)
	assert.Equal(t, int64(2), m.req.ServiceID)
	assert.Equal(t, "12:00", m.req.StartTime.String())
}

func TestCancelBooking_NoticeWindow(t *testing.T) {
	// Визит через 23 часа - отмена запрещена
	booking := cancellableBooking(domain.StatusConfirmed)
	booking.AppointmentDate = time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)
	booking.StartTime = "11:00"

	b := &fakeBookingRepo{booking: booking}
	_, err := newTestUseCase(b, &fakePaymentRepo{}, &fakeMatcher{}).Execute(context.Background(), &Request{BookingID: 10})
	assert.ErrorIs(t, err, ErrTooLateToCancel)
	assert.Zero(t, b.cancelledID)

	// Ровно 24 часа - отмена разрешена
	booking.StartTime = "12:00"
	b = &fakeBookingRepo{booking: booking}
	_, err = newTestUseCase(b, &fakePaymentRepo{}, &fakeMatcher{}).Execute(context.Background(), &Request{BookingID: 10})
	assert.NoError(t, err)
	assert.Equal(t, int64(10), b.cancelledID)
}

func TestCancelBooking_StatusGate(t *testing.T) {
	for _, status := range []domain.BookingStatus{
		domain.StatusInProgress,
		domain.StatusCompleted,
		domain.StatusCancelled,
		domain.StatusNoShow,
	} {
		t.Run(string(status), func(t *testing.T) {
			b := &fakeBookingRepo{booking: cancellableBooking(status)}
			_, err := newTestUseCase(b, &fakePaymentRepo{}, &fakeMatcher{}).Execute(context.Background(), &Request{BookingID: 10})
			assert.ErrorIs(t, err, ErrCannotCancel)
		})
	}
}

func TestCancelBooking_FailsPendingPayment(t *testing.T) {
	b := &fakeBookingRepo{booking: cancellableBooking(domain.StatusPending)}
	p := &fakePaymentRepo{payment: &domain.Payment{
		ID:     42,
		Status: domain.PaymentPending,
	}}

	resp, err := newTestUseCase(b, p, &fakeMatcher{}).Execute(context.Background(), &Request{BookingID: 10})
	require.NoError(t, err)

	assert.True(t, resp.PaymentFailed)
	assert.Equal(t, int64(42), p.failedID)

	// Денормализованный статус оплаты на бронировании тоже переведён в failed
	assert.Equal(t, int64(10), b.paymentStatusID)
	assert.Equal(t, domain.PaymentFailed, b.paymentStatus)
}

func TestCancelBooking_CompletedPaymentUntouched(t *testing.T) {
	b := &fakeBookingRepo{booking: cancellableBooking(domain.StatusConfirmed)}
	p := &fakePaymentRepo{payment: &domain.Payment{
		ID:     42,
		Status: domain.PaymentCompleted,
	}}

	resp, err := newTestUseCase(b, p, &fakeMatcher{}).Execute(context.Background(), &Request{BookingID: 10})
	require.NoError(t, err)

	assert.False(t, resp.PaymentFailed)
	assert.Zero(t, p.failedID)
	assert.Zero(t, b.paymentStatusID)
}

func TestCancelBooking_MatcherFailureDoesNotFailCancellation(t *testing.T) {
	b := &fakeBookingRepo{booking: cancellableBooking(domain.StatusConfirmed)}
	m := &fakeMatcher{err: assert.AnError}

	resp, err := newTestUseCase(b, &fakePaymentRepo{}, m).Execute(context.Background(), &Request{BookingID: 10})
	require.NoError(t, err)

	assert.Equal(t, int64(10), b.cancelledID)
	assert.Zero(t, resp.WaitlistNotified)
}

func TestCancelBooking_NotFound(t *testing.T) {
	_, err := newTestUseCase(&fakeBookingRepo{}, &fakePaymentRepo{}, &fakeMatcher{}).
		Execute(context.Background(), &Request{BookingID: 10})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestCancelBooking_ReasonTooLong(t *testing.T) {
	_, err := newTestUseCase(&fakeBookingRepo{}, &fakePaymentRepo{}, &fakeMatcher{}).
		Execute(context.Background(), &Request{
			BookingID: 10,
			Reason:    strings.Repeat("a", domain.MaxCancellationReasonLength+1),
		})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
