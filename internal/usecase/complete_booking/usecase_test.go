package complete_booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumispa/spa-core/internal/domain"
	bookingRepo "github.com/lumispa/spa-core/internal/infra/storage/booking"
	commissionRepo "github.com/lumispa/spa-core/internal/infra/storage/commission"
	paymentRepo "github.com/lumispa/spa-core/internal/infra/storage/payment"
	"github.com/lumispa/spa-core/internal/integrations/performance"
	"github.com/lumispa/spa-core/pkg/ptr"
)

// Фейки зависимостей

type fakeBookingRepo struct {
	booking        *domain.Booking
	markedComplete bool
	paymentStatus  *domain.PaymentStatus
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

func (f *fakeBookingRepo) MarkCompleted(_ context.Context, _ int64) error {
	f.markedComplete = true
	return nil
}

func (f *fakeBookingRepo) UpdatePaymentStatus(_ context.Context, _ int64, status domain.PaymentStatus) error {
	f.paymentStatus = &status
	return nil
}

type fakePaymentRepo struct {
	payment         *domain.Payment
	created         *domain.Payment
	markedCompleted bool
}

func (f *fakePaymentRepo) GetByBookingID(_ context.Context, _ int64) (*domain.Payment, error) {
	if f.payment == nil {
		return nil, paymentRepo.ErrPaymentNotFound
	}
	copied := *f.payment
	return &copied, nil
}

func (f *fakePaymentRepo) Create(_ context.Context, payment *domain.Payment) (*domain.Payment, error) {
	f.created = payment
	created := *payment
	created.ID = 501
	return &created, nil
}

func (f *fakePaymentRepo) MarkCompleted(_ context.Context, _ int64) error {
	f.markedCompleted = true
	return nil
}

type fakeCommissionRepo struct {
	structure       domain.CommissionStructure
	structureErr    error
	created         *domain.StaffCommission
	alreadyRecorded bool
}

func (f *fakeCommissionRepo) GetStructureWithHierarchy(_ context.Context, _, _ int64) (domain.CommissionStructure, error) {
	if f.structureErr != nil {
		return nil, f.structureErr
	}
	return f.structure, nil
}

func (f *fakeCommissionRepo) CreateIdempotent(_ context.Context, c *domain.StaffCommission) (*domain.StaffCommission, error) {
	if f.alreadyRecorded {
		return nil, commissionRepo.ErrAlreadyRecorded
	}
	f.created = c
	created := *c
	created.ID = 301
	return &created, nil
}

type fakePerformanceClient struct {
	rating *performance.StaffRating
	err    error
}

func (f *fakePerformanceClient) GetAverageRatingWithGracefulDegradation(_ context.Context, _ int64) (*performance.StaffRating, error) {
	return f.rating, f.err
}

type fakeTxManager struct{}

func (f *fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func inProgressBooking() *domain.Booking {
	return &domain.Booking{
		ID:              10,
		Reference:       "BK-A1B2C3D4",
		BranchID:        1,
		ServiceID:       2,
		ClientID:        3,
		StaffID:         ptr.Ptr(int64(7)),
		AppointmentDate: time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC),
		StartTime:       "10:00",
		EndTime:         "11:00",
		Status:          domain.StatusInProgress,
		PaymentStatus:   domain.PaymentPending,
		TotalAmount:     5000,
	}
}

func newTestUseCase(b *fakeBookingRepo, p *fakePaymentRepo, c *fakeCommissionRepo, perf *fakePerformanceClient) *UseCase {
	return NewUseCase(b, p, c, perf, &fakeTxManager{}, nopLogger{})
}

func TestCompleteBooking_SynthesizesCashPayment(t *testing.T) {
	b := &fakeBookingRepo{booking: inProgressBooking()}
	p := &fakePaymentRepo{} // платежа в реестре нет
	c := &fakeCommissionRepo{structure: domain.PercentageStructure{Rate: 20}}
	perf := &fakePerformanceClient{rating: &performance.StaffRating{AverageRating: 4.9}}

	resp, err := newTestUseCase(b, p, c, perf).Execute(context.Background(), &Request{BookingID: 10})
	require.NoError(t, err)

	assert.True(t, resp.PaymentSynthesized)
	assert.Equal(t, string(domain.PaymentCompleted), resp.PaymentStatus)
	assert.True(t, b.markedComplete)

	// Синтезированный платеж: наличные, завершён, на полную стоимость
	require.NotNil(t, p.created)
	assert.Equal(t, domain.MethodCash, p.created.Method)
	assert.Equal(t, domain.PaymentCompleted, p.created.Status)
	assert.Equal(t, 5000.0, p.created.Amount)

	// Комиссия: 5000 * 20% = 1000, множитель 1.15 при рейтинге 4.9
	require.NotNil(t, resp.Commission)
	assert.Equal(t, 1000.0, resp.Commission.CommissionAmount)
	assert.Equal(t, 1.15, resp.Commission.QualityMultiplier)
	assert.InDelta(t, 1150.0, resp.Commission.TotalEarning, 0.001)
}

func TestCompleteBooking_PromotesPendingPayment(t *testing.T) {
	b := &fakeBookingRepo{booking: inProgressBooking()}
	p := &fakePaymentRepo{payment: &domain.Payment{
		ID:        42,
		BookingID: ptr.Ptr(int64(10)),
		Amount:    5000,
		Method:    domain.MethodCard,
		Status:    domain.PaymentPending,
	}}
	c := &fakeCommissionRepo{structure: domain.PercentageStructure{Rate: 25}}
	perf := &fakePerformanceClient{err: performance.ErrRatingNotFound}

	resp, err := newTestUseCase(b, p, c, perf).Execute(context.Background(), &Request{BookingID: 10})
	require.NoError(t, err)

	assert.False(t, resp.PaymentSynthesized)
	assert.True(t, p.markedCompleted)
	assert.Nil(t, p.created)

	// Рейтинга нет - нейтральный множитель
	require.NotNil(t, resp.Commission)
	assert.Equal(t, 1.0, resp.Commission.QualityMultiplier)
	assert.InDelta(t, 1250.0, resp.Commission.TotalEarning, 0.001)
}

func TestCompleteBooking_RejectsTerminalPayment(t *testing.T) {
	for _, status := range []domain.PaymentStatus{domain.PaymentFailed, domain.PaymentRefunded} {
		t.Run(string(status), func(t *testing.T) {
			b := &fakeBookingRepo{booking: inProgressBooking()}
			p := &fakePaymentRepo{payment: &domain.Payment{ID: 42, Status: status}}
			c := &fakeCommissionRepo{structure: domain.PercentageStructure{Rate: 25}}
			perf := &fakePerformanceClient{err: performance.ErrRatingNotFound}

			_, err := newTestUseCase(b, p, c, perf).Execute(context.Background(), &Request{BookingID: 10})
			assert.ErrorIs(t, err, ErrPaymentNotValid)
			assert.False(t, b.markedComplete)
		})
	}
}

func TestCompleteBooking_RequiresInProgress(t *testing.T) {
	for _, status := range []domain.BookingStatus{
		domain.StatusPending,
		domain.StatusConfirmed,
		domain.StatusCompleted,
		domain.StatusCancelled,
		domain.StatusNoShow,
	} {
		t.Run(string(status), func(t *testing.T) {
			booking := inProgressBooking()
			booking.Status = status

			b := &fakeBookingRepo{booking: booking}
			p := &fakePaymentRepo{}
			c := &fakeCommissionRepo{structure: domain.PercentageStructure{Rate: 25}}
			perf := &fakePerformanceClient{err: performance.ErrRatingNotFound}

			_, err := newTestUseCase(b, p, c, perf).Execute(context.Background(), &Request{BookingID: 10})
			assert.ErrorIs(t, err, ErrNotInProgress)
		})
	}
}

func TestCompleteBooking_DefaultStructureWhenNoneConfigured(t *testing.T) {
	b := &fakeBookingRepo{booking: inProgressBooking()}
	p := &fakePaymentRepo{}
	c := &fakeCommissionRepo{structureErr: commissionRepo.ErrStructureNotFound}
	perf := &fakePerformanceClient{err: performance.ErrRatingNotFound}

	resp, err := newTestUseCase(b, p, c, perf).Execute(context.Background(), &Request{BookingID: 10})
	require.NoError(t, err)

	// Глобальный дефолт 25%
	require.NotNil(t, resp.Commission)
	assert.Equal(t, string(domain.CommissionPercentage), resp.Commission.CommissionType)
	assert.InDelta(t, 1250.0, resp.Commission.TotalEarning, 0.001)
}

func TestCompleteBooking_CommissionIdempotent(t *testing.T) {
	b := &fakeBookingRepo{booking: inProgressBooking()}
	p := &fakePaymentRepo{}
	c := &fakeCommissionRepo{
		structure:       domain.PercentageStructure{Rate: 25},
		alreadyRecorded: true,
	}
	perf := &fakePerformanceClient{err: performance.ErrRatingNotFound}

	resp, err := newTestUseCase(b, p, c, perf).Execute(context.Background(), &Request{BookingID: 10})
	require.NoError(t, err)

	require.NotNil(t, resp.Commission)
	assert.True(t, resp.Commission.AlreadyRecorded)
	assert.Zero(t, resp.Commission.TotalEarning)
}

func TestCompleteBooking_NoStaffNoCommission(t *testing.T) {
	booking := inProgressBooking()
	booking.StaffID = nil

	b := &fakeBookingRepo{booking: booking}
	p := &fakePaymentRepo{}
	c := &fakeCommissionRepo{structure: domain.PercentageStructure{Rate: 25}}
	perf := &fakePerformanceClient{err: performance.ErrRatingNotFound}

	resp, err := newTestUseCase(b, p, c, perf).Execute(context.Background(), &Request{BookingID: 10})
	require.NoError(t, err)

	assert.Nil(t, resp.Commission)
	assert.True(t, b.markedComplete)
}

func TestCompleteBooking_TipPassedThrough(t *testing.T) {
	b := &fakeBookingRepo{booking: inProgressBooking()}
	p := &fakePaymentRepo{}
	c := &fakeCommissionRepo{structure: domain.PercentageStructure{Rate: 25}}
	perf := &fakePerformanceClient{err: performance.ErrRatingNotFound}

	_, err := newTestUseCase(b, p, c, perf).Execute(context.Background(), &Request{BookingID: 10, TipAmount: 300})
	require.NoError(t, err)

	require.NotNil(t, c.created)
	assert.Equal(t, 300.0, c.created.TipAmount)
	assert.Equal(t, booking10EarnedDate(), c.created.EarnedDate)
}

func booking10EarnedDate() time.Time {
	return time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)
}

func TestCompleteBooking_NotFound(t *testing.T) {
	b := &fakeBookingRepo{}
	p := &fakePaymentRepo{}
	c := &fakeCommissionRepo{structure: domain.PercentageStructure{Rate: 25}}
	perf := &fakePerformanceClient{err: performance.ErrRatingNotFound}

	_, err := newTestUseCase(b, p, c, perf).Execute(context.Background(), &Request{BookingID: 10})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestCompleteBooking_InvalidInput(t *testing.T) {
	uc := newTestUseCase(&fakeBookingRepo{}, &fakePaymentRepo{}, &fakeCommissionRepo{}, &fakePerformanceClient{})

	_, err := uc.Execute(context.Background(), &Request{BookingID: 0})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(context.Background(), &Request{BookingID: 10, TipAmount: -1})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
