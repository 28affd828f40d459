package waitlist

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumispa/spa-core/internal/domain"
	waitlistRepo "github.com/lumispa/spa-core/internal/infra/storage/waitlist"
	"github.com/lumispa/spa-core/internal/service/waitlist/models"
	"github.com/lumispa/spa-core/pkg/ptr"
)

// Фейки зависимостей

type fakeWaitlistRepo struct {
	entry *domain.WaitlistEntry

	created       *domain.WaitlistEntry
	convertedID   int64
	declinedID    int64
	extendedID    int64
	newExpiry     time.Time
	expiredIDs    []int64
	transitionErr error
}

func (f *fakeWaitlistRepo) Create(_ context.Context, entry *domain.WaitlistEntry) (*domain.WaitlistEntry, error) {
	copied := *entry
	copied.ID = 201
	f.created = &copied
	return &copied, nil
}

func (f *fakeWaitlistRepo) GetByID(_ context.Context, id int64) (*domain.WaitlistEntry, error) {
	if f.entry == nil || f.entry.ID != id {
		return nil, waitlistRepo.ErrEntryNotFound
	}
	copied := *f.entry
	return &copied, nil
}

func (f *fakeWaitlistRepo) MarkConverted(_ context.Context, id int64) error {
	if f.transitionErr != nil {
		return f.transitionErr
	}
	f.convertedID = id
	return nil
}

func (f *fakeWaitlistRepo) MarkDeclined(_ context.Context, id int64) error {
	if f.transitionErr != nil {
		return f.transitionErr
	}
	f.declinedID = id
	return nil
}

func (f *fakeWaitlistRepo) ExtendExpiry(_ context.Context, id int64, expiresAt time.Time) error {
	if f.transitionErr != nil {
		return f.transitionErr
	}
	f.extendedID = id
	f.newExpiry = expiresAt
	return nil
}

func (f *fakeWaitlistRepo) ExpireOverdue(_ context.Context, _ time.Time) ([]int64, error) {
	return f.expiredIDs, nil
}

type fakeBookingRepo struct {
	count int
}

func (f *fakeBookingRepo) CountByClient(_ context.Context, _ int64) (int, error) {
	return f.count, nil
}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

var testNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func newTestService(w *fakeWaitlistRepo, b *fakeBookingRepo) *Service {
	return NewService(w, b, fixedTime{now: testNow}, nopLogger{})
}

func notifiedEntry() *domain.WaitlistEntry {
	return &domain.WaitlistEntry{
		ID:            201,
		BranchID:      1,
		ClientID:      3,
		ServiceID:     2,
		PreferredDate: time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC),
		Status:        domain.WaitlistNotified,
		PriorityLevel: domain.PriorityMedium,
		ExpiresAt:     ptr.Ptr(testNow.Add(time.Hour)),
		CreatedAt:     testNow.Add(-2 * time.Hour),
	}
}

func TestCreate_InitialPriority(t *testing.T) {
	// Лояльный клиент с гибкими предпочтениями: 20 (medium) + 30 (бронирования,
	// потолок) + 10 (альтернативные мастера) + 10 (альтернативная дата) = 70
	w := &fakeWaitlistRepo{}
	b := &fakeBookingRepo{count: 7}

	resp, err := newTestService(w, b).Create(context.Background(), &models.CreateWaitlistRequest{
		BranchID:            1,
		ClientID:            3,
		ServiceID:           2,
		PreferredDate:       "2026-09-05",
		AlternativeDates:    []string{"2026-09-06"},
		AlternativeStaffIDs: []int64{8, 9},
		PriorityLevel:       "medium",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(201), resp.ID)
	assert.Equal(t, string(domain.WaitlistPending), resp.Status)
	assert.Equal(t, 70, resp.PriorityScore)
	assert.Equal(t, 7, w.created.ClientBookingCount)
	assert.Equal(t, testNow, w.created.CreatedAt)
}

func TestCreate_MinimalRequest(t *testing.T) {
	// Новый клиент без гибкости: только базовый балл уровня
	w := &fakeWaitlistRepo{}

	resp, err := newTestService(w, &fakeBookingRepo{}).Create(context.Background(), &models.CreateWaitlistRequest{
		BranchID:      1,
		ClientID:      3,
		ServiceID:     2,
		PreferredDate: "2026-09-05",
		PriorityLevel: "low",
	})
	require.NoError(t, err)
	assert.Equal(t, 10, resp.PriorityScore)
}

func TestCreate_InvalidInput(t *testing.T) {
	svc := newTestService(&fakeWaitlistRepo{}, &fakeBookingRepo{})

	_, err := svc.Create(context.Background(), &models.CreateWaitlistRequest{
		BranchID:      1,
		ClientID:      3,
		ServiceID:     2,
		PreferredDate: "05.09.2026",
		PriorityLevel: "low",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(context.Background(), &models.CreateWaitlistRequest{
		BranchID:      1,
		ClientID:      3,
		ServiceID:     2,
		PreferredDate: "2026-09-05",
		PriorityLevel: "urgent",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRespond_Accept(t *testing.T) {
	w := &fakeWaitlistRepo{entry: notifiedEntry()}

	require.NoError(t, newTestService(w, &fakeBookingRepo{}).Respond(context.Background(), 201, true))
	assert.Equal(t, int64(201), w.convertedID)
	assert.Zero(t, w.declinedID)
}

func TestRespond_Decline(t *testing.T) {
	w := &fakeWaitlistRepo{entry: notifiedEntry()}

	require.NoError(t, newTestService(w, &fakeBookingRepo{}).Respond(context.Background(), 201, false))
	assert.Equal(t, int64(201), w.declinedID)
	assert.Zero(t, w.convertedID)
}

func TestRespond_ExpiredWindow(t *testing.T) {
	entry := notifiedEntry()
	entry.ExpiresAt = ptr.Ptr(testNow.Add(-time.Minute))

	err := newTestService(&fakeWaitlistRepo{entry: entry}, &fakeBookingRepo{}).
		Respond(context.Background(), 201, true)
	assert.ErrorIs(t, err, ErrCannotRespond)
}

func TestRespond_WrongStatus(t *testing.T) {
	for _, status := range []domain.WaitlistStatus{
		domain.WaitlistPending,
		domain.WaitlistConverted,
		domain.WaitlistDeclined,
		domain.WaitlistExpired,
	} {
		t.Run(string(status), func(t *testing.T) {
			entry := notifiedEntry()
			entry.Status = status

			err := newTestService(&fakeWaitlistRepo{entry: entry}, &fakeBookingRepo{}).
				Respond(context.Background(), 201, true)
			assert.ErrorIs(t, err, ErrCannotRespond)
		})
	}
}

func TestRespond_NotFound(t *testing.T) {
	err := newTestService(&fakeWaitlistRepo{}, &fakeBookingRepo{}).Respond(context.Background(), 999, true)
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestRespond_LosesRace(t *testing.T) {
	// Проверка статуса прошла, но UPDATE увидел уже обработанную запись
	w := &fakeWaitlistRepo{
		entry:         notifiedEntry(),
		transitionErr: waitlistRepo.ErrInvalidState,
	}

	err := newTestService(w, &fakeBookingRepo{}).Respond(context.Background(), 201, true)
	assert.ErrorIs(t, err, ErrCannotRespond)
}

func TestExtendExpiry(t *testing.T) {
	entry := notifiedEntry()
	w := &fakeWaitlistRepo{entry: entry}

	err := newTestService(w, &fakeBookingRepo{}).ExtendExpiry(context.Background(), 201, 30*time.Minute)
	require.NoError(t, err)

	assert.Equal(t, int64(201), w.extendedID)
	assert.Equal(t, entry.ExpiresAt.Add(30*time.Minute), w.newExpiry)
}

func TestExtendExpiry_Validation(t *testing.T) {
	svc := newTestService(&fakeWaitlistRepo{entry: notifiedEntry()}, &fakeBookingRepo{})

	err := svc.ExtendExpiry(context.Background(), 201, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = svc.ExtendExpiry(context.Background(), 201, -time.Minute)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExtendExpiry_NotAwaitingResponse(t *testing.T) {
	entry := notifiedEntry()
	entry.Status = domain.WaitlistPending
	entry.ExpiresAt = nil

	err := newTestService(&fakeWaitlistRepo{entry: entry}, &fakeBookingRepo{}).
		ExtendExpiry(context.Background(), 201, 30*time.Minute)
	assert.ErrorIs(t, err, ErrCannotRespond)
}

func TestExpireOverdue(t *testing.T) {
	w := &fakeWaitlistRepo{expiredIDs: []int64{201, 202, 203}}

	count, err := newTestService(w, &fakeBookingRepo{}).ExpireOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	count, err = newTestService(&fakeWaitlistRepo{}, &fakeBookingRepo{}).ExpireOverdue(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}
