package match_waitlist

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

type fakeWaitlistRepo struct {
	pending []*domain.WaitlistEntry

	notified       []int64
	notifyExpiry   time.Time
	notifyFailIDs  map[int64]bool
	updatedScores  map[int64]int
	scoreUpdateErr error
}

func (f *fakeWaitlistRepo) GetPendingByBranch(_ context.Context, _, _ int64) ([]*domain.WaitlistEntry, error) {
	return f.pending, nil
}

func (f *fakeWaitlistRepo) MarkNotified(_ context.Context, id int64, expiresAt time.Time) error {
	if f.notifyFailIDs[id] {
		return assert.AnError
	}
	f.notified = append(f.notified, id)
	f.notifyExpiry = expiresAt
	return nil
}

func (f *fakeWaitlistRepo) UpdatePriorityScore(_ context.Context, id int64, score int) error {
	if f.scoreUpdateErr != nil {
		return f.scoreUpdateErr
	}
	if f.updatedScores == nil {
		f.updatedScores = make(map[int64]int)
	}
	f.updatedScores[id] = score
	return nil
}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

var (
	testNow  = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	slotDate = time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)
)

func slotRequest() *Request {
	return &Request{
		BranchID:  1,
		ServiceID: 2,
		Date:      slotDate,
		StartTime: "10:00",
		EndTime:   "11:00",
		StaffID:   ptr.Ptr(int64(7)),
	}
}

func pendingEntry(id int64, level domain.PriorityLevel, createdHoursAgo int) *domain.WaitlistEntry {
	return &domain.WaitlistEntry{
		ID:            id,
		BranchID:      1,
		ClientID:      id * 100,
		ServiceID:     2,
		PreferredDate: slotDate,
		Status:        domain.WaitlistPending,
		PriorityLevel: level,
		CreatedAt:     testNow.Add(-time.Duration(createdHoursAgo) * time.Hour),
	}
}

func newTestUseCase(repo *fakeWaitlistRepo) *UseCase {
	uc := NewUseCase(repo, nopLogger{})
	uc.timeProvider = fixedTime{now: testNow}
	return uc
}

func TestMatchWaitlist_OrdersByPriority(t *testing.T) {
	// vip: 80 + 1 час ожидания = 81; high: 40 + 10 = 50; low: 10 + 10 = 20
	repo := &fakeWaitlistRepo{pending: []*domain.WaitlistEntry{
		pendingEntry(1, domain.PriorityLow, 10),
		pendingEntry(2, domain.PriorityVIP, 1),
		pendingEntry(3, domain.PriorityHigh, 10),
	}}

	resp, err := newTestUseCase(repo).Execute(context.Background(), slotRequest())
	require.NoError(t, err)

	require.Len(t, resp.Matched, 3)
	assert.Equal(t, int64(2), resp.Matched[0].EntryID)
	assert.Equal(t, int64(3), resp.Matched[1].EntryID)
	assert.Equal(t, int64(1), resp.Matched[2].EntryID)
	assert.Equal(t, 81, resp.Matched[0].PriorityScore)

	// Все уведомлены с одним и тем же окном ответа (2 часа)
	wantExpiry := testNow.Add(domain.WaitlistNotifyExpiryMinutes * time.Minute)
	assert.Equal(t, wantExpiry, repo.notifyExpiry)
	for _, m := range resp.Matched {
		assert.Equal(t, wantExpiry, m.ExpiresAt)
	}
}

func TestMatchWaitlist_TiebreakByCreatedAt(t *testing.T) {
	// Одинаковый уровень и время ожидания - первым уведомляется вставший раньше
	first := pendingEntry(1, domain.PriorityMedium, 5)
	second := pendingEntry(2, domain.PriorityMedium, 5)
	second.CreatedAt = first.CreatedAt.Add(time.Minute)

	repo := &fakeWaitlistRepo{pending: []*domain.WaitlistEntry{second, first}}

	resp, err := newTestUseCase(repo).Execute(context.Background(), slotRequest())
	require.NoError(t, err)

	require.Len(t, resp.Matched, 2)
	assert.Equal(t, int64(1), resp.Matched[0].EntryID)
	assert.Equal(t, int64(2), resp.Matched[1].EntryID)
}

func TestMatchWaitlist_FiltersByPreferences(t *testing.T) {
	wrongDate := pendingEntry(1, domain.PriorityVIP, 1)
	wrongDate.PreferredDate = slotDate.AddDate(0, 0, 1)

	wrongStaff := pendingEntry(2, domain.PriorityVIP, 1)
	wrongStaff.PreferredStaffID = ptr.Ptr(int64(99))

	wrongTime := pendingEntry(3, domain.PriorityVIP, 1)
	wrongTime.PreferredStart = ptr.Ptr(types.TimeString("14:00"))
	wrongTime.PreferredEnd = ptr.Ptr(types.TimeString("16:00"))

	// Альтернативная дата совпадает со слотом
	altDate := pendingEntry(4, domain.PriorityLow, 1)
	altDate.PreferredDate = slotDate.AddDate(0, 0, -1)
	altDate.AlternativeDates = []time.Time{slotDate}

	repo := &fakeWaitlistRepo{pending: []*domain.WaitlistEntry{wrongDate, wrongStaff, wrongTime, altDate}}

	resp, err := newTestUseCase(repo).Execute(context.Background(), slotRequest())
	require.NoError(t, err)

	require.Len(t, resp.Matched, 1)
	assert.Equal(t, int64(4), resp.Matched[0].EntryID)
}

func TestMatchWaitlist_PersistsRecomputedScores(t *testing.T) {
	entry := pendingEntry(1, domain.PriorityMedium, 3)
	entry.PriorityScore = 20 // устаревший счет, без бонуса за ожидание

	repo := &fakeWaitlistRepo{pending: []*domain.WaitlistEntry{entry}}

	resp, err := newTestUseCase(repo).Execute(context.Background(), slotRequest())
	require.NoError(t, err)

	require.Len(t, resp.Matched, 1)
	assert.Equal(t, 23, resp.Matched[0].PriorityScore)
	assert.Equal(t, 23, repo.updatedScores[1])
}

func TestMatchWaitlist_SkipsEntriesThatFailNotify(t *testing.T) {
	repo := &fakeWaitlistRepo{
		pending: []*domain.WaitlistEntry{
			pendingEntry(1, domain.PriorityVIP, 1),
			pendingEntry(2, domain.PriorityLow, 1),
		},
		notifyFailIDs: map[int64]bool{1: true},
	}

	resp, err := newTestUseCase(repo).Execute(context.Background(), slotRequest())
	require.NoError(t, err)

	// Сбой уведомления одной записи не прерывает остальных
	require.Len(t, resp.Matched, 1)
	assert.Equal(t, int64(2), resp.Matched[0].EntryID)
}

func TestMatchWaitlist_NoMatches(t *testing.T) {
	repo := &fakeWaitlistRepo{}

	resp, err := newTestUseCase(repo).Execute(context.Background(), slotRequest())
	require.NoError(t, err)
	assert.Empty(t, resp.Matched)
}

func TestMatchWaitlist_Validation(t *testing.T) {
	uc := newTestUseCase(&fakeWaitlistRepo{})

	req := slotRequest()
	req.BranchID = 0
	_, err := uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	req = slotRequest()
	req.StartTime = "11:00"
	req.EndTime = "10:00"
	_, err = uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
