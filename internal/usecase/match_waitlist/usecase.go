package match_waitlist

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/lumispa/spa-core/internal/domain"
)

// UseCase use case подбора записей листа ожидания под освободившийся слот
type UseCase struct {
	waitlistRepo WaitlistRepository
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(waitlistRepo WaitlistRepository, logger Logger) *UseCase {
	return &UseCase{
		waitlistRepo: waitlistRepo,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute подбирает ожидающие записи под освободившийся слот:
// фильтрует по предпочтениям (дата, время, мастер), пересчитывает приоритеты,
// уведомляет подходящие записи в порядке убывания приоритета и возвращает их.
// Окно ответа на уведомление ограничено
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("MatchWaitlist: freed slot branch=%d service=%d date=%s time=%s-%s",
		req.BranchID, req.ServiceID, req.Date.Format(domain.DateFormat), req.StartTime, req.EndTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("MatchWaitlist: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем ожидающие записи филиала по услуге
	entries, err := uc.waitlistRepo.GetPendingByBranch(ctx, req.BranchID, req.ServiceID)
	if err != nil {
		uc.logger.Error("MatchWaitlist: failed to get pending entries: %v", err)
		return nil, fmt.Errorf("%w: failed to get pending entries: %v", ErrInternal, err)
	}

	// 3. Фильтруем по предпочтениям
	matched := make([]*domain.WaitlistEntry, 0)
	for _, entry := range entries {
		if entry.MatchesSlot(req.Date, req.StartTime, req.EndTime, req.StaffID) {
			matched = append(matched, entry)
		}
	}

	if len(matched) == 0 {
		uc.logger.Info("MatchWaitlist: no matching entries for freed slot")
		return &Response{Matched: []MatchedEntry{}}, nil
	}

	// 4. Пересчитываем приоритеты на текущий момент
	now := uc.timeProvider.Now()
	for _, entry := range matched {
		score := entry.CalculatePriorityScore(now)
		if score != entry.PriorityScore {
			if err := uc.waitlistRepo.UpdatePriorityScore(ctx, entry.ID, score); err != nil {
				// Несохранённый приоритет не повод терять совпадение
				uc.logger.Warn("MatchWaitlist: failed to persist score for entry id=%d: %v", entry.ID, err)
			}
			entry.PriorityScore = score
		}
	}

	// 5. Сортируем по убыванию приоритета, при равенстве - кто раньше встал
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].PriorityScore != matched[j].PriorityScore {
			return matched[i].PriorityScore > matched[j].PriorityScore
		}
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	// 6. Уведомляем записи с ограниченным окном ответа
	expiresAt := now.Add(domain.WaitlistNotifyExpiryMinutes * time.Minute)
	result := make([]MatchedEntry, 0, len(matched))

	for _, entry := range matched {
		if err := uc.waitlistRepo.MarkNotified(ctx, entry.ID, expiresAt); err != nil {
			// Запись могла уйти из pending параллельно - пропускаем, не прерывая остальных
			uc.logger.Warn("MatchWaitlist: failed to notify entry id=%d: %v", entry.ID, err)
			continue
		}

		result = append(result, MatchedEntry{
			EntryID:       entry.ID,
			ClientID:      entry.ClientID,
			PriorityScore: entry.PriorityScore,
			ExpiresAt:     expiresAt,
		})
	}

	uc.logger.Info("MatchWaitlist: notified %d of %d matching entries, response window until %s",
		len(result), len(matched), expiresAt.Format(time.RFC3339))

	return &Response{Matched: result}, nil
}

func validateRequest(req *Request) error {
	if req.BranchID <= 0 {
		return fmt.Errorf("%w: branchID must be positive", ErrInvalidInput)
	}
	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if req.StartTime.IsZero() || req.EndTime.IsZero() {
		return fmt.Errorf("%w: startTime and endTime are required", ErrInvalidInput)
	}
	if !req.StartTime.IsBefore(req.EndTime) {
		return fmt.Errorf("%w: startTime must be before endTime", ErrInvalidInput)
	}
	return nil
}
