package waitlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lumispa/spa-core/internal/domain"
	waitlistRepo "github.com/lumispa/spa-core/internal/infra/storage/waitlist"
	"github.com/lumispa/spa-core/internal/service/waitlist/models"
)

// Service сервис листа ожидания: постановка, ответ на уведомление,
// продление окна ответа и фоновая уборка просроченных записей.
// Подбор записей под освободившийся слот - отдельный usecase
type Service struct {
	waitlistRepo WaitlistRepository
	bookingRepo  BookingRepository
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса листа ожидания
func NewService(
	waitlistRepo WaitlistRepository,
	bookingRepo BookingRepository,
	timeProvider TimeProvider,
	logger Logger,
) *Service {
	return &Service{
		waitlistRepo: waitlistRepo,
		bookingRepo:  bookingRepo,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Create ставит клиента в лист ожидания
// Количество прошлых бронирований клиента денормализуется в запись,
// начальный приоритет считается сразу
func (s *Service) Create(ctx context.Context, req *models.CreateWaitlistRequest) (*models.WaitlistEntryResponse, error) {
	s.logger.Info("Create: creating waitlist entry for client=%d, branch=%d, service=%d",
		req.ClientID, req.BranchID, req.ServiceID)

	entry, err := req.ToDomainEntry()
	if err != nil {
		s.logger.Warn("Create: invalid request for client=%d: %v", req.ClientID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	bookingCount, err := s.bookingRepo.CountByClient(ctx, req.ClientID)
	if err != nil {
		s.logger.Error("Create: failed to count bookings for client=%d: %v", req.ClientID, err)
		return nil, fmt.Errorf("%w: Create - booking count error: %v", ErrInternal, err)
	}
	entry.ClientBookingCount = bookingCount

	now := s.timeProvider.Now()
	entry.CreatedAt = now
	entry.PriorityScore = entry.CalculatePriorityScore(now)

	created, err := s.waitlistRepo.Create(ctx, entry)
	if err != nil {
		s.logger.Error("Create: repository error for client=%d: %v", req.ClientID, err)
		return nil, fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Create: created waitlist entry id=%d with priority score=%d",
		created.ID, created.PriorityScore)
	return models.FromDomainEntry(created), nil
}

// GetByID получает запись листа ожидания по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*models.WaitlistEntryResponse, error) {
	entry, err := s.waitlistRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, waitlistRepo.ErrEntryNotFound) {
			return nil, ErrEntryNotFound
		}
		s.logger.Error("GetByID: repository error for entry id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainEntry(entry), nil
}

// Respond фиксирует ответ клиента на уведомление о свободном слоте
// Ответ принимается только пока окно ответа не истекло
func (s *Service) Respond(ctx context.Context, entryID int64, accepted bool) error {
	s.logger.Info("Respond: entry id=%d, accepted=%v", entryID, accepted)

	entry, err := s.waitlistRepo.GetByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, waitlistRepo.ErrEntryNotFound) {
			s.logger.Warn("Respond: entry id=%d not found", entryID)
			return ErrEntryNotFound
		}
		s.logger.Error("Respond: repository error for entry id=%d: %v", entryID, err)
		return fmt.Errorf("%w: Respond - repository error: %v", ErrInternal, err)
	}

	if !entry.CanRespond(s.timeProvider.Now()) {
		s.logger.Warn("Respond: entry id=%d cannot be responded to, status=%s", entryID, entry.Status)
		return ErrCannotRespond
	}

	if accepted {
		err = s.waitlistRepo.MarkConverted(ctx, entryID)
	} else {
		err = s.waitlistRepo.MarkDeclined(ctx, entryID)
	}

	if err != nil {
		if errors.Is(err, waitlistRepo.ErrInvalidState) {
			return ErrCannotRespond
		}
		s.logger.Error("Respond: repository error for entry id=%d: %v", entryID, err)
		return fmt.Errorf("%w: Respond - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Respond: entry id=%d resolved, accepted=%v", entryID, accepted)
	return nil
}

// ExtendExpiry продлевает окно ответа уведомлённой записи
func (s *Service) ExtendExpiry(ctx context.Context, entryID int64, extension time.Duration) error {
	if extension <= 0 {
		return fmt.Errorf("%w: extension must be positive", ErrInvalidInput)
	}

	entry, err := s.waitlistRepo.GetByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, waitlistRepo.ErrEntryNotFound) {
			return ErrEntryNotFound
		}
		return fmt.Errorf("%w: ExtendExpiry - repository error: %v", ErrInternal, err)
	}

	if entry.Status != domain.WaitlistNotified || entry.ExpiresAt == nil {
		s.logger.Warn("ExtendExpiry: entry id=%d is not awaiting a response, status=%s", entryID, entry.Status)
		return ErrCannotRespond
	}

	newExpiry := entry.ExpiresAt.Add(extension)
	if err := s.waitlistRepo.ExtendExpiry(ctx, entryID, newExpiry); err != nil {
		if errors.Is(err, waitlistRepo.ErrInvalidState) {
			return ErrCannotRespond
		}
		s.logger.Error("ExtendExpiry: repository error for entry id=%d: %v", entryID, err)
		return fmt.Errorf("%w: ExtendExpiry - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ExtendExpiry: entry id=%d extended to %s", entryID, newExpiry.Format(time.RFC3339))
	return nil
}

// ExpireOverdue переводит в expired все уведомлённые записи с истёкшим
// окном ответа. Вызывается фоновым свипером, повторный вызов безопасен
func (s *Service) ExpireOverdue(ctx context.Context) (int, error) {
	now := s.timeProvider.Now()

	ids, err := s.waitlistRepo.ExpireOverdue(ctx, now)
	if err != nil {
		s.logger.Error("ExpireOverdue: repository error: %v", err)
		return 0, fmt.Errorf("%w: ExpireOverdue - repository error: %v", ErrInternal, err)
	}

	if len(ids) > 0 {
		s.logger.Info("ExpireOverdue: expired %d waitlist entries: %v", len(ids), ids)
	}
	return len(ids), nil
}
