package commissions

import (
	"context"
	"errors"
	"fmt"
	"time"

	commissionRepo "github.com/lumispa/spa-core/internal/infra/storage/commission"
	"github.com/lumispa/spa-core/internal/service/commissions/models"
)

const defaultTopEarnersLimit = 10

// Service сервис запросов и управления записями комиссий.
// Начисление комиссии происходит в usecase завершения бронирования
type Service struct {
	commissionRepo CommissionRepository
	logger         Logger
}

// NewService создает новый экземпляр сервиса комиссий
func NewService(commissionRepo CommissionRepository, logger Logger) *Service {
	return &Service{
		commissionRepo: commissionRepo,
		logger:         logger,
	}
}

// GetStaffCommissions получает записи комиссий мастера за период
func (s *Service) GetStaffCommissions(ctx context.Context, staffID int64, from, to time.Time) (*models.CommissionListResponse, error) {
	s.logger.Info("GetStaffCommissions: fetching commissions for staff=%d, period=%s to %s",
		staffID, from.Format("2006-01-02"), to.Format("2006-01-02"))

	if err := validatePeriod(from, to); err != nil {
		return nil, err
	}

	commissions, err := s.commissionRepo.GetByStaffAndPeriod(ctx, staffID, from, to)
	if err != nil {
		s.logger.Error("GetStaffCommissions: repository error for staff=%d: %v", staffID, err)
		return nil, fmt.Errorf("%w: GetStaffCommissions - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetStaffCommissions: successfully fetched %d commissions for staff=%d", len(commissions), staffID)
	return models.FromDomainCommissionList(commissions), nil
}

// GetPendingCommissions получает невыплаченные записи мастера
func (s *Service) GetPendingCommissions(ctx context.Context, staffID int64) (*models.CommissionListResponse, error) {
	s.logger.Info("GetPendingCommissions: fetching pending commissions for staff=%d", staffID)

	commissions, err := s.commissionRepo.GetPendingByStaff(ctx, staffID)
	if err != nil {
		s.logger.Error("GetPendingCommissions: repository error for staff=%d: %v", staffID, err)
		return nil, fmt.Errorf("%w: GetPendingCommissions - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainCommissionList(commissions), nil
}

// GetTotalEarnings получает сумму заработка мастера за период
// Учитываются только утверждённые записи
func (s *Service) GetTotalEarnings(ctx context.Context, staffID int64, from, to time.Time) (float64, error) {
	s.logger.Info("GetTotalEarnings: calculating earnings for staff=%d", staffID)

	if err := validatePeriod(from, to); err != nil {
		return 0, err
	}

	total, err := s.commissionRepo.SumEarnings(ctx, staffID, from, to)
	if err != nil {
		s.logger.Error("GetTotalEarnings: repository error for staff=%d: %v", staffID, err)
		return 0, fmt.Errorf("%w: GetTotalEarnings - repository error: %v", ErrInternal, err)
	}

	return total, nil
}

// GetCommissionSummary получает агрегат по записям мастера за период
func (s *Service) GetCommissionSummary(ctx context.Context, staffID int64, from, to time.Time) (*models.CommissionSummaryResponse, error) {
	s.logger.Info("GetCommissionSummary: building summary for staff=%d", staffID)

	if err := validatePeriod(from, to); err != nil {
		return nil, err
	}

	summary, err := s.commissionRepo.Summary(ctx, staffID, from, to)
	if err != nil {
		s.logger.Error("GetCommissionSummary: repository error for staff=%d: %v", staffID, err)
		return nil, fmt.Errorf("%w: GetCommissionSummary - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainSummary(summary, from, to), nil
}

// GetTopEarners получает мастеров филиала с наибольшим заработком за период
func (s *Service) GetTopEarners(ctx context.Context, branchID int64, from, to time.Time, limit uint64) (*models.TopEarnersResponse, error) {
	s.logger.Info("GetTopEarners: fetching top earners for branch=%d", branchID)

	if err := validatePeriod(from, to); err != nil {
		return nil, err
	}
	if limit == 0 {
		limit = defaultTopEarnersLimit
	}

	earnings, err := s.commissionRepo.TopEarners(ctx, branchID, from, to, limit)
	if err != nil {
		s.logger.Error("GetTopEarners: repository error for branch=%d: %v", branchID, err)
		return nil, fmt.Errorf("%w: GetTopEarners - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainTopEarners(branchID, earnings), nil
}

// Approve утверждает запись комиссии
func (s *Service) Approve(ctx context.Context, commissionID int64) error {
	s.logger.Info("Approve: approving commission id=%d", commissionID)

	if err := s.commissionRepo.Approve(ctx, commissionID); err != nil {
		return s.mapTransitionError(ctx, "Approve", commissionID, err, ErrCannotApprove)
	}

	s.logger.Info("Approve: successfully approved commission id=%d", commissionID)
	return nil
}

// Reject отклоняет запись комиссии
func (s *Service) Reject(ctx context.Context, commissionID int64) error {
	s.logger.Info("Reject: rejecting commission id=%d", commissionID)

	if err := s.commissionRepo.Reject(ctx, commissionID); err != nil {
		return s.mapTransitionError(ctx, "Reject", commissionID, err, ErrCannotApprove)
	}

	s.logger.Info("Reject: successfully rejected commission id=%d", commissionID)
	return nil
}

// MarkPaid отмечает утверждённую запись как выплаченную
// Выплаченные записи неизменяемы - повторная выплата не проходит
func (s *Service) MarkPaid(ctx context.Context, commissionID int64) error {
	s.logger.Info("MarkPaid: marking commission id=%d as paid", commissionID)

	if err := s.commissionRepo.MarkPaid(ctx, commissionID); err != nil {
		return s.mapTransitionError(ctx, "MarkPaid", commissionID, err, ErrCannotMarkPaid)
	}

	s.logger.Info("MarkPaid: successfully marked commission id=%d as paid", commissionID)
	return nil
}

// mapTransitionError различает "запись не найдена", "недопустимый переход"
// и внутренние ошибки репозитория
func (s *Service) mapTransitionError(ctx context.Context, op string, commissionID int64, err error, transitionErr error) error {
	if errors.Is(err, commissionRepo.ErrInvalidState) {
		// Отличаем несуществующую запись от записи в неподходящем статусе
		if _, getErr := s.commissionRepo.GetByID(ctx, commissionID); errors.Is(getErr, commissionRepo.ErrCommissionNotFound) {
			s.logger.Warn("%s: commission id=%d not found", op, commissionID)
			return ErrCommissionNotFound
		}
		s.logger.Warn("%s: commission id=%d is not in a valid state", op, commissionID)
		return transitionErr
	}

	s.logger.Error("%s: repository error for commission id=%d: %v", op, commissionID, err)
	return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
}

func validatePeriod(from, to time.Time) error {
	if to.Before(from) {
		return fmt.Errorf("%w: end before start", ErrInvalidPeriod)
	}
	return nil
}
