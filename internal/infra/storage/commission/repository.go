package commission

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/lumispa/spa-core/internal/domain"
	"github.com/lumispa/spa-core/pkg/dbmetrics"
	"github.com/lumispa/spa-core/pkg/psqlbuilder"
)

// Переиспользуем интерфейсы из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor

var commissionColumns = []string{
	"id",
	"staff_id",
	"branch_id",
	"booking_id",
	"service_id",
	"commission_type",
	"service_amount",
	"commission_amount",
	"quality_multiplier",
	"total_earning",
	"tip_amount",
	"bonus_amount",
	"penalty_amount",
	"payout_status",
	"approval_status",
	"earned_date",
	"approved_at",
	"paid_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий записей комиссий и их структур
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория комиссий
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// CreateIdempotent создает запись комиссии идемпотентно по booking_id
// Повторное завершение того же бронирования (гонка) не создаст вторую запись -
// уникальное ограничение на booking_id с ON CONFLICT DO NOTHING
func (r *Repository) CreateIdempotent(ctx context.Context, c *domain.StaffCommission) (*domain.StaffCommission, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("staff_commissions").
		Columns(
			"staff_id",
			"branch_id",
			"booking_id",
			"service_id",
			"commission_type",
			"service_amount",
			"commission_amount",
			"quality_multiplier",
			"total_earning",
			"tip_amount",
			"bonus_amount",
			"penalty_amount",
			"payout_status",
			"approval_status",
			"earned_date",
		).
		Values(
			c.StaffID,
			c.BranchID,
			c.BookingID,
			c.ServiceID,
			c.CommissionType,
			c.ServiceAmount,
			c.CommissionAmount,
			c.QualityMultiplier,
			c.TotalEarning,
			c.TipAmount,
			c.BonusAmount,
			c.PenaltyAmount,
			c.PayoutStatus,
			c.ApprovalStatus,
			c.EarnedDate,
		).
		Suffix("ON CONFLICT (booking_id) DO NOTHING RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CreateIdempotent - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&c.ID,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		// Конфликт по booking_id - запись уже существует
		return nil, ErrAlreadyRecorded
	}
	if err != nil {
		return nil, fmt.Errorf("%w: CreateIdempotent - execute insert: %v", ErrExecQuery, err)
	}

	c.CreatedAt = createdAt.Time
	c.UpdatedAt = updatedAt.Time

	return c, nil
}

// GetByID получает запись комиссии по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.StaffCommission, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(commissionColumns...).
		From("staff_commissions").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	c, err := scanCommission(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrCommissionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan commission: %v", ErrScanRow, err)
	}

	return c, nil
}

// GetByStaffAndPeriod получает записи комиссий мастера за период
func (r *Repository) GetByStaffAndPeriod(ctx context.Context, staffID int64, from, to time.Time) ([]*domain.StaffCommission, error) {
	return r.list(ctx, "GetByStaffAndPeriod", psqlbuilder.Select(commissionColumns...).
		From("staff_commissions").
		Where(squirrel.Eq{"staff_id": staffID}).
		Where(squirrel.GtOrEq{"earned_date": from}).
		Where(squirrel.LtOrEq{"earned_date": to}).
		OrderBy("earned_date DESC"))
}

// GetPendingByStaff получает невыплаченные записи мастера
func (r *Repository) GetPendingByStaff(ctx context.Context, staffID int64) ([]*domain.StaffCommission, error) {
	return r.list(ctx, "GetPendingByStaff", psqlbuilder.Select(commissionColumns...).
		From("staff_commissions").
		Where(squirrel.Eq{"staff_id": staffID, "payout_status": domain.PayoutPending}).
		OrderBy("earned_date ASC"))
}

// SumEarnings возвращает сумму заработка мастера за период:
// total_earning + чаевые + бонусы - штрафы по утверждённым записям
func (r *Repository) SumEarnings(ctx context.Context, staffID int64, from, to time.Time) (float64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"COALESCE(SUM(total_earning + tip_amount + bonus_amount - penalty_amount), 0)",
	).
		From("staff_commissions").
		Where(squirrel.Eq{"staff_id": staffID, "approval_status": domain.ApprovalApproved}).
		Where(squirrel.GtOrEq{"earned_date": from}).
		Where(squirrel.LtOrEq{"earned_date": to}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: SumEarnings - build select query: %v", ErrBuildQuery, err)
	}

	var total float64
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("%w: SumEarnings - scan total: %v", ErrScanRow, err)
	}

	return total, nil
}

// Summary возвращает агрегат по записям мастера за период
func (r *Repository) Summary(ctx context.Context, staffID int64, from, to time.Time) (*domain.CommissionSummary, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"COUNT(*)",
		"COALESCE(SUM(total_earning), 0)",
		"COALESCE(SUM(tip_amount), 0)",
		"COALESCE(SUM(bonus_amount), 0)",
		"COALESCE(SUM(penalty_amount), 0)",
		fmt.Sprintf("COALESCE(SUM(total_earning) FILTER (WHERE payout_status = '%s'), 0)", domain.PayoutPending),
		fmt.Sprintf("COALESCE(SUM(total_earning) FILTER (WHERE payout_status = '%s'), 0)", domain.PayoutPaid),
	).
		From("staff_commissions").
		Where(squirrel.Eq{"staff_id": staffID}).
		Where(squirrel.GtOrEq{"earned_date": from}).
		Where(squirrel.LtOrEq{"earned_date": to}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Summary - build select query: %v", ErrBuildQuery, err)
	}

	summary := domain.CommissionSummary{StaffID: staffID}
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&summary.RecordCount,
		&summary.TotalEarning,
		&summary.TipTotal,
		&summary.BonusTotal,
		&summary.PenaltyTotal,
		&summary.PendingAmount,
		&summary.PaidAmount,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: Summary - scan summary: %v", ErrScanRow, err)
	}

	return &summary, nil
}

// TopEarners возвращает мастеров филиала с наибольшим заработком за период
func (r *Repository) TopEarners(ctx context.Context, branchID int64, from, to time.Time, limit uint64) ([]*domain.StaffEarnings, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"staff_id",
		"COALESCE(SUM(total_earning + tip_amount + bonus_amount - penalty_amount), 0) AS earnings",
		"COUNT(*)",
	).
		From("staff_commissions").
		Where(squirrel.Eq{"branch_id": branchID}).
		Where(squirrel.GtOrEq{"earned_date": from}).
		Where(squirrel.LtOrEq{"earned_date": to}).
		GroupBy("staff_id").
		OrderBy("earnings DESC").
		Limit(limit).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: TopEarners - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: TopEarners - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make([]*domain.StaffEarnings, 0)
	for rows.Next() {
		var e domain.StaffEarnings
		if err := rows.Scan(&e.StaffID, &e.TotalEarning, &e.BookingCount); err != nil {
			return nil, fmt.Errorf("%w: TopEarners - scan row: %v", ErrScanRow, err)
		}
		result = append(result, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: TopEarners - rows error: %v", ErrScanRow, err)
	}

	return result, nil
}

// Approve утверждает запись комиссии
// Только из approval_status = pending, условие входит в WHERE
func (r *Repository) Approve(ctx context.Context, id int64) error {
	return r.execGuarded(ctx, "Approve", psqlbuilder.Update("staff_commissions").
		Set("approval_status", domain.ApprovalApproved).
		Set("approved_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "approval_status": domain.ApprovalPending}))
}

// Reject отклоняет запись комиссии
func (r *Repository) Reject(ctx context.Context, id int64) error {
	return r.execGuarded(ctx, "Reject", psqlbuilder.Update("staff_commissions").
		Set("approval_status", domain.ApprovalRejected).
		Where(squirrel.Eq{"id": id, "approval_status": domain.ApprovalPending}))
}

// MarkPaid отмечает утверждённую запись как выплаченную
// Повторная выплата не проходит - payout_status = pending в WHERE
func (r *Repository) MarkPaid(ctx context.Context, id int64) error {
	return r.execGuarded(ctx, "MarkPaid", psqlbuilder.Update("staff_commissions").
		Set("payout_status", domain.PayoutPaid).
		Set("paid_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{
			"id":              id,
			"approval_status": domain.ApprovalApproved,
			"payout_status":   domain.PayoutPending,
		}))
}

func (r *Repository) list(ctx context.Context, op string, builder squirrel.SelectBuilder) ([]*domain.StaffCommission, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %v", ErrExecQuery, op, err)
	}
	defer rows.Close()

	commissions := make([]*domain.StaffCommission, 0)
	for rows.Next() {
		c, err := scanCommission(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %v", ErrScanRow, op, err)
		}
		commissions = append(commissions, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %v", ErrScanRow, op, err)
	}

	return commissions, nil
}

func (r *Repository) execGuarded(ctx context.Context, op string, builder squirrel.UpdateBuilder) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, op, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}

	if rowsAffected == 0 {
		return ErrInvalidState
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCommission(row rowScanner) (*domain.StaffCommission, error) {
	var c domain.StaffCommission
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&c.ID,
		&c.StaffID,
		&c.BranchID,
		&c.BookingID,
		&c.ServiceID,
		&c.CommissionType,
		&c.ServiceAmount,
		&c.CommissionAmount,
		&c.QualityMultiplier,
		&c.TotalEarning,
		&c.TipAmount,
		&c.BonusAmount,
		&c.PenaltyAmount,
		&c.PayoutStatus,
		&c.ApprovalStatus,
		&c.EarnedDate,
		&c.ApprovedAt,
		&c.PaidAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.CreatedAt = createdAt.Time
	c.UpdatedAt = updatedAt.Time

	return &c, nil
}

// structureRow строка таблицы commission_structures
type structureRow struct {
	commissionType domain.CommissionType
	rate           sql.NullFloat64
	fixedAmount    sql.NullFloat64
	tiersJSON      []byte
}

// GetStructureWithHierarchy разрешает структуру комиссии с учетом приоритетов:
// 1. Персональная структура мастера (staff_id)
// 2. Структура услуги (service_id, staff_id IS NULL)
// Если не настроена ни одна, возвращает ErrStructureNotFound -
// вызывающая сторона применяет глобальный дефолт
func (r *Repository) GetStructureWithHierarchy(ctx context.Context, staffID, serviceID int64) (domain.CommissionStructure, error) {
	// 1. Персональная структура мастера
	structure, err := r.getStructure(ctx, squirrel.Eq{"staff_id": staffID})
	if err == nil {
		return structure, nil
	}
	if err != ErrStructureNotFound {
		return nil, fmt.Errorf("%w: GetStructureWithHierarchy - staff level: %v", ErrExecQuery, err)
	}

	// 2. Структура услуги
	structure, err = r.getStructure(ctx, squirrel.Eq{"service_id": serviceID, "staff_id": nil})
	if err == nil {
		return structure, nil
	}
	if err != ErrStructureNotFound {
		return nil, fmt.Errorf("%w: GetStructureWithHierarchy - service level: %v", ErrExecQuery, err)
	}

	return nil, ErrStructureNotFound
}

func (r *Repository) getStructure(ctx context.Context, where squirrel.Eq) (domain.CommissionStructure, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"commission_type",
		"rate",
		"fixed_amount",
		"tiers",
	).
		From("commission_structures").
		Where(where).
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("updated_at DESC").
		Limit(1).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: getStructure - build select query: %v", ErrBuildQuery, err)
	}

	var row structureRow
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&row.commissionType,
		&row.rate,
		&row.fixedAmount,
		&row.tiersJSON,
	)

	if err == sql.ErrNoRows {
		return nil, ErrStructureNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: getStructure - scan structure: %v", ErrScanRow, err)
	}

	return row.toDomain()
}

// toDomain собирает доменную структуру из строки БД
// Некорректная конфигурация - ошибка, а не тихий фолбэк
func (s *structureRow) toDomain() (domain.CommissionStructure, error) {
	switch s.commissionType {
	case domain.CommissionPercentage:
		if !s.rate.Valid {
			return nil, fmt.Errorf("%w: percentage structure without rate", ErrMalformedStructure)
		}
		return domain.PercentageStructure{Rate: s.rate.Float64}, nil

	case domain.CommissionFixed:
		if !s.fixedAmount.Valid {
			return nil, fmt.Errorf("%w: fixed structure without amount", ErrMalformedStructure)
		}
		return domain.FixedStructure{Amount: s.fixedAmount.Float64}, nil

	case domain.CommissionTiered:
		var tiers []domain.CommissionTier
		if err := json.Unmarshal(s.tiersJSON, &tiers); err != nil {
			return nil, fmt.Errorf("%w: failed to decode tiers: %v", ErrMalformedStructure, err)
		}
		tiered, err := domain.NewTieredStructure(tiers)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedStructure, err)
		}
		return tiered, nil

	case domain.CommissionHybrid:
		if !s.rate.Valid || !s.fixedAmount.Valid {
			return nil, fmt.Errorf("%w: hybrid structure requires rate and fixed amount", ErrMalformedStructure)
		}
		return domain.HybridStructure{FixedAmount: s.fixedAmount.Float64, Rate: s.rate.Float64}, nil

	default:
		return nil, fmt.Errorf("%w: unknown commission type %q", ErrMalformedStructure, s.commissionType)
	}
}
