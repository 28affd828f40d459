package waitlist

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/lumispa/spa-core/internal/domain"
	"github.com/lumispa/spa-core/pkg/dbmetrics"
	"github.com/lumispa/spa-core/pkg/psqlbuilder"
	"github.com/lumispa/spa-core/pkg/types"
)

// Переиспользуем интерфейсы из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor

var waitlistColumns = []string{
	"id",
	"branch_id",
	"client_id",
	"service_id",
	"preferred_staff_id",
	"preferred_date",
	"preferred_start",
	"preferred_end",
	"alternative_dates",
	"alternative_staff_ids",
	"status",
	"priority_level",
	"priority_score",
	"client_booking_count",
	"expires_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий листа ожидания
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория листа ожидания
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новую запись листа ожидания
func (r *Repository) Create(ctx context.Context, entry *domain.WaitlistEntry) (*domain.WaitlistEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	altDates := make([]string, 0, len(entry.AlternativeDates))
	for _, d := range entry.AlternativeDates {
		altDates = append(altDates, d.Format(domain.DateFormat))
	}

	query, args, err := psqlbuilder.Insert("waitlist_entries").
		Columns(
			"branch_id",
			"client_id",
			"service_id",
			"preferred_staff_id",
			"preferred_date",
			"preferred_start",
			"preferred_end",
			"alternative_dates",
			"alternative_staff_ids",
			"status",
			"priority_level",
			"priority_score",
			"client_booking_count",
		).
		Values(
			entry.BranchID,
			entry.ClientID,
			entry.ServiceID,
			entry.PreferredStaffID,
			entry.PreferredDate.Format(domain.DateFormat),
			timeStringValue(entry.PreferredStart),
			timeStringValue(entry.PreferredEnd),
			pq.Array(altDates),
			pq.Array(entry.AlternativeStaffIDs),
			entry.Status,
			entry.PriorityLevel,
			entry.PriorityScore,
			entry.ClientBookingCount,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&entry.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	entry.CreatedAt = createdAt.Time
	entry.UpdatedAt = updatedAt.Time

	return entry, nil
}

// GetByID получает запись листа ожидания по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.WaitlistEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(waitlistColumns...).
		From("waitlist_entries").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	entry, err := scanEntry(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan entry: %v", ErrScanRow, err)
	}

	return entry, nil
}

// GetPendingByBranch получает ожидающие записи филиала по услуге
func (r *Repository) GetPendingByBranch(ctx context.Context, branchID, serviceID int64) ([]*domain.WaitlistEntry, error) {
	return r.list(ctx, "GetPendingByBranch", psqlbuilder.Select(waitlistColumns...).
		From("waitlist_entries").
		Where(squirrel.Eq{
			"branch_id":  branchID,
			"service_id": serviceID,
			"status":     domain.WaitlistPending,
		}).
		OrderBy("priority_score DESC", "created_at ASC"))
}

// MarkNotified переводит запись из pending в notified с окном ответа
func (r *Repository) MarkNotified(ctx context.Context, id int64, expiresAt time.Time) error {
	return r.execGuarded(ctx, "MarkNotified", psqlbuilder.Update("waitlist_entries").
		Set("status", domain.WaitlistNotified).
		Set("expires_at", expiresAt).
		Where(squirrel.Eq{"id": id, "status": domain.WaitlistPending}))
}

// MarkConverted фиксирует принятие предложенного слота
func (r *Repository) MarkConverted(ctx context.Context, id int64) error {
	return r.execGuarded(ctx, "MarkConverted", psqlbuilder.Update("waitlist_entries").
		Set("status", domain.WaitlistConverted).
		Where(squirrel.Eq{"id": id, "status": domain.WaitlistNotified}))
}

// MarkDeclined фиксирует отказ клиента от предложенного слота
func (r *Repository) MarkDeclined(ctx context.Context, id int64) error {
	return r.execGuarded(ctx, "MarkDeclined", psqlbuilder.Update("waitlist_entries").
		Set("status", domain.WaitlistDeclined).
		Where(squirrel.Eq{"id": id, "status": domain.WaitlistNotified}))
}

// ExtendExpiry продлевает окно ответа уведомлённой записи
func (r *Repository) ExtendExpiry(ctx context.Context, id int64, expiresAt time.Time) error {
	return r.execGuarded(ctx, "ExtendExpiry", psqlbuilder.Update("waitlist_entries").
		Set("expires_at", expiresAt).
		Where(squirrel.Eq{"id": id, "status": domain.WaitlistNotified}))
}

// UpdatePriorityScore сохраняет пересчитанный приоритет записи
func (r *Repository) UpdatePriorityScore(ctx context.Context, id int64, score int) error {
	return r.execGuarded(ctx, "UpdatePriorityScore", psqlbuilder.Update("waitlist_entries").
		Set("priority_score", score).
		Where(squirrel.Eq{"id": id}))
}

// ExpireOverdue переводит в expired все уведомлённые записи с истёкшим окном ответа.
// Возвращает ID затронутых записей. Повторный вызов ничего не меняет
func (r *Repository) ExpireOverdue(ctx context.Context, now time.Time) ([]int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("waitlist_entries").
		Set("status", domain.WaitlistExpired).
		Where(squirrel.Eq{"status": domain.WaitlistNotified}).
		Where(squirrel.Lt{"expires_at": now}).
		Suffix("RETURNING id").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ExpireOverdue - build update query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ExpireOverdue - execute update: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: ExpireOverdue - scan id: %v", ErrScanRow, err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ExpireOverdue - rows error: %v", ErrScanRow, err)
	}

	return ids, nil
}

func (r *Repository) list(ctx context.Context, op string, builder squirrel.SelectBuilder) ([]*domain.WaitlistEntry, error) {
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

	entries := make([]*domain.WaitlistEntry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %v", ErrScanRow, op, err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %v", ErrScanRow, op, err)
	}

	return entries, nil
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

func scanEntry(row rowScanner) (*domain.WaitlistEntry, error) {
	var entry domain.WaitlistEntry
	var preferredStart, preferredEnd types.TimeString
	var altDates pq.StringArray
	var altStaffIDs pq.Int64Array
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&entry.ID,
		&entry.BranchID,
		&entry.ClientID,
		&entry.ServiceID,
		&entry.PreferredStaffID,
		&entry.PreferredDate,
		&preferredStart,
		&preferredEnd,
		&altDates,
		&altStaffIDs,
		&entry.Status,
		&entry.PriorityLevel,
		&entry.PriorityScore,
		&entry.ClientBookingCount,
		&entry.ExpiresAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if !preferredStart.IsZero() {
		entry.PreferredStart = &preferredStart
	}
	if !preferredEnd.IsZero() {
		entry.PreferredEnd = &preferredEnd
	}

	entry.AlternativeDates = make([]time.Time, 0, len(altDates))
	for _, raw := range altDates {
		date, err := time.Parse(domain.DateFormat, raw)
		if err != nil {
			return nil, fmt.Errorf("malformed alternative date %q: %v", raw, err)
		}
		entry.AlternativeDates = append(entry.AlternativeDates, date)
	}
	entry.AlternativeStaffIDs = []int64(altStaffIDs)

	entry.CreatedAt = createdAt.Time
	entry.UpdatedAt = updatedAt.Time

	return &entry, nil
}

// timeStringValue возвращает NULL для отсутствующего предпочтения по времени
func timeStringValue(t *types.TimeString) interface{} {
	if t == nil {
		return nil
	}
	return *t
}
