package schedule

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/lumispa/spa-core/internal/domain"
	"github.com/lumispa/spa-core/pkg/dbmetrics"
	"github.com/lumispa/spa-core/pkg/psqlbuilder"
	"github.com/lumispa/spa-core/pkg/types"
)

// Переиспользуем интерфейсы из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor

var scheduleColumns = []string{
	"id",
	"staff_id",
	"branch_id",
	"work_date",
	"start_time",
	"end_time",
	"break_start",
	"break_end",
	"is_available",
	"created_at",
	"updated_at",
}

// Repository репозиторий расписаний мастеров
// Расписания ведутся внешней системой, здесь только чтение
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписаний
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByStaffAndDate получает расписание мастера на конкретную дату
func (r *Repository) GetByStaffAndDate(ctx context.Context, staffID int64, date time.Time) (*domain.StaffSchedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(scheduleColumns...).
		From("staff_schedules").
		Where(squirrel.Eq{
			"staff_id":  staffID,
			"work_date": date.Format(domain.DateFormat),
		}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByStaffAndDate - build select query: %v", ErrBuildQuery, err)
	}

	schedule, err := scanSchedule(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrScheduleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByStaffAndDate - scan schedule: %v", ErrScanRow, err)
	}

	return schedule, nil
}

// GetByStaffAndPeriod получает расписания мастера за период
func (r *Repository) GetByStaffAndPeriod(ctx context.Context, staffID int64, from, to time.Time) ([]*domain.StaffSchedule, error) {
	return r.list(ctx, "GetByStaffAndPeriod", psqlbuilder.Select(scheduleColumns...).
		From("staff_schedules").
		Where(squirrel.Eq{"staff_id": staffID}).
		Where(squirrel.GtOrEq{"work_date": from.Format(domain.DateFormat)}).
		Where(squirrel.LtOrEq{"work_date": to.Format(domain.DateFormat)}).
		OrderBy("work_date ASC"))
}

// GetByBranchAndDate получает расписания всех мастеров филиала на дату
func (r *Repository) GetByBranchAndDate(ctx context.Context, branchID int64, date time.Time) ([]*domain.StaffSchedule, error) {
	return r.list(ctx, "GetByBranchAndDate", psqlbuilder.Select(scheduleColumns...).
		From("staff_schedules").
		Where(squirrel.Eq{
			"branch_id": branchID,
			"work_date": date.Format(domain.DateFormat),
		}).
		OrderBy("staff_id ASC"))
}

func (r *Repository) list(ctx context.Context, op string, builder squirrel.SelectBuilder) ([]*domain.StaffSchedule, error) {
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

	schedules := make([]*domain.StaffSchedule, 0)
	for rows.Next() {
		schedule, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %v", ErrScanRow, op, err)
		}
		schedules = append(schedules, schedule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %v", ErrScanRow, op, err)
	}

	return schedules, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSchedule(row rowScanner) (*domain.StaffSchedule, error) {
	var schedule domain.StaffSchedule
	var breakStart, breakEnd types.TimeString
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&schedule.ID,
		&schedule.StaffID,
		&schedule.BranchID,
		&schedule.WorkDate,
		&schedule.StartTime,
		&schedule.EndTime,
		&breakStart,
		&breakEnd,
		&schedule.IsAvailable,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	// NULL в колонках перерыва сканируется в пустой TimeString
	if !breakStart.IsZero() {
		schedule.BreakStart = &breakStart
	}
	if !breakEnd.IsZero() {
		schedule.BreakEnd = &breakEnd
	}

	schedule.CreatedAt = createdAt.Time
	schedule.UpdatedAt = updatedAt.Time

	return &schedule, nil
}
