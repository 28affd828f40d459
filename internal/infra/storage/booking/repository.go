package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/lumispa/spa-core/internal/domain"
	"github.com/lumispa/spa-core/pkg/dbmetrics"
	"github.com/lumispa/spa-core/pkg/psqlbuilder"
)

// uniqueViolation код ошибки postgres для нарушения уникального ограничения
const uniqueViolation = "23505"

// Имена уникальных ограничений таблицы bookings
const (
	constraintSlot      = "bookings_client_slot_key"
	constraintReference = "bookings_reference_key"
)

var bookingColumns = []string{
	"id",
	"reference",
	"branch_id",
	"service_id",
	"client_id",
	"staff_id",
	"appointment_date",
	"start_time",
	"end_time",
	"status",
	"payment_status",
	"total_amount",
	"notes",
	"cancellation_reason",
	"confirmed_at",
	"cancelled_at",
	"service_started_at",
	"service_completed_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование
// Точный дубликат слота (client, service, staff, date, start_time) отклоняется
// уникальным индексом на уровне БД - это жёсткое ограничение, а не проверка в коде
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"reference",
			"branch_id",
			"service_id",
			"client_id",
			"staff_id",
			"appointment_date",
			"start_time",
			"end_time",
			"status",
			"payment_status",
			"total_amount",
			"notes",
		).
		Values(
			booking.Reference,
			booking.BranchID,
			booking.ServiceID,
			booking.ClientID,
			booking.StaffID,
			booking.AppointmentDate,
			booking.StartTime,
			booking.EndTime,
			booking.Status,
			booking.PaymentStatus,
			booking.TotalAmount,
			booking.Notes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			switch pqErr.Constraint {
			case constraintReference:
				return nil, ErrDuplicateReference
			case constraintSlot:
				return nil, ErrDuplicateSlot
			default:
				return nil, ErrDuplicateSlot
			}
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return booking, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id}, false)
}

// GetByIDForUpdate получает бронирование по ID с блокировкой строки (FOR UPDATE)
// Используется в транзакциях переходов статуса, чтобы два конкурентных запроса
// не прошли один и тот же переход дважды
func (r *Repository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id}, true)
}

// GetByReference получает бронирование по коду
func (r *Repository) GetByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	return r.getOne(ctx, squirrel.Eq{"reference": reference}, false)
}

func (r *Repository) getOne(ctx context.Context, where squirrel.Eq, forUpdate bool) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(where)

	if forUpdate {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: getOne - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: getOne - scan booking: %v", ErrScanRow, err)
	}

	return booking, nil
}

// GetByBranchWithFilter получает бронирования филиала с гибкой фильтрацией
// по мастеру, клиенту, периоду и статусам
func (r *Repository) GetByBranchWithFilter(ctx context.Context, filter domain.BranchBookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"branch_id": filter.BranchID})

	if filter.StaffID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"staff_id": *filter.StaffID})
	}
	if filter.ClientID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"client_id": *filter.ClientID})
	}
	if filter.StartDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"appointment_date": *filter.StartDate})
	}
	if filter.EndDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"appointment_date": *filter.EndDate})
	}

	switch {
	case filter.Status != nil:
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	case len(filter.Statuses) > 0:
		statusStrings := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statusStrings[i] = string(s)
		}
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": statusStrings})
	case !filter.IncludeInactive:
		// Без явного фильтра по статусу исключаем отменённые и no-show
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"status": []string{
			string(domain.StatusCancelled),
			string(domain.StatusNoShow),
		}})
	}

	if filter.StartDate != nil && filter.EndDate != nil && filter.StartDate.Equal(*filter.EndDate) {
		selectBuilder = selectBuilder.OrderBy("start_time ASC")
	} else {
		selectBuilder = selectBuilder.OrderBy("appointment_date DESC, start_time DESC")
	}

	// Внутри транзакции для конкретной даты блокируем строки -
	// это путь проверки конфликтов при создании бронирования
	if dbmetrics.IsInTransaction(ctx) && filter.StartDate != nil && filter.EndDate != nil && filter.StartDate.Equal(*filter.EndDate) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByBranchWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByBranchWithFilter - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// GetByStaffAndPeriod получает бронирования мастера за период в указанных статусах
// Используется калькулятором загрузки
func (r *Repository) GetByStaffAndPeriod(ctx context.Context, staffID int64, from, to time.Time, statuses []domain.BookingStatus) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	statusStrings := make([]string, len(statuses))
	for i, s := range statuses {
		statusStrings[i] = string(s)
	}

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"staff_id": staffID}).
		Where(squirrel.GtOrEq{"appointment_date": from}).
		Where(squirrel.LtOrEq{"appointment_date": to}).
		Where(squirrel.Eq{"status": statusStrings}).
		OrderBy("appointment_date ASC, start_time ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByStaffAndPeriod - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByStaffAndPeriod - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// CountByClient считает завершённые бронирования клиента
// Используется как показатель лояльности при расчете приоритета в листе ожидания
func (r *Repository) CountByClient(ctx context.Context, clientID int64) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("bookings").
		Where(squirrel.Eq{"client_id": clientID, "status": domain.StatusCompleted}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: CountByClient - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountByClient - scan count: %v", ErrScanRow, err)
	}

	return count, nil
}

// MarkConfirmed переводит бронирование в confirmed и фиксирует время подтверждения
func (r *Repository) MarkConfirmed(ctx context.Context, id int64) error {
	return r.execUpdate(ctx, "MarkConfirmed", psqlbuilder.Update("bookings").
		Set("status", domain.StatusConfirmed).
		Set("confirmed_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}))
}

// MarkInProgress переводит бронирование в in_progress и фиксирует начало услуги
// Условие по статусу продублировано в WHERE: из двух конкурентных стартов
// второй не найдёт строку в confirmed и получит ErrBookingNotFound
func (r *Repository) MarkInProgress(ctx context.Context, id int64) error {
	return r.execUpdate(ctx, "MarkInProgress", psqlbuilder.Update("bookings").
		Set("status", domain.StatusInProgress).
		Set("service_started_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": domain.StatusConfirmed}))
}

// MarkCompleted переводит бронирование в completed и фиксирует завершение услуги
func (r *Repository) MarkCompleted(ctx context.Context, id int64) error {
	return r.execUpdate(ctx, "MarkCompleted", psqlbuilder.Update("bookings").
		Set("status", domain.StatusCompleted).
		Set("service_completed_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}))
}

// Cancel отменяет бронирование с указанием причины
func (r *Repository) Cancel(ctx context.Context, id int64, reason string) error {
	return r.execUpdate(ctx, "Cancel", psqlbuilder.Update("bookings").
		Set("status", domain.StatusCancelled).
		Set("cancellation_reason", reason).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}))
}

// MarkNoShow помечает бронирование как no-show
// Условия перехода определяются внешней политикой, здесь только мутация -
// WHERE отсекает лишь терминальные статусы, чтобы гонка двух фиксаций
// не переписала completed или cancelled
func (r *Repository) MarkNoShow(ctx context.Context, id int64) error {
	return r.execUpdate(ctx, "MarkNoShow", psqlbuilder.Update("bookings").
		Set("status", domain.StatusNoShow).
		Where(squirrel.Eq{"id": id, "status": []string{
			string(domain.StatusPending),
			string(domain.StatusConfirmed),
			string(domain.StatusInProgress),
		}}))
}

// UpdatePaymentStatus обновляет денормализованный статус оплаты бронирования
func (r *Repository) UpdatePaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus) error {
	return r.execUpdate(ctx, "UpdatePaymentStatus", psqlbuilder.Update("bookings").
		Set("payment_status", status).
		Where(squirrel.Eq{"id": id}))
}

func (r *Repository) execUpdate(ctx context.Context, op string, builder squirrel.UpdateBuilder) error {
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
		return ErrBookingNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var booking domain.Booking
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&booking.ID,
		&booking.Reference,
		&booking.BranchID,
		&booking.ServiceID,
		&booking.ClientID,
		&booking.StaffID,
		&booking.AppointmentDate,
		&booking.StartTime,
		&booking.EndTime,
		&booking.Status,
		&booking.PaymentStatus,
		&booking.TotalAmount,
		&booking.Notes,
		&booking.CancellationReason,
		&booking.ConfirmedAt,
		&booking.CancelledAt,
		&booking.ServiceStartedAt,
		&booking.ServiceCompletedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return &booking, nil
}

func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}
