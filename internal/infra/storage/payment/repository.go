package payment

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/lumispa/spa-core/internal/domain"
	"github.com/lumispa/spa-core/pkg/dbmetrics"
	"github.com/lumispa/spa-core/pkg/psqlbuilder"
)

// Переиспользуем интерфейсы из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor

var paymentColumns = []string{
	"id",
	"booking_id",
	"amount",
	"method",
	"status",
	"processed_at",
	"refund_amount",
	"refunded_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий платежей
// Строки никогда не удаляются - возвраты и ошибки фиксируются на месте
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория платежей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новую запись платежа
func (r *Repository) Create(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	insertBuilder := psqlbuilder.Insert("payments").
		Columns(
			"booking_id",
			"amount",
			"method",
			"status",
			"processed_at",
		)

	// processed_at заполняется сразу для платежей, создаваемых как completed
	// (синтезированный платеж наличными при завершении услуги)
	if payment.Status == domain.PaymentCompleted {
		insertBuilder = insertBuilder.Values(
			payment.BookingID,
			payment.Amount,
			payment.Method,
			payment.Status,
			squirrel.Expr("NOW()"),
		)
	} else {
		insertBuilder = insertBuilder.Values(
			payment.BookingID,
			payment.Amount,
			payment.Method,
			payment.Status,
			nil,
		)
	}

	query, args, err := insertBuilder.
		Suffix("RETURNING id, processed_at, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&payment.ID,
		&payment.ProcessedAt,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	payment.CreatedAt = createdAt.Time
	payment.UpdatedAt = updatedAt.Time

	return payment, nil
}

// GetByID получает платеж по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByBookingID получает платеж, привязанный к бронированию (0..1)
func (r *Repository) GetByBookingID(ctx context.Context, bookingID int64) (*domain.Payment, error) {
	return r.getOne(ctx, squirrel.Eq{"booking_id": bookingID})
}

func (r *Repository) getOne(ctx context.Context, where squirrel.Eq) (*domain.Payment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(paymentColumns...).
		From("payments").
		Where(where).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: getOne - build select query: %v", ErrBuildQuery, err)
	}

	var payment domain.Payment
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&payment.ID,
		&payment.BookingID,
		&payment.Amount,
		&payment.Method,
		&payment.Status,
		&payment.ProcessedAt,
		&payment.RefundAmount,
		&payment.RefundedAt,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: getOne - scan payment: %v", ErrScanRow, err)
	}

	payment.CreatedAt = createdAt.Time
	payment.UpdatedAt = updatedAt.Time

	return &payment, nil
}

// MarkCompleted переводит платеж из pending в completed
// Условие по статусу входит в WHERE - повторное завершение не проходит
func (r *Repository) MarkCompleted(ctx context.Context, id int64) error {
	return r.execGuarded(ctx, "MarkCompleted", psqlbuilder.Update("payments").
		Set("status", domain.PaymentCompleted).
		Set("processed_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": domain.PaymentPending}))
}

// MarkFailed переводит платеж из pending в failed
func (r *Repository) MarkFailed(ctx context.Context, id int64) error {
	return r.execGuarded(ctx, "MarkFailed", psqlbuilder.Update("payments").
		Set("status", domain.PaymentFailed).
		Where(squirrel.Eq{"id": id, "status": domain.PaymentPending}))
}

// Refund фиксирует возврат: допускается только из completed,
// сумма возврата не может превышать исходную (проверка и в WHERE)
func (r *Repository) Refund(ctx context.Context, id int64, amount float64) error {
	return r.execGuarded(ctx, "Refund", psqlbuilder.Update("payments").
		Set("status", domain.PaymentRefunded).
		Set("refund_amount", amount).
		Set("refunded_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": domain.PaymentCompleted}).
		Where(squirrel.GtOrEq{"amount": amount}))
}

// execGuarded выполняет update с условием по статусу
// rowsAffected == 0 означает, что платеж не найден или находится в недопустимом статусе
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
