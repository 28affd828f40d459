package booking

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumispa/spa-core/internal/domain"
)

// Фейк executor, перехватывающий сгенерированный SQL

type fakeResult struct{ rows int64 }

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.rows, nil }

type fakeExecutor struct {
	query string
	args  []interface{}
	rows  int64
}

func (f *fakeExecutor) ExecContext(_ context.Context, query string, args ...interface{}) (sql.Result, error) {
	f.query = query
	f.args = args
	return fakeResult{rows: f.rows}, nil
}

func (f *fakeExecutor) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, nil
}

func (f *fakeExecutor) QueryRowContext(context.Context, string, ...interface{}) *sql.Row {
	return nil
}

func TestMarkInProgress_StatusInWhere(t *testing.T) {
	// Переход выполняется одним guarded UPDATE: условие по статусу в WHERE,
	// проигравший гонку конкурентный старт не находит строку в confirmed
	executor := &fakeExecutor{rows: 1}
	repo := NewRepository(executor)

	require.NoError(t, repo.MarkInProgress(context.Background(), 10))

	assert.Equal(t,
		"UPDATE bookings SET status = $1, service_started_at = NOW() WHERE id = $2 AND status = $3",
		executor.query)
	assert.Equal(t, []interface{}{domain.StatusInProgress, int64(10), domain.StatusConfirmed}, executor.args)
}

func TestMarkInProgress_LosesRace(t *testing.T) {
	// Строка уже не в confirmed - UPDATE никого не затронул
	executor := &fakeExecutor{rows: 0}
	repo := NewRepository(executor)

	err := repo.MarkInProgress(context.Background(), 10)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestMarkNoShow_ExcludesTerminalStatuses(t *testing.T) {
	// Неявка разрешена из любого активного статуса,
	// но не переписывает completed и cancelled
	executor := &fakeExecutor{rows: 1}
	repo := NewRepository(executor)

	require.NoError(t, repo.MarkNoShow(context.Background(), 10))

	assert.Equal(t,
		"UPDATE bookings SET status = $1 WHERE id = $2 AND status IN ($3,$4,$5)",
		executor.query)
	assert.Equal(t, []interface{}{
		domain.StatusNoShow,
		int64(10),
		string(domain.StatusPending),
		string(domain.StatusConfirmed),
		string(domain.StatusInProgress),
	}, executor.args)
}

func TestMarkNoShow_AlreadyTerminal(t *testing.T) {
	executor := &fakeExecutor{rows: 0}
	repo := NewRepository(executor)

	err := repo.MarkNoShow(context.Background(), 10)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}
