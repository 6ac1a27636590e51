package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/alexa-mart-pipe/sword-be-challenge/internal/domain"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/platform/logger"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/store"
	"github.com/jmoiron/sqlx"
)

const taskColumns = `id, owner_id, performed_at, summary, created_at, updated_at`

type taskRow struct {
	ID          int64     `db:"id"`
	OwnerID     int64     `db:"owner_id"`
	PerformedAt time.Time `db:"performed_at"`
	Summary     string    `db:"summary"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r taskRow) toDomain() *domain.Task {
	return &domain.Task{
		ID:          r.ID,
		OwnerID:     r.OwnerID,
		PerformedAt: r.PerformedAt.UTC(),
		Summary:     r.Summary,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

// TaskStore implements store.TaskStore.
type TaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewTaskStore creates a TaskStore over a database handle or transaction.
// If logger is nil, a default logger will be used.
func NewTaskStore(db store.DBTX, logger *slog.Logger) *TaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &TaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

var _ store.TaskStore = (*TaskStore)(nil)

// Create implements store.TaskStore.Create.
// Returns store.ErrInvalidEntity if the owner does not exist.
func (s *TaskStore) Create(
	ctx context.Context,
	ownerID int64,
	performedAt time.Time,
	summary string,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	ts := now()
	task := &domain.Task{
		OwnerID:     ownerID,
		PerformedAt: normalizeTime(performedAt),
		Summary:     summary,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}

	query := s.db.Rebind(`
		INSERT INTO tasks (owner_id, performed_at, summary, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`)
	err := s.db.QueryRowxContext(ctx, query,
		task.OwnerID,
		task.PerformedAt,
		task.Summary,
		task.CreatedAt,
		task.UpdatedAt,
	).Scan(&task.ID)
	if err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrInvalidEntity) {
			log.Warn("task owner does not exist",
				slog.String("error", err.Error()),
				slog.Int64("owner_id", ownerID))
		} else {
			log.Error("failed to create task",
				slog.String("error", err.Error()),
				slog.Int64("owner_id", ownerID))
		}
		return nil, store.NewStoreError("task", "create", "insert failed", mapped)
	}

	log.Debug("task created",
		slog.Int64("task_id", task.ID),
		slog.Int64("owner_id", ownerID))
	return task, nil
}

// GetByID implements store.TaskStore.GetByID.
func (s *TaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var row taskRow
	query := s.db.Rebind(`SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`)
	if err := sqlx.GetContext(ctx, s.db, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.Int64("task_id", id))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return nil, store.NewStoreError("task", "get", "select failed", MapError(err))
	}

	return row.toDomain(), nil
}

// FindAll implements store.TaskStore.FindAll.
func (s *TaskStore) FindAll(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + taskColumns + ` FROM tasks`
	var args []any
	if filter.OwnerID != nil {
		query += ` WHERE owner_id = ?`
		args = append(args, *filter.OwnerID)
	}
	query += ` ORDER BY id`

	var rows []taskRow
	if err := sqlx.SelectContext(ctx, s.db, &rows, s.db.Rebind(query), args...); err != nil {
		log.Error("failed to list tasks", slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "list", "select failed", MapError(err))
	}

	tasks := make([]*domain.Task, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, r.toDomain())
	}
	return tasks, nil
}

// Update implements store.TaskStore.Update.
func (s *TaskStore) Update(ctx context.Context, id int64, patch store.TaskPatch) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if patch.IsEmpty() {
		return 0, nil
	}

	var (
		sets []string
		args []any
	)
	if patch.PerformedAt != nil {
		sets = append(sets, "performed_at = ?")
		args = append(args, normalizeTime(*patch.PerformedAt))
	}
	if patch.Summary != nil {
		sets = append(sets, "summary = ?")
		args = append(args, *patch.Summary)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, now(), id)

	query := s.db.Rebind(`UPDATE tasks SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`)
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return 0, store.NewStoreError("task", "update", "update failed", MapError(err))
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, store.NewStoreError("task", "update", "rows affected unavailable", err)
	}

	log.Debug("task updated",
		slog.Int64("task_id", id),
		slog.Int64("rows_affected", n))
	return n, nil
}

// Delete implements store.TaskStore.Delete.
func (s *TaskStore) Delete(ctx context.Context, id int64) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM tasks WHERE id = ?`), id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return 0, store.NewStoreError("task", "delete", "delete failed", MapError(err))
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, store.NewStoreError("task", "delete", "rows affected unavailable", err)
	}

	log.Debug("task deleted",
		slog.Int64("task_id", id),
		slog.Int64("rows_affected", n))
	return n, nil
}
