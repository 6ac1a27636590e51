package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alexa-mart-pipe/sword-be-challenge/internal/domain"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/platform/logger"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/service/auth"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/store"
)

// SummaryCodec encrypts summaries before storage and decrypts them for responses.
type SummaryCodec interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// Notifier accepts task-created events for asynchronous delivery.
// Submit must not block on delivery.
type Notifier interface {
	Submit(ctx context.Context, event domain.TaskCreatedEvent) error
}

// CreateTaskInput holds the validated fields of a new task.
type CreateTaskInput struct {
	PerformedAt time.Time
	Summary     string
}

// UpdateTaskInput holds the optional fields of a task update. Nil or empty
// values leave the stored field unchanged.
type UpdateTaskInput struct {
	PerformedAt *time.Time
	Summary     *string
}

// UpdateOutcome reports what an update did.
type UpdateOutcome struct {
	// NoChange is set when the request carried nothing to update.
	NoChange bool
	// Updated is the number of rows the store reported as changed.
	Updated int64
}

// TaskService provides the task lifecycle operations.
type TaskService interface {
	// CreateTask stores a task owned by the calling technician and schedules
	// manager notifications. Technicians only.
	CreateTask(ctx context.Context, p domain.Principal, in CreateTaskInput) (domain.TaskView, error)

	// UpdateTask changes a task owned by the calling technician. Technicians only.
	UpdateTask(ctx context.Context, p domain.Principal, taskID int64, in UpdateTaskInput) (UpdateOutcome, error)

	// DeleteTask removes a task. Managers only.
	DeleteTask(ctx context.Context, p domain.Principal, taskID int64) error

	// ListTasks returns the tasks visible to the caller: technicians see their
	// own, managers see all.
	ListTasks(ctx context.Context, p domain.Principal) ([]domain.TaskView, error)
}

type taskServiceImpl struct {
	tasks    store.TaskStore
	codec    SummaryCodec
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

var _ TaskService = (*taskServiceImpl)(nil)

// NewTaskService creates a TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	tasks store.TaskStore,
	codec SummaryCodec,
	notifier Notifier,
	logger *slog.Logger,
) (TaskService, error) {
	if tasks == nil {
		return nil, fmt.Errorf("tasks store cannot be nil")
	}
	if codec == nil {
		return nil, fmt.Errorf("codec cannot be nil")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		tasks:    tasks,
		codec:    codec,
		notifier: notifier,
		logger:   logger.With("component", "task_service"),
		now:      time.Now,
	}, nil
}

// CreateTask implements TaskService.
func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	p domain.Principal,
	in CreateTaskInput,
) (domain.TaskView, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := auth.TechniciansOnly.Check(p); err != nil {
		return domain.TaskView{}, err
	}

	summary := strings.TrimSpace(in.Summary)
	if err := validateTaskFields(&in.PerformedAt, &summary, s.now()); err != nil {
		return domain.TaskView{}, err
	}

	ciphertext, err := s.codec.Encrypt(summary)
	if err != nil {
		return domain.TaskView{}, fmt.Errorf("failed to encrypt summary: %w", err)
	}

	task, err := s.tasks.Create(ctx, p.ID, in.PerformedAt, ciphertext)
	if err != nil {
		log.Error("failed to store task",
			"error", err,
			"technician_id", p.ID)
		return domain.TaskView{}, wrapStoreError("create_task", err)
	}

	event := domain.TaskCreatedEvent{
		TechnicianID: p.ID,
		TaskID:       task.ID,
		PerformedAt:  task.PerformedAt,
	}
	if err := s.notifier.Submit(ctx, event); err != nil {
		// The task is stored; losing the notification must not fail the request.
		log.Warn("failed to schedule task notification",
			"error", err,
			"task_id", task.ID,
			"technician_id", p.ID)
	}

	log.Info("task created",
		"task_id", task.ID,
		"technician_id", p.ID)

	return task.View(summary), nil
}

// UpdateTask implements TaskService.
func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	p domain.Principal,
	taskID int64,
	in UpdateTaskInput,
) (UpdateOutcome, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := auth.TechniciansOnly.Check(p); err != nil {
		return UpdateOutcome{}, err
	}

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return UpdateOutcome{}, wrapStoreError("update_task", err)
	}
	if !task.OwnedBy(p.ID) {
		log.Warn("technician attempted to update another technician's task",
			"task_id", taskID,
			"technician_id", p.ID,
			"owner_id", task.OwnerID)
		return UpdateOutcome{}, ErrNotTaskOwner
	}

	var summary *string
	if in.Summary != nil {
		if trimmed := strings.TrimSpace(*in.Summary); trimmed != "" {
			summary = &trimmed
		}
	}
	if in.PerformedAt == nil && summary == nil {
		return UpdateOutcome{NoChange: true}, nil
	}
	if err := validateTaskFields(in.PerformedAt, summary, s.now()); err != nil {
		return UpdateOutcome{}, err
	}

	patch := store.TaskPatch{PerformedAt: in.PerformedAt}
	if summary != nil {
		ciphertext, err := s.codec.Encrypt(*summary)
		if err != nil {
			return UpdateOutcome{}, fmt.Errorf("failed to encrypt summary: %w", err)
		}
		patch.Summary = &ciphertext
	}

	n, err := s.tasks.Update(ctx, taskID, patch)
	if err != nil {
		log.Error("failed to update task",
			"error", err,
			"task_id", taskID)
		return UpdateOutcome{}, wrapStoreError("update_task", err)
	}

	log.Info("task updated",
		"task_id", taskID,
		"rows_affected", n)
	return UpdateOutcome{Updated: n}, nil
}

// DeleteTask implements TaskService.
func (s *taskServiceImpl) DeleteTask(ctx context.Context, p domain.Principal, taskID int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := auth.ManagersOnly.Check(p); err != nil {
		return err
	}

	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		return wrapStoreError("delete_task", err)
	}

	n, err := s.tasks.Delete(ctx, taskID)
	if err != nil {
		log.Error("failed to delete task",
			"error", err,
			"task_id", taskID)
		return wrapStoreError("delete_task", err)
	}
	if n == 0 {
		// Removed concurrently between the lookup and the delete.
		log.Debug("task already deleted", "task_id", taskID)
	}

	log.Info("task deleted",
		"task_id", taskID,
		"manager_id", p.ID)
	return nil
}

// ListTasks implements TaskService.
func (s *taskServiceImpl) ListTasks(ctx context.Context, p domain.Principal) ([]domain.TaskView, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := auth.TaskUsers.Check(p); err != nil {
		return nil, err
	}

	var filter store.TaskFilter
	if p.IsTechnician() {
		ownerID := p.ID
		filter.OwnerID = &ownerID
	}

	tasks, err := s.tasks.FindAll(ctx, filter)
	if err != nil {
		log.Error("failed to list tasks",
			"error", err,
			"user_id", p.ID)
		return nil, wrapStoreError("list_tasks", err)
	}

	views := make([]domain.TaskView, 0, len(tasks))
	for _, t := range tasks {
		plain, err := s.codec.Decrypt(t.Summary)
		if err != nil {
			log.Error("failed to decrypt task summary",
				"error", err,
				"task_id", t.ID)
			return nil, fmt.Errorf("task %d: %w", t.ID, err)
		}
		views = append(views, t.View(plain))
	}

	return views, nil
}

// validateTaskFields applies the domain rules to the fields that are present.
func validateTaskFields(performedAt *time.Time, summary *string, now time.Time) error {
	verr := &domain.ValidationError{}
	collect := func(err error) {
		var fieldErr *domain.ValidationError
		if errors.As(err, &fieldErr) {
			verr.Fields = append(verr.Fields, fieldErr.Fields...)
		}
	}

	if performedAt != nil {
		collect(domain.ValidatePerformedAt(*performedAt, now))
	}
	if summary != nil {
		collect(domain.ValidateSummary(*summary))
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}
