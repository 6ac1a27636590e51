package mocks

import (
	"context"

	"github.com/alexa-mart-pipe/sword-be-challenge/internal/domain"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/service"
)

// MockTaskService implements service.TaskService for testing
type MockTaskService struct {
	CreateTaskFn func(ctx context.Context, p domain.Principal, in service.CreateTaskInput) (domain.TaskView, error)
	UpdateTaskFn func(ctx context.Context, p domain.Principal, taskID int64, in service.UpdateTaskInput) (service.UpdateOutcome, error)
	DeleteTaskFn func(ctx context.Context, p domain.Principal, taskID int64) error
	ListTasksFn  func(ctx context.Context, p domain.Principal) ([]domain.TaskView, error)
}

var _ service.TaskService = (*MockTaskService)(nil)

// CreateTask implements the service.TaskService interface
func (m *MockTaskService) CreateTask(
	ctx context.Context,
	p domain.Principal,
	in service.CreateTaskInput,
) (domain.TaskView, error) {
	if m.CreateTaskFn != nil {
		return m.CreateTaskFn(ctx, p, in)
	}
	return domain.TaskView{}, nil
}

// UpdateTask implements the service.TaskService interface
func (m *MockTaskService) UpdateTask(
	ctx context.Context,
	p domain.Principal,
	taskID int64,
	in service.UpdateTaskInput,
) (service.UpdateOutcome, error) {
	if m.UpdateTaskFn != nil {
		return m.UpdateTaskFn(ctx, p, taskID, in)
	}
	return service.UpdateOutcome{}, nil
}

// DeleteTask implements the service.TaskService interface
func (m *MockTaskService) DeleteTask(ctx context.Context, p domain.Principal, taskID int64) error {
	if m.DeleteTaskFn != nil {
		return m.DeleteTaskFn(ctx, p, taskID)
	}
	return nil
}

// ListTasks implements the service.TaskService interface
func (m *MockTaskService) ListTasks(ctx context.Context, p domain.Principal) ([]domain.TaskView, error) {
	if m.ListTasksFn != nil {
		return m.ListTasksFn(ctx, p)
	}
	return []domain.TaskView{}, nil
}
