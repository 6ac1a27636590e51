package store

import (
	"context"
	"time"

	"github.com/alexa-mart-pipe/sword-be-challenge/internal/domain"
)

// TaskFilter narrows FindAll. A nil OwnerID returns every task.
type TaskFilter struct {
	OwnerID *int64
}

// TaskPatch lists the fields an update changes. Nil fields are left untouched.
type TaskPatch struct {
	PerformedAt *time.Time
	Summary     *string // ciphertext
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.PerformedAt == nil && p.Summary == nil
}

// TaskStore defines the interface for task data persistence. Summaries are
// stored exactly as given; encryption is the caller's concern.
type TaskStore interface {
	// Create inserts a task and returns it with ID and timestamps populated.
	// Repeated calls with identical arguments create distinct rows.
	Create(ctx context.Context, ownerID int64, performedAt time.Time, summary string) (*domain.Task, error)

	// GetByID retrieves a task. Returns ErrTaskNotFound if it does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Task, error)

	// FindAll returns the tasks matching filter ordered by ID.
	FindAll(ctx context.Context, filter TaskFilter) ([]*domain.Task, error)

	// Update applies patch, refreshes updated_at and returns the number of
	// rows affected. An empty patch is a no-op returning 0.
	Update(ctx context.Context, id int64, patch TaskPatch) (int64, error)

	// Delete physically removes the task and returns the number of rows
	// affected. Zero rows is not an error.
	Delete(ctx context.Context, id int64) (int64, error)
}
