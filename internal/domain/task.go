package domain

import (
	"time"
	"unicode/utf8"
)

// MaxSummaryLength is the maximum number of characters in a plaintext summary.
const MaxSummaryLength = 2500

// Task is a record of work performed by a technician. Summary always holds
// ciphertext; plaintext only exists in a TaskView.
type Task struct {
	ID          int64
	OwnerID     int64
	PerformedAt time.Time
	Summary     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OwnedBy reports whether the task belongs to the given user ID.
func (t *Task) OwnedBy(userID int64) bool {
	return t.OwnerID == userID
}

// View builds the response representation of the task using an already
// decrypted summary.
func (t *Task) View(plainSummary string) TaskView {
	return TaskView{
		ID:          t.ID,
		OwnerID:     t.OwnerID,
		PerformedAt: t.PerformedAt,
		Summary:     plainSummary,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// TaskView is a task as returned to API clients, with the summary in plaintext.
type TaskView struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"ownerId"`
	PerformedAt time.Time `json:"performedAt"`
	Summary     string    `json:"summary"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ValidateSummary checks a trimmed plaintext summary.
func ValidateSummary(summary string) error {
	if summary == "" {
		return NewValidationError("summary", "Summary cannot be empty.")
	}
	if utf8.RuneCountInString(summary) > MaxSummaryLength {
		return NewValidationError("summary", "Summary has exceeded max length of 2500 characters.")
	}
	return nil
}

// ValidatePerformedAt rejects timestamps later than now.
func ValidatePerformedAt(performedAt, now time.Time) error {
	if performedAt.After(now) {
		return NewValidationError("performedAt", "Task cannot have been performed in the future!")
	}
	return nil
}

// TaskCreatedEvent is emitted after a task has been stored so managers can
// be notified.
type TaskCreatedEvent struct {
	TechnicianID int64
	TaskID       int64
	PerformedAt  time.Time
}
