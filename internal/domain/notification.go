package domain

import (
	"errors"
	"fmt"
	"time"
)

// TaskCreatedSubject is the subject line of manager notifications.
const TaskCreatedSubject = "A new Task has started!"

// NotificationJob is one email to send. It is serialized as JSON onto the
// durable email queue and consumed at least once.
type NotificationJob struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

// Validate rejects jobs that cannot be delivered.
func (j NotificationJob) Validate() error {
	if j.From == "" || j.To == "" {
		return errors.New("notification job needs both sender and recipient")
	}
	return nil
}

// NewTaskCreatedJob renders the notification sent to one manager about a new task.
func NewTaskCreatedJob(event TaskCreatedEvent, from, to string) NotificationJob {
	return NotificationJob{
		From:    from,
		To:      to,
		Subject: TaskCreatedSubject,
		Text: fmt.Sprintf("The tech with id %d performed the task with id %d on date %s.",
			event.TechnicianID,
			event.TaskID,
			event.PerformedAt.UTC().Format(time.RFC3339),
		),
	}
}
