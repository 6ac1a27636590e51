// Package notify delivers task-created notifications to managers.
//
// The pipeline has three stages. The Dispatcher accepts events from the
// request path without blocking and renders one job per manager. The
// Publisher writes each job to the durable email queue. The Consumer reads
// the queue, sends each job by email and acknowledges it only after the
// send succeeded, so delivery is at least once.
package notify
