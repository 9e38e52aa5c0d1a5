// Package remind keeps at most one scheduled notification per task in
// sync with that task's due date. The notification service itself is an
// external collaborator behind a narrow interface.
package remind

import (
	"context"
	"errors"
)

// ErrAuthorizationDenied is returned when the notification service
// refuses to deliver notifications. The task itself remains valid; no
// reminder exists afterwards.
var ErrAuthorizationDenied = errors.New("notification authorization denied")

// Payload travels with a scheduled notification so a delivery can be
// resolved back to its task.
type Payload struct {
	TaskID string
	Title  string
}

// Request is a pending notification registration.
type Request struct {
	ID      string
	Payload Payload
	Trigger Trigger
}

// DeliveryHandler is invoked with the payload of a notification the user
// acted upon.
type DeliveryHandler func(Payload)

// Service is the notification collaborator: a deliver-at-time alert
// table. Its pending entries are only ever mutated through the Scheduler.
type Service interface {
	// RequestAuthorization asks for permission to post notifications.
	// A false result with nil error means the user declined.
	RequestAuthorization(ctx context.Context) (bool, error)

	// Add registers a pending notification under the request's identifier,
	// replacing any existing entry with the same identifier.
	Add(ctx context.Context, req Request) error

	// Remove deletes the pending entries with the given identifiers.
	// Unknown identifiers are ignored.
	Remove(ctx context.Context, ids []string) error

	// Pending lists the currently registered entries.
	Pending(ctx context.Context) ([]Request, error)

	// OnDelivery sets the handler invoked when a notification is acted on.
	OnDelivery(h DeliveryHandler)
}
