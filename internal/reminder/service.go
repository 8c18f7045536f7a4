package reminder

import (
	"context"
	"fmt"
)

// Service is the backing reminders store. Implementations own the
// durable records and assign IDs; the Store never invents its own.
type Service interface {
	// AuthorizationStatus reports the current permission state without
	// prompting or mutating anything.
	AuthorizationStatus(ctx context.Context) AccessState

	// RequestAccess prompts for full access to the store. The returned
	// state is authoritative; an error means the request itself failed
	// and implies nothing about the permission state.
	RequestAccess(ctx context.Context) (AccessState, error)

	// Fetch returns the records matching the filter, in no particular
	// order.
	Fetch(ctx context.Context, f Filter) ([]Reminder, error)

	// Save persists the record. An empty ID means create; the service
	// assigns the ID. A non-empty unknown ID is an error.
	Save(ctx context.Context, r Reminder) error

	// Remove deletes the record. An unknown ID is an error.
	Remove(ctx context.Context, r Reminder) error

	// DefaultList returns the list new records are assigned to.
	DefaultList(ctx context.Context) (ListRef, error)
}

// AccessError reports that the user or the system refused access to
// the backing store.
type AccessError struct {
	State AccessState
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("reminders access %s", e.State)
}

// ServiceError wraps a failure from the backing service.
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }
