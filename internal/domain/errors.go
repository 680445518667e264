package domain

import "fmt"

// Typed errors returned by services. Handlers map them onto status codes.

// ErrNotFound reports a record that does not exist upstream.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// ErrExternalService wraps a failed call to the records API.
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("upstream %s: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// ErrMissingIdentity indicates the request carried no usable user id, or the
// id could not be resolved into a profile. Dependent fetches are skipped.
type ErrMissingIdentity struct {
	ID     string
	Reason string
}

func (e *ErrMissingIdentity) Error() string {
	if e.ID == "" {
		return "missing user id"
	}
	return fmt.Sprintf("cannot resolve user %s: %s", e.ID, e.Reason)
}

// ErrTimeout reports an upstream call that ran past its deadline.
type ErrTimeout struct {
	Operation string
}

func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("%s: deadline exceeded", e.Operation)
}

// ErrCircuitOpen is returned while the upstream breaker rejects calls.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("%s unavailable: circuit open", e.Service)
}

// ErrValidation reports bad client input on one field.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ErrForbidden indicates the viewer may not act on the record.
type ErrForbidden struct {
	Action string
}

func (e *ErrForbidden) Error() string {
	return fmt.Sprintf("forbidden: %s", e.Action)
}
