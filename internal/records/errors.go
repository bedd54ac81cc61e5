package records

import "fmt"

// ValidationError means the client sent a structurally invalid request.
// It is raised before any store call.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return "validation: " + e.Message }

// FetchKind says why a DatabaseFetchError happened. The HTTP layer uses it to
// choose a status; logs always carry it.
type FetchKind string

const (
	KindNotFound           FetchKind = "not_found"
	KindAttributeNotFound  FetchKind = "attribute_not_found"
	KindPreconditionFailed FetchKind = "precondition_failed"
	KindUnavailable        FetchKind = "unavailable"
)

// DatabaseFetchError covers every failed read or conditional write.
// Message is safe to show to clients; Err is the underlying cause.
type DatabaseFetchError struct {
	Kind    FetchKind
	Message string
	Err     error
}

func (e *DatabaseFetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("database fetch (%s): %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("database fetch (%s): %s", e.Kind, e.Message)
}

func (e *DatabaseFetchError) Unwrap() error { return e.Err }

// DatabaseInsertError is reserved for record creation paths.
type DatabaseInsertError struct {
	Message string
	Err     error
}

func (e *DatabaseInsertError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("database insert: %s: %v", e.Message, e.Err)
	}
	return "database insert: " + e.Message
}

func (e *DatabaseInsertError) Unwrap() error { return e.Err }
