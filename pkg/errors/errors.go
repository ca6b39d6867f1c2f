package errors

import (
	"fmt"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
)

// NotFoundError is returned when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func NewNotFoundError(resource string, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func IsNotFoundError(err error) bool {
	_, ok := err.(*NotFoundError)
	return ok
}

// ValidationError is returned when a request fails input validation
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}

func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

func (e *ValidationError) AddField(name string, reason string) *ValidationError {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	e.Fields[name] = reason
	return e
}

func IsValidationError(err error) bool {
	_, ok := err.(*ValidationError)
	return ok
}

// ConflictError is returned when a mutation collides with existing state
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "conflict"
}

func IsConflictError(err error) bool {
	_, ok := err.(*ConflictError)
	return ok
}

// StoreError wraps failures from a backing store or upstream service
type StoreError struct {
	Store   string
	Op      string
	Wrapped error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Store, e.Op, e.Wrapped)
}

func (e *StoreError) Unwrap() error {
	return e.Wrapped
}

func NewStoreError(store string, op string, err error) *StoreError {
	return &StoreError{Store: store, Op: op, Wrapped: err}
}

func IsStoreError(err error) bool {
	_, ok := err.(*StoreError)
	return ok
}

// ToHTTPError maps domain errors onto the response error type used by the api middleware
func ToHTTPError(err error) *httperror.HTTPError {
	if err == nil {
		return nil
	}

	if httperror.IsHTTPError(err) {
		return httperror.ToHTTPError(err)
	}

	switch e := err.(type) {
	case *NotFoundError:
		return httperror.NewHTTPError(http.StatusNotFound, e.Error()).AddMetaValue("resource", e.Resource).AddMetaValue("id", e.ID)
	case *ValidationError:
		herr := httperror.NewHTTPError(http.StatusBadRequest, e.Error())
		for name, reason := range e.Fields {
			herr = herr.AddMetaValue(name, reason)
		}
		return herr
	case *ConflictError:
		return httperror.NewHTTPError(http.StatusConflict, e.Error())
	case *StoreError:
		return httperror.NewHTTPError(http.StatusInternalServerError, e.Error()).AddMetaValue("store", e.Store).AddMetaValue("op", e.Op)
	default:
		return httperror.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
