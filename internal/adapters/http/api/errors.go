package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/mergington/internal/adapters/repository"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrInternal   = errors.New("internal error")
)

// OpError ties an error to the handler operation that produced it.
// Kind is the sentinel used for status mapping; Err carries the cause.
type OpError struct {
	Op   string
	Kind error
	Err  error
}

func (e *OpError) Error() string {
	switch {
	case e.Kind != nil && e.Err != nil:
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *OpError) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Wrap annotates err with op. Returns nil for a nil err.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Err: err}
}

// WrapKind annotates err with op and classifies it as kind.
func WrapKind(op string, kind, err error) error {
	return &OpError{Op: op, Kind: kind, Err: err}
}

// NewKind creates an error of kind for op with no further cause.
func NewKind(op string, kind error) error {
	return &OpError{Op: op, Kind: kind}
}

// apiError is the HTTP rendering of an error kind.
type apiError struct {
	status int
	code   string
	detail string
}

var errorTable = []struct {
	kind error
	apiError
}{
	{repository.ErrActivityNotFound, apiError{http.StatusNotFound, "not_found", "Activity not found"}},
	{repository.ErrAlreadySignedUp, apiError{http.StatusBadRequest, "already_signed_up", "Student is already signed up"}},
	{repository.ErrNotSignedUp, apiError{http.StatusNotFound, "not_signed_up", "Student is not signed up for this activity"}},
	{repository.ErrActivityFull, apiError{http.StatusBadRequest, "activity_full", "Activity is full"}},
}

// classify maps err to status, code and a caller-facing detail.
func classify(err error) apiError {
	for _, e := range errorTable {
		if errors.Is(err, e.kind) {
			return e.apiError
		}
	}
	if errors.Is(err, ErrBadRequest) {
		detail := http.StatusText(http.StatusBadRequest)
		var opErr *OpError
		if errors.As(err, &opErr) && opErr.Err != nil {
			detail = opErr.Err.Error()
		}
		return apiError{http.StatusBadRequest, "bad_request", detail}
	}
	return apiError{http.StatusInternalServerError, "internal_error", http.StatusText(http.StatusInternalServerError)}
}
