// Package errs defines the typed failures raised by content-type pipelines.
// Every type unwraps to one of the sentinels in internal/pkg/errors so
// callers can classify with errors.Is and inspect details with errors.As.
package errs

import (
	"fmt"
	"strings"

	"github.com/yungbote/kgcontent-backend/internal/domain/graph"
	pkgerrors "github.com/yungbote/kgcontent-backend/internal/pkg/errors"
)

// NotFoundError names a referenced entity that does not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

func NotFound(kind string, id any) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: fmt.Sprint(id)}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return pkgerrors.ErrNotFound }

// ConflictError reports a uniqueness or state conflict.
type ConflictError struct {
	Reason string
	ID     string
}

func Conflict(reason, id string) *ConflictError {
	return &ConflictError{Reason: reason, ID: id}
}

func (e *ConflictError) Error() string {
	if e.ID == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %q", e.Reason, e.ID)
}

func (e *ConflictError) Unwrap() error { return pkgerrors.ErrConflict }

// UnresolvableReferenceError is raised when content references an id that is
// neither a declared temp id nor a persisted thing.
type UnresolvableReferenceError struct {
	ID string
}

func (e *UnresolvableReferenceError) Error() string {
	return fmt.Sprintf("reference %q is neither a declared temp id nor an existing thing", e.ID)
}

func (e *UnresolvableReferenceError) Unwrap() error { return pkgerrors.ErrNotFound }

// TemplateClosedError rejects structural changes to a closed template.
type TemplateClosedError struct {
	TemplateID graph.ThingID
}

func (e *TemplateClosedError) Error() string {
	return fmt.Sprintf("template %q is closed", e.TemplateID)
}

func (e *TemplateClosedError) Unwrap() error { return pkgerrors.ErrConflict }

type InvalidTempIDError struct {
	ID string
}

func (e *InvalidTempIDError) Error() string {
	return fmt.Sprintf("invalid temp id %q", e.ID)
}

func (e *InvalidTempIDError) Unwrap() error { return pkgerrors.ErrInvalidArgument }

type DuplicateTempIDError struct {
	ID string
}

func (e *DuplicateTempIDError) Error() string {
	return fmt.Sprintf("temp id %q declared more than once", e.ID)
}

func (e *DuplicateTempIDError) Unwrap() error { return pkgerrors.ErrConflict }

// InvalidLabelError carries the graph-level reason in Cause.
type InvalidLabelError struct {
	Label string
	Cause error
}

func (e *InvalidLabelError) Error() string {
	return fmt.Sprintf("invalid label %q: %v", truncate(e.Label), e.Cause)
}

func (e *InvalidLabelError) Unwrap() []error {
	return []error{pkgerrors.ErrInvalidArgument, e.Cause}
}

type InvalidLiteralError struct {
	Value    string
	Datatype string
	Cause    error
}

func (e *InvalidLiteralError) Error() string {
	return fmt.Sprintf("invalid literal %q of type %q: %v", truncate(e.Value), e.Datatype, e.Cause)
}

func (e *InvalidLiteralError) Unwrap() []error {
	return []error{pkgerrors.ErrInvalidArgument, e.Cause}
}

// InvalidSubjectError rejects statements whose subject cannot carry
// outgoing statements, such as literals.
type InvalidSubjectError struct {
	ID string
}

func (e *InvalidSubjectError) Error() string {
	return fmt.Sprintf("%q cannot be used as a statement subject", e.ID)
}

func (e *InvalidSubjectError) Unwrap() error { return pkgerrors.ErrInvalidArgument }

// InvalidIdentifierError rejects a malformed external identifier (DOI, ISBN, ...).
type InvalidIdentifierError struct {
	Name  string
	Value string
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("invalid %s identifier %q", e.Name, e.Value)
}

func (e *InvalidIdentifierError) Unwrap() error { return pkgerrors.ErrInvalidArgument }

// Invalid tags a free-form input error.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", pkgerrors.ErrInvalidArgument, strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func truncate(s string) string {
	if len(s) <= 64 {
		return s
	}
	return s[:64] + "..."
}
