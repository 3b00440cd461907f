package domain

import (
	"errors"
	"fmt"
)

// ValidationError reports a field that violates its declared value domain.
type ValidationError struct {
	Path       string
	Constraint string
	Value      any
}

func (e *ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("%s: %s (got %v)", e.Path, e.Constraint, e.Value)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Constraint)
}

// Invalid builds a ValidationError.
func Invalid(path, constraint string, value any) *ValidationError {
	return &ValidationError{Path: path, Constraint: constraint, Value: value}
}

// TypeMismatchError reports a binding whose value cannot be classified for the
// target attribute.
type TypeMismatchError struct {
	Path     string
	Expected string
	Got      string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Path, e.Expected, e.Got)
}

// NotFoundError is returned when a patch addresses an identity that is not in
// the collection.
type NotFoundError struct {
	Kind Kind
	ID   ID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// WithPathPrefix prepends prefix to the path of validation and type errors,
// leaving other errors untouched.
func WithPathPrefix(err error, prefix string) error {
	if err == nil || prefix == "" {
		return err
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		copied := *verr
		copied.Path = joinPath(prefix, verr.Path)
		return &copied
	}
	var terr *TypeMismatchError
	if errors.As(err, &terr) {
		copied := *terr
		copied.Path = joinPath(prefix, terr.Path)
		return &copied
	}
	return err
}

func joinPath(prefix, path string) string {
	switch {
	case path == "":
		return prefix
	case path[0] == '[':
		return prefix + path
	default:
		return prefix + "." + path
	}
}
