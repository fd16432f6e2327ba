package progress

import (
	"errors"
	"fmt"
)

// Kind classifies engine errors.
type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation: missing or malformed habit id, user id or day. Raised before any ledger access.
	KindValidation
	// KindConflict: the ledger rejected a duplicate create.
	KindConflict
	// KindNotFound: the ledger had nothing to delete.
	KindNotFound
	// KindDependencyFailure: the ledger, directory or lock backend failed.
	KindDependencyFailure
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindDependencyFailure:
		return "dependency_failure"
	default:
		return "unknown"
	}
}

// Ledger implementations wrap these so the toggle path can recover from races.
var (
	ErrDuplicate = errors.New("habit completion already exists")
	ErrNotFound  = errors.New("habit completion not found")
)

// Error carries the kind and the operation that failed. The underlying
// error is kept intact for errors.Is / errors.As.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the Kind of err, or KindUnknown if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func validationError(op, msg string) error {
	return &Error{Kind: KindValidation, Op: op, Err: errors.New(msg)}
}

func dependencyError(op string, err error) error {
	return &Error{Kind: KindDependencyFailure, Op: op, Err: err}
}
