// Package railerr defines the structural error taxonomy shared by every
// core package. Kinds are not Go types: they are a closed enumeration
// carried inside one wrapper so callers can type-switch with errors.As
// without each package inventing its own sentinel set.
package railerr

import "fmt"

// Kind is the structural category of a failure, independent of which
// package raised it. See spec §7 for the taxonomy this mirrors.
type Kind int

const (
	// Unknown is never returned deliberately; it is the zero value so an
	// unwrapped *Error always reports a concrete kind.
	Unknown Kind = iota
	InvalidArgument
	UnknownID
	DuplicateID
	ScheduleInvariantViolation
	PlatformBusy
	ResolutionInfeasible
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid_argument"
	case UnknownID:
		return "unknown_id"
	case DuplicateID:
		return "duplicate_id"
	case ScheduleInvariantViolation:
		return "schedule_invariant_violation"
	case PlatformBusy:
		return "platform_busy"
	case ResolutionInfeasible:
		return "resolution_infeasible"
	default:
		return "unknown"
	}
}

// Error is the concrete structural error every core package returns for
// recoverable-but-reportable failures (§7: "structural errors are
// returned as errors, never retried"). Value-level negative results
// (no path, no meet-point) are never represented as *Error — callers get
// an explicit zero value / ok bool / empty slice instead.
type Error struct {
	Kind Kind
	Op   string // the operation that failed, e.g. "railway.AddEdge"
	Err  error  // optional wrapped cause
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error with no wrapped cause.
func New(kind Kind, op string) *Error {
	return &Error{Kind: kind, Op: op}
}

// Wrap builds an *Error wrapping a lower-level cause.
func Wrap(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if as(err, &e) {
		return e.Kind == kind
	}
	return false
}

// as is a tiny local errors.As to avoid importing "errors" twice for one
// helper; kept here so Is reads as a one-liner at call sites.
func as(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
