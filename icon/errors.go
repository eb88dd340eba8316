package icon

import "fmt"

// ParseErrorKind tells apart paths of the wrong shape from paths whose
// dimensions cannot be represented.
type ParseErrorKind uint8

const (
	NoMatch ParseErrorKind = iota
	Malformed
)

// String implements fmt.Stringer.
func (k ParseErrorKind) String() string {
	switch k {
	case NoMatch:
		return "no match"
	case Malformed:
		return "malformed"
	default:
		return "unknown parse error kind"
	}
}

type ParseError struct {
	Kind ParseErrorKind
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Kind == Malformed {
		return fmt.Sprintf("malformed path: %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("unmatched path: %s", e.Path)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError is returned by Validate. The three possible values are
// exported so callers can match them with errors.Is.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

var (
	ErrInvalidWidth  = &ValidationError{msg: "invalid width"}
	ErrInvalidHeight = &ValidationError{msg: "invalid height"}
	// ErrInvalidAspect rejects non-square icons.
	ErrInvalidAspect = &ValidationError{msg: "invalid size"}
)
