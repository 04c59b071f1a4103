package geo

import "fmt"

// ErrorKind classifies value errors returned by the converter and complexifier.
type ErrorKind int

const (
	ErrKindInvalidCoordinates ErrorKind = iota + 1
	ErrKindUnsupportedType
	ErrKindInvalidGeometry
	ErrKindDistanceTooSmall
	ErrKindUnsupportedLine
)

// String returns a stable snake_case code for the kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrKindInvalidCoordinates:
		return "invalid_coordinates"
	case ErrKindUnsupportedType:
		return "unsupported_type"
	case ErrKindInvalidGeometry:
		return "invalid_geometry"
	case ErrKindDistanceTooSmall:
		return "distance_too_small"
	case ErrKindUnsupportedLine:
		return "unsupported_line"
	default:
		return "unknown"
	}
}

// Error is a tagged value error. Two errors match under errors.Is when their
// kinds are equal, so the Err* sentinels can be used as kind matchers.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrInvalidCoordinates = &Error{Kind: ErrKindInvalidCoordinates, Message: "invalid coordinates"}
	ErrUnsupportedType    = &Error{Kind: ErrKindUnsupportedType, Message: "unsupported type"}
	ErrInvalidGeometry    = &Error{Kind: ErrKindInvalidGeometry, Message: "invalid geometry"}
	ErrDistanceTooSmall   = &Error{Kind: ErrKindDistanceTooSmall, Message: "distance too small"}
	ErrUnsupportedLine    = &Error{Kind: ErrKindUnsupportedLine, Message: "unsupported line"}
)

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
