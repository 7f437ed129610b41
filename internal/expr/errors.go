package expr

import (
	"errors"
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// ErrorType categorizes expression errors.
type ErrorType int

const (
	// ErrorSyntax covers malformed input and unknown names.
	ErrorSyntax ErrorType = iota
	// ErrorTypeMismatch indicates a value of the wrong kind.
	ErrorTypeMismatch
	// ErrorArity indicates a call with the wrong number of arguments.
	ErrorArity
	// ErrorRange indicates a constant that no number can hold, such as an
	// overflowing literal or a division by a constant zero.
	ErrorRange
)

var errorTypeNames = map[ErrorType]string{
	ErrorSyntax:       "SyntaxError",
	ErrorTypeMismatch: "TypeMismatch",
	ErrorArity:        "ArityError",
	ErrorRange:        "RangeError",
}

// String returns the string representation of ErrorType.
func (et ErrorType) String() string {
	if name, ok := errorTypeNames[et]; ok {
		return name
	}
	return fmt.Sprintf("UnknownError(%d)", et)
}

// Position is a location in the expression text. Offset is in bytes.
type Position struct {
	Offset int
	Line   int
	Column int
}

// String returns a human-readable position string.
func (p Position) String() string {
	return fmt.Sprintf("offset %d", p.Offset)
}

func positionOf(p lexer.Position) Position {
	return Position{Offset: p.Offset, Line: p.Line, Column: p.Column}
}

// Error is the first problem found in an expression.
type Error struct {
	Position Position
	Message  string
	Type     ErrorType
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s at %s: %s", e.Type, e.Position, e.Message)
}

// Offset returns the byte offset of the error in the parsed text.
func (e *Error) Offset() int { return e.Position.Offset }

func newError(typ ErrorType, pos lexer.Position, format string, args ...any) *Error {
	return &Error{
		Position: positionOf(pos),
		Message:  fmt.Sprintf(format, args...),
		Type:     typ,
	}
}

// fromParticiple converts a grammar or lexer failure into a syntax error.
func fromParticiple(err error) *Error {
	var perr participle.Error
	if errors.As(err, &perr) {
		return &Error{
			Position: positionOf(perr.Position()),
			Message:  perr.Message(),
			Type:     ErrorSyntax,
		}
	}
	return &Error{Message: err.Error(), Type: ErrorSyntax}
}
