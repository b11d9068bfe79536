package combo

import (
	"errors"
	"fmt"
)

// ErrParse is matched by every *ParseError through errors.Is.
var ErrParse = errors.New("parse failed")

// ParseError reports a failed parse to callers that prefer Go errors over
// inspecting State.IsError.
type ParseError struct {
	// Index is the cursor of the failing state.
	Index int
	// Payload is the failure payload, usually a descriptive string.
	Payload any
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if err, ok := e.Payload.(error); ok {
		return err.Error()
	}
	return fmt.Sprint(e.Payload)
}

// Is makes errors.Is(err, ErrParse) hold.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// Unwrap exposes an error payload.
func (e *ParseError) Unwrap() error {
	if err, ok := e.Payload.(error); ok {
		return err
	}
	return nil
}

// ConfigError signals a defect in a grammar definition: a missing parser, a
// bad repetition count, a nil value yielded from a contextual procedure.
// Constructors panic with a *ConfigError, the same way regexp.MustCompile
// panics on a bad pattern; it is never returned as a parse outcome.
type ConfigError struct {
	// Op names the constructor that rejected its arguments.
	Op string
	// Message describes the misuse.
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func configPanic(op, format string, args ...any) {
	panic(&ConfigError{Op: op, Message: fmt.Sprintf(format, args...)})
}

func mustParser[S Source](op string, p *Parser[S]) {
	if p == nil {
		configPanic(op, "parser must be a valid parser")
	}
}

func mustParsers[S Source](op string, ps []*Parser[S]) {
	if len(ps) == 0 {
		configPanic(op, "you must provide at least one parser")
	}
	for _, p := range ps {
		mustParser(op, p)
	}
}
