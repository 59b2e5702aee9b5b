// Package parse turns loosely structured chat text into typed requests.
//
// Every request field is handled by a Parser wrapping a Converter. Parsers
// for multi-field requests are built with Composed, which splits the text,
// runs one sub-parser per field and stops at the first field that fails.
package parse

import (
	"errors"
	"fmt"
)

// ErrInvalidState is returned by Parser.Result when the last parse did not
// succeed.
var ErrInvalidState = errors.New("parse: no successful result")

// Kind classifies a recognized conversion failure.
type Kind int

const (
	// KindField is a field whose value could not be converted.
	KindField Kind = iota + 1
	// KindSplit is text that does not fit the request grammar.
	KindSplit
	// KindFieldCount is a split that produced the wrong number of fields.
	KindFieldCount
	// KindReduce is a set of valid fields that cannot be combined.
	KindReduce
)

func (k Kind) String() string {
	switch k {
	case KindField:
		return "field"
	case KindSplit:
		return "split"
	case KindFieldCount:
		return "field count"
	case KindReduce:
		return "reduce"
	default:
		return "unknown"
	}
}

// ConversionError is an expected failure caused by the user's input. A
// simple parser reports its only field as index 0.
type ConversionError struct {
	Kind    Kind
	Field   int
	Text    string
	Message string
	Err     error
}

func (e *ConversionError) Error() string {
	switch e.Kind {
	case KindField:
		if e.Message != "" {
			return fmt.Sprintf("field %d %q: %s", e.Field, e.Text, e.Message)
		}
		return fmt.Sprintf("field %d %q not recognized", e.Field, e.Text)
	case KindSplit:
		return fmt.Sprintf("%q does not match the request grammar", e.Text)
	default:
		if e.Message != "" {
			return fmt.Sprintf("%s: %s", e.Kind, e.Message)
		}
		return fmt.Sprintf("%s failure on %q", e.Kind, e.Text)
	}
}

func (e *ConversionError) Unwrap() error { return e.Err }

// FrameworkError wraps an error returned by a converter that is not a
// ConversionError. It signals a bug, not bad input.
type FrameworkError struct {
	Parser string
	Text   string
	Err    error
}

func (e *FrameworkError) Error() string {
	return fmt.Sprintf("parser %s on %q: %v", e.Parser, e.Text, e.Err)
}

func (e *FrameworkError) Unwrap() error { return e.Err }

// Converter converts text into a value and renders the message shown to
// the user when the conversion fails.
type Converter[T any] interface {
	Convert(text string) (T, error)
	RenderError(failure *ConversionError, text string) string
}

// Parser runs a Converter and keeps the outcome of the most recent parse.
// A Parser is not safe for concurrent use; build one per request.
type Parser[T any] struct {
	name    string
	conv    Converter[T]
	ok      bool
	value   T
	failure *ConversionError
	message string
}

// New returns a parser named name, used in framework error messages.
func New[T any](name string, conv Converter[T]) *Parser[T] {
	return &Parser[T]{name: name, conv: conv}
}

// Parse converts text. It reports whether the conversion succeeded; the
// error is non-nil only for framework failures.
func (p *Parser[T]) Parse(text string) (bool, error) {
	var zero T
	p.ok, p.value, p.failure, p.message = false, zero, nil, ""

	v, err := p.conv.Convert(text)
	if err != nil {
		var fe *FrameworkError
		if errors.As(err, &fe) {
			return false, err
		}
		var ce *ConversionError
		if !errors.As(err, &ce) {
			return false, &FrameworkError{Parser: p.name, Text: text, Err: err}
		}
		p.failure = ce
		p.message = p.conv.RenderError(ce, text)
		return false, nil
	}

	p.ok, p.value = true, v
	return true, nil
}

// OK reports whether the most recent parse succeeded.
func (p *Parser[T]) OK() bool { return p.ok }

// Result returns the converted value, or ErrInvalidState if the most recent
// parse failed or none has run.
func (p *Parser[T]) Result() (T, error) {
	if !p.ok {
		var zero T
		return zero, ErrInvalidState
	}
	return p.value, nil
}

// Message is the user-facing message of the most recent failure.
func (p *Parser[T]) Message() string { return p.message }

// Failure is the recognized failure of the most recent parse, if any.
func (p *Parser[T]) Failure() *ConversionError { return p.failure }

func (p *Parser[T]) result() any { return p.value }

// SubParser is the type-erased view of a Parser used by Composed.
type SubParser interface {
	Parse(text string) (bool, error)
	Message() string
	Failure() *ConversionError
	result() any
}
