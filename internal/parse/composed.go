package parse

import (
	"errors"
	"fmt"
)

// Splitter cuts request text into one substring per field. It returns false
// when the text does not fit the grammar at all.
type Splitter func(text string) ([]string, bool)

// FieldParser builds a fresh sub-parser for one field.
type FieldParser func() SubParser

// Reducer combines the converted fields, in order, into the final value.
type Reducer[T any] func(values []any) (T, error)

// Composed is a Converter for multi-field requests.
type Composed[T any] struct {
	fields []FieldParser
	split  Splitter
	reduce Reducer[T]
	usage  string
}

// NewComposed returns a composed converter over fields. usage is the message
// shown when the text cannot be split into fields.
func NewComposed[T any](fields []FieldParser, split Splitter, reduce Reducer[T], usage string) *Composed[T] {
	return &Composed[T]{fields: fields, split: split, reduce: reduce, usage: usage}
}

// Identity is the Reducer that returns the field values unchanged.
func Identity(values []any) ([]any, error) { return values, nil }

// Convert splits text and parses each field, stopping at the first failure.
func (c *Composed[T]) Convert(text string) (T, error) {
	var zero T

	parts, ok := c.split(text)
	if !ok {
		return zero, &ConversionError{Kind: KindSplit, Field: -1, Text: text}
	}
	if len(parts) != len(c.fields) {
		return zero, &ConversionError{
			Kind:    KindFieldCount,
			Field:   -1,
			Text:    text,
			Message: fmt.Sprintf("cannot parse %d fields with %d parsers", len(parts), len(c.fields)),
		}
	}

	values := make([]any, len(parts))
	for i, part := range parts {
		sub := c.fields[i]()
		ok, err := sub.Parse(part)
		if err != nil {
			return zero, err
		}
		if !ok {
			return zero, &ConversionError{
				Kind:    KindField,
				Field:   i,
				Text:    part,
				Message: sub.Message(),
				Err:     sub.Failure(),
			}
		}
		values[i] = sub.result()
	}

	v, err := c.reduce(values)
	if err != nil {
		var ce *ConversionError
		if errors.As(err, &ce) {
			if ce.Kind == 0 {
				ce.Kind = KindReduce
			}
			if ce.Text == "" {
				ce.Text = text
			}
			return zero, ce
		}
		return zero, err
	}
	return v, nil
}

// RenderError passes through the message of a failed field and falls back to
// the usage hint for grammar failures.
func (c *Composed[T]) RenderError(failure *ConversionError, _ string) string {
	switch failure.Kind {
	case KindField, KindReduce:
		if failure.Message != "" {
			return failure.Message
		}
	}
	return c.usage
}

// field extracts the typed value of field i.
func field[V any](values []any, i int) (V, error) {
	v, ok := values[i].(V)
	if !ok {
		var zero V
		return zero, fmt.Errorf("field %d is %T, want %T", i, values[i], zero)
	}
	return v, nil
}
