// Package validation implements the declarative field and schema engine
// behind the API request surface. A Field is a two-stage pipeline: a
// type-coercion stage that settles the representation and a list of content
// checks that run on the coerced value. Schemas compose Fields in
// declaration order and bind raw JSON mappings into structured results.
package validation

import (
	"reflect"
)

// ErrorKind classifies how a field failed validation.
type ErrorKind string

const (
	KindMissing        ErrorKind = "missing"
	KindEmpty          ErrorKind = "empty"
	KindTypeMismatch   ErrorKind = "type_mismatch"
	KindContentInvalid ErrorKind = "content_invalid"
)

// FieldError is a single field validation failure.
type FieldError struct {
	Kind    ErrorKind
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}

func missingError() *FieldError {
	return &FieldError{Kind: KindMissing, Message: "field is required"}
}

func emptyError() *FieldError {
	return &FieldError{Kind: KindEmpty, Message: "field must not be empty"}
}

func typeError(msg string) *FieldError {
	return &FieldError{Kind: KindTypeMismatch, Message: msg}
}

func contentError(msg string) *FieldError {
	return &FieldError{Kind: KindContentInvalid, Message: msg}
}

// CoerceFunc settles the representation of a raw value, or fails with a
// type-mismatch error. It never sees nil.
type CoerceFunc func(value interface{}) (interface{}, *FieldError)

// CheckFunc validates the content of a coerced, non-empty value.
type CheckFunc func(value interface{}) *FieldError

// Field describes one field's contract: presence policy plus the
// coerce/check pipeline.
type Field struct {
	required bool
	nullable bool
	coerce   CoerceFunc
	checks   []CheckFunc
}

// Option configures a Field at construction time.
type Option func(*Field)

// Required marks the field as mandatory: an absent value fails the bind.
func Required(f *Field) { f.required = true }

// Nullable allows the field to carry one of the empty representations even
// when present (or required).
func Nullable(f *Field) { f.nullable = true }

func newField(coerce CoerceFunc, checks []CheckFunc, opts ...Option) *Field {
	f := &Field{coerce: coerce, checks: checks}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Clean runs the full pipeline: presence and nullability, then coercion,
// then content checks. Empty values short-circuit as valid once the
// presence policy admits them; cleaning an already-canonical value yields
// the same value.
func (f *Field) Clean(raw interface{}) (interface{}, *FieldError) {
	if raw == nil && f.required {
		return nil, missingError()
	}
	if isEmpty(raw) {
		if !f.nullable {
			return nil, emptyError()
		}
		return raw, nil
	}

	value, ferr := f.coerce(raw)
	if ferr != nil {
		return nil, ferr
	}
	if isEmpty(value) {
		return value, nil
	}

	for _, check := range f.checks {
		if ferr := check(value); ferr != nil {
			return nil, ferr
		}
	}
	return value, nil
}

// isEmpty reports whether a value is one of the defined empty
// representations: absent, empty string, empty list, or empty mapping.
// Zero numbers are values, not emptiness.
func isEmpty(v interface{}) bool {
	if v == nil {
		return true
	}
	switch t := v.(type) {
	case string:
		return t == ""
	case []interface{}:
		return len(t) == 0
	case map[string]interface{}:
		return len(t) == 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	}
	return false
}
