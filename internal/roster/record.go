// Package roster implements the student roster's cache-aside coordination:
// records are written to an authoritative durable store and the full
// collection is served from a volatile cache whenever a fresh copy exists.
package roster

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Record is a single student enrolment, keyed by StudentID.
type Record struct {
	StudentID  string `json:"student_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	ModuleCode string `json:"module_code"`
}

// maxFieldLen matches the VARCHAR width of the students table.
const maxFieldLen = 255

// ValidationError reports a malformed or missing Record field.
type ValidationError struct {
	Field  string
	Reason string
	Err    error // underlying decode error, if any
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IsValidationError reports whether err is, or wraps, a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// fields lists the record's wire names in declaration order together with
// accessors, so decoding and validation walk them the same way.
var fields = []struct {
	name string
	ptr  func(*Record) *string
}{
	{"student_id", func(r *Record) *string { return &r.StudentID }},
	{"first_name", func(r *Record) *string { return &r.FirstName }},
	{"last_name", func(r *Record) *string { return &r.LastName }},
	{"module_code", func(r *Record) *string { return &r.ModuleCode }},
}

// Validate checks that every field is present and within bounds. Values are
// trimmed in place.
func (r *Record) Validate() error {
	for _, f := range fields {
		p := f.ptr(r)
		*p = strings.TrimSpace(*p)
		switch {
		case *p == "":
			return &ValidationError{Field: f.name, Reason: "is required"}
		case utf8.RuneCountInString(*p) > maxFieldLen:
			return &ValidationError{Field: f.name, Reason: fmt.Sprintf("exceeds %d characters", maxFieldLen)}
		}
	}
	return nil
}

// DecodeRecord reads a JSON object and returns the validated Record. Each of
// the four fields must be present and be a JSON string; unknown fields are
// ignored.
func DecodeRecord(r io.Reader) (Record, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return Record{}, &ValidationError{Field: "body", Reason: "must be a JSON object", Err: err}
	}
	if raw == nil {
		return Record{}, &ValidationError{Field: "body", Reason: "must be a JSON object"}
	}

	var rec Record
	for _, f := range fields {
		v, ok := raw[f.name]
		if !ok {
			return Record{}, &ValidationError{Field: f.name, Reason: "is required"}
		}
		if bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			return Record{}, &ValidationError{Field: f.name, Reason: "must be a string"}
		}
		if err := json.Unmarshal(v, f.ptr(&rec)); err != nil {
			return Record{}, &ValidationError{Field: f.name, Reason: "must be a string"}
		}
	}
	if err := rec.Validate(); err != nil {
		return Record{}, err
	}
	return rec, nil
}
