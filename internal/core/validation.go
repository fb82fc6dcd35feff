package core

// validation.go turns a positional row slice into named fields.
//
// Handlers declare an ordered []FieldSpec. Extract applies the horizontal
// shift once, cleans every cell, and hands back a Fields view addressed by
// name. Required-field checks happen here so every handler reports a missing
// mandatory value the same way.

import (
	"fmt"
	"strings"

	"github.com/go-faster/errors"
)

// ErrRowTooShort means the row has fewer cells than shift+len(specs).
// It signals a layout misconfiguration, not bad row data.
var ErrRowTooShort = errors.New("row too short")

// ValidationError describes one field that failed a check.
type ValidationError struct {
	Field   string // Field name
	Value   string // The offending value
	Message string // Human-readable error message
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Fields holds the cleaned values of one handler's slice of a row.
type Fields struct {
	specs  []FieldSpec
	values map[string]string
}

// Extract reads specs from row starting at shift.
func (r Row) Extract(shift int, specs []FieldSpec) (Fields, error) {
	if shift < 0 || len(r) < shift+len(specs) {
		return Fields{}, errors.Wrapf(ErrRowTooShort, "need %d cells from offset %d, have %d", len(specs), shift, len(r))
	}
	f := Fields{specs: specs, values: make(map[string]string, len(specs))}
	for i, spec := range specs {
		f.values[spec.Name] = CleanCell(r[shift+i])
	}
	return f, nil
}

// Pad returns r extended with empty cells to at least n cells.
// Spreadsheet readers drop trailing empty cells; padding restores them.
func (r Row) Pad(n int) Row {
	if len(r) >= n {
		return r
	}
	out := make(Row, n)
	copy(out, r)
	return out
}

// Get returns the cleaned value of the named field.
// Asking for an undeclared field panics; it is a programming error.
func (f Fields) Get(name string) string {
	v, ok := f.values[name]
	if !ok {
		panic(fmt.Sprintf("core: field %q is not declared", name))
	}
	return v
}

// Has reports whether the named field is non-empty.
func (f Fields) Has(name string) bool {
	return f.Get(name) != ""
}

// MissingRequired returns a ValidationError for the first required field
// that is empty, in declaration order.
func (f Fields) MissingRequired() *ValidationError {
	for _, spec := range f.specs {
		if spec.Required && f.values[spec.Name] == "" {
			return &ValidationError{Field: spec.Name, Message: "required field is empty"}
		}
	}
	return nil
}

// CleanCell removes common spreadsheet artifacts from a cell value:
// - Trims whitespace, including non-breaking spaces
// - Removes a text formula wrapper (="...")
func CleanCell(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\u00a0", " "))

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		s = strings.TrimSpace(s[2 : len(s)-1])
	}

	return s
}

// isEmptyRow reports whether every cell is blank.
func isEmptyRow(row []string) bool {
	for _, v := range row {
		if CleanCell(v) != "" {
			return false
		}
	}
	return true
}
