package core

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
)

// Row is one spreadsheet line's cell values. Handlers never modify it.
type Row []string

// FieldType represents the expected kind of a field's value.
type FieldType int

const (
	FieldText FieldType = iota
	FieldDate
	FieldBool
	FieldNumeric
	FieldReference
	FieldFile
)

func (t FieldType) String() string {
	switch t {
	case FieldDate:
		return "date"
	case FieldBool:
		return "bool"
	case FieldNumeric:
		return "numeric"
	case FieldReference:
		return "reference"
	case FieldFile:
		return "file"
	default:
		return "text"
	}
}

// FieldSpec declares one positional field of a handler.
type FieldSpec struct {
	Name     string    // Field name used in messages and lookups
	Type     FieldType // Expected value kind
	Required bool      // Empty value rejects the row
}

// DuplicatePolicy controls duplicate detection.
type DuplicatePolicy string

const (
	// DuplicatesReject runs duplicate detection before creating records.
	DuplicatesReject DuplicatePolicy = "reject"

	// DuplicatesIgnore skips duplicate detection entirely.
	DuplicatesIgnore DuplicatePolicy = "ignore"
)

// ParseDuplicatePolicy maps a command-line value to a policy.
// Only the ignore sentinel disables detection; every other value rejects.
func ParseDuplicatePolicy(s string) DuplicatePolicy {
	if strings.EqualFold(strings.TrimSpace(s), string(DuplicatesIgnore)) {
		return DuplicatesIgnore
	}
	return DuplicatesReject
}

// ExtraDocRegisterID is the extra parameter naming the registration journal.
const ExtraDocRegisterID = "doc_register_id"

// ImportOptions apply to every row of a run.
type ImportOptions struct {
	SupplementExisting bool
	Duplicates         DuplicatePolicy
	Extra              map[string]string
}

// DetectDuplicates reports whether duplicate detection should run.
func (o ImportOptions) DetectDuplicates() bool {
	return o.Duplicates != DuplicatesIgnore
}

// ErrInvalidRegisterID is returned by RegisterID for non-integer values.
var ErrInvalidRegisterID = errors.New("invalid document register id")

// RegisterID returns the registration journal id when one was given.
func (o ImportOptions) RegisterID() (int64, bool, error) {
	raw, ok := o.Extra[ExtraDocRegisterID]
	if !ok {
		return 0, false, nil
	}
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, true, errors.Wrapf(ErrInvalidRegisterID, "%q", raw)
	}
	return id, true, nil
}

// WithSupplement returns a copy of o with supplement mode forced on.
func (o ImportOptions) WithSupplement() ImportOptions {
	o.SupplementExisting = true
	return o
}

// Outcome is what happened to one row.
type Outcome string

const (
	OutcomeCreated  Outcome = "created"
	OutcomeUpdated  Outcome = "updated"
	OutcomeRejected Outcome = "rejected"
	OutcomeSkipped  Outcome = "skipped"
)

// Result is a handler's account of one row.
type Result struct {
	Outcome Outcome
	Entries ErrorList
}

// Handler imports one entity kind from a row.
// Handlers hold no per-row state; Import may be called for any number of
// rows in sequence.
type Handler interface {
	// Name is the entity name used in logs and reports.
	Name() string

	// Fields declares the consumed cells in column order.
	Fields() []FieldSpec

	// Import processes row starting at cell shift. Row-level failures are
	// reported through the returned entries, never as errors.
	Import(ctx context.Context, row Row, shift int, opts ImportOptions) Result
}

// FieldCount returns the number of consecutive cells h consumes.
func FieldCount(h Handler) int {
	return len(h.Fields())
}

// ProgressFunc is called after every row with the rows done so far.
type ProgressFunc func(done, total int)
