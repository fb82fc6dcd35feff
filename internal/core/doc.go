// Package core provides the row-driven import engine.
//
// This package is the heart of the importer, containing the contract between
// the driver and the entity handlers, independent of any storage or
// spreadsheet library. It can be used by the CLI, tests, or other frontends
// without modification.
//
// # Architecture
//
// The package is organized around several key concepts:
//
//   - Handlers: one per entity kind, each declaring an ordered []FieldSpec
//     and importing a single row at a horizontal shift.
//   - Command table: the explicit map from action names to handler steps,
//     built once at startup.
//   - Driver: runs a handler over every row of a sheet, sequentially.
//   - Batch report: the append-only account of a run.
//
// # Field Extraction
//
// Handlers address cells by name, never by index:
//
//	fields, err := row.Extract(shift, []core.FieldSpec{
//	    {Name: "Name", Required: true},
//	    {Name: "TIN"},
//	})
//	if missing := fields.MissingRequired(); missing != nil {
//	    entries.Errorf("%s", missing)
//	}
//
// # Error Handling
//
// Row-level problems are data. A handler appends Error or Warning entries to
// an [ErrorList] and returns; it never returns a Go error for bad input and
// never panics past its boundary for store failures. Store errors are
// converted to entries with [FormatError], which adds a support code from
// [MapError].
//
// # Outcomes
//
// Every row ends as created, updated, rejected or skipped (blank). A row
// that was created or updated may still carry Warnings, and in documented
// cases an Error raised after the record was committed.
package core
