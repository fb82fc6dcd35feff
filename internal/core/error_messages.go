// Package core provides the row-driven import engine.
//
// # Error Codes Reference
//
// This file maps technical errors to short user-facing messages with codes
// for support reference. Row entries produced from store failures carry the
// code so a user can quote it.
//
// # Store Errors (DB001-DB099)
//
//	DB001 - Duplicate key: A record with this key already exists
//	        Patterns: "duplicate key"
//
//	DB002 - Unique constraint: This value must be unique but already exists
//	        Patterns: "unique constraint", "violates unique"
//
//	DB003 - Foreign key: Referenced record does not exist
//	        Patterns: "foreign key constraint", "violates foreign key"
//
//	DB004 - Connection refused: Unable to connect to the record store
//	        Patterns: "connection refused"
//
//	DB005 - Connection reset: Store connection was interrupted
//	        Patterns: "connection reset"
//
//	DB006 - Timeout: Operation timed out
//	        Patterns: "timeout"
//
//	DB007 - Deadlock: Store was busy with conflicting operations
//	        Patterns: "deadlock"
//
//	DB008 - Not found: The record no longer exists
//	        Patterns: "record not found"
//
//	DB009 - Session closed: The store session was already closed
//	        Patterns: "session closed"
//
//	DB010 - Schema missing: The store tables have not been created
//	        Patterns: "42p01", "relation" with "does not exist"
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - Unknown action: The requested action does not exist
//	IMP002 - Layout error: The row is narrower than the configured layout
//	IMP003 - Bad register id: The document register id is not an integer
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File not found: Input or body file does not exist
//	FILE002 - Sheet not found: The workbook has no sheet with that name
//	          Patterns: "sheet" with "does not exist"
//	FILE003 - Not a workbook: The file is not a valid xlsx workbook
//	FILE004 - File too large: Body file exceeds the configured size
//
// # Run Errors (RUN001-RUN099)
//
//	RUN001 - Cancelled: The run was interrupted
//	RUN002 - Deadline: The run exceeded its time limit
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches. Check the logs for the
// original error.
//
// # Pattern Matching
//
// Patterns are matched case-insensitively using strings.Contains. A pattern
// with a second term matches only when both are present. The first matching
// pattern wins, so more specific patterns come first.
package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	also    string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so order matters.
var errorPatterns = []errorPattern{
	// Store constraint errors
	{"duplicate key", "", UserMessage{"A record with this key already exists", "Run with supplement mode to update existing records", "DB001"}},
	{"unique constraint", "", UserMessage{"This value must be unique but already exists", "Check the sheet for repeated rows", "DB002"}},
	{"violates unique", "", UserMessage{"A duplicate value was found", "Check the sheet for repeated rows", "DB002"}},
	{"foreign key constraint", "", UserMessage{"Referenced record does not exist", "Import the referenced records first", "DB003"}},
	{"violates foreign key", "", UserMessage{"Referenced record does not exist", "Import the referenced records first", "DB003"}},

	// Store connection errors
	{"connection refused", "", UserMessage{"Unable to connect to the record store", "Check DATABASE_URL and try again", "DB004"}},
	{"connection reset", "", UserMessage{"Store connection was interrupted", "Please try again", "DB005"}},
	{"deadline exceeded", "", UserMessage{"The run exceeded its time limit", "Split the file or raise the timeout", "RUN002"}},
	{"timeout", "", UserMessage{"Operation timed out", "Please try again later", "DB006"}},
	{"deadlock", "", UserMessage{"Store was busy with conflicting operations", "Please try again", "DB007"}},
	{"record not found", "", UserMessage{"The record no longer exists", "Re-run the import for this row", "DB008"}},
	{"session closed", "", UserMessage{"The store session was already closed", "Report this to support", "DB009"}},
	{"42p01", "", UserMessage{"The store tables have not been created", "Run importdata migrate", "DB010"}},
	{"relation", "does not exist", UserMessage{"The store tables have not been created", "Run importdata migrate", "DB010"}},

	// Import errors
	{"unknown action", "", UserMessage{"The requested action does not exist", "Run the actions command to list valid actions", "IMP001"}},
	{"row too short", "", UserMessage{"The row is narrower than the configured layout", "Check the sheet shift in the layout file", "IMP002"}},
	{"invalid document register id", "", UserMessage{"The document register id is not an integer", "Pass a numeric --doc-register-id", "IMP003"}},

	// File errors
	{"no such file", "", UserMessage{"File does not exist", "Check the path", "FILE001"}},
	{"sheet", "does not exist", UserMessage{"The workbook has no sheet with that name", "Check sheet names in the layout file", "FILE002"}},
	{"not a valid zip", "", UserMessage{"The file is not a valid xlsx workbook", "Save the file as .xlsx", "FILE003"}},
	{"unsupported workbook", "", UserMessage{"The file is not a valid xlsx workbook", "Save the file as .xlsx", "FILE003"}},
	{"file too large", "", UserMessage{"File exceeds the configured size limit", "Raise BODY_MAX_SIZE or shrink the file", "FILE004"}},

	// Run errors
	{"context canceled", "", UserMessage{"The run was interrupted", "Start the import again when ready", "RUN001"}},
}

// defaultMessage is returned when no pattern matches.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Returns an empty UserMessage for nil errors.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, p := range errorPatterns {
		if strings.Contains(errStr, p.pattern) && strings.Contains(errStr, p.also) {
			return p.msg
		}
	}

	return defaultMessage
}

// FormatError returns the error message with its code suffix, used for row
// entries built from store failures.
func FormatError(err error) string {
	if err == nil {
		return ""
	}
	msg := MapError(err)
	return fmt.Sprintf("%s (%s): %v", msg.Message, msg.Code, err)
}

// IsUserFacing reports whether err maps to a specific, non-default message.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
