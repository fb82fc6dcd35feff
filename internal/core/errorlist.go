package core

import "fmt"

// Severity of an ErrorEntry.
type Severity string

const (
	SeverityError   Severity = "Error"
	SeverityWarning Severity = "Warning"
)

// ErrorEntry is one problem found while importing a row.
type ErrorEntry struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

func (e ErrorEntry) String() string {
	return fmt.Sprintf("%s: %s", e.Severity, e.Message)
}

// ErrorList accumulates the entries of one row. The zero value is ready to use.
type ErrorList []ErrorEntry

// Errorf appends an Error entry.
func (l *ErrorList) Errorf(format string, args ...any) {
	*l = append(*l, ErrorEntry{Severity: SeverityError, Message: fmt.Sprintf(format, args...)})
}

// Warnf appends a Warning entry.
func (l *ErrorList) Warnf(format string, args ...any) {
	*l = append(*l, ErrorEntry{Severity: SeverityWarning, Message: fmt.Sprintf(format, args...)})
}

// Add appends e.
func (l *ErrorList) Add(e ErrorEntry) {
	*l = append(*l, e)
}

// Append appends every entry of other.
func (l *ErrorList) Append(other ErrorList) {
	*l = append(*l, other...)
}

// HasErrors reports whether any entry is an Error.
func (l ErrorList) HasErrors() bool {
	for _, e := range l {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns the Error entries.
func (l ErrorList) Errors() ErrorList {
	return l.filter(SeverityError)
}

// Warnings returns the Warning entries.
func (l ErrorList) Warnings() ErrorList {
	return l.filter(SeverityWarning)
}

func (l ErrorList) filter(sev Severity) ErrorList {
	var out ErrorList
	for _, e := range l {
		if e.Severity == sev {
			out = append(out, e)
		}
	}
	return out
}
