package core

import (
	"encoding/json"
	"io"
	"sync"
	"time"
)

// ReportEntry is an ErrorEntry tagged with where it came from.
type ReportEntry struct {
	Row      int      `json:"row"`
	Entity   string   `json:"entity"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Summary counts row outcomes. A row is Warned when it was accepted but
// produced at least one Warning.
type Summary struct {
	Processed int `json:"processed"`
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Rejected  int `json:"rejected"`
	Skipped   int `json:"skipped"`
	Warned    int `json:"warned"`
	Errors    int `json:"errors"`
	Warnings  int `json:"warnings"`
}

// Add folds other into s.
func (s *Summary) Add(other Summary) {
	s.Processed += other.Processed
	s.Created += other.Created
	s.Updated += other.Updated
	s.Rejected += other.Rejected
	s.Skipped += other.Skipped
	s.Warned += other.Warned
	s.Errors += other.Errors
	s.Warnings += other.Warnings
}

// BatchReport is the append-only account of a run.
// It is safe for concurrent use.
type BatchReport struct {
	mu       sync.Mutex
	action   string
	started  time.Time
	finished time.Time
	summary  Summary
	entries  []ReportEntry
}

// NewBatchReport starts a report for action.
func NewBatchReport(action string) *BatchReport {
	return &BatchReport{action: action, started: time.Now()}
}

// Merge records the result of one row.
func (r *BatchReport) Merge(row int, entity string, res Result) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch res.Outcome {
	case OutcomeSkipped:
		r.summary.Skipped++
		return
	case OutcomeCreated:
		r.summary.Created++
	case OutcomeUpdated:
		r.summary.Updated++
	default:
		r.summary.Rejected++
	}
	r.summary.Processed++

	warned := false
	for _, e := range res.Entries {
		r.entries = append(r.entries, ReportEntry{Row: row, Entity: entity, Severity: e.Severity, Message: e.Message})
		if e.Severity == SeverityError {
			r.summary.Errors++
		} else {
			r.summary.Warnings++
			warned = true
		}
	}
	if warned && res.Outcome != OutcomeRejected {
		r.summary.Warned++
	}
}

// Fail records a problem that is not tied to a row, such as a sheet that
// could not be read.
func (r *BatchReport) Fail(entity, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, ReportEntry{Entity: entity, Severity: SeverityError, Message: message})
	r.summary.Errors++
}

// Finish stamps the end time.
func (r *BatchReport) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished = time.Now()
}

// Summary returns the current counts.
func (r *BatchReport) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.summary
}

// Entries returns a copy of all entries in order.
func (r *BatchReport) Entries() []ReportEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ReportEntry(nil), r.entries...)
}

// Elapsed returns the run time, up to now if the run has not finished.
func (r *BatchReport) Elapsed() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finished.IsZero() {
		return time.Since(r.started)
	}
	return r.finished.Sub(r.started)
}

type reportJSON struct {
	Action    string        `json:"action"`
	StartedAt time.Time     `json:"started_at"`
	ElapsedMS int64         `json:"elapsed_ms"`
	Summary   Summary       `json:"summary"`
	Entries   []ReportEntry `json:"entries"`
}

// WriteJSON writes the report as an indented JSON document.
func (r *BatchReport) WriteJSON(w io.Writer) error {
	out := reportJSON{
		Action:    r.action,
		StartedAt: r.started,
		ElapsedMS: r.Elapsed().Milliseconds(),
		Summary:   r.Summary(),
		Entries:   r.Entries(),
	}
	if out.Entries == nil {
		out.Entries = []ReportEntry{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
