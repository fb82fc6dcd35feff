package core

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedHandler returns a result chosen by the row's first cell.
type scriptedHandler struct {
	calls []Row
	opts  []ImportOptions
}

func (h *scriptedHandler) Name() string { return "Scripted" }

func (h *scriptedHandler) Fields() []FieldSpec {
	return []FieldSpec{{Name: "Action", Required: true}, {Name: "Value"}}
}

func (h *scriptedHandler) Import(_ context.Context, row Row, shift int, opts ImportOptions) Result {
	h.calls = append(h.calls, row)
	h.opts = append(h.opts, opts)
	f, err := row.Extract(shift, h.Fields())
	if err != nil {
		panic(err)
	}
	var entries ErrorList
	switch f.Get("Action") {
	case "create":
		return Result{Outcome: OutcomeCreated}
	case "warn":
		entries.Warnf("city %q not found", f.Get("Value"))
		return Result{Outcome: OutcomeUpdated, Entries: entries}
	case "panic":
		panic("boom")
	default:
		entries.Errorf("rejected %q", f.Get("Value"))
		return Result{Outcome: OutcomeRejected, Entries: entries}
	}
}

type countingRecorder struct {
	rows map[Outcome]int
}

func (r *countingRecorder) ObserveRow(_ string, outcome Outcome, _ ErrorList, _ time.Duration) {
	if r.rows == nil {
		r.rows = make(map[Outcome]int)
	}
	r.rows[outcome]++
}

func TestDriverRunSheet_ContinuesAfterRejectedRows(t *testing.T) {
	h := &scriptedHandler{}
	rec := &countingRecorder{}
	var progress []int
	d := NewDriver(
		WithRecorder(rec),
		WithProgress(func(string) ProgressFunc {
			return func(done, _ int) { progress = append(progress, done) }
		}),
	)

	report := NewBatchReport("test")
	sheet := Sheet{Name: "S", FirstRow: 2, Rows: []Row{
		{"reject", "a"},
		{"create"},
		{"", ""},
		{"warn", "Tver"},
		{"reject", "b"},
	}}

	sum := d.RunSheet(context.Background(), report, h, sheet, 0, ImportOptions{})

	assert.Equal(t, Summary{Processed: 4, Created: 1, Updated: 1, Rejected: 2, Skipped: 1, Warned: 1, Errors: 2, Warnings: 1}, sum)
	assert.Equal(t, sum, report.Summary())
	assert.Len(t, h.calls, 4, "blank row must not reach the handler")
	assert.Equal(t, Row{"create", ""}, h.calls[1], "short rows are padded to the handler width")
	assert.Equal(t, []int{1, 2, 3, 4, 5}, progress)
	assert.Equal(t, 2, rec.rows[OutcomeRejected])

	entries := report.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, 2, entries[0].Row)
	assert.Equal(t, 5, entries[1].Row)
	assert.Equal(t, SeverityWarning, entries[1].Severity)
	assert.Equal(t, 6, entries[2].Row)
}

func TestDriverRunSheet_ShiftSelectsBlock(t *testing.T) {
	h := &scriptedHandler{}
	report := NewBatchReport("test")
	sheet := Sheet{FirstRow: 2, Rows: []Row{
		{"x", "y", "create", "v"},
		{"x", "y"},
	}}

	sum := NewDriver().RunSheet(context.Background(), report, h, sheet, 2, ImportOptions{})

	assert.Equal(t, 1, sum.Created)
	assert.Equal(t, 1, sum.Skipped, "a row with nothing in the shifted block is skipped")
}

func TestDriverRunSheet_PanicAbortsOnlyTheSheet(t *testing.T) {
	h := &scriptedHandler{}
	report := NewBatchReport("test")
	sheet := Sheet{FirstRow: 2, Rows: []Row{{"create"}, {"panic"}, {"create"}}}

	sum := NewDriver().RunSheet(context.Background(), report, h, sheet, 0, ImportOptions{})

	assert.Equal(t, 1, sum.Created)
	assert.Equal(t, 1, sum.Errors)
	entries := report.Entries()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Message, "boom")
}

func TestDriverRunSheet_StopsOnCancelledContext(t *testing.T) {
	h := &scriptedHandler{}
	report := NewBatchReport("test")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sum := NewDriver().RunSheet(ctx, report, h, Sheet{Rows: []Row{{"create"}}}, 0, ImportOptions{})

	assert.Empty(t, h.calls)
	assert.Equal(t, 1, sum.Errors)
}

func TestBatchReport_WriteJSON(t *testing.T) {
	report := NewBatchReport("importcompanies")
	var entries ErrorList
	entries.Errorf("duplicate")
	report.Merge(3, "Company", Result{Outcome: OutcomeRejected, Entries: entries})
	report.Finish()

	var buf bytes.Buffer
	require.NoError(t, report.WriteJSON(&buf))

	var decoded struct {
		Action  string        `json:"action"`
		Summary Summary       `json:"summary"`
		Entries []ReportEntry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "importcompanies", decoded.Action)
	assert.Equal(t, 1, decoded.Summary.Rejected)
	require.Len(t, decoded.Entries, 1)
	assert.Equal(t, 3, decoded.Entries[0].Row)
}
