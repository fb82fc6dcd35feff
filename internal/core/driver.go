package core

// driver.go runs a handler over every row of a sheet.
//
// Rows are processed sequentially: later rows may depend on records created
// by earlier ones (duplicate detection, references). A rejected row never
// stops the sheet. A panic inside a handler aborts only the current sheet
// and is recorded on the report.

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/JonMunkholm/importdata/internal/logging"
)

// Sheet is the input for one handler: its rows and where they start.
type Sheet struct {
	Name     string
	FirstRow int // Spreadsheet row number of Rows[0]
	Rows     []Row
}

// Recorder observes processed rows, typically for metrics.
type Recorder interface {
	ObserveRow(entity string, outcome Outcome, entries ErrorList, elapsed time.Duration)
}

// Driver runs handlers over sheets.
type Driver struct {
	recorder Recorder
	progress func(entity string) ProgressFunc
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithRecorder sets the row observer.
func WithRecorder(r Recorder) DriverOption {
	return func(d *Driver) { d.recorder = r }
}

// WithProgress sets a factory returning a progress callback per entity.
func WithProgress(f func(entity string) ProgressFunc) DriverOption {
	return func(d *Driver) { d.progress = f }
}

// NewDriver returns a sequential driver.
func NewDriver(opts ...DriverOption) *Driver {
	d := &Driver{}
	for _, o := range opts {
		o(d)
	}
	return d
}

// RunSheet imports every row of sheet with h, merging results into report,
// and returns the counts for this sheet alone.
func (d *Driver) RunSheet(ctx context.Context, report *BatchReport, h Handler, sheet Sheet, shift int, opts ImportOptions) (sum Summary) {
	entity := h.Name()
	ctx = logging.ContextWithEntity(ctx, entity)
	log := logging.WithFields(ctx, logrus.Fields{"sheet": sheet.Name, "rows": len(sheet.Rows), "shift": shift})
	log.Info("sheet import started")

	start := time.Now()
	var progress ProgressFunc
	if d.progress != nil {
		progress = d.progress(entity)
	}

	defer func() {
		if p := recover(); p != nil {
			msg := fmt.Sprintf("import of %s aborted: %v", entity, p)
			report.Fail(entity, msg)
			sum.Errors++
			log.Error(msg)
		}
		log.WithFields(logrus.Fields{
			"processed":  sum.Processed,
			"created":    sum.Created,
			"updated":    sum.Updated,
			"rejected":   sum.Rejected,
			"skipped":    sum.Skipped,
			"warnings":   sum.Warnings,
			"errors":     sum.Errors,
			"elapsed_ms": time.Since(start).Milliseconds(),
		}).Info("sheet import finished")
	}()

	width := FieldCount(h)
	for i, row := range sheet.Rows {
		if err := ctx.Err(); err != nil {
			report.Fail(entity, fmt.Sprintf("import of %s stopped after %d of %d rows: %v", entity, i, len(sheet.Rows), err))
			sum.Errors++
			return sum
		}

		rowNum := sheet.FirstRow + i
		rowCtx := logging.ContextWithRow(ctx, rowNum)

		var res Result
		rowStart := time.Now()
		if blankSlice(row, shift, width) {
			res = Result{Outcome: OutcomeSkipped}
		} else {
			res = h.Import(rowCtx, row.Pad(shift+width), shift, opts)
		}
		elapsed := time.Since(rowStart)

		report.Merge(rowNum, entity, res)
		sum.Add(rowSummary(res))
		logEntries(rowCtx, res)
		if d.recorder != nil && res.Outcome != OutcomeSkipped {
			d.recorder.ObserveRow(entity, res.Outcome, res.Entries, elapsed)
		}
		if progress != nil {
			progress(i+1, len(sheet.Rows))
		}
	}
	return sum
}

// blankSlice reports whether the handler's cells are all empty. Cells
// missing because the row is short count as empty.
func blankSlice(row Row, shift, width int) bool {
	if shift >= len(row) {
		return true
	}
	end := shift + width
	if end > len(row) {
		end = len(row)
	}
	return isEmptyRow(row[shift:end])
}

func rowSummary(res Result) Summary {
	var s BatchReport
	s.Merge(0, "", res)
	return s.summary
}

func logEntries(ctx context.Context, res Result) {
	log := logging.FromContext(ctx)
	for _, e := range res.Entries {
		if e.Severity == SeverityError {
			log.Error(e.Message)
		} else {
			log.Warn(e.Message)
		}
	}
	log.WithField("outcome", res.Outcome).Debug("row processed")
}
