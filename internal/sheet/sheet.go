// Package sheet reads import rows from xlsx workbooks.
//
// Cells are read raw, so date cells arrive as spreadsheet serial numbers
// and the validate package decides how to interpret them.
package sheet

import (
	"io"

	"github.com/go-faster/errors"
	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/importdata/internal/core"
)

// HeaderRows is the number of leading rows every sheet uses for captions.
const HeaderRows = 1

// Workbook is an open xlsx file.
type Workbook struct {
	f *excelize.File
}

// Open opens the workbook at path.
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open workbook %s", path)
	}
	return &Workbook{f: f}, nil
}

// OpenReader reads a workbook from r.
func OpenReader(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "open workbook")
	}
	return &Workbook{f: f}, nil
}

// Close releases the workbook.
func (w *Workbook) Close() error {
	return w.f.Close()
}

// SheetNames returns the sheet names in workbook order.
func (w *Workbook) SheetNames() []string {
	return w.f.GetSheetList()
}

// Sheet reads every data row of the named sheet. An empty name selects
// the first sheet.
func (w *Workbook) Sheet(name string) (core.Sheet, error) {
	if name == "" {
		names := w.f.GetSheetList()
		if len(names) == 0 {
			return core.Sheet{}, errors.New("workbook has no sheets")
		}
		name = names[0]
	}

	rows, err := w.f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return core.Sheet{}, errors.Wrapf(err, "read sheet %s", name)
	}

	sheet := core.Sheet{Name: name, FirstRow: HeaderRows + 1}
	if len(rows) <= HeaderRows {
		return sheet, nil
	}
	sheet.Rows = make([]core.Row, len(rows)-HeaderRows)
	for i, r := range rows[HeaderRows:] {
		sheet.Rows[i] = core.Row(r)
	}
	return sheet, nil
}
