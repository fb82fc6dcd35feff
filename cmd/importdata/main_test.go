package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-faster/errors"
	"github.com/xuri/excelize/v2"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitOK},
		{"plain", errors.New("boom"), 1},
		{"usage", withCode(exitUsage, errors.New("bad flag")), exitUsage},
		{"wrapped", errors.Wrap(withCode(exitStore, errors.New("refused")), "open"), exitStore},
	}
	for _, tt := range tests {
		if got := exitCode(tt.err); got != tt.want {
			t.Errorf("exitCode(%s) = %d, want %d", tt.name, got, tt.want)
		}
	}
	if withCode(exitUsage, nil) != nil {
		t.Error("withCode(nil) should be nil")
	}
}

// execute runs the root command against the in-memory store.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("LOG_LEVEL", "silent")
	t.Setenv("METRICS_TEXTFILE", "")
	t.Setenv("IMPORT_REPORT_FILE", "")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	envFile := filepath.Join(t.TempDir(), ".env")
	cmd.SetArgs(append(args, "--env-file", envFile))
	err := cmd.Execute()
	return out.String(), err
}

func companiesWorkbook(t *testing.T, names ...string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", "Companies"); err != nil {
		t.Fatal(err)
	}
	rows := [][]any{{"Name"}}
	for _, n := range names {
		rows = append(rows, []any{n})
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Companies", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	path := filepath.Join(t.TempDir(), "companies.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestActionsCommand(t *testing.T) {
	out, err := execute(t, "actions", "-v")
	if err != nil {
		t.Fatalf("actions error = %v", err)
	}
	for _, want := range []string{"importcompanies", "importcompany", "Department: 7 columns (supplement)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output should contain %q:\n%s", want, out)
		}
	}
}

func TestImportCommand(t *testing.T) {
	path := companiesWorkbook(t, "Acme", "Ромашка", "Acme")
	report := filepath.Join(t.TempDir(), "report.json")

	out, err := execute(t, "import", "-a", "importcompanies", "-f", path, "--report", report)
	if err != nil {
		t.Fatalf("import error = %v", err)
	}
	if !strings.Contains(out, "created 2, updated 0, rejected 1") {
		t.Errorf("unexpected summary: %s", out)
	}
	if _, err := os.Stat(report); err != nil {
		t.Errorf("report not written: %v", err)
	}
}

func TestImportCommand_ExitCodes(t *testing.T) {
	path := companiesWorkbook(t, "Acme", "Acme")

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"strict with errors", []string{"import", "-a", "importcompanies", "-f", path, "--strict"}, exitValidation},
		{"ignore duplicates", []string{"import", "-a", "importcompanies", "-f", path, "--strict", "-d", "ignore"}, exitOK},
		{"unknown action", []string{"import", "-a", "importeverything", "-f", path}, exitUsage},
		{"missing file", []string{"import", "-a", "importcompanies", "-f", filepath.Join(t.TempDir(), "none.xlsx")}, exitUsage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			if got := exitCode(err); got != tt.want {
				t.Errorf("exit code = %d, want %d (err: %v)", got, tt.want, err)
			}
		})
	}
}

func TestMigrateCommand_NeedsPostgres(t *testing.T) {
	_, err := execute(t, "migrate")
	if err == nil || !strings.Contains(err.Error(), "STORE_DRIVER=postgres") {
		t.Errorf("migrate error = %v", err)
	}
}
