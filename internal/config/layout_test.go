package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeLayout(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "layout.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadLayout_Defaults(t *testing.T) {
	l, err := LoadLayout("")
	if err != nil {
		t.Fatalf("LoadLayout() error = %v", err)
	}

	if got := l.For("Company"); got.Sheet != "Companies" || got.Shift != 0 {
		t.Errorf("For(Company) = %+v", got)
	}
	if got := l.For("addendum"); got.Sheet != "Addendums" {
		t.Errorf("For(addendum) = %+v, lookup should ignore case", got)
	}
	if got := l.For("Invoice"); got.Sheet != "Invoice" {
		t.Errorf("For(Invoice) = %+v, unknown entities read their own name", got)
	}
}

func TestLoadLayout_Overrides(t *testing.T) {
	path := writeLayout(t, `
entities:
  company:
    sheet: Контрагенты
  Department:
    shift: 3
`)

	l, err := LoadLayout(path)
	if err != nil {
		t.Fatalf("LoadLayout() error = %v", err)
	}

	if got := l.For("Company"); got.Sheet != "Контрагенты" {
		t.Errorf("For(Company).Sheet = %q, want %q", got.Sheet, "Контрагенты")
	}
	got := l.For("Department")
	if got.Sheet != "Departments" || got.Shift != 3 {
		t.Errorf("For(Department) = %+v, want default sheet with shift 3", got)
	}
	if got := l.For("Person"); got.Sheet != "Persons" {
		t.Errorf("For(Person) = %+v, untouched entities keep defaults", got)
	}
}

func TestLoadLayout_Errors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"missing file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "none.yaml") }},
		{"malformed", func(t *testing.T) string { return writeLayout(t, "entities: [") }},
		{"negative shift", func(t *testing.T) string {
			return writeLayout(t, "entities:\n  Company:\n    shift: -1\n")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadLayout(tt.path(t)); err == nil {
				t.Error("LoadLayout() expected error")
			}
		})
	}
}
