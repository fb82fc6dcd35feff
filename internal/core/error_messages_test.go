package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "duplicate key maps correctly",
			err:         errors.New("ERROR: duplicate key value violates unique constraint \"companies_pkey\""),
			wantCode:    "DB001",
			wantMessage: "A record with this key already exists",
		},
		{
			name:        "foreign key maps correctly",
			err:         errors.New("insert or update on table \"documents\" violates foreign key constraint"),
			wantCode:    "DB003",
			wantMessage: "Referenced record does not exist",
		},
		{
			name:        "connection refused maps correctly",
			err:         errors.New("dial tcp 127.0.0.1:5432: connection refused"),
			wantCode:    "DB004",
			wantMessage: "Unable to connect to the record store",
		},
		{
			name:        "deadline wins over timeout",
			err:         context.DeadlineExceeded,
			wantCode:    "RUN002",
			wantMessage: "The run exceeded its time limit",
		},
		{
			name:        "wrapped unknown action",
			err:         fmt.Errorf("dispatch: %w", ErrUnknownAction),
			wantCode:    "IMP001",
			wantMessage: "The requested action does not exist",
		},
		{
			name:        "missing sheet",
			err:         errors.New("sheet Companies does not exist"),
			wantCode:    "FILE002",
			wantMessage: "The workbook has no sheet with that name",
		},
		{
			name:        "missing table is not a missing sheet",
			err:         errors.New("ERROR: relation \"companies\" does not exist (SQLSTATE 42P01)"),
			wantCode:    "DB010",
			wantMessage: "The store tables have not been created",
		},
		{
			name:        "missing sheet wrapped by the reader",
			err:         fmt.Errorf("read sheet Persons: %w", errors.New("sheet Persons does not exist")),
			wantCode:    "FILE002",
			wantMessage: "The workbook has no sheet with that name",
		},
		{
			name:        "unrelated does not exist",
			err:         errors.New("directory /bodies does not exist"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "cancelled run",
			err:         context.Canceled,
			wantCode:    "RUN001",
			wantMessage: "The run was interrupted",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("DUPLICATE KEY value violates"),
			wantCode:    "DB001",
			wantMessage: "A record with this key already exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatError(t *testing.T) {
	if got := FormatError(nil); got != "" {
		t.Errorf("FormatError(nil) = %q, want empty", got)
	}

	got := FormatError(errors.New("duplicate key value violates"))
	if !strings.HasPrefix(got, "A record with this key already exists (DB001): ") {
		t.Errorf("FormatError() = %q, want code prefix", got)
	}
	if !strings.HasSuffix(got, "duplicate key value violates") {
		t.Errorf("FormatError() = %q, want original error suffix", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil error is not user facing", err: nil, want: false},
		{name: "known error is user facing", err: errors.New("duplicate key"), want: true},
		{name: "unknown error is not user facing", err: errors.New("random internal error xyz"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}
