package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/importdata/internal/core"
)

func TestNewCommandTable(t *testing.T) {
	table := NewCommandTable(&Deps{})

	assert.Equal(t, []string{
		"importaddendums",
		"importbusinessunits",
		"importcompanies",
		"importcompany",
		"importcontracts",
		"importdepartments",
		"importemployees",
		"importincomingletters",
		"importorders",
		"importoutgoingletters",
		"importpersons",
		"importsupagreements",
	}, table.Names())

	tests := []struct {
		action string
		want   []string
	}{
		{"importcompanies", []string{"Company"}},
		{"ImportAddendums", []string{"Addendum"}},
		{"importcompany", []string{"Employee", "BusinessUnit", "Department"}},
	}
	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			cmd, err := table.Get(tt.action)
			require.NoError(t, err)
			var got []string
			for _, s := range cmd.Steps {
				got = append(got, s.Entity())
			}
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := table.Get("importeverything")
	assert.ErrorIs(t, err, core.ErrUnknownAction)
}

func TestImportCompanyForcesSupplementOnLaterSteps(t *testing.T) {
	cmd, err := NewCommandTable(&Deps{}).Get("importcompany")
	require.NoError(t, err)

	var forced []bool
	for _, s := range cmd.Steps {
		forced = append(forced, s.Options(core.ImportOptions{}).SupplementExisting)
	}
	assert.Equal(t, []bool{false, true, true}, forced)
}
