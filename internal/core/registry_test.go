package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandTable(t *testing.T) {
	h := &scriptedHandler{}
	table := NewCommandTable(
		Command{Name: "importb", Steps: []Step{{Handler: h}}},
		Command{Name: "importa", Steps: []Step{{Handler: h}, {Handler: h, ForceSupplement: true}}},
	)

	assert.Equal(t, 2, table.Len())
	assert.Equal(t, []string{"importa", "importb"}, table.Names())

	cmd, err := table.Get(" ImportA ")
	require.NoError(t, err)
	require.Len(t, cmd.Steps, 2)
	assert.Equal(t, "Scripted", cmd.Steps[0].Entity())
	assert.False(t, cmd.Steps[0].Options(ImportOptions{}).SupplementExisting)
	assert.True(t, cmd.Steps[1].Options(ImportOptions{}).SupplementExisting)

	_, err = table.Get("importz")
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestCommandTable_PanicsOnDuplicate(t *testing.T) {
	h := &scriptedHandler{}
	assert.Panics(t, func() {
		NewCommandTable(
			Command{Name: "x", Steps: []Step{{Handler: h}}},
			Command{Name: "X", Steps: []Step{{Handler: h}}},
		)
	})
	assert.Panics(t, func() { NewCommandTable(Command{Name: "empty"}) })
}
