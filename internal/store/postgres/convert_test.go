package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestToPgText(t *testing.T) {
	assert.False(t, ToPgText("").Valid)
	assert.Equal(t, "ООО Ромашка", FromPgText(ToPgText("ООО Ромашка")))
}

func TestToPgDate_DropsTimeOfDay(t *testing.T) {
	in := time.Date(2021, 3, 15, 17, 45, 0, 0, time.FixedZone("MSK", 3*3600))

	d := ToPgDate(in)

	assert.True(t, d.Valid)
	assert.Equal(t, time.Date(2021, 3, 15, 0, 0, 0, 0, time.UTC), d.Time)
	assert.False(t, ToPgDate(time.Time{}).Valid)
	assert.True(t, FromPgDate(ToPgDate(time.Time{})).IsZero())
}

func TestToPgUUID(t *testing.T) {
	assert.Nil(t, FromPgUUID(ToPgUUID(nil)))

	id := uuid.New()
	got := FromPgUUID(ToPgUUID(&id))
	if assert.NotNil(t, got) {
		assert.Equal(t, id, *got)
	}
}

func TestToPgInt8(t *testing.T) {
	assert.Nil(t, FromPgInt8(ToPgInt8(nil)))
	v := int64(42)
	assert.Equal(t, &v, FromPgInt8(ToPgInt8(&v)))
}

func TestToPgNumeric(t *testing.T) {
	tests := []struct {
		name  string
		input decimal.NullDecimal
		want  string
	}{
		{"integer", decimal.NullDecimal{Decimal: decimal.NewFromInt(1500), Valid: true}, "1500"},
		{"fraction", decimal.NullDecimal{Decimal: decimal.RequireFromString("1234.56"), Valid: true}, "1234.56"},
		{"zero", decimal.NullDecimal{Decimal: decimal.Zero, Valid: true}, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromPgNumeric(ToPgNumeric(tt.input))
			assert.True(t, got.Valid)
			assert.Equal(t, tt.want, got.Decimal.String())
		})
	}

	assert.False(t, ToPgNumeric(decimal.NullDecimal{}).Valid)
}
