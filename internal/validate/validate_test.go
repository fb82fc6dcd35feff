package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/importdata/internal/domain"
)

func TestTIN(t *testing.T) {
	tests := []struct {
		name    string
		tin     string
		wantErr bool
	}{
		{name: "empty", tin: ""},
		{name: "valid organization", tin: "7707083893"},
		{name: "valid organization 2", tin: "7830002293"},
		{name: "valid person", tin: "500100732259"},
		{name: "bad organization checksum", tin: "7707083894", wantErr: true},
		{name: "bad person checksum", tin: "500100732250", wantErr: true},
		{name: "letters", tin: "77070838AB", wantErr: true},
		{name: "wrong length", tin: "12345", wantErr: true},
		{name: "thirteen digits", tin: "7707083893000", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := TIN(tt.tin)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTRRC(t *testing.T) {
	tests := []struct {
		trrc    string
		wantErr bool
	}{
		{trrc: ""},
		{trrc: "773601001"},
		{trrc: "7736AB001"},
		{trrc: "7736ab001", wantErr: true},
		{trrc: "77360100", wantErr: true},
		{trrc: "7736010011", wantErr: true},
		{trrc: "A73601001", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.trrc, func(t *testing.T) {
			if tt.wantErr {
				assert.Error(t, TRRC(tt.trrc))
			} else {
				assert.NoError(t, TRRC(tt.trrc))
			}
		})
	}
}

func TestPSRN(t *testing.T) {
	tests := []struct {
		psrn    string
		wantErr bool
	}{
		{psrn: ""},
		{psrn: "1027700132195"},
		{psrn: "1027700132196", wantErr: true},
		{psrn: "304500116000157"},
		{psrn: "304500116000158", wantErr: true},
		{psrn: "10277001321", wantErr: true},
		{psrn: "102770013219X", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.psrn, func(t *testing.T) {
			if tt.wantErr {
				assert.Error(t, PSRN(tt.psrn))
			} else {
				assert.NoError(t, PSRN(tt.psrn))
			}
		})
	}
}

func TestSNILS(t *testing.T) {
	assert.NoError(t, SNILS(""))
	assert.NoError(t, SNILS("112-233-445 95"))
	assert.NoError(t, SNILS("11223344595"))
	assert.Error(t, SNILS("11223344596"))
	assert.Error(t, SNILS("1122334459"))
}

func TestMaxLength(t *testing.T) {
	assert.NoError(t, MaxLength("TIN", "123456789012", 12))
	err := MaxLength("TIN", "1234567890123", 12)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "12 characters")

	// Characters, not bytes.
	assert.NoError(t, MaxLength("Name", "Привет", 6))
}

func TestSerialDate(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    time.Time
		wantErr bool
	}{
		{name: "integer", in: "43831", want: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
		{name: "fraction dropped", in: "43831.75", want: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
		{name: "decimal comma", in: "43831,5", want: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
		{name: "day one", in: "1", want: time.Date(1899, 12, 31, 0, 0, 0, 0, time.UTC)},
		{name: "text", in: "01.02.2020", wantErr: true},
		{name: "word", in: "yesterday", wantErr: true},
		{name: "zero", in: "0", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SerialDate(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.in)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s, want %s", got, tt.want)
		})
	}
}

func TestOptionalSerialDate(t *testing.T) {
	got, err := OptionalSerialDate("  ")
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	_, err = OptionalSerialDate("abc")
	assert.Error(t, err)
}

func TestBool(t *testing.T) {
	assert.True(t, Bool("Да"))
	assert.True(t, Bool(" да "))
	assert.False(t, Bool("Нет"))
	assert.False(t, Bool(""))
}

func TestLifeCycleState(t *testing.T) {
	st, err := LifeCycleState("Действующий")
	require.NoError(t, err)
	assert.Equal(t, domain.LifeCycleActive, st)

	st, err = LifeCycleState("")
	require.NoError(t, err)
	assert.Equal(t, domain.LifeCycleNone, st)

	_, err = LifeCycleState("Пропал")
	assert.Error(t, err)
}

func TestSex(t *testing.T) {
	s, err := Sex("Ж")
	require.NoError(t, err)
	assert.Equal(t, domain.SexFemale, s)

	_, err = Sex("x")
	assert.Error(t, err)
}

func TestAmount(t *testing.T) {
	a, err := Amount("1 250,50")
	require.NoError(t, err)
	require.True(t, a.Valid)
	assert.Equal(t, "1250.5", a.Decimal.String())

	a, err = Amount("")
	require.NoError(t, err)
	assert.False(t, a.Valid)

	_, err = Amount("ten")
	assert.Error(t, err)
	_, err = Amount("-5")
	assert.Error(t, err)
}
