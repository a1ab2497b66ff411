package domain

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "municipal/pkg/domain-errors"
)

// TestParseID_Invariants validates the parsing invariant:
// "IDs must be positive base-10 integers"
func TestParseID_Invariants(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"Empty string", "", true},
		{"Whitespace only", "   ", true},
		{"Zero", "0", true},
		{"Negative", "-4", true},
		{"Not a number", "abc", true},
		{"SQL injection attempt", "1; DROP TABLE procedures;--", true},
		{"Oversized input", strings.Repeat("9", 40), true},
		{"Padded", " 7 ", true},

		{"Valid", "42", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseProcedureID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

// TestAllIDTypes_ConsistentBehavior ensures all ID types parse identically.
func TestAllIDTypes_ConsistentBehavior(t *testing.T) {
	t.Run("all accept positive ids", func(t *testing.T) {
		c, errCitizen := ParseCitizenID("12")
		p, errProcedure := ParseProcedureID("12")
		d, errDebt := ParseDebtID("12")

		require.NoError(t, errCitizen)
		require.NoError(t, errProcedure)
		require.NoError(t, errDebt)
		assert.Equal(t, "12", c.String())
		assert.Equal(t, "12", p.String())
		assert.Equal(t, "12", d.String())
	})

	for _, input := range []string{"", "x", "0"} {
		t.Run("all reject: "+input, func(t *testing.T) {
			_, errCitizen := ParseCitizenID(input)
			_, errProcedure := ParseProcedureID(input)
			_, errDebt := ParseDebtID(input)

			require.Error(t, errCitizen)
			require.Error(t, errProcedure)
			require.Error(t, errDebt)
		})
	}
}

func TestParseNationalID(t *testing.T) {
	valid := []string{"12345678", "00000000", "99999999"}
	for _, v := range valid {
		t.Run("accepts "+v, func(t *testing.T) {
			got, err := ParseNationalID(v)
			require.NoError(t, err)
			assert.Equal(t, v, got.String())
		})
	}

	invalid := []string{"", "1234567", "123456789", "1234567a", "12345678\n", " 12345678", "１２３４５６７８"}
	for _, v := range invalid {
		t.Run("rejects "+v, func(t *testing.T) {
			_, err := ParseNationalID(v)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}
}

func TestRoundMoney(t *testing.T) {
	assert.Equal(t, "116.25", RoundMoney(decimal.RequireFromString("116.25")).StringFixed(2))
	assert.Equal(t, "0.13", RoundMoney(decimal.RequireFromString("0.125")).StringFixed(2))
	assert.Equal(t, "93.33", RoundMoney(decimal.RequireFromString("93.3333")).StringFixed(2))
}
