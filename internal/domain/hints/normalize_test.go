package hints

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAmount(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"dollar with cents", "$43,700,000.00", "43700000"},
		{"iso code", "EUR 4,500,000", "4500000"},
		{"million", "4.5 million", "4500000"},
		{"billion mixed case", "USD 1.25 Billion", "1250000000"},
		{"comma million", "1,200 million", "1200000000"},
		{"fractional kept", "1,234.50", "1234.5"},
		{"leading zeros", "007", "7"},
		{"empty", "", ""},
		{"no digits", "N/A", "N/A"},
		{"only commas", "USD ,,", "USD ,,"},
		{"two periods", "1.2.3", "1.2.3"},
		{"bad scaled number", "1.2.3 million", "1.2.3 million"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeAmount(tt.in))
		})
	}
}

func TestNormalizeAmountLeavesDigitFreeInputAlone(t *testing.T) {
	for _, in := range []string{"abc", "  spaced out ", "£", "—"} {
		assert.Equal(t, in, NormalizeAmount(in))
	}
}
