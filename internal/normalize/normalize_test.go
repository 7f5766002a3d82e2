package normalize

import (
	"errors"
	"testing"
	"time"

	"PriceKeeper/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"1.234,56 €", "1234.56"},
		{"52,09", "52.09"},
		{"12.50", "12.5"},
		{"52,09 €", "52.09"},
		{"EUR 101,25", "101.25"},
		{"101.2500", "101.25"},
		{"1,234.56", "1234.56"},
		{"1.234.567", "1234567"},
		{"1,234,567", "1234567"},
		{"$ 47.195", "47.195"},
		{"0", "0"},
		{"+3,5", "3.5"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParsePrice(tt.raw)
			require.NoError(t, err)
			want := decimal.RequireFromString(tt.want)
			assert.Truef(t, want.Equal(got), "ParsePrice(%q) = %s, want %s", tt.raw, got, want)
		})
	}
}

func TestParsePrice_Malformed(t *testing.T) {
	for _, raw := range []string{"", "   ", "abc", "€", "EUR", "-", "-5,00", "1e5", "12,5x", "n/a", "1,2.3,4"} {
		_, err := ParsePrice(raw)
		if !errors.Is(err, ErrParse) {
			t.Errorf("ParsePrice(%q): expected ErrParse, got %v", raw, err)
		}
	}
}

func TestParsePriceAs(t *testing.T) {
	tests := []struct {
		raw  string
		mark DecimalMark
		want string
	}{
		{"1.234 €", DecimalAuto, "1.234"},
		{"1.234 €", DecimalComma, "1234"},
		{"1.234,5 €", DecimalComma, "1234.5"},
		{"52,09", DecimalComma, "52.09"},
		{"1,234", DecimalPoint, "1234"},
		{"1,234.50 USD", DecimalPoint, "1234.5"},
		{"47.195", DecimalPoint, "47.195"},
	}
	for _, tt := range tests {
		t.Run(tt.mark.String()+"/"+tt.raw, func(t *testing.T) {
			got, err := ParsePriceAs(tt.raw, tt.mark)
			require.NoError(t, err)
			assert.Truef(t, decimal.RequireFromString(tt.want).Equal(got), "got %s, want %s", got, tt.want)
		})
	}

	_, err := ParsePriceAs("1,2,3", DecimalComma)
	assert.ErrorIs(t, err, ErrParse)
}

func TestParseDecimalMark(t *testing.T) {
	for name, want := range map[string]DecimalMark{"": DecimalAuto, "auto": DecimalAuto, "Comma": DecimalComma, "point": DecimalPoint} {
		got, err := ParseDecimalMark(name)
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}
	_, err := ParseDecimalMark("semicolon")
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		raw  string
		want model.Date
	}{
		{"01.03.2024", model.Date{Year: 2024, Month: time.March, Day: 1}},
		{"1.3.2024", model.Date{Year: 2024, Month: time.March, Day: 1}},
		{" 28.02.2024 ", model.Date{Year: 2024, Month: time.February, Day: 28}},
		{"01.03.24", model.Date{Year: 2024, Month: time.March, Day: 1}},
		{"31.12.99", model.Date{Year: 1999, Month: time.December, Day: 31}},
		{"01.01.69", model.Date{Year: 2069, Month: time.January, Day: 1}},
		{"01.01.70", model.Date{Year: 1970, Month: time.January, Day: 1}},
		{"2024-03-01", model.Date{Year: 2024, Month: time.March, Day: 1}},
		{"01/03/2024", model.Date{Year: 2024, Month: time.March, Day: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseDate(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDate_Malformed(t *testing.T) {
	for _, raw := range []string{"", "Datum", "31.02.2024", "30.02.24", "not a date"} {
		_, err := ParseDate(raw)
		if !errors.Is(err, ErrParse) {
			t.Errorf("ParseDate(%q): expected ErrParse, got %v", raw, err)
		}
	}
}

func TestExpandYear(t *testing.T) {
	assert.Equal(t, 2000, ExpandYear(0))
	assert.Equal(t, 2069, ExpandYear(69))
	assert.Equal(t, 1970, ExpandYear(70))
	assert.Equal(t, 1999, ExpandYear(99))
}
