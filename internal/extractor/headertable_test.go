package extractor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const marketscreenerPage = `<html><body>
<table class="nav"><tr><td>Übersicht</td><td>Kurse</td></tr></table>
<table class="history">
  <thead><tr><th>Datum</th><th>Kurs</th><th>Veränd.</th></tr></thead>
  <tbody>
    <tr><td>28.02.2024</td><td>99,00 €</td><td>-0,2%</td></tr>
    <tr><td>01.03.2024</td><td>1.101,25 €</td><td>+0,4%</td></tr>
    <tr><td>29.02.24</td><td>100,10&nbsp;€</td><td>+0,1%</td></tr>
    <tr><td>Summe</td><td>–</td><td></td></tr>
  </tbody>
</table>
</body></html>`

func TestHeaderTable_PicksMatchingTableAndMaxDate(t *testing.T) {
	o, err := NewHeaderTable(nil, nil).Latest([]byte(marketscreenerPage))
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01 1101.2500", o.String())
}

func TestHeaderTable_EnglishHeaders(t *testing.T) {
	page := `<table><tr><th>Date</th><th>Close</th></tr>
<tr><td>2024-03-01</td><td>12.50</td></tr>
<tr><td>2024-02-29</td><td>12.40</td></tr></table>`
	o, err := NewHeaderTable(nil, nil).Latest([]byte(page))
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01 12.5000", o.String())
}

func TestHeaderTable_FallsBackToFirstTable(t *testing.T) {
	page := `<table><tr><td>01.03.2024</td><td>52,09 €</td></tr></table>
<table><tr><td>02.03.2024</td><td>53,00 €</td></tr></table>`
	o, err := NewHeaderTable(nil, nil).Latest([]byte(page))
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01 52.0900", o.String())
}

func TestHeaderTable_Failures(t *testing.T) {
	tests := []struct {
		name    string
		content string
		reason  string
	}{
		{"empty", "", "empty content"},
		{"no tables", "<html><body><p>Wartung</p></body></html>", "no table"},
		{"nothing parses", "<table><tr><th>Datum</th><th>Kurs</th></tr><tr><td>-</td><td>-</td></tr></table>", "no valid rows"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewHeaderTable(nil, nil).Latest([]byte(tt.content))
			var ee *ExtractionError
			require.True(t, errors.As(err, &ee), "got %v", err)
			assert.Equal(t, tt.reason, ee.Reason)
		})
	}
}
