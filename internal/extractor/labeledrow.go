package extractor

import (
	"bytes"
	"log"
	"regexp"
	"strings"

	"PriceKeeper/internal/model"
	"PriceKeeper/internal/normalize"

	"github.com/PuerkitoBio/goquery"
)

const (
	DefaultLabel    = "fondsgesellschaft"
	DefaultMinCells = 5
	// minRowCells covers the price in the second cell plus a trailing date.
	minRowCells = 2
)

var (
	currencySuffixed = regexp.MustCompile(`^\+?\d[\d.,' \x{00a0}]*\s*(?:€|EUR|USD|CHF|£|\$)$`)
	dateShaped       = regexp.MustCompile(`^\d{1,2}\.\d{1,2}\.(?:\d{4}|\d{2})$`)
)

// LabeledRow reads a quote overview whose price sits in a table row tagged
// with a label, laid out as [venue, last, previous, change, time].
type LabeledRow struct {
	Label    string
	MinCells int
	Decimal  normalize.DecimalMark
}

func NewLabeledRow(label string, minCells int) *LabeledRow {
	if label == "" {
		label = DefaultLabel
	}
	switch {
	case minCells <= 0:
		minCells = DefaultMinCells
	case minCells < minRowCells:
		minCells = minRowCells
	}
	return &LabeledRow{Label: strings.ToLower(label), MinCells: minCells}
}

func (l *LabeledRow) Name() string { return string(KindLabeledRow) }

func (l *LabeledRow) Latest(content []byte) (model.Observation, error) {
	if len(bytes.TrimSpace(content)) == 0 {
		return model.Observation{}, l.fail("empty content")
	}
	doc, err := parseHTML(content)
	if err != nil {
		return model.Observation{}, &ExtractionError{Strategy: l.Name(), Reason: "parse html", Err: err}
	}

	if row := l.findRow(doc); row != nil {
		o, err := observationFrom(row[len(row)-1], row[1], l.Decimal)
		if err == nil {
			return o, nil
		}
		log.Printf("[WARN] %s: labeled row unparseable (%v), trying text scan", l.Name(), err)
	}

	if o, ok := scanTextNodes(doc, l.Decimal); ok {
		return o, nil
	}
	return model.Observation{}, l.fail("label row not found")
}

func (l *LabeledRow) findRow(doc *goquery.Document) []string {
	var row []string
	doc.Find("tr").EachWithBreak(func(_ int, tr *goquery.Selection) bool {
		if !strings.Contains(strings.ToLower(joinedText(tr)), l.Label) {
			return true
		}
		cells := cellTexts(tr)
		if len(cells) < max(l.MinCells, minRowCells) {
			return true
		}
		row = cells
		return false
	})
	return row
}

// scanTextNodes pairs the first currency-suffixed amount with the first
// parseable dd.mm.yy(yy) token found anywhere in the page.
func scanTextNodes(doc *goquery.Document, mark normalize.DecimalMark) (model.Observation, bool) {
	var rawPrice, rawDate string
	for _, n := range doc.Nodes {
		walkText(n, func(s string) bool {
			if rawPrice == "" && currencySuffixed.MatchString(s) {
				rawPrice = s
			}
			if rawDate == "" && dateShaped.MatchString(s) {
				if _, err := normalize.ParseDate(s); err == nil {
					rawDate = s
				}
			}
			return rawPrice == "" || rawDate == ""
		})
	}
	if rawPrice == "" || rawDate == "" {
		return model.Observation{}, false
	}
	o, err := observationFrom(rawDate, rawPrice, mark)
	if err != nil {
		return model.Observation{}, false
	}
	return o, true
}

func (l *LabeledRow) fail(reason string) error {
	return &ExtractionError{Strategy: l.Name(), Reason: reason}
}
