package extractor

import (
	"bytes"
	"strings"

	"PriceKeeper/internal/model"
	"PriceKeeper/internal/normalize"

	"github.com/PuerkitoBio/goquery"
)

var (
	DefaultDateKeywords  = []string{"date", "datum"}
	DefaultPriceKeywords = []string{"price", "close", "kurs", "schluss"}
)

// HeaderTable reads a quote-history table picked by its header cells.
type HeaderTable struct {
	DateKeywords  []string
	PriceKeywords []string
	Decimal       normalize.DecimalMark
}

func NewHeaderTable(dateKeywords, priceKeywords []string) *HeaderTable {
	return &HeaderTable{
		DateKeywords:  orDefault(dateKeywords, DefaultDateKeywords),
		PriceKeywords: orDefault(priceKeywords, DefaultPriceKeywords),
	}
}

func (h *HeaderTable) Name() string { return string(KindHeaderTable) }

func (h *HeaderTable) Latest(content []byte) (model.Observation, error) {
	if len(bytes.TrimSpace(content)) == 0 {
		return model.Observation{}, h.fail("empty content", nil)
	}
	doc, err := parseHTML(content)
	if err != nil {
		return model.Observation{}, h.fail("parse html", err)
	}

	table := h.selectTable(doc)
	if table == nil {
		return model.Observation{}, h.fail("no table", nil)
	}

	var obs []model.Observation
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := cellTexts(tr)
		if len(cells) < 2 || h.isHeaderRow(tr, cells) {
			return
		}
		o, err := observationFrom(cells[0], cells[1], h.Decimal)
		if err != nil {
			return
		}
		obs = append(obs, o)
	})

	if len(obs) == 0 {
		return model.Observation{}, h.fail("no valid rows", nil)
	}
	return latest(obs), nil
}

// selectTable returns the first table whose header names both a date and a
// price column, else the first table, else nil.
func (h *HeaderTable) selectTable(doc *goquery.Document) *goquery.Selection {
	tables := doc.Find("table")
	if tables.Length() == 0 {
		return nil
	}
	selected := tables.First()
	tables.EachWithBreak(func(_ int, t *goquery.Selection) bool {
		var heads []string
		t.Find("th").Each(func(_ int, th *goquery.Selection) {
			heads = append(heads, strings.ToLower(collapse(th.Text())))
		})
		header := strings.Join(heads, "|")
		if containsAny(header, h.DateKeywords) && containsAny(header, h.PriceKeywords) {
			selected = t
			return false
		}
		return true
	})
	return selected
}

func (h *HeaderTable) isHeaderRow(tr *goquery.Selection, cells []string) bool {
	if tr.Find("td").Length() == 0 {
		return true
	}
	first := strings.ToLower(cells[0])
	for _, k := range h.DateKeywords {
		if first == strings.ToLower(k) {
			return true
		}
	}
	return false
}

func (h *HeaderTable) fail(reason string, err error) error {
	return &ExtractionError{Strategy: h.Name(), Reason: reason, Err: err}
}
