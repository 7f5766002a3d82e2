package model

import "github.com/shopspring/decimal"

// PricePrecision is the number of fractional digits kept on write.
const PricePrecision = 4

// Observation is one trading day's closing value for one instrument.
type Observation struct {
	Date  Date
	Price decimal.Decimal
}

// PriceString renders the price with exactly PricePrecision fractional digits.
func (o Observation) PriceString() string {
	return o.Price.StringFixed(PricePrecision)
}

func (o Observation) String() string {
	return o.Date.String() + " " + o.PriceString()
}

// AppendResult is what the series store reports for an append attempt.
// AppendFailed accompanies every error.
type AppendResult int

const (
	AppendFailed AppendResult = iota
	Appended
	SkippedDuplicate
)

func (r AppendResult) String() string {
	switch r {
	case Appended:
		return "appended"
	case SkippedDuplicate:
		return "skipped-duplicate"
	}
	return "failed"
}
