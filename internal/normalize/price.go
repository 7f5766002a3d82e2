package normalize

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var (
	currencyCode = regexp.MustCompile(`[A-Z]{3}`)
	plainNumber  = regexp.MustCompile(`^\d+(\.\d+)?$`)
)

// DecimalMark selects how the separators of a price are read.
type DecimalMark int

const (
	// DecimalAuto: with both ',' and '.' present the rightmost one is the
	// decimal mark. A single ',' or a single '.' on its own is the decimal
	// mark; repeated occurrences are thousands separators.
	DecimalAuto DecimalMark = iota
	// DecimalComma: ',' is the decimal mark and '.' only groups thousands.
	DecimalComma
	// DecimalPoint: '.' is the decimal mark and ',' only groups thousands.
	DecimalPoint
)

// ParseDecimalMark maps the configuration names auto, comma and point.
func ParseDecimalMark(name string) (DecimalMark, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return DecimalAuto, nil
	case "comma":
		return DecimalComma, nil
	case "point", "dot":
		return DecimalPoint, nil
	}
	return DecimalAuto, fmt.Errorf("unknown decimal mark %q", name)
}

func (m DecimalMark) String() string {
	switch m {
	case DecimalComma:
		return "comma"
	case DecimalPoint:
		return "point"
	}
	return "auto"
}

// ParsePrice reads prices like "1.234,56 €", "52,09", "EUR 12.50" or
// "1,234.5" with DecimalAuto rules.
func ParsePrice(raw string) (decimal.Decimal, error) {
	return ParsePriceAs(raw, DecimalAuto)
}

// ParsePriceAs reads a price with the given separator convention.
func ParsePriceAs(raw string, mark DecimalMark) (decimal.Decimal, error) {
	s := currencyCode.ReplaceAllString(raw, "")

	var b strings.Builder
	for _, r := range s {
		if unicode.Is(unicode.Sc, r) || unicode.IsSpace(r) || r == '\'' || r == '’' {
			continue
		}
		b.WriteRune(r)
	}
	s = b.String()

	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty price %q", ErrParse, raw)
	}
	if strings.HasPrefix(s, "-") {
		return decimal.Zero, fmt.Errorf("%w: negative price %q", ErrParse, raw)
	}
	s = strings.TrimPrefix(s, "+")
	s = normalizeSeparators(s, mark)

	if !plainNumber.MatchString(s) {
		return decimal.Zero, fmt.Errorf("%w: price %q", ErrParse, raw)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: price %q: %v", ErrParse, raw, err)
	}
	return d, nil
}

func normalizeSeparators(s string, mark DecimalMark) string {
	switch mark {
	case DecimalComma:
		return strings.Replace(strings.ReplaceAll(s, ".", ""), ",", ".", 1)
	case DecimalPoint:
		return strings.ReplaceAll(s, ",", "")
	}

	comma := strings.LastIndex(s, ",")
	dot := strings.LastIndex(s, ".")

	switch {
	case comma >= 0 && dot >= 0:
		if comma > dot {
			s = strings.ReplaceAll(s, ".", "")
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		if strings.Count(s, ",") == 1 {
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case dot >= 0 && strings.Count(s, ".") > 1:
		return strings.ReplaceAll(s, ".", "")
	}
	return s
}
