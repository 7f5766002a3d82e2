package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"PriceKeeper/internal/model"

	"github.com/araddon/dateparse"
)

// PivotYear splits two-digit years: yy below it is 20yy, otherwise 19yy.
const PivotYear = 70

var (
	dayFirstLayouts = []string{"2.1.2006"}
	shortYearDate   = regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.(\d{2})$`)
)

// ParseDate reads a day-first date such as "01.03.2024", "1.3.24" or
// "2024-03-01". Anything the explicit formats miss goes through a permissive
// day-first parser.
func ParseDate(raw string) (model.Date, error) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, "\u00a0", " "))
	if s == "" {
		return model.Date{}, fmt.Errorf("%w: empty date", ErrParse)
	}

	for _, layout := range dayFirstLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return model.DateOf(t), nil
		}
	}

	if m := shortYearDate.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		yy, _ := strconv.Atoi(m[3])
		d, err := model.NewDate(ExpandYear(yy), time.Month(month), day)
		if err != nil {
			return model.Date{}, fmt.Errorf("%w: %v", ErrParse, err)
		}
		return d, nil
	}

	if t, err := time.Parse(model.DateLayout, s); err == nil {
		return model.DateOf(t), nil
	}

	t, err := parseAnyDayFirst(s)
	if err != nil {
		return model.Date{}, fmt.Errorf("%w: date %q", ErrParse, raw)
	}
	return model.DateOf(t), nil
}

// ExpandYear maps a two-digit year onto a full year using PivotYear.
func ExpandYear(yy int) int {
	if yy < PivotYear {
		return 2000 + yy
	}
	return 1900 + yy
}

func parseAnyDayFirst(s string) (t time.Time, err error) {
	// dateparse has panicked on malformed input in the past.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("dateparse: %v", r)
		}
	}()
	return dateparse.ParseAny(s, dateparse.PreferMonthFirst(false))
}
