package notifier

import (
	"fmt"
	"html"
	"strings"

	"PriceKeeper/internal/model"
)

// FormatRun formats the outcome of one ingestion run.
func FormatRun(rec *model.RunRecord) string {
	var b strings.Builder
	name := html.EscapeString(rec.Instrument)

	switch rec.Status {
	case model.StatusAppended:
		b.WriteString(fmt.Sprintf("✅ <b>%s</b> appended\n", name))
		if rec.Observation != nil {
			b.WriteString(fmt.Sprintf("%s: %s\n", rec.Observation.Date, rec.Observation.PriceString()))
		}
		if rec.LastDate != nil {
			b.WriteString(fmt.Sprintf("previous: %s\n", rec.LastDate))
		}
	case model.StatusSkipped:
		b.WriteString(fmt.Sprintf("⏸ <b>%s</b> unchanged\n", name))
		if rec.Observation != nil {
			b.WriteString(fmt.Sprintf("source: %s\n", rec.Observation.Date))
		}
		if rec.LastDate != nil {
			b.WriteString(fmt.Sprintf("stored: %s\n", rec.LastDate))
		}
	default:
		b.WriteString(fmt.Sprintf("❌ <b>%s</b> failed\n", name))
		b.WriteString(html.EscapeString(rec.Error) + "\n")
	}

	if rec.MirrorError != "" {
		b.WriteString(fmt.Sprintf("⚠️ mirror: %s\n", html.EscapeString(rec.MirrorError)))
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatStatus lists the latest run of every instrument.
func FormatStatus(runs []model.RunRecord) string {
	if len(runs) == 0 {
		return "📦 no runs recorded yet"
	}
	var b strings.Builder
	b.WriteString("📦 <b>Latest runs</b>\n\n")
	for _, r := range runs {
		line := fmt.Sprintf("%s  %s  %s", r.FinishedAt.Format("2006-01-02 15:04"), html.EscapeString(r.Instrument), r.Status)
		if r.Observation != nil {
			line += fmt.Sprintf("  %s %s", r.Observation.Date, r.Observation.PriceString())
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
