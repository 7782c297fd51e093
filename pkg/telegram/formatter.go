package telegram

import (
	"fmt"
	"strings"

	"macrodesk/internal/entity"
)

// FormatBiasSummary formats the per-instrument aggregates of one cycle into
// a Markdown market summary for Telegram.
func FormatBiasSummary(aggregates []entity.InstrumentAggregate) string {
	var bullish, bearish, neutral []string
	totalItems := 0

	for _, agg := range aggregates {
		totalItems += agg.Count
		switch agg.Bias {
		case entity.BiasBullish:
			bullish = append(bullish, agg.Instrument)
		case entity.BiasBearish:
			bearish = append(bearish, agg.Instrument)
		default:
			neutral = append(neutral, agg.Instrument)
		}
	}

	var b strings.Builder
	b.WriteString("🧠 *Market Bias Summary*\n\n")
	b.WriteString(fmt.Sprintf("📈 *Bullish:* %s\n", joinOrDash(bullish)))
	b.WriteString(fmt.Sprintf("📉 *Bearish:* %s\n", joinOrDash(bearish)))
	b.WriteString(fmt.Sprintf("😐 *Neutral:* %s\n\n", joinOrDash(neutral)))
	b.WriteString(fmt.Sprintf("Based on %d news items across configured sources.", totalItems))

	return b.String()
}

func joinOrDash(instruments []string) string {
	if len(instruments) == 0 {
		return "—"
	}
	return strings.Join(instruments, ", ")
}
