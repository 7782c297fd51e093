package repository

import (
	"context"
	"strings"

	"macrodesk/internal/analyzer/config"
	"macrodesk/internal/entity"
	"macrodesk/pkg/logger"
	"macrodesk/pkg/utils"

	"github.com/mmcdole/gofeed"
)

// calendarRepository parses the economic calendar feed into events. Calendar
// entries encode their impact level in the title, e.g.
// "USD Non-Farm Payrolls (High Impact Expected)".
type calendarRepository struct {
	cfg    *config.Config
	logger *logger.Logger
}

// NewCalendarRepository creates a new CalendarRepository over the configured
// calendar feed.
func NewCalendarRepository(cfg *config.Config, log *logger.Logger) CalendarRepository {
	return &calendarRepository{cfg: cfg, logger: log}
}

// FetchEvents fetches the calendar feed and returns its events in feed
// order, capped at the configured maximum.
func (r *calendarRepository) FetchEvents(ctx context.Context) ([]entity.CalendarEvent, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, r.cfg.Analyzer.FetchTimeout)
	defer cancel()

	fp := gofeed.NewParser()
	parsed, err := fp.ParseURLWithContext(r.cfg.Analyzer.CalendarFeedURL, fetchCtx)
	if err != nil {
		return nil, err
	}

	maxEvents := r.cfg.Analyzer.CalendarMaxEvents
	var events []entity.CalendarEvent
	for _, entry := range parsed.Items {
		if len(events) >= maxEvents {
			break
		}

		title := utils.CleanText(entry.Title)
		if title == "" {
			continue
		}

		events = append(events, entity.CalendarEvent{
			Title:    cleanEventTitle(title),
			Currency: eventCurrency(title),
			Impact:   eventImpact(title),
			Time:     publishedTime(entry),
			Link:     entry.Link,
		})
	}

	r.logger.Info("Fetched calendar feed",
		logger.IntField("events", len(events)),
	)

	return events, nil
}

// eventImpact derives the impact level from the entry title. Entries without
// an explicit marker are treated as low impact.
func eventImpact(title string) entity.Impact {
	lowered := strings.ToLower(title)
	switch {
	case strings.Contains(lowered, "high impact"):
		return entity.ImpactHigh
	case strings.Contains(lowered, "medium impact"):
		return entity.ImpactMedium
	default:
		return entity.ImpactLow
	}
}

// calendarCurrencies are the currency codes the calendar feed prefixes its
// entry titles with.
var calendarCurrencies = []string{"USD", "EUR", "GBP", "JPY", "CAD", "AUD", "CHF", "NZD"}

// eventCurrency picks the currency code mentioned in the entry title, or
// "Other" when none is.
func eventCurrency(title string) string {
	lowered := strings.ToLower(title)
	for _, code := range calendarCurrencies {
		if strings.Contains(lowered, strings.ToLower(code)) {
			return code
		}
	}
	return "Other"
}

// cleanEventTitle strips the feed's impact annotation so the title reads as
// the bare event name.
func cleanEventTitle(title string) string {
	for _, marker := range []string{
		"(High Impact Expected)", "(Medium Impact Expected)", "(Low Impact Expected)",
		"High Impact Expected", "Medium Impact Expected", "Low Impact Expected",
	} {
		title = strings.ReplaceAll(title, marker, "")
	}
	return strings.TrimSpace(title)
}
