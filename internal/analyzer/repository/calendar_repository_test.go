package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"macrodesk/internal/analyzer/config"
	"macrodesk/internal/entity"
	"macrodesk/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const calendarFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Economic Calendar</title>
    <item>
      <title>USD Non-Farm Payrolls (High Impact Expected)</title>
      <link>https://example.com/nfp</link>
      <pubDate>Fri, 04 Sep 2026 12:30:00 GMT</pubDate>
    </item>
    <item>
      <title>EUR German CPI (Medium Impact Expected)</title>
      <link>https://example.com/cpi</link>
      <pubDate>Mon, 07 Sep 2026 06:00:00 GMT</pubDate>
    </item>
    <item>
      <title>AUD Building Permits (Low Impact Expected)</title>
      <link>https://example.com/permits</link>
    </item>
    <item>
      <title>Bank Holiday</title>
      <link>https://example.com/holiday</link>
    </item>
  </channel>
</rss>`

func newCalendarServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(calendarFeedXML))
	}))
	t.Cleanup(server.Close)
	return server
}

func newCalendarTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("error", "console")
	require.NoError(t, err)
	return log
}

func TestCalendarRepository_FetchEvents(t *testing.T) {
	server := newCalendarServer(t)

	cfg := config.Default()
	cfg.Analyzer.CalendarFeedURL = server.URL
	repo := NewCalendarRepository(cfg, newCalendarTestLogger(t))

	events, err := repo.FetchEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 4)

	nfp := events[0]
	assert.Equal(t, "USD Non-Farm Payrolls", nfp.Title)
	assert.Equal(t, "USD", nfp.Currency)
	assert.Equal(t, entity.ImpactHigh, nfp.Impact)
	require.NotNil(t, nfp.Time)
	assert.Equal(t, "https://example.com/nfp", nfp.Link)

	cpi := events[1]
	assert.Equal(t, "EUR German CPI", cpi.Title)
	assert.Equal(t, "EUR", cpi.Currency)
	assert.Equal(t, entity.ImpactMedium, cpi.Impact)

	permits := events[2]
	assert.Equal(t, "AUD Building Permits", permits.Title)
	assert.Equal(t, "AUD", permits.Currency)
	assert.Equal(t, entity.ImpactLow, permits.Impact)
	assert.Nil(t, permits.Time)

	// Entries without an impact marker or currency prefix still come
	// through, as low impact.
	holiday := events[3]
	assert.Equal(t, "Bank Holiday", holiday.Title)
	assert.Equal(t, "Other", holiday.Currency)
	assert.Equal(t, entity.ImpactLow, holiday.Impact)
}

func TestCalendarRepository_MaxEventsCap(t *testing.T) {
	server := newCalendarServer(t)

	cfg := config.Default()
	cfg.Analyzer.CalendarFeedURL = server.URL
	cfg.Analyzer.CalendarMaxEvents = 2
	repo := NewCalendarRepository(cfg, newCalendarTestLogger(t))

	events, err := repo.FetchEvents(context.Background())
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestCalendarRepository_FeedUnreachable(t *testing.T) {
	cfg := config.Default()
	cfg.Analyzer.CalendarFeedURL = "http://127.0.0.1:1/nope"
	repo := NewCalendarRepository(cfg, newCalendarTestLogger(t))

	_, err := repo.FetchEvents(context.Background())
	assert.Error(t, err)
}
