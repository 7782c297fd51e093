package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"macrodesk/internal/analyzer/dto"
	"macrodesk/internal/entity"
	"macrodesk/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnalyzerService struct {
	snapshot *dto.Snapshot
	events   []entity.CalendarEvent
	err      error
	cycled   bool
}

func (f *fakeAnalyzerService) RunCycle(context.Context) (*dto.Snapshot, error) {
	f.cycled = true
	return f.snapshot, f.err
}

func (f *fakeAnalyzerService) GetSnapshot(context.Context) (*dto.Snapshot, error) {
	return f.snapshot, f.err
}

func (f *fakeAnalyzerService) GetCalendarEvents(context.Context) ([]entity.CalendarEvent, error) {
	return f.events, f.err
}

func (f *fakeAnalyzerService) Start(context.Context) {}
func (f *fakeAnalyzerService) Stop()                 {}

func testSnapshot() *dto.Snapshot {
	return &dto.Snapshot{
		GeneratedAt: time.Now().UTC(),
		Aggregates: []entity.InstrumentAggregate{
			{Instrument: "EUR/USD", Bias: entity.BiasBullish, AdjustedScore: 0.7, Count: 3},
			{Instrument: "GBP/USD", Bias: entity.BiasNeutral, AdjustedScore: 0.5},
		},
		Items: []entity.NewsItem{
			{Title: "euro rallies", Instrument: "EUR/USD"},
			{Title: "cable flat", Instrument: "GBP/USD"},
		},
	}
}

func setupHandler(t *testing.T, svc *fakeAnalyzerService) (*echo.Echo, *AnalyzerHandler) {
	t.Helper()
	log, err := logger.New("error", "console")
	require.NoError(t, err)

	e := echo.New()
	h := NewAnalyzerHandler(svc, log)
	h.RegisterRoutes(e.Group("/api/v1"))
	return e, h
}

func TestGetAggregates(t *testing.T) {
	e, _ := setupHandler(t, &fakeAnalyzerService{snapshot: testSnapshot()})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/aggregates", nil)
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var aggregates []entity.InstrumentAggregate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &aggregates))
	require.Len(t, aggregates, 2)
	assert.Equal(t, "EUR/USD", aggregates[0].Instrument)
}

func TestGetAggregates_ServiceError(t *testing.T) {
	e, _ := setupHandler(t, &fakeAnalyzerService{err: errors.New("redis down")})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/aggregates", nil)
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetAggregate_DashedInstrument(t *testing.T) {
	e, _ := setupHandler(t, &fakeAnalyzerService{snapshot: testSnapshot()})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/aggregates/EUR-USD", nil)
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var agg entity.InstrumentAggregate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &agg))
	assert.Equal(t, "EUR/USD", agg.Instrument)
	assert.Equal(t, entity.BiasBullish, agg.Bias)
}

func TestGetAggregate_Unknown(t *testing.T) {
	e, _ := setupHandler(t, &fakeAnalyzerService{snapshot: testSnapshot()})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/aggregates/XAU-USD", nil)
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetItems_FilterByInstrument(t *testing.T) {
	e, _ := setupHandler(t, &fakeAnalyzerService{snapshot: testSnapshot()})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/items?instrument=EUR-USD", nil)
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var items []entity.NewsItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "euro rallies", items[0].Title)
}

func TestGetItems_SortedNewestFirst(t *testing.T) {
	now := time.Now().UTC()
	older := now.Add(-2 * time.Hour)
	newer := now.Add(-10 * time.Minute)

	snapshot := &dto.Snapshot{
		GeneratedAt: now,
		Items: []entity.NewsItem{
			{Title: "no timestamp", Instrument: "EUR/USD"},
			{Title: "older", Instrument: "EUR/USD", PublishedAt: &older},
			{Title: "newer", Instrument: "EUR/USD", PublishedAt: &newer},
		},
	}
	e, _ := setupHandler(t, &fakeAnalyzerService{snapshot: snapshot})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/items", nil)
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var items []entity.NewsItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 3)
	assert.Equal(t, "newer", items[0].Title)
	assert.Equal(t, "older", items[1].Title)
	assert.Equal(t, "no timestamp", items[2].Title)
}

func TestGetEvents_DefaultFiltersToHighAndMedium(t *testing.T) {
	svc := &fakeAnalyzerService{events: []entity.CalendarEvent{
		{Title: "Non-Farm Payrolls", Currency: "USD", Impact: entity.ImpactHigh},
		{Title: "German CPI", Currency: "EUR", Impact: entity.ImpactMedium},
		{Title: "Building Permits", Currency: "AUD", Impact: entity.ImpactLow},
	}}
	e, _ := setupHandler(t, svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var events []entity.CalendarEvent
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	require.Len(t, events, 2)
	assert.Equal(t, "Non-Farm Payrolls", events[0].Title)
	assert.Equal(t, "German CPI", events[1].Title)
}

func TestGetEvents_ImpactFilter(t *testing.T) {
	svc := &fakeAnalyzerService{events: []entity.CalendarEvent{
		{Title: "Non-Farm Payrolls", Impact: entity.ImpactHigh},
		{Title: "Building Permits", Impact: entity.ImpactLow},
	}}
	e, _ := setupHandler(t, svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/events?impact=all", nil)
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var events []entity.CalendarEvent
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	assert.Len(t, events, 2)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/events?impact=low", nil)
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	require.Len(t, events, 1)
	assert.Equal(t, "Building Permits", events[0].Title)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/events?impact=bogus", nil)
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefresh(t *testing.T) {
	svc := &fakeAnalyzerService{snapshot: testSnapshot()}
	e, _ := setupHandler(t, svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/refresh", nil)
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, svc.cycled)
}
