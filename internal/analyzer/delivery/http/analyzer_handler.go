package http

import (
	"net/http"
	"sort"
	"strings"

	"macrodesk/internal/analyzer/dto"
	"macrodesk/internal/analyzer/service"
	"macrodesk/internal/entity"
	"macrodesk/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AnalyzerHandler serves read-only snapshots of the current analysis cycle.
type AnalyzerHandler struct {
	analyzerService service.AnalyzerService
	logger          *logger.Logger
}

// NewAnalyzerHandler creates a new AnalyzerHandler.
func NewAnalyzerHandler(analyzerService service.AnalyzerService, logger *logger.Logger) *AnalyzerHandler {
	return &AnalyzerHandler{analyzerService: analyzerService, logger: logger}
}

// RegisterRoutes registers the analyzer routes to the Echo group.
func (h *AnalyzerHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/aggregates", h.GetAggregates)
	g.GET("/aggregates/:instrument", h.GetAggregate)
	g.GET("/items", h.GetItems)
	g.GET("/events", h.GetEvents)
	g.POST("/refresh", h.Refresh)
}

// GetAggregates returns every configured instrument's aggregate for the
// current cycle.
func (h *AnalyzerHandler) GetAggregates(c echo.Context) error {
	snapshot, err := h.analyzerService.GetSnapshot(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to load snapshot", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load snapshot"})
	}
	return c.JSON(http.StatusOK, snapshot.Aggregates)
}

// GetAggregate returns one instrument's aggregate. Instrument labels contain
// a slash, so the path value uses a dash (e.g. EUR-USD).
func (h *AnalyzerHandler) GetAggregate(c echo.Context) error {
	label := denormalizeInstrument(c.Param("instrument"))

	snapshot, err := h.analyzerService.GetSnapshot(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to load snapshot", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load snapshot"})
	}

	for _, agg := range snapshot.Aggregates {
		if agg.Instrument == label {
			return c.JSON(http.StatusOK, agg)
		}
	}
	return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Unknown instrument"})
}

// GetItems returns the classified item list for per-item drill-down, newest
// first, optionally filtered by the instrument query parameter.
func (h *AnalyzerHandler) GetItems(c echo.Context) error {
	snapshot, err := h.analyzerService.GetSnapshot(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to load snapshot", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load snapshot"})
	}

	items := snapshot.Items
	if instrument := c.QueryParam("instrument"); instrument != "" {
		label := denormalizeInstrument(instrument)
		filtered := make([]entity.NewsItem, 0, len(items))
		for _, item := range items {
			if item.Instrument == label {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}
	return c.JSON(http.StatusOK, sortedByPublishTime(items))
}

// sortedByPublishTime orders items newest first; items without a publish
// time sort last.
func sortedByPublishTime(items []entity.NewsItem) []entity.NewsItem {
	sorted := make([]entity.NewsItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].PublishedAt, sorted[j].PublishedAt
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.After(*b)
	})
	return sorted
}

// GetEvents returns upcoming economic calendar events. Without an impact
// query parameter only high and medium impact events are returned; impact
// may be set to high, medium, low, or all.
func (h *AnalyzerHandler) GetEvents(c echo.Context) error {
	events, err := h.analyzerService.GetCalendarEvents(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to fetch calendar events", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to fetch calendar events"})
	}

	var keep func(entity.Impact) bool
	switch strings.ToLower(c.QueryParam("impact")) {
	case "":
		keep = func(i entity.Impact) bool { return i == entity.ImpactHigh || i == entity.ImpactMedium }
	case "all":
		keep = func(entity.Impact) bool { return true }
	case "high":
		keep = func(i entity.Impact) bool { return i == entity.ImpactHigh }
	case "medium":
		keep = func(i entity.Impact) bool { return i == entity.ImpactMedium }
	case "low":
		keep = func(i entity.Impact) bool { return i == entity.ImpactLow }
	default:
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Unknown impact filter"})
	}

	filtered := make([]entity.CalendarEvent, 0, len(events))
	for _, event := range events {
		if keep(event.Impact) {
			filtered = append(filtered, event)
		}
	}
	return c.JSON(http.StatusOK, filtered)
}

// Refresh triggers an immediate analysis cycle and returns its snapshot.
func (h *AnalyzerHandler) Refresh(c echo.Context) error {
	snapshot, err := h.analyzerService.RunCycle(c.Request().Context())
	if err != nil {
		h.logger.Error("Manual refresh failed", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, snapshot)
}

func denormalizeInstrument(param string) string {
	return strings.ReplaceAll(param, "-", "/")
}
