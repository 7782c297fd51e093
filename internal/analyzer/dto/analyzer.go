package dto

import (
	"time"

	"macrodesk/internal/entity"
)

// Snapshot is the read-only output of one analysis cycle: every configured
// instrument's aggregate plus the classified item list for drill-down.
type Snapshot struct {
	GeneratedAt time.Time                    `json:"generated_at"`
	Aggregates  []entity.InstrumentAggregate `json:"aggregates"`
	Items       []entity.NewsItem            `json:"items"`
}

// ErrorResponse represents a generic error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}
