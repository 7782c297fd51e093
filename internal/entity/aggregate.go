package entity

import "time"

// Bias is the discrete directional label assigned to an instrument.
type Bias string

const (
	BiasBullish Bias = "Bullish"
	BiasNeutral Bias = "Neutral"
	BiasBearish Bias = "Bearish"
)

// InstrumentUnclassified is the sentinel label for items no instrument
// claimed. Such items are excluded from per-instrument aggregates.
const InstrumentUnclassified = "Other"

// EvidenceItem is one of the top-ranked supporting articles behind an
// aggregate, kept small for rendering.
type EvidenceItem struct {
	Title          string     `json:"title"`
	Link           string     `json:"link"`
	Source         string     `json:"source"`
	PublishedAt    *time.Time `json:"published_at,omitempty"`
	SentimentLabel string     `json:"sentiment_label"`
	SentimentScore float64    `json:"sentiment_score"`
	Weight         float64    `json:"weight"`
}

// InstrumentAggregate is the per-instrument result of one analysis cycle.
// It is rebuilt from scratch every cycle and never partially updated.
type InstrumentAggregate struct {
	Instrument    string         `json:"instrument"`
	Count         int            `json:"count"`
	WeightedScore float64        `json:"weighted_score"`
	MacroEffect   float64        `json:"macro_effect"`
	AdjustedScore float64        `json:"adjusted_score"`
	Bias          Bias           `json:"bias"`
	TopEvidence   []EvidenceItem `json:"top_evidence"`
	Positive      int            `json:"positive"`
	Neutral       int            `json:"neutral"`
	Negative      int            `json:"negative"`
	Explanation   string         `json:"explanation"`
}

// NeutralAggregate returns the well-defined default for an instrument with
// no matching items in the current cycle.
func NeutralAggregate(instrument string) InstrumentAggregate {
	return InstrumentAggregate{
		Instrument:    instrument,
		Count:         0,
		WeightedScore: 0.5,
		MacroEffect:   0,
		AdjustedScore: 0.5,
		Bias:          BiasNeutral,
		TopEvidence:   []EvidenceItem{},
		Explanation:   "No recent news matched this instrument.",
	}
}
