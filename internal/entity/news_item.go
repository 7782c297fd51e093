package entity

import (
	"strings"
	"time"
)

// NewsItem represents a single cleaned news article flowing through one
// analysis cycle. Items are built fresh each cycle and never mutated after
// the weighting stage.
type NewsItem struct {
	Source      string       `json:"source"`
	Title       string       `json:"title"`
	Summary     string       `json:"summary"`
	Link        string       `json:"link"`
	Text        string       `json:"text"`
	PublishedAt *time.Time   `json:"published_at,omitempty"`
	Instrument  string       `json:"instrument"`
	Sentiment   Sentiment    `json:"sentiment"`
	MacroEvents []MacroEvent `json:"macro_events,omitempty"`
	Weight      float64      `json:"weight"`
}

// Sentiment holds the classifier output for one item plus the normalized
// polarity derived from its label.
type Sentiment struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
	Value float64 `json:"value"`
}

// SentimentValueFromLabel maps a classifier label to a polarity in [0,1].
// Unknown labels are treated as neutral.
func SentimentValueFromLabel(label string) float64 {
	lab := strings.ToLower(label)
	switch {
	case strings.Contains(lab, "pos"):
		return 1.0
	case strings.Contains(lab, "neg"):
		return 0.0
	default:
		return 0.5
	}
}
