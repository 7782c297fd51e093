package entity

import "time"

// Impact is the expected market impact level of a scheduled economic event.
type Impact string

const (
	ImpactHigh   Impact = "High"
	ImpactMedium Impact = "Medium"
	ImpactLow    Impact = "Low"
)

// CalendarEvent is one upcoming economic release parsed from the calendar
// feed. Time is optional; feeds omit it for tentative entries.
type CalendarEvent struct {
	Title    string     `json:"title"`
	Currency string     `json:"currency"`
	Impact   Impact     `json:"impact"`
	Time     *time.Time `json:"time,omitempty"`
	Link     string     `json:"link,omitempty"`
}
