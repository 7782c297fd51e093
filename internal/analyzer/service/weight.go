package service

import (
	"math"
	"time"

	"macrodesk/internal/analyzer/config"
)

// Recency weight for items whose publish time is unknown. Heavily
// discounted but never zero.
const unknownAgeWeight = 0.2

// Weigher converts (source, publish time) into a scalar weight combining
// source trust and exponential recency decay.
type Weigher struct {
	cfg *config.Config
}

// NewWeigher creates a new Weigher.
func NewWeigher(cfg *config.Config) *Weigher {
	return &Weigher{cfg: cfg}
}

// Weight returns sourceWeight * recencyWeight. Both factors are strictly
// positive, so the result is never zero or negative.
func (w *Weigher) Weight(source string, publishedAt *time.Time, now time.Time) float64 {
	return w.cfg.Analyzer.SourceWeight(source) * w.recencyWeight(publishedAt, now)
}

// recencyWeight decays exponentially with age, calibrated to 1.0 at age
// zero and 0.5 at the configured half-life.
func (w *Weigher) recencyWeight(publishedAt *time.Time, now time.Time) float64 {
	if publishedAt == nil {
		return unknownAgeWeight
	}

	ageHours := math.Max(now.Sub(*publishedAt).Hours(), 0)
	lambda := math.Log(0.5) / w.cfg.Analyzer.RecencyHalfLifeHours
	return math.Exp(lambda * ageHours)
}
