package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"macrodesk/internal/analyzer/config"
	"macrodesk/internal/analyzer/repository"
	"macrodesk/internal/entity"
	"macrodesk/pkg/logger"
)

// Sentiment-value bucket boundaries for evidence counts. Fixed constants,
// not configuration.
const (
	positiveBucketMin = 0.75
	negativeBucketMax = 0.4
)

// How many top-ranked items feed the summarizer and the evidence list.
const (
	topEvidenceCount  = 5
	summaryTitleCount = 6
)

const summarizeTimeout = 20 * time.Second

// Aggregator combines classified, weighted items into per-instrument
// aggregates with a bounded adjusted score and a discrete bias label.
type Aggregator struct {
	cfg        *config.Config
	summarizer repository.SummarizerRepository
	logger     *logger.Logger
}

// NewAggregator creates a new Aggregator. summarizer may be nil, in which
// case explanations fall back to the top item's title.
func NewAggregator(cfg *config.Config, summarizer repository.SummarizerRepository, log *logger.Logger) *Aggregator {
	return &Aggregator{cfg: cfg, summarizer: summarizer, logger: log}
}

// AggregateAll builds one aggregate per configured instrument in declaration
// order. Every configured instrument is always present; unclassified items
// are excluded.
func (a *Aggregator) AggregateAll(ctx context.Context, items []entity.NewsItem) []entity.InstrumentAggregate {
	byInstrument := make(map[string][]entity.NewsItem, len(a.cfg.Analyzer.Instruments))
	for _, item := range items {
		if item.Instrument == entity.InstrumentUnclassified {
			continue
		}
		byInstrument[item.Instrument] = append(byInstrument[item.Instrument], item)
	}

	aggregates := make([]entity.InstrumentAggregate, 0, len(a.cfg.Analyzer.Instruments))
	for _, inst := range a.cfg.Analyzer.Instruments {
		aggregates = append(aggregates, a.Aggregate(ctx, inst, byInstrument[inst.Label]))
	}

	return aggregates
}

// Aggregate computes one instrument's aggregate from its item set. An empty
// set yields the defined neutral default.
func (a *Aggregator) Aggregate(ctx context.Context, inst config.Instrument, items []entity.NewsItem) entity.InstrumentAggregate {
	if len(items) == 0 {
		return entity.NeutralAggregate(inst.Label)
	}

	var weightedSum, totalWeight float64
	for _, item := range items {
		weightedSum += item.Sentiment.Value * item.Weight
		totalWeight += item.Weight
	}
	// Weights are strictly positive, so this is a defensive floor only.
	denominator := totalWeight
	if denominator == 0 {
		denominator = 1.0
	}
	weightedScore := weightedSum / denominator

	var pos, neu, neg int
	for _, item := range items {
		switch {
		case item.Sentiment.Value > positiveBucketMin:
			pos++
		case item.Sentiment.Value < negativeBucketMax:
			neg++
		default:
			neu++
		}
	}

	sorted := make([]entity.NewsItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Weight*sorted[i].Sentiment.Score > sorted[j].Weight*sorted[j].Sentiment.Score
	})

	topEvidence := make([]entity.EvidenceItem, 0, topEvidenceCount)
	for _, item := range sorted {
		if len(topEvidence) >= topEvidenceCount {
			break
		}
		topEvidence = append(topEvidence, entity.EvidenceItem{
			Title:          item.Title,
			Link:           item.Link,
			Source:         item.Source,
			PublishedAt:    item.PublishedAt,
			SentimentLabel: item.Sentiment.Label,
			SentimentScore: item.Sentiment.Score,
			Weight:         item.Weight,
		})
	}

	macroEffect := a.macroEffect(inst, items, denominator)

	adjustedScore := clamp01(weightedScore + a.cfg.Analyzer.MacroInfluence*macroEffect)

	return entity.InstrumentAggregate{
		Instrument:    inst.Label,
		Count:         len(items),
		WeightedScore: weightedScore,
		MacroEffect:   macroEffect,
		AdjustedScore: adjustedScore,
		Bias:          a.biasFor(adjustedScore),
		TopEvidence:   topEvidence,
		Positive:      pos,
		Neutral:       neu,
		Negative:      neg,
		Explanation:   a.explain(ctx, sorted),
	}
}

// macroEffect accumulates the weighted directional contribution of every
// macro event attached to the instrument's items, normalized by the same
// weight sum as the sentiment aggregate. An event on the base currency
// pushes with its signal; one on the quote currency pushes against it.
func (a *Aggregator) macroEffect(inst config.Instrument, items []entity.NewsItem, denominator float64) float64 {
	var sum float64
	for _, item := range items {
		for _, event := range item.MacroEvents {
			var contribution float64
			switch event.Currency {
			case inst.Base:
				contribution = event.Signal
			case inst.Quote:
				contribution = -event.Signal
			default:
				continue
			}
			sum += contribution * item.Weight
		}
	}
	return sum / denominator
}

// biasFor maps an adjusted score onto the discrete bias label. Thresholds
// are boundary inclusive; the gap between them is a deliberate neutral
// dead-band.
func (a *Aggregator) biasFor(adjustedScore float64) entity.Bias {
	switch {
	case adjustedScore >= a.cfg.Analyzer.BullishThreshold:
		return entity.BiasBullish
	case adjustedScore <= a.cfg.Analyzer.BearishThreshold:
		return entity.BiasBearish
	default:
		return entity.BiasNeutral
	}
}

// explain asks the summarizer for a short rationale over the top evidence
// titles, falling back deterministically to the highest-ranked title.
func (a *Aggregator) explain(ctx context.Context, sorted []entity.NewsItem) string {
	fallback := sorted[0].Title

	if a.summarizer == nil {
		return fallback
	}

	titles := make([]string, 0, summaryTitleCount)
	for _, item := range sorted {
		if len(titles) >= summaryTitleCount {
			break
		}
		titles = append(titles, item.Title)
	}

	summarizeCtx, cancel := context.WithTimeout(ctx, summarizeTimeout)
	defer cancel()

	summary, err := a.summarizer.Summarize(summarizeCtx, strings.Join(titles, " "))
	if err != nil {
		a.logger.Warn("Summarizer unavailable, using top title", logger.ErrorField(err))
		return fallback
	}

	return summary
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
