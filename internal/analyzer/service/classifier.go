package service

import (
	"context"
	"strings"

	"macrodesk/internal/analyzer/config"
	"macrodesk/internal/analyzer/repository"
	"macrodesk/internal/entity"
	"macrodesk/pkg/logger"
	"macrodesk/pkg/utils"
)

// Classifier assigns each news item to an instrument. The keyword pass is
// deterministic: instruments are scanned in declaration order and the first
// keyword found as a case-insensitive substring wins. Items no keyword
// claims are offered to the external topic classifier.
type Classifier struct {
	cfg       *config.Config
	topicRepo repository.TopicRepository
	logger    *logger.Logger
}

// NewClassifier creates a new Classifier. topicRepo may be nil, in which
// case unmatched items simply stay unclassified.
func NewClassifier(cfg *config.Config, topicRepo repository.TopicRepository, log *logger.Logger) *Classifier {
	return &Classifier{cfg: cfg, topicRepo: topicRepo, logger: log}
}

// MatchKeywords runs the keyword pass for one text. The boolean reports
// whether any instrument claimed it.
func (c *Classifier) MatchKeywords(text string) (entity.Classification, bool) {
	lowered := strings.ToLower(text)
	for _, inst := range c.cfg.Analyzer.Instruments {
		for _, keyword := range inst.Keywords {
			// Keywords come from configuration in whatever case the user
			// wrote them, so both sides are lowered.
			if strings.Contains(lowered, strings.ToLower(keyword)) {
				return entity.Classification{
					Kind:       entity.ClassificationMatched,
					Instrument: inst.Label,
				}, true
			}
		}
	}
	return entity.Classification{Kind: entity.ClassificationUnclassified}, false
}

// ClassifyAll classifies a batch of items, returning one Classification per
// item in input order. Topic classifier failure leaves the affected items
// unclassified but never aborts the batch.
func (c *Classifier) ClassifyAll(ctx context.Context, items []entity.NewsItem) []entity.Classification {
	classifications := make([]entity.Classification, len(items))

	var unmatchedIdx []int
	var unmatchedTexts []string

	for i, item := range items {
		cls, matched := c.MatchKeywords(item.Text)
		classifications[i] = cls
		if !matched {
			unmatchedIdx = append(unmatchedIdx, i)
			unmatchedTexts = append(unmatchedTexts, item.Text)
		}
	}

	if c.topicRepo == nil || len(unmatchedIdx) == 0 {
		return classifications
	}

	labels := c.cfg.Analyzer.InstrumentLabels()
	ranked, err := c.topicRepo.RankLabels(ctx, unmatchedTexts, labels)
	if err != nil {
		c.logger.Warn("Topic classifier unavailable, keeping items unclassified",
			logger.IntField("items", len(unmatchedIdx)),
			logger.ErrorField(err),
		)
		return classifications
	}

	if len(ranked) != len(unmatchedIdx) {
		// Misaligned results would attach the wrong label to every item, so
		// the whole fallback batch is discarded.
		c.logger.Error("Topic classifier result count mismatch, discarding fallback batch",
			logger.IntField("got", len(ranked)),
			logger.IntField("want", len(unmatchedIdx)),
		)
		return classifications
	}

	for j, res := range ranked {
		if len(res.Labels) == 0 || len(res.Scores) == 0 {
			continue
		}
		if res.Scores[0] < c.cfg.Analyzer.MinTopicConfidence {
			continue
		}
		if !utils.ContainsString(labels, res.Labels[0]) {
			continue
		}
		classifications[unmatchedIdx[j]] = entity.Classification{
			Kind:       entity.ClassificationFallback,
			Instrument: res.Labels[0],
			Confidence: res.Scores[0],
		}
	}

	return classifications
}
