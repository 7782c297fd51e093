package service

import (
	"context"
	"errors"
	"testing"

	"macrodesk/internal/analyzer/config"
	"macrodesk/internal/analyzer/dto"
	"macrodesk/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTopicRepo struct {
	rankFn func(ctx context.Context, texts []string, labels []string) ([]dto.ZeroShotResult, error)
}

func (f *fakeTopicRepo) RankLabels(ctx context.Context, texts []string, labels []string) ([]dto.ZeroShotResult, error) {
	return f.rankFn(ctx, texts, labels)
}

func TestClassifier_MatchKeywords(t *testing.T) {
	cfg := config.Default()
	c := NewClassifier(cfg, nil, newTestLogger(t))

	tests := []struct {
		name       string
		text       string
		instrument string
		matched    bool
	}{
		{name: "ecb maps to eurusd", text: "ECB hikes rates as inflation beats expectations", instrument: "EUR/USD", matched: true},
		{name: "case insensitive", text: "BANK OF ENGLAND holds steady", instrument: "GBP/USD", matched: true},
		{name: "gold", text: "Spot gold climbs to a record", instrument: "XAU/USD", matched: true},
		{name: "no match", text: "Local council approves new bridge", matched: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cls, matched := c.MatchKeywords(tt.text)
			assert.Equal(t, tt.matched, matched)
			if tt.matched {
				assert.Equal(t, entity.ClassificationMatched, cls.Kind)
				assert.Equal(t, tt.instrument, cls.Instrument)
			} else {
				assert.Equal(t, entity.ClassificationUnclassified, cls.Kind)
			}
		})
	}
}

func TestClassifier_UppercaseConfiguredKeywords(t *testing.T) {
	cfg := config.Default()
	// Users write lexicons in YAML in whatever case they like.
	cfg.Analyzer.Instruments[0].Keywords = []string{"ECB", "Euro"}
	c := NewClassifier(cfg, nil, newTestLogger(t))

	cls, matched := c.MatchKeywords("ecb hikes rates as inflation beats expectations")
	require.True(t, matched)
	assert.Equal(t, "EUR/USD", cls.Instrument)
}

func TestClassifier_DeclarationOrderBreaksTies(t *testing.T) {
	cfg := config.Default()
	c := NewClassifier(cfg, nil, newTestLogger(t))

	// "euro" (EUR/USD) and "pound" (GBP/USD) both appear; EUR/USD is
	// declared first so it wins regardless of match position.
	cls, matched := c.MatchKeywords("pound slips against the euro")
	require.True(t, matched)
	assert.Equal(t, "EUR/USD", cls.Instrument)
}

func TestClassifier_Deterministic(t *testing.T) {
	cfg := config.Default()
	c := NewClassifier(cfg, nil, newTestLogger(t))

	const text = "Yen weakens as Bank of Japan stays dovish"
	first, _ := c.MatchKeywords(text)
	for i := 0; i < 50; i++ {
		cls, _ := c.MatchKeywords(text)
		assert.Equal(t, first, cls)
	}
}

func TestClassifier_FallbackConfidenceThreshold(t *testing.T) {
	cfg := config.Default()

	topicRepo := &fakeTopicRepo{
		rankFn: func(_ context.Context, texts []string, labels []string) ([]dto.ZeroShotResult, error) {
			results := make([]dto.ZeroShotResult, len(texts))
			for i := range texts {
				results[i] = dto.ZeroShotResult{
					Labels: []string{"USD/JPY", "EUR/USD"},
					Scores: []float64{0.29, 0.2},
				}
			}
			results[len(results)-1].Scores = []float64{0.9, 0.05}
			return results, nil
		},
	}

	c := NewClassifier(cfg, topicRepo, newTestLogger(t))
	items := []entity.NewsItem{
		{Text: "Commodity markets quiet ahead of data"},
		{Text: "Equities drift with no clear driver"},
	}

	classifications := c.ClassifyAll(context.Background(), items)
	require.Len(t, classifications, 2)

	// Below 0.3 stays unclassified.
	assert.Equal(t, entity.ClassificationUnclassified, classifications[0].Kind)
	assert.Equal(t, entity.InstrumentUnclassified, classifications[0].Label())

	// At/above 0.3 the top label is adopted.
	assert.Equal(t, entity.ClassificationFallback, classifications[1].Kind)
	assert.Equal(t, "USD/JPY", classifications[1].Instrument)
	assert.InDelta(t, 0.9, classifications[1].Confidence, 1e-9)
}

func TestClassifier_TopicRepoFailureKeepsItemsUnclassified(t *testing.T) {
	cfg := config.Default()

	topicRepo := &fakeTopicRepo{
		rankFn: func(context.Context, []string, []string) ([]dto.ZeroShotResult, error) {
			return nil, errors.New("model loading")
		},
	}

	c := NewClassifier(cfg, topicRepo, newTestLogger(t))
	items := []entity.NewsItem{{Text: "nothing relevant here"}}

	classifications := c.ClassifyAll(context.Background(), items)
	require.Len(t, classifications, 1)
	assert.Equal(t, entity.ClassificationUnclassified, classifications[0].Kind)
}

func TestClassifier_MisalignedFallbackBatchDiscarded(t *testing.T) {
	cfg := config.Default()

	topicRepo := &fakeTopicRepo{
		rankFn: func(context.Context, []string, []string) ([]dto.ZeroShotResult, error) {
			// One result for two inputs.
			return []dto.ZeroShotResult{{Labels: []string{"EUR/USD"}, Scores: []float64{0.99}}}, nil
		},
	}

	c := NewClassifier(cfg, topicRepo, newTestLogger(t))
	items := []entity.NewsItem{
		{Text: "nothing relevant one"},
		{Text: "nothing relevant two"},
	}

	classifications := c.ClassifyAll(context.Background(), items)
	require.Len(t, classifications, 2)
	for _, cls := range classifications {
		assert.Equal(t, entity.ClassificationUnclassified, cls.Kind)
	}
}

func TestClassifier_KeywordMatchesSkipTopicRepo(t *testing.T) {
	cfg := config.Default()

	called := false
	topicRepo := &fakeTopicRepo{
		rankFn: func(_ context.Context, texts []string, _ []string) ([]dto.ZeroShotResult, error) {
			called = true
			return make([]dto.ZeroShotResult, len(texts)), nil
		},
	}

	c := NewClassifier(cfg, topicRepo, newTestLogger(t))
	items := []entity.NewsItem{{Text: "ECB press conference today"}}

	classifications := c.ClassifyAll(context.Background(), items)
	assert.False(t, called)
	assert.Equal(t, entity.ClassificationMatched, classifications[0].Kind)
}
