package service

import (
	"context"
	"fmt"
	"time"

	"macrodesk/internal/analyzer/config"
	"macrodesk/internal/analyzer/dto"
	"macrodesk/internal/analyzer/repository"
	"macrodesk/internal/entity"
	"macrodesk/pkg/logger"
	"macrodesk/pkg/telegram"

	"github.com/robfig/cron/v3"
)

// AnalyzerService runs the analysis pipeline and exposes its snapshots.
type AnalyzerService interface {
	// RunCycle executes one full batch pass: fetch, classify, detect macro
	// events, score sentiment, weight, aggregate, publish.
	RunCycle(ctx context.Context) (*dto.Snapshot, error)
	// GetSnapshot returns the latest published snapshot. Before the first
	// cycle completes it returns the neutral-default aggregate set.
	GetSnapshot(ctx context.Context) (*dto.Snapshot, error)
	// GetCalendarEvents returns the upcoming economic events from the
	// calendar feed.
	GetCalendarEvents(ctx context.Context) ([]entity.CalendarEvent, error)
	// Start runs an initial cycle and schedules periodic refreshes.
	Start(ctx context.Context)
	// Stop halts the refresh schedule.
	Stop()
}

type analyzerService struct {
	cfg           *config.Config
	logger        *logger.Logger
	feedRepo      repository.FeedRepository
	sentimentRepo repository.SentimentRepository
	snapshotRepo  repository.SnapshotRepository
	calendarRepo  repository.CalendarRepository
	notifier      telegram.Notifier

	classifier *Classifier
	detector   *MacroDetector
	weigher    *Weigher
	aggregator *Aggregator

	scheduler *cron.Cron
}

// NewAnalyzerService wires the pipeline stages together.
func NewAnalyzerService(
	cfg *config.Config,
	log *logger.Logger,
	feedRepo repository.FeedRepository,
	sentimentRepo repository.SentimentRepository,
	topicRepo repository.TopicRepository,
	summarizerRepo repository.SummarizerRepository,
	snapshotRepo repository.SnapshotRepository,
	calendarRepo repository.CalendarRepository,
	notifier telegram.Notifier,
) AnalyzerService {
	return &analyzerService{
		cfg:           cfg,
		logger:        log,
		feedRepo:      feedRepo,
		sentimentRepo: sentimentRepo,
		snapshotRepo:  snapshotRepo,
		calendarRepo:  calendarRepo,
		notifier:      notifier,
		classifier:    NewClassifier(cfg, topicRepo, log),
		detector:      NewMacroDetector(cfg),
		weigher:       NewWeigher(cfg),
		aggregator:    NewAggregator(cfg, summarizerRepo, log),
	}
}

// Start runs one cycle immediately, then schedules periodic refreshes.
func (s *analyzerService) Start(ctx context.Context) {
	if _, err := s.RunCycle(ctx); err != nil {
		s.logger.Error("Initial analysis cycle failed", logger.ErrorField(err))
	}

	s.scheduler = cron.New()
	_, err := s.scheduler.AddFunc(fmt.Sprintf("@every %s", s.cfg.Analyzer.RefreshInterval), func() {
		if _, err := s.RunCycle(ctx); err != nil {
			s.logger.Error("Analysis cycle failed", logger.ErrorField(err))
		}
	})
	if err != nil {
		s.logger.Error("Failed to schedule refresh cycle", logger.ErrorField(err))
		return
	}
	s.scheduler.Start()

	s.logger.Info("Analyzer refresh schedule started",
		logger.DurationField("interval", s.cfg.Analyzer.RefreshInterval),
	)
}

// Stop halts the refresh schedule and waits for a running cycle to finish.
func (s *analyzerService) Stop() {
	if s.scheduler != nil {
		<-s.scheduler.Stop().Done()
	}
}

func (s *analyzerService) RunCycle(ctx context.Context) (*dto.Snapshot, error) {
	started := time.Now()
	now := started.UTC()

	items, err := s.feedRepo.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feeds: %w", err)
	}

	if len(items) == 0 {
		// Total absence of input is an empty-result condition, not an error:
		// every instrument still gets its neutral default.
		s.logger.Warn("No news items fetched from any source")
		snapshot := s.neutralSnapshot(now)
		s.publish(ctx, snapshot)
		return snapshot, nil
	}

	classifications := s.classifier.ClassifyAll(ctx, items)
	for i := range items {
		items[i].Instrument = classifications[i].Label()
		items[i].MacroEvents = s.detector.Detect(items[i].Text)
	}

	if err := s.attachSentiment(ctx, items); err != nil {
		return nil, err
	}

	for i := range items {
		items[i].Weight = s.weigher.Weight(items[i].Source, items[i].PublishedAt, now)
	}

	snapshot := &dto.Snapshot{
		GeneratedAt: now,
		Aggregates:  s.aggregator.AggregateAll(ctx, items),
		Items:       items,
	}

	s.publish(ctx, snapshot)

	s.logger.Info("Analysis cycle complete",
		logger.IntField("items", len(items)),
		logger.IntField("instruments", len(snapshot.Aggregates)),
		logger.DurationField("took", time.Since(started)),
	)

	return snapshot, nil
}

// attachSentiment zips classifier results onto items strictly by index. A
// count mismatch is a hard integrity fault for the batch; the pipeline then
// degrades to single-item calls, and a failed single call leaves the item
// neutral.
func (s *analyzerService) attachSentiment(ctx context.Context, items []entity.NewsItem) error {
	texts := make([]string, len(items))
	for i, item := range items {
		texts[i] = item.Text
	}

	results, err := s.sentimentRepo.ClassifyBatch(ctx, texts)
	if err == nil && len(results) != len(items) {
		err = fmt.Errorf("sentiment batch misaligned: got %d results for %d items", len(results), len(items))
	}
	if err != nil {
		s.logger.Warn("Sentiment batch failed, falling back to single-item mode", logger.ErrorField(err))
		return s.attachSentimentSingle(ctx, items)
	}

	for i := range items {
		items[i].Sentiment = entity.Sentiment{
			Label: results[i].Label,
			Score: results[i].Score,
			Value: entity.SentimentValueFromLabel(results[i].Label),
		}
	}
	return nil
}

func (s *analyzerService) attachSentimentSingle(ctx context.Context, items []entity.NewsItem) error {
	for i := range items {
		result, err := s.sentimentRepo.ClassifySingle(ctx, items[i].Text)
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("sentiment classification interrupted: %w", ctx.Err())
			}
			s.logger.Warn("Sentiment call failed, item stays neutral",
				logger.StringField("title", items[i].Title),
				logger.ErrorField(err),
			)
			result.Label = "neutral"
			result.Score = 0
		}
		items[i].Sentiment = entity.Sentiment{
			Label: result.Label,
			Score: result.Score,
			Value: entity.SentimentValueFromLabel(result.Label),
		}
	}
	return nil
}

func (s *analyzerService) GetSnapshot(ctx context.Context) (*dto.Snapshot, error) {
	snapshot, err := s.snapshotRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return s.neutralSnapshot(time.Now().UTC()), nil
	}
	return snapshot, nil
}

// GetCalendarEvents fetches the calendar feed on demand. Calendar events are
// not part of the cycle snapshot; the feed is its own source of truth.
func (s *analyzerService) GetCalendarEvents(ctx context.Context) ([]entity.CalendarEvent, error) {
	events, err := s.calendarRepo.FetchEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch calendar events: %w", err)
	}
	return events, nil
}

func (s *analyzerService) neutralSnapshot(now time.Time) *dto.Snapshot {
	aggregates := make([]entity.InstrumentAggregate, 0, len(s.cfg.Analyzer.Instruments))
	for _, inst := range s.cfg.Analyzer.Instruments {
		aggregates = append(aggregates, entity.NeutralAggregate(inst.Label))
	}
	return &dto.Snapshot{
		GeneratedAt: now,
		Aggregates:  aggregates,
		Items:       []entity.NewsItem{},
	}
}

// publish stores the snapshot and sends the bias summary. Both are
// best-effort: failures are logged, never fatal to the cycle.
func (s *analyzerService) publish(ctx context.Context, snapshot *dto.Snapshot) {
	if err := s.snapshotRepo.Save(ctx, snapshot); err != nil {
		s.logger.Error("Failed to store snapshot", logger.ErrorField(err))
	}

	if s.notifier != nil {
		if err := s.notifier.SendMessage(telegram.FormatBiasSummary(snapshot.Aggregates)); err != nil {
			s.logger.Error("Failed to send bias summary", logger.ErrorField(err))
		}
	}
}
