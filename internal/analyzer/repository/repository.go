package repository

import (
	"context"

	"macrodesk/internal/analyzer/dto"
	"macrodesk/internal/entity"
)

// FeedRepository fetches cleaned items from all configured sources. A
// failed source contributes zero items and must not abort the batch.
type FeedRepository interface {
	FetchAll(ctx context.Context) ([]entity.NewsItem, error)
}

// SentimentRepository classifies texts into (label, score) pairs. Batch mode
// returns one result per input in input order; Single is the fallback mode.
type SentimentRepository interface {
	ClassifyBatch(ctx context.Context, texts []string) ([]dto.LabelScore, error)
	ClassifySingle(ctx context.Context, text string) (dto.LabelScore, error)
}

// TopicRepository ranks a closed instrument label set per text. It returns
// one ranked result per input in input order.
type TopicRepository interface {
	RankLabels(ctx context.Context, texts []string, labels []string) ([]dto.ZeroShotResult, error)
}

// CalendarRepository fetches upcoming economic events from the calendar
// feed. Events carry the impact level parsed from the feed entry.
type CalendarRepository interface {
	FetchEvents(ctx context.Context) ([]entity.CalendarEvent, error)
}

// SummarizerRepository produces a short explanation for a block of evidence
// text.
type SummarizerRepository interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// SnapshotRepository stores and retrieves the current-cycle snapshot for the
// rendering API. Only the latest snapshot is kept.
type SnapshotRepository interface {
	Save(ctx context.Context, snapshot *dto.Snapshot) error
	Get(ctx context.Context) (*dto.Snapshot, error)
}
