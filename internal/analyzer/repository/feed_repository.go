package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"macrodesk/internal/analyzer/config"
	"macrodesk/internal/entity"
	"macrodesk/pkg/logger"
	"macrodesk/pkg/utils"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

// feedRepository fetches RSS feeds concurrently with a bounded worker count.
type feedRepository struct {
	cfg    *config.Config
	logger *logger.Logger
}

// NewFeedRepository creates a new FeedRepository over the configured RSS
// sources.
func NewFeedRepository(cfg *config.Config, log *logger.Logger) FeedRepository {
	return &feedRepository{cfg: cfg, logger: log}
}

// FetchAll fetches every configured feed and returns the combined cleaned
// items. Per-source failures are logged and skipped.
func (r *feedRepository) FetchAll(ctx context.Context) ([]entity.NewsItem, error) {
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		items []entity.NewsItem
	)

	semaphore := make(chan struct{}, r.cfg.Analyzer.MaxConcurrentFetches)

	for _, feed := range r.cfg.Analyzer.Feeds {
		if !utils.ShouldContinue(ctx, r.logger) {
			break
		}
		wg.Add(1)
		source := feed
		utils.GoSafe(func() {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			sourceItems, err := r.fetchSource(ctx, source)
			if err != nil {
				r.logger.Warn("Feed source failed, skipping",
					logger.StringField("source", source.Name),
					logger.ErrorField(err),
				)
				return
			}

			mu.Lock()
			items = append(items, sourceItems...)
			mu.Unlock()
		})
	}

	wg.Wait()

	return items, nil
}

func (r *feedRepository) fetchSource(ctx context.Context, feed config.Feed) ([]entity.NewsItem, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, r.cfg.Analyzer.FetchTimeout)
	defer cancel()

	fp := gofeed.NewParser()
	parsed, err := fp.ParseURLWithContext(feed.URL, fetchCtx)
	if err != nil {
		return nil, err
	}

	maxItems := r.cfg.Analyzer.ItemsPerSource
	var items []entity.NewsItem
	for _, entry := range parsed.Items {
		if len(items) >= maxItems {
			break
		}

		title := utils.CleanText(stripHTML(entry.Title))
		if title == "" {
			// Items without a title carry nothing classifiable.
			continue
		}

		summary := entry.Description
		if summary == "" {
			summary = entry.Content
		}
		summary = utils.CleanText(stripHTML(summary))

		item := entity.NewsItem{
			Source:      feed.Name,
			Title:       utils.CleanToValidUTF8(title),
			Summary:     utils.CleanToValidUTF8(summary),
			Link:        entry.Link,
			PublishedAt: publishedTime(entry),
		}
		item.Text = combineText(item.Title, item.Summary)
		items = append(items, item)
	}

	r.logger.Info("Fetched feed",
		logger.StringField("source", feed.Name),
		logger.IntField("items", len(items)),
	)

	return items, nil
}

// publishedTime prefers the published timestamp and falls back to updated.
// A nil result is a valid state handled by the weighting stage.
func publishedTime(entry *gofeed.Item) *time.Time {
	if entry.PublishedParsed != nil {
		return entry.PublishedParsed
	}
	if entry.UpdatedParsed != nil {
		return entry.UpdatedParsed
	}
	return nil
}

func combineText(title, summary string) string {
	if summary == "" {
		return title
	}
	return title + " . " + summary
}

// stripHTML drops markup from RSS fields, which frequently embed HTML.
func stripHTML(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return doc.Text()
}
