// Package feed pulls syndication feeds and turns their entries into cleaned
// article records.
package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"

	"newsrag/internal/model"
	"newsrag/internal/pkg/textproc"
)

const (
	// maxEntriesPerFeed bounds the work done per feed; anything past the 50
	// most recent entries is stale for a news index.
	maxEntriesPerFeed = 50
	// minContentLen drops entries whose cleaned body is too short to be
	// useful retrieval context.
	minContentLen = 50
)

type Fetcher struct {
	parser *gofeed.Parser
}

func NewFetcher() *Fetcher {
	return &Fetcher{parser: gofeed.NewParser()}
}

// Fetch parses the feed at the given URL and returns its usable entries as
// articles. Entries without a title or body, or whose cleaned body is under
// 50 characters, are skipped.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string) ([]model.Article, error) {
	parsed, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s failed: %w", feedURL, err)
	}

	source := parsed.Title
	if source == "" {
		source = "Unknown Source"
	}

	items := parsed.Items
	if len(items) > maxEntriesPerFeed {
		items = items[:maxEntriesPerFeed]
	}

	articles := make([]model.Article, 0, len(items))
	for _, item := range items {
		if item == nil || item.Title == "" {
			continue
		}
		body := item.Description
		if body == "" {
			body = item.Content
		}
		if body == "" {
			continue
		}

		title := textproc.Clean(item.Title)
		content := textproc.Clean(body)
		if len(content) < minContentLen {
			continue
		}

		date := time.Now()
		if item.PublishedParsed != nil {
			date = *item.PublishedParsed
		}
		guid := item.GUID
		if guid == "" {
			guid = item.Link
		}

		articles = append(articles, model.Article{
			Title:    title,
			Content:  content,
			FullText: title + ". " + content,
			URL:      item.Link,
			Date:     date,
			Source:   source,
			GUID:     guid,
		})
	}
	return articles, nil
}
