package app

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"

	"newsrag/internal/model"
	"newsrag/internal/pkg/textproc"
)

const (
	defaultMaxChunkWords   = 300
	defaultUpsertBatchSize = 100
	// dedupMinKeyLen is the shortest title key worth deduplicating on;
	// shorter keys are too generic and their articles are always kept.
	dedupMinKeyLen = 10
)

// FeedFetcher pulls one syndication feed into article records.
type FeedFetcher interface {
	Fetch(ctx context.Context, feedURL string) ([]model.Article, error)
}

// Embedder turns text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorStore manages the collection of indexed points.
type VectorStore interface {
	EnsureCollection(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, points []model.IndexedPoint) error
	Search(ctx context.Context, vector []float32, limit int) ([]model.RetrievedDoc, error)
}

type IngestOptions struct {
	Feeds         []string
	MaxChunkWords int
	BatchSize     int
	Dimension     int
	// StableIDs derives point ids from article guid and chunk index so
	// re-running ingestion overwrites earlier points instead of growing
	// duplicates. Off by default: each run then indexes fresh points.
	StableIDs bool
}

// IngestReport summarizes one ingestion run. Per-item failures are counted
// here rather than aborting the run.
type IngestReport struct {
	FeedsFetched    int `json:"feeds_fetched"`
	FeedsFailed     int `json:"feeds_failed"`
	ArticlesFetched int `json:"articles_fetched"`
	ArticlesUnique  int `json:"articles_unique"`
	ArticlesIndexed int `json:"articles_indexed"`
	ArticlesFailed  int `json:"articles_failed"`
	ChunksEmbedded  int `json:"chunks_embedded"`
	PointsUpserted  int `json:"points_upserted"`
	BatchesFailed   int `json:"batches_failed"`
}

// IngestService runs the feed-to-vector-store pipeline as a sequential batch
// job: fetch, deduplicate, chunk, embed, upsert.
type IngestService struct {
	fetcher  FeedFetcher
	embedder Embedder
	store    VectorStore
	opts     IngestOptions
}

func NewIngestService(fetcher FeedFetcher, embedder Embedder, store VectorStore, opts IngestOptions) *IngestService {
	if opts.MaxChunkWords <= 0 {
		opts.MaxChunkWords = defaultMaxChunkWords
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultUpsertBatchSize
	}
	return &IngestService{
		fetcher:  fetcher,
		embedder: embedder,
		store:    store,
		opts:     opts,
	}
}

// Run executes one ingestion pass. It returns an error only when collection
// initialization fails or the context is canceled; per-feed, per-article and
// per-batch failures are logged, counted in the report and skipped.
func (s *IngestService) Run(ctx context.Context) (*IngestReport, error) {
	report := &IngestReport{}

	if err := s.store.EnsureCollection(ctx, s.opts.Dimension); err != nil {
		return report, fmt.Errorf("ensure collection failed: %w", err)
	}

	var articles []model.Article
	for _, feedURL := range s.opts.Feeds {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		fetched, err := s.fetcher.Fetch(ctx, feedURL)
		if err != nil {
			log.Printf("ingest: fetch feed %s failed: %v", feedURL, err)
			report.FeedsFailed++
			continue
		}
		report.FeedsFetched++
		articles = append(articles, fetched...)
	}
	report.ArticlesFetched = len(articles)

	unique := dedupeArticles(articles)
	report.ArticlesUnique = len(unique)

	var points []model.IndexedPoint
	for _, article := range unique {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		articlePoints, err := s.buildPoints(ctx, article)
		if err != nil {
			log.Printf("ingest: index article %q failed: %v", article.Title, err)
			report.ArticlesFailed++
			continue
		}
		points = append(points, articlePoints...)
		report.ArticlesIndexed++
		report.ChunksEmbedded += len(articlePoints)
	}

	for start := 0; start < len(points); start += s.opts.BatchSize {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		end := start + s.opts.BatchSize
		if end > len(points) {
			end = len(points)
		}
		batch := points[start:end]
		if err := s.store.Upsert(ctx, batch); err != nil {
			log.Printf("ingest: upsert batch of %d failed: %v", len(batch), err)
			report.BatchesFailed++
			continue
		}
		report.PointsUpserted += len(batch)
	}

	return report, nil
}

// buildPoints chunks one article and embeds every chunk. A failure embedding
// any chunk fails the whole article so a partially indexed article never
// ends up in the store.
func (s *IngestService) buildPoints(ctx context.Context, article model.Article) ([]model.IndexedPoint, error) {
	texts := textproc.Chunk(article.FullText, s.opts.MaxChunkWords)
	points := make([]model.IndexedPoint, 0, len(texts))
	for i, text := range texts {
		vector, err := s.embedder.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed chunk %d/%d: %w", i+1, len(texts), err)
		}
		points = append(points, model.IndexedPoint{
			ID:     s.pointID(article.GUID, i),
			Vector: vector,
			Payload: model.Chunk{
				Text:   text,
				Title:  article.Title,
				URL:    article.URL,
				Date:   article.Date.Format(time.RFC3339),
				Source: article.Source,
				GUID:   article.GUID,
				Index:  i,
				Total:  len(texts),
			},
		})
	}
	return points, nil
}

func (s *IngestService) pointID(guid string, chunkIndex int) string {
	if s.opts.StableIDs && guid != "" {
		name := guid + "#" + strconv.Itoa(chunkIndex)
		return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
	}
	return uuid.NewString()
}

// dedupeArticles collapses near-duplicate articles by title key, first seen
// wins. Articles with a key of 10 characters or fewer are kept as-is and
// never deduplicated against anything.
func dedupeArticles(articles []model.Article) []model.Article {
	seen := make(map[string]struct{}, len(articles))
	unique := make([]model.Article, 0, len(articles))
	for _, article := range articles {
		key := textproc.TitleKey(article.Title)
		if len(key) <= dedupMinKeyLen {
			unique = append(unique, article)
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, article)
	}
	return unique
}
