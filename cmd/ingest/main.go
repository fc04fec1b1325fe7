// Command ingest runs one feed-to-vector-store ingestion pass and exits.
// It is meant for cron or manual invocation, not for running inside the
// chat server.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"newsrag/internal/ai"
	"newsrag/internal/app"
	"newsrag/internal/config"
	"newsrag/internal/feed"
	"newsrag/internal/vectorstore"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	svc := app.NewIngestService(
		feed.NewFetcher(),
		ai.NewEmbeddingClient(cfg.Embedding),
		vectorstore.NewQdrantStore(cfg.Qdrant),
		app.IngestOptions{
			Feeds:         cfg.Ingest.Feeds,
			MaxChunkWords: cfg.Ingest.MaxChunkWords,
			BatchSize:     cfg.Ingest.UpsertBatchSize,
			Dimension:     cfg.Embedding.Dimension,
			StableIDs:     cfg.Ingest.StableIDs,
		},
	)

	log.Printf("ingest starting: %d feeds, collection %q, dimension %d",
		len(cfg.Ingest.Feeds), cfg.Qdrant.Collection, cfg.Embedding.Dimension)

	report, err := svc.Run(ctx)
	if report != nil {
		log.Printf("ingest report: feeds %d ok / %d failed, articles %d fetched / %d unique / %d indexed / %d failed, chunks %d, points %d upserted, batches %d failed",
			report.FeedsFetched, report.FeedsFailed,
			report.ArticlesFetched, report.ArticlesUnique, report.ArticlesIndexed, report.ArticlesFailed,
			report.ChunksEmbedded, report.PointsUpserted, report.BatchesFailed)
	}
	if err != nil {
		log.Fatalf("ingest failed: %v", err)
	}
}
