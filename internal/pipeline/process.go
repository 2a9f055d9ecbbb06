package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonesrussell/newsfuse/internal/acquire"
	"github.com/jonesrussell/newsfuse/internal/builder"
	"github.com/jonesrussell/newsfuse/internal/domain"
	"github.com/jonesrussell/newsfuse/internal/pool"
)

// ProcessPipeline turns the current headline feed into new canonical
// articles.
type ProcessPipeline struct {
	cfg   Config
	deps  Deps
	fuser *fuser
}

// Name returns the registry name of the flow.
func (p *ProcessPipeline) Name() string { return "process" }

// Run pulls the headline feed and fuses one article per headline. A failed
// item is logged, counted, and abandoned; the run keeps going. Run errors
// only when the feed itself is unavailable.
func (p *ProcessPipeline) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	log := p.deps.Logger.WithComponent("process")

	headlines, err := p.deps.Acquire.TopHeadlines(ctx, p.cfg.HeadlineLimit)
	if err != nil {
		return Result{}, fmt.Errorf("fetch headlines: %w", err)
	}
	p.deps.Metrics.RecordHeadlines(len(headlines))

	var result Result
	for _, headline := range headlines {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Processed++
		p.deps.Metrics.SetCurrentItem(headline.Title)

		switch err := p.processOne(ctx, headline); {
		case err == nil:
			result.Published++
			p.deps.Metrics.RecordPublished()
		case errors.Is(err, builder.ErrDiscard):
			result.Discarded++
			p.deps.Metrics.RecordDiscarded()
		default:
			// Terminal for this item only.
			log.Error("headline processing failed",
				"title", headline.Title,
				"error", err,
			)
			result.Failed++
			p.deps.Metrics.RecordItemFailed()
		}
	}

	p.deps.Metrics.AddDuration(time.Since(start))
	log.Info("process run completed",
		"processed", result.Processed,
		"published", result.Published,
		"discarded", result.Discarded,
		"failed", result.Failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

func (p *ProcessPipeline) processOne(ctx context.Context, headline acquire.Headline) error {
	contentPool := pool.New(p.deps.Acquire, p.deps.Logger)
	p.seed(ctx, contentPool, headline)

	fused, err := p.fuser.fuse(ctx, contentPool)
	if err != nil {
		return err
	}

	article, err := p.deps.Builder.Build(ctx, contentPool, fused.title, fused.description, fused.images)
	if err != nil {
		return err
	}
	return p.deps.Store.Upsert(ctx, article)
}

// seed primes the pool with the headline's own article. When the fetch
// fails, the feed's metadata still seeds the pool so backfill has a query to
// grow from.
func (p *ProcessPipeline) seed(ctx context.Context, contentPool *pool.Pool, headline acquire.Headline) {
	item, err := p.deps.Acquire.Fetch(ctx, headline.URL)
	if err != nil {
		p.deps.Metrics.RecordAcquisitionFailure()
		p.deps.Logger.Warn("headline fetch failed, seeding from feed metadata",
			"url", headline.URL,
			"error", err,
		)
		item = &domain.SourceItem{
			URL:    headline.URL,
			Title:  headline.Title,
			Author: headline.Author,
			Domain: domain.DomainOf(headline.URL),
		}
		if headline.Description != "" {
			item.Paragraphs = append(item.Paragraphs, headline.Description)
		}
		if headline.Content != "" {
			item.Paragraphs = append(item.Paragraphs, headline.Content)
		}
		if headline.ImageURL != "" {
			item.Images = append(item.Images, headline.ImageURL)
		}
	}
	contentPool.Add(item)
}
