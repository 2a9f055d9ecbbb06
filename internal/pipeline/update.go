package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonesrussell/newsfuse/internal/builder"
	"github.com/jonesrussell/newsfuse/internal/domain"
	"github.com/jonesrussell/newsfuse/internal/pool"
)

// UpdatePipeline refreshes stored articles: it re-fetches their sources,
// folds in any crowd-sourced URLs, and re-runs fusion in place.
type UpdatePipeline struct {
	cfg   Config
	deps  Deps
	fuser *fuser
}

// Name returns the registry name of the flow.
func (u *UpdatePipeline) Name() string { return "update" }

// Run refreshes every stored article in the batch. Articles whose refresh
// fails keep their stored version; a publish-gate rejection during refresh
// also leaves the stored version untouched.
func (u *UpdatePipeline) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	log := u.deps.Logger.WithComponent("update")

	articles, err := u.deps.Store.All(ctx, u.cfg.UpdateBatchSize)
	if err != nil {
		return Result{}, fmt.Errorf("load stored articles: %w", err)
	}

	var result Result
	for _, article := range articles {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Processed++
		u.deps.Metrics.SetCurrentItem(article.Title)

		switch err := u.updateOne(ctx, article); {
		case err == nil:
			result.Published++
			u.deps.Metrics.RecordPublished()
		case errors.Is(err, builder.ErrDiscard):
			result.Discarded++
			u.deps.Metrics.RecordDiscarded()
		default:
			log.Error("article refresh failed",
				"article_id", article.ID,
				"error", err,
			)
			result.Failed++
			u.deps.Metrics.RecordItemFailed()
		}
	}

	u.deps.Metrics.AddDuration(time.Since(start))
	log.Info("update run completed",
		"processed", result.Processed,
		"refreshed", result.Published,
		"discarded", result.Discarded,
		"failed", result.Failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

func (u *UpdatePipeline) updateOne(ctx context.Context, article *domain.Article) error {
	contentPool := pool.New(u.deps.Acquire, u.deps.Logger)

	// Stored sources first so their domains keep priority, then the crowd
	// queue.
	urls := make([]string, 0, len(article.Sources)+len(article.CrowdSourced))
	urls = append(urls, article.Sources...)
	urls = append(urls, article.CrowdSourced...)

	for _, url := range urls {
		item, err := u.deps.Acquire.Fetch(ctx, url)
		if err != nil {
			u.deps.Metrics.RecordAcquisitionFailure()
			u.deps.Logger.Warn("source refresh failed, skipping",
				"article_id", article.ID,
				"url", url,
				"error", err,
			)
			continue
		}
		contentPool.Add(item)
	}

	fused, err := u.fuser.fuse(ctx, contentPool)
	if err != nil {
		return err
	}

	if err := u.deps.Builder.Rebuild(ctx, article, contentPool, fused.title, fused.description, fused.images); err != nil {
		return err
	}
	return u.deps.Store.Upsert(ctx, article)
}
