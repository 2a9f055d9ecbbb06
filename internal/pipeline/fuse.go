package pipeline

import (
	"context"
	"errors"
	"strings"

	"github.com/jonesrussell/newsfuse/internal/pool"
	"github.com/jonesrussell/newsfuse/internal/relevance"
	"github.com/jonesrussell/newsfuse/internal/summarizer"
)

// errSummarizerFailed marks an item whose description could not be
// generated. The item is abandoned; the run continues.
var errSummarizerFailed = errors.New("description generation failed")

// fused is the per-item output both flows hand to the builder.
type fused struct {
	title       string
	description string
	images      []string
}

// fuser runs the shared fusion steps: backfill the pool, condense the title,
// filter paragraphs for relevance, summarize, and vote on images.
type fuser struct {
	cfg  Config
	deps Deps
}

// fuse grows the pool to its thresholds and reduces it to one title, one
// description, and the consensus image set.
func (f *fuser) fuse(ctx context.Context, p *pool.Pool) (*fused, error) {
	backfills := []struct {
		field     pool.Field
		threshold int
	}{
		{pool.FieldSources, f.cfg.SourcesThreshold},
		{pool.FieldParagraphs, f.cfg.ParagraphsThreshold},
		{pool.FieldImages, f.cfg.ImagesThreshold},
	}
	for _, b := range backfills {
		if err := p.EnsureSufficient(ctx, b.field, b.threshold); err != nil {
			return nil, err
		}
	}

	title := f.deps.Builder.CondenseTitle(ctx, p.Titles())

	selected, err := f.deps.Relevance.Select(ctx, title, strings.Join(p.Paragraphs(), " "))
	if err != nil {
		return nil, err
	}

	body := strings.Join(relevance.Sentences(selected), " ")
	description := f.deps.Summarizer.Summarize(ctx, body)
	if description == summarizer.FailureText {
		return nil, errSummarizerFailed
	}

	images := f.deps.Consensus.Select(ctx, p.Images(), []string{title, description})

	return &fused{title: title, description: description, images: images}, nil
}
