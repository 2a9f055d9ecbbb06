// Package builder assembles the canonical article from a content pool's
// fused outputs and applies the publish gate.
package builder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonesrussell/newsfuse/internal/domain"
	"github.com/jonesrussell/newsfuse/internal/logger"
	"github.com/jonesrussell/newsfuse/internal/pool"
	"github.com/jonesrussell/newsfuse/internal/provider"
	"github.com/jonesrussell/newsfuse/internal/textutil"
)

// ErrDiscard signals that the article failed the publish gate and must not
// be persisted. It is a decision, not a fault.
var ErrDiscard = errors.New("article discarded by publish gate")

// tagMaxTokens bounds the tag generation call.
const tagMaxTokens = 64

// Builder turns fused pool output into a publishable article.
type Builder struct {
	generator provider.Generator
	logger    logger.Interface
}

// New creates an article builder.
func New(generator provider.Generator, log logger.Interface) *Builder {
	if log == nil {
		log = logger.NewNoOp()
	}
	return &Builder{generator: generator, logger: log.WithComponent("builder")}
}

// Build assembles the canonical article. An empty image set fails the
// publish gate and returns ErrDiscard; every other input shape produces an
// article.
func (b *Builder) Build(ctx context.Context, p *pool.Pool, title, description string, images []string) (*domain.Article, error) {
	if len(images) == 0 {
		b.logger.Info("publish gate rejected article", "reason", "no consensus images", "title", title)
		return nil, ErrDiscard
	}

	now := time.Now().UTC()
	article := &domain.Article{
		ID:          uuid.NewString(),
		Title:       textutil.Clean(title),
		Description: ScrubBiasedWords(description),
		Images:      images,
		PublishedAt: now,
		UpdatedAt:   now,
	}
	article.MergeSources(p.Sources())
	article.MergeAuthors(p.Authors())
	article.Tags = b.tags(ctx, article.Title, article.Description)

	b.logger.Info("article built",
		"article_id", article.ID,
		"title", article.Title,
		"images", len(article.Images),
		"sources", len(article.Sources),
		"tags", article.TagsString(),
	)
	return article, nil
}

// Rebuild refreshes an existing article in place with newly fused outputs,
// keeping its identity and publish timestamp. The crowd-sourced queue is
// cleared because its URLs are now folded in.
func (b *Builder) Rebuild(ctx context.Context, article *domain.Article, p *pool.Pool, title, description string, images []string) error {
	if len(images) == 0 {
		b.logger.Info("publish gate rejected rebuild", "article_id", article.ID, "reason", "no consensus images")
		return ErrDiscard
	}

	article.Title = textutil.Clean(title)
	article.Description = ScrubBiasedWords(description)
	article.Images = images
	article.MergeSources(p.Sources())
	article.MergeAuthors(p.Authors())
	article.Tags = b.tags(ctx, article.Title, article.Description)
	article.CrowdSourced = nil
	article.UpdatedAt = time.Now().UTC()
	return nil
}

// tagLabels is the closed label vocabulary articles are tagged from.
var tagLabels = []string{
	"politics", "business", "technology", "science", "health",
	"sports", "entertainment", "world", "environment", "crime",
}

// tags asks the generator to pick labels for the article and keeps only
// answers from the closed vocabulary. Generation failure publishes untagged.
func (b *Builder) tags(ctx context.Context, title, description string) []string {
	prompt := fmt.Sprintf(
		"Pick up to three categories for this article from: %s.\nRespond with a comma-separated list only.\n\nTitle: %s\n\n%s",
		strings.Join(tagLabels, ", "), title, description,
	)
	answer, err := b.generator.Generate(ctx, prompt, provider.GenerateOptions{MaxTokens: tagMaxTokens})
	if err != nil {
		b.logger.Warn("tag generation failed, publishing untagged", "error", err)
		return nil
	}

	allowed := make(map[string]struct{}, len(tagLabels))
	for _, label := range tagLabels {
		allowed[label] = struct{}{}
	}

	var tags []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(answer, ",") {
		tag := strings.ToLower(strings.TrimSpace(part))
		if _, ok := allowed[tag]; !ok {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}
