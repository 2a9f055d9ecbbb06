// Package pipeline wires acquisition, fusion, and persistence into the two
// runnable flows: process (new articles from headlines) and update (refresh
// of stored articles).
package pipeline

import (
	"context"
	"fmt"
	"sort"

	"github.com/jonesrussell/newsfuse/internal/acquire"
	"github.com/jonesrussell/newsfuse/internal/builder"
	"github.com/jonesrussell/newsfuse/internal/consensus"
	"github.com/jonesrussell/newsfuse/internal/domain"
	"github.com/jonesrussell/newsfuse/internal/logger"
	"github.com/jonesrussell/newsfuse/internal/metrics"
	"github.com/jonesrussell/newsfuse/internal/pool"
	"github.com/jonesrussell/newsfuse/internal/relevance"
	"github.com/jonesrussell/newsfuse/internal/summarizer"
)

// Pipeline defaults.
const (
	DefaultHeadlineLimit       = 5
	DefaultSourcesThreshold    = 3
	DefaultParagraphsThreshold = 12
	DefaultImagesThreshold     = 4
	DefaultUpdateBatchSize     = 100
)

// Config configures both pipeline flows.
type Config struct {
	// HeadlineLimit caps how many headlines one process run handles.
	HeadlineLimit int `yaml:"headline_limit" mapstructure:"headline_limit"`
	// SourcesThreshold is the backfill target for retained sources.
	SourcesThreshold int `yaml:"sources_threshold" mapstructure:"sources_threshold"`
	// ParagraphsThreshold is the backfill target for body paragraphs.
	ParagraphsThreshold int `yaml:"paragraphs_threshold" mapstructure:"paragraphs_threshold"`
	// ImagesThreshold is the backfill target for candidate images.
	ImagesThreshold int `yaml:"images_threshold" mapstructure:"images_threshold"`
	// UpdateBatchSize caps how many stored articles one update run refreshes.
	UpdateBatchSize int `yaml:"update_batch_size" mapstructure:"update_batch_size"`
}

func (c Config) withDefaults() Config {
	if c.HeadlineLimit <= 0 {
		c.HeadlineLimit = DefaultHeadlineLimit
	}
	if c.SourcesThreshold <= 0 {
		c.SourcesThreshold = DefaultSourcesThreshold
	}
	if c.ParagraphsThreshold <= 0 {
		c.ParagraphsThreshold = DefaultParagraphsThreshold
	}
	if c.ImagesThreshold <= 0 {
		c.ImagesThreshold = DefaultImagesThreshold
	}
	if c.UpdateBatchSize <= 0 {
		c.UpdateBatchSize = DefaultUpdateBatchSize
	}
	return c
}

// Acquirer is the acquisition surface the flows consume: the pool's
// search-and-fetch collaborator plus the headline feed.
type Acquirer interface {
	pool.Acquirer
	TopHeadlines(ctx context.Context, limit int) ([]acquire.Headline, error)
}

// ArticleStore is the persistence surface the flows consume.
type ArticleStore interface {
	Upsert(ctx context.Context, article *domain.Article) error
	All(ctx context.Context, size int) ([]*domain.Article, error)
}

// Deps bundles the collaborators both flows share.
type Deps struct {
	Acquire    Acquirer
	Relevance  *relevance.Selector
	Consensus  *consensus.Selector
	Summarizer *summarizer.Summarizer
	Builder    *builder.Builder
	Store      ArticleStore
	Metrics    *metrics.Metrics
	Logger     logger.Interface
}

// Result summarizes one pipeline run.
type Result struct {
	// Processed is the number of items the run attempted.
	Processed int
	// Published is the number of articles stored.
	Published int
	// Discarded is the number of publish-gate rejections.
	Discarded int
	// Failed is the number of items abandoned on terminal failure.
	Failed int
}

// Runner is one executable pipeline flow.
type Runner interface {
	Name() string
	Run(ctx context.Context) (Result, error)
}

// Registry holds the closed set of pipeline flows, resolved once at
// construction. Asking for an unknown flow is a caller bug surfaced at
// startup, not a per-run string dispatch.
type Registry struct {
	runners map[string]Runner
}

// NewRegistry builds the registry with both flows wired to the same
// collaborators.
func NewRegistry(cfg Config, deps Deps) *Registry {
	cfg = cfg.withDefaults()
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewMetrics()
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewNoOp()
	}

	fuser := &fuser{cfg: cfg, deps: deps}
	return &Registry{
		runners: map[string]Runner{
			"process": &ProcessPipeline{cfg: cfg, deps: deps, fuser: fuser},
			"update":  &UpdatePipeline{cfg: cfg, deps: deps, fuser: fuser},
		},
	}
}

// Get resolves a flow by name.
func (r *Registry) Get(name string) (Runner, error) {
	runner, ok := r.runners[name]
	if !ok {
		return nil, fmt.Errorf("unknown pipeline %q (have %v)", name, r.Names())
	}
	return runner, nil
}

// Names returns the registered flow names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.runners))
	for name := range r.runners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
