// Package common provides shared dependency construction for command
// implementations.
package common

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/newsfuse/internal/acquire"
	"github.com/jonesrussell/newsfuse/internal/builder"
	"github.com/jonesrussell/newsfuse/internal/config"
	"github.com/jonesrussell/newsfuse/internal/consensus"
	"github.com/jonesrussell/newsfuse/internal/logger"
	"github.com/jonesrussell/newsfuse/internal/memory"
	"github.com/jonesrussell/newsfuse/internal/metrics"
	"github.com/jonesrussell/newsfuse/internal/pipeline"
	"github.com/jonesrussell/newsfuse/internal/provider"
	"github.com/jonesrussell/newsfuse/internal/relevance"
	"github.com/jonesrussell/newsfuse/internal/storage"
	"github.com/jonesrussell/newsfuse/internal/summarizer"
)

// Deps holds the wired collaborators commands run with.
type Deps struct {
	Config   *config.Config
	Logger   logger.Interface
	Store    *storage.ArticleStore
	Metrics  *metrics.Metrics
	Registry *pipeline.Registry

	// Summarizer is exposed for the standalone summarize command.
	Summarizer *summarizer.Summarizer
}

// Build wires the full dependency graph from configuration. Everything that
// can fail — provider kind resolution, the Elasticsearch connection — fails
// here, before any pipeline runs.
func Build(cfg *config.Config, log logger.Interface) (*Deps, error) {
	providers, err := provider.Build(cfg.Provider, log)
	if err != nil {
		return nil, fmt.Errorf("build provider: %w", err)
	}

	embedder := providers.Embedder
	if cfg.Cache.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		embedder = provider.NewCachedEmbedder(embedder, redisClient, cfg.Cache.TTL, log)
	}

	esClient, err := storage.NewClient(cfg.Elasticsearch, log)
	if err != nil {
		return nil, fmt.Errorf("connect elasticsearch: %w", err)
	}
	store := storage.NewArticleStore(esClient, cfg.Elasticsearch, log)

	monitor := memory.NewMonitor(cfg.MemoryThreshold, cfg.MemoryLimitBytes, log)
	summ := summarizer.New(cfg.Summarizer, monitor, log)
	pipelineMetrics := metrics.NewMetrics()

	registry := pipeline.NewRegistry(cfg.Pipeline, pipeline.Deps{
		Acquire:    acquire.NewService(cfg.Acquisition, log),
		Relevance:  relevance.NewSelector(cfg.Relevance, embedder, log),
		Consensus:  consensus.NewSelector(cfg.Consensus, embedder, nil, log),
		Summarizer: summ,
		Builder:    builder.New(providers.Generator, log),
		Store:      store,
		Metrics:    pipelineMetrics,
		Logger:     log,
	})

	return &Deps{
		Config:     cfg,
		Logger:     log,
		Store:      store,
		Metrics:    pipelineMetrics,
		Registry:   registry,
		Summarizer: summ,
	}, nil
}
