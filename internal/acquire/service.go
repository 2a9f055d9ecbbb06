package acquire

import (
	"context"

	"github.com/jonesrussell/newsfuse/internal/domain"
	"github.com/jonesrussell/newsfuse/internal/logger"
)

// Config configures the acquisition service.
type Config struct {
	Search    SearchConfig    `yaml:"search" mapstructure:"search"`
	Headlines HeadlinesConfig `yaml:"headlines" mapstructure:"headlines"`
	Fetcher   FetcherConfig   `yaml:"fetcher" mapstructure:"fetcher"`
}

// Service bundles search and fetch into the acquisition collaborator the
// content pool's backfill loop depends on.
type Service struct {
	search    *SearchClient
	headlines *HeadlinesClient
	fetcher   *Fetcher
}

// NewService creates the acquisition service.
func NewService(cfg Config, log logger.Interface) *Service {
	return &Service{
		search:    NewSearchClient(cfg.Search, log),
		headlines: NewHeadlinesClient(cfg.Headlines, log),
		fetcher:   NewFetcher(cfg.Fetcher, log),
	}
}

// Search returns candidate article URLs for the seed query.
func (s *Service) Search(ctx context.Context, seed string, excludeDomains []string, count int) ([]string, error) {
	return s.search.Search(ctx, seed, excludeDomains, count)
}

// Fetch retrieves and extracts one source item.
func (s *Service) Fetch(ctx context.Context, url string) (*domain.SourceItem, error) {
	return s.fetcher.Fetch(ctx, url)
}

// TopHeadlines returns the current headline feed.
func (s *Service) TopHeadlines(ctx context.Context, limit int) ([]Headline, error) {
	return s.headlines.TopHeadlines(ctx, limit)
}
