package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/newsfuse/internal/acquire"
	"github.com/jonesrussell/newsfuse/internal/builder"
	"github.com/jonesrussell/newsfuse/internal/consensus"
	"github.com/jonesrussell/newsfuse/internal/domain"
	"github.com/jonesrussell/newsfuse/internal/metrics"
	"github.com/jonesrussell/newsfuse/internal/pipeline"
	"github.com/jonesrussell/newsfuse/internal/provider"
	"github.com/jonesrussell/newsfuse/internal/relevance"
	"github.com/jonesrussell/newsfuse/internal/summarizer"
)

// fakeAcquirer serves a scripted headline feed and scripted page fetches.
type fakeAcquirer struct {
	headlines []acquire.Headline
	feedErr   error
	items     map[string]*domain.SourceItem
}

func (f *fakeAcquirer) TopHeadlines(_ context.Context, limit int) ([]acquire.Headline, error) {
	if f.feedErr != nil {
		return nil, f.feedErr
	}
	if limit > 0 && len(f.headlines) > limit {
		return f.headlines[:limit], nil
	}
	return f.headlines, nil
}

func (f *fakeAcquirer) Search(_ context.Context, _ string, _ []string, _ int) ([]string, error) {
	return nil, nil
}

func (f *fakeAcquirer) Fetch(_ context.Context, url string) (*domain.SourceItem, error) {
	item, ok := f.items[url]
	if !ok {
		return nil, fmt.Errorf("no page at %s", url)
	}
	return item, nil
}

// memStore is an in-memory ArticleStore.
type memStore struct {
	articles  map[string]*domain.Article
	upserts   int
	upsertErr error
}

func newMemStore() *memStore {
	return &memStore{articles: map[string]*domain.Article{}}
}

func (s *memStore) Upsert(_ context.Context, article *domain.Article) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.upserts++
	copied := *article
	s.articles[article.ID] = &copied
	return nil
}

func (s *memStore) All(_ context.Context, size int) ([]*domain.Article, error) {
	out := make([]*domain.Article, 0, len(s.articles))
	for _, a := range s.articles {
		out = append(out, a)
		if len(out) == size {
			break
		}
	}
	return out, nil
}

func sourceItem(url, title string) *domain.SourceItem {
	return &domain.SourceItem{
		URL:   url,
		Title: title,
		Paragraphs: []string{
			"The senate passed the budget bill on Tuesday after weeks of tense negotiation.",
			"Lawmakers from both parties described the budget compromise as workable.",
		},
		Images: []string{"https://cdn.example.com/budget-bill-vote_1200x800.jpg"},
		Author: "Jane Doe",
		Domain: domain.DomainOf(url),
	}
}

func newRegistry(acq *fakeAcquirer, store *memStore) (*pipeline.Registry, *metrics.Metrics) {
	static := provider.NewStatic()
	quality := consensus.NewQualityScorer(consensus.QualityConfig{SkipFetch: true}, nil)
	m := metrics.NewMetrics()

	registry := pipeline.NewRegistry(
		pipeline.Config{
			SourcesThreshold:    1,
			ParagraphsThreshold: 1,
			ImagesThreshold:     1,
		},
		pipeline.Deps{
			Acquire:    acq,
			Relevance:  relevance.NewSelector(relevance.Config{Method: relevance.ThresholdFixed, Fixed: 0.01}, static, nil),
			Consensus:  consensus.NewSelector(consensus.Config{}, static, quality, nil),
			Summarizer: summarizer.New(summarizer.Config{}, nil, nil),
			Builder:    builder.New(static, nil),
			Store:      store,
			Metrics:    m,
		},
	)
	return registry, m
}

func TestRegistryResolvesClosedSet(t *testing.T) {
	registry, _ := newRegistry(&fakeAcquirer{}, newMemStore())

	assert.Equal(t, []string{"process", "update"}, registry.Names())

	for _, name := range registry.Names() {
		runner, err := registry.Get(name)
		require.NoError(t, err)
		assert.Equal(t, name, runner.Name())
	}

	_, err := registry.Get("reprocess")
	assert.Error(t, err)
}

func TestProcessPublishesArticles(t *testing.T) {
	acq := &fakeAcquirer{
		headlines: []acquire.Headline{
			{Title: "Senate passes budget bill", URL: "https://example.com/budget"},
		},
		items: map[string]*domain.SourceItem{
			"https://example.com/budget": sourceItem("https://example.com/budget", "Senate passes budget bill"),
		},
	}
	store := newMemStore()
	registry, m := newRegistry(acq, store)

	runner, err := registry.Get("process")
	require.NoError(t, err)
	result, err := runner.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, pipeline.Result{Processed: 1, Published: 1}, result)
	require.Len(t, store.articles, 1)
	for _, article := range store.articles {
		assert.NotEmpty(t, article.ID)
		assert.Equal(t, "Senate passes budget bill", article.Title)
		assert.NotEmpty(t, article.Description)
		assert.Equal(t, []string{"https://cdn.example.com/budget-bill-vote_1200x800.jpg"}, article.Images)
		assert.Equal(t, []string{"https://example.com/budget"}, article.Sources)
	}
	assert.Equal(t, int64(1), m.Snapshot().ArticlesPublished)
}

func TestProcessDiscardsArticleWithoutImages(t *testing.T) {
	item := sourceItem("https://example.com/budget", "Senate passes budget bill")
	item.Images = nil

	acq := &fakeAcquirer{
		headlines: []acquire.Headline{{Title: "Senate passes budget bill", URL: "https://example.com/budget"}},
		items:     map[string]*domain.SourceItem{"https://example.com/budget": item},
	}
	store := newMemStore()
	registry, m := newRegistry(acq, store)

	runner, err := registry.Get("process")
	require.NoError(t, err)
	result, err := runner.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, pipeline.Result{Processed: 1, Discarded: 1}, result)
	assert.Empty(t, store.articles)
	assert.Equal(t, int64(1), m.Snapshot().ArticlesDiscarded)
}

func TestProcessSeedsFromFeedMetadataWhenFetchFails(t *testing.T) {
	acq := &fakeAcquirer{
		headlines: []acquire.Headline{{
			Title:       "Senate passes budget bill",
			URL:         "https://unreachable.example.com/budget",
			Description: "The senate passed the budget bill on Tuesday after long negotiation sessions.",
			ImageURL:    "https://cdn.example.com/budget-bill-vote_1200x800.jpg",
		}},
		items: map[string]*domain.SourceItem{},
	}
	store := newMemStore()
	registry, m := newRegistry(acq, store)

	runner, err := registry.Get("process")
	require.NoError(t, err)
	result, err := runner.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, pipeline.Result{Processed: 1, Published: 1}, result)
	assert.Equal(t, int64(1), m.Snapshot().AcquisitionFailures)
}

func TestProcessItemFailureDoesNotAbortRun(t *testing.T) {
	acq := &fakeAcquirer{
		headlines: []acquire.Headline{
			{Title: "Senate passes budget bill", URL: "https://example.com/budget"},
			{Title: "Storm hits coastline", URL: "https://example.com/storm"},
		},
		items: map[string]*domain.SourceItem{
			"https://example.com/budget": sourceItem("https://example.com/budget", "Senate passes budget bill"),
			"https://example.com/storm":  sourceItem("https://example.com/storm", "Storm hits coastline"),
		},
	}
	store := newMemStore()
	registry, m := newRegistry(acq, store)

	// Every upsert fails: both items are terminal, yet the run completes.
	store.upsertErr = errors.New("storage down")

	runner, err := registry.Get("process")
	require.NoError(t, err)
	result, err := runner.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, pipeline.Result{Processed: 2, Failed: 2}, result)
	assert.Equal(t, int64(2), m.Snapshot().ItemsFailed)
}

func TestProcessFeedFailureIsRunError(t *testing.T) {
	acq := &fakeAcquirer{feedErr: errors.New("feed down")}
	registry, _ := newRegistry(acq, newMemStore())

	runner, err := registry.Get("process")
	require.NoError(t, err)
	_, err = runner.Run(context.Background())
	assert.Error(t, err)
}

func TestUpdateRefreshesStoredArticle(t *testing.T) {
	acq := &fakeAcquirer{
		items: map[string]*domain.SourceItem{
			"https://example.com/budget": sourceItem("https://example.com/budget", "Senate passes budget bill"),
			"https://tip.example.net/extra": sourceItem(
				"https://tip.example.net/extra", "Budget bill coverage continues"),
		},
	}
	store := newMemStore()

	stale := time.Now().Add(-24 * time.Hour).UTC()
	store.articles["article-1"] = &domain.Article{
		ID:           "article-1",
		Title:        "Senate passes budget bill",
		Sources:      []string{"https://example.com/budget"},
		CrowdSourced: []string{"https://tip.example.net/extra"},
		PublishedAt:  stale,
		UpdatedAt:    stale,
	}

	registry, _ := newRegistry(acq, store)
	runner, err := registry.Get("update")
	require.NoError(t, err)
	result, err := runner.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, pipeline.Result{Processed: 1, Published: 1}, result)

	refreshed := store.articles["article-1"]
	require.NotNil(t, refreshed)
	assert.Equal(t, "article-1", refreshed.ID)
	assert.Equal(t, stale, refreshed.PublishedAt)
	assert.True(t, refreshed.UpdatedAt.After(stale))
	// The crowd-sourced source is folded in and the queue cleared.
	assert.Contains(t, refreshed.Sources, "https://tip.example.net/extra")
	assert.Empty(t, refreshed.CrowdSourced)
}

func TestUpdateFailedRefreshKeepsStoredVersion(t *testing.T) {
	// No pages resolve, so fusion yields no images and the refresh is
	// rejected by the publish gate.
	acq := &fakeAcquirer{items: map[string]*domain.SourceItem{}}
	store := newMemStore()
	store.articles["article-1"] = &domain.Article{
		ID:      "article-1",
		Title:   "Senate passes budget bill",
		Images:  []string{"https://cdn.example.com/old.jpg"},
		Sources: []string{"https://example.com/budget"},
	}

	registry, _ := newRegistry(acq, store)
	runner, err := registry.Get("update")
	require.NoError(t, err)
	result, err := runner.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, pipeline.Result{Processed: 1, Discarded: 1}, result)
	assert.Equal(t, "Senate passes budget bill", store.articles["article-1"].Title)
	assert.Equal(t, []string{"https://cdn.example.com/old.jpg"}, store.articles["article-1"].Images)
	assert.Zero(t, store.upserts)
}
