package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/mitchellh/mapstructure"

	"github.com/jonesrussell/newsfuse/internal/domain"
	"github.com/jonesrussell/newsfuse/internal/logger"
)

// articleMapping is the index mapping for canonical articles.
const articleMapping = `{
	"mappings": {
		"properties": {
			"id":            {"type": "keyword"},
			"title":         {"type": "text"},
			"description":   {"type": "text"},
			"images":        {"type": "keyword"},
			"sources":       {"type": "keyword"},
			"authors":       {"type": "keyword"},
			"tags":          {"type": "keyword"},
			"crowd_sourced": {"type": "keyword"},
			"published_at":  {"type": "date"},
			"updated_at":    {"type": "date"}
		}
	}
}`

// ArticleStore reads and writes canonical articles in one index.
type ArticleStore struct {
	client  *es.Client
	index   string
	timeout time.Duration
	logger  logger.Interface
}

// NewArticleStore creates an article store over an existing client.
func NewArticleStore(client *es.Client, cfg Config, log logger.Interface) *ArticleStore {
	index := cfg.IndexName
	if index == "" {
		index = DefaultIndexName
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultOperationTimeout
	}
	if log == nil {
		log = logger.NewNoOp()
	}
	return &ArticleStore{
		client:  client,
		index:   index,
		timeout: timeout,
		logger:  log.WithComponent("storage"),
	}
}

// EnsureIndex creates the article index with its mapping if it does not
// exist yet.
func (s *ArticleStore) EnsureIndex(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	exists, err := s.client.Indices.Exists(
		[]string{s.index},
		s.client.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("check index %q: %w", s.index, err)
	}
	defer exists.Body.Close()
	if exists.StatusCode == http.StatusOK {
		return nil
	}

	res, err := s.client.Indices.Create(
		s.index,
		s.client.Indices.Create.WithContext(ctx),
		s.client.Indices.Create.WithBody(bytes.NewReader([]byte(articleMapping))),
	)
	if err != nil {
		return fmt.Errorf("create index %q: %w", s.index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index %q: %s", s.index, res.String())
	}

	s.logger.Info("article index created", "index", s.index)
	return nil
}

// Upsert writes the article under its ID, replacing any previous version.
func (s *ArticleStore) Upsert(ctx context.Context, article *domain.Article) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	body, err := json.Marshal(article)
	if err != nil {
		return fmt.Errorf("marshal article %q: %w", article.ID, err)
	}

	res, err := s.client.Index(
		s.index,
		bytes.NewReader(body),
		s.client.Index.WithContext(ctx),
		s.client.Index.WithDocumentID(article.ID),
		s.client.Index.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("index article %q: %w", article.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index article %q: %s", article.ID, res.String())
	}

	s.logger.Info("article stored",
		"article_id", article.ID,
		"index", s.index,
		"sources", len(article.Sources),
	)
	return nil
}

// Get returns the article with the given ID, or (nil, nil) when it does not
// exist.
func (s *ArticleStore) Get(ctx context.Context, id string) (*domain.Article, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.client.Get(
		s.index,
		id,
		s.client.Get.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("get article %q: %w", id, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if res.IsError() {
		return nil, fmt.Errorf("get article %q: %s", id, res.String())
	}

	var envelope struct {
		Source map[string]any `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode article %q: %w", id, err)
	}
	return decodeArticle(envelope.Source)
}

// All returns up to size stored articles. The update pipeline walks this to
// refresh every published article.
func (s *ArticleStore) All(ctx context.Context, size int) ([]*domain.Article, error) {
	return s.search(ctx, map[string]any{"match_all": map[string]any{}}, size)
}

// Search returns up to size articles whose title or description matches the
// query text.
func (s *ArticleStore) Search(ctx context.Context, query string, size int) ([]*domain.Article, error) {
	return s.search(ctx, map[string]any{
		"multi_match": map[string]any{
			"query":  query,
			"fields": []string{"title", "description"},
		},
	}, size)
}

// Delete removes an article by ID. Deleting a missing article is not an
// error.
func (s *ArticleStore) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.client.Delete(
		s.index,
		id,
		s.client.Delete.WithContext(ctx),
		s.client.Delete.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("delete article %q: %w", id, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusNotFound && res.IsError() {
		return fmt.Errorf("delete article %q: %s", id, res.String())
	}
	return nil
}

func (s *ArticleStore) search(ctx context.Context, query map[string]any, size int) ([]*domain.Article, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	body, err := json.Marshal(map[string]any{"query": query, "size": size})
	if err != nil {
		return nil, fmt.Errorf("marshal search query: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", s.index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search %q: %s", s.index, res.String())
	}

	var envelope struct {
		Hits struct {
			Hits []struct {
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	articles := make([]*domain.Article, 0, len(envelope.Hits.Hits))
	for _, hit := range envelope.Hits.Hits {
		article, decodeErr := decodeArticle(hit.Source)
		if decodeErr != nil {
			s.logger.Warn("skipping undecodable article", "error", decodeErr)
			continue
		}
		articles = append(articles, article)
	}
	return articles, nil
}

// decodeArticle converts a raw _source document into a typed article. Date
// fields arrive as RFC 3339 strings and need an explicit hook.
func decodeArticle(source map[string]any) (*domain.Article, error) {
	var article domain.Article
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:     &article,
		DecodeHook: mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
	})
	if err != nil {
		return nil, fmt.Errorf("build article decoder: %w", err)
	}
	if err := decoder.Decode(source); err != nil {
		return nil, fmt.Errorf("decode article document: %w", err)
	}
	return &article, nil
}
