package storage_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/newsfuse/internal/domain"
	"github.com/jonesrussell/newsfuse/internal/storage"
)

// esHandler fakes just enough of the Elasticsearch API for the store.
type esHandler struct {
	t         *testing.T
	documents map[string]map[string]any
	indexed   int
}

func (h *esHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodHead && r.URL.Path == "/":
		w.WriteHeader(http.StatusOK)

	case r.Method == http.MethodPut && strings.Count(r.URL.Path, "/") == 1:
		// Index creation.
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"acknowledged": true}`))

	case r.Method == http.MethodHead:
		// Index existence check.
		w.WriteHeader(http.StatusNotFound)

	case r.Method == http.MethodPut && strings.Contains(r.URL.Path, "/_doc/"):
		var doc map[string]any
		require.NoError(h.t, json.NewDecoder(r.Body).Decode(&doc))
		id := r.URL.Path[strings.LastIndexByte(r.URL.Path, '/')+1:]
		h.documents[id] = doc
		h.indexed++
		_, _ = w.Write([]byte(`{"result": "created"}`))

	case r.Method == http.MethodGet && strings.Contains(r.URL.Path, "/_doc/"):
		id := r.URL.Path[strings.LastIndexByte(r.URL.Path, '/')+1:]
		doc, ok := h.documents[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"found": false}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"found": true, "_source": doc})

	case strings.Contains(r.URL.Path, "/_search"):
		hits := make([]map[string]any, 0, len(h.documents))
		for _, doc := range h.documents {
			hits = append(hits, map[string]any{"_source": doc})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"hits": map[string]any{"hits": hits},
		})

	default:
		http.NotFound(w, r)
	}
}

func newTestStore(t *testing.T) (*storage.ArticleStore, *esHandler) {
	t.Helper()
	handler := &esHandler{t: t, documents: map[string]map[string]any{}}
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := storage.Config{Addresses: []string{server.URL}, IndexName: "articles-test"}
	client, err := storage.NewClient(cfg, nil)
	require.NoError(t, err)
	return storage.NewArticleStore(client, cfg, nil), handler
}

func testArticle() *domain.Article {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	return &domain.Article{
		ID:          "article-1",
		Title:       "Senate passes budget bill",
		Description: "The senate passed the budget bill after a long debate.",
		Images:      []string{"https://cdn.example.com/a.jpg"},
		Sources:     []string{"https://example.com/budget"},
		Tags:        []string{"politics"},
		PublishedAt: now,
		UpdatedAt:   now,
	}
}

func TestUpsertAndGetRoundTrip(t *testing.T) {
	store, handler := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, testArticle()))
	assert.Equal(t, 1, handler.indexed)

	got, err := store.Get(ctx, "article-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Senate passes budget bill", got.Title)
	assert.Equal(t, []string{"https://cdn.example.com/a.jpg"}, got.Images)
	assert.Equal(t, testArticle().PublishedAt, got.PublishedAt.UTC())
}

func TestGetMissingArticleReturnsNil(t *testing.T) {
	store, _ := newTestStore(t)

	got, err := store.Get(context.Background(), "does-not-exist")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSearchDecodesHits(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Upsert(ctx, testArticle()))

	articles, err := store.Search(ctx, "budget", 10)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "article-1", articles[0].ID)
}

func TestAllReturnsStoredArticles(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Upsert(ctx, testArticle()))

	articles, err := store.All(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, articles, 1)
}

func TestEnsureIndexCreatesMissingIndex(t *testing.T) {
	store, _ := newTestStore(t)
	assert.NoError(t, store.EnsureIndex(context.Background()))
}

func TestNewClientPingFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := storage.NewClient(storage.Config{Addresses: []string{server.URL}}, nil)
	assert.Error(t, err)
}
