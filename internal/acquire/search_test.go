package acquire_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/newsfuse/internal/acquire"
)

func searchServer(t *testing.T, pages map[string][]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		urls := pages[q]
		results := make([]map[string]string, 0, len(urls))
		for _, u := range urls {
			results = append(results, map[string]string{"url": u})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"results": results})
	}))
}

func TestSearchDomainDiversity(t *testing.T) {
	server := searchServer(t, map[string][]string{
		"budget bill": {
			"https://a.com/1",
			"https://a.com/2", // duplicate domain, dropped
			"https://b.com/1",
			"https://c.com/1",
		},
	})
	defer server.Close()

	client := acquire.NewSearchClient(acquire.SearchConfig{BaseURL: server.URL}, nil)
	links, err := client.Search(context.Background(), "budget bill", nil, 3)

	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.com/1", "https://b.com/1", "https://c.com/1"}, links)
}

func TestSearchExcludesDomains(t *testing.T) {
	server := searchServer(t, map[string][]string{
		"budget bill": {"https://www.seen.com/1", "https://fresh.org/1"},
	})
	defer server.Close()

	client := acquire.NewSearchClient(acquire.SearchConfig{BaseURL: server.URL}, nil)
	links, err := client.Search(context.Background(), "budget bill", []string{"seen.com"}, 2)

	require.NoError(t, err)
	assert.Equal(t, []string{"https://fresh.org/1"}, links)
}

func TestSearchRefinesOnceWhenShort(t *testing.T) {
	var queries []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		queries = append(queries, q)
		urls := []string{"https://first.com/1"}
		if strings.Contains(q, "-site:") {
			urls = []string{"https://second.org/1"}
		}
		results := make([]map[string]string, 0, len(urls))
		for _, u := range urls {
			results = append(results, map[string]string{"url": u})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"results": results})
	}))
	defer server.Close()

	client := acquire.NewSearchClient(acquire.SearchConfig{BaseURL: server.URL}, nil)
	links, err := client.Search(context.Background(), "budget bill", nil, 2)

	require.NoError(t, err)
	assert.Equal(t, []string{"https://first.com/1", "https://second.org/1"}, links)
	require.Len(t, queries, 2)
	assert.Contains(t, queries[1], "-site:first.com")
}

func TestSearchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := acquire.NewSearchClient(acquire.SearchConfig{BaseURL: server.URL}, nil)
	_, err := client.Search(context.Background(), "anything", nil, 2)
	assert.Error(t, err)
}

func TestSearchZeroCount(t *testing.T) {
	client := acquire.NewSearchClient(acquire.SearchConfig{BaseURL: "http://unused.invalid"}, nil)
	links, err := client.Search(context.Background(), "anything", nil, 0)
	require.NoError(t, err)
	assert.Empty(t, links)
}
