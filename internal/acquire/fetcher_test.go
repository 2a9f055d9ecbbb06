package acquire_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/newsfuse/internal/acquire"
)

const articleHTML = `<!DOCTYPE html>
<html>
<head>
	<title>Senate passes budget bill</title>
	<meta name="author" content="Jane Doe">
</head>
<body>
	<nav><p>Short nav text</p></nav>
	<article>
		<p>The senate passed the budget bill on Tuesday after weeks of negotiation.</p>
		<p>Lawmakers from both parties praised the compromise as a workable framework.</p>
		<p>Please subscribe to our newsletter for more coverage of this story.</p>
		<p>tiny</p>
		<img src="/images/vote_1200x800.jpg">
		<img data-src="https://cdn.example.com/floor.png">
		<img src="https://pixel.example.com/track.gif">
		<img src="/not-an-image">
	</article>
</body>
</html>`

func TestFetchExtractsSourceItem(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, articleHTML)
	}))
	defer server.Close()

	fetcher := acquire.NewFetcher(acquire.FetcherConfig{}, nil)
	item, err := fetcher.Fetch(context.Background(), server.URL+"/story")

	require.NoError(t, err)
	assert.Equal(t, "Senate passes budget bill", item.Title)
	assert.Equal(t, "Jane Doe", item.Author)

	// Boilerplate, the subscribe promo, and the short fragment are dropped.
	assert.Equal(t, []string{
		"The senate passed the budget bill on Tuesday after weeks of negotiation.",
		"Lawmakers from both parties praised the compromise as a workable framework.",
	}, item.Paragraphs)

	// Relative URLs resolve, lazy-loading attrs are read, the tracking pixel
	// and extensionless URL are dropped.
	assert.Equal(t, []string{
		server.URL + "/images/vote_1200x800.jpg",
		"https://cdn.example.com/floor.png",
	}, item.Images)
}

func TestFetchTitleFallbacks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><meta property="og:title" content="Fallback headline"></head>`+
			`<body><p>A body paragraph that is long enough to keep around.</p></body></html>`)
	}))
	defer server.Close()

	fetcher := acquire.NewFetcher(acquire.FetcherConfig{}, nil)
	item, err := fetcher.Fetch(context.Background(), server.URL+"/story")

	require.NoError(t, err)
	assert.Equal(t, "Fallback headline", item.Title)
}

func TestFetchAuthorFallsBackToDomain(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>No byline here</title></head>`+
			`<body><p>A body paragraph that is long enough to keep around.</p></body></html>`)
	}))
	defer server.Close()

	fetcher := acquire.NewFetcher(acquire.FetcherConfig{}, nil)
	item, err := fetcher.Fetch(context.Background(), server.URL+"/story")

	require.NoError(t, err)
	assert.Equal(t, item.Domain, item.Author)
}

func TestFetchInvalidURL(t *testing.T) {
	fetcher := acquire.NewFetcher(acquire.FetcherConfig{}, nil)
	_, err := fetcher.Fetch(context.Background(), "not a url")
	assert.Error(t, err)
}

func TestFetchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	fetcher := acquire.NewFetcher(acquire.FetcherConfig{}, nil)
	_, err := fetcher.Fetch(context.Background(), server.URL+"/gone")
	assert.Error(t, err)
}
