package consensus_test

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/newsfuse/internal/consensus"
)

func TestScoreFromURLHint(t *testing.T) {
	scorer := consensus.NewQualityScorer(consensus.QualityConfig{SkipFetch: true}, nil)

	assert.Equal(t, int64(1600*900), scorer.Score(context.Background(), "https://cdn.example.com/hero_1600x900.jpg"))
	assert.Zero(t, scorer.Score(context.Background(), "https://cdn.example.com/plain.jpg"))
}

func TestScoreProbesImageHeader(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 320, 240))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(buf.Bytes())
	}))
	defer server.Close()

	scorer := consensus.NewQualityScorer(consensus.QualityConfig{}, nil)
	assert.Equal(t, int64(320*240), scorer.Score(context.Background(), server.URL+"/photo.png"))
}

func TestScoreUnreachableImageScoresZero(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	scorer := consensus.NewQualityScorer(consensus.QualityConfig{}, nil)
	assert.Zero(t, scorer.Score(context.Background(), server.URL+"/missing.png"))
}
