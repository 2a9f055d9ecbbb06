package summarizer_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/newsfuse/internal/summarizer"
)

func newSummarizer(cfg summarizer.Config) *summarizer.Summarizer {
	return summarizer.New(cfg, nil, nil)
}

func TestSummarizeShortInputReturnedUnchanged(t *testing.T) {
	s := newSummarizer(summarizer.Config{MinSentences: 5})

	input := "First sentence of the piece. Second sentence follows it. A third one closes."
	assert.Equal(t, input, s.Summarize(context.Background(), input))
}

func TestSummarizeEmptyInputReturnedUnchanged(t *testing.T) {
	s := newSummarizer(summarizer.Config{})
	assert.Empty(t, s.Summarize(context.Background(), ""))
}

func TestSummarizeReducesLongInput(t *testing.T) {
	s := newSummarizer(summarizer.Config{Ratio: 0.2, MinSentences: 3})

	input := repeatedTopicText(40)
	summary := s.Summarize(context.Background(), input)

	require.NotEqual(t, summarizer.FailureText, summary)
	assert.NotEmpty(t, summary)
	assert.Less(t, len(summary), len(input))
}

func TestSummarizeKeepsDocumentOrder(t *testing.T) {
	s := newSummarizer(summarizer.Config{Ratio: 0.5, MinSentences: 2})

	input := repeatedTopicText(12)
	summary := s.Summarize(context.Background(), input)
	require.NotEqual(t, summarizer.FailureText, summary)

	// Every extracted sentence carries its ordinal; the ordinals must be
	// strictly increasing.
	last := -1
	for _, sent := range strings.Split(summary, ". ") {
		var ordinal int
		var topic string
		if _, err := fmt.Sscanf(sent, "Story number %d about the %s", &ordinal, &topic); err != nil {
			continue
		}
		assert.Greater(t, ordinal, last)
		last = ordinal
	}
	assert.GreaterOrEqual(t, last, 0)
}

func TestSummarizeDeterministic(t *testing.T) {
	s := newSummarizer(summarizer.Config{Ratio: 0.3, MinSentences: 3, Workers: 8})
	input := repeatedTopicText(60)

	first := s.Summarize(context.Background(), input)
	require.NotEqual(t, summarizer.FailureText, first)

	// Worker scheduling varies run to run; the summary must not.
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, s.Summarize(context.Background(), input), "run %d", i)
	}
}

func TestSummarizeSmallWindowMatchesLargeWindow(t *testing.T) {
	input := repeatedTopicText(30)

	small := newSummarizer(summarizer.Config{Ratio: 0.3, MinSentences: 3, WindowBytes: 64})
	large := newSummarizer(summarizer.Config{Ratio: 0.3, MinSentences: 3})

	// Window size changes memory behavior, never output.
	assert.Equal(t,
		large.Summarize(context.Background(), input),
		small.Summarize(context.Background(), input),
	)
}

func TestSummarizeMultibyteWindowBoundary(t *testing.T) {
	input := accentedTopicText(30)

	// A 7-byte window cuts through accented characters on nearly every read.
	small := newSummarizer(summarizer.Config{Ratio: 0.3, MinSentences: 3, WindowBytes: 7})
	large := newSummarizer(summarizer.Config{Ratio: 0.3, MinSentences: 3})

	got := small.Summarize(context.Background(), input)
	require.NotEqual(t, summarizer.FailureText, got)
	assert.True(t, utf8.ValidString(got))
	assert.NotContains(t, got, string(utf8.RuneError))
	assert.Equal(t, large.Summarize(context.Background(), input), got)
}

func TestSummarizeExtractFloor(t *testing.T) {
	s := newSummarizer(summarizer.Config{Ratio: 0.01, MinSentences: 4})

	summary := s.Summarize(context.Background(), repeatedTopicText(20))
	require.NotEqual(t, summarizer.FailureText, summary)

	// A tiny ratio still extracts MinSentences sentences.
	count := strings.Count(summary, ".")
	assert.GreaterOrEqual(t, count, 4)
}

func TestSummarizeCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := newSummarizer(summarizer.Config{})
	assert.Equal(t, summarizer.FailureText, s.Summarize(ctx, repeatedTopicText(20)))
}

// repeatedTopicText builds n sentences over a handful of shared topics so
// the similarity graph has structure to rank.
func repeatedTopicText(n int) string {
	topics := []string{
		"budget negotiations in the senate chamber",
		"storm damage along the eastern coastline",
		"semiconductor factory opening in the region",
	}
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "Story number %d about the %s. ", i, topics[i%len(topics)])
	}
	return strings.TrimSpace(b.String())
}

// accentedTopicText is repeatedTopicText with multi-byte characters, so
// window boundaries land inside encoded runes.
func accentedTopicText(n int) string {
	topics := []string{
		"négociations budgétaires au sénat à Zürich",
		"dégâts de tempête sur la côte française",
		"ouverture d'une usine de café à Köln",
	}
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "Récit numéro %d sur les %s. ", i, topics[i%len(topics)])
	}
	return strings.TrimSpace(b.String())
}
