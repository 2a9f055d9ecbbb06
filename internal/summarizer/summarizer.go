// Package summarizer produces extractive summaries with bounded memory. The
// input text is spilled to disk, re-read in fixed windows, tokenized into
// sentences, scored with PageRank over a sparse similarity graph, and the top
// sentences are returned in their original document order.
package summarizer

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/jonesrussell/newsfuse/internal/logger"
	"github.com/jonesrussell/newsfuse/internal/memory"
	"github.com/jonesrussell/newsfuse/internal/textutil"
	"github.com/jonesrussell/newsfuse/internal/worker"
)

// Stage identifies a phase of the summarization run. Stages advance strictly
// forward; a failure in any stage aborts the run with the fallback text.
type Stage string

const (
	StageIngest     Stage = "ingest"
	StageTokenize   Stage = "stream_tokenize"
	StageSimilarity Stage = "similarity_build"
	StageRank       Stage = "rank"
	StageExtract    Stage = "extract"
)

// FailureText is returned when summarization cannot complete. Summarize
// never returns an error; callers publish this text or treat it as a skip.
const FailureText = "Summary could not be generated."

// Summarizer defaults.
const (
	DefaultRatio          = 0.2
	DefaultMinSentences   = 5
	DefaultWindowBytes    = 1 << 20
	DefaultGCWindowEvery  = 8
	DefaultTokenCacheSize = 4096
	defaultWorkers        = 4
)

// Config configures the summarizer.
type Config struct {
	// Ratio of sentences to keep, in (0, 1].
	Ratio float64 `yaml:"ratio" mapstructure:"ratio"`
	// MinSentences floors the extract size; inputs at or under it are
	// returned unchanged.
	MinSentences int `yaml:"min_sentences" mapstructure:"min_sentences"`
	// WindowBytes is the read window during streaming tokenization.
	WindowBytes int `yaml:"window_bytes" mapstructure:"window_bytes"`
	// GCWindowEvery triggers a reclaim pass after this many windows.
	GCWindowEvery int `yaml:"gc_window_every" mapstructure:"gc_window_every"`
	// TokenCacheSize bounds the sentence token-set cache.
	TokenCacheSize int `yaml:"token_cache_size" mapstructure:"token_cache_size"`
	// Workers sizes the similarity build pool.
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// Summarizer runs the staged extractive pipeline.
type Summarizer struct {
	cfg     Config
	monitor *memory.Monitor
	logger  logger.Interface
}

// New creates a summarizer.
func New(cfg Config, monitor *memory.Monitor, log logger.Interface) *Summarizer {
	if cfg.Ratio <= 0 || cfg.Ratio > 1 {
		cfg.Ratio = DefaultRatio
	}
	if cfg.MinSentences <= 0 {
		cfg.MinSentences = DefaultMinSentences
	}
	if cfg.WindowBytes <= 0 {
		cfg.WindowBytes = DefaultWindowBytes
	}
	if cfg.GCWindowEvery <= 0 {
		cfg.GCWindowEvery = DefaultGCWindowEvery
	}
	if cfg.TokenCacheSize <= 0 {
		cfg.TokenCacheSize = DefaultTokenCacheSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if monitor == nil {
		monitor = memory.NewMonitor(0, 0, log)
	}
	if log == nil {
		log = logger.NewNoOp()
	}
	return &Summarizer{cfg: cfg, monitor: monitor, logger: log.WithComponent("summarizer")}
}

// Summarize produces an extractive summary of the text. It never returns an
// error: any internal failure yields FailureText, and inputs with at most
// MinSentences sentences are returned unchanged.
func (s *Summarizer) Summarize(ctx context.Context, text string) string {
	start := time.Now()
	summary, err := s.run(ctx, text)
	if err != nil {
		s.logger.Error("summarization failed", "error", err)
		return FailureText
	}
	s.logger.Info("summarization completed",
		"input_bytes", len(text),
		"output_bytes", len(summary),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return summary
}

func (s *Summarizer) run(ctx context.Context, text string) (string, error) {
	spill, err := s.ingest(text)
	if err != nil {
		return "", fmt.Errorf("%s: %w", StageIngest, err)
	}
	defer spill.Close()

	sentences, err := s.tokenize(ctx, spill)
	if err != nil {
		return "", fmt.Errorf("%s: %w", StageTokenize, err)
	}

	// Small inputs pass through untouched rather than being re-stitched
	// from a trivial extract.
	if len(sentences) <= s.cfg.MinSentences {
		s.logger.Debug("input below extract floor, returning unchanged",
			"sentences", len(sentences),
		)
		return text, nil
	}

	graph, err := s.buildGraph(ctx, sentences)
	if err != nil {
		return "", fmt.Errorf("%s: %w", StageSimilarity, err)
	}

	ranks := pageRank(graph, len(sentences))

	return s.extract(sentences, ranks), nil
}

// tokenize reads the spilled text window by window, splitting into sentences
// and carrying partial trailing sentences into the next window.
func (s *Summarizer) tokenize(ctx context.Context, spill *spillFile) ([]string, error) {
	var sentences []string
	carry := ""
	windows := 0

	buf := make([]byte, s.cfg.WindowBytes)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		chunk, done, err := spill.Next(buf)
		if err != nil {
			return nil, err
		}
		if len(chunk) == 0 && done {
			break
		}

		complete, remainder := textutil.SplitSentencesPartial(carry + chunk)
		carry = remainder
		sentences = append(sentences,
			textutil.FilterSentences(complete, minSentenceChars)...)

		windows++
		if windows%s.cfg.GCWindowEvery == 0 {
			s.monitor.ReclaimIfCritical()
		}
		if done {
			break
		}
	}

	if trailing := strings.TrimSpace(carry); trailing != "" {
		sentences = append(sentences,
			textutil.FilterSentences([]string{trailing}, minSentenceChars)...)
	}

	s.logger.Debug("streaming tokenization completed",
		"windows", windows,
		"sentences", len(sentences),
	)
	return sentences, nil
}

// minSentenceChars drops fragments too short to carry meaning.
const minSentenceChars = 10

// extract keeps the highest-ranked sentences and re-sorts them into document
// order so the summary reads as prose, not as a ranking.
func (s *Summarizer) extract(sentences []string, ranks []float64) string {
	count := int(math.Round(float64(len(sentences)) * s.cfg.Ratio))
	if count < s.cfg.MinSentences {
		count = s.cfg.MinSentences
	}
	if count > len(sentences) {
		count = len(sentences)
	}

	indices := make([]int, len(sentences))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(a, b int) bool {
		return ranks[indices[a]] > ranks[indices[b]]
	})

	chosen := indices[:count]
	sort.Ints(chosen)

	parts := make([]string, len(chosen))
	for i, idx := range chosen {
		parts[i] = sentences[idx]
	}
	return strings.Join(parts, " ")
}

// buildGraph computes the sparse similarity graph over the worker pool,
// caching token sets so each sentence tokenizes once.
func (s *Summarizer) buildGraph(ctx context.Context, sentences []string) (*similarityGraph, error) {
	cache, err := lru.New[int, map[string]struct{}](s.cfg.TokenCacheSize)
	if err != nil {
		return nil, fmt.Errorf("token cache: %w", err)
	}

	pool, err := worker.NewPool(s.cfg.Workers, s.logger)
	if err != nil {
		return nil, fmt.Errorf("worker pool: %w", err)
	}

	builder := &graphBuilder{
		sentences: sentences,
		cache:     cache,
		monitor:   s.monitor,
		pool:      pool,
		logger:    s.logger,
	}
	return builder.build(ctx)
}
