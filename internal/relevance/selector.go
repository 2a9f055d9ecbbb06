// Package relevance filters aggregated candidate text against a reference
// text using embedding similarity with an adaptive threshold. Each call
// recalibrates the threshold to its own score distribution, so a run of
// mostly-noise text and a run of mostly-signal text both split sensibly.
package relevance

import (
	"context"
	"sort"

	"github.com/jonesrussell/newsfuse/internal/logger"
	"github.com/jonesrussell/newsfuse/internal/provider"
	"github.com/jonesrussell/newsfuse/internal/textutil"
)

// ThresholdMethod selects how the cut-off score is derived.
type ThresholdMethod string

const (
	// ThresholdKMeans partitions scores into two clusters and thresholds at
	// the mean of the cluster centers.
	ThresholdKMeans ThresholdMethod = "kmeans"
	// ThresholdPercentile keeps scores above a fixed percentile.
	ThresholdPercentile ThresholdMethod = "percentile"
	// ThresholdFixed uses a constant cut-off.
	ThresholdFixed ThresholdMethod = "fixed"
)

// Selector defaults.
const (
	DefaultMinSentenceLength = 10
	DefaultPercentile        = 75.0
	DefaultFixedThreshold    = 0.5
)

// Config configures the relevance selector.
type Config struct {
	// Method selects the threshold calculation.
	Method ThresholdMethod `yaml:"method" mapstructure:"method"`
	// MinSentenceLength drops shorter candidate sentences.
	MinSentenceLength int `yaml:"min_sentence_length" mapstructure:"min_sentence_length"`
	// Percentile used by the percentile method.
	Percentile float64 `yaml:"percentile" mapstructure:"percentile"`
	// Fixed cut-off used by the fixed method.
	Fixed float64 `yaml:"fixed" mapstructure:"fixed"`
}

// Scored pairs a sentence with its similarity to the reference text.
type Scored struct {
	Sentence string
	Score    float64
}

// Selector scores candidate sentences against a reference text.
type Selector struct {
	cfg      Config
	embedder provider.Embedder
	logger   logger.Interface
}

// NewSelector creates a relevance selector.
func NewSelector(cfg Config, embedder provider.Embedder, log logger.Interface) *Selector {
	if cfg.Method == "" {
		cfg.Method = ThresholdKMeans
	}
	if cfg.MinSentenceLength <= 0 {
		cfg.MinSentenceLength = DefaultMinSentenceLength
	}
	if cfg.Percentile <= 0 || cfg.Percentile >= 100 {
		cfg.Percentile = DefaultPercentile
	}
	if cfg.Fixed <= 0 {
		cfg.Fixed = DefaultFixedThreshold
	}
	if log == nil {
		log = logger.NewNoOp()
	}
	return &Selector{cfg: cfg, embedder: embedder, logger: log.WithComponent("relevance")}
}

// Select splits the candidate text into sentences, scores each against the
// reference, and returns the sentences above the adaptive threshold in
// descending score order. An empty candidate yields an empty result. A
// provider failure on one sentence scores it 0 rather than aborting the
// batch.
func (s *Selector) Select(ctx context.Context, referenceText, candidateText string) ([]Scored, error) {
	sentences := textutil.FilterSentences(
		textutil.SplitSentences(textutil.Clean(candidateText)),
		s.cfg.MinSentenceLength,
	)
	if len(sentences) == 0 {
		return nil, nil
	}

	refVec, err := s.embedder.EmbedText(ctx, textutil.Clean(referenceText))
	if err != nil {
		// Without a reference embedding nothing can score above zero;
		// return the decision, not an error.
		s.logger.Warn("reference embedding failed, selecting nothing", "error", err)
		return nil, nil
	}

	scored := make([]Scored, len(sentences))
	for i, sentence := range sentences {
		score := 0.0
		vec, embedErr := s.embedder.EmbedText(ctx, sentence)
		if embedErr != nil {
			s.logger.Debug("sentence embedding failed, scoring zero", "error", embedErr)
		} else {
			score = textutil.Cosine(refVec, vec)
		}
		scored[i] = Scored{Sentence: sentence, Score: score}
	}

	threshold := s.threshold(scores(scored))
	selected := make([]Scored, 0, len(scored))
	for _, sc := range scored {
		if sc.Score > threshold {
			selected = append(selected, sc)
		}
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Score > selected[j].Score
	})

	s.logger.Debug("relevance selection completed",
		"candidates", len(scored),
		"selected", len(selected),
		"threshold", threshold,
		"method", string(s.cfg.Method),
	)
	return selected, nil
}

// Sentences returns only the sentence text of a scored selection, preserving
// its order.
func Sentences(selected []Scored) []string {
	out := make([]string, len(selected))
	for i, sc := range selected {
		out[i] = sc.Sentence
	}
	return out
}

func scores(scored []Scored) []float64 {
	out := make([]float64, len(scored))
	for i, sc := range scored {
		out[i] = sc.Score
	}
	return out
}

// threshold derives the cut-off for this call's score distribution.
func (s *Selector) threshold(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	switch s.cfg.Method {
	case ThresholdPercentile:
		return percentile(values, s.cfg.Percentile)
	case ThresholdFixed:
		return s.cfg.Fixed
	default:
		return twoMeansThreshold(values)
	}
}
