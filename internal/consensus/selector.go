// Package consensus selects article images by cross-text voting: an image is
// kept only when enough of the target texts independently agree it matches.
// A terse title disagreeing with a rich description costs an image nothing;
// disagreement beyond the configured slack drops it.
package consensus

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/jonesrussell/newsfuse/internal/logger"
	"github.com/jonesrussell/newsfuse/internal/provider"
	"github.com/jonesrussell/newsfuse/internal/textutil"
)

// Selector defaults.
const (
	// DefaultTopN is how many images survive ranking.
	DefaultTopN = 5
	// DefaultQuorumSlack is how many target texts may disagree before an
	// image is dropped.
	DefaultQuorumSlack = 1
	// defaultEmbedConcurrency bounds parallel image embedding calls.
	defaultEmbedConcurrency = 4
)

// Config configures the consensus image selector.
type Config struct {
	// MatchThreshold is the cosine similarity above which an (image, text)
	// pair counts as a match. The zero default means any positive
	// correlation matches.
	MatchThreshold float64 `yaml:"match_threshold" mapstructure:"match_threshold"`
	// TopN caps the number of retained images.
	TopN int `yaml:"top_n" mapstructure:"top_n"`
	// QuorumSlack is the number of disagreeing texts tolerated. The quorum
	// is len(texts) - QuorumSlack, floored at 1.
	QuorumSlack int `yaml:"quorum_slack" mapstructure:"quorum_slack"`
	// EmbedConcurrency bounds parallel image embedding calls.
	EmbedConcurrency int `yaml:"embed_concurrency" mapstructure:"embed_concurrency"`
}

// Selector quorum-votes images across target texts.
type Selector struct {
	cfg      Config
	embedder provider.Embedder
	quality  *QualityScorer
	logger   logger.Interface
}

// NewSelector creates a consensus image selector.
func NewSelector(cfg Config, embedder provider.Embedder, quality *QualityScorer, log logger.Interface) *Selector {
	if cfg.TopN <= 0 {
		cfg.TopN = DefaultTopN
	}
	if cfg.QuorumSlack <= 0 {
		cfg.QuorumSlack = DefaultQuorumSlack
	}
	if cfg.EmbedConcurrency <= 0 {
		cfg.EmbedConcurrency = defaultEmbedConcurrency
	}
	if quality == nil {
		quality = NewQualityScorer(QualityConfig{}, log)
	}
	if log == nil {
		log = logger.NewNoOp()
	}
	return &Selector{
		cfg:      cfg,
		embedder: embedder,
		quality:  quality,
		logger:   log.WithComponent("consensus"),
	}
}

// Select tallies, per image, how many target texts it matches, keeps the
// images meeting quorum, and returns the top-N by quality score. An
// unreachable or unembeddable image is a non-match for every text, never a
// failure.
func (s *Selector) Select(ctx context.Context, images, texts []string) []string {
	if len(images) == 0 || len(texts) == 0 {
		return nil
	}

	textVecs := s.embedTexts(ctx, texts)
	imageVecs := s.embedImages(ctx, images)

	quorum := len(texts) - s.cfg.QuorumSlack
	if quorum < 1 {
		quorum = 1
	}

	retained := make([]string, 0, len(images))
	for i, img := range images {
		if imageVecs[i] == nil {
			continue
		}
		votes := 0
		for _, tv := range textVecs {
			if tv == nil {
				continue
			}
			if textutil.Cosine(imageVecs[i], tv) > s.cfg.MatchThreshold {
				votes++
			}
		}
		if votes >= quorum {
			retained = append(retained, img)
		}
	}

	ranked := s.rankByQuality(ctx, retained)
	if len(ranked) > s.cfg.TopN {
		ranked = ranked[:s.cfg.TopN]
	}

	s.logger.Debug("image consensus completed",
		"candidates", len(images),
		"texts", len(texts),
		"quorum", quorum,
		"retained", len(retained),
		"selected", len(ranked),
	)
	return ranked
}

// embedTexts embeds every target text; a failed text embeds as nil and votes
// for nothing.
func (s *Selector) embedTexts(ctx context.Context, texts []string) [][]float32 {
	vecs := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := s.embedder.EmbedText(ctx, text)
		if err != nil {
			s.logger.Warn("target text embedding failed", "error", err)
			continue
		}
		vecs[i] = vec
	}
	return vecs
}

// embedImages embeds images in parallel with bounded concurrency. A failed
// image embeds as nil, which counts as a non-match for every text.
func (s *Selector) embedImages(ctx context.Context, images []string) [][]float32 {
	vecs := make([][]float32, len(images))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.EmbedConcurrency)

	for i, img := range images {
		g.Go(func() error {
			vec, err := s.embedder.EmbedImage(gctx, img)
			if err != nil {
				s.logger.Debug("image embedding failed, treating as non-match",
					"image", img,
					"error", err,
				)
				return nil
			}
			vecs[i] = vec
			return nil
		})
	}

	// Workers never return errors; Wait is for joining only.
	_ = g.Wait()
	return vecs
}

// rankByQuality orders images by descending quality score. The sort is
// stable so equal-quality images keep their pool order.
func (s *Selector) rankByQuality(ctx context.Context, images []string) []string {
	type scored struct {
		url   string
		score int64
	}
	scoredImages := make([]scored, len(images))
	for i, img := range images {
		scoredImages[i] = scored{url: img, score: s.quality.Score(ctx, img)}
	}

	sort.SliceStable(scoredImages, func(i, j int) bool {
		return scoredImages[i].score > scoredImages[j].score
	})

	ranked := make([]string, len(scoredImages))
	for i, sc := range scoredImages {
		ranked[i] = sc.url
	}
	return ranked
}
