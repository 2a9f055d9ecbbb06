package consensus

import (
	"context"
	"image"
	"net/http"
	"regexp"
	"strconv"
	"time"

	// Decoders for the formats the pool's extractors admit.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/jonesrussell/newsfuse/internal/logger"
)

const (
	defaultQualityTimeout = 10 * time.Second
	// maxHeaderBytes is enough to decode the dimensions of any common
	// format without pulling the whole file.
	maxHeaderBytes = 64 * 1024
)

// dimensionHint matches WIDTHxHEIGHT fragments embedded in image URLs, a
// common CDN convention.
var dimensionHint = regexp.MustCompile(`(\d{2,5})x(\d{2,5})`)

// QualityConfig configures the image quality scorer.
type QualityConfig struct {
	// Timeout bounds one probe request.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// SkipFetch disables network probes; only URL hints score.
	SkipFetch bool `yaml:"skip_fetch" mapstructure:"skip_fetch"`
}

// QualityScorer ranks images by pixel count. It probes the image header over
// HTTP to read real dimensions and falls back to dimension hints in the URL.
type QualityScorer struct {
	cfg        QualityConfig
	httpClient *http.Client
	logger     logger.Interface
}

// NewQualityScorer creates an image quality scorer.
func NewQualityScorer(cfg QualityConfig, log logger.Interface) *QualityScorer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultQualityTimeout
	}
	if log == nil {
		log = logger.NewNoOp()
	}
	return &QualityScorer{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     log.WithComponent("image_quality"),
	}
}

// Score returns width*height for the image, or 0 when neither a probe nor a
// URL hint yields dimensions. A score of 0 never fails a run; it only ranks
// the image last.
func (q *QualityScorer) Score(ctx context.Context, imageURL string) int64 {
	if !q.cfg.SkipFetch {
		if w, h, ok := q.probe(ctx, imageURL); ok {
			return int64(w) * int64(h)
		}
	}
	if w, h, ok := hintDimensions(imageURL); ok {
		return int64(w) * int64(h)
	}
	return 0
}

// probe fetches just enough of the image to decode its dimensions.
func (q *QualityScorer) probe(ctx context.Context, imageURL string) (width, height int, ok bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return 0, 0, false
	}
	req.Header.Set("Range", "bytes=0-"+strconv.Itoa(maxHeaderBytes-1))

	resp, err := q.httpClient.Do(req)
	if err != nil {
		q.logger.Debug("image probe failed", "image", imageURL, "error", err)
		return 0, 0, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return 0, 0, false
	}

	cfg, _, err := image.DecodeConfig(http.MaxBytesReader(nil, resp.Body, maxHeaderBytes))
	if err != nil {
		q.logger.Debug("image header decode failed", "image", imageURL, "error", err)
		return 0, 0, false
	}
	return cfg.Width, cfg.Height, true
}

// hintDimensions parses a WIDTHxHEIGHT fragment from the URL.
func hintDimensions(imageURL string) (width, height int, ok bool) {
	match := dimensionHint.FindStringSubmatch(imageURL)
	if match == nil {
		return 0, 0, false
	}
	w, errW := strconv.Atoi(match[1])
	h, errH := strconv.Atoi(match[2])
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}
