package acquire

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jonesrussell/newsfuse/internal/logger"
)

// HeadlinesConfig configures the headline feed client.
type HeadlinesConfig struct {
	// BaseURL of the top-headlines endpoint.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	// APIKey for the news service.
	APIKey string `yaml:"api_key" mapstructure:"api_key"`
	// Country filters headlines by country code.
	Country string `yaml:"country" mapstructure:"country"`
	// Timeout bounds one call.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// Headline is one entry from the headline feed, the seed from which an
// article run starts.
type Headline struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Author      string `json:"author"`
	ImageURL    string `json:"urlToImage"`
}

// HeadlinesClient pulls the current top headlines from a news API.
type HeadlinesClient struct {
	cfg        HeadlinesConfig
	httpClient *http.Client
	logger     logger.Interface
}

// NewHeadlinesClient creates a new headline feed client.
func NewHeadlinesClient(cfg HeadlinesConfig, log logger.Interface) *HeadlinesClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultSearchTimeout
	}
	if cfg.Country == "" {
		cfg.Country = "us"
	}
	if log == nil {
		log = logger.NewNoOp()
	}
	return &HeadlinesClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log.WithComponent("headlines"),
	}
}

type headlinesResponse struct {
	Status   string     `json:"status"`
	Articles []Headline `json:"articles"`
}

// TopHeadlines returns up to limit current headlines. A zero limit returns
// everything the feed offers.
func (c *HeadlinesClient) TopHeadlines(ctx context.Context, limit int) ([]Headline, error) {
	endpoint, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid headlines base url: %w", err)
	}
	params := endpoint.Query()
	params.Set("country", c.cfg.Country)
	if c.cfg.APIKey != "" {
		params.Set("apiKey", c.cfg.APIKey)
	}
	if limit > 0 {
		params.Set("pageSize", strconv.Itoa(limit))
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build headlines request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("headlines request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("headlines returned status %d", resp.StatusCode)
	}

	var parsed headlinesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode headlines response: %w", err)
	}
	if parsed.Status != "ok" {
		return nil, fmt.Errorf("headlines feed returned status %q", parsed.Status)
	}

	articles := parsed.Articles
	if limit > 0 && len(articles) > limit {
		articles = articles[:limit]
	}

	c.logger.Info("headlines fetched", "count", len(articles))
	return articles, nil
}
