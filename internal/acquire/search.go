package acquire

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jonesrussell/newsfuse/internal/domain"
	"github.com/jonesrussell/newsfuse/internal/logger"
)

const defaultSearchTimeout = 30 * time.Second

// SearchConfig configures the article search client.
type SearchConfig struct {
	// BaseURL of the search endpoint.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	// APIKey for the search service.
	APIKey string `yaml:"api_key" mapstructure:"api_key"`
	// Timeout bounds one search call.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// SearchClient finds candidate article URLs for a query via an HTTP search
// service, enforcing domain diversity on the results.
type SearchClient struct {
	cfg        SearchConfig
	httpClient *http.Client
	logger     logger.Interface
}

// NewSearchClient creates a new search client.
func NewSearchClient(cfg SearchConfig, log logger.Interface) *SearchClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultSearchTimeout
	}
	if log == nil {
		log = logger.NewNoOp()
	}
	return &SearchClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log.WithComponent("search"),
	}
}

type searchResponse struct {
	Results []struct {
		URL string `json:"url"`
	} `json:"results"`
}

// Search returns up to count candidate URLs for the seed query. Results are
// filtered for domain diversity: at most one URL per normalized domain, and
// none from the excluded domains. When the first page comes back short, one
// refinement query excluding the seen domains is issued.
func (c *SearchClient) Search(ctx context.Context, seed string, excludeDomains []string, count int) ([]string, error) {
	if count <= 0 {
		return nil, nil
	}

	excluded := make(map[string]struct{}, len(excludeDomains))
	for _, d := range excludeDomains {
		excluded[domain.NormalizeDomain(d)] = struct{}{}
	}

	links := make([]string, 0, count)
	seen := make(map[string]struct{})

	collect := func(results []string) {
		for _, link := range results {
			if len(links) >= count {
				return
			}
			dom := domain.DomainOf(link)
			if dom == "" {
				continue
			}
			if _, dup := seen[dom]; dup {
				continue
			}
			if _, skip := excluded[dom]; skip {
				continue
			}
			seen[dom] = struct{}{}
			links = append(links, link)
		}
	}

	results, err := c.query(ctx, seed, count)
	if err != nil {
		return nil, err
	}
	collect(results)

	// Refine once when the first page was not diverse enough.
	if len(links) < count {
		refined := seed
		for dom := range seen {
			refined += " -site:" + dom
		}
		results, err = c.query(ctx, refined, count-len(links))
		if err != nil {
			// The first page already produced usable links; refinement
			// failure is not fatal.
			c.logger.Warn("search refinement failed", "error", err)
			return links, nil
		}
		collect(results)
	}

	c.logger.Debug("search completed", "seed", seed, "links", len(links))
	return links, nil
}

// query issues one search call.
func (c *SearchClient) query(ctx context.Context, q string, count int) ([]string, error) {
	endpoint, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid search base url: %w", err)
	}
	params := endpoint.Query()
	params.Set("q", q)
	params.Set("num", strconv.Itoa(count))
	if c.cfg.APIKey != "" {
		params.Set("api_key", c.cfg.APIKey)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	urls := make([]string, 0, len(parsed.Results))
	for _, result := range parsed.Results {
		if link := strings.TrimSpace(result.URL); link != "" {
			urls = append(urls, link)
		}
	}
	return urls, nil
}
