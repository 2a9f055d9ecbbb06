// Package acquire implements the acquisition collaborator: the search client
// that proposes candidate article URLs and the fetcher that retrieves and
// extracts them.
package acquire

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	colly "github.com/gocolly/colly/v2"

	"github.com/jonesrussell/newsfuse/internal/domain"
	"github.com/jonesrussell/newsfuse/internal/logger"
)

// Fetcher defaults.
const (
	defaultRequestTimeout = 15 * time.Second
	defaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// minParagraphLength filters boilerplate fragments out of body text.
	minParagraphLength = 30
)

// paragraphSkipMarkers drops consent and promo paragraphs.
var paragraphSkipMarkers = []string{"cookie", "subscribe", "advertisement"}

// imageAttrs are the attributes checked for image URLs, covering common
// lazy-loading schemes.
var imageAttrs = []string{"src", "data-src", "data-original", "data-lazy-src"}

// imageExtensions are the file extensions accepted as article images.
var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg"}

// imageURLBlocklist filters tracking pixels and placeholder hosts.
var imageURLBlocklist = []string{"pixel", "analytics", "gstatic.com", "googleusercontent.com"}

// FetcherConfig configures the page fetcher.
type FetcherConfig struct {
	// UserAgent sent with every request.
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`
	// RequestTimeout bounds one page fetch.
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
}

// Fetcher retrieves a page and extracts a SourceItem from it.
type Fetcher struct {
	cfg    FetcherConfig
	logger logger.Interface
}

// NewFetcher creates a new page fetcher.
func NewFetcher(cfg FetcherConfig, log logger.Interface) *Fetcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if log == nil {
		log = logger.NewNoOp()
	}
	return &Fetcher{cfg: cfg, logger: log.WithComponent("fetcher")}
}

// Fetch retrieves the page at the given URL and extracts title, author,
// paragraphs, and images. Each call uses a fresh collector so fetches are
// independent and safe to parallelize.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*domain.SourceItem, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil || parsed.Host == "" {
		return nil, fmt.Errorf("invalid source url %q", pageURL)
	}

	collector := colly.NewCollector(
		colly.UserAgent(f.cfg.UserAgent),
		colly.MaxDepth(1),
		colly.StdlibContext(ctx),
	)
	collector.SetRequestTimeout(f.cfg.RequestTimeout)

	item := &domain.SourceItem{
		URL:    pageURL,
		Domain: domain.NormalizeDomain(parsed.Host),
	}

	var fetchErr error
	collector.OnHTML("html", func(e *colly.HTMLElement) {
		doc := e.DOM
		item.Title = extractTitle(doc, item.Domain)
		item.Author = extractAuthor(doc, item.Domain)
		item.Paragraphs = extractParagraphs(doc)
		item.Images = extractImages(doc, e.Request.URL)
	})
	collector.OnError(func(_ *colly.Response, visitErr error) {
		fetchErr = visitErr
	})

	if visitErr := collector.Visit(pageURL); visitErr != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, visitErr)
	}
	collector.Wait()

	if fetchErr != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, fetchErr)
	}
	if item.Title == "" && len(item.Paragraphs) == 0 {
		return nil, fmt.Errorf("fetch %s: no extractable content", pageURL)
	}

	f.logger.Debug("source fetched",
		"url", pageURL,
		"paragraphs", len(item.Paragraphs),
		"images", len(item.Images),
	)
	return item, nil
}

// extractTitle prefers <title>, then og:title, then the first h1, and falls
// back to a domain-derived placeholder.
func extractTitle(doc *goquery.Selection, dom string) string {
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	if ogTitle, exists := doc.Find("meta[property='og:title']").Attr("content"); exists {
		if title := strings.TrimSpace(ogTitle); title != "" {
			return title
		}
	}
	if title := strings.TrimSpace(doc.Find("h1").First().Text()); title != "" {
		return title
	}
	return "Article from " + dom
}

// authorSelectors are checked in order for a byline.
var authorSelectors = []string{
	"meta[name='author']",
	"meta[property='article:author']",
	"a.author", "a.byline",
	"span.author", "span.byline",
	"div.author", "div.byline",
	"p.author", "p.byline",
}

// extractAuthor checks meta tags and byline elements, falling back to the
// source domain when no author is found.
func extractAuthor(doc *goquery.Selection, dom string) string {
	for _, selector := range authorSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		author := ""
		if strings.HasPrefix(selector, "meta") {
			author, _ = sel.Attr("content")
		} else {
			author = sel.Text()
		}
		author = strings.TrimSpace(author)
		if len(author) > 2 {
			return author
		}
	}
	return dom
}

// articleContainers are candidate selectors for the main article body.
var articleContainers = []string{"article", "[class*='article']", "[class*='post']", "[class*='content']", "main", "#main-content"}

// extractParagraphs extracts body paragraphs from the most paragraph-dense
// article container, filtering boilerplate.
func extractParagraphs(doc *goquery.Selection) []string {
	container := doc
	for _, selector := range articleContainers {
		candidates := doc.Find(selector)
		if candidates.Length() == 0 {
			continue
		}
		// Pick the candidate with the most paragraph tags.
		best := candidates.First()
		bestCount := best.Find("p").Length()
		candidates.Each(func(_ int, sel *goquery.Selection) {
			if count := sel.Find("p").Length(); count > bestCount {
				best, bestCount = sel, count
			}
		})
		container = best
		break
	}

	var paragraphs []string
	container.Find("p").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if len(text) <= minParagraphLength {
			return
		}
		lower := strings.ToLower(text)
		for _, marker := range paragraphSkipMarkers {
			if strings.Contains(lower, marker) {
				return
			}
		}
		paragraphs = append(paragraphs, text)
	})
	return paragraphs
}

// extractImages collects absolute, plausible article-image URLs from img
// tags, checking lazy-loading attributes as well as src.
func extractImages(doc *goquery.Selection, base *url.URL) []string {
	seen := make(map[string]struct{})
	var images []string

	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		for _, attr := range imageAttrs {
			raw, exists := sel.Attr(attr)
			if !exists || raw == "" {
				continue
			}
			resolved := resolveURL(base, raw)
			if resolved == "" || !isValidImageURL(resolved) {
				continue
			}
			if _, dup := seen[resolved]; dup {
				continue
			}
			seen[resolved] = struct{}{}
			images = append(images, resolved)
		}
	})
	return images
}

func resolveURL(base *url.URL, raw string) string {
	ref, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}

// isValidImageURL keeps http(s) URLs with image extensions that are not on
// the tracking blocklist.
func isValidImageURL(imageURL string) bool {
	lower := strings.ToLower(imageURL)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return false
	}
	for _, blocked := range imageURLBlocklist {
		if strings.Contains(lower, blocked) {
			return false
		}
	}
	// Ignore query strings when checking the extension.
	path := lower
	if idx := strings.IndexByte(path, '?'); idx >= 0 {
		path = path[:idx]
	}
	for _, ext := range imageExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
