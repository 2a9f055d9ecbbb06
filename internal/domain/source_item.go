// Package domain provides domain models used across the application.
package domain

import (
	"net/url"
	"strings"
)

// SourceItem represents one scraped web source. It is immutable once fetched:
// acquisition creates it, everything downstream only reads it.
type SourceItem struct {
	// URL the item was fetched from.
	URL string `json:"url"`
	// Title of the page.
	Title string `json:"title"`
	// Paragraphs of article body text, in document order.
	Paragraphs []string `json:"paragraphs,omitempty"`
	// Images found on the page, as absolute URLs.
	Images []string `json:"images,omitempty"`
	// Author of the article, or the source domain when no byline was found.
	Author string `json:"author,omitempty"`
	// Domain the item was fetched from.
	Domain string `json:"domain"`
}

// NormalizeDomain strips a leading "www." and lowercases the host so that
// www.example.com and example.com count as the same source.
func NormalizeDomain(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	return strings.TrimPrefix(host, "www.")
}

// DomainOf extracts the normalized domain from a raw URL. Returns an empty
// string when the input does not parse as a URL with a host.
func DomainOf(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Host == "" {
		return ""
	}
	return NormalizeDomain(parsed.Host)
}

// AuthorName reduces an author value to a comparable name: URL-shaped values
// collapse to their normalized domain, anything else passes through trimmed.
func AuthorName(author string) string {
	author = strings.TrimSpace(author)
	if author == "" {
		return ""
	}
	if domain := DomainOf(author); domain != "" {
		return domain
	}
	return author
}
