package domain

import (
	"strings"
	"time"
)

// Article is the canonical record assembled from many sources. It is the only
// entity handed to persistence.
type Article struct {
	// Unique identifier for the article
	ID string `json:"id" mapstructure:"id"`
	// Title of the article
	Title string `json:"title" mapstructure:"title"`
	// Fused description of the article
	Description string `json:"description" mapstructure:"description"`
	// Selected images, highest quality first
	Images []string `json:"images" mapstructure:"images"`
	// Source URLs the article was assembled from, one per domain
	Sources []string `json:"sources" mapstructure:"sources"`
	// Authors across all contributing sources
	Authors []string `json:"authors,omitempty" mapstructure:"authors"`
	// Tags or categories related to the article
	Tags []string `json:"tags,omitempty" mapstructure:"tags"`
	// Crowd-sourced URLs queued for the next update pass
	CrowdSourced []string `json:"crowd_sourced,omitempty" mapstructure:"crowd_sourced"`
	// Record creation timestamp
	PublishedAt time.Time `json:"published_at" mapstructure:"published_at"`
	// Record update timestamp
	UpdatedAt time.Time `json:"updated_at" mapstructure:"updated_at"`
}

// TagsString returns tags as a comma-separated string.
func (a *Article) TagsString() string {
	if len(a.Tags) == 0 {
		return ""
	}
	return strings.Join(a.Tags, ", ")
}

// PrimarySource returns the first source URL, or an empty string when the
// article has none.
func (a *Article) PrimarySource() string {
	if len(a.Sources) == 0 {
		return ""
	}
	return a.Sources[0]
}

// MergeSources unions newly discovered sources into the article, deduplicated
// by normalized domain. Re-running a merge with the same input is a no-op.
func (a *Article) MergeSources(sources []string) {
	seen := make(map[string]struct{}, len(a.Sources))
	for _, s := range a.Sources {
		if d := DomainOf(s); d != "" {
			seen[d] = struct{}{}
		}
	}
	for _, s := range sources {
		d := DomainOf(s)
		if d == "" {
			continue
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		a.Sources = append(a.Sources, s)
	}
}

// MergeAuthors unions authors into the article, deduplicated by reduced
// author name.
func (a *Article) MergeAuthors(authors []string) {
	seen := make(map[string]struct{}, len(a.Authors))
	for _, name := range a.Authors {
		seen[strings.ToLower(name)] = struct{}{}
	}
	for _, raw := range authors {
		name := AuthorName(raw)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		a.Authors = append(a.Authors, name)
	}
}
