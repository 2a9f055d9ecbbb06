// Package pool implements the content pool: the deduplicated multi-source
// aggregate that acquisition grows and the selectors consume. The pool is
// single-writer; only the backfill loop mutates it.
package pool

import (
	"context"
	"strings"

	"github.com/jonesrussell/newsfuse/internal/domain"
	"github.com/jonesrussell/newsfuse/internal/logger"
)

// Field names a pool field that can be grown by backfill.
type Field string

const (
	// FieldTitles is the pool of source titles.
	FieldTitles Field = "titles"
	// FieldParagraphs is the pool of body paragraphs.
	FieldParagraphs Field = "paragraphs"
	// FieldImages is the pool of image URLs.
	FieldImages Field = "images"
	// FieldSources is the pool of source URLs.
	FieldSources Field = "sources"
	// FieldAuthors is the pool of author names.
	FieldAuthors Field = "authors"
)

// Acquirer is the acquisition collaborator the backfill loop pulls from.
type Acquirer interface {
	// Search returns candidate article URLs for the seed query, excluding
	// the given domains.
	Search(ctx context.Context, seed string, excludeDomains []string, count int) ([]string, error)
	// Fetch retrieves and extracts one source item.
	Fetch(ctx context.Context, url string) (*domain.SourceItem, error)
}

// Pool accumulates deduplicated multi-source content. Entries keep
// first-seen order; dedup compares case-normalized trimmed strings, so add
// order is the only thing that affects output order.
type Pool struct {
	titles     []string
	paragraphs []string
	images     []string
	sources    []string
	authors    []string

	seen        map[Field]map[string]struct{}
	seenDomains map[string]struct{}

	acquirer Acquirer
	logger   logger.Interface
}

// New creates an empty pool backed by the given acquisition collaborator.
func New(acquirer Acquirer, log logger.Interface) *Pool {
	if log == nil {
		log = logger.NewNoOp()
	}
	return &Pool{
		seen: map[Field]map[string]struct{}{
			FieldTitles:     {},
			FieldParagraphs: {},
			FieldImages:     {},
			FieldSources:    {},
			FieldAuthors:    {},
		},
		seenDomains: make(map[string]struct{}),
		acquirer:    acquirer,
		logger:      log.WithComponent("pool"),
	}
}

// Add merges the item's fields into the pool. Duplicate entries and sources
// from already-seen domains are dropped; everything else appends in order.
// Returns true when the item contributed a new source.
func (p *Pool) Add(item *domain.SourceItem) bool {
	if item == nil {
		return false
	}

	dom := domain.NormalizeDomain(item.Domain)
	if dom == "" {
		dom = domain.DomainOf(item.URL)
	}
	if _, dup := p.seenDomains[dom]; dup || dom == "" {
		// One retained source per domain. Content from a duplicate domain
		// is not merged either: the pool's diversity invariant covers the
		// text, not just the source list.
		return false
	}
	p.seenDomains[dom] = struct{}{}

	p.sources = p.appendUnique(FieldSources, p.sources, []string{item.URL})
	p.titles = p.appendUnique(FieldTitles, p.titles, []string{item.Title})
	p.paragraphs = p.appendUnique(FieldParagraphs, p.paragraphs, item.Paragraphs)
	p.images = p.appendUnique(FieldImages, p.images, item.Images)

	if author := domain.AuthorName(item.Author); author != "" {
		p.authors = p.appendUnique(FieldAuthors, p.authors, []string{author})
	}

	p.logger.Debug("source merged into pool",
		"domain", dom,
		"paragraphs", len(item.Paragraphs),
		"images", len(item.Images),
	)
	return true
}

// appendUnique appends entries not yet seen for the field, preserving input
// order. Dedup keys are trimmed and case-folded; stored values keep their
// original casing.
func (p *Pool) appendUnique(field Field, dst, entries []string) []string {
	seen := p.seen[field]
	for _, entry := range entries {
		trimmed := strings.TrimSpace(entry)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		dst = append(dst, trimmed)
	}
	return dst
}

// Titles returns the deduplicated titles in first-seen order.
func (p *Pool) Titles() []string { return p.titles }

// Paragraphs returns the deduplicated paragraphs in first-seen order.
func (p *Pool) Paragraphs() []string { return p.paragraphs }

// Images returns the deduplicated image URLs in first-seen order.
func (p *Pool) Images() []string { return p.images }

// Sources returns the retained source URLs, one per domain.
func (p *Pool) Sources() []string { return p.sources }

// Authors returns the deduplicated author names.
func (p *Pool) Authors() []string { return p.authors }

// SeenDomains returns the normalized domains already represented in the
// pool.
func (p *Pool) SeenDomains() []string {
	domains := make([]string, 0, len(p.seenDomains))
	for d := range p.seenDomains {
		domains = append(domains, d)
	}
	return domains
}

// Len returns the current size of the named field.
func (p *Pool) Len(field Field) int {
	switch field {
	case FieldTitles:
		return len(p.titles)
	case FieldParagraphs:
		return len(p.paragraphs)
	case FieldImages:
		return len(p.images)
	case FieldSources:
		return len(p.sources)
	case FieldAuthors:
		return len(p.authors)
	default:
		return 0
	}
}
