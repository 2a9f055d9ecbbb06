package pool

import (
	"context"
	"strings"

	"github.com/jonesrussell/newsfuse/internal/domain"
)

// searchBatchSize is how many candidate URLs one backfill attempt requests.
const searchBatchSize = 3

// EnsureSufficient grows the named field until it reaches threshold entries.
// Each attempt searches for candidate URLs (excluding already-seen domains),
// fetches them, and merges the results. The loop stops when the threshold is
// met, the collaborator returns zero novel candidates, or the attempt budget
// (= threshold) runs out — so it terminates even when no more diverse
// sources exist. A single fetch failure is logged and skipped.
func (p *Pool) EnsureSufficient(ctx context.Context, field Field, threshold int) error {
	if threshold <= 0 || p.Len(field) >= threshold {
		return nil
	}
	if p.acquirer == nil {
		return nil
	}

	seed := p.searchSeed()

	for attempt := 0; attempt < threshold && p.Len(field) < threshold; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		candidates, err := p.acquirer.Search(ctx, seed, p.SeenDomains(), searchBatchSize)
		if err != nil {
			p.logger.Warn("backfill search failed", "field", string(field), "error", err)
			return nil
		}

		novel := p.filterNovel(candidates)
		if len(novel) == 0 {
			p.logger.Info("backfill exhausted, no novel candidates",
				"field", string(field),
				"have", p.Len(field),
				"want", threshold,
			)
			return nil
		}

		for _, candidate := range novel {
			if p.Len(field) >= threshold {
				break
			}
			item, fetchErr := p.acquirer.Fetch(ctx, candidate)
			if fetchErr != nil {
				// At-least-one-success policy: a failed fetch never aborts
				// the loop.
				p.logger.Warn("backfill fetch failed, skipping source",
					"url", candidate,
					"error", fetchErr,
				)
				continue
			}
			p.Add(item)
		}
	}

	return nil
}

// searchSeed picks the query text for backfill searches: the first title
// when one exists, otherwise a generic current-events query.
func (p *Pool) searchSeed() string {
	if len(p.titles) > 0 {
		return p.titles[0]
	}
	return "current events"
}

// filterNovel drops candidates whose domain is already in the pool.
func (p *Pool) filterNovel(candidates []string) []string {
	novel := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		dom := domain.DomainOf(candidate)
		if dom == "" {
			continue
		}
		if _, seen := p.seenDomains[dom]; seen {
			continue
		}
		novel = append(novel, candidate)
	}
	return novel
}
