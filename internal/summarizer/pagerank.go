package summarizer

import "math"

const (
	dampingFactor      = 0.85
	maxRankIterations  = 100
	rankConvergenceTol = 1e-4
)

// pageRank runs weighted PageRank over the similarity graph. Isolated
// sentences keep the base rank, so a document with no similar pairs still
// extracts deterministically in document order.
func pageRank(graph *similarityGraph, n int) []float64 {
	ranks := make([]float64, n)
	for i := range ranks {
		ranks[i] = 1.0 / float64(n)
	}

	// Total outgoing edge weight per node, for normalizing contributions.
	outWeight := make([]float64, n)
	for node, adj := range graph.edges {
		for _, e := range adj {
			outWeight[node] += e.weight
		}
	}

	base := (1 - dampingFactor) / float64(n)
	next := make([]float64, n)

	for iter := 0; iter < maxRankIterations; iter++ {
		for i := range next {
			next[i] = base
		}
		for node, adj := range graph.edges {
			if outWeight[node] == 0 {
				continue
			}
			share := dampingFactor * ranks[node] / outWeight[node]
			for _, e := range adj {
				next[e.to] += share * e.weight
			}
		}

		delta := 0.0
		for i := range ranks {
			delta += math.Abs(next[i] - ranks[i])
		}
		ranks, next = next, ranks

		if delta < rankConvergenceTol {
			break
		}
	}
	return ranks
}
