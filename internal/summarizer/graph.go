package summarizer

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/jonesrussell/newsfuse/internal/logger"
	"github.com/jonesrussell/newsfuse/internal/memory"
	"github.com/jonesrussell/newsfuse/internal/textutil"
	"github.com/jonesrussell/newsfuse/internal/worker"
)

// minEdgeSimilarity is the Jaccard similarity below which sentence pairs get
// no edge. Keeping the graph sparse is what keeps ranking cheap.
const minEdgeSimilarity = 0.1

// rowsPerBatch is how many sentence rows go into one bulk-synchronous batch.
// Batches are joined before the next begins so the memory monitor gets a
// quiet point to reclaim at.
const rowsPerBatch = 64

type edge struct {
	to     int
	weight float64
}

// similarityGraph is a sparse undirected sentence-similarity graph with
// adjacency lists indexed by sentence position.
type similarityGraph struct {
	edges [][]edge
}

type graphBuilder struct {
	sentences []string
	cache     *lru.Cache[int, map[string]struct{}]
	monitor   *memory.Monitor
	pool      *worker.Pool
	logger    logger.Interface
}

// build computes the upper triangle of the similarity matrix row by row,
// keeping only pairs above minEdgeSimilarity, then mirrors edges so the
// graph is undirected. Only forward edges are written during the parallel
// phase, each row into its own slot, so adjacency order never depends on
// worker scheduling and identical input yields an identical graph.
func (b *graphBuilder) build(ctx context.Context) (*similarityGraph, error) {
	n := len(b.sentences)
	forward := make([][]edge, n)

	for start := 0; start < n; start += rowsPerBatch {
		end := start + rowsPerBatch
		if end > n {
			end = n
		}

		tasks := make([]worker.Task, 0, end-start)
		for row := start; row < end; row++ {
			tasks = append(tasks, func(ctx context.Context) error {
				forward[row] = b.buildRow(row)
				return nil
			})
		}
		if err := b.pool.Run(ctx, tasks); err != nil {
			return nil, err
		}

		b.monitor.ReclaimIfCritical()
	}

	graph := &similarityGraph{edges: make([][]edge, n)}
	edgeCount := 0
	for row, adj := range forward {
		graph.edges[row] = append(graph.edges[row], adj...)
		edgeCount += len(adj)
	}
	for row, adj := range forward {
		for _, e := range adj {
			graph.edges[e.to] = append(graph.edges[e.to], edge{to: row, weight: e.weight})
		}
	}

	b.logger.Debug("similarity graph built",
		"sentences", n,
		"edges", edgeCount,
	)
	return graph, nil
}

// buildRow scores sentence row against every later sentence and returns the
// pairs that clear the sparsity floor, in column order.
func (b *graphBuilder) buildRow(row int) []edge {
	rowTokens := b.tokens(row)
	if len(rowTokens) == 0 {
		return nil
	}

	var adj []edge
	for col := row + 1; col < len(b.sentences); col++ {
		colTokens := b.tokens(col)
		if len(colTokens) == 0 {
			continue
		}
		sim := textutil.Jaccard(rowTokens, colTokens)
		if sim <= minEdgeSimilarity {
			continue
		}
		adj = append(adj, edge{to: col, weight: sim})
	}
	return adj
}

// tokens returns the cached token set for a sentence, computing it on miss.
func (b *graphBuilder) tokens(idx int) map[string]struct{} {
	if cached, ok := b.cache.Get(idx); ok {
		return cached
	}
	set := textutil.TokenSet(b.sentences[idx])
	b.cache.Add(idx, set)
	return set
}
