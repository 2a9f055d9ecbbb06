package relevance

import (
	"math"
	"sort"
)

// maxKMeansIterations bounds the clustering loop; 1-D 2-means converges in a
// handful of passes.
const maxKMeansIterations = 50

// twoMeansThreshold clusters the scores into two groups (k=2) and returns
// the mean of the cluster centers. With a bimodal score distribution this
// lands between the relevant and irrelevant clusters.
func twoMeansThreshold(values []float64) float64 {
	if len(values) == 1 {
		return values[0] / 2
	}

	lo, hi := minMax(values)
	if lo == hi {
		// Degenerate distribution: both centers coincide.
		return lo
	}

	// Initialize centers at the extremes for a deterministic result.
	centerLo, centerHi := lo, hi

	for iter := 0; iter < maxKMeansIterations; iter++ {
		var sumLo, sumHi float64
		var nLo, nHi int

		for _, v := range values {
			if math.Abs(v-centerLo) <= math.Abs(v-centerHi) {
				sumLo += v
				nLo++
			} else {
				sumHi += v
				nHi++
			}
		}

		newLo, newHi := centerLo, centerHi
		if nLo > 0 {
			newLo = sumLo / float64(nLo)
		}
		if nHi > 0 {
			newHi = sumHi / float64(nHi)
		}

		if newLo == centerLo && newHi == centerHi {
			break
		}
		centerLo, centerHi = newLo, newHi
	}

	return (centerLo + centerHi) / 2
}

// percentile returns the pth percentile of the values using linear
// interpolation between ranks.
func percentile(values []float64, p float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0]
	}

	rank := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	frac := rank - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

func minMax(values []float64) (lo, hi float64) {
	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
