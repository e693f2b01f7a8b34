package spread

import "math"

// IndexSort fills idx with a permutation of [0, len(x)) that visits
// points in grid-bin order, improving cache locality during spreading and
// interpolation. The return value reports whether a real sort happened;
// when the sort is skipped (policy SortNever, or SortHeuristic deciding
// against it) idx holds the identity permutation, which remains a valid
// input to Spread and Interp.
//
// The sort is a counting sort over rectangular bins of the fine grid and
// is stable, so results are reproducible.
func IndexSort(idx []int, nf1, nf2, nf3 int, x, y, z []float64, opts Opts) bool {
	nj := len(x)
	if !shouldSort(nj, nf1*nf2*nf3, opts.Sort) {
		for i := range idx {
			idx[i] = i
		}
		return false
	}

	dim := dimOf(y, z)
	nb1 := (nf1 + binSize1 - 1) / binSize1
	nb2, nb3 := 1, 1
	if dim > 1 {
		nb2 = (nf2 + binSize2 - 1) / binSize2
	}
	if dim > 2 {
		nb3 = (nf3 + binSize3 - 1) / binSize3
	}

	key := make([]int, nj)
	counts := make([]int, nb1*nb2*nb3+1)
	for j := range nj {
		b := int(foldRescale(x[j], nf1)) / binSize1
		if dim > 1 {
			b += nb1 * (int(foldRescale(y[j], nf2)) / binSize2)
		}
		if dim > 2 {
			b += nb1 * nb2 * (int(foldRescale(z[j], nf3)) / binSize3)
		}
		key[j] = b
		counts[b+1]++
	}
	for b := 1; b < len(counts); b++ {
		counts[b] += counts[b-1]
	}
	for j := range nj {
		idx[counts[key[j]]] = j
		counts[key[j]]++
	}
	return true
}

// shouldSort applies the sort policy. The heuristic sorts once the point
// count clearly exceeds the cache-resident scale of the grid: more than
// sortHeuristicFactor times the cube root of the grid volume, and at
// least sortMinPoints overall.
func shouldSort(nj, nvol, policy int) bool {
	switch policy {
	case SortNever:
		return false
	case SortAlways:
		return true
	default:
		if nj < sortMinPoints {
			return false
		}
		return float64(nj) > sortHeuristicFactor*math.Cbrt(float64(nvol))
	}
}
