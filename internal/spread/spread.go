// Package spread accumulates nonuniform point strengths onto a regular
// fine grid (spreading) and samples grid values back at nonuniform points
// (interpolation), using a compactly supported kernel as the convolution
// stencil. The grid is periodic in every dimension.
//
// Spread and Interp take a precomputed point permutation from IndexSort;
// visiting points in bin order keeps the touched grid neighborhoods in
// cache.
package spread

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/tphakala/go-nufft/internal/kernel"
)

// ErrPointOutOfRange is returned by Check for coordinates outside the
// accepted periodic range [-3pi, 3pi].
var ErrPointOutOfRange = errors.New("spread: nonuniform point out of range")

// Sort policies for IndexSort.
const (
	SortNever     = 0
	SortAlways    = 1
	SortHeuristic = 2
)

// Opts configures one spread or interpolation pass.
type Opts struct {
	Kernel  kernel.Params
	Sort    int  // SortNever, SortAlways or SortHeuristic
	ChkBnds bool // enforce the [-3pi, 3pi] coordinate range in Check
	Workers int  // max goroutines inside one call; <=1 means serial
	Debug   int
}

// Check validates nonuniform coordinates. With ChkBnds set, any
// coordinate outside [-3pi, 3pi] fails; otherwise Check is a no-op.
// Slices for unused dimensions are nil.
func Check(x, y, z []float64, opts Opts) error {
	if !opts.ChkBnds {
		return nil
	}
	for d, coords := range [3][]float64{x, y, z} {
		for j, v := range coords {
			if math.Abs(v) > maxCoord || math.IsNaN(v) {
				return fmt.Errorf("%w: dim %d point %d has coordinate %g", ErrPointOutOfRange, d+1, j, v)
			}
		}
	}
	return nil
}

// foldRescale maps a periodic coordinate in radians onto the grid index
// range [0, n): x=0 lands on index 0, x=+-pi on n/2.
func foldRescale(x float64, n int) float64 {
	w := x * (1.0 / (2.0 * math.Pi))
	w -= math.Floor(w)
	g := w * float64(n)
	if g >= float64(n) { // guard against rounding up to exactly n
		g = 0
	}
	return g
}

// dimOf infers the dimensionality from which coordinate slices are set.
func dimOf(y, z []float64) int {
	switch {
	case z != nil:
		return 3
	case y != nil:
		return 2
	default:
		return 1
	}
}

// Spread zeroes fw[0:nf1*nf2*nf3] and accumulates the strengths c onto
// it: fw[g] += sum_j phi(g - x_j) * c[j], periodically wrapped. The
// permutation idx orders the point visits; identity is always valid.
func Spread(idx []int, nf1, nf2, nf3 int, fw []complex128, x, y, z []float64, c []complex128, opts Opts, didSort bool) error {
	nvol := nf1 * nf2 * nf3
	grid := fw[:nvol]
	for i := range grid {
		grid[i] = 0
	}
	nj := len(x)
	if nj == 0 {
		return nil
	}

	workers := spreadWorkers(opts.Workers, nj, nvol)
	if workers <= 1 {
		spreadChunk(idx, nf1, nf2, nf3, grid, x, y, z, c, &opts.Kernel)
		return nil
	}

	// Per-worker shadow grids, merged by parallel segment summation.
	// Accumulation order is fixed by worker index, so results are
	// deterministic for a given worker count.
	shadows := make([][]complex128, workers)
	var wg sync.WaitGroup
	for w := range workers {
		lo, hi := chunkRange(nj, workers, w)
		wg.Add(1)
		go func(w, lo, hi int) {
			defer wg.Done()
			g := make([]complex128, nvol)
			spreadChunk(idx[lo:hi], nf1, nf2, nf3, g, x, y, z, c, &opts.Kernel)
			shadows[w] = g
		}(w, lo, hi)
	}
	wg.Wait()

	for w := range workers {
		lo, hi := chunkRange(nvol, workers, w)
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for _, g := range shadows {
				seg := g[lo:hi]
				dst := grid[lo:hi]
				for i, v := range seg {
					dst[i] += v
				}
			}
		}(lo, hi)
	}
	wg.Wait()
	return nil
}

// Interp samples the grid at the nonuniform points:
// c[j] = sum_g phi(g - x_j) * fw[g], periodically wrapped. Point chunks
// write disjoint outputs, so parallel runs are exact.
func Interp(idx []int, nf1, nf2, nf3 int, fw []complex128, x, y, z []float64, c []complex128, opts Opts, didSort bool) error {
	nj := len(x)
	if nj == 0 {
		return nil
	}
	workers := opts.Workers
	if workers > nj/minPointsPerWorker {
		workers = nj / minPointsPerWorker
	}
	if workers <= 1 {
		interpChunk(idx, nf1, nf2, nf3, fw, x, y, z, c, &opts.Kernel)
		return nil
	}
	var wg sync.WaitGroup
	for w := range workers {
		lo, hi := chunkRange(nj, workers, w)
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			interpChunk(idx[lo:hi], nf1, nf2, nf3, fw, x, y, z, c, &opts.Kernel)
		}(lo, hi)
	}
	wg.Wait()
	return nil
}

// spreadWorkers bounds the shadow-grid fan-out: enough points per worker
// to amortize the merge, and capped total shadow memory.
func spreadWorkers(requested, nj, nvol int) int {
	w := requested
	if byWork := nj / minPointsPerWorker; w > byWork {
		w = byWork
	}
	if byMem := maxShadowBytes / (bytesPerComplex * nvol); w > byMem {
		w = byMem
	}
	return w
}

// chunkRange splits n items into near-equal chunks.
func chunkRange(n, chunks, i int) (lo, hi int) {
	lo = i * n / chunks
	hi = (i + 1) * n / chunks
	return lo, hi
}

func spreadChunk(idx []int, nf1, nf2, nf3 int, grid []complex128, x, y, z []float64, c []complex128, ker *kernel.Params) {
	dim := dimOf(y, z)
	w := ker.Width
	half := float64(w) / 2.0
	var k1, k2, k3 [kernel.MaxWidth + 4]float64
	var j1, j2, j3 [kernel.MaxWidth]int

	for _, jj := range idx {
		cj := c[jj]
		i1, z1 := tapStart(x[jj], nf1, half)
		ker.EvalTaps(k1[:], z1)
		wrapTaps(j1[:w], i1, nf1)

		switch dim {
		case 1:
			for a := range w {
				grid[j1[a]] += cj * complex(k1[a], 0)
			}
		case 2:
			i2, z2 := tapStart(y[jj], nf2, half)
			ker.EvalTaps(k2[:], z2)
			wrapTaps(j2[:w], i2, nf2)
			for b := range w {
				cb := cj * complex(k2[b], 0)
				row := j2[b] * nf1
				for a := range w {
					grid[row+j1[a]] += cb * complex(k1[a], 0)
				}
			}
		case 3:
			i2, z2 := tapStart(y[jj], nf2, half)
			ker.EvalTaps(k2[:], z2)
			wrapTaps(j2[:w], i2, nf2)
			i3, z3 := tapStart(z[jj], nf3, half)
			ker.EvalTaps(k3[:], z3)
			wrapTaps(j3[:w], i3, nf3)
			for cc := range w {
				cz := cj * complex(k3[cc], 0)
				plane := j3[cc] * nf2 * nf1
				for b := range w {
					cb := cz * complex(k2[b], 0)
					row := plane + j2[b]*nf1
					for a := range w {
						grid[row+j1[a]] += cb * complex(k1[a], 0)
					}
				}
			}
		}
	}
}

func interpChunk(idx []int, nf1, nf2, nf3 int, grid []complex128, x, y, z []float64, c []complex128, ker *kernel.Params) {
	dim := dimOf(y, z)
	w := ker.Width
	half := float64(w) / 2.0
	var k1, k2, k3 [kernel.MaxWidth + 4]float64
	var j1, j2, j3 [kernel.MaxWidth]int

	for _, jj := range idx {
		i1, z1 := tapStart(x[jj], nf1, half)
		ker.EvalTaps(k1[:], z1)
		wrapTaps(j1[:w], i1, nf1)

		var acc complex128
		switch dim {
		case 1:
			for a := range w {
				acc += complex(k1[a], 0) * grid[j1[a]]
			}
		case 2:
			i2, z2 := tapStart(y[jj], nf2, half)
			ker.EvalTaps(k2[:], z2)
			wrapTaps(j2[:w], i2, nf2)
			for b := range w {
				row := j2[b] * nf1
				var rowAcc complex128
				for a := range w {
					rowAcc += complex(k1[a], 0) * grid[row+j1[a]]
				}
				acc += complex(k2[b], 0) * rowAcc
			}
		case 3:
			i2, z2 := tapStart(y[jj], nf2, half)
			ker.EvalTaps(k2[:], z2)
			wrapTaps(j2[:w], i2, nf2)
			i3, z3 := tapStart(z[jj], nf3, half)
			ker.EvalTaps(k3[:], z3)
			wrapTaps(j3[:w], i3, nf3)
			for cc := range w {
				plane := j3[cc] * nf2 * nf1
				var planeAcc complex128
				for b := range w {
					row := plane + j2[b]*nf1
					var rowAcc complex128
					for a := range w {
						rowAcc += complex(k1[a], 0) * grid[row+j1[a]]
					}
					planeAcc += complex(k2[b], 0) * rowAcc
				}
				acc += complex(k3[cc], 0) * planeAcc
			}
		}
		c[jj] = acc
	}
}

// tapStart returns the first grid index touched by a point and the kernel
// argument of that tap.
func tapStart(x float64, nf int, half float64) (i0 int, z0 float64) {
	g := foldRescale(x, nf)
	i0 = int(math.Ceil(g - half))
	z0 = float64(i0) - g
	return i0, z0
}

// wrapTaps fills dst with (i0+i) mod nf. i0 is within one period of the
// grid on either side, so a single correction suffices.
func wrapTaps(dst []int, i0, nf int) {
	for i := range dst {
		j := i0 + i
		if j < 0 {
			j += nf
		} else if j >= nf {
			j -= nf
		}
		dst[i] = j
	}
}
