// Package fftengine provides a batched in-place multidimensional complex
// DFT on top of gonum's 1D complex FFT. A plan fixes the per-transform
// grid sizes, the batch capacity and the transform sign; execution then
// applies independent DFTs to contiguous slabs of a single backing slice,
// each slab holding one transform of volume n1*n2*n3 with unit stride
// along the first (fastest-varying) axis.
//
// Transforms are unnormalized in both directions, matching the usual
// FFT-library convention: sign -1 applies the forward kernel
// exp(-2*pi*i*k*n/N), sign +1 its unscaled inverse.
package fftengine

import (
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Plan holds the per-dimension FFT engines and geometry for a batched
// transform. Plans are safe for concurrent Execute calls on disjoint
// data; the gonum engines themselves are stateless after construction.
type Plan struct {
	dim   int
	n1    int // fastest-varying axis
	n2    int
	n3    int
	batch int // slab capacity per Execute call
	sign  int

	eng1 *fourier.CmplxFFT
	eng2 *fourier.CmplxFFT
	eng3 *fourier.CmplxFFT
}

// New creates a plan for batch independent dim-dimensional transforms of
// size n1 x n2 x n3 (unused trailing sizes 1). Twiddle tables for every
// needed length are precomputed here.
func New(dim, n1, n2, n3, batch, sign int) *Plan {
	p := &Plan{dim: dim, n1: n1, n2: n2, n3: n3, batch: batch, sign: sign}
	p.eng1 = fourier.NewCmplxFFT(n1)
	if dim > 1 {
		p.eng2 = fourier.NewCmplxFFT(n2)
	}
	if dim > 2 {
		p.eng3 = fourier.NewCmplxFFT(n3)
	}
	return p
}

// Volume returns the number of complex samples in one transform.
func (p *Plan) Volume() int { return p.n1 * p.n2 * p.n3 }

// Sign returns the transform sign fixed at plan time.
func (p *Plan) Sign() int { return p.sign }

// Execute applies howMany transforms in place to the leading
// howMany*Volume() samples of data, fanning out over at most workers
// goroutines. howMany must not exceed the planned batch.
func (p *Plan) Execute(data []complex128, howMany, workers int) {
	if howMany > p.batch {
		howMany = p.batch
	}
	vol := p.Volume()
	if workers > howMany {
		workers = howMany
	}
	if workers <= 1 {
		s := newScratch(p)
		for b := range howMany {
			p.transform(data[b*vol:(b+1)*vol], s)
		}
		return
	}
	var wg sync.WaitGroup
	next := make(chan int, howMany)
	for b := range howMany {
		next <- b
	}
	close(next)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := newScratch(p)
			for b := range next {
				p.transform(data[b*vol:(b+1)*vol], s)
			}
		}()
	}
	wg.Wait()
}

// scratch holds per-goroutine line buffers for gather/transform/scatter.
type scratch struct {
	in  []complex128
	out []complex128
}

func newScratch(p *Plan) *scratch {
	n := p.n1
	if p.n2 > n {
		n = p.n2
	}
	if p.n3 > n {
		n = p.n3
	}
	return &scratch{in: make([]complex128, n), out: make([]complex128, n)}
}

// transform applies one multidimensional DFT in place, one axis at a
// time: contiguous lines along axis 1, then strided lines along axes 2
// and 3 gathered through scratch.
func (p *Plan) transform(d []complex128, s *scratch) {
	// axis 1: contiguous lines of length n1
	nLines := p.n2 * p.n3
	for l := range nLines {
		line := d[l*p.n1 : (l+1)*p.n1]
		copy(s.in[:p.n1], line)
		p.apply(p.eng1, s.out[:p.n1], s.in[:p.n1])
		copy(line, s.out[:p.n1])
	}
	if p.dim < 2 {
		return
	}
	// axis 2: stride n1, n1 lines per plane
	for plane := range p.n3 {
		base := plane * p.n2 * p.n1
		for i := range p.n1 {
			off := base + i
			for t := range p.n2 {
				s.in[t] = d[off+t*p.n1]
			}
			p.apply(p.eng2, s.out[:p.n2], s.in[:p.n2])
			for t := range p.n2 {
				d[off+t*p.n1] = s.out[t]
			}
		}
	}
	if p.dim < 3 {
		return
	}
	// axis 3: stride n1*n2
	stride := p.n1 * p.n2
	for i := range stride {
		for t := range p.n3 {
			s.in[t] = d[i+t*stride]
		}
		p.apply(p.eng3, s.out[:p.n3], s.in[:p.n3])
		for t := range p.n3 {
			d[i+t*stride] = s.out[t]
		}
	}
}

func (p *Plan) apply(eng *fourier.CmplxFFT, dst, src []complex128) {
	if p.sign < 0 {
		eng.Coefficients(dst, src)
	} else {
		eng.Sequence(dst, src)
	}
}
