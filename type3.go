package nufft

import (
	"fmt"
	"math"
	"math/cmplx"
	"runtime"
	"time"

	"github.com/tphakala/simd/c128"
	"golang.org/x/sync/errgroup"

	"github.com/tphakala/go-nufft/internal/mathutil"
	"github.com/tphakala/go-nufft/internal/spread"
)

// type3Aux holds the rescaling geometry that reduces a type-3 transform
// to a type 1 spread onto an internal grid followed by an inner type-2
// plan at scaled target frequencies: sources are centered on C and
// shrunk by gamma into [-pi, pi], targets centered on D and mapped to
// h*gamma*(s-D).
type type3Aux struct {
	c1, c2, c3       float64 // source interval centers
	d1, d2, d3       float64 // target interval centers
	gam1, gam2, gam3 float64 // coordinate shrink factors
	h1, h2, h3       float64 // fine grid spacings 2*pi/nf

	inner *Plan // type-2 sub-plan over the fine grid modes

	// precomputed at SetPoints: phase factors exp(i*sign*D.x_j) per
	// source (nil when every D is zero), and the combined postphase and
	// kernel transform division exp(i*sign*(s_k-D).C)/phiHat3(s'_k) per
	// target
	prephase []complex128
	deconv   []complex128

	cp []complex128 // prephased strengths, batchSize slabs of nj

	sp, tp, up []float64 // scaled target frequencies (owned)
}

// setNfgType3 sizes one fine grid dimension for a type-3 transform from
// the source half-width X and target half-width S, returning the grid
// size, its spacing h = 2*pi/nf and the coordinate shrink factor gamma.
// Degenerate all-zero widths fall back to a unit box.
func setNfgType3(S, X, sigma float64, width int) (nf int, h, gam float64, err error) {
	xSafe, sSafe := X, S
	if X == 0 {
		if S == 0 {
			xSafe, sSafe = 1, 1
		} else {
			xSafe = math.Max(xSafe, 1/S)
		}
	} else {
		sSafe = math.Max(sSafe, 1/X)
	}
	nf = int(2.0*sigma*sSafe*xSafe/math.Pi) + width + type3GridPad
	if nf < 2*width {
		nf = 2 * width
	}
	if int64(nf) > maxNF {
		return 0, 0, 0, fmt.Errorf("%w: type-3 nf = %d", ErrMaxAlloc, nf)
	}
	nf = mathutil.NextSmooth235Even(nf)
	h = 2.0 * math.Pi / float64(nf)
	gam = float64(nf) / (2.0 * sigma * sSafe)
	return nf, h, gam, nil
}

// setPointsType3 computes the rescaling geometry, allocates the internal
// grid, builds the inner type-2 plan over the scaled targets and
// precomputes the phase and deconvolution tables.
func (p *Plan) setPointsType3(x, y, z, s, t, u []float64) error {
	start := time.Now()
	if p.t3 != nil && p.t3.inner != nil { // re-pointing an existing plan
		p.t3.inner.Destroy()
		p.t3 = nil
	}
	p.nk = len(s)
	sigma := p.opts.UpsampFac
	width := p.spreadKer.Width
	aux := &type3Aux{gam1: 1, gam2: 1, gam3: 1}

	var xw, sw float64
	var err error
	xw, aux.c1 = mathutil.IntervalWidCen(x)
	sw, aux.d1 = mathutil.IntervalWidCen(s)
	if p.nf1, aux.h1, aux.gam1, err = setNfgType3(sw, xw, sigma, width); err != nil {
		return err
	}
	p.nf2, p.nf3 = 1, 1
	if p.dim > 1 {
		xw, aux.c2 = mathutil.IntervalWidCen(y)
		sw, aux.d2 = mathutil.IntervalWidCen(t)
		if p.nf2, aux.h2, aux.gam2, err = setNfgType3(sw, xw, sigma, width); err != nil {
			return err
		}
	}
	if p.dim > 2 {
		xw, aux.c3 = mathutil.IntervalWidCen(z)
		sw, aux.d3 = mathutil.IntervalWidCen(u)
		if p.nf3, aux.h3, aux.gam3, err = setNfgType3(sw, xw, sigma, width); err != nil {
			return err
		}
	}

	vol := int64(p.nf1) * int64(p.nf2) * int64(p.nf3)
	if vol*int64(p.batchSize) > maxNF {
		return fmt.Errorf("%w: type-3 nf1*nf2*nf3*batch = %d", ErrMaxAlloc, vol*int64(p.batchSize))
	}
	p.fw = make([]complex128, int(vol)*p.batchSize)

	// scaled copies: sources into [-pi, pi], targets into grid frequency
	// units; the user's arrays are left untouched
	p.x = scaleShift(x, aux.c1, 1/aux.gam1)
	aux.sp = scaleShift(s, aux.d1, aux.h1*aux.gam1)
	if p.dim > 1 {
		p.y = scaleShift(y, aux.c2, 1/aux.gam2)
		aux.tp = scaleShift(t, aux.d2, aux.h2*aux.gam2)
	}
	if p.dim > 2 {
		p.z = scaleShift(z, aux.c3, 1/aux.gam3)
		aux.up = scaleShift(u, aux.d3, aux.h3*aux.gam3)
	}

	sopts := p.spreadOpts(1)
	if err := spread.Check(p.x, p.y, p.z, sopts); err != nil {
		return fmt.Errorf("%w: %v", ErrSpreadBounds, err)
	}
	p.sortIdx = make([]int, p.nj)
	p.didSort = spread.IndexSort(p.sortIdx, p.nf1, p.nf2, p.nf3, p.x, p.y, p.z, sopts)

	// inner type-2 plan: the fine grid in natural order is its mode
	// array, hence FFT mode ordering
	innerOpts := p.opts
	innerOpts.ModeOrder = ModeOrderFFT
	innerOpts.ChkBnds = false // scaled targets are in range by construction
	innerOpts.MaxBatchSize = p.batchSize
	inner, err := New(Type2, p.dim, []int{p.nf1, p.nf2, p.nf3}, p.sign, p.batchSize, p.tol, &innerOpts)
	if err != nil {
		return fmt.Errorf("inner type-2 plan: %w", err)
	}
	if err := inner.SetPoints(aux.sp, aux.tp, aux.up, nil, nil, nil); err != nil {
		inner.Destroy()
		return fmt.Errorf("inner type-2 set points: %w", err)
	}
	aux.inner = inner

	// kernel transform at the scaled targets, one factor per dimension
	phi := make([]float64, p.nk)
	p.spreadKer.FourierTransform(aux.sp, phi)
	if p.dim > 1 {
		tmp := make([]float64, p.nk)
		p.spreadKer.FourierTransform(aux.tp, tmp)
		for k := range phi {
			phi[k] *= tmp[k]
		}
	}
	if p.dim > 2 {
		tmp := make([]float64, p.nk)
		p.spreadKer.FourierTransform(aux.up, tmp)
		for k := range phi {
			phi[k] *= tmp[k]
		}
	}

	sign := float64(p.sign)
	if aux.d1 != 0 || aux.d2 != 0 || aux.d3 != 0 {
		aux.prephase = make([]complex128, p.nj)
		for j := range aux.prephase {
			phase := aux.d1 * x[j]
			if p.dim > 1 {
				phase += aux.d2 * y[j]
			}
			if p.dim > 2 {
				phase += aux.d3 * z[j]
			}
			aux.prephase[j] = cmplx.Exp(complex(0, sign*phase))
		}
	}
	aux.deconv = make([]complex128, p.nk)
	for k := range aux.deconv {
		phase := (s[k] - aux.d1) * aux.c1
		if p.dim > 1 {
			phase += (t[k] - aux.d2) * aux.c2
		}
		if p.dim > 2 {
			phase += (u[k] - aux.d3) * aux.c3
		}
		aux.deconv[k] = cmplx.Exp(complex(0, sign*phase)) * complex(1/phi[k], 0)
	}

	aux.cp = make([]complex128, p.nj*p.batchSize)
	p.t3 = aux
	p.log.Info().Int("nj", p.nj).Int("nk", p.nk).
		Int("nf1", p.nf1).Int("nf2", p.nf2).Int("nf3", p.nf3).
		Bool("sorted", p.didSort).Dur("elapsed", time.Since(start)).
		Msg("type-3 points set")
	return nil
}

// scaleShift returns (a[i]-center)*scale as a fresh slice.
func scaleShift(a []float64, center, scale float64) []float64 {
	out := make([]float64, len(a))
	for i, v := range a {
		out[i] = (v - center) * scale
	}
	return out
}

// execType3 runs the reduction per batch: prephase, spread, inner
// type-2, postphase and kernel-transform division. Inner failures
// propagate as errors.
func (p *Plan) execType3(c, fk []complex128) error {
	aux := p.t3
	var tPhase, tSpread, tInner time.Duration
	for batch := 0; batch*p.batchSize < p.nTransf; batch++ {
		nSets := min(p.nTransf-batch*p.batchSize, p.batchSize)
		blkJump := batch * p.batchSize

		t := time.Now()
		p.phaseBatch(nSets, blkJump, c, aux)
		tPhase += time.Since(t)

		t = time.Now()
		if err := p.spreadBatch(nSets, 0, aux.cp); err != nil {
			return err
		}
		tSpread += time.Since(t)

		// the tail batch is narrower; the inner plan's transform count
		// is plan-local state and set per call
		aux.inner.nTransf = nSets

		t = time.Now()
		if err := aux.inner.Execute(fk[blkJump*p.nk:], p.fw); err != nil {
			return fmt.Errorf("inner type-2 execute: %w", err)
		}
		tInner += time.Since(t)

		t = time.Now()
		p.deconvType3Batch(nSets, blkJump, fk, aux)
		tPhase += time.Since(t)
	}
	p.log.Debug().
		Dur("phase", tPhase).Dur("spread", tSpread).Dur("inner", tInner).
		Msg("type 3 stage timings")
	return nil
}

// phaseBatch copies this batch's strengths into the internal buffer,
// applying the source prephase when target centers are nonzero.
func (p *Plan) phaseBatch(nSets, blkJump int, c []complex128, aux *type3Aux) {
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range nSets {
		g.Go(func() error {
			src := c[(i+blkJump)*p.nj : (i+blkJump+1)*p.nj]
			dst := aux.cp[i*p.nj : (i+1)*p.nj]
			if aux.prephase != nil {
				c128.Mul(dst, src, aux.prephase)
			} else {
				copy(dst, src)
			}
			return nil
		})
	}
	g.Wait()
}

// deconvType3Batch applies the precomputed postphase and kernel
// transform division in place on the user's output.
func (p *Plan) deconvType3Batch(nSets, blkJump int, fk []complex128, aux *type3Aux) {
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range nSets {
		g.Go(func() error {
			out := fk[(i+blkJump)*p.nk : (i+blkJump+1)*p.nk]
			c128.Mul(out, out, aux.deconv)
			return nil
		})
	}
	g.Wait()
}
