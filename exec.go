package nufft

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tphakala/go-nufft/internal/spread"
)

// Execute runs the planned transforms, processing the trailing transform
// axis in batches that share the working grid.
//
// For type 1, c supplies nj*nTransf strengths and fk receives
// ms*mt*mu*nTransf mode coefficients. For type 2 the roles reverse. For
// type 3, c supplies nj*nTransf strengths and fk receives nk*nTransf
// target values. Execute leaves the plan ready for further Execute calls
// on the same points.
func (p *Plan) Execute(c, fk []complex128) error {
	switch p.state {
	case statePointed:
	case stateDestroyed:
		return fmt.Errorf("%w: plan destroyed", ErrNotReady)
	default:
		return ErrNotReady
	}
	if err := p.checkExecLens(c, fk); err != nil {
		return err
	}
	start := time.Now()
	var err error
	if p.kind == Type3 {
		err = p.execType3(c, fk)
	} else {
		err = p.execType12(c, fk)
	}
	if err != nil {
		return err
	}
	p.log.Info().Int("ntrans", p.nTransf).Dur("elapsed", time.Since(start)).Msg("execute done")
	return nil
}

func (p *Plan) checkExecLens(c, fk []complex128) error {
	if len(c) < p.nj*p.nTransf {
		return fmt.Errorf("%w: len(c)=%d, want at least %d", ErrBadInput, len(c), p.nj*p.nTransf)
	}
	outLen := p.ms * p.mt * p.mu
	if p.kind == Type3 {
		outLen = p.nk
	}
	if len(fk) < outLen*p.nTransf {
		return fmt.Errorf("%w: len(fk)=%d, want at least %d", ErrBadInput, len(fk), outLen*p.nTransf)
	}
	return nil
}

// threadSplit maps the spread-thread scheme onto (outer goroutines over
// the batch, inner workers per spread/interp call).
func (p *Plan) threadSplit(nSets int) (outer, inner int) {
	procs := runtime.GOMAXPROCS(0)
	switch p.opts.SpreadThread {
	case ThreadParSingle:
		return min(nSets, procs), 1
	case ThreadNested:
		outer = min(nSets, procs)
		inner = max(1, procs/outer)
		return outer, inner
	default: // ThreadAuto, ThreadSeqMulti
		return 1, procs
	}
}

func (p *Plan) execType12(c, fk []complex128) error {
	var tSpread, tFFT, tDeconv time.Duration
	procs := runtime.GOMAXPROCS(0)
	for batch := 0; batch*p.batchSize < p.nTransf; batch++ {
		nSets := min(p.nTransf-batch*p.batchSize, p.batchSize)
		blkJump := batch * p.batchSize

		if p.kind == Type1 {
			t := time.Now()
			if err := p.spreadBatch(nSets, blkJump, c); err != nil {
				return err
			}
			tSpread += time.Since(t)
		} else {
			t := time.Now()
			p.deconvolveBatch(nSets, blkJump, fk)
			tDeconv += time.Since(t)
		}

		t := time.Now()
		p.fftPlan.Execute(p.fw, nSets, procs)
		tFFT += time.Since(t)

		if p.kind == Type1 {
			t = time.Now()
			p.deconvolveBatch(nSets, blkJump, fk)
			tDeconv += time.Since(t)
		} else {
			t = time.Now()
			if err := p.interpBatch(nSets, blkJump, c); err != nil {
				return err
			}
			tSpread += time.Since(t)
		}
	}
	p.log.Debug().
		Dur("spread", tSpread).Dur("fft", tFFT).Dur("deconvolve", tDeconv).
		Msg("type 1/2 stage timings")
	return nil
}

// spreadBatch spreads nSets strength vectors onto their working grid
// slabs. Per-set errors are captured and the first (lowest-index) one is
// returned.
func (p *Plan) spreadBatch(nSets, blkJump int, c []complex128) error {
	outer, inner := p.threadSplit(nSets)
	vol := p.nf1 * p.nf2 * p.nf3
	sopts := p.spreadOpts(inner)
	errs := make([]error, nSets)

	var g errgroup.Group
	g.SetLimit(outer)
	for i := range nSets {
		g.Go(func() error {
			fwSlab := p.fw[i*vol : (i+1)*vol]
			cSet := c[(i+blkJump)*p.nj : (i+blkJump+1)*p.nj]
			errs[i] = spread.Spread(p.sortIdx, p.nf1, p.nf2, p.nf3, fwSlab,
				p.x, p.y, p.z, cSet, sopts, p.didSort)
			return nil
		})
	}
	g.Wait()
	return firstError(errs)
}

// interpBatch samples nSets working grid slabs at the nonuniform points.
func (p *Plan) interpBatch(nSets, blkJump int, c []complex128) error {
	outer, inner := p.threadSplit(nSets)
	vol := p.nf1 * p.nf2 * p.nf3
	sopts := p.spreadOpts(inner)
	errs := make([]error, nSets)

	var g errgroup.Group
	g.SetLimit(outer)
	for i := range nSets {
		g.Go(func() error {
			fwSlab := p.fw[i*vol : (i+1)*vol]
			cSet := c[(i+blkJump)*p.nj : (i+blkJump+1)*p.nj]
			errs[i] = spread.Interp(p.sortIdx, p.nf1, p.nf2, p.nf3, fwSlab,
				p.x, p.y, p.z, cSet, sopts, p.didSort)
			return nil
		})
	}
	g.Wait()
	return firstError(errs)
}

// deconvolveBatch divides (type 1) or amplifies (type 2) each set's modes
// by the kernel Fourier tables, shuffling between mode ordering and fine
// grid layout. Sets are independent, so the batch axis runs in parallel.
func (p *Plan) deconvolveBatch(nSets, blkJump int, fk []complex128) {
	vol := p.nf1 * p.nf2 * p.nf3
	mProd := p.ms * p.mt * p.mu
	dir := int(p.kind)

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range nSets {
		g.Go(func() error {
			fwSlab := p.fw[i*vol : (i+1)*vol]
			fkSet := fk[(i+blkJump)*mProd : (i+blkJump+1)*mProd]
			switch p.dim {
			case 1:
				deconvolveShuffle1(dir, 1.0, p.phiHat1, p.ms, fkSet, p.nf1, fwSlab, p.opts.ModeOrder)
			case 2:
				deconvolveShuffle2(dir, 1.0, p.phiHat1, p.phiHat2, p.ms, p.mt, fkSet, p.nf1, p.nf2, fwSlab, p.opts.ModeOrder)
			case 3:
				deconvolveShuffle3(dir, 1.0, p.phiHat1, p.phiHat2, p.phiHat3, p.ms, p.mt, p.mu, fkSet, p.nf1, p.nf2, p.nf3, fwSlab, p.opts.ModeOrder)
			}
			return nil
		})
	}
	g.Wait()
}

// firstError returns the error of the lowest-index failed set, mapped to
// the package error surface.
func firstError(errs []error) error {
	for _, err := range errs {
		if err == nil {
			continue
		}
		if errors.Is(err, spread.ErrPointOutOfRange) {
			return fmt.Errorf("%w: %v", ErrSpreadBounds, err)
		}
		return fmt.Errorf("%w: %v", ErrSpreadDir, err)
	}
	return nil
}
