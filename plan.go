package nufft

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/rs/zerolog"

	"github.com/tphakala/go-nufft/internal/fftengine"
	"github.com/tphakala/go-nufft/internal/kernel"
	"github.com/tphakala/go-nufft/internal/mathutil"
	"github.com/tphakala/go-nufft/internal/spread"
)

// TransformType identifies the transform direction.
type TransformType int

const (
	// Type1 maps nonuniform point strengths to a regular grid of Fourier
	// mode coefficients (the adjoint transform).
	Type1 TransformType = 1
	// Type2 maps regular-grid Fourier mode coefficients to values at
	// nonuniform points (the forward transform).
	Type2 TransformType = 2
	// Type3 maps strengths at nonuniform points to values at nonuniform
	// frequencies.
	Type3 TransformType = 3
)

type planState int

const (
	statePlanned planState = iota + 1
	statePointed
	stateDestroyed
)

// Plan is a reusable transform pipeline: it owns the oversampled working
// grid, the kernel Fourier tables, the FFT engines and the point sort.
// The lifecycle is New -> SetPoints -> Execute (any number of times) ->
// Destroy. A plan is not safe for concurrent use; one goroutine must own
// it between SetPoints and the return of Execute.
type Plan struct {
	kind    TransformType
	dim     int
	sign    int
	nTransf int
	tol     float64
	opts    Options

	// batchSize transforms share the working grid per batch.
	batchSize int

	spreadKer kernel.Params

	// logical mode extents; 1 in unused dimensions
	ms, mt, mu int
	// fine grid sizes; 1 in unused dimensions
	nf1, nf2, nf3 int

	nj, nk int

	// phiHat backs the per-dimension nonnegative-half kernel Fourier
	// tables, concatenated; phiHat1..3 alias into it.
	phiHat                    []float64
	phiHat1, phiHat2, phiHat3 []float64

	fw      []complex128 // working grid, batchSize slabs of nf1*nf2*nf3
	sortIdx []int
	didSort bool

	// nonuniform coordinates: borrowed from the caller for types 1 and
	// 2, internally owned scaled copies for type 3
	x, y, z []float64

	fftPlan *fftengine.Plan

	t3 *type3Aux // nil unless kind == Type3

	state planState
	log   zerolog.Logger
}

// New validates the request, configures the spreading kernel, and for
// types 1 and 2 sizes the fine grid, fills the kernel Fourier tables,
// allocates the working grid and plans the FFT. Type 3 defers grid work
// to SetPoints, where the point geometry is known.
//
// nModes carries the mode extents for the first dim dimensions (ignored
// for type 3). sign >= 0 selects exp(+i...), negative exp(-i...); tol is
// the requested relative tolerance; nTransf transforms are evaluated per
// Execute over a shared point set.
func New(kind TransformType, dim int, nModes []int, sign, nTransf int, tol float64, opts *Options) (*Plan, error) {
	if kind != Type1 && kind != Type2 && kind != Type3 {
		return nil, fmt.Errorf("%w: got %d", ErrTypeNotValid, kind)
	}
	if dim < 1 || dim > 3 {
		return nil, fmt.Errorf("%w: got %d", ErrDimNotValid, dim)
	}
	if nTransf < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrNTransNotValid, nTransf)
	}

	p := &Plan{
		kind:    kind,
		dim:     dim,
		nTransf: nTransf,
		tol:     tol,
		ms:      1, mt: 1, mu: 1,
		nf1: 1, nf2: 1, nf3: 1,
	}
	if opts != nil {
		p.opts = *opts // deep copy; later changes to *opts have no effect
	} else {
		p.opts = DefaultOptions()
	}
	if err := p.opts.Validate(); err != nil {
		return nil, err
	}
	p.log = p.opts.logger()

	ker, err := kernel.Setup(tol, p.opts.UpsampFac, kernel.EvalMethod(p.opts.SpreadKerEvalMeth), p.opts.SpreadKerPad)
	if err != nil {
		return nil, translateKernelErr(err)
	}
	p.spreadKer = ker

	p.sign = 1
	if sign < 0 {
		p.sign = -1
	}

	p.batchSize = p.opts.MaxBatchSize
	if p.batchSize == 0 {
		p.batchSize = min(runtime.GOMAXPROCS(0), maxUsefulThreads)
	}
	if p.batchSize > nTransf {
		p.batchSize = nTransf
	}

	if kind == Type3 {
		// grid sizing, tables and the inner plan wait for SetPoints
		p.state = statePlanned
		p.log.Debug().Int("dim", dim).Int("ntrans", nTransf).Msg("type-3 plan created")
		return p, nil
	}

	if len(nModes) < dim {
		return nil, fmt.Errorf("%w: need %d mode extents, got %d", ErrBadInput, dim, len(nModes))
	}
	start := time.Now()
	p.ms = nModes[0]
	if p.nf1, err = setNfType12(p.ms, p.opts.UpsampFac, ker.Width); err != nil {
		return nil, err
	}
	if dim > 1 {
		p.mt = nModes[1]
		if p.nf2, err = setNfType12(p.mt, p.opts.UpsampFac, ker.Width); err != nil {
			return nil, err
		}
	}
	if dim > 2 {
		p.mu = nModes[2]
		if p.nf3, err = setNfType12(p.mu, p.opts.UpsampFac, ker.Width); err != nil {
			return nil, err
		}
	}
	if p.ms < 1 || p.mt < 1 || p.mu < 1 {
		return nil, fmt.Errorf("%w: mode extents must be positive", ErrBadInput)
	}

	vol := int64(p.nf1) * int64(p.nf2) * int64(p.nf3)
	if vol*int64(p.batchSize) > maxNF {
		return nil, fmt.Errorf("%w: nf1*nf2*nf3*batch = %d", ErrMaxAlloc, vol*int64(p.batchSize))
	}

	p.allocPhiHat()
	p.fw = make([]complex128, int(vol)*p.batchSize)
	p.fftPlan = fftengine.New(dim, p.nf1, p.nf2, p.nf3, p.batchSize, p.sign)

	p.state = statePlanned
	p.log.Info().
		Int("dim", dim).Int("type", int(kind)).
		Int("ms", p.ms).Int("mt", p.mt).Int("mu", p.mu).
		Int("nf1", p.nf1).Int("nf2", p.nf2).Int("nf3", p.nf3).
		Int("batch", p.batchSize).Int("ns", ker.Width).
		Dur("elapsed", time.Since(start)).
		Msg("plan created")
	return p, nil
}

// allocPhiHat sizes the concatenated kernel Fourier table backing and
// fills one nonnegative half per active dimension.
func (p *Plan) allocPhiHat() {
	n1 := p.nf1/2 + 1
	total := n1
	n2, n3 := 0, 0
	if p.dim > 1 {
		n2 = p.nf2/2 + 1
		total += n2
	}
	if p.dim > 2 {
		n3 = p.nf3/2 + 1
		total += n3
	}
	p.phiHat = make([]float64, total)
	p.phiHat1 = p.phiHat[:n1]
	p.spreadKer.FourierSeries(p.nf1, p.phiHat1)
	if p.dim > 1 {
		p.phiHat2 = p.phiHat[n1 : n1+n2]
		p.spreadKer.FourierSeries(p.nf2, p.phiHat2)
	}
	if p.dim > 2 {
		p.phiHat3 = p.phiHat[n1+n2 : n1+n2+n3]
		p.spreadKer.FourierSeries(p.nf3, p.phiHat3)
	}
}

// setNfType12 picks the fine grid size for one dimension: the smallest
// 2,3,5-smooth even integer at least int(sigma*m) (sigma*m truncated)
// and at least twice the kernel width.
func setNfType12(m int, sigma float64, width int) (int, error) {
	nf := int(sigma * float64(m))
	if nf < 2*width {
		nf = 2 * width
	}
	if int64(nf) > maxNF {
		return 0, fmt.Errorf("%w: nf = %d", ErrMaxAlloc, nf)
	}
	return mathutil.NextSmooth235Even(nf), nil
}

func translateKernelErr(err error) error {
	switch {
	case errors.Is(err, kernel.ErrEpsTooSmall):
		return fmt.Errorf("%w: %v", ErrEpsTooSmall, err)
	case errors.Is(err, kernel.ErrUpsampFac):
		return fmt.Errorf("%w: %v", ErrUpsampFacTooSmall, err)
	default:
		return err
	}
}

// SetPoints binds nonuniform data to the plan. For types 1 and 2 the
// coordinate slices x (and y, z for higher dimensions) are checked,
// sorted for locality and borrowed until the next SetPoints or Destroy;
// the plan never writes to them. s, t, u are ignored.
//
// For type 3, x..z are the source points and s..u the target
// frequencies; the plan takes internal scaled copies, builds its fine
// grid and inner type-2 plan, and precomputes the phase and
// deconvolution tables.
func (p *Plan) SetPoints(x, y, z, s, t, u []float64) error {
	if p.state != statePlanned && p.state != statePointed {
		return fmt.Errorf("%w: plan not initialized", ErrNotReady)
	}
	if err := checkCoordLens(p.dim, x, y, z); err != nil {
		return err
	}
	p.nj = len(x)

	if p.kind == Type3 {
		if err := checkCoordLens(p.dim, s, t, u); err != nil {
			return err
		}
		if err := p.setPointsType3(x, y, z, s, t, u); err != nil {
			return err
		}
		p.state = statePointed
		return nil
	}

	start := time.Now()
	sopts := p.spreadOpts(1)
	if err := spread.Check(x, y, z, sopts); err != nil {
		return fmt.Errorf("%w: %v", ErrSpreadBounds, err)
	}
	p.sortIdx = make([]int, p.nj)
	p.didSort = spread.IndexSort(p.sortIdx, p.nf1, p.nf2, p.nf3, x, y, z, sopts)
	p.x, p.y, p.z = x, y, z
	p.state = statePointed
	p.log.Info().Int("nj", p.nj).Bool("sorted", p.didSort).
		Dur("elapsed", time.Since(start)).Msg("points set")
	return nil
}

// checkCoordLens enforces the coordinate slice shape for one point set:
// dimension d needs the first d slices, all the same length.
func checkCoordLens(dim int, x, y, z []float64) error {
	if x == nil {
		return fmt.Errorf("%w: first coordinate slice is nil", ErrBadInput)
	}
	if dim > 1 && len(y) != len(x) {
		return fmt.Errorf("%w: len(y)=%d, want %d", ErrBadInput, len(y), len(x))
	}
	if dim > 2 && len(z) != len(x) {
		return fmt.Errorf("%w: len(z)=%d, want %d", ErrBadInput, len(z), len(x))
	}
	return nil
}

// spreadOpts assembles the spreader configuration with the given inner
// worker budget.
func (p *Plan) spreadOpts(workers int) spread.Opts {
	return spread.Opts{
		Kernel:  p.spreadKer,
		Sort:    int(p.opts.SpreadSort),
		ChkBnds: p.opts.ChkBnds,
		Workers: workers,
		Debug:   p.opts.SpreadDebug,
	}
}

// NTransf returns the number of transforms the plan executes per call.
func (p *Plan) NTransf() int { return p.nTransf }

// Tolerance returns the requested relative tolerance.
func (p *Plan) Tolerance() float64 { return p.tol }

// Destroy releases the working grid, tables, sort index and any inner
// plan. It is idempotent and safe on a zero-valued plan.
func (p *Plan) Destroy() error {
	if p.state == stateDestroyed {
		return nil
	}
	p.fw = nil
	p.phiHat = nil
	p.phiHat1, p.phiHat2, p.phiHat3 = nil, nil, nil
	p.sortIdx = nil
	p.x, p.y, p.z = nil, nil, nil
	p.fftPlan = nil
	if p.t3 != nil {
		if p.t3.inner != nil {
			p.t3.inner.Destroy()
		}
		p.t3 = nil
	}
	p.state = stateDestroyed
	return nil
}
