package nufft

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// SortMode controls the locality sort over nonuniform points.
type SortMode int

const (
	// SortNever skips the sort; points are visited in input order.
	SortNever SortMode = 0
	// SortAlways sorts unconditionally.
	SortAlways SortMode = 1
	// SortHeuristic sorts only when the point count is large relative to
	// the fine grid (the default).
	SortHeuristic SortMode = 2
)

// KerEvalMethod selects the spreading kernel evaluator.
type KerEvalMethod int

const (
	// KerEvalDirect evaluates the analytic kernel per tap.
	KerEvalDirect KerEvalMethod = 0
	// KerEvalPoly uses piecewise polynomials fitted at plan time (the
	// default; faster, accuracy matched to the kernel).
	KerEvalPoly KerEvalMethod = 1
)

// ModeOrder selects the layout of mode coefficient arrays (types 1 and 2).
type ModeOrder int

const (
	// ModeOrderCMCL stores modes in increasing order -M/2 ... (M-1)/2
	// per dimension (the default).
	ModeOrderCMCL ModeOrder = iota
	// ModeOrderFFT stores nonnegative modes first, then wrapped negative
	// modes, per dimension.
	ModeOrderFFT
)

// PlanRigor mirrors the planning-effort knob of FFTW-style engines. The
// bundled pure-Go FFT precomputes the same twiddle state either way; the
// option is accepted for API compatibility and has no effect.
type PlanRigor int

const (
	// PlanEstimate plans quickly (the default).
	PlanEstimate PlanRigor = iota
	// PlanMeasure requests a more thorough planning pass.
	PlanMeasure
)

// ThreadScheme selects how the two parallel axes (transform batch, and
// grid work inside one spread/interp) share threads.
type ThreadScheme int

const (
	// ThreadAuto runs the batch loop serially and gives every spread,
	// interpolation and FFT all available threads (the default).
	ThreadAuto ThreadScheme = iota
	// ThreadSeqMulti is the explicit form of ThreadAuto: serial batch
	// loop, multithreaded inner work.
	ThreadSeqMulti
	// ThreadParSingle runs one goroutine per transform in the batch,
	// each using single-threaded inner work.
	ThreadParSingle
	// ThreadNested runs the batch in parallel and splits the remaining
	// threads across the inner work of each transform.
	ThreadNested
)

// Options holds user-controllable settings. The zero value is not the
// default configuration; start from DefaultOptions.
type Options struct {
	// Debug enables timing output: 0 silent, 1 elapsed time of plan
	// creation, SetPoints and Execute, 2 additionally the per-stage
	// (spread, FFT, deconvolve) timings of each Execute.
	Debug int
	// SpreadDebug is passed to the spreader as its diagnostic level
	// (0, 1 or 2); the spreader prints no diagnostics at any level.
	SpreadDebug int
	// SpreadSort controls the locality sort over nonuniform points.
	SpreadSort SortMode
	// SpreadKerEvalMeth selects the kernel evaluator.
	SpreadKerEvalMeth KerEvalMethod
	// SpreadKerPad pads per-point kernel tap vectors to a multiple of 4.
	SpreadKerPad bool
	// ChkBnds enforces the [-3pi, 3pi] coordinate range at SetPoints.
	ChkBnds bool
	// ModeOrder selects CMCL or FFT-style mode coefficient layout.
	ModeOrder ModeOrder
	// UpsampFac is the fine grid oversampling ratio sigma; 2.0 is
	// standard, 1.25 trades accuracy headroom for smaller FFTs.
	UpsampFac float64
	// PlanRigor is the FFT planning effort.
	PlanRigor PlanRigor
	// SpreadThread selects the batch/inner thread split.
	SpreadThread ThreadScheme
	// MaxBatchSize caps how many transforms share the working grid at
	// once; 0 picks min(GOMAXPROCS, a fixed ceiling). Working memory is
	// proportional to this value.
	MaxBatchSize int
}

// DefaultOptions returns the recommended settings.
func DefaultOptions() Options {
	return Options{
		Debug:             0,
		SpreadDebug:       0,
		SpreadSort:        SortHeuristic,
		SpreadKerEvalMeth: KerEvalPoly,
		SpreadKerPad:      true,
		ChkBnds:           true,
		ModeOrder:         ModeOrderCMCL,
		UpsampFac:         defaultUpsampFac,
		PlanRigor:         PlanEstimate,
		SpreadThread:      ThreadAuto,
		MaxBatchSize:      0,
	}
}

// Validate checks option values that have a closed set of meanings.
func (o *Options) Validate() error {
	if o.UpsampFac <= 1 {
		return fmt.Errorf("%w: upsampfac %g", ErrUpsampFacTooSmall, o.UpsampFac)
	}
	switch o.SpreadThread {
	case ThreadAuto, ThreadSeqMulti, ThreadParSingle, ThreadNested:
	default:
		return fmt.Errorf("%w: %d", ErrThreadScheme, o.SpreadThread)
	}
	if o.MaxBatchSize < 0 {
		return fmt.Errorf("%w: maxbatchsize %d", ErrBadInput, o.MaxBatchSize)
	}
	if o.SpreadSort < SortNever || o.SpreadSort > SortHeuristic {
		return fmt.Errorf("%w: spread_sort %d", ErrBadInput, o.SpreadSort)
	}
	if o.SpreadKerEvalMeth != KerEvalDirect && o.SpreadKerEvalMeth != KerEvalPoly {
		return fmt.Errorf("%w: spread_kerevalmeth %d", ErrBadInput, o.SpreadKerEvalMeth)
	}
	if o.ModeOrder != ModeOrderCMCL && o.ModeOrder != ModeOrderFFT {
		return fmt.Errorf("%w: modeord %d", ErrBadInput, o.ModeOrder)
	}
	return nil
}

// logger builds the stage-timing logger selected by Debug.
func (o *Options) logger() zerolog.Logger {
	if o.Debug <= 0 {
		return zerolog.Nop()
	}
	level := zerolog.InfoLevel
	if o.Debug > 1 {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Str("component", "nufft").Logger()
}
