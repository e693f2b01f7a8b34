// Package kernel implements the "exponential of semicircle" spreading
// kernel used on the oversampled fine grid, together with its Fourier-side
// companions. The kernel is compactly supported on [-w/2, w/2] grid units:
//
//	phi(z) = exp(beta * (sqrt(1 - (2z/w)^2) - 1))
//
// where w is the support width in grid points and beta the shape parameter.
// Both are derived from the requested tolerance and the oversampling ratio.
package kernel

import (
	"errors"
	"math"
)

// Sentinel errors reported by Setup.
var (
	// ErrEpsTooSmall is returned when the requested tolerance would need a
	// kernel wider than MaxWidth grid points.
	ErrEpsTooSmall = errors.New("kernel: tolerance too small to achieve")

	// ErrUpsampFac is returned for oversampling ratios <= 1, for which no
	// kernel width reaches any tolerance.
	ErrUpsampFac = errors.New("kernel: upsampling factor must exceed 1")
)

// EvalMethod selects how kernel values are computed during spreading.
type EvalMethod int

const (
	// EvalDirect evaluates exp(sqrt()) per tap.
	EvalDirect EvalMethod = iota
	// EvalPoly evaluates per-tap piecewise polynomials fitted at setup
	// time. Faster, accuracy matched to the kernel's own error level.
	EvalPoly
)

// Params holds a configured kernel. The zero value is not usable; obtain
// one from Setup.
type Params struct {
	Width  int     // support width w in grid points (taps per dimension)
	Beta   float64 // shape parameter
	Method EvalMethod
	Pad    bool // pad per-point tap vectors to a multiple of 4

	halfWidth float64 // w/2
	invHalfSq float64 // 4/w^2
	poly      [][]float64
}

// Setup derives the kernel width and shape for a requested relative
// tolerance tol and oversampling ratio sigma. Width follows the standard
// rules: ceil(log10(10/tol)) taps at sigma=2, and
// ceil(-log(tol)/(pi*sqrt(1-1/sigma))) otherwise, clipped below at 2.
func Setup(tol, sigma float64, method EvalMethod, pad bool) (Params, error) {
	if sigma <= 1 {
		return Params{}, ErrUpsampFac
	}
	var w int
	if sigma == 2.0 {
		w = int(math.Ceil(-math.Log10(tol / 10.0)))
	} else {
		w = int(math.Ceil(-math.Log(tol) / (math.Pi * math.Sqrt(1.0-1.0/sigma))))
	}
	if w < minWidth {
		w = minWidth
	}
	if w > MaxWidth {
		return Params{}, ErrEpsTooSmall
	}

	betaOverWidth := betaOverWidthDefault
	if sigma == 2.0 {
		// hand-tuned shapes for the narrowest kernels
		switch w {
		case 2:
			betaOverWidth = betaOverWidth2
		case 3:
			betaOverWidth = betaOverWidth3
		case 4:
			betaOverWidth = betaOverWidth4
		}
	} else {
		betaOverWidth = betaGamma * math.Pi * (1.0 - 1.0/(2.0*sigma))
	}

	p := Params{
		Width:     w,
		Beta:      betaOverWidth * float64(w),
		Method:    method,
		Pad:       pad,
		halfWidth: float64(w) / 2.0,
		invHalfSq: 4.0 / float64(w*w),
	}
	if method == EvalPoly {
		p.fitPiecewise()
	}
	return p, nil
}

// Eval returns phi(z) for an offset z in grid units. Outside the support
// it returns 0.
func (p *Params) Eval(z float64) float64 {
	t := 1.0 - p.invHalfSq*z*z
	if t <= 0 {
		return 0
	}
	return math.Exp(p.Beta * (math.Sqrt(t) - 1.0))
}

// TapCount returns the number of kernel values written per point and
// dimension: Width, rounded up to a multiple of 4 when padding is on.
func (p *Params) TapCount() int {
	if p.Pad {
		return (p.Width + padMultiple - 1) &^ (padMultiple - 1)
	}
	return p.Width
}

// EvalTaps fills dst[0:TapCount()] with phi(z0+i) for tap offsets i. The
// caller arranges z0 = ceil(x - w/2) - x, so every tap argument lies in
// the support and all taps share the same fractional position.
func (p *Params) EvalTaps(dst []float64, z0 float64) {
	n := p.TapCount()
	if p.Method == EvalPoly {
		p.evalTapsPoly(dst[:n], z0)
		return
	}
	for i := range n {
		dst[i] = p.Eval(z0 + float64(i))
	}
}

// fitPiecewise fits one Chebyshev interpolant per unit subinterval of the
// support. Tap i covers arguments z0+i with z0+w/2 in [0,1), so each tap
// is a smooth function of the shared fractional coordinate u = z0 + w/2.
func (p *Params) fitPiecewise() {
	deg := p.Width + polyDegreeSlack
	if deg > polyDegreeMax {
		deg = polyDegreeMax
	}
	n := deg + 1
	p.poly = make([][]float64, p.Width)

	// Chebyshev nodes on [0,1) mapped per tap, coefficients by the
	// discrete cosine orthogonality relation.
	fv := make([]float64, n)
	for i := range p.Width {
		coef := make([]float64, n)
		for m := range n {
			tm := math.Cos(math.Pi * (float64(m) + 0.5) / float64(n))
			u := (tm + 1.0) / 2.0
			fv[m] = p.Eval(u - p.halfWidth + float64(i))
		}
		for j := range n {
			var s float64
			for m := range n {
				s += fv[m] * math.Cos(math.Pi*float64(j)*(float64(m)+0.5)/float64(n))
			}
			coef[j] = 2.0 / float64(n) * s
		}
		coef[0] /= 2.0
		p.poly[i] = coef
	}
}

// evalTapsPoly evaluates every tap polynomial at the shared fractional
// coordinate using Clenshaw recurrence.
func (p *Params) evalTapsPoly(dst []float64, z0 float64) {
	u := z0 + p.halfWidth // in [0,1)
	t := 2.0*u - 1.0
	t2 := 2.0 * t
	for i := range dst {
		if i >= p.Width {
			dst[i] = 0 // padding taps
			continue
		}
		coef := p.poly[i]
		var b1, b2 float64
		for j := len(coef) - 1; j >= 1; j-- {
			b1, b2 = t2*b1-b2+coef[j], b1
		}
		dst[i] = t*b1 - b2 + coef[0]
	}
}
