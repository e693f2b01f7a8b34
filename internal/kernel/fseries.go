package kernel

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"
)

// quadNodes returns Gauss-Legendre nodes and premultiplied values
// f[n] = w[n]*phi(z[n]) on the positive half-support (0, w/2). The kernel
// is even, so every Fourier-side quantity reduces to a cosine sum over
// these nodes.
func (p *Params) quadNodes() (z, f []float64) {
	j2 := p.halfWidth
	q := quadNodesBase + int(quadNodesPerJ2*j2)
	if q > quadNodesMax {
		q = quadNodesMax
	}
	z = make([]float64, q)
	w := make([]float64, q)
	quad.Legendre{}.FixedLocations(z, w, 0, j2)
	f = make([]float64, q)
	for n := range q {
		f[n] = w[n] * p.Eval(z[n])
	}
	return z, f
}

// FourierSeries fills out[0:nf/2+1] with the nonnegative-half Fourier
// series coefficients of the kernel on an nf-point grid:
//
//	out[k] = 2 * integral_0^{w/2} phi(z) * cos(2*pi*k*z/nf) dz
//
// computed by Gauss-Legendre quadrature. Values are positive and decrease
// monotonically in k up to rounding.
func (p *Params) FourierSeries(nf int, out []float64) {
	z, f := p.quadNodes()
	step := 2.0 * math.Pi / float64(nf)
	for k := 0; k <= nf/2; k++ {
		arg := float64(k) * step
		var x float64
		for n := range z {
			x += 2.0 * f[n] * math.Cos(arg*z[n])
		}
		out[k] = x
	}
}

// FourierTransform fills out[j] with the continuous Fourier transform of
// the kernel at the arbitrary frequencies ks[j] (in radians per grid
// unit):
//
//	out[j] = 2 * integral_0^{w/2} phi(z) * cos(ks[j]*z) dz
//
// This is the deconvolution factor for targets that do not lie on a
// regular mode grid.
func (p *Params) FourierTransform(ks, out []float64) {
	z, f := p.quadNodes()
	for j, k := range ks {
		var x float64
		for n := range z {
			x += 2.0 * f[n] * math.Cos(k*z[n])
		}
		out[j] = x
	}
}
