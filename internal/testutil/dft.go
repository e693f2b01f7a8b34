// Package testutil provides direct-summation reference transforms and
// shared assertions for nonuniform FFT tests. The references are O(N*M)
// and only meant for modest problem sizes.
package testutil

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Type1Direct evaluates the adjoint transform by direct summation:
//
//	f[k] = sum_j c[j] * exp(i*sign*(k1*x[j] + k2*y[j] + k3*z[j]))
//
// for modes k1 in [-ms/2, (ms-1)/2] etc. Output uses increasing
// (negative-to-positive) mode ordering in each dimension, dimension 1
// fastest. Unused dims pass 1 for the extent and nil coordinates.
func Type1Direct(ms, mt, mu, sign int, x, y, z []float64, c []complex128) []complex128 {
	out := make([]complex128, ms*mt*mu)
	idx := 0
	for k3 := -mu / 2; k3 <= (mu-1)/2; k3++ {
		for k2 := -mt / 2; k2 <= (mt-1)/2; k2++ {
			for k1 := -ms / 2; k1 <= (ms-1)/2; k1++ {
				var acc complex128
				for j := range x {
					phase := float64(k1) * x[j]
					if y != nil {
						phase += float64(k2) * y[j]
					}
					if z != nil {
						phase += float64(k3) * z[j]
					}
					acc += c[j] * cmplx.Exp(complex(0, float64(sign)*phase))
				}
				out[idx] = acc
				idx++
			}
		}
	}
	return out
}

// Type2Direct evaluates the forward transform by direct summation:
//
//	c[j] = sum_k f[k] * exp(i*sign*(k1*x[j] + ...))
//
// with f in increasing mode ordering, dimension 1 fastest.
func Type2Direct(ms, mt, mu, sign int, x, y, z []float64, fk []complex128) []complex128 {
	out := make([]complex128, len(x))
	for j := range x {
		var acc complex128
		idx := 0
		for k3 := -mu / 2; k3 <= (mu-1)/2; k3++ {
			for k2 := -mt / 2; k2 <= (mt-1)/2; k2++ {
				for k1 := -ms / 2; k1 <= (ms-1)/2; k1++ {
					phase := float64(k1) * x[j]
					if y != nil {
						phase += float64(k2) * y[j]
					}
					if z != nil {
						phase += float64(k3) * z[j]
					}
					acc += fk[idx] * cmplx.Exp(complex(0, float64(sign)*phase))
					idx++
				}
			}
		}
		out[j] = acc
	}
	return out
}

// Type3Direct evaluates the nonuniform-to-nonuniform transform:
//
//	f[k] = sum_j c[j] * exp(i*sign*(s[k]*x[j] + t[k]*y[j] + u[k]*z[j]))
func Type3Direct(sign int, x, y, z, s, t, u []float64, c []complex128) []complex128 {
	out := make([]complex128, len(s))
	for k := range s {
		var acc complex128
		for j := range x {
			phase := s[k] * x[j]
			if y != nil {
				phase += t[k] * y[j]
			}
			if z != nil {
				phase += u[k] * z[j]
			}
			acc += c[j] * cmplx.Exp(complex(0, float64(sign)*phase))
		}
		out[k] = acc
	}
	return out
}

// RelErr2 returns the relative 2-norm error ||got-want|| / ||want||.
func RelErr2(got, want []complex128) float64 {
	var num, den float64
	for i := range want {
		d := got[i] - want[i]
		num += real(d)*real(d) + imag(d)*imag(d)
		den += real(want[i])*real(want[i]) + imag(want[i])*imag(want[i])
	}
	if den == 0 {
		return math.Sqrt(num)
	}
	return math.Sqrt(num / den)
}

// AssertRelErr2 asserts the relative 2-norm error is within tol.
func AssertRelErr2(t *testing.T, want, got []complex128, tol float64, msgAndArgs ...any) bool {
	t.Helper()
	if !assert.Equal(t, len(want), len(got), "length mismatch") {
		return false
	}
	e := RelErr2(got, want)
	return assert.LessOrEqual(t, e, tol, "relative 2-norm error %e exceeds %e", e, tol)
}

// AssertFiniteCmplx asserts no element is NaN or Inf.
func AssertFiniteCmplx(t *testing.T, s []complex128, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if cmplx.IsNaN(v) || cmplx.IsInf(v) {
			return assert.Fail(t, "non-finite value", "s[%d] = %v", i, v)
		}
	}
	return true
}
