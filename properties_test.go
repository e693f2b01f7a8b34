package nufft

import (
	"math"
	"math/cmplx"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-nufft/internal/testutil"
)

func TestAdjointIdentity(t *testing.T) {
	// type 1 and type 2 with the same sign apply the same bilinear form
	// from opposite sides: sum_k T1(c)[k]*f[k] == sum_j c[j]*T2(f)[j]
	const (
		nj  = 50
		ms  = 32
		tol = 1e-9
	)
	rng := rand.New(rand.NewSource(21))
	x := randCoords(rng, nj, math.Pi)
	c := randVec(rng, nj)
	f := randVec(rng, ms)

	fk, err := Nufft1d1(x, c, +1, tol, ms, nil)
	require.NoError(t, err)
	cv, err := Nufft1d2(x, f, +1, tol, ms, nil)
	require.NoError(t, err)

	var lhs, rhs complex128
	for k := range fk {
		lhs += fk[k] * f[k]
	}
	for j := range cv {
		rhs += c[j] * cv[j]
	}
	assert.InDelta(t, 0.0, cmplx.Abs(lhs-rhs)/cmplx.Abs(lhs), 1e-6)
}

func TestLinearity(t *testing.T) {
	const (
		nj  = 60
		ms  = 24
		tol = 1e-10
	)
	rng := rand.New(rand.NewSource(22))
	x := randCoords(rng, nj, math.Pi)
	c1 := randVec(rng, nj)
	c2 := randVec(rng, nj)
	alpha := complex(1.3, -0.4)
	beta := complex(-0.2, 2.1)

	plan, err := New(Type1, 1, []int{ms}, +1, 1, tol, nil)
	require.NoError(t, err)
	defer plan.Destroy()
	require.NoError(t, plan.SetPoints(x, nil, nil, nil, nil, nil))

	out1 := make([]complex128, ms)
	out2 := make([]complex128, ms)
	outMix := make([]complex128, ms)
	require.NoError(t, plan.Execute(c1, out1))
	require.NoError(t, plan.Execute(c2, out2))

	mix := make([]complex128, nj)
	for j := range mix {
		mix[j] = alpha*c1[j] + beta*c2[j]
	}
	require.NoError(t, plan.Execute(mix, outMix))

	want := make([]complex128, ms)
	for k := range want {
		want[k] = alpha*out1[k] + beta*out2[k]
	}
	testutil.AssertRelErr2(t, want, outMix, 1e-12)
}

func TestSignDuality(t *testing.T) {
	// conjugating the input and flipping the sign conjugates the output
	const (
		nj  = 40
		ms  = 20
		tol = 1e-9
	)
	rng := rand.New(rand.NewSource(23))
	x := randCoords(rng, nj, math.Pi)
	c := randVec(rng, nj)
	cConj := make([]complex128, nj)
	for j := range c {
		cConj[j] = cmplx.Conj(c[j])
	}

	plus, err := Nufft1d1(x, c, +1, tol, ms, nil)
	require.NoError(t, err)
	minus, err := Nufft1d1(x, cConj, -1, tol, ms, nil)
	require.NoError(t, err)

	want := make([]complex128, ms)
	for k := range minus {
		want[k] = cmplx.Conj(minus[k])
	}
	testutil.AssertRelErr2(t, want, plus, 1e-7)
}

func TestModeOrderEquivalence(t *testing.T) {
	// FFT ordering is the circular shift of CMCL ordering by M/2
	const (
		nj  = 50
		ms  = 16
		tol = 1e-9
	)
	rng := rand.New(rand.NewSource(24))
	x := randCoords(rng, nj, math.Pi)
	c := randVec(rng, nj)

	cmcl, err := Nufft1d1(x, c, +1, tol, ms, nil)
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.ModeOrder = ModeOrderFFT
	fftOrd, err := Nufft1d1(x, c, +1, tol, ms, &opts)
	require.NoError(t, err)

	for k := -ms / 2; k <= (ms-1)/2; k++ {
		fftIdx := k
		if k < 0 {
			fftIdx = k + ms
		}
		assert.InDelta(t, real(cmcl[k+ms/2]), real(fftOrd[fftIdx]), 1e-13, "k=%d", k)
		assert.InDelta(t, imag(cmcl[k+ms/2]), imag(fftOrd[fftIdx]), 1e-13, "k=%d", k)
	}
}

func TestClusterInsensitivity(t *testing.T) {
	// replacing each point with 4 coincident quarter-strength copies
	// leaves the transform unchanged
	const (
		nj  = 30
		ms  = 16
		tol = 1e-12
	)
	rng := rand.New(rand.NewSource(25))
	x := randCoords(rng, nj, math.Pi)
	c := randVec(rng, nj)

	x4 := make([]float64, 4*nj)
	c4 := make([]complex128, 4*nj)
	for j := range x {
		for r := range 4 {
			x4[4*j+r] = x[j]
			c4[4*j+r] = c[j] / 4
		}
	}

	base, err := Nufft1d1(x, c, +1, tol, ms, nil)
	require.NoError(t, err)
	split, err := Nufft1d1(x4, c4, +1, tol, ms, nil)
	require.NoError(t, err)
	testutil.AssertRelErr2(t, base, split, 1e-10)
}

func TestBatchEquivalence(t *testing.T) {
	// nTrans=5 with maxBatch=2 matches five single-transform executes
	// on an identically pointed plan
	const (
		nj     = 200
		ms     = 32
		nTrans = 5
		tol    = 1e-11
	)
	rng := rand.New(rand.NewSource(26))
	x := randCoords(rng, nj, math.Pi)
	c := randVec(rng, nj*nTrans)

	opts := DefaultOptions()
	opts.MaxBatchSize = 2
	batched, err := New(Type1, 1, []int{ms}, +1, nTrans, tol, &opts)
	require.NoError(t, err)
	defer batched.Destroy()
	require.NoError(t, batched.SetPoints(x, nil, nil, nil, nil, nil))
	fkAll := make([]complex128, ms*nTrans)
	require.NoError(t, batched.Execute(c, fkAll))

	single, err := New(Type1, 1, []int{ms}, +1, 1, tol, nil)
	require.NoError(t, err)
	defer single.Destroy()
	require.NoError(t, single.SetPoints(x, nil, nil, nil, nil, nil))
	fkOne := make([]complex128, ms)
	for r := range nTrans {
		require.NoError(t, single.Execute(c[r*nj:(r+1)*nj], fkOne))
		testutil.AssertRelErr2(t, fkOne, fkAll[r*ms:(r+1)*ms], 1e-13)
	}
}

func TestBatchedType3TailBatch(t *testing.T) {
	// an odd transform count with an even batch size exercises the
	// narrowed tail batch of the inner type-2 plan
	const (
		nj     = 40
		nk     = 30
		nTrans = 3
		tol    = 1e-8
	)
	rng := rand.New(rand.NewSource(27))
	x := randCoords(rng, nj, 8)
	s := randCoords(rng, nk, 6)
	c := randVec(rng, nj*nTrans)

	opts := DefaultOptions()
	opts.MaxBatchSize = 2
	plan, err := New(Type3, 1, nil, +1, nTrans, tol, &opts)
	require.NoError(t, err)
	defer plan.Destroy()
	require.NoError(t, plan.SetPoints(x, nil, nil, s, nil, nil))

	fk := make([]complex128, nk*nTrans)
	require.NoError(t, plan.Execute(c, fk))

	for r := range nTrans {
		want := testutil.Type3Direct(+1, x, nil, nil, s, nil, nil, c[r*nj:(r+1)*nj])
		testutil.AssertRelErr2(t, want, fk[r*nk:(r+1)*nk], 100*tol)
	}
}

func TestThreadSchemesAgree(t *testing.T) {
	const (
		nj     = 300
		ms     = 24
		nTrans = 4
		tol    = 1e-9
	)
	rng := rand.New(rand.NewSource(28))
	x := randCoords(rng, nj, math.Pi)
	c := randVec(rng, nj*nTrans)

	var ref []complex128
	for _, scheme := range []ThreadScheme{ThreadAuto, ThreadSeqMulti, ThreadParSingle, ThreadNested} {
		opts := DefaultOptions()
		opts.SpreadThread = scheme
		plan, err := New(Type1, 1, []int{ms}, +1, nTrans, tol, &opts)
		require.NoError(t, err)
		require.NoError(t, plan.SetPoints(x, nil, nil, nil, nil, nil))
		fk := make([]complex128, ms*nTrans)
		require.NoError(t, plan.Execute(c, fk))
		plan.Destroy()

		if ref == nil {
			ref = fk
			continue
		}
		testutil.AssertRelErr2(t, ref, fk, 1e-12, "scheme=%d", scheme)
	}
}

func TestExecuteRepeatable(t *testing.T) {
	// executing twice on the same plan and points gives identical output
	const (
		nj  = 100
		ms  = 16
		tol = 1e-9
	)
	rng := rand.New(rand.NewSource(29))
	x := randCoords(rng, nj, math.Pi)
	c := randVec(rng, nj)

	plan, err := New(Type1, 1, []int{ms}, +1, 1, tol, nil)
	require.NoError(t, err)
	defer plan.Destroy()
	require.NoError(t, plan.SetPoints(x, nil, nil, nil, nil, nil))

	a := make([]complex128, ms)
	b := make([]complex128, ms)
	require.NoError(t, plan.Execute(c, a))
	require.NoError(t, plan.Execute(c, b))
	assert.Equal(t, a, b)
}
