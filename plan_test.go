package nufft

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidation(t *testing.T) {
	_, err := New(TransformType(4), 1, []int{8}, +1, 1, 1e-6, nil)
	assert.ErrorIs(t, err, ErrTypeNotValid)
	assert.Equal(t, CodeTypeNotValid, ErrCode(err))

	_, err = New(Type1, 0, []int{8}, +1, 1, 1e-6, nil)
	assert.ErrorIs(t, err, ErrDimNotValid)

	_, err = New(Type1, 1, []int{8}, +1, 0, 1e-6, nil)
	assert.ErrorIs(t, err, ErrNTransNotValid)

	_, err = New(Type1, 2, []int{8}, +1, 1, 1e-6, nil)
	assert.ErrorIs(t, err, ErrBadInput, "too few mode extents")

	_, err = New(Type1, 1, []int{8}, +1, 1, 1e-18, nil)
	assert.ErrorIs(t, err, ErrEpsTooSmall)

	opts := DefaultOptions()
	opts.UpsampFac = 0.5
	_, err = New(Type1, 1, []int{8}, +1, 1, 1e-6, &opts)
	assert.ErrorIs(t, err, ErrUpsampFacTooSmall)

	opts = DefaultOptions()
	opts.SpreadThread = ThreadScheme(9)
	_, err = New(Type1, 1, []int{8}, +1, 1, 1e-6, &opts)
	assert.ErrorIs(t, err, ErrThreadScheme)
}

func TestExecuteBeforeSetPoints(t *testing.T) {
	plan, err := New(Type1, 1, []int{8}, +1, 1, 1e-6, nil)
	require.NoError(t, err)
	defer plan.Destroy()

	err = plan.Execute(make([]complex128, 1), make([]complex128, 8))
	assert.ErrorIs(t, err, ErrNotReady)
	assert.Equal(t, CodeNotReady, ErrCode(err))
}

func TestDestroyIdempotent(t *testing.T) {
	plan, err := New(Type1, 1, []int{8}, +1, 1, 1e-6, nil)
	require.NoError(t, err)
	require.NoError(t, plan.SetPoints([]float64{0}, nil, nil, nil, nil, nil))

	assert.NoError(t, plan.Destroy())
	assert.NoError(t, plan.Destroy())

	err = plan.Execute(make([]complex128, 1), make([]complex128, 8))
	assert.ErrorIs(t, err, ErrNotReady)

	var zero Plan
	assert.NoError(t, zero.Destroy(), "destroy on a zero plan")
}

func TestSetPointsShapeValidation(t *testing.T) {
	plan, err := New(Type1, 2, []int{8, 8}, +1, 1, 1e-6, nil)
	require.NoError(t, err)
	defer plan.Destroy()

	err = plan.SetPoints([]float64{0, 1}, []float64{0}, nil, nil, nil, nil)
	assert.ErrorIs(t, err, ErrBadInput, "y length mismatch")

	err = plan.SetPoints(nil, nil, nil, nil, nil, nil)
	assert.ErrorIs(t, err, ErrBadInput, "nil x")
}

func TestSetPointsBoundsCheck(t *testing.T) {
	plan, err := New(Type1, 1, []int{8}, +1, 1, 1e-6, nil)
	require.NoError(t, err)
	defer plan.Destroy()

	err = plan.SetPoints([]float64{4 * math.Pi}, nil, nil, nil, nil, nil)
	assert.ErrorIs(t, err, ErrSpreadBounds)
	assert.Equal(t, CodeSpreadBounds, ErrCode(err))

	// disabling the check admits wild points (they fold periodically)
	opts := DefaultOptions()
	opts.ChkBnds = false
	plan2, err := New(Type1, 1, []int{8}, +1, 1, 1e-6, &opts)
	require.NoError(t, err)
	defer plan2.Destroy()
	assert.NoError(t, plan2.SetPoints([]float64{4 * math.Pi}, nil, nil, nil, nil, nil))
}

func TestExecuteLengthValidation(t *testing.T) {
	plan, err := New(Type1, 1, []int{8}, +1, 2, 1e-6, nil)
	require.NoError(t, err)
	defer plan.Destroy()
	require.NoError(t, plan.SetPoints([]float64{0, 1}, nil, nil, nil, nil, nil))

	err = plan.Execute(make([]complex128, 3), make([]complex128, 16))
	assert.ErrorIs(t, err, ErrBadInput, "short strengths")
	err = plan.Execute(make([]complex128, 4), make([]complex128, 15))
	assert.ErrorIs(t, err, ErrBadInput, "short modes")
}

func TestFineGridSizing(t *testing.T) {
	plan, err := New(Type1, 1, []int{100}, +1, 1, 1e-6, nil)
	require.NoError(t, err)
	defer plan.Destroy()
	// sigma=2 -> at least 200, rounded to a 2,3,5-smooth even size
	assert.Equal(t, 200, plan.nf1)

	plan2, err := New(Type1, 1, []int{101}, +1, 1, 1e-6, nil)
	require.NoError(t, err)
	defer plan2.Destroy()
	assert.Equal(t, 216, plan2.nf1) // 202..214 all have large factors
}

func TestErrCode(t *testing.T) {
	assert.Equal(t, CodeOK, ErrCode(nil))
	assert.Equal(t, CodeAlloc, ErrCode(ErrAlloc))
	assert.Equal(t, CodeBadInput, ErrCode(assert.AnError))
}

func TestOptionsValidate(t *testing.T) {
	opts := DefaultOptions()
	assert.NoError(t, opts.Validate())

	opts.SpreadSort = SortMode(7)
	assert.ErrorIs(t, opts.Validate(), ErrBadInput)

	opts = DefaultOptions()
	opts.MaxBatchSize = -1
	assert.ErrorIs(t, opts.Validate(), ErrBadInput)
}
