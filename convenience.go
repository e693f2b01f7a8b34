package nufft

// One-shot wrappers around the plan interface, one per (dimension, type)
// pair. Each plans a single transform, binds the points, executes and
// destroys the plan. For repeated transforms over the same points, use
// New directly and reuse the plan.

func oneShot(kind TransformType, dim int, nModes []int, sign int, tol float64,
	x, y, z, s, t, u []float64, in []complex128, outLen int, opts *Options) ([]complex128, error) {
	plan, err := New(kind, dim, nModes, sign, 1, tol, opts)
	if err != nil {
		return nil, err
	}
	defer plan.Destroy()
	if err := plan.SetPoints(x, y, z, s, t, u); err != nil {
		return nil, err
	}
	out := make([]complex128, outLen)
	if kind == Type2 {
		if err := plan.Execute(out, in); err != nil {
			return nil, err
		}
	} else {
		if err := plan.Execute(in, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Nufft1d1 computes fk[k] = sum_j c[j] exp(i*sign*k*x[j]) for modes
// k in [-ms/2, (ms-1)/2], returning the ms coefficients.
func Nufft1d1(x []float64, c []complex128, sign int, tol float64, ms int, opts *Options) ([]complex128, error) {
	return oneShot(Type1, 1, []int{ms}, sign, tol, x, nil, nil, nil, nil, nil, c, ms, opts)
}

// Nufft1d2 computes c[j] = sum_k fk[k] exp(i*sign*k*x[j]), returning one
// value per point.
func Nufft1d2(x []float64, fk []complex128, sign int, tol float64, ms int, opts *Options) ([]complex128, error) {
	return oneShot(Type2, 1, []int{ms}, sign, tol, x, nil, nil, nil, nil, nil, fk, len(x), opts)
}

// Nufft1d3 computes f[k] = sum_j c[j] exp(i*sign*s[k]*x[j]) at the
// nonuniform frequencies s.
func Nufft1d3(x []float64, c []complex128, sign int, tol float64, s []float64, opts *Options) ([]complex128, error) {
	return oneShot(Type3, 1, nil, sign, tol, x, nil, nil, s, nil, nil, c, len(s), opts)
}

// Nufft2d1 is the two-dimensional type 1: ms*mt output modes, dimension
// 1 fastest.
func Nufft2d1(x, y []float64, c []complex128, sign int, tol float64, ms, mt int, opts *Options) ([]complex128, error) {
	return oneShot(Type1, 2, []int{ms, mt}, sign, tol, x, y, nil, nil, nil, nil, c, ms*mt, opts)
}

// Nufft2d2 is the two-dimensional type 2.
func Nufft2d2(x, y []float64, fk []complex128, sign int, tol float64, ms, mt int, opts *Options) ([]complex128, error) {
	return oneShot(Type2, 2, []int{ms, mt}, sign, tol, x, y, nil, nil, nil, nil, fk, len(x), opts)
}

// Nufft2d3 is the two-dimensional type 3 at target frequencies (s, t).
func Nufft2d3(x, y []float64, c []complex128, sign int, tol float64, s, t []float64, opts *Options) ([]complex128, error) {
	return oneShot(Type3, 2, nil, sign, tol, x, y, nil, s, t, nil, c, len(s), opts)
}

// Nufft3d1 is the three-dimensional type 1: ms*mt*mu output modes,
// dimension 1 fastest.
func Nufft3d1(x, y, z []float64, c []complex128, sign int, tol float64, ms, mt, mu int, opts *Options) ([]complex128, error) {
	return oneShot(Type1, 3, []int{ms, mt, mu}, sign, tol, x, y, z, nil, nil, nil, c, ms*mt*mu, opts)
}

// Nufft3d2 is the three-dimensional type 2.
func Nufft3d2(x, y, z []float64, fk []complex128, sign int, tol float64, ms, mt, mu int, opts *Options) ([]complex128, error) {
	return oneShot(Type2, 3, []int{ms, mt, mu}, sign, tol, x, y, z, nil, nil, nil, fk, len(x), opts)
}

// Nufft3d3 is the three-dimensional type 3 at target frequencies
// (s, t, u).
func Nufft3d3(x, y, z []float64, c []complex128, sign int, tol float64, s, t, u []float64, opts *Options) ([]complex128, error) {
	return oneShot(Type3, 3, nil, sign, tol, x, y, z, s, t, u, c, len(s), opts)
}
