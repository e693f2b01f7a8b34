package mathutil

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// centerSnapFraction controls when an interval center is snapped to zero.
// A center much smaller than the half-width buys nothing (the grid must
// cover nearly the same span) while forcing an extra phase factor per
// point, so it is rounded away.
const centerSnapFraction = 0.1

// IntervalWidCen returns the half-width w and center c of the smallest
// interval containing all values of a, so that a[i] lies in [c-w, c+w].
// Centers within centerSnapFraction of the half-width are snapped to zero.
// An empty slice yields (0, 0).
func IntervalWidCen(a []float64) (w, c float64) {
	if len(a) == 0 {
		return 0, 0
	}
	lo := floats.Min(a)
	hi := floats.Max(a)
	w = (hi - lo) / 2
	c = (hi + lo) / 2
	if math.Abs(c) < centerSnapFraction*w {
		c = 0
	}
	return w, c
}
