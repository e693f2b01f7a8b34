package mathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSmooth235(t *testing.T) {
	smooth := []int{1, 2, 3, 4, 5, 6, 8, 9, 10, 12, 15, 16, 18, 20, 24, 30, 720}
	for _, n := range smooth {
		assert.True(t, IsSmooth235(n), "n=%d", n)
	}
	rough := []int{0, -4, 7, 11, 13, 14, 22, 26, 77}
	for _, n := range rough {
		assert.False(t, IsSmooth235(n), "n=%d", n)
	}
}

func TestNextSmooth235Even(t *testing.T) {
	cases := map[int]int{
		-3: 2,
		0:  2,
		1:  2,
		2:  2,
		7:  8,
		9:  10,
		11: 12,
		13: 16, // 14 = 2*7 is rejected
		25: 30, // 26, 28 rejected
		61: 64,
	}
	for in, want := range cases {
		assert.Equal(t, want, NextSmooth235Even(in), "n=%d", in)
	}
}

func TestNextSmooth235EvenIsEvenAndSmooth(t *testing.T) {
	for n := 1; n < 2000; n += 17 {
		got := NextSmooth235Even(n)
		if got < n || got%2 != 0 || !IsSmooth235(got) {
			t.Fatalf("NextSmooth235Even(%d) = %d", n, got)
		}
	}
}

func TestIntervalWidCen(t *testing.T) {
	w, c := IntervalWidCen([]float64{-1, 0, 3})
	assert.InDelta(t, 2.0, w, 1e-15)
	assert.InDelta(t, 1.0, c, 1e-15)

	// near-symmetric intervals snap the center to zero
	w, c = IntervalWidCen([]float64{-1.0, 1.1})
	assert.InDelta(t, 1.05, w, 1e-15)
	assert.Equal(t, 0.0, c)

	w, c = IntervalWidCen(nil)
	assert.Equal(t, 0.0, w)
	assert.Equal(t, 0.0, c)
}
