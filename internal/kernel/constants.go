package kernel

// Kernel width limits.
const (
	minWidth = 2
	// MaxWidth is the widest supported kernel; tolerances needing more
	// taps than this are rejected at setup.
	MaxWidth = 16
)

// Shape parameter tuning. beta scales linearly with the width; the
// narrowest kernels use slightly different ratios.
const (
	betaOverWidthDefault = 2.30
	betaOverWidth2       = 2.20
	betaOverWidth3       = 2.26
	betaOverWidth4       = 2.38

	// betaGamma is the safety factor applied for general oversampling
	// ratios, where beta/w = gamma*pi*(1 - 1/(2*sigma)).
	betaGamma = 0.97
)

// Piecewise polynomial evaluation.
const (
	polyDegreeSlack = 3  // fitted degree = width + slack
	polyDegreeMax   = 16 // cap on fitted degree
	padMultiple     = 4  // tap vector padding granularity
)

// Quadrature sizing for the Fourier-side evaluations. The node count
// grows with the kernel half-width; quadNodesMax bounds the tables.
const (
	quadNodesBase  = 2
	quadNodesPerJ2 = 3.0
	quadNodesMax   = 100
)
