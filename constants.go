package nufft

// Grid size and memory guards.
const (
	// maxNF caps the total working grid allocation (complex samples,
	// summed over the batch). Requests beyond this fail with ErrMaxAlloc
	// rather than attempting a hopeless allocation.
	maxNF = int64(1e11)

	// maxUsefulThreads bounds the automatic batch size; beyond this the
	// per-transform memory cost outweighs the parallel win.
	maxUsefulThreads = 24
)

// Oversampling defaults.
const defaultUpsampFac = 2.0

// type3GridPad is the extra padding added to type-3 fine grid sizes on
// top of the bandwidth-product term and the kernel width.
const type3GridPad = 1
