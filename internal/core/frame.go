package core

// Frame is a row-major projection of one lattice plane for display. Codes
// index the palette, IDs carry the occupying identity, Levels hold overlay
// intensities in [0, 1] and Edges mark pixels on a cell boundary.
type Frame struct {
	W, H   int
	Codes  []uint8
	IDs    []int32
	Levels []float32
	Edges  []bool
}

// NewFrame allocates a frame with the given dimensions.
func NewFrame(w, h int) *Frame {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	n := w * h
	return &Frame{
		W:      w,
		H:      h,
		Codes:  make([]uint8, n),
		IDs:    make([]int32, n),
		Levels: make([]float32, n),
		Edges:  make([]bool, n),
	}
}

// Index returns the slice index for coordinates (x, y).
func (f *Frame) Index(x, y int) int { return y*f.W + x }

// Clear resets every layer.
func (f *Frame) Clear() {
	clear(f.Codes)
	clear(f.IDs)
	clear(f.Levels)
	clear(f.Edges)
}
