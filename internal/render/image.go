package render

import (
	"image"
	"image/color"
	"image/png"
	"io"

	"cellpotts/internal/core"
)

// Layers selects what is drawn over the kind colors.
type Layers struct {
	// Identity colors cells by identity instead of kind.
	Identity bool
	Activity bool
	Edges    bool
}

// Image renders f into a new RGBA image. Activity is drawn over the cell
// colors and edges over both.
func Image(f *core.Frame, palette []color.RGBA, layers Layers) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.W, f.H))
	Fill(img.Pix, f, palette, layers)
	return img
}

// Fill renders f into buf, which must hold 4*W*H bytes.
func Fill(buf []byte, f *core.Frame, palette []color.RGBA, layers Layers) {
	fillPaletteRGBA(buf, f.Codes, palette)
	if layers.Identity {
		fillIdentityRGBA(buf, f.IDs)
	}
	if layers.Activity {
		fillActivityRGBA(buf, f.Levels)
	}
	if layers.Edges {
		fillEdgesRGBA(buf, f.Edges, Edge)
	}
}

// WritePNG encodes the rendered frame as PNG.
func WritePNG(w io.Writer, f *core.Frame, palette []color.RGBA, layers Layers) error {
	return png.Encode(w, Image(f, palette, layers))
}
