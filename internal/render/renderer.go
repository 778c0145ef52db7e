//go:build ebiten

package render

import (
	"image/color"

	"cellpotts/internal/core"

	"github.com/hajimehoshi/ebiten/v2"
)

// GridPainter keeps one ebiten image per lattice plane and refreshes it from
// palette codes or a full frame every draw.
type GridPainter struct {
	w, h int
	img  *ebiten.Image
	buf  []byte
	op   ebiten.DrawImageOptions
}

// NewGridPainter allocates a painter for a plane of size w*h drawn at scale.
func NewGridPainter(w, h, scale int) *GridPainter {
	gp := &GridPainter{w: w, h: h, buf: make([]byte, 4*w*h)}
	gp.img = ebiten.NewImage(w, h)
	gp.op.GeoM.Scale(float64(scale), float64(scale))
	return gp
}

// Blit draws bare palette codes, for sims without overlay layers.
func (gp *GridPainter) Blit(dst *ebiten.Image, cells []uint8, palette []color.RGBA) {
	if len(cells) != gp.w*gp.h {
		return
	}
	fillPaletteRGBA(gp.buf, cells, palette)
	gp.flush(dst)
}

// BlitFrame draws f with the selected layers.
func (gp *GridPainter) BlitFrame(dst *ebiten.Image, f *core.Frame, palette []color.RGBA, layers Layers) {
	if f.W != gp.w || f.H != gp.h {
		return
	}
	Fill(gp.buf, f, palette, layers)
	gp.flush(dst)
}

func (gp *GridPainter) flush(dst *ebiten.Image) {
	gp.img.ReplacePixels(gp.buf)
	dst.DrawImage(gp.img, &gp.op)
}
