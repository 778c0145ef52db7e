//go:build ebiten

package ui

import (
	"cellpotts/internal/render"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Overlay tracks which frame layers are drawn over the kind colors. Key 1
// toggles activity, key 2 cell edges and key 3 identity coloring.
type Overlay struct {
	layers render.Layers
}

// NewOverlay starts with activity and edges visible.
func NewOverlay() *Overlay {
	return &Overlay{layers: render.Layers{Activity: true, Edges: true}}
}

// Update handles the layer toggles.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit1) {
		o.layers.Activity = !o.layers.Activity
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit2) {
		o.layers.Edges = !o.layers.Edges
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit3) {
		o.layers.Identity = !o.layers.Identity
	}
}

// Layers returns the current selection.
func (o *Overlay) Layers() render.Layers { return o.layers }
