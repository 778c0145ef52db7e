//go:build !ebiten

package ui

import "cellpotts/internal/render"

// Overlay is a no-op placeholder used when the ebiten build tag is absent.
type Overlay struct{}

// NewOverlay constructs a stub overlay.
func NewOverlay() *Overlay { return &Overlay{} }

// Update is a no-op in headless builds.
func (o *Overlay) Update() {}

// Layers reports no layers in headless builds.
func (o *Overlay) Layers() render.Layers { return render.Layers{} }
