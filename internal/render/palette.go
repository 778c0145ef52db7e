// Package render turns simulation frames into pixels, both for the ebiten
// viewer and for headless PNG snapshots.
package render

import "image/color"

var (
	// Background is the color of unoccupied pixels.
	Background = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	// Obstacle is the color of impassable pixels.
	Obstacle = color.RGBA{R: 90, G: 90, B: 90, A: 255}
	// Edge is the color of cell boundaries.
	Edge = color.RGBA{A: 255}
)

var kindColors = []color.RGBA{
	{R: 205, G: 92, B: 92, A: 255},
	{R: 65, G: 105, B: 225, A: 255},
	{R: 60, G: 179, B: 113, A: 255},
	{R: 238, G: 173, B: 14, A: 255},
	{R: 148, G: 0, B: 211, A: 255},
	{R: 0, G: 139, B: 139, A: 255},
}

// Palette returns a palette for a model with the given number of kinds
// (background included). Entry 0 is the background, entries 1..kinds-1 color
// the cell kinds and the final entry colors obstacles, so that obstacle codes
// clamp onto it.
func Palette(kinds int) []color.RGBA {
	kinds = max(kinds, 1)
	p := make([]color.RGBA, 0, kinds+1)
	p = append(p, Background)
	for k := 1; k < kinds; k++ {
		p = append(p, kindColors[(k-1)%len(kindColors)])
	}
	return append(p, Obstacle)
}
