package render

import "image/color"

// fillPaletteRGBA converts cell values into RGBA pixels using a palette. When
// the palette is empty the buffer is cleared to transparent black. Codes past
// the end of the palette use its last entry.
func fillPaletteRGBA(buf []byte, cells []uint8, palette []color.RGBA) {
	if len(palette) == 0 {
		clear(buf[:4*len(cells)])
		return
	}

	last := len(palette) - 1
	for i, c := range cells {
		idx := min(int(c), last)
		base := i * 4
		col := palette[idx]
		buf[base+0] = col.R
		buf[base+1] = col.G
		buf[base+2] = col.B
		buf[base+3] = col.A
	}
}

// fillIdentityRGBA recolors every cell pixel by its identity.
func fillIdentityRGBA(buf []byte, ids []int32) {
	for i, id := range ids {
		if id <= 0 {
			continue
		}
		col := IdentityColor(id)
		base := i * 4
		buf[base+0] = col.R
		buf[base+1] = col.G
		buf[base+2] = col.B
		buf[base+3] = col.A
	}
}

// IdentityColor derives a stable color from a cell identity so that
// neighboring cells of the same kind can be told apart.
func IdentityColor(id int32) color.RGBA {
	h := uint32(id) * 2654435761
	h ^= h >> 15
	// Keep every channel away from black so edges stay visible.
	return color.RGBA{
		R: 64 + uint8(h)%192,
		G: 64 + uint8(h>>8)%192,
		B: 64 + uint8(h>>16)%192,
		A: 255,
	}
}

// fillActivityRGBA paints every pixel with a positive level using the
// activity ramp, leaving other pixels untouched.
func fillActivityRGBA(buf []byte, levels []float32) {
	for i, a := range levels {
		if a <= 0 {
			continue
		}
		col := ActivityColor(float64(a))
		base := i * 4
		buf[base+0] = col.R
		buf[base+1] = col.G
		buf[base+2] = col.B
		buf[base+3] = col.A
	}
}

// fillEdgesRGBA paints marked pixels with col.
func fillEdgesRGBA(buf []byte, edges []bool, col color.RGBA) {
	for i, on := range edges {
		if !on {
			continue
		}
		base := i * 4
		buf[base+0] = col.R
		buf[base+1] = col.G
		buf[base+2] = col.B
		buf[base+3] = col.A
	}
}

// ActivityColor maps a normalised activity to a ramp running from green at
// low activity through yellow to red at the maximum.
func ActivityColor(a float64) color.RGBA {
	a = clamp01(a)
	col := color.RGBA{B: 0, A: 255}
	if a > 0.5 {
		col.R = 255
		col.G = uint8((2 - 2*a) * 255)
	} else {
		col.R = uint8(2 * a * 255)
		col.G = 255
	}
	return col
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
