// seehuhn.de/go/iccedit - read, edit and write ICC profiles
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package iccedit

import (
	"fmt"
	"image"
)

// SmoothOptions controls [LUT16.Smooth].
type SmoothOptions struct {
	// Diagnostics, if set, is called with an image of the cLUT before
	// ("pre") and after ("post") smoothing.  See [LUT16.ClutImage].
	Diagnostics func(stage string, img *image.NRGBA64)
}

// darkLimit is the channel sum below which cells are not smoothed.
const darkLimit = 65535 * 0.03125 * 3

// Smooth applies a smoothing filter to the cLUT of a table with three
// input and three output channels.  The pcs argument gives the colour
// space of the cLUT input, CIEXYZ or CIELAB.
//
// Cells on the gray axis and dark cells are left unchanged.  Cells on the
// boundary of a grid plane are averaged with their neighbours along the
// boundary, other cells with all eight neighbours in the plane.  Cells are
// updated in place, so that later cells see the smoothed values of
// earlier ones.
func (l *LUT16) Smooth(pcs ColorSpace, opts *SmoothOptions) error {
	if pcs != PCSXYZSpace && pcs != PCSLabSpace {
		return &UnsupportedPCSError{Op: "Smooth", PCS: pcs}
	}
	if l.inputChannels != 3 || l.outputChannels != 3 {
		return fmt.Errorf("iccedit: Smooth needs a 3-input, 3-output table, not %d/%d",
			l.inputChannels, l.outputChannels)
	}
	if opts == nil {
		opts = &SmoothOptions{}
	}
	diag := func(stage string) {
		if opts.Diagnostics == nil {
			return
		}
		if img, err := l.ClutImage(); err == nil {
			opts.Diagnostics(stage, img)
		}
	}
	diag("pre")

	g := l.gridPoints
	rows := l.Rows()
	for i := range g {
		grid := rows[i*g : (i+1)*g]
		for y := range g {
			for x := range g {
				if smoothProtected(grid[y][x], pcs, g, i, y, x) {
					continue
				}
				grid[y][x] = smoothCell(grid, pcs, i, y, x)
			}
		}
	}

	// Rows() shares memory with the cLUT, except for the replaced cells.
	clut := l.table()
	for x, row := range rows {
		for y, cell := range row {
			k := (x*g + y) * 3
			for c, v := range cell {
				clut[k+c] = min(v, 65535)
			}
		}
	}

	diag("post")
	return nil
}

// smoothProtected reports whether a cell is on the gray axis or dark.
func smoothProtected(cell []float64, pcs ColorSpace, g, i, y, x int) bool {
	if cell[0]+cell[1]+cell[2] < darkLimit {
		return true
	}
	switch {
	case pcs == PCSXYZSpace:
		return x == y && y == i
	case g%2 == 1:
		// for CIELAB, gray only falls on a grid point for odd g
		return x == g/2 && y == g/2
	}
	return false
}

// smoothCell computes the smoothed value of cell (y, x) of one grid plane.
func smoothCell(grid [][][]float64, pcs ColorSpace, i, y, x int) []float64 {
	g := len(grid)
	center := grid[y][x]
	sum := [3]float64{center[0], center[1], center[2]}
	count := 1.0
	add := func(yi, xi int, s float64) {
		if xi < 0 || yi < 0 || xi >= g || yi >= g {
			return
		}
		n := grid[yi][xi]
		for c := range 3 {
			sum[c] += n[c]*s + center[c]*(1-s)
		}
		count++
	}

	if x == 0 || y == 0 || x == g-1 || y == g-1 {
		// "plus" shaped filter, along the boundary only
		s := 0.5
		if pcs == PCSLabSpace && float64(i) > float64(g)/2 {
			s = 0.25
		}
		if x > 0 && x < g-1 {
			add(y, x-1, s)
			add(y, x+1, s)
		}
		if y > 0 && y < g-1 {
			add(y-1, x, s)
			add(y+1, x, s)
		}
	} else {
		// 3x3 box filter
		const edge, corner = 2.0 / 3, 1.0 / 3
		add(y, x-1, edge)
		add(y+1, x-1, corner)
		add(y, x+1, edge)
		add(y-1, x+1, corner)
		add(y-1, x, edge)
		add(y+1, x+1, corner)
		add(y+1, x, edge)
		add(y-1, x-1, corner)
	}

	return []float64{sum[0] / count, sum[1] / count, sum[2] / count}
}
