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
	"image"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmoothKeepsLinearTable(t *testing.T) {
	for _, pcs := range []ColorSpace{PCSXYZSpace, PCSLabSpace} {
		l := identityLUT(t, 5)
		before := slices.Clone(l.table())
		require.NoError(t, l.Smooth(pcs, nil))
		assert.InDeltaSlice(t, before, l.table(), 1e-6)
	}
}

func TestSmoothSpike(t *testing.T) {
	l := identityLUT(t, 5)
	linear := l.ClutAt(1, 2, 3)
	spike := []float64{linear[0] + 10000, linear[1] + 10000, linear[2] + 10000}
	l.SetClutAt(spike, 1, 2, 3)
	// a spike on the gray axis and one in a dark cell
	l.SetClutAt([]float64{20000, 30000, 40000}, 2, 2, 2)
	l.SetClutAt([]float64{100, 0, 0}, 0, 0, 0)

	var stages []string
	opts := &SmoothOptions{
		Diagnostics: func(stage string, img *image.NRGBA64) {
			stages = append(stages, stage)
			assert.Equal(t, image.Rect(0, 0, 5, 25), img.Bounds())
		},
	}
	require.NoError(t, l.Smooth(PCSXYZSpace, opts))
	assert.Equal(t, []string{"pre", "post"}, stages)

	got := l.ClutAt(1, 2, 3)
	for c := range 3 {
		assert.Less(t, got[c], spike[c])
		assert.Greater(t, got[c], linear[c])
	}
	assert.Equal(t, []float64{20000, 30000, 40000}, l.ClutAt(2, 2, 2))
	assert.Equal(t, []float64{100, 0, 0}, l.ClutAt(0, 0, 0))
}

func TestSmoothLabGray(t *testing.T) {
	l := identityLUT(t, 5)
	l.SetClutAt([]float64{50000, 0, 65535}, 3, 2, 2)
	l.SetClutAt([]float64{50000, 0, 65535}, 3, 3, 3)
	require.NoError(t, l.Smooth(PCSLabSpace, nil))

	// for CIELAB, the gray axis is the centre of each plane
	assert.Equal(t, []float64{50000, 0, 65535}, l.ClutAt(3, 2, 2))
	assert.NotEqual(t, []float64{50000, 0, 65535}, l.ClutAt(3, 3, 3))
}

func TestSmoothValuesStayInRange(t *testing.T) {
	l := identityLUT(t, 3)
	for a := range 3 {
		for b := range 3 {
			for c := range 3 {
				if a == b && b == c {
					continue
				}
				l.SetClutAt([]float64{65535, 65535, 65535}, a, b, c)
			}
		}
	}
	l.SetClutAt([]float64{65535, 65535, 65535}, 2, 2, 2)
	require.NoError(t, l.Smooth(PCSXYZSpace, nil))
	for _, v := range l.table() {
		assert.LessOrEqual(t, v, 65535.0)
		assert.GreaterOrEqual(t, v, 0.0)
	}
}

func TestSmoothErrors(t *testing.T) {
	l := identityLUT(t, 3)
	before := slices.Clone(l.table())
	for _, pcs := range []ColorSpace{0, RGBSpace, CMYKSpace, GraySpace} {
		err := l.Smooth(pcs, nil)
		var pcsErr *UnsupportedPCSError
		require.ErrorAs(t, err, &pcsErr, "PCS %08x", uint32(pcs))
		assert.Equal(t, pcs, pcsErr.PCS)
		assert.Equal(t, "Smooth", pcsErr.Op)
	}
	assert.Equal(t, before, l.table())

	cmyk, err := NewLUT16(4, 3, 3, 2, 2)
	require.NoError(t, err)
	assert.Error(t, cmyk.Smooth(PCSXYZSpace, nil))
}
