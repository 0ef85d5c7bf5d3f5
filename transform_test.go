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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seehuhn.de/go/iccedit/colormath"
)

func TestGrayTransform(t *testing.T) {
	p := New()
	p.ColorSpace = GraySpace
	p.SetTag(GrayTRC, &Curve{Gamma: 2})

	tr, err := NewTransform(p, Perceptual)
	require.NoError(t, err)
	xyz, err := tr.ToXYZ([]float64{0.5})
	require.NoError(t, err)
	want := [3]float64{colormath.D50[0] / 4, colormath.D50[1] / 4, colormath.D50[2] / 4}
	assert.InDeltaSlice(t, want[:], xyz[:], 1e-12)

	_, err = tr.ToXYZ([]float64{0.5, 0.5, 0.5})
	assert.Error(t, err)
}

func TestMatrixTRCTransform(t *testing.T) {
	p := New()
	p.SetTag(RedColorant, XYZType{{0.4361, 0.2225, 0.0139}})
	p.SetTag(GreenColorant, XYZType{{0.3851, 0.7169, 0.0971}})
	p.SetTag(RedTRC, &Curve{Gamma: 1})
	p.SetTag(GreenTRC, &Curve{Gamma: 1})
	p.SetTag(BlueTRC, &Curve{Gamma: 2})

	_, err := NewTransform(p, Perceptual)
	assert.ErrorIs(t, err, ErrMissingTag)

	p.SetTag(BlueColorant, XYZType{{0.1430, 0.0606, 0.7139}})
	tr, err := NewTransform(p, Perceptual)
	require.NoError(t, err)

	white, err := tr.ToXYZ([]float64{1, 1, 1})
	require.NoError(t, err)
	assert.InDeltaSlice(t, colormath.D50[:], white[:], 1e-12)

	blue, err := tr.ToXYZ([]float64{0, 0, 0.5})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.1430 / 4, 0.0606 / 4, 0.7139 / 4}, blue[:], 1e-12)

	_, err = tr.ToXYZ([]float64{1})
	assert.Error(t, err)
}

func TestLUTTransform(t *testing.T) {
	p := New()
	p.SetTag(AToB0, identityLUT(t, 2))

	tr, err := NewTransform(p, RelativeColorimetric)
	require.NoError(t, err)
	xyz, err := tr.ToXYZ([]float64{0.5, 0.25, 1})
	require.NoError(t, err)
	want := []float64{0.5 * 65535 / 32768, 0.25 * 65535 / 32768, 65535.0 / 32768}
	assert.InDeltaSlice(t, want, xyz[:], 1e-9)

	// the table for the requested intent takes precedence
	dark := identityLUT(t, 2)
	dark.SetClutAt([]float64{100, 200, 300}, 1, 1, 1)
	p.SetTag(AToB1, dark)
	tr, err = NewTransform(p, AbsoluteColorimetric)
	require.NoError(t, err)
	xyz, err = tr.ToXYZ([]float64{1, 1, 1})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{100.0 / 32768, 200.0 / 32768, 300.0 / 32768}, xyz[:], 1e-9)

	// CIELAB tables
	p.PCS = PCSLabSpace
	p.DeleteTag(AToB1)
	tr, err = NewTransform(p, Perceptual)
	require.NoError(t, err)
	xyz, err = tr.ToXYZ([]float64{65280.0 / 65535, 32768.0 / 65535, 32768.0 / 65535})
	require.NoError(t, err)
	assert.InDeltaSlice(t, colormath.D50[:], xyz[:], 1e-6)
}

func TestDeviceBlack(t *testing.T) {
	_, err := New().DeviceBlack(Perceptual)
	assert.ErrorIs(t, err, errNoTransform)

	// CMYK black is full colorant
	l, err := NewLUT16(4, 3, 2, 2, 2)
	require.NoError(t, err)
	l.SetClutAt([]float64{100, 200, 300}, 1, 1, 1, 1)
	l.SetClutAt([]float64{65535, 65535, 65535}, 0, 0, 0, 0)
	p := New()
	p.ColorSpace = CMYKSpace
	p.Class = OutputDeviceProfile
	p.SetTag(AToB0, l)

	black, err := p.DeviceBlack(Perceptual)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{100.0 / 32768, 200.0 / 32768, 300.0 / 32768}, black[:], 1e-9)
}
