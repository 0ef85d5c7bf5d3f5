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

package colormath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var d65 = [3]float64{0.95047, 1.0, 1.08883}

func assertXYZ(t *testing.T, want, got [3]float64, delta float64) {
	t.Helper()
	for i := range 3 {
		assert.InDelta(t, want[i], got[i], delta, "component %d", i)
	}
}

func TestLabRoundTrip(t *testing.T) {
	lab := XYZToLab(D50, D50)
	assertXYZ(t, [3]float64{100, 0, 0}, lab, 1e-9)

	for _, xyz := range [][3]float64{
		{0.2, 0.3, 0.1},
		{0.001, 0.002, 0.0005},
		{0.9, 0.8, 0.7},
	} {
		back := LabToXYZ(XYZToLab(xyz, D50), D50)
		assertXYZ(t, xyz, back, 1e-9)
	}
}

func TestLegacyPCS(t *testing.T) {
	enc := LabToLegacyPCS([3]float64{100, 0, 0})
	assert.InDeltaSlice(t, []float64{65280, 32768, 32768}, enc[:], 1e-9)

	lab := [3]float64{53.2, -12.5, 40.25}
	assertXYZ(t, lab, LegacyPCSToLab(LabToLegacyPCS(lab)), 1e-9)
}

func TestXYY(t *testing.T) {
	xyY := XYZToxyY(D50, D50)
	back := XYYToXYZ(xyY[0], xyY[1], xyY[2])
	assertXYZ(t, D50, back, 1e-12)

	black := XYZToxyY([3]float64{}, D50)
	assert.InDelta(t, xyY[0], black[0], 1e-12)
	assert.Equal(t, 0.0, black[2])
}

func TestMatrixInverse(t *testing.T) {
	inv, err := Bradford().Inverse()
	require.NoError(t, err)
	prod := Bradford().Mul(inv)
	assert.True(t, prod.Similar(Identity, 9))

	_, err = Matrix3{{1, 2, 3}, {2, 4, 6}, {0, 0, 1}}.Inverse()
	assert.ErrorIs(t, err, ErrSingular)
}

func TestAdaptWhite(t *testing.T) {
	for _, name := range CATNames {
		cat, ok := CAT(name)
		require.True(t, ok)
		got, err := Adapt(d65, d65, D50, cat)
		require.NoError(t, err)
		assertXYZ(t, D50, got, 1e-9)
	}
}

func TestGuessCAT(t *testing.T) {
	for _, name := range []string{"Bradford", "CAT02"} {
		cat, _ := CAT(name)
		chad, err := WPAdaptionMatrix(d65, D50, cat)
		require.NoError(t, err)
		guess, ok := GuessCAT(chad, d65, D50)
		assert.True(t, ok)
		assert.Equal(t, name, guess)
	}

	_, ok := GuessCAT(Identity, d65, D50)
	assert.False(t, ok)
}

func TestMatchCAT(t *testing.T) {
	q := func(x float64) float64 { return math.Round(x*65536) / 65536 }
	name, ok := MatchCAT(Bradford(), q, 4)
	assert.True(t, ok)
	assert.Equal(t, "Bradford", name)

	_, ok = MatchCAT(Matrix3{{2, 0, 0}, {0, 2, 0}, {0, 0, 2}}, q, 4)
	assert.False(t, ok)
}

func TestApplyBPC(t *testing.T) {
	bpIn := [3]float64{0.01, 0.011, 0.009}
	bpOut := [3]float64{0.002, 0.0021, 0.0018}
	assertXYZ(t, bpOut, ApplyBPC(bpIn, bpIn, bpOut, D50, false), 1e-12)
	assertXYZ(t, D50, ApplyBPC(D50, bpIn, bpOut, D50, false), 1e-12)
}

func TestBlendBlackpoint(t *testing.T) {
	bpIn := [3]float64{0.0030, 0.0031, 0.0027}
	target := [3]float64{0.0050, 0.0052, 0.0038}

	got, err := BlendBlackpoint(bpIn, bpIn, target, D50, DefaultBlackPower)
	require.NoError(t, err)
	assertXYZ(t, target, got, 1e-9)

	white, err := BlendBlackpoint(D50, bpIn, target, D50, DefaultBlackPower)
	require.NoError(t, err)
	assertXYZ(t, D50, white, 1e-9)

	same, err := BlendBlackpoint(D50, [3]float64{}, [3]float64{}, D50, DefaultBlackPower)
	require.NoError(t, err)
	assert.Equal(t, D50, same)
}

func TestBlendABWhite(t *testing.T) {
	_, err := BlendAB([3]float64{0.1, 0.1, 0.1}, D50, D50, DefaultBlackPower, 1)
	assert.ErrorIs(t, err, ErrWhiteBlack)
}

func TestSpecialPow(t *testing.T) {
	for _, code := range []float64{SRGB, LStar, SMPTE240M, Rec709, SMPTE2084} {
		for _, x := range []float64{0.001, 0.05, 0.5, 0.9} {
			enc, err := SpecialPow(x, 1/code)
			require.NoError(t, err)
			dec, err := SpecialPow(enc, code)
			require.NoError(t, err)
			assert.InDelta(t, x, dec, 1e-6, "code %g, x=%g", code, x)
		}
	}

	v, err := SpecialPow(-0.25, 2)
	require.NoError(t, err)
	assert.Equal(t, -0.0625, v)

	v, err = SpecialPow(1, SMPTE2084)
	require.NoError(t, err)
	assert.InDelta(t, 1, v, 1e-12)

	_, err = SpecialPow(0.5, -7)
	assert.Error(t, err)
}

func TestHLG(t *testing.T) {
	for _, x := range []float64{0, 0.01, 0.2, 0.5, 0.99} {
		sig := HLGOETF(x, false)
		assert.InDelta(t, x, HLGOETF(sig, true), 1e-9)
	}
	assert.Equal(t, 1.0, HLGOETF(1, true))
}

func TestInterp(t *testing.T) {
	xp := []float64{0, 1, 1, 3}
	fp := []float64{0, 10, 20, 40}
	cases := []struct {
		x, want float64
	}{
		{-1, 0},
		{0, 0},
		{1, 10},
		{2, 30},
		{4, 40},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Interp(c.x, xp, fp), "x=%g", c.x)
	}

	f := NewInterpolator(xp, fp)
	for _, c := range cases {
		assert.Equal(t, c.want, f.At(c.x), "x=%g", c.x)
	}

	var id Interpolator
	assert.Equal(t, 0.3, id.At(0.3))
}

func TestGamma(t *testing.T) {
	var points [][2]float64
	for i := 1; i < 10; i++ {
		x := float64(i) / 10
		points = append(points, [2]float64{x * 65535, math.Pow(x, 2.2) * 65535})
	}
	assert.InDelta(t, 2.2, Gamma(points, 65535, 0, 65535), 1e-9)
	assert.Equal(t, 0.0, Gamma(nil, 1, 0, 1))
}
