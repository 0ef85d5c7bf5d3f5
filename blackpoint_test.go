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
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seehuhn.de/go/iccedit/colormath"
)

// neutralBlack is a neutral D50 black point with 1% of the white luminance.
var neutralBlack = [3]float64{colormath.D50[0] * 0.01, colormath.D50[1] * 0.01, colormath.D50[2] * 0.01}

func TestApplyBlackOffsetXYZ(t *testing.T) {
	l := identityLUT(t, 3)
	white := l.ClutAt(2, 2, 2)

	var calls []int
	opts := &BlackPointOptions{
		PCS: PCSXYZSpace,
		Progress: func(done, total int) {
			assert.Equal(t, 9, total)
			calls = append(calls, done)
		},
	}
	err := l.ApplyBlackOffset(context.Background(), neutralBlack, opts)
	require.NoError(t, err)

	black := l.ClutAt(0, 0, 0)
	for c := range 3 {
		assert.InDelta(t, neutralBlack[c]*32768, black[c], 1e-6)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9}, calls)

	// colours brighter than the PCS white move only slightly
	bright := l.ClutAt(2, 2, 2)
	for c := range 3 {
		assert.Less(t, bright[c], white[c])
		assert.Greater(t, bright[c], 0.95*white[c])
	}

	// applying the same black point again changes nothing
	before := slices.Clone(l.table())
	calls = nil
	require.NoError(t, l.ApplyBlackOffset(context.Background(), neutralBlack, opts))
	assert.Equal(t, before, l.table())
	assert.Empty(t, calls)
}

func TestApplyBlackOffsetLab(t *testing.T) {
	l, err := NewLUT16(3, 3, 3, 2, 2)
	require.NoError(t, err)
	for a := range 3 {
		for b := range 3 {
			for c := range 3 {
				l.SetClutAt([]float64{float64(a) / 2 * 65280, 32768, 32768}, a, b, c)
			}
		}
	}

	opts := &BlackPointOptions{PCS: PCSLabSpace}
	require.NoError(t, l.ApplyBlackOffset(context.Background(), neutralBlack, opts))

	want := colormath.LabToLegacyPCS(colormath.XYZToLab(neutralBlack, colormath.D50))
	assert.InDeltaSlice(t, want[:], l.ClutAt(0, 0, 0), 1e-3)

	// white is kept
	assert.InDeltaSlice(t, []float64{65280, 32768, 32768}, l.ClutAt(2, 1, 0), 1e-3)
}

func TestApplyBPC(t *testing.T) {
	l, err := NewLUT16(3, 3, 2, 2, 2)
	require.NoError(t, err)
	for a := range 2 {
		v := float64(a) * 32768
		for b := range 2 {
			for c := range 2 {
				l.SetClutAt([]float64{v * colormath.D50[0], v, v * colormath.D50[2]}, a, b, c)
			}
		}
	}
	old := [3]float64{colormath.D50[0] * 0.05, 0.05, colormath.D50[2] * 0.05}
	l.SetClutAt([]float64{old[0] * 32768, old[1] * 32768, old[2] * 32768}, 0, 0, 0)

	require.NoError(t, l.ApplyBPC(context.Background(), neutralBlack, nil))

	black := l.ClutAt(0, 0, 0)
	white := l.ClutAt(1, 1, 1)
	for c := range 3 {
		assert.InDelta(t, neutralBlack[c]*32768, black[c], 1e-6)
		assert.InDelta(t, colormath.D50[c]*32768, white[c], 1e-6)
	}
}

func TestBlackPointWorkers(t *testing.T) {
	l1 := identityLUT(t, 33)
	l2 := identityLUT(t, 33)

	ctx := context.Background()
	require.NoError(t, l1.ApplyBlackOffset(ctx, neutralBlack, &BlackPointOptions{Workers: 1}))
	require.NoError(t, l2.ApplyBlackOffset(ctx, neutralBlack, &BlackPointOptions{Workers: 4}))
	assert.Equal(t, l1.table(), l2.table())
}

func TestBlackPointCancel(t *testing.T) {
	l := identityLUT(t, 5)
	before := slices.Clone(l.table())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := l.ApplyBlackOffset(ctx, neutralBlack, nil)
	assert.ErrorIs(t, err, ErrAborted)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, before, l.table())

	// cancel from within the progress callback
	ctx, cancel = context.WithCancel(context.Background())
	defer cancel()
	opts := &BlackPointOptions{
		Progress: func(done, total int) {
			if done == 2 {
				cancel()
			}
		},
	}
	err = l.ApplyBPC(ctx, neutralBlack, opts)
	assert.ErrorIs(t, err, ErrAborted)
	assert.Equal(t, before, l.table())
}

func TestBlackPointErrors(t *testing.T) {
	l := identityLUT(t, 2)
	before := slices.Clone(l.table())

	err := l.ApplyBlackOffset(context.Background(), neutralBlack, &BlackPointOptions{PCS: RGBSpace})
	var pcsErr *UnsupportedPCSError
	require.ErrorAs(t, err, &pcsErr)
	assert.Equal(t, RGBSpace, pcsErr.PCS)
	assert.Equal(t, "ApplyBlackOffset", pcsErr.Op)

	// a black point as light as white cannot be blended
	err = l.ApplyBlackOffset(context.Background(), colormath.D50, nil)
	assert.True(t, errors.Is(err, colormath.ErrWhiteBlack))
	assert.Equal(t, before, l.table())

	cmyk, err := NewLUT16(3, 4, 2, 2, 2)
	require.NoError(t, err)
	assert.Error(t, cmyk.ApplyBPC(context.Background(), neutralBlack, nil))
}

func TestProfileApplyBlackOffset(t *testing.T) {
	p := New()
	p.SetTag(MediaWhitePoint, XYZType{colormath.D50})
	lut := identityLUT(t, 3)
	p.SetTag(AToB0, lut)
	require.NoError(t, p.LinkTag(AToB1, AToB0))

	var calls int
	opts := &BlackPointOptions{Progress: func(done, total int) { calls++ }}
	require.NoError(t, p.ApplyBlackOffset(context.Background(), neutralBlack, opts))

	// the shared table is only processed once
	assert.Equal(t, 9, calls)

	bkpt, err := p.XYZ(MediaBlackPoint)
	require.NoError(t, err)
	assert.InDeltaSlice(t, neutralBlack[:], bkpt[:], 1e-9)

	black, err := p.DeviceBlack(Perceptual)
	require.NoError(t, err)
	assert.InDeltaSlice(t, neutralBlack[:], black[:], 1e-9)
}

func TestProfileApplyBlackOffsetTRC(t *testing.T) {
	p := New()
	p.SetTag(MediaWhitePoint, XYZType{colormath.D50})
	p.SetTag(RedColorant, XYZType{{0.4361, 0.2225, 0.0139}})
	p.SetTag(GreenColorant, XYZType{{0.3851, 0.7169, 0.0971}})
	p.SetTag(BlueColorant, XYZType{{0.1430, 0.0606, 0.7139}})
	p.SetTag(RedTRC, &Curve{Gamma: 2.2})
	require.NoError(t, p.LinkTag(GreenTRC, RedTRC))
	p.SetTag(BlueTRC, &Curve{FuncType: 3, Params: srgbParams})

	black, err := p.DeviceBlack(Perceptual)
	require.NoError(t, err)
	assert.Equal(t, [3]float64{}, black)

	require.NoError(t, p.ApplyBlackOffset(context.Background(), neutralBlack, nil))

	black, err = p.DeviceBlack(Perceptual)
	require.NoError(t, err)
	assert.InDeltaSlice(t, neutralBlack[:], black[:], 1e-9)

	for _, sig := range []TagType{RedTRC, GreenTRC, BlueTRC} {
		c, err := p.curve(sig)
		require.NoError(t, err)
		assert.Len(t, c.Table, 1024)
		assert.InDelta(t, 65535, c.Table[1023], 1e-6)
	}
	assert.False(t, p.sameTag(RedTRC, GreenTRC))
}

// A failed ApplyBlackOffset leaves the profile unchanged.
func TestProfileApplyBlackOffsetUnchanged(t *testing.T) {
	p := New()
	lut := identityLUT(t, 3)
	before := slices.Clone(lut.table())
	p.SetTag(AToB0, lut)

	// without "chad" the black point is adapted to the missing "wtpt"
	err := p.ApplyBlackOffset(context.Background(), neutralBlack, nil)
	assert.ErrorIs(t, err, ErrMissingTag)
	assert.Equal(t, before, lut.table())
	assert.False(t, p.Has(MediaBlackPoint))

	// matrix/TRC profile without colorant tags
	p.SetTag(MediaWhitePoint, XYZType{colormath.D50})
	trc := &Curve{Gamma: 2.2}
	p.SetTag(RedTRC, trc)
	p.SetTag(GreenTRC, trc)
	p.SetTag(BlueTRC, trc)
	err = p.ApplyBlackOffset(context.Background(), neutralBlack, nil)
	assert.ErrorIs(t, err, ErrMissingTag)
	assert.Equal(t, before, lut.table())
	assert.False(t, p.Has(MediaBlackPoint))
	val, _ := p.Tag(RedTRC)
	assert.Same(t, trc, val)
	assert.Equal(t, 2.2, trc.Gamma)
}
