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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linearVCGT(n int) *VideoCardGamma {
	v := &VideoCardGamma{EntrySize: 2, Table: make([][]uint64, 3)}
	for c := range v.Table {
		v.Table[c] = make([]uint64, n)
		for k := range n {
			v.Table[c][k] = uint64(math.Round(float64(k) * 65535 / float64(n-1)))
		}
	}
	return v
}

func TestVCGTFormula(t *testing.T) {
	v := &VideoCardGamma{Formula: [3]VCGTFormula{
		{Gamma: 1, Min: 0, Max: 1},
		{Gamma: 2, Min: 0, Max: 1},
		{Gamma: 0.5, Min: 0.25, Max: 0.75},
	}}
	data, err := v.Encode()
	require.NoError(t, err)
	assert.Len(t, data, 48)

	val, warnings := decodeVia(VideoCardGammaTag, data)
	assert.Empty(t, warnings)
	assert.Equal(t, v, val)

	rgb := v.Normalized(3)
	assert.InDeltaSlice(t, []float64{0, 0, 0.25}, rgb[0][:], 1e-12)
	assert.InDeltaSlice(t, []float64{0.5, 0.25, 0.25 + 0.5*math.Sqrt(0.5)}, rgb[1][:], 1e-12)
	assert.InDeltaSlice(t, []float64{1, 1, 0.75}, rgb[2][:], 1e-12)
	assert.False(t, v.IsLinear())
}

func TestVCGTTable(t *testing.T) {
	for _, size := range []int{1, 2, 4, 8} {
		v := &VideoCardGamma{EntrySize: size, Table: [][]uint64{{0, 1, 2, 3}, {4, 5, 6, 7}}}
		data, err := v.Encode()
		require.NoError(t, err)
		assert.Len(t, data, 18+8*size)
		val, _ := decodeVia(VideoCardGammaTag, data)
		assert.Equal(t, v, val, "entry size %d", size)
	}

	v := &VideoCardGamma{EntrySize: 1, Table: [][]uint64{{0, 255}}}
	rgb := v.Normalized(5)
	assert.Equal(t, [3]float64{0.25, 0.25, 0.25}, rgb[1])

	_, err := (&VideoCardGamma{EntrySize: 3, Table: [][]uint64{{0}}}).Encode()
	assert.Error(t, err)
	_, err = (&VideoCardGamma{EntrySize: 2, Table: [][]uint64{{0}, {0, 1}}}).Encode()
	assert.Error(t, err)

	data, err := v.Encode()
	require.NoError(t, err)
	putUint16(data, 16, 3)
	val, warnings := decodeVia(VideoCardGammaTag, data)
	assert.IsType(t, &RawTag{}, val)
	assert.Len(t, warnings, 1)
}

func TestVCGTIsLinear(t *testing.T) {
	assert.True(t, linearVCGT(256).IsLinear())
	assert.True(t, linearVCGT(1024).IsLinear())

	v := linearVCGT(256)
	v.Table[1][100] += 300
	assert.False(t, v.IsLinear())

	f := &VideoCardGamma{}
	for c := range f.Formula {
		f.Formula[c] = VCGTFormula{Gamma: 1, Max: 1}
	}
	assert.True(t, f.IsLinear())
}

func TestVCGTToTable(t *testing.T) {
	f := &VideoCardGamma{}
	for c := range f.Formula {
		f.Formula[c] = VCGTFormula{Gamma: 1, Max: 1}
	}
	assert.Equal(t, linearVCGT(256), f.ToTable(256, 2))

	// single channel tables apply to all three channels
	v := &VideoCardGamma{EntrySize: 1, Table: [][]uint64{{0, 51, 255}}}
	tab := v.ToTable(3, 2)
	for c := range 3 {
		assert.Equal(t, []uint64{0, 13107, 65535}, tab.Table[c])
	}
}
