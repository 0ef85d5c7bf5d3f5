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
	"errors"
	"fmt"
	"math"
)

// VideoCardGamma is the value of the private "vcgt" tag, which holds
// the calibration curves to be loaded into the video card.
//
// The tag either stores one table per channel, or a gamma formula for
// the red, green and blue channels.
type VideoCardGamma struct {
	// Table holds the table entries, one slice per channel.  If Table is
	// nil, the formula is used.
	Table [][]uint64

	// EntrySize is the size of a table entry in bytes: 1, 2, 4 or 8.
	EntrySize int

	// Formula gives the gamma formula for red, green and blue.
	Formula [3]VCGTFormula
}

// VCGTFormula describes the curve y = Min + x^Gamma * (Max - Min).
type VCGTFormula struct {
	Gamma, Min, Max float64
}

const (
	vcgtTable   = 0
	vcgtFormula = 1
)

func decodeVideoCardGamma(data []byte, _ TagType, _ *Profile) (TagValue, error) {
	err := checkType(data, TypeVideoCardGamma)
	if err != nil {
		return nil, err
	}
	if len(data) < 12 {
		return nil, errInvalidTagData
	}

	v := &VideoCardGamma{}
	switch getUint32(data, 8) {
	case vcgtTable:
		if len(data) < 18 {
			return nil, errInvalidTagData
		}
		channels := int(getUint16(data, 12))
		count := int(getUint16(data, 14))
		size := int(getUint16(data, 16))
		if size != 1 && size != 2 && size != 4 && size != 8 {
			return nil, fmt.Errorf("invalid vcgt entry size %d", size)
		}
		if 18+channels*count*size > len(data) {
			return nil, errInvalidTagData
		}
		v.EntrySize = size
		v.Table = make([][]uint64, channels)
		pos := 18
		for c := range v.Table {
			v.Table[c] = make([]uint64, count)
			for k := range count {
				v.Table[c][k] = getVCGTEntry(data, pos, size)
				pos += size
			}
		}
	case vcgtFormula:
		if len(data) < 48 {
			return nil, errInvalidTagData
		}
		for c := range v.Formula {
			pos := 12 + 12*c
			v.Formula[c] = VCGTFormula{
				Gamma: getU16Fixed16(data, pos),
				Min:   getU16Fixed16(data, pos+4),
				Max:   getU16Fixed16(data, pos+8),
			}
		}
	default:
		return nil, errInvalidTagData
	}
	return v, nil
}

func getVCGTEntry(data []byte, pos, size int) uint64 {
	switch size {
	case 1:
		return uint64(data[pos])
	case 2:
		return uint64(getUint16(data, pos))
	case 4:
		return uint64(getUint32(data, pos))
	}
	return getUint64(data, pos)
}

func putVCGTEntry(data []byte, pos, size int, v uint64) {
	switch size {
	case 1:
		data[pos] = byte(v)
	case 2:
		putUint16(data, pos, uint16(v))
	case 4:
		putUint32(data, pos, uint32(v))
	default:
		putUint64(data, pos, v)
	}
}

func (v *VideoCardGamma) maxValue() float64 {
	return math.Pow(256, float64(v.EntrySize)) - 1
}

// Normalized returns n evenly spaced samples of the red, green and blue
// curves, scaled to [0, 1].  Tables with fewer than three channels repeat
// the first channel.
func (v *VideoCardGamma) Normalized(n int) [][3]float64 {
	res := make([][3]float64, n)
	for k := range res {
		x := 0.0
		if n > 1 {
			x = float64(k) / float64(n-1)
		}
		for c := range 3 {
			res[k][c] = v.eval(c, x)
		}
	}
	return res
}

func (v *VideoCardGamma) eval(c int, x float64) float64 {
	if v.Table == nil {
		f := v.Formula[c]
		return f.Min + math.Pow(x, f.Gamma)*(f.Max-f.Min)
	}
	if len(v.Table) == 0 {
		return x
	}
	if c >= len(v.Table) {
		c = 0
	}
	table := v.Table[c]
	if len(table) == 0 {
		return x
	}
	scale := v.maxValue()
	if len(table) == 1 {
		return float64(table[0]) / scale
	}
	pos := x * float64(len(table)-1)
	k := min(int(pos), len(table)-2)
	frac := pos - float64(k)
	y0 := float64(table[k]) / scale
	y1 := float64(table[k+1]) / scale
	return y0 + frac*(y1-y0)
}

// IsLinear reports whether all curves are the identity, at the resolution
// of the table.
func (v *VideoCardGamma) IsLinear() bool {
	n := 256
	if v.Table != nil && len(v.Table) > 0 {
		n = len(v.Table[0])
	}
	for k, rgb := range v.Normalized(n) {
		want := float64(k) / float64(max(n-1, 1))
		for _, y := range rgb {
			if math.Round(y*65535) != math.Round(want*65535) {
				return false
			}
		}
	}
	return true
}

// ToTable returns an equivalent table with the given number of entries
// per channel and entry size in bytes.
func (v *VideoCardGamma) ToTable(entries, entrySize int) *VideoCardGamma {
	res := &VideoCardGamma{EntrySize: entrySize, Table: make([][]uint64, 3)}
	scale := res.maxValue()
	for c := range res.Table {
		res.Table[c] = make([]uint64, entries)
	}
	for k, rgb := range v.Normalized(entries) {
		for c, y := range rgb {
			e := math.Round(clamp(y, 0, 1) * scale)
			if e >= math.MaxUint64 {
				res.Table[c][k] = math.MaxUint64
			} else {
				res.Table[c][k] = uint64(e)
			}
		}
	}
	return res
}

// TypeSignature implements the [TagValue] interface.
func (v *VideoCardGamma) TypeSignature() TypeSignature { return TypeVideoCardGamma }

// Encode implements the [TagValue] interface.
func (v *VideoCardGamma) Encode() ([]byte, error) {
	if v.Table == nil {
		buf := newPayload(TypeVideoCardGamma, 48)
		putUint32(buf, 8, vcgtFormula)
		for c, f := range v.Formula {
			pos := 12 + 12*c
			putU16Fixed16(buf, pos, f.Gamma)
			putU16Fixed16(buf, pos+4, f.Min)
			putU16Fixed16(buf, pos+8, f.Max)
		}
		return buf, nil
	}

	size := v.EntrySize
	if size != 1 && size != 2 && size != 4 && size != 8 {
		return nil, fmt.Errorf("invalid vcgt entry size %d", size)
	}
	count := 0
	if len(v.Table) > 0 {
		count = len(v.Table[0])
	}
	for _, ch := range v.Table {
		if len(ch) != count {
			return nil, errors.New("vcgt channels have different lengths")
		}
	}
	buf := newPayload(TypeVideoCardGamma, 18+len(v.Table)*count*size)
	putUint32(buf, 8, vcgtTable)
	putUint16(buf, 12, uint16(len(v.Table)))
	putUint16(buf, 14, uint16(count))
	putUint16(buf, 16, uint16(size))
	pos := 18
	for _, ch := range v.Table {
		for _, e := range ch {
			putVCGTEntry(buf, pos, size, e)
			pos += size
		}
	}
	return buf, nil
}
