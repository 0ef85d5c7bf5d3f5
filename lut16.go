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
	"image"
	"image/color"
	"slices"
	"sort"

	"seehuhn.de/go/iccedit/colormath"
)

// LUT16 represents a 16-bit lookup table (lut16Type, "mft2").
//
// Processing order: Matrix → Input curves → cLUT → Output curves.
// The matrix is only used for tables with three input channels.
//
// All table values are in the range [0, 65535].  Values are stored as
// float64, so that repeated edits do not accumulate rounding errors;
// they are rounded when the table is encoded.
//
// A LUT16 decoded from a profile keeps the original bytes.  The matrix,
// the curves and the cLUT are decoded on first access, and Encode returns
// the original bytes unchanged if none of them was ever accessed.
// Because of this, even the read-only methods are not safe for
// concurrent use.
type LUT16 struct {
	raw  []byte
	tail []byte // bytes after the output curves, kept on re-encode

	inputChannels  int // i
	outputChannels int // o
	gridPoints     int // g
	inputEntries   int // n
	outputEntries  int // m
	cells          int // g^i

	matrix *colormath.Matrix3
	input  [][]float64
	clut   []float64
	output [][]float64
}

// maxLUT16Channels is the largest number of channels supported by lut16Type.
const maxLUT16Channels = 15

var errLUT16Shape = errors.New("iccedit: invalid lut16 dimensions")

// NewLUT16 allocates a new LUT16 with an identity matrix, identity curves
// and an all-zero cLUT.
func NewLUT16(inputChannels, outputChannels, gridPoints, inputEntries, outputEntries int) (*LUT16, error) {
	cells, ok := lut16Cells(inputChannels, outputChannels, gridPoints)
	if !ok || inputEntries < 2 || inputEntries > 4096 || outputEntries < 2 || outputEntries > 4096 {
		return nil, errLUT16Shape
	}
	m := colormath.Identity
	l := &LUT16{
		inputChannels:  inputChannels,
		outputChannels: outputChannels,
		gridPoints:     gridPoints,
		inputEntries:   inputEntries,
		outputEntries:  outputEntries,
		cells:          cells,
		matrix:         &m,
		clut:           make([]float64, cells*outputChannels),
	}
	l.input = identityCurves(inputChannels, inputEntries)
	l.output = identityCurves(outputChannels, outputEntries)
	return l, nil
}

// lut16Cells returns the number of grid cells, g^i.
func lut16Cells(i, o, g int) (int, bool) {
	if i < 1 || i > maxLUT16Channels || o < 1 || o > maxLUT16Channels || g < 2 || g > 255 {
		return 0, false
	}
	cells := 1
	for range i {
		cells *= g
		if cells > 1<<28 {
			return 0, false
		}
	}
	return cells, true
}

func identityCurves(channels, entries int) [][]float64 {
	res := make([][]float64, channels)
	for c := range res {
		curve := make([]float64, entries)
		for k := range curve {
			curve[k] = float64(k) / float64(entries-1) * 65535
		}
		res[c] = curve
	}
	return res
}

func decodeLUT16(data []byte, _ TagType, _ *Profile) (TagValue, error) {
	err := checkType(data, TypeLUT16)
	if err != nil {
		return nil, err
	}
	if len(data) < 52 {
		return nil, errInvalidTagData
	}

	l := &LUT16{
		inputChannels:  int(data[8]),
		outputChannels: int(data[9]),
		gridPoints:     int(data[10]),
		inputEntries:   int(getUint16(data, 48)),
		outputEntries:  int(getUint16(data, 50)),
	}
	cells, ok := lut16Cells(l.inputChannels, l.outputChannels, l.gridPoints)
	if !ok || l.inputEntries < 2 || l.outputEntries < 2 {
		return nil, errInvalidTagData
	}
	l.cells = cells
	if l.size() > len(data) {
		return nil, errInvalidTagData
	}
	l.raw = slices.Clone(data)
	l.tail = l.raw[l.size():]
	return l, nil
}

// Byte offsets of the four sections, relative to the start of the tag.
func (l *LUT16) inputOffset() int  { return 52 }
func (l *LUT16) clutOffset() int   { return 52 + 2*l.inputEntries*l.inputChannels }
func (l *LUT16) outputOffset() int { return l.clutOffset() + 2*l.cells*l.outputChannels }
func (l *LUT16) size() int         { return l.outputOffset() + 2*l.outputEntries*l.outputChannels }

// InputChannels returns the number of input channels.
func (l *LUT16) InputChannels() int { return l.inputChannels }

// OutputChannels returns the number of output channels.
func (l *LUT16) OutputChannels() int { return l.outputChannels }

// GridPoints returns the number of cLUT grid points per input channel.
func (l *LUT16) GridPoints() int { return l.gridPoints }

// InputEntries returns the number of entries of each input curve.
func (l *LUT16) InputEntries() int { return l.inputEntries }

// OutputEntries returns the number of entries of each output curve.
func (l *LUT16) OutputEntries() int { return l.outputEntries }

// Matrix returns the 3×3 matrix applied before the input curves.
func (l *LUT16) Matrix() colormath.Matrix3 {
	if l.matrix == nil {
		var m colormath.Matrix3
		for k := range 9 {
			m[k/3][k%3] = getS15Fixed16(l.raw, 12+4*k)
		}
		l.matrix = &m
	}
	return *l.matrix
}

// SetMatrix replaces the matrix.
func (l *LUT16) SetMatrix(m colormath.Matrix3) {
	l.matrix = &m
}

// Input returns the input curves.  The returned slices are shared with l,
// so that changes to the curve values are reflected in the table.
func (l *LUT16) Input() [][]float64 {
	if l.input == nil {
		l.input = l.readCurves(l.inputOffset(), l.inputChannels, l.inputEntries)
	}
	return l.input
}

// SetInput replaces the input curves.  There must be one curve per input
// channel, and all curves must have the same length between 2 and 4096.
func (l *LUT16) SetInput(curves [][]float64) error {
	n, err := checkCurves(curves, l.inputChannels)
	if err != nil {
		return err
	}
	l.load()
	l.input = curves
	l.inputEntries = n
	return nil
}

// Output returns the output curves.  The returned slices are shared with
// l, so that changes to the curve values are reflected in the table.
func (l *LUT16) Output() [][]float64 {
	if l.output == nil {
		l.output = l.readCurves(l.outputOffset(), l.outputChannels, l.outputEntries)
	}
	return l.output
}

// SetOutput replaces the output curves.  There must be one curve per
// output channel, and all curves must have the same length between 2 and
// 4096.
func (l *LUT16) SetOutput(curves [][]float64) error {
	m, err := checkCurves(curves, l.outputChannels)
	if err != nil {
		return err
	}
	l.load()
	l.output = curves
	l.outputEntries = m
	return nil
}

func checkCurves(curves [][]float64, channels int) (int, error) {
	if len(curves) != channels {
		return 0, fmt.Errorf("iccedit: expected %d curves, got %d", channels, len(curves))
	}
	n := len(curves[0])
	for _, c := range curves {
		if len(c) != n {
			return 0, errors.New("iccedit: curves have different lengths")
		}
	}
	if n < 2 || n > 4096 {
		return 0, fmt.Errorf("iccedit: invalid number of curve entries %d", n)
	}
	return n, nil
}

func (l *LUT16) readCurves(offset, channels, entries int) [][]float64 {
	res := make([][]float64, channels)
	for c := range res {
		curve := make([]float64, entries)
		for k := range curve {
			curve[k] = float64(getUint16(l.raw, offset+2*(c*entries+k)))
		}
		res[c] = curve
	}
	return res
}

func (l *LUT16) table() []float64 {
	if l.clut == nil {
		base := l.clutOffset()
		l.clut = make([]float64, l.cells*l.outputChannels)
		for k := range l.clut {
			l.clut[k] = float64(getUint16(l.raw, base+2*k))
		}
	}
	return l.clut
}

// load decodes all parts of the table.  This is needed before the layout
// of the raw data can change.
func (l *LUT16) load() {
	l.Matrix()
	l.Input()
	l.table()
	l.Output()
}

// NumRows returns the number of cLUT rows, g^i/g.
func (l *LUT16) NumRows() int {
	return l.cells / l.gridPoints
}

// Rows returns the cLUT as NumRows() rows of GridPoints() cells each.
// Each cell has one value per output channel.
//
// Row x and column y hold the grid cell whose last index is y and whose
// leading indices, read as a number in base g, equal x.
// The returned slices are shared with l.
func (l *LUT16) Rows() [][][]float64 {
	clut := l.table()
	g, o := l.gridPoints, l.outputChannels
	rows := make([][][]float64, l.NumRows())
	for x := range rows {
		row := make([][]float64, g)
		for y := range row {
			k := (x*g + y) * o
			row[y] = clut[k : k+o : k+o]
		}
		rows[x] = row
	}
	return rows
}

// cellIndex returns the position of the first output value for the given
// grid point in the flattened cLUT.
func (l *LUT16) cellIndex(idx []int) int {
	if len(idx) != l.inputChannels {
		panic(fmt.Sprintf("iccedit: %d indices given for a %d-input table", len(idx), l.inputChannels))
	}
	pos := 0
	for _, x := range idx {
		if x < 0 || x >= l.gridPoints {
			panic(fmt.Sprintf("iccedit: cLUT index %d out of range", x))
		}
		pos = pos*l.gridPoints + x
	}
	return pos * l.outputChannels
}

// ClutAt returns a copy of the output values stored at the given grid
// point.  There must be one index per input channel, each in the range
// 0, ..., GridPoints()-1.
func (l *LUT16) ClutAt(idx ...int) []float64 {
	k := l.cellIndex(idx)
	return slices.Clone(l.table()[k : k+l.outputChannels])
}

// SetClutAt sets the output values at the given grid point.
func (l *LUT16) SetClutAt(values []float64, idx ...int) {
	if len(values) != l.outputChannels {
		panic(fmt.Sprintf("iccedit: %d values given for a %d-output table", len(values), l.outputChannels))
	}
	k := l.cellIndex(idx)
	copy(l.table()[k:], values)
}

// Invert replaces each input and output curve by its inverse.
func (l *LUT16) Invert() {
	for _, curves := range [][][]float64{l.Input(), l.Output()} {
		for c, curve := range curves {
			curves[c] = invertTable(curve)
		}
	}
}

// Lookup maps device values in [0, 1] through the table.  The result has
// one value per output channel, also in [0, 1].
func (l *LUT16) Lookup(device []float64) []float64 {
	if len(device) != l.inputChannels {
		return make([]float64, l.outputChannels)
	}

	values := slices.Clone(device)
	if l.inputChannels == 3 {
		m := l.Matrix()
		if m != colormath.Identity {
			v := m.Apply([3]float64(values))
			values = v[:]
		}
	}

	for c, curve := range l.Input() {
		values[c] = sampleCurve(curve, values[c])
	}

	var out []float64
	if l.inputChannels == 3 {
		out = l.tetrahedral(values)
	} else {
		out = l.multilinear(values)
	}

	for c, curve := range l.Output() {
		out[c] = sampleCurve(curve, out[c]/65535)
	}
	return out
}

// sampleCurve evaluates a table curve at x in [0, 1], with linear
// interpolation.  The result is in [0, 1].
func sampleCurve(curve []float64, x float64) float64 {
	n := len(curve)
	pos := clamp(x, 0, 1) * float64(n-1)
	k := min(int(pos), n-2)
	frac := pos - float64(k)
	y := curve[k] + frac*(curve[k+1]-curve[k])
	return clamp(y/65535, 0, 1)
}

// gridPosition splits x in [0, 1] into a grid index and the fractional
// offset towards the next grid point.
func (l *LUT16) gridPosition(x float64) (int, float64) {
	pos := clamp(x, 0, 1) * float64(l.gridPoints-1)
	k := min(int(pos), l.gridPoints-2)
	return k, pos - float64(k)
}

// tetrahedral interpolates a three-input cLUT.
func (l *LUT16) tetrahedral(in []float64) []float64 {
	g, o := l.gridPoints, l.outputChannels
	clut := l.table()

	strides := [3]int{g * g * o, g * o, o}
	base := 0
	var axes [3]struct {
		frac   float64
		stride int
	}
	for d := range 3 {
		k, frac := l.gridPosition(in[d])
		base += k * strides[d]
		axes[d].frac = frac
		axes[d].stride = strides[d]
	}

	// Walk from the base corner to the opposite corner, moving along the
	// axis with the largest fraction first.
	sort.SliceStable(axes[:], func(a, b int) bool {
		return axes[a].frac > axes[b].frac
	})
	out := make([]float64, o)
	prev := 1.0
	pos := base
	for d := range 3 {
		w := prev - axes[d].frac
		for c := range o {
			out[c] += w * clut[pos+c]
		}
		prev = axes[d].frac
		pos += axes[d].stride
	}
	for c := range o {
		out[c] += prev * clut[pos+c]
	}
	return out
}

// multilinear interpolates a cLUT with any number of inputs.
func (l *LUT16) multilinear(in []float64) []float64 {
	nDims := l.inputChannels
	g, o := l.gridPoints, l.outputChannels
	clut := l.table()

	strides := make([]int, nDims)
	stride := o
	for d := nDims - 1; d >= 0; d-- {
		strides[d] = stride
		stride *= g
	}

	base := 0
	fracs := make([]float64, nDims)
	for d := range nDims {
		k, frac := l.gridPosition(in[d])
		base += k * strides[d]
		fracs[d] = frac
	}

	out := make([]float64, o)
	for corner := range 1 << nDims {
		pos := base
		weight := 1.0
		for d := range nDims {
			if corner&(1<<d) != 0 {
				pos += strides[d]
				weight *= fracs[d]
			} else {
				weight *= 1 - fracs[d]
			}
		}
		if weight == 0 {
			continue
		}
		for c := range o {
			out[c] += weight * clut[pos+c]
		}
	}
	return out
}

// ClutImage returns the cLUT as an image with one pixel per grid cell.
// Pixel (y, x) holds the cell in column y of row x, see [LUT16.Rows].
// This requires a table with three output channels.
func (l *LUT16) ClutImage() (*image.NRGBA64, error) {
	if l.outputChannels != 3 {
		return nil, fmt.Errorf("iccedit: cLUT image needs 3 output channels, not %d", l.outputChannels)
	}
	rows := l.Rows()
	img := image.NewNRGBA64(image.Rect(0, 0, l.gridPoints, len(rows)))
	for x, row := range rows {
		for y, cell := range row {
			img.SetNRGBA64(y, x, color.NRGBA64{
				R: uint16(roundInt(clamp(cell[0], 0, 65535))),
				G: uint16(roundInt(clamp(cell[1], 0, 65535))),
				B: uint16(roundInt(clamp(cell[2], 0, 65535))),
				A: 0xFFFF,
			})
		}
	}
	return img, nil
}

// TypeSignature implements the [TagValue] interface.
func (l *LUT16) TypeSignature() TypeSignature { return TypeLUT16 }

func (l *LUT16) modified() bool {
	return l.raw == nil || l.matrix != nil || l.input != nil || l.clut != nil || l.output != nil
}

// Encode implements the [TagValue] interface.
func (l *LUT16) Encode() ([]byte, error) {
	if !l.modified() {
		return l.raw, nil
	}

	// Parts which were never decoded are copied from the original data.
	// SetInput and SetOutput decode everything before the layout changes.
	size := l.size()
	buf := make([]byte, size+len(l.tail))
	copy(buf, l.raw)
	copy(buf[size:], l.tail)

	putUint32(buf, 0, uint32(TypeLUT16))
	putUint32(buf, 4, 0)
	buf[8] = byte(l.inputChannels)
	buf[9] = byte(l.outputChannels)
	buf[10] = byte(l.gridPoints)
	buf[11] = 0
	putUint16(buf, 48, uint16(l.inputEntries))
	putUint16(buf, 50, uint16(l.outputEntries))

	if l.matrix != nil {
		for k := range 9 {
			putS15Fixed16(buf, 12+4*k, l.matrix[k/3][k%3])
		}
	}
	if l.input != nil {
		putCurves(buf, l.inputOffset(), l.input)
	}
	if l.clut != nil {
		base := l.clutOffset()
		for k, v := range l.clut {
			putRoundUint16(buf, base+2*k, clamp(v, 0, 65535))
		}
	}
	if l.output != nil {
		putCurves(buf, l.outputOffset(), l.output)
	}
	return buf, nil
}

func putCurves(buf []byte, offset int, curves [][]float64) {
	for _, curve := range curves {
		for _, v := range curve {
			putRoundUint16(buf, offset, clamp(v, 0, 65535))
			offset += 2
		}
	}
}
