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
	"bytes"
	"fmt"
	"math"

	"seehuhn.de/go/iccedit/colormath"
)

// XYZType is the value of an XYZType tag.  Most tags of this type, for
// example the media white point, hold exactly one triplet.
type XYZType [][3]float64

func decodeXYZType(data []byte, _ TagType, _ *Profile) (TagValue, error) {
	err := checkType(data, TypeXYZ)
	if err != nil {
		return nil, err
	}
	n := (len(data) - 8) / 12
	if n == 0 {
		return nil, errInvalidTagData
	}
	res := make(XYZType, n)
	for i := range res {
		for j := range 3 {
			res[i][j] = getS15Fixed16(data, 8+12*i+4*j)
		}
	}
	return res, nil
}

// TypeSignature implements the [TagValue] interface.
func (x XYZType) TypeSignature() TypeSignature { return TypeXYZ }

// Encode implements the [TagValue] interface.
func (x XYZType) Encode() ([]byte, error) {
	buf := newPayload(TypeXYZ, 8+12*len(x))
	for i, v := range x {
		for j := range 3 {
			putS15Fixed16(buf, 8+12*i+4*j, v[j])
		}
	}
	return buf, nil
}

// S15Fixed16Array is the value of an s15Fixed16ArrayType tag.
type S15Fixed16Array []float64

func decodeS15Fixed16Array(data []byte, _ TagType, _ *Profile) (TagValue, error) {
	err := checkType(data, TypeS15Fixed16Array)
	if err != nil {
		return nil, err
	}
	res := make(S15Fixed16Array, (len(data)-8)/4)
	for i := range res {
		res[i] = getS15Fixed16(data, 8+4*i)
	}
	return res, nil
}

// TypeSignature implements the [TagValue] interface.
func (a S15Fixed16Array) TypeSignature() TypeSignature { return TypeS15Fixed16Array }

// Encode implements the [TagValue] interface.
func (a S15Fixed16Array) Encode() ([]byte, error) {
	buf := newPayload(TypeS15Fixed16Array, 8+4*len(a))
	for i, v := range a {
		putS15Fixed16(buf, 8+4*i, v)
	}
	return buf, nil
}

// ChromaticAdaptation is the 3x3 matrix stored in the "chad" and "arts"
// tags.
type ChromaticAdaptation struct {
	colormath.Matrix3
}

func decodeChromaticAdaptation(data []byte, _ TagType, _ *Profile) (TagValue, error) {
	err := checkType(data, TypeS15Fixed16Array)
	if err != nil {
		return nil, err
	}
	if len(data) < 8+9*4 {
		return nil, errInvalidTagData
	}
	var m colormath.Matrix3
	for i := range 3 {
		for j := range 3 {
			m[i][j] = getS15Fixed16(data, 8+12*i+4*j)
		}
	}
	return &ChromaticAdaptation{m}, nil
}

// TypeSignature implements the [TagValue] interface.
func (c *ChromaticAdaptation) TypeSignature() TypeSignature { return TypeS15Fixed16Array }

// Encode implements the [TagValue] interface.
func (c *ChromaticAdaptation) Encode() ([]byte, error) {
	buf := newPayload(TypeS15Fixed16Array, 8+9*4)
	for i := range 3 {
		for j := range 3 {
			putS15Fixed16(buf, 8+12*i+4*j, c.Matrix3[i][j])
		}
	}
	return buf, nil
}

// GuessCAT compares the matrix to the cone response matrices of the known
// chromatic adaptation transforms and returns the name of the first match.
// The comparison takes the limited precision of the file format into
// account.
func (c *ChromaticAdaptation) GuessCAT() (string, bool) {
	return colormath.MatchCAT(c.Matrix3, quantizeS15Fixed16, 4)
}

func quantizeS15Fixed16(x float64) float64 {
	return float64(int32(roundInt(x*65536))) / 65536
}

// Chromaticity is the value of a chromaticityType tag.
type Chromaticity struct {
	// Colorant identifies a standard set of phosphors or colorants, or is
	// zero if the values are given in Channels only.
	Colorant uint16

	// Channels holds the CIE xy coordinates of each device channel.
	Channels [][2]float64
}

func decodeChromaticity(data []byte, _ TagType, _ *Profile) (TagValue, error) {
	err := checkType(data, TypeChromaticity)
	if err != nil {
		return nil, err
	}
	if len(data) < 12 {
		return nil, errInvalidTagData
	}
	n := int(getUint16(data, 8))
	if len(data) < 12+8*n {
		return nil, errInvalidTagData
	}
	c := &Chromaticity{
		Colorant: getUint16(data, 10),
		Channels: make([][2]float64, n),
	}
	for i := range c.Channels {
		c.Channels[i][0] = getU16Fixed16(data, 12+8*i)
		c.Channels[i][1] = getU16Fixed16(data, 12+8*i+4)
	}
	return c, nil
}

// TypeSignature implements the [TagValue] interface.
func (c *Chromaticity) TypeSignature() TypeSignature { return TypeChromaticity }

// Encode implements the [TagValue] interface.
func (c *Chromaticity) Encode() ([]byte, error) {
	buf := newPayload(TypeChromaticity, 12+8*len(c.Channels))
	putUint16(buf, 8, uint16(len(c.Channels)))
	putUint16(buf, 10, c.Colorant)
	for i, xy := range c.Channels {
		putU16Fixed16(buf, 12+8*i, xy[0])
		putU16Fixed16(buf, 12+8*i+4, xy[1])
	}
	return buf, nil
}

// ColorantTable is the value of a colorantTableType tag.
type ColorantTable []Colorant

// Colorant is a single entry of a [ColorantTable].
type Colorant struct {
	Name string

	// PCS holds the encoded PCS coordinates of the colorant.
	PCS [3]uint16
}

// Values returns the PCS coordinates of the colorant, as CIELAB values
// or as XYZ values scaled to 100 for a white Y.
func (c Colorant) Values(pcs ColorSpace) ([3]float64, error) {
	var res [3]float64
	switch pcs {
	case CIELabSpace, RGBSpace, CMYKSpace, YCbCrSpace:
		res[0] = float64(c.PCS[0]) / 65536 * 256 / 255 * 100
		res[1] = -128 + float64(c.PCS[1])/65536*256
		res[2] = -128 + float64(c.PCS[2])/65536*256
	case CIEXYZSpace:
		for i, v := range c.PCS {
			res[i] = float64(v) / 32768 * 100
		}
	default:
		return res, &UnsupportedPCSError{Op: "colorant values", PCS: pcs}
	}
	return res, nil
}

func decodeColorantTable(data []byte, _ TagType, _ *Profile) (TagValue, error) {
	err := checkType(data, TypeColorantTable)
	if err != nil {
		return nil, err
	}
	if len(data) < 12 {
		return nil, errInvalidTagData
	}
	n := uint64(getUint32(data, 8))
	if uint64(len(data)) < 12+38*n {
		return nil, errInvalidTagData
	}
	res := make(ColorantTable, n)
	for i := range res {
		pos := 12 + 38*i
		name := data[pos : pos+32]
		if k := bytes.IndexByte(name, 0); k >= 0 {
			name = name[:k]
		}
		res[i].Name = string(name)
		for j := range 3 {
			res[i].PCS[j] = getUint16(data, pos+32+2*j)
		}
	}
	return res, nil
}

// TypeSignature implements the [TagValue] interface.
func (t ColorantTable) TypeSignature() TypeSignature { return TypeColorantTable }

// Encode implements the [TagValue] interface.
func (t ColorantTable) Encode() ([]byte, error) {
	buf := newPayload(TypeColorantTable, 12+38*len(t))
	putUint32(buf, 8, uint32(len(t)))
	for i, c := range t {
		pos := 12 + 38*i
		if len(c.Name) > 31 {
			return nil, fmt.Errorf("colorant name %q is too long", c.Name)
		}
		copy(buf[pos:pos+32], c.Name)
		for j, v := range c.PCS {
			putUint16(buf, pos+32+2*j, v)
		}
	}
	return buf, nil
}

// XYZ returns the first triplet of the XYZType tag sig.
func (p *Profile) XYZ(sig TagType) ([3]float64, error) {
	val, ok := p.Tag(sig)
	if !ok {
		return [3]float64{}, fmt.Errorf("iccedit: tag %s: %w", sig, ErrMissingTag)
	}
	x, ok := val.(XYZType)
	if !ok || len(x) == 0 {
		return [3]float64{}, fmt.Errorf("iccedit: tag %s: %w", sig, errUnexpectedType)
	}
	return x[0], nil
}

func (p *Profile) chadMatrix() (colormath.Matrix3, bool) {
	val, _ := p.Tag(ChromaticAdaption)
	c, ok := val.(*ChromaticAdaptation)
	if !ok {
		return colormath.Matrix3{}, false
	}
	return c.Matrix3, true
}

func (p *Profile) artsMatrix() (colormath.Matrix3, bool) {
	val, _ := p.Tag(AdaptationTransform)
	c, ok := val.(*ChromaticAdaptation)
	if !ok {
		return colormath.Matrix3{}, false
	}
	return c.Matrix3, true
}

func (p *Profile) illuminant() [3]float64 {
	if p.Illuminant == [3]float64{} {
		return colormath.D50
	}
	return p.Illuminant
}

// sameTag reports whether a and b refer to the same tag value.
func (p *Profile) sameTag(a, b TagType) bool {
	sa, ok := p.tags[a]
	return ok && sa == p.tags[b]
}

// IlluminantRelativeXYZ returns the value of the XYZType tag sig, relative
// to the actual illuminant of the device rather than to the PCS
// illuminant.
//
// If the profile has a "chad" tag, its inverse is used for the conversion.
// Apple profiles with a "chad" tag store the media white point under the
// actual illuminant and are treated like profiles without "chad" tag.
func (p *Profile) IlluminantRelativeXYZ(sig TagType) ([3]float64, error) {
	xyz, err := p.XYZ(sig)
	if err != nil {
		return xyz, err
	}
	pcsWhite := p.illuminant()
	chad, hasChad := p.chadMatrix()
	isWhite := p.sameTag(sig, MediaWhitePoint)

	if hasChad && p.Creator != creatorApple {
		inv, err := chad.Inverse()
		if err != nil {
			return xyz, err
		}
		if !isWhite {
			wtpt, err := p.XYZ(MediaWhitePoint)
			if err != nil {
				return xyz, err
			}
			cat, ok := p.artsMatrix()
			if !ok {
				cat, _ = colormath.CAT("XYZ scaling")
			}
			xyz, err = colormath.Adapt(xyz, pcsWhite, wtpt, cat)
			if err != nil {
				return xyz, err
			}
		}
		return inv.Apply(xyz), nil
	}

	if isWhite || p.sameTag(sig, MediaBlackPoint) {
		return xyz, nil
	}
	if hasChad {
		inv, err := chad.Inverse()
		if err != nil {
			return xyz, err
		}
		return inv.Apply(xyz), nil
	}
	wtpt, err := p.XYZ(MediaWhitePoint)
	if err != nil {
		return xyz, err
	}
	return colormath.Adapt(xyz, pcsWhite, wtpt, p.defaultCAT())
}

// PCSRelativeXYZ returns the value of the XYZType tag sig, relative to the
// PCS illuminant.  Only the media white and black points of profiles
// without "chad" tag (or of Apple profiles) need to be converted.
func (p *Profile) PCSRelativeXYZ(sig TagType) ([3]float64, error) {
	xyz, err := p.XYZ(sig)
	if err != nil {
		return xyz, err
	}
	chad, hasChad := p.chadMatrix()
	isPoint := p.sameTag(sig, MediaWhitePoint) || p.sameTag(sig, MediaBlackPoint)
	if !isPoint || (hasChad && p.Creator != creatorApple) {
		return xyz, nil
	}
	if hasChad {
		return chad.Apply(xyz), nil
	}
	wtpt, err := p.XYZ(MediaWhitePoint)
	if err != nil {
		return xyz, err
	}
	return colormath.Adapt(xyz, wtpt, p.illuminant(), p.defaultCAT())
}

// defaultCAT returns the "arts" matrix if present, and the Bradford matrix
// otherwise.
func (p *Profile) defaultCAT() colormath.Matrix3 {
	if cat, ok := p.artsMatrix(); ok {
		return cat
	}
	return colormath.Bradford()
}

// GuessCAT determines the chromatic adaptation transform used by the
// profile.
//
// If the profile has a "chad" tag, the transform is guessed from the
// matrix, and name is the name of the matching transform.  Otherwise, the
// "arts" tag is used; if it does not match any known transform, the
// matrix from the tag is returned with an empty name.
func (p *Profile) GuessCAT() (cat colormath.Matrix3, name string, ok bool) {
	if chad, hasChad := p.chadMatrix(); hasChad {
		inv, err := chad.Inverse()
		if err != nil {
			return cat, "", false
		}
		illum := p.illuminant()
		name, ok = colormath.GuessCAT(chad, inv.Apply(illum), illum)
		if !ok {
			return cat, "", false
		}
		cat, _ = colormath.CAT(name)
		return cat, name, true
	}

	val, _ := p.Tag(AdaptationTransform)
	if arts, isArts := val.(*ChromaticAdaptation); isArts {
		if name, ok := arts.GuessCAT(); ok {
			cat, _ = colormath.CAT(name)
			return cat, name, true
		}
		return arts.Matrix3, "", true
	}
	return cat, "", false
}

// SetBlackpoint sets the media black point tag.  The black point xyz is
// given relative to the PCS illuminant.  For profiles without "chad" tag,
// the value is adapted to the media white point before it is stored.
func (p *Profile) SetBlackpoint(xyz [3]float64) error {
	bkpt, err := p.mediaBlackpoint(xyz)
	if err != nil {
		return err
	}
	p.SetTag(MediaBlackPoint, XYZType{bkpt})
	return nil
}

// mediaBlackpoint returns the "bkpt" tag value for the PCS-relative black
// point xyz.
func (p *Profile) mediaBlackpoint(xyz [3]float64) ([3]float64, error) {
	if _, hasChad := p.chadMatrix(); hasChad {
		return xyz, nil
	}
	cat, _, ok := p.GuessCAT()
	if !ok {
		cat = colormath.Bradford()
	}
	wtpt, err := p.IlluminantRelativeXYZ(MediaWhitePoint)
	if err != nil {
		return xyz, err
	}
	return colormath.Adapt(xyz, colormath.D50, wtpt, cat)
}

// WhiteLuminance returns the Y value of the "lumi" tag in cd/m², or NaN if
// the tag is missing.
func (p *Profile) WhiteLuminance() float64 {
	xyz, err := p.XYZ(Luminance)
	if err != nil {
		return math.NaN()
	}
	return xyz[1]
}
