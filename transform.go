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

	"seehuhn.de/go/iccedit/colormath"
)

// Transform converts device colours to PCS-relative XYZ values.
//
// Matrix/TRC profiles, gray TRC profiles and profiles with a LUT16 A2B
// table are supported.  The table for the requested rendering intent is
// used if present, otherwise A2B0.
//
// A Transform refers to the tags of the profile it was created from.
// Changes to these tags are reflected in the results.
type Transform struct {
	kind transformKind

	// matrix/TRC profiles
	matrix colormath.Matrix3
	trc    [3]*Curve

	// gray profiles
	gray *Curve

	// LUT profiles
	lut *LUT16
	pcs ColorSpace
}

type transformKind int

const (
	transformMatrixTRC transformKind = iota + 1
	transformGray
	transformLUT
)

var errNoTransform = errors.New("iccedit: no supported device to PCS transform")

// NewTransform returns a transform from the device colour space of p to
// PCS XYZ.
func NewTransform(p *Profile, intent RenderingIntent) (*Transform, error) {
	if lut := p.a2b(intent); lut != nil {
		pcs := p.PCS
		if pcs != PCSLabSpace {
			pcs = PCSXYZSpace
		}
		return &Transform{kind: transformLUT, lut: lut, pcs: pcs}, nil
	}

	if p.Has(RedTRC) && p.Has(GreenTRC) && p.Has(BlueTRC) {
		t := &Transform{kind: transformMatrixTRC}
		var cols [3][3]float64
		for c, sig := range []TagType{RedColorant, GreenColorant, BlueColorant} {
			v, err := p.XYZ(sig)
			if err != nil {
				return nil, err
			}
			cols[c] = v
		}
		t.matrix = colormath.FromColumns(cols[0], cols[1], cols[2])
		for c, sig := range []TagType{RedTRC, GreenTRC, BlueTRC} {
			curve, err := p.curve(sig)
			if err != nil {
				return nil, err
			}
			t.trc[c] = curve
		}
		return t, nil
	}

	if p.Has(GrayTRC) {
		curve, err := p.curve(GrayTRC)
		if err != nil {
			return nil, err
		}
		return &Transform{kind: transformGray, gray: curve}, nil
	}

	return nil, errNoTransform
}

// a2b returns the LUT16 A2B table for the given intent, falling back to
// A2B0.
func (p *Profile) a2b(intent RenderingIntent) *LUT16 {
	sig := AToB0
	switch intent {
	case RelativeColorimetric, AbsoluteColorimetric:
		sig = AToB1
	case Saturation:
		sig = AToB2
	}
	for _, s := range []TagType{sig, AToB0} {
		val, _ := p.Tag(s)
		if lut, ok := val.(*LUT16); ok {
			return lut
		}
	}
	return nil
}

func (p *Profile) curve(sig TagType) (*Curve, error) {
	val, ok := p.Tag(sig)
	if !ok {
		return nil, fmt.Errorf("iccedit: tag %s: %w", sig, ErrMissingTag)
	}
	curve, ok := val.(*Curve)
	if !ok {
		return nil, fmt.Errorf("iccedit: tag %s: %w", sig, errUnexpectedType)
	}
	return curve, nil
}

// ToXYZ converts a device colour, given as values in [0, 1], to XYZ.
func (t *Transform) ToXYZ(device []float64) ([3]float64, error) {
	switch t.kind {
	case transformMatrixTRC:
		if len(device) != 3 {
			return [3]float64{}, fmt.Errorf("iccedit: expected 3 device values, got %d", len(device))
		}
		var rgb [3]float64
		for c := range rgb {
			rgb[c] = t.trc[c].Evaluate(device[c])
		}
		return t.matrix.Apply(rgb), nil

	case transformGray:
		if len(device) != 1 {
			return [3]float64{}, fmt.Errorf("iccedit: expected 1 device value, got %d", len(device))
		}
		y := t.gray.Evaluate(device[0])
		wp := colormath.D50
		return [3]float64{wp[0] * y, wp[1] * y, wp[2] * y}, nil

	case transformLUT:
		if len(device) != t.lut.InputChannels() {
			return [3]float64{}, fmt.Errorf("iccedit: expected %d device values, got %d",
				t.lut.InputChannels(), len(device))
		}
		if t.lut.OutputChannels() != 3 {
			return [3]float64{}, errNoTransform
		}
		out := t.lut.Lookup(device)
		return pcsToXYZ(t.pcs, [3]float64{out[0] * 65535, out[1] * 65535, out[2] * 65535}), nil
	}
	return [3]float64{}, errNoTransform
}

// DeviceBlack returns the XYZ value of the darkest device colour: zero
// for additive colour spaces, and full colorant for CMY and CMYK.
func (p *Profile) DeviceBlack(intent RenderingIntent) ([3]float64, error) {
	t, err := NewTransform(p, intent)
	if err != nil {
		return [3]float64{}, err
	}
	n := p.ColorSpace.NumComponents()
	if t.kind == transformLUT {
		n = t.lut.InputChannels()
	}
	device := make([]float64, n)
	if p.ColorSpace == CMYKSpace || p.ColorSpace == CMYSpace {
		for c := range device {
			device[c] = 1
		}
	}
	return t.ToXYZ(device)
}
