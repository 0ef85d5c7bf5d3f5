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

import "fmt"

// StandardObserver identifies the CIE standard observer of a measurement.
type StandardObserver uint32

// Standard observers.
const (
	ObserverUnknown StandardObserver = 0
	Observer1931    StandardObserver = 1 // CIE 1931 2°
	Observer1964    StandardObserver = 2 // CIE 1964 10°
)

func (o StandardObserver) String() string {
	switch o {
	case ObserverUnknown:
		return "unknown"
	case Observer1931:
		return "CIE 1931"
	case Observer1964:
		return "CIE 1964"
	}
	return fmt.Sprintf("StandardObserver(%d)", uint32(o))
}

// MeasurementGeometry describes the measurement geometry.
type MeasurementGeometry uint32

// Measurement geometries.
const (
	GeometryUnknown     MeasurementGeometry = 0
	GeometryDirectional MeasurementGeometry = 1 // 0/45 or 45/0
	GeometryDiffuse     MeasurementGeometry = 2 // 0/d or d/0
)

func (g MeasurementGeometry) String() string {
	switch g {
	case GeometryUnknown:
		return "unknown"
	case GeometryDirectional:
		return "0/45 or 45/0"
	case GeometryDiffuse:
		return "0/d or d/0"
	}
	return fmt.Sprintf("MeasurementGeometry(%d)", uint32(g))
}

// StandardIlluminant identifies the illuminant of a measurement or of the
// viewing conditions.
type StandardIlluminant uint32

// Standard illuminants.
const (
	IlluminantUnknown StandardIlluminant = iota
	IlluminantD50
	IlluminantD65
	IlluminantD93
	IlluminantF2
	IlluminantD55
	IlluminantA
	IlluminantE
	IlluminantF8
)

var illuminantNames = []string{"unknown", "D50", "D65", "D93", "F2", "D55", "A", "E", "F8"}

func (i StandardIlluminant) String() string {
	if int(i) < len(illuminantNames) {
		return illuminantNames[i]
	}
	return fmt.Sprintf("StandardIlluminant(%d)", uint32(i))
}

// Measurement is the value of a measurementType tag, describing how the
// data used to build the profile was measured.
type Measurement struct {
	Observer StandardObserver

	// Backing is the absolute XYZ value of the measurement backing.
	Backing [3]float64

	Geometry MeasurementGeometry

	// Flare is the measurement flare, in the range 0 to 1.
	Flare float64

	Illuminant StandardIlluminant
}

func decodeMeasurement(data []byte, _ TagType, _ *Profile) (TagValue, error) {
	err := checkType(data, TypeMeasurement)
	if err != nil {
		return nil, err
	}
	if len(data) < 36 {
		return nil, errInvalidTagData
	}
	m := &Measurement{
		Observer:   StandardObserver(getUint32(data, 8)),
		Geometry:   MeasurementGeometry(getUint32(data, 24)),
		Flare:      getU16Fixed16(data, 28),
		Illuminant: StandardIlluminant(getUint32(data, 32)),
	}
	for i := range m.Backing {
		m.Backing[i] = getS15Fixed16(data, 12+4*i)
	}
	return m, nil
}

// TypeSignature implements the [TagValue] interface.
func (m *Measurement) TypeSignature() TypeSignature { return TypeMeasurement }

// Encode implements the [TagValue] interface.
func (m *Measurement) Encode() ([]byte, error) {
	buf := newPayload(TypeMeasurement, 36)
	putUint32(buf, 8, uint32(m.Observer))
	for i, v := range m.Backing {
		putS15Fixed16(buf, 12+4*i, v)
	}
	putUint32(buf, 24, uint32(m.Geometry))
	putU16Fixed16(buf, 28, m.Flare)
	putUint32(buf, 32, uint32(m.Illuminant))
	return buf, nil
}

// ViewingConditions is the value of a viewingConditionsType tag.
// Illuminant and Surround are absolute XYZ values in cd/m².
type ViewingConditions struct {
	Illuminant     [3]float64
	Surround       [3]float64
	IlluminantType StandardIlluminant
}

func decodeViewingConditions(data []byte, _ TagType, _ *Profile) (TagValue, error) {
	err := checkType(data, TypeViewingConditions)
	if err != nil {
		return nil, err
	}
	if len(data) < 36 {
		return nil, errInvalidTagData
	}
	v := &ViewingConditions{
		IlluminantType: StandardIlluminant(getUint32(data, 32)),
	}
	for i := range 3 {
		v.Illuminant[i] = getS15Fixed16(data, 8+4*i)
		v.Surround[i] = getS15Fixed16(data, 20+4*i)
	}
	return v, nil
}

// TypeSignature implements the [TagValue] interface.
func (v *ViewingConditions) TypeSignature() TypeSignature { return TypeViewingConditions }

// Encode implements the [TagValue] interface.
func (v *ViewingConditions) Encode() ([]byte, error) {
	buf := newPayload(TypeViewingConditions, 36)
	for i := range 3 {
		putS15Fixed16(buf, 8+4*i, v.Illuminant[i])
		putS15Fixed16(buf, 20+4*i, v.Surround[i])
	}
	putUint32(buf, 32, uint32(v.IlluminantType))
	return buf, nil
}
