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
	"errors"
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// NamedColor2 is the value of a namedColor2Type tag: a list of named
// colours with PCS and optional device coordinates.
type NamedColor2 struct {
	VendorFlags uint32

	// Prefix and Suffix are added to each colour's root name to form the
	// full colour name.
	Prefix string
	Suffix string

	// DeviceChannels is the number of device coordinates of each colour.
	DeviceChannels int

	Colors []NamedColor
}

// NamedColor is a single entry of a [NamedColor2] table.
type NamedColor struct {
	Name string

	// PCS holds the encoded PCS coordinates, in the same format as
	// [Colorant.PCS].
	PCS [3]uint16

	// Device holds the device coordinates, scaled to 0..65535.
	Device []uint16
}

// Values returns the PCS coordinates of the colour, as CIELAB values or as
// XYZ values scaled to 100 for a white Y.
func (c NamedColor) Values(pcs ColorSpace) ([3]float64, error) {
	return Colorant{Name: c.Name, PCS: c.PCS}.Values(pcs)
}

// maxNamedColorChannels is the maximal number of device coordinates.
const maxNamedColorChannels = 15

var latin1 = charmap.ISO8859_1

func decodeNamedColor2(data []byte, _ TagType, _ *Profile) (TagValue, error) {
	err := checkType(data, TypeNamedColor2)
	if err != nil {
		return nil, err
	}
	if len(data) < 84 {
		return nil, errInvalidTagData
	}
	count := uint64(getUint32(data, 12))
	channels := uint64(getUint32(data, 16))
	if channels > maxNamedColorChannels {
		return nil, errInvalidTagData
	}
	stride := 38 + 2*channels
	if 84+stride*count > uint64(len(data)) {
		return nil, errInvalidTagData
	}

	n := &NamedColor2{
		VendorFlags:    getUint32(data, 8),
		Prefix:         decodeName(data[20:52]),
		Suffix:         decodeName(data[52:84]),
		DeviceChannels: int(channels),
		Colors:         make([]NamedColor, count),
	}
	for i := range n.Colors {
		pos := 84 + i*int(stride)
		c := &n.Colors[i]
		c.Name = decodeName(data[pos : pos+32])
		for j := range c.PCS {
			c.PCS[j] = getUint16(data, pos+32+2*j)
		}
		if channels > 0 {
			c.Device = make([]uint16, channels)
			for j := range c.Device {
				c.Device[j] = getUint16(data, pos+38+2*j)
			}
		}
	}
	return n, nil
}

// decodeName decodes a NUL-terminated Latin-1 string.
func decodeName(b []byte) string {
	if k := bytes.IndexByte(b, 0); k >= 0 {
		b = b[:k]
	}
	s, _ := latin1.NewDecoder().Bytes(b)
	return string(s)
}

func encodeName(dst []byte, name string) error {
	b, err := encoding.ReplaceUnsupported(latin1.NewEncoder()).Bytes([]byte(name))
	if err != nil {
		return err
	}
	if len(b) >= len(dst) {
		return fmt.Errorf("name %q is too long", name)
	}
	copy(dst, b)
	return nil
}

// Get returns the colour with the given root name.
func (n *NamedColor2) Get(name string) (NamedColor, bool) {
	for _, c := range n.Colors {
		if c.Name == name {
			return c, true
		}
	}
	return NamedColor{}, false
}

var errDuplicateColor = errors.New("iccedit: duplicate colour name")

// Add appends a colour to the table.  The name must be new and the number
// of device coordinates must match n.DeviceChannels.
func (n *NamedColor2) Add(c NamedColor) error {
	if _, exists := n.Get(c.Name); exists {
		return fmt.Errorf("%w %q", errDuplicateColor, c.Name)
	}
	if len(c.Device) != n.DeviceChannels {
		return fmt.Errorf("iccedit: colour %q has %d device coordinates, expected %d",
			c.Name, len(c.Device), n.DeviceChannels)
	}
	n.Colors = append(n.Colors, c)
	return nil
}

// TypeSignature implements the [TagValue] interface.
func (n *NamedColor2) TypeSignature() TypeSignature { return TypeNamedColor2 }

// Encode implements the [TagValue] interface.
func (n *NamedColor2) Encode() ([]byte, error) {
	if n.DeviceChannels < 0 || n.DeviceChannels > maxNamedColorChannels {
		return nil, fmt.Errorf("iccedit: invalid number of device coordinates %d", n.DeviceChannels)
	}
	stride := 38 + 2*n.DeviceChannels
	buf := newPayload(TypeNamedColor2, 84+stride*len(n.Colors))
	putUint32(buf, 8, n.VendorFlags)
	putUint32(buf, 12, uint32(len(n.Colors)))
	putUint32(buf, 16, uint32(n.DeviceChannels))
	if err := encodeName(buf[20:52], n.Prefix); err != nil {
		return nil, fmt.Errorf("iccedit: prefix: %w", err)
	}
	if err := encodeName(buf[52:84], n.Suffix); err != nil {
		return nil, fmt.Errorf("iccedit: suffix: %w", err)
	}
	for i, c := range n.Colors {
		pos := 84 + i*stride
		if err := encodeName(buf[pos:pos+32], c.Name); err != nil {
			return nil, fmt.Errorf("iccedit: colour %d: %w", i, err)
		}
		for j, v := range c.PCS {
			putUint16(buf, pos+32+2*j, v)
		}
		if len(c.Device) != n.DeviceChannels {
			return nil, fmt.Errorf("iccedit: colour %q has %d device coordinates, expected %d",
				c.Name, len(c.Device), n.DeviceChannels)
		}
		for j, v := range c.Device {
			putUint16(buf, pos+38+2*j, v)
		}
	}
	return buf, nil
}

// EncodePCSValues converts CIELAB values or XYZ values scaled to 100 into
// the encoded form used by [Colorant.PCS] and [NamedColor.PCS].  It is the
// inverse of [Colorant.Values].
func EncodePCSValues(values [3]float64, pcs ColorSpace) ([3]uint16, error) {
	var res [3]uint16
	var scaled [3]float64
	switch pcs {
	case CIELabSpace, RGBSpace, CMYKSpace, YCbCrSpace:
		scaled[0] = values[0] / 100 * 255 / 256 * 65536
		scaled[1] = (values[1] + 128) / 256 * 65536
		scaled[2] = (values[2] + 128) / 256 * 65536
	case CIEXYZSpace:
		for i, v := range values {
			scaled[i] = v / 100 * 32768
		}
	default:
		return res, &UnsupportedPCSError{Op: "colorant values", PCS: pcs}
	}
	for i, v := range scaled {
		res[i] = uint16(roundInt(clamp(v, 0, 65535)))
	}
	return res, nil
}
