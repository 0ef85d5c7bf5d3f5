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

// Package iccedit reads, modifies and writes ICC colour profiles.
//
// ICC profiles describe how to convert colours between device colour spaces
// (such as RGB or CMYK) and a device-independent Profile Connection Space
// (PCS).  The PCS is either CIEXYZ or CIELAB, both based on the D50
// illuminant.
//
// # Reading and Writing Profiles
//
// Use [Decode] or [Open] to read a profile, and [Profile.Encode] to convert
// a profile back to binary form.  Tags are decoded on first access:
//
//	p, err := iccedit.Open("display.icc")
//	if err != nil {
//	    // handle error
//	}
//	desc, _ := p.Tag(iccedit.ProfileDescription)
//	for _, w := range p.Warnings {
//	    // problems found in individual tags
//	}
//	data, err := p.Encode()
//
// # Editing lookup tables
//
// Tags of type lut16Type decode to [*LUT16].  The colour lookup table can be
// read and modified cell by cell, and the black point of the table can be
// changed using [LUT16.ApplyBlackOffset] and [LUT16.ApplyBPC]:
//
//	a2b, _ := p.Tag(iccedit.AToB0)
//	if lut, ok := a2b.(*iccedit.LUT16); ok {
//	    err = lut.ApplyBlackOffset(ctx, [3]float64{0.002, 0.0021, 0.0017}, nil)
//	}
package iccedit

import (
	"fmt"
	"runtime"
	"time"

	"seehuhn.de/go/iccedit/colormath"
)

// Profile represents an ICC colour profile.
//
// The header fields are exported directly.  Tags are accessed using
// [Profile.Tag] and [Profile.SetTag].
//
// A Profile is not safe for concurrent use.
type Profile struct {
	PreferredCMMType   uint32
	Version            Version
	Class              ProfileClass
	ColorSpace         ColorSpace // device colour space (e.g. RGBSpace, CMYKSpace)
	PCS                ColorSpace // Profile Connection Space (PCSXYZSpace or PCSLabSpace)
	CreationDate       DateTimeNumber
	PrimaryPlatform    uint32
	Flags              uint32
	DeviceManufacturer uint32
	DeviceModel        uint32
	DeviceAttributes   uint64
	RenderingIntent    RenderingIntent
	Illuminant         [3]float64
	Creator            uint32

	// ID is the profile ID (bytes 84 to 99 of the header).
	ID [16]byte

	// Reserved holds header bytes 100 to 127, which are preserved when a
	// profile is re-encoded.
	Reserved [28]byte

	// CheckSum indicates whether the profile's embedded checksum is valid.
	// This is only meaningful for profiles read using Decode.
	CheckSum CheckSum

	// Warnings lists the problems found while reading the profile and
	// decoding its tags.  Errors in individual tags do not prevent the
	// remaining tags from being used.
	Warnings []error

	tagOrder []TagType
	tags     map[TagType]*slot
}

// New returns an empty profile with default header values.
func New() *Profile {
	p := &Profile{
		Version:      Version2_4_0,
		Class:        DisplayDeviceProfile,
		ColorSpace:   RGBSpace,
		PCS:          PCSXYZSpace,
		CreationDate: NewDateTimeNumber(time.Now()),
		Illuminant:   colormath.D50,
		tags:         make(map[TagType]*slot),
	}
	switch runtime.GOOS {
	case "darwin":
		p.PrimaryPlatform = PlatformApple
	case "windows":
		p.PrimaryPlatform = PlatformMicrosoft
	}
	return p
}

// Primary platforms.
const (
	PlatformApple     uint32 = 0x4150504C // "APPL"
	PlatformMicrosoft uint32 = 0x4D534654 // "MSFT"

	creatorApple uint32 = 0x6170706C // "appl"
)

// Bits of the profile flags.
const (
	FlagEmbedded       uint32 = 1 << 0
	FlagNotIndependent uint32 = 1 << 1
)

// Embedded reports whether the profile is marked as embedded in a file.
func (p *Profile) Embedded() bool { return p.Flags&FlagEmbedded != 0 }

// Independent reports whether the profile may be used independently of the
// embedded colour data.
func (p *Profile) Independent() bool { return p.Flags&FlagNotIndependent == 0 }

// Device attribute bits.  On the wire, each bit is set when the attribute
// does not apply.
const (
	attrTransparency uint64 = 1 << 0
	attrMatte        uint64 = 1 << 1
	attrNegative     uint64 = 1 << 2
	attrBlackWhite   uint64 = 1 << 3
)

// Reflective reports whether the device medium is reflective (rather than
// transparent).
func (p *Profile) Reflective() bool { return p.DeviceAttributes&attrTransparency == 0 }

// Glossy reports whether the device medium is glossy (rather than matte).
func (p *Profile) Glossy() bool { return p.DeviceAttributes&attrMatte == 0 }

// Positive reports whether the device medium has positive polarity.
func (p *Profile) Positive() bool { return p.DeviceAttributes&attrNegative == 0 }

// Color reports whether the device medium is colour (rather than black and
// white).
func (p *Profile) Color() bool { return p.DeviceAttributes&attrBlackWhite == 0 }

// SetDeviceAttributes sets the four standard device attribute bits.
func (p *Profile) SetDeviceAttributes(reflective, glossy, positive, color bool) {
	attr := p.DeviceAttributes &^ (attrTransparency | attrMatte | attrNegative | attrBlackWhite)
	if !reflective {
		attr |= attrTransparency
	}
	if !glossy {
		attr |= attrMatte
	}
	if !positive {
		attr |= attrNegative
	}
	if !color {
		attr |= attrBlackWhite
	}
	p.DeviceAttributes = attr
}

// Version is a version of the ICC profile format.
//
// The major version is stored in the most significant byte, followed by a
// byte holding the minor version and the bug-fix level.
type Version uint32

// Some well-known versions of the ICC profile format.
const (
	Version2_1_0 Version = 0x0210_0000 // Version 3.3 (November 1996)
	Version2_2_0 Version = 0x0220_0000 // ICC.1:1998-09
	Version2_4_0 Version = 0x0240_0000 // ICC.1:2001-04
	Version4_0_0 Version = 0x0400_0000 // ICC.1:2001-12
	Version4_2_0 Version = 0x0420_0000 // ICC.1:2004-10
	Version4_3_0 Version = 0x0430_0000 // ICC.1:2010-12
	Version4_4_0 Version = 0x0440_0000 // ICC.1:2022-05
)

// MakeVersion constructs a Version from its components.
func MakeVersion(major, minor, bugfix int) Version {
	return Version(uint32(major&0xFF)<<24 | uint32(minor&0xF)<<20 | uint32(bugfix&0xF)<<16)
}

// Major returns the major version number.
func (v Version) Major() int { return int(v >> 24) }

func (v Version) String() string {
	major := int(v >> 24)
	minor := int(v >> 20 & 0xF)
	bugfix := int(v >> 16 & 0xF)
	other := int(v & 0xFFFF)

	suffix := ""
	if other != 0 {
		suffix = fmt.Sprintf(".%04X", other)
	}
	return fmt.Sprintf("%d.%d.%d%s", major, minor, bugfix, suffix)
}

// ProfileClass is the ICC profile or device class.
type ProfileClass uint32

// Profile classes defined in the ICC specification.
const (
	InputDeviceProfile   ProfileClass = 0x73636E72 // "scnr"
	DisplayDeviceProfile ProfileClass = 0x6D6E7472 // "mntr"
	OutputDeviceProfile  ProfileClass = 0x70727472 // "prtr"

	ColorSpaceProfile ProfileClass = 0x73706163 // "spac"
	DeviceLinkProfile ProfileClass = 0x6C696E6B // "link"
	AbstractProfile   ProfileClass = 0x61627374 // "abst"
	NamedColorProfile ProfileClass = 0x6E6D636C // "nmcl"
)

var profileClassNames = map[ProfileClass]string{
	InputDeviceProfile:   "Input Device Profile",
	DisplayDeviceProfile: "Display Device Profile",
	OutputDeviceProfile:  "Output Device Profile",
	DeviceLinkProfile:    "DeviceLink Profile",
	ColorSpaceProfile:    "ColorSpace Profile",
	AbstractProfile:      "Abstract Profile",
	NamedColorProfile:    "Named Color Profile",
}

func (c ProfileClass) String() string {
	if name, ok := profileClassNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ProfileClass(%s)", sigString(uint32(c)))
}

// RenderingIntent specifies how colours outside the destination gamut are handled.
type RenderingIntent uint32

// Standard ICC rendering intents.
const (
	Perceptual           RenderingIntent = 0
	RelativeColorimetric RenderingIntent = 1
	Saturation           RenderingIntent = 2
	AbsoluteColorimetric RenderingIntent = 3
)

func (ri RenderingIntent) String() string {
	switch ri {
	case Perceptual:
		return "Perceptual"
	case RelativeColorimetric:
		return "Relative Colorimetric"
	case Saturation:
		return "Saturation"
	case AbsoluteColorimetric:
		return "Absolute Colorimetric"
	default:
		return fmt.Sprintf("RenderingIntent(%d)", ri)
	}
}

// ColorSpace identifies a colour space in an ICC profile.
type ColorSpace uint32

// Color spaces defined in the ICC specification.
const (
	CIEXYZSpace ColorSpace = 0x58595A20 // "XYZ "
	CIELabSpace ColorSpace = 0x4C616220 // "Lab "
	CIELuvSpace ColorSpace = 0x4C757620 // "Luv "
	YCbCrSpace  ColorSpace = 0x59436272 // "YCbr"
	CIEYxySpace ColorSpace = 0x59787920 // "Yxy "
	RGBSpace    ColorSpace = 0x52474220 // "RGB "
	GraySpace   ColorSpace = 0x47524159 // "GRAY"
	HSVSpace    ColorSpace = 0x48535620 // "HSV "
	HLSSpace    ColorSpace = 0x484C5320 // "HLS "
	CMYKSpace   ColorSpace = 0x434D594B // "CMYK"
	CMYSpace    ColorSpace = 0x434D5920 // "CMY "

	PCSXYZSpace = CIEXYZSpace
	PCSLabSpace = CIELabSpace
)

// NumComponents returns the number of colour components in the colour
// space, or 0 if the colour space is not known.
func (s ColorSpace) NumComponents() int {
	switch s {
	case GraySpace:
		return 1
	case CMYKSpace:
		return 4
	case CIEXYZSpace, CIELabSpace, CIELuvSpace, YCbCrSpace, CIEYxySpace,
		RGBSpace, HSVSpace, HLSSpace, CMYSpace:
		return 3
	}
	// "2CLR" to "FCLR"
	if s&0x00FFFFFF == 0x00434C52 {
		c := byte(s >> 24)
		switch {
		case c >= '2' && c <= '9':
			return int(c - '0')
		case c >= 'A' && c <= 'F':
			return int(c-'A') + 10
		}
	}
	return 0
}

func (s ColorSpace) String() string {
	switch s {
	case CIEXYZSpace:
		return "CIEXYZ"
	case CIELabSpace:
		return "CIELAB"
	}
	return sigString(uint32(s))
}

// CheckSum contains information about the Profile ID field.
type CheckSum int

func (c CheckSum) String() string {
	switch c {
	case CheckSumValid:
		return "Valid"
	case CheckSumInvalid:
		return "Invalid"
	default:
		return "Missing"
	}
}

// Possible values of the CheckSum field.
const (
	CheckSumMissing CheckSum = iota
	CheckSumValid
	CheckSumInvalid
)

// sigString formats a four byte signature.  Printable signatures are shown
// as text with trailing spaces removed.
func sigString(sig uint32) string {
	bb := []byte{byte(sig >> 24), byte(sig >> 16), byte(sig >> 8), byte(sig)}
	for _, c := range bb {
		if c < 0x20 || c > 0x7E {
			return fmt.Sprintf("0x%08X", sig)
		}
	}
	end := 4
	for end > 1 && bb[end-1] == ' ' {
		end--
	}
	return string(bb[:end])
}

// makeSig converts a four character string into a signature.  Shorter
// strings are padded with spaces.
func makeSig(s string) uint32 {
	var sig uint32
	for i := range 4 {
		c := byte(' ')
		if i < len(s) {
			c = s[i]
		}
		sig = sig<<8 | uint32(c)
	}
	return sig
}
