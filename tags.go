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
	"slices"
)

// The TagType identifies a tag in an ICC profile.
type TagType uint32

func (t TagType) String() string {
	return fmt.Sprintf("%q", sigString(uint32(t)))
}

// These are some of the tag signatures defined in the ICC specification.
const (
	AToB0                   TagType = 0x41324230 // "A2B0"
	AToB1                   TagType = 0x41324231 // "A2B1"
	AToB2                   TagType = 0x41324232 // "A2B2"
	BToA0                   TagType = 0x42324130 // "B2A0"
	BToA1                   TagType = 0x42324131 // "B2A1"
	BToA2                   TagType = 0x42324132 // "B2A2"
	BlueColorant            TagType = 0x6258595A // "bXYZ"
	BlueTRC                 TagType = 0x62545243 // "bTRC"
	CalibrationDateTime     TagType = 0x63616C74 // "calt"
	ChromaticAdaption       TagType = 0x63686164 // "chad"
	ChromaticityTag         TagType = 0x6368726D // "chrm"
	ColorantTableTag        TagType = 0x636C7274 // "clrt"
	Copyright               TagType = 0x63707274 // "cprt"
	DeviceMfgDesc           TagType = 0x646D6E64 // "dmnd"
	DeviceModelDesc         TagType = 0x646D6464 // "dmdd"
	GrayTRC                 TagType = 0x6B545243 // "kTRC"
	GreenColorant           TagType = 0x6758595A // "gXYZ"
	GreenTRC                TagType = 0x67545243 // "gTRC"
	Luminance               TagType = 0x6C756D69 // "lumi"
	MediaBlackPoint         TagType = 0x626B7074 // "bkpt"
	MediaWhitePoint         TagType = 0x77747074 // "wtpt"
	Metadata                TagType = 0x6D657461 // "meta"
	ProfileDescription      TagType = 0x64657363 // "desc"
	RedColorant             TagType = 0x7258595A // "rXYZ"
	RedTRC                  TagType = 0x72545243 // "rTRC"
	Technology              TagType = 0x74656368 // "tech"
	VideoCardGammaTag       TagType = 0x76636774 // "vcgt"
	AdaptationTransform     TagType = 0x61727473 // "arts"
	CharTarget              TagType = 0x74617267 // "targ"
	ViewingCondDesc         TagType = 0x76756564 // "vued"
	ProfileSequenceDescTag  TagType = 0x70736571 // "pseq"
	ColorimetricIntentImage TagType = 0x63696973 // "ciis"
	MeasurementTag          TagType = 0x6D656173 // "meas"
	ViewingConditionsTag    TagType = 0x76696577 // "view"
	NamedColor2Tag          TagType = 0x6E636C32 // "ncl2"
	MakeAndModelTag         TagType = 0x6D6D6F64 // "mmod", Apple private tag
)

// TypeSignature identifies the encoding of a tag's payload.  It is stored
// in the first four bytes of every tag.
type TypeSignature uint32

func (t TypeSignature) String() string {
	return fmt.Sprintf("%q", sigString(uint32(t)))
}

// Tag types which can be decoded by this package.
const (
	TypeCurve               TypeSignature = 0x63757276 // "curv"
	TypeParametricCurve     TypeSignature = 0x70617261 // "para"
	TypeLUT16               TypeSignature = 0x6D667432 // "mft2"
	TypeXYZ                 TypeSignature = 0x58595A20 // "XYZ "
	TypeMultiLocalized      TypeSignature = 0x6D6C7563 // "mluc"
	TypeTextDescription     TypeSignature = 0x64657363 // "desc"
	TypeText                TypeSignature = 0x74657874 // "text"
	TypeSignatureType       TypeSignature = 0x73696720 // "sig "
	TypeDateTime            TypeSignature = 0x6474696D // "dtim"
	TypeChromaticity        TypeSignature = 0x6368726D // "chrm"
	TypeColorantTable       TypeSignature = 0x636C7274 // "clrt"
	TypeS15Fixed16Array     TypeSignature = 0x73663332 // "sf32"
	TypeDict                TypeSignature = 0x64696374 // "dict"
	TypeVideoCardGamma      TypeSignature = 0x76636774 // "vcgt"
	TypeMeasurement         TypeSignature = 0x6D656173 // "meas"
	TypeViewingConditions   TypeSignature = 0x76696577 // "view"
	TypeProfileSequenceDesc TypeSignature = 0x70736571 // "pseq"
	TypeNamedColor2         TypeSignature = 0x6E636C32 // "ncl2"
	TypeMakeAndModel        TypeSignature = 0x6D6D6F64 // "mmod"
)

// slot holds one tag payload.  Several tag signatures can refer to the same
// slot, so that changes made through one signature are visible through the
// others.
type slot struct {
	raw   []byte   // payload as found in the file, nil for new tags
	value TagValue // decoded value, nil until first use

	// offset is the position of the payload in the original file, used to
	// preserve the order of payloads when re-encoding.  New tags have
	// fromFile set to false.
	offset   uint32
	fromFile bool
}

// Len returns the number of tags in the profile.
func (p *Profile) Len() int {
	return len(p.tagOrder)
}

// Signatures returns the tag signatures of the profile, in tag table order.
func (p *Profile) Signatures() []TagType {
	return slices.Clone(p.tagOrder)
}

// Has reports whether the profile contains the given tag.
func (p *Profile) Has(sig TagType) bool {
	_, ok := p.tags[sig]
	return ok
}

// Tag returns the decoded value of a tag.
//
// Tags are decoded on first access.  If the payload cannot be decoded, a
// [*TagDecodeError] is added to p.Warnings and the tag is returned as a
// [*RawTag].  Tags which share a payload in the file return the same value.
func (p *Profile) Tag(sig TagType) (TagValue, bool) {
	s, ok := p.tags[sig]
	if !ok {
		return nil, false
	}
	if s.value == nil {
		s.value = p.decodeTag(sig, s.raw)
	}
	return s.value, true
}

// SetTag sets the value of a tag.  If the tag exists, it keeps its position
// in the tag table but no longer shares its value with other tags.
func (p *Profile) SetTag(sig TagType, val TagValue) {
	if p.tags == nil {
		p.tags = make(map[TagType]*slot)
	}
	if _, exists := p.tags[sig]; !exists {
		p.tagOrder = append(p.tagOrder, sig)
	}
	p.tags[sig] = &slot{value: val}
}

// LinkTag makes the tag sig share its value with the existing tag target.
func (p *Profile) LinkTag(sig, target TagType) error {
	s, ok := p.tags[target]
	if !ok {
		return fmt.Errorf("iccedit: cannot link %s: %w", sig, ErrMissingTag)
	}
	if _, exists := p.tags[sig]; !exists {
		p.tagOrder = append(p.tagOrder, sig)
	}
	p.tags[sig] = s
	return nil
}

// DeleteTag removes a tag from the profile.
func (p *Profile) DeleteTag(sig TagType) {
	if _, ok := p.tags[sig]; !ok {
		return
	}
	delete(p.tags, sig)
	p.tagOrder = slices.DeleteFunc(p.tagOrder, func(t TagType) bool { return t == sig })
}

// TagData returns the binary payload of a tag.  Tags which have not been
// accessed since the profile was read return the original bytes.
func (p *Profile) TagData(sig TagType) ([]byte, error) {
	s, ok := p.tags[sig]
	if !ok {
		return nil, fmt.Errorf("iccedit: tag %s: %w", sig, ErrMissingTag)
	}
	return s.encode()
}

func (s *slot) encode() ([]byte, error) {
	if s.value == nil {
		return s.raw, nil
	}
	return s.value.Encode()
}

// ErrMissingTag is returned when a required tag is not present.
var ErrMissingTag = errors.New("missing tag")

var (
	errUnexpectedType = errors.New("unexpected tag data type")
	errInvalidTagData = errors.New("invalid tag data")
)

// TagDecodeError reports a tag whose payload could not be decoded.
type TagDecodeError struct {
	Tag  TagType
	Type TypeSignature
	Err  error
}

func (e *TagDecodeError) Error() string {
	return fmt.Sprintf("iccedit: tag %s (type %s): %v", e.Tag, e.Type, e.Err)
}

func (e *TagDecodeError) Unwrap() error {
	return e.Err
}

// EncodingRecoveryWarning reports a malformed text encoding which was
// repaired while decoding a tag.
type EncodingRecoveryWarning struct {
	Tag    TagType
	Reason string
}

func (w *EncodingRecoveryWarning) Error() string {
	return fmt.Sprintf("iccedit: tag %s: %s", w.Tag, w.Reason)
}

// DuplicateTagError reports a tag signature which occurs more than once
// in the tag table.  Only the first occurrence is used.
type DuplicateTagError struct {
	Tag    TagType
	Offset int
}

func (e *DuplicateTagError) Error() string {
	return fmt.Sprintf("iccedit: duplicate tag %s at byte %d ignored", e.Tag, e.Offset)
}

// UnsupportedPCSError is returned by operations which require the profile
// connection space to be CIEXYZ or CIELAB.
type UnsupportedPCSError struct {
	Op  string
	PCS ColorSpace
}

func (e *UnsupportedPCSError) Error() string {
	return fmt.Sprintf("iccedit: %s: unsupported PCS %s", e.Op, e.PCS)
}

func (p *Profile) warn(err error) {
	p.Warnings = append(p.Warnings, err)
}
