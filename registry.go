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

// TagValue is the decoded value of a tag.
//
// The concrete type depends on the type signature of the tag payload, for
// example [*Curve] for "curv" and "para" tags, or [*LUT16] for "mft2" tags.
// Payloads of unknown type are represented by [*RawTag].
type TagValue interface {
	// TypeSignature returns the type signature used when encoding the value.
	TypeSignature() TypeSignature

	// Encode returns the binary form of the tag, starting with the type
	// signature and the four reserved bytes.
	Encode() ([]byte, error)
}

// decodeFunc decodes the payload of a tag.  The profile gives access to
// header fields, such as the PCS, which some types need for decoding.
// Decoders must not call Profile.Tag.
type decodeFunc func(data []byte, sig TagType, p *Profile) (TagValue, error)

// typeDecoders selects a decoder by the type signature of the payload.
var typeDecoders = map[TypeSignature]decodeFunc{
	TypeCurve:               decodeCurve,
	TypeParametricCurve:     decodeCurve,
	TypeLUT16:               decodeLUT16,
	TypeXYZ:                 decodeXYZType,
	TypeMultiLocalized:      decodeMLUCTag,
	TypeTextDescription:     decodeTextDescription,
	TypeText:                decodeText,
	TypeSignatureType:       decodeSignature,
	TypeDateTime:            decodeDateTime,
	TypeChromaticity:        decodeChromaticity,
	TypeColorantTable:       decodeColorantTable,
	TypeS15Fixed16Array:     decodeS15Fixed16Array,
	TypeDict:                decodeDict,
	TypeVideoCardGamma:      decodeVideoCardGamma,
	TypeMeasurement:         decodeMeasurement,
	TypeViewingConditions:   decodeViewingConditions,
	TypeProfileSequenceDesc: decodeProfileSequenceDesc,
	TypeNamedColor2:         decodeNamedColor2,
	TypeMakeAndModel:        decodeMakeAndModel,
}

// tagDecoders overrides typeDecoders for tags whose meaning depends on the
// tag signature rather than on the payload type.
var tagDecoders = map[TagType]decodeFunc{
	ChromaticAdaption:   decodeChromaticAdaptation,
	AdaptationTransform: decodeChromaticAdaptation,
}

// RawTag holds the payload of a tag which is not decoded by this package.
type RawTag struct {
	Data []byte
}

// TypeSignature implements the [TagValue] interface.
func (t *RawTag) TypeSignature() TypeSignature {
	if len(t.Data) < 4 {
		return 0
	}
	return TypeSignature(getUint32(t.Data, 0))
}

// Encode implements the [TagValue] interface.
func (t *RawTag) Encode() ([]byte, error) {
	return t.Data, nil
}

// decodeTag converts a payload into a TagValue.  Errors are recorded in
// p.Warnings and the tag falls back to a RawTag.
func (p *Profile) decodeTag(sig TagType, data []byte) TagValue {
	if len(data) < 8 {
		p.warn(&TagDecodeError{Tag: sig, Err: errInvalidTagData})
		return &RawTag{Data: data}
	}
	typ := TypeSignature(getUint32(data, 0))

	decode, ok := tagDecoders[sig]
	if !ok {
		decode, ok = typeDecoders[typ]
	}
	if !ok {
		return &RawTag{Data: data}
	}

	val, err := decode(data, sig, p)
	if err != nil {
		p.warn(&TagDecodeError{Tag: sig, Type: typ, Err: err})
		return &RawTag{Data: data}
	}
	return val
}

// checkType verifies the type signature at the start of a payload.
func checkType(data []byte, want TypeSignature) error {
	if len(data) < 8 {
		return errInvalidTagData
	}
	if TypeSignature(getUint32(data, 0)) != want {
		return errUnexpectedType
	}
	return nil
}

// newPayload allocates a payload of the given size and fills in the type
// signature.
func newPayload(typ TypeSignature, size int) []byte {
	buf := make([]byte, size)
	putUint32(buf, 0, uint32(typ))
	return buf
}
