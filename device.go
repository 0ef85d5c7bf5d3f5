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
	"fmt"
	"slices"
)

// ProfileSequenceDesc is the value of a profileSequenceDescType tag.  It
// describes the profiles which were combined to build a device link or
// abstract profile, in the order they were applied.
type ProfileSequenceDesc []ProfileSequenceEntry

// ProfileSequenceEntry describes one profile of a [ProfileSequenceDesc].
type ProfileSequenceEntry struct {
	DeviceManufacturer uint32
	DeviceModel        uint32

	// DeviceAttributes uses the same encoding as
	// [Profile.DeviceAttributes].
	DeviceAttributes uint64

	Technology Signature

	// Manufacturer and Model are the descriptions of the device
	// manufacturer and model.  They are either [*TextDescription] or
	// [*MultiLocalizedUnicode] values.  Nil values are written as empty
	// textDescriptionType structures.
	Manufacturer TagValue
	Model        TagValue
}

func decodeProfileSequenceDesc(data []byte, sig TagType, p *Profile) (TagValue, error) {
	err := checkType(data, TypeProfileSequenceDesc)
	if err != nil {
		return nil, err
	}
	if len(data) < 12 {
		return nil, errInvalidTagData
	}
	n := uint64(getUint32(data, 8))
	if 12+n*(20+2*12) > uint64(len(data)) {
		return nil, errInvalidTagData
	}

	res := make(ProfileSequenceDesc, 0, n)
	pos := 12
	for range n {
		if pos+20 > len(data) {
			return nil, errInvalidTagData
		}
		e := ProfileSequenceEntry{
			DeviceManufacturer: getUint32(data, pos),
			DeviceModel:        getUint32(data, pos+4),
			DeviceAttributes:   getUint64(data, pos+8),
			Technology:         Signature(getUint32(data, pos+16)),
		}
		pos += 20
		for _, field := range []*TagValue{&e.Manufacturer, &e.Model} {
			size, err := embeddedTextSize(data[pos:])
			if err != nil {
				return nil, err
			}
			chunk := data[pos : pos+size]
			var val TagValue
			if TypeSignature(getUint32(chunk, 0)) == TypeTextDescription {
				val, err = decodeTextDescription(chunk, sig, p)
			} else {
				val, err = decodeMLUCTag(chunk, sig, p)
			}
			if err != nil {
				return nil, err
			}
			*field = val
			pos += size
		}
		res = append(res, e)
	}
	return res, nil
}

// embeddedTextSize returns the length of the textDescriptionType or
// multiLocalizedUnicodeType structure at the start of data.  Structures
// inside a profile sequence are not padded.
func embeddedTextSize(data []byte) (int, error) {
	if len(data) < 12 {
		return 0, errInvalidTagData
	}
	switch typ := TypeSignature(getUint32(data, 0)); typ {
	case TypeTextDescription:
		asciiLen := uint64(getUint32(data, 8))
		if 12+asciiLen+8 > uint64(len(data)) {
			return 0, errInvalidTagData
		}
		uniLen := uint64(getUint32(data, 12+int(asciiLen)+4))
		size := 12 + asciiLen + 8 + 2*uniLen + 3 + 67
		// Some writers omit the Macintosh part of the last structure.
		return int(min(size, uint64(len(data)))), nil
	case TypeMultiLocalized:
		if len(data) < 16 {
			return 0, errInvalidTagData
		}
		n := uint64(getUint32(data, 8))
		recordSize := max(uint64(getUint32(data, 12)), 12)
		size := 16 + recordSize*n
		if size > uint64(len(data)) {
			return 0, errInvalidTagData
		}
		for i := range n {
			rec := 16 + int(recordSize*i)
			end := uint64(getUint32(data, rec+4)) + uint64(getUint32(data, rec+8))
			size = max(size, end)
		}
		if size > uint64(len(data)) {
			return 0, errInvalidTagData
		}
		return int(size), nil
	default:
		return 0, fmt.Errorf("%w: unexpected %s in profile sequence", errInvalidTagData, typ)
	}
}

// TypeSignature implements the [TagValue] interface.
func (s ProfileSequenceDesc) TypeSignature() TypeSignature { return TypeProfileSequenceDesc }

// Encode implements the [TagValue] interface.
func (s ProfileSequenceDesc) Encode() ([]byte, error) {
	buf := newPayload(TypeProfileSequenceDesc, 12)
	putUint32(buf, 8, uint32(len(s)))
	for i, e := range s {
		head := make([]byte, 20)
		putUint32(head, 0, e.DeviceManufacturer)
		putUint32(head, 4, e.DeviceModel)
		putUint64(head, 8, e.DeviceAttributes)
		putUint32(head, 16, uint32(e.Technology))
		buf = append(buf, head...)

		for _, val := range []TagValue{e.Manufacturer, e.Model} {
			switch val.(type) {
			case nil:
				val = &TextDescription{}
			case *TextDescription, *MultiLocalizedUnicode:
			default:
				return nil, fmt.Errorf("iccedit: profile sequence entry %d: unsupported description type %s",
					i, val.TypeSignature())
			}
			data, err := val.Encode()
			if err != nil {
				return nil, err
			}
			buf = append(buf, data...)
		}
	}
	return buf, nil
}

// SequenceEntry returns the description of p for use in the "pseq" tag of
// a profile with the given version.  Version 4 profiles get
// multiLocalizedUnicodeType descriptions, older versions get
// textDescriptionType descriptions.
func (p *Profile) SequenceEntry(target Version) ProfileSequenceEntry {
	e := ProfileSequenceEntry{
		DeviceManufacturer: p.DeviceManufacturer,
		DeviceModel:        p.DeviceModel,
		DeviceAttributes:   p.DeviceAttributes,
	}
	if val, ok := p.Tag(Technology); ok {
		if tech, ok := val.(Signature); ok {
			e.Technology = tech
		}
	}

	for _, item := range []struct {
		sig TagType
		dst *TagValue
	}{
		{DeviceMfgDesc, &e.Manufacturer},
		{DeviceModelDesc, &e.Model},
	} {
		val, _ := p.Tag(item.sig)
		if d, isDesc := val.(*TextDescription); isDesc && target < Version4_0_0 {
			c := *d
			c.macRaw = slices.Clone(d.macRaw)
			*item.dst = &c
			continue
		}
		text := descriptionText(val)
		if target >= Version4_0_0 {
			m := &MultiLocalizedUnicode{}
			m.Set("en", "US", text)
			*item.dst = m
		} else {
			d := &TextDescription{ASCII: text}
			if !isASCII(text) {
				d.Unicode = text
			}
			*item.dst = d
		}
	}
	return e
}

// descriptionText returns the text of a description tag value.
func descriptionText(val TagValue) string {
	switch v := val.(type) {
	case *TextDescription:
		return v.String()
	case *MultiLocalizedUnicode:
		return v.Default()
	case Text:
		return string(v)
	}
	return ""
}

func isASCII(s string) bool {
	for i := range len(s) {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// MakeAndModel is the value of the Apple private "mmod" tag, which
// identifies the display a profile was made for.
type MakeAndModel struct {
	Manufacturer uint32
	Model        uint32

	// Rest holds the remaining payload (serial number, manufacture date
	// and reserved fields) unchanged.
	Rest []byte
}

func decodeMakeAndModel(data []byte, _ TagType, _ *Profile) (TagValue, error) {
	err := checkType(data, TypeMakeAndModel)
	if err != nil {
		return nil, err
	}
	if len(data) < 16 {
		return nil, errInvalidTagData
	}
	return &MakeAndModel{
		Manufacturer: getUint32(data, 8),
		Model:        getUint32(data, 12),
		Rest:         slices.Clone(data[16:]),
	}, nil
}

// TypeSignature implements the [TagValue] interface.
func (m *MakeAndModel) TypeSignature() TypeSignature { return TypeMakeAndModel }

// Encode implements the [TagValue] interface.
func (m *MakeAndModel) Encode() ([]byte, error) {
	buf := newPayload(TypeMakeAndModel, 16+len(m.Rest))
	putUint32(buf, 8, m.Manufacturer)
	putUint32(buf, 12, m.Model)
	copy(buf[16:], m.Rest)
	return buf, nil
}
