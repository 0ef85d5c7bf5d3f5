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
	"crypto/md5"
	"fmt"
	"os"
)

// Decode decodes an ICC profile from the given data.
// The function takes over ownership of the data.
//
// Only the header and the tag table are decoded here.  Tag payloads are
// decoded when they are first accessed, and problems with individual tags
// are reported in the Warnings field of the profile.
func Decode(data []byte) (*Profile, error) {
	if len(data) < 128+4 {
		return nil, invalidProfile(0, "profile is too short")
	}
	if string(data[36:40]) != "acsp" {
		return nil, invalidProfile(36, "missing 'acsp' signature")
	}

	size := getUint32(data, 0)
	if uint64(size) > uint64(len(data)) {
		return nil, invalidProfile(0, "profile is truncated")
	} else if size < 128+4 {
		return nil, invalidProfile(0, "invalid profile size")
	}
	data = data[:size]

	numTags := getUint32(data, 128)
	maxNumTags := uint((len(data) - 128 - 4) / 12)
	if uint(numTags) > maxNumTags {
		return nil, invalidProfile(128, "too many tags")
	}
	// since len(data) is an int, numTags can be represented as an int

	p := &Profile{
		PreferredCMMType:   getUint32(data, 4),
		Version:            Version(getUint32(data, 8)),
		Class:              ProfileClass(getUint32(data, 12)),
		ColorSpace:         ColorSpace(getUint32(data, 16)),
		PCS:                ColorSpace(getUint32(data, 20)),
		CreationDate:       getDateTime(data, 24),
		PrimaryPlatform:    getUint32(data, 40),
		Flags:              getUint32(data, 44),
		DeviceManufacturer: getUint32(data, 48),
		DeviceModel:        getUint32(data, 52),
		DeviceAttributes:   getUint64(data, 56),
		RenderingIntent:    RenderingIntent(getUint32(data, 64)),
		Creator:            getUint32(data, 80),

		tags: make(map[TagType]*slot, numTags),
	}
	for i := range p.Illuminant {
		p.Illuminant[i] = getS15Fixed16(data, 68+4*i)
	}
	copy(p.ID[:], data[84:100])
	copy(p.Reserved[:], data[100:128])

	if !isZero(p.ID[:]) {
		if profileID(data) == p.ID {
			p.CheckSum = CheckSumValid
		} else {
			p.CheckSum = CheckSumInvalid
		}
	}

	type location struct {
		offset, size uint32
	}
	shared := make(map[location]*slot)

	minTagOffset := 128 + 4 + int64(numTags)*12
	for i := 0; i < int(numTags); i++ {
		offset := 128 + 4 + i*12
		sig := TagType(getUint32(data, offset))
		tagOffset := getUint32(data, offset+4)
		tagSize := getUint32(data, offset+8)
		if tagSize < 4 {
			return nil, invalidProfile(offset+8, "tag is too small")
		} else if tagSize > 0xFFFFFFFC {
			return nil, invalidProfile(offset+8, "tag is too large")
		}

		start := int64(tagOffset)
		end := start + int64(tagSize)
		if start < minTagOffset || end > int64(len(data)) {
			return nil, invalidProfile(offset, "tag is out of bounds")
		}

		if _, seen := p.tags[sig]; seen {
			p.warn(&DuplicateTagError{Tag: sig, Offset: offset})
			continue
		}

		loc := location{tagOffset, tagSize}
		s := shared[loc]
		if s == nil {
			s = &slot{
				raw:      data[start:end],
				offset:   tagOffset,
				fromFile: true,
			}
			shared[loc] = s
		}
		p.tags[sig] = s
		p.tagOrder = append(p.tagOrder, sig)
	}

	return p, nil
}

// Open reads an ICC profile from a file.
func Open(fname string) (*Profile, error) {
	data, err := os.ReadFile(fname)
	if err != nil {
		return nil, fmt.Errorf("iccedit: %w", err)
	}
	p, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fname, err)
	}
	return p, nil
}

// profileID computes the MD5 based profile ID of an encoded profile.
//
// The entire profile, with the profile flags field, rendering intent field,
// and profile ID field in the header temporarily set to zeros, is used to
// calculate the ID.  The data is not modified.
func profileID(data []byte) [16]byte {
	var zeros [16]byte
	h := md5.New()
	h.Write(data[:44])
	h.Write(zeros[:4])
	h.Write(data[48:64])
	h.Write(zeros[:4])
	h.Write(data[68:84])
	h.Write(zeros[:16])
	h.Write(data[100:])

	var res [16]byte
	h.Sum(res[:0])
	return res
}

func isZero(b []byte) bool {
	for _, x := range b {
		if x != 0 {
			return false
		}
	}
	return true
}

// InvalidProfileError indicates that an ICC profile contains invalid binary
// data and cannot be decoded.
type InvalidProfileError struct {
	Offset int
	Reason string
}

func invalidProfile(offset int, reason string) error {
	return &InvalidProfileError{Offset: offset, Reason: reason}
}

func (e *InvalidProfileError) Error() string {
	return fmt.Sprintf("iccedit: invalid profile (byte %d): %s", e.Offset, e.Reason)
}
