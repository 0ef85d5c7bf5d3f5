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
	"sort"
)

// Encode converts the profile to binary form.
//
// Tag payloads keep the order they had in the original file, followed by
// the payloads of new tags.  Payloads with identical content are stored
// only once.  For version 4 profiles, the profile ID is recomputed;
// otherwise the ID field is written as found in p.ID.
func (p *Profile) Encode() ([]byte, error) {
	type payload struct {
		s     *slot
		data  []byte
		first int // position of the first referencing tag
		start uint32
	}
	bySlot := make(map[*slot]*payload)
	var payloads []*payload
	for i, sig := range p.tagOrder {
		s := p.tags[sig]
		if bySlot[s] != nil {
			continue
		}
		data, err := s.encode()
		if err != nil {
			return nil, fmt.Errorf("iccedit: encoding tag %s: %w", sig, err)
		}
		pl := &payload{s: s, data: data, first: i}
		bySlot[s] = pl
		payloads = append(payloads, pl)
	}
	sort.SliceStable(payloads, func(i, j int) bool {
		a, b := payloads[i], payloads[j]
		if a.s.fromFile != b.s.fromFile {
			return a.s.fromFile
		}
		if a.s.fromFile && a.s.offset != b.s.offset {
			return a.s.offset < b.s.offset
		}
		return a.first < b.first
	})

	numTags := len(p.tagOrder)
	pos := 128 + 4 + numTags*12
	byContent := make(map[string]uint32)
	for _, pl := range payloads {
		key := string(pl.data)
		if start, ok := byContent[key]; ok {
			pl.start = start
			continue
		}
		pl.start = uint32(pos)
		byContent[key] = pl.start
		pos += (len(pl.data) + 3) &^ 3
	}

	buf := make([]byte, pos)
	putUint32(buf, 0, uint32(pos))
	putUint32(buf, 4, p.PreferredCMMType)
	putUint32(buf, 8, uint32(p.Version))
	putUint32(buf, 12, uint32(p.Class))
	putUint32(buf, 16, uint32(p.ColorSpace))
	putUint32(buf, 20, uint32(p.PCS))
	putDateTime(buf, 24, p.CreationDate)
	putUint32(buf, 36, 0x61637370) // "acsp"
	putUint32(buf, 40, p.PrimaryPlatform)
	putUint32(buf, 44, p.Flags)
	putUint32(buf, 48, p.DeviceManufacturer)
	putUint32(buf, 52, p.DeviceModel)
	putUint64(buf, 56, p.DeviceAttributes)
	putUint32(buf, 64, uint32(p.RenderingIntent))
	for i, x := range p.Illuminant {
		putS15Fixed16(buf, 68+4*i, x)
	}
	putUint32(buf, 80, p.Creator)
	copy(buf[84:100], p.ID[:])
	copy(buf[100:128], p.Reserved[:])

	putUint32(buf, 128, uint32(numTags))
	tagTable := 128 + 4
	for i, sig := range p.tagOrder {
		pl := bySlot[p.tags[sig]]
		putUint32(buf, tagTable+i*12, uint32(sig))
		putUint32(buf, tagTable+i*12+4, pl.start)
		putUint32(buf, tagTable+i*12+8, uint32(len(pl.data)))
	}
	for _, pl := range payloads {
		copy(buf[pl.start:], pl.data)
	}

	if p.Version >= Version4_0_0 {
		id := profileID(buf)
		copy(buf[84:100], id[:])
	}

	return buf, nil
}

// Checksum returns the MD5 profile ID of the encoded profile.
//
// The flags, the rendering intent and the profile ID field do not
// contribute to the checksum.
func (p *Profile) Checksum() ([16]byte, error) {
	data, err := p.Encode()
	if err != nil {
		return [16]byte{}, err
	}
	return profileID(data), nil
}

// UpdateID sets the profile ID to the checksum of the profile.
func (p *Profile) UpdateID() error {
	id, err := p.Checksum()
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}
