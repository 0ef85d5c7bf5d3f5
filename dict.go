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
	"strings"
)

// Dict is the value of a dictType tag, for example the "meta" tag.
// Entries are kept in file order.
//
// Display names and display values which are stored only once in the file
// decode to the same [*MultiLocalizedUnicode], so that changing one of
// them changes all entries which share it.
type Dict []DictEntry

// DictEntry is a single name/value pair in a [Dict].
type DictEntry struct {
	Name  string
	Value string

	DisplayName  *MultiLocalizedUnicode // optional
	DisplayValue *MultiLocalizedUnicode // optional
}

func decodeDict(data []byte, sig TagType, p *Profile) (TagValue, error) {
	err := checkType(data, TypeDict)
	if err != nil {
		return nil, err
	}
	if len(data) < 16 {
		return nil, errInvalidTagData
	}
	warn := func(reason string) {
		p.warn(&EncodingRecoveryWarning{Tag: sig, Reason: reason})
	}

	d := Dict{}
	n := int(getUint32(data, 8))
	recordLen := int(getUint32(data, 12))
	if recordLen != 16 && recordLen != 24 && recordLen != 32 {
		warn(fmt.Sprintf("invalid record length %d", recordLen))
		return &d, nil
	}

	type location struct{ offset, size uint32 }
	strs := make(map[location]string)
	mlucs := make(map[location]*MultiLocalizedUnicode)
	str := func(loc location) (string, bool) {
		if s, ok := strs[loc]; ok {
			return s, true
		}
		end := uint64(loc.offset) + uint64(loc.size)
		if end > uint64(len(data)) {
			return "", false
		}
		s := strings.TrimRight(decodeWith(utf16BE, data[loc.offset:end]), "\x00")
		strs[loc] = s
		return s, true
	}
	mluc := func(loc location) *MultiLocalizedUnicode {
		if m, ok := mlucs[loc]; ok {
			return m
		}
		end := uint64(loc.offset) + uint64(loc.size)
		var m *MultiLocalizedUnicode
		if end <= uint64(len(data)) {
			m, err = decodeMLUC(data[loc.offset:end], warn)
		}
		if m == nil {
			warn(fmt.Sprintf("cannot decode display string at offset %d", loc.offset))
		}
		mlucs[loc] = m
		return m
	}

	for i := range n {
		rec := 16 + i*recordLen
		if rec+recordLen > len(data) {
			warn(fmt.Sprintf("record %d is truncated", i))
			break
		}
		field := func(k int) location {
			return location{getUint32(data, rec+8*k), getUint32(data, rec+8*k+4)}
		}

		var e DictEntry
		if loc := field(0); loc.offset > 0 {
			e.Name, _ = str(loc)
		}
		if loc := field(1); loc.offset > 0 {
			e.Value, _ = str(loc)
		}
		if recordLen >= 24 {
			if loc := field(2); loc.offset > 0 {
				e.DisplayName = mluc(loc)
			}
		}
		if recordLen >= 32 {
			if loc := field(3); loc.offset > 0 {
				e.DisplayValue = mluc(loc)
			}
		}
		d = append(d, e)
	}
	return &d, nil
}

// Get returns the value stored under the given name.
func (d *Dict) Get(name string) (string, bool) {
	if e := d.Entry(name); e != nil {
		return e.Value, true
	}
	return "", false
}

// Entry returns a pointer to the entry with the given name, or nil if
// there is no such entry.
func (d *Dict) Entry(name string) *DictEntry {
	for i := range *d {
		if (*d)[i].Name == name {
			return &(*d)[i]
		}
	}
	return nil
}

// Set sets the value stored under the given name.  New entries are appended
// at the end.
func (d *Dict) Set(name, value string) {
	if e := d.Entry(name); e != nil {
		e.Value = value
		return
	}
	*d = append(*d, DictEntry{Name: name, Value: value})
}

// TypeSignature implements the [TagValue] interface.
func (d *Dict) TypeSignature() TypeSignature { return TypeDict }

// Encode implements the [TagValue] interface.
func (d *Dict) Encode() ([]byte, error) {
	recordLen := 16
	for _, e := range *d {
		if e.DisplayValue != nil {
			recordLen = 32
			break
		} else if e.DisplayName != nil {
			recordLen = 24
		}
	}
	n := len(*d)
	storageStart := 16 + n*recordLen

	type ref struct{ offset, size int }
	var storage []byte
	add := func(b []byte) ref {
		r := ref{storageStart + len(storage), len(b)}
		storage = append(storage, pad4(b)...)
		return r
	}
	shared := make(map[*MultiLocalizedUnicode]ref)
	addMLUC := func(m *MultiLocalizedUnicode) (ref, error) {
		if m == nil {
			return ref{}, nil
		}
		if r, ok := shared[m]; ok {
			return r, nil
		}
		b, err := m.Encode()
		if err != nil {
			return ref{}, err
		}
		r := add(b)
		shared[m] = r
		return r, nil
	}
	addString := func(s string) (ref, error) {
		b, err := utf16BE.NewEncoder().Bytes([]byte(s))
		if err != nil {
			return ref{}, err
		}
		return add(b), nil
	}

	refs := make([][4]ref, n)
	for i, e := range *d {
		var err error
		if refs[i][0], err = addString(e.Name); err != nil {
			return nil, err
		}
		if refs[i][1], err = addString(e.Value); err != nil {
			return nil, err
		}
		if refs[i][2], err = addMLUC(e.DisplayName); err != nil {
			return nil, err
		}
		if refs[i][3], err = addMLUC(e.DisplayValue); err != nil {
			return nil, err
		}
	}

	buf := newPayload(TypeDict, storageStart+len(storage))
	putUint32(buf, 8, uint32(n))
	putUint32(buf, 12, uint32(recordLen))
	for i := range refs {
		rec := 16 + i*recordLen
		for k := range recordLen / 8 {
			putUint32(buf, rec+8*k, uint32(refs[i][k].offset))
			putUint32(buf, rec+8*k+4, uint32(refs[i][k].size))
		}
	}
	copy(buf[storageStart:], storage)
	return buf, nil
}
