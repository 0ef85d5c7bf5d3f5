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

// MultiLocalizedUnicode represents a localized Unicode string.
type MultiLocalizedUnicode []LocalizedUnicode

// LocalizedUnicode represents a language-country pair.
type LocalizedUnicode struct {
	Language string
	Country  string
	Value    string
}

func decodeMLUCTag(data []byte, sig TagType, p *Profile) (TagValue, error) {
	m, err := decodeMLUC(data, func(reason string) {
		p.warn(&EncodingRecoveryWarning{Tag: sig, Reason: reason})
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func decodeMLUC(data []byte, warn func(string)) (*MultiLocalizedUnicode, error) {
	err := checkType(data, TypeMultiLocalized)
	if err != nil {
		return nil, err
	}
	if len(data) < 16 {
		return nil, errInvalidTagData
	}
	n := uint64(getUint32(data, 8))
	recordSize := uint64(getUint32(data, 12))
	if recordSize != 12 {
		warn(fmt.Sprintf("invalid record length %d", recordSize))
		recordSize = max(recordSize, 12)
	}
	if uint64(len(data)) < 16+recordSize*n {
		return nil, errInvalidTagData
	}

	res := make(MultiLocalizedUnicode, 0, n)
	for i := range n {
		rec := 16 + int(recordSize*i)
		length := uint64(getUint32(data, rec+4))
		offset := uint64(getUint32(data, rec+8))
		if offset+length > uint64(len(data)) {
			return nil, errInvalidTagData
		}
		value := decodeWith(utf16BE, data[offset:offset+length])
		res = append(res, LocalizedUnicode{
			Language: string(data[rec : rec+2]),
			Country:  string(data[rec+2 : rec+4]),
			Value:    strings.Trim(value, "\x00"),
		})
	}
	return &res, nil
}

// Get returns the string for the given language and country.  If no such
// record exists, the result of [MultiLocalizedUnicode.Default] is returned.
func (m *MultiLocalizedUnicode) Get(language, country string) string {
	for _, rec := range *m {
		if rec.Language == language && rec.Country == country {
			return rec.Value
		}
	}
	return m.Default()
}

// Default returns the British or American English string, if present.
// Otherwise, the first English string or the first string of any
// language is returned.
func (m *MultiLocalizedUnicode) Default() string {
	for _, country := range []string{"UK", "US"} {
		for _, rec := range *m {
			if rec.Language == "en" && rec.Country == country {
				return rec.Value
			}
		}
	}
	for _, rec := range *m {
		if rec.Language == "en" {
			return rec.Value
		}
	}
	if len(*m) > 0 {
		return (*m)[0].Value
	}
	return ""
}

// Set sets the string for the given language and country.  New records
// are appended at the end.
func (m *MultiLocalizedUnicode) Set(language, country, value string) {
	for i, rec := range *m {
		if rec.Language == language && rec.Country == country {
			(*m)[i].Value = value
			return
		}
	}
	*m = append(*m, LocalizedUnicode{Language: language, Country: country, Value: value})
}

func (m *MultiLocalizedUnicode) String() string {
	return m.Default()
}

// TypeSignature implements the [TagValue] interface.
func (m *MultiLocalizedUnicode) TypeSignature() TypeSignature {
	return TypeMultiLocalized
}

// Encode implements the [TagValue] interface.
// Identical strings are stored only once.
func (m *MultiLocalizedUnicode) Encode() ([]byte, error) {
	n := len(*m)
	storageStart := 16 + 12*n

	type ref struct{ offset, length int }
	seen := make(map[string]ref)
	var storage []byte
	refs := make([]ref, n)
	for i, rec := range *m {
		if r, ok := seen[rec.Value]; ok {
			refs[i] = r
			continue
		}
		enc, err := utf16BE.NewEncoder().Bytes([]byte(rec.Value))
		if err != nil {
			return nil, err
		}
		r := ref{offset: storageStart + len(storage), length: len(enc)}
		storage = append(storage, enc...)
		seen[rec.Value] = r
		refs[i] = r
	}

	buf := newPayload(TypeMultiLocalized, storageStart+len(storage))
	putUint32(buf, 8, uint32(n))
	putUint32(buf, 12, 12)
	for i, rec := range *m {
		pos := 16 + 12*i
		copy(buf[pos:pos+2], padCode(rec.Language))
		copy(buf[pos+2:pos+4], padCode(rec.Country))
		putUint32(buf, pos+4, uint32(refs[i].length))
		putUint32(buf, pos+8, uint32(refs[i].offset))
	}
	copy(buf[storageStart:], storage)
	return buf, nil
}

// padCode converts a language or country code to exactly two bytes.
func padCode(code string) []byte {
	b := []byte{0, 0}
	copy(b, code)
	return b
}
