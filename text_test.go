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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decodeVia decodes a tag payload the way Profile.Tag does, and returns
// the value together with the warnings generated.
func decodeVia(sig TagType, data []byte) (TagValue, []error) {
	p := New()
	val := p.decodeTag(sig, data)
	return val, p.Warnings
}

// descPayload assembles a textDescriptionType payload.  If mac is nil,
// the Macintosh part is omitted.
func descPayload(ascii string, uniCount int, uni []byte, script uint16, mac []byte) []byte {
	buf := []byte("desc\x00\x00\x00\x00")
	buf = append(buf, 0, 0, 0, byte(len(ascii)+1))
	buf = append(buf, ascii...)
	buf = append(buf, 0)
	buf = append(buf, 0, 0, 0, 0) // language
	buf = append(buf, 0, 0, 0, byte(uniCount))
	buf = append(buf, uni...)
	if mac != nil {
		buf = append(buf, byte(script>>8), byte(script), byte(len(mac)))
		buf = append(buf, mac...)
		buf = append(buf, make([]byte, 67-len(mac))...)
	}
	return buf
}

func TestTextRoundTrip(t *testing.T) {
	data, err := Text("Copyright nobody").Encode()
	require.NoError(t, err)
	assert.Equal(t, "text\x00\x00\x00\x00Copyright nobody\x00", string(data))
	val, warnings := decodeVia(Copyright, data)
	assert.Equal(t, Text("Copyright nobody"), val)
	assert.Empty(t, warnings)

	data, err = Signature(0x43525420).Encode()
	require.NoError(t, err)
	val, _ = decodeVia(Technology, data)
	assert.Equal(t, Signature(0x43525420), val)
	assert.Equal(t, "CRT", val.(Signature).String())

	when := DateTime{NewDateTimeNumber(time.Date(2024, 2, 29, 23, 59, 58, 0, time.UTC))}
	data, err = when.Encode()
	require.NoError(t, err)
	val, _ = decodeVia(CalibrationDateTime, data)
	assert.Equal(t, when, val)

	// out of range fields are kept
	odd := DateTime{DateTimeNumber{2016, 12, 31, 23, 59, 60}}
	data, err = odd.Encode()
	require.NoError(t, err)
	val, _ = decodeVia(CalibrationDateTime, data)
	assert.Equal(t, odd, val)
	again, err := val.Encode()
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestTextDescriptionRoundTrip(t *testing.T) {
	d := &TextDescription{
		ASCII:      "Hello",
		Unicode:    "Hellö wörld",
		ScriptCode: ScriptRoman,
		Macintosh:  "Hellö",
	}
	data, err := d.Encode()
	require.NoError(t, err)

	val, warnings := decodeVia(ProfileDescription, data)
	assert.Empty(t, warnings)
	assert.Equal(t, d, val)
	assert.Equal(t, "Hellö wörld", val.(*TextDescription).String())

	// non-ASCII characters in the ASCII part are replaced
	data, err = (&TextDescription{ASCII: "Größe"}).Encode()
	require.NoError(t, err)
	val, _ = decodeVia(ProfileDescription, data)
	assert.Equal(t, "Gr??e", val.(*TextDescription).ASCII)
}

func TestTextDescriptionString(t *testing.T) {
	d := &TextDescription{ASCII: "plain", Macintosh: "Mäc"}
	assert.Equal(t, "Mäc", d.String())

	d.Unicode = "Ünicode"
	assert.Equal(t, "Ünicode", d.String())

	d = &TextDescription{ASCII: "plain"}
	assert.Equal(t, "plain", d.String())
}

func TestTextDescriptionRepairs(t *testing.T) {
	type testCase struct {
		name    string
		data    []byte
		unicode string
		warn    bool
	}
	cases := []testCase{
		{
			name:    "big endian",
			data:    descPayload("Hi", 4, []byte{0xFE, 0xFF, 0, 'H', 0, 'i', 0, 0}, 0, []byte{}),
			unicode: "Hi",
		},
		{
			name:    "little endian byte order mark on big endian data",
			data:    descPayload("Hi", 4, []byte{0xFF, 0xFE, 0, 'H', 0, 'i', 0, 0}, 0, []byte{}),
			unicode: "Hi",
			warn:    true,
		},
		{
			name:    "little endian with spaces for zero bytes",
			data:    descPayload("Hi", 4, []byte{0xFE, 0xFF, 'H', ' ', 'i', ' ', 0, 0}, 0, []byte{}),
			unicode: "Hi",
			warn:    true,
		},
		{
			name:    "little endian",
			data:    descPayload("Hi", 4, []byte{0xFF, 0xFE, 'H', 0, 'i', 0, 0, 0}, 0, []byte{}),
			unicode: "Hi",
		},
		{
			name:    "single byte string",
			data:    descPayload("Hi", 3, []byte("Hi\x00"), 0, []byte{}),
			unicode: "Hi",
			warn:    true,
		},
		{
			name:    "length in bytes",
			data:    descPayload("Hi", 8, []byte{0xFE, 0xFF, 0, 'H', 0, 'i', 0, 0}, 0, nil),
			unicode: "Hi",
			warn:    true,
		},
		{
			name:    "embedded NUL",
			data:    descPayload("Hi", 6, []byte{0xFE, 0xFF, 0, 'H', 0, 0, 0, 'i', 0, 'j', 0, 0}, 0, []byte{}),
			unicode: "",
			warn:    true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			val, warnings := decodeVia(ProfileDescription, tc.data)
			d, ok := val.(*TextDescription)
			require.True(t, ok, "got %T", val)
			assert.Equal(t, "Hi", d.ASCII)
			assert.Equal(t, tc.unicode, d.Unicode)
			if tc.warn {
				require.Len(t, warnings, 1)
				var w *EncodingRecoveryWarning
				require.ErrorAs(t, warnings[0], &w)
				assert.Equal(t, ProfileDescription, w.Tag)
			} else {
				assert.Empty(t, warnings)
			}
		})
	}
}

func TestTextDescriptionMacScripts(t *testing.T) {
	data := descPayload("Hi", 0, nil, ScriptCyrillic, []byte{0x80, 0x81, 0})
	val, _ := decodeVia(ProfileDescription, data)
	d := val.(*TextDescription)
	assert.Equal(t, "АБ", d.Macintosh)

	// Unsupported scripts are kept as bytes.
	data = descPayload("Hi", 0, nil, 1, []byte("ab\x00"))
	val, _ = decodeVia(ProfileDescription, data)
	d = val.(*TextDescription)
	assert.Equal(t, "", d.Macintosh)
	again, err := d.Encode()
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestTextDescriptionTruncated(t *testing.T) {
	data := descPayload("Hello", 0, nil, 0, nil)
	val, warnings := decodeVia(ProfileDescription, data[:14])
	assert.IsType(t, &RawTag{}, val)
	require.Len(t, warnings, 1)
	assert.ErrorIs(t, warnings[0], errInvalidTagData)
}
