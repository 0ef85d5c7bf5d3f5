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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMLUCDefault(t *testing.T) {
	m := MultiLocalizedUnicode{
		{Language: "de", Country: "DE", Value: "Hallo"},
		{Language: "en", Country: "CA", Value: "Hello, eh"},
		{Language: "en", Country: "US", Value: "Hello"},
	}
	assert.Equal(t, "Hello", m.Default())
	assert.Equal(t, "Hello", m.String())
	assert.Equal(t, "Hallo", m.Get("de", "DE"))
	assert.Equal(t, "Hello", m.Get("fr", "FR"))

	m = m[:2]
	assert.Equal(t, "Hello, eh", m.Default())
	m = m[:1]
	assert.Equal(t, "Hallo", m.Default())
	m = m[:0]
	assert.Equal(t, "", m.Default())
}

func TestMLUCSet(t *testing.T) {
	var m MultiLocalizedUnicode
	m.Set("en", "US", "Color")
	m.Set("en", "UK", "Colour")
	m.Set("en", "US", "Colors")
	want := MultiLocalizedUnicode{
		{Language: "en", Country: "US", Value: "Colors"},
		{Language: "en", Country: "UK", Value: "Colour"},
	}
	assert.Equal(t, want, m)
	assert.Equal(t, "Colour", m.Default())
}

func TestMLUCRoundTrip(t *testing.T) {
	m := &MultiLocalizedUnicode{
		{Language: "en", Country: "US", Value: "Color"},
		{Language: "en", Country: "UK", Value: "Colour"},
		{Language: "en", Country: "CA", Value: "Colour"},
		{Language: "de", Country: "DE", Value: "Farbe größer"},
	}
	data, err := m.Encode()
	require.NoError(t, err)

	// the two identical strings are stored once
	assert.Len(t, data, 16+4*12+2*(5+6+12))
	assert.Equal(t, getUint32(data, 16+12+8), getUint32(data, 16+24+8))

	val, warnings := decodeVia(ProfileDescription, data)
	assert.Empty(t, warnings)
	assert.Equal(t, m, val)
}

func TestMLUCRecordSize(t *testing.T) {
	data := []byte("mluc\x00\x00\x00\x00" +
		"\x00\x00\x00\x01\x00\x00\x00\x10" +
		"enUS\x00\x00\x00\x04\x00\x00\x00\x20\x00\x00\x00\x00" +
		"\x00H\x00i")
	val, warnings := decodeVia(ProfileDescription, data)
	require.Len(t, warnings, 1)
	assert.IsType(t, &EncodingRecoveryWarning{}, warnings[0])
	m, ok := val.(*MultiLocalizedUnicode)
	require.True(t, ok)
	assert.Equal(t, "Hi", m.Get("en", "US"))

	_, warnings = decodeVia(ProfileDescription, data[:30])
	require.Len(t, warnings, 2)
	assert.ErrorIs(t, warnings[1], errInvalidTagData)
}
