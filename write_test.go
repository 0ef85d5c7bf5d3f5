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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecksumIgnoresHeaderFields(t *testing.T) {
	p := testProfile()
	sum1, err := p.Checksum()
	require.NoError(t, err)

	p.RenderingIntent = Saturation
	p.Flags = FlagEmbedded | FlagNotIndependent
	p.ID = [16]byte{1, 2, 3}
	sum2, err := p.Checksum()
	require.NoError(t, err)
	assert.Equal(t, sum1, sum2)

	p.DeviceModel = 12
	sum3, err := p.Checksum()
	require.NoError(t, err)
	assert.NotEqual(t, sum1, sum3)
}

func TestUpdateID(t *testing.T) {
	p := testProfile()
	require.NoError(t, p.UpdateID())
	data, err := p.Encode()
	require.NoError(t, err)

	q, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, CheckSumValid, q.CheckSum)
	assert.Equal(t, p.ID, q.ID)

	// changing a tag invalidates the stored ID
	p.SetTag(RedTRC, &Curve{Gamma: 1.8})
	data, err = p.Encode()
	require.NoError(t, err)
	q, err = Decode(data)
	require.NoError(t, err)
	assert.Equal(t, CheckSumInvalid, q.CheckSum)
}

func TestVersion4ID(t *testing.T) {
	p := testProfile()
	p.Version = Version4_0_0
	data, err := p.Encode()
	require.NoError(t, err)

	q, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, CheckSumValid, q.CheckSum)
	sum, err := p.Checksum()
	require.NoError(t, err)
	assert.Equal(t, sum, q.ID)
}

func TestEncodeDeduplicates(t *testing.T) {
	p := New()
	p.SetTag(RedTRC, &Curve{Gamma: 2.2})
	p.SetTag(GreenTRC, &Curve{Gamma: 2.2})
	p.SetTag(BlueTRC, &Curve{Gamma: 1.8})
	data, err := p.Encode()
	require.NoError(t, err)

	offset := func(i int) uint32 { return getUint32(data, 128+4+12*i+4) }
	assert.Equal(t, offset(0), offset(1))
	assert.NotEqual(t, offset(0), offset(2))
	for i := range 3 {
		assert.Zero(t, offset(i)%4)
	}

	// Identical content is shared in the file, but the decoded values
	// stay independent.
	q, err := Decode(data)
	require.NoError(t, err)
	r, _ := q.Tag(RedTRC)
	g, _ := q.Tag(GreenTRC)
	assert.Same(t, r, g)

	q.SetTag(GreenTRC, &Curve{Gamma: 2.4})
	g, _ = q.Tag(GreenTRC)
	assert.NotSame(t, r, g)
	assert.InDelta(t, 2.2, r.(*Curve).Gamma, 1.0/256)
}

func TestEncodeKeepsPayloadOrder(t *testing.T) {
	p := New()
	p.SetTag(RedTRC, &Curve{Gamma: 1.5})
	p.SetTag(GreenTRC, &Curve{Gamma: 1.6})
	p.SetTag(BlueTRC, &Curve{Gamma: 1.7})
	data, err := p.Encode()
	require.NoError(t, err)

	// Swap the order of the tag table entries.  The payloads must stay
	// where they are.
	first := make([]byte, 12)
	copy(first, data[132:144])
	copy(data[132:144], data[156:168])
	copy(data[156:168], first)

	q, err := Decode(data)
	require.NoError(t, err)
	again, err := q.Encode()
	require.NoError(t, err)
	assert.Equal(t, data, again)
	assert.Equal(t, []TagType{BlueTRC, GreenTRC, RedTRC}, q.Signatures())
}

func TestTagEditing(t *testing.T) {
	p := testProfile()
	assert.Equal(t, 3, p.Len())
	assert.True(t, p.Has(RedTRC))

	require.NoError(t, p.LinkTag(GreenTRC, RedTRC))
	err := p.LinkTag(BlueTRC, ChromaticityTag)
	assert.True(t, errors.Is(err, ErrMissingTag))
	assert.False(t, p.Has(BlueTRC))

	p.DeleteTag(RedTRC)
	assert.False(t, p.Has(RedTRC))
	assert.Equal(t, []TagType{ProfileDescription, MediaWhitePoint, GreenTRC}, p.Signatures())

	// the linked tag keeps its value
	c, err := p.curve(GreenTRC)
	require.NoError(t, err)
	assert.Equal(t, 2.2, c.Gamma)

	_, err = p.TagData(RedTRC)
	assert.True(t, errors.Is(err, ErrMissingTag))

	data, err := p.TagData(GreenTRC)
	require.NoError(t, err)
	assert.Equal(t, []byte("curv\x00\x00\x00\x00\x00\x00\x00\x01\x02\x33"), data)
}

func TestCurveBytesRoundTrip(t *testing.T) {
	p := New()
	p.SetTag(RedTRC, &RawTag{Data: []byte("curv\x00\x00\x00\x00\x00\x00\x00\x01\x02\x34")})
	data, err := p.Encode()
	require.NoError(t, err)

	q, err := Decode(data)
	require.NoError(t, err)
	c, err := q.curve(RedTRC)
	require.NoError(t, err)
	assert.InDelta(t, 2.203125, c.Gamma, 1e-9)

	again, err := q.Encode()
	require.NoError(t, err)
	assert.Equal(t, data, again)
}
