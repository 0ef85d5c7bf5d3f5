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
	"bytes"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Text is the value of a textType tag.
type Text string

func decodeText(data []byte, _ TagType, _ *Profile) (TagValue, error) {
	err := checkType(data, TypeText)
	if err != nil {
		return nil, err
	}
	return Text(bytes.TrimRight(data[8:], "\x00")), nil
}

// TypeSignature implements the [TagValue] interface.
func (t Text) TypeSignature() TypeSignature { return TypeText }

// Encode implements the [TagValue] interface.
func (t Text) Encode() ([]byte, error) {
	buf := newPayload(TypeText, 8+len(t)+1)
	copy(buf[8:], t)
	return buf, nil
}

// Signature is the value of a signatureType tag, for example the "tech"
// tag.
type Signature uint32

func decodeSignature(data []byte, _ TagType, _ *Profile) (TagValue, error) {
	err := checkType(data, TypeSignatureType)
	if err != nil {
		return nil, err
	}
	if len(data) < 12 {
		return nil, errInvalidTagData
	}
	return Signature(getUint32(data, 8)), nil
}

func (s Signature) String() string {
	return sigString(uint32(s))
}

// TypeSignature implements the [TagValue] interface.
func (s Signature) TypeSignature() TypeSignature { return TypeSignatureType }

// Encode implements the [TagValue] interface.
func (s Signature) Encode() ([]byte, error) {
	buf := newPayload(TypeSignatureType, 12)
	putUint32(buf, 8, uint32(s))
	return buf, nil
}

// DateTime is the value of a dateTimeType tag, for example the "calt" tag.
type DateTime struct {
	DateTimeNumber
}

func decodeDateTime(data []byte, _ TagType, _ *Profile) (TagValue, error) {
	err := checkType(data, TypeDateTime)
	if err != nil {
		return nil, err
	}
	if len(data) < 20 {
		return nil, errInvalidTagData
	}
	return DateTime{getDateTime(data, 8)}, nil
}

// TypeSignature implements the [TagValue] interface.
func (d DateTime) TypeSignature() TypeSignature { return TypeDateTime }

// Encode implements the [TagValue] interface.
func (d DateTime) Encode() ([]byte, error) {
	buf := newPayload(TypeDateTime, 20)
	putDateTime(buf, 8, d.DateTimeNumber)
	return buf, nil
}

// TextDescription is the value of a textDescriptionType tag, used for
// descriptions in version 2 profiles.
//
// The tag holds up to three versions of the same text: a 7-bit ASCII
// version, an optional Unicode version and an optional version in a
// Macintosh script encoding.
type TextDescription struct {
	ASCII string

	Unicode         string
	UnicodeLanguage uint32

	ScriptCode uint16
	Macintosh  string

	// macRaw holds the Macintosh part if the script code is not supported.
	macRaw []byte
}

// Supported Macintosh script codes.
const (
	ScriptRoman    uint16 = 0
	ScriptCyrillic uint16 = 7
)

func macCharmap(script uint16) *charmap.Charmap {
	switch script {
	case ScriptRoman:
		return charmap.Macintosh
	case ScriptCyrillic:
		return charmap.MacintoshCyrillic
	}
	return nil
}

var (
	utf16BE = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	utf16LE = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
)

const descTrim = "\x00\n\r "

func decodeTextDescription(data []byte, sig TagType, p *Profile) (TagValue, error) {
	err := checkType(data, TypeTextDescription)
	if err != nil {
		return nil, err
	}
	if len(data) < 12 {
		return nil, errInvalidTagData
	}
	warn := func(reason string) {
		p.warn(&EncodingRecoveryWarning{Tag: sig, Reason: reason})
	}

	d := &TextDescription{}
	asciiLen := uint64(getUint32(data, 8))
	if 12+asciiLen+8 > uint64(len(data)) {
		return nil, errInvalidTagData
	}
	d.ASCII = strings.Trim(string(data[12:12+asciiLen]), descTrim)

	uniOffset := 12 + int(asciiLen)
	d.UnicodeLanguage = getUint32(data, uniOffset)
	uniLen := int(getUint32(data, uniOffset+4))
	start := uniOffset + 8
	charBytes := 1
	if uniLen > 0 {
		if uint64(start)+2*uint64(uniLen) > uint64(len(data)) {
			warn("Unicode length counts bytes instead of characters")
			uniLen /= 2
		}
		if start+uniLen+2 <= len(data) && data[start+uniLen] == 0 && data[start+uniLen+1] == 0 {
			warn("Unicode part is a single-byte string")
		} else {
			charBytes = 2
		}
		end := start + uniLen*charBytes
		if end > len(data) {
			return nil, errInvalidTagData
		}
		d.Unicode = decodeDescUnicode(data[start:end], uniLen, charBytes, warn)
	}

	macOffset := start + uniLen*charBytes
	if len(data) > macOffset+2 {
		d.ScriptCode = getUint16(data, macOffset)
		macLen := int(data[macOffset+2])
		macEnd := min(macOffset+3+macLen, len(data))
		raw := data[macOffset+3 : macEnd]
		if macLen > 0 {
			if cm := macCharmap(d.ScriptCode); cm != nil {
				s, _ := cm.NewDecoder().Bytes(raw)
				d.Macintosh = strings.Trim(string(s), descTrim)
			} else {
				d.macRaw = bytes.TrimRight(bytes.Clone(raw), "\x00")
			}
		}
	}
	return d, nil
}

// decodeDescUnicode decodes the Unicode part of a textDescriptionType tag.
// Some encoders write byte order marks which do not match the data; these
// cases are detected and repaired.
func decodeDescUnicode(b []byte, count, charBytes int, warn func(string)) string {
	var s string
	switch {
	case charBytes == 1:
		s = strings.ToValidUTF8(string(b), "�")
	case bytes.HasPrefix(b, []byte{0xFE, 0xFF}):
		b = b[2:]
		if parts := bytes.Split(b, []byte{' '}); len(parts) == count-1 {
			warn("UTF-16BE byte order mark on UTF-16LE data")
			s = decodeWith(utf16LE, bytes.Join(parts, []byte{0}))
		} else {
			s = decodeWith(utf16BE, b)
		}
	case bytes.HasPrefix(b, []byte{0xFF, 0xFE}):
		b = b[2:]
		if len(b) > 0 && b[0] == 0 {
			warn("UTF-16LE byte order mark on UTF-16BE data")
			s = decodeWith(utf16BE, b)
		} else {
			s = decodeWith(utf16LE, b)
		}
	default:
		s = decodeWith(utf16BE, b)
	}
	s = strings.Trim(s, descTrim)
	if strings.ContainsRune(s, 0) {
		warn("Unicode part contains NUL characters")
		return ""
	}
	return s
}

func decodeWith(enc encoding.Encoding, b []byte) string {
	if len(b)%2 != 0 {
		b = b[:len(b)-1]
	}
	res, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return ""
	}
	return string(res)
}

// String returns the best available version of the description.
func (d *TextDescription) String() string {
	if d.Unicode != "" {
		return d.Unicode
	}
	if d.Macintosh != "" && len(d.ASCII) < 67 {
		return d.Macintosh
	}
	return d.ASCII
}

// TypeSignature implements the [TagValue] interface.
func (d *TextDescription) TypeSignature() TypeSignature { return TypeTextDescription }

// Encode implements the [TagValue] interface.
func (d *TextDescription) Encode() ([]byte, error) {
	ascii := []byte(strings.Map(func(r rune) rune {
		if r >= 0x80 {
			return '?'
		}
		return r
	}, d.ASCII))

	var uni []byte
	uniCount := 0
	if d.Unicode != "" {
		enc, err := utf16BE.NewEncoder().Bytes([]byte(d.Unicode))
		if err != nil {
			return nil, err
		}
		uni = append([]byte{0xFE, 0xFF}, enc...)
		uni = append(uni, 0, 0)
		uniCount = len(uni) / 2
	}

	mac := d.macRaw
	if d.Macintosh != "" {
		if cm := macCharmap(d.ScriptCode); cm != nil {
			mac, _ = encoding.ReplaceUnsupported(cm.NewEncoder()).Bytes([]byte(d.Macintosh))
		}
	}
	if len(mac) > 66 {
		mac = mac[:66]
	}

	size := 12 + len(ascii) + 1 + 8 + len(uni) + 3 + 67
	buf := newPayload(TypeTextDescription, size)
	putUint32(buf, 8, uint32(len(ascii)+1))
	copy(buf[12:], ascii)
	pos := 12 + len(ascii) + 1
	putUint32(buf, pos, d.UnicodeLanguage)
	putUint32(buf, pos+4, uint32(uniCount))
	copy(buf[pos+8:], uni)
	pos += 8 + len(uni)
	putUint16(buf, pos, d.ScriptCode)
	if len(mac) > 0 {
		buf[pos+2] = byte(len(mac) + 1)
		copy(buf[pos+3:], mac)
	}
	return buf, nil
}
