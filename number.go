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
	"math"
	"time"
)

// The encoders in this file never fail.  Values which do not fit into the
// target field are masked to the field width, in the same way as Go
// integer conversions.

func getUint16(data []byte, offset int) uint16 {
	return uint16(data[offset])<<8 | uint16(data[offset+1])
}

func getUint32(data []byte, offset int) uint32 {
	return uint32(data[offset])<<24 | uint32(data[offset+1])<<16 | uint32(data[offset+2])<<8 | uint32(data[offset+3])
}

func getUint64(data []byte, offset int) uint64 {
	return uint64(getUint32(data, offset))<<32 | uint64(getUint32(data, offset+4))
}

func putUint16(data []byte, offset int, value uint16) {
	data[offset] = byte(value >> 8)
	data[offset+1] = byte(value)
}

func putUint32(data []byte, offset int, value uint32) {
	data[offset] = byte(value >> 24)
	data[offset+1] = byte(value >> 16)
	data[offset+2] = byte(value >> 8)
	data[offset+3] = byte(value)
}

func putUint64(data []byte, offset int, value uint64) {
	putUint32(data, offset, uint32(value>>32))
	putUint32(data, offset+4, uint32(value))
}

// roundInt rounds half away from zero.  NaN maps to 0.
func roundInt(x float64) int64 {
	if math.IsNaN(x) {
		return 0
	}
	return int64(math.Round(x))
}

// putRoundUint16 stores round(x), masked to 16 bits.
func putRoundUint16(data []byte, offset int, x float64) {
	putUint16(data, offset, uint16(roundInt(x)))
}

// getS15Fixed16 decodes a signed 15.16 fixed-point number.
func getS15Fixed16(data []byte, offset int) float64 {
	return float64(int32(getUint32(data, offset))) / 65536
}

func putS15Fixed16(data []byte, offset int, x float64) {
	putUint32(data, offset, uint32(roundInt(x*65536)))
}

// getU16Fixed16 decodes an unsigned 16.16 fixed-point number.
func getU16Fixed16(data []byte, offset int) float64 {
	return float64(getUint32(data, offset)) / 65536
}

func putU16Fixed16(data []byte, offset int, x float64) {
	putUint32(data, offset, uint32(roundInt(x*65536)))
}

// getU8Fixed8 decodes an unsigned 8.8 fixed-point number.
func getU8Fixed8(data []byte, offset int) float64 {
	return float64(getUint16(data, offset)) / 256
}

func putU8Fixed8(data []byte, offset int, x float64) {
	putUint16(data, offset, uint16(roundInt(x*256)))
}

// DateTimeNumber is a dateTimeNumber as stored in ICC profiles: year, month,
// day, hours, minutes and seconds, in UTC.  The fields are kept exactly as
// read, so that values like the 30th of February or a leap second survive
// a decode/encode cycle.
type DateTimeNumber [6]uint16

// NewDateTimeNumber converts t to UTC and returns the corresponding
// dateTimeNumber.  Fractional seconds are discarded.  The zero time maps
// to all zero fields.
func NewDateTimeNumber(t time.Time) DateTimeNumber {
	if t.IsZero() {
		return DateTimeNumber{}
	}
	t = t.UTC()
	return DateTimeNumber{
		uint16(t.Year()),
		uint16(t.Month()),
		uint16(t.Day()),
		uint16(t.Hour()),
		uint16(t.Minute()),
		uint16(t.Second()),
	}
}

// IsZero reports whether all fields are zero.
func (d DateTimeNumber) IsZero() bool {
	return d == DateTimeNumber{}
}

// Time converts d to a [time.Time].  Fields outside the ranges allowed by
// the ICC specification give the zero time.  Otherwise values such as
// second 60 are normalized by [time.Date].
func (d DateTimeNumber) Time() time.Time {
	year, month, day, hour, minute, second := d[0], d[1], d[2], d[3], d[4], d[5]
	if year < 1900 || year > 3000 ||
		month < 1 || month > 12 ||
		day < 1 || day > 31 ||
		hour > 23 || minute > 59 || second > 61 {
		return time.Time{}
	}
	return time.Date(int(year), time.Month(month), int(day),
		int(hour), int(minute), int(second), 0, time.UTC)
}

func (d DateTimeNumber) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", d[0], d[1], d[2], d[3], d[4], d[5])
}

func getDateTime(data []byte, offset int) DateTimeNumber {
	var d DateTimeNumber
	for i := range d {
		d[i] = getUint16(data, offset+2*i)
	}
	return d
}

func putDateTime(data []byte, offset int, d DateTimeNumber) {
	for i, v := range d {
		putUint16(data, offset+2*i, v)
	}
}

// pad4 extends data with zero bytes to a multiple of four bytes.
func pad4(data []byte) []byte {
	n := (len(data) + 3) &^ 3
	if n == len(data) {
		return data
	}
	res := make([]byte, n)
	copy(res, data)
	return res
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	} else if x > hi {
		return hi
	}
	return x
}
