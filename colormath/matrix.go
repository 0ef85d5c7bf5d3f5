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

package colormath

import (
	"errors"
	"math"
)

// Matrix3 is a 3×3 matrix in row-major order.
type Matrix3 [3][3]float64

// Identity is the 3×3 identity matrix.
var Identity = Matrix3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

// ErrSingular is returned when inverting a matrix without an inverse.
var ErrSingular = errors.New("colormath: singular matrix")

// Mul returns the matrix product m·n.
func (m Matrix3) Mul(n Matrix3) Matrix3 {
	var res Matrix3
	for i := range 3 {
		for j := range 3 {
			res[i][j] = m[i][0]*n[0][j] + m[i][1]*n[1][j] + m[i][2]*n[2][j]
		}
	}
	return res
}

// Apply returns m·v.
func (m Matrix3) Apply(v [3]float64) [3]float64 {
	return [3]float64{
		m[0][0]*v[0] + m[0][1]*v[1] + m[0][2]*v[2],
		m[1][0]*v[0] + m[1][1]*v[1] + m[1][2]*v[2],
		m[2][0]*v[0] + m[2][1]*v[1] + m[2][2]*v[2],
	}
}

// Inverse returns the inverse of m.
func (m Matrix3) Inverse() (Matrix3, error) {
	a, b, c := m[0][0], m[0][1], m[0][2]
	d, e, f := m[1][0], m[1][1], m[1][2]
	g, h, k := m[2][0], m[2][1], m[2][2]

	det := a*(e*k-f*h) - b*(d*k-f*g) + c*(d*h-e*g)
	if math.Abs(det) < 1e-15 {
		return Matrix3{}, ErrSingular
	}
	s := 1 / det
	return Matrix3{
		{(e*k - f*h) * s, (c*h - b*k) * s, (b*f - c*e) * s},
		{(f*g - d*k) * s, (a*k - c*g) * s, (c*d - a*f) * s},
		{(d*h - e*g) * s, (b*g - a*h) * s, (a*e - b*d) * s},
	}, nil
}

// Round rounds every entry to the given number of decimal digits.
func (m Matrix3) Round(digits int) Matrix3 {
	p := math.Pow(10, float64(digits))
	var res Matrix3
	for i := range 3 {
		for j := range 3 {
			res[i][j] = math.Round(m[i][j]*p) / p
		}
	}
	return res
}

// Map applies fn to every entry.
func (m Matrix3) Map(fn func(float64) float64) Matrix3 {
	var res Matrix3
	for i := range 3 {
		for j := range 3 {
			res[i][j] = fn(m[i][j])
		}
	}
	return res
}

// Similar reports whether m and n agree after rounding to the given number
// of decimal digits.
func (m Matrix3) Similar(n Matrix3, digits int) bool {
	return m.Round(digits) == n.Round(digits)
}

// FromColumns builds the matrix with the given column vectors.
func FromColumns(c0, c1, c2 [3]float64) Matrix3 {
	return Matrix3{
		{c0[0], c1[0], c2[0]},
		{c0[1], c1[1], c2[1]},
		{c0[2], c1[2], c2[2]},
	}
}
