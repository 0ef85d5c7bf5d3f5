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

// Package colormath implements the colour science needed to edit ICC
// profiles.
//
// All XYZ values use the nominal range [0, 1] for Y, and white points are
// given at the same scale as the values they are used with.  L*a*b* values
// use the nominal range [0, 100] for L*.
//
// The formulas follow Bruce Lindbloom's pages at http://brucelindbloom.com/.
package colormath

import "math"

// D50 is the ICC profile connection space illuminant.
var D50 = [3]float64{0.9642, 1.0, 0.8249}

// The CIE constants as intended by the standard.
const (
	lstarE = 216.0 / 24389.0
	lstarK = 24389.0 / 27.0
)

// XYZToLab converts XYZ values relative to the white point wp to CIE L*a*b*.
func XYZToLab(xyz, wp [3]float64) [3]float64 {
	var f [3]float64
	for i := range 3 {
		r := xyz[i] / wp[i]
		if r > lstarE {
			f[i] = math.Cbrt(r)
		} else {
			f[i] = (lstarK*r + 16) / 116
		}
	}
	return [3]float64{
		116*f[1] - 16,
		500 * (f[0] - f[1]),
		200 * (f[1] - f[2]),
	}
}

// LabToXYZ converts CIE L*a*b* values to XYZ relative to the white point wp.
func LabToXYZ(lab, wp [3]float64) [3]float64 {
	L, a, b := lab[0], lab[1], lab[2]
	fy := (L + 16) / 116
	fx := a/500 + fy
	fz := fy - b/200

	var xr, yr, zr float64
	if fx3 := fx * fx * fx; fx3 > lstarE {
		xr = fx3
	} else {
		xr = (116*fx - 16) / lstarK
	}
	if L > lstarK*lstarE {
		yr = fy * fy * fy
	} else {
		yr = L / lstarK
	}
	if fz3 := fz * fz * fz; fz3 > lstarE {
		zr = fz3
	} else {
		zr = (116*fz - 16) / lstarK
	}
	return [3]float64{xr * wp[0], yr * wp[1], zr * wp[2]}
}

// XYZToxyY converts XYZ to chromaticity coordinates and luminance.
// For black, the chromaticity of the white point wp is returned.
func XYZToxyY(xyz, wp [3]float64) [3]float64 {
	sum := xyz[0] + xyz[1] + xyz[2]
	if sum == 0 {
		w := XYZToxyY(wp, D50)
		return [3]float64{w[0], w[1], 0}
	}
	return [3]float64{xyz[0] / sum, xyz[1] / sum, xyz[1]}
}

// XYYToXYZ converts chromaticity coordinates and luminance to XYZ.
func XYYToXYZ(x, y, Y float64) [3]float64 {
	if y == 0 {
		return [3]float64{}
	}
	return [3]float64{x * Y / y, Y, (1 - x - y) * Y / y}
}

// LegacyPCSToLab decodes the ICC version 2 16-bit L*a*b* encoding used by
// lut16Type tables.
func LegacyPCSToLab(v [3]float64) [3]float64 {
	return [3]float64{
		v[0] / 65280 * 100,
		(v[1] - 32768) / 32768 * 128,
		(v[2] - 32768) / 32768 * 128,
	}
}

// LabToLegacyPCS is the inverse of [LegacyPCSToLab].
// The result is not clamped.
func LabToLegacyPCS(lab [3]float64) [3]float64 {
	return [3]float64{
		lab[0] * 652.80,
		lab[1]*256 + 32768,
		lab[2]*256 + 32768,
	}
}
