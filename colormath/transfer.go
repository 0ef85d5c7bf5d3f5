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
	"fmt"
	"math"
)

// Codes for the standard transfer functions understood by [SpecialPow].
// The reciprocal of a code selects the inverse function, e.g.
// SpecialPow(x, 1/SRGB) encodes linear light as sRGB.
const (
	SRGB      = -2.4
	LStar     = -3.0
	SMPTE240M = -240.0
	Rec601    = -601.0
	Rec709    = -709.0
	SMPTE2084 = -2084.0
)

const (
	rec709K0     = 0.081
	rec709P      = 4.5
	smpte240MK0  = 0.0913
	smpte240MP   = 4.0
	srgbK0       = 0.04045
	srgbP        = 12.92
	smpte2084M1  = 2610.0 / 4096 * 0.25
	smpte2084M2  = 2523.0 / 4096 * 128
	smpte2084C1  = 3424.0 / 4096
	smpte2084C2  = 2413.0 / 4096 * 32
	smpte2084C3  = 2392.0 / 4096 * 32
	hlgA         = 0.17883277
	hlgB         = 1 - 4*hlgA
	lstarOffset  = 0.16
	lstarScale   = 1.16
	lstarLinearY = 0.08
)

var hlgC = 0.5 - hlgA*math.Log(4*hlgA)

// SpecialPow evaluates a power law (b >= 0) or one of the standard transfer
// functions selected by a negative code.  Negative inputs are mirrored.
func SpecialPow(a, b float64) (float64, error) {
	if b >= 0 {
		if a < 0 {
			return -math.Pow(-a, b), nil
		}
		return math.Pow(a, b), nil
	}

	sign := 1.0
	if a < 0 {
		sign = -1
		a = -a
	}

	var v float64
	switch b {
	case 1 / Rec601, 1 / Rec709:
		if a < rec709K0/rec709P {
			v = a * rec709P
		} else {
			v = 1.099*math.Pow(a, 0.45) - 0.099
		}
	case 1 / SMPTE240M:
		if a < smpte240MK0/smpte240MP {
			v = a * smpte240MP
		} else {
			v = 1.1115*math.Pow(a, 0.45) - 0.1115
		}
	case 1 / LStar:
		if a <= lstarE {
			v = 0.01 * a * lstarK
		} else {
			v = lstarScale*math.Cbrt(a) - lstarOffset
		}
	case 1 / SRGB:
		if a <= srgbK0/srgbP {
			v = a * srgbP
		} else {
			v = 1.055*math.Pow(a, 1/2.4) - 0.055
		}
	case 1 / SMPTE2084:
		p := math.Pow(a, smpte2084M1)
		v = math.Pow((2413*p+107)/(2392*p+128), smpte2084M2)
	case SRGB:
		if a <= srgbK0 {
			v = a / srgbP
		} else {
			v = math.Pow((a+0.055)/1.055, 2.4)
		}
	case LStar:
		if a <= lstarLinearY {
			v = 100 * a / lstarK
		} else {
			v = math.Pow((a+lstarOffset)/lstarScale, 3)
		}
	case SMPTE240M:
		if a < smpte240MK0 {
			v = a / smpte240MP
		} else {
			v = math.Pow((0.1115+a)/1.1115, 1/0.45)
		}
	case Rec601, Rec709:
		if a < rec709K0 {
			v = a / rec709P
		} else {
			v = math.Pow((a+0.099)/1.099, 1/0.45)
		}
	case SMPTE2084:
		p := math.Pow(a, 1/smpte2084M2)
		v = math.Pow(math.Max(p-smpte2084C1, 0)/(smpte2084C2-smpte2084C3*p), 1/smpte2084M1)
	default:
		return 0, fmt.Errorf("colormath: invalid transfer function %g", b)
	}
	return v * sign, nil
}

// HLGOETF is the hybrid log-gamma opto-electronic transfer function of
// ITU-R BT.2100, mapping relative scene light in [0, 1] to a signal value.
// If inverse is set, the signal is mapped back to scene light.
func HLGOETF(v float64, inverse bool) float64 {
	if v == 1 {
		return 1
	}
	if inverse {
		if v >= 0 && v <= 0.5 {
			return v * v / 3
		}
		return (math.Exp((v-hlgC)/hlgA) + hlgB) / 12
	}
	if v >= 0 && v <= 1.0/12 {
		return math.Sqrt(3 * v)
	}
	return hlgA*math.Log(12*v-hlgB) + hlgC
}

// Gamma estimates the exponent of a power law through the given (x, y)
// points, each scaled by scale.  Output values are first normalised with
// vmin and vmax.  Points outside the open unit interval or with
// non-positive output are ignored.  The result is the average of the
// per-point exponents, or 0 if no point qualifies.
func Gamma(points [][2]float64, scale, vmin, vmax float64) float64 {
	gammas := PointGammas(points, scale, vmin, vmax)
	if len(gammas) == 0 {
		return 0
	}
	sum := 0.0
	for _, g := range gammas {
		sum += g
	}
	return sum / float64(len(gammas))
}

// PointGammas returns the individual exponents considered by [Gamma].
func PointGammas(points [][2]float64, scale, vmin, vmax float64) []float64 {
	vmin /= scale
	vmax /= scale
	var gammas []float64
	for _, p := range points {
		x := p[0] / scale
		y := (p[1]/scale - vmin) * (vmax + vmin)
		if x > 0 && x < 1 && y > 0 {
			gammas = append(gammas, math.Log(y)/math.Log(x))
		}
	}
	return gammas
}
