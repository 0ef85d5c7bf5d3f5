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

import "sort"

// Interp performs one-dimensional linear interpolation of the points
// (xp[i], fp[i]) at x.
//
// The xp values need not be sorted.  An exact match returns the value of
// the first matching point.  Values of x before xp[0] or after the last
// point return the first or last value, respectively.  Otherwise, the
// result interpolates between the last point below x and the first point
// above x.
func Interp(x float64, xp, fp []float64) float64 {
	n := len(xp)
	if n == 0 {
		return x
	}
	for i, v := range xp {
		if v == x {
			return fp[i]
		}
	}
	if x < xp[0] {
		return fp[0]
	} else if x > xp[n-1] {
		return fp[n-1]
	}

	lower, higher := 0, n-1
	for i, v := range xp {
		if v < x && i > lower {
			lower = i
		} else if v > x && i < higher {
			higher = i
		}
	}
	return lerp(x, xp[lower], xp[higher], fp[lower], fp[higher])
}

// Interpolator is a piecewise linear function through points with
// non-decreasing x coordinates.  The zero value is the identity.
//
// An Interpolator is immutable and safe for concurrent use.
type Interpolator struct {
	xp, fp []float64
}

// NewInterpolator returns the piecewise linear function through the given
// points.  The slices are copied.
func NewInterpolator(xp, fp []float64) *Interpolator {
	n := min(len(xp), len(fp))
	return &Interpolator{
		xp: append([]float64(nil), xp[:n]...),
		fp: append([]float64(nil), fp[:n]...),
	}
}

// At evaluates the function at x.  Outside the range of the points, the
// function is constant.
func (f *Interpolator) At(x float64) float64 {
	n := len(f.xp)
	if n == 0 {
		return x
	}
	if x <= f.xp[0] {
		return f.fp[0]
	} else if x >= f.xp[n-1] {
		// the first point with the maximal x coordinate
		k := sort.SearchFloat64s(f.xp, f.xp[n-1])
		return f.fp[k]
	}
	k := sort.SearchFloat64s(f.xp, x) // f.xp[k] >= x
	if f.xp[k] == x {
		return f.fp[k]
	}
	return lerp(x, f.xp[k-1], f.xp[k], f.fp[k-1], f.fp[k])
}

func lerp(x, x0, x1, y0, y1 float64) float64 {
	if x1 == x0 {
		return y0
	}
	return y0 + (y1-y0)*(x-x0)/(x1-x0)
}
