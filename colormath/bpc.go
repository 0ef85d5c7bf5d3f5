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

// DefaultBlackPower is the exponent used when blending towards a black
// point.  Larger values concentrate the change closer to black.
const DefaultBlackPower = 40.0

// ErrWhiteBlack is returned when a black point has the lightness of white.
var ErrWhiteBlack = errors.New("colormath: black point L* is 100")

// ApplyBPC applies linear black point compensation, mapping bpIn to bpOut
// while keeping the white point wp fixed.
//
// If weight is set, the compensation fades out with increasing lightness.
func ApplyBPC(xyz, bpIn, bpOut, wp [3]float64, weight bool) [3]float64 {
	if weight {
		L := XYZToLab(xyz, D50)[0]
		inLab := XYZToLab(bpIn, D50)
		outLab := XYZToLab(bpOut, D50)
		vv := clamp01(1 - (L-inLab[0])/(100-inLab[0]))
		ref := math.Max(inLab[0], outLab[0])
		if ref == 0 {
			ref = 1
		}
		vv = math.Pow(vv, math.Min(40, 40/ref))
		bpIn = LabToXYZ(scale3(inLab, vv), D50)
		bpOut = LabToXYZ(scale3(outLab, vv), D50)
	}
	var res [3]float64
	for i, v := range xyz {
		res[i] = ((wp[i]-bpOut[i])*v - wp[i]*(bpIn[i]-bpOut[i])) / (wp[i] - bpIn[i])
	}
	return res
}

// BlendAB shifts the a* and b* coordinates of xyz towards (sign > 0) or
// away from (sign < 0) the chromaticity of the black point bp.  The shift
// is strongest at the lightness of bp and vanishes towards white.
func BlendAB(xyz, bp, wp [3]float64, power, sign float64) ([3]float64, error) {
	if xyz[1] < 0 {
		return [3]float64{}, nil
	}
	lab := XYZToLab(xyz, wp)
	bpLab := XYZToLab(bp, wp)
	if bpLab[0] == 100 {
		return [3]float64{}, ErrWhiteBlack
	}
	vv := clamp01(1 - (lab[0]-bpLab[0])/(100-bpLab[0]))
	vv = math.Pow(vv, power) * sign
	lab[1] += vv * bpLab[1]
	lab[2] += vv * bpLab[2]
	return LabToXYZ(lab, wp), nil
}

// BlendBlackpoint removes the black point bpIn from xyz and then blends
// towards the black point bpOut.  A zero black point skips the
// corresponding step.
func BlendBlackpoint(xyz, bpIn, bpOut, wp [3]float64, power float64) ([3]float64, error) {
	var err error
	if bpIn != [3]float64{} {
		bpWP := scale3(wp, bpIn[1]/wp[1])
		xyz, err = BlendAB(xyz, bpIn, wp, power, -1)
		if err != nil {
			return xyz, err
		}
		xyz = ApplyBPC(xyz, bpWP, [3]float64{}, wp, false)
	}
	if bpOut != [3]float64{} {
		bpWP := scale3(wp, bpOut[1]/wp[1])
		xyz = ApplyBPC(xyz, [3]float64{}, bpWP, wp, false)
		xyz, err = BlendAB(xyz, bpOut, wp, power, 1)
		if err != nil {
			return xyz, err
		}
	}
	return xyz, nil
}

func scale3(v [3]float64, s float64) [3]float64 {
	return [3]float64{v[0] * s, v[1] * s, v[2] * s}
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	} else if x > 1 {
		return 1
	}
	return x
}
