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

// CATNames lists the known chromatic adaptation transforms, in the order
// in which they are tried when guessing.
var CATNames = []string{
	"Bradford",
	"CAT02",
	"CAT02BS",
	"CAT97s",
	"CMCCAT2000",
	"HPE E",
	"Sharp",
	"HPE D65",
	"XYZ scaling",
	"IPT",
	"CIE2012_2",
	"BS",
	"BS-PC",
}

var catMatrices = map[string]Matrix3{
	"Bradford": {
		{0.89510, 0.26640, -0.16140},
		{-0.75020, 1.71350, 0.03670},
		{0.03890, -0.06850, 1.02960},
	},
	"CAT02": {
		{0.7328, 0.4296, -0.1624},
		{-0.7036, 1.6975, 0.0061},
		{0.0030, 0.0136, 0.9834},
	},
	// Brill and Süsstrunk
	"CAT02BS": {
		{0.7328, 0.4296, -0.1624},
		{-0.7036, 1.6975, 0.0061},
		{0.0000, 0.0000, 1.0000},
	},
	"CAT97s": {
		{0.8562, 0.3372, -0.1934},
		{-0.8360, 1.8327, 0.0033},
		{0.0357, -0.0469, 1.0112},
	},
	"CMCCAT2000": {
		{0.7982, 0.3389, -0.1371},
		{-0.5918, 1.5512, 0.0406},
		{0.0008, 0.0239, 0.9753},
	},
	// Hunt-Pointer-Estevez, equal-energy illuminant
	"HPE E": {
		{0.38971, 0.68898, -0.07868},
		{-0.22981, 1.18340, 0.04641},
		{0.00000, 0.00000, 1.00000},
	},
	// spectrally sharpened
	"Sharp": {
		{1.2694, -0.0988, -0.1706},
		{-0.8364, 1.8006, 0.0357},
		{0.0297, -0.0315, 1.0018},
	},
	// Hunt-Pointer-Estevez normalised to D65 ("von Kries")
	"HPE D65": {
		{0.40024, 0.70760, -0.08081},
		{-0.22630, 1.16532, 0.04570},
		{0.00000, 0.00000, 0.91822},
	},
	"XYZ scaling": Identity,
	"IPT": {
		{0.4002, 0.7075, -0.0807},
		{-0.2280, 1.1500, 0.0612},
		{0.0000, 0.0000, 0.9184},
	},
	// inverse CIE 2012 2° LMS to XYZ
	"CIE2012_2": {
		{0.2052445519046028, 0.8334486497310412, -0.0386932016356441},
		{-0.4972221301804286, 1.4034846060306130, 0.0937375241498157},
		{0.0000000000000000, 0.0000000000000000, 1.0000000000000000},
	},
	// Bianco and Schettini (2010)
	"BS": {
		{0.8752, 0.2787, -0.1539},
		{-0.8904, 1.8709, 0.0195},
		{-0.0061, 0.0162, 0.9899},
	},
	// Bianco and Schettini (2010), with positivity constraint
	"BS-PC": {
		{0.6489, 0.3915, -0.0404},
		{-0.3775, 1.3055, 0.0720},
		{-0.0271, 0.0888, 0.9383},
	},
}

// CAT returns the cone response matrix of the named chromatic adaptation
// transform.
func CAT(name string) (Matrix3, bool) {
	m, ok := catMatrices[name]
	return m, ok
}

// Bradford returns the Bradford cone response matrix.
func Bradford() Matrix3 {
	return catMatrices["Bradford"]
}

// LMSWPAdaptionMatrix returns the diagonal matrix which maps the cone
// response of the source white to the cone response of the destination
// white.
func LMSWPAdaptionMatrix(src, dst [3]float64, cat Matrix3) Matrix3 {
	if src[1] <= 1 && dst[1] > 1 {
		dst = [3]float64{dst[0] / dst[1] * src[1], src[1], dst[2] / dst[1] * src[1]}
	}
	if dst[1] <= 1 && src[1] > 1 {
		src = [3]float64{src[0] / src[1] * dst[1], dst[1], src[2] / src[1] * dst[1]}
	}
	s := cat.Apply(src)
	d := cat.Apply(dst)
	return Matrix3{
		{d[0] / s[0], 0, 0},
		{0, d[1] / s[1], 0},
		{0, 0, d[2] / s[2]},
	}
}

// WPAdaptionMatrix returns the XYZ to XYZ matrix which adapts colours seen
// under the white point src to the white point dst.
func WPAdaptionMatrix(src, dst [3]float64, cat Matrix3) (Matrix3, error) {
	inv, err := cat.Inverse()
	if err != nil {
		return Matrix3{}, err
	}
	return inv.Mul(LMSWPAdaptionMatrix(src, dst, cat)).Mul(cat), nil
}

// Adapt maps xyz from the white point src to the white point dst.
func Adapt(xyz, src, dst [3]float64, cat Matrix3) ([3]float64, error) {
	m, err := WPAdaptionMatrix(src, dst, cat)
	if err != nil {
		return [3]float64{}, err
	}
	return m.Apply(xyz), nil
}

// GuessCAT tries to identify the chromatic adaptation transform which was
// used to build the adaptation matrix chad, mapping src to dst.
// The identity matrix matches nothing.
func GuessCAT(chad Matrix3, src, dst [3]float64) (string, bool) {
	if chad == Identity {
		return "", false
	}
	for _, name := range CATNames {
		cat := catMatrices[name]
		catInv, err := cat.Inverse()
		if err != nil {
			continue
		}
		m, err := chad.Mul(catInv).Mul(LMSWPAdaptionMatrix(dst, src, cat)).Inverse()
		if err != nil {
			continue
		}
		if m.Similar(cat, 2) {
			return name, true
		}
	}
	return "", false
}

// MatchCAT compares m against the known cone response matrices after
// quantising both with q, and returns the name of the first match.
func MatchCAT(m Matrix3, q func(float64) float64, digits int) (string, bool) {
	mq := m.Map(q)
	for _, name := range CATNames {
		if mq.Similar(catMatrices[name].Map(q), digits) {
			return name, true
		}
	}
	return "", false
}
