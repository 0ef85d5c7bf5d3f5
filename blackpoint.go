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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/kovidgoyal/go-parallel"

	"seehuhn.de/go/iccedit/colormath"
)

// ErrAborted is returned when a black point operation is cancelled.
// The returned error also wraps the cause of the cancellation.
var ErrAborted = errors.New("iccedit: black point operation aborted")

// BlackPointOptions controls the black point operations on LUT16 tables.
// The zero value selects default values for all fields.
type BlackPointOptions struct {
	// Power is the blend exponent for black offsets.  Larger values
	// concentrate the change near black.  The default is
	// [colormath.DefaultBlackPower].
	Power float64

	// Weight makes black point compensation fade out with increasing
	// lightness.
	Weight bool

	// PCS is the profile connection space of the table values.  If this
	// is zero, CIEXYZ is assumed.
	PCS ColorSpace

	// Workers is the number of goroutines used.  If this is zero, one
	// goroutine is used for grids with fewer than 33 points per axis,
	// and one per CPU otherwise.
	Workers int

	// Progress, if set, is called after each cLUT row with the number of
	// rows completed so far and the total number of rows.  Calls are
	// serialised, and done increases with each call.
	Progress func(done, total int)

	// Logger receives debug messages.  If nil, nothing is logged.
	Logger *slog.Logger
}

func (opts *BlackPointOptions) logger() *slog.Logger {
	if opts.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return opts.Logger
}

// ApplyBlackOffset blends the colours of the cLUT towards the black point
// bp, given in PCS-relative XYZ.  The current black point of the table,
// the cLUT cell (0, ..., 0), is removed first.
//
// If ctx is cancelled, the operation stops and the table is left
// unchanged.
func (l *LUT16) ApplyBlackOffset(ctx context.Context, bp [3]float64, opts *BlackPointOptions) error {
	return l.applyBlack(ctx, bp, false, opts)
}

// ApplyBPC applies black point compensation to the cLUT, mapping the
// current black point of the table to bp while keeping the white point
// (the last cLUT cell) fixed.
//
// If ctx is cancelled, the operation stops and the table is left
// unchanged.
func (l *LUT16) ApplyBPC(ctx context.Context, bp [3]float64, opts *BlackPointOptions) error {
	return l.applyBlack(ctx, bp, true, opts)
}

func (l *LUT16) applyBlack(ctx context.Context, bpOut [3]float64, useBPC bool, opts *BlackPointOptions) error {
	if opts == nil {
		opts = &BlackPointOptions{}
	}
	method := "ApplyBlackOffset"
	if useBPC {
		method = "ApplyBPC"
	}
	logger := opts.logger().With("op", method)

	pcs := opts.PCS
	switch pcs {
	case 0:
		logger.Debug("PCS not specified, assuming XYZ")
		pcs = PCSXYZSpace
	case PCSXYZSpace, PCSLabSpace:
	default:
		return &UnsupportedPCSError{Op: method, PCS: pcs}
	}
	if l.outputChannels != 3 {
		return fmt.Errorf("iccedit: %s needs 3 output channels, not %d", method, l.outputChannels)
	}

	clut := l.table()
	o := l.outputChannels
	bpRow := slices.Clone(clut[:o])
	wpRow := slices.Clone(clut[len(clut)-o:])

	var fwd, rev []func(float64) float64
	if !useBPC || bpOut != [3]float64{} {
		output := l.Output()
		orange := make([]float64, l.outputEntries)
		for k := range orange {
			orange[k] = float64(k) / float64(l.outputEntries-1) * 65535
		}
		for c := range 3 {
			fwd = append(fwd, curveFunc(orange, output[c]))
			rev = append(rev, curveFunc(output[c], orange))
		}
		for c := range 3 {
			bpRow[c] = fwd[c](bpRow[c])
			wpRow[c] = fwd[c](wpRow[c])
		}
	}

	bp := pcsToXYZ(pcs, [3]float64(bpRow))
	wp := pcsToXYZ(pcs, [3]float64(wpRow))
	if sameBlack(bp, bpOut) {
		logger.Debug("black point unchanged", "black", bp)
		return nil
	}

	power := opts.Power
	if power == 0 {
		power = colormath.DefaultBlackPower
	}
	var fn func([3]float64) ([3]float64, error)
	if useBPC {
		fn = func(xyz [3]float64) ([3]float64, error) {
			return colormath.ApplyBPC(xyz, bp, bpOut, wp, opts.Weight), nil
		}
	} else {
		fn = func(xyz [3]float64) ([3]float64, error) {
			return colormath.BlendBlackpoint(xyz, bp, bpOut, colormath.D50, power)
		}
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = 1
		if l.gridPoints >= 33 {
			workers = runtime.NumCPU()
		}
	}
	logger.Debug("processing cLUT", "black", bp, "target", bpOut, "rows", l.NumRows(), "workers", workers)

	res, err := l.mapRows(ctx, workers, opts.Progress, func(cell []float64) error {
		for c := range fwd {
			cell[c] = fwd[c](cell[c])
		}
		xyz, err := fn(pcsToXYZ(pcs, [3]float64(cell)))
		if err != nil {
			return err
		}
		v := xyzToPCS(pcs, xyz)
		copy(cell, v[:])
		for c := range rev {
			cell[c] = rev[c](cell[c])
		}
		return nil
	})
	if err != nil {
		logger.Warn("cLUT unchanged", "error", err)
		return err
	}
	l.clut = res
	logger.Debug("done")
	return nil
}

// mapRows applies fn to every cell of a copy of the cLUT, distributing the
// rows over the given number of goroutines.  The abort flag is checked
// once per row.  On error, no partial result is returned.
func (l *LUT16) mapRows(ctx context.Context, workers int, progress func(done, total int), fn func(cell []float64) error) ([]float64, error) {
	res := slices.Clone(l.table())
	rows := l.NumRows()
	rowLen := l.gridPoints * l.outputChannels
	o := l.outputChannels

	var abort atomic.Bool
	var mu sync.Mutex
	var firstErr error
	done := 0
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
		abort.Store(true)
	}

	stop := context.AfterFunc(ctx, func() {
		abort.Store(true)
	})
	defer stop()

	work := func(start, limit int) {
		for x := start; x < limit; x++ {
			if abort.Load() {
				return
			}
			row := res[x*rowLen : (x+1)*rowLen]
			for k := 0; k < rowLen; k += o {
				if err := fn(row[k : k+o]); err != nil {
					fail(err)
					return
				}
			}
			if progress != nil {
				mu.Lock()
				done++
				progress(done, rows)
				mu.Unlock()
			}
		}
	}
	err := parallel.Run_in_parallel_over_range(workers, work, 0, rows)
	if err != nil {
		return nil, err
	}
	if firstErr != nil {
		return nil, firstErr
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("%w: %w", ErrAborted, context.Cause(ctx))
	}
	return res, nil
}

// curveFunc returns the piecewise linear function through the points
// (xp[k], fp[k]).
func curveFunc(xp, fp []float64) func(float64) float64 {
	if slices.IsSorted(xp) {
		return colormath.NewInterpolator(xp, fp).At
	}
	xp = slices.Clone(xp)
	fp = slices.Clone(fp)
	return func(x float64) float64 {
		return colormath.Interp(x, xp, fp)
	}
}

// sameBlack compares two black points at the resolution of the XYZ PCS
// encoding.
func sameBlack(a, b [3]float64) bool {
	for c := range a {
		if math.Round(a[c]*32768) != math.Round(b[c]*32768) {
			return false
		}
	}
	return true
}

// pcsToXYZ converts encoded PCS values in [0, 65535] to XYZ.
func pcsToXYZ(pcs ColorSpace, v [3]float64) [3]float64 {
	if pcs == PCSLabSpace {
		return colormath.LabToXYZ(colormath.LegacyPCSToLab(v), colormath.D50)
	}
	return [3]float64{v[0] / 32768, v[1] / 32768, v[2] / 32768}
}

// xyzToPCS converts XYZ to encoded PCS values in [0, 65535].
func xyzToPCS(pcs ColorSpace, xyz [3]float64) [3]float64 {
	var res [3]float64
	if pcs == PCSLabSpace {
		v := colormath.LabToLegacyPCS(colormath.XYZToLab(xyz, colormath.D50))
		for c := range res {
			res[c] = clamp(v[c], 0, 65535)
		}
		return res
	}
	for c := range res {
		res[c] = min(max(0, xyz[c])*32768, 65535)
	}
	return res
}

// ApplyBlackOffset blends all colours of the profile towards the black
// point xyz, given in PCS-relative XYZ.
//
// This updates each distinct LUT16 table among the A2B0, A2B1 and A2B2
// tags, sets the media black point and, for matrix/TRC profiles, rewrites
// the red, green and blue TRC tags.
func (p *Profile) ApplyBlackOffset(ctx context.Context, xyz [3]float64, opts *BlackPointOptions) error {
	var o BlackPointOptions
	if opts != nil {
		o = *opts
	}
	if o.PCS == 0 {
		o.PCS = p.PCS
	}

	// Check everything which can fail before the profile is changed.
	bkpt, err := p.mediaBlackpoint(xyz)
	if err != nil {
		return err
	}
	var trcs [3]*Curve
	hasTRC := p.Has(RedTRC)
	if hasTRC {
		trcs, err = p.blendTRCBlack(xyz, o.Power)
		if err != nil {
			return err
		}
	}

	var done []*LUT16
	for _, sig := range []TagType{AToB0, AToB1, AToB2} {
		val, _ := p.Tag(sig)
		lut, ok := val.(*LUT16)
		if !ok || slices.Contains(done, lut) {
			continue
		}
		if err := lut.ApplyBlackOffset(ctx, xyz, &o); err != nil {
			return fmt.Errorf("%s: %w", sig, err)
		}
		done = append(done, lut)
	}

	p.SetTag(MediaBlackPoint, XYZType{bkpt})
	if hasTRC {
		for c, sig := range []TagType{RedTRC, GreenTRC, BlueTRC} {
			p.SetTag(sig, trcs[c])
		}
	}
	return nil
}

// blendTRCBlack returns the red, green and blue TRC curves of a matrix/TRC
// profile with a black offset applied.  The profile is not changed.
func (p *Profile) blendTRCBlack(xyz [3]float64, power float64) ([3]*Curve, error) {
	if power == 0 {
		power = colormath.DefaultBlackPower
	}

	var trcs [3]*Curve
	var cols [3][3]float64
	for c, sig := range []TagType{RedColorant, GreenColorant, BlueColorant} {
		v, err := p.XYZ(sig)
		if err != nil {
			return trcs, err
		}
		cols[c] = v
	}
	mtx := colormath.FromColumns(cols[0], cols[1], cols[2])
	inv, err := mtx.Inverse()
	if err != nil {
		return trcs, err
	}

	size := 0
	for c, sig := range []TagType{RedTRC, GreenTRC, BlueTRC} {
		curve, err := p.curve(sig)
		if err != nil {
			return trcs, err
		}
		trc := &Curve{}
		if curve.isGamma() {
			err := trc.SetTRC(curve.EstimateGamma(nil), 1024, 0, 65535)
			if err != nil {
				return trcs, err
			}
		} else {
			n := len(curve.Table)
			if n < 2 {
				n = 1024
			}
			trc.Table = curve.Samples(n)
		}
		if c == 0 {
			size = len(trc.Table)
		} else if len(trc.Table) != size {
			trc.Table = trc.Samples(size)
		}
		trcs[c] = trc
	}

	rgb := func(k int) [3]float64 {
		return [3]float64{trcs[0].Table[k] / 65535, trcs[1].Table[k] / 65535, trcs[2].Table[k] / 65535}
	}
	bpIn := mtx.Apply(rgb(0))
	if bpIn == xyz {
		return trcs, nil
	}
	for k := range size {
		v, err := colormath.BlendBlackpoint(mtx.Apply(rgb(k)), bpIn, xyz, colormath.D50, power)
		if err != nil {
			return trcs, err
		}
		v = inv.Apply(v)
		for c := range trcs {
			trcs[c].Table[k] = clamp(v[c], 0, 1) * 65535
		}
	}
	return nil
}
