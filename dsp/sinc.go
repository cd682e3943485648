package dsp

import (
	"math"
	"sync"

	"github.com/ben-michell/psxdmh"
)

// sincTable holds pre-computed values of the Lanczos windowed sinc impulse.
// These tables are expensive to prepare, so they are cached process-wide
// and shared between resamplers.
type sincTable struct {
	window  uint32
	rateOut uint32
	values  []psxdmh.Mono
}

var (
	sincTableMu    sync.Mutex
	sincTableCache []*sincTable
)

// obtainSincTable returns the table for a window and output rate, creating
// and caching it on first use. Cached tables are never released; usually
// there are at most two in the cache, one for the output rate and one for
// the reverb rate.
func obtainSincTable(window, rateOut uint32) *sincTable {
	sincTableMu.Lock()
	defer sincTableMu.Unlock()
	for _, table := range sincTableCache {
		if table.window == window && table.rateOut == rateOut {
			return table
		}
	}
	table := newSincTable(window, rateOut)
	sincTableCache = append(sincTableCache, table)
	return table
}

// newSincTable computes the table values covering (-pi*window, pi*window].
//
// It would be natural to organize the values in a simple linear fashion,
// however they are accessed by striding through them (by rateOut), which
// would disperse the memory accesses and cause cache misses. Instead the
// values are grouped by the starting offset so the values used together are
// adjacent in memory.
//
// The value at pos=0 is 1.0, and the rest are given by sinc(x).sinc(x/a),
// which becomes a.sin(pi.x).sin(pi.x/a) / (pi^2.x^2).
func newSincTable(window, rateOut uint32) *sincTable {
	t := &sincTable{
		window:  window,
		rateOut: rateOut,
		values:  make([]psxdmh.Mono, rateOut*window*2),
	}
	basePos := -int32((window - 1) * rateOut)
	index := 0
	for offset := int32(0); offset < int32(rateOut); offset++ {
		pos := basePos - offset
		endPos := pos + int32(rateOut*window*2)
		scale := math.Pi / float64(rateOut)
		for ; pos < endPos; pos += int32(rateOut) {
			if pos != 0 {
				piX := scale * float64(pos)
				v := float64(window) * math.Sin(piX) * math.Sin(piX/float64(window)) / (piX * piX)
				t.values[index] = psxdmh.Mono(v).FlushDenorm()
			} else {
				t.values[index] = 1
			}
			index++
		}
	}
	return t
}

// indexForOffset returns the starting table index for an offset in the
// range [0, rateOut). There are window*2 values from that index.
func (t *sincTable) indexForOffset(offset int32) int {
	return int(offset) * int(t.window) * 2
}

// Sinc resamples with a Lanczos windowed sinc filter. When audio is being
// resampled to a lower rate the source should ideally be pre-filtered to
// remove frequencies that would exceed the Nyquist limit of the output.
type Sinc[S psxdmh.Sample[S]] struct {
	source  psxdmh.Module[S]
	rateIn  uint32
	rateOut uint32

	// Window size. Samples in the range (-window, window) are included in
	// the filter.
	window int32

	// Buffered samples. The buffer is twice the window size and always
	// filled. The first sample is always less than the window size to the
	// left of the interpolation position and is located at head.
	buffer []S
	head   int

	// Offset of the first buffered sample relative to the interpolation
	// position and (window - 1) windows, measured in fractions of a sample
	// with rateOut steps per sample.
	offset int32

	// Number of live samples in the buffer. The resampler stops when no
	// real samples are left.
	liveSamples int

	// Table of pre-computed sinc values.
	table *sincTable
}

// NewSinc wraps source in a windowed-sinc resampler. The window size must
// be at least 1. A value of 7 gives high-quality results, while 3 gives
// generally satisfactory results with some audible artifacts. Speed is
// proportional to the window size.
func NewSinc[S psxdmh.Sample[S]](source psxdmh.Module[S], window, rateIn, rateOut uint32) *Sinc[S] {
	if window < 1 {
		psxdmh.Fatal(psxdmh.InvalidConfig, "sinc window must be at least 1")
	}
	r := &Sinc[S]{
		source:      source,
		rateIn:      rateIn,
		rateOut:     rateOut,
		window:      int32(window),
		buffer:      make([]S, window*2),
		liveSamples: int(window * 2),
		table:       obtainSincTable(window, rateOut),
	}

	// Prime the buffer: repeat the first sample up to where the position
	// is 0, then start pulling in new samples. This keeps the start-up
	// delay to a single repeat of the first sample.
	source.Next(&r.buffer[0])
	pos := -int32(rateOut) * (r.window - 1)
	for index := 1; index < len(r.buffer); index++ {
		if pos <= 0 {
			r.buffer[index] = r.buffer[0]
		} else {
			source.Next(&r.buffer[index])
		}
		pos += int32(rateOut)
	}
	return r
}

// RateIn returns the input sample rate.
func (r *Sinc[S]) RateIn() uint32 { return r.rateIn }

// SetRateIn changes the input sample rate.
func (r *Sinc[S]) SetRateIn(rate uint32) { r.rateIn = rate }

// RateOut returns the output sample rate.
func (r *Sinc[S]) RateOut() uint32 { return r.rateOut }

// IsRunning tests whether the resampler can still produce output. The
// resampler runs until there are no more live samples in the window.
func (r *Sinc[S]) IsRunning() bool { return r.liveSamples > 0 }

// Next produces the next sample.
func (r *Sinc[S]) Next(s *S) bool {
	var zero S
	*s = zero
	if r.liveSamples <= 0 {
		return false
	}

	// Calculate the interpolated value at this position.
	bufferIndex := r.head
	tableIndex := r.table.indexForOffset(r.offset)
	acc := zero
	for end := tableIndex + int(r.window)*2; tableIndex < end; tableIndex++ {
		acc = acc.Add(r.buffer[bufferIndex].Scale(r.table.values[tableIndex]))
		if bufferIndex++; bufferIndex >= len(r.buffer) {
			bufferIndex = 0
		}
	}
	*s = acc.FlushDenorm()

	// Advance the filter.
	r.offset += int32(r.rateIn)
	limit := int32(r.rateOut)
	for r.offset >= limit {
		// Pull the next sample from the source if it is still running,
		// otherwise repeat the last sample.
		r.offset -= limit
		if !r.source.Next(&r.buffer[r.head]) {
			previous := r.head - 1
			if previous < 0 {
				previous = len(r.buffer) - 1
			}
			r.buffer[r.head] = r.buffer[previous]
			r.liveSamples--
		}
		if r.head++; r.head >= len(r.buffer) {
			r.head = 0
		}
	}
	return true
}
