package dsp

import "github.com/ben-michell/psxdmh"

// Resampler is implemented by the resampling modules. The input and output
// rates control the resampling; their actual values are irrelevant, all
// that matters is their ratio. Source audio at the input rate keeps its
// pitch when output at the output rate. RateIn may be changed at runtime,
// which is how pitch bends are applied without re-priming the resampler.
type Resampler[S psxdmh.Sample[S]] interface {
	psxdmh.Module[S]

	// RateIn returns the input sample rate.
	RateIn() uint32

	// SetRateIn changes the input sample rate.
	SetRateIn(rate uint32)

	// RateOut returns the output sample rate.
	RateOut() uint32
}

// Linear resamples by linear interpolation. This should not be used on
// actual audio data as it will produce poor quality sound. It is, however,
// fine for resampling the envelope since it is quite linear in nature.
type Linear[S psxdmh.Sample[S]] struct {
	source  psxdmh.Module[S]
	rateIn  uint32
	rateOut uint32

	// Current fractional position between samples. There are rateOut
	// fractional steps between samples.
	fractionalPosition uint32

	// Buffered samples. The buffer is always filled.
	buffer [2]S

	// Index of the last real source sample within the buffer. The
	// resampler runs until the last real sample has moved out.
	lastLiveSample int
}

// NewLinear wraps source in a linear resampler.
func NewLinear[S psxdmh.Sample[S]](source psxdmh.Module[S], rateIn, rateOut uint32) *Linear[S] {
	r := &Linear[S]{
		source:         source,
		rateIn:         rateIn,
		rateOut:        rateOut,
		lastLiveSample: 1,
	}
	source.Next(&r.buffer[0])
	source.Next(&r.buffer[1])
	return r
}

// RateIn returns the input sample rate.
func (r *Linear[S]) RateIn() uint32 { return r.rateIn }

// SetRateIn changes the input sample rate.
func (r *Linear[S]) SetRateIn(rate uint32) { r.rateIn = rate }

// RateOut returns the output sample rate.
func (r *Linear[S]) RateOut() uint32 { return r.rateOut }

// IsRunning tests whether the resampler can still produce output.
func (r *Linear[S]) IsRunning() bool { return r.lastLiveSample >= 0 }

// Next produces the next sample.
func (r *Linear[S]) Next(s *S) bool {
	if r.lastLiveSample < 0 {
		var zero S
		*s = zero
		return false
	}

	// Interpolate at the current position, handling the case of sitting
	// exactly on a source sample.
	step := r.rateOut
	if r.fractionalPosition == 0 {
		*s = r.buffer[0]
	} else {
		pos := psxdmh.Mono(r.fractionalPosition) / psxdmh.Mono(step)
		*s = r.buffer[0].Scale(1 - pos).Add(r.buffer[1].Scale(pos))
	}

	// Advance through the data and replenish the buffer as required.
	r.fractionalPosition += r.rateIn
	for r.fractionalPosition >= step && r.lastLiveSample >= 0 {
		r.fractionalPosition -= step
		r.buffer[0] = r.buffer[1]
		if !r.source.Next(&r.buffer[1]) {
			// Track the last real sample once the source has finished.
			r.lastLiveSample--
		}
	}
	return true
}
