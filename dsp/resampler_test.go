package dsp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ben-michell/psxdmh"
	"github.com/ben-michell/psxdmh/dsp"
)

func drainMono(m psxdmh.Module[psxdmh.Mono], limit int) []psxdmh.Mono {
	var out []psxdmh.Mono
	var s psxdmh.Mono
	for len(out) < limit && m.Next(&s) {
		out = append(out, s)
	}
	return out
}

func TestLinearIdentity(t *testing.T) {
	samples := []psxdmh.Mono{0.1, 0.2, 0.3, 0.4, 0.5}
	r := dsp.NewLinear[psxdmh.Mono](&sliceSource[psxdmh.Mono]{samples: samples}, 44100, 44100)
	out := drainMono(r, 100)
	require.GreaterOrEqual(t, len(out), len(samples))
	for i, want := range samples {
		assert.InDelta(t, float64(want), float64(out[i]), 1e-6)
	}
	assert.False(t, r.IsRunning())
}

func TestLinearInterpolatesMidpoints(t *testing.T) {
	samples := []psxdmh.Mono{0, 1, 0}
	r := dsp.NewLinear[psxdmh.Mono](&sliceSource[psxdmh.Mono]{samples: samples}, 1, 2)
	out := drainMono(r, 100)
	require.GreaterOrEqual(t, len(out), 4)
	assert.InDelta(t, 0.0, float64(out[0]), 1e-6)
	assert.InDelta(t, 0.5, float64(out[1]), 1e-6)
	assert.InDelta(t, 1.0, float64(out[2]), 1e-6)
	assert.InDelta(t, 0.5, float64(out[3]), 1e-6)
}

func TestLinearRateInAdjustable(t *testing.T) {
	samples := make([]psxdmh.Mono, 50)
	r := dsp.NewLinear[psxdmh.Mono](&sliceSource[psxdmh.Mono]{samples: samples}, 2, 1)
	r.SetRateIn(4)
	assert.Equal(t, uint32(4), r.RateIn())
	var s psxdmh.Mono
	for r.Next(&s) {
	}
	assert.False(t, r.IsRunning())
}

func TestSincIdentity(t *testing.T) {
	// At equal rates the interpolation point always sits exactly on a
	// source sample, where the kernel is 1 at the centre tap and 0 at
	// every other tap. Priming repeats the first sample once, after which
	// the input comes through unchanged.
	const window = 3
	samples := []psxdmh.Mono{0.5, -0.25, 0.125, 0.75, -0.5, 0.25, 0.1, 0.2}
	r := dsp.NewSinc[psxdmh.Mono](&sliceSource[psxdmh.Mono]{samples: samples}, window, 44100, 44100)
	out := drainMono(r, 100)
	require.GreaterOrEqual(t, len(out), len(samples)+1)
	assert.InDelta(t, float64(samples[0]), float64(out[0]), 1e-5)
	for i, want := range samples {
		assert.InDelta(t, float64(want), float64(out[i+1]), 1e-5, "sample %d", i)
	}
}

func TestSincUpsampleDCGain(t *testing.T) {
	// Upsampling a constant signal exercises every phase of the kernel.
	// The Lanczos window gives each phase a gain close to unity, so the
	// steady-state output must stay near the input level.
	samples := make([]psxdmh.Mono, 200)
	for i := range samples {
		samples[i] = 0.5
	}
	r := dsp.NewSinc[psxdmh.Mono](&sliceSource[psxdmh.Mono]{samples: samples}, 7, 11025, 44100)
	out := drainMono(r, 600)
	require.GreaterOrEqual(t, len(out), 400)
	for _, s := range out[50:400] {
		assert.InDelta(t, 0.5, float64(s), 0.02)
	}
}

func TestSincDownsampleHalvesLength(t *testing.T) {
	samples := make([]psxdmh.Mono, 1000)
	r := dsp.NewSinc[psxdmh.Mono](&sliceSource[psxdmh.Mono]{samples: samples}, 7, 44100, 22050)
	out := drainMono(r, 10000)
	assert.InDelta(t, 500, len(out), 20)
}

func TestSincWindowOne(t *testing.T) {
	samples := []psxdmh.Mono{1, -1, 1, -1}
	r := dsp.NewSinc[psxdmh.Mono](&sliceSource[psxdmh.Mono]{samples: samples}, 1, 11025, 44100)
	for _, s := range drainMono(r, 1000) {
		assert.False(t, float64(s) != float64(s), "output must be finite")
		assert.LessOrEqual(t, s.Magnitude(), psxdmh.Mono(2))
	}
}

func TestSincRejectsZeroWindow(t *testing.T) {
	assert.Panics(t, func() {
		dsp.NewSinc[psxdmh.Mono](&sliceSource[psxdmh.Mono]{}, 0, 44100, 44100)
	})
}
