package stream_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ben-michell/psxdmh"
	"github.com/ben-michell/psxdmh/stream"
)

// sliceSource emits a fixed sequence of samples.
type sliceSource[S psxdmh.Sample[S]] struct {
	samples []S
	next    int
}

func (s *sliceSource[S]) IsRunning() bool { return s.next < len(s.samples) }

func (s *sliceSource[S]) Next(out *S) bool {
	if s.next >= len(s.samples) {
		var zero S
		*out = zero
		return false
	}
	*out = s.samples[s.next]
	s.next++
	return true
}

func drain[S psxdmh.Sample[S]](m psxdmh.Module[S]) []S {
	var out []S
	var s S
	for m.Next(&s) {
		out = append(out, s)
	}
	return out
}

func TestVolume(t *testing.T) {
	v := stream.NewVolume[psxdmh.Mono](&sliceSource[psxdmh.Mono]{samples: []psxdmh.Mono{0.5, -0.25}}, 0.5)
	assert.Equal(t, []psxdmh.Mono{0.25, -0.125}, drain[psxdmh.Mono](v))
	assert.False(t, v.IsRunning())
}

func TestSilencerLeadInAndOut(t *testing.T) {
	samples := []psxdmh.Mono{0.5, 0.25, -0.5}
	s := stream.NewSilencer[psxdmh.Mono](&sliceSource[psxdmh.Mono]{samples: samples}, 4, 3, -1)
	out := drain[psxdmh.Mono](s)
	require.Len(t, out, 4+3+3)
	for _, v := range out[:4] {
		assert.Equal(t, psxdmh.Mono(0), v)
	}
	assert.Equal(t, samples, out[4:7])
	for _, v := range out[7:] {
		assert.Equal(t, psxdmh.Mono(0), v)
	}
}

func TestSilencerRemovesLeadingSilence(t *testing.T) {
	samples := []psxdmh.Mono{0, 0, 0, 0.5}
	s := stream.NewSilencer[psxdmh.Mono](&sliceSource[psxdmh.Mono]{samples: samples}, 1, 0, -1)
	out := drain[psxdmh.Mono](s)
	assert.Equal(t, []psxdmh.Mono{0, 0.5}, out)
}

func TestSilencerTruncatesGaps(t *testing.T) {
	samples := []psxdmh.Mono{0.5, 0, 0, 0, 0, 0, 0.5, 0, 0.5}
	s := stream.NewSilencer[psxdmh.Mono](&sliceSource[psxdmh.Mono]{samples: samples}, -1, -1, 2)
	out := drain[psxdmh.Mono](s)
	assert.Equal(t, []psxdmh.Mono{0.5, 0, 0, 0.5, 0, 0.5}, out)
}

func TestSilencerZeroGapRejected(t *testing.T) {
	assert.Panics(t, func() {
		stream.NewSilencer[psxdmh.Mono](&sliceSource[psxdmh.Mono]{}, -1, -1, 0)
	})
}

func TestSplitterChildrenSeeIdenticalStreams(t *testing.T) {
	samples := []psxdmh.Mono{0.1, 0.2, 0.3, 0.4}
	first := stream.NewSplitter[psxdmh.Mono](&sliceSource[psxdmh.Mono]{samples: samples})
	second := first.Split()
	third := first.Split()

	assert.Equal(t, samples, drain[psxdmh.Mono](first))
	assert.Equal(t, samples, drain[psxdmh.Mono](second))
	assert.Equal(t, samples, drain[psxdmh.Mono](third))
}

func TestSplitterInterleavedConsumption(t *testing.T) {
	samples := []psxdmh.Mono{0.1, 0.2, 0.3}
	first := stream.NewSplitter[psxdmh.Mono](&sliceSource[psxdmh.Mono]{samples: samples})
	second := first.Split()

	var a, b psxdmh.Mono
	require.True(t, first.Next(&a))
	require.True(t, first.Next(&a))
	require.True(t, second.Next(&b))
	assert.Equal(t, psxdmh.Mono(0.1), b)
	assert.Equal(t, psxdmh.Mono(0.2), a)
}

func TestSplitterLateChildMissesHistory(t *testing.T) {
	samples := []psxdmh.Mono{0.1, 0.2, 0.3}
	first := stream.NewSplitter[psxdmh.Mono](&sliceSource[psxdmh.Mono]{samples: samples})

	var s psxdmh.Mono
	require.True(t, first.Next(&s))

	late := first.Split()
	assert.Equal(t, []psxdmh.Mono{0.2, 0.3}, drain[psxdmh.Mono](late))
}

func TestStatisticsDetailed(t *testing.T) {
	samples := []psxdmh.Mono{0.5, -0.8, 0.1}
	c := stream.NewStatistics[psxdmh.Mono](&sliceSource[psxdmh.Mono]{samples: samples}, stream.Detailed, 44100, nil, "test")
	drain[psxdmh.Mono](c)
	assert.InDelta(t, 0.8, float64(c.MaximumAmplitude()), 1e-6)
}

func TestStatisticsCallbackPerSecond(t *testing.T) {
	const rate = 100
	samples := make([]psxdmh.Mono, 250)
	var calls []uint32
	callback := func(seconds uint32, rate float64, operation string) {
		assert.Equal(t, "label", operation)
		calls = append(calls, seconds)
	}
	c := stream.NewStatistics[psxdmh.Mono](&sliceSource[psxdmh.Mono]{samples: samples}, stream.Progress, rate, callback, "label")
	drain[psxdmh.Mono](c)
	assert.Equal(t, []uint32{1, 2}, calls)
}

func TestNormalizerScalesPeakToUnity(t *testing.T) {
	spill := filepath.Join(t.TempDir(), "spill.tmp")
	samples := []psxdmh.Mono{0.1, -0.5, 0.25}
	n := stream.NewNormalizer[psxdmh.Mono](&sliceSource[psxdmh.Mono]{samples: samples}, spill, 30)
	defer n.Close()

	out := drain[psxdmh.Mono](n)
	require.Len(t, out, len(samples))
	assert.InDelta(t, 0.2, float64(out[0]), 1e-5)
	assert.InDelta(t, -1.0, float64(out[1]), 1e-5)
	assert.InDelta(t, 0.5, float64(out[2]), 1e-5)
}

func TestNormalizerGainCap(t *testing.T) {
	spill := filepath.Join(t.TempDir(), "spill.tmp")
	samples := []psxdmh.Mono{0.0001}
	n := stream.NewNormalizer[psxdmh.Mono](&sliceSource[psxdmh.Mono]{samples: samples}, spill, 30)
	defer n.Close()

	out := drain[psxdmh.Mono](n)
	require.Len(t, out, 1)

	// 30 dB is a gain of about 31.6; the quiet sample must not be scaled
	// past that.
	assert.InDelta(t, 0.00316, float64(out[0]), 0.0001)
}

func TestNormalizerRemovesSpillOnClose(t *testing.T) {
	spill := filepath.Join(t.TempDir(), "spill.tmp")
	n := stream.NewNormalizer[psxdmh.Mono](&sliceSource[psxdmh.Mono]{samples: []psxdmh.Mono{0.5}}, spill, 30)
	drain[psxdmh.Mono](n)

	_, err := os.Stat(spill)
	require.NoError(t, err)
	n.Close()
	_, err = os.Stat(spill)
	assert.True(t, os.IsNotExist(err))
}

func TestNormalizerStereo(t *testing.T) {
	spill := filepath.Join(t.TempDir(), "spill.tmp")
	samples := []psxdmh.Stereo{{L: 0.25, R: -0.5}}
	n := stream.NewNormalizer[psxdmh.Stereo](&sliceSource[psxdmh.Stereo]{samples: samples}, spill, 30)
	defer n.Close()

	out := drain[psxdmh.Stereo](n)
	require.Len(t, out, 1)
	assert.InDelta(t, 0.5, float64(out[0].L), 1e-5)
	assert.InDelta(t, -1.0, float64(out[0].R), 1e-5)
}
