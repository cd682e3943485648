package spu_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ben-michell/psxdmh"
	"github.com/ben-michell/psxdmh/spu"
)

// burstSource emits a short burst of full-scale samples then stops.
type burstSource struct {
	remaining int
}

func (b *burstSource) IsRunning() bool { return b.remaining > 0 }

func (b *burstSource) Next(s *psxdmh.Stereo) bool {
	if b.remaining <= 0 {
		*s = psxdmh.Stereo{}
		return false
	}
	b.remaining--
	*s = psxdmh.Stereo{L: 0.5, R: 0.5}
	return true
}

func TestReverbRejectsOffAndAuto(t *testing.T) {
	volume := psxdmh.Stereo{L: 0.5, R: 0.5}
	assert.Panics(t, func() {
		spu.NewReverb(&burstSource{remaining: 1}, spu.ReverbRate, spu.ReverbOff, volume, 3)
	})
	assert.Panics(t, func() {
		spu.NewReverb(&burstSource{remaining: 1}, spu.ReverbRate, spu.ReverbAuto, volume, 3)
	})
}

func TestReverbProducesEchoesThenStops(t *testing.T) {
	// At the reverb core's native rate the wrapper adds no resamplers, so
	// the tail length is governed purely by the delay network decay.
	r := spu.NewReverb(&burstSource{remaining: 100}, spu.ReverbRate, spu.ReverbRoom, psxdmh.Stereo{L: 0.5, R: 0.5}, 3)

	var s psxdmh.Stereo
	samples := 0
	echoes := 0
	for r.Next(&s) {
		samples++
		if samples > 150 && !s.IsSilent() {
			echoes++
		}
		require.Less(t, samples, 10_000_000, "reverb tail did not decay")
	}
	assert.Positive(t, echoes, "expected audible reverb tail after the dry signal ended")
	assert.False(t, r.IsRunning())

	// Once stopped the module emits silence.
	assert.False(t, r.Next(&s))
	assert.True(t, s.IsSilent())
}

func TestReverbMixesDryWithWet(t *testing.T) {
	// With a wet gain of zero the output reduces to the dry signal.
	r := spu.NewReverb(&burstSource{remaining: 10}, spu.ReverbRate, spu.ReverbHall, psxdmh.Stereo{}, 3)
	var s psxdmh.Stereo
	for i := 0; i < 10; i++ {
		require.True(t, r.Next(&s))
		assert.Equal(t, psxdmh.Stereo{L: 0.5, R: 0.5}, s)
	}
}

func TestReverbResamplesOtherRates(t *testing.T) {
	// At 44.1 kHz the wet branch goes through the down/up resamplers; the
	// output must stay finite and eventually stop.
	r := spu.NewReverb(&burstSource{remaining: 200}, 44100, spu.ReverbStudioSmall, psxdmh.Stereo{L: 0.25, R: 0.25}, 3)
	var s psxdmh.Stereo
	samples := 0
	for r.Next(&s) {
		samples++
		require.LessOrEqual(t, s.Magnitude(), psxdmh.Mono(4), "unstable reverb output")
		require.Less(t, samples, 20_000_000, "reverb tail did not decay")
	}
	assert.Greater(t, samples, 200)
}

func TestReverbPresetNames(t *testing.T) {
	assert.Equal(t, "space-echo", spu.ReverbSpaceEcho.String())
	assert.Equal(t, "auto", spu.ReverbAuto.String())

	preset, ok := spu.ParseReverbPreset("studio-medium")
	require.True(t, ok)
	assert.Equal(t, spu.ReverbStudioMedium, preset)

	_, ok = spu.ParseReverbPreset("cathedral")
	assert.False(t, ok)
}
