package psxdmh_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ben-michell/psxdmh"
)

func TestMonoOperations(t *testing.T) {
	assert.Equal(t, psxdmh.Mono(0.75), psxdmh.Mono(0.5).Add(0.25))
	assert.Equal(t, psxdmh.Mono(0.25), psxdmh.Mono(0.5).Scale(0.5))
	assert.Equal(t, psxdmh.Mono(0.5), psxdmh.Mono(-0.5).Magnitude())
	assert.True(t, psxdmh.Mono(0).IsSilent())
	assert.True(t, psxdmh.Mono(1.0/100000).IsSilent())
	assert.False(t, psxdmh.Mono(0.001).IsSilent())
}

func TestStereoOperations(t *testing.T) {
	s := psxdmh.Stereo{L: 0.5, R: -0.25}
	assert.Equal(t, psxdmh.Stereo{L: 0.75, R: 0.25}, s.Add(psxdmh.Stereo{L: 0.25, R: 0.5}))
	assert.Equal(t, psxdmh.Stereo{L: 0.25, R: -0.125}, s.Scale(0.5))
	assert.Equal(t, psxdmh.Mono(0.5), s.Magnitude())
	assert.False(t, s.IsSilent())
	assert.True(t, psxdmh.Stereo{}.IsSilent())
}

func TestFlushDenorm(t *testing.T) {
	assert.Equal(t, psxdmh.Mono(0), psxdmh.Mono(1e-12).FlushDenorm())
	assert.Equal(t, psxdmh.Mono(1e-6), psxdmh.Mono(1e-6).FlushDenorm())
	assert.Equal(t, psxdmh.Stereo{}, psxdmh.Stereo{L: 1e-12, R: -1e-12}.FlushDenorm())
}

func TestSampleToInt(t *testing.T) {
	assert.Equal(t, int16(0), psxdmh.SampleToInt(0))
	assert.Equal(t, int16(32767), psxdmh.SampleToInt(1))
	assert.Equal(t, int16(32767), psxdmh.SampleToInt(2))
	assert.Equal(t, int16(-32768), psxdmh.SampleToInt(-2))
	assert.Equal(t, int16(16384), psxdmh.SampleToInt(0.5))
}

func TestDecibelConversion(t *testing.T) {
	assert.InDelta(t, 2.0, psxdmh.DecibelsToAmplitude(6.0206), 0.001)
	assert.InDelta(t, -6.0206, psxdmh.AmplitudeToDecibels(0.5), 0.001)
}

func TestTicksToTime(t *testing.T) {
	assert.Equal(t, "1:30.000", psxdmh.TicksToTime(90*44100, 44100, 3))
	assert.Equal(t, "0:05", psxdmh.TicksToTime(5*44100, 44100, 0))
}

func TestErrorKinds(t *testing.T) {
	err := psxdmh.Errorf(psxdmh.CorruptStream, "bad %s", "block")
	assert.Equal(t, "bad block", err.Error())
	assert.ErrorIs(t, err, &psxdmh.Error{Kind: psxdmh.CorruptStream})
	assert.NotErrorIs(t, err, &psxdmh.Error{Kind: psxdmh.IoFailure})
}

func TestRecoverConvertsFatal(t *testing.T) {
	capture := func() (err error) {
		defer func() { psxdmh.Recover(recover(), &err) }()
		psxdmh.Fatal(psxdmh.MissingResource, "missing thing")
		return nil
	}
	err := capture()
	require.Error(t, err)
	assert.ErrorIs(t, err, &psxdmh.Error{Kind: psxdmh.MissingResource})

	var engineErr *psxdmh.Error
	require.True(t, errors.As(err, &engineErr))
	assert.Equal(t, "missing thing", engineErr.Msg)
}

func TestRecoverRethrowsForeignPanics(t *testing.T) {
	assert.Panics(t, func() {
		var err error
		defer func() { psxdmh.Recover(recover(), &err) }()
		panic("unrelated")
	})
}
