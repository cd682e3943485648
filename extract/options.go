// Package extract composes the audio graph for complete song, track and
// patch extractions and drives it into WAV or MP3 files.
package extract

import (
	"github.com/ben-michell/psxdmh"
	"github.com/ben-michell/psxdmh/music"
	"github.com/ben-michell/psxdmh/spu"
	"github.com/ben-michell/psxdmh/stream"
)

// Options control how audio is extracted. The zero value is not useful;
// start from NewOptions.
type Options struct {
	// Volume scaling (amplitude) applied as the final stage.
	Volume psxdmh.Mono

	// Apply two-pass level normalization.
	Normalize bool

	// Reverb configuration. ReverbAuto resolves to the preset and depth
	// used by the game level where the song first appears.
	ReverbPreset spu.ReverbPreset
	ReverbVolume psxdmh.Mono

	// Number of times to play a repeating song, track, or patch. A value
	// of 0 repeats indefinitely.
	PlayCount uint32

	// Leading and trailing silence to enforce, in seconds. Negative
	// values leave the audio as generated.
	LeadIn  float64
	LeadOut float64

	// Maximum silent gap allowed within the audio, in seconds. Negative
	// deactivates gap processing.
	MaximumGap float64

	// Stereo width adjustment, from -1 (near mono) to +1 (widened).
	StereoWidth psxdmh.Mono

	// Automatic fixing of patches with audio faults.
	RepairPatches bool

	// Ignore the maximum playback frequency limit of a real PSX.
	UnlimitedFrequency bool

	// Output sample rate. 0 selects the default: 44100 for songs and
	// tracks, 11025 for patches.
	SampleRate uint32

	// High-pass and low-pass frequencies for filtering the generated
	// audio, in Hz. 0 disables the respective filter.
	HighPass uint32
	LowPass  uint32

	// Sinc resampler window size.
	SincWindow uint32

	// Progress reports the extraction progress when not nil.
	Progress stream.Callback
}

// NewOptions returns the default extraction options.
func NewOptions() Options {
	return Options{
		Volume:       1,
		ReverbPreset: spu.ReverbAuto,
		ReverbVolume: 0.5,
		PlayCount:    1,
		LeadIn:       -1,
		LeadOut:      -1,
		MaximumGap:   -1,
		HighPass:     30,
		LowPass:      15000,
		SincWindow:   7,
	}
}

// Validate checks the option values against the output sample rate.
func (o *Options) Validate() error {
	nyquist := o.SampleRate / 2
	if o.HighPass != 0 && o.HighPass >= nyquist {
		return psxdmh.Errorf(psxdmh.InvalidConfig, "high-pass frequency %d must be below half the sample rate", o.HighPass)
	}
	if o.LowPass != 0 && o.LowPass >= nyquist {
		return psxdmh.Errorf(psxdmh.InvalidConfig, "low-pass frequency %d must be below half the sample rate", o.LowPass)
	}
	if o.HighPass != 0 && o.LowPass != 0 && o.HighPass >= o.LowPass {
		return psxdmh.Errorf(psxdmh.InvalidConfig, "high-pass frequency %d must be below the low-pass frequency %d", o.HighPass, o.LowPass)
	}
	if o.SincWindow < 1 {
		return psxdmh.Errorf(psxdmh.InvalidConfig, "sinc window must be at least 1")
	}
	if o.StereoWidth < -1 || o.StereoWidth > 1 {
		return psxdmh.Errorf(psxdmh.InvalidConfig, "stereo width must be between -1 and 1")
	}
	return nil
}

// playerConfig derives the sequencer configuration from the options.
func (o *Options) playerConfig() music.PlayerConfig {
	return music.PlayerConfig{
		SampleRate:         o.SampleRate,
		SincWindow:         o.SincWindow,
		PlayCount:          o.PlayCount,
		StereoWidth:        o.StereoWidth,
		UnlimitedFrequency: o.UnlimitedFrequency,
		RepairPatches:      o.RepairPatches,
	}
}

// withSampleRate resolves a zero sample rate to the given default.
func (o Options) withSampleRate(defaultRate uint32) Options {
	if o.SampleRate == 0 {
		o.SampleRate = defaultRate
	}
	return o
}
