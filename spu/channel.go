package spu

import (
	"github.com/ben-michell/psxdmh"
	"github.com/ben-michell/psxdmh/adpcm"
	"github.com/ben-michell/psxdmh/dsp"
	"github.com/ben-michell/psxdmh/lcd"
)

// MaxFrequency is the maximum playback frequency of the SPU.
const MaxFrequency = 4 * 44100

// adpcmFilterCutOff is the cut off used to filter patches when they are
// decoded from ADPCM. Filtering before resampling reduces artifacts from
// low quality patches.
const adpcmFilterCutOff = 0.33

// filterFixes maps noisy patches to the lower cut off that tames them.
// Patch 112 has duplicates used by other songs (91, 103, 109, 119 and 121)
// where the noise isn't apparent, so those have no fix.
var filterFixes = map[uint16]float64{
	104: 0.15, // Song 98.
	112: 0.15, // Song 102.
	128: 0.20, // Song 113.
	130: 0.20, // Song 114.
}

// Current and maximum number of channels instantiated simultaneously.
var (
	currentChannels int
	maximumChannels int
)

// MaximumChannels returns the high-water mark of simultaneously live
// channels.
func MaximumChannels() int { return maximumChannels }

// ResetMaximumChannels clears the channel high-water mark.
func ResetMaximumChannels() { maximumChannels = 0 }

// Channel emulates one SPU channel playing a single note: a patch decoded
// from ADPCM, filtered, resampled to the note frequency, and scaled by the
// ADSR envelope and the stereo pan volume. The channel runs until either
// the envelope finishes (after Release) or the end of a non-repeating
// patch is reached.
type Channel struct {
	// Patch resampler. Nil once the channel has stopped.
	resampler dsp.Resampler[psxdmh.Mono]

	// Envelope used to control the sound. rawEnvelope is the generator
	// itself; envelope is the same object when running at 44.1 kHz, or a
	// linear resampler adapting it to other rates.
	rawEnvelope *Envelope
	envelope    psxdmh.Module[psxdmh.Mono]

	// Left and right volumes for the channel.
	volume psxdmh.Stereo

	// Panning: full left is 0x00, centre is 0x40, full right is 0x7f.
	pan uint8

	// Whether to limit the maximum playback frequency as on a real PSX.
	limitFrequency bool

	// User-defined value. The track player stores the note number here so
	// note off events can find the channels playing a note.
	userData uint32

	// released tracks whether the channel has been counted down from the
	// live channel count.
	released bool
}

// NewChannel starts a channel playing. The volume ranges from 0.0 to 1.0,
// and the pan from full left at 0x00 through centre at 0x40 to full right
// at 0x7f. The channel reads the patch data directly and relies on its
// owner to keep it valid.
func NewChannel(patch *lcd.Patch, frequency uint32, volume psxdmh.Mono, pan uint8, spuADS, spuSR uint16, sampleRate, sincWindow uint32, applyPsxLimit, repair bool) *Channel {
	c := &Channel{
		rawEnvelope:    NewEnvelope(spuADS, spuSR),
		pan:            pan,
		limitFrequency: applyPsxLimit,
	}
	if currentChannels++; currentChannels > maximumChannels {
		maximumChannels = currentChannels
	}

	// Build the patch chain: decode, filter, then resample to the output
	// rate. Filtering before resampling gives better results than after,
	// and is considerably easier to manage. A few patches have a special
	// fix to remove high-pitched noise.
	cutOff := adpcmFilterCutOff
	if repair {
		if fix, ok := filterFixes[patch.ID]; ok {
			cutOff = fix
		}
	}
	var source psxdmh.Module[psxdmh.Mono] = adpcm.NewDecoder(patch.ADPCM, 0)
	source = dsp.NewFilter[psxdmh.Mono](source, dsp.LowPass, cutOff)
	c.resampler = dsp.NewSinc[psxdmh.Mono](source, sincWindow, c.clampFrequency(frequency), sampleRate)

	c.MasterVolume(volume)

	// Resample the envelope if its rate does not match the output rate. A
	// linear resampler is not good for regular audio but is fine here
	// since the envelope's output is quite linear in character and will
	// not overshoot or undershoot, unlike fancier resamplers.
	if sampleRate != EnvelopeRate {
		c.envelope = dsp.NewLinear[psxdmh.Mono](c.rawEnvelope, EnvelopeRate, sampleRate)
	} else {
		c.envelope = c.rawEnvelope
	}
	return c
}

// IsRunning tests if the channel is still playing.
func (c *Channel) IsRunning() bool { return c.resampler != nil }

// Next produces the next sample.
func (c *Channel) Next(s *psxdmh.Stereo) bool {
	if c.resampler == nil {
		*s = psxdmh.Stereo{}
		return false
	}

	// Get the waveform at the current position and scale it by the
	// envelope and channel volume.
	var waveform, envelope psxdmh.Mono
	resamplerLive := c.resampler.Next(&waveform)
	envelopeLive := c.envelope.Next(&envelope)
	*s = c.volume.Scale(waveform * envelope)

	// Stop the channel when either the resampler or envelope stops, as
	// their combined output is guaranteed to be 0 from then on.
	if !resamplerLive || !envelopeLive {
		c.stop()
	}
	return true
}

// MasterVolume sets the channel's master volume, from 0.0 to 1.0, and
// derives the left and right volumes from it.
func (c *Channel) MasterVolume(volume psxdmh.Mono) {
	// MIDI's pan controls the left and right volumes with cosine and sine,
	// which preserves the same apparent volume as a sound moves around
	// (see MIDI Recommended Practice RP-036). In contrast the sound player
	// in PSX Doom seems to use a simple linear blend.
	c.volume.L = volume * psxdmh.Mono(128-int(c.pan)) / 128
	c.volume.R = volume * psxdmh.Mono(int(c.pan)+1) / 128
}

// Release starts the release phase of the envelope.
func (c *Channel) Release() { c.rawEnvelope.Release() }

// Frequency alters the playback frequency of the patch currently playing.
func (c *Channel) Frequency(frequency uint32) {
	if c.resampler != nil {
		c.resampler.SetRateIn(c.clampFrequency(frequency))
	}
}

// UserData returns the user-defined value.
func (c *Channel) UserData() uint32 { return c.userData }

// SetUserData stores a user-defined value.
func (c *Channel) SetUserData(value uint32) { c.userData = value }

// clampFrequency limits a frequency to the allowed range: never below
// 1 Hz, and never above the SPU maximum unless allowed.
func (c *Channel) clampFrequency(frequency uint32) uint32 {
	if frequency == 0 {
		frequency = 1
	} else if frequency > MaxFrequency && c.limitFrequency {
		frequency = MaxFrequency
	}
	return frequency
}

// stop drops the resampler and removes the channel from the live count.
func (c *Channel) stop() {
	c.resampler = nil
	if !c.released {
		c.released = true
		currentChannels--
	}
}
