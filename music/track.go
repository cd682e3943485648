package music

import (
	"math"

	"github.com/ben-michell/psxdmh"
	"github.com/ben-michell/psxdmh/lcd"
	"github.com/ben-michell/psxdmh/spu"
	"github.com/ben-michell/psxdmh/wmd"
)

// PlayerConfig carries the playback settings used by the track and song
// players.
type PlayerConfig struct {
	// Output sample rate.
	SampleRate uint32

	// Sinc resampler window size.
	SincWindow uint32

	// Number of times to play a repeating track. 0 repeats indefinitely,
	// other values play exactly that many times.
	PlayCount uint32

	// Stereo width adjustment, from -1 (near mono) to +1 (widened).
	StereoWidth psxdmh.Mono

	// Whether to lift the maximum playback frequency limit of a real PSX.
	UnlimitedFrequency bool

	// Whether to apply per-voice filter fixes for noisy patches.
	RepairPatches bool
}

// TrackPlayer drives the playback of a single track: it parses the event
// stream, allocates a channel per note, and mixes the live channels.
type TrackPlayer struct {
	wmd *wmd.File
	lcd *lcd.File

	config PlayerConfig

	// Number of remaining times to play the track. 0 means repeat
	// indefinitely.
	playCount uint32

	// Instrument used by this track, and the repeat details from the track
	// header.
	instrumentIndex int
	repeat          bool
	repeatStart     uint32

	// Music stream parser.
	stream *Stream

	// Master track volume, applied to notes as they start.
	trackVolume psxdmh.Mono

	// Pan offset applied to all notes that play in this track.
	panOffset int

	// Stereo width adjustment.
	stereoWidth psxdmh.Mono

	// Current pitch bend at a sensitivity of 1.
	unitPitchBend psxdmh.Mono

	// Active channels.
	channels []*spu.Channel
}

// NewTrackPlayer prepares a track for playback. The WMD and LCD files must
// remain valid for the life of the player.
func NewTrackPlayer(songIndex, trackIndex int, wmdFile *wmd.File, lcdFile *lcd.File, config PlayerConfig) *TrackPlayer {
	track := wmdFile.Track(songIndex, trackIndex)
	return &TrackPlayer{
		wmd:             wmdFile,
		lcd:             lcdFile,
		config:          config,
		playCount:       config.PlayCount,
		instrumentIndex: int(track.Instrument),
		repeat:          track.Repeat,
		repeatStart:     track.RepeatStart,
		stream:          NewStream(track, config.SampleRate*60),
		trackVolume:     1,
		stereoWidth:     config.StereoWidth,
	}
}

// IsRunning tests whether the track playback is still running. This
// includes channels which haven't finished playing a note yet, even when
// all music data for the track has been exhausted.
func (t *TrackPlayer) IsRunning() bool {
	return len(t.channels) > 0 ||
		(t.repeat && (t.playCount == 0 || t.playCount > 1)) ||
		t.stream.IsRunning()
}

// FailedToRepeat tests if the track failed to repeat when a repeat was
// requested.
func (t *TrackPlayer) FailedToRepeat() bool { return t.playCount > 1 }

// Next produces the next sample: the unscaled sum of all currently playing
// notes for this track.
func (t *TrackPlayer) Next(s *psxdmh.Stereo) bool {
	// Process all events due at the current tick.
	var ev Event
	live := len(t.channels) > 0 || t.stream.IsRunning()
	for t.stream.GetEvent(&ev) {
		live = true
		switch ev.Code {
		case NoteOn:
			if ev.Data0 < 0 || ev.Data0 > 0x7f {
				psxdmh.Fatal(psxdmh.CorruptStream, "invalid note number in note on event")
			}
			if ev.Data1 < 0 || ev.Data1 > 0x7f {
				psxdmh.Fatal(psxdmh.CorruptStream, "invalid volume in note on event")
			}
			t.startNote(uint8(ev.Data0), uint8(ev.Data1))

		case NoteOff:
			if ev.Data0 < 0 || ev.Data0 > 0x7f {
				psxdmh.Fatal(psxdmh.CorruptStream, "invalid note number in note off event")
			}

			// Release every channel playing the note. More than one
			// instance of a note can be sounding at once since released
			// notes linger until their envelope finishes.
			for _, channel := range t.channels {
				if channel.UserData() == uint32(ev.Data0) {
					channel.Release()
				}
			}

		case SetInstrument:
			// Ignored: the instrument never changes and is already set
			// from the track header.

		case PitchBend:
			if ev.Data0 < -0x2000 || ev.Data0 > 0x2000 {
				psxdmh.Fatal(psxdmh.CorruptStream, "invalid bend in pitch bend event")
			}
			t.unitPitchBend = psxdmh.Mono(ev.Data0) / 0x2000 / 12
			for _, channel := range t.channels {
				channel.Frequency(t.wmd.NoteToFrequency(t.instrumentIndex, uint8(channel.UserData()), t.unitPitchBend))
			}

		case Volume:
			if ev.Data0 < 0 || ev.Data0 > 0x7f {
				psxdmh.Fatal(psxdmh.CorruptStream, "invalid volume in track volume event")
			}

			// Remembered for future notes. The volume should probably be
			// applied to active channels as well, but in practice it
			// always precedes the notes.
			t.trackVolume = psxdmh.Mono(ev.Data0) / 0x7f

		case PanOffset:
			if ev.Data0 < 0 || ev.Data0 > 0x7f {
				psxdmh.Fatal(psxdmh.CorruptStream, "invalid pan in track pan event")
			}

			// As with the volume, this always precedes the notes.
			t.panOffset = int(ev.Data0) - 0x40

		case JumpToMarker:
			// Jump only if the caller wants this repeat, which is the case
			// unless the play count has reached 1.
			if t.playCount != 1 {
				if t.playCount > 0 {
					t.playCount--
				}
				if t.repeat {
					t.stream.Seek(t.repeatStart)
				}
			}

		case SetMarker, Unknown0B, Unknown0E, EndOfStream:
			// The repeat point comes from the track header, and the end of
			// stream is tested explicitly elsewhere.
		}
	}

	// Advance the music stream by one tick.
	if t.stream.IsRunning() {
		t.stream.Tick()
	}

	// Accumulate from all active channels, dropping finished ones.
	*s = psxdmh.Stereo{}
	var temp psxdmh.Stereo
	for index := 0; index < len(t.channels); {
		if t.channels[index].Next(&temp) {
			*s = s.Add(temp)
			index++
		} else {
			t.channels = append(t.channels[:index], t.channels[index+1:]...)
		}
	}
	return live
}

// startNote creates a new channel to play a note. Valid notes and volumes
// are 0x00 to 0x7f.
func (t *TrackPlayer) startNote(note, volume uint8) {
	sub := t.wmd.Instrument(t.instrumentIndex).SubInstrumentFor(note)

	// Combine the master track, sub-instrument and note volumes.
	combinedVolume := t.trackVolume * psxdmh.Mono(sub.Volume) / 0x7f * psxdmh.Mono(volume) / 0x7f

	patch := t.lcd.PatchByID(sub.Patch)
	if patch == nil {
		psxdmh.Fatal(psxdmh.MissingResource, "unable to locate patch with id %d in any LCD file", sub.Patch)
	}

	frequency := t.wmd.NoteToFrequency(t.instrumentIndex, note, t.unitPitchBend)

	// Start the note playing, storing the note number as the channel user
	// data so note off events can find it.
	pan := uint8(psxdmh.Clamp(int(sub.Pan)+t.panOffset, 0x00, 0x7f))
	pan = t.adjustStereoWidth(pan)
	channel := spu.NewChannel(patch, frequency, combinedVolume, pan, sub.SpuADS, sub.SpuSR,
		t.config.SampleRate, t.config.SincWindow, !t.config.UnlimitedFrequency, t.config.RepairPatches)
	channel.SetUserData(uint32(note))
	t.channels = append(t.channels, channel)
}

// adjustStereoWidth adjusts a pan value to account for stereo width
// expansion or narrowing.
func (t *TrackPlayer) adjustStereoWidth(pan uint8) uint8 {
	if t.stereoWidth == 0 {
		return pan
	}

	// Remap the pan from [0x00, 0x7f] to [-1.0, 1.0]. Although the halfway
	// point of the range is 63.5, the songs use 0x40 to represent centre,
	// so the remapping is tweaked to preserve that convention.
	const centre = 64.0
	const leftRange = centre
	const rightRange = 127 - centre
	scale := leftRange
	if pan >= centre {
		scale = rightRange
	}
	remap := (float64(pan) - centre) / scale

	// A negative width narrows the stereo effect, with -1.0 producing
	// near-mono apart from sounds at the far left or right. A positive
	// width pushes anything off-centre further out.
	strength := math.Pow(4, -float64(t.stereoWidth))
	sign := 1.0
	if remap < 0 {
		sign = -1
	}
	remap = sign * math.Pow(math.Abs(remap), strength)
	if math.IsNaN(remap) {
		remap = 0
	}

	// Remap back to [0x00, 0x7f], again preserving 0x40 as centre.
	scale = leftRange
	if remap >= 0 {
		scale = rightRange
	}
	newPan := int(math.Floor(remap*scale + centre + 0.5))
	return uint8(psxdmh.Clamp(newPan, 0x00, 0x7f))
}
