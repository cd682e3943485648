// Package music sequences WMD song data into audio: a lazy event-stream
// parser, a per-track player that allocates SPU channels from note events,
// and a song player that mixes the tracks.
package music

import (
	"github.com/ben-michell/psxdmh"
	"github.com/ben-michell/psxdmh/wmd"
)

// EventCode identifies a music stream event.
type EventCode int

const (
	// NoteOn starts a note: Data0 is the note number (0x00 to 0x7f) and
	// Data1 the note volume (0x00 to 0x7f).
	NoteOn EventCode = iota

	// NoteOff releases a note: Data0 is the note number.
	NoteOff

	// SetInstrument sets the instrument number. It is also specified in
	// the track header, so the player ignores it.
	SetInstrument

	// PitchBend bends all notes in the track: Data0 is -0x2000 to 0x2000.
	PitchBend

	// Volume sets the track master volume: Data0 is 0x00 to 0x7f.
	Volume

	// PanOffset sets the pan offset applied to all notes in the track:
	// Data0 is 0x00 to 0x7f.
	PanOffset

	// SetMarker records a marker point: Data0 is the stream offset of the
	// marker code. The player takes repeat points from the track header
	// instead, so the marker is parsed but never consumed.
	SetMarker

	// JumpToMarker jumps to a marker: Data0 is the marker number.
	JumpToMarker

	// Unknown0B is an 8-bit value of unknown purpose, used only once in
	// song 111. No audible effect has been found for it.
	Unknown0B

	// Unknown0E is an 8-bit value of unknown purpose, used in songs 90,
	// 92, 110, 111 and 112, always in pairs of 0x7f then 0x00. No audible
	// effect has been found for it.
	Unknown0E

	// EndOfStream forces the stream position to the end.
	EndOfStream
)

// Event is a single decoded music stream event. The meaning of the data
// values depends on the code.
type Event struct {
	Code  EventCode
	Data0 int32
	Data1 int32
}

// Stream parses a track's MIDI-like byte stream into timed events. The
// caller advances time one tick at a time with Tick and drains due events
// with GetEvent.
type Stream struct {
	track *wmd.SongTrack

	// Current position within the track music data.
	position int

	// Tick rates for the caller and the track, per minute.
	callerTicksPerMinute uint32
	trackTicksPerMinute  uint32

	// Current position within the track expressed in track ticks. The
	// whole number of ticks is in tickPosition and the fractional part in
	// tickFraction, which counts callerTicksPerMinute steps per tick.
	tickPosition uint32
	tickFraction uint32

	// Track time for the next event in the stream.
	nextEventTime uint32
}

// NewStream starts parsing a track. The ticksPerMinute is the caller's
// tick rate: one tick per output sample, so sample rate times 60.
func NewStream(track *wmd.SongTrack, ticksPerMinute uint32) *Stream {
	s := &Stream{
		track:                track,
		callerTicksPerMinute: ticksPerMinute,
		trackTicksPerMinute:  uint32(track.TicksPerBeat) * uint32(track.BeatsPerMinute),
	}

	// Read the initial time delta. A track with no data at all has no
	// events and starts out finished.
	if len(track.Data) > 0 {
		s.nextEventTime = s.delta()
	}
	return s
}

// IsRunning tests whether there are more events in the stream.
func (s *Stream) IsRunning() bool { return s.position < len(s.track.Data) }

// Tick advances the music extraction by one caller tick.
func (s *Stream) Tick() {
	s.tickFraction += s.trackTicksPerMinute
	for s.tickFraction >= s.callerTicksPerMinute {
		s.tickFraction -= s.callerTicksPerMinute
		s.tickPosition++
	}
}

// HaveEvent tests if one or more events are available for extraction.
func (s *Stream) HaveEvent() bool {
	return s.position < len(s.track.Data) && s.nextEventTime <= s.tickPosition
}

// GetEvent attempts to extract an event from the stream for the current
// time. The return value is true if an event was extracted. Since more
// than one event can occur at the same time this should be called
// repeatedly until it returns false.
func (s *Stream) GetEvent(ev *Event) bool {
	if !s.HaveEvent() {
		return false
	}

	code := s.byte()
	ev.Data0 = 0
	ev.Data1 = 0
	switch code {
	case 0x11:
		ev.Code = NoteOn
		ev.Data0 = int32(s.byte())
		ev.Data1 = int32(s.byte())

	case 0x12:
		ev.Code = NoteOff
		ev.Data0 = int32(s.byte())

	case 0x07:
		ev.Code = SetInstrument
		ev.Data0 = int32(s.word())

	case 0x09:
		ev.Code = PitchBend
		ev.Data0 = int32(int16(s.word()))

	case 0x0c:
		ev.Code = Volume
		ev.Data0 = int32(s.byte())

	case 0x0d:
		ev.Code = PanOffset
		ev.Data0 = int32(s.byte())

	case 0x23:
		ev.Code = SetMarker
		ev.Data0 = int32(s.position - 1)

	case 0x20:
		ev.Code = JumpToMarker
		ev.Data0 = int32(s.word())

	case 0x0b:
		ev.Code = Unknown0B
		ev.Data0 = int32(s.byte())

	case 0x0e:
		ev.Code = Unknown0E
		ev.Data0 = int32(s.byte())

	case 0x22:
		ev.Code = EndOfStream
		s.position = len(s.track.Data)

	default:
		psxdmh.Fatal(psxdmh.CorruptStream, "unsupported music stream event code $%02x", code)
	}

	// Read the delta to the following event if not at the end.
	if s.position < len(s.track.Data) {
		s.nextEventTime += s.delta()
	}
	return true
}

// Seek sets the current position in the stream. This is used to handle
// repeating music data.
func (s *Stream) Seek(pos uint32) {
	if int(pos) > len(s.track.Data) {
		psxdmh.Fatal(psxdmh.MissingResource, "invalid seek position in music stream")
	}
	s.position = int(pos)
}

// byte extracts the next byte from the stream. Reading beyond the end of
// the stream is a fatal error.
func (s *Stream) byte() uint8 {
	if s.position+1 > len(s.track.Data) {
		psxdmh.Fatal(psxdmh.CorruptStream, "corrupt music data: attempt to read beyond the end of the stream")
	}
	b := s.track.Data[s.position]
	s.position++
	return b
}

// word extracts the next two bytes as a little-endian 16-bit value.
func (s *Stream) word() uint16 {
	low := s.byte()
	return uint16(low) | uint16(s.byte())<<8
}

// delta reads a variable length time delta: 7 payload bits per byte, low
// bits first in the accumulator, with the top bit flagging another byte to
// follow.
func (s *Stream) delta() uint32 {
	var delta uint32
	for {
		b := s.byte()
		delta = delta<<7 | uint32(b&0x7f)
		if b&0x80 == 0 {
			return delta
		}
	}
}
