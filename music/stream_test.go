package music_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ben-michell/psxdmh/music"
	"github.com/ben-michell/psxdmh/wmd"
)

// testTrack builds a track around the given event data with a tempo of one
// track tick per caller tick at 44100 Hz.
func testTrack(data []byte) *wmd.SongTrack {
	return &wmd.SongTrack{
		Instrument:     0,
		BeatsPerMinute: 44100,
		TicksPerBeat:   60,
		Data:           data,
	}
}

const tickRate = 44100 * 60

func TestStreamParsesEvents(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		code music.EventCode
		d0   int32
		d1   int32
	}{
		{name: "note on", data: []byte{0x00, 0x11, 60, 127}, code: music.NoteOn, d0: 60, d1: 127},
		{name: "note off", data: []byte{0x00, 0x12, 60}, code: music.NoteOff, d0: 60},
		{name: "set instrument", data: []byte{0x00, 0x07, 0x34, 0x12}, code: music.SetInstrument, d0: 0x1234},
		{name: "pitch bend", data: []byte{0x00, 0x09, 0x00, 0xe0}, code: music.PitchBend, d0: -0x2000},
		{name: "volume", data: []byte{0x00, 0x0c, 100}, code: music.Volume, d0: 100},
		{name: "pan offset", data: []byte{0x00, 0x0d, 0x40}, code: music.PanOffset, d0: 0x40},
		{name: "set marker", data: []byte{0x00, 0x23}, code: music.SetMarker, d0: 1},
		{name: "jump to marker", data: []byte{0x00, 0x20, 0x02, 0x00}, code: music.JumpToMarker, d0: 2},
		{name: "unknown 0b", data: []byte{0x00, 0x0b, 0x7f}, code: music.Unknown0B, d0: 0x7f},
		{name: "unknown 0e", data: []byte{0x00, 0x0e, 0x7f}, code: music.Unknown0E, d0: 0x7f},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s := music.NewStream(testTrack(test.data), tickRate)
			var ev music.Event
			require.True(t, s.GetEvent(&ev))
			assert.Equal(t, test.code, ev.Code)
			assert.Equal(t, test.d0, ev.Data0)
			assert.Equal(t, test.d1, ev.Data1)
		})
	}
}

func TestStreamEndOfStream(t *testing.T) {
	s := music.NewStream(testTrack([]byte{0x00, 0x22, 0x00, 0x11, 60, 127}), tickRate)
	var ev music.Event
	require.True(t, s.GetEvent(&ev))
	assert.Equal(t, music.EndOfStream, ev.Code)
	assert.False(t, s.IsRunning())
	assert.False(t, s.GetEvent(&ev))
}

func TestStreamUnknownOpcode(t *testing.T) {
	s := music.NewStream(testTrack([]byte{0x00, 0x55}), tickRate)
	var ev music.Event
	assert.PanicsWithError(t, "unsupported music stream event code $55", func() {
		s.GetEvent(&ev)
	})
}

func TestStreamTruncatedEvent(t *testing.T) {
	s := music.NewStream(testTrack([]byte{0x00, 0x11, 60}), tickRate)
	var ev music.Event
	assert.Panics(t, func() { s.GetEvent(&ev) })
}

func TestStreamDeltaScheduling(t *testing.T) {
	// The second event is 3 track ticks after the first. One caller tick
	// equals one track tick at this tempo.
	s := music.NewStream(testTrack([]byte{0x00, 0x0c, 100, 0x03, 0x0c, 50, 0x00, 0x22}), tickRate)
	var ev music.Event
	require.True(t, s.GetEvent(&ev))
	assert.Equal(t, int32(100), ev.Data0)
	require.False(t, s.GetEvent(&ev))

	for tick := 0; tick < 2; tick++ {
		s.Tick()
		assert.False(t, s.HaveEvent(), "tick %d", tick)
	}
	s.Tick()
	require.True(t, s.HaveEvent())
	require.True(t, s.GetEvent(&ev))
	assert.Equal(t, int32(50), ev.Data0)
}

func TestStreamMultiByteDelta(t *testing.T) {
	// 0x81 0x00 encodes a delta of 128 ticks.
	s := music.NewStream(testTrack([]byte{0x81, 0x00, 0x0c, 100}), tickRate)
	var ev music.Event
	for tick := 0; tick < 127; tick++ {
		assert.False(t, s.HaveEvent())
		s.Tick()
	}
	require.False(t, s.GetEvent(&ev))
	s.Tick()
	require.True(t, s.GetEvent(&ev))
	assert.Equal(t, music.Volume, ev.Code)
}

func TestStreamTickRateConversion(t *testing.T) {
	// At 120 bpm and 480 ticks/beat a track produces 57600 ticks/minute.
	// Against a caller rate of 44100*60 ticks/minute, one track tick takes
	// 2646000/57600 caller ticks.
	track := &wmd.SongTrack{
		BeatsPerMinute: 120,
		TicksPerBeat:   480,
		Data:           []byte{0x01, 0x0c, 100},
	}
	s := music.NewStream(track, tickRate)

	ticks := 0
	var ev music.Event
	for !s.HaveEvent() {
		s.Tick()
		ticks++
		require.Less(t, ticks, 100_000)
	}
	require.True(t, s.GetEvent(&ev))
	assert.InDelta(t, 2646000.0/57600.0, float64(ticks), 1)
}

func TestStreamSeek(t *testing.T) {
	data := []byte{0x00, 0x0c, 100, 0x00, 0x22}
	s := music.NewStream(testTrack(data), tickRate)
	var ev music.Event
	require.True(t, s.GetEvent(&ev))

	// Seeking to an opcode position replays from there.
	s.Seek(1)
	require.True(t, s.GetEvent(&ev))
	assert.Equal(t, music.Volume, ev.Code)

	assert.Panics(t, func() { s.Seek(uint32(len(data) + 1)) })
}
