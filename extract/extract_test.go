package extract_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ben-michell/psxdmh"
	"github.com/ben-michell/psxdmh/adpcm"
	"github.com/ben-michell/psxdmh/extract"
	"github.com/ben-michell/psxdmh/lcd"
	"github.com/ben-michell/psxdmh/spu"
	"github.com/ben-michell/psxdmh/wmd"
)

// sliceSource emits a fixed sequence of samples.
type sliceSource struct {
	samples []psxdmh.Stereo
	next    int
}

func (s *sliceSource) IsRunning() bool { return s.next < len(s.samples) }

func (s *sliceSource) Next(out *psxdmh.Stereo) bool {
	if s.next >= len(s.samples) {
		*out = psxdmh.Stereo{}
		return false
	}
	*out = s.samples[s.next]
	s.next++
	return true
}

// buildSong assembles a synthetic WMD and LCD pair with one song, one
// instrument covering notes 60 to 72, and one short non-repeating patch.
func buildSong() (*wmd.File, *lcd.File) {
	instrument := wmd.Instrument{
		SubInstruments: []wmd.SubInstrument{
			{FirstNote: 60, LastNote: 72, Patch: 1, Volume: 127, Tuning: 60, Pan: 0x40},
		},
	}
	track := wmd.SongTrack{
		BeatsPerMinute: 44100,
		TicksPerBeat:   60,
		Data: []byte{
			0x00, 0x11, 60, 127,
			0x74, 0x12, 60,
			0x01, 0x22,
		},
	}
	wmdFile := wmd.NewFile([]wmd.Instrument{instrument}, []wmd.Song{{Tracks: []wmd.SongTrack{track}}})

	patch := make([]byte, adpcm.BlockSize)
	patch[1] = 0x01
	for i := 2; i < adpcm.BlockSize; i++ {
		patch[i] = 0x34
	}
	lcdFile := &lcd.File{}
	lcdFile.SetPatchByID(1, patch)
	return wmdFile, lcdFile
}

func testOptions() extract.Options {
	opts := extract.NewOptions()
	opts.ReverbPreset = spu.ReverbOff
	opts.SincWindow = 3
	return opts
}

func TestWriteWavRoundTrip(t *testing.T) {
	samples := []psxdmh.Stereo{
		{L: 0, R: 0},
		{L: 0.5, R: -0.5},
		{L: 1.0, R: -1.0},
		{L: 0.123, R: -0.321},
	}
	path := filepath.Join(t.TempDir(), "roundtrip.wav")
	count, err := extract.WriteWav[psxdmh.Stereo](&sliceSource{samples: samples}, path, 44100)
	require.NoError(t, err)
	require.Equal(t, uint32(len(samples)), count)

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()
	decoder := wav.NewDecoder(file)
	buffer, err := decoder.FullPCMBuffer()
	require.NoError(t, err)
	require.Equal(t, 2, buffer.Format.NumChannels)
	require.Equal(t, 44100, buffer.Format.SampleRate)
	require.Len(t, buffer.Data, 2*len(samples))

	for i, s := range samples {
		assert.InDelta(t, int(psxdmh.SampleToInt(s.L)), buffer.Data[2*i], 1, "left %d", i)
		assert.InDelta(t, int(psxdmh.SampleToInt(s.R)), buffer.Data[2*i+1], 1, "right %d", i)
	}
}

func TestSongsExtraction(t *testing.T) {
	wmdFile, lcdFile := buildSong()
	dir := t.TempDir()
	path := filepath.Join(dir, "song.wav")
	require.NoError(t, extract.Songs([]uint16{0}, wmdFile, lcdFile, path, testOptions()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(100))
}

func TestSongsExtractionIsDeterministic(t *testing.T) {
	wmdFile1, lcdFile1 := buildSong()
	wmdFile2, lcdFile2 := buildSong()
	dir := t.TempDir()
	first := filepath.Join(dir, "first.wav")
	second := filepath.Join(dir, "second.wav")

	opts := testOptions()
	opts.Normalize = true
	opts.LeadIn = 0.01
	opts.LeadOut = 0.01
	require.NoError(t, extract.Songs([]uint16{0}, wmdFile1, lcdFile1, first, opts))
	require.NoError(t, extract.Songs([]uint16{0}, wmdFile2, lcdFile2, second, opts))

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(a, b), "identical extractions must produce identical files")

	// The normalizer spill files are cleaned up.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestSongsWithReverb(t *testing.T) {
	wmdFile, lcdFile := buildSong()
	path := filepath.Join(t.TempDir(), "reverb.wav")
	opts := testOptions()
	opts.ReverbPreset = spu.ReverbRoom
	opts.ReverbVolume = 0.25
	require.NoError(t, extract.Songs([]uint16{0}, wmdFile, lcdFile, path, opts))

	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestPatchesSkipsMissingInRange(t *testing.T) {
	_, lcdFile := buildSong()
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(cwd)

	// Patch 2 does not exist: fatal alone, skipped in a range.
	err = extract.Patches([]uint16{2}, lcdFile, "", testOptions())
	require.Error(t, err)
	assert.ErrorIs(t, err, &psxdmh.Error{Kind: psxdmh.MissingResource})

	require.NoError(t, extract.Patches([]uint16{1, 2}, lcdFile, "", testOptions()))
	_, err = os.Stat(filepath.Join(dir, "Patch 1.wav"))
	require.NoError(t, err)
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*extract.Options)
	}{
		{name: "high pass above nyquist", modify: func(o *extract.Options) { o.HighPass = 30000 }},
		{name: "low pass above nyquist", modify: func(o *extract.Options) { o.LowPass = 23000 }},
		{name: "high pass above low pass", modify: func(o *extract.Options) { o.HighPass = 16000; o.LowPass = 15000 }},
		{name: "zero sinc window", modify: func(o *extract.Options) { o.SincWindow = 0 }},
		{name: "stereo width out of range", modify: func(o *extract.Options) { o.StereoWidth = 1.5 }},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			wmdFile, lcdFile := buildSong()
			opts := testOptions()
			test.modify(&opts)
			err := extract.Songs([]uint16{0}, wmdFile, lcdFile, filepath.Join(t.TempDir(), "out.wav"), opts)
			require.Error(t, err)
			assert.ErrorIs(t, err, &psxdmh.Error{Kind: psxdmh.InvalidConfig})
		})
	}
}

func TestDefaultSongName(t *testing.T) {
	assert.Equal(t, "SFX00 - Silence.wav", extract.DefaultSongName(0))
	assert.Equal(t, "D01 - Hangar.wav", extract.DefaultSongName(90))
	assert.Equal(t, "F04 - Combine.wav", extract.DefaultSongName(119))
	assert.Equal(t, "S500.wav", extract.DefaultSongName(500))
}

func TestDefaultReverb(t *testing.T) {
	preset, volume := extract.DefaultReverb(90)
	assert.Equal(t, spu.ReverbSpaceEcho, preset)
	assert.InDelta(t, float64(0x0fff)/0x7fff, float64(volume), 1e-6)

	preset, volume = extract.DefaultReverb(10)
	assert.Equal(t, spu.ReverbOff, preset)
	assert.Zero(t, volume)

	preset, _ = extract.DefaultReverb(113)
	assert.Equal(t, spu.ReverbSpaceEcho, preset)
}
