// Package wmd reads and writes the WMD music-description files used by PSX
// Doom: the instruments, songs and MIDI-like event streams that drive the
// sequencer.
package wmd

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"os"

	"github.com/ben-michell/psxdmh"
)

const (
	// spsxSignature is the "SPSX" magic at the start of a WMD file.
	spsxSignature = 0x58535053

	// spsxVersion is the only supported SPSX version.
	spsxVersion = 1
)

// SubInstrument manages a subset of the range of notes for an instrument.
type SubInstrument struct {
	// Range of notes this sub-instrument applies to, inclusive of the end
	// points.
	FirstNote uint8
	LastNote  uint8

	// Patch played by the sub-instrument.
	Patch uint16

	// Volume adjustment for this sub-instrument.
	Volume uint8

	// Note number that maps to the natural playback frequency of 44100 Hz,
	// plus a fractional adjustment in 1/256ths of a note.
	Tuning     uint8
	FineTuning uint8

	// Panning: full left is 0x00, centre is 0x40, full right is 0x7f.
	Pan uint8

	// Number of notes to shift by at full bend deflection (+/- 0x2000).
	// Doom and Final Doom use identical pairs for down and up.
	BendSensitivityDown uint8
	BendSensitivityUp   uint8

	// Flags and priority are carried for round-tripping but not used by
	// playback.
	Flags    uint8
	Priority uint8

	// SPU envelope register settings.
	SpuADS uint16
	SpuSR  uint16
}

// Instrument is a collection of one or more sub-instruments.
type Instrument struct {
	SubInstruments []SubInstrument
}

// SubInstrumentFor finds the sub-instrument covering a note. A note not
// covered by any sub-instrument is a fatal error.
func (i *Instrument) SubInstrumentFor(note uint8) *SubInstrument {
	for s := range i.SubInstruments {
		sub := &i.SubInstruments[s]
		if note >= sub.FirstNote && note <= sub.LastNote {
			return sub
		}
	}
	psxdmh.Fatal(psxdmh.MissingResource, "no sub-instrument covers note %d", note)
	return nil
}

// SongTrack carries the music data for a single instrument within a song.
type SongTrack struct {
	// Index of the instrument used for the track.
	Instrument uint16

	// Tempo specification.
	BeatsPerMinute uint16
	TicksPerBeat   uint16

	// Whether the track repeats, and the offset of the start of the
	// repeating part. Sound effects don't repeat and music does, except
	// songs 117 and 118 in Final Doom.
	Repeat      bool
	RepeatStart uint32

	// Music data encoded in a MIDI-like form, parsed by the music package.
	Data []byte

	// Unknown header bytes, kept for round-tripping. All songs have
	// 01 18 80 00 01 28 in the first group and sound effects
	// 01 01 64 00 00 28; the second byte may be the number of voices.
	Unknown0 [6]byte
	Unknown1 [6]byte
}

// Song is a collection of one or more tracks.
type Song struct {
	Tracks []SongTrack

	// Unknown bytes following the track count.
	Unknown [2]byte
}

// File is a parsed WMD music description.
type File struct {
	instruments []Instrument
	songs       []Song

	// Unknown bytes following the file header and the patch record count.
	unknown0 [14]byte
	unknown1 [8]byte
}

// NewFile builds a file from instruments and songs. This is mostly useful
// for constructing synthetic music in tests and tools.
func NewFile(instruments []Instrument, songs []Song) *File {
	return &File{instruments: instruments, songs: songs}
}

// Load parses a WMD file.
func Load(fileName string) (*File, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, err
	}
	f := &File{}
	if err := f.parse(data); err != nil {
		return nil, err
	}
	return f, nil
}

// IsEmpty tests if the file holds no songs or instruments.
func (f *File) IsEmpty() bool { return len(f.songs) == 0 && len(f.instruments) == 0 }

// Songs returns the number of songs.
func (f *File) Songs() int { return len(f.songs) }

// Song returns a song by index.
func (f *File) Song(index int) *Song { return &f.songs[index] }

// Track returns a track from a song by index.
func (f *File) Track(songIndex, trackIndex int) *SongTrack {
	return &f.songs[songIndex].Tracks[trackIndex]
}

// Instruments returns the number of instruments.
func (f *File) Instruments() int { return len(f.instruments) }

// Instrument returns an instrument by index.
func (f *File) Instrument(index int) *Instrument { return &f.instruments[index] }

// NoteToFrequency converts a raw note value to a frequency in Hz, taking
// into account the sub-instrument tuning and the current pitch bend. The
// unit pitch bend is the raw bend scaled to notes at a sensitivity of 1.
func (f *File) NoteToFrequency(instrumentIndex int, note uint8, unitPitchBend psxdmh.Mono) uint32 {
	sub := f.Instrument(instrumentIndex).SubInstrumentFor(note)
	tuning := float64(sub.Tuning) + float64(sub.FineTuning)/256
	adjusted := (float64(note)-tuning)/12 + float64(sub.BendSensitivityDown)*float64(unitPitchBend)
	frequency := int32(44100*math.Pow(2, adjusted) + 0.5)
	if frequency < 1 {
		frequency = 1
	}
	return uint32(frequency)
}

// wmdReader tracks a read position within the file data, converting read
// failures into corrupt-file errors.
type wmdReader struct {
	data []byte
	pos  int
	err  error
}

func (r *wmdReader) read(buffer []byte) {
	if r.err != nil {
		return
	}
	if r.pos+len(buffer) > len(r.data) {
		r.err = psxdmh.Errorf(psxdmh.CorruptStream, "truncated WMD file")
		return
	}
	copy(buffer, r.data[r.pos:])
	r.pos += len(buffer)
}

func (r *wmdReader) read8() uint8 {
	var b [1]byte
	r.read(b[:])
	return b[0]
}

func (r *wmdReader) read16() uint16 {
	var b [2]byte
	r.read(b[:])
	return binary.LittleEndian.Uint16(b[:])
}

func (r *wmdReader) read32() uint32 {
	var b [4]byte
	r.read(b[:])
	return binary.LittleEndian.Uint32(b[:])
}

func (r *wmdReader) skip(count int) {
	if r.err == nil {
		if r.pos+count > len(r.data) {
			r.err = psxdmh.Errorf(psxdmh.CorruptStream, "truncated WMD file")
			return
		}
		r.pos += count
	}
}

// parse loads the file contents from the raw bytes.
func (f *File) parse(data []byte) error {
	reader := &wmdReader{data: data}
	if reader.read32() != spsxSignature {
		return psxdmh.Errorf(psxdmh.CorruptStream, "not a WMD file (bad signature)")
	}
	if reader.read32() != spsxVersion {
		return psxdmh.Errorf(psxdmh.CorruptStream, "WMD file uses an unsupported SPSX version")
	}

	songCount := int(reader.read16())
	reader.read(f.unknown0[:])

	// Record counts and sizes. The record sizes are fixed by the format.
	instrumentCount := int(reader.read16())
	if size := reader.read16(); reader.err == nil && size != 4 {
		return psxdmh.Errorf(psxdmh.CorruptStream, "corrupt WMD file (bad instrument record size)")
	}
	subInstrumentCount := int(reader.read16())
	if size := reader.read16(); reader.err == nil && size != 16 {
		return psxdmh.Errorf(psxdmh.CorruptStream, "corrupt WMD file (bad sub-instrument record size)")
	}
	patchCount := int(reader.read16())
	if size := reader.read16(); reader.err == nil && size != 12 {
		return psxdmh.Errorf(psxdmh.CorruptStream, "corrupt WMD file (bad patch record size)")
	}
	reader.read(f.unknown1[:])

	// Instrument definitions: a count and first index per instrument. The
	// sub-instruments must be contiguous and in instrument order.
	counts := make([]int, instrumentCount)
	expectedFirst := 0
	for i := range counts {
		counts[i] = int(reader.read16())
		if first := int(reader.read16()); reader.err == nil && first != expectedFirst {
			return psxdmh.Errorf(psxdmh.CorruptStream, "corrupt WMD file (non-contiguous sub-instruments)")
		}
		expectedFirst += counts[i]
	}
	if reader.err == nil && expectedFirst != subInstrumentCount {
		return psxdmh.Errorf(psxdmh.CorruptStream, "corrupt WMD file (wrong number of sub-instruments)")
	}

	// Sub-instrument definitions, read directly into the instruments.
	f.instruments = make([]Instrument, instrumentCount)
	for i := range f.instruments {
		f.instruments[i].SubInstruments = make([]SubInstrument, counts[i])
		for s := range f.instruments[i].SubInstruments {
			sub := &f.instruments[i].SubInstruments[s]
			sub.Priority = reader.read8()
			sub.Flags = reader.read8()
			sub.Volume = reader.read8()
			sub.Pan = reader.read8()
			sub.Tuning = reader.read8()
			sub.FineTuning = reader.read8()
			sub.FirstNote = reader.read8()
			sub.LastNote = reader.read8()
			sub.BendSensitivityDown = reader.read8()
			sub.BendSensitivityUp = reader.read8()
			sub.Patch = reader.read16()
			sub.SpuADS = reader.read16()
			sub.SpuSR = reader.read16()
		}
	}

	// Skip the patch array: each record is a load offset, a length, and a
	// zero field. The patch data itself lives in the LCD files.
	reader.skip(patchCount * 12)

	// Song and track definitions.
	f.songs = make([]Song, songCount)
	for i := range f.songs {
		song := &f.songs[i]
		trackCount := int(reader.read16())
		reader.read(song.Unknown[:])
		song.Tracks = make([]SongTrack, trackCount)
		for t := range song.Tracks {
			track := &song.Tracks[t]
			reader.read(track.Unknown0[:])
			track.Instrument = reader.read16()
			reader.read(track.Unknown1[:])
			track.BeatsPerMinute = reader.read16()
			track.TicksPerBeat = reader.read16()
			track.Repeat = reader.read16() != 0
			dataLength := int(reader.read32())
			if track.Repeat {
				track.RepeatStart = reader.read32()
			}
			if reader.err != nil {
				return reader.err
			}
			track.Data = make([]byte, dataLength)
			reader.read(track.Data)
		}
	}
	return reader.err
}

// Write stores the contents of this object in a file.
func (f *File) Write(fileName string) error {
	file, err := os.Create(fileName)
	if err != nil {
		return err
	}
	defer file.Close()
	if err := f.encode(file); err != nil {
		return err
	}
	return file.Close()
}

func (f *File) encode(w io.Writer) error {
	buffer := &bytes.Buffer{}
	write16 := func(v uint16) { binary.Write(buffer, binary.LittleEndian, v) }
	write32 := func(v uint32) { binary.Write(buffer, binary.LittleEndian, v) }

	subInstruments := 0
	for i := range f.instruments {
		subInstruments += len(f.instruments[i].SubInstruments)
	}

	write32(spsxSignature)
	write32(spsxVersion)
	write16(uint16(len(f.songs)))
	buffer.Write(f.unknown0[:])
	write16(uint16(len(f.instruments)))
	write16(4)
	write16(uint16(subInstruments))
	write16(16)
	write16(0)
	write16(12)
	buffer.Write(f.unknown1[:])

	first := 0
	for i := range f.instruments {
		write16(uint16(len(f.instruments[i].SubInstruments)))
		write16(uint16(first))
		first += len(f.instruments[i].SubInstruments)
	}
	for i := range f.instruments {
		for s := range f.instruments[i].SubInstruments {
			sub := &f.instruments[i].SubInstruments[s]
			buffer.WriteByte(sub.Priority)
			buffer.WriteByte(sub.Flags)
			buffer.WriteByte(sub.Volume)
			buffer.WriteByte(sub.Pan)
			buffer.WriteByte(sub.Tuning)
			buffer.WriteByte(sub.FineTuning)
			buffer.WriteByte(sub.FirstNote)
			buffer.WriteByte(sub.LastNote)
			buffer.WriteByte(sub.BendSensitivityDown)
			buffer.WriteByte(sub.BendSensitivityUp)
			write16(sub.Patch)
			write16(sub.SpuADS)
			write16(sub.SpuSR)
		}
	}
	for i := range f.songs {
		song := &f.songs[i]
		write16(uint16(len(song.Tracks)))
		buffer.Write(song.Unknown[:])
		for t := range song.Tracks {
			track := &song.Tracks[t]
			buffer.Write(track.Unknown0[:])
			write16(track.Instrument)
			buffer.Write(track.Unknown1[:])
			write16(track.BeatsPerMinute)
			write16(track.TicksPerBeat)
			if track.Repeat {
				write16(1)
			} else {
				write16(0)
			}
			write32(uint32(len(track.Data)))
			if track.Repeat {
				write32(track.RepeatStart)
			}
			buffer.Write(track.Data)
		}
	}
	_, err := w.Write(buffer.Bytes())
	return err
}
