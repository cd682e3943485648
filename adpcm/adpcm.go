// Package adpcm decodes the ADPCM encoded audio data used by the PSX SPU.
// Audio is stored as a sequence of 16-byte blocks, each holding 28 4-bit
// samples plus a filter/shift header and flow control flags.
package adpcm

import (
	"github.com/ben-michell/psxdmh"
)

const (
	// BlockSize is the number of bytes per ADPCM encoded data block.
	BlockSize = 16

	// SamplesPerBlock is the number of audio samples generated from each
	// data block.
	SamplesPerBlock = 28
)

// Tables used to decode ADPCM data.
var (
	posTable = [5]int32{0, 60, 115, 98, 122}
	negTable = [5]int32{0, 0, -52, -55, -60}
)

// IsRepeatStart tests whether a block is flagged as the start of a repeat.
func IsRepeatStart(block []byte) bool { return block[1]&0x04 == 0x04 }

// IsFinal tests whether a block is flagged as the final block.
func IsFinal(block []byte) bool { return block[1]&0x01 == 0x01 }

// IsRepeatJump tests whether a block is flagged as repeating after this
// block.
func IsRepeatJump(block []byte) bool { return block[1]&0x03 == 0x03 }

// RepeatOffset finds the offset of the repeat point within ADPCM data. Two
// conditions must be met for a valid repeat: a block must be flagged as the
// repeat start, and the final block must have the repeat jump flag set. If
// no repeat is found the return value is negative.
func RepeatOffset(data []byte) int32 {
	block := int32(len(data)) - BlockSize
	if IsRepeatJump(data[block:]) {
		for ; block >= 0; block -= BlockSize {
			if IsRepeatStart(data[block:]) {
				return block
			}
		}
	}
	return -1
}

// Edit edits a stream of ADPCM data in place. Blocks at the start of the
// stream can be silenced, and blocks at the end removed. Repeating patches
// are preserved. The returned slice aliases data.
func Edit(data []byte, silenceStart, removeEnd int) []byte {
	// Zero blocks at the start, leaving their flags intact.
	block := 0
	for ; silenceStart > 0; silenceStart-- {
		for i := 2; i < BlockSize; i++ {
			data[block+i] = 0
		}
		block += BlockSize
	}

	// Remove blocks from the end, preserving the final / repeat flags.
	if removeEnd > 0 {
		flags := data[len(data)-BlockSize+1]
		data = data[:len(data)-removeEnd*BlockSize]
		data[len(data)-BlockSize+1] = flags
	}
	return data
}

// Decoder decodes ADPCM encoded audio data as a mono module. The decoder
// does not copy the data, relying on its owner to keep the slice valid for
// the lifetime of the decoder.
type Decoder struct {
	// ADPCM encoded audio data.
	data []byte

	// Current position within the data. Negative once all audio data has
	// been exhausted.
	current int32

	// Repeat point within the data. Negative means no repeat has been seen.
	repeat int32

	// Number of times to play repeating sounds. A value of 0 repeats
	// indefinitely, while other values play exactly that many times.
	playCount uint32

	// Previous two samples: the previous in s0, the one before in s1.
	s0, s1 int32

	// Buffered unpacked data block.
	buffer     [SamplesPerBlock]int16
	bufferNext int
}

// NewDecoder returns a decoder for a stream of ADPCM blocks. The playCount
// controls how many times repeating sounds are played: 0 plays
// indefinitely, any other value plays exactly that number of times. It is
// ignored for non-repeating sounds.
func NewDecoder(data []byte, playCount uint32) *Decoder {
	return &Decoder{
		data:       data,
		repeat:     -1,
		playCount:  playCount,
		bufferNext: SamplesPerBlock,
	}
}

// IsRunning tests whether the decoder can still produce output.
func (d *Decoder) IsRunning() bool { return !d.bufferEmpty() || d.current >= 0 }

// Next produces the next sample.
func (d *Decoder) Next(s *psxdmh.Mono) bool {
	// Return silence if the audio data has been exhausted.
	if d.bufferEmpty() && d.current < 0 {
		*s = 0
		return false
	}

	// Decode the next block when the buffer is empty.
	if d.bufferEmpty() {
		d.decodeBlock()
		d.nextBlock()
	}

	*s = psxdmh.Mono(d.buffer[d.bufferNext]) / 32768
	d.bufferNext++
	return true
}

func (d *Decoder) bufferEmpty() bool { return d.bufferNext >= SamplesPerBlock }

// decodeBlock decodes and buffers the current ADPCM encoded data block.
func (d *Decoder) decodeBlock() {
	// Extract the unpacking control values.
	block := d.data[d.current:]
	filter := int32(block[0] >> 4)
	if filter >= int32(len(posTable)) {
		psxdmh.Fatal(psxdmh.CorruptStream, "corrupt ADPCM block (bad filter)")
	}
	shift := block[0] & 0x0f

	// Remember repeat points.
	if IsRepeatStart(block) {
		d.repeat = d.current
	}

	// Unpack the data nybbles into bytes, low nybble first.
	var nybble [SamplesPerBlock]int8
	for unpack := 0; unpack < SamplesPerBlock/2; unpack++ {
		nybble[2*unpack] = int8(block[2+unpack]&0x0f) << 4
		nybble[2*unpack+1] = int8(block[2+unpack] & 0xf0)
	}

	// Decode the samples into the buffer. Clipping prevents wrapping; the
	// only sound in Doom that gets clipped is patch 0x0b (the BFG
	// explosion).
	d.bufferNext = 0
	for decode := 0; decode < SamplesPerBlock; decode++ {
		v := (int32(nybble[decode]) << 8) >> shift
		v += (d.s0*posTable[filter] + d.s1*negTable[filter] + 32) >> 6
		d.buffer[decode] = int16(psxdmh.Clamp(v, -32768, 32767))
		d.s1 = d.s0
		d.s0 = int32(d.buffer[decode])
	}
}

// nextBlock moves to the next block of data, handling repeating sounds.
func (d *Decoder) nextBlock() {
	block := d.data[d.current:]
	if IsFinal(block) {
		// Stop if the data doesn't repeat or only one play was requested.
		if !IsRepeatJump(block) || d.repeat < 0 || d.playCount == 1 {
			d.current = -1
		} else {
			if d.playCount > 0 {
				d.playCount--
			}
			d.current = d.repeat
		}
	} else {
		d.current += BlockSize
	}
}
