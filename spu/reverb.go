package spu

import (
	"github.com/ben-michell/psxdmh"
	"github.com/ben-michell/psxdmh/dsp"
	"github.com/ben-michell/psxdmh/stream"
)

// ReverbRate is the sample rate the reverb core operates at.
const ReverbRate = 22050

// Reverb wraps the emulation of the SPU reverb effect. It splits off a
// copy of the audio stream, resamples it to 22.05 kHz, runs it through the
// reverb core, resamples back to the original rate, and mixes the result
// with the original audio.
type Reverb struct {
	// Original and reverb effect streams, mixed by this module.
	original *stream.Splitter[psxdmh.Stereo]
	effect   psxdmh.Module[psxdmh.Stereo]
}

// NewReverb wraps source in the reverb effect. The preset must not be
// ReverbOff or ReverbAuto, and the volume is the wet gain.
func NewReverb(source psxdmh.Module[psxdmh.Stereo], sampleRate uint32, preset ReverbPreset, volume psxdmh.Stereo, sincWindow uint32) *Reverb {
	// Split the source stream and use one copy as the original audio. The
	// other copy feeds the reverb core. When the source is already at
	// 22.05 kHz there is no need to resample. Otherwise resample to
	// 22.05 kHz, generate the reverb, and resample back. Ideally the
	// down-sampling would filter out all frequencies above the target
	// Nyquist limit, but that takes out too much of the frequencies we
	// want; a gentler cut off doesn't introduce audible artifacts.
	const maxCutOff = 0.45
	original := stream.NewSplitter[psxdmh.Stereo](source)
	effect := psxdmh.Module[psxdmh.Stereo](original.Split())
	if sampleRate != ReverbRate {
		if sampleRate > ReverbRate {
			cutOff := min(float64(ReverbRate)/float64(sampleRate), maxCutOff)
			effect = dsp.NewFilter[psxdmh.Stereo](effect, dsp.LowPass, cutOff)
		}
		effect = dsp.NewSinc[psxdmh.Stereo](effect, sincWindow, sampleRate, ReverbRate)
	}
	effect = newReverbCore(effect, preset, volume)
	if sampleRate != ReverbRate {
		if sampleRate < ReverbRate {
			cutOff := min(float64(sampleRate)/float64(ReverbRate), maxCutOff)
			effect = dsp.NewFilter[psxdmh.Stereo](effect, dsp.LowPass, cutOff)
		}
		effect = dsp.NewSinc[psxdmh.Stereo](effect, sincWindow, ReverbRate, sampleRate)
	}
	return &Reverb{original: original, effect: effect}
}

// IsRunning tests whether the module can still produce output.
func (r *Reverb) IsRunning() bool {
	return r.original.IsRunning() || r.effect.IsRunning()
}

// Next produces the next sample by mixing the reverb stream back into the
// original audio.
func (r *Reverb) Next(s *psxdmh.Stereo) bool {
	originalLive := r.original.Next(s)
	var effect psxdmh.Stereo
	effectLive := r.effect.Next(&effect)
	*s = s.Add(effect)
	return originalLive || effectLive
}

// reverbCore emulates the SPU reverb delay network. It operates strictly
// at 22.05 kHz on a per-preset circular work area.
type reverbCore struct {
	source psxdmh.Module[psxdmh.Stereo]
	volume psxdmh.Stereo

	// Work area and the current position within it.
	buffer  []psxdmh.Mono
	current int

	// SPU reverb registers. Volume registers are stored as samples, while
	// address registers (specified as bytes/8) are converted to buffer
	// offsets.
	dAPF1   int
	dAPF2   int
	vIIR    psxdmh.Mono
	vComb1  psxdmh.Mono
	vComb2  psxdmh.Mono
	vComb3  psxdmh.Mono
	vComb4  psxdmh.Mono
	vWall   psxdmh.Mono
	vAPF1   psxdmh.Mono
	vAPF2   psxdmh.Mono
	mLSame  int
	mRSame  int
	mLComb1 int
	mRComb1 int
	mLComb2 int
	mRComb2 int
	dLSame  int
	dRSame  int
	mLDiff  int
	mRDiff  int
	mLComb3 int
	mRComb3 int
	mLComb4 int
	mRComb4 int
	dLDiff  int
	dRDiff  int
	mLAPF1  int
	mRAPF1  int
	mLAPF2  int
	mRAPF2  int
	vLIn    psxdmh.Mono
	vRIn    psxdmh.Mono

	// Address offsets derived from the registers.
	mLSame1     int // mLSame - 1
	mRSame1     int // mRSame - 1
	mLDiff1     int // mLDiff - 1
	mRDiff1     int // mRDiff - 1
	mLAPF1dAPF1 int // mLAPF1 - dAPF1
	mRAPF1dAPF1 int // mRAPF1 - dAPF1
	mLAPF2dAPF2 int // mLAPF2 - dAPF2
	mRAPF2dAPF2 int // mRAPF2 - dAPF2

	// Magnitude representing the threshold of silence at the reverb
	// volume.
	silence psxdmh.Mono

	// Once the source has stopped the core runs until the work area decays
	// to silence. The last non-silent location found is remembered so
	// repeated IsRunning calls don't rescan the whole buffer, and the
	// silent flag latches the final state.
	bufferIsSilent    bool
	lastUnsilentIndex int
}

// regToVolume converts an SPU register value into a volume.
func regToVolume(v uint16) psxdmh.Mono { return psxdmh.Mono(int16(v)) / 32768 }

// regToOffset converts an SPU register value from a bytes/8 offset to a
// buffer offset.
func regToOffset(v uint16) int { return int(v) * 8 / 2 }

// newReverbCore wraps source in the reverb delay network.
func newReverbCore(source psxdmh.Module[psxdmh.Stereo], preset ReverbPreset, volume psxdmh.Stereo) *reverbCore {
	if preset <= ReverbOff || preset >= reverbPresetCount {
		psxdmh.Fatal(psxdmh.InvalidConfig, "reverb preset %q can't drive the reverb core", preset)
	}
	r := &reverbCore{
		source: source,
		volume: volume,
		buffer: make([]psxdmh.Mono, reverbBufferSize[preset]),
	}

	// Calculate the threshold of silence.
	maxVolume := volume.L
	if volume.R > maxVolume {
		maxVolume = volume.R
	}
	if maxVolume < 0.001 {
		maxVolume = 0.001
	}
	r.silence = psxdmh.Silence / maxVolume

	// Load the preset configuration into the registers.
	regs := &reverbRegisters[preset]
	r.dAPF1 = regToOffset(regs[0x00])
	r.dAPF2 = regToOffset(regs[0x01])
	r.vIIR = regToVolume(regs[0x02])
	r.vComb1 = regToVolume(regs[0x03])
	r.vComb2 = regToVolume(regs[0x04])
	r.vComb3 = regToVolume(regs[0x05])
	r.vComb4 = regToVolume(regs[0x06])
	r.vWall = regToVolume(regs[0x07])
	r.vAPF1 = regToVolume(regs[0x08])
	r.vAPF2 = regToVolume(regs[0x09])
	r.mLSame = regToOffset(regs[0x0a])
	r.mRSame = regToOffset(regs[0x0b])
	r.mLComb1 = regToOffset(regs[0x0c])
	r.mRComb1 = regToOffset(regs[0x0d])
	r.mLComb2 = regToOffset(regs[0x0e])
	r.mRComb2 = regToOffset(regs[0x0f])
	r.dLSame = regToOffset(regs[0x10])
	r.dRSame = regToOffset(regs[0x11])
	r.mLDiff = regToOffset(regs[0x12])
	r.mRDiff = regToOffset(regs[0x13])
	r.mLComb3 = regToOffset(regs[0x14])
	r.mRComb3 = regToOffset(regs[0x15])
	r.mLComb4 = regToOffset(regs[0x16])
	r.mRComb4 = regToOffset(regs[0x17])
	r.dLDiff = regToOffset(regs[0x18])
	r.dRDiff = regToOffset(regs[0x19])
	r.mLAPF1 = regToOffset(regs[0x1a])
	r.mRAPF1 = regToOffset(regs[0x1b])
	r.mLAPF2 = regToOffset(regs[0x1c])
	r.mRAPF2 = regToOffset(regs[0x1d])
	r.vLIn = regToVolume(regs[0x1e])
	r.vRIn = regToVolume(regs[0x1f])

	// Calculate derived addresses.
	size := len(r.buffer)
	r.mLSame1 = r.wrap(r.mLSame + size - 1)
	r.mRSame1 = r.wrap(r.mRSame + size - 1)
	r.mLDiff1 = r.wrap(r.mLDiff + size - 1)
	r.mRDiff1 = r.wrap(r.mRDiff + size - 1)
	r.mLAPF1dAPF1 = r.wrap(r.mLAPF1 + size - r.dAPF1)
	r.mRAPF1dAPF1 = r.wrap(r.mRAPF1 + size - r.dAPF1)
	r.mLAPF2dAPF2 = r.wrap(r.mLAPF2 + size - r.dAPF2)
	r.mRAPF2dAPF2 = r.wrap(r.mRAPF2 + size - r.dAPF2)
	return r
}

// wrap folds an offset into the range used by the buffer. The offset is
// never more than one buffer length out of range.
func (r *reverbCore) wrap(offset int) int {
	if offset < len(r.buffer) {
		return offset
	}
	return offset - len(r.buffer)
}

// read reads a value from the work area relative to the current position.
func (r *reverbCore) read(offset int) psxdmh.Mono {
	return r.buffer[r.wrap(r.current+offset)]
}

// write stores a value into the work area relative to the current
// position.
func (r *reverbCore) write(offset int, v psxdmh.Mono) {
	r.buffer[r.wrap(r.current+offset)] = v.FlushDenorm()
}

// IsRunning tests whether the module can still produce output. After the
// source stops the core runs until the reverb in the work area dies down.
func (r *reverbCore) IsRunning() bool {
	if r.source.IsRunning() {
		return true
	}
	if r.bufferIsSilent {
		return false
	}

	// Look for a non-silent sample, starting where the last one was found.
	start := r.lastUnsilentIndex
	for {
		if r.buffer[r.lastUnsilentIndex].Magnitude() > r.silence {
			break
		}
		if r.lastUnsilentIndex++; r.lastUnsilentIndex >= len(r.buffer) {
			r.lastUnsilentIndex = 0
		}
		if r.lastUnsilentIndex == start {
			break
		}
	}
	r.bufferIsSilent = r.buffer[r.lastUnsilentIndex].Magnitude() <= r.silence
	return !r.bufferIsSilent
}

// Next produces the next sample.
func (r *reverbCore) Next(s *psxdmh.Stereo) bool {
	live := r.source.Next(s) || r.IsRunning()
	if !live {
		return false
	}

	// Apply volume to the input.
	lIn := r.vLIn * s.L
	rIn := r.vRIn * s.R

	// Same side reflection.
	prevMLSame := r.read(r.mLSame1)
	prevMRSame := r.read(r.mRSame1)
	r.write(r.mLSame, (lIn+r.read(r.dLSame)*r.vWall-prevMLSame)*r.vIIR+prevMLSame)
	r.write(r.mRSame, (rIn+r.read(r.dRSame)*r.vWall-prevMRSame)*r.vIIR+prevMRSame)

	// Different side reflection.
	prevMLDiff := r.read(r.mLDiff1)
	prevMRDiff := r.read(r.mRDiff1)
	r.write(r.mLDiff, (lIn+r.read(r.dRDiff)*r.vWall-prevMLDiff)*r.vIIR+prevMLDiff)
	r.write(r.mRDiff, (rIn+r.read(r.dLDiff)*r.vWall-prevMRDiff)*r.vIIR+prevMRDiff)

	// Early echo.
	lOut := r.vComb1*r.read(r.mLComb1) + r.vComb2*r.read(r.mLComb2) + r.vComb3*r.read(r.mLComb3) + r.vComb4*r.read(r.mLComb4)
	rOut := r.vComb1*r.read(r.mRComb1) + r.vComb2*r.read(r.mRComb2) + r.vComb3*r.read(r.mRComb3) + r.vComb4*r.read(r.mRComb4)

	// Late reverb all pass filter 1.
	lOut -= r.vAPF1 * r.read(r.mLAPF1dAPF1)
	r.write(r.mLAPF1, lOut)
	lOut = lOut*r.vAPF1 + r.read(r.mLAPF1dAPF1)
	rOut -= r.vAPF1 * r.read(r.mRAPF1dAPF1)
	r.write(r.mRAPF1, rOut)
	rOut = rOut*r.vAPF1 + r.read(r.mRAPF1dAPF1)

	// Late reverb all pass filter 2.
	lOut -= r.vAPF2 * r.read(r.mLAPF2dAPF2)
	r.write(r.mLAPF2, lOut)
	lOut = lOut*r.vAPF2 + r.read(r.mLAPF2dAPF2)
	rOut -= r.vAPF2 * r.read(r.mRAPF2dAPF2)
	r.write(r.mRAPF2, rOut)
	rOut = rOut*r.vAPF2 + r.read(r.mRAPF2dAPF2)

	// Apply volume to the output and advance the buffer position.
	*s = psxdmh.Stereo{L: lOut, R: rOut}.Mul(r.volume).FlushDenorm()
	if r.current++; r.current >= len(r.buffer) {
		r.current = 0
	}
	return true
}
