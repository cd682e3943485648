// Package spu emulates the PlayStation Sound Processing Unit: the ADSR
// envelope generator, the per-voice channel pipeline, and the reverb
// effect.
package spu

import "github.com/ben-michell/psxdmh"

// EnvelopeRate is the sample rate the envelope generator operates at.
const EnvelopeRate = 44100

// envelopePhase identifies the current phase of an envelope.
type envelopePhase int

const (
	phaseAttack envelopePhase = iota
	phaseDecay
	phaseSustain
	phaseRelease
	phaseStopped
)

// envelopeMethod is how the volume changes during a phase.
type envelopeMethod int

const (
	methodLinear envelopeMethod = iota
	methodExponential
)

// envelopeDirection is which way the volume changes during a phase.
type envelopeDirection int

const (
	directionIncrease envelopeDirection = iota
	directionDecrease
)

// envelopeConfig describes how to run one phase.
type envelopeConfig struct {
	method    envelopeMethod
	direction envelopeDirection
	shift     int32
	step      int32
	target    int32
}

// Envelope emulates the SPU ADSR envelope generator. It runs at a fixed
// 44100 Hz and emits the envelope volume as a value from 0.0 to 1.0. The
// envelope starts the attack phase immediately and advances automatically
// until sustain, which runs until Release is called.
type Envelope struct {
	config [4]envelopeConfig
	phase  envelopePhase

	// Current envelope volume: 0x0000 - 0x7fff.
	volume int32

	// Current cycle within the current phase: the number of times to
	// repeat it, the number of ticks to wait each step, and the step to
	// apply to the volume after each wait.
	cycleRepeats     uint32
	cycleWait        uint32
	cycleCurrentWait uint32
	cycleStep        int32
}

// NewEnvelope decodes the two SPU ADSR register words into an envelope.
func NewEnvelope(spuADS, spuSR uint16) *Envelope {
	e := &Envelope{
		cycleRepeats:     1,
		cycleWait:        1,
		cycleCurrentWait: 1,
	}

	e.config[phaseAttack] = envelopeConfig{
		method:    envelopeMethod(spuADS >> 15),
		direction: directionIncrease,
		shift:     int32(spuADS>>10) & 0x1f,
		step:      7 - int32(spuADS>>8)&0x03,
		target:    0x7fff,
	}

	e.config[phaseDecay] = envelopeConfig{
		method:    methodExponential,
		direction: directionDecrease,
		shift:     int32(spuADS>>4) & 0x0f,
		step:      -8,
		target:    (int32(spuADS&0x0f) + 1) * 0x800,
	}

	// Sustain uses a dummy target level that will never be reached as the
	// transition from sustain to release is always triggered explicitly.
	sustain := envelopeConfig{
		method: envelopeMethod(spuSR >> 15),
		shift:  int32(spuSR>>8) & 0x1f,
	}
	if spuSR&0x4000 == 0 {
		sustain.direction = directionIncrease
		sustain.step = 7 - int32(spuSR>>6)&0x03
		sustain.target = 0x8000
	} else {
		sustain.direction = directionDecrease
		sustain.step = -8 + int32(spuSR>>6)&0x03
		sustain.target = -1
	}
	e.config[phaseSustain] = sustain

	e.config[phaseRelease] = envelopeConfig{
		method:    envelopeMethod(spuSR >> 5 & 0x01),
		direction: directionDecrease,
		shift:     int32(spuSR) & 0x1f,
		step:      -8,
		target:    0,
	}
	return e
}

// IsRunning tests if the envelope is still running. Once started, the
// envelope runs until the release phase drops the volume to 0.
func (e *Envelope) IsRunning() bool { return e.phase != phaseStopped }

// Next produces the next envelope level, from 0.0 to 1.0.
func (e *Envelope) Next(s *psxdmh.Mono) bool {
	// The current volume is the level returned this tick.
	*s = psxdmh.Mono(e.volume) / 0x7fff
	if e.phase == phaseStopped {
		return false
	}

	// Advance the current cycle. When the wait reaches 0 apply the step.
	if e.cycleCurrentWait--; e.cycleCurrentWait == 0 {
		e.volume = psxdmh.Clamp(e.volume+e.cycleStep, 0, 0x7fff)

		// Repeat the same wait and step if required, otherwise begin a new
		// cycle.
		if e.cycleRepeats--; e.cycleRepeats > 0 {
			e.cycleCurrentWait = e.cycleWait
		} else {
			// Advance to the next phase when the target level is reached.
			config := &e.config[e.phase]
			reached := e.volume >= config.target
			if config.direction == directionDecrease {
				reached = e.volume <= config.target
			}
			if reached {
				e.phase++
			}
			if e.phase != phaseStopped {
				e.calculateCycle()
			}
		}
	}
	return true
}

// Release starts the release phase. Unlike the other phases, release is
// explicitly triggered.
func (e *Envelope) Release() {
	if e.phase != phaseStopped {
		e.phase = phaseRelease
		e.calculateCycle()
	}
}

// calculateCycle works out the next wait and step cycle. The ADSR
// generator operates by calculating a series of wait times and steps,
// where the step is applied to the volume after the wait ticks have
// elapsed.
func (e *Envelope) calculateCycle() {
	config := &e.config[e.phase]
	e.cycleWait = 1 << max32(config.shift-11, 0)
	e.cycleStep = int32(uint32(config.step) << max32(11-config.shift, 0))
	if config.method == methodExponential {
		// Exponential increase isn't really exponential: it just changes
		// to a slower rate above 0x6000.
		if config.direction == directionIncrease && e.volume > 0x6000 {
			e.cycleWait *= 4
		} else if config.direction == directionDecrease {
			e.cycleStep = (e.cycleStep * e.volume) >> 15
		}
	}

	// The wait and step values can be rather more coarse than they need to
	// be. Break them down by powers of 2 to give a smoother envelope.
	e.cycleRepeats = 1
	for e.cycleWait&0x01 == 0 && e.cycleStep != 0 && e.cycleStep&0x01 == 0 {
		e.cycleRepeats <<= 1
		e.cycleWait >>= 1
		e.cycleStep >>= 1
	}
	e.cycleCurrentWait = e.cycleWait
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
