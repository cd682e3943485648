package stream

import "github.com/ben-michell/psxdmh"

// silencerState tracks the progress of silence processing.
type silencerState int

const (
	stateLeadIn silencerState = iota
	stateGaps
	stateLeadOut
	stateFinished
)

// Silencer adjusts the lead-in, lead-out, and gaps within the audio from
// its source: it produces exactly leadIn silent samples before any audio,
// truncates silent runs longer than gap, and emits exactly leadOut silent
// samples once the source finishes.
type Silencer[S psxdmh.Sample[S]] struct {
	source psxdmh.Module[S]

	// Number of silent samples to enforce at the start and end of audio.
	// Negative values deactivate the respective setting.
	leadIn  int32
	leadOut int32

	// Maximum length allowed for silent periods between non-silent audio.
	// Negative deactivates the setting.
	gap int32

	state silencerState

	// Number of silent samples awaiting output, followed by at most one
	// buffered non-silent sample.
	bufferedSilence uint32
	haveUnsilent    bool
	unsilentSample  S
}

// NewSilencer wraps source in a silence adjuster. The leadIn and leadOut
// are the number of silent samples to enforce at the start and end of the
// audio, and gap is the maximum length allowed for silent periods between
// non-silent audio. Negative values deactivate the respective settings. If
// gap is set it must be at least 1, otherwise it would interfere with
// waveforms that cross the zero level.
func NewSilencer[S psxdmh.Sample[S]](source psxdmh.Module[S], leadIn, leadOut, gap int32) *Silencer[S] {
	if gap == 0 {
		psxdmh.Fatal(psxdmh.InvalidConfig, "silent gap must be at least 1 sample")
	}
	return &Silencer[S]{
		source:  source,
		leadIn:  leadIn,
		leadOut: leadOut,
		gap:     gap,
		state:   stateLeadIn,
	}
}

// IsRunning tests whether the module can still produce output.
func (l *Silencer[S]) IsRunning() bool {
	if l.bufferedSilence == 0 && !l.haveUnsilent && l.state != stateFinished {
		l.processAudio()
	}
	return l.bufferedSilence > 0 || l.haveUnsilent
}

// Next produces the next sample.
func (l *Silencer[S]) Next(s *S) bool {
	if l.bufferedSilence == 0 && !l.haveUnsilent && l.state != stateFinished {
		l.processAudio()
	}

	// Buffered silence is always output first.
	var zero S
	if l.bufferedSilence > 0 {
		l.bufferedSilence--
		*s = zero
		return true
	}
	if l.haveUnsilent {
		l.haveUnsilent = false
		*s = l.unsilentSample
		return true
	}
	*s = zero
	return false
}

// processAudio pulls from the source until a non-silent sample or the end
// of the stream is found, then applies the state-specific silence rules.
// It must only be called when nothing is buffered.
func (l *Silencer[S]) processAudio() {
	for !l.haveUnsilent {
		if !l.source.Next(&l.unsilentSample) {
			break
		}
		if l.unsilentSample.IsSilent() {
			l.bufferedSilence++
		} else {
			l.haveUnsilent = true
		}
	}

	// Handle gaps: when a non-silent sample is found any buffered silence
	// is limited to the maximum gap. When none is found lead out begins.
	if l.state == stateGaps {
		if l.haveUnsilent {
			if l.gap >= 0 && int32(l.bufferedSilence) > l.gap {
				l.bufferedSilence = uint32(l.gap)
			}
		} else {
			l.state = stateLeadOut
		}
	}

	// Handle lead out: buffer the requested amount of silence and finish.
	if l.state == stateLeadOut {
		if l.leadOut >= 0 {
			l.bufferedSilence = uint32(l.leadOut)
		}
		l.state = stateFinished
	}

	// Handle lead in. This happens only the first time through, before any
	// non-silent sample has been seen.
	if l.state == stateLeadIn {
		if l.leadIn >= 0 {
			l.bufferedSilence = uint32(l.leadIn)
		}
		if l.haveUnsilent {
			l.state = stateGaps
		} else {
			l.state = stateLeadOut
		}
	}
}
