// Package stream provides the aggregation modules of the audio graph:
// volume scaling, silence shaping, stream splitting, level normalization
// and statistics collection.
package stream

import "github.com/ben-michell/psxdmh"

// Volume scales every sample from its source by a fixed level.
type Volume[S psxdmh.Sample[S]] struct {
	source psxdmh.Module[S]
	level  psxdmh.Mono
}

// NewVolume wraps source in a volume adjuster.
func NewVolume[S psxdmh.Sample[S]](source psxdmh.Module[S], level psxdmh.Mono) *Volume[S] {
	return &Volume[S]{source: source, level: level}
}

// IsRunning tests whether the module can still produce output.
func (v *Volume[S]) IsRunning() bool { return v.source.IsRunning() }

// Next produces the next sample.
func (v *Volume[S]) Next(s *S) bool {
	live := v.source.Next(s)
	*s = (*s).Scale(v.level)
	return live
}
