package psxdmh

import (
	"fmt"
	"math"
)

// Clamp limits a value to [min, max].
func Clamp[T int | int32 | int64 | float64 | Mono](value, min, max T) T {
	if value <= min {
		return min
	}
	if value >= max {
		return max
	}
	return value
}

// DecibelsToAmplitude converts a dB value to an amplitude scale.
func DecibelsToAmplitude(db float64) float64 { return math.Pow(10, db/20) }

// AmplitudeToDecibels converts an amplitude scale to dB.
func AmplitudeToDecibels(amp float64) float64 { return 20 * math.Log10(amp) }

// TicksToTime formats a sample count as a time string. The precision gives
// the number of digits after the seconds and must be in the range [0, 3].
func TicksToTime(ticks uint32, sampleRate uint32, precision int) string {
	seconds := float64(ticks) / float64(sampleRate)
	minutes := uint32(seconds) / 60
	seconds -= float64(minutes * 60)
	width := 2
	if precision > 0 {
		width = 3 + precision
	}
	return fmt.Sprintf("%d:%0*.*f", minutes, width, precision, seconds)
}
