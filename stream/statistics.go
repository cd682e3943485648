package stream

import (
	"math"
	"time"

	"github.com/ben-michell/psxdmh"
)

// StatisticsMode selects how much a Statistics module records.
type StatisticsMode int

const (
	// Progress measures only the progress of audio generation.
	Progress StatisticsMode = iota

	// Detailed records all statistics.
	Detailed
)

// Callback reports extraction progress. The amount of audio generated so
// far is given in seconds. The rate of extraction (song time relative to
// wall time) is 0 until enough data has been generated to give a proper
// estimate. The operation is the label supplied at construction.
type Callback func(seconds uint32, rate float64, operation string)

// Statistics is a transparent pass-through that records the sample count,
// maximum magnitude and RMS of the audio flowing through it, and reports
// progress once per second of emitted audio.
type Statistics[S psxdmh.Sample[S]] struct {
	source    psxdmh.Module[S]
	mode      StatisticsMode
	rate      uint32
	callback  Callback
	operation string

	// Time when the first sample was processed.
	startTime time.Time

	// Elapsed half seconds when the extraction rate was last calculated,
	// and the last calculated rate.
	lastRateTime   uint32
	extractionRate float64

	samples                uint64
	samplesUntilNextSecond uint32

	maximum  psxdmh.Mono
	rmsTotal float64
}

// NewStatistics wraps source in a statistics collector. The rate is the
// sample rate of the audio. The callback may be nil.
func NewStatistics[S psxdmh.Sample[S]](source psxdmh.Module[S], mode StatisticsMode, rate uint32, callback Callback, operation string) *Statistics[S] {
	return &Statistics[S]{
		source:                 source,
		mode:                   mode,
		rate:                   rate,
		callback:               callback,
		operation:              operation,
		samplesUntilNextSecond: rate,
	}
}

// IsRunning tests whether the module can still produce output.
func (c *Statistics[S]) IsRunning() bool { return c.source.IsRunning() }

// Next produces the next sample.
func (c *Statistics[S]) Next(s *S) bool {
	// Start the timer on the first extraction.
	if c.samples == 0 {
		c.startTime = time.Now()
	}
	c.samples++
	live := c.source.Next(s)

	if c.mode == Detailed {
		if m := (*s).Magnitude(); m > c.maximum {
			c.maximum = m
		}

		// There is sufficient precision in a float64 to accumulate the sum
		// of squares accurately despite the large number of small values.
		c.rmsTotal += float64((*s).Magnitude()) * float64((*s).Magnitude())
	}

	// Update the progress callback once per second of extracted audio,
	// re-estimating the extraction rate every half wall second.
	if c.samplesUntilNextSecond--; c.samplesUntilNextSecond == 0 {
		c.samplesUntilNextSecond = c.rate
		songSeconds := uint32(c.samples / uint64(c.rate))
		elapsed := time.Since(c.startTime)
		elapsedHalfSeconds := uint32(2 * elapsed / time.Second)
		if elapsedHalfSeconds != c.lastRateTime && elapsed > 0 {
			c.extractionRate = psxdmh.Clamp(float64(songSeconds)/elapsed.Seconds(), 0, 1000000)
			c.lastRateTime = elapsedHalfSeconds
		}
		if c.callback != nil {
			c.callback(songSeconds, c.extractionRate, c.operation)
		}
	}
	return live
}

// ExtractionRate returns the last calculated extraction rate. This is 0
// until enough data has been generated to give a proper estimate.
func (c *Statistics[S]) ExtractionRate() float64 { return c.extractionRate }

// MaximumAmplitude returns the maximum sample magnitude seen. Only valid in
// detailed mode.
func (c *Statistics[S]) MaximumAmplitude() psxdmh.Mono { return c.maximum }

// MaximumDB returns the maximum sample magnitude seen in dB. Only valid in
// detailed mode.
func (c *Statistics[S]) MaximumDB() float64 {
	return psxdmh.AmplitudeToDecibels(float64(c.maximum))
}

// RmsDB returns the RMS level of the audio in dB. Only valid in detailed
// mode.
func (c *Statistics[S]) RmsDB() float64 {
	if c.samples == 0 {
		return 0
	}
	return psxdmh.AmplitudeToDecibels(math.Sqrt(c.rmsTotal / float64(c.samples)))
}
