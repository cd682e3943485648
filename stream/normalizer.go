package stream

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"os"

	"github.com/ben-michell/psxdmh"
)

// Normalizer adjusts the level of the audio passing through it so that the
// highest amplitude is remapped to unity. It does this in two passes: the
// first call to Next drains the source completely into a temporary spill
// file while tracking the maximum magnitude, then samples are served back
// from the file with the gain applied. The temporary space required is
// twice that of the final file.
//
// The spill file is removed by Close, which must be called on every exit
// path, including after an error.
type Normalizer[S psxdmh.Sample[S]] struct {
	source psxdmh.Module[S]

	spillPath    string
	spillCreated bool
	spill        *os.File
	reader       *bufio.Reader

	// Normalization factor. Until the first pass completes this holds the
	// maximum allowed factor, which caps the gain.
	normalization psxdmh.Mono

	// Total samples spilled, and the next sample to serve.
	samples       uint32
	currentSample uint32
}

// NewNormalizer wraps source in a two-pass level normalizer. The spillPath
// names the temporary file used to buffer the source audio, and the
// normalizationLimit caps the gain in dB.
func NewNormalizer[S psxdmh.Sample[S]](source psxdmh.Module[S], spillPath string, normalizationLimit float64) *Normalizer[S] {
	return &Normalizer[S]{
		source:        source,
		spillPath:     spillPath,
		normalization: psxdmh.Mono(psxdmh.DecibelsToAmplitude(normalizationLimit)),
	}
}

// Close releases the spill file. It is safe to call more than once.
func (n *Normalizer[S]) Close() {
	if n.spill != nil {
		n.spill.Close()
		n.spill = nil
	}
	if n.spillCreated {
		os.Remove(n.spillPath)
		n.spillCreated = false
	}
}

// IsRunning tests whether the module can still produce output.
func (n *Normalizer[S]) IsRunning() bool {
	return n.currentSample < n.samples || n.source.IsRunning()
}

// Next produces the next sample.
func (n *Normalizer[S]) Next(s *S) bool {
	// The first call buffers the entire source in the spill file.
	if n.reader == nil {
		n.spillSource()
	}

	// Return silence past the end of the data.
	if n.currentSample >= n.samples {
		var zero S
		*s = zero
		return false
	}

	n.currentSample++
	n.readSample(s)
	*s = (*s).Scale(n.normalization)
	return true
}

// AdjustmentDB returns the applied adjustment in dB. Only valid once the
// first pass has completed.
func (n *Normalizer[S]) AdjustmentDB() float64 {
	return psxdmh.AmplitudeToDecibels(float64(n.normalization))
}

// spillSource drains the source into the spill file, tracking the maximum
// level, then reopens the file for reading.
func (n *Normalizer[S]) spillSource() {
	file, err := os.Create(n.spillPath)
	if err != nil {
		psxdmh.FatalIo(err, "unable to create temporary file %q", n.spillPath)
	}
	n.spill = file
	n.spillCreated = true

	maxLevel := 1 / n.normalization
	writer := bufio.NewWriter(file)
	var s S
	for n.source.Next(&s) {
		n.writeSample(writer, s)
		n.samples++
		if m := s.Magnitude(); m > maxLevel {
			maxLevel = m
		}
	}
	if err := writer.Flush(); err != nil {
		psxdmh.FatalIo(err, "unable to write temporary file %q", n.spillPath)
	}
	n.normalization = 1 / maxLevel

	// Reopen for the read pass.
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		psxdmh.FatalIo(err, "unable to rewind temporary file %q", n.spillPath)
	}
	n.reader = bufio.NewReader(file)
}

func (n *Normalizer[S]) writeSample(w *bufio.Writer, s S) {
	var err error
	switch v := any(s).(type) {
	case psxdmh.Mono:
		err = binary.Write(w, binary.LittleEndian, math.Float32bits(float32(v)))
	case psxdmh.Stereo:
		if err = binary.Write(w, binary.LittleEndian, math.Float32bits(float32(v.L))); err == nil {
			err = binary.Write(w, binary.LittleEndian, math.Float32bits(float32(v.R)))
		}
	}
	if err != nil {
		psxdmh.FatalIo(err, "unable to write temporary file %q", n.spillPath)
	}
}

func (n *Normalizer[S]) readSample(s *S) {
	read := func() psxdmh.Mono {
		var bits uint32
		if err := binary.Read(n.reader, binary.LittleEndian, &bits); err != nil {
			psxdmh.FatalIo(err, "unable to read temporary file %q", n.spillPath)
		}
		return psxdmh.Mono(math.Float32frombits(bits))
	}
	switch any(*s).(type) {
	case psxdmh.Mono:
		*s = any(read()).(S)
	case psxdmh.Stereo:
		*s = any(psxdmh.Stereo{L: read(), R: read()}).(S)
	}
}
