package extract

import (
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/ben-michell/psxdmh"
)

// wavBatchSamples is the number of samples collected before each write to
// the encoder.
const wavBatchSamples = 4096

// WriteWav drives a module to exhaustion and stores its output as a
// 16-bit PCM WAV file. The return value is the number of samples written.
// If the extraction fails partway the file is removed.
func WriteWav[S psxdmh.Sample[S]](source psxdmh.Module[S], fileName string, sampleRate uint32) (samples uint32, err error) {
	file, err := os.Create(fileName)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		file.Close()
		if !committed {
			os.Remove(fileName)
		}
	}()
	defer psxdmhRecover(&err)

	numChannels := channelsOf[S]()
	encoder := wav.NewEncoder(file, int(sampleRate), 16, numChannels, 1)
	buffer := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: numChannels,
			SampleRate:  int(sampleRate),
		},
		SourceBitDepth: 16,
		Data:           make([]int, 0, wavBatchSamples*numChannels),
	}

	var s S
	for {
		buffer.Data = buffer.Data[:0]
		for len(buffer.Data) < wavBatchSamples*numChannels && source.Next(&s) {
			buffer.Data = appendInts(buffer.Data, s)
			samples++
		}
		if len(buffer.Data) == 0 {
			break
		}
		if err := encoder.Write(buffer); err != nil {
			return samples, err
		}
	}
	if err := encoder.Close(); err != nil {
		return samples, err
	}
	if err := file.Close(); err != nil {
		return samples, err
	}
	committed = true
	return samples, nil
}

// channelsOf returns the channel count for a sample type.
func channelsOf[S psxdmh.Sample[S]]() int {
	var s S
	if _, ok := any(s).(psxdmh.Stereo); ok {
		return 2
	}
	return 1
}

// appendInts converts a sample to interleaved 16-bit values.
func appendInts[S psxdmh.Sample[S]](data []int, s S) []int {
	switch v := any(s).(type) {
	case psxdmh.Mono:
		return append(data, int(psxdmh.SampleToInt(v)))
	case psxdmh.Stereo:
		return append(data, int(psxdmh.SampleToInt(v.L)), int(psxdmh.SampleToInt(v.R)))
	}
	return data
}

// psxdmhRecover converts a panic raised by the engine into an error.
func psxdmhRecover(err *error) {
	psxdmh.Recover(recover(), err)
}
