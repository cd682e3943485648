package extract

import (
	"bufio"
	"encoding/binary"
	"os"

	"github.com/viert/lame"

	"github.com/ben-michell/psxdmh"
)

// WriteMp3 drives a module to exhaustion and stores its output as an MP3
// file at the given bit rate and quality. The return value is the number
// of samples written. If the extraction fails partway the file is removed.
func WriteMp3[S psxdmh.Sample[S]](source psxdmh.Module[S], fileName string, sampleRate uint32, bitRate, quality int) (samples uint32, err error) {
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
	writer := lame.NewWriter(file)
	writer.Encoder.SetBitrate(bitRate)
	writer.Encoder.SetQuality(quality)
	writer.Encoder.SetNumChannels(numChannels)
	writer.Encoder.SetInSamplerate(int(sampleRate))
	if numChannels == 2 {
		writer.Encoder.SetMode(lame.JOINT_STEREO)
	}
	writer.Encoder.SetVBR(lame.VBR_RH)
	writer.Encoder.InitParams()

	// The lame writer consumes interleaved little-endian 16-bit PCM.
	buffered := bufio.NewWriter(writer)
	var s S
	for source.Next(&s) {
		for _, v := range appendInts(nil, s) {
			if err := binary.Write(buffered, binary.LittleEndian, int16(v)); err != nil {
				return samples, err
			}
		}
		samples++
	}
	if err := buffered.Flush(); err != nil {
		return samples, err
	}
	if err := writer.Close(); err != nil {
		return samples, err
	}
	if err := file.Close(); err != nil {
		return samples, err
	}
	committed = true
	return samples, nil
}
