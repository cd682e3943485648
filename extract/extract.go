package extract

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ben-michell/psxdmh"
	"github.com/ben-michell/psxdmh/adpcm"
	"github.com/ben-michell/psxdmh/dsp"
	"github.com/ben-michell/psxdmh/lcd"
	"github.com/ben-michell/psxdmh/log"
	"github.com/ben-michell/psxdmh/music"
	"github.com/ben-michell/psxdmh/spu"
	"github.com/ben-michell/psxdmh/stream"
	"github.com/ben-michell/psxdmh/wmd"
)

// SongSampleRate is the default output rate for songs and tracks.
const SongSampleRate = 44100

var logger = log.GetLogger()

// SetLogger replaces the logger used by the extraction drivers.
func SetLogger(l *logrus.Logger) { logger = l }

// repeater is implemented by sources that can fail to honor a repeat
// request.
type repeater interface {
	FailedToRepeat() bool
}

// Songs extracts a range of songs to WAV or MP3 files. When outputName is
// empty each song gets its default name.
func Songs(songIndexes []uint16, wmdFile *wmd.File, lcdFile *lcd.File, outputName string, opts Options) error {
	opts = opts.withSampleRate(SongSampleRate)
	if err := opts.Validate(); err != nil {
		return err
	}
	for _, songIndex := range songIndexes {
		name := outputName
		if name == "" {
			name = DefaultSongName(songIndex)
		}
		logger.Infof("extracting song %d (%s)", songIndex, name)
		source := music.NewSongPlayer(int(songIndex), wmdFile, lcdFile, opts.playerConfig())
		if err := extractMusic(source, songIndex, name, opts); err != nil {
			return err
		}
	}
	return nil
}

// Track extracts one track from a song.
func Track(songIndex, trackIndex uint16, wmdFile *wmd.File, lcdFile *lcd.File, fileName string, opts Options) error {
	opts = opts.withSampleRate(SongSampleRate)
	if err := opts.Validate(); err != nil {
		return err
	}
	if int(songIndex) >= wmdFile.Songs() {
		return psxdmh.Errorf(psxdmh.MissingResource, "invalid song index %d", songIndex)
	}
	if int(trackIndex) >= len(wmdFile.Song(int(songIndex)).Tracks) {
		return psxdmh.Errorf(psxdmh.MissingResource, "invalid track index %d", trackIndex)
	}
	source := music.NewTrackPlayer(int(songIndex), int(trackIndex), wmdFile, lcdFile, opts.playerConfig())
	return extractMusic(source, songIndex, fileName, opts)
}

// Patches extracts a range of patches from an LCD file. When outputName is
// empty each patch is named after its ID. A missing patch is fatal when a
// single patch is requested, and a logged warning when extracting a range.
func Patches(patchIDs []uint16, lcdFile *lcd.File, outputName string, opts Options) error {
	opts = opts.withSampleRate(lcd.PatchFrequency)

	// Patches are written unfiltered, so the output filters don't apply.
	opts.HighPass, opts.LowPass = 0, 0
	if err := opts.Validate(); err != nil {
		return err
	}
	for _, id := range patchIDs {
		patch := lcdFile.PatchByID(id)
		if patch == nil {
			err := psxdmh.Errorf(psxdmh.MissingResource, "invalid patch ID %d", id)
			if len(patchIDs) == 1 {
				return err
			}
			logger.Warnf("%v", err)
			continue
		}

		name := outputName
		if name == "" {
			name = fmt.Sprintf("Patch %d.wav", id)
		}
		logger.Infof("extracting patch %d (%s)", id, name)
		samples, err := writeAudio[psxdmh.Mono](adpcm.NewDecoder(patch.ADPCM, opts.PlayCount), name, opts)
		if err != nil {
			return err
		}
		logger.Infof("extracted %d samples (%.3f seconds)", samples, float64(samples)/float64(opts.SampleRate))
	}
	return nil
}

// extractMusic handles the common part of song and track extraction.
func extractMusic(source psxdmh.Module[psxdmh.Stereo], songIndex uint16, fileName string, opts Options) error {
	module, statistics, normalizer := constructGraph(source, songIndex, fileName, opts)
	if normalizer != nil {
		defer normalizer.Close()
	}
	spu.ResetMaximumChannels()

	samples, err := writeAudio[psxdmh.Stereo](module, fileName, opts)
	if err != nil {
		return err
	}

	logger.Infof("extracted %s", psxdmh.TicksToTime(samples, opts.SampleRate, 3))
	if normalizer != nil {
		logger.Debugf("normalization: %.1f dB", normalizer.AdjustmentDB())
	}
	logger.Debugf("maximum channels: %d", spu.MaximumChannels())
	if statistics != nil {
		logger.Debugf("maximum level: %.1f dB / %.1f%%", statistics.MaximumDB(), statistics.MaximumAmplitude()*100)
		logger.Debugf("RMS: %.1f dB", statistics.RmsDB())
	}
	if r, ok := source.(repeater); ok && r.FailedToRepeat() {
		logger.Warn("song does not contain a repeat point; play-count ignored")
	}
	return nil
}

// constructGraph builds the processing graph for music extraction. The
// order is load-bearing: gap processing must come before reverb so echoes
// aren't truncated, and lead-in/lead-out processing after it so echoes
// aren't cut off.
func constructGraph(module psxdmh.Module[psxdmh.Stereo], songIndex uint16, fileName string, opts Options) (psxdmh.Module[psxdmh.Stereo], *stream.Statistics[psxdmh.Stereo], *stream.Normalizer[psxdmh.Stereo]) {
	if opts.MaximumGap >= 0 {
		gap := max(int32(opts.MaximumGap*float64(opts.SampleRate)), 1)
		module = stream.NewSilencer[psxdmh.Stereo](module, -1, -1, gap)
	}

	preset := opts.ReverbPreset
	reverbVolume := opts.ReverbVolume
	if preset == spu.ReverbAuto {
		preset, reverbVolume = DefaultReverb(songIndex)
		if reverbVolume > 0 {
			logger.Debugf("reverb defaulted to %s at %.1f dB", preset, psxdmh.AmplitudeToDecibels(float64(reverbVolume)))
		}
	}
	if preset != spu.ReverbOff {
		volume := psxdmh.Stereo{L: reverbVolume, R: reverbVolume}
		module = spu.NewReverb(module, opts.SampleRate, preset, volume, opts.SincWindow)
	}

	if opts.LeadIn >= 0 || opts.LeadOut >= 0 {
		// If lead-in or lead-out are used make them at least one sample so
		// the song starts or ends on silence.
		leadIn := int32(-1)
		if opts.LeadIn >= 0 {
			leadIn = max(int32(opts.LeadIn*float64(opts.SampleRate)), 1)
		}
		leadOut := int32(-1)
		if opts.LeadOut >= 0 {
			leadOut = max(int32(opts.LeadOut*float64(opts.SampleRate)), 1)
		}
		module = stream.NewSilencer[psxdmh.Stereo](module, leadIn, leadOut, -1)
	}

	if opts.HighPass != 0 {
		module = dsp.NewFilter[psxdmh.Stereo](module, dsp.HighPass, float64(opts.HighPass)/float64(opts.SampleRate))
	}
	if opts.LowPass != 0 {
		module = dsp.NewFilter[psxdmh.Stereo](module, dsp.LowPass, float64(opts.LowPass)/float64(opts.SampleRate))
	}

	// Normalization, with a progress reporter upstream of the normalizer
	// so its buffering pass is visible.
	var normalizer *stream.Normalizer[psxdmh.Stereo]
	if opts.Normalize {
		if opts.Progress != nil {
			module = stream.NewStatistics[psxdmh.Stereo](module, stream.Progress, opts.SampleRate, opts.Progress, "extracted")
		}
		normalizer = stream.NewNormalizer[psxdmh.Stereo](module, spillPath(fileName), 30)
		module = normalizer
	}

	if opts.Volume != 1 {
		module = stream.NewVolume[psxdmh.Stereo](module, opts.Volume)
	}

	operation := "extracted"
	if opts.Normalize {
		operation = "normalized"
	}
	statistics := stream.NewStatistics[psxdmh.Stereo](module, stream.Detailed, opts.SampleRate, opts.Progress, operation)
	return statistics, statistics, normalizer
}

// writeAudio stores a module's output in the format implied by the file
// name extension.
func writeAudio[S psxdmh.Sample[S]](module psxdmh.Module[S], fileName string, opts Options) (uint32, error) {
	if strings.HasSuffix(strings.ToLower(fileName), ".mp3") {
		return WriteMp3[S](module, fileName, opts.SampleRate, 192, 3)
	}
	return WriteWav[S](module, fileName, opts.SampleRate)
}
