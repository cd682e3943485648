package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/ben-michell/psxdmh"
	"github.com/ben-michell/psxdmh/extract"
	"github.com/ben-michell/psxdmh/lcd"
	"github.com/ben-michell/psxdmh/spu"
	"github.com/ben-michell/psxdmh/wmd"
)

// extractFlags registers the flags shared by the extraction commands and
// converts them into extraction options.
type extractFlags struct {
	wmdPath  string
	lcdPaths stringList
	output   string

	volumeDB     float64
	normalize    bool
	reverbPreset string
	reverbDB     float64
	playCount    uint
	leadIn       float64
	leadOut      float64
	maximumGap   float64
	stereoWidth  float64
	repair       bool
	unlimited    bool
	sampleRate   uint
	highPass     uint
	lowPass      uint
	sincWindow   uint
}

// register adds the flags to the set. When patches is true the music-only
// flags are left out.
func (e *extractFlags) register(fs *flag.FlagSet, patches bool) {
	if !patches {
		fs.StringVar(&e.wmdPath, "wmd", "", "path to the WMD music description file (required)")
	}
	fs.Var(&e.lcdPaths, "lcd", "path to an LCD sample library; repeat for multiple files (required)")
	fs.StringVar(&e.output, "out", "", "output file name (defaults to the song or patch name)")

	fs.Float64Var(&e.volumeDB, "volume", 0, "amplification of the output in dB")
	fs.BoolVar(&e.normalize, "normalize", false, "normalize the level of the audio to use the full range")
	fs.UintVar(&e.playCount, "play-count", 1, "number of times a repeating song, track, or patch is played; 0 plays forever")
	fs.BoolVar(&e.repair, "repair-patches", false, "automatically fix patches with clicks, pops, and noise")
	fs.UintVar(&e.sincWindow, "sinc-window", 7, "window size of the resampler; larger is slower and better")
	fs.UintVar(&e.sampleRate, "sample-rate", 0, "output sample rate (default 44100 for music, 11025 for patches)")
	if !patches {
		fs.StringVar(&e.reverbPreset, "reverb-preset", "auto", "reverb preset: off, room, studio-small, studio-medium, studio-large, hall, half-echo, space-echo, or auto")
		fs.Float64Var(&e.reverbDB, "reverb-volume", -6, "volume of the reverb effect in dB")
		fs.Float64Var(&e.leadIn, "intro", -1, "exact seconds of silence at the start of a song")
		fs.Float64Var(&e.leadOut, "outro", -1, "exact seconds of silence at the end of a song")
		fs.Float64Var(&e.maximumGap, "maximum-gap", -1, "maximum seconds of silence allowed within a song")
		fs.Float64Var(&e.stereoWidth, "stereo-width", 0, "stereo width adjustment from -1 (mono) to 1 (widened)")
		fs.BoolVar(&e.unlimited, "unlimited-frequency", false, "ignore the maximum playback frequency of a real PSX")
		fs.UintVar(&e.highPass, "high-pass", 30, "high-pass filter frequency in Hz; 0 disables")
		fs.UintVar(&e.lowPass, "low-pass", 15000, "low-pass filter frequency in Hz; 0 disables")
	} else {
		e.highPass = 0
		e.lowPass = 0
		e.reverbPreset = "off"
	}
}

// options converts the flag values into extraction options.
func (e *extractFlags) options() (extract.Options, error) {
	opts := extract.NewOptions()
	opts.Volume = psxdmh.Mono(psxdmh.DecibelsToAmplitude(e.volumeDB))
	opts.Normalize = e.normalize
	opts.PlayCount = uint32(e.playCount)
	opts.LeadIn = e.leadIn
	opts.LeadOut = e.leadOut
	opts.MaximumGap = e.maximumGap
	opts.StereoWidth = psxdmh.Mono(e.stereoWidth)
	opts.RepairPatches = e.repair
	opts.UnlimitedFrequency = e.unlimited
	opts.SampleRate = uint32(e.sampleRate)
	opts.HighPass = uint32(e.highPass)
	opts.LowPass = uint32(e.lowPass)
	opts.SincWindow = uint32(e.sincWindow)

	preset, ok := spu.ParseReverbPreset(e.reverbPreset)
	if !ok {
		return opts, psxdmh.Errorf(psxdmh.InvalidConfig, "unknown reverb preset %q", e.reverbPreset)
	}
	opts.ReverbPreset = preset
	if preset != spu.ReverbOff && preset != spu.ReverbAuto {
		opts.ReverbVolume = psxdmh.Mono(psxdmh.DecibelsToAmplitude(e.reverbDB))
	}

	// Progress display only makes sense on a terminal.
	if isatty.IsTerminal(os.Stdout.Fd()) {
		opts.Progress = showProgress
	}
	return opts, nil
}

// loadWmd reads the WMD file named by the flags.
func (e *extractFlags) loadWmd() (*wmd.File, error) {
	if e.wmdPath == "" {
		return nil, psxdmh.Errorf(psxdmh.InvalidConfig, "a WMD file must be given with -wmd")
	}
	return wmd.Load(e.wmdPath)
}

// loadLcd reads and merges the LCD files named by the flags.
func (e *extractFlags) loadLcd() (*lcd.File, error) {
	if len(e.lcdPaths) == 0 {
		return nil, psxdmh.Errorf(psxdmh.InvalidConfig, "at least one LCD file must be given with -lcd")
	}
	merged := &lcd.File{}
	for _, path := range e.lcdPaths {
		file, err := lcd.Load(path)
		if err != nil {
			return nil, err
		}
		merged.Merge(file)
	}
	if e.repair {
		if err := merged.Repair(); err != nil {
			return nil, err
		}
	}
	return merged, nil
}

// showProgress writes a one-line progress display, overwriting itself as
// the extraction advances.
func showProgress(seconds uint32, rate float64, operation string) {
	if rate == 0 {
		fmt.Printf("  %s: %2d:%02d                \r", operation, seconds/60, seconds%60)
	} else {
		fmt.Printf("  %s: %2d:%02d (%.1fx)    \r", operation, seconds/60, seconds%60, rate)
	}
}
