package main

import (
	"flag"

	"github.com/ben-michell/psxdmh/extract"
)

// trackCommand extracts a single track from a song.
type trackCommand struct {
	extractFlags
	song  uint
	track uint
}

func (cmd *trackCommand) Name() string { return "track" }

func (cmd *trackCommand) Help() string {
	return "Extract one track of a song to a WAV or MP3 file"
}

func (cmd *trackCommand) Register(fs *flag.FlagSet) {
	cmd.extractFlags.register(fs, false)
	fs.UintVar(&cmd.song, "song", 0, "song to extract from (required)")
	fs.UintVar(&cmd.track, "track", 0, "track to extract (required)")
}

func (cmd *trackCommand) Run() error {
	wmdFile, err := cmd.loadWmd()
	if err != nil {
		return err
	}
	lcdFile, err := cmd.loadLcd()
	if err != nil {
		return err
	}
	opts, err := cmd.options()
	if err != nil {
		return err
	}
	return extract.Track(uint16(cmd.song), uint16(cmd.track), wmdFile, lcdFile, cmd.output, opts)
}
