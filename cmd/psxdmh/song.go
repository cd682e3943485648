package main

import (
	"flag"

	"github.com/ben-michell/psxdmh/extract"
)

// songCommand extracts a song or a range of songs.
type songCommand struct {
	extractFlags
	songs string
}

func (cmd *songCommand) Name() string { return "song" }

func (cmd *songCommand) Help() string {
	return "Extract songs to WAV or MP3 files"
}

func (cmd *songCommand) Register(fs *flag.FlagSet) {
	cmd.extractFlags.register(fs, false)
	fs.StringVar(&cmd.songs, "songs", "", "songs to extract, as a number, list, or range such as 90,92 or 90-119 (required)")
}

func (cmd *songCommand) Run() error {
	wmdFile, err := cmd.loadWmd()
	if err != nil {
		return err
	}
	lcdFile, err := cmd.loadLcd()
	if err != nil {
		return err
	}
	indexes, err := parseRange(cmd.songs, uint16(wmdFile.Songs()), "song")
	if err != nil {
		return err
	}
	opts, err := cmd.options()
	if err != nil {
		return err
	}
	return extract.Songs(indexes, wmdFile, lcdFile, cmd.output, opts)
}
