package main

import (
	"flag"

	"github.com/ben-michell/psxdmh/extract"
)

// patchCommand extracts raw patches from LCD files.
type patchCommand struct {
	extractFlags
	patches string
}

func (cmd *patchCommand) Name() string { return "patch" }

func (cmd *patchCommand) Help() string {
	return "Extract patches to WAV or MP3 files"
}

func (cmd *patchCommand) Register(fs *flag.FlagSet) {
	cmd.extractFlags.register(fs, true)
	fs.StringVar(&cmd.patches, "patches", "", "patches to extract, as a number, list, or range such as 1,5 or 0-20 (required)")
}

func (cmd *patchCommand) Run() error {
	lcdFile, err := cmd.loadLcd()
	if err != nil {
		return err
	}
	ids, err := parseRange(cmd.patches, lcdFile.MaximumPatchID()+1, "patch")
	if err != nil {
		return err
	}
	opts, err := cmd.options()
	if err != nil {
		return err
	}
	return extract.Patches(ids, lcdFile, cmd.output, opts)
}
