package main

import (
	"flag"
	"os"

	"github.com/ben-michell/psxdmh"
	"github.com/ben-michell/psxdmh/lcd"
	"github.com/ben-michell/psxdmh/wmd"
)

// dumpCommand describes the contents of WMD and LCD files.
type dumpCommand struct {
	wmdPath  string
	lcdPaths stringList
	detailed bool
}

func (cmd *dumpCommand) Name() string { return "dump" }

func (cmd *dumpCommand) Help() string {
	return "Describe the contents of WMD and LCD files"
}

func (cmd *dumpCommand) Register(fs *flag.FlagSet) {
	fs.StringVar(&cmd.wmdPath, "wmd", "", "path to a WMD music description file")
	fs.Var(&cmd.lcdPaths, "lcd", "path to an LCD sample library; repeat for multiple files")
	fs.BoolVar(&cmd.detailed, "detailed", false, "include every sub-instrument and track")
}

func (cmd *dumpCommand) Run() error {
	if cmd.wmdPath == "" && len(cmd.lcdPaths) == 0 {
		return psxdmh.Errorf(psxdmh.InvalidConfig, "give a WMD file with -wmd or an LCD file with -lcd")
	}
	if cmd.wmdPath != "" {
		file, err := wmd.Load(cmd.wmdPath)
		if err != nil {
			return err
		}
		file.Dump(os.Stdout, cmd.detailed)
	}
	for _, path := range cmd.lcdPaths {
		file, err := lcd.Load(path)
		if err != nil {
			return err
		}
		file.Dump(os.Stdout)
	}
	return nil
}
