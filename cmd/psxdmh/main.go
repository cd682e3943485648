// Command psxdmh extracts the music and sound effects of PlayStation Doom
// and Final Doom from their WMD and LCD data files into WAV or MP3 files.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ben-michell/psxdmh"
	"github.com/ben-michell/psxdmh/log"
)

var logger = log.GetLogger()

// command is implemented by each of the tool's verbs.
type command interface {
	Name() string
	Help() string
	Register(fs *flag.FlagSet)
	Run() error
}

var commands = []command{
	&songCommand{},
	&trackCommand{},
	&patchCommand{},
	&dumpCommand{},
}

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	if len(args) < 2 {
		printUsage()
		return 1
	}
	name := args[1]
	if name == "version" || name == "-version" || name == "--version" {
		fmt.Printf("psxdmh %s\n", psxdmh.Version)
		return 0
	}
	for _, cmd := range commands {
		if cmd.Name() != name {
			continue
		}
		flags := flag.NewFlagSet(name, flag.ExitOnError)
		cmd.Register(flags)
		if err := flags.Parse(args[2:]); err != nil {
			flags.PrintDefaults()
			return 1
		}
		if err := cmd.Run(); err != nil {
			logger.Errorf("%v", err)
			return 1
		}
		return 0
	}
	printUsage()
	return 1
}

func printUsage() {
	fmt.Println("usage: psxdmh <command> [flags]")
	fmt.Println()
	fmt.Println("commands:")
	for _, cmd := range commands {
		fmt.Printf("  %-8s %s\n", cmd.Name(), cmd.Help())
	}
	fmt.Println("  version  Show the tool version")
}

// stringList collects repeated flag values.
type stringList []string

func (s *stringList) String() string { return fmt.Sprint(*s) }

func (s *stringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}
