package wmd

import (
	"fmt"
	"io"
)

// Dump writes a description of the file contents. The detailed form
// includes every sub-instrument and track.
func (f *File) Dump(w io.Writer, detailed bool) {
	fmt.Fprintf(w, "WMD contains %d instruments:\n", len(f.instruments))
	for index := range f.instruments {
		instrument := &f.instruments[index]
		fmt.Fprintf(w, "Instrument %d: %d sub-instruments\n", index, len(instrument.SubInstruments))
		if !detailed {
			continue
		}
		for s := range instrument.SubInstruments {
			sub := &instrument.SubInstruments[s]
			fmt.Fprintf(w, "  Notes %d-%d: patch %d, volume %d, pan $%02x, tuning %d+%d/256, bend %d, ADS $%04x, SR $%04x\n",
				sub.FirstNote, sub.LastNote, sub.Patch, sub.Volume, sub.Pan,
				sub.Tuning, sub.FineTuning, sub.BendSensitivityDown, sub.SpuADS, sub.SpuSR)
		}
	}

	fmt.Fprintf(w, "\nWMD contains %d songs:\n", len(f.songs))
	for index := range f.songs {
		song := &f.songs[index]
		fmt.Fprintf(w, "Song %d: %d tracks\n", index, len(song.Tracks))
		if !detailed {
			continue
		}
		for t := range song.Tracks {
			track := &song.Tracks[t]
			repeat := "no repeat"
			if track.Repeat {
				repeat = fmt.Sprintf("repeat from %d", track.RepeatStart)
			}
			fmt.Fprintf(w, "  Track %d: instrument %d, %d bpm, %d ticks/beat, %d bytes, %s\n",
				t, track.Instrument, track.BeatsPerMinute, track.TicksPerBeat, len(track.Data), repeat)
		}
	}
}
