package lcd

import (
	"fmt"
	"io"

	"github.com/ben-michell/psxdmh/adpcm"
)

// blocksToSeconds converts a block count to its playback time.
func blocksToSeconds(blocks int) float64 {
	return float64(blocks) * adpcm.SamplesPerBlock / PatchFrequency
}

// Dump writes a description of the file contents.
func (f *File) Dump(w io.Writer) {
	for index := range f.patches {
		patch := &f.patches[index]
		fmt.Fprintf(w, "Patch %d:\n", index)
		fmt.Fprintf(w, "  ID: %d ($%02x)\n", patch.ID, patch.ID)
		blocks := len(patch.ADPCM) / adpcm.BlockSize
		fmt.Fprintf(w, "  Length: %d bytes, %d blocks, %.3f seconds\n", len(patch.ADPCM), blocks, blocksToSeconds(blocks))
		if repeat := adpcm.RepeatOffset(patch.ADPCM); repeat >= 0 {
			blocks = int(repeat) / adpcm.BlockSize
			fmt.Fprintf(w, "  Non-repeated start: %d bytes, %d blocks, %.3f seconds\n", repeat, blocks, blocksToSeconds(blocks))
			tail := len(patch.ADPCM) - int(repeat)
			blocks = tail / adpcm.BlockSize
			fmt.Fprintf(w, "  Repeat length: %d bytes, %d blocks, %.3f seconds\n", tail, blocks, blocksToSeconds(blocks))
		} else {
			fmt.Fprintf(w, "  No repeat.\n")
		}
	}
}
