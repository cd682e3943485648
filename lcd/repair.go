package lcd

import (
	"github.com/ben-michell/psxdmh"
	"github.com/ben-michell/psxdmh/adpcm"
)

// patchFix describes an edit that removes clicks and pops from a patch.
// The size and repeat offset validate that the patch is the one the fix
// was written for before any data is touched.
type patchFix struct {
	id           uint16
	size         int
	repeatOffset int32

	// Number of blocks to silence at the start, and to remove from the
	// end.
	silenceStartBlocks int
	removeEndBlocks    int
}

var patchFixes = []patchFix{
	{96, 45744, 16, 2, 1},     // Song 94.
	{102, 86016, 45248, 2, 0}, // Song 97.
	{116, 81520, 0, 0, 16},    // Song 106.
	{130, 44928, 16, 0, 2},    // Song 114.
}

// Repair applies fixes to the patches with known audio faults. Patches not
// present in the file are skipped. A present patch whose size does not
// match, or whose repeat point lies at a different offset, is a fatal error.
// A patch without a repeat point passes the repeat check whatever offset
// the table lists.
func (f *File) Repair() error {
	for _, fix := range patchFixes {
		patch := f.PatchByID(fix.id)
		if patch == nil {
			continue
		}
		repeat := adpcm.RepeatOffset(patch.ADPCM)
		if len(patch.ADPCM) != fix.size ||
			(repeat >= 0 && repeat != fix.repeatOffset) ||
			(repeat < 0 && fix.repeatOffset < 0) {
			return psxdmh.Errorf(psxdmh.PatchRepairMismatch,
				"patch %d can't be fixed: the details of the patch don't match the expected values", fix.id)
		}

		edit := make([]byte, len(patch.ADPCM))
		copy(edit, patch.ADPCM)
		f.SetPatchByID(fix.id, adpcm.Edit(edit, fix.silenceStartBlocks, fix.removeEndBlocks))
	}
	return nil
}
