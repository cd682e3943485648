// Package lcd reads and writes the LCD sample-library files used by PSX
// Doom. An LCD file is a collection of ADPCM encoded patches identified by
// a 16-bit ID.
package lcd

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"sort"

	"github.com/ben-michell/psxdmh"
	"github.com/ben-michell/psxdmh/adpcm"
)

// PatchFrequency is the sampling rate of all patches.
const PatchFrequency = 11025

// headerSize is the offset where patch data starts: the size of one CD
// block.
const headerSize = 0x800

// Patch is a block of ADPCM encoded audio referenced by ID.
type Patch struct {
	ID    uint16
	ADPCM []byte
}

// File is a parsed LCD sample library.
type File struct {
	patches []Patch
}

// Load parses an LCD file.
func Load(fileName string) (*File, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, err
	}
	f := &File{}
	if err := f.parse(data); err != nil {
		return nil, err
	}
	return f, nil
}

// IsEmpty tests if the file holds no patches.
func (f *File) IsEmpty() bool { return len(f.patches) == 0 }

// Patches returns the patches in the file.
func (f *File) Patches() []Patch { return f.patches }

// MaximumPatchID returns the largest patch ID in the file.
func (f *File) MaximumPatchID() uint16 {
	var maximum uint16
	for i := range f.patches {
		if f.patches[i].ID > maximum {
			maximum = f.patches[i].ID
		}
	}
	return maximum
}

// PatchByID finds a patch by ID. Returns nil if not found.
func (f *File) PatchByID(id uint16) *Patch {
	for i := range f.patches {
		if f.patches[i].ID == id {
			return &f.patches[i]
		}
	}
	return nil
}

// SetPatchByID replaces the data of an existing patch, or appends a new
// patch if the ID is not present.
func (f *File) SetPatchByID(id uint16, data []byte) {
	if p := f.PatchByID(id); p != nil {
		p.ADPCM = data
		return
	}
	f.patches = append(f.patches, Patch{ID: id, ADPCM: data})
}

// Merge copies into this file any patches from another file that aren't
// already present.
func (f *File) Merge(other *File) {
	for i := range other.patches {
		if f.PatchByID(other.patches[i].ID) == nil {
			f.patches = append(f.patches, other.patches[i])
		}
	}
}

// Sort orders the patches by ID.
func (f *File) Sort() {
	sort.SliceStable(f.patches, func(i, j int) bool { return f.patches[i].ID < f.patches[j].ID })
}

// parse loads the patch collection from the raw file bytes. The header
// holds the number of patches and their IDs; the data starts at 0x800 with
// each patch preceded by a block of 16 zero bytes.
func (f *File) parse(data []byte) error {
	reader := bytes.NewReader(data)
	var count uint16
	if err := binary.Read(reader, binary.LittleEndian, &count); err != nil {
		return psxdmh.Errorf(psxdmh.CorruptStream, "truncated LCD header")
	}
	f.patches = make([]Patch, count)
	for i := range f.patches {
		if err := binary.Read(reader, binary.LittleEndian, &f.patches[i].ID); err != nil {
			return psxdmh.Errorf(psxdmh.CorruptStream, "truncated LCD header")
		}
	}

	// Locate the data for each patch. The ideal way would be to use the
	// patch sizes from the WMD file, but delimiting on the final block
	// flag works for all LCD files in Doom and Final Doom, and it means an
	// LCD file can be loaded without the WMD.
	pos := headerSize
	zeros := make([]byte, adpcm.BlockSize)
	for i := range f.patches {
		// Skip the header: a block of 16 zero bytes.
		if pos+adpcm.BlockSize > len(data) || !bytes.Equal(data[pos:pos+adpcm.BlockSize], zeros) {
			return psxdmh.Errorf(psxdmh.CorruptStream, "invalid patch header for patch %d", f.patches[i].ID)
		}
		pos += adpcm.BlockSize

		// Accumulate blocks until an end point is found.
		for {
			if pos+adpcm.BlockSize > len(data) {
				return psxdmh.Errorf(psxdmh.CorruptStream, "truncated patch %d", f.patches[i].ID)
			}
			block := data[pos : pos+adpcm.BlockSize]
			f.patches[i].ADPCM = append(f.patches[i].ADPCM, block...)
			pos += adpcm.BlockSize
			if adpcm.IsFinal(block) {
				break
			}
		}

		// Skip any padding before the next patch, identified by its header
		// of 16 zeros.
		for pos+adpcm.BlockSize <= len(data) && !bytes.Equal(data[pos:pos+adpcm.BlockSize], zeros) {
			pos += adpcm.BlockSize
		}
	}
	return nil
}

// Write stores the contents of this object in a file.
func (f *File) Write(fileName string) error {
	file, err := os.Create(fileName)
	if err != nil {
		return err
	}
	defer file.Close()
	if err := f.encode(file); err != nil {
		return err
	}
	return file.Close()
}

func (f *File) encode(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, uint16(len(f.patches))); err != nil {
		return err
	}
	for i := range f.patches {
		if err := binary.Write(w, binary.LittleEndian, f.patches[i].ID); err != nil {
			return err
		}
	}
	padding := make([]byte, headerSize-2-2*len(f.patches))
	if _, err := w.Write(padding); err != nil {
		return err
	}
	zeros := make([]byte, adpcm.BlockSize)
	for i := range f.patches {
		if _, err := w.Write(zeros); err != nil {
			return err
		}
		if _, err := w.Write(f.patches[i].ADPCM); err != nil {
			return err
		}
	}
	return nil
}
