package spu

// ReverbPreset selects one of the SPU reverb configurations.
type ReverbPreset int

const (
	ReverbOff ReverbPreset = iota
	ReverbRoom
	ReverbStudioSmall
	ReverbStudioMedium
	ReverbStudioLarge
	ReverbHall
	ReverbHalfEcho
	ReverbSpaceEcho

	reverbPresetCount

	// ReverbAuto selects the preset and depth used by the game level where
	// a song first appears. It is resolved by the caller before the reverb
	// module is constructed.
	ReverbAuto = reverbPresetCount
)

// String returns the name of a reverb preset.
func (p ReverbPreset) String() string {
	names := [...]string{
		"off",
		"room",
		"studio-small",
		"studio-medium",
		"studio-large",
		"hall",
		"half-echo",
		"space-echo",
		"auto",
	}
	if p < 0 || int(p) >= len(names) {
		return "unknown"
	}
	return names[p]
}

// ParseReverbPreset maps a preset name to its value. The second return
// value reports whether the name was recognised.
func ParseReverbPreset(name string) (ReverbPreset, bool) {
	for p := ReverbOff; p <= ReverbAuto; p++ {
		if p.String() == name {
			return p, true
		}
	}
	return ReverbOff, false
}

// reverbRegisters holds the SPU register bank for each preset. These values
// are bit-identical to the hardware configuration.
var reverbRegisters = [reverbPresetCount][32]uint16{
	// Off. Not used.
	{
		0x0000, 0x0000, 0x0000, 0x0000, 0x0000, 0x0000, 0x0000, 0x0000,
		0x0000, 0x0000, 0x0000, 0x0000, 0x0000, 0x0000, 0x0000, 0x0000,
		0x0000, 0x0000, 0x0000, 0x0000, 0x0000, 0x0000, 0x0000, 0x0000,
		0x0000, 0x0000, 0x0000, 0x0000, 0x0000, 0x0000, 0x0000, 0x0000,
	},

	// Room.
	{
		0x007d, 0x005b, 0x6d80, 0x54b8, 0xbed0, 0x0000, 0x0000, 0xba80,
		0x5800, 0x5300, 0x04d6, 0x0333, 0x03f0, 0x0227, 0x0374, 0x01ef,
		0x0334, 0x01b5, 0x0000, 0x0000, 0x0000, 0x0000, 0x0000, 0x0000,
		0x0000, 0x0000, 0x01b4, 0x0136, 0x00b8, 0x005c, 0x8000, 0x8000,
	},

	// Studio Small.
	{
		0x0033, 0x0025, 0x70f0, 0x4fa8, 0xbce0, 0x4410, 0xc0f0, 0x9c00,
		0x5280, 0x4ec0, 0x03e4, 0x031b, 0x03a4, 0x02af, 0x0372, 0x0266,
		0x031c, 0x025d, 0x025c, 0x018e, 0x022f, 0x0135, 0x01d2, 0x00b7,
		0x018f, 0x00b5, 0x00b4, 0x0080, 0x004c, 0x0026, 0x8000, 0x8000,
	},

	// Studio Medium.
	{
		0x00b1, 0x007f, 0x70f0, 0x4fa8, 0xbce0, 0x4510, 0xbef0, 0xb4c0,
		0x5280, 0x4ec0, 0x0904, 0x076b, 0x0824, 0x065f, 0x07a2, 0x0616,
		0x076c, 0x05ed, 0x05ec, 0x042e, 0x050f, 0x0305, 0x0462, 0x02b7,
		0x042f, 0x0265, 0x0264, 0x01b2, 0x0100, 0x0080, 0x8000, 0x8000,
	},

	// Studio Large.
	{
		0x00e3, 0x00a9, 0x6f60, 0x4fa8, 0xbce0, 0x4510, 0xbef0, 0xa680,
		0x5680, 0x52c0, 0x0dfb, 0x0b58, 0x0d09, 0x0a3c, 0x0bd9, 0x0973,
		0x0b59, 0x08da, 0x08d9, 0x05e9, 0x07ec, 0x04b0, 0x06ef, 0x03d2,
		0x05ea, 0x031d, 0x031c, 0x0238, 0x0154, 0x00aa, 0x8000, 0x8000,
	},

	// Hall.
	{
		0x01a5, 0x0139, 0x6000, 0x5000, 0x4c00, 0xb800, 0xbc00, 0xc000,
		0x6000, 0x5c00, 0x15ba, 0x11bb, 0x14c2, 0x10bd, 0x11bc, 0x0dc1,
		0x11c0, 0x0dc3, 0x0dc0, 0x09c1, 0x0bc4, 0x07c1, 0x0a00, 0x06cd,
		0x09c2, 0x05c1, 0x05c0, 0x041a, 0x0274, 0x013a, 0x8000, 0x8000,
	},

	// Half Echo.
	{
		0x0017, 0x0013, 0x70f0, 0x4fa8, 0xbce0, 0x4510, 0xbef0, 0x8500,
		0x5f80, 0x54c0, 0x0371, 0x02af, 0x02e5, 0x01df, 0x02b0, 0x01d7,
		0x0358, 0x026a, 0x01d6, 0x011e, 0x012d, 0x00b1, 0x011f, 0x0059,
		0x01a0, 0x00e3, 0x0058, 0x0040, 0x0028, 0x0014, 0x8000, 0x8000,
	},

	// Space Echo.
	{
		0x033d, 0x0231, 0x7e00, 0x5000, 0xb400, 0xb000, 0x4c00, 0xb000,
		0x6000, 0x5400, 0x1ed6, 0x1a31, 0x1d14, 0x183b, 0x1bc2, 0x16b2,
		0x1a32, 0x15ef, 0x15ee, 0x1055, 0x1334, 0x0f2d, 0x11f6, 0x0c5d,
		0x1056, 0x0ae1, 0x0ae0, 0x07a2, 0x0464, 0x0232, 0x8000, 0x8000,
	},
}

// reverbBufferSize holds the work area size for each preset, in samples.
var reverbBufferSize = [reverbPresetCount]int{
	0x00002 / 2, // Off.
	0x026c0 / 2, // Room.
	0x01f40 / 2, // Studio Small.
	0x04840 / 2, // Studio Medium.
	0x06fe0 / 2, // Studio Large.
	0x0ade0 / 2, // Hall.
	0x03c00 / 2, // Half Echo.
	0x0f6c0 / 2, // Space Echo.
}
