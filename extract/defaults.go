package extract

import (
	"fmt"

	"github.com/ben-michell/psxdmh"
	"github.com/ben-michell/psxdmh/spu"
)

// defaultSongNames maps song indexes to file names. For music this is the
// name of the level where the song is first used; all other songs are
// sound effects.
var defaultSongNames = [120]string{
	"SFX00 - Silence",
	"SFX01 - Shotgun Load",
	"SFX02 - Punch",
	"SFX03 - Item Respawn",
	"SFX04 - Fireball Launch (Unused)",
	"SFX05 - Barrel Explosion",
	"SFX06 - Lost Soul Death",
	"SFX07 - Pistol Fire",
	"SFX08 - Shotgun Fire",
	"SFX09 - Plasma Fire",
	"SFX10 - BFG9000 Fire",
	"SFX11 - Chainsaw Raise",
	"SFX12 - Chainsaw Idle",
	"SFX13 - Chainsaw Full Power",
	"SFX14 - Chainsaw Hit",
	"SFX15 - Rocket Launcher Fire",
	"SFX16 - BFG9000 Explosion",
	"SFX17 - Platform Start",
	"SFX18 - Platform Stop",
	"SFX19 - Door Open",
	"SFX20 - Door Close",
	"SFX21 - Stone Move",
	"SFX22 - Switch Normal",
	"SFX23 - Switch Exit",
	"SFX24 - Item Pick Up",
	"SFX25 - Weapon Pick Up",
	"SFX26 - Player Oof",
	"SFX27 - Teleport",
	"SFX28 - Player Grunt",
	"SFX29 - Super Shotgun Fire",
	"SFX30 - Super Shotgun Open",
	"SFX31 - Super Shotgun Load",
	"SFX32 - Super Shotgun Close",
	"SFX33 - Player Pain",
	"SFX34 - Player Death",
	"SFX35 - Slop",
	"SFX36 - Zombieman Alert 1",
	"SFX37 - Zombieman Alert 2",
	"SFX38 - Zombieman Alert 3",
	"SFX39 - Zombieman Death 1",
	"SFX40 - Zombieman Death 2",
	"SFX41 - Zombieman Death 3",
	"SFX42 - Zombieman Active",
	"SFX43 - Zombieman Pain",
	"SFX44 - Demon Pain",
	"SFX45 - Demon Active",
	"SFX46 - Imp Attack",
	"SFX47 - Imp Alert 1",
	"SFX48 - Imp Alert 2",
	"SFX49 - Imp Death 1",
	"SFX50 - Imp Death 2",
	"SFX51 - Imp Active",
	"SFX52 - Demon Alert",
	"SFX53 - Demon Attack",
	"SFX54 - Demon Death",
	"SFX55 - Baron Of Hell Alert",
	"SFX56 - Baron Of Hell Death",
	"SFX57 - Cacodemon Alert",
	"SFX58 - Cacodemon Death",
	"SFX59 - Lost Soul Attack",
	"SFX60 - Lost Soul Death",
	"SFX61 - Hell Knight Alert",
	"SFX62 - Hell Knight Death",
	"SFX63 - Pain Elemental Alert",
	"SFX64 - Pain Elemental Pain",
	"SFX65 - Pain Elemental Death",
	"SFX66 - Arachnotron Alert",
	"SFX67 - Arachnotron Death",
	"SFX68 - Arachnotron Active",
	"SFX69 - Arachnotron Walk",
	"SFX70 - Mancubus Attack",
	"SFX71 - Mancubus Alert",
	"SFX72 - Mancubus Pain",
	"SFX73 - Mancubus Death",
	"SFX74 - Fireball Launch",
	"SFX75 - Revenant Alert",
	"SFX76 - Revenant Death",
	"SFX77 - Revenant Active",
	"SFX78 - Revenant Attack",
	"SFX79 - Revenant Swing",
	"SFX80 - Revenant Punch",
	"SFX81 - Cyberdemon Alert",
	"SFX82 - Cyberdemon Death",
	"SFX83 - Cyberdemon Walk",
	"SFX84 - Spider Mastermind Walk",
	"SFX85 - Spider Mastermind Alert",
	"SFX86 - Spider Mastermind Death",
	"SFX87 - Blaze Door Open",
	"SFX88 - Blaze Door Close",
	"SFX89 - Get Power-Up",
	"D01 - Hangar",             // 90
	"D02 - Plant",              // 91
	"D03 - Toxin Refinery",     // 92
	"D04 - Command Control",    // 93
	"D05 - Phobos Lab",         // 94
	"D06 - Central Processing", // 95
	"D07 - Computer Station",   // 96
	"D08 - Phobos Anomaly",     // 97
	"D10 - Containment Area",   // 98
	"D12 - Deimos Lab",         // 99
	"D09 - Deimos Anomaly",     // 100
	"D16 - Hell Gate",          // 101
	"D21 - Mt. Erebus",         // 102
	"D22 - Limbo",              // 103
	"D11 - Refinery",           // 104
	"D17 - Hell Keep",          // 105
	"D18 - Pandemonium",        // 106
	"D20 - Unholy Cathedral",   // 107
	"D13 - Command Center",     // 108
	"D24 - Hell Beneath",       // 109
	"F05 - Catwalk",            // 110
	"F09 - Nessus",             // 111
	"F01 - Attack",             // 112
	"F03 - Canyon",             // 113
	"F07 - Geryon",             // 114
	"F10 - Paradox",            // 115
	"F06 - Fistula",            // 116
	"F08 - Minos",              // 117
	"F02 - Virgil",             // 118
	"F04 - Combine",            // 119
}

// DefaultSongName returns the default output name for a song.
func DefaultSongName(songIndex uint16) string {
	if int(songIndex) < len(defaultSongNames) {
		return defaultSongNames[songIndex] + ".wav"
	}
	return fmt.Sprintf("S%d.wav", songIndex)
}

// reverbConfig pairs a preset with its depth register value.
type reverbConfig struct {
	preset spu.ReverbPreset
	depth  uint16
}

// defaultReverbs holds the reverb configuration set by each game level.
// These values come from the game itself, not from the audio data files,
// and the reverb also changes as the player moves between areas within a
// level; the values here are the level defaults.
var defaultReverbs = [30]reverbConfig{
	{spu.ReverbSpaceEcho, 0x0fff},    // 90
	{spu.ReverbSpaceEcho, 0x0fff},    // 91
	{spu.ReverbStudioMedium, 0x27ff}, // 92
	{spu.ReverbHall, 0x17ff},         // 93
	{spu.ReverbStudioSmall, 0x23ff},  // 94
	{spu.ReverbHall, 0x1fff},         // 95
	{spu.ReverbStudioLarge, 0x26ff},  // 96
	{spu.ReverbStudioMedium, 0x2dff}, // 97
	{spu.ReverbStudioLarge, 0x2fff},  // 98
	{spu.ReverbSpaceEcho, 0x0fff},    // 99
	{spu.ReverbHall, 0x1fff},         // 100
	{spu.ReverbHall, 0x1fff},         // 101
	{spu.ReverbSpaceEcho, 0x0fff},    // 102
	{spu.ReverbHall, 0x1fff},         // 103
	{spu.ReverbStudioMedium, 0x27ff}, // 104
	{spu.ReverbSpaceEcho, 0x0fff},    // 105
	{spu.ReverbHall, 0x1fff},         // 106
	{spu.ReverbSpaceEcho, 0x0fff},    // 107
	{spu.ReverbHall, 0x1fff},         // 108
	{spu.ReverbStudioLarge, 0x2fff},  // 109
	{spu.ReverbSpaceEcho, 0x1fff},    // 110
	{spu.ReverbSpaceEcho, 0x1fff},    // 111
	{spu.ReverbHall, 0x1fff},         // 112
	{spu.ReverbSpaceEcho, 0x1fff},    // 113
	{spu.ReverbSpaceEcho, 0x0fff},    // 114
	{spu.ReverbSpaceEcho, 0x0fff},    // 115
	{spu.ReverbHall, 0x1fff},         // 116
	{spu.ReverbHall, 0x1fff},         // 117
	{spu.ReverbStudioLarge, 0x26ff},  // 118
	{spu.ReverbSpaceEcho, 0x0fff},    // 119
}

// firstMusicSong is the index of the first song with a reverb default;
// lower indexes are sound effects.
const firstMusicSong = 90

// DefaultReverb returns the reverb preset and volume used by the game
// level where a song first appears. Songs without a default get the off
// preset at zero volume.
func DefaultReverb(songIndex uint16) (spu.ReverbPreset, psxdmh.Mono) {
	if songIndex >= firstMusicSong && int(songIndex) < firstMusicSong+len(defaultReverbs) {
		config := defaultReverbs[songIndex-firstMusicSong]
		return config.preset, psxdmh.Mono(config.depth) / 0x7fff
	}
	return spu.ReverbOff, 0
}
