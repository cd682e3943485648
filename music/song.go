package music

import (
	"github.com/ben-michell/psxdmh"
	"github.com/ben-michell/psxdmh/lcd"
	"github.com/ben-michell/psxdmh/wmd"
)

// SongPlayer drives the playback of all tracks in a song in parallel.
type SongPlayer struct {
	tracks []*TrackPlayer
}

// NewSongPlayer prepares a song for playback. The WMD and LCD files must
// remain valid for the life of the player.
func NewSongPlayer(songIndex int, wmdFile *wmd.File, lcdFile *lcd.File, config PlayerConfig) *SongPlayer {
	song := wmdFile.Song(songIndex)
	player := &SongPlayer{tracks: make([]*TrackPlayer, 0, len(song.Tracks))}
	for trackIndex := range song.Tracks {
		player.tracks = append(player.tracks, NewTrackPlayer(songIndex, trackIndex, wmdFile, lcdFile, config))
	}
	return player
}

// IsRunning tests whether the song playback is still running.
func (p *SongPlayer) IsRunning() bool {
	for _, track := range p.tracks {
		if track.IsRunning() {
			return true
		}
	}
	return false
}

// Next produces the next sample: the unscaled sum of all currently playing
// notes from all tracks.
func (p *SongPlayer) Next(s *psxdmh.Stereo) bool {
	*s = psxdmh.Stereo{}
	var temp psxdmh.Stereo
	live := false
	for _, track := range p.tracks {
		live = track.Next(&temp) || live
		*s = s.Add(temp)
	}
	return live
}

// FailedToRepeat tests if any track failed to repeat when a repeat was
// requested.
func (p *SongPlayer) FailedToRepeat() bool {
	for _, track := range p.tracks {
		if track.FailedToRepeat() {
			return true
		}
	}
	return false
}
