package download

import (
	"github.com/google/uuid"

	"github.com/llehouerou/amflac/internal/progress"
	"github.com/llehouerou/amflac/internal/relocate"
)

// Session is the state of one URL's download. It is owned by the
// orchestrator loop and never shared.
type Session struct {
	ID           uuid.UUID
	TotalTracks  int // 0 until the first track marker
	CurrentTrack int
	PlaylistName string // first detection wins
	CurrentSong  string
	Downloaded   []string
	Failed       []string // insertion order, no duplicates

	// Relocated holds the scratch paths already moved.
	Relocated relocate.Set
	// Placed holds the destination of every file moved this session.
	Placed []string

	failed map[string]struct{}
}

// NewSession creates an empty session with a fresh ID.
func NewSession() *Session {
	return &Session{
		ID:        uuid.New(),
		Relocated: relocate.Set{},
		failed:    map[string]struct{}{},
	}
}

// PlacedAudio counts the audio files this session placed.
func (s *Session) PlacedAudio() int {
	n := 0
	for _, p := range s.Placed {
		if relocate.IsAudio(p) {
			n++
		}
	}
	return n
}

// Apply updates the session with ev and reports whether it changed anything.
func (s *Session) Apply(ev progress.Event) bool {
	switch ev.Kind {
	case progress.KindPlaylist:
		if s.PlaylistName != "" || ev.Name == "" {
			return false
		}
		s.PlaylistName = ev.Name
		return true

	case progress.KindTrack:
		s.CurrentTrack = ev.Index
		s.TotalTracks = ev.Total
		return true

	case progress.KindSong:
		s.CurrentSong = ev.Name
		s.Downloaded = append(s.Downloaded, ev.Name)
		return true

	case progress.KindFailure:
		if s.CurrentSong == "" {
			return false
		}
		if _, seen := s.failed[s.CurrentSong]; seen {
			return false
		}
		s.failed[s.CurrentSong] = struct{}{}
		s.Failed = append(s.Failed, s.CurrentSong)
		return true
	}
	return false
}

// ParseLine feeds one line of fetcher output through p into s and returns
// the events that took effect.
func ParseLine(p progress.Parser, line string, s *Session) []progress.Event {
	var applied []progress.Event
	for _, ev := range p.Parse(line) {
		if s.Apply(ev) {
			applied = append(applied, ev)
		}
	}
	return applied
}
