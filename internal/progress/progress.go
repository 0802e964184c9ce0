// Package progress extracts structured events from the fetcher's console
// output. The fetcher's output is meant for humans, so the recognized markers
// are kept together in a versioned Markers value that can be replaced without
// touching the code that consumes the events.
package progress

import (
	"regexp"
	"strconv"
	"strings"
)

// Kind identifies the type of an Event.
type Kind int

const (
	// KindPlaylist reports the name of the playlist being processed.
	KindPlaylist Kind = iota + 1
	// KindTrack reports the index of the current track and the total.
	KindTrack
	// KindSong reports that a new song started downloading.
	KindSong
	// KindFailure reports that the current song failed or was skipped.
	KindFailure
)

// String returns a short name for the kind.
func (k Kind) String() string {
	switch k {
	case KindPlaylist:
		return "playlist"
	case KindTrack:
		return "track"
	case KindSong:
		return "song"
	case KindFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Event is one piece of information recognized in a line of output.
type Event struct {
	Kind  Kind
	Name  string // playlist name (KindPlaylist) or song title (KindSong)
	Index int    // KindTrack only
	Total int    // KindTrack only
}

// Parser turns one line of fetcher output into events.
type Parser interface {
	Parse(line string) []Event
}

// Markers is the set of patterns recognized in the fetcher's output.
type Markers struct {
	Version string
	// Playlist must capture the playlist slug in its first group.
	Playlist *regexp.Regexp
	// Track must capture the track index and the total.
	Track *regexp.Regexp
	// Song must capture the song title.
	Song *regexp.Regexp
	// Failure matches lines reporting a failed or skipped song.
	Failure *regexp.Regexp
}

// GamdlMarkers matches the console output of gamdl.
var GamdlMarkers = Markers{
	Version:  "gamdl/3",
	Playlist: regexp.MustCompile(`(?i)\b(?:processing|checking)\b.*?/playlist/([^/\s?#"']+)/`),
	Track:    regexp.MustCompile(`\[Track (\d+)/(\d+)\]`),
	Song:     regexp.MustCompile(`Downloading "([^"]+)"`),
	Failure:  regexp.MustCompile(`Error downloading|Skipping`),
}

// MarkerParser is a Parser driven by a Markers value.
type MarkerParser struct {
	markers Markers
}

// New creates a parser for the given markers.
func New(m Markers) *MarkerParser {
	return &MarkerParser{markers: m}
}

// Parse returns the events found in line, in the order playlist, track,
// song. A failure line yields only the failure event. Unrecognized lines
// yield nothing.
func (p *MarkerParser) Parse(line string) []Event {
	m := p.markers
	var events []Event

	if m.Failure != nil && m.Failure.MatchString(line) {
		return []Event{{Kind: KindFailure}}
	}

	if m.Playlist != nil {
		if sub := m.Playlist.FindStringSubmatch(line); sub != nil {
			if name := PlaylistName(sub[1]); name != "" {
				events = append(events, Event{Kind: KindPlaylist, Name: name})
			}
		}
	}

	if m.Track != nil {
		if sub := m.Track.FindStringSubmatch(line); sub != nil {
			index, errIndex := strconv.Atoi(sub[1])
			total, errTotal := strconv.Atoi(sub[2])
			if errIndex == nil && errTotal == nil {
				events = append(events, Event{Kind: KindTrack, Index: index, Total: total})
			}
		}
	}

	if m.Song != nil {
		if sub := m.Song.FindStringSubmatch(line); sub != nil {
			if title := strings.TrimSpace(sub[1]); title != "" {
				events = append(events, Event{Kind: KindSong, Name: title})
			}
		}
	}

	return events
}

// PlaylistName turns a URL slug into a playlist name by replacing hyphens
// and encoded spaces with spaces. Case is preserved.
func PlaylistName(slug string) string {
	name := strings.ReplaceAll(slug, "%20", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return strings.Join(strings.Fields(name), " ")
}
