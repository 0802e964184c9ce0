// Package tags reads the metadata of downloaded tracks for the inspect command.
package tags

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
)

// Tag is the subset of track metadata shown to the user.
type Tag struct {
	Path        string
	Title       string
	Artist      string
	Album       string
	TrackNumber int
	TotalTracks int
	Format      string
	Lyrics      bool // embedded lyrics present
}

// Read reads tag metadata from a music file. When the file carries no title
// the file name without extension is used.
func Read(path string) (*Tag, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil, err
	}

	title := m.Title()
	if title == "" {
		base := filepath.Base(path)
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	track, total := m.Track()
	return &Tag{
		Path:        path,
		Title:       title,
		Artist:      m.Artist(),
		Album:       m.Album(),
		TrackNumber: track,
		TotalTracks: total,
		Format:      string(m.FileType()),
		Lyrics:      strings.TrimSpace(m.Lyrics()) != "",
	}, nil
}

// ReadAll reads every path, skipping files whose tags cannot be read.
// The second return value lists the skipped paths.
func ReadAll(paths []string) ([]*Tag, []string) {
	var (
		out     []*Tag
		skipped []string
	)
	for _, p := range paths {
		t, err := Read(p)
		if err != nil {
			skipped = append(skipped, p)
			continue
		}
		out = append(out, t)
	}
	return out, skipped
}
