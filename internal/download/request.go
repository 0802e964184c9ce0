package download

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/llehouerou/amflac/internal/rename"
)

// LyricsMode selects how synced lyrics are delivered.
type LyricsMode string

const (
	// LyricsEmbedded keeps lyrics inside the audio files only.
	LyricsEmbedded LyricsMode = "embedded"
	// LyricsLRC also keeps the .lrc sidecar files next to the tracks.
	LyricsLRC LyricsMode = "lrc"
	// LyricsNone asks the fetcher not to fetch synced lyrics.
	LyricsNone LyricsMode = "none"
)

// ParseLyricsMode converts a configuration or flag value.
func ParseLyricsMode(s string) (LyricsMode, error) {
	switch m := LyricsMode(strings.ToLower(strings.TrimSpace(s))); m {
	case LyricsEmbedded, LyricsLRC, LyricsNone:
		return m, nil
	}
	return "", fmt.Errorf("unknown lyrics mode %q", s)
}

// IncludeSidecar reports whether .lrc files are kept during relocation.
func (m LyricsMode) IncludeSidecar() bool {
	return m == LyricsLRC
}

// Format is an output format the user can pick.
type Format struct {
	Key         string // name used on the command line and in config
	CodecID     string // value of the fetcher's --codec-song flag
	Extension   string // extension of the final files, without dot
	Description string
	Transcode   bool // files are converted to FLAC after download
}

// Formats lists the supported formats in menu order.
var Formats = []Format{
	{Key: "aac", CodecID: "aac-legacy", Extension: "m4a", Description: "AAC 256kbps"},
	{Key: "alac", CodecID: "alac", Extension: "m4a", Description: "Apple Lossless"},
	{Key: "flac", CodecID: "alac", Extension: "flac", Description: "FLAC (Converted)", Transcode: true},
	{Key: "mp3", CodecID: "mp3", Extension: "mp3", Description: "MP3 320kbps"},
	{Key: "opus", CodecID: "opus", Extension: "opus", Description: "Opus Codec"},
}

// LookupFormat returns the format with the given key.
func LookupFormat(key string) (Format, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, f := range Formats {
		if f.Key == key {
			return f, true
		}
	}
	return Format{}, false
}

// Request is what the user asked to download.
type Request struct {
	URL    string
	Format Format
	Lyrics LyricsMode
}

var (
	reAppleMusicURL = regexp.MustCompile(`^https?://(www\.)?music\.apple\.com/.+`)
	reCollectionURL = regexp.MustCompile(`/(?:playlist|album)/([^/?#]+)`)
)

// ValidURL reports whether u looks like an Apple Music link.
func ValidURL(u string) bool {
	return reAppleMusicURL.MatchString(strings.TrimSpace(u))
}

// Validate checks the request before a session starts.
func (r Request) Validate() error {
	if !ValidURL(r.URL) {
		return fmt.Errorf("invalid Apple Music URL %q", r.URL)
	}
	if r.Format.CodecID == "" {
		return errors.New("no format selected")
	}
	if _, err := ParseLyricsMode(string(r.Lyrics)); err != nil {
		return err
	}
	return nil
}

// URLName derives a folder name from the playlist or album slug of u,
// e.g. ".../playlist/my-great-mix/pl.123" gives "My Great Mix".
// It returns "" when u has no such segment.
func URLName(u string) string {
	m := reCollectionURL.FindStringSubmatch(u)
	if m == nil {
		return ""
	}
	slug := m[1]
	if unescaped, err := url.PathUnescape(slug); err == nil {
		slug = unescaped
	}
	return rename.TitleCase(strings.ReplaceAll(slug, "-", " "))
}
