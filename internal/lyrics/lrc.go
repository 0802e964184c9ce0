// Package lyrics reads the synced-lyrics sidecar files written next to
// downloaded tracks.
package lyrics

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Line is one timestamped lyric line.
type Line struct {
	Time time.Duration
	Text string
}

// Lyrics is the content of an LRC file.
type Lyrics struct {
	Title  string
	Artist string
	Lines  []Line
}

// IsSynced reports whether at least one line carries a timestamp.
func (l *Lyrics) IsSynced() bool {
	return len(l.Lines) > 0
}

var (
	// [mm:ss], [mm:ss.xx], [mm:ss.xxx] or [mm:ss:xx]
	timestampRe = regexp.MustCompile(`\[(\d+):(\d{2})(?:[.:](\d{1,3}))?\]`)
	// [ar:Artist], [ti:Title], ...
	metadataRe = regexp.MustCompile(`^\[([a-z]+):(.*)\]$`)
)

// ParseLRC parses LRC text. Lines repeated under several timestamps are
// expanded, and the result is ordered by time.
func ParseLRC(r io.Reader) (*Lyrics, error) {
	l := &Lyrics{}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		if m := metadataRe.FindStringSubmatch(line); m != nil {
			switch m[1] {
			case "ar":
				l.Artist = strings.TrimSpace(m[2])
			case "ti":
				l.Title = strings.TrimSpace(m[2])
			}
			continue
		}

		stamps := timestampRe.FindAllStringSubmatchIndex(line, -1)
		if len(stamps) == 0 {
			continue
		}
		text := strings.TrimSpace(line[stamps[len(stamps)-1][1]:])
		for _, loc := range stamps {
			if ts, ok := parseTimestamp(line, loc); ok {
				l.Lines = append(l.Lines, Line{Time: ts, Text: text})
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(l.Lines, func(i, j int) bool {
		return l.Lines[i].Time < l.Lines[j].Time
	})
	return l, nil
}

// parseTimestamp converts the submatch at loc into a duration.
func parseTimestamp(line string, loc []int) (time.Duration, bool) {
	group := func(n int) string {
		if loc[2*n] < 0 {
			return ""
		}
		return line[loc[2*n]:loc[2*n+1]]
	}

	minutes, err := strconv.Atoi(group(1))
	if err != nil {
		return 0, false
	}
	seconds, err := strconv.Atoi(group(2))
	if err != nil {
		return 0, false
	}

	var millis int
	if frac := group(3); frac != "" {
		n, err := strconv.Atoi(frac)
		if err != nil {
			return 0, false
		}
		// .x is tenths, .xx hundredths, .xxx milliseconds
		switch len(frac) {
		case 1:
			millis = n * 100
		case 2:
			millis = n * 10
		default:
			millis = n
		}
	}

	return time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(millis)*time.Millisecond, true
}

// ReadFile parses the LRC file at path.
func ReadFile(path string) (*Lyrics, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseLRC(f)
}

// CountSynced returns how many of the given sidecar files hold synced lyrics.
// Unreadable files are not counted.
func CountSynced(paths []string) int {
	n := 0
	for _, p := range paths {
		l, err := ReadFile(p)
		if err == nil && l.IsSynced() {
			n++
		}
	}
	return n
}
