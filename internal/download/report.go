package download

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/llehouerou/amflac/internal/console"
)

// maxListedFailures caps the failed titles printed in a report.
const maxListedFailures = 10

// Report is the verification summary of a finished session.
type Report struct {
	Target      string // directory holding the session's files
	Files       int    // audio files found in Target
	Placed      int    // audio files this session put there
	Bytes       int64
	TotalTracks int
	Failed      []string
	Lyrics      LyricsMode
	Synced      int // .lrc sidecars with timestamps, LyricsLRC only
	ExitCode    int
	FetchErr    error
}

// Complete reports whether every expected track is present and none failed.
func (r Report) Complete() bool {
	return len(r.Failed) == 0 && r.TotalTracks > 0 && r.Files >= r.TotalTracks
}

// ListFailed returns at most limit names and how many were left out.
func ListFailed(names []string, limit int) ([]string, int) {
	if len(names) <= limit {
		return names, 0
	}
	return names[:limit], len(names) - limit
}

// Render writes the report to out.
func (r Report) Render(out console.Sink) {
	rows := []console.Row{
		{Key: "Location", Value: r.Target},
		{Key: "Files", Value: strconv.Itoa(r.Files)},
		{Key: "Size", Value: humanize.Bytes(uint64(max(r.Bytes, 0)))},
	}
	if r.TotalTracks > 0 {
		rows = append(rows, console.Row{Key: "Expected", Value: strconv.Itoa(r.TotalTracks)})
	}
	if r.Lyrics == LyricsLRC {
		rows = append(rows, console.Row{Key: "Synced lyrics", Value: strconv.Itoa(r.Synced)})
	}
	out.Panel("Download Report", rows)

	if r.FetchErr != nil {
		if r.ExitCode > 0 {
			out.Error(fmt.Sprintf("Downloader exited with code %d", r.ExitCode))
		} else {
			out.Error(fmt.Sprintf("Downloader failed: %v", r.FetchErr))
		}
	}

	switch {
	case len(r.Failed) > 0:
		listed, more := ListFailed(r.Failed, maxListedFailures)
		out.Warning(fmt.Sprintf("%d tracks failed:", len(r.Failed)))
		for _, name := range listed {
			out.Print("  - " + name)
		}
		if more > 0 {
			out.Print(fmt.Sprintf("  +%d more", more))
		}
	case r.Complete():
		out.Success(fmt.Sprintf("All %d tracks downloaded", r.TotalTracks))
	}

	if r.Files == 0 {
		out.Error("No files were downloaded")
	}
}
