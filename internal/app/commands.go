package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/llehouerou/amflac/internal/console"
	"github.com/llehouerou/amflac/internal/cookies"
	"github.com/llehouerou/amflac/internal/deps"
	"github.com/llehouerou/amflac/internal/errmsg"
	"github.com/llehouerou/amflac/internal/history"
	"github.com/llehouerou/amflac/internal/lyrics"
	"github.com/llehouerou/amflac/internal/relocate"
	"github.com/llehouerou/amflac/internal/tags"
)

// Check reports the state of every dependency and of the cookie file.
func (a *App) Check() error {
	a.out.Info("Checking dependencies...")

	var errs []error
	for _, s := range deps.Check(a.Dependencies()) {
		if s.Found {
			a.out.Success(fmt.Sprintf("%s installed (%s)", s.Name, s.Path))
			continue
		}
		a.out.Error(s.Name + " not found")
		a.out.Info("Install with: " + s.Hint)
		errs = append(errs, fmt.Errorf("%w: %s", deps.ErrMissing, s.Name))
	}

	path := a.cookiesPath()
	if err := cookies.Validate(path); err != nil {
		a.out.Warning(fmt.Sprintf("%s not found (required for downloads)", path))
		errs = append(errs, ErrNoCookies)
	} else {
		a.out.Success(path + " found")
	}

	if len(errs) > 0 {
		a.out.Warning("Some dependencies are missing. Please install them first.")
		return errors.Join(errs...)
	}
	a.out.Success("All dependencies are installed! Ready to download.")
	return nil
}

// Setup prints how to export the Apple Music cookies.
func (a *App) Setup() {
	dir, err := filepath.Abs(a.workDir)
	if err != nil {
		dir = a.workDir
	}

	a.out.Panel("How to Get Your Cookies", []console.Row{
		{Key: "Safari", Value: "use Chrome/Firefox for the export, or install safari-cookies via Homebrew"},
		{Key: "Chrome / Edge / Brave", Value: "install the 'Get cookies.txt LOCALLY' extension"},
		{Key: "Firefox", Value: "install the 'Export Cookies' extension"},
	})
	a.out.Print("  brew install nickvdyck/tap/safari-cookies")
	a.out.Print("  safari-cookies export --domain music.apple.com > cookies.txt")
	a.out.Print("")
	a.out.Print("Then go to music.apple.com, log in and export the cookies as cookies.txt")
	a.out.Info("Save cookies.txt in: " + dir)
	a.out.Warning("Your cookies stay local. Never share them!")
}

// History lists the most recent download sessions.
func (a *App) History(ctx context.Context, limit int) error {
	store, err := history.Open(a.cfg.HistoryPath)
	if err != nil {
		a.out.Error(errmsg.Format(errmsg.OpHistoryOpen, err))
		return reported(err)
	}
	defer store.Close()

	entries, err := store.Recent(ctx, limit)
	if err != nil {
		a.out.Error(errmsg.Format(errmsg.OpHistoryList, err))
		return reported(err)
	}
	if len(entries) == 0 {
		a.out.Info("No downloads recorded yet")
		return nil
	}

	for _, e := range entries {
		files := strconv.Itoa(e.Files)
		if e.TotalTracks > 0 {
			files += "/" + strconv.Itoa(e.TotalTracks)
		}
		line := fmt.Sprintf("%s  %s files  %s  %s",
			humanize.Time(e.FinishedAt), files, e.Target, console.Truncate(e.URL, 60))
		if e.Success {
			a.out.Success(line)
		} else {
			a.out.Warning(line)
		}
		if len(e.Failed) > 0 {
			a.out.Print(fmt.Sprintf("  %d failed: %s", len(e.Failed), e.Failed[0]))
		}
	}
	return nil
}

// Inspect lists the tracks in dir with their tags and sizes.
func (a *App) Inspect(dir string) error {
	info, err := os.Stat(dir)
	if err == nil && !info.IsDir() {
		err = errors.New("not a directory")
	}
	if err != nil {
		a.out.Error(errmsg.FormatWith(errmsg.OpInspectScan, dir, err))
		return reported(err)
	}

	inv := relocate.Scan(dir)
	found, skipped := tags.ReadAll(inv.Audio)

	for _, t := range found {
		size := ""
		if fi, err := os.Stat(t.Path); err == nil {
			size = humanize.Bytes(uint64(fi.Size()))
		}
		line := t.Title
		if t.Artist != "" {
			line = t.Artist + " - " + line
		}
		if t.Album != "" {
			line += " (" + t.Album + ")"
		}
		a.out.Print(fmt.Sprintf("%02d  %s  %s", t.TrackNumber, console.Truncate(line, 70), size))
	}
	for _, p := range skipped {
		a.out.Warning(errmsg.FormatWith(errmsg.OpInspectTags, filepath.Base(p), errors.New("unsupported or missing tags")))
	}

	a.out.Panel(dir, []console.Row{
		{Key: "Audio files", Value: strconv.Itoa(len(inv.Audio))},
		{Key: "Size", Value: humanize.Bytes(uint64(inv.Bytes))},
		{Key: "Lyrics files", Value: strconv.Itoa(len(inv.Sidecars))},
		{Key: "Synced lyrics", Value: strconv.Itoa(lyrics.CountSynced(inv.Sidecars))},
	})
	return nil
}
