package app

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/llehouerou/amflac/internal/config"
	"github.com/llehouerou/amflac/internal/cookies"
	"github.com/llehouerou/amflac/internal/download"
	"github.com/llehouerou/amflac/internal/errmsg"
)

var lyricsChoices = []struct {
	mode  download.LyricsMode
	label string
}{
	{download.LyricsEmbedded, "Embedded (lyrics in audio file)"},
	{download.LyricsLRC, ".lrc file (separate synced lyrics file)"},
	{download.LyricsNone, "No lyrics"},
}

// quitWords end the URL loop.
var quitWords = map[string]bool{"": true, "q": true, "quit": true, "exit": true}

// Interactive asks for a format, lyrics mode and cookie file, then downloads
// URLs until the user stops.
func (a *App) Interactive(ctx context.Context) error {
	a.out.Banner("Apple Music Downloader", a.version)

	if err := a.requireDeps(); err != nil {
		return err
	}

	format, ok, err := a.selectFormat()
	if err != nil || !ok {
		return err
	}
	lyrics, err := a.selectLyrics()
	if err != nil {
		return err
	}
	cookiesPath, err := a.selectCookies()
	if err != nil {
		return err
	}

	store := a.openHistory()
	if store != nil {
		defer store.Close()
	}
	orch := a.orchestrator(cookiesPath, store)

	for {
		u, err := a.prompt.Text("Enter Apple Music URL (or 'q' to finish):", "")
		if err != nil {
			return err
		}
		u = strings.TrimSpace(u)
		if quitWords[strings.ToLower(u)] {
			break
		}
		if !download.ValidURL(u) {
			a.out.Error("Invalid Apple Music URL")
			a.out.Info("URL should look like: https://music.apple.com/us/playlist/...")
			continue
		}

		req := download.Request{URL: u, Format: format, Lyrics: lyrics}
		a.settings(req)
		outcome, err := orch.Run(ctx, req)
		if err != nil {
			if errors.Is(err, download.ErrCancelled) {
				return err
			}
			a.out.Error(errmsg.FormatWith(errmsg.OpDownloadStart, u, err))
		}
		a.finished(outcome)

		more, err := a.prompt.Confirm("Download more?", true)
		if err != nil {
			return err
		}
		if !more {
			break
		}
	}

	return a.offerCookieDeletion(cookiesPath)
}

func (a *App) selectFormat() (download.Format, bool, error) {
	options := make([]string, 0, len(download.Formats)+1)
	initial := 0
	for i, f := range download.Formats {
		options = append(options, f.Description)
		if f.Key == a.cfg.Format {
			initial = i
		}
	}
	options = append(options, "Exit")

	i, err := a.prompt.Select("Select Audio Format:", options, initial)
	if err != nil {
		return download.Format{}, false, err
	}
	if i >= len(download.Formats) {
		return download.Format{}, false, nil
	}
	return download.Formats[i], true, nil
}

func (a *App) selectLyrics() (download.LyricsMode, error) {
	options := make([]string, len(lyricsChoices))
	initial := 0
	for i, c := range lyricsChoices {
		options[i] = c.label
		if string(c.mode) == a.cfg.Lyrics {
			initial = i
		}
	}
	i, err := a.prompt.Select("How should lyrics be handled?", options, initial)
	if err != nil {
		return "", err
	}
	return lyricsChoices[i].mode, nil
}

// selectCookies asks for the cookie file until an existing file is given.
func (a *App) selectCookies() (string, error) {
	def := a.cookiesPath()
	for {
		path, err := a.prompt.Text("Cookies file path:", def)
		if err != nil {
			return "", err
		}
		path = expandHome(path)
		if err := cookies.Validate(path); err != nil {
			a.out.Error(errmsg.FormatWith(errmsg.OpCookiesRead, path, err))
			continue
		}
		return path, nil
	}
}

func (a *App) offerCookieDeletion(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	destroy, err := a.prompt.Confirm("Creating a fresh session each time is safer. Destroy cookies file?", false)
	if err != nil {
		return err
	}
	if !destroy {
		return nil
	}
	if err := cookies.Destroy(path); err != nil {
		a.out.Error(errmsg.Format(errmsg.OpCookiesDelete, err))
		return nil
	}
	a.out.Success("Deleted: " + path)
	return nil
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			return home + path[1:]
		}
	}
	return path
}

// lyricsFromConfig converts the configured lyrics mode, falling back to
// embedded lyrics.
func lyricsFromConfig(cfg *config.Config) download.LyricsMode {
	if m, err := download.ParseLyricsMode(cfg.Lyrics); err == nil {
		return m
	}
	return download.LyricsEmbedded
}
