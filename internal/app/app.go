// Package app connects the command line and the interactive prompts to the
// download orchestrator.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/llehouerou/amflac/internal/config"
	"github.com/llehouerou/amflac/internal/console"
	"github.com/llehouerou/amflac/internal/cookies"
	"github.com/llehouerou/amflac/internal/deps"
	"github.com/llehouerou/amflac/internal/download"
	"github.com/llehouerou/amflac/internal/errmsg"
	"github.com/llehouerou/amflac/internal/fetcher"
	"github.com/llehouerou/amflac/internal/history"
	"github.com/llehouerou/amflac/internal/notify"
	"github.com/llehouerou/amflac/internal/transcode"
)

// ErrIncomplete is returned when at least one requested download did not
// succeed.
var ErrIncomplete = errors.New("some downloads did not complete")

// ErrNoCookies is returned when no usable cookie file is available.
var ErrNoCookies = errors.New("cookies file not found")

// errReported marks errors already shown to the user.
var errReported = errors.New("reported")

func reported(err error) error {
	return fmt.Errorf("%w: %w", errReported, err)
}

// Output is where the application writes for the user.
type Output interface {
	console.Sink
	Banner(title, version string)
}

// Prompter asks the user questions.
type Prompter interface {
	Select(title string, options []string, initial int) (int, error)
	Confirm(question string, def bool) (bool, error)
	Text(title, def string) (string, error)
}

// App holds the collaborators shared by every command.
type App struct {
	cfg        *config.Config
	out        Output
	prompt     Prompter
	fetcher    download.Fetcher
	transcoder download.Transcoder
	notifier   notify.Notifier
	workDir    string // searched for cookie files
	version    string
}

// New creates an App that launches the configured fetcher and ffmpeg.
func New(cfg *config.Config, out Output, p Prompter) *App {
	var n notify.Notifier = notify.Nop{}
	if cfg.Notify {
		n = notify.New()
	}
	return &App{
		cfg:        cfg,
		out:        out,
		prompt:     p,
		fetcher:    fetcher.Exec{GraceDelay: cfg.Fetcher.GraceDelay},
		transcoder: transcode.New(cfg.FFmpegPath),
		notifier:   n,
		workDir:    ".",
	}
}

// WithFetcher replaces the fetcher launcher.
func (a *App) WithFetcher(f download.Fetcher) *App {
	a.fetcher = f
	return a
}

// WithTranscoder replaces the FLAC converter.
func (a *App) WithTranscoder(t download.Transcoder) *App {
	a.transcoder = t
	return a
}

// WithNotifier replaces the desktop notifier.
func (a *App) WithNotifier(n notify.Notifier) *App {
	a.notifier = n
	return a
}

// WithWorkDir sets the directory searched for cookie files.
func (a *App) WithWorkDir(dir string) *App {
	a.workDir = dir
	return a
}

// WithVersion sets the version shown in the banner.
func (a *App) WithVersion(v string) *App {
	a.version = v
	return a
}

// Dependencies lists the external programs a download needs.
func (a *App) Dependencies() []deps.Dependency {
	return []deps.Dependency{
		{Name: "gamdl", Binary: a.cfg.Fetcher.Binary, Hint: "pip install gamdl"},
		{Name: "FFmpeg", Binary: a.cfg.FFmpegPath, Hint: "brew install ffmpeg, or your package manager"},
	}
}

func (a *App) requireDeps() error {
	err := deps.Require(a.Dependencies())
	if err == nil {
		return nil
	}
	for _, s := range deps.Check(a.Dependencies()) {
		if !s.Found {
			a.out.Error(s.Name + " is required but not installed")
			a.out.Info("Install with: " + s.Hint)
		}
	}
	return err
}

// cookiesPath returns the configured cookie file or the best candidate in
// the working directory.
func (a *App) cookiesPath() string {
	if a.cfg.Cookies != "" {
		return a.cfg.Cookies
	}
	return cookies.Default(a.workDir, "cookies.txt")
}

func (a *App) openHistory() *history.Store {
	store, err := history.Open(a.cfg.HistoryPath)
	if err != nil {
		a.out.Warning(errmsg.Format(errmsg.OpHistoryOpen, err))
		return nil
	}
	return store
}

func (a *App) orchestrator(cookiesPath string, store *history.Store) *download.Orchestrator {
	o := download.New(download.Options{
		BaseDir:      a.cfg.DownloadsDir,
		CookiesPath:  cookiesPath,
		Binary:       a.cfg.Fetcher.Binary,
		BaseArgs:     a.cfg.Fetcher.Args,
		PollInterval: a.cfg.PollInterval,
	}, a.fetcher, a.out)
	if a.transcoder != nil {
		o.WithTranscoder(a.transcoder)
	}
	if store != nil {
		o.WithHistory(store)
	}
	return o
}

// finished announces a completed session on the desktop. Delivery failures
// are ignored.
func (a *App) finished(o *download.Outcome) {
	if o == nil {
		return
	}
	r := o.Report
	_ = a.notifier.Notify(notify.Session(filepath.Base(r.Target), r.Files, len(r.Failed), o.Success))
}

func (a *App) settings(req download.Request) {
	a.out.Panel("Download Settings", []console.Row{
		{Key: "URL", Value: req.URL},
		{Key: "Format", Value: req.Format.Description},
		{Key: "Lyrics", Value: string(req.Lyrics)},
		{Key: "Output", Value: a.cfg.DownloadsDir},
	})
	a.out.Info("Starting download... (this may take a while)")
}

// Download fetches every URL in turn without asking questions. Invalid URLs
// are reported and skipped.
func (a *App) Download(ctx context.Context, urls []string, format download.Format, lyrics download.LyricsMode) error {
	if err := a.requireDeps(); err != nil {
		return err
	}
	cookiesPath := a.cookiesPath()
	if err := cookies.Validate(cookiesPath); err != nil {
		a.out.Error(errmsg.FormatWith(errmsg.OpCookiesRead, cookiesPath, err))
		a.out.Info("Run 'amflac setup' to see how to export your cookies")
		return ErrNoCookies
	}

	store := a.openHistory()
	if store != nil {
		defer store.Close()
	}
	orch := a.orchestrator(cookiesPath, store)

	failed := 0
	for _, u := range urls {
		req := download.Request{URL: strings.TrimSpace(u), Format: format, Lyrics: lyrics}
		if !download.ValidURL(req.URL) {
			a.out.Error("Invalid Apple Music URL: " + u)
			a.out.Info("URL should look like: https://music.apple.com/us/playlist/...")
			failed++
			continue
		}
		a.settings(req)
		outcome, err := orch.Run(ctx, req)
		if err != nil {
			if errors.Is(err, download.ErrCancelled) {
				return err
			}
			a.out.Error(errmsg.FormatWith(errmsg.OpDownloadStart, req.URL, err))
			failed++
			continue
		}
		a.finished(outcome)
		if !outcome.Success {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrIncomplete, failed, len(urls))
	}
	a.out.Success("Done! Your music is ready in " + a.cfg.DownloadsDir)
	return nil
}
