package app

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/llehouerou/amflac/internal/config"
	"github.com/llehouerou/amflac/internal/console"
	"github.com/llehouerou/amflac/internal/deps"
	"github.com/llehouerou/amflac/internal/download"
	"github.com/llehouerou/amflac/internal/errmsg"
	"github.com/llehouerou/amflac/internal/prompt"
)

// CLI builds the amflac command line. Zero fields use the process's
// standard streams, real prompts and the real fetcher.
type CLI struct {
	Version string
	In      io.Reader
	Out     io.Writer
	Prompt  Prompter
	Fetcher download.Fetcher
	WorkDir string
}

const (
	flagConfig  = "config"
	flagFormat  = "format"
	flagLyrics  = "lyrics"
	flagCookies = "cookies"
	flagOutput  = "output"
	flagLimit   = "limit"
)

// App returns the urfave/cli application.
func (c CLI) App() *cli.App {
	if c.In == nil {
		c.In = os.Stdin
	}
	if c.Out == nil {
		c.Out = os.Stdout
	}

	return &cli.App{
		Name:    "amflac",
		Usage:   "download Apple Music playlists and albums into a flat, deduplicated folder",
		Version: c.Version,
		Reader:  c.In,
		Writer:  c.Out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Usage:   "configuration file (default: $XDG_CONFIG_HOME/amflac/config.toml, then ./config.toml)",
				EnvVars: []string{"AMFLAC_CONFIG"},
			},
			&cli.StringFlag{
				Name:    flagFormat,
				Aliases: []string{"f"},
				Usage:   "audio format: aac, alac, flac, mp3 or opus",
			},
			&cli.StringFlag{
				Name:    flagLyrics,
				Aliases: []string{"l"},
				Usage:   "lyrics: embedded, lrc or none",
			},
			&cli.StringFlag{
				Name:    flagCookies,
				Aliases: []string{"c"},
				Usage:   "cookies.txt exported from music.apple.com",
			},
			&cli.StringFlag{
				Name:    flagOutput,
				Aliases: []string{"o"},
				Usage:   "base directory for downloads",
			},
		},
		ArgsUsage: "[URL...]",
		Action: c.action(func(ctx *cli.Context, a *App) error {
			if ctx.NArg() == 0 {
				return a.Interactive(ctx.Context)
			}
			format, ok := download.LookupFormat(a.cfg.Format)
			if !ok {
				return fmt.Errorf("unknown format %q", a.cfg.Format)
			}
			return a.Download(ctx.Context, ctx.Args().Slice(), format, lyricsFromConfig(a.cfg))
		}),
		Commands: []*cli.Command{{
			Name:  "check",
			Usage: "check that gamdl, ffmpeg and the cookies file are available",
			Action: c.action(func(_ *cli.Context, a *App) error {
				return a.Check()
			}),
		}, {
			Name:  "setup",
			Usage: "show how to export the Apple Music cookies",
			Action: c.action(func(_ *cli.Context, a *App) error {
				a.Setup()
				return nil
			}),
		}, {
			Name:  "history",
			Usage: "list recent downloads",
			Flags: []cli.Flag{&cli.IntFlag{
				Name:    flagLimit,
				Aliases: []string{"n"},
				Value:   20,
				Usage:   "number of sessions to show",
			}},
			Action: c.action(func(ctx *cli.Context, a *App) error {
				return a.History(ctx.Context, ctx.Int(flagLimit))
			}),
		}, {
			Name:      "inspect",
			Usage:     "list the tracks of a download folder",
			ArgsUsage: "DIR",
			Action: c.action(func(ctx *cli.Context, a *App) error {
				if ctx.NArg() != 1 {
					return errors.New("inspect takes exactly one directory")
				}
				return a.Inspect(ctx.Args().First())
			}),
		}},
		// Exit codes are derived in action and handled by main.
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

// action loads the configuration, builds the App and maps its errors to
// exit codes.
func (c CLI) action(run func(*cli.Context, *App) error) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		out := console.New(c.Out)

		cfg, err := loadConfig(ctx)
		if err != nil {
			out.Error(errmsg.Format(errmsg.OpConfigLoad, err))
			return cli.Exit("", 1)
		}

		p := c.Prompt
		if p == nil {
			p = prompt.New(c.In, c.Out)
		}
		a := New(cfg, out, p).WithVersion(c.Version)
		if c.Fetcher != nil {
			a.WithFetcher(c.Fetcher)
		}
		if c.WorkDir != "" {
			a.WithWorkDir(c.WorkDir)
		}

		return exitCode(out, run(ctx, a))
	}
}

func loadConfig(ctx *cli.Context) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path := ctx.String(flagConfig); path != "" {
		cfg, err = config.LoadFrom([]string{path}, ".env")
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if v := ctx.String(flagFormat); v != "" {
		cfg.Format = v
	}
	if v := ctx.String(flagLyrics); v != "" {
		cfg.Lyrics = v
	}
	if v := ctx.String(flagCookies); v != "" {
		cfg.Cookies = v
	}
	if v := ctx.String(flagOutput); v != "" {
		cfg.DownloadsDir = v
	}
	if _, ok := download.LookupFormat(cfg.Format); !ok {
		return nil, fmt.Errorf("unknown format %q", cfg.Format)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// exitCode turns a command error into the process exit status. Deliberate
// cancellation exits 0.
func exitCode(out Output, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, prompt.ErrCancelled):
		out.Warning("Cancelled")
		return nil
	case errors.Is(err, download.ErrCancelled):
		return nil
	case errors.Is(err, ErrIncomplete):
		out.Warning(err.Error())
		return cli.Exit("", 1)
	case errors.Is(err, errReported), errors.Is(err, deps.ErrMissing), errors.Is(err, ErrNoCookies):
		return cli.Exit("", 1)
	default:
		out.Error(err.Error())
		return cli.Exit("", 1)
	}
}
