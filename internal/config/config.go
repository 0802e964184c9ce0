package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Lyrics modes accepted in the configuration.
const (
	LyricsEmbedded = "embedded"
	LyricsLRC      = "lrc"
	LyricsNone     = "none"
)

type Config struct {
	DownloadsDir string        `koanf:"downloads_dir"` // base directory for finished downloads
	Format       string        `koanf:"format"`        // format key used when none is given on the command line
	Lyrics       string        `koanf:"lyrics"`        // "embedded", "lrc" or "none"
	Cookies      string        `koanf:"cookies"`       // cookie file; empty means discover in the working directory
	PollInterval time.Duration `koanf:"poll_interval"` // relocation interval while downloading
	FFmpegPath   string        `koanf:"ffmpeg_path"`
	HistoryPath  string        `koanf:"history_path"` // empty means the XDG data directory
	Notify       bool          `koanf:"notify"`       // desktop notification when a download ends

	Fetcher FetcherConfig `koanf:"fetcher"`
}

// FetcherConfig describes how the downloader is launched.
type FetcherConfig struct {
	Binary     string        `koanf:"binary"`
	Args       []string      `koanf:"args"`        // placed before the generated arguments
	GraceDelay time.Duration `koanf:"grace_delay"` // wait after interrupt before killing
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		DownloadsDir: "Downloads",
		Format:       "aac",
		Lyrics:       LyricsEmbedded,
		PollInterval: 2 * time.Second,
		FFmpegPath:   "ffmpeg",
		Fetcher: FetcherConfig{
			Binary:     "gamdl",
			GraceDelay: 5 * time.Second,
		},
	}
}

// envKeys maps environment variables to configuration keys.
var envKeys = map[string]string{
	"AMFLAC_DOWNLOADS_DIR":       "downloads_dir",
	"AMFLAC_FORMAT":              "format",
	"AMFLAC_LYRICS":              "lyrics",
	"AMFLAC_COOKIES":             "cookies",
	"AMFLAC_POLL_INTERVAL":       "poll_interval",
	"AMFLAC_FFMPEG":              "ffmpeg_path",
	"AMFLAC_HISTORY_PATH":        "history_path",
	"AMFLAC_NOTIFY":              "notify",
	"AMFLAC_FETCHER":             "fetcher.binary",
	"AMFLAC_FETCHER_ARGS":        "fetcher.args", // whitespace separated
	"AMFLAC_FETCHER_GRACE_DELAY": "fetcher.grace_delay",
}

// listKeys hold argument lists. Their environment values are split on
// whitespace.
var listKeys = map[string]bool{
	"fetcher.args": true,
}

// Load reads the configuration files, then .env and the process environment.
func Load() (*Config, error) {
	return LoadFrom(getConfigPaths(), ".env")
}

// LoadFrom loads the given TOML files in order (last wins) and applies
// AMFLAC_* overrides from envFile and the environment. Missing files are
// skipped. Variables already set in the environment win over envFile.
func LoadFrom(paths []string, envFile string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, fmt.Errorf("load %s: %w", path, err)
			}
		}
	}

	dotenv := map[string]string{}
	if envFile != "" {
		vals, err := godotenv.Read(envFile)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
		if vals != nil {
			dotenv = vals
		}
	}
	for name, key := range envKeys {
		val, ok := os.LookupEnv(name)
		if !ok {
			val, ok = dotenv[name]
		}
		if !ok {
			continue
		}
		var v any = val
		if listKeys[key] {
			v = strings.Fields(val)
		}
		if err := k.Set(key, v); err != nil {
			return nil, fmt.Errorf("apply %s: %w", name, err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.DownloadsDir = expandPath(cfg.DownloadsDir)
	cfg.Cookies = expandPath(cfg.Cookies)
	cfg.HistoryPath = expandPath(cfg.HistoryPath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	switch c.Lyrics {
	case LyricsEmbedded, LyricsLRC, LyricsNone:
	default:
		return fmt.Errorf("invalid lyrics mode %q (want embedded, lrc or none)", c.Lyrics)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", c.PollInterval)
	}
	if c.DownloadsDir == "" {
		return errors.New("downloads_dir must not be empty")
	}
	if c.Fetcher.Binary == "" {
		return errors.New("fetcher.binary must not be empty")
	}
	return nil
}

func getConfigPaths() []string {
	return []string{
		// 1. $XDG_CONFIG_HOME/amflac/config.toml
		filepath.Join(xdg.ConfigHome, "amflac", "config.toml"),
		// 2. ./config.toml (pwd, highest priority)
		"config.toml",
	}
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
