package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/llehouerou/amflac/internal/config"
	"github.com/llehouerou/amflac/internal/console"
	"github.com/llehouerou/amflac/internal/fetcher"
	"github.com/llehouerou/amflac/internal/notify"
	"github.com/llehouerou/amflac/internal/prompt"
)

// scriptedPrompt answers prompts from a fixed list: int for Select, bool for
// Confirm, string for Text, error to fail the prompt. Running out of answers
// cancels.
type scriptedPrompt struct {
	answers []any
	asked   []string
}

func (p *scriptedPrompt) next(q string) any {
	p.asked = append(p.asked, q)
	if len(p.answers) == 0 {
		return prompt.ErrCancelled
	}
	a := p.answers[0]
	p.answers = p.answers[1:]
	return a
}

func (p *scriptedPrompt) Select(title string, _ []string, _ int) (int, error) {
	switch a := p.next(title).(type) {
	case int:
		return a, nil
	case error:
		return 0, a
	default:
		return 0, fmt.Errorf("select %q got answer %v", title, a)
	}
}

func (p *scriptedPrompt) Confirm(question string, _ bool) (bool, error) {
	switch a := p.next(question).(type) {
	case bool:
		return a, nil
	case error:
		return false, a
	default:
		return false, fmt.Errorf("confirm %q got answer %v", question, a)
	}
}

func (p *scriptedPrompt) Text(title, def string) (string, error) {
	switch a := p.next(title).(type) {
	case string:
		if a == "" {
			return def, nil
		}
		return a, nil
	case error:
		return "", a
	default:
		return "", fmt.Errorf("text %q got answer %v", title, a)
	}
}

// fileFetcher writes one audio file per invocation and exits successfully.
type fileFetcher struct {
	calls []fetcher.Invocation
}

func (f *fileFetcher) Start(_ context.Context, inv fetcher.Invocation) (fetcher.Process, error) {
	f.calls = append(f.calls, inv)
	if err := os.WriteFile(filepath.Join(inv.OutputDir, "01 Song.m4a"), []byte("audio"), 0o600); err != nil {
		return nil, err
	}
	r, w := io.Pipe()
	go func() {
		fmt.Fprintln(w, "[Track 1/1]")
		fmt.Fprintln(w, `Downloading "Song"`)
		w.Close()
	}()
	return &doneProcess{out: r}, nil
}

type doneProcess struct {
	out io.Reader
}

func (p *doneProcess) Output() io.Reader { return p.out }
func (p *doneProcess) Wait() error       { return nil }

type env struct {
	cfg     *config.Config
	work    string
	cookies string
	out     *console.Recorder
	fetch   *fileFetcher
}

// newEnv uses sh in place of gamdl and ffmpeg so the dependency check passes.
func newEnv(t *testing.T) *env {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("uses sh as a stand-in binary")
	}
	root := t.TempDir()
	work := filepath.Join(root, "work")
	require.NoError(t, os.MkdirAll(work, 0o755))
	cookiesPath := filepath.Join(work, "cookies.txt")
	require.NoError(t, os.WriteFile(cookiesPath, []byte("# Netscape HTTP Cookie File"), 0o600))

	cfg := config.Default()
	cfg.DownloadsDir = filepath.Join(root, "Downloads")
	cfg.HistoryPath = filepath.Join(root, "history.db")
	cfg.PollInterval = 10 * time.Millisecond
	cfg.Fetcher.Binary = "sh"
	cfg.FFmpegPath = "sh"

	return &env{
		cfg:     cfg,
		work:    work,
		cookies: cookiesPath,
		out:     console.NewRecorder(),
		fetch:   &fileFetcher{},
	}
}

func (e *env) app(p Prompter) *App {
	return New(e.cfg, e.out, p).WithFetcher(e.fetch).WithWorkDir(e.work)
}

const albumURL = "https://music.apple.com/us/album/test-album/1440"

type recordingNotifier struct {
	sent []notify.Notification
}

func (n *recordingNotifier) Notify(m notify.Notification) error {
	n.sent = append(n.sent, m)
	return nil
}
