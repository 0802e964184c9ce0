package download

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/llehouerou/amflac/internal/console"
	"github.com/llehouerou/amflac/internal/fetcher"
	"github.com/llehouerou/amflac/internal/history"
	"github.com/llehouerou/amflac/internal/transcode"
)

// script plays the fetcher: it writes output lines to w and files to
// inv.OutputDir, and returns the exit error.
type script func(ctx context.Context, inv fetcher.Invocation, w io.Writer) error

type fakeFetcher struct {
	run      script
	startErr error

	mu  sync.Mutex
	inv fetcher.Invocation
}

func (f *fakeFetcher) Start(ctx context.Context, inv fetcher.Invocation) (fetcher.Process, error) {
	f.mu.Lock()
	f.inv = inv
	f.mu.Unlock()
	if f.startErr != nil {
		return nil, f.startErr
	}

	r, w := io.Pipe()
	p := &fakeProcess{out: r, done: make(chan struct{})}
	go func() {
		p.err = f.run(ctx, inv, w)
		w.Close()
		close(p.done)
	}()
	return p, nil
}

func (f *fakeFetcher) invocation() fetcher.Invocation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inv
}

type fakeProcess struct {
	out  *io.PipeReader
	done chan struct{}
	err  error
}

func (p *fakeProcess) Output() io.Reader { return p.out }

func (p *fakeProcess) Wait() error {
	<-p.done
	return p.err
}

type fakeTranscoder struct {
	got []string
}

func (t *fakeTranscoder) ConvertAll(_ context.Context, paths []string) transcode.Summary {
	t.got = append(t.got, paths...)
	var s transcode.Summary
	for _, p := range paths {
		s.Converted = append(s.Converted, transcode.Conversion{From: p, To: transcode.Target(p)})
	}
	return s
}

type fakeHistory struct {
	entries []history.Entry
	err     error
}

func (h *fakeHistory) Record(_ context.Context, e history.Entry) error {
	h.entries = append(h.entries, e)
	return h.err
}

func emit(w io.Writer, lines ...string) {
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
}

// writeAudio creates a file under the fetcher's output directory.
func writeAudio(t *testing.T, inv fetcher.Invocation, rel, content string) {
	t.Helper()
	path := filepath.Join(inv.OutputDir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Error(err)
		return
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Error(err)
	}
}

// waitGone blocks until path no longer exists.
func waitGone(t *testing.T, path string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Errorf("%s was never moved", path)
}

type harness struct {
	base    string
	fetcher *fakeFetcher
	sink    *console.Recorder
	history *fakeHistory
	orch    *Orchestrator
}

func newHarness(t *testing.T, run script) *harness {
	t.Helper()
	h := &harness{
		base:    t.TempDir(),
		fetcher: &fakeFetcher{run: run},
		sink:    console.NewRecorder(),
		history: &fakeHistory{},
	}
	h.orch = New(Options{
		BaseDir:      h.base,
		CookiesPath:  "cookies.txt",
		Binary:       "gamdl",
		PollInterval: 10 * time.Millisecond,
	}, h.fetcher, h.sink).WithHistory(h.history)
	return h
}

func aacRequest(url string) Request {
	f, _ := LookupFormat("aac")
	return Request{URL: url, Format: f, Lyrics: LyricsEmbedded}
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
