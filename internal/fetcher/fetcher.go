// Package fetcher launches the external downloader (gamdl) and exposes its
// combined console output as a single stream.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"
)

// DefaultGraceDelay is how long an interrupted fetcher may take to exit
// before it is killed.
const DefaultGraceDelay = 5 * time.Second

// Invocation describes one run of the fetcher.
type Invocation struct {
	Binary         string   // executable name or path
	BaseArgs       []string // arguments placed before the generated ones (e.g. "-m", "gamdl")
	CookiesPath    string
	OutputDir      string
	Codec          string
	NoSyncedLyrics bool
	URL            string
}

// Args returns the command-line arguments, without the binary.
func (inv Invocation) Args() []string {
	args := make([]string, 0, len(inv.BaseArgs)+8)
	args = append(args, inv.BaseArgs...)
	if inv.CookiesPath != "" {
		args = append(args, "--cookies-path", inv.CookiesPath)
	}
	args = append(args, "--output-path", inv.OutputDir)
	if inv.Codec != "" {
		args = append(args, "--codec-song", inv.Codec)
	}
	if inv.NoSyncedLyrics {
		args = append(args, "--no-synced-lyrics")
	}
	return append(args, inv.URL)
}

// Process is a running fetcher.
type Process interface {
	// Output returns stdout and stderr merged into one stream. It reaches EOF
	// once the process and everything it spawned have closed their output.
	Output() io.Reader
	// Wait waits for the process to exit and releases the output stream.
	Wait() error
}

// Exec starts the fetcher as an operating system process.
type Exec struct {
	// GraceDelay defaults to DefaultGraceDelay when zero.
	GraceDelay time.Duration
}

// Start spawns the fetcher. When ctx is cancelled the process is interrupted
// and killed if it has not exited after the grace delay.
func (e Exec) Start(ctx context.Context, inv Invocation) (Process, error) {
	if inv.Binary == "" {
		return nil, errors.New("fetcher binary is not configured")
	}

	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("create output pipe: %w", err)
	}

	cmd := exec.CommandContext(ctx, inv.Binary, inv.Args()...)
	cmd.Stdout = w
	cmd.Stderr = w
	cmd.Cancel = func() error {
		return interrupt(cmd.Process)
	}
	cmd.WaitDelay = e.GraceDelay
	if cmd.WaitDelay == 0 {
		cmd.WaitDelay = DefaultGraceDelay
	}

	if err := cmd.Start(); err != nil {
		r.Close()
		w.Close()
		return nil, fmt.Errorf("start %s: %w", inv.Binary, err)
	}
	// Only the child holds the write end now, so r sees EOF when it exits.
	w.Close()

	return &execProcess{cmd: cmd, out: r}, nil
}

type execProcess struct {
	cmd  *exec.Cmd
	out  *os.File
	once sync.Once
	err  error
}

func (p *execProcess) Output() io.Reader {
	return p.out
}

func (p *execProcess) Wait() error {
	p.once.Do(func() {
		p.err = p.cmd.Wait()
		p.out.Close()
	})
	return p.err
}

// ExitCode extracts the exit status from an error returned by Wait.
// It returns 0 for a nil error and -1 when the status is unknown.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
