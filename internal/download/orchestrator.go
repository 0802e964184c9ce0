// Package download runs one download session: it drives the fetcher,
// follows its progress, moves finished files out of the scratch directory
// while the download is running and reports what ended up on disk.
package download

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/llehouerou/amflac/internal/console"
	"github.com/llehouerou/amflac/internal/errmsg"
	"github.com/llehouerou/amflac/internal/fetcher"
	"github.com/llehouerou/amflac/internal/history"
	"github.com/llehouerou/amflac/internal/lyrics"
	"github.com/llehouerou/amflac/internal/progress"
	"github.com/llehouerou/amflac/internal/relocate"
	"github.com/llehouerou/amflac/internal/rename"
	"github.com/llehouerou/amflac/internal/transcode"
)

// ErrCancelled is returned by Run when its context is cancelled.
var ErrCancelled = errors.New("download cancelled")

// ScratchDirName is the directory inside the base directory that receives
// the fetcher's output.
const ScratchDirName = ".amflac-scratch"

// DefaultPollInterval is the relocation interval used when none is set.
const DefaultPollInterval = 2 * time.Second

// maxLineSize bounds a single line of fetcher output.
const maxLineSize = 1024 * 1024

// State is the lifecycle stage of a session.
type State int

const (
	StateIdle State = iota
	StateStarting
	StateStreaming
	StateFinalizing
	StateReported
)

// String returns the stage name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateStarting:
		return "STARTING"
	case StateStreaming:
		return "STREAMING"
	case StateFinalizing:
		return "FINALIZING"
	case StateReported:
		return "REPORTED"
	}
	return "UNKNOWN"
}

// Fetcher starts the downloader.
type Fetcher interface {
	Start(ctx context.Context, inv fetcher.Invocation) (fetcher.Process, error)
}

// Transcoder converts downloaded files to FLAC.
type Transcoder interface {
	ConvertAll(ctx context.Context, paths []string) transcode.Summary
}

// Recorder stores finished sessions.
type Recorder interface {
	Record(ctx context.Context, e history.Entry) error
}

// Options configures an Orchestrator.
type Options struct {
	BaseDir      string // destination of finished files
	CookiesPath  string
	Binary       string   // fetcher executable
	BaseArgs     []string // arguments placed before the generated ones
	PollInterval time.Duration
}

// Outcome is the result of a session that ran to completion.
type Outcome struct {
	SessionID  uuid.UUID
	Report     Report
	Success    bool // fetcher exited zero and this session placed at least one file
	StartedAt  time.Time
	FinishedAt time.Time
}

// Orchestrator runs download sessions one at a time.
type Orchestrator struct {
	opts       Options
	fetcher    Fetcher
	parser     progress.Parser
	transcoder Transcoder
	history    Recorder
	out        console.Sink
	now        func() time.Time
	state      State
}

// New creates an orchestrator using the gamdl marker set.
func New(opts Options, f Fetcher, out console.Sink) *Orchestrator {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	return &Orchestrator{
		opts:    opts,
		fetcher: f,
		parser:  progress.New(progress.GamdlMarkers),
		out:     out,
		now:     time.Now,
	}
}

// WithParser replaces the progress parser.
func (o *Orchestrator) WithParser(p progress.Parser) *Orchestrator {
	o.parser = p
	return o
}

// WithTranscoder sets the converter used for formats that need it.
func (o *Orchestrator) WithTranscoder(t Transcoder) *Orchestrator {
	o.transcoder = t
	return o
}

// WithHistory records every finished session in r.
func (o *Orchestrator) WithHistory(r Recorder) *Orchestrator {
	o.history = r
	return o
}

// State returns the stage reached by the last Run.
func (o *Orchestrator) State() State {
	return o.state
}

// ScratchDir returns the scratch directory path.
func (o *Orchestrator) ScratchDir() string {
	return filepath.Join(o.opts.BaseDir, ScratchDirName)
}

// Run downloads req. A fetcher that fails to start or exits non-zero does
// not make Run fail: whatever was downloaded is still moved and reported,
// and Outcome.Success is false. Run returns an error only when the scratch
// directory cannot be prepared or when ctx is cancelled (ErrCancelled), in
// which case the fetcher is stopped, downloaded files are kept and no report
// is written.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Outcome, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	o.state = StateStarting
	s := NewSession()
	started := o.now()
	scratch := o.ScratchDir()

	if err := os.RemoveAll(scratch); err != nil {
		return nil, fmt.Errorf("clear scratch directory: %w", err)
	}
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		return nil, fmt.Errorf("create scratch directory: %w", err)
	}

	inv := fetcher.Invocation{
		Binary:         o.opts.Binary,
		BaseArgs:       o.opts.BaseArgs,
		CookiesPath:    o.opts.CookiesPath,
		OutputDir:      scratch,
		Codec:          req.Format.CodecID,
		NoSyncedLyrics: req.Lyrics == LyricsNone,
		URL:            req.URL,
	}

	var fetchErr error
	proc, err := o.fetcher.Start(ctx, inv)
	if err != nil {
		fetchErr = err
		o.out.Error(errmsg.Format(errmsg.OpDownloadStart, err))
	} else {
		o.state = StateStreaming
		fetchErr = o.stream(ctx, proc, s, scratch, req.Lyrics.IncludeSidecar())
	}

	o.state = StateFinalizing
	target := o.finalize(s, scratch, req)

	if ctx.Err() != nil {
		o.out.Warning("Download cancelled")
		return nil, ErrCancelled
	}

	o.transcode(ctx, s, req)

	found := relocate.Scan(target)
	report := Report{
		Target:      target,
		Files:       len(found.Audio),
		Placed:      s.PlacedAudio(),
		Bytes:       found.Bytes,
		TotalTracks: s.TotalTracks,
		Failed:      s.Failed,
		Lyrics:      req.Lyrics,
		ExitCode:    fetcher.ExitCode(fetchErr),
		FetchErr:    fetchErr,
	}
	if req.Lyrics == LyricsLRC {
		report.Synced = lyrics.CountSynced(found.Sidecars)
	}
	report.Render(o.out)
	o.state = StateReported

	outcome := &Outcome{
		SessionID:  s.ID,
		Report:     report,
		Success:    fetchErr == nil && report.Placed > 0,
		StartedAt:  started,
		FinishedAt: o.now(),
	}
	o.record(ctx, req, outcome)
	return outcome, nil
}

// stream consumes the fetcher's output until it exits, relocating finished
// files every poll interval. It returns the fetcher's exit error.
func (o *Orchestrator) stream(
	ctx context.Context,
	proc fetcher.Process,
	s *Session,
	scratch string,
	includeSidecar bool,
) error {
	lines := make(chan string)
	go readLines(proc.Output(), lines)

	ticker := time.NewTicker(o.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return proc.Wait()
			}
			o.handleLine(s, line)

		case <-ticker.C:
			o.relocate(s, scratch, includeSidecar)

		case <-ctx.Done():
			// The fetcher was interrupted through ctx. Keep the reader
			// unblocked until its output closes.
			go func() {
				for range lines {
				}
			}()
			return proc.Wait()
		}
	}
}

// readLines sends every line of r to lines and closes it at EOF or on a
// read error. Carriage returns end a line so progress bars redrawn in place
// are seen as they update. Lines longer than maxLineSize arrive in pieces.
// After a read error the rest of r is discarded so the fetcher never blocks
// on a full pipe.
func readLines(r io.Reader, lines chan<- string) {
	defer close(lines)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	sc.Split(scanLinesOrCR)
	for sc.Scan() {
		lines <- sc.Text()
	}
	if sc.Err() != nil {
		_, _ = io.Copy(io.Discard, r)
	}
}

func scanLinesOrCR(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	if len(data) >= maxLineSize {
		return maxLineSize, data[:maxLineSize], nil
	}
	return 0, nil, nil
}

func (o *Orchestrator) handleLine(s *Session, line string) {
	for _, ev := range ParseLine(o.parser, line, s) {
		switch ev.Kind {
		case progress.KindPlaylist:
			o.out.Info("Playlist: " + ev.Name)
			dir := o.targetDir(s.PlaylistName)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				o.out.Warning(errmsg.FormatWith(errmsg.OpDownloadScratch, dir, err))
				continue
			}
			s.Placed = relocate.MoveAll(s.Placed, dir)
		case progress.KindSong:
			if s.TotalTracks > 0 {
				o.out.Print(fmt.Sprintf("[%d/%d] %s", s.CurrentTrack, s.TotalTracks, console.Truncate(ev.Name, 60)))
			} else {
				o.out.Print(console.Truncate(ev.Name, 60))
			}
		case progress.KindFailure:
			o.out.Warning("Failed: " + s.CurrentSong)
		}
	}
}

// targetDir is the directory files go to for the given collection name.
func (o *Orchestrator) targetDir(name string) string {
	if folder := rename.FolderName(name); folder != "" {
		return filepath.Join(o.opts.BaseDir, folder)
	}
	return o.opts.BaseDir
}

func (o *Orchestrator) relocate(s *Session, scratch string, includeSidecar bool) {
	res := relocate.Relocate(scratch, o.targetDir(s.PlaylistName), s.Relocated, includeSidecar)
	o.place(s, res)
}

func (o *Orchestrator) place(s *Session, res relocate.Result) {
	s.Placed = append(s.Placed, res.Placed...)
	for _, name := range res.Audio {
		o.out.Success("Moved: " + name)
	}
}

// finalize flushes the scratch directory into the session's final target
// directory and removes it. Without a detected playlist the name derived from
// the URL is used, and files already placed in the base directory follow.
func (o *Orchestrator) finalize(s *Session, scratch string, req Request) string {
	name := s.PlaylistName
	if name == "" {
		name = URLName(req.URL)
	}
	target := o.targetDir(name)

	if s.PlaylistName == "" && target != o.opts.BaseDir && len(s.Placed) > 0 {
		if err := os.MkdirAll(target, 0o755); err != nil {
			o.out.Warning(errmsg.FormatWith(errmsg.OpDownloadFinalize, target, err))
			target = o.opts.BaseDir
		} else {
			s.Placed = relocate.MoveAll(s.Placed, target)
		}
	}

	o.place(s, relocate.Finalize(scratch, target, req.Lyrics.IncludeSidecar()))
	return target
}

func (o *Orchestrator) transcode(ctx context.Context, s *Session, req Request) {
	if !req.Format.Transcode || o.transcoder == nil {
		return
	}

	var audio []string
	for _, p := range s.Placed {
		if relocate.IsAudio(p) {
			audio = append(audio, p)
		}
	}
	if len(audio) == 0 {
		return
	}

	o.out.Info(fmt.Sprintf("Converting %d files to FLAC...", len(audio)))
	sum := o.transcoder.ConvertAll(ctx, audio)

	converted := make(map[string]string, len(sum.Converted))
	for _, c := range sum.Converted {
		converted[c.From] = c.To
	}
	for i, p := range s.Placed {
		if to, ok := converted[p]; ok {
			s.Placed[i] = to
		}
	}

	if len(sum.Converted) > 0 {
		o.out.Success(fmt.Sprintf("Converted %d files to FLAC", len(sum.Converted)))
	}
	for _, p := range sum.Failed {
		o.out.Warning(errmsg.FormatWith(errmsg.OpTranscode, filepath.Base(p), errors.New("ffmpeg failed, original kept")))
	}
}

func (o *Orchestrator) record(ctx context.Context, req Request, out *Outcome) {
	if o.history == nil {
		return
	}
	err := o.history.Record(ctx, history.Entry{
		ID:          out.SessionID,
		URL:         req.URL,
		Format:      req.Format.Key,
		Target:      out.Report.Target,
		Files:       out.Report.Files,
		TotalTracks: out.Report.TotalTracks,
		Failed:      out.Report.Failed,
		ExitCode:    out.Report.ExitCode,
		Success:     out.Success,
		StartedAt:   out.StartedAt,
		FinishedAt:  out.FinishedAt,
	})
	if err != nil {
		o.out.Warning(errmsg.Format(errmsg.OpHistoryRecord, err))
	}
}
