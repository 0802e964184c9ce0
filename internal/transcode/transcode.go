// Package transcode converts downloaded audio to FLAC with ffmpeg.
package transcode

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const flacExt = ".flac"

// FFmpeg converts files by running the ffmpeg binary.
type FFmpeg struct {
	path string
}

// New creates a converter using the ffmpeg binary at path ("ffmpeg" when empty).
func New(path string) *FFmpeg {
	if path == "" {
		path = "ffmpeg"
	}
	return &FFmpeg{path: path}
}

// Target returns the FLAC sibling path of src.
func Target(src string) string {
	return strings.TrimSuffix(src, filepath.Ext(src)) + flacExt
}

// NeedsConversion returns true if the file is not FLAC yet.
func NeedsConversion(path string) bool {
	return !strings.EqualFold(filepath.Ext(path), flacExt)
}

// ToFLAC converts src to a FLAC file next to it and removes src.
// On failure the partial output is removed and src is left untouched.
func (f *FFmpeg) ToFLAC(ctx context.Context, src string) (string, error) {
	dst := Target(src)

	cmd := exec.CommandContext(ctx, f.path,
		"-i", src,
		"-c:a", "flac",
		"-compression_level", "8",
		"-y",
		dst,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("ffmpeg conversion failed: %w\n%s", err, string(output))
	}

	if err := os.Remove(src); err != nil {
		return dst, fmt.Errorf("remove original: %w", err)
	}
	return dst, nil
}

// Conversion records one converted file.
type Conversion struct {
	From string
	To   string
}

// Summary reports the outcome of ConvertAll.
type Summary struct {
	Converted []Conversion
	Skipped   []string // already FLAC, or a FLAC sibling exists
	Failed    []string
}

// ConvertAll converts every file in paths that is not FLAC yet. Failures do
// not stop the batch. Conversion stops early when ctx is cancelled.
func (f *FFmpeg) ConvertAll(ctx context.Context, paths []string) Summary {
	var s Summary
	for _, src := range paths {
		if ctx.Err() != nil {
			s.Failed = append(s.Failed, src)
			continue
		}
		if !NeedsConversion(src) {
			s.Skipped = append(s.Skipped, src)
			continue
		}
		if _, err := os.Stat(Target(src)); err == nil {
			s.Skipped = append(s.Skipped, src)
			continue
		}
		dst, err := f.ToFLAC(ctx, src)
		if err != nil && dst == "" {
			s.Failed = append(s.Failed, src)
			continue
		}
		s.Converted = append(s.Converted, Conversion{From: src, To: dst})
	}
	return s
}
