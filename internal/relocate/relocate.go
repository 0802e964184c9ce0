// Package relocate moves finished fetcher output from a scratch directory into
// a flat, collision-free target directory.
package relocate

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/llehouerou/amflac/internal/rename"
)

// AudioExtensions lists the audio file extensions that are relocated.
var AudioExtensions = []string{".m4a", ".flac", ".mp3", ".opus", ".aac"}

// SidecarExtension is the extension of synced-lyrics sidecar files.
const SidecarExtension = ".lrc"

// IsAudio reports whether path has one of the audio extensions.
func IsAudio(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range AudioExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// IsSidecar reports whether path is a lyrics sidecar file.
func IsSidecar(path string) bool {
	return strings.EqualFold(filepath.Ext(path), SidecarExtension)
}

// Set records source paths that have already been relocated.
type Set map[string]struct{}

// Has reports whether path was recorded.
func (s Set) Has(path string) bool {
	_, ok := s[path]
	return ok
}

// Add records path.
func (s Set) Add(path string) {
	s[path] = struct{}{}
}

// Result describes one relocation pass.
type Result struct {
	Audio  []string // sanitized names of the audio files moved
	Placed []string // destination of every file moved, sidecars included
}

// Relocate moves every audio file under src (and every sidecar when
// includeSidecar is set) that is not yet in moved into dst. Files that fail to
// move are left in place and stay eligible for a later pass.
func Relocate(src, dst string, moved Set, includeSidecar bool) Result {
	var res Result
	for _, path := range candidates(src, includeSidecar) {
		if moved.Has(path) {
			continue
		}
		dest, err := place(path, dst)
		if err != nil {
			continue
		}
		moved.Add(path)
		res.Placed = append(res.Placed, dest)
		if IsAudio(path) {
			res.Audio = append(res.Audio, filepath.Base(dest))
		}
	}
	return res
}

// Finalize performs one unconditional pass from src into dst and removes src.
func Finalize(src, dst string, includeSidecar bool) Result {
	res := Relocate(src, dst, Set{}, includeSidecar)
	_ = os.RemoveAll(src)
	return res
}

// FlattenAndFinalize moves whatever remains in src into base/playlist (or
// base when playlist is empty), removes src and returns the number of audio
// files moved.
func FlattenAndFinalize(src, base, playlist string, includeSidecar bool) int {
	dst := base
	if playlist != "" {
		dst = filepath.Join(base, playlist)
	}
	return len(Finalize(src, dst, includeSidecar).Audio)
}

// MoveAll moves already placed files into dst, keeping their names unique
// there. It returns the new location of every path; a file that could not be
// moved keeps its old path.
func MoveAll(paths []string, dst string) []string {
	out := make([]string, 0, len(paths))
	for _, path := range paths {
		if filepath.Dir(path) == filepath.Clean(dst) {
			out = append(out, path)
			continue
		}
		if err := os.MkdirAll(dst, 0o755); err != nil {
			out = append(out, path)
			continue
		}
		target := rename.UniquePath(dst, filepath.Base(path))
		if err := moveFile(path, target); err != nil {
			out = append(out, path)
			continue
		}
		out = append(out, target)
	}
	return out
}

// Inventory summarizes the files sitting directly in a directory.
type Inventory struct {
	Audio    []string
	Sidecars []string
	Bytes    int64 // total size of the audio files
}

// Scan lists the audio and sidecar files directly in dir.
// A missing directory yields an empty inventory.
func Scan(dir string) Inventory {
	var inv Inventory
	entries, err := os.ReadDir(dir)
	if err != nil {
		return inv
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		switch {
		case IsAudio(path):
			inv.Audio = append(inv.Audio, path)
			if info, err := entry.Info(); err == nil {
				inv.Bytes += info.Size()
			}
		case IsSidecar(path):
			inv.Sidecars = append(inv.Sidecars, path)
		}
	}
	return inv
}

// CountAudio returns the number of audio files directly in dir.
func CountAudio(dir string) int {
	return len(Scan(dir).Audio)
}

// candidates walks src and returns the relocatable files in lexical order.
func candidates(src string, includeSidecar bool) []string {
	var files []string
	_ = filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are picked up by a later pass.
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if IsAudio(path) || (includeSidecar && IsSidecar(path)) {
			files = append(files, path)
		}
		return nil
	})
	return files
}

// place moves one file into dst under its sanitized, unique name.
func place(path, dst string) (string, error) {
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return "", fmt.Errorf("create directory: %w", err)
	}
	target := rename.UniquePath(dst, rename.Sanitize(filepath.Base(path)))
	if err := moveFile(path, target); err != nil {
		return "", err
	}
	return target, nil
}

// moveFile moves a file from src to dst.
// Uses os.Rename if possible, otherwise copies and deletes.
func moveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		// Cross-device moves cannot be renamed.
		if err := copyFile(src, dst); err != nil {
			return err
		}
		if err := os.Remove(src); err != nil {
			os.Remove(dst)
			return err
		}
		return nil
	}
	return err
}

// copyFile copies a file from src to dst, removing dst if the copy fails.
func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		os.Remove(dst)
		return err
	}

	if err := dstFile.Close(); err != nil {
		os.Remove(dst)
		return err
	}
	return nil
}
