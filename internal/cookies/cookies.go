// Package cookies locates the browser cookie export used to authenticate the
// fetcher and removes it on request.
package cookies

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Find returns the *.txt files directly in dir, sorted by name.
func Find(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".txt") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// Default suggests a cookie file path: cookies.txt in dir if present, else
// the first text file in dir, else fallback.
func Default(dir, fallback string) string {
	files, err := Find(dir)
	if err != nil || len(files) == 0 {
		return fallback
	}
	for _, f := range files {
		if strings.EqualFold(filepath.Base(f), "cookies.txt") {
			return f
		}
	}
	return files[0]
}

// Validate checks that path names a regular file.
func Validate(path string) error {
	if path == "" {
		return errors.New("no cookies file given")
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a file", path)
	}
	return nil
}

// Destroy deletes the cookie file. A file that is already gone is not an error.
func Destroy(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
