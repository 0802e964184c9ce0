// Package rename turns the file and folder names produced by the fetcher into
// the names used in the flattened library layout.
package rename

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// reOrderPrefix matches a leading run of ordering prefixes such as
	// "01 ", "1-05 " or "12-".
	reOrderPrefix = regexp.MustCompile(`^(?:\d+[- ])+`)
	// reIllegalFolderChars matches characters not allowed in folder names,
	// with surrounding whitespace.
	reIllegalFolderChars = regexp.MustCompile(`\s*[/\\><*:|?"]+\s*`)
	reEndPeriod          = regexp.MustCompile(`\.+$`)
	reMultiSpace         = regexp.MustCompile(`\s+`)
)

// Sanitize strips leading disc and track ordering prefixes from a file name.
// A name made only of prefixes is returned unchanged.
func Sanitize(name string) string {
	clean := reOrderPrefix.ReplaceAllString(name, "")
	if clean == "" {
		return name
	}
	return clean
}

// UniquePath returns dir/name, or dir/stem_<n>.ext with the smallest n >= 1
// that does not exist yet.
func UniquePath(dir, name string) string {
	target := filepath.Join(dir, name)
	if !exists(target) {
		return target
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := 1; ; n++ {
		target = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, n, ext))
		if !exists(target) {
			return target
		}
	}
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// FolderName makes a playlist or album name safe to use as a single
// directory component.
func FolderName(name string) string {
	s := reIllegalFolderChars.ReplaceAllString(name, " - ")
	s = reMultiSpace.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	s = reEndPeriod.ReplaceAllString(s, "")
	s = strings.Trim(s, " -")
	return s
}

// TitleCase capitalizes the first letter of each word ("my mix" -> "My Mix").
func TitleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		r, size := utf8.DecodeRuneInString(word)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(word[size:])
	}
	return strings.Join(words, " ")
}
