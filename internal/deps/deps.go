// Package deps checks that the external programs the downloader relies on
// are installed.
package deps

import (
	"errors"
	"fmt"
	"os/exec"
)

// ErrMissing is returned by Require when a dependency is not installed.
var ErrMissing = errors.New("missing dependency")

// lookPath is replaced in tests.
var lookPath = exec.LookPath

// Dependency is an external program.
type Dependency struct {
	Name   string // display name
	Binary string // executable looked up on PATH
	Hint   string // how to install it
}

// Status is the result of checking one dependency.
type Status struct {
	Dependency
	Path  string
	Found bool
}

// Check looks up every dependency on PATH.
func Check(list []Dependency) []Status {
	out := make([]Status, 0, len(list))
	for _, d := range list {
		path, err := lookPath(d.Binary)
		out = append(out, Status{Dependency: d, Path: path, Found: err == nil})
	}
	return out
}

// Require returns an error wrapping ErrMissing for every dependency that is
// not installed.
func Require(list []Dependency) error {
	var errs []error
	for _, s := range Check(list) {
		if !s.Found {
			errs = append(errs, fmt.Errorf("%w: %s (%s not found on PATH)", ErrMissing, s.Name, s.Binary))
		}
	}
	return errors.Join(errs...)
}
