//go:build windows

package fetcher

import "os"

// Windows cannot deliver an interrupt to a child process.
func interrupt(p *os.Process) error {
	return p.Kill()
}
