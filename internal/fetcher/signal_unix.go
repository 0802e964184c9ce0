//go:build !windows

package fetcher

import "os"

func interrupt(p *os.Process) error {
	return p.Signal(os.Interrupt)
}
