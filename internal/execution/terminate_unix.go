//go:build !windows

package execution

import (
	"os"

	"golang.org/x/sys/unix"
)

// terminate asks the child to exit. There is no forced kill afterwards.
func terminate(p *os.Process) error {
	return p.Signal(unix.SIGTERM)
}
