//go:build windows

package execution

import "os"

// terminate stops the child. Windows has no SIGTERM, so this is TerminateProcess.
func terminate(p *os.Process) error {
	return p.Kill()
}
