package harness

import (
	"fmt"
	"os"
	"path/filepath"
)

// LogFiles truncates each distinct log path once per run, the first time it is
// used, so later suites append to what earlier suites wrote.
type LogFiles struct {
	seen map[string]bool
}

// NewLogFiles creates an empty tracker.
func NewLogFiles() *LogFiles {
	return &LogFiles{seen: make(map[string]bool)}
}

// Prepare truncates every path not yet used in this run. Empty paths are ignored.
func (l *LogFiles) Prepare(paths ...string) error {
	for _, p := range paths {
		if p == "" {
			continue
		}
		key := filepath.Clean(p)
		if l.seen[key] {
			continue
		}
		l.seen[key] = true
		f, err := os.OpenFile(p, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("truncate log file: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("truncate log file: %w", err)
		}
	}
	return nil
}

// Reset starts a new run.
func (l *LogFiles) Reset() {
	l.seen = make(map[string]bool)
}
