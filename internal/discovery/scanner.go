package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Scanner scans for suite definition files in a directory
type Scanner struct {
	skipDirs map[string]bool
	suffixes []string
}

// NewScanner creates a new Scanner with the given directories to skip and
// the file name suffixes that mark a suite definition
func NewScanner(skipDirs []string, suffixes []string) *Scanner {
	skipMap := make(map[string]bool)
	for _, dir := range skipDirs {
		skipMap[dir] = true
	}
	return &Scanner{skipDirs: skipMap, suffixes: suffixes}
}

// Scan finds all suite files under root, sorted by path. A root that is itself
// a suite file is returned as is.
func (s *Scanner) Scan(root string) ([]string, error) {
	var suiteFiles []string

	// Clean and validate the root path
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("suite path does not exist: %s", root)
	}
	if !info.IsDir() {
		if s.isSuiteFile(root) {
			return []string{root}, nil
		}
		return nil, fmt.Errorf("suite path is not a directory or suite file: %s", root)
	}

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			name := d.Name()
			// Skip hidden directories (starting with .)
			if strings.HasPrefix(name, ".") && name != "." && name != ".." {
				return filepath.SkipDir
			}

			if s.skipDirs[name] {
				return filepath.SkipDir
			}

			return nil
		}

		if s.isSuiteFile(d.Name()) {
			suiteFiles = append(suiteFiles, path)
		}

		return nil
	})

	sort.Strings(suiteFiles)
	return suiteFiles, err
}

func (s *Scanner) isSuiteFile(name string) bool {
	for _, suffix := range s.suffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}
