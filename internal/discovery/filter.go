package discovery

import (
	"path/filepath"
	"strings"

	"ept/internal/domain"
)

// Filter filters suites by name pattern
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// FilterByName keeps the suites whose name matches pattern.
// Supports patterns like "Bash*" or "*Http*"; a pattern without wildcards is a substring match.
func (f *Filter) FilterByName(suites []domain.SuiteFile, pattern string) []domain.SuiteFile {
	if pattern == "" {
		return suites
	}

	var filtered []domain.SuiteFile
	for _, suite := range suites {
		if MatchName(suite.Name, pattern) {
			filtered = append(filtered, suite)
		}
	}
	return filtered
}

// MatchName reports whether name matches the wildcard pattern.
func MatchName(name, pattern string) bool {
	if pattern == "" {
		return true
	}

	// Try to match using filepath.Match (supports * and ? wildcards)
	matched, err := filepath.Match(pattern, name)
	if err == nil && matched {
		return true
	}

	// filepath.Match is anchored; fall back to matching every literal part in order
	if strings.Contains(pattern, "*") {
		rest := name
		hasNonEmptyPart := false
		for _, part := range strings.Split(pattern, "*") {
			if part == "" {
				continue
			}
			hasNonEmptyPart = true
			idx := strings.Index(rest, part)
			if idx < 0 {
				return false
			}
			rest = rest[idx+len(part):]
		}
		return hasNonEmptyPart
	}

	// If no wildcards, do a simple contains check
	if !strings.Contains(pattern, "?") {
		return strings.Contains(name, pattern)
	}
	return false
}
