package cli

import "ept/internal/config"

// Flags holds command-line flags
type Flags struct {
	SuitePath    string
	NameFilter   string
	ShowCases    bool
	Progress     bool
	NoColor      bool
	Verbose      bool
	History      bool
	HistoryLimit int
	Summary      bool
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		SuitePath:    f.SuitePath,
		NameFilter:   f.NameFilter,
		ShowCases:    f.ShowCases,
		Progress:     f.Progress,
		NoColor:      f.NoColor,
		Verbose:      f.Verbose,
		History:      f.History,
		HistoryLimit: f.HistoryLimit,
		Summary:      f.Summary,
	}
}
