package commands

import (
	"ept/internal/config"
	"ept/internal/discovery"
	"ept/internal/domain"
)

// suiteFinder discovers suite files and narrows them by the name filter
type suiteFinder struct {
	config  *config.Config
	scanner *discovery.Scanner
	filter  *discovery.Filter
	parser  *discovery.Parser
}

func (sf *suiteFinder) find() ([]domain.SuiteFile, error) {
	paths, err := sf.scanner.Scan(sf.config.GetSuitePath())
	if err != nil {
		return nil, err
	}
	suites, err := sf.parser.FindSuites(paths)
	if err != nil {
		return nil, err
	}
	return sf.filter.FilterByName(suites, sf.config.Flags.NameFilter), nil
}
