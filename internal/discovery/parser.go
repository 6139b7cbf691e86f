package discovery

import (
	"fmt"
	"sort"

	"ept/internal/config"
	"ept/internal/domain"
)

// Parser parses suite definition files
type Parser struct{}

// NewParser creates a new Parser
func NewParser() *Parser {
	return &Parser{}
}

// Parse loads the full suite definition from a file
func (p *Parser) Parse(filePath string) (*config.SuiteDefinition, error) {
	def, err := config.LoadSuiteDefinition(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading suite file %s: %w", filePath, err)
	}
	return def, nil
}

// FindSuite summarizes a suite file: its name and its cases in execution order
func (p *Parser) FindSuite(filePath string) (domain.SuiteFile, error) {
	def, err := p.Parse(filePath)
	if err != nil {
		return domain.SuiteFile{}, err
	}

	cases := make([]string, 0, len(def.Cases))
	for _, c := range def.Cases {
		cases = append(cases, c.Name)
	}
	// Cases run in lexicographic order, not file order
	sort.Strings(cases)

	return domain.SuiteFile{
		Path:  filePath,
		Name:  def.Name,
		Cases: cases,
	}, nil
}

// FindSuites summarizes every given file, stopping at the first unreadable one
func (p *Parser) FindSuites(filePaths []string) ([]domain.SuiteFile, error) {
	suites := make([]domain.SuiteFile, 0, len(filePaths))
	for _, path := range filePaths {
		suite, err := p.FindSuite(path)
		if err != nil {
			return nil, err
		}
		suites = append(suites, suite)
	}
	return suites, nil
}
