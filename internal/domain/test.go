package domain

// SuiteFile represents a discovered suite definition file
type SuiteFile struct {
	Path  string   // Full path to the definition file
	Name  string   // Suite name declared in the file
	Cases []string // Case names in execution order
}
