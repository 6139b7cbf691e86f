package config

import "time"

const (
	// DefaultProjectPath is the default project path
	DefaultProjectPath = "."
	// DefaultSuitePath is the default folder where suite discovery starts
	DefaultSuitePath = "."
	// DefaultOutputJSONFile is the default output JSON file name
	DefaultOutputJSONFile = "ept-results.json"
	// DefaultOutputJSONDir is the default output directory
	DefaultOutputJSONDir = "storage"
	// DefaultLogFile receives child output and framework output unless a suite overrides it
	DefaultLogFile = "run.log"
	// DefaultPassThreshold is the percentage of passed sub-units a case or suite needs
	DefaultPassThreshold = 100.0
	// DefaultPollInterval is how often a running child is checked for its deadline
	DefaultPollInterval = 100 * time.Millisecond
	// DefaultHistoryTable is the MySQL table holding recorded runs
	DefaultHistoryTable = "ept_runs"
	// DefaultHistoryLimit is how many history rows the history command prints
	DefaultHistoryLimit = 20
)

// SuiteFileSuffixes are the file name endings of suite definition files
var SuiteFileSuffixes = []string{".suite.yaml", ".suite.yml"}

// DefaultPathsToIgnore are the default directories to ignore when scanning for suites
var DefaultPathsToIgnore = []string{
	"vendor",
	"node_modules",
	"storage",
	"testdata",
}
