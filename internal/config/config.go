package config

import (
	"net"
	"os"
	"path/filepath"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Project settings
	ProjectPath string
	SuitePath   string

	// Output settings
	OutputJSONFile string
	OutputJSONDir  string

	// History settings
	HistoryTable string

	// Paths to ignore when scanning
	PathsToIgnore []string

	// Command flags
	Flags Flags
}

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

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		ProjectPath:    DefaultProjectPath,
		SuitePath:      DefaultSuitePath,
		OutputJSONFile: DefaultOutputJSONFile,
		OutputJSONDir:  DefaultOutputJSONDir,
		HistoryTable:   DefaultHistoryTable,
		Flags:          Flags{HistoryLimit: DefaultHistoryLimit},
	}
	// Copy default paths to ignore
	cfg.PathsToIgnore = make([]string, len(DefaultPathsToIgnore))
	copy(cfg.PathsToIgnore, DefaultPathsToIgnore)
	return cfg
}

// Load creates a config and applies flags
func Load(flags Flags) *Config {
	cfg := New()
	cfg.Flags = flags
	if cfg.Flags.HistoryLimit <= 0 {
		cfg.Flags.HistoryLimit = DefaultHistoryLimit
	}
	return cfg
}

// GetSuitePath returns the suite discovery root, using the flag if provided
func (c *Config) GetSuitePath() string {
	if c.Flags.SuitePath != "" {
		// Relative flag values are resolved against the project path
		if filepath.IsAbs(c.Flags.SuitePath) {
			return c.Flags.SuitePath
		}
		return filepath.Join(c.ProjectPath, c.Flags.SuitePath)
	}

	return filepath.Join(c.ProjectPath, c.SuitePath)
}

// GetOutputPath returns the absolute path of the JSON report, so run and failures
// always read/write the same file regardless of cwd.
func (c *Config) GetOutputPath() string {
	p := filepath.Join(c.ProjectPath, c.OutputJSONDir, c.OutputJSONFile)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// DatabaseSettings holds the connection settings of the run history database
type DatabaseSettings struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// MySQLConfig returns the driver configuration for these settings.
func (d DatabaseSettings) MySQLConfig() *mysql.Config {
	cfg := mysql.NewConfig()
	cfg.User = d.User
	cfg.Passwd = d.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(d.Host, d.Port)
	cfg.DBName = d.Name
	cfg.ParseTime = true
	return cfg
}

// GetDatabaseSettings reads the history database settings from the environment,
// after loading the project's .env file if there is one.
func (c *Config) GetDatabaseSettings() DatabaseSettings {
	// A missing .env is fine; plain environment variables still apply
	_ = godotenv.Load(filepath.Join(c.ProjectPath, ".env"))

	return DatabaseSettings{
		Host:     getenv("EPT_DB_HOST", "127.0.0.1"),
		Port:     getenv("EPT_DB_PORT", "3306"),
		User:     getenv("EPT_DB_USERNAME", "root"),
		Password: os.Getenv("EPT_DB_PASSWORD"),
		Name:     getenv("EPT_DB_DATABASE", "ept"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
