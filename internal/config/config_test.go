package config

import (
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-sql-driver/mysql"
)

func TestConfig_GetSuitePath(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected string
	}{
		{
			name: "default path",
			config: &Config{
				ProjectPath: ".",
				SuitePath:   ".",
				Flags:       Flags{},
			},
			expected: ".",
		},
		{
			name: "with suite path flag",
			config: &Config{
				ProjectPath: "/project",
				SuitePath:   ".",
				Flags: Flags{
					SuitePath: "suites",
				},
			},
			expected: "/project/suites",
		},
		{
			name: "absolute suite path",
			config: &Config{
				ProjectPath: "/project",
				SuitePath:   ".",
				Flags: Flags{
					SuitePath: "/absolute/path",
				},
			},
			expected: "/absolute/path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.config.GetSuitePath()
			if result != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, result)
			}
		})
	}
}

func TestConfig_GetDatabaseSettings(t *testing.T) {
	dir := t.TempDir()
	cfg := New()
	cfg.ProjectPath = dir

	t.Run("defaults without env", func(t *testing.T) {
		for _, key := range []string{"EPT_DB_HOST", "EPT_DB_PORT", "EPT_DB_USERNAME", "EPT_DB_PASSWORD", "EPT_DB_DATABASE"} {
			t.Setenv(key, "")
		}
		settings := cfg.GetDatabaseSettings()
		mc := settings.MySQLConfig()
		if mc.User != "root" || mc.Passwd != "" || mc.Addr != "127.0.0.1:3306" || mc.DBName != "ept" {
			t.Errorf("unexpected defaults: %+v", settings)
		}
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("EPT_DB_HOST", "db.internal")
		t.Setenv("EPT_DB_PORT", "3307")
		t.Setenv("EPT_DB_USERNAME", "ci")
		t.Setenv("EPT_DB_PASSWORD", "secret")
		t.Setenv("EPT_DB_DATABASE", "results")
		settings := cfg.GetDatabaseSettings()
		mc := settings.MySQLConfig()
		if mc.User != "ci" || mc.Passwd != "secret" || mc.Addr != "db.internal:3307" || mc.DBName != "results" {
			t.Errorf("unexpected overrides: %+v", settings)
		}
	})

	t.Run("dotenv file fills unset variables", func(t *testing.T) {
		t.Setenv("EPT_DB_HOST", "")
		os.Unsetenv("EPT_DB_HOST")
		if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("EPT_DB_HOST=from-dotenv\n"), 0644); err != nil {
			t.Fatalf("failed to write .env: %v", err)
		}
		settings := cfg.GetDatabaseSettings()
		if settings.Host != "from-dotenv" {
			t.Errorf("expected host from .env, got %s", settings.Host)
		}
	})
}

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.ProjectPath != DefaultProjectPath {
		t.Errorf("expected ProjectPath %s, got %s", DefaultProjectPath, cfg.ProjectPath)
	}

	if cfg.HistoryTable != DefaultHistoryTable {
		t.Errorf("expected HistoryTable %s, got %s", DefaultHistoryTable, cfg.HistoryTable)
	}

	if len(cfg.PathsToIgnore) != len(DefaultPathsToIgnore) {
		t.Errorf("expected %d paths to ignore, got %d", len(DefaultPathsToIgnore), len(cfg.PathsToIgnore))
	}
}

func TestLoad(t *testing.T) {
	cfg := Load(Flags{NameFilter: "*bash*"})
	if cfg.Flags.NameFilter != "*bash*" {
		t.Errorf("expected name filter to be kept, got %q", cfg.Flags.NameFilter)
	}
	if cfg.Flags.HistoryLimit != DefaultHistoryLimit {
		t.Errorf("expected history limit %d, got %d", DefaultHistoryLimit, cfg.Flags.HistoryLimit)
	}
}

func TestDatabaseSettings_MySQLConfig(t *testing.T) {
	tests := []struct {
		name     string
		settings DatabaseSettings
	}{
		{name: "plain", settings: DatabaseSettings{Host: "db", Port: "3306", User: "ci", Password: "secret", Name: "ept"}},
		{name: "password with separators", settings: DatabaseSettings{Host: "db", Port: "3306", User: "ci", Password: "p@ss:w/rd?x", Name: "ept"}},
		{name: "empty password", settings: DatabaseSettings{Host: "127.0.0.1", Port: "3307", User: "root", Name: "results"}},
		{name: "ipv6 host", settings: DatabaseSettings{Host: "::1", Port: "3306", User: "root", Password: "pw", Name: "ept"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsn := tt.settings.MySQLConfig().FormatDSN()
			parsed, err := mysql.ParseDSN(dsn)
			if err != nil {
				t.Fatalf("DSN %q does not parse: %v", dsn, err)
			}
			if parsed.User != tt.settings.User {
				t.Errorf("expected user %q, got %q", tt.settings.User, parsed.User)
			}
			if parsed.Passwd != tt.settings.Password {
				t.Errorf("expected password %q, got %q", tt.settings.Password, parsed.Passwd)
			}
			if parsed.DBName != tt.settings.Name {
				t.Errorf("expected database %q, got %q", tt.settings.Name, parsed.DBName)
			}
			if parsed.Addr != net.JoinHostPort(tt.settings.Host, tt.settings.Port) {
				t.Errorf("expected address of %s:%s, got %s", tt.settings.Host, tt.settings.Port, parsed.Addr)
			}
			if parsed.Net != "tcp" {
				t.Errorf("expected tcp, got %s", parsed.Net)
			}
			if !parsed.ParseTime {
				t.Error("expected parseTime to be set")
			}
		})
	}
}
