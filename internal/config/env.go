package config

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
)

// Environ returns the KEY=VALUE pairs a suite passes to every child process:
// the env_file entries first overridden by the inline env map. A relative
// env_file is resolved against baseDir.
func (o SuiteOptions) Environ(baseDir string) ([]string, error) {
	vars := make(map[string]string)
	if o.EnvFile != "" {
		path := o.EnvFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		fileVars, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("read env file %s: %w", path, err)
		}
		for k, v := range fileVars {
			vars[k] = v
		}
	}
	for k, v := range o.Env {
		vars[k] = v
	}

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+vars[k])
	}
	return env, nil
}
