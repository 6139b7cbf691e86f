package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// SuiteOptions is the closed set of suite construction options. Keys not listed
// here are rejected when decoding.
type SuiteOptions struct {
	Name               string            `yaml:"suite_name"`
	Description        string            `yaml:"suite_description,omitempty"`
	PassThreshold      float64           `yaml:"pass_threshold"`
	CasePassThreshold  float64           `yaml:"case_pass_threshold"`
	TimeLimit          Duration          `yaml:"time_limit,omitempty"`
	CaseTimeLimit      Duration          `yaml:"case_time_limit,omitempty"`
	LogPaths           LogPaths          `yaml:"log_paths"`
	EchoOutput         bool              `yaml:"echo_output"`
	TruncateLogs       bool              `yaml:"truncate_logs"`
	LogFrameworkOutput bool              `yaml:"log_framework_output"`
	PollInterval       Duration          `yaml:"poll_interval,omitempty"`
	EnvFile            string            `yaml:"env_file,omitempty"`
	Env                map[string]string `yaml:"env,omitempty"`
	Dir                string            `yaml:"dir,omitempty"`
}

// LogPaths are the files child output is appended to. Equal paths merge both streams.
type LogPaths struct {
	Stdout string `yaml:"stdout"`
	Stderr string `yaml:"stderr"`
}

// DefaultSuiteOptions returns the options every suite starts from.
func DefaultSuiteOptions() SuiteOptions {
	return SuiteOptions{
		PassThreshold:     DefaultPassThreshold,
		CasePassThreshold: DefaultPassThreshold,
		LogPaths:          LogPaths{Stdout: DefaultLogFile, Stderr: DefaultLogFile},
		EchoOutput:        true,
		TruncateLogs:      true,
		PollInterval:      Duration(DefaultPollInterval),
	}
}

// Validate checks option values that decoding alone cannot enforce.
func (o SuiteOptions) Validate() error {
	if o.Name == "" {
		return errors.New("suite_name is required")
	}
	if err := checkThreshold("pass_threshold", o.PassThreshold); err != nil {
		return err
	}
	return checkThreshold("case_pass_threshold", o.CasePassThreshold)
}

func checkThreshold(field string, v float64) error {
	if v < 0 || v > 100 {
		return fmt.Errorf("%s must be between 0 and 100, got %g", field, v)
	}
	return nil
}

// DecodeSuiteOptions applies an open-ended argument map onto the default options.
// Unknown keys and values of the wrong type are errors.
func DecodeSuiteOptions(args map[string]any) (SuiteOptions, error) {
	opts := DefaultSuiteOptions()
	data, err := yaml.Marshal(args)
	if err != nil {
		return opts, fmt.Errorf("encode suite options: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
		return opts, fmt.Errorf("decode suite options: %w", err)
	}
	return opts, nil
}

// SuiteDefinition is the content of a suite definition file
type SuiteDefinition struct {
	SuiteOptions `yaml:",inline"`

	Setup    []CommandDefinition `yaml:"setup,omitempty"`
	Teardown []CommandDefinition `yaml:"teardown,omitempty"`
	Cases    []CaseDefinition    `yaml:"cases"`
}

// CaseDefinition describes one test case and its checks
type CaseDefinition struct {
	Name          string             `yaml:"name"`
	Description   string             `yaml:"description,omitempty"`
	TimeLimit     *Duration          `yaml:"time_limit,omitempty"`
	PassThreshold *float64           `yaml:"pass_threshold,omitempty"`
	SkipSetup     bool               `yaml:"skip_setup,omitempty"`
	SkipTeardown  bool               `yaml:"skip_teardown,omitempty"`
	Fixture       *FixtureDefinition `yaml:"fixture,omitempty"`
	Checks        []CheckDefinition  `yaml:"checks"`
}

// FixtureDefinition lists the commands run around a case body
type FixtureDefinition struct {
	Setup    []CommandDefinition `yaml:"setup,omitempty"`
	Teardown []CommandDefinition `yaml:"teardown,omitempty"`
}

// CommandDefinition is a hook command; it must exit with code 0
type CommandDefinition struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args,omitempty"`
	Timeout Duration `yaml:"timeout,omitempty"`
}

// CheckDefinition is one exit-code assertion
type CheckDefinition struct {
	Command      string   `yaml:"command"`
	Args         []string `yaml:"args,omitempty"`
	Expect       int      `yaml:"expect"`
	Timeout      Duration `yaml:"timeout,omitempty"`
	PollInterval Duration `yaml:"poll_interval,omitempty"`
	EchoOutput   *bool    `yaml:"echo_output,omitempty"`
	StdoutLog    string   `yaml:"stdout_log,omitempty"`
	StderrLog    string   `yaml:"stderr_log,omitempty"`
}

// LoadSuiteDefinition reads and validates a suite definition file.
func LoadSuiteDefinition(path string) (*SuiteDefinition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open suite file: %w", err)
	}
	defer f.Close()

	def, err := DecodeSuiteDefinition(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// DecodeSuiteDefinition decodes a suite definition on top of the default options.
func DecodeSuiteDefinition(r io.Reader) (*SuiteDefinition, error) {
	def := &SuiteDefinition{SuiteOptions: DefaultSuiteOptions()}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(def); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty suite definition")
		}
		return nil, err
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	for i, c := range def.Cases {
		if c.Name == "" {
			return nil, fmt.Errorf("case %d: name is required", i+1)
		}
		if c.PassThreshold != nil {
			if err := checkThreshold("case "+c.Name+" pass_threshold", *c.PassThreshold); err != nil {
				return nil, err
			}
		}
		for j, chk := range c.Checks {
			if chk.Command == "" {
				return nil, fmt.Errorf("case %s: check %d: command is required", c.Name, j+1)
			}
		}
	}
	return def, nil
}
