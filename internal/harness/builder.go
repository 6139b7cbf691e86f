package harness

import (
	"context"
	"fmt"
	"path/filepath"

	"ept/internal/config"
)

// BuildSuite turns a decoded suite definition into a runnable suite. Relative
// env_file, dir and log paths are resolved against baseDir, normally the
// directory holding the definition file.
func BuildSuite(def *config.SuiteDefinition, baseDir string) (*Suite, error) {
	opts := def.SuiteOptions
	opts.Dir = resolvePath(baseDir, opts.Dir)
	opts.LogPaths.Stdout = resolvePath(baseDir, opts.LogPaths.Stdout)
	opts.LogPaths.Stderr = resolvePath(baseDir, opts.LogPaths.Stderr)

	s, err := NewSuite(opts)
	if err != nil {
		return nil, err
	}

	env, err := opts.Environ(baseDir)
	if err != nil {
		return nil, fmt.Errorf("suite %s: %w", opts.Name, err)
	}
	s.SetEnv(env)

	if len(def.Setup) > 0 {
		s.SetSetup(commandHook(s, def.Setup))
	}
	if len(def.Teardown) > 0 {
		s.SetTeardown(commandHook(s, def.Teardown))
	}

	for _, cd := range def.Cases {
		desc := CaseDescriptor{
			Name:          cd.Name,
			Description:   cd.Description,
			PassThreshold: cd.PassThreshold,
			SkipSetup:     cd.SkipSetup,
			SkipTeardown:  cd.SkipTeardown,
		}
		if cd.TimeLimit != nil {
			desc.TimeLimit = cd.TimeLimit.Std()
			if desc.TimeLimit == 0 {
				desc.TimeLimit = NoTimeLimit
			}
		}
		if cd.Fixture != nil {
			desc.Fixture = &Fixture{}
			if len(cd.Fixture.Setup) > 0 {
				desc.Fixture.Setup = commandHook(s, cd.Fixture.Setup)
			}
			if len(cd.Fixture.Teardown) > 0 {
				desc.Fixture.Teardown = commandHook(s, cd.Fixture.Teardown)
			}
		}
		if err := s.AddCase(desc, checksBody(cd.Checks, baseDir)); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// LoadSuite reads a suite definition file and builds it.
func LoadSuite(path string) (*Suite, error) {
	def, err := config.LoadSuiteDefinition(path)
	if err != nil {
		return nil, err
	}
	return BuildSuite(def, filepath.Dir(path))
}

// commandHook runs the commands in order and stops at the first failure.
func commandHook(s *Suite, cmds []config.CommandDefinition) HookFunc {
	return func(ctx context.Context) error {
		for _, cd := range cmds {
			cmd := s.command(cd.Command, cd.Args...)
			cmd.Timeout = cd.Timeout.Std()
			if err := s.RunCommand(ctx, cmd); err != nil {
				return err
			}
		}
		return nil
	}
}

func checksBody(checks []config.CheckDefinition, baseDir string) CaseFunc {
	return func(ctx context.Context, c *Case) error {
		for _, chk := range checks {
			cmd := c.Command(chk.Command, chk.Args...)
			cmd.Timeout = chk.Timeout.Std()
			if chk.PollInterval > 0 {
				cmd.PollInterval = chk.PollInterval.Std()
			}
			if chk.EchoOutput != nil {
				cmd.EchoOutput = *chk.EchoOutput
			}
			if chk.StdoutLog != "" {
				cmd.StdoutLog = resolvePath(baseDir, chk.StdoutLog)
			}
			if chk.StderrLog != "" {
				cmd.StderrLog = resolvePath(baseDir, chk.StderrLog)
			}
			c.Check(ctx, cmd, chk.Expect)
		}
		return nil
	}
}

// resolvePath joins a relative p onto baseDir. Empty and absolute paths are kept.
func resolvePath(baseDir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}
