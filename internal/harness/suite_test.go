package harness

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ept/internal/config"
	"ept/internal/domain"
)

func runSuite(t *testing.T, s *Suite, reporter Reporter) domain.SuiteRecord {
	t.Helper()
	reg := NewRegistry(newFakeExecutor(), reporter)
	require.NoError(t, reg.Register(s))
	rec, err := reg.Run(context.Background(), s.Name())
	require.NoError(t, err)
	return rec
}

func noop(context.Context, *Case) error { return nil }

func TestNewSuite_Validates(t *testing.T) {
	_, err := NewSuite(config.SuiteOptions{})
	assert.Error(t, err)

	opts := testOptions("bad")
	opts.PassThreshold = 120
	_, err = NewSuite(opts)
	assert.Error(t, err)
}

func TestSuite_AddCase(t *testing.T) {
	s := newTestSuite(t, testOptions("s"))
	require.NoError(t, s.AddCase(CaseDescriptor{Name: "alpha"}, noop))

	tests := []struct {
		name    string
		desc    CaseDescriptor
		wantErr error
	}{
		{name: "duplicate", desc: CaseDescriptor{Name: "alpha"}, wantErr: ErrDuplicateCase},
		{name: "reserved setup", desc: CaseDescriptor{Name: "setup"}, wantErr: ErrReservedCaseName},
		{name: "reserved teardown", desc: CaseDescriptor{Name: "teardown"}, wantErr: ErrReservedCaseName},
		{name: "empty", desc: CaseDescriptor{}, wantErr: ErrEmptyCaseName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.AddCase(tt.desc, noop)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	err := s.AddCase(CaseDescriptor{Name: "beta", PassThreshold: Threshold(101)}, noop)
	assert.Error(t, err)
	assert.Equal(t, []string{"alpha"}, s.CaseNames())
}

func TestSuite_LexicographicOrder(t *testing.T) {
	s := newTestSuite(t, testOptions("order"))
	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, s.AddCase(CaseDescriptor{Name: name}, noop))
	}
	reporter := &recordingReporter{}
	rec := runSuite(t, s, reporter)

	assert.Equal(t, []string{"suite:order", "case:alpha", "case:mid", "case:zeta", "done:order"}, reporter.events)
	var names []string
	for _, c := range rec.Cases {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, names)
}

func TestSuite_Hooks(t *testing.T) {
	t.Run("setup and teardown wrap the cases", func(t *testing.T) {
		var order []string
		s := newTestSuite(t, testOptions("hooks"))
		s.SetSetup(func(context.Context) error { order = append(order, "setup"); return nil })
		s.SetTeardown(func(context.Context) error { order = append(order, "teardown"); return nil })
		require.NoError(t, s.AddCase(CaseDescriptor{Name: "b"}, func(context.Context, *Case) error {
			order = append(order, "b")
			return errors.New("case failure")
		}))
		require.NoError(t, s.AddCase(CaseDescriptor{Name: "a"}, func(context.Context, *Case) error {
			order = append(order, "a")
			return nil
		}))

		rec := runSuite(t, s, nil)
		assert.Equal(t, []string{"setup", "a", "b", "teardown"}, order)
		assert.Equal(t, 2, rec.CasesTotal)
		assert.Equal(t, 1, rec.CasesPassed)
		assert.False(t, rec.Passed)
		assert.Empty(t, rec.Error)
	})

	t.Run("failed setup fails every case without running it", func(t *testing.T) {
		ran, tornDown := false, false
		s := newTestSuite(t, testOptions("broken"))
		s.SetSetup(func(context.Context) error { return errors.New("no fixtures") })
		s.SetTeardown(func(context.Context) error { tornDown = true; return nil })
		require.NoError(t, s.AddCase(CaseDescriptor{Name: "a"}, func(context.Context, *Case) error {
			ran = true
			return nil
		}))

		reporter := &recordingReporter{}
		rec := runSuite(t, s, reporter)
		assert.False(t, ran)
		assert.True(t, tornDown)
		assert.False(t, rec.Passed)
		assert.Equal(t, 1, rec.CasesTotal)
		assert.Equal(t, 0, rec.CasesPassed)
		assert.Contains(t, rec.Error, "setup: no fixtures")
		assert.Equal(t, "suite setup failed", rec.Cases[0].Error)
		assert.NotEmpty(t, reporter.errors)
	})

	t.Run("panicking teardown fails the suite", func(t *testing.T) {
		s := newTestSuite(t, testOptions("teardown"))
		s.SetTeardown(func(context.Context) error { panic("cleanup") })
		require.NoError(t, s.AddCase(CaseDescriptor{Name: "a"}, noop))

		rec := runSuite(t, s, nil)
		assert.Equal(t, 1, rec.CasesPassed)
		assert.False(t, rec.Passed)
		assert.Equal(t, "teardown: panic: cleanup", rec.Error)
	})
}

func TestSuite_Verdict(t *testing.T) {
	build := func(t *testing.T, threshold float64) *Suite {
		opts := testOptions("verdict")
		opts.PassThreshold = threshold
		s := newTestSuite(t, opts)
		require.NoError(t, s.AddCase(CaseDescriptor{Name: "pass"}, func(ctx context.Context, c *Case) error {
			c.CheckExit(ctx, "true", nil, 0)
			return nil
		}))
		require.NoError(t, s.AddCase(CaseDescriptor{Name: "fail"}, func(ctx context.Context, c *Case) error {
			c.CheckExit(ctx, "false", nil, 0)
			return nil
		}))
		return s
	}

	tests := []struct {
		name      string
		threshold float64
		want      bool
	}{
		{name: "below threshold", threshold: 100, want: false},
		{name: "at threshold", threshold: 50, want: true},
		{name: "zero threshold", threshold: 0, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := runSuite(t, build(t, tt.threshold), nil)
			assert.Equal(t, tt.want, rec.Passed)
			assert.InDelta(t, 50.0, rec.CasePercentage(), 0.001)
			assert.Equal(t, 2, rec.ChecksTotal)
			assert.Equal(t, 1, rec.ChecksPassed)
		})
	}
}

func TestSuite_EmptySuitePasses(t *testing.T) {
	rec := runSuite(t, newTestSuite(t, testOptions("empty")), nil)
	assert.True(t, rec.HasRun)
	assert.True(t, rec.Passed)
	assert.Equal(t, 0, rec.CasesTotal)
}

func TestSuite_TimeLimit(t *testing.T) {
	t.Run("exceeded fails a fully passing suite", func(t *testing.T) {
		opts := testOptions("slow")
		opts.TimeLimit = config.Duration(10 * time.Millisecond)
		s := newTestSuite(t, opts)
		require.NoError(t, s.AddCase(CaseDescriptor{Name: "a"}, func(context.Context, *Case) error {
			time.Sleep(40 * time.Millisecond)
			return nil
		}))

		rec := runSuite(t, s, nil)
		assert.Equal(t, 1, rec.CasesPassed)
		assert.False(t, rec.TimeLimitMet)
		assert.False(t, rec.Passed)
		assert.Equal(t, 1, rec.ChecksTotal)
		assert.Equal(t, 0, rec.ChecksPassed)
	})

	t.Run("met counts as a passed check", func(t *testing.T) {
		opts := testOptions("fast")
		opts.TimeLimit = config.Duration(time.Minute)
		s := newTestSuite(t, opts)
		require.NoError(t, s.AddCase(CaseDescriptor{Name: "a"}, noop))

		rec := runSuite(t, s, nil)
		assert.True(t, rec.TimeLimitMet)
		assert.True(t, rec.Passed)
		assert.Equal(t, 1, rec.ChecksTotal)
		assert.Equal(t, 1, rec.ChecksPassed)
	})
}

func TestSuite_CanceledContextSkipsRemainingCases(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := newTestSuite(t, testOptions("cancel"))
	require.NoError(t, s.AddCase(CaseDescriptor{Name: "a"}, func(context.Context, *Case) error {
		cancel()
		return nil
	}))
	ranB := false
	require.NoError(t, s.AddCase(CaseDescriptor{Name: "b"}, func(context.Context, *Case) error {
		ranB = true
		return nil
	}))

	reg := NewRegistry(newFakeExecutor(), nil)
	require.NoError(t, reg.Register(s))
	rec, err := reg.Run(ctx, "cancel")
	require.NoError(t, err)

	assert.False(t, ranB)
	require.Len(t, rec.Cases, 2)
	assert.True(t, rec.Cases[0].Passed)
	assert.False(t, rec.Cases[1].Passed)
	assert.Equal(t, context.Canceled.Error(), rec.Cases[1].Error)
}

func TestSuite_CommandDefaults(t *testing.T) {
	opts := testOptions("defaults")
	opts.EchoOutput = true
	opts.LogPaths = config.LogPaths{Stdout: "out.log", Stderr: "err.log"}
	opts.PollInterval = config.Duration(20 * time.Millisecond)
	opts.Dir = "/tmp"
	s := newTestSuite(t, opts)
	s.SetEnv([]string{"A=1"})

	cmd := s.command("echo", "hi")
	assert.Equal(t, "echo", cmd.Path)
	assert.Equal(t, []string{"hi"}, cmd.Args)
	assert.True(t, cmd.EchoOutput)
	assert.Equal(t, "out.log", cmd.StdoutLog)
	assert.Equal(t, "err.log", cmd.StderrLog)
	assert.Equal(t, 20*time.Millisecond, cmd.PollInterval)
	assert.Equal(t, []string{"A=1"}, cmd.Env)
	assert.Equal(t, "/tmp", cmd.Dir)
}

// Checks passed never exceed checks total at any level.
func TestSuite_CountersStayBounded(t *testing.T) {
	opts := testOptions("bounded")
	opts.TimeLimit = config.Duration(time.Minute)
	s := newTestSuite(t, opts)
	bodies := map[string][]string{
		"a": {"true", "false", "true"},
		"b": {},
		"c": {"false"},
		"d": {"true"},
	}
	for name, paths := range bodies {
		paths := paths
		require.NoError(t, s.AddCase(CaseDescriptor{Name: name, TimeLimit: time.Minute}, func(ctx context.Context, c *Case) error {
			for _, p := range paths {
				c.CheckExit(ctx, p, nil, 0)
			}
			return nil
		}))
	}

	rec := runSuite(t, s, nil)
	sumTotal, sumPassed := 0, 0
	for _, c := range rec.Cases {
		assert.GreaterOrEqual(t, c.ChecksPassed, 0)
		assert.LessOrEqual(t, c.ChecksPassed, c.ChecksTotal)
		sumTotal += c.ChecksTotal
		sumPassed += c.ChecksPassed
	}
	assert.Equal(t, sumTotal+1, rec.ChecksTotal)
	assert.Equal(t, sumPassed+1, rec.ChecksPassed)
	assert.LessOrEqual(t, rec.CasesPassed, rec.CasesTotal)
	assert.Equal(t, 4, rec.CasesTotal)
	assert.Equal(t, 2, rec.CasesPassed)
}
