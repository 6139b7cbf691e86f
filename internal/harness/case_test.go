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
	"ept/internal/execution"
)

func runSingleCase(t *testing.T, exec execution.Executor, desc CaseDescriptor, fn CaseFunc) domain.CaseResult {
	t.Helper()
	s := newTestSuite(t, testOptions("single"))
	require.NoError(t, s.AddCase(desc, fn))
	reg := NewRegistry(exec, nil)
	require.NoError(t, reg.Register(s))
	rec, err := reg.Run(context.Background(), "single")
	require.NoError(t, err)
	require.Len(t, rec.Cases, 1)
	return rec.Cases[0]
}

func TestCase_CheckCounters(t *testing.T) {
	tests := []struct {
		name        string
		paths       []string
		threshold   *float64
		wantTotal   int
		wantPassed  int
		wantPercent float64
		wantVerdict bool
	}{
		{name: "all pass", paths: []string{"true", "true"}, wantTotal: 2, wantPassed: 2, wantPercent: 100, wantVerdict: true},
		{name: "half pass default threshold", paths: []string{"true", "false"}, wantTotal: 2, wantPassed: 1, wantPercent: 50, wantVerdict: false},
		{name: "half pass at 50 threshold", paths: []string{"true", "false"}, threshold: Threshold(50), wantTotal: 2, wantPassed: 1, wantPercent: 50, wantVerdict: true},
		{name: "no checks always passes", paths: nil, wantTotal: 0, wantPassed: 0, wantPercent: 100, wantVerdict: true},
		{name: "no checks ignores threshold", paths: nil, threshold: Threshold(100), wantTotal: 0, wantPassed: 0, wantPercent: 100, wantVerdict: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runSingleCase(t, newFakeExecutor(), CaseDescriptor{Name: "c", PassThreshold: tt.threshold},
				func(ctx context.Context, c *Case) error {
					for _, p := range tt.paths {
						c.CheckExit(ctx, p, nil, 0)
					}
					return nil
				})

			assert.Equal(t, tt.wantTotal, res.ChecksTotal)
			assert.Equal(t, tt.wantPassed, res.ChecksPassed)
			assert.InDelta(t, tt.wantPercent, res.Percentage(), 0.001)
			assert.Equal(t, tt.wantVerdict, res.Passed)
		})
	}
}

func TestCase_CheckReturnsVerdict(t *testing.T) {
	var got []bool
	runSingleCase(t, newFakeExecutor(), CaseDescriptor{Name: "c"}, func(ctx context.Context, c *Case) error {
		got = append(got, c.CheckExit(ctx, "true", nil, 0))
		got = append(got, c.CheckExit(ctx, "false", nil, 0))
		got = append(got, c.CheckExit(ctx, "false", nil, 1))
		return nil
	})
	assert.Equal(t, []bool{true, false, true}, got)
}

func TestCase_RunnerFailureIsAFailedCheck(t *testing.T) {
	exec := newFakeExecutor()
	exec.errs["missing"] = &execution.SpawnError{Path: "missing", Err: errors.New("not found")}
	exec.errs["slow"] = &execution.TimeoutError{Timeout: time.Second}

	res := runSingleCase(t, exec, CaseDescriptor{Name: "c"}, func(ctx context.Context, c *Case) error {
		c.CheckExit(ctx, "missing", nil, 0)
		c.CheckExit(ctx, "slow", nil, 0)
		c.CheckExit(ctx, "true", nil, 0)
		return nil
	})

	assert.Equal(t, 3, res.ChecksTotal)
	assert.Equal(t, 1, res.ChecksPassed)
	assert.Empty(t, res.Error)
	require.Len(t, res.Checks, 3)
	assert.Contains(t, res.Checks[0].Error, "[SpawnError]")
	assert.Equal(t, execution.ExitNotStarted, res.Checks[0].ExitCode)
	assert.Contains(t, res.Checks[1].Error, "[TimeoutError]")
	assert.Equal(t, []string{"missing", "slow", "true"}, exec.Calls())
}

func TestCase_BodyErrorFailsCase(t *testing.T) {
	t.Run("returned error", func(t *testing.T) {
		res := runSingleCase(t, newFakeExecutor(), CaseDescriptor{Name: "c"}, func(ctx context.Context, c *Case) error {
			c.CheckExit(ctx, "true", nil, 0)
			return errors.New("boom")
		})
		assert.False(t, res.Passed)
		assert.Equal(t, "boom", res.Error)
		assert.Equal(t, 1, res.ChecksPassed)
	})

	t.Run("panic", func(t *testing.T) {
		res := runSingleCase(t, newFakeExecutor(), CaseDescriptor{Name: "c"}, func(ctx context.Context, c *Case) error {
			panic("unexpected")
		})
		assert.False(t, res.Passed)
		assert.Equal(t, "panic: unexpected", res.Error)
	})
}

func TestCase_TimeLimit(t *testing.T) {
	t.Run("exceeded adds a failed check", func(t *testing.T) {
		res := runSingleCase(t, newFakeExecutor(), CaseDescriptor{Name: "c", TimeLimit: 10 * time.Millisecond},
			func(ctx context.Context, c *Case) error {
				c.CheckExit(ctx, "true", nil, 0)
				time.Sleep(50 * time.Millisecond)
				return nil
			})
		assert.Equal(t, 2, res.ChecksTotal)
		assert.Equal(t, 1, res.ChecksPassed)
		assert.False(t, res.Passed)
		require.Len(t, res.Checks, 2)
		assert.True(t, res.Checks[1].TimeLimit)
		assert.False(t, res.Checks[1].Passed)
	})

	t.Run("met adds a passed check", func(t *testing.T) {
		res := runSingleCase(t, newFakeExecutor(), CaseDescriptor{Name: "c", TimeLimit: time.Minute},
			func(ctx context.Context, c *Case) error {
				c.CheckExit(ctx, "true", nil, 0)
				return nil
			})
		assert.Equal(t, 2, res.ChecksTotal)
		assert.Equal(t, 2, res.ChecksPassed)
		assert.True(t, res.Passed)
	})

	t.Run("inherits suite default", func(t *testing.T) {
		opts := testOptions("limits")
		opts.CaseTimeLimit = config.Duration(5 * time.Millisecond)
		s := newTestSuite(t, opts)
		require.NoError(t, s.AddCase(CaseDescriptor{Name: "inherit"}, func(ctx context.Context, c *Case) error {
			time.Sleep(30 * time.Millisecond)
			return nil
		}))
		require.NoError(t, s.AddCase(CaseDescriptor{Name: "override", TimeLimit: NoTimeLimit}, func(ctx context.Context, c *Case) error {
			time.Sleep(30 * time.Millisecond)
			return nil
		}))
		reg := NewRegistry(newFakeExecutor(), nil)
		require.NoError(t, reg.Register(s))
		rec, err := reg.Run(context.Background(), "limits")
		require.NoError(t, err)

		require.Len(t, rec.Cases, 2)
		assert.Equal(t, "inherit", rec.Cases[0].Name)
		assert.Equal(t, 1, rec.Cases[0].ChecksTotal)
		assert.False(t, rec.Cases[0].Passed)
		assert.Equal(t, 0, rec.Cases[1].ChecksTotal)
		assert.True(t, rec.Cases[1].Passed)
	})
}

func TestCase_Fixture(t *testing.T) {
	t.Run("runs around the body", func(t *testing.T) {
		var order []string
		fixture := &Fixture{
			Setup:    func(context.Context) error { order = append(order, "setup"); return nil },
			Teardown: func(context.Context) error { order = append(order, "teardown"); return nil },
		}
		res := runSingleCase(t, newFakeExecutor(), CaseDescriptor{Name: "c", Fixture: fixture},
			func(context.Context, *Case) error { order = append(order, "body"); return nil })
		assert.True(t, res.Passed)
		assert.Equal(t, []string{"setup", "body", "teardown"}, order)
	})

	t.Run("skip flags", func(t *testing.T) {
		var order []string
		fixture := &Fixture{
			Setup:    func(context.Context) error { order = append(order, "setup"); return nil },
			Teardown: func(context.Context) error { order = append(order, "teardown"); return nil },
		}
		runSingleCase(t, newFakeExecutor(), CaseDescriptor{Name: "c", Fixture: fixture, SkipSetup: true, SkipTeardown: true},
			func(context.Context, *Case) error { order = append(order, "body"); return nil })
		assert.Equal(t, []string{"body"}, order)
	})

	t.Run("failed setup skips body but not teardown", func(t *testing.T) {
		var order []string
		fixture := &Fixture{
			Setup:    func(context.Context) error { return errors.New("no database") },
			Teardown: func(context.Context) error { order = append(order, "teardown"); return nil },
		}
		res := runSingleCase(t, newFakeExecutor(), CaseDescriptor{Name: "c", Fixture: fixture},
			func(context.Context, *Case) error { order = append(order, "body"); return nil })
		assert.False(t, res.Passed)
		assert.Equal(t, "setup: no database", res.Error)
		assert.Equal(t, []string{"teardown"}, order)
	})

	t.Run("teardown runs after body failure", func(t *testing.T) {
		tornDown := false
		fixture := &Fixture{
			Teardown: func(context.Context) error { tornDown = true; return nil },
		}
		res := runSingleCase(t, newFakeExecutor(), CaseDescriptor{Name: "c", Fixture: fixture},
			func(context.Context, *Case) error { panic("body") })
		assert.False(t, res.Passed)
		assert.True(t, tornDown)
	})
}

func TestCase_StateIsFreshPerExecution(t *testing.T) {
	s := newTestSuite(t, testOptions("fresh"))
	var seen []int
	require.NoError(t, s.AddCase(CaseDescriptor{Name: "a"}, func(ctx context.Context, c *Case) error {
		seen = append(seen, c.ChecksTotal())
		c.CheckExit(ctx, "true", nil, 0)
		return nil
	}))
	reg := NewRegistry(newFakeExecutor(), nil)
	require.NoError(t, reg.Register(s))

	reg.RunAll(context.Background())
	reg.RunAll(context.Background())
	assert.Equal(t, []int{0, 0}, seen)
}

func TestTail(t *testing.T) {
	assert.Equal(t, "short", tail("short", 10))
	assert.Equal(t, "...6789", tail("0123456789", 4))
}
