package domain

// Failure is a failed check or case from a run, as shown by the failure viewer
type Failure struct {
	Suite    string `json:"suite"`
	Case     string `json:"case"`
	Check    string `json:"check,omitempty"` // Empty when the case itself failed (body error, panic)
	Expected int    `json:"expected,omitempty"`
	ExitCode int    `json:"exit_code,omitempty"`
	Message  string `json:"message"`
	Stdout   string `json:"stdout,omitempty"`
	Stderr   string `json:"stderr,omitempty"`
	Resolved bool   `json:"resolved,omitempty"` // Track if failure is marked as resolved
}

// CollectFailures flattens the failed checks and cases of the given records.
func CollectFailures(records []SuiteRecord) []Failure {
	var failures []Failure
	for _, rec := range records {
		if rec.Error != "" {
			failures = append(failures, Failure{Suite: rec.Name, Message: rec.Error})
		}
		if rec.HasRun && !rec.TimeLimitMet {
			failures = append(failures, Failure{Suite: rec.Name, Check: "suite time limit", Message: "time limit exceeded"})
		}
		for _, c := range rec.Cases {
			if c.Error != "" {
				failures = append(failures, Failure{Suite: rec.Name, Case: c.Name, Message: c.Error})
			}
			for _, chk := range c.Checks {
				if chk.Passed {
					continue
				}
				msg := chk.Error
				if msg == "" && !chk.TimeLimit {
					msg = "unexpected exit code"
				}
				if msg == "" {
					msg = "time limit exceeded"
				}
				failures = append(failures, Failure{
					Suite:    rec.Name,
					Case:     c.Name,
					Check:    chk.Label,
					Expected: chk.Expected,
					ExitCode: chk.ExitCode,
					Message:  msg,
					Stdout:   chk.Stdout,
					Stderr:   chk.Stderr,
				})
			}
		}
	}
	return failures
}
