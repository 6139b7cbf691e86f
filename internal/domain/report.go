package domain

// RunMeta contains metadata about a run
type RunMeta struct {
	RunID           string  `json:"run_id"`
	TotalSuites     int     `json:"total_suites"`
	PassedSuites    int     `json:"passed_suites"`
	TotalCases      int     `json:"total_cases"`
	PassedCases     int     `json:"passed_cases"`
	TotalChecks     int     `json:"total_checks"`
	PassedChecks    int     `json:"passed_checks"`
	FailedChecks    int     `json:"failed_checks"`
	Duration        string  `json:"duration"`
	DurationSeconds float64 `json:"duration_seconds"`
	OK              bool    `json:"ok"`
	Timestamp       string  `json:"timestamp"`
}

// RunReport is the complete output structure for a run
type RunReport struct {
	Meta    RunMeta       `json:"meta"`
	Suites  []SuiteRecord `json:"suites"`
	Details []Failure     `json:"details"`
}

// HistoryEntry is one suite row of a recorded run
type HistoryEntry struct {
	RunID        string
	Suite        string
	CasesTotal   int
	CasesPassed  int
	ChecksTotal  int
	ChecksPassed int
	Seconds      float64
	Passed       bool
	RecordedAt   string
}
