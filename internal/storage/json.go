package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ept/internal/domain"
)

// NewReport builds the report of a finished run.
func NewReport(runID string, totals domain.Totals, records []domain.SuiteRecord) *domain.RunReport {
	ran := make([]domain.SuiteRecord, 0, len(records))
	for _, rec := range records {
		if rec.HasRun {
			ran = append(ran, rec)
		}
	}

	return &domain.RunReport{
		Meta: domain.RunMeta{
			RunID:           runID,
			TotalSuites:     totals.SuitesTotal,
			PassedSuites:    totals.SuitesPassed,
			TotalCases:      totals.CasesTotal,
			PassedCases:     totals.CasesPassed,
			TotalChecks:     totals.ChecksTotal,
			PassedChecks:    totals.ChecksPassed,
			FailedChecks:    totals.ChecksTotal - totals.ChecksPassed,
			Duration:        totals.Elapsed.String(),
			DurationSeconds: totals.Elapsed.Seconds(),
			OK:              totals.OK,
			Timestamp:       time.Now().Format(time.RFC3339),
		},
		Suites:  ran,
		Details: domain.CollectFailures(ran),
	}
}

// Save writes the run report to the configured JSON output file.
func (s *JSONStorage) Save(runID string, totals domain.Totals, records []domain.SuiteRecord) error {
	return s.SaveOutput(NewReport(runID, totals, records))
}

// Load reads the last run report from the configured JSON output file.
func (s *JSONStorage) Load() (*domain.RunReport, error) {
	path := s.cfg.GetOutputPath()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read results file: %w", err)
	}
	var report domain.RunReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}
	return &report, nil
}

// SaveOutput writes the full report to the configured JSON file.
func (s *JSONStorage) SaveOutput(report *domain.RunReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	path := s.cfg.GetOutputPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}
