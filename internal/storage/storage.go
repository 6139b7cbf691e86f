package storage

import (
	"context"

	"ept/internal/config"
	"ept/internal/domain"
)

// Storage persists and loads run reports (e.g. for the failures viewer).
type Storage interface {
	Save(runID string, totals domain.Totals, records []domain.SuiteRecord) error
	Load() (*domain.RunReport, error)
	// SaveOutput writes a full report (e.g. after failures were marked resolved).
	SaveOutput(report *domain.RunReport) error
}

// History records per-suite results of every run.
type History interface {
	Record(ctx context.Context, report *domain.RunReport) error
	Recent(ctx context.Context, limit int) ([]domain.HistoryEntry, error)
	Close() error
}

var _ Storage = (*JSONStorage)(nil)

// JSONStorage stores reports in a JSON file under the configured output path.
type JSONStorage struct {
	cfg *config.Config
}

// NewJSONStorage returns a Storage that reads/writes the config's output JSON path.
func NewJSONStorage(cfg *config.Config) *JSONStorage {
	return &JSONStorage{cfg: cfg}
}
