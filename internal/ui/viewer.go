package ui

import "ept/internal/domain"

var _ Viewer = (*FailureViewer)(nil)

// Viewer displays the failures of a run report
type Viewer interface {
	View(report *domain.RunReport) error
}
