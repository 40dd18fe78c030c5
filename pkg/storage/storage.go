package storage

import (
	"context"
	"errors"

	"github.com/ogulcanaydogan/aws-spend-reporter/pkg/model"
)

// ErrNotFound is returned when a run ID is not in the archive.
var ErrNotFound = errors.New("run not found")

// DefaultListLimit caps ListRuns when the caller passes no limit.
const DefaultListLimit = 20

// Archive persists summaries of past reporting runs. Nothing read from it
// feeds back into a report.
type Archive interface {
	// SaveRun persists a run and its account rows.
	SaveRun(ctx context.Context, run *model.Run) error

	// ListRuns returns the most recent runs, newest first, without rows.
	ListRuns(ctx context.Context, limit int) ([]model.Run, error)

	// GetRun retrieves a run and its account rows.
	GetRun(ctx context.Context, id string) (*model.Run, error)

	// Close releases resources.
	Close() error
}
