package ports

import (
	"context"

	"blueprint-backend/domain/core/aggregates"
)

// CanvasStore defines the interface for canvas snapshot persistence.
// This is a port in hexagonal architecture - the domain doesn't know about
// the implementation. One snapshot is stored per project; history stacks
// are deliberately session-scoped and never persisted.
type CanvasStore interface {
	// SaveSnapshot persists the full graph state for a project (create or update)
	SaveSnapshot(ctx context.Context, projectID string, snapshot *aggregates.Snapshot) error

	// LoadSnapshot retrieves the stored graph state for a project.
	// A project with no stored state returns (nil, nil).
	LoadSnapshot(ctx context.Context, projectID string) (*aggregates.Snapshot, error)

	// DeleteSnapshot removes the stored state for a project
	DeleteSnapshot(ctx context.Context, projectID string) error

	// ListProjects returns the ids of all projects with stored state
	ListProjects(ctx context.Context) ([]string, error)
}
