package services

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"blueprint-backend/application/ports"
	"blueprint-backend/domain/config"
	pkgerrors "blueprint-backend/pkg/errors"
)

// ProjectRegistry hands out one CanvasService per project and hydrates it
// from the snapshot store on first open. Undo/redo history and layout
// caches live inside the service, so closing a project and reopening it
// starts with clean stacks.
type ProjectRegistry struct {
	mu     sync.Mutex
	cfg    *config.DomainConfig
	store  ports.CanvasStore
	logger *zap.Logger
	open   map[string]*CanvasService
}

// NewProjectRegistry creates a registry backed by the given snapshot store.
func NewProjectRegistry(cfg *config.DomainConfig, store ports.CanvasStore, logger *zap.Logger) *ProjectRegistry {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProjectRegistry{
		cfg:    cfg,
		store:  store,
		logger: logger,
		open:   make(map[string]*CanvasService),
	}
}

// Open returns the live engine for a project, creating and hydrating it
// from stored state on first access.
func (r *ProjectRegistry) Open(ctx context.Context, projectID string) (*CanvasService, error) {
	if projectID == "" {
		return nil, pkgerrors.NewValidationError("project id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if svc, ok := r.open[projectID]; ok {
		return svc, nil
	}

	svc := NewCanvasService(projectID, r.cfg, r.logger)

	snapshot, err := r.store.LoadSnapshot(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if snapshot != nil {
		if err := svc.LoadState(snapshot.Nodes, snapshot.Edges); err != nil {
			return nil, pkgerrors.Wrap(err, "stored canvas state is invalid")
		}
		r.logger.Info("hydrated project canvas",
			zap.String("projectID", projectID),
			zap.Int("nodes", len(snapshot.Nodes)),
			zap.Int("edges", len(snapshot.Edges)),
		)
	}

	r.open[projectID] = svc
	return svc, nil
}

// Save persists the current graph state of an open project.
func (r *ProjectRegistry) Save(ctx context.Context, projectID string) error {
	r.mu.Lock()
	svc, ok := r.open[projectID]
	r.mu.Unlock()
	if !ok {
		return pkgerrors.NewNotFoundError("project is not open: " + projectID)
	}
	return r.store.SaveSnapshot(ctx, projectID, svc.Snapshot())
}

// Close persists and evicts a project's engine. Reopening starts with
// fresh undo/redo stacks and layout caches.
func (r *ProjectRegistry) Close(ctx context.Context, projectID string) error {
	r.mu.Lock()
	svc, ok := r.open[projectID]
	if ok {
		delete(r.open, projectID)
	}
	r.mu.Unlock()
	if !ok {
		return nil
	}
	return r.store.SaveSnapshot(ctx, projectID, svc.Snapshot())
}

// SaveAll persists every open project. Used on shutdown and by the
// autosave loop; the first error aborts the sweep.
func (r *ProjectRegistry) SaveAll(ctx context.Context) error {
	r.mu.Lock()
	services := make([]*CanvasService, 0, len(r.open))
	for _, svc := range r.open {
		services = append(services, svc)
	}
	r.mu.Unlock()

	for _, svc := range services {
		if err := r.store.SaveSnapshot(ctx, svc.ProjectID(), svc.Snapshot()); err != nil {
			return err
		}
	}
	return nil
}

// ListProjects returns every project id with stored state.
func (r *ProjectRegistry) ListProjects(ctx context.Context) ([]string, error) {
	return r.store.ListProjects(ctx)
}

// DeleteProject evicts a project and removes its stored state.
func (r *ProjectRegistry) DeleteProject(ctx context.Context, projectID string) error {
	r.mu.Lock()
	delete(r.open, projectID)
	r.mu.Unlock()
	return r.store.DeleteSnapshot(ctx, projectID)
}
