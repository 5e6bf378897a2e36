package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "modernc.org/sqlite"

	"blueprint-backend/domain/core/aggregates"
	"blueprint-backend/domain/core/entities"
	"blueprint-backend/domain/core/valueobjects"
	pkgerrors "blueprint-backend/pkg/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS canvases (
	project_id TEXT PRIMARY KEY,
	nodes      TEXT NOT NULL,
	edges      TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
`

// CanvasStore persists one canvas snapshot per project in a local SQLite
// database. Nodes and edges are stored as JSON documents; the graph is
// small (a planning canvas, not a dataset), so per-row normalization
// buys nothing over whole-snapshot writes.
type CanvasStore struct {
	db *sql.DB
}

// nodeRecord is the stored shape of a node. Selection is deliberately not
// persisted; a reopened project starts with nothing selected.
type nodeRecord struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	X         float64           `json:"x"`
	Y         float64           `json:"y"`
	Fields    map[string]string `json:"fields"`
	Expanded  bool              `json:"expanded"`
	Completed bool              `json:"completed"`
	ZIndex    int               `json:"z_index"`
}

type edgeRecord struct {
	ID       string `json:"id"`
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
}

// NewCanvasStore opens (creating if needed) the database at path and
// ensures the schema exists.
func NewCanvasStore(path string) (*CanvasStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("open database", err)
	}
	// modernc's driver is not safe for concurrent writes on one connection
	// pool beyond SQLite's own locking; a single connection sidesteps
	// SQLITE_BUSY under concurrent handlers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, pkgerrors.NewDatabaseError("create schema", err)
	}
	return &CanvasStore{db: db}, nil
}

// Close releases the database handle.
func (s *CanvasStore) Close() error {
	return s.db.Close()
}

// SaveSnapshot upserts the full graph state for a project.
func (s *CanvasStore) SaveSnapshot(ctx context.Context, projectID string, snapshot *aggregates.Snapshot) error {
	if snapshot == nil {
		return pkgerrors.NewValidationError("snapshot cannot be nil")
	}

	nodes := make([]nodeRecord, 0, len(snapshot.Nodes))
	for _, node := range snapshot.Nodes {
		nodes = append(nodes, nodeRecord{
			ID:        node.ID().String(),
			Type:      string(node.Type()),
			X:         node.Position().X(),
			Y:         node.Position().Y(),
			Fields:    node.Fields().Values(),
			Expanded:  node.Expanded(),
			Completed: node.Completed(),
			ZIndex:    node.ZIndex(),
		})
	}
	edges := make([]edgeRecord, 0, len(snapshot.Edges))
	for _, edge := range snapshot.Edges {
		edges = append(edges, edgeRecord{
			ID:       edge.ID,
			SourceID: edge.SourceID.String(),
			TargetID: edge.TargetID.String(),
		})
	}

	nodesJSON, err := json.Marshal(nodes)
	if err != nil {
		return pkgerrors.NewInternalError("failed to encode nodes").WithCause(err)
	}
	edgesJSON, err := json.Marshal(edges)
	if err != nil {
		return pkgerrors.NewInternalError("failed to encode edges").WithCause(err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO canvases (project_id, nodes, edges, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(project_id) DO UPDATE SET
			nodes = excluded.nodes,
			edges = excluded.edges,
			updated_at = excluded.updated_at`,
		projectID, string(nodesJSON), string(edgesJSON), time.Now().UTC(),
	)
	if err != nil {
		return pkgerrors.NewDatabaseError("save canvas", err)
	}
	return nil
}

// LoadSnapshot retrieves the stored graph state for a project, or
// (nil, nil) when the project has never been saved.
func (s *CanvasStore) LoadSnapshot(ctx context.Context, projectID string) (*aggregates.Snapshot, error) {
	var nodesJSON, edgesJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT nodes, edges FROM canvases WHERE project_id = ?`, projectID,
	).Scan(&nodesJSON, &edgesJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("load canvas", err)
	}

	var nodeRecords []nodeRecord
	if err := json.Unmarshal([]byte(nodesJSON), &nodeRecords); err != nil {
		return nil, pkgerrors.NewDatabaseError("decode stored nodes", err)
	}
	var edgeRecords []edgeRecord
	if err := json.Unmarshal([]byte(edgesJSON), &edgeRecords); err != nil {
		return nil, pkgerrors.NewDatabaseError("decode stored edges", err)
	}

	snapshot := &aggregates.Snapshot{
		Nodes: make([]*entities.Node, 0, len(nodeRecords)),
		Edges: make([]*entities.Edge, 0, len(edgeRecords)),
	}
	for _, rec := range nodeRecords {
		node, err := recordToNode(rec)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("rebuild stored node "+rec.ID, err)
		}
		snapshot.Nodes = append(snapshot.Nodes, node)
	}
	for _, rec := range edgeRecords {
		edge, err := recordToEdge(rec)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("rebuild stored edge "+rec.ID, err)
		}
		snapshot.Edges = append(snapshot.Edges, edge)
	}
	return snapshot, nil
}

// DeleteSnapshot removes the stored state for a project. Unknown projects
// are a no-op.
func (s *CanvasStore) DeleteSnapshot(ctx context.Context, projectID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM canvases WHERE project_id = ?`, projectID)
	if err != nil {
		return pkgerrors.NewDatabaseError("delete canvas", err)
	}
	return nil
}

// ListProjects returns every project id with stored state, newest first.
func (s *CanvasStore) ListProjects(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT project_id FROM canvases ORDER BY updated_at DESC`)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("list projects", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, pkgerrors.NewDatabaseError("scan project id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, pkgerrors.NewDatabaseError("iterate projects", err)
	}
	return ids, nil
}

func recordToNode(rec nodeRecord) (*entities.Node, error) {
	id, err := valueobjects.NewNodeIDFromString(rec.ID)
	if err != nil {
		return nil, err
	}
	pos, err := valueobjects.NewPosition(rec.X, rec.Y)
	if err != nil {
		return nil, err
	}
	return entities.ReconstructNode(
		id,
		entities.NodeType(rec.Type),
		pos,
		rec.Fields,
		rec.Expanded,
		rec.Completed,
		rec.ZIndex,
		false,
	)
}

func recordToEdge(rec edgeRecord) (*entities.Edge, error) {
	sourceID, err := valueobjects.NewNodeIDFromString(rec.SourceID)
	if err != nil {
		return nil, err
	}
	targetID, err := valueobjects.NewNodeIDFromString(rec.TargetID)
	if err != nil {
		return nil, err
	}
	return &entities.Edge{ID: rec.ID, SourceID: sourceID, TargetID: targetID}, nil
}
