package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"blueprint-backend/application/commands"
	"blueprint-backend/application/services"
	"blueprint-backend/domain/core/entities"
	"blueprint-backend/domain/core/valueobjects"
	domainservices "blueprint-backend/domain/services"
	"blueprint-backend/pkg/common"
	pkgerrors "blueprint-backend/pkg/errors"
	"blueprint-backend/pkg/utils"
)

// CanvasHandler handles canvas-related HTTP requests. Every route is
// scoped to a project; the handler resolves the project's engine through
// the registry.
type CanvasHandler struct {
	registry *services.ProjectRegistry
	logger   *zap.Logger
}

// NewCanvasHandler creates a new canvas handler
func NewCanvasHandler(registry *services.ProjectRegistry, logger *zap.Logger) *CanvasHandler {
	return &CanvasHandler{
		registry: registry,
		logger:   logger,
	}
}

// nodeView is the wire shape of a node in responses
type nodeView struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	X         float64           `json:"x"`
	Y         float64           `json:"y"`
	Fields    map[string]string `json:"fields"`
	Expanded  bool              `json:"expanded"`
	Completed bool              `json:"completed"`
	ZIndex    int               `json:"z_index"`
	Selected  bool              `json:"selected"`
}

// edgeView is the wire shape of an edge in responses
type edgeView struct {
	ID       string `json:"id"`
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
	Selected bool   `json:"selected"`
}

// canvasView is the full graph state plus undo/redo availability
type canvasView struct {
	Nodes   []nodeView `json:"nodes"`
	Edges   []edgeView `json:"edges"`
	CanUndo bool       `json:"can_undo"`
	CanRedo bool       `json:"can_redo"`
}

// GetCanvas handles GET /projects/{projectID}/canvas
func (h *CanvasHandler) GetCanvas(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	common.RespondJSON(w, http.StatusOK, h.canvasView(svc))
}

// AddNode handles POST /projects/{projectID}/canvas/nodes
func (h *CanvasHandler) AddNode(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w, r)
	if !ok {
		return
	}

	var cmd commands.AddNodeCommand
	if !h.decode(w, r, &cmd) {
		return
	}

	node, err := svc.AddNode(cmd.Type, cmd.X, cmd.Y)
	if err != nil {
		h.respondError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, toNodeView(node))
}

// UpdateNodeData handles PATCH /projects/{projectID}/canvas/nodes/{nodeID}/data
func (h *CanvasHandler) UpdateNodeData(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w, r)
	if !ok {
		return
	}

	var cmd commands.UpdateNodeDataCommand
	if !h.decode(w, r, &cmd) {
		return
	}

	updated := svc.UpdateNodeData(chi.URLParam(r, "nodeID"), cmd.Fields)
	common.RespondJSON(w, http.StatusOK, map[string]bool{"updated": updated})
}

// MoveNode handles PATCH /projects/{projectID}/canvas/nodes/{nodeID}/position
func (h *CanvasHandler) MoveNode(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w, r)
	if !ok {
		return
	}

	var cmd commands.MoveNodeCommand
	if !h.decode(w, r, &cmd) {
		return
	}

	moved := svc.MoveNode(chi.URLParam(r, "nodeID"), cmd.X, cmd.Y)
	common.RespondJSON(w, http.StatusOK, map[string]bool{"moved": moved})
}

// DeleteNode handles DELETE /projects/{projectID}/canvas/nodes/{nodeID}
func (h *CanvasHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w, r)
	if !ok {
		return
	}

	deleted := svc.DeleteNode(chi.URLParam(r, "nodeID"))
	common.RespondJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

// SetSelection handles PUT /projects/{projectID}/canvas/selection
func (h *CanvasHandler) SetSelection(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w, r)
	if !ok {
		return
	}

	var cmd commands.SelectionCommand
	if !h.decode(w, r, &cmd) {
		return
	}

	svc.SetSelection(cmd.NodeIDs, cmd.EdgeIDs)
	common.RespondJSON(w, http.StatusOK, map[string]bool{"selected": true})
}

// DeleteSelected handles POST /projects/{projectID}/canvas/selection/delete
func (h *CanvasHandler) DeleteSelected(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w, r)
	if !ok {
		return
	}

	nodesRemoved, edgesRemoved := svc.DeleteSelected()
	common.RespondJSON(w, http.StatusOK, map[string]int{
		"nodes_removed": nodesRemoved,
		"edges_removed": edgesRemoved,
	})
}

// Connect handles POST /projects/{projectID}/canvas/edges
func (h *CanvasHandler) Connect(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w, r)
	if !ok {
		return
	}

	var cmd commands.ConnectCommand
	if !h.decode(w, r, &cmd) {
		return
	}

	edge, err := svc.Connect(cmd.SourceID, cmd.TargetID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, toEdgeView(edge))
}

// DeleteEdge handles DELETE /projects/{projectID}/canvas/edges/{edgeID}
func (h *CanvasHandler) DeleteEdge(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w, r)
	if !ok {
		return
	}

	deleted := svc.DeleteEdge(chi.URLParam(r, "edgeID"))
	common.RespondJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

// ToggleExpanded handles POST /projects/{projectID}/canvas/nodes/{nodeID}/toggle-expanded
func (h *CanvasHandler) ToggleExpanded(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w, r)
	if !ok {
		return
	}

	toggled := svc.ToggleExpanded(chi.URLParam(r, "nodeID"))
	common.RespondJSON(w, http.StatusOK, map[string]bool{"toggled": toggled})
}

// ToggleCompleted handles POST /projects/{projectID}/canvas/nodes/{nodeID}/toggle-completed
func (h *CanvasHandler) ToggleCompleted(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w, r)
	if !ok {
		return
	}

	toggled := svc.ToggleCompleted(chi.URLParam(r, "nodeID"))
	common.RespondJSON(w, http.StatusOK, map[string]bool{"toggled": toggled})
}

// SetHeight handles PUT /projects/{projectID}/canvas/nodes/{nodeID}/height
func (h *CanvasHandler) SetHeight(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w, r)
	if !ok {
		return
	}

	var cmd commands.SetHeightCommand
	if !h.decode(w, r, &cmd) {
		return
	}

	svc.SetMeasuredHeight(chi.URLParam(r, "nodeID"), cmd.Height)
	common.RespondJSON(w, http.StatusOK, map[string]bool{"recorded": true})
}

// Undo handles POST /projects/{projectID}/canvas/undo
func (h *CanvasHandler) Undo(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w, r)
	if !ok {
		return
	}

	svc.Undo()
	common.RespondJSON(w, http.StatusOK, h.canvasView(svc))
}

// Redo handles POST /projects/{projectID}/canvas/redo
func (h *CanvasHandler) Redo(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w, r)
	if !ok {
		return
	}

	svc.Redo()
	common.RespondJSON(w, http.StatusOK, h.canvasView(svc))
}

// ReplaceCanvas handles PUT /projects/{projectID}/canvas
func (h *CanvasHandler) ReplaceCanvas(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w, r)
	if !ok {
		return
	}

	nodes, edges, ok := h.decodeGraph(w, r)
	if !ok {
		return
	}

	if err := svc.ReplaceAll(nodes, edges); err != nil {
		h.respondError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, h.canvasView(svc))
}

// AppendCanvas handles POST /projects/{projectID}/canvas/append
func (h *CanvasHandler) AppendCanvas(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w, r)
	if !ok {
		return
	}

	nodes, edges, ok := h.decodeGraph(w, r)
	if !ok {
		return
	}

	if err := svc.AppendAll(nodes, edges); err != nil {
		h.respondError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, h.canvasView(svc))
}

// MatchImport handles POST /projects/{projectID}/canvas/import/match
func (h *CanvasHandler) MatchImport(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w, r)
	if !ok {
		return
	}

	var cmd commands.MatchImportCommand
	if !h.decode(w, r, &cmd) {
		return
	}

	common.RespondJSON(w, http.StatusOK, svc.MatchImport(cmd.Items))
}

// PlanImportRequest pairs accepted matches with the extracted field data
// keyed by extracted name.
type PlanImportRequest struct {
	Matches       []domainservices.NodeMatch   `json:"matches" validate:"required,min=1"`
	ExtractedData map[string]map[string]string `json:"extracted_data"`
}

// PlanImport handles POST /projects/{projectID}/canvas/import/plan
func (h *CanvasHandler) PlanImport(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w, r)
	if !ok {
		return
	}

	var req PlanImportRequest
	if !h.decode(w, r, &req) {
		return
	}

	updates := svc.PlanFieldUpdates(req.Matches, req.ExtractedData)
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{"updates": updates})
}

// ApplyImport handles POST /projects/{projectID}/canvas/import/apply
func (h *CanvasHandler) ApplyImport(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w, r)
	if !ok {
		return
	}

	var cmd commands.SmartImportCommand
	if !h.decode(w, r, &cmd) {
		return
	}

	newNodes, err := commands.NodeSpecsToEntities(cmd.NewNodes)
	if err != nil {
		h.respondError(w, err)
		return
	}
	newEdges, err := commands.EdgeSpecsToEntities(cmd.NewEdges)
	if err != nil {
		h.respondError(w, err)
		return
	}

	typesByID := make(map[valueobjects.NodeID]entities.NodeType)
	for _, node := range svc.Nodes() {
		typesByID[node.ID()] = node.Type()
	}

	updates := make([]*domainservices.NodeFieldUpdate, 0, len(cmd.Updates))
	for _, update := range cmd.Updates {
		id, err := valueobjects.NewNodeIDFromString(update.NodeID)
		if err != nil {
			h.respondError(w, err)
			return
		}
		updates = append(updates, &domainservices.NodeFieldUpdate{
			NodeID:       id,
			NodeType:     typesByID[id],
			FieldsToFill: update.Fields,
		})
	}

	summary, err := svc.SmartImport(updates, newNodes, newEdges)
	if err != nil {
		h.respondError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, summary)
}

// ResetLayout handles POST /projects/{projectID}/canvas/layout/reset
func (h *CanvasHandler) ResetLayout(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w, r)
	if !ok {
		return
	}

	svc.ResetLayout()
	common.RespondJSON(w, http.StatusOK, h.canvasView(svc))
}

// SaveCanvas handles POST /projects/{projectID}/canvas/save
func (h *CanvasHandler) SaveCanvas(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.service(w, r); !ok {
		return
	}

	projectID := chi.URLParam(r, "projectID")
	if err := h.registry.Save(r.Context(), projectID); err != nil {
		h.respondError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]bool{"saved": true})
}

// Helpers

func (h *CanvasHandler) service(w http.ResponseWriter, r *http.Request) (*services.CanvasService, bool) {
	projectID := chi.URLParam(r, "projectID")
	svc, err := h.registry.Open(r.Context(), projectID)
	if err != nil {
		h.respondError(w, err)
		return nil, false
	}
	return svc, true
}

func (h *CanvasHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		common.RespondError(w, http.StatusBadRequest, string(pkgerrors.ErrorTypeValidation),
			"invalid request body: "+err.Error())
		return false
	}
	if err := utils.ValidateStruct(v); err != nil {
		common.RespondError(w, http.StatusBadRequest, string(pkgerrors.ErrorTypeValidation), err.Error())
		return false
	}
	return true
}

func (h *CanvasHandler) decodeGraph(w http.ResponseWriter, r *http.Request) ([]*entities.Node, []*entities.Edge, bool) {
	var cmd commands.ReplaceGraphCommand
	if !h.decode(w, r, &cmd) {
		return nil, nil, false
	}

	nodes, err := commands.NodeSpecsToEntities(cmd.Nodes)
	if err != nil {
		h.respondError(w, err)
		return nil, nil, false
	}
	edges, err := commands.EdgeSpecsToEntities(cmd.Edges)
	if err != nil {
		h.respondError(w, err)
		return nil, nil, false
	}
	return nodes, edges, true
}

func (h *CanvasHandler) respondError(w http.ResponseWriter, err error) {
	if appErr := pkgerrors.GetAppError(err); appErr != nil {
		common.RespondError(w, appErr.HTTPStatus, string(appErr.Type), appErr.Message)
		return
	}
	h.logger.Error("unhandled error", zap.Error(err))
	common.RespondError(w, http.StatusInternalServerError,
		string(pkgerrors.ErrorTypeInternal), "internal server error")
}

func (h *CanvasHandler) canvasView(svc *services.CanvasService) canvasView {
	nodes := svc.Nodes()
	edges := svc.Edges()
	view := canvasView{
		Nodes:   make([]nodeView, 0, len(nodes)),
		Edges:   make([]edgeView, 0, len(edges)),
		CanUndo: svc.CanUndo(),
		CanRedo: svc.CanRedo(),
	}
	for _, node := range nodes {
		view.Nodes = append(view.Nodes, toNodeView(node))
	}
	for _, edge := range edges {
		view.Edges = append(view.Edges, toEdgeView(edge))
	}
	return view
}

func toNodeView(node *entities.Node) nodeView {
	return nodeView{
		ID:        node.ID().String(),
		Type:      string(node.Type()),
		X:         node.Position().X(),
		Y:         node.Position().Y(),
		Fields:    node.Fields().Values(),
		Expanded:  node.Expanded(),
		Completed: node.Completed(),
		ZIndex:    node.ZIndex(),
		Selected:  node.Selected(),
	}
}

func toEdgeView(edge *entities.Edge) edgeView {
	return edgeView{
		ID:       edge.ID,
		SourceID: edge.SourceID.String(),
		TargetID: edge.TargetID.String(),
		Selected: edge.Selected,
	}
}
