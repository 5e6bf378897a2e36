package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"blueprint-backend/application/services"
	"blueprint-backend/pkg/common"
	pkgerrors "blueprint-backend/pkg/errors"
)

// ProjectHandler handles project lifecycle requests
type ProjectHandler struct {
	registry *services.ProjectRegistry
	logger   *zap.Logger
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(registry *services.ProjectRegistry, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		registry: registry,
		logger:   logger,
	}
}

// ListProjects handles GET /projects
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	ids, err := h.registry.ListProjects(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	common.RespondJSON(w, http.StatusOK, map[string][]string{"projects": ids})
}

// CloseProject handles POST /projects/{projectID}/close. The project's
// state is persisted and its engine evicted, so reopening starts with
// fresh undo/redo stacks.
func (h *ProjectHandler) CloseProject(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	if err := h.registry.Close(r.Context(), projectID); err != nil {
		h.respondError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]bool{"closed": true})
}

// DeleteProject handles DELETE /projects/{projectID}
func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	if err := h.registry.DeleteProject(r.Context(), projectID); err != nil {
		h.respondError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *ProjectHandler) respondError(w http.ResponseWriter, err error) {
	if appErr := pkgerrors.GetAppError(err); appErr != nil {
		common.RespondError(w, appErr.HTTPStatus, string(appErr.Type), appErr.Message)
		return
	}
	h.logger.Error("unhandled error", zap.Error(err))
	common.RespondError(w, http.StatusInternalServerError,
		string(pkgerrors.ErrorTypeInternal), "internal server error")
}
