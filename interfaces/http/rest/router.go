package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"blueprint-backend/application/services"
	"blueprint-backend/interfaces/http/rest/handlers"
	"blueprint-backend/interfaces/http/rest/middleware"
)

// Router creates and configures the HTTP router
type Router struct {
	registry   *services.ProjectRegistry
	logger     *zap.Logger
	enableCORS bool
}

// NewRouter creates a new router instance
func NewRouter(registry *services.ProjectRegistry, logger *zap.Logger, enableCORS bool) *Router {
	return &Router{
		registry:   registry,
		logger:     logger,
		enableCORS: enableCORS,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.enableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)

	projectHandler := handlers.NewProjectHandler(rt.registry, rt.logger)
	canvasHandler := handlers.NewCanvasHandler(rt.registry, rt.logger)

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/projects", func(r chi.Router) {
			r.Get("/", projectHandler.ListProjects)

			r.Route("/{projectID}", func(r chi.Router) {
				r.Post("/close", projectHandler.CloseProject)
				r.Delete("/", projectHandler.DeleteProject)

				r.Route("/canvas", func(r chi.Router) {
					r.Get("/", canvasHandler.GetCanvas)
					r.Put("/", canvasHandler.ReplaceCanvas)
					r.Post("/append", canvasHandler.AppendCanvas)
					r.Post("/save", canvasHandler.SaveCanvas)
					r.Post("/undo", canvasHandler.Undo)
					r.Post("/redo", canvasHandler.Redo)

					r.Route("/nodes", func(r chi.Router) {
						r.Post("/", canvasHandler.AddNode)
						r.Patch("/{nodeID}/data", canvasHandler.UpdateNodeData)
						r.Patch("/{nodeID}/position", canvasHandler.MoveNode)
						r.Delete("/{nodeID}", canvasHandler.DeleteNode)
						r.Post("/{nodeID}/toggle-expanded", canvasHandler.ToggleExpanded)
						r.Post("/{nodeID}/toggle-completed", canvasHandler.ToggleCompleted)
						r.Put("/{nodeID}/height", canvasHandler.SetHeight)
					})

					r.Route("/edges", func(r chi.Router) {
						r.Post("/", canvasHandler.Connect)
						r.Delete("/{edgeID}", canvasHandler.DeleteEdge)
					})

					r.Route("/selection", func(r chi.Router) {
						r.Put("/", canvasHandler.SetSelection)
						r.Post("/delete", canvasHandler.DeleteSelected)
					})

					r.Route("/import", func(r chi.Router) {
						r.Post("/match", canvasHandler.MatchImport)
						r.Post("/plan", canvasHandler.PlanImport)
						r.Post("/apply", canvasHandler.ApplyImport)
					})

					r.Post("/layout/reset", canvasHandler.ResetLayout)
				})
			})
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
