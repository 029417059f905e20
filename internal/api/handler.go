// Package api exposes the workspace to the UI shell over JSON routes and a
// websocket event stream.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	"github.com/planmark/planmark-go/internal/database/repositories"
	"github.com/planmark/planmark-go/internal/services/costlink"
	"github.com/planmark/planmark-go/internal/services/persistence"
	"github.com/planmark/planmark-go/internal/services/pubsub"
	"github.com/planmark/planmark-go/internal/services/workspace"
)

// Options configures the router.
type Options struct {
	CORSOrigin     string
	Debug          bool
	RequestTimeout time.Duration
	MaxUploadBytes int64
	Version        string
	PingInterval   time.Duration
}

// Handler holds the dependencies shared by every route.
type Handler struct {
	workspace *workspace.Workspace
	designs   *persistence.Service
	costs     *costlink.Service
	settings  *repositories.SettingRepository
	projects  *repositories.ProjectRepository
	pubsub    *pubsub.PubSub
	opts      Options
	upgrader  websocket.Upgrader
	started   time.Time
}

// NewHandler creates a Handler. designs, costs, settings and projects may be
// nil, in which case their routes answer 503.
func NewHandler(
	ws *workspace.Workspace,
	designs *persistence.Service,
	costs *costlink.Service,
	settings *repositories.SettingRepository,
	projects *repositories.ProjectRepository,
	ps *pubsub.PubSub,
	opts Options,
) *Handler {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 50 << 20
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = 10 * time.Second
	}
	return &Handler{
		workspace: ws,
		designs:   designs,
		costs:     costs,
		settings:  settings,
		projects:  projects,
		pubsub:    ps,
		opts:      opts,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for WebSocket
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		started: time.Now(),
	}
}

// Router builds the HTTP routes.
func (h *Handler) Router() http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   []string{h.opts.CORSOrigin, "http://localhost:3000", "http://localhost:4000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
		Debug:            h.opts.Debug,
	})
	router.Use(corsMiddleware.Handler)

	router.Get("/health", h.health)
	// The event stream is long-lived and stays outside the request timeout.
	router.Get("/ws", h.events)

	router.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(h.opts.RequestTimeout))

		r.Get("/design", h.getDesign)
		r.Post("/design/undo", h.undo)
		r.Post("/design/redo", h.redo)
		r.Post("/design/reset", h.reset)
		r.Put("/design/view", h.setView)
		r.Put("/design/layers", h.setLayers)

		r.Post("/equipment", h.addEquipment)
		r.Put("/equipment/{id}/position", h.moveEquipment)
		r.Post("/cables", h.addCable)
		r.Post("/containment", h.addContainment)
		r.Post("/walkways", h.addWalkway)
		r.Post("/zones", h.addZone)
		r.Post("/roof-masks", h.addRoofMask)
		r.Post("/pv-arrays", h.addPVArray)
		r.Post("/tasks", h.addTask)
		r.Put("/tasks/{id}/status", h.setTaskStatus)
		r.Put("/scale-label", h.moveScaleLabel)
		r.Delete("/items/{id}", h.deleteItem)

		r.Post("/scale/begin", h.beginCalibration)
		r.Post("/scale/complete", h.completeCalibration)
		r.Post("/scale/cancel", h.cancelCalibration)

		r.Get("/takeoff", h.takeoff)
		r.Post("/scan", h.scan)

		r.Get("/designs", h.listDesigns)
		r.Post("/designs", h.saveDesign)
		r.Get("/designs/{id}", h.getSavedDesign)
		r.Get("/designs/{id}/file", h.getDesignFile)
		r.Post("/designs/{id}/open", h.openDesign)
		r.Delete("/designs/{id}", h.deleteDesign)

		r.Get("/projects", h.listProjects)
		r.Post("/projects", h.createProject)
		r.Delete("/projects/{projectID}", h.deleteProject)
		r.Put("/projects/{projectID}/mappings", h.saveMapping)
		r.Post("/projects/{projectID}/cost-link", h.costLink)
	})

	return router
}
