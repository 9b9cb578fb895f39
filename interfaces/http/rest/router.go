// Package rest exposes the repository contract over HTTP for the
// browser canvas: artifact, relationship and draft CRUD, bulk ops,
// graph and coherence queries, outline sync and snapshot backup.
package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"semcanvas/application/commands/bus"
	querybus "semcanvas/application/queries/bus"
	"semcanvas/application/ports"
	"semcanvas/application/services/autocomplete"
	"semcanvas/application/services/sync"
	"semcanvas/application/services/temporal"
	domainconfig "semcanvas/domain/config"
	"semcanvas/infrastructure/config"
	"semcanvas/interfaces/http/rest/handlers"
	"semcanvas/interfaces/http/rest/middleware"
	"semcanvas/pkg/common"
)

// Router creates and configures the HTTP router
type Router struct {
	cfg        *config.Config
	domain     *domainconfig.DomainConfig
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	drafts     *temporal.Service
	outline    *sync.Service
	snapshots  ports.SnapshotStore
	ws         http.Handler
	logger     *zap.Logger
}

// NewRouter creates a new router instance. ws may be nil when no
// websocket fan-out is mounted.
func NewRouter(
	cfg *config.Config,
	domain *domainconfig.DomainConfig,
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	drafts *temporal.Service,
	outline *sync.Service,
	snapshots ports.SnapshotStore,
	ws http.Handler,
	logger *zap.Logger,
) *Router {
	return &Router{
		cfg:        cfg,
		domain:     domain,
		commandBus: commandBus,
		queryBus:   queryBus,
		drafts:     drafts,
		outline:    outline,
		snapshots:  snapshots,
		ws:         ws,
		logger:     logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: rt.cfg.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID", "X-Client-Source"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}

	router.Get("/health", rt.healthCheck)

	router.Route("/api/v1", func(r chi.Router) {
		artifactHandler := handlers.NewArtifactHandler(rt.commandBus, rt.queryBus, rt.logger)
		r.Route("/artifacts", func(r chi.Router) {
			r.Post("/", artifactHandler.CreateArtifact)
			r.Get("/", artifactHandler.ListArtifacts)
			r.Post("/bulk-delete", artifactHandler.BulkDeleteArtifacts)
			r.Get("/{artifactID}", artifactHandler.GetArtifact)
			r.Put("/{artifactID}", artifactHandler.UpdateArtifact)
			r.Put("/{artifactID}/position", artifactHandler.MoveArtifact)
			r.Delete("/{artifactID}", artifactHandler.DeleteArtifact)
			r.Get("/{artifactID}/relationships", artifactHandler.ListArtifactRelationships)
		})

		relationshipHandler := handlers.NewRelationshipHandler(rt.commandBus, rt.queryBus, rt.logger)
		r.Route("/relationships", func(r chi.Router) {
			r.Post("/", relationshipHandler.CreateRelationship)
			r.Get("/", relationshipHandler.ListRelationships)
			r.Delete("/{relationshipID}", relationshipHandler.DeleteRelationship)
		})

		graphHandler := handlers.NewGraphHandler(rt.queryBus, rt.logger)
		r.Route("/graph", func(r chi.Router) {
			r.Get("/", graphHandler.GetGraph)
			r.Get("/coherence", graphHandler.GetCoherence)
		})
		r.Get("/search", graphHandler.Search)

		temporalHandler := handlers.NewTemporalHandler(rt.drafts, rt.logger)
		r.Route("/drafts", func(r chi.Router) {
			r.Post("/", temporalHandler.CreateDraft)
			r.Put("/{draftID}/name", temporalHandler.SetName)
			r.Put("/{draftID}/description", temporalHandler.SetDescription)
			r.Put("/{draftID}/type", temporalHandler.SetType)
			r.Post("/{draftID}/confirm-name", temporalHandler.ConfirmName)
			r.Post("/{draftID}/commit", temporalHandler.Commit)
			r.Delete("/{draftID}", temporalHandler.Discard)
		})

		autocompleteHandler := handlers.NewAutocompleteHandler(autocomplete.New(rt.domain), rt.commandBus, rt.queryBus, rt.logger)
		r.Route("/autocomplete", func(r chi.Router) {
			r.Post("/", autocompleteHandler.Update)
			r.Post("/commit", autocompleteHandler.Commit)
		})

		outlineHandler := handlers.NewOutlineHandler(rt.outline, rt.logger)
		r.Route("/outline", func(r chi.Router) {
			r.Get("/", outlineHandler.GetOutline)
			r.Put("/", outlineHandler.ApplyOutline)
			r.Post("/reference", outlineHandler.CommitReference)
		})

		snapshotHandler := handlers.NewSnapshotHandler(rt.snapshots, rt.logger)
		r.Get("/snapshot", snapshotHandler.Export)
		r.Post("/snapshot", snapshotHandler.Import)
	})

	if rt.ws != nil {
		router.Handle("/ws", rt.ws)
	}

	return router
}

func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
