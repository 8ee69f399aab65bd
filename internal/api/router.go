package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/valkey-io/valkey-go"

	apihandler "github.com/reforge-labs/reforge/internal/api/handler"
	apimw "github.com/reforge-labs/reforge/internal/api/middleware"
	"github.com/reforge-labs/reforge/internal/pipeline"
	"github.com/reforge-labs/reforge/internal/store"
	minioclient "github.com/reforge-labs/reforge/internal/store/minio"
)

// RouterDeps holds optional dependencies for the router. Routes that need a
// missing one degrade instead of failing startup.
type RouterDeps struct {
	MinIO    *minioclient.Client
	Valkey   valkey.Client
	Producer *pipeline.Producer
	Events   *pipeline.EventLog
}

func NewRouter(logger *slog.Logger, s *store.Store, deps *RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(apimw.Logger(logger))
	r.Use(apimw.CORS)
	r.Use(chimw.Recoverer)

	if deps == nil {
		deps = &RouterDeps{}
	}

	// Health checks
	health := apihandler.NewHealthHandler(s.Pool(), deps.Valkey)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		projects := apihandler.NewProjectHandler(logger, s)
		r.Route("/projects", func(r chi.Router) {
			r.Get("/", projects.List)
			r.Post("/", projects.Create)
			r.Route("/{slug}", func(r chi.Router) {
				r.Get("/", projects.Get)
				r.Put("/", projects.Update)
				r.Delete("/", projects.Delete)

				sources := apihandler.NewSourceHandler(logger, s, deps.MinIO)
				r.Route("/sources", func(r chi.Router) {
					r.Get("/", sources.List)
					r.Post("/", sources.Create)
					r.Route("/{sourceID}", func(r chi.Router) {
						r.Get("/", sources.Get)
						r.Delete("/", sources.Delete)
					})
				})

				runs := apihandler.NewRunHandler(logger, s, deps.Producer, deps.MinIO)
				events := apihandler.NewEventsHandler(logger, s, deps.Events)
				r.Route("/runs", func(r chi.Router) {
					r.Get("/", runs.List)
					r.Post("/", runs.Trigger)
					r.Route("/{runID}", func(r chi.Router) {
						r.Get("/", runs.Get)
						r.Get("/review", runs.Review)
						r.Get("/archive", runs.Archive)
						r.Get("/events", events.List)
						r.Get("/events/ws", events.Stream)
					})
				})

				// Upload (requires MinIO)
				if deps.MinIO != nil {
					upload := apihandler.NewUploadHandler(logger, s, deps.MinIO, deps.Producer)
					r.Post("/upload", upload.Upload)
				}
			})
		})
	})

	return r
}
