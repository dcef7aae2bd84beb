package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/maasanto/pos-import/internal/domain"
	"github.com/maasanto/pos-import/internal/importer"
	"github.com/maasanto/pos-import/internal/repository"
)

// NewRouter creates the Chi router with all API routes mounted.
func NewRouter(
	svc *importer.Service,
	repo *repository.ImportRepo,
	connectors map[string]*domain.Connector,
) http.Handler {
	h := &Handlers{
		svc:        svc,
		repo:       repo,
		connectors: connectors,
	}

	r := chi.NewRouter()

	// Middleware.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SetHeader("Content-Type", "application/json"))

	r.Route("/api/v1", func(r chi.Router) {
		// Imports.
		r.Post("/imports/validate", h.ValidateFile)
		r.Post("/imports/preview", h.PreviewFile)
		r.Post("/imports", h.RunImport)
		r.Get("/imports", h.ListImports)
		r.Get("/imports/{id}", h.GetImport)
		r.Post("/imports/{id}/reprocess", h.ReprocessImport)
		r.Post("/imports/{id}/cancel", h.CancelImport)

		// Connectors.
		r.Get("/connectors", h.ListConnectors)
	})

	return r
}
