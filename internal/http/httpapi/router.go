package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"captioner/internal/http/handlers"
	"captioner/internal/infra"
	"captioner/internal/middleware"
)

// NewRouter wires the HTTP surface: liveness plus the batch caption endpoint.
func NewRouter(app *handlers.App, logger infra.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimiddleware.RealIP,
		chimiddleware.Recoverer,
		middleware.Logger(logger),
	)

	r.Get("/v1/healthz", app.Health)
	r.Post("/v1/captions", app.Captions)

	return r
}
