package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"captioner/internal/captioning"
	"captioner/internal/infra"
)

// BatchRunner is the slice of the captioning service the handlers need.
type BatchRunner interface {
	Run(ctx context.Context, raw []byte, opts captioning.BatchOptions) (*captioning.BatchResult, error)
}

// App holds handler dependencies.
type App struct {
	Cfg    *infra.Config
	Logger infra.Logger
	Runner BatchRunner
}

// NewApp builds the handler container.
func NewApp(cfg *infra.Config, logger infra.Logger, runner BatchRunner) *App {
	return &App{Cfg: cfg, Logger: logger, Runner: runner}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// Health reports service liveness.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}
