package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/pairtrack/pairtrack/internal/ctxkeys"
	"github.com/pairtrack/pairtrack/internal/ui"
	"github.com/pairtrack/pairtrack/internal/ui/pages"
)

// Pinger is satisfied by *sqlx.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HomeHandler struct {
	db Pinger
}

func NewHomeHandler(db Pinger) *HomeHandler {
	return &HomeHandler{db: db}
}

func (h *HomeHandler) HomePage(w http.ResponseWriter, r *http.Request) {
	if ctxkeys.User(r.Context()) != nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *HomeHandler) NotFoundPage(w http.ResponseWriter, r *http.Request) {
	ui.RenderStatus(w, r, http.StatusNotFound, pages.NotFound())
}

func (h *HomeHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	err := h.db.PingContext(ctx)
	if err != nil {
		slog.Error("health check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("database unavailable\n"))
		return
	}
	_, _ = w.Write([]byte("ok\n"))
}
