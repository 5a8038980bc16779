package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/pairtrack/pairtrack/internal/ctxkeys"
	"github.com/pairtrack/pairtrack/internal/middleware"
	"github.com/pairtrack/pairtrack/internal/model"
	"github.com/pairtrack/pairtrack/internal/service"
	"github.com/pairtrack/pairtrack/internal/ui"
	"github.com/pairtrack/pairtrack/internal/ui/pages"
)

type DashboardHandler struct {
	cycleService   *service.CycleService
	pairingService *service.PairingService
}

func NewDashboardHandler(cycleService *service.CycleService, pairingService *service.PairingService) *DashboardHandler {
	return &DashboardHandler{
		cycleService:   cycleService,
		pairingService: pairingService,
	}
}

// DashboardPage sends paired users straight to their room.
func (h *DashboardHandler) DashboardPage(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	profile := ctxkeys.Profile(r.Context())

	pairIDs, err := h.pairingService.ActivePairForUser(user.ID)
	if err != nil {
		slog.Error("failed to look up pair", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to load dashboard", http.StatusInternalServerError)
		return
	}
	if len(pairIDs) > 0 {
		middleware.Redirect(w, r, "/room/"+pairIDs[0])
		return
	}

	cycle, err := activeCycleOrNil(h.cycleService)
	if err != nil {
		slog.Error("failed to get active cycle", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to load dashboard", http.StatusInternalServerError)
		return
	}

	ui.Render(w, r, pages.Dashboard(pages.DashboardData{Profile: profile, Cycle: cycle}))
}

func activeCycleOrNil(cycles *service.CycleService) (*model.WeeklyCycle, error) {
	cycle, err := cycles.Active()
	if errors.Is(err, service.ErrNoActiveCycle) {
		return nil, nil
	}
	return cycle, err
}
