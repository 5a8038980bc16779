package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pairtrack/pairtrack/internal/ctxkeys"
	"github.com/pairtrack/pairtrack/internal/middleware"
	"github.com/pairtrack/pairtrack/internal/service"
	"github.com/pairtrack/pairtrack/internal/ui"
	"github.com/pairtrack/pairtrack/internal/ui/pages"
)

const historyLimit = 10

type AdminHandler struct {
	cycleService   *service.CycleService
	pairingService *service.PairingService
	memberService  *service.MemberService
	reportService  *service.ReportService
}

func NewAdminHandler(cycleService *service.CycleService, pairingService *service.PairingService, memberService *service.MemberService, reportService *service.ReportService) *AdminHandler {
	return &AdminHandler{
		cycleService:   cycleService,
		pairingService: pairingService,
		memberService:  memberService,
		reportService:  reportService,
	}
}

// ============================================================================
// WEEK
// ============================================================================

func (h *AdminHandler) HomePage(w http.ResponseWriter, r *http.Request) {
	h.renderHome(w, r, http.StatusOK, pages.Flash{Notice: notice(r)})
}

func (h *AdminHandler) renderHome(w http.ResponseWriter, r *http.Request, status int, flash pages.Flash) {
	overview, err := h.pairingService.Overview()
	if err != nil {
		slog.Error("failed to load pairing overview", "error", err)
		http.Error(w, "Failed to load admin", http.StatusInternalServerError)
		return
	}
	history, err := h.cycleService.History(historyLimit)
	if err != nil {
		slog.Error("failed to load cycle history", "error", err)
		http.Error(w, "Failed to load admin", http.StatusInternalServerError)
		return
	}

	ui.RenderStatus(w, r, status, pages.AdminHome(pages.AdminHomeData{
		Cycle:    overview.Cycle,
		History:  history,
		Members:  len(overview.Members),
		Pairs:    len(overview.Pairs),
		Unpaired: len(overview.Unpaired),
		Flash:    flash,
	}))
}

func (h *AdminHandler) weekDone(w http.ResponseWriter, r *http.Request, err error, action string) {
	if err == nil {
		middleware.Redirect(w, r, "/admin?notice="+action)
		return
	}
	status, msg := failure(err, "week action failed", "action", action, "admin_id", ctxkeys.User(r.Context()).ID)
	h.renderHome(w, r, status, pages.Flash{Error: msg})
}

func (h *AdminHandler) ResetWeek(w http.ResponseWriter, r *http.Request) {
	cycle, err := h.cycleService.ResetToCurrentWeek()
	if err == nil {
		slog.Info("week reset by admin", "admin_id", ctxkeys.User(r.Context()).ID, "cycle_id", cycle.ID)
	}
	h.weekDone(w, r, err, "reset")
}

func (h *AdminHandler) StartWeek(w http.ResponseWriter, r *http.Request) {
	cycle, err := h.cycleService.StartNewWeek(r.Context())
	if err == nil {
		slog.Info("new week started by admin", "admin_id", ctxkeys.User(r.Context()).ID, "cycle_id", cycle.ID)
	}
	h.weekDone(w, r, err, "started")
}

func (h *AdminHandler) SetRange(w http.ResponseWriter, r *http.Request) {
	start, errStart := time.Parse(time.DateOnly, strings.TrimSpace(r.FormValue("start")))
	end, errEnd := time.Parse(time.DateOnly, strings.TrimSpace(r.FormValue("end")))
	if errStart != nil || errEnd != nil {
		h.renderHome(w, r, http.StatusUnprocessableEntity, pages.Flash{Error: "dates must look like 2025-01-06"})
		return
	}

	_, err := h.cycleService.SetManualRange(start, end)
	h.weekDone(w, r, err, "range")
}

// Report serves the live JSON report of a cycle.
func (h *AdminHandler) Report(w http.ResponseWriter, r *http.Request) {
	cycleID := r.PathValue("id")

	report, err := h.reportService.Build(cycleID)
	if errors.Is(err, service.ErrCycleNotFound) {
		http.Error(w, "cycle not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("failed to build report", "error", err, "cycle_id", cycleID)
		http.Error(w, "Failed to build report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if r.URL.Query().Get("download") == "1" {
		w.Header().Set("Content-Disposition", "attachment; filename=cycle-"+report.WeekStart+".json")
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	err = enc.Encode(report)
	if err != nil {
		slog.Error("failed to encode report", "error", err, "cycle_id", cycleID)
	}
}

// ============================================================================
// PAIRS
// ============================================================================

func (h *AdminHandler) PairsPage(w http.ResponseWriter, r *http.Request) {
	h.renderPairs(w, r, http.StatusOK, pages.Flash{Notice: notice(r)})
}

func (h *AdminHandler) renderPairs(w http.ResponseWriter, r *http.Request, status int, flash pages.Flash) {
	overview, err := h.pairingService.Overview()
	if err != nil {
		slog.Error("failed to load pairing overview", "error", err)
		http.Error(w, "Failed to load pairs", http.StatusInternalServerError)
		return
	}
	ui.RenderStatus(w, r, status, pages.AdminPairs(pages.AdminPairsData{Overview: overview, Flash: flash}))
}

func (h *AdminHandler) pairsDone(w http.ResponseWriter, r *http.Request, err error, action string) {
	if err == nil {
		middleware.Redirect(w, r, "/admin/pairs?notice="+action)
		return
	}
	if errors.Is(err, service.ErrPairNotFound) {
		h.renderPairs(w, r, http.StatusNotFound, pages.Flash{Error: "That pair no longer exists."})
		return
	}
	status, msg := failure(err, "pairing action failed", "action", action, "admin_id", ctxkeys.User(r.Context()).ID)
	h.renderPairs(w, r, status, pages.Flash{Error: msg})
}

func (h *AdminHandler) AutoPair(w http.ResponseWriter, r *http.Request) {
	_, err := h.pairingService.AutoPair()
	h.pairsDone(w, r, err, "auto")
}

func (h *AdminHandler) ManualPair(w http.ResponseWriter, r *http.Request) {
	_, err := h.pairingService.ManualPair(r.FormValue("member_a"), r.FormValue("member_b"))
	h.pairsDone(w, r, err, "paired")
}

func (h *AdminHandler) RemovePair(w http.ResponseWriter, r *http.Request) {
	err := h.pairingService.RemovePair(r.PathValue("id"))
	h.pairsDone(w, r, err, "removed")
}

// ============================================================================
// USERS
// ============================================================================

func (h *AdminHandler) UsersPage(w http.ResponseWriter, r *http.Request) {
	h.renderUsers(w, r, http.StatusOK, pages.Flash{Notice: notice(r)})
}

func (h *AdminHandler) renderUsers(w http.ResponseWriter, r *http.Request, status int, flash pages.Flash) {
	profiles, err := h.memberService.All()
	if err != nil {
		slog.Error("failed to list users", "error", err)
		http.Error(w, "Failed to load users", http.StatusInternalServerError)
		return
	}
	ui.RenderStatus(w, r, status, pages.AdminUsers(pages.AdminUsersData{
		Profiles:  profiles,
		CurrentID: ctxkeys.User(r.Context()).ID,
		Flash:     flash,
	}))
}

func (h *AdminHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	admin := ctxkeys.User(r.Context())
	userID := r.PathValue("id")

	err := h.memberService.SetRole(admin.ID, userID, r.FormValue("role"))
	if errors.Is(err, service.ErrMemberNotFound) {
		h.renderUsers(w, r, http.StatusNotFound, pages.Flash{Error: "That user no longer exists."})
		return
	}
	if err != nil {
		status, msg := failure(err, "failed to set role", "admin_id", admin.ID, "user_id", userID)
		h.renderUsers(w, r, status, pages.Flash{Error: msg})
		return
	}

	middleware.Redirect(w, r, "/admin/users?notice=role")
}
