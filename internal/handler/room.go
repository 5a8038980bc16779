package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pairtrack/pairtrack/internal/ctxkeys"
	"github.com/pairtrack/pairtrack/internal/middleware"
	"github.com/pairtrack/pairtrack/internal/service"
	"github.com/pairtrack/pairtrack/internal/ui"
	"github.com/pairtrack/pairtrack/internal/ui/pages"
)

type RoomHandler struct {
	roomService  *service.RoomService
	cycleService *service.CycleService
}

func NewRoomHandler(roomService *service.RoomService, cycleService *service.CycleService) *RoomHandler {
	return &RoomHandler{
		roomService:  roomService,
		cycleService: cycleService,
	}
}

func (h *RoomHandler) RoomPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "")
}

// render shows the room with an optional inline error. Callers outside the
// pair get a 404 so room ids reveal nothing.
func (h *RoomHandler) render(w http.ResponseWriter, r *http.Request, status int, msg string) {
	user := ctxkeys.User(r.Context())
	pairID := r.PathValue("pairId")

	view, err := h.roomService.Room(pairID, user.ID)
	if errors.Is(err, service.ErrNotPairMember) {
		ui.RenderStatus(w, r, http.StatusNotFound, pages.NotFound())
		return
	}
	if err != nil {
		slog.Error("failed to load room", "error", err, "user_id", user.ID, "pair_id", pairID)
		http.Error(w, "Failed to load room", http.StatusInternalServerError)
		return
	}

	cycle, err := activeCycleOrNil(h.cycleService)
	if err != nil {
		slog.Warn("failed to get active cycle for room", "error", err, "pair_id", pairID)
	}

	ui.RenderStatus(w, r, status, pages.Room(pages.RoomData{View: view, Cycle: cycle, Error: msg}))
}

// done redirects back to the room after a successful write, or re-renders it
// with the error.
func (h *RoomHandler) done(w http.ResponseWriter, r *http.Request, err error, action string) {
	if err == nil {
		middleware.Redirect(w, r, "/room/"+r.PathValue("pairId"))
		return
	}
	if errors.Is(err, service.ErrNotPairMember) || errors.Is(err, service.ErrGoalNotFound) {
		ui.RenderStatus(w, r, http.StatusNotFound, pages.NotFound())
		return
	}

	user := ctxkeys.User(r.Context())
	status, msg := failure(err, "room write failed", "action", action, "user_id", user.ID, "pair_id", r.PathValue("pairId"))
	h.render(w, r, status, msg)
}

func (h *RoomHandler) AddGoal(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	_, err := h.roomService.AddGoal(r.PathValue("pairId"), user.ID, r.FormValue("title"), r.FormValue("notes"))
	h.done(w, r, err, "add_goal")
}

func (h *RoomHandler) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	progress, ok := formInt(r, "progress")
	if !ok {
		h.done(w, r, service.ErrInvalidProgress, "update_goal")
		return
	}
	patch := service.GoalPatch{Progress: progress}
	if status := strings.TrimSpace(r.FormValue("status")); status != "" {
		patch.Status = &status
	}

	err := h.ownGoalInPair(r)
	if err == nil {
		_, err = h.roomService.UpdateGoal(r.PathValue("goalId"), user.ID, patch)
	}
	h.done(w, r, err, "update_goal")
}

func (h *RoomHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	progress, ok := formInt(r, "progress")
	if !ok || progress == nil {
		h.done(w, r, service.ErrInvalidProgress, "check_in")
		return
	}

	err := h.ownGoalInPair(r)
	if err == nil {
		_, err = h.roomService.SubmitCheckIn(r.PathValue("goalId"), user.ID, *progress, r.FormValue("note"))
	}
	h.done(w, r, err, "check_in")
}

func (h *RoomHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	_, err := h.roomService.AddComment(r.PathValue("pairId"), user.ID, r.FormValue("body"))
	h.done(w, r, err, "add_comment")
}

// ownGoalInPair checks the goal in the URL belongs to the room in the URL.
func (h *RoomHandler) ownGoalInPair(r *http.Request) error {
	goal, err := h.roomService.Goal(r.PathValue("goalId"))
	if err != nil {
		return err
	}
	if goal.PairID != r.PathValue("pairId") {
		return service.ErrGoalNotFound
	}
	return nil
}
