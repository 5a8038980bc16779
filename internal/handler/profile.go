package handler

import (
	"net/http"
	"strings"

	"github.com/pairtrack/pairtrack/internal/ctxkeys"
	"github.com/pairtrack/pairtrack/internal/middleware"
	"github.com/pairtrack/pairtrack/internal/model"
	"github.com/pairtrack/pairtrack/internal/service"
	"github.com/pairtrack/pairtrack/internal/ui"
	"github.com/pairtrack/pairtrack/internal/ui/pages"
)

type ProfileHandler struct {
	memberService *service.MemberService
}

func NewProfileHandler(memberService *service.MemberService) *ProfileHandler {
	return &ProfileHandler{
		memberService: memberService,
	}
}

func (h *ProfileHandler) ProfilePage(w http.ResponseWriter, r *http.Request) {
	profile := ctxkeys.Profile(r.Context())
	ui.Render(w, r, pages.Profile(h.data(r, profile, fullName(profile), "")))
}

func (h *ProfileHandler) UpdateName(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	profile := ctxkeys.Profile(r.Context())
	name := strings.TrimSpace(r.FormValue("full_name"))

	err := h.memberService.UpdateName(user.ID, name)
	if err != nil {
		status, msg := failure(err, "failed to update name", "user_id", user.ID)
		ui.RenderStatus(w, r, status, pages.Profile(h.data(r, profile, name, msg)))
		return
	}

	middleware.Redirect(w, r, "/profile?saved=1")
}

func (h *ProfileHandler) data(r *http.Request, profile *model.Profile, name, msg string) pages.ProfileData {
	return pages.ProfileData{
		Profile: profile,
		Email:   ctxkeys.User(r.Context()).Email,
		Name:    name,
		Error:   msg,
		Saved:   r.URL.Query().Get("saved") == "1",
	}
}

func fullName(p *model.Profile) string {
	if p == nil || p.FullName == nil {
		return ""
	}
	return *p.FullName
}
