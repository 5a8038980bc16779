package handler_test

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/pairtrack/pairtrack/internal/handler"
	"github.com/pairtrack/pairtrack/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdminHandler(f *fixture) *handler.AdminHandler {
	return handler.NewAdminHandler(f.cycles, f.pairing, f.members, f.reports)
}

func TestAdminHomeShowsCounts(t *testing.T) {
	f := newFixture(t)
	h := newAdminHandler(f)
	admin := f.admin(t)

	rec := serve("GET /admin", h.HomePage, as(get("/admin?notice=reset"), admin))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Week reset to the current Monday..Sunday.")
	assert.Contains(t, body, "1 pairs")
}

func TestAdminSetRange(t *testing.T) {
	f := newFixture(t)
	h := newAdminHandler(f)
	admin := f.admin(t)

	rec := serve("POST /admin/week/range", h.SetRange, as(post("/admin/week/range", url.Values{"start": {"next monday"}, "end": {"2025-01-12"}}), admin))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "dates must look like 2025-01-06")

	rec = serve("POST /admin/week/range", h.SetRange, as(post("/admin/week/range", url.Values{"start": {"2025-01-12"}, "end": {"2025-01-06"}}), admin))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = serve("POST /admin/week/range", h.SetRange, as(post("/admin/week/range", url.Values{"start": {"2025-01-06"}, "end": {"2025-01-12"}}), admin))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin?notice=range", rec.Header().Get("Location"))

	cycle, err := f.cycles.Active()
	require.NoError(t, err)
	assert.Equal(t, "2025-01-06", model.FormatDate(cycle.WeekStartDate))
	assert.Equal(t, "2025-01-12", model.FormatDate(cycle.WeekEndDate))
}

func TestAdminResetClearsPairs(t *testing.T) {
	f := newFixture(t)
	h := newAdminHandler(f)
	admin := f.admin(t)

	rec := serve("POST /admin/week/reset", h.ResetWeek, as(post("/admin/week/reset", nil), admin))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin?notice=reset", rec.Header().Get("Location"))

	overview, err := f.pairing.Overview()
	require.NoError(t, err)
	assert.Empty(t, overview.Pairs)
}

func TestAdminReport(t *testing.T) {
	f := newFixture(t)
	h := newAdminHandler(f)
	admin := f.admin(t)

	_, err := f.room.AddGoal(f.pairID, f.ada.ID, "Read", "")
	require.NoError(t, err)
	cycle, err := f.cycles.Active()
	require.NoError(t, err)

	rec := serve("GET /admin/cycles/{id}/report", h.Report, as(get("/admin/cycles/"+cycle.ID+"/report?download=1"), admin))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")

	var report model.CycleReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, cycle.ID, report.CycleID)
	require.Len(t, report.Pairs, 1)
	require.Len(t, report.Pairs[0].Goals, 1)
	assert.Equal(t, "Read", report.Pairs[0].Goals[0].Title)

	rec = serve("GET /admin/cycles/{id}/report", h.Report, as(get("/admin/cycles/missing/report"), admin))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminPairs(t *testing.T) {
	f := newFixture(t)
	h := newAdminHandler(f)
	admin := f.admin(t)

	rec := serve("POST /admin/pairs/manual", h.ManualPair, as(post("/admin/pairs/manual", url.Values{"member_a": {f.ada.ID}, "member_b": {f.cy.ID}}), admin))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = serve("POST /admin/pairs/{id}/remove", h.RemovePair, as(post("/admin/pairs/"+f.pairID+"/remove", nil), admin))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/pairs?notice=removed", rec.Header().Get("Location"))

	rec = serve("POST /admin/pairs/{id}/remove", h.RemovePair, as(post("/admin/pairs/"+f.pairID+"/remove", nil), admin))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve("POST /admin/pairs/manual", h.ManualPair, as(post("/admin/pairs/manual", url.Values{"member_a": {f.ada.ID}, "member_b": {f.cy.ID}}), admin))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/pairs?notice=paired", rec.Header().Get("Location"))

	rec = serve("POST /admin/pairs/auto", h.AutoPair, as(post("/admin/pairs/auto", nil), admin))
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	rec = serve("GET /admin/pairs", h.PairsPage, as(get("/admin/pairs?notice=auto"), admin))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Members were paired for this week.")
}

func TestAdminSetRole(t *testing.T) {
	f := newFixture(t)
	h := newAdminHandler(f)
	admin := f.admin(t)
	pattern := "POST /admin/users/{id}/role"

	rec := serve(pattern, h.SetRole, as(post("/admin/users/"+admin.ID+"/role", url.Values{"role": {"member"}}), admin))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "you cannot remove your own admin role")

	rec = serve(pattern, h.SetRole, as(post("/admin/users/missing/role", url.Values{"role": {"admin"}}), admin))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(pattern, h.SetRole, as(post("/admin/users/"+f.cy.ID+"/role", url.Values{"role": {"admin"}}), admin))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/users?notice=role", rec.Header().Get("Location"))

	profile, err := f.members.ByID(f.cy.ID)
	require.NoError(t, err)
	assert.True(t, profile.IsAdmin())
}
