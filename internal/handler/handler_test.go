package handler_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/pairtrack/pairtrack/internal/ctxkeys"
	"github.com/pairtrack/pairtrack/internal/handler"
	"github.com/pairtrack/pairtrack/internal/model"
	"github.com/pairtrack/pairtrack/internal/repository"
	"github.com/pairtrack/pairtrack/internal/service"
	"github.com/pairtrack/pairtrack/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store   *repository.Store
	cycles  *service.CycleService
	pairing *service.PairingService
	room    *service.RoomService
	members *service.MemberService
	reports *service.ReportService

	ada, bob, cy *model.Profile
	pairID       string
}

// newFixture pairs ada with bob for the current week and leaves cy unpaired.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := testutil.NewStore(t)
	f := &fixture{
		store:   store,
		cycles:  service.NewCycleService(store, nil, time.UTC),
		pairing: service.NewPairingService(store, nil),
		members: service.NewMemberService(store),
		reports: service.NewReportService(store, nil),
	}
	f.room = service.NewRoomService(store, f.pairing, nil, 0)

	people := testutil.CreateMembers(t, store, "ada", "bob", "cy")
	f.ada, f.bob, f.cy = people[0], people[1], people[2]

	_, err := f.cycles.ResetToCurrentWeek()
	require.NoError(t, err)
	pair, err := f.pairing.ManualPair(f.ada.ID, f.bob.ID)
	require.NoError(t, err)
	f.pairID = pair.ID
	return f
}

func (f *fixture) admin(t *testing.T) *model.Profile {
	t.Helper()
	return testutil.CreateUser(t, f.store, "root", model.RoleAdmin)
}

// as attaches the caller's identity the way AuthMiddleware does.
func as(r *http.Request, p *model.Profile) *http.Request {
	email := ""
	if p.Email != nil {
		email = *p.Email
	}
	ctx := ctxkeys.WithUser(r.Context(), &model.User{ID: p.ID, Email: email})
	ctx = ctxkeys.WithProfile(ctx, p)
	return r.WithContext(ctx)
}

func get(target string) *http.Request {
	return httptest.NewRequest(http.MethodGet, target, nil)
}

func post(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// serve routes req through a mux so path values resolve like in production.
func serve(pattern string, h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, h)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHomeRedirects(t *testing.T) {
	f := newFixture(t)
	h := handler.NewHomeHandler(f.store.DB())

	rec := httptest.NewRecorder()
	h.HomePage(rec, get("/"))
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	h.HomePage(rec, as(get("/"), f.ada))
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	h := handler.NewHomeHandler(f.store.DB())

	rec := httptest.NewRecorder()
	h.Healthz(rec, get("/healthz"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())

	require.NoError(t, f.store.DB().Close())
	rec = httptest.NewRecorder()
	h.Healthz(rec, get("/healthz"))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestNotFoundPage(t *testing.T) {
	h := handler.NewHomeHandler(nil)

	rec := httptest.NewRecorder()
	h.NotFoundPage(rec, get("/nope"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Not found")
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	h := handler.NewDashboardHandler(f.cycles, f.pairing)

	rec := httptest.NewRecorder()
	h.DashboardPage(rec, as(get("/dashboard"), f.ada))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/room/"+f.pairID, rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	h.DashboardPage(rec, as(get("/dashboard"), f.cy))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "not been paired")
}

func TestProfileUpdateName(t *testing.T) {
	f := newFixture(t)
	h := handler.NewProfileHandler(f.members)

	rec := httptest.NewRecorder()
	h.UpdateName(rec, as(post("/profile", url.Values{"full_name": {"   "}}), f.cy))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "name is required")

	rec = httptest.NewRecorder()
	h.UpdateName(rec, as(post("/profile", url.Values{"full_name": {"Cyrus"}}), f.cy))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/profile?saved=1", rec.Header().Get("Location"))

	profile, err := f.members.ByID(f.cy.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cyrus", profile.DisplayName())
}
