package pages

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/pairtrack/pairtrack/internal/ctxkeys"
	"github.com/pairtrack/pairtrack/internal/model"
	"github.com/pairtrack/pairtrack/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func render(t *testing.T, ctx context.Context, c templ.Component) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, c.Render(ctx, &sb))
	return sb.String()
}

func memberCtx(role string) context.Context {
	ctx := ctxkeys.WithProfile(context.Background(), &model.Profile{ID: "u1", FullName: strPtr("Ada"), Role: role})
	ctx = ctxkeys.WithCSRFToken(ctx, "tok123")
	return templ.WithNonce(ctx, "n0nce")
}

func TestLayoutNav(t *testing.T) {
	out := render(t, memberCtx(model.RoleAdmin), Message("Hello", "World"))
	assert.Contains(t, out, `<script nonce="n0nce">`)
	assert.Contains(t, out, `href="/admin"`)
	assert.Contains(t, out, `value="tok123"`)

	out = render(t, memberCtx(model.RoleMember), Message("Hello", "World"))
	assert.NotContains(t, out, `href="/admin"`)

	out = render(t, context.Background(), Message("Hello", "World"))
	assert.Contains(t, out, `href="/login"`)
}

func TestNavMarksCurrentSection(t *testing.T) {
	ctx := ctxkeys.WithURLPath(memberCtx(model.RoleAdmin), "/admin/pairs")
	out := render(t, ctx, Message("Hello", "World"))
	assert.Contains(t, out, `<a href="/admin" class="underline" aria-current="page">Admin</a>`)
	assert.Contains(t, out, `<a href="/dashboard">Dashboard</a>`)
}

func TestLoginShowsErrorAndProviders(t *testing.T) {
	out := render(t, context.Background(), Login(AuthForm{Email: "ada@example.com", Error: "invalid email or password", GitHub: true}))
	assert.Contains(t, out, "invalid email or password")
	assert.Contains(t, out, `value="ada@example.com"`)
	assert.Contains(t, out, `/auth/github`)
	assert.NotContains(t, out, `/auth/google`)
}

func TestRoomRendersGoalsAndSanitizesMarkdown(t *testing.T) {
	progress := 40
	view := &service.RoomView{
		PairID:       "p1",
		Me:           model.PairMemberProfile{PairID: "p1", UserID: "u1", FullName: strPtr("Ada")},
		Partner:      &model.PairMemberProfile{PairID: "p1", UserID: "u2", FullName: strPtr("Bob")},
		MyGoals:      []*model.Goal{{ID: "g1", Title: "Run <fast>", Status: model.GoalStatusInProgress, Progress: 40, Notes: strPtr("**daily**")}},
		PartnerGoals: []*model.Goal{{ID: "g2", Title: "Read", Status: model.GoalStatusNotStarted}},
		Comments:     []*model.Comment{{ID: "c1", UserID: "u2", Body: "go <script>alert(1)</script>", CreatedAt: time.Now()}},
		CheckIns:     []*model.CheckIn{{GoalUpdate: model.GoalUpdate{ID: "cu1", UserID: "u1", Progress: &progress, CreatedAt: time.Now()}, GoalTitle: "Run"}},
		Names:        map[string]string{"u1": "Ada", "u2": "Bob"},
	}

	out := render(t, memberCtx(model.RoleMember), Room(RoomData{View: view}))

	assert.Contains(t, out, "Run &lt;fast&gt;")
	assert.Contains(t, out, "<strong>daily</strong>")
	assert.Contains(t, out, `action="/room/p1/goals/g1/checkins"`)
	assert.NotContains(t, out, `action="/room/p1/goals/g2"`)
	assert.Contains(t, out, "Bob&#39;s goals")
	assert.Contains(t, out, "In Progress")
	assert.Contains(t, out, "Ada on Run · 40%")
	assert.NotContains(t, out, "<script>alert")
}

func TestAdminPairsManualFormNeedsTwoUnpaired(t *testing.T) {
	overview := &service.PairingOverview{
		Cycle:    &model.WeeklyCycle{ID: "c1", Status: model.CycleStatusActive, WeekStartDate: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), WeekEndDate: time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC)},
		Unpaired: []*model.Profile{{ID: "a", FullName: strPtr("Ada")}},
	}
	out := render(t, memberCtx(model.RoleAdmin), AdminPairs(AdminPairsData{Overview: overview, Flash: Flash{Error: "pick two different unpaired members"}}))
	assert.Contains(t, out, "2025-01-06 → 2025-01-12")
	assert.Contains(t, out, "pick two different unpaired members")
	assert.NotContains(t, out, `action="/admin/pairs/manual"`)

	overview.Unpaired = append(overview.Unpaired, &model.Profile{ID: "b", FullName: strPtr("Bob")})
	out = render(t, memberCtx(model.RoleAdmin), AdminPairs(AdminPairsData{Overview: overview}))
	assert.Contains(t, out, `action="/admin/pairs/manual"`)
}
