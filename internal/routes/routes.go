package routes

import (
	"io/fs"
	"net/http"

	"github.com/pairtrack/pairtrack/assets"
	"github.com/pairtrack/pairtrack/internal/app"
	"github.com/pairtrack/pairtrack/internal/handler"
	"github.com/pairtrack/pairtrack/internal/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	home := handler.NewHomeHandler(app.DB)
	auth := handler.NewAuthHandler(app.AuthService, app.Cfg)
	profile := handler.NewProfileHandler(app.MemberService)
	dashboard := handler.NewDashboardHandler(app.CycleService, app.PairingService)
	room := handler.NewRoomHandler(app.RoomService, app.CycleService)
	admin := handler.NewAdminHandler(app.CycleService, app.PairingService, app.MemberService, app.ReportService)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	// Static files
	sub, _ := fs.Sub(assets.AssetsFS, ".")
	mux.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServer(http.FS(sub))))

	mux.HandleFunc("GET /{$}", home.HomePage)
	mux.HandleFunc("GET /healthz", home.Healthz)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Auth (rate limited)
	rateLimiter := middleware.RateLimitAuth()

	mux.HandleFunc("GET /login", middleware.RequireGuest(auth.LoginPage))
	mux.HandleFunc("POST /login", rateLimiter(middleware.RequireGuest(auth.Login)))
	mux.HandleFunc("GET /signup", middleware.RequireGuest(auth.SignupPage))
	mux.HandleFunc("POST /signup", rateLimiter(middleware.RequireGuest(auth.Signup)))
	mux.HandleFunc("GET /auth/verify/{token}", auth.VerifyEmail)
	mux.HandleFunc("POST /logout", auth.Logout)

	// OAuth
	for _, provider := range []string{"google", "github"} {
		mux.HandleFunc("GET /auth/"+provider, rateLimiter(middleware.RequireGuest(auth.OAuthStart(provider))))
		mux.HandleFunc("GET /auth/"+provider+"/callback", rateLimiter(auth.OAuthCallback(provider)))
	}

	// ============================================================================
	// MEMBER ROUTES
	// ============================================================================

	mux.HandleFunc("GET /dashboard", middleware.RequireAuth(dashboard.DashboardPage))
	mux.HandleFunc("GET /profile", middleware.RequireAuth(profile.ProfilePage))
	mux.HandleFunc("POST /profile", middleware.RequireAuth(profile.UpdateName))

	// Pair room
	mux.HandleFunc("GET /room/{pairId}", middleware.RequireAuth(room.RoomPage))
	mux.HandleFunc("POST /room/{pairId}/goals", middleware.RequireAuth(room.AddGoal))
	mux.HandleFunc("POST /room/{pairId}/goals/{goalId}", middleware.RequireAuth(room.UpdateGoal))
	mux.HandleFunc("POST /room/{pairId}/goals/{goalId}/checkins", middleware.RequireAuth(room.CheckIn))
	mux.HandleFunc("POST /room/{pairId}/comments", middleware.RequireAuth(room.AddComment))

	// ============================================================================
	// ADMIN ROUTES
	// ============================================================================

	mux.HandleFunc("GET /admin", middleware.RequireAdmin(admin.HomePage))
	mux.HandleFunc("POST /admin/week/reset", middleware.RequireAdmin(admin.ResetWeek))
	mux.HandleFunc("POST /admin/week/start", middleware.RequireAdmin(admin.StartWeek))
	mux.HandleFunc("POST /admin/week/range", middleware.RequireAdmin(admin.SetRange))
	mux.HandleFunc("GET /admin/cycles/{id}/report", middleware.RequireAdmin(admin.Report))

	mux.HandleFunc("GET /admin/pairs", middleware.RequireAdmin(admin.PairsPage))
	mux.HandleFunc("POST /admin/pairs/auto", middleware.RequireAdmin(admin.AutoPair))
	mux.HandleFunc("POST /admin/pairs/manual", middleware.RequireAdmin(admin.ManualPair))
	mux.HandleFunc("POST /admin/pairs/{id}/remove", middleware.RequireAdmin(admin.RemovePair))

	mux.HandleFunc("GET /admin/users", middleware.RequireAdmin(admin.UsersPage))
	mux.HandleFunc("POST /admin/users/{id}/role", middleware.RequireAdmin(admin.SetRole))

	// ============================================================================
	// FALLBACK
	// ============================================================================

	mux.HandleFunc("/{path...}", home.NotFoundPage)

	// Global middleware - executed in order (top to bottom)
	return middleware.Chain(
		mux,
		middleware.Config(app.Cfg), // Config must be first (layout reads the app name)
		middleware.NonceMiddleware, // CSP nonce, before SecurityHeaders
		middleware.SecurityHeaders,
		middleware.RequestLogging,
		middleware.CSRFProtection,
		middleware.AuthMiddleware(app.AuthService),
		middleware.WithURLPath,
	)
}
