package app

import (
	"net/http"
	"time"

	"github.com/launchkit/launchkit/internal/billing"
	"github.com/launchkit/launchkit/internal/guard"
	"github.com/launchkit/launchkit/internal/session"
	"github.com/launchkit/launchkit/internal/store"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps holds shared dependencies injected into HTTP handlers.
type Deps struct {
	Config     *Config
	Store      *store.SubscriptionStore
	Reconciler *billing.Reconciler
	Sessions   *session.CookieVerifier
	Version    string
}

// RegisterRoutes wires all HTTP handlers onto the given ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps *Deps) {
	adminAuth := func(next http.Handler) http.Handler {
		return AdminKeyMiddleware(deps.Config.AdminKey, next)
	}

	// Health / readiness are unauthenticated liveness/readiness probes.
	mux.HandleFunc("/healthz", handleHealthz)
	mux.HandleFunc("/readyz", handleReadyz(deps.Store))

	// Metrics are private by default.
	metricsHandler := promhttp.Handler()
	if deps.Config.PublicMetrics {
		mux.Handle("/metrics", metricsHandler)
	} else {
		mux.Handle("/metrics", adminAuth(metricsHandler))
	}

	// Stripe webhook (signature-authenticated)
	reconciler := deps.Reconciler
	if reconciler == nil {
		reconciler = billing.NewReconciler(deps.Store)
	}
	webhookHandler := billing.NewWebhookHandler(deps.Config.StripeWebhookSecret, reconciler)
	webhookLimiter := NewRateLimiter(120, time.Minute)
	mux.Handle("/api/stripe/webhook", webhookLimiter.Middleware(webhookHandler))

	// Active price listing for the pricing page.
	mux.Handle("/api/prices", handleListPrices(reconciler))

	// Pages, gated by the route guard. The guard decides pass vs. redirect
	// for every request reaching these routes.
	g := guard.New(deps.Sessions, guard.Matchers{
		Protected: deps.Config.ProtectedRoutes,
		Auth:      deps.Config.AuthRoutes,
		Logout:    deps.Config.LogoutRoutes,
	}, guard.Routes{
		Login:   deps.Config.LoginRoute,
		Landing: deps.Config.LandingRoute,
	})

	pages := newPageHandlers(deps)
	pageMux := http.NewServeMux()
	pageMux.HandleFunc("/", pages.handleHome)
	pageMux.HandleFunc("/login", pages.handleLogin)
	pageMux.HandleFunc("/signup", pages.handleSignup)
	pageMux.HandleFunc("/logout", pages.handleLogout)
	pageMux.HandleFunc("/dashboard", pages.handleDashboard)
	pageMux.HandleFunc("/settings", pages.handleSettings)

	mux.Handle("/", SecurityHeaders(g.Middleware(pageMux)))
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReadyz(st *store.SubscriptionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		if err := st.Ping(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	}
}
