package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/launchkit/launchkit/internal/billing"
	"github.com/launchkit/launchkit/internal/guard"
	"github.com/launchkit/launchkit/internal/session"
	"github.com/launchkit/launchkit/internal/store"
)

func newTestDeps(t *testing.T) *Deps {
	t.Helper()

	st, err := store.NewSubscriptionStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewSubscriptionStore: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	sessions, err := session.NewCookieVerifier([]byte("test-secret"), "")
	if err != nil {
		t.Fatal(err)
	}

	return &Deps{
		Config: &Config{
			DataDir:             t.TempDir(),
			BindAddress:         "127.0.0.1",
			Port:                8080,
			SessionSecret:       "test-secret",
			AdminKey:            "admin-key",
			StripeWebhookSecret: "whsec_test",
			LoginRoute:          "/login",
			LandingRoute:        "/dashboard",
			ProtectedRoutes:     []string{"/dashboard", "/dashboard/*", "/settings", "/settings/*"},
			AuthRoutes:          []string{"/login", "/signup"},
			LogoutRoutes:        []string{"/logout"},
		},
		Store:      st,
		Reconciler: billing.NewReconciler(st),
		Sessions:   sessions,
		Version:    "test",
	}
}

func newTestMux(t *testing.T) (*http.ServeMux, *Deps) {
	t.Helper()
	deps := newTestDeps(t)
	mux := http.NewServeMux()
	RegisterRoutes(mux, deps)
	return mux, deps
}

func TestHealthz(t *testing.T) {
	mux, _ := newTestMux(t)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestReadyz(t *testing.T) {
	mux, _ := newTestMux(t)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestMetricsRequiresAdminKey(t *testing.T) {
	mux, _ := newTestMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("X-Admin-Key", "admin-key")
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("authenticated status = %d, want 200", rec.Code)
	}
}

func TestProtectedPageRedirectsToLogin(t *testing.T) {
	mux, _ := newTestMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}
}

func TestLoginFlow(t *testing.T) {
	mux, deps := newTestMux(t)

	// Establish a session.
	form := strings.NewReader("user=user_1")
	req := httptest.NewRequest(http.MethodPost, "/login", form)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusFound {
		t.Fatalf("login status = %d, want 302", rec.Code)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected session cookie")
	}

	// The dashboard now passes through and shows the subscription.
	if err := deps.Store.Upsert(&store.SubscriptionRecord{
		UserID:   "user_1",
		Plan:     store.PlanPro,
		PlanName: "Pro",
		Status:   store.StatusActive,
	}); err != nil {
		t.Fatal(err)
	}

	req = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard status = %d, want 200", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, "PRO") {
		t.Errorf("dashboard body does not mention plan: %q", body)
	}

	// An authenticated user on an auth route bounces to the landing page.
	req = httptest.NewRequest(http.MethodGet, "/login", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusFound {
		t.Fatalf("auth-route status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/dashboard" {
		t.Errorf("Location = %q, want /dashboard", loc)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	mux, deps := newTestMux(t)

	token, err := deps.Sessions.Issue("user_1", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: session.DefaultCookieName, Value: token})
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.DefaultCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("session cookie was not cleared")
	}
}

func TestPagesStampIPHeader(t *testing.T) {
	mux, _ := newTestMux(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.5:40000"
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get(guard.IPHeader); got != "203.0.113.5" {
		t.Errorf("%s = %q, want 203.0.113.5", guard.IPHeader, got)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)

	if !rl.Allow("10.0.0.1") || !rl.Allow("10.0.0.1") {
		t.Fatal("first two attempts should pass")
	}
	if rl.Allow("10.0.0.1") {
		t.Error("third attempt should be limited")
	}
	// Other IPs are tracked independently.
	if !rl.Allow("10.0.0.2") {
		t.Error("different IP should pass")
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rec.Code)
	}
}

func TestAdminKeyMiddlewareBearer(t *testing.T) {
	handler := AdminKeyMiddleware("secret-key", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer secret-key")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("bearer status = %d, want 200", rec.Code)
	}

	// An empty configured key always denies.
	denyAll := AdminKeyMiddleware("", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rec = httptest.NewRecorder()
	denyAll.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("empty-key status = %d, want 401", rec.Code)
	}
}
