package app

import (
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"github.com/launchkit/launchkit/internal/billing"
	"github.com/launchkit/launchkit/internal/store"
	"github.com/rs/zerolog/log"
)

const sessionTTL = 24 * time.Hour

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}}</title>
</head>
<body>
  <h1>{{.Title}}</h1>
  {{if .UserID}}<p>Signed in as {{.UserID}}. <a href="/logout">Log out</a></p>{{end}}
  {{if .Subscription}}
  <dl>
    <dt>Plan</dt><dd>{{.Subscription.Plan}} ({{.Subscription.PlanName}})</dd>
    <dt>Status</dt><dd>{{.Subscription.Status}}</dd>
  </dl>
  {{end}}
  {{if .LoginForm}}
  <form method="POST" action="{{.FormAction}}">
    <label for="user">User ID</label>
    <input id="user" name="user" type="text" required>
    <button type="submit">Continue</button>
  </form>
  {{end}}
</body>
</html>
`))

type pageData struct {
	Title        string
	UserID       string
	Subscription *store.SubscriptionRecord
	LoginForm    bool
	FormAction   string
}

type pageHandlers struct {
	deps *Deps
}

func newPageHandlers(deps *Deps) *pageHandlers {
	return &pageHandlers{deps: deps}
}

func (h *pageHandlers) render(w http.ResponseWriter, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		log.Error().Err(err).Str("page", data.Title).Msg("Render page")
	}
}

func (h *pageHandlers) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	h.render(w, pageData{Title: "LaunchKit"})
}

// handleLogin renders the login form and, on POST, establishes a session.
// The starter has no user database: the submitted user ID becomes the
// session subject. Replace with a real credential check.
func (h *pageHandlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		h.establishSession(w, r)
		return
	}
	h.render(w, pageData{Title: "Log in", LoginForm: true, FormAction: "/login"})
}

func (h *pageHandlers) handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		h.establishSession(w, r)
		return
	}
	h.render(w, pageData{Title: "Sign up", LoginForm: true, FormAction: "/signup"})
}

func (h *pageHandlers) establishSession(w http.ResponseWriter, r *http.Request) {
	userID := r.PostFormValue("user")
	if userID == "" {
		http.Error(w, "user is required", http.StatusBadRequest)
		return
	}
	token, err := h.deps.Sessions.Issue(userID, sessionTTL)
	if err != nil {
		log.Error().Err(err).Msg("Issue session")
		http.Error(w, "could not establish session", http.StatusInternalServerError)
		return
	}
	h.deps.Sessions.SetCookie(w, token, sessionTTL)
	http.Redirect(w, r, h.deps.Config.LandingRoute, http.StatusFound)
}

func (h *pageHandlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.deps.Sessions.ClearCookie(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *pageHandlers) handleDashboard(w http.ResponseWriter, r *http.Request) {
	userID := h.deps.Sessions.UserID(r)
	sub, err := h.deps.Store.GetByUserID(userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Load subscription")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.render(w, pageData{Title: "Dashboard", UserID: userID, Subscription: sub})
}

func (h *pageHandlers) handleSettings(w http.ResponseWriter, r *http.Request) {
	h.render(w, pageData{Title: "Settings", UserID: h.deps.Sessions.UserID(r)})
}

func handleListPrices(reconciler *billing.Reconciler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		prices, err := reconciler.ListActivePrices(r.Context())
		if err != nil {
			log.Error().Err(err).Msg("List prices")
			http.Error(w, "price listing unavailable", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(prices); err != nil {
			log.Error().Err(err).Msg("Encode price list")
		}
	}
}
