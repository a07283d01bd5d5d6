package guard

import (
	"net"
	"net/http"
	"strings"

	"github.com/launchkit/launchkit/internal/metrics"
	"github.com/rs/zerolog/log"
)

// IPHeader is stamped with the observed client IP on every pass-through and
// redirect response. It is left absent when no source IP can be determined.
const IPHeader = "X-Socket-IP"

// SessionOracle answers whether the request carries a valid session. An
// error means the check itself failed and must fail the request; it is
// never downgraded to "not authenticated".
type SessionOracle interface {
	IsAuthenticated(r *http.Request) (bool, error)
}

// Guard evaluates every inbound request against the route classification
// and the session oracle. It holds no per-request state.
type Guard struct {
	oracle   SessionOracle
	matchers Matchers
	routes   Routes
	clientIP func(*http.Request) string
}

// New creates a route guard.
func New(oracle SessionOracle, matchers Matchers, routes Routes) *Guard {
	return &Guard{
		oracle:   oracle,
		matchers: matchers,
		routes:   routes,
		clientIP: ClientIP,
	}
}

// Middleware wraps next with the guard evaluation.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		class := g.matchers.Classify(r.URL.Path)

		// Logout is never gated; the oracle is not consulted at all.
		if class == RouteLogout {
			g.finish(w, r, class, Decision{Action: ActionPass}, next)
			return
		}

		authenticated, err := g.oracle.IsAuthenticated(r)
		if err != nil {
			log.Error().Err(err).
				Str("path", r.URL.Path).
				Str("class", string(class)).
				Msg("Session verification failed")
			metrics.GuardDecisionsTotal.WithLabelValues(string(class), "error").Inc()
			http.Error(w, "session verification failed", http.StatusInternalServerError)
			return
		}

		g.finish(w, r, class, Decide(class, authenticated, g.routes), next)
	})
}

func (g *Guard) finish(w http.ResponseWriter, r *http.Request, class RouteClass, d Decision, next http.Handler) {
	g.stampIP(w, r)
	metrics.GuardDecisionsTotal.WithLabelValues(string(class), string(d.Action)).Inc()

	if d.Action == ActionRedirect {
		http.Redirect(w, r, d.Target, http.StatusFound)
		return
	}
	next.ServeHTTP(w, r)
}

func (g *Guard) stampIP(w http.ResponseWriter, r *http.Request) {
	if ip := g.clientIP(r); ip != "" {
		w.Header().Set(IPHeader, ip)
	} else {
		w.Header().Del(IPHeader)
	}
}

// ClientIP extracts the source IP of a request: the first hop of
// X-Forwarded-For when present, otherwise the RemoteAddr host. Returns ""
// when neither is available.
func ClientIP(r *http.Request) string {
	if xff := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			return strings.TrimSpace(xff[:i])
		}
		return xff
	}
	if r.RemoteAddr == "" {
		return ""
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
