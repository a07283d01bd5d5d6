package guard

import (
	wildcard "github.com/IGLOU-EU/go-wildcard/v2"
)

// RouteClass is the access-control category of a request path.
type RouteClass string

const (
	RouteLogout    RouteClass = "logout"
	RouteAuth      RouteClass = "auth"
	RouteProtected RouteClass = "protected"
	RouteOther     RouteClass = "other"
)

// Matchers is the ordered route-classification configuration. Patterns are
// glob-style ("/dashboard*", "/settings/*"); a pattern with no wildcard is an
// exact match.
type Matchers struct {
	Protected []string
	Auth      []string
	Logout    []string
}

// DefaultMatchers returns the starter's route layout.
func DefaultMatchers() Matchers {
	return Matchers{
		Protected: []string{"/dashboard", "/dashboard/*", "/settings", "/settings/*"},
		Auth:      []string{"/login", "/signup"},
		Logout:    []string{"/logout"},
	}
}

// Classify maps a request path to its route class. Evaluation order is
// logout > auth > protected, first match wins; everything else is
// RouteOther. Every path lands in exactly one class.
func (m Matchers) Classify(path string) RouteClass {
	switch {
	case matchAny(m.Logout, path):
		return RouteLogout
	case matchAny(m.Auth, path):
		return RouteAuth
	case matchAny(m.Protected, path):
		return RouteProtected
	default:
		return RouteOther
	}
}

func matchAny(patterns []string, path string) bool {
	for _, p := range patterns {
		if p == "" {
			continue
		}
		if wildcard.Match(p, path) {
			return true
		}
	}
	return false
}
