package guard

// Action is the outcome kind of a route-guard evaluation.
type Action string

const (
	ActionPass     Action = "pass"
	ActionRedirect Action = "redirect"
)

// Decision is the tagged result of evaluating one request. Target is set
// only for ActionRedirect.
type Decision struct {
	Action Action
	Target string
}

// Routes configures the redirect targets used by Decide.
type Routes struct {
	Login   string // where unauthenticated users on protected paths go
	Landing string // where authenticated users on auth paths go
}

// DefaultRoutes returns the starter's redirect targets.
func DefaultRoutes() Routes {
	return Routes{Login: "/login", Landing: "/dashboard"}
}

// Decide maps a route class and session state to a pass/redirect outcome.
// Logout paths always pass so a broken session can still be torn down.
// It is pure and total: every (class, authenticated) pair yields exactly
// one decision.
func Decide(class RouteClass, authenticated bool, routes Routes) Decision {
	switch {
	case class == RouteLogout:
		return Decision{Action: ActionPass}
	case class == RouteAuth && authenticated:
		return Decision{Action: ActionRedirect, Target: routes.Landing}
	case class == RouteProtected && !authenticated:
		return Decision{Action: ActionRedirect, Target: routes.Login}
	default:
		return Decision{Action: ActionPass}
	}
}
