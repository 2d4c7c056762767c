// Package guard decides whether the caller may open a route and wires that
// decision into gin.
package guard

import (
	"market_backend/internal/feature/auth/domain/entity"
	"market_backend/internal/feature/auth/usecase"
)

// LoginPath is where signed-out callers are sent.
const LoginPath = "/login"

// Outcome is the result of evaluating a route's allow-list.
type Outcome int

const (
	// Unresolved means the identity is known but the profile is still loading; render nothing.
	Unresolved Outcome = iota
	// Unauthorized means no one is signed in.
	Unauthorized
	// Forbidden means the caller's role is not on the allow-list.
	Forbidden
	// Authorized means the route may be served.
	Authorized
)

func (o Outcome) String() string {
	switch o {
	case Unresolved:
		return "unresolved"
	case Unauthorized:
		return "unauthorized"
	case Forbidden:
		return "forbidden"
	case Authorized:
		return "authorized"
	default:
		return "unknown"
	}
}

// Decision is an Outcome plus where to send the caller instead.
type Decision struct {
	Outcome  Outcome
	Redirect string // empty unless Unauthorized or Forbidden
}

// Evaluate applies allow to state. It has no side effects.
func Evaluate(state usecase.State, allow []entity.Role) Decision {
	switch state.Status {
	case usecase.StatusSignedOut:
		return Decision{Outcome: Unauthorized, Redirect: LoginPath}
	case usecase.StatusUnresolved:
		return Decision{Outcome: Unresolved}
	case usecase.StatusSignedIn:
		if state.Session == nil {
			return Decision{Outcome: Unauthorized, Redirect: LoginPath}
		}
		role := state.Session.Role()
		if !role.In(allow) {
			return Decision{Outcome: Forbidden, Redirect: role.DefaultRoute()}
		}
		return Decision{Outcome: Authorized}
	default:
		return Decision{Outcome: Unauthorized, Redirect: LoginPath}
	}
}
