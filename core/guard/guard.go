// Package guard decides whether a navigation attempt may proceed to a
// protected dashboard view. Each evaluation is a single synchronous check
// against the current session snapshot; the outcome is either "render" or a
// replace-style redirect.
package guard

import "github.com/trezcool/darasa/core/session"

// Audience identifies which portal a guarded route belongs to.
type Audience int

const (
	SuperAdminPortal Audience = iota
	OrgAdminPortal
)

// Login entry points and portal homes.
const (
	LoginPath    = "/login"
	OrgLoginPath = "/loginorg"
	HomePath     = "/dashboard"
	OrgHomePath  = "/org-dashboards/"
)

// LoginEntry returns the login entry point appropriate to the guarded
// route's intended audience.
func (a Audience) LoginEntry() string {
	if a == OrgAdminPortal {
		return OrgLoginPath
	}
	return LoginPath
}

// Requirement describes the guarded route.
type Requirement struct {
	Audience Audience
	// OrgID is the organization id embedded in the guarded route's path,
	// when the route is org-scoped. The session's scope must match it.
	OrgID string
}

type Action int

const (
	Render Action = iota
	Redirect
)

// Decision is the terminal outcome of one guard evaluation.
type Decision struct {
	Action   Action
	Location string // redirect target when Action == Redirect
}

func render() Decision            { return Decision{Action: Render} }
func redirect(to string) Decision { return Decision{Action: Redirect, Location: to} }
func orgHome(scope string) string { return OrgHomePath + scope }

// Evaluate runs the gate for one navigation attempt, reading the current
// session snapshot. No network round-trip, no pending state.
func Evaluate(s session.Session, req Requirement) Decision {
	if !s.Authenticated() {
		return redirect(req.Audience.LoginEntry())
	}

	switch {
	case s.IsSuperAdmin():
		if req.Audience == OrgAdminPortal {
			// wrong audience; send them to their own dashboard
			return redirect(HomePath)
		}
		return render()

	case s.IsOrgAdmin():
		if s.OrganizationScope == "" {
			// inconsistent session; an org admin must have a scope
			return redirect(OrgLoginPath)
		}
		if req.Audience == SuperAdminPortal {
			return redirect(orgHome(s.OrganizationScope))
		}
		if req.OrgID != "" && req.OrgID != s.OrganizationScope {
			// wrongly scoped; back to their own org dashboard
			return redirect(orgHome(s.OrganizationScope))
		}
		return render()
	}

	return redirect(req.Audience.LoginEntry())
}
