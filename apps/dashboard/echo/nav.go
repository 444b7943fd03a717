package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/guard"
	"github.com/trezcool/darasa/core/nav"
	"github.com/trezcool/darasa/core/session"
)

type NavResponse struct {
	Entries []nav.Entry `json:"entries"`
}

// navMenu resolves the navigation menu for the current session. The
// resolver never navigates itself; when it signals that a login is needed,
// this endpoint answers 401 with the right entry point for the client to go to.
func (s *server) navMenu(ctx echo.Context) error {
	store, err := s.openSession(ctx)
	if err != nil {
		return errors.Wrap(err, "loading session")
	}

	sess := session.Session{}
	if store != nil {
		sess = store.Session()
	}
	if !sess.Authenticated() {
		sess.Role = session.RoleNone
	}

	entries, err := nav.Resolve(sess.Role, sess.OrganizationScope)
	if err != nil {
		entry := guard.LoginPath
		if sess.Role == session.RoleOrgAdmin {
			entry = guard.OrgLoginPath
		}
		return ctx.JSON(http.StatusUnauthorized, LoginResponse{Redirect: entry})
	}
	return ctx.JSON(http.StatusOK, NavResponse{Entries: entries})
}
