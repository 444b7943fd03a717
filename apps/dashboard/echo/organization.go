package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/session"
	platformsvc "github.com/trezcool/darasa/services/platform"
)

// organizationDetail fetches the organization shown in the account menu from
// the platform API. The snapshot taken before the round-trip is compared
// against the live session afterwards so a response arriving after a logout
// or org switch is discarded instead of applied to a stale session.
func (s *server) organizationDetail(ctx echo.Context) error {
	store := contextStore(ctx)
	if store == nil {
		return errUnauthorized
	}
	snapshot := store.Session()

	orgID := snapshot.OrganizationScope
	if snapshot.Role == session.RoleSuperAdmin {
		orgID = core.CleanString(ctx.QueryParam("id"), true /* lower */)
	}
	if orgID == "" {
		return errHttpNotFound
	}

	org, err := s.deps.Platform.Organization(ctx.Request().Context(), snapshot.AuthToken, orgID)
	if err != nil {
		switch errors.Cause(err) {
		case platformsvc.ErrUnauthorized:
			// token no longer accepted upstream: the session is dead
			if cerr := store.Clear(); cerr != nil {
				s.deps.Logger.Error("clearing rejected session", cerr)
			}
			return errUnauthorized
		case platformsvc.ErrNotFound:
			return errHttpNotFound
		}
		s.deps.Logger.Error("fetching organization details", err)
		return errOrgUnavailable
	}

	if cur := store.Session(); cur.AuthToken != snapshot.AuthToken || cur.OrganizationScope != snapshot.OrganizationScope {
		// session changed while the fetch was in flight; discard
		return ctx.NoContent(http.StatusNoContent)
	}
	return ctx.JSON(http.StatusOK, org)
}
