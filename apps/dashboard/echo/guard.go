package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/guard"
)

// guardMiddleware gates a portal route group. It loads the client's session,
// stashes the store in the context and evaluates the route guard; redirects
// are replace navigations (no back-button return to the guarded page).
func (s *server) guardMiddleware(aud guard.Audience) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			store, err := s.openSession(ctx)
			if err != nil {
				return errors.Wrap(err, "loading session")
			}
			if store != nil {
				ctx.Set(contextStoreKey, store)
			}

			req := guard.Requirement{Audience: aud, OrgID: ctx.Param("orgId")}
			if d := guard.Evaluate(contextSession(ctx), req); d.Action == guard.Redirect {
				return replaceRedirect(ctx, d.Location)
			}
			return next(ctx)
		}
	}
}

// authMiddleware protects the session/account XHR endpoints. These are not
// navigations, so an unauthenticated client gets a 401 with the login entry
// instead of a redirect.
func (s *server) authMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			store, err := s.openSession(ctx)
			if err != nil {
				return errors.Wrap(err, "loading session")
			}
			if store != nil {
				ctx.Set(contextStoreKey, store)
			}
			if !contextSession(ctx).Authenticated() {
				return errUnauthorized
			}
			return next(ctx)
		}
	}
}

func replaceRedirect(ctx echo.Context, location string) error {
	ctx.Response().Header().Set("Cache-Control", "no-store")
	return ctx.Redirect(http.StatusFound, location)
}
