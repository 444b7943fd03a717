package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/guard"
	"github.com/trezcool/darasa/core/session"
	platformsvc "github.com/trezcool/darasa/services/platform"
)

type (
	LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Redirect string `json:"redirect"`
	}

	SwitchOrgRequest struct {
		OrgID string `json:"org_id" validate:"required,orgid"`
	}

	SessionResponse struct {
		Authenticated     bool         `json:"authenticated"`
		Role              session.Role `json:"role"`
		OrganizationScope string       `json:"organization_scope,omitempty"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Username = core.CleanString(lr.Username, true /* lower */)
	return validate.Struct(lr)
}

func (sr *SwitchOrgRequest) Validate(validate *validator.Validate) error {
	sr.OrgID = core.CleanString(sr.OrgID, true /* lower */)
	return validate.Struct(sr)
}

// login authenticates a super-admin against the platform API and opens the
// dashboard session: token, role and (cleared) scope land in one step.
func (s *server) login(ctx echo.Context) error {
	claims, token, err := s.authenticate(ctx)
	if err != nil {
		return err
	}
	if !claims.IsAdmin {
		return errWrongPortal
	}

	store, err := s.ensureSession(ctx)
	if err != nil {
		return errors.Wrap(err, "opening session")
	}
	role := session.RoleSuperAdmin
	if err = store.Apply(session.Change{Token: &token, Role: &role}); err != nil {
		return errors.Wrap(err, "storing session")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Redirect: guard.HomePath})
}

// loginOrg authenticates an org-admin; the organization scope comes from the
// verified token claims, never from the request.
func (s *server) loginOrg(ctx echo.Context) error {
	claims, token, err := s.authenticate(ctx)
	if err != nil {
		return err
	}
	if claims.OrgID == "" {
		return errWrongPortal
	}

	store, err := s.ensureSession(ctx)
	if err != nil {
		return errors.Wrap(err, "opening session")
	}
	role := session.RoleOrgAdmin
	if err = store.Apply(session.Change{Token: &token, Role: &role, Scope: &claims.OrgID}); err != nil {
		return errors.Wrap(err, "storing session")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Redirect: guard.OrgHomePath + claims.OrgID})
}

func (s *server) authenticate(ctx echo.Context) (*Claims, string, error) {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return nil, "", errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(s.deps.Validate); err != nil {
		return nil, "", err
	}

	token, err := s.deps.Platform.Login(ctx.Request().Context(), data.Username, data.Password)
	if err != nil {
		if errors.Cause(err) == platformsvc.ErrUnauthorized {
			return nil, "", core.NewValidationError(errors.New("invalid credentials"))
		}
		return nil, "", errors.Wrap(err, "authenticating upstream")
	}

	claims, err := ParseToken(token, s.deps.Conf.SecretKey)
	if err != nil {
		s.deps.Logger.Error("upstream issued an unverifiable token", err)
		return nil, "", errAuthenticationFailed
	}
	return claims, token, nil
}

// logout clears all session state and sends the client back to the login
// entry point it came from. Clearing twice is harmless.
func (s *server) logout(ctx echo.Context) error {
	entry := guard.LoginPath

	store, err := s.openSession(ctx)
	if err != nil {
		return errors.Wrap(err, "loading session")
	}
	if store != nil {
		if store.Session().Role == session.RoleOrgAdmin {
			entry = guard.OrgLoginPath
		}
		if err = store.Clear(); err != nil {
			return errors.Wrap(err, "clearing session")
		}
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Redirect: entry})
}

func (s *server) sessionInfo(ctx echo.Context) error {
	sess := contextSession(ctx)
	return ctx.JSON(http.StatusOK, SessionResponse{
		Authenticated:     sess.Authenticated(),
		Role:              sess.Role,
		OrganizationScope: sess.OrganizationScope,
	})
}

// switchOrg sets the organization scope of the current session. The setter
// is unconditional; the invariant repair keeps the scope consistent if the
// role later changes.
func (s *server) switchOrg(ctx echo.Context) error {
	var data SwitchOrgRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SwitchOrgRequest")
	}
	if err := data.Validate(s.deps.Validate); err != nil {
		return err
	}

	store := contextStore(ctx)
	if store == nil {
		return errUnauthorized
	}
	if err := store.SetOrganizationScope(data.OrgID); err != nil {
		return errors.Wrap(err, "setting organization scope")
	}

	sess := store.Session()
	return ctx.JSON(http.StatusOK, SessionResponse{
		Authenticated:     sess.Authenticated(),
		Role:              sess.Role,
		OrganizationScope: sess.OrganizationScope,
	})
}
