package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/guard"
	"github.com/trezcool/darasa/core/nav"
	"github.com/trezcool/darasa/core/session"
	platformsvc "github.com/trezcool/darasa/services/platform"
)

type (
	Deps struct {
		Conf       *core.Config
		Logger     core.Logger
		Sessions   *session.Manager
		Platform   *platformsvc.Client
		Validate   *validator.Validate
		Translator ut.Translator
	}

	Server interface {
		http.Handler
		Start()
		Shutdown(context.Context) error
		Close() error
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		deps  Deps
		app   *echo.Echo
		errCh chan error
		sigCh chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps Deps) Server {
	s := &server{
		deps:  deps,
		app:   echo.New(),
		errCh: make(chan error, 1),
		sigCh: make(chan os.Signal, 1),
	}
	signal.Notify(s.sigCh, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	debug := s.deps.Conf.Debug

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.Conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(debug || s.deps.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = debug

	s.app.GET("/", home)

	// login entry points
	s.app.POST(guard.LoginPath, s.login)
	s.app.POST(guard.OrgLoginPath, s.loginOrg)
	s.app.POST("/logout", s.logout)

	// session & account-menu XHR surface
	s.app.GET("/session", s.sessionInfo, s.authMiddleware())
	s.app.GET("/session/nav", s.navMenu)
	s.app.GET("/session/organization", s.organizationDetail, s.authMiddleware())
	s.app.POST("/session/organization", s.switchOrg, s.authMiddleware())

	// super-admin portal
	sg := s.app.Group(guard.HomePath, s.guardMiddleware(guard.SuperAdminPortal))
	sg.GET("", s.portalHome)
	sg.GET("/*", s.portalHome)

	// org-admin portal
	og := s.app.Group("/org-dashboards/:orgId", s.guardMiddleware(guard.OrgAdminPortal))
	og.GET("", s.portalHome)
	og.GET("/*", s.portalHome)
}

func (s *server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Host); err != nil && err != http.ErrServerClosed {
		s.errCh <- err
	}
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) Errors() <-chan error {
	return s.errCh
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.sigCh
}

func (s *server) signalShutdown() {
	s.sigCh <- syscall.SIGTERM
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to the Darasa admin dashboard!")
}

type PortalResponse struct {
	Role              session.Role `json:"role"`
	OrganizationScope string       `json:"organization_scope,omitempty"`
	Nav               []nav.Entry  `json:"nav"`
}

// portalHome renders the guarded shell: the session the guard admitted plus
// its resolved navigation menu.
func (s *server) portalHome(ctx echo.Context) error {
	sess := contextSession(ctx)
	entries, err := nav.Resolve(sess.Role, sess.OrganizationScope)
	if err != nil {
		// the guard admitted this session; the resolver must agree
		return replaceRedirect(ctx, guard.LoginPath)
	}
	return ctx.JSON(http.StatusOK, PortalResponse{
		Role:              sess.Role,
		OrganizationScope: sess.OrganizationScope,
		Nav:               entries,
	})
}
