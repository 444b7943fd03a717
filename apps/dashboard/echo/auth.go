package echoapi

import (
	"net/http"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/session"
)

const (
	sidCookieName   = "darasa_sid"
	contextStoreKey = "sessionStore"
)

// Claims are the authorization claims the platform API transmits via its
// JWTs. The gateway verifies them with the shared signing key and derives
// the portal role from the flags instead of trusting response bodies.
type Claims struct {
	jwt.StandardClaims
	Username string   `json:"username,omitempty"`
	Email    string   `json:"email,omitempty"`
	IsAdmin  bool     `json:"is_admin,omitempty"` // -> SUPER-ADMIN PORTAL
	OrgID    string   `json:"org_id,omitempty"`   // -> ORG-ADMIN PORTAL
	Roles    []string `json:"roles,omitempty"`
}

// GenerateToken signs a JWT token string representing the Claims; the
// platform does this in production, the test suite does it here.
func GenerateToken(claims *Claims, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString(secret)
	return ss, errors.Wrap(err, "signing token")
}

// ParseToken verifies a platform-issued token and returns its claims.
func ParseToken(tokenStr string, secret []byte) (*Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "parsing token")
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// openSession returns the Store for the request's sid cookie, or nil when
// the client has no session yet.
func (s *server) openSession(ctx echo.Context) (*session.Store, error) {
	cookie, err := ctx.Cookie(sidCookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}
	store, err := s.deps.Sessions.Open(cookie.Value)
	return store, errors.Wrap(err, "opening session store")
}

// ensureSession returns the request's Store, minting a new client id and
// cookie when none exists. Used by the login flows.
func (s *server) ensureSession(ctx echo.Context) (*session.Store, error) {
	store, err := s.openSession(ctx)
	if err != nil || store != nil {
		return store, err
	}

	sid := uuid.New().String()
	store, err = s.deps.Sessions.Open(sid)
	if err != nil {
		return nil, err
	}
	ctx.SetCookie(&http.Cookie{
		Name:     sidCookieName,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}

func contextStore(ctx echo.Context) *session.Store {
	if store, ok := ctx.Get(contextStoreKey).(*session.Store); ok {
		return store
	}
	return nil
}

// contextSession returns the request's session snapshot; unauthenticated
// when the client has no session at all.
func contextSession(ctx echo.Context) session.Session {
	if store := contextStore(ctx); store != nil {
		return store.Session()
	}
	return session.Session{}
}
