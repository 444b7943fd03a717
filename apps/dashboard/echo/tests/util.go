package tests

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	echoapi "github.com/trezcool/darasa/apps/dashboard/echo"
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/session"
	logsvc "github.com/trezcool/darasa/services/logger"
	platformsvc "github.com/trezcool/darasa/services/platform"
	inmemkv "github.com/trezcool/darasa/storage/kv/inmem"
)

var testSecret = []byte("secret")

type httpErr struct {
	Error string `json:"error"`
}

// upstreamState lets tests flip the fake platform API into rejecting all
// tokens, simulating upstream session revocation.
type upstreamState struct {
	mu      sync.Mutex
	revoked bool
}

func (s *upstreamState) Revoke() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked = true
}

func (s *upstreamState) isRevoked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revoked
}

// newUpstream fakes the platform API: a login endpoint issuing signed JWTs
// and an organization-detail endpoint guarded by them.
func newUpstream(t *testing.T) (*httptest.Server, *upstreamState) {
	state := &upstreamState{}

	mux := http.NewServeMux()
	mux.HandleFunc("/users/login", func(w http.ResponseWriter, r *http.Request) {
		var creds map[string]string
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		now := time.Now()
		claims := &echoapi.Claims{
			StandardClaims: jwt.StandardClaims{
				Issuer:    "Platform",
				Subject:   "1",
				ExpiresAt: now.Add(time.Hour).Unix(),
				IssuedAt:  now.Unix(),
			},
			Username: creds["username"],
		}
		switch creds["username"] {
		case "root":
			claims.IsAdmin = true
		case "orga":
			claims.OrgID = "org-42"
		case "plain":
			// authenticated user of neither portal
		default:
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		token, err := echoapi.GenerateToken(claims, testSecret)
		if err != nil {
			t.Fatalf("GenerateToken(): %v", err)
		}
		_ = json.NewEncoder(w).Encode(platformsvc.LoginResponse{Token: token})
	})
	mux.HandleFunc("/organizations/", func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("Authorization")
		if len(token) < 8 || state.isRevoked() {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if _, err := echoapi.ParseToken(token[len("Bearer "):], testSecret); err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Path != "/organizations/org-42" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(platformsvc.Organization{
			ID: "org-42", Name: "Academia", Email: "info@academia.cd",
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, state
}

func setup(t *testing.T) (echoapi.Server, *upstreamState) {
	upstream, state := newUpstream(t)

	conf := &core.Config{
		TestMode:  true,
		Env:       "TEST",
		AppName:   "Darasa",
		SecretKey: testSecret,
		Upstream:  core.UpstreamConfig{BaseURL: upstream.URL, Timeout: 2 * time.Second},
	}
	logger := logsvc.NewZerologLogger(ioutil.Discard, conf)

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	app := echoapi.NewServer(echoapi.Deps{
		Conf:       conf,
		Logger:     logger,
		Sessions:   session.NewManager(inmemkv.New()),
		Platform:   platformsvc.NewClient(conf, logger),
		Validate:   validate,
		Translator: translator,
	})
	return app, state
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	cookies  []*http.Cookie
	wantCode int
	wantData []byte
	wantLoc  string
}

func doRequest(app echoapi.Server, method, path string, cookies []*http.Cookie, data ...[]byte) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

// login runs a login flow and returns the session cookies for follow-up requests.
func login(t *testing.T, app echoapi.Server, path, username string) []*http.Cookie {
	body := marchallObj(t, echoapi.LoginRequest{Username: username, Password: "pwd"})
	rec := doRequest(app, http.MethodPost, path, nil, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: code = %v, body = %s", rec.Code, rec.Body.String())
	}
	return rec.Result().Cookies()
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	l1, ok1 := j1.([]interface{})
	l2, ok2 := j2.([]interface{})
	if ok1 && ok2 {
		return assert.ElementsMatch(t, l1, l2), nil
	}
	return false, nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantLoc != "" {
		if loc := rec.Header().Get("Location"); loc != tt.wantLoc {
			t.Errorf("failed! location = %v; wantLoc %v", loc, tt.wantLoc)
		}
		return
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
