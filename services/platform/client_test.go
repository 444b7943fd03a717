package platformsvc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

func newTestClient(baseURL string) *Client {
	conf := &core.Config{
		Upstream: core.UpstreamConfig{BaseURL: baseURL, Timeout: 2 * time.Second},
	}
	return NewClient(conf, nil)
}

func TestClient_Login(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/users/login" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var creds map[string]string
		_ = json.NewDecoder(r.Body).Decode(&creds)

		switch creds["username"] {
		case "admin":
			_ = json.NewEncoder(w).Encode(LoginResponse{Token: "tok-123"})
		case "broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer upstream.Close()

	client := newTestClient(upstream.URL)

	token, err := client.Login(context.Background(), "admin", "pwd")
	if err != nil {
		t.Fatalf("Login(): %v", err)
	}
	if token != "tok-123" {
		t.Errorf("token = %q", token)
	}

	if _, err = client.Login(context.Background(), "intruder", "pwd"); errors.Cause(err) != ErrUnauthorized {
		t.Errorf("Login() error = %v, wantErr %v", err, ErrUnauthorized)
	}

	if _, err = client.Login(context.Background(), "broken", "pwd"); err == nil {
		t.Error("Login() on upstream 500: want error")
	}
}

func TestClient_Organization(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/organizations/org-42":
			_ = json.NewEncoder(w).Encode(Organization{ID: "org-42", Name: "Academia", Email: "info@academia.cd"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer upstream.Close()

	client := newTestClient(upstream.URL)

	org, err := client.Organization(context.Background(), "tok-123", "org-42")
	if err != nil {
		t.Fatalf("Organization(): %v", err)
	}
	if org.Name != "Academia" || org.Email != "info@academia.cd" {
		t.Errorf("org = %+v", org)
	}

	if _, err = client.Organization(context.Background(), "stale-tok", "org-42"); errors.Cause(err) != ErrUnauthorized {
		t.Errorf("Organization() error = %v, wantErr %v", err, ErrUnauthorized)
	}

	if _, err = client.Organization(context.Background(), "tok-123", "org-404"); errors.Cause(err) != ErrNotFound {
		t.Errorf("Organization() error = %v, wantErr %v", err, ErrNotFound)
	}
}
