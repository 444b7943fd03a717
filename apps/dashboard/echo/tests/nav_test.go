package tests

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	echoapi "github.com/trezcool/darasa/apps/dashboard/echo"
)

// checkNav asserts on the portal payload shared by the home and nav endpoints.
func checkNav(t *testing.T, body []byte, wantRole string, wantEntries int) {
	t.Helper()

	var data struct {
		Role    string `json:"role"`
		Entries []struct {
			Title string `json:"title"`
			Path  string `json:"path"`
			Icon  string `json:"icon"`
		} `json:"nav"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		t.Fatalf("unmarshalling portal payload: %v", err)
	}
	if data.Role != wantRole {
		t.Errorf("role = %q; want %q", data.Role, wantRole)
	}
	if len(data.Entries) != wantEntries {
		t.Errorf("nav entries = %d; want %d", len(data.Entries), wantEntries)
	}
}

func Test_navMenu(t *testing.T) {
	app, _ := setup(t)

	t.Run("No session", func(t *testing.T) {
		rec := doRequest(app, http.MethodGet, "/session/nav", nil)
		tt := httpTest{
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, echoapi.LoginResponse{Redirect: "/login"}),
		}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Super admin menu", func(t *testing.T) {
		cookies := login(t, app, "/login", "root")
		rec := doRequest(app, http.MethodGet, "/session/nav", cookies)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body = %s", rec.Code, rec.Body.String())
		}

		var data echoapi.NavResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &data); err != nil {
			t.Fatalf("unmarshalling: %v", err)
		}
		if len(data.Entries) != 7 {
			t.Fatalf("entries = %d; want 7", len(data.Entries))
		}
		if data.Entries[0].Path != "/dashboard" {
			t.Errorf("first entry path = %q", data.Entries[0].Path)
		}
	})

	t.Run("Org admin menu", func(t *testing.T) {
		cookies := login(t, app, "/loginorg", "orga")
		rec := doRequest(app, http.MethodGet, "/session/nav", cookies)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body = %s", rec.Code, rec.Body.String())
		}

		var data echoapi.NavResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &data); err != nil {
			t.Fatalf("unmarshalling: %v", err)
		}
		if len(data.Entries) != 6 {
			t.Fatalf("entries = %d; want 6", len(data.Entries))
		}
		for _, e := range data.Entries {
			if !strings.Contains(e.Path, "org-42") {
				t.Errorf("entry %q path = %q; want it scoped to org-42", e.Title, e.Path)
			}
		}
	})
}
