package tests

import (
	"net/http"
	"testing"

	echoapi "github.com/trezcool/darasa/apps/dashboard/echo"
)

func Test_login(t *testing.T) {
	app, _ := setup(t)

	tests := []httpTest{
		{
			name: "Required fields", path: "/login", body: marchallObj(t, echoapi.LoginRequest{}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"username": "this field is required",
				"password": "this field is required",
			}),
		},
		{
			name: "Invalid credentials", path: "/login",
			body:     marchallObj(t, echoapi.LoginRequest{Username: "intruder", Password: "pwd"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "invalid credentials"}),
		},
		{
			name: "Org admin cannot enter super portal", path: "/login",
			body:     marchallObj(t, echoapi.LoginRequest{Username: "orga", Password: "pwd"}),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account cannot access this portal"}),
		},
		{
			name: "Super admin cannot enter org portal", path: "/loginorg",
			body:     marchallObj(t, echoapi.LoginRequest{Username: "root", Password: "pwd"}),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account cannot access this portal"}),
		},
		{
			name: "Portal-less account rejected everywhere", path: "/loginorg",
			body:     marchallObj(t, echoapi.LoginRequest{Username: "plain", Password: "pwd"}),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account cannot access this portal"}),
		},
		{
			name: "Super admin login", path: "/login",
			body:     marchallObj(t, echoapi.LoginRequest{Username: "root", Password: "pwd"}),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, echoapi.LoginResponse{Redirect: "/dashboard"}),
		},
		{
			name: "Org admin login", path: "/loginorg",
			body:     marchallObj(t, echoapi.LoginRequest{Username: "orga", Password: "pwd"}),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, echoapi.LoginResponse{Redirect: "/org-dashboards/org-42"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(app, http.MethodPost, tt.path, nil, tt.body)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_loginSetsSessionCookie(t *testing.T) {
	app, _ := setup(t)

	cookies := login(t, app, "/login", "root")
	if len(cookies) == 0 {
		t.Fatal("login set no session cookie")
	}

	rec := doRequest(app, http.MethodGet, "/session", cookies)
	tt := httpTest{
		wantCode: http.StatusOK,
		wantData: []byte(`{"authenticated": true, "role": "superAdmin"}`),
	}
	checkCodeAndData(t, tt, rec)
}

func Test_sessionInfoRequiresAuth(t *testing.T) {
	app, _ := setup(t)

	rec := doRequest(app, http.MethodGet, "/session", nil)
	tt := httpTest{
		wantCode: http.StatusUnauthorized,
		wantData: marchallObj(t, httpErr{Error: "user not authenticated"}),
	}
	checkCodeAndData(t, tt, rec)
}

func Test_logout(t *testing.T) {
	app, _ := setup(t)

	cookies := login(t, app, "/loginorg", "orga")

	rec := doRequest(app, http.MethodPost, "/logout", cookies)
	tt := httpTest{
		wantCode: http.StatusOK,
		wantData: marchallObj(t, echoapi.LoginResponse{Redirect: "/loginorg"}),
	}
	checkCodeAndData(t, tt, rec)

	// the cleared session no longer opens the portal
	rec = doRequest(app, http.MethodGet, "/org-dashboards/org-42", cookies)
	checkCodeAndData(t, httpTest{wantCode: http.StatusFound, wantLoc: "/loginorg"}, rec)

	// logging out twice is harmless
	rec = doRequest(app, http.MethodPost, "/logout", cookies)
	tt = httpTest{
		wantCode: http.StatusOK,
		wantData: marchallObj(t, echoapi.LoginResponse{Redirect: "/login"}),
	}
	checkCodeAndData(t, tt, rec)
}

func Test_switchOrg(t *testing.T) {
	app, _ := setup(t)

	cookies := login(t, app, "/loginorg", "orga")

	tests := []httpTest{
		{
			name: "Required field", body: marchallObj(t, echoapi.SwitchOrgRequest{}),
			cookies:  cookies,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"org_id": "this field is required"}),
		},
		{
			name: "Invalid org id", body: marchallObj(t, echoapi.SwitchOrgRequest{OrgID: "ORG 42!"}),
			cookies:  cookies,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"org_id": "only lowercase alphanumeric characters and dashes are allowed"}),
		},
		{
			name: "Auth required", body: marchallObj(t, echoapi.SwitchOrgRequest{OrgID: "org-7"}),
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Error: "user not authenticated"}),
		},
		{
			name: "Switched", body: marchallObj(t, echoapi.SwitchOrgRequest{OrgID: "org-7"}),
			cookies:  cookies,
			wantCode: http.StatusOK,
			wantData: []byte(`{"authenticated": true, "role": "orgAdmin", "organization_scope": "org-7"}`),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(app, http.MethodPost, "/session/organization", tt.cookies, tt.body)
			checkCodeAndData(t, tt, rec)
		})
	}

	// the new scope now guards the portal routes
	rec := doRequest(app, http.MethodGet, "/org-dashboards/org-42", cookies)
	checkCodeAndData(t, httpTest{wantCode: http.StatusFound, wantLoc: "/org-dashboards/org-7"}, rec)
}
