package tests

import (
	"net/http"
	"testing"
)

func Test_routeGuard(t *testing.T) {
	app, _ := setup(t)

	superCookies := login(t, app, "/login", "root")
	orgCookies := login(t, app, "/loginorg", "orga")

	tests := []httpTest{
		// unauthenticated clients land on the route's login entry, always
		{name: "No session, super portal", path: "/dashboard", wantCode: http.StatusFound, wantLoc: "/login"},
		{name: "No session, super subroute", path: "/dashboard/learners", wantCode: http.StatusFound, wantLoc: "/login"},
		{name: "No session, org portal", path: "/org-dashboards/org-42", wantCode: http.StatusFound, wantLoc: "/loginorg"},
		{name: "No session, org subroute", path: "/org-dashboards/org-42/cohorts", wantCode: http.StatusFound, wantLoc: "/loginorg"},

		// right audience renders
		{name: "Super admin, own portal", path: "/dashboard", cookies: superCookies, wantCode: http.StatusOK},
		{name: "Super admin, own subroute", path: "/dashboard/reports", cookies: superCookies, wantCode: http.StatusOK},
		{name: "Org admin, own portal", path: "/org-dashboards/org-42", cookies: orgCookies, wantCode: http.StatusOK},
		{name: "Org admin, own subroute", path: "/org-dashboards/org-42/learners", cookies: orgCookies, wantCode: http.StatusOK},

		// wrong audience bounces to its own dashboard
		{name: "Super admin on org portal", path: "/org-dashboards/org-42", cookies: superCookies, wantCode: http.StatusFound, wantLoc: "/dashboard"},
		{name: "Org admin on super portal", path: "/dashboard", cookies: orgCookies, wantCode: http.StatusFound, wantLoc: "/org-dashboards/org-42"},

		// wrong scope bounces to its own org dashboard
		{name: "Org admin on another org", path: "/org-dashboards/org-7", cookies: orgCookies, wantCode: http.StatusFound, wantLoc: "/org-dashboards/org-42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(app, http.MethodGet, tt.path, tt.cookies)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusFound {
				// redirects replace history; never cached
				if cc := rec.Header().Get("Cache-Control"); cc != "no-store" {
					t.Errorf("Cache-Control = %q; want no-store", cc)
				}
			}
		})
	}
}

func Test_portalHome(t *testing.T) {
	app, _ := setup(t)

	superCookies := login(t, app, "/login", "root")
	orgCookies := login(t, app, "/loginorg", "orga")

	rec := doRequest(app, http.MethodGet, "/dashboard", superCookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; body = %s", rec.Code, rec.Body.String())
	}
	checkNav(t, rec.Body.Bytes(), "superAdmin", 7)

	rec = doRequest(app, http.MethodGet, "/org-dashboards/org-42", orgCookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; body = %s", rec.Code, rec.Body.String())
	}
	checkNav(t, rec.Body.Bytes(), "orgAdmin", 6)
}
