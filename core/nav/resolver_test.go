package nav

import (
	"strings"
	"testing"

	"github.com/trezcool/darasa/core/session"
)

func TestResolve_superAdmin(t *testing.T) {
	entries, err := Resolve(session.RoleSuperAdmin, "")
	if err != nil {
		t.Fatalf("Resolve(): %v", err)
	}

	wantTitles := []string{"Dashboard", "Organizations", "Learners", "Programs", "Program Mapping", "Reports", "Settings"}
	if len(entries) != len(wantTitles) {
		t.Fatalf("len(entries) = %d; want %d", len(entries), len(wantTitles))
	}
	for i, want := range wantTitles {
		if entries[i].Title != want {
			t.Errorf("entries[%d].Title = %q; want %q", i, entries[i].Title, want)
		}
		if !strings.HasPrefix(entries[i].Path, "/dashboard") {
			t.Errorf("entries[%d].Path = %q; want /dashboard prefix", i, entries[i].Path)
		}
	}
}

func TestResolve_orgAdmin(t *testing.T) {
	entries, err := Resolve(session.RoleOrgAdmin, "org-7")
	if err != nil {
		t.Fatalf("Resolve(): %v", err)
	}

	wantTitles := []string{"Dashboard", "Cohorts", "Learners", "Programs", "Reports", "Settings"}
	if len(entries) != len(wantTitles) {
		t.Fatalf("len(entries) = %d; want %d", len(entries), len(wantTitles))
	}
	for i, want := range wantTitles {
		if entries[i].Title != want {
			t.Errorf("entries[%d].Title = %q; want %q", i, entries[i].Title, want)
		}
		if !strings.Contains(entries[i].Path, "org-7") {
			t.Errorf("entries[%d].Path = %q; want it scoped to org-7", i, entries[i].Path)
		}
		if strings.Contains(entries[i].Path, "{orgId}") {
			t.Errorf("entries[%d].Path = %q; placeholder not substituted", i, entries[i].Path)
		}
	}
}

func TestResolve_loginRequired(t *testing.T) {
	tests := []struct {
		name  string
		role  session.Role
		scope string
	}{
		{name: "unauthenticated", role: session.RoleNone},
		{name: "org admin without scope", role: session.RoleOrgAdmin},
		{name: "unknown role", role: session.Role("teacher")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := Resolve(tt.role, tt.scope)
			if err != ErrLoginRequired {
				t.Errorf("Resolve() error = %v, wantErr %v", err, ErrLoginRequired)
			}
			if entries != nil {
				t.Errorf("Resolve() entries = %+v; want none", entries)
			}
		})
	}
}

func TestResolve_deterministic(t *testing.T) {
	a, _ := Resolve(session.RoleOrgAdmin, "org-7")
	b, _ := Resolve(session.RoleOrgAdmin, "org-7")
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("entries differ across calls: %+v != %+v", a[i], b[i])
		}
	}

	// returned slices are copies; callers cannot corrupt the fixed lists
	a[0].Title = "Mutated"
	c, _ := Resolve(session.RoleOrgAdmin, "org-7")
	if c[0].Title != "Dashboard" {
		t.Errorf("fixed entries mutated: %+v", c[0])
	}
}
