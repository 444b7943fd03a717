package nav

import (
	"errors"
	"strings"

	"github.com/trezcool/darasa/core/session"
)

// ErrLoginRequired signals that the caller should send the client to the
// appropriate login entry point. The resolver itself never navigates.
var ErrLoginRequired = errors.New("login required")

// Entry is one navigation destination in a portal's menu.
type Entry struct {
	Title string `json:"title"`
	Path  string `json:"path"`
	Icon  string `json:"icon"`
}

var superAdminEntries = []Entry{
	{Title: "Dashboard", Path: "/dashboard", Icon: "dashboard"},
	{Title: "Organizations", Path: "/dashboard/organizations", Icon: "business"},
	{Title: "Learners", Path: "/dashboard/learners", Icon: "people"},
	{Title: "Programs", Path: "/dashboard/programs", Icon: "school"},
	{Title: "Program Mapping", Path: "/dashboard/program-mapping", Icon: "account_tree"},
	{Title: "Reports", Path: "/dashboard/reports", Icon: "assessment"},
	{Title: "Settings", Path: "/dashboard/settings", Icon: "settings"},
}

var orgAdminEntries = []Entry{
	{Title: "Dashboard", Path: "/org-dashboards/{orgId}", Icon: "dashboard"},
	{Title: "Cohorts", Path: "/org-dashboards/{orgId}/cohorts", Icon: "groups"},
	{Title: "Learners", Path: "/org-dashboards/{orgId}/learners", Icon: "people"},
	{Title: "Programs", Path: "/org-dashboards/{orgId}/programs", Icon: "school"},
	{Title: "Reports", Path: "/org-dashboards/{orgId}/reports", Icon: "assessment"},
	{Title: "Settings", Path: "/org-dashboards/{orgId}/settings", Icon: "settings"},
}

// Resolve maps (role, organization scope) to the ordered menu for that
// portal. It is deterministic and side-effect-free; callers re-evaluate it
// whenever the session changes.
func Resolve(role session.Role, scope string) ([]Entry, error) {
	switch role {
	case session.RoleSuperAdmin:
		entries := make([]Entry, len(superAdminEntries))
		copy(entries, superAdminEntries)
		return entries, nil

	case session.RoleOrgAdmin:
		if scope == "" {
			// an org admin must have a scope
			return nil, ErrLoginRequired
		}
		entries := make([]Entry, len(orgAdminEntries))
		for i, e := range orgAdminEntries {
			e.Path = strings.ReplaceAll(e.Path, "{orgId}", scope)
			entries[i] = e
		}
		return entries, nil
	}
	return nil, ErrLoginRequired
}
