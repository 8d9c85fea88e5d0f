package handler

import (
	"github.com/99minutos/admin-console/internal/core/domain"
	"github.com/99minutos/admin-console/internal/core/service"
)

// ViewSpec declares a protected view and what it takes to see it.
type ViewSpec struct {
	Path       string
	Title      string
	Roles      []domain.Role
	Permission domain.Permission
	// Menu marks views offered in the navigation menu.
	Menu bool
}

// View returns the access-check input for one navigation attempt.
func (s ViewSpec) View(entry string) service.View {
	return service.View{Path: s.Path, Entry: entry, Roles: s.Roles, Permission: s.Permission}
}

var adminRoles = []domain.Role{domain.RoleDirector, domain.RoleSuperAdmin, domain.RoleAdmin}

// Views lists every protected view of the console.
var Views = []ViewSpec{
	{Path: "/director", Title: "Director Dashboard", Roles: []domain.Role{domain.RoleDirector}},
	{Path: "/superadmin", Title: "Super Admin Dashboard", Roles: []domain.Role{domain.RoleSuperAdmin}},
	{Path: "/admin", Title: "Admin Dashboard", Roles: []domain.Role{domain.RoleAdmin}},
	{Path: "/manager", Title: "Manager Dashboard", Roles: []domain.Role{domain.RoleManager}},
	{Path: "/hr", Title: "HR Dashboard", Roles: []domain.Role{domain.RoleHR}},
	{Path: "/supervisor", Title: "Supervisor Dashboard", Roles: []domain.Role{domain.RoleSupervisor}},
	{Path: "/engineer", Title: "Engineer Dashboard", Roles: []domain.Role{domain.RoleEngineer}},
	{Path: "/purchasing", Title: "Purchasing Dashboard", Roles: []domain.Role{domain.RolePurchasing}},
	{Path: "/store", Title: "Store Dashboard", Roles: []domain.Role{domain.RoleStore}},
	{Path: "/accounting", Title: "Accounting Dashboard", Roles: []domain.Role{domain.RoleAccounting}},
	{Path: "/employee", Title: "Employee Dashboard", Roles: []domain.Role{domain.RoleEmployee}},
	{Path: "/client", Title: "Client Dashboard", Roles: []domain.Role{domain.RoleClient}},

	{Path: "/profile", Title: "My Profile", Permission: domain.PermProfileView, Menu: true},
	{Path: "/users", Title: "User Management", Permission: domain.PermUserView, Menu: true},
	{Path: "/system", Title: "System Settings", Roles: adminRoles, Permission: domain.PermSystemSettingsView, Menu: true},
	{Path: "/analytics", Title: "Analytics", Permission: domain.PermAnalyticsView, Menu: true},
	{Path: "/village", Title: "Village Management", Permission: domain.PermVillageManage, Menu: true},
}

// LookupView finds the view registered at path.
func LookupView(path string) (ViewSpec, bool) {
	for _, s := range Views {
		if s.Path == path {
			return s, true
		}
	}
	return ViewSpec{}, false
}

type navItem struct {
	Title string `json:"title"`
	Path  string `json:"path"`
}

// navigationFor builds the menu of role: its landing page, then every menu
// view the role may open.
func navigationFor(role domain.Role) []navItem {
	items := []navItem{{Title: "Dashboard", Path: service.RedirectPathFor(role)}}
	probe := &domain.User{Role: role}
	for _, s := range Views {
		if !s.Menu || !service.HasRole(probe, s.Roles...) {
			continue
		}
		if s.Permission != "" && !service.Can(role, s.Permission) {
			continue
		}
		items = append(items, navItem{Title: s.Title, Path: s.Path})
	}
	return items
}
