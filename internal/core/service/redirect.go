package service

import "github.com/99minutos/admin-console/internal/core/domain"

// LoginPath is the console's entry point.
const LoginPath = "/login"

var landingPaths = map[domain.Role]string{
	domain.RoleDirector:   "/director",
	domain.RoleSuperAdmin: "/superadmin",
	domain.RoleAdmin:      "/admin",
	domain.RoleManager:    "/manager",
	domain.RoleHR:         "/hr",
	domain.RoleSupervisor: "/supervisor",
	domain.RoleEngineer:   "/engineer",
	domain.RolePurchasing: "/purchasing",
	domain.RoleStore:      "/store",
	domain.RoleAccounting: "/accounting",
	domain.RoleEmployee:   "/employee",
	domain.RoleClient:     "/client",
	domain.RoleUser:       "/profile",
}

// RedirectPathFor returns the default landing page of a canonical role.
// Anything that is not already canonical, aliases included, goes to LoginPath.
func RedirectPathFor(role domain.Role) string {
	if p, ok := landingPaths[role]; ok {
		return p
	}
	return LoginPath
}
