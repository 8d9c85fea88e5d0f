package service

import (
	"slices"
	"strings"

	"github.com/99minutos/admin-console/internal/core/domain"
)

// FallbackRole is what any unknown or empty backend role resolves to.
const FallbackRole = domain.RoleUser

// roleAliases maps lower-cased backend role strings onto canonical roles.
// Canonical values map to themselves so normalization is idempotent.
var roleAliases = map[string]domain.Role{
	"admin1":        domain.RoleAdmin,
	"admin2":        domain.RoleAdmin,
	"administrator": domain.RoleAdmin,
	"super_admin":   domain.RoleSuperAdmin,
	"super-admin":   domain.RoleSuperAdmin,
	"hr_manager":    domain.RoleHR,
	"staff":         domain.RoleEmployee,
}

func init() {
	for _, r := range domain.CanonicalRoles {
		roleAliases[string(r)] = r
	}
}

var selfService = []domain.Permission{
	domain.PermProfileView, domain.PermProfileEdit,
	domain.PermLeaveView, domain.PermLeaveCreate,
	domain.PermDailyView, domain.PermDailyCreate,
}

var allPermissions = []domain.Permission{
	domain.PermUserView, domain.PermUserCreate, domain.PermUserEdit, domain.PermUserDelete,
	domain.PermEmployeeView, domain.PermEmployeeCreate, domain.PermEmployeeEdit, domain.PermEmployeeDelete,
	domain.PermLeaveView, domain.PermLeaveCreate, domain.PermLeaveEdit, domain.PermLeaveApprove,
	domain.PermDailyView, domain.PermDailyCreate, domain.PermDailyApprove, domain.PermHRReports,
	domain.PermSystemSettingsView, domain.PermSystemSettingsEdit, domain.PermAnalyticsView, domain.PermVillageManage,
	domain.PermProfileView, domain.PermProfileEdit,
	domain.PermTechnicalView, domain.PermTechnicalEdit,
	domain.PermPurchasingView, domain.PermPurchasingEdit,
	domain.PermInventoryView, domain.PermInventoryEdit,
	domain.PermFinanceView, domain.PermFinanceEdit,
	domain.PermOrdersView,
}

// rolePermissions is the flat grant table. There is no inheritance between
// roles: every grant is listed explicitly.
var rolePermissions = map[domain.Role][]domain.Permission{
	domain.RoleDirector:   allPermissions,
	domain.RoleSuperAdmin: allPermissions,
	domain.RoleAdmin: {
		domain.PermUserView, domain.PermUserCreate, domain.PermUserEdit, domain.PermUserDelete,
		domain.PermEmployeeView, domain.PermEmployeeCreate, domain.PermEmployeeEdit, domain.PermEmployeeDelete,
		domain.PermLeaveView, domain.PermLeaveApprove, domain.PermSystemSettingsView,
		domain.PermProfileView, domain.PermProfileEdit,
	},
	domain.RoleManager: {
		domain.PermEmployeeView, domain.PermEmployeeEdit,
		domain.PermUserView, domain.PermUserEdit,
		domain.PermLeaveView, domain.PermLeaveApprove,
		domain.PermDailyView, domain.PermDailyApprove, domain.PermHRReports,
		domain.PermProfileView, domain.PermProfileEdit,
	},
	domain.RoleHR: {
		domain.PermEmployeeView, domain.PermEmployeeCreate, domain.PermEmployeeEdit, domain.PermEmployeeDelete,
		domain.PermUserView, domain.PermUserCreate, domain.PermUserEdit,
		domain.PermLeaveView, domain.PermLeaveCreate, domain.PermLeaveEdit, domain.PermLeaveApprove,
		domain.PermDailyView, domain.PermDailyApprove, domain.PermHRReports,
		domain.PermProfileView, domain.PermProfileEdit,
	},
	domain.RoleSupervisor: {
		domain.PermEmployeeView, domain.PermEmployeeEdit,
		domain.PermLeaveView, domain.PermLeaveApprove,
		domain.PermDailyView, domain.PermDailyApprove,
		domain.PermProfileView, domain.PermProfileEdit,
	},
	domain.RoleEngineer:   append(slices.Clone(selfService), domain.PermTechnicalView, domain.PermTechnicalEdit),
	domain.RolePurchasing: append(slices.Clone(selfService), domain.PermPurchasingView, domain.PermPurchasingEdit),
	domain.RoleStore:      append(slices.Clone(selfService), domain.PermInventoryView, domain.PermInventoryEdit),
	domain.RoleAccounting: append(slices.Clone(selfService), domain.PermFinanceView, domain.PermFinanceEdit),
	domain.RoleEmployee:   selfService,
	domain.RoleClient:     {domain.PermProfileView, domain.PermProfileEdit, domain.PermOrdersView},
	domain.RoleUser:       selfService,
}

// NormalizeRole maps a raw backend role string onto the canonical role set.
// It never fails: unknown input resolves to FallbackRole.
func NormalizeRole[T ~string](raw T) domain.Role {
	key := strings.ToLower(strings.TrimSpace(string(raw)))
	if r, ok := roleAliases[key]; ok {
		return r
	}
	return FallbackRole
}

// IsCanonicalRole reports whether r is exactly one of the canonical roles.
func IsCanonicalRole(r domain.Role) bool {
	_, ok := rolePermissions[r]
	return ok
}

// NormalizeUser returns a copy of u whose role is canonical.
func NormalizeUser(u *domain.User) *domain.User {
	out := u.Clone()
	if out != nil {
		out.Role = NormalizeRole(out.Role)
	}
	return out
}

// Can reports whether role is granted permission. It is a direct lookup in the
// grant table after normalizing the role.
func Can(role domain.Role, permission domain.Permission) bool {
	return slices.Contains(rolePermissions[NormalizeRole(role)], permission)
}

// HasRole reports whether the user's role is one of required. Both sides are
// normalized before comparing. An empty requirement admits any user.
func HasRole(user *domain.User, required ...domain.Role) bool {
	if user == nil || strings.TrimSpace(string(user.Role)) == "" {
		return false
	}
	if len(required) == 0 {
		return true
	}
	have := NormalizeRole(user.Role)
	for _, r := range required {
		if NormalizeRole(r) == have {
			return true
		}
	}
	return false
}

// Permissions returns the sorted grants of role.
func Permissions(role domain.Role) []domain.Permission {
	out := slices.Clone(rolePermissions[NormalizeRole(role)])
	slices.Sort(out)
	return slices.Compact(out)
}
