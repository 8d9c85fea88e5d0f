package domain

// Role is a role identifier. Values coming from the backend may be legacy
// aliases; only the constants below are canonical.
type Role string

const (
	RoleDirector   Role = "director"
	RoleSuperAdmin Role = "superadmin"
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleHR         Role = "hr"
	RoleSupervisor Role = "supervisor"
	RoleEngineer   Role = "engineer"
	RolePurchasing Role = "purchasing"
	RoleStore      Role = "store"
	RoleAccounting Role = "accounting"
	RoleEmployee   Role = "employee"
	RoleClient     Role = "client"
	RoleUser       Role = "user"
)

// CanonicalRoles lists every canonical role.
var CanonicalRoles = []Role{
	RoleDirector,
	RoleSuperAdmin,
	RoleAdmin,
	RoleManager,
	RoleHR,
	RoleSupervisor,
	RoleEngineer,
	RolePurchasing,
	RoleStore,
	RoleAccounting,
	RoleEmployee,
	RoleClient,
	RoleUser,
}

// Permission is a named capability, e.g. "user.edit".
type Permission string

const (
	PermUserView   Permission = "user.view"
	PermUserCreate Permission = "user.create"
	PermUserEdit   Permission = "user.edit"
	PermUserDelete Permission = "user.delete"

	PermEmployeeView   Permission = "employee.view"
	PermEmployeeCreate Permission = "employee.create"
	PermEmployeeEdit   Permission = "employee.edit"
	PermEmployeeDelete Permission = "employee.delete"

	PermLeaveView    Permission = "hr.leave.view"
	PermLeaveCreate  Permission = "hr.leave.create"
	PermLeaveEdit    Permission = "hr.leave.edit"
	PermLeaveApprove Permission = "hr.leave.approve"
	PermDailyView    Permission = "hr.daily.view"
	PermDailyCreate  Permission = "hr.daily.create"
	PermDailyApprove Permission = "hr.daily.approve"
	PermHRReports    Permission = "hr.reports.view"

	PermSystemSettingsView Permission = "system.settings.view"
	PermSystemSettingsEdit Permission = "system.settings.edit"
	PermAnalyticsView      Permission = "analytics.view"
	PermVillageManage      Permission = "village.manage"

	PermProfileView    Permission = "profile.view"
	PermProfileEdit    Permission = "profile.edit"
	PermTechnicalView  Permission = "technical.view"
	PermTechnicalEdit  Permission = "technical.edit"
	PermPurchasingView Permission = "purchasing.view"
	PermPurchasingEdit Permission = "purchasing.edit"
	PermInventoryView  Permission = "inventory.view"
	PermInventoryEdit  Permission = "inventory.edit"
	PermFinanceView    Permission = "finance.view"
	PermFinanceEdit    Permission = "finance.edit"
	PermOrdersView     Permission = "orders.view"
)
