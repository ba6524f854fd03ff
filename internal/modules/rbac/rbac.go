package rbac

// Role is the closed set of staff roles.
type Role string

const (
	RoleWaiter  Role = "waiter"
	RoleCashier Role = "cashier"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleWaiter, RoleCashier, RoleAdmin:
		return true
	}
	return false
}

// Permission is a namespaced capability token of the form <domain>:<action>.
type Permission string

const (
	PermOrdersCreate Permission = "orders:create"
	PermOrdersRead   Permission = "orders:read"
	PermOrdersUpdate Permission = "orders:update"
	PermOrdersCancel Permission = "orders:cancel"

	PermPaymentsProcess Permission = "payments:process"
	PermPaymentsRead    Permission = "payments:read"
	PermPaymentsRefund  Permission = "payments:refund"

	PermMenuRead   Permission = "menu:read"
	PermMenuManage Permission = "menu:manage"

	PermStaffManage   Permission = "staff:manage"
	PermOutletsManage Permission = "outlets:manage"
	PermReportsView   Permission = "reports:view"
)

// registered is every permission token in the system. Admin's grant set is
// derived from this slice, so a new token added here is automatically granted
// to admin.
var registered = []Permission{
	PermOrdersCreate, PermOrdersRead, PermOrdersUpdate, PermOrdersCancel,
	PermPaymentsProcess, PermPaymentsRead, PermPaymentsRefund,
	PermMenuRead, PermMenuManage,
	PermStaffManage, PermOutletsManage, PermReportsView,
}

// grants is the single source of truth for role permissions. Admin is absent
// on purpose: it receives the union of all registered tokens.
var grants = map[Role][]Permission{
	RoleWaiter: {
		PermOrdersCreate, PermOrdersRead, PermOrdersUpdate, PermOrdersCancel,
		PermMenuRead,
	},
	RoleCashier: {
		PermOrdersRead,
		PermPaymentsProcess, PermPaymentsRead, PermPaymentsRefund,
		PermMenuRead, PermReportsView,
	},
}

// PermissionsFor returns the permission set granted to role. Unknown roles
// get an empty set, never an error.
func PermissionsFor(role Role) []Permission {
	if role == RoleAdmin {
		out := make([]Permission, len(registered))
		copy(out, registered)
		return out
	}
	out := make([]Permission, len(grants[role]))
	copy(out, grants[role])
	return out
}

// Has reports whether role is granted perm.
func Has(role Role, perm Permission) bool {
	for _, p := range PermissionsFor(role) {
		if p == perm {
			return true
		}
	}
	return false
}

// Mode selects how a set of required permissions is combined.
type Mode int

const (
	// Any passes when at least one required permission is granted.
	Any Mode = iota
	// All passes only when every required permission is granted.
	All
)

// IsAuthorized decides whether role satisfies the required permissions under
// mode. Pure lookup: no side effects, deny by default.
func IsAuthorized(role Role, mode Mode, required ...Permission) bool {
	if len(required) == 0 {
		return false
	}
	for _, p := range required {
		granted := Has(role, p)
		if mode == All && !granted {
			return false
		}
		if mode == Any && granted {
			return true
		}
	}
	return mode == All
}
