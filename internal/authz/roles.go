package authz

import "strings"

// Roles are stored lower-cased. An asset manager is scoped by the
// account's department instead of carrying it in the role name, so
// "dduAssetManager"/"iotAssetManager" from older data normalize into
// assetmanager + department.
const (
	RoleAdmin        = "admin"
	RoleAssetManager = "assetmanager"
	RoleStaff        = "staff"
)

// Departments are stored upper-cased.
const (
	DepartmentDDU = "DDU"
	DepartmentIOT = "IOT"
)

// NormalizeRole lower-cases a role and folds the legacy
// department-prefixed manager roles into the unified one.
func NormalizeRole(role string) string {
	r := strings.ToLower(strings.TrimSpace(role))
	switch r {
	case "dduassetmanager", "iotassetmanager":
		return RoleAssetManager
	}
	return r
}

// NormalizeDepartment upper-cases a department label.
func NormalizeDepartment(department string) string {
	return strings.ToUpper(strings.TrimSpace(department))
}

func ValidRole(role string) bool {
	switch NormalizeRole(role) {
	case RoleAdmin, RoleAssetManager, RoleStaff:
		return true
	}
	return false
}

func ValidDepartment(department string) bool {
	switch NormalizeDepartment(department) {
	case DepartmentDDU, DepartmentIOT:
		return true
	}
	return false
}

func IsAdmin(role string) bool {
	return NormalizeRole(role) == RoleAdmin
}

func IsAssetManager(role string) bool {
	return NormalizeRole(role) == RoleAssetManager
}

// SameDepartment compares two department labels case-insensitively.
func SameDepartment(a, b string) bool {
	return NormalizeDepartment(a) == NormalizeDepartment(b)
}

// CanManageDepartment reports whether an actor may write resources that
// belong to targetDepartment. Admins may write anywhere; asset managers
// only inside their own department.
func CanManageDepartment(role, actorDepartment, targetDepartment string) bool {
	if IsAdmin(role) {
		return true
	}
	if IsAssetManager(role) {
		return SameDepartment(actorDepartment, targetDepartment)
	}
	return false
}
