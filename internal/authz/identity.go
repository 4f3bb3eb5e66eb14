package authz

// Identity is the normalized actor attached to a request after the
// bearer token has been resolved to a live account: role lower-cased,
// department upper-cased.
type Identity struct {
	ID         uint64
	FullName   string
	Email      string
	Role       string
	Department string
	IsApproved bool
}

func (i *Identity) IsAdmin() bool {
	return IsAdmin(i.Role)
}

func (i *Identity) IsAssetManager() bool {
	return IsAssetManager(i.Role)
}

// CanManage reports whether the actor may write resources belonging to
// the given department.
func (i *Identity) CanManage(department string) bool {
	return CanManageDepartment(i.Role, i.Department, department)
}
