package enums

import "fmt"

// ActorRole represents the access tier of an authenticated user.
type ActorRole string

const (
	ActorRoleCustomer   ActorRole = "customer"
	ActorRoleStoreAdmin ActorRole = "store_admin"
	ActorRoleSuperAdmin ActorRole = "super_admin"
)

var validActorRoles = []ActorRole{
	ActorRoleCustomer,
	ActorRoleStoreAdmin,
	ActorRoleSuperAdmin,
}

// String implements fmt.Stringer.
func (r ActorRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known ActorRole.
func (r ActorRole) IsValid() bool {
	for _, candidate := range validActorRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsStaff reports whether the role grants access to the admin surface.
func (r ActorRole) IsStaff() bool {
	return r == ActorRoleStoreAdmin || r == ActorRoleSuperAdmin
}

// ParseActorRole converts raw input into an ActorRole.
func ParseActorRole(value string) (ActorRole, error) {
	for _, candidate := range validActorRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid actor role %q", value)
}
