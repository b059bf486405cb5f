package types

import "strings"

// Role is bitmask of the authorizations of an identity for a mint.
type Role uint8

const (
	RoleMaster Role = 1 << iota
	RoleMinter
	RoleBurner
	RolePauser
	RoleBlacklister
	RoleSeizer

	AllRoles = RoleMaster | RoleMinter | RoleBurner | RolePauser | RoleBlacklister | RoleSeizer
)

var roleNames = []struct {
	r    Role
	name string
}{
	{RoleMaster, "MASTER"},
	{RoleMinter, "MINTER"},
	{RoleBurner, "BURNER"},
	{RolePauser, "PAUSER"},
	{RoleBlacklister, "BLACKLISTER"},
	{RoleSeizer, "SEIZER"},
}

// Has returns true when any of the bits of "role" is set in r.
func (r Role) Has(role Role) bool {
	return r&role != 0
}

func (r Role) Grant(role Role) Role {
	return r | role
}

func (r Role) Revoke(role Role) Role {
	return r &^ role
}

// Valid returns true when r is non-empty and contains only known role bits.
func (r Role) Valid() bool {
	return r != 0 && r&^AllRoles == 0
}

func (r Role) String() string {
	if r == 0 {
		return "NONE"
	}
	var names []string
	for _, rn := range roleNames {
		if r.Has(rn.r) {
			names = append(names, rn.name)
		}
	}
	if r&^AllRoles != 0 {
		names = append(names, "UNKNOWN")
	}
	return strings.Join(names, "|")
}

// ParseRole parses role name (case insensitive), ie "minter".
func ParseRole(s string) (Role, bool) {
	for _, rn := range roleNames {
		if strings.EqualFold(rn.name, s) {
			return rn.r, true
		}
	}
	return 0, false
}
