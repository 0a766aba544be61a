// Package auth verifies the service and client tokens issued by the
// authentication service and gates operations on the permissions of the
// token's role.
package auth

import (
	"fmt"

	"patisson-users/internal/models"
)

// Capability names a single permission flag.
type Capability string

const (
	CapUserReg       Capability = "user_reg"
	CapUsersInfo     Capability = "users_info"
	CapLibrariesInfo Capability = "libraries_info"
	CapCreateLib     Capability = "create_lib"
	CapCreateBan     Capability = "create_ban"
)

// Permissions is the flag set attached to a role.
type Permissions struct {
	UserReg       bool `yaml:"user_reg" json:"user_reg"`
	UsersInfo     bool `yaml:"users_info" json:"users_info"`
	LibrariesInfo bool `yaml:"libraries_info" json:"libraries_info"`
	CreateLib     bool `yaml:"create_lib" json:"create_lib"`
	CreateBan     bool `yaml:"create_ban" json:"create_ban"`
}

// Has reports whether the flag named by c is set. Unknown capabilities are never granted.
func (p Permissions) Has(c Capability) bool {
	switch c {
	case CapUserReg:
		return p.UserReg
	case CapUsersInfo:
		return p.UsersInfo
	case CapLibrariesInfo:
		return p.LibrariesInfo
	case CapCreateLib:
		return p.CreateLib
	case CapCreateBan:
		return p.CreateBan
	}
	return false
}

// Require returns ACCESS_ERROR unless every capability is granted.
func Require(p Permissions, caps ...Capability) error {
	for _, c := range caps {
		if !p.Has(c) {
			return models.NewAccessError(fmt.Sprintf("The %s permission is required", c))
		}
	}
	return nil
}
