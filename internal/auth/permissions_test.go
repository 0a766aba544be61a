package auth

import (
	"testing"

	"patisson-users/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequire(t *testing.T) {
	moderator := Permissions{CreateLib: true, CreateBan: true}

	tests := []struct {
		name    string
		perms   Permissions
		caps    []Capability
		allowed bool
	}{
		{"no capabilities", Permissions{}, nil, true},
		{"single granted", moderator, []Capability{CapCreateBan}, true},
		{"all granted", moderator, []Capability{CapCreateLib, CapCreateBan}, true},
		{"one missing", Permissions{CreateLib: true}, []Capability{CapCreateLib, CapCreateBan}, false},
		{"service flag on client role", moderator, []Capability{CapUserReg}, false},
		{"unknown capability", moderator, []Capability{"delete_everything"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Require(tt.perms, tt.caps...)
			if tt.allowed {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, models.HasCode(err, models.CodeAccess))
		})
	}
}
