package model

import (
    "testing"

    "github.com/stretchr/testify/assert"
)

func TestRolePermits(t *testing.T) {
    assert.True(t, RoleRider.Permits(ActionRequestPass))
    assert.False(t, RoleRider.Permits(ActionDecidePasses))
    assert.False(t, RoleRider.Permits(ActionManageUsers))
    assert.False(t, RoleRider.Permits(ActionManageAdmins))

    assert.False(t, RoleAdmin.Permits(ActionRequestPass))
    assert.True(t, RoleAdmin.Permits(ActionDecidePasses))
    assert.True(t, RoleAdmin.Permits(ActionManageUsers))
    assert.False(t, RoleAdmin.Permits(ActionManageAdmins))

    assert.False(t, RoleSuperAdmin.Permits(ActionRequestPass))
    assert.True(t, RoleSuperAdmin.Permits(ActionDecidePasses))
    assert.True(t, RoleSuperAdmin.Permits(ActionManageUsers))
    assert.True(t, RoleSuperAdmin.Permits(ActionManageAdmins))
}

func TestRolePermitsUnknown(t *testing.T) {
    assert.False(t, Role("ghost").Permits(ActionRequestPass))
    assert.False(t, RoleSuperAdmin.Permits(Action("unknown:action")))
}

func TestValidAdminRole(t *testing.T) {
    assert.True(t, ValidAdminRole("admin"))
    assert.True(t, ValidAdminRole("superadmin"))
    assert.False(t, ValidAdminRole("rider"))
    assert.False(t, ValidAdminRole(""))
    assert.False(t, ValidAdminRole("ADMIN"))
}

func TestValidPassStatus(t *testing.T) {
    for _, s := range []string{"pending", "active", "rejected", "expired"} {
        assert.True(t, ValidPassStatus(s), s)
    }
    assert.False(t, ValidPassStatus(""))
    assert.False(t, ValidPassStatus("approved"))
    assert.False(t, ValidPassStatus("Active"))
}

func TestPassTerminal(t *testing.T) {
    assert.False(t, (&Pass{Status: PassPending}).Terminal())
    assert.False(t, (&Pass{Status: PassActive}).Terminal())
    assert.True(t, (&Pass{Status: PassRejected}).Terminal())
    assert.True(t, (&Pass{Status: PassExpired}).Terminal())
}
