package auth

import (
	"testing"

	"taskboard/internal/models"

	"github.com/stretchr/testify/assert"
)

func userIn(groups ...string) *models.User {
	u := &models.User{Username: "u", IsActive: true}
	for _, g := range groups {
		grp := models.Group{Name: g}
		for _, code := range DefaultGroups[g] {
			grp.Permissions = append(grp.Permissions, models.Permission{Codename: code})
		}
		u.Groups = append(u.Groups, grp)
	}
	return u
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name                      string
		user                      *models.User
		admin, manager, employee bool
	}{
		{name: "anonymous", user: nil},
		{name: "no groups", user: userIn()},
		{name: "admin", user: userIn(GroupAdmin), admin: true},
		{name: "manager", user: userIn(GroupManager), manager: true, employee: true},
		{name: "employee only", user: userIn(GroupEmployee)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.admin, IsAdmin(tt.user))
			assert.Equal(t, tt.manager, IsManager(tt.user))
			assert.Equal(t, tt.employee, IsEmployee(tt.user))
		})
	}
}

func TestDashboardPath(t *testing.T) {
	tests := []struct {
		name string
		user *models.User
		want string
	}{
		{name: "manager", user: userIn(GroupManager), want: PathManagerDashboard},
		{name: "manager wins over admin", user: userIn(GroupAdmin, GroupManager), want: PathManagerDashboard},
		{name: "admin", user: userIn(GroupAdmin), want: PathAdminDashboard},
		// Employee-only users fall through because IsEmployee looks at Manager.
		{name: "employee only", user: userIn(GroupEmployee), want: PathNoPermission},
		{name: "no group", user: userIn(), want: PathNoPermission},
		{name: "anonymous", user: nil, want: PathNoPermission},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DashboardPath(tt.user))
		})
	}
}

func TestHasPerm(t *testing.T) {
	employee := userIn(GroupEmployee)
	assert.True(t, HasPerm(employee, PermViewProject))
	assert.False(t, HasPerm(employee, PermDeleteTask))

	manager := userIn(GroupManager)
	assert.True(t, HasPerm(manager, PermDeleteTask))

	inactive := userIn(GroupManager)
	inactive.IsActive = false
	assert.False(t, HasPerm(inactive, PermDeleteTask))

	super := &models.User{IsActive: true, IsSuperuser: true}
	assert.True(t, HasPerm(super, PermAddProject))

	assert.False(t, HasPerm(nil, PermViewTask))
}

func TestPrimaryGroupName(t *testing.T) {
	assert.Equal(t, "No Group Assigned", PrimaryGroupName(userIn()))
	assert.Equal(t, GroupEmployee, PrimaryGroupName(userIn(GroupEmployee, GroupAdmin)))
}
