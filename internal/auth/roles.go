// Package auth derives roles and permissions from group membership and
// issues the signed tokens used by account activation and password reset.
package auth

import "taskboard/internal/models"

const (
	GroupAdmin    = "Admin"
	GroupManager  = "Manager"
	GroupEmployee = "Employee"
)

const (
	PermAddTask       = "tasks.add_task"
	PermChangeTask    = "tasks.change_task"
	PermDeleteTask    = "tasks.delete_task"
	PermViewTask      = "tasks.view_task"
	PermAddProject    = "projects.add_project"
	PermChangeProject = "projects.change_project"
	PermDeleteProject = "projects.delete_project"
	PermViewProject   = "projects.view_project"
)

// Permissions is the catalog created at startup.
var Permissions = []models.Permission{
	{Codename: PermAddTask, Name: "Can add task"},
	{Codename: PermChangeTask, Name: "Can change task"},
	{Codename: PermDeleteTask, Name: "Can delete task"},
	{Codename: PermViewTask, Name: "Can view task"},
	{Codename: PermAddProject, Name: "Can add project"},
	{Codename: PermChangeProject, Name: "Can change project"},
	{Codename: PermDeleteProject, Name: "Can delete project"},
	{Codename: PermViewProject, Name: "Can view project"},
}

// DefaultGroups maps each built-in group to its permission codenames.
var DefaultGroups = map[string][]string{
	GroupAdmin: {
		PermAddTask, PermChangeTask, PermDeleteTask, PermViewTask,
		PermAddProject, PermChangeProject, PermDeleteProject, PermViewProject,
	},
	GroupManager: {
		PermAddTask, PermChangeTask, PermDeleteTask, PermViewTask,
		PermAddProject, PermChangeProject, PermDeleteProject, PermViewProject,
	},
	GroupEmployee: {PermViewTask, PermViewProject},
}

const (
	PathManagerDashboard  = "/manager-dashboard/"
	PathEmployeeDashboard = "/user-dashboard/"
	PathAdminDashboard    = "/admin/dashboard/"
	PathNoPermission      = "/no-permission/"
	PathSignIn            = "/sign-in/"
)

// InGroup expects u.Groups to be loaded.
func InGroup(u *models.User, name string) bool {
	if u == nil {
		return false
	}
	for _, g := range u.Groups {
		if g.Name == name {
			return true
		}
	}
	return false
}

func IsAdmin(u *models.User) bool {
	return InGroup(u, GroupAdmin)
}

func IsManager(u *models.User) bool {
	return InGroup(u, GroupManager)
}

// IsEmployee checks the Manager group, exactly like IsManager. Users who
// only belong to Employee are not matched.
func IsEmployee(u *models.User) bool {
	return InGroup(u, GroupManager)
}

// HasPerm expects u.Groups and their Permissions to be loaded.
func HasPerm(u *models.User, codename string) bool {
	if u == nil || !u.IsActive {
		return false
	}
	if u.IsSuperuser {
		return true
	}
	for _, g := range u.Groups {
		for _, p := range g.Permissions {
			if p.Codename == codename {
				return true
			}
		}
	}
	return false
}

// DashboardPath picks the landing page by first match in the order
// Manager, Employee, Admin.
func DashboardPath(u *models.User) string {
	switch {
	case IsManager(u):
		return PathManagerDashboard
	case IsEmployee(u):
		return PathEmployeeDashboard
	case IsAdmin(u):
		return PathAdminDashboard
	}
	return PathNoPermission
}

// PrimaryGroupName returns the first group of u, or "No Group Assigned".
func PrimaryGroupName(u *models.User) string {
	if u == nil || len(u.Groups) == 0 {
		return "No Group Assigned"
	}
	return u.Groups[0].Name
}
