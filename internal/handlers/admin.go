package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"taskboard/internal/auth"
	"taskboard/internal/database"
	"taskboard/internal/logging"
	"taskboard/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type userRow struct {
	User  models.User
	Group string
}

func AdminDashboard(c *gin.Context) {
	users, err := database.ListUsers(database.DB)
	if err != nil {
		logging.Logger.WithError(err).Error("failed to list users")
		renderError(c, http.StatusInternalServerError, "Users could not be loaded.")
		return
	}

	rows := make([]userRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, userRow{User: u, Group: auth.PrimaryGroupName(&u)})
	}

	render(c, http.StatusOK, "admin_dashboard.html", gin.H{
		"title": "Admin Dashboard",
		"users": rows,
	})
}

//
// ROLE ASSIGNMENT
//

type assignRoleForm struct {
	Role uint `form:"role" binding:"required"`
}

func loadUser(c *gin.Context) (*models.User, bool) {
	id, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		renderError(c, http.StatusNotFound, "User not found")
		return nil, false
	}
	user, err := database.GetUser(database.DB, uint(id))
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logging.Logger.WithError(err).Error("failed to load user")
		}
		renderError(c, http.StatusNotFound, "User not found")
		return nil, false
	}
	return user, true
}

func renderAssignRole(c *gin.Context, status int, user *models.User, selected uint, errs formErrors) {
	groups, err := database.ListGroups(database.DB)
	if err != nil {
		logging.Logger.WithError(err).Error("failed to list groups")
	}
	render(c, status, "assign_role.html", gin.H{
		"title":    "Assign Role",
		"user":     user,
		"groups":   groups,
		"selected": selected,
		"errors":   errs,
	})
}

func ShowAssignRole(c *gin.Context) {
	user, ok := loadUser(c)
	if !ok {
		return
	}
	var selected uint
	if len(user.Groups) > 0 {
		selected = user.Groups[0].ID
	}
	renderAssignRole(c, http.StatusOK, user, selected, nil)
}

func AssignRole(c *gin.Context) {
	user, ok := loadUser(c)
	if !ok {
		return
	}

	var form assignRoleForm
	errs := bindForm(c, &form)

	var group models.Group
	if len(errs) == 0 {
		if err := database.DB.First(&group, form.Role).Error; err != nil {
			errs["role"] = "Select a valid choice. That choice is not one of the available choices."
		}
	}
	if len(errs) > 0 {
		renderAssignRole(c, http.StatusBadRequest, user, form.Role, errs)
		return
	}

	if err := database.AssignRole(database.DB, user, &group); err != nil {
		logging.Logger.WithError(err).WithField("user_id", user.ID).Error("failed to assign role")
		renderError(c, http.StatusInternalServerError, "Role could not be assigned.")
		return
	}

	logging.Logger.WithFields(logrus.Fields{"user_id": user.ID, "group": group.Name}).Info("role assigned")
	flash(c, flashSuccess, fmt.Sprintf("User %s has been assigned to the %s role", user.Username, group.Name))
	c.Redirect(http.StatusFound, auth.PathAdminDashboard)
}

//
// GROUPS
//

type createGroupForm struct {
	Name        string `form:"name" binding:"required,max=150"`
	Permissions []uint `form:"permissions"`
}

func renderCreateGroup(c *gin.Context, status int, form createGroupForm, errs formErrors) {
	perms, err := database.ListPermissions(database.DB)
	if err != nil {
		logging.Logger.WithError(err).Error("failed to list permissions")
	}
	selected := make(map[uint]bool, len(form.Permissions))
	for _, id := range form.Permissions {
		selected[id] = true
	}
	render(c, status, "create_group.html", gin.H{
		"title":       "Create Group",
		"form":        form,
		"permissions": perms,
		"selected":    selected,
		"errors":      errs,
	})
}

func ShowCreateGroup(c *gin.Context) {
	renderCreateGroup(c, http.StatusOK, createGroupForm{}, nil)
}

func CreateGroup(c *gin.Context) {
	var form createGroupForm
	errs := bindForm(c, &form)
	form.Name = strings.TrimSpace(form.Name)
	if form.Name == "" && errs["name"] == "" {
		errs["name"] = "This field is required."
	}

	if errs["name"] == "" {
		var count int64
		if err := database.DB.Model(&models.Group{}).Where("name = ?", form.Name).Count(&count).Error; err != nil {
			logging.Logger.WithError(err).Error("failed to check group name")
			errs[formAll] = lookupFailed
		} else if count > 0 {
			errs["name"] = "Group with this Name already exists."
		}
	}

	var perms []models.Permission
	if len(errs) == 0 && len(form.Permissions) > 0 {
		if err := database.DB.Where("id IN ?", form.Permissions).Find(&perms).Error; err != nil {
			logging.Logger.WithError(err).Error("failed to look up permissions")
			errs[formAll] = lookupFailed
		} else if len(perms) != len(uniqueIDs(form.Permissions)) {
			errs["permissions"] = "Select a valid choice."
		}
	}

	if len(errs) > 0 {
		renderCreateGroup(c, http.StatusBadRequest, form, errs)
		return
	}

	group := models.Group{Name: form.Name, Permissions: perms}
	if err := database.DB.Create(&group).Error; err != nil {
		logging.Logger.WithError(err).Error("failed to create group")
		renderError(c, http.StatusInternalServerError, "Group could not be created.")
		return
	}

	flash(c, flashSuccess, fmt.Sprintf("Group %s has been created successfully", group.Name))
	c.Redirect(http.StatusFound, "/admin/create-group/")
}

func GroupList(c *gin.Context) {
	groups, err := database.ListGroups(database.DB)
	if err != nil {
		logging.Logger.WithError(err).Error("failed to list groups")
		renderError(c, http.StatusInternalServerError, "Groups could not be loaded.")
		return
	}
	render(c, http.StatusOK, "group_list.html", gin.H{"title": "Groups", "groups": groups})
}
