package handlers

import (
	"net/http"

	"taskboard/internal/auth"
	"taskboard/internal/database"
	"taskboard/internal/logging"

	"github.com/gin-gonic/gin"
)

// ManagerDashboard lists tasks filtered by ?type= and the status counters.
func ManagerDashboard(c *gin.Context) {
	filter := c.DefaultQuery("type", "all")

	tasks, err := database.ListTasks(database.DB, filter)
	if err != nil {
		logging.Logger.WithError(err).Error("failed to list tasks")
		renderError(c, http.StatusInternalServerError, "Failed to load tasks.")
		return
	}

	counts, err := database.CountTasks(database.DB)
	if err != nil {
		logging.Logger.WithError(err).Error("failed to count tasks")
		renderError(c, http.StatusInternalServerError, "Failed to load tasks.")
		return
	}

	render(c, http.StatusOK, "manager_dashboard.html", gin.H{
		"title":  "Manager Dashboard",
		"tasks":  tasks,
		"counts": counts,
		"filter": filter,
		"role":   "manager",
	})
}

func EmployeeDashboard(c *gin.Context) {
	render(c, http.StatusOK, "user_dashboard.html", gin.H{"title": "Dashboard"})
}

// Dashboard sends the user to the landing page of their role.
func Dashboard(c *gin.Context) {
	c.Redirect(http.StatusFound, auth.DashboardPath(currentUser(c)))
}
