package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"taskboard/internal/database"
	"taskboard/internal/logging"
	"taskboard/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const projectsPath = "/view_task/"

type projectForm struct {
	Name        string `form:"name" binding:"required,max=100"`
	Description string `form:"description"`
	StartDate   string `form:"start_date" binding:"required,datetime=2006-01-02"`
}

//
// PROJECT LIST
//

// ViewProjects lists projects with their task count, fewest tasks first.
func ViewProjects(c *gin.Context) {
	projects, err := database.ProjectsByTaskCount(database.DB)
	if err != nil {
		logging.Logger.WithError(err).Error("failed to list projects")
		renderError(c, http.StatusInternalServerError, "Failed to load projects.")
		return
	}

	render(c, http.StatusOK, "show_task.html", gin.H{
		"title":    "Projects",
		"projects": projects,
	})
}

//
// CREATE / EDIT
//

func ShowNewProject(c *gin.Context) {
	render(c, http.StatusOK, "project_form.html", gin.H{
		"title": "Create Project",
		"form":  projectForm{StartDate: time.Now().Format(dateLayout)},
	})
}

func CreateProject(c *gin.Context) {
	var form projectForm
	start, errs := bindProject(c, &form)
	if len(errs) > 0 {
		render(c, http.StatusBadRequest, "project_form.html", gin.H{
			"title":  "Create Project",
			"form":   form,
			"errors": errs,
		})
		return
	}

	project := models.Project{
		Name:        form.Name,
		Description: strings.TrimSpace(form.Description),
		StartDate:   start,
	}
	if err := database.DB.Create(&project).Error; err != nil {
		logging.Logger.WithError(err).Error("failed to create project")
		render(c, http.StatusInternalServerError, "project_form.html", gin.H{
			"title":  "Create Project",
			"form":   form,
			"errors": formErrors{formAll: "The project could not be saved."},
		})
		return
	}

	flash(c, flashSuccess, "Project Created Successfully")
	c.Redirect(http.StatusFound, projectsPath)
}

func bindProject(c *gin.Context, form *projectForm) (time.Time, formErrors) {
	errs := bindForm(c, form)
	form.Name = strings.TrimSpace(form.Name)
	if form.Name == "" && errs["name"] == "" {
		errs["name"] = "This field is required."
	}

	var start time.Time
	if errs["start_date"] == "" {
		start, _ = time.Parse(dateLayout, form.StartDate)
	}
	return start, errs
}

func loadProject(c *gin.Context) (*models.Project, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		renderError(c, http.StatusNotFound, "Project not found.")
		return nil, false
	}

	var project models.Project
	if err := database.DB.First(&project, id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logging.Logger.WithError(err).WithField("project_id", id).Error("failed to load project")
		}
		renderError(c, http.StatusNotFound, "Project not found.")
		return nil, false
	}
	return &project, true
}

func ShowEditProject(c *gin.Context) {
	project, ok := loadProject(c)
	if !ok {
		return
	}

	render(c, http.StatusOK, "project_form.html", gin.H{
		"title":   "Update Project",
		"project": project,
		"form": projectForm{
			Name:        project.Name,
			Description: project.Description,
			StartDate:   project.StartDate.Format(dateLayout),
		},
	})
}

func UpdateProject(c *gin.Context) {
	project, ok := loadProject(c)
	if !ok {
		return
	}

	var form projectForm
	start, errs := bindProject(c, &form)
	if len(errs) > 0 {
		render(c, http.StatusBadRequest, "project_form.html", gin.H{
			"title":   "Update Project",
			"project": project,
			"form":    form,
			"errors":  errs,
		})
		return
	}

	project.Name = form.Name
	project.Description = strings.TrimSpace(form.Description)
	project.StartDate = start

	if err := database.DB.Save(project).Error; err != nil {
		logging.Logger.WithError(err).WithField("project_id", project.ID).Error("failed to update project")
		render(c, http.StatusInternalServerError, "project_form.html", gin.H{
			"title":   "Update Project",
			"project": project,
			"form":    form,
			"errors":  formErrors{formAll: "The project could not be saved."},
		})
		return
	}

	flash(c, flashSuccess, "Project Updated Successfully")
	c.Redirect(http.StatusFound, projectsPath)
}

//
// DELETE
//

func DeleteProject(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err == nil {
		_, err = database.DeleteProject(database.DB, uint(id))
	}
	if err != nil {
		logging.Logger.WithError(err).WithField("project_id", c.Param("id")).Warn("failed to delete project")
		flash(c, flashError, "Something went wrong")
		c.Redirect(http.StatusFound, projectsPath)
		return
	}

	flash(c, flashSuccess, "Project Deleted Successfully")
	c.Redirect(http.StatusFound, projectsPath)
}
