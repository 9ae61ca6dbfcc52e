package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"taskboard/internal/auth"
	"taskboard/internal/database"
	"taskboard/internal/logging"
	"taskboard/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type taskForm struct {
	ProjectID   uint   `form:"project" binding:"required"`
	Title       string `form:"title" binding:"required,max=250"`
	Description string `form:"description"`
	DueDate     string `form:"due_date" binding:"required,datetime=2006-01-02"`
	AssignedTo  []uint `form:"assigned_to"`
}

type taskDetailForm struct {
	Priority string `form:"priority" binding:"required,task_priority"`
	Notes    string `form:"notes"`
}

func newTaskDetailForm() taskDetailForm {
	return taskDetailForm{Priority: string(models.PriorityLow)}
}

func taskFormFrom(t *models.Task) taskForm {
	f := taskForm{
		ProjectID:   t.ProjectID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate.Format(dateLayout),
	}
	for _, u := range t.AssignedTo {
		f.AssignedTo = append(f.AssignedTo, u.ID)
	}
	return f
}

func taskDetailFormFrom(d *models.TaskDetail) taskDetailForm {
	if d == nil {
		return newTaskDetailForm()
	}
	return taskDetailForm{Priority: string(d.Priority), Notes: d.Notes}
}

// boundTask is a validated task form resolved against the database.
type boundTask struct {
	form      taskForm
	detail    taskDetailForm
	dueDate   time.Time
	assignees []models.User
	asset     string // media path of a freshly saved upload
}

// bindTask binds and validates both sub-forms. The asset upload is stored
// only when both are valid.
func bindTask(c *gin.Context) (*boundTask, formErrors, formErrors) {
	b := &boundTask{}
	taskErrs := bindForm(c, &b.form)
	detailErrs := bindForm(c, &b.detail)

	b.form.Title = strings.TrimSpace(b.form.Title)
	if b.form.Title == "" && taskErrs["title"] == "" {
		taskErrs["title"] = "This field is required."
	}

	if taskErrs["project"] == "" && b.form.ProjectID != 0 {
		var count int64
		if err := database.DB.Model(&models.Project{}).Where("id = ?", b.form.ProjectID).Count(&count).Error; err != nil {
			logging.Logger.WithError(err).Error("failed to look up task project")
			taskErrs[formAll] = lookupFailed
		} else if count == 0 {
			taskErrs["project"] = "Select a valid choice. That choice is not one of the available choices."
		}
	}

	if taskErrs["due_date"] == "" {
		if d, err := time.Parse(dateLayout, b.form.DueDate); err == nil {
			b.dueDate = d
		}
	}

	if ids := uniqueIDs(b.form.AssignedTo); len(ids) > 0 {
		if err := database.DB.Where("id IN ?", ids).Order("username asc").Find(&b.assignees).Error; err != nil {
			logging.Logger.WithError(err).Error("failed to look up task assignees")
			taskErrs[formAll] = lookupFailed
		} else if len(b.assignees) != len(ids) {
			taskErrs["assigned_to"] = "Select a valid choice. One of the selected users is not available."
		}
	}

	fh, msg := uploadedImage(c, "asset")
	if msg != "" {
		detailErrs["asset"] = msg
	}

	if len(taskErrs) > 0 || len(detailErrs) > 0 {
		return b, taskErrs, detailErrs
	}

	if fh != nil {
		rel, err := saveUpload(c, fh, "tasks_asset")
		if err != nil {
			logging.Logger.WithError(err).Error("failed to store task asset")
			detailErrs["asset"] = "The file could not be stored."
			return b, taskErrs, detailErrs
		}
		b.asset = rel
	}
	return b, taskErrs, detailErrs
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id != 0 && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func (b *boundTask) apply(task *models.Task, detail *models.TaskDetail) {
	task.ProjectID = b.form.ProjectID
	task.Title = b.form.Title
	task.Description = strings.TrimSpace(b.form.Description)
	task.DueDate = b.dueDate

	detail.Priority = models.TaskPriority(b.detail.Priority)
	detail.Notes = strings.TrimSpace(b.detail.Notes)
	if b.asset != "" {
		detail.Asset = b.asset
	}
	if detail.Asset == "" {
		detail.Asset = models.DefaultTaskAsset
	}
}

func renderTaskForm(c *gin.Context, status int, task *models.Task, tf taskForm, df taskDetailForm, taskErrs, detailErrs formErrors) {
	projects, err := database.ListProjects(database.DB)
	if err != nil {
		logging.Logger.WithError(err).Error("failed to list projects")
	}
	users, err := database.ListActiveUsers(database.DB)
	if err != nil {
		logging.Logger.WithError(err).Error("failed to list users")
	}

	title := "Create Task"
	if task != nil {
		title = "Update Task"
	}

	render(c, status, "task_form.html", gin.H{
		"title":              title,
		"task":               task,
		"task_form":          tf,
		"task_detail_form":   df,
		"task_errors":        taskErrs,
		"task_detail_errors": detailErrs,
		"projects":           projects,
		"users":              users,
		"priorities":         models.TaskPriorities,
	})
}

//
// CREATE
//

func ShowCreateTask(c *gin.Context) {
	renderTaskForm(c, http.StatusOK, nil, taskForm{}, newTaskDetailForm(), nil, nil)
}

func CreateTask(c *gin.Context) {
	b, taskErrs, detailErrs := bindTask(c)
	if len(taskErrs) > 0 || len(detailErrs) > 0 {
		renderTaskForm(c, http.StatusBadRequest, nil, b.form, b.detail, taskErrs, detailErrs)
		return
	}

	task := models.Task{Status: models.StatusPending}
	detail := models.TaskDetail{}
	b.apply(&task, &detail)

	if err := database.SaveTask(database.DB, &task, &detail, b.assignees); err != nil {
		removeUpload(b.asset)
		logging.Logger.WithError(err).Error("failed to create task")
		renderTaskForm(c, http.StatusInternalServerError, nil, b.form, b.detail,
			formErrors{formAll: "The task could not be saved. Please try again."}, nil)
		return
	}

	database.RecordActivity(database.DB, currentUserID(c), task.ID, "create", "Task created: "+task.Title)
	logging.Logger.WithFields(logrus.Fields{"task_id": task.ID, "user_id": currentUserID(c)}).Info("task created")

	flash(c, flashSuccess, "Task Created Successfully")
	renderTaskForm(c, http.StatusOK, nil, taskForm{}, newTaskDetailForm(), nil, nil)
}

//
// UPDATE
//

func loadTask(c *gin.Context, param string) (*models.Task, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		renderError(c, http.StatusNotFound, "Task not found.")
		return nil, false
	}

	task, err := database.GetTask(database.DB, uint(id))
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logging.Logger.WithError(err).WithField("task_id", id).Error("failed to load task")
		}
		renderError(c, http.StatusNotFound, "Task not found.")
		return nil, false
	}
	return task, true
}

func ShowUpdateTask(c *gin.Context) {
	task, ok := loadTask(c, "id")
	if !ok {
		return
	}
	renderTaskForm(c, http.StatusOK, task, taskFormFrom(task), taskDetailFormFrom(task.Detail), nil, nil)
}

// UpdateTask always redirects back to the update page; validation errors
// travel as an error notice.
func UpdateTask(c *gin.Context) {
	task, ok := loadTask(c, "id")
	if !ok {
		return
	}
	back := "/update-task/" + strconv.FormatUint(uint64(task.ID), 10) + "/"

	b, taskErrs, detailErrs := bindTask(c)
	if len(taskErrs) > 0 || len(detailErrs) > 0 {
		flash(c, flashError, "Task was not updated. "+merge(taskErrs, detailErrs).summary())
		c.Redirect(http.StatusFound, back)
		return
	}

	detail := task.Detail
	if detail == nil {
		detail = &models.TaskDetail{}
	}
	previousAsset := detail.Asset
	b.apply(task, detail)

	if err := database.SaveTask(database.DB, task, detail, b.assignees); err != nil {
		removeUpload(b.asset)
		logging.Logger.WithError(err).WithField("task_id", task.ID).Error("failed to update task")
		flash(c, flashError, "Something went wrong")
		c.Redirect(http.StatusFound, back)
		return
	}

	if b.asset != "" && previousAsset != b.asset {
		removeUpload(previousAsset)
	}

	database.RecordActivity(database.DB, currentUserID(c), task.ID, "update", "Task updated: "+task.Title)
	flash(c, flashSuccess, "Task Updated Successfully")
	c.Redirect(http.StatusFound, back)
}

//
// DELETE
//

// DeleteTask reports every failure with the same generic notice.
func DeleteTask(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err == nil {
		var task *models.Task
		task, err = database.DeleteTask(database.DB, uint(id))
		if err == nil {
			logging.Logger.WithFields(logrus.Fields{"task_id": task.ID, "user_id": currentUserID(c)}).Info("task deleted")
			flash(c, flashSuccess, "Task Deleted Successfully")
			c.Redirect(http.StatusFound, auth.PathManagerDashboard)
			return
		}
	}

	logging.Logger.WithError(err).WithField("task_id", c.Param("id")).Warn("failed to delete task")
	flash(c, flashError, "Something went wrong")
	c.Redirect(http.StatusFound, auth.PathManagerDashboard)
}

//
// DETAILS / STATUS
//

func ShowTaskDetails(c *gin.Context) {
	task, ok := loadTask(c, "task_id")
	if !ok {
		return
	}

	activity, err := database.TaskActivity(database.DB, task.ID)
	if err != nil {
		logging.Logger.WithError(err).WithField("task_id", task.ID).Warn("failed to load task activity")
	}

	render(c, http.StatusOK, "task_details.html", gin.H{
		"title":          task.Title,
		"task":           task,
		"status_choices": models.TaskStatuses,
		"activity":       activity,
	})
}

type taskStatusForm struct {
	Status string `form:"task_status" binding:"required,task_status"`
}

// ChangeTaskStatus overwrites the status with any valid value; there are
// no transition rules.
func ChangeTaskStatus(c *gin.Context) {
	task, ok := loadTask(c, "task_id")
	if !ok {
		return
	}
	back := "/task/" + strconv.FormatUint(uint64(task.ID), 10) + "/details/"

	var form taskStatusForm
	if errs := bindForm(c, &form); len(errs) > 0 {
		flash(c, flashError, "Select a valid status.")
		c.Redirect(http.StatusFound, back)
		return
	}

	status := models.TaskStatus(form.Status)
	if err := database.UpdateTaskStatus(database.DB, task, status); err != nil {
		logging.Logger.WithError(err).WithField("task_id", task.ID).Error("failed to change task status")
		flash(c, flashError, "Something went wrong")
		c.Redirect(http.StatusFound, back)
		return
	}

	database.RecordActivity(database.DB, currentUserID(c), task.ID, "status_change", "Status changed to "+status.Label())
	c.Redirect(http.StatusFound, back)
}
