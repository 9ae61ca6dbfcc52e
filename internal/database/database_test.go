package database_test

import (
	"errors"
	"testing"
	"time"

	"taskboard/internal/auth"
	"taskboard/internal/database"
	"taskboard/internal/models"
	"taskboard/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSetupIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)

	require.NoError(t, database.Setup(db, database.AdminAccount{Username: "other", Password: "Other123!"}))

	var groups int64
	require.NoError(t, db.Model(&models.Group{}).Count(&groups).Error)
	assert.EqualValues(t, 3, groups)

	var perms int64
	require.NoError(t, db.Model(&models.Permission{}).Count(&perms).Error)
	assert.EqualValues(t, len(auth.Permissions), perms)

	var admins []models.User
	require.NoError(t, db.Where("is_superuser = ?", true).Find(&admins).Error)
	require.Len(t, admins, 1)
	assert.Equal(t, testutil.AdminUsername, admins[0].Username)

	admin, err := database.GetUser(db, admins[0].ID)
	require.NoError(t, err)
	assert.True(t, auth.IsAdmin(admin))
	assert.True(t, auth.CheckPassword(admin.PasswordHash, testutil.AdminPassword))
}

func TestDefaultGroupPermissions(t *testing.T) {
	db := testutil.NewDB(t)

	employee := testutil.CreateUser(t, db, "emp", auth.GroupEmployee)
	assert.True(t, auth.HasPerm(employee, auth.PermViewProject))
	assert.False(t, auth.HasPerm(employee, auth.PermAddTask))

	manager := testutil.CreateUser(t, db, "boss", auth.GroupManager)
	assert.True(t, auth.HasPerm(manager, auth.PermDeleteTask))
}

func TestCountTasks(t *testing.T) {
	db := testutil.NewDB(t)
	project := testutil.CreateProject(t, db, "Apollo")

	statuses := []models.TaskStatus{
		models.StatusPending, models.StatusPending,
		models.StatusInProgress,
		models.StatusCompleted, models.StatusCompleted, models.StatusCompleted,
	}
	for i, s := range statuses {
		testutil.CreateTask(t, db, project, "task "+string(rune('a'+i)), s)
	}

	counts, err := database.CountTasks(db)
	require.NoError(t, err)

	assert.Equal(t, database.TaskCounts{Total: 6, Completed: 3, InProgress: 1, Pending: 2}, counts)
	assert.Equal(t, counts.Total, counts.Completed+counts.InProgress+counts.Pending)
}

func TestListTasksFilter(t *testing.T) {
	db := testutil.NewDB(t)
	project := testutil.CreateProject(t, db, "Apollo")
	testutil.CreateTask(t, db, project, "write docs", models.StatusPending)
	testutil.CreateTask(t, db, project, "ship it", models.StatusCompleted)

	tests := []struct {
		filter string
		want   int
	}{
		{"pending", 1},
		{"completed", 1},
		{"in-progress", 0},
		{"all", 2},
		{"", 2},
		{"bogus", 2},
	}
	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			tasks, err := database.ListTasks(db, tt.filter)
			require.NoError(t, err)
			assert.Len(t, tasks, tt.want)
		})
	}
}

func TestStatusCheckConstraint(t *testing.T) {
	db := testutil.NewDB(t)
	project := testutil.CreateProject(t, db, "Apollo")
	task := testutil.CreateTask(t, db, project, "write docs", models.StatusPending)

	err := db.Model(&models.Task{}).Where("id = ?", task.ID).Update("status", "DONE").Error
	assert.Error(t, err)

	assert.Error(t, database.UpdateTaskStatus(db, task, "DONE"))

	reloaded, err := database.GetTask(db, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, reloaded.Status)
}

func TestSaveTaskRollsBack(t *testing.T) {
	db := testutil.NewDB(t)
	project := testutil.CreateProject(t, db, "Apollo")

	task := models.Task{
		ProjectID: project.ID,
		Title:     "half saved",
		DueDate:   time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Status:    models.StatusPending,
	}
	detail := models.TaskDetail{Priority: models.PriorityHigh}
	require.NoError(t, db.Exec(
		"CREATE TRIGGER reject_detail BEFORE INSERT ON task_details BEGIN SELECT RAISE(ABORT, 'rejected'); END",
	).Error)

	err := database.SaveTask(db, &task, &detail, nil)
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Task{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSaveTaskAssignees(t *testing.T) {
	db := testutil.NewDB(t)
	project := testutil.CreateProject(t, db, "Apollo")
	ann := testutil.CreateUser(t, db, "ann")
	bob := testutil.CreateUser(t, db, "bob")

	task := testutil.CreateTask(t, db, project, "pair up", models.StatusPending, *ann, *bob)

	loaded, err := database.GetTask(db, task.ID)
	require.NoError(t, err)
	require.Len(t, loaded.AssignedTo, 2)
	assert.Equal(t, "ann", loaded.AssignedTo[0].Username)
	require.NotNil(t, loaded.Detail)
	assert.Equal(t, models.PriorityMedium, loaded.Detail.Priority)

	detail := *loaded.Detail
	loaded.Title = "solo"
	require.NoError(t, database.SaveTask(db, loaded, &detail, []models.User{*bob}))

	again, err := database.GetTask(db, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "solo", again.Title)
	require.Len(t, again.AssignedTo, 1)
	assert.Equal(t, "bob", again.AssignedTo[0].Username)

	require.NoError(t, database.SaveTask(db, again, again.Detail, nil))
	cleared, err := database.GetTask(db, task.ID)
	require.NoError(t, err)
	assert.Empty(t, cleared.AssignedTo)

	var details int64
	require.NoError(t, db.Model(&models.TaskDetail{}).Count(&details).Error)
	assert.EqualValues(t, 1, details, "detail is updated in place")
}

func TestDeleteTask(t *testing.T) {
	db := testutil.NewDB(t)
	project := testutil.CreateProject(t, db, "Apollo")
	ann := testutil.CreateUser(t, db, "ann")
	task := testutil.CreateTask(t, db, project, "doomed", models.StatusPending, *ann)
	database.RecordActivity(db, ann.ID, task.ID, "create", "Task created")

	deleted, err := database.DeleteTask(db, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "doomed", deleted.Title)

	for _, model := range []any{&models.Task{}, &models.TaskDetail{}, &models.ActivityLog{}} {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		assert.Zero(t, count)
	}

	_, err = database.DeleteTask(db, task.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestProjectsByTaskCount(t *testing.T) {
	db := testutil.NewDB(t)
	busy := testutil.CreateProject(t, db, "Busy")
	quiet := testutil.CreateProject(t, db, "Quiet")
	empty := testutil.CreateProject(t, db, "Empty")

	testutil.CreateTask(t, db, busy, "one", models.StatusPending)
	testutil.CreateTask(t, db, busy, "two", models.StatusPending)
	testutil.CreateTask(t, db, quiet, "three", models.StatusPending)

	rows, err := database.ProjectsByTaskCount(db)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, empty.ID, rows[0].ID)
	assert.EqualValues(t, 0, rows[0].NumTask)
	assert.Equal(t, quiet.ID, rows[1].ID)
	assert.EqualValues(t, 1, rows[1].NumTask)
	assert.Equal(t, busy.ID, rows[2].ID)
	assert.EqualValues(t, 2, rows[2].NumTask)
	assert.Equal(t, "Busy", rows[2].Name)
}

func TestDeleteProject(t *testing.T) {
	db := testutil.NewDB(t)
	project := testutil.CreateProject(t, db, "Gone")
	keep := testutil.CreateProject(t, db, "Kept")
	testutil.CreateTask(t, db, project, "one", models.StatusPending)
	testutil.CreateTask(t, db, keep, "two", models.StatusPending)

	_, err := database.DeleteProject(db, project.ID)
	require.NoError(t, err)

	var tasks []models.Task
	require.NoError(t, db.Find(&tasks).Error)
	require.Len(t, tasks, 1)
	assert.Equal(t, keep.ID, tasks[0].ProjectID)

	rows, err := database.ProjectsByTaskCount(db)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestAssignRole(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "multi", auth.GroupEmployee, auth.GroupManager)
	require.Len(t, user.Groups, 2)

	var admin models.Group
	require.NoError(t, db.Where("name = ?", auth.GroupAdmin).First(&admin).Error)

	require.NoError(t, database.AssignRole(db, user, &admin))

	reloaded, err := database.GetUser(db, user.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Groups, 1)
	assert.Equal(t, auth.GroupAdmin, reloaded.Groups[0].Name)
}

func TestTaskActivity(t *testing.T) {
	db := testutil.NewDB(t)
	project := testutil.CreateProject(t, db, "Apollo")
	ann := testutil.CreateUser(t, db, "ann")
	task := testutil.CreateTask(t, db, project, "tracked", models.StatusPending)

	database.RecordActivity(db, ann.ID, task.ID, "create", "Task created")
	database.RecordActivity(db, ann.ID, task.ID, "status_change", "Status changed to Completed")

	logs, err := database.TaskActivity(db, task.ID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "create", logs[0].Action)
	assert.Equal(t, "ann", logs[1].User.Username)
}
