// Package testutil provides a migrated SQLite database and fixtures for
// package tests.
package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"taskboard/internal/auth"
	"taskboard/internal/database"
	"taskboard/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	AdminUsername = "admin"
	AdminPassword = "Admin123!"
	Password      = "Passw0rd!42"
)

// NewDB opens a fresh database file under t.TempDir with the schema,
// default groups and default admin in place.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "taskboard.db") + "?_pragma=foreign_keys(1)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, database.Setup(db, database.AdminAccount{
		Username: AdminUsername,
		Password: AdminPassword,
		Email:    "admin@example.com",
	}))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// CreateUser creates an active user with Password in the given groups.
func CreateUser(t *testing.T, db *gorm.DB, username string, groups ...string) *models.User {
	t.Helper()

	hash, err := auth.HashPassword(Password)
	require.NoError(t, err)

	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		IsActive:     true,
		ProfileImage: models.DefaultProfileImage,
	}
	require.NoError(t, db.Create(&user).Error)

	for _, name := range groups {
		var group models.Group
		require.NoError(t, db.Where("name = ?", name).First(&group).Error)
		require.NoError(t, db.Model(&user).Association("Groups").Append(&group))
	}

	loaded, err := database.GetUser(db, user.ID)
	require.NoError(t, err)
	return loaded
}

func CreateProject(t *testing.T, db *gorm.DB, name string) *models.Project {
	t.Helper()

	project := models.Project{
		Name:        name,
		Description: name + " description",
		StartDate:   time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(&project).Error)
	return &project
}

// CreateTask creates a task with a detail in the given status.
func CreateTask(t *testing.T, db *gorm.DB, project *models.Project, title string, status models.TaskStatus, assignees ...models.User) *models.Task {
	t.Helper()

	task := models.Task{
		ProjectID: project.ID,
		Title:     title,
		DueDate:   time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Status:    status,
	}
	detail := models.TaskDetail{
		Priority: models.PriorityMedium,
		Asset:    models.DefaultTaskAsset,
	}
	require.NoError(t, database.SaveTask(db, &task, &detail, assignees))
	return &task
}
