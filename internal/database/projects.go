package database

import (
	"fmt"
	"time"

	"taskboard/internal/models"

	"gorm.io/gorm"
)

type ProjectTaskCount struct {
	ID          uint
	Name        string
	Description string
	StartDate   time.Time
	NumTask     int64
}

// ProjectsByTaskCount lists projects annotated with their task count,
// fewest tasks first.
func ProjectsByTaskCount(db *gorm.DB) ([]ProjectTaskCount, error) {
	var rows []ProjectTaskCount
	err := db.Model(&models.Project{}).
		Select("projects.id, projects.name, projects.description, projects.start_date, COUNT(tasks.id) AS num_task").
		Joins("LEFT JOIN tasks ON tasks.project_id = projects.id").
		Group("projects.id, projects.name, projects.description, projects.start_date").
		Order("num_task asc, projects.id asc").
		Scan(&rows).Error
	return rows, err
}

func ListProjects(db *gorm.DB) ([]models.Project, error) {
	var projects []models.Project
	err := db.Order("name asc").Find(&projects).Error
	return projects, err
}

// DeleteProject removes the project together with all of its tasks.
func DeleteProject(db *gorm.DB, id uint) (*models.Project, error) {
	var project models.Project
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&project, id).Error; err != nil {
			return err
		}

		var taskIDs []uint
		if err := tx.Model(&models.Task{}).Where("project_id = ?", project.ID).Pluck("id", &taskIDs).Error; err != nil {
			return err
		}
		for _, taskID := range taskIDs {
			if _, err := DeleteTask(tx, taskID); err != nil {
				return fmt.Errorf("failed to delete task %d: %w", taskID, err)
			}
		}

		return tx.Delete(&project).Error
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}
