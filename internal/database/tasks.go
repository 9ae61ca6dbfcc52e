package database

import (
	"fmt"

	"taskboard/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TaskCounts struct {
	Total      int64
	Completed  int64
	InProgress int64
	Pending    int64
}

// CountTasks computes all dashboard counters in a single aggregate query.
func CountTasks(db *gorm.DB) (TaskCounts, error) {
	var counts TaskCounts
	err := db.Model(&models.Task{}).
		Select(
			"COUNT(id) AS total, "+
				"COUNT(CASE WHEN status = ? THEN 1 END) AS completed, "+
				"COUNT(CASE WHEN status = ? THEN 1 END) AS in_progress, "+
				"COUNT(CASE WHEN status = ? THEN 1 END) AS pending",
			models.StatusCompleted, models.StatusInProgress, models.StatusPending,
		).
		Scan(&counts).Error
	return counts, err
}

// StatusFilters maps the dashboard "type" query value to a status.
var StatusFilters = map[string]models.TaskStatus{
	"completed":   models.StatusCompleted,
	"in-progress": models.StatusInProgress,
	"pending":     models.StatusPending,
}

// ListTasks lists tasks with project, detail and assignees. Unknown filter
// values list every task.
func ListTasks(db *gorm.DB, filter string) ([]models.Task, error) {
	q := db.Preload("Project").Preload("Detail").Preload("AssignedTo").
		Order("due_date asc, id asc")

	if status, ok := StatusFilters[filter]; ok {
		q = q.Where("status = ?", status)
	}

	var tasks []models.Task
	err := q.Find(&tasks).Error
	return tasks, err
}

func GetTask(db *gorm.DB, id uint) (*models.Task, error) {
	var task models.Task
	err := db.Preload("Project").Preload("Detail").
		Preload("AssignedTo", func(tx *gorm.DB) *gorm.DB { return tx.Order("username asc") }).
		First(&task, id).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// SaveTask writes a task, its assignees and its detail atomically.
func SaveTask(db *gorm.DB, task *models.Task, detail *models.TaskDetail, assignees []models.User) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(task).Error; err != nil {
			return fmt.Errorf("failed to save task: %w", err)
		}

		assoc := tx.Model(task).Association("AssignedTo")
		if len(assignees) == 0 {
			if err := assoc.Clear(); err != nil {
				return fmt.Errorf("failed to clear assignees: %w", err)
			}
		} else if err := assoc.Replace(assignees); err != nil {
			return fmt.Errorf("failed to save assignees: %w", err)
		}

		detail.TaskID = task.ID
		if err := tx.Save(detail).Error; err != nil {
			return fmt.Errorf("failed to save task detail: %w", err)
		}
		task.Detail = detail
		return nil
	})
}

func UpdateTaskStatus(db *gorm.DB, task *models.Task, status models.TaskStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid task status %q", status)
	}
	if err := db.Model(task).Update("status", status).Error; err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	return nil
}

// DeleteTask removes the task with its detail, assignments and history.
// A missing task yields gorm.ErrRecordNotFound.
func DeleteTask(db *gorm.DB, id uint) (*models.Task, error) {
	var task models.Task
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&task).Association("AssignedTo").Clear(); err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", task.ID).Delete(&models.TaskDetail{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", task.ID).Delete(&models.ActivityLog{}).Error; err != nil {
			return err
		}
		return tx.Delete(&task).Error
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}
