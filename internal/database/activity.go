package database

import (
	"taskboard/internal/logging"
	"taskboard/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RecordActivity appends to a task's history. Failures are logged only.
func RecordActivity(db *gorm.DB, userID, taskID uint, action, details string) {
	if db == nil {
		return
	}
	record := models.ActivityLog{
		UserID:  userID,
		TaskID:  taskID,
		Action:  action,
		Details: details,
	}
	if err := db.Create(&record).Error; err != nil {
		logging.Logger.WithError(err).WithFields(logrus.Fields{
			"task_id": taskID,
			"action":  action,
		}).Warn("failed to record activity")
	}
}

func TaskActivity(db *gorm.DB, taskID uint) ([]models.ActivityLog, error) {
	var logs []models.ActivityLog
	err := db.Where("task_id = ?", taskID).
		Preload("User").
		Order("created_at asc, id asc").
		Find(&logs).Error
	return logs, err
}
