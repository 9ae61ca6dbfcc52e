package models

import "time"

type ActivityLog struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time

	UserID uint
	User   User

	TaskID  uint   `gorm:"index"`
	Action  string `gorm:"size:50;not null"` // create, update, status_change, delete
	Details string `gorm:"type:text"`
}
