package models

import (
	"time"

	"gorm.io/gorm"
)

type Project struct {
	gorm.Model
	Name        string    `gorm:"size:100;not null"`
	Description string    `gorm:"type:text"`
	StartDate   time.Time `gorm:"type:date;not null"`

	Tasks []Task
}
