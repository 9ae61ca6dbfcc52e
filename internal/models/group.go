package models

import "gorm.io/gorm"

// Group is the only carrier of roles and permissions.
type Group struct {
	gorm.Model
	Name        string       `gorm:"uniqueIndex;size:150;not null"`
	Permissions []Permission `gorm:"many2many:group_permissions;"`
	Users       []User       `gorm:"many2many:user_groups;"`
}

type Permission struct {
	ID       uint   `gorm:"primaryKey"`
	Codename string `gorm:"uniqueIndex;size:100;not null"` // "tasks.add_task"
	Name     string `gorm:"size:255;not null"`
}
