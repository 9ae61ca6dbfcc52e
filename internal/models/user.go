package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

const DefaultProfileImage = "profile_images/default.png"

type User struct {
	gorm.Model
	Username     string `gorm:"uniqueIndex;size:150;not null"`
	Email        string `gorm:"size:254;index"`
	FirstName    string `gorm:"size:150"`
	LastName     string `gorm:"size:150"`
	PasswordHash string `gorm:"not null"`
	IsActive     bool   `gorm:"not null;default:false"`
	IsSuperuser  bool   `gorm:"not null;default:false"`
	LastLogin    *time.Time

	ProfileImage string `gorm:"size:255"`
	Bio          string `gorm:"type:text"`

	Groups []Group `gorm:"many2many:user_groups;"`
}

func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// DisplayName falls back to the username when no name is set.
func (u User) DisplayName() string {
	if n := u.FullName(); n != "" {
		return n
	}
	return u.Username
}
