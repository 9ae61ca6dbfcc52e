package database

import (
	"fmt"

	"taskboard/internal/models"

	"gorm.io/gorm"
)

func withGroups(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Groups", func(tx *gorm.DB) *gorm.DB { return tx.Order("id asc") }).
		Preload("Groups.Permissions")
}

// GetUser loads a user with groups and their permissions.
func GetUser(db *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	if err := withGroups(db).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func ListUsers(db *gorm.DB) ([]models.User, error) {
	var users []models.User
	err := withGroups(db).Order("id asc").Find(&users).Error
	return users, err
}

func ListActiveUsers(db *gorm.DB) ([]models.User, error) {
	var users []models.User
	err := db.Where("is_active = ?", true).Order("username asc").Find(&users).Error
	return users, err
}

func ListGroups(db *gorm.DB) ([]models.Group, error) {
	var groups []models.Group
	err := db.Preload("Permissions", func(tx *gorm.DB) *gorm.DB { return tx.Order("codename asc") }).
		Order("name asc").
		Find(&groups).Error
	return groups, err
}

func ListPermissions(db *gorm.DB) ([]models.Permission, error) {
	var perms []models.Permission
	err := db.Order("codename asc").Find(&perms).Error
	return perms, err
}

// AssignRole leaves the user in exactly one group.
func AssignRole(db *gorm.DB, user *models.User, group *models.Group) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(user).Association("Groups").Clear(); err != nil {
			return fmt.Errorf("failed to clear groups: %w", err)
		}
		if err := tx.Model(user).Association("Groups").Append(group); err != nil {
			return fmt.Errorf("failed to add group: %w", err)
		}
		return nil
	})
}
