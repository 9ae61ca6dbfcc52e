package database

import (
	"fmt"
	"time"

	"taskboard/internal/auth"
	"taskboard/internal/logging"
	"taskboard/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

type AdminAccount struct {
	Username string
	Password string
	Email    string
}

func Init(dsn string, admin AdminAccount) {
	var err error

	const maxAttempts = 10
	for i := 1; i <= maxAttempts; i++ {
		logging.Logger.Infof("trying to connect to DB (attempt %d/%d)...", i, maxAttempts)

		DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logging.GormLogger()})
		if err == nil {
			logging.Logger.Info("connected to DB successfully")
			break
		}

		logging.Logger.WithError(err).Warn("failed to connect to DB")
		time.Sleep(2 * time.Second)
	}

	if err != nil {
		logging.Logger.Fatalf("failed to connect to db after %d attempts: %v", maxAttempts, err)
	}

	if err := Setup(DB, admin); err != nil {
		logging.Logger.Fatalf("failed to prepare db: %v", err)
	}
}

// Setup migrates the schema and makes sure the permission catalog, the
// default groups and the default admin exist.
func Setup(db *gorm.DB, admin AdminAccount) error {
	if err := Migrate(db); err != nil {
		return err
	}
	if err := EnsureGroups(db); err != nil {
		return err
	}
	return createDefaultAdmin(db, admin)
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Permission{},
		&models.Group{},
		&models.User{},
		&models.Project{},
		&models.Task{},
		&models.TaskDetail{},
		&models.ActivityLog{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

// EnsureGroups creates missing permissions and default groups. Permissions
// of an existing group are left as they are.
func EnsureGroups(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		byCode := make(map[string]models.Permission, len(auth.Permissions))
		for _, p := range auth.Permissions {
			perm := p
			if err := tx.Where(models.Permission{Codename: p.Codename}).
				Attrs(models.Permission{Name: p.Name}).
				FirstOrCreate(&perm).Error; err != nil {
				return fmt.Errorf("failed to ensure permission %s: %w", p.Codename, err)
			}
			byCode[perm.Codename] = perm
		}

		for _, name := range []string{auth.GroupAdmin, auth.GroupManager, auth.GroupEmployee} {
			var count int64
			if err := tx.Model(&models.Group{}).Where("name = ?", name).Count(&count).Error; err != nil {
				return fmt.Errorf("failed to check group %s: %w", name, err)
			}
			if count > 0 {
				continue
			}

			group := models.Group{Name: name}
			for _, code := range auth.DefaultGroups[name] {
				group.Permissions = append(group.Permissions, byCode[code])
			}
			if err := tx.Create(&group).Error; err != nil {
				return fmt.Errorf("failed to create group %s: %w", name, err)
			}
			logging.Logger.WithField("group", name).Info("created default group")
		}
		return nil
	})
}

// admin only from code/config
func createDefaultAdmin(db *gorm.DB, admin AdminAccount) error {
	var count int64
	if err := db.Model(&models.User{}).
		Where("is_superuser = ?", true).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check admin user: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(admin.Password)
	if err != nil {
		return fmt.Errorf("failed to hash default admin password: %w", err)
	}

	var group models.Group
	if err := db.Where("name = ?", auth.GroupAdmin).First(&group).Error; err != nil {
		return fmt.Errorf("failed to load admin group: %w", err)
	}

	user := models.User{
		Username:     admin.Username,
		Email:        admin.Email,
		PasswordHash: hash,
		IsActive:     true,
		IsSuperuser:  true,
		ProfileImage: models.DefaultProfileImage,
		Groups:       []models.Group{group},
	}
	if err := db.Create(&user).Error; err != nil {
		return fmt.Errorf("failed to create default admin: %w", err)
	}

	logging.Logger.WithFields(logrus.Fields{"username": admin.Username}).Info("created default admin user")
	return nil
}
