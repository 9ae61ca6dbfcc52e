// Package seed fills the database with demo projects, employees and tasks.
package seed

import (
	"fmt"
	"strings"
	"time"

	"taskboard/internal/auth"
	"taskboard/internal/database"
	"taskboard/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// DemoPassword is the password of every seeded user.
const DemoPassword = "Demo12345!"

type Options struct {
	Projects int
	Users    int
	Tasks    int
	Seed     int64 // 0 picks a random seed
}

type Result struct {
	Projects int
	Users    int
	Tasks    int
}

// Populate creates demo data. Users join the Employee group; every task
// gets one to three assignees, a random status and a detail row.
func Populate(db *gorm.DB, opts Options) (Result, error) {
	var res Result
	if opts.Projects < 0 || opts.Users < 0 || opts.Tasks < 0 {
		return res, fmt.Errorf("counts must not be negative")
	}
	if opts.Tasks > 0 && (opts.Projects == 0 || opts.Users == 0) {
		return res, fmt.Errorf("tasks need at least one project and one user")
	}

	f := gofakeit.New(opts.Seed)

	hash, err := auth.HashPassword(DemoPassword)
	if err != nil {
		return res, fmt.Errorf("failed to hash demo password: %w", err)
	}

	var employees models.Group
	if err := db.Where("name = ?", auth.GroupEmployee).First(&employees).Error; err != nil {
		return res, fmt.Errorf("failed to load %s group: %w", auth.GroupEmployee, err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		projects := make([]models.Project, 0, opts.Projects)
		for i := 0; i < opts.Projects; i++ {
			p := models.Project{
				Name:        truncate(f.AppName()+" "+f.BuzzWord(), 100),
				Description: f.Paragraph(1, 3, 12, " "),
				StartDate:   dateOnly(f.DateRange(time.Now().AddDate(-1, 0, 0), time.Now())),
			}
			if err := tx.Create(&p).Error; err != nil {
				return fmt.Errorf("failed to create project: %w", err)
			}
			projects = append(projects, p)
		}

		users := make([]models.User, 0, opts.Users)
		for i := 0; i < opts.Users; i++ {
			username, err := freeUsername(tx, f)
			if err != nil {
				return err
			}
			u := models.User{
				Username:     username,
				FirstName:    f.FirstName(),
				LastName:     f.LastName(),
				Email:        username + "@example.com",
				PasswordHash: hash,
				IsActive:     true,
				ProfileImage: models.DefaultProfileImage,
				Bio:          f.Sentence(10),
				Groups:       []models.Group{employees},
			}
			if err := tx.Omit("Groups.*").Create(&u).Error; err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}
			users = append(users, u)
		}

		for i := 0; i < opts.Tasks; i++ {
			project := projects[f.Number(0, len(projects)-1)]
			task := models.Task{
				ProjectID:   project.ID,
				Title:       truncate(strings.TrimSuffix(f.Sentence(5), "."), 250),
				Description: f.Paragraph(1, 2, 15, " "),
				DueDate:     dateOnly(f.DateRange(time.Now(), time.Now().AddDate(0, 3, 0))),
				Status:      models.TaskStatuses[f.Number(0, len(models.TaskStatuses)-1)],
			}
			detail := models.TaskDetail{
				Asset:    models.DefaultTaskAsset,
				Priority: models.TaskPriorities[f.Number(0, len(models.TaskPriorities)-1)],
				Notes:    f.Sentence(12),
			}
			if err := database.SaveTask(tx, &task, &detail, pickUsers(f, users)); err != nil {
				return err
			}
		}

		res = Result{Projects: len(projects), Users: len(users), Tasks: opts.Tasks}
		return nil
	})
	return res, err
}

func freeUsername(db *gorm.DB, f *gofakeit.Faker) (string, error) {
	for attempt := 0; attempt < 20; attempt++ {
		name := strings.ToLower(f.Username())
		if attempt > 0 {
			name = fmt.Sprintf("%s%d", name, f.Number(10, 9999))
		}
		var count int64
		if err := db.Model(&models.User{}).Where("username = ?", name).Count(&count).Error; err != nil {
			return "", fmt.Errorf("failed to check username: %w", err)
		}
		if count == 0 {
			return name, nil
		}
	}
	return "", fmt.Errorf("could not find a free username")
}

// pickUsers returns between one and three distinct users.
func pickUsers(f *gofakeit.Faker, users []models.User) []models.User {
	n := f.Number(1, min(3, len(users)))
	picked := make([]models.User, 0, n)
	for _, i := range f.Rand.Perm(len(users))[:n] {
		picked = append(picked, users[i])
	}
	return picked
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
