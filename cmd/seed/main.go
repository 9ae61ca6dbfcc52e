package main

import (
	"fmt"
	"os"

	"taskboard/internal/config"
	"taskboard/internal/database"
	"taskboard/internal/logging"
	"taskboard/internal/seed"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var opts seed.Options

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the database with demo data",
	Long: `Seed creates demo projects, active users in the Employee group and
tasks with random status, priority and assignees. Every seeded user signs in
with the password "` + seed.DemoPassword + `".`,
	SilenceUsage: true,
	RunE:         runSeed,
}

func init() {
	rootCmd.Flags().IntVar(&opts.Projects, "projects", 5, "number of projects to create")
	rootCmd.Flags().IntVar(&opts.Users, "users", 10, "number of users to create")
	rootCmd.Flags().IntVar(&opts.Tasks, "tasks", 20, "number of tasks to create")
	rootCmd.Flags().Int64Var(&opts.Seed, "seed", 0, "random seed (0 picks one)")
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Init(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})

	database.Init(cfg.DBDSN, database.AdminAccount{
		Username: cfg.AdminUsername,
		Password: cfg.AdminPassword,
		Email:    cfg.AdminEmail,
	})

	res, err := seed.Populate(database.DB, opts)
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}

	logging.Logger.WithFields(logrus.Fields{
		"projects": res.Projects,
		"users":    res.Users,
		"tasks":    res.Tasks,
	}).Info("database seeded")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
