package main

import (
	"fmt"

	"taskboard/internal/config"
	"taskboard/internal/database"
	"taskboard/internal/logging"
	"taskboard/internal/mail"
	"taskboard/internal/server"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Logger.Fatalf("config error: %v", err)
	}

	logging.Init(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	database.Init(cfg.DBDSN, database.AdminAccount{
		Username: cfg.AdminUsername,
		Password: cfg.AdminPassword,
		Email:    cfg.AdminEmail,
	})

	var mailer mail.Mailer = mail.LogMailer{}
	if cfg.MailEnabled() {
		mailer = mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		})
	} else {
		logging.Logger.Warn("SMTP_HOST is not set, account e-mails will only be logged")
	}

	r := server.NewRouter(cfg, mailer)

	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	logging.Logger.Infof("starting server on %s", addr)
	if err := r.Run(addr); err != nil {
		logging.Logger.Fatalf("server error: %v", err)
	}
}
