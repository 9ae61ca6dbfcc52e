package handlers

import (
	"taskboard/internal/auth"
	"taskboard/internal/mail"
)

type Options struct {
	Mailer   mail.Mailer
	Tokens   *auth.Tokens
	MediaDir string
}

var opts Options

// Configure sets the collaborators used by the account and upload handlers.
func Configure(o Options) {
	if o.Mailer == nil {
		o.Mailer = mail.LogMailer{}
	}
	opts = o
}
