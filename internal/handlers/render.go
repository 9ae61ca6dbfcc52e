package handlers

import (
	"encoding/gob"
	"net/http"

	"taskboard/internal/auth"
	"taskboard/internal/logging"
	"taskboard/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	flashSuccess = "success"
	flashError   = "error"
)

// Flashes are stored as []interface{} in the cookie session.
func init() {
	gob.Register([]interface{}{})
}

type notice struct {
	Level string
	Text  string
}

// render wraps c.HTML and passes the current user, the role flags used by
// the navigation and any pending flash notices to every template.
func render(c *gin.Context, status int, tmpl string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}

	if u := currentUser(c); u != nil {
		data["CurrentUser"] = u
		data["IsAdmin"] = auth.IsAdmin(u)
		data["IsManager"] = auth.IsManager(u)
		data["IsEmployee"] = auth.IsEmployee(u)
	}

	data["messages"] = takeNotices(c)

	c.HTML(status, tmpl, data)
}

func renderError(c *gin.Context, status int, msg string) {
	render(c, status, "error.html", gin.H{
		"title":   http.StatusText(status),
		"message": msg,
	})
}

// currentUser returns the user placed by middleware.InjectUser, or nil.
func currentUser(c *gin.Context) *models.User {
	if v, ok := c.Get("CurrentUser"); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

func currentUserID(c *gin.Context) uint {
	if u := currentUser(c); u != nil {
		return u.ID
	}
	return 0
}

func flash(c *gin.Context, level, msg string) {
	sess := sessions.Default(c)
	sess.AddFlash(msg, level)
	if err := sess.Save(); err != nil {
		logging.Logger.WithError(err).Warn("failed to save flash message")
	}
}

func takeNotices(c *gin.Context) []notice {
	sess := sessions.Default(c)

	var out []notice
	for _, level := range []string{flashSuccess, flashError} {
		for _, f := range sess.Flashes(level) {
			if s, ok := f.(string); ok {
				out = append(out, notice{Level: level, Text: s})
			}
		}
	}
	if len(out) > 0 {
		_ = sess.Save()
	}
	return out
}
