package middleware

import (
	"net/http"
	"net/url"

	"taskboard/internal/auth"
	"taskboard/internal/models"

	"github.com/gin-gonic/gin"
)

func currentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(CurrentUserKey); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

// RequireAuth sends anonymous visitors to loginURL with the requested path
// in "next".
func RequireAuth(loginURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c) == nil {
			c.Redirect(http.StatusFound, loginURL+"?next="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireTest lets the request through only when pred accepts the current
// user. Everyone else, anonymous visitors included, lands on the
// no-permission page.
func RequireTest(pred func(*models.User) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		if u == nil || !pred(u) {
			c.Redirect(http.StatusFound, auth.PathNoPermission)
			c.Abort()
			return
		}
		c.Next()
	}
}

func RequirePerm(codename string) gin.HandlerFunc {
	return RequireTest(func(u *models.User) bool {
		return auth.HasPerm(u, codename)
	})
}
