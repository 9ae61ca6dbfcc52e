package middleware

import (
	"errors"

	"taskboard/internal/database"
	"taskboard/internal/logging"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	CurrentUserKey = "CurrentUser"
	SessionUserKey = "user_id"
)

// InjectUser loads the signed-in user with groups and permissions. Sessions
// pointing at a deleted or deactivated account are dropped.
func InjectUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)

		if uid, ok := sess.Get(SessionUserKey).(uint); ok && uid > 0 {
			user, err := database.GetUser(database.DB, uid)
			switch {
			case err == nil && user.IsActive:
				c.Set(CurrentUserKey, user)
			case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
				logging.Logger.WithError(err).WithField("user_id", uid).Error("failed to load session user")
			default:
				sess.Delete(SessionUserKey)
				_ = sess.Save()
			}
		}

		c.Next()
	}
}
