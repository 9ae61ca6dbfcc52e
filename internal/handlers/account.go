package handlers

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"taskboard/internal/auth"
	"taskboard/internal/database"
	"taskboard/internal/logging"
	"taskboard/internal/mail"
	"taskboard/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

//
// PROFILE
//

func Profile(c *gin.Context) {
	u := currentUser(c)
	render(c, http.StatusOK, "profile.html", gin.H{
		"title":         "Profile",
		"username":      u.Username,
		"email":         u.Email,
		"name":          u.FullName(),
		"bio":           u.Bio,
		"profile_image": u.ProfileImage,
		"member_since":  u.CreatedAt,
		"last_login":    u.LastLogin,
	})
}

type editProfileForm struct {
	FirstName string `form:"first_name" binding:"max=150"`
	LastName  string `form:"last_name" binding:"max=150"`
	Email     string `form:"email" binding:"required,email,max=254"`
	Bio       string `form:"bio" binding:"max=2000"`
}

func ShowEditProfile(c *gin.Context) {
	u := currentUser(c)
	render(c, http.StatusOK, "edit_profile.html", gin.H{
		"title": "Edit Profile",
		"form": editProfileForm{
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Email:     u.Email,
			Bio:       u.Bio,
		},
	})
}

func EditProfile(c *gin.Context) {
	u := currentUser(c)

	var form editProfileForm
	errs := bindForm(c, &form)
	form.Email = strings.TrimSpace(form.Email)

	if errs["email"] == "" {
		var count int64
		if err := database.DB.Model(&models.User{}).
			Where("LOWER(email) = LOWER(?) AND id <> ?", form.Email, u.ID).
			Count(&count).Error; err != nil {
			logging.Logger.WithError(err).Error("failed to check email")
			errs[formAll] = lookupFailed
		} else if count > 0 {
			errs["email"] = "Email already exists."
		}
	}

	fh, msg := uploadedImage(c, "profile_image")
	if msg != "" {
		errs["profile_image"] = msg
	}

	if len(errs) > 0 {
		render(c, http.StatusBadRequest, "edit_profile.html", gin.H{"title": "Edit Profile", "form": form, "errors": errs})
		return
	}

	updates := map[string]any{
		"first_name": strings.TrimSpace(form.FirstName),
		"last_name":  strings.TrimSpace(form.LastName),
		"email":      form.Email,
		"bio":        strings.TrimSpace(form.Bio),
	}
	var uploaded string
	if fh != nil {
		rel, err := saveUpload(c, fh, "profile_images")
		if err != nil {
			logging.Logger.WithError(err).Error("failed to store profile image")
			errs["profile_image"] = "The file could not be stored."
			render(c, http.StatusInternalServerError, "edit_profile.html", gin.H{"title": "Edit Profile", "form": form, "errors": errs})
			return
		}
		uploaded = rel
		updates["profile_image"] = rel
	}

	if err := database.DB.Model(&models.User{}).Where("id = ?", u.ID).Updates(updates).Error; err != nil {
		removeUpload(uploaded)
		logging.Logger.WithError(err).WithField("user_id", u.ID).Error("failed to update profile")
		renderError(c, http.StatusInternalServerError, "Profile could not be saved.")
		return
	}

	if uploaded != "" && u.ProfileImage != uploaded {
		removeUpload(u.ProfileImage)
	}

	flash(c, flashSuccess, "Profile updated successfully")
	c.Redirect(http.StatusFound, "/profile/")
}

//
// PASSWORD CHANGE
//

type passwordChangeForm struct {
	OldPassword  string `form:"old_password" binding:"required"`
	NewPassword1 string `form:"new_password1" binding:"required"`
	NewPassword2 string `form:"new_password2" binding:"required,eqfield=NewPassword1"`
}

func ShowPasswordChange(c *gin.Context) {
	render(c, http.StatusOK, "password_change.html", gin.H{"title": "Change Password"})
}

func PasswordChange(c *gin.Context) {
	u := currentUser(c)

	var form passwordChangeForm
	errs := bindForm(c, &form)
	if errs["old_password"] == "" && !auth.CheckPassword(u.PasswordHash, form.OldPassword) {
		errs["old_password"] = "Your old password was entered incorrectly. Please enter it again."
	}
	if errs["new_password1"] == "" {
		if err := auth.ValidatePassword(form.NewPassword1, u.Username); err != nil {
			errs["new_password1"] = capitalize(err.Error())
		}
	}

	if len(errs) > 0 {
		render(c, http.StatusBadRequest, "password_change.html", gin.H{"title": "Change Password", "errors": errs})
		return
	}

	if err := setPassword(u, form.NewPassword1); err != nil {
		logging.Logger.WithError(err).WithField("user_id", u.ID).Error("failed to change password")
		renderError(c, http.StatusInternalServerError, "Password could not be changed.")
		return
	}

	c.Redirect(http.StatusFound, "/password-change/done/")
}

func PasswordChangeDone(c *gin.Context) {
	render(c, http.StatusOK, "password_change_done.html", gin.H{"title": "Password Changed"})
}

func setPassword(u *models.User, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if err := database.DB.Model(u).Update("password_hash", hash).Error; err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

//
// PASSWORD RESET
//

type passwordResetForm struct {
	Email string `form:"email" binding:"required,email"`
}

func ShowPasswordReset(c *gin.Context) {
	render(c, http.StatusOK, "password_reset.html", gin.H{"title": "Reset Password"})
}

// PasswordReset mails a reset link to every active account using the
// address. The response is the same whether or not one exists.
func PasswordReset(c *gin.Context) {
	var form passwordResetForm
	if errs := bindForm(c, &form); len(errs) > 0 {
		render(c, http.StatusBadRequest, "password_reset.html", gin.H{"title": "Reset Password", "form": form, "errors": errs})
		return
	}

	var users []models.User
	if err := database.DB.
		Where("LOWER(email) = LOWER(?) AND is_active = ?", strings.TrimSpace(form.Email), true).
		Find(&users).Error; err != nil {
		logging.Logger.WithError(err).Error("failed to look up users for password reset")
	}

	for i := range users {
		sendPasswordReset(c, &users[i])
	}

	flash(c, flashSuccess, "A Reset email sent. Please check your email")
	c.Redirect(http.StatusFound, auth.PathSignIn)
}

func sendPasswordReset(c *gin.Context, user *models.User) {
	log := logging.Logger.WithFields(logrus.Fields{"user_id": user.ID})

	token, err := opts.Tokens.Make(user, auth.PurposeReset)
	if err != nil {
		log.WithError(err).Error("failed to create reset token")
		return
	}

	link := fmt.Sprintf("%s/password-reset/confirm/%s/%s/", baseURL(c), encodeUID(user.ID), token)
	msg, err := mail.PasswordResetMessage(user.Email, user.Username, link)
	if err != nil {
		log.WithError(err).Error("failed to render reset email")
		return
	}
	if err := opts.Mailer.Send(c.Request.Context(), msg); err != nil {
		log.WithError(err).Error("failed to send reset email")
	}
}

type passwordResetConfirmForm struct {
	NewPassword1 string `form:"new_password1" binding:"required"`
	NewPassword2 string `form:"new_password2" binding:"required,eqfield=NewPassword1"`
}

const invalidResetLink = "The password reset link was invalid, possibly because it has already been used. Please request a new password reset."

// resetUser resolves the user behind a reset link, or renders the error page.
func resetUser(c *gin.Context) (*models.User, bool) {
	id, ok := decodeUID(c.Param("uidb64"))
	if !ok {
		renderError(c, http.StatusBadRequest, invalidResetLink)
		return nil, false
	}

	var user models.User
	if err := database.DB.Where("is_active = ?", true).First(&user, id).Error; err != nil {
		renderError(c, http.StatusBadRequest, invalidResetLink)
		return nil, false
	}
	if err := opts.Tokens.Check(&user, auth.PurposeReset, c.Param("token")); err != nil {
		renderError(c, http.StatusBadRequest, invalidResetLink)
		return nil, false
	}
	return &user, true
}

func ShowPasswordResetConfirm(c *gin.Context) {
	if _, ok := resetUser(c); !ok {
		return
	}
	render(c, http.StatusOK, "password_reset_confirm.html", gin.H{"title": "Set New Password"})
}

func PasswordResetConfirm(c *gin.Context) {
	user, ok := resetUser(c)
	if !ok {
		return
	}

	var form passwordResetConfirmForm
	errs := bindForm(c, &form)
	if errs["new_password1"] == "" {
		if err := auth.ValidatePassword(form.NewPassword1, user.Username); err != nil {
			errs["new_password1"] = capitalize(err.Error())
		}
	}
	if len(errs) > 0 {
		render(c, http.StatusBadRequest, "password_reset_confirm.html", gin.H{"title": "Set New Password", "errors": errs})
		return
	}

	if err := setPassword(user, form.NewPassword1); err != nil {
		logging.Logger.WithError(err).WithField("user_id", user.ID).Error("failed to reset password")
		renderError(c, http.StatusInternalServerError, "Password could not be reset.")
		return
	}

	flash(c, flashSuccess, "Password reset successfully")
	c.Redirect(http.StatusFound, auth.PathSignIn)
}

func encodeUID(id uint) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatUint(uint64(id), 10)))
}

func decodeUID(s string) (uint, bool) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return 0, false
	}
	id, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
