package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"taskboard/internal/auth"
	"taskboard/internal/database"
	"taskboard/internal/logging"
	"taskboard/internal/mail"
	"taskboard/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const sessionUserKey = "user_id"

//
// SIGN UP / ACTIVATION
//

type signUpForm struct {
	Username        string `form:"username" binding:"required,max=150,username"`
	FirstName       string `form:"first_name" binding:"max=150"`
	LastName        string `form:"last_name" binding:"max=150"`
	Email           string `form:"email" binding:"required,email,max=254"`
	Password1       string `form:"password1" binding:"required"`
	ConfirmPassword string `form:"confirm_password" binding:"required,eqfield=Password1"`
}

func ShowSignUp(c *gin.Context) {
	render(c, http.StatusOK, "sign_up.html", gin.H{"title": "Sign Up", "form": signUpForm{}})
}

func SignUp(c *gin.Context) {
	var form signUpForm
	errs := bindForm(c, &form)
	form.Username = strings.TrimSpace(form.Username)
	form.Email = strings.TrimSpace(form.Email)

	if errs["username"] == "" {
		var count int64
		if err := database.DB.Model(&models.User{}).Where("username = ?", form.Username).Count(&count).Error; err != nil {
			logging.Logger.WithError(err).Error("failed to check username")
			errs[formAll] = lookupFailed
		} else if count > 0 {
			errs["username"] = "A user with that username already exists."
		}
	}
	if errs["email"] == "" {
		var count int64
		if err := database.DB.Model(&models.User{}).Where("LOWER(email) = LOWER(?)", form.Email).Count(&count).Error; err != nil {
			logging.Logger.WithError(err).Error("failed to check email")
			errs[formAll] = lookupFailed
		} else if count > 0 {
			errs["email"] = "Email already exists."
		}
	}
	if errs["password1"] == "" {
		if err := auth.ValidatePassword(form.Password1, form.Username); err != nil {
			errs["password1"] = capitalize(err.Error())
		}
	}

	if len(errs) > 0 {
		form.Password1, form.ConfirmPassword = "", ""
		render(c, http.StatusBadRequest, "sign_up.html", gin.H{"title": "Sign Up", "form": form, "errors": errs})
		return
	}

	hash, err := auth.HashPassword(form.Password1)
	if err != nil {
		logging.Logger.WithError(err).Error("failed to hash password")
		renderError(c, http.StatusInternalServerError, "Registration failed. Please try again.")
		return
	}

	user := models.User{
		Username:     form.Username,
		FirstName:    strings.TrimSpace(form.FirstName),
		LastName:     strings.TrimSpace(form.LastName),
		Email:        form.Email,
		PasswordHash: hash,
		IsActive:     false,
		ProfileImage: models.DefaultProfileImage,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		logging.Logger.WithError(err).Error("failed to create user")
		renderError(c, http.StatusInternalServerError, "Registration failed. Please try again.")
		return
	}

	sendActivation(c, &user)

	flash(c, flashSuccess, "A Confirmation mail sent. Please check your email")
	c.Redirect(http.StatusFound, auth.PathSignIn)
}

// sendActivation mails the activation link. The account exists either way;
// delivery problems are only logged.
func sendActivation(c *gin.Context, user *models.User) {
	log := logging.Logger.WithFields(logrus.Fields{"user_id": user.ID, "email": user.Email})

	token, err := opts.Tokens.Make(user, auth.PurposeActivate)
	if err != nil {
		log.WithError(err).Error("failed to create activation token")
		return
	}

	link := fmt.Sprintf("%s/activate/%d/%s/", baseURL(c), user.ID, token)
	msg, err := mail.ActivationMessage(user.Email, user.Username, link)
	if err != nil {
		log.WithError(err).Error("failed to render activation email")
		return
	}
	if err := opts.Mailer.Send(c.Request.Context(), msg); err != nil {
		log.WithError(err).Error("failed to send activation email")
	}
}

func ActivateUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		renderError(c, http.StatusNotFound, "User not found")
		return
	}

	var user models.User
	if err := database.DB.First(&user, id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logging.Logger.WithError(err).Error("failed to load user for activation")
		}
		renderError(c, http.StatusNotFound, "User not found")
		return
	}

	if err := opts.Tokens.Check(&user, auth.PurposeActivate, c.Param("token")); err != nil {
		renderError(c, http.StatusBadRequest, "Invalid Id or token")
		return
	}

	if err := database.DB.Model(&user).Update("is_active", true).Error; err != nil {
		logging.Logger.WithError(err).WithField("user_id", user.ID).Error("failed to activate user")
		renderError(c, http.StatusInternalServerError, "Activation failed. Please try again.")
		return
	}

	logging.Logger.WithField("user_id", user.ID).Info("user activated")
	flash(c, flashSuccess, "Your account has been activated. You can sign in now.")
	c.Redirect(http.StatusFound, auth.PathSignIn)
}

//
// SIGN IN / SIGN OUT
//

type signInForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
	Next     string `form:"next"`
}

func ShowSignIn(c *gin.Context) {
	render(c, http.StatusOK, "sign_in.html", gin.H{
		"title": "Sign In",
		"form":  signInForm{Next: c.Query("next")},
	})
}

func SignIn(c *gin.Context) {
	var form signInForm
	errs := bindForm(c, &form)
	if form.Next == "" {
		form.Next = c.Query("next")
	}

	var user models.User
	if len(errs) == 0 {
		err := database.DB.Where("username = ?", strings.TrimSpace(form.Username)).First(&user).Error
		if err != nil || !user.IsActive || !auth.CheckPassword(user.PasswordHash, form.Password) {
			errs[formAll] = "Please enter a correct username and password. Note that both fields may be case-sensitive."
		}
	}

	if len(errs) > 0 {
		form.Password = ""
		render(c, http.StatusBadRequest, "sign_in.html", gin.H{"title": "Sign In", "form": form, "errors": errs})
		return
	}

	sess := sessions.Default(c)
	sess.Clear()
	sess.Set(sessionUserKey, user.ID)
	if err := sess.Save(); err != nil {
		logging.Logger.WithError(err).Error("failed to save session")
		renderError(c, http.StatusInternalServerError, "Sign in failed. Please try again.")
		return
	}

	now := time.Now()
	if err := database.DB.Model(&user).Update("last_login", &now).Error; err != nil {
		logging.Logger.WithError(err).WithField("user_id", user.ID).Warn("failed to update last login")
	}

	c.Redirect(http.StatusFound, safeNext(form.Next, "/dashboard/"))
}

func SignOut(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	_ = sess.Save()
	c.Redirect(http.StatusFound, auth.PathSignIn)
}

// safeNext accepts only local absolute paths.
func safeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return next
}

func baseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil || strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:] + "."
}
