package server

import (
	"html/template"
	"net/http"
	"time"

	"taskboard/internal/auth"
	"taskboard/internal/config"
	"taskboard/internal/handlers"
	"taskboard/internal/mail"
	"taskboard/internal/middleware"
	"taskboard/internal/models"
	"taskboard/web"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

func maskEmail(email string) string {
	runes := []rune(email)
	atIdx := -1
	for i, r := range runes {
		if r == '@' {
			atIdx = i
			break
		}
	}
	if atIdx <= 0 {
		return "***"
	}
	prefix := string(runes[:atIdx])
	domain := string(runes[atIdx:])
	if len(prefix) <= 2 {
		return prefix + "***" + domain
	}
	return string(runes[0:2]) + "***" + domain
}

func formatDate(t any) string {
	switch v := t.(type) {
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v.Format("Jan 2, 2006")
	case *time.Time:
		if v == nil || v.IsZero() {
			return "Never"
		}
		return v.Format("Jan 2, 2006 15:04")
	}
	return ""
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// mediaURL maps a stored upload path to its URL. The default images ship
// with the static assets.
func mediaURL(rel string) string {
	switch rel {
	case "", models.DefaultProfileImage:
		return "/static/img/avatar.svg"
	case models.DefaultTaskAsset:
		return "/static/img/asset.svg"
	}
	return "/media/" + rel
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"maskEmail":  maskEmail,
		"media":      mediaURL,
		"date":       formatDate,
		"containsID": containsID,
		"groupName":  auth.PrimaryGroupName,
		"hasPerm":    auth.HasPerm,
	}
}

func NewRouter(cfg *config.Config, mailer mail.Mailer) *gin.Engine {
	handlers.RegisterValidators()
	handlers.Configure(handlers.Options{
		Mailer:   mailer,
		Tokens:   auth.NewTokens(cfg.TokenSecret, cfg.TokenTTL),
		MediaDir: cfg.MediaDir,
	})

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())
	r.MaxMultipartMemory = 8 << 20

	r.StaticFS("/static", http.FS(web.Static()))
	r.Static("/media", cfg.MediaDir)

	tmpl := template.Must(template.New("").Funcs(funcMap()).ParseFS(web.Templates, "templates/*.html"))
	r.SetHTMLTemplate(tmpl)

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   14 * 24 * 3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("taskboard_session", store))

	r.Use(middleware.InjectUser())

	login := middleware.RequireAuth(auth.PathSignIn)

	// PAGES
	r.GET("/", handlers.IndexPage)
	r.GET("/no-permission/", handlers.NoPermission)
	r.GET("/dashboard/", login, handlers.Dashboard)

	// ACCOUNTS
	r.GET("/sign-up/", handlers.ShowSignUp)
	r.POST("/sign-up/", handlers.SignUp)
	r.GET("/activate/:user_id/:token/", handlers.ActivateUser)
	r.GET("/sign-in/", handlers.ShowSignIn)
	r.POST("/sign-in/", handlers.SignIn)
	r.GET("/sign-out/", handlers.SignOut)
	r.POST("/sign-out/", handlers.SignOut)

	r.GET("/password-reset/", handlers.ShowPasswordReset)
	r.POST("/password-reset/", handlers.PasswordReset)
	r.GET("/password-reset/confirm/:uidb64/:token/", handlers.ShowPasswordResetConfirm)
	r.POST("/password-reset/confirm/:uidb64/:token/", handlers.PasswordResetConfirm)

	account := r.Group("/", login)
	account.GET("/profile/", handlers.Profile)
	account.GET("/edit-profile/", handlers.ShowEditProfile)
	account.POST("/edit-profile/", handlers.EditProfile)
	account.GET("/password-change/", handlers.ShowPasswordChange)
	account.POST("/password-change/", handlers.PasswordChange)
	account.GET("/password-change/done/", handlers.PasswordChangeDone)

	// ADMIN
	admin := r.Group("/admin", middleware.RequireTest(auth.IsAdmin))
	admin.GET("/dashboard/", handlers.AdminDashboard)
	admin.GET("/:user_id/assign-role/", handlers.ShowAssignRole)
	admin.POST("/:user_id/assign-role/", handlers.AssignRole)
	admin.GET("/create-group/", handlers.ShowCreateGroup)
	admin.POST("/create-group/", handlers.CreateGroup)
	admin.GET("/group-list/", handlers.GroupList)

	// DASHBOARDS
	r.GET("/manager-dashboard/", middleware.RequireTest(auth.IsManager), handlers.ManagerDashboard)
	r.GET("/user-dashboard/", middleware.RequireTest(auth.IsEmployee), handlers.EmployeeDashboard)

	// TASKS
	addTask := middleware.RequirePerm(auth.PermAddTask)
	r.GET("/create-task/", login, addTask, handlers.ShowCreateTask)
	r.POST("/create-task/", login, addTask, handlers.CreateTask)

	changeTask := middleware.RequirePerm(auth.PermChangeTask)
	r.GET("/update-task/:id/", login, changeTask, handlers.ShowUpdateTask)
	r.POST("/update-task/:id/", login, changeTask, handlers.UpdateTask)

	r.POST("/delete-task/:id/", middleware.RequirePerm(auth.PermDeleteTask), handlers.DeleteTask)

	r.GET("/task/:task_id/details/", login, handlers.ShowTaskDetails)
	r.POST("/task/:task_id/details/", login, handlers.ChangeTaskStatus)

	// PROJECTS
	r.GET("/view_task/", login, middleware.RequirePerm(auth.PermViewProject), handlers.ViewProjects)

	addProject := middleware.RequirePerm(auth.PermAddProject)
	r.GET("/create-project/", login, addProject, handlers.ShowNewProject)
	r.POST("/create-project/", login, addProject, handlers.CreateProject)

	changeProject := middleware.RequirePerm(auth.PermChangeProject)
	r.GET("/update-project/:id/", login, changeProject, handlers.ShowEditProject)
	r.POST("/update-project/:id/", login, changeProject, handlers.UpdateProject)

	r.POST("/delete-project/:id/", login, middleware.RequirePerm(auth.PermDeleteProject), handlers.DeleteProject)

	// HEALTHCHECK
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	r.NoRoute(handlers.NoRoute)

	return r
}
