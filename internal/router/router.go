package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/projectdesk/projectdesk/db"
	"github.com/projectdesk/projectdesk/internal/access"
	"github.com/projectdesk/projectdesk/internal/handlers"
	"github.com/projectdesk/projectdesk/internal/metrics"
	"github.com/projectdesk/projectdesk/internal/middleware"
	"github.com/projectdesk/projectdesk/internal/types"
	"github.com/projectdesk/projectdesk/internal/web"
)

func NewRouter() (*gin.Engine, error) {
	r := gin.Default()

	if err := web.LoadTemplates(r); err != nil {
		return nil, err
	}

	handlers.RegisterValidation()

	m := metrics.New(db.DB)
	r.Use(m.Middleware())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/metrics", gin.WrapH(m.Handler()))

	registerAPI(r)
	registerWeb(r)

	return r, nil
}

func registerAPI(r *gin.Engine) {
	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws/:project_id", middleware.AuthMiddleware(), handlers.WebSocket)

		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.RegisterUser)
			auth.POST("/login", handlers.LoginUser)
			auth.POST("/logout", handlers.LogoutUser)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
			auth.PATCH("/me", middleware.AuthMiddleware(), handlers.UpdateMe)
			auth.DELETE("/me", middleware.AuthMiddleware(), handlers.DeleteMe)
		}

		token := api.Group("/token")
		{
			token.POST("/", handlers.ObtainToken)
			token.POST("/refresh/", handlers.RefreshToken)
			token.POST("/verify/", handlers.VerifyToken)
		}

		authed := api.Group("", middleware.AuthMiddleware())
		{
			authed.GET("/stats", handlers.GetStats)

			users := authed.Group("/users", handlers.RequireAdministrator())
			{
				users.GET("", handlers.ListUsers)
				users.GET("/rows", handlers.ListUserRows)
				users.POST("", handlers.CreateUser)
				users.GET("/:id", handlers.GetUser)
				users.PATCH("/:id", handlers.UpdateUser)
				users.PUT("/:id", handlers.UpdateUser)
				users.DELETE("/:id", handlers.DeleteUser)
			}

			projects := authed.Group("/projects")
			{
				projects.GET("", handlers.ListProjects)
				projects.GET("/rows", handlers.ListProjectRows)
				projects.POST("", handlers.CreateProject)
				projects.GET("/:id", handlers.GetProject)
				projects.PUT("/:id", handlers.UpdateProject)
				projects.PATCH("/:id", handlers.UpdateProject)
				projects.DELETE("/:id", handlers.DeleteProject)
				projects.PUT("/:id/collaborators", handlers.SetProjectCollaborators)
			}

			tasks := authed.Group("/tasks")
			{
				tasks.GET("", handlers.ListTasks)
				tasks.GET("/rows", handlers.ListTaskRows)
				tasks.POST("", handlers.CreateTask)
				tasks.GET("/:id", handlers.GetTask)
				tasks.PUT("/:id", handlers.UpdateTask)
				tasks.PATCH("/:id", handlers.UpdateTask)
				tasks.DELETE("/:id", handlers.DeleteTask)
			}

			comments := authed.Group("/comments")
			{
				comments.GET("", handlers.ListComments)
				comments.GET("/rows", handlers.ListCommentRows)
				comments.POST("", handlers.CreateComment)
				comments.GET("/:id", handlers.GetComment)
				comments.PUT("/:id", handlers.UpdateComment)
				comments.PATCH("/:id", handlers.UpdateComment)
				comments.DELETE("/:id", handlers.DeleteComment)
			}
		}
	}
}

func registerWeb(r *gin.Engine) {
	public := r.Group("", middleware.OptionalSession())
	{
		public.GET("/", func(ctx *gin.Context) { ctx.Redirect(http.StatusFound, "/home") })
		public.GET("/login", web.LoginPage)
		public.POST("/login", web.Login)
		public.GET("/logout", web.Logout)
		public.POST("/logout", web.Logout)
		public.GET("/register", web.RegisterPage)
		public.POST("/register", web.Register)
		public.GET("/badgets", web.Badgets)
	}

	ui := r.Group("", middleware.SessionMiddleware())
	{
		ui.GET("/home", web.Home)
		ui.GET("/views/admin", web.RequireRole(access.IsAdministrator), web.AdminView)
		ui.GET("/views/collaborator", web.RequireRole(access.IsCollaboratorOrAdministrator), web.CollaboratorView)
		ui.GET("/views/viewer", web.ViewerView)

		roles := ui.Group("/roles", web.RequireRole(access.CanManageUsers))
		{
			roles.GET("", web.RoleList)
			roles.POST("", web.RoleRows)
			roles.GET("/:id", web.RoleDetail)
			roles.GET("/:id/edit", web.RoleEdit)
			roles.POST("/:id/edit", web.RoleUpdate)
		}

		projects := ui.Group("/projects")
		{
			projects.GET("", web.ProjectList)
			projects.POST("", web.ProjectRows)
			projects.GET("/new", web.ProjectNew)
			projects.POST("/new", web.ProjectCreate)
			projects.GET("/:id", web.ProjectDetail)
			projects.GET("/:id/edit", web.ProjectEdit)
			projects.POST("/:id/edit", web.ProjectUpdate)
			projects.GET("/:id/delete", web.ProjectDeleteConfirm)
			projects.POST("/:id/delete", web.ProjectDelete)
			projects.GET("/:id/collaborators", web.CollaboratorsForm)
			projects.POST("/:id/collaborators", web.CollaboratorsUpdate)
		}

		tasks := ui.Group("/tasks")
		{
			tasks.GET("", web.TaskList)
			tasks.POST("", web.TaskRows)
			tasks.GET("/new", web.TaskNew)
			tasks.POST("/new", web.TaskCreate)
			tasks.GET("/:id", web.TaskDetail)
			tasks.GET("/:id/edit", web.TaskEdit)
			tasks.POST("/:id/edit", web.TaskUpdate)
			tasks.GET("/:id/delete", web.TaskDeleteConfirm)
			tasks.POST("/:id/delete", web.TaskDelete)
		}

		comments := ui.Group("/comments")
		{
			comments.GET("", web.CommentList)
			comments.POST("", web.CommentRows)
			comments.GET("/new", web.CommentNew)
			comments.POST("/new", web.CommentCreate)
			comments.GET("/:id", web.CommentDetail)
			comments.GET("/:id/edit", web.CommentEdit)
			comments.POST("/:id/edit", web.CommentUpdate)
			comments.GET("/:id/delete", web.CommentDeleteConfirm)
			comments.POST("/:id/delete", web.CommentDelete)
		}
	}
}
