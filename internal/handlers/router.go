package handlers

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yukikurage/taskpad/internal/app"
	"github.com/yukikurage/taskpad/internal/constants"
	"github.com/yukikurage/taskpad/internal/middleware"
)

// NewRouter builds the HTTP API over a.
func NewRouter(a *app.App) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(a.Log.Named("http")))

	if len(a.Config.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     a.Config.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", constants.RequestIDHeader},
			ExposeHeaders:    []string{"Content-Length", constants.RequestIDHeader},
			AllowCredentials: true,
		}))
	}

	authHandler := NewAuthHandler(a.Auth, a.Session)
	taskHandler := NewTaskHandler(a.Store, a.Clock)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireSession(a.Session), authHandler.GetCurrentAccount)
			auth.PATCH("/profile", middleware.RequireSession(a.Session), authHandler.UpdateProfile)
			auth.POST("/password", middleware.RequireSession(a.Session), authHandler.ChangePassword)
		}

		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireSession(a.Session))
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.PUT("/order", taskHandler.ReorderTasks)
			tasks.DELETE("/completed", taskHandler.ClearCompleted)
			tasks.GET("/:id", middleware.RequireTask(a.Store), taskHandler.GetTask)
			tasks.PATCH("/:id", middleware.RequireTask(a.Store), taskHandler.UpdateTask)
			tasks.DELETE("/:id", middleware.RequireTask(a.Store), taskHandler.DeleteTask)
			tasks.POST("/:id/toggle", middleware.RequireTask(a.Store), taskHandler.ToggleTask)
		}

		view := api.Group("/view")
		view.Use(middleware.RequireSession(a.Session))
		{
			view.GET("", taskHandler.GetView)
			view.PUT("", taskHandler.UpdateView)
			view.POST("/reset", taskHandler.ResetView)
			view.POST("/clear", taskHandler.ClearFilters)
		}

		api.GET("/stats", middleware.RequireSession(a.Session), taskHandler.GetStats)
		api.GET("/alerts", middleware.RequireSession(a.Session), taskHandler.GetAlerts)
	}

	return r
}
