package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/classum/campus-backend/internal/config"
	"github.com/classum/campus-backend/internal/handler"
	"github.com/classum/campus-backend/internal/middleware"
	"github.com/classum/campus-backend/internal/response"
	"github.com/classum/campus-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth         *handler.AuthHandler
	Course       *handler.CourseHandler
	Class        *handler.ClassHandler
	Announcement *handler.AnnouncementHandler
	User         *handler.UserHandler
	WS           *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Link"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 1. Public Group (No Auth) ─────────────────────────────────────
	public := router.Group("/api")
	{
		public.POST("/login", handlers.Auth.Login)
	}

	// ─── 2. Authenticated Group ────────────────────────────────────────
	api := router.Group("/api")
	api.Use(middleware.RequireAuth(authService))
	{
		api.POST("/logout", handlers.Auth.Logout)

		// Profile, registration and grades
		api.GET("/users/me", handlers.User.Me)
		api.PUT("/users/me", handlers.User.UpdateMe)
		api.GET("/users/me/courses", handlers.User.MeCourses)
		api.PUT("/users/me/courses", handlers.User.RegisterCourses)
		api.GET("/users/me/grades", handlers.User.MeGrades)

		// Course catalog
		api.GET("/courses", handlers.Course.ListCourses)
		api.GET("/courses/:courseID", handlers.Course.GetCourse)
		api.GET("/courses/:courseID/classes", handlers.Class.ListClasses)
		api.POST("/courses/:courseID/classes/:classID/assignments", handlers.Class.SubmitAssignment)

		// Announcement feed
		api.GET("/announcements", handlers.Announcement.ListAnnouncements)
		api.GET("/announcements/:announcementID", handlers.Announcement.GetAnnouncement)

		// ─── 3. Teacher Group (Admin Only) ─────────────────────────────
		admin := api.Group("")
		admin.Use(middleware.RequireAdmin())
		{
			admin.POST("/courses", handlers.Course.CreateCourse)
			admin.PUT("/courses/:courseID/status", handlers.Course.SetCourseStatus)
			admin.POST("/courses/:courseID/classes", handlers.Class.CreateClass)
			admin.POST("/courses/:courseID/announcements", handlers.Announcement.CreateAnnouncement)
			admin.PUT("/courses/:courseID/classes/:classID/assignments/scores", handlers.Class.RecordScores)
			admin.GET("/courses/:courseID/classes/:classID/assignments/export", handlers.Class.ExportSubmissions)
		}
	}

	// ─── 4. WebSocket Group ────────────────────────────────────────────
	ws := router.Group("/ws")
	ws.Use(middleware.RequireAuth(authService))
	{
		ws.GET("/announcements", handlers.WS.AnnouncementStream)
	}

	return router
}
