package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/smartmlms/smartlms-backend/internal/config"
	"github.com/smartmlms/smartlms-backend/internal/handler"
	"github.com/smartmlms/smartlms-backend/internal/middleware"
	"github.com/smartmlms/smartlms-backend/internal/model"
	"github.com/smartmlms/smartlms-backend/internal/response"
	"github.com/smartmlms/smartlms-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth    *handler.AuthHandler
	User    *handler.UserHandler
	Unit    *handler.UnitHandler
	Course  *handler.CourseHandler
	Exam    *handler.ExamHandler
	Attempt *handler.AttemptHandler
	Audit   *handler.AuditHandler
	Media   *handler.MediaHandler
	Monitor *handler.MonitorHandler
	System  *handler.SystemHandler
	WS      *handler.WSHandler
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
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Serve uploaded media files statically with aggressive caching (1 year).
	uploadsGroup := router.Group("/uploads")
	uploadsGroup.Use(middleware.CacheControl(31536000))
	{
		uploadsGroup.Static("/", "./uploads")
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	requireAuth := middleware.RequireAuth(authService)
	requireSession := middleware.CheckSingleDeviceSession(authService)
	staffOnly := middleware.RequireRoles(model.RoleAdmin, model.RoleTeacher)
	adminOnly := middleware.RequireRoles(model.RoleAdmin)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)

		// Authenticated profile routes
		auth.GET("/me", requireAuth, requireSession, handlers.Auth.Me)
		auth.POST("/logout", requireAuth, handlers.Auth.Logout)
	}

	// ─── 2. Units ──────────────────────────────────────────────────────
	units := router.Group("/api/v1/units", requireAuth, requireSession)
	{
		units.GET("", handlers.Unit.List)
		units.GET("/tree", handlers.Unit.Tree)
		units.GET("/:id", handlers.Unit.Get)
		units.POST("", adminOnly, handlers.Unit.Create)
		units.PUT("/:id", adminOnly, handlers.Unit.Update)
		units.DELETE("/:id", adminOnly, handlers.Unit.Delete)
	}

	// ─── 3. Courses ────────────────────────────────────────────────────
	courses := router.Group("/api/v1/courses", requireAuth, requireSession)
	{
		courses.GET("", handlers.Course.List)
		courses.GET("/:id", handlers.Course.Get)
		courses.POST("", staffOnly, handlers.Course.Create)
		courses.PUT("/:id", staffOnly, handlers.Course.Update)
		courses.DELETE("/:id", staffOnly, handlers.Course.Delete)
	}

	// ─── 4. Exams & Attempts ───────────────────────────────────────────
	exams := router.Group("/api/v1/exams", requireAuth, requireSession)
	{
		exams.GET("", handlers.Exam.List)
		exams.GET("/:id", staffOnly, handlers.Exam.Get)
		exams.POST("", staffOnly, handlers.Exam.Create)
		exams.PUT("/:id", staffOnly, handlers.Exam.Update)
		exams.DELETE("/:id", staffOnly, handlers.Exam.Delete)
		exams.GET("/:id/monitor", staffOnly, handlers.Monitor.MonitorExamSSE)

		exams.POST("/:id/attempts", handlers.Attempt.Start)
		exams.GET("/:id/attempts", handlers.Attempt.ListByExam)
	}

	attempts := router.Group("/api/v1/attempts", requireAuth, requireSession)
	{
		attempts.GET("/:id", handlers.Attempt.Get)
		attempts.GET("/:id/paper", handlers.Attempt.Paper)
		attempts.POST("/:id/submit", handlers.Attempt.Submit)
		attempts.POST("/:id/violations", handlers.Attempt.ReportViolation)
	}

	// ─── 5. WebSocket Group (Query-Token Auth) ─────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSAuth(authService))
	{
		ws.GET("/attempts/:id/proctor", handlers.WS.ProctorStream)
	}

	// ─── 6. Admin Group ────────────────────────────────────────────────
	adminAPI := router.Group("/api/v1", requireAuth)
	{
		// User management
		adminAPI.GET("/users", adminOnly, handlers.User.List)
		adminAPI.POST("/users", adminOnly, handlers.User.Create)
		adminAPI.GET("/users/:id", adminOnly, handlers.User.Get)
		adminAPI.PUT("/users/:id", adminOnly, handlers.User.Update)
		adminAPI.PATCH("/users/:id/active", adminOnly, handlers.User.SetActive)
		adminAPI.DELETE("/users/:id", adminOnly, handlers.User.Delete)

		// Audit trail
		adminAPI.GET("/audit-logs", adminOnly, handlers.Audit.List)

		// Media upload
		adminAPI.POST("/media/upload", staffOnly, handlers.Media.UploadMedia)

		// System Monitoring
		adminAPI.GET("/system/metrics", adminOnly, handlers.System.SystemMetricsSSE)
	}

	return router
}
