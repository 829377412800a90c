package app

import (
	"ethioheritage_backend/docs"
	"ethioheritage_backend/internal/config"
	"ethioheritage_backend/internal/middleware"
	"ethioheritage_backend/internal/policy"
	"ethioheritage_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. public routes, token optional
	a.registerPublicRoutes(router, c, cfg)

	// 2. learner routes
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
	{
		a.registerLearnerRoutes(authGroup, c)
		a.registerInstructorRoutes(authGroup, c)
	}

	// 3. admin routes
	a.registerAdminRoutes(router, c, cfg)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	public := router.Group("/api")
	public.Use(middleware.OptionalAuth(cfg.JWT.Secret))
	{
		public.GET("/health", c.health.HealthCheck)
		public.GET("/certificates/verify/:code", c.certificate.Verify)
		public.GET("/courses", c.course.ListCourses)
		public.GET("/courses/:id", c.course.GetCourse)
	}
}

func (a *App) registerLearnerRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.POST("/courses/:id/enroll", c.progress.Enroll)
	rg.DELETE("/courses/:id/enroll", c.progress.Unenroll)
	rg.POST("/courses/:id/certificate", c.certificate.Issue)

	progress := rg.Group("/progress")
	{
		progress.GET("/courses", c.progress.ListEnrollments)
		progress.GET("/courses/:id", c.progress.GetCourseProgress)
		progress.POST("/lessons/:lessonId/start", c.progress.StartLesson)
		progress.POST("/lessons/:lessonId/complete", c.progress.CompleteLesson)
		progress.GET("/statistics", c.progress.GetStatistics)
	}

	rg.GET("/achievements", c.achievement.GetUserAchievements)
	rg.GET("/achievements/catalog", c.achievement.GetCatalog)

	rg.GET("/certificates", c.certificate.List)

	rg.GET("/ws", c.notification.Connect)
}

func (a *App) registerInstructorRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.POST("/courses", middleware.Authorize(policy.ActionCreate, policy.ResourceCourse), c.course.CreateCourse)

	// ownership is checked by the catalog service once the course is loaded
	rg.PUT("/courses/:id", c.course.UpdateCourse)
	rg.DELETE("/courses/:id", c.course.DeleteCourse)
	rg.POST("/courses/:id/lessons", c.course.AddLesson)
	rg.GET("/courses/:id/analytics", c.analytics.GetCourseAnalytics)
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
	{
		certificates := admin.Group("/certificates")
		certificates.Use(middleware.Authorize(policy.ActionRevoke, policy.ResourceCertificate))
		{
			certificates.POST("/:certificateId/revoke", c.certificate.Revoke)
		}
	}
}
