package app

import (
	"course_market_backend/docs"
	"course_market_backend/internal/config"
	"course_market_backend/internal/middleware"
	"course_market_backend/internal/model"
	"course_market_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	a.registerPublicRoutes(router, c, cfg)

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerStudentRoutes(authGroup, c)
		a.registerInstructorRoutes(authGroup, c)
		a.registerAdminRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)

		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)

		// Browsing is open to guests; a valid token unlocks draft visibility
		// for owners and admins on the detail route.
		public.GET("/courses", c.course.Catalog)
		public.GET("/courses/:slug", middleware.TryAuthMiddleware(cfg), c.course.CourseDetail)
		public.GET("/categories", c.course.Categories)
		public.GET("/courses/:slug/reviews", c.review.List)

		public.GET("/certificates/:code", c.progress.LookupCertificate)
	}
}

func (a *App) registerStudentRoutes(group *gin.RouterGroup, c *controllers) {
	group.GET("/auth/me", c.auth.Me)
	group.PATCH("/users/me", c.user.UpdateProfile)
	group.PUT("/users/me/password", c.user.ChangePassword)
	group.POST("/users/me/avatar", c.user.UploadAvatar)
	group.GET("/users/me/purchases", c.user.PurchaseHistory)

	group.GET("/enrollments", c.course.MyEnrollments)
	group.POST("/courses/:slug/enroll", c.course.EnrollFree)

	group.GET("/cart", c.cart.List)
	group.GET("/cart/count", c.cart.Count)
	group.POST("/cart", c.cart.Add)
	group.DELETE("/cart", c.cart.Clear)
	group.DELETE("/cart/:courseId", c.cart.Remove)

	group.GET("/favourites", c.wishlist.List)
	group.POST("/favourites/:courseId", c.wishlist.Toggle)

	group.POST("/checkout", c.checkout.CreateSession)
	group.POST("/checkout/verify", c.checkout.Verify)

	group.POST("/courses/:slug/reviews", c.review.Create)
	group.PATCH("/reviews/:id", c.review.Update)
	group.DELETE("/reviews/:id", c.review.Delete)

	group.POST("/lectures/:id/progress", c.progress.UpdateProgress)
	group.GET("/courses/:slug/progress", c.progress.CourseProgress)
	group.GET("/certificates", c.progress.MyCertificates)

	group.POST("/instructor-applications", middleware.RoleMiddleware(model.Student), c.application.Submit)
	group.GET("/instructor-applications/mine", c.application.Mine)
}

func (a *App) registerInstructorRoutes(group *gin.RouterGroup, c *controllers) {
	instructor := group.Group("/instructor")
	instructor.Use(middleware.RoleMiddleware(model.Instructor))
	{
		instructor.GET("/courses", c.course.MyCourses)
		instructor.POST("/courses", c.course.CreateCourse)
		instructor.PATCH("/courses/:id", c.course.UpdateCourse)
		instructor.POST("/courses/:id/sections", c.course.AddSection)
		instructor.POST("/courses/:id/thumbnail", c.course.UploadThumbnail)
		instructor.POST("/sections/:id/lectures", c.course.AddLecture)
		instructor.POST("/lectures/:id/video", c.course.UploadLectureVideo)
		instructor.GET("/earnings", c.user.Earnings)
	}
}

func (a *App) registerAdminRoutes(group *gin.RouterGroup, c *controllers) {
	admin := group.Group("/admin")
	admin.Use(middleware.RoleMiddleware(model.Admin))
	{
		admin.GET("/instructor-applications", c.application.List)
		admin.PATCH("/instructor-applications/:id", c.application.Review)
	}
}
