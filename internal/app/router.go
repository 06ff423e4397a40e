package app

import (
	"student_performance_backend/docs"
	"student_performance_backend/internal/config"
	"student_performance_backend/internal/middleware"
	"student_performance_backend/internal/model"
	"student_performance_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		// 教师、家长均可查看
		a.registerViewerRoutes(authGroup, c)

		// 教师相关接口
		a.registerTeacherRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/login", c.auth.Login)
		public.GET("/combinations", c.student.ListCombinations)
	}
}

func (a *App) registerViewerRoutes(group *gin.RouterGroup, c *controllers) {
	viewer := group.Group("")
	viewer.Use(middleware.RoleMiddleware(model.Teacher, model.Parent))
	{
		viewer.GET("/reports/weekly", c.report.ListWeekly)
		viewer.GET("/reports/monthly", c.report.ListMonthly)
		viewer.GET("/students/:id/reports", c.report.GetStudentReports)
	}
}

func (a *App) registerTeacherRoutes(group *gin.RouterGroup, c *controllers) {
	group.POST("/evaluate", middleware.RoleMiddleware(model.Teacher), c.report.Evaluate)

	teacher := group.Group("/teacher")
	teacher.Use(middleware.RoleMiddleware(model.Teacher))
	{
		teacher.GET("/students", c.student.ListStudents)
		teacher.POST("/students", c.student.UpsertStudent)
		teacher.POST("/students/sample", c.student.GenerateSampleStudents)
		teacher.GET("/students/:id/marks", c.student.ListMarks)
		teacher.POST("/marks", c.student.SubmitMarks)

		teacher.POST("/students/:id/reports/weekly/:week", c.report.GenerateWeekly)
		teacher.POST("/students/:id/reports/monthly", c.report.GenerateMonthly)
		teacher.POST("/reports/weekly/:week", c.report.BatchWeekly)
		teacher.POST("/reports/monthly", c.report.BatchMonthly)
	}
}
