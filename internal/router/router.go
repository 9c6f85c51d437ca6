package router

import (
	"awp/internal/database"
	"awp/internal/handlers"
	"awp/internal/middleware"
	"awp/internal/services"
	"awp/pkg/response"

	"github.com/gin-gonic/gin"
)

// SetupRouter 设置路由
func SetupRouter(controllerService *services.ControllerService) *gin.Engine {
	router := gin.New()

	// 中间件
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.SetupCORS())

	registerRoutes(router, controllerService)
	return router
}

// 注册所有路由
func registerRoutes(router *gin.Engine, controllerService *services.ControllerService) {
	db := database.GetDB()

	userService := services.NewUserService(db)
	accommodationService := services.NewAccommodationService(db)
	codeService := services.NewCodeService(db)
	redemptionService := services.NewRedemptionService(db)
	auditService := services.NewAuditService(db)

	auth := middleware.NewAuthMiddleware(userService)

	// API路由组
	api := router.Group("/api/v1")
	{
		// 健康检查接口
		api.GET("/health", healthCheck)
		api.GET("/ping", ping)

		// 认证路由（无需登录）
		authHandler := handlers.NewAuthHandler(userService)
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/logout", authHandler.Logout)
			authGroup.POST("/refresh", authHandler.RefreshToken)
			authGroup.GET("/me", auth.RequireLogin(), authHandler.Me)
		}

		// 自助入驻路由（无需登录，邀请码即凭证）
		onboardHandler := handlers.NewOnboardHandler(codeService, redemptionService)
		api.GET("/onboard/:token", onboardHandler.Preview)
		api.POST("/onboard/:token", onboardHandler.OnboardStudent)
		api.POST("/manager-setup/:token", onboardHandler.ManagerSetup)

		// 账号路由（仅业主）
		userHandler := handlers.NewUserHandler(userService)
		users := api.Group("/users", auth.RequireLogin(), auth.RequireOwner())
		{
			users.POST("", userHandler.Create)
			users.GET("", userHandler.GetAll)
			users.GET("/:id", userHandler.GetByID)
			users.PUT("/:id", userHandler.Update)
			users.POST("/:id/activate", userHandler.Activate)
			users.POST("/:id/deactivate", userHandler.Deactivate)
			users.POST("/:id/archive", userHandler.Archive)
			users.POST("/:id/reset-password", userHandler.ResetPassword)
		}

		// 公寓路由
		accommodationHandler := handlers.NewAccommodationHandler(accommodationService)
		accommodations := api.Group("/accommodations", auth.RequireLogin())
		{
			accommodations.POST("", auth.RequireOwner(), accommodationHandler.Create)
			accommodations.GET("", auth.RequireStaff(), accommodationHandler.GetAll)
			accommodations.GET("/:id", auth.RequireStaff(), accommodationHandler.GetByID)
			accommodations.PUT("/:id", auth.RequireOwner(), accommodationHandler.Update)
			accommodations.DELETE("/:id", auth.RequireOwner(), accommodationHandler.Delete)
			accommodations.POST("/:id/managers", auth.RequireOwner(), accommodationHandler.AddManager)
			accommodations.DELETE("/:id/managers/:userId", auth.RequireOwner(), accommodationHandler.RemoveManager)
			accommodations.GET("/:id/students", auth.RequireStaff(), accommodationHandler.GetStudents)
		}

		// 邀请码路由（业主与管理员）
		codeHandler := handlers.NewCodeHandler(codeService, accommodationService, auditService)
		codes := api.Group("/invite-codes", auth.RequireLogin(), auth.RequireStaff())
		{
			codes.POST("", codeHandler.Create)
			codes.GET("", codeHandler.GetAll)
			codes.GET("/:id", codeHandler.GetByID)
			codes.POST("/:id/revoke", codeHandler.Revoke)
		}

		// 无线控制器代理路由
		controllerHandler := handlers.NewControllerHandler(controllerService, accommodationService)
		controllerGroup := api.Group("/controller", auth.RequireLogin())
		{
			controllerGroup.GET("/sites", auth.RequireOwner(), controllerHandler.GetSites)
			controllerGroup.GET("/accommodations/:id/devices", auth.RequireStaff(), controllerHandler.GetDevices)
			controllerGroup.GET("/accommodations/:id/clients", auth.RequireStaff(), controllerHandler.GetClients)
			controllerGroup.POST("/accommodations/:id/clients/:mac/block", auth.RequireStaff(), controllerHandler.BlockClient)
			controllerGroup.POST("/accommodations/:id/clients/:mac/unblock", auth.RequireStaff(), controllerHandler.UnblockClient)
			controllerGroup.PATCH("/accommodations/:id/wlan-password", auth.RequireStaff(), controllerHandler.UpdateWLANPassword)
		}

		// 审计日志路由（仅业主）
		auditHandler := handlers.NewAuditHandler(auditService)
		api.GET("/audit-logs", auth.RequireLogin(), auth.RequireOwner(), auditHandler.GetAll)

		// 实时推送（token在query中鉴权）
		wsHandler := handlers.NewWebSocketHandler(controllerService)
		api.GET("/ws/clients", wsHandler.StreamClientCounts)
	}
}

// healthCheck 健康检查
func healthCheck(c *gin.Context) {
	response.Success(c, gin.H{"status": "ok"})
}

// ping 连通性检查
func ping(c *gin.Context) {
	response.SuccessWithMessage(c, "pong", nil)
}
