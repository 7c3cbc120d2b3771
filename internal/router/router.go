package router

import (
	"time"

	"vendora/config"
	"vendora/internal/handler"
	"vendora/internal/middleware"
	"vendora/internal/repository"
	"vendora/internal/service"
	"vendora/internal/ws"
	"vendora/pkg/cloudinary"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, cloud cloudinary.Client) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	withdrawalRepo := repository.NewWithdrawalRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	notifHub := ws.NewHub()

	// Services
	authSvc := service.NewAuthService(cfg, userRepo)
	notifSvc := service.NewNotificationService(notificationRepo, notifHub)
	balanceSvc := service.NewBalanceService(db, ledgerRepo)
	withdrawalSvc := service.NewWithdrawalService(db, &cfg.Withdrawal, balanceSvc, ledgerRepo, settingRepo, auditRepo, notifSvc)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	withdrawalHandler := handler.NewWithdrawalHandler(withdrawalSvc, balanceSvc, withdrawalRepo)
	adminHandler := handler.NewAdminHandler(withdrawalSvc, withdrawalRepo, userRepo, settingRepo, auditRepo)
	notificationHandler := handler.NewNotificationHandler(notificationRepo)
	uploadHandler := handler.NewUploadHandler(cloud)

	authMw := middleware.AuthRequired(&cfg.JWT)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
		}

		me := api.Group("/me")
		me.Use(authMw)
		{
			me.GET("/balance", withdrawalHandler.GetBalance)
			me.POST("/withdrawals", withdrawalHandler.Create)
			me.GET("/withdrawals", withdrawalHandler.ListMine)
			me.GET("/withdrawals/:reference", withdrawalHandler.GetMine)
			me.GET("/notifications", notificationHandler.List)
			me.PUT("/notifications/:id/read", notificationHandler.MarkRead)
		}

		admin := api.Group("/admin")
		admin.Use(authMw, middleware.AdminRequired())
		{
			admin.GET("/withdrawals", adminHandler.ListWithdrawals)
			admin.GET("/withdrawals/:id", adminHandler.GetWithdrawal)
			admin.POST("/withdrawals/:id/validate", adminHandler.Validate)
			admin.POST("/withdrawals/:id/reject", adminHandler.Reject)
			admin.POST("/withdrawals/:id/mark-paid", adminHandler.MarkPaid)
			admin.POST("/withdrawals/:id/mark-failed", adminHandler.MarkFailed)
			admin.POST("/uploads/proof", uploadHandler.UploadProof)
			admin.GET("/users", adminHandler.ListUsers)
			admin.GET("/audit-logs", adminHandler.ListAuditLogs)
			admin.GET("/settings", adminHandler.GetSettings)
			admin.PUT("/settings", adminHandler.UpdateSettings)
		}
	}

	r.GET("/ws/notifications", ws.UpgradeNotificationsWS(&cfg.JWT, notifHub))

	return r
}
