// Package main 是应用程序入口
package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dumeirei/lodge-booking-backend/internal/common/config"
	"github.com/dumeirei/lodge-booking-backend/internal/common/jwt"
	"github.com/dumeirei/lodge-booking-backend/internal/common/metrics"
	commonMiddleware "github.com/dumeirei/lodge-booking-backend/internal/common/middleware"
	"github.com/dumeirei/lodge-booking-backend/internal/common/qrcode"
	adminHandler "github.com/dumeirei/lodge-booking-backend/internal/handler/admin"
	bookingHandler "github.com/dumeirei/lodge-booking-backend/internal/handler/booking"
	pricingHandler "github.com/dumeirei/lodge-booking-backend/internal/handler/pricing"
	"github.com/dumeirei/lodge-booking-backend/internal/middleware"
	"github.com/dumeirei/lodge-booking-backend/internal/repository"
	"github.com/dumeirei/lodge-booking-backend/internal/scheduler"
	adminService "github.com/dumeirei/lodge-booking-backend/internal/service/admin"
	bookingService "github.com/dumeirei/lodge-booking-backend/internal/service/booking"
	pricingService "github.com/dumeirei/lodge-booking-backend/internal/service/pricing"
	"github.com/dumeirei/lodge-booking-backend/pkg/sms"
)

// setupRouter 设置路由，返回调度器供 main 管理生命周期
func setupRouter(
	r *gin.Engine,
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	redisClient *redis.Client,
) *scheduler.Scheduler {
	// 创建 JWT 管理器
	jwtManager := jwt.NewManager(&jwt.Config{
		Secret:            cfg.JWT.Secret,
		AccessExpireTime:  cfg.JWT.AccessTokenDuration(),
		RefreshExpireTime: cfg.JWT.RefreshTokenDuration(),
		Issuer:            cfg.JWT.Issuer,
	})

	// 初始化仓储
	adminRepo := repository.NewAdminRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	operationLogRepo := repository.NewOperationLogRepository(db)
	overrideRepo := repository.NewPriceOverrideRepository(db)
	settingRepo := repository.NewPricingSettingRepository(db)

	// 初始化短信发送器（未配置密钥时降级为 Mock）
	smsSender := newSMSSender(cfg, logger)

	// 二维码生成器（预订凭证）
	qrGenerator := qrcode.NewGenerator()

	// 初始化服务
	settingsSvc := pricingService.NewSettingsService(settingRepo, cfg.Pricing)
	overrideSvc := pricingService.NewOverrideService(overrideRepo)
	quoteSvc := pricingService.NewQuoteService(settingsSvc, overrideSvc, cfg.Pricing)
	bookingSvc := bookingService.NewBookingService(bookingRepo, quoteSvc, smsSender, qrGenerator, cfg.Booking)
	adminAuthSvc := adminService.NewAdminAuthService(adminRepo, jwtManager)
	dashboardSvc := adminService.NewDashboardService(db, bookingRepo)

	// 初始化处理器
	quoteH := pricingHandler.NewQuoteHandler(quoteSvc)
	bookingH := bookingHandler.NewBookingHandler(bookingSvc)
	adminAuthH := adminHandler.NewAuthHandler(adminAuthSvc)
	adminPricingH := adminHandler.NewPricingHandler(settingsSvc, overrideSvc, quoteSvc)
	adminBookingH := adminHandler.NewBookingHandler(bookingSvc)
	adminDashboardH := adminHandler.NewDashboardHandler(dashboardSvc)
	adminLogH := adminHandler.NewOperationLogHandler(operationLogRepo)

	// 操作日志中间件
	opLogger := commonMiddleware.NewOperationLogger(operationLogRepo)

	// 全局中间件
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RealIP())
	r.Use(middleware.SecureHeaders())
	r.Use(middleware.RequestSizeLimiter(1 << 20))
	r.Use(middleware.CORS(&middleware.CORSConfig{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}))
	r.Use(middleware.AccessLog(logger))

	if cfg.Tracing.Enabled {
		r.Use(commonMiddleware.Tracing(&commonMiddleware.TracingConfig{
			ServiceName: cfg.Tracing.ServiceName,
			SkipPaths:   []string{"/health", "/ping", "/ready", "/metrics"},
		}))
	}

	if cfg.Metrics.Enabled {
		m := metrics.Init("lodge_booking")
		r.Use(m.Middleware())
		r.GET("/metrics", metrics.Handler())
	}

	// 健康检查（不需要认证）
	r.GET("/health", healthHandler)
	r.GET("/ping", pingHandler)
	r.GET("/ready", readyHandler(db, redisClient))

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1 路由组
	v1 := r.Group("/api/v1")
	{
		// 公开接口（无需认证）
		public := v1.Group("")
		if cfg.RateLimit.Enabled {
			public.Use(middleware.IPRateLimit(redisClient, cfg.RateLimit.RequestsPerMinute, time.Minute))
		}
		{
			// 报价查询
			quoteH.RegisterRoutes(public)

			// 预订创建与查询，下单接口单独限流
			if cfg.RateLimit.Enabled {
				bookingH.RegisterRoutes(public, middleware.BookingRateLimit(redisClient, 10, time.Minute))
			} else {
				bookingH.RegisterRoutes(public)
			}
		}

		// 管理后台
		admin := v1.Group("/admin")
		{
			// 登录与刷新（公开）
			adminAuthH.RegisterRoutes(admin)

			// 需要管理员认证
			protected := admin.Group("")
			protected.Use(middleware.AdminAuth(jwtManager))
			if cfg.RateLimit.Enabled {
				protected.Use(middleware.APIRateLimit(redisClient, cfg.RateLimit.RequestsPerMinute, time.Minute))
			}
			protected.Use(opLogger.Log())
			{
				adminAuthH.RegisterProtectedRoutes(protected)
				adminPricingH.RegisterRoutes(protected)
				adminBookingH.RegisterRoutes(protected)
				adminLogH.RegisterRoutes(protected)

				dashboard := protected.Group("/dashboard")
				{
					dashboard.GET("/overview", adminDashboardH.GetOverview)
					dashboard.GET("/booking-trend", adminDashboardH.GetBookingTrend)
					dashboard.GET("/occupancy", adminDashboardH.GetOccupancy)
					dashboard.GET("/recent-bookings", adminDashboardH.GetRecentBookings)
				}
			}
		}
	}

	// 404 处理
	r.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"code":    404,
			"message": "接口不存在",
		})
	})

	// 定时任务
	taskHandler := scheduler.NewTaskHandler(bookingRepo, operationLogRepo, bookingSvc)
	sched := scheduler.NewScheduler()
	scheduler.SetupTasks(sched, taskHandler, cfg.Booking)

	return sched
}

// newSMSSender 创建短信发送器
func newSMSSender(cfg *config.Config, logger *zap.Logger) sms.Sender {
	if cfg.SMS.Provider == "aliyun" && cfg.SMS.AccessKeyID != "" {
		sender, err := sms.NewAliyunSender(&sms.Config{
			AccessKeyID:     cfg.SMS.AccessKeyID,
			AccessKeySecret: cfg.SMS.AccessKeySecret,
			SignName:        cfg.SMS.SignName,
			ConfirmTemplate: cfg.SMS.ConfirmTemplate,
			CancelTemplate:  cfg.SMS.CancelTemplate,
		})
		if err == nil {
			return sender
		}
		logger.Warn("Failed to init aliyun sms sender, falling back to mock", zap.Error(err))
	}
	return sms.NewMockSender()
}
