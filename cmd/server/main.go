package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "anonboard/docs"
	_ "anonboard/internal/domain/comment"
	_ "anonboard/internal/domain/common"
	_ "anonboard/internal/domain/moderation"
	_ "anonboard/internal/domain/notification"
	notifrepo "anonboard/internal/domain/notification/repository"
	notifservice "anonboard/internal/domain/notification/service"
	_ "anonboard/internal/domain/post"
	_ "anonboard/internal/domain/report"
	_ "anonboard/internal/domain/user"
	_ "anonboard/internal/domain/vote"
	"anonboard/internal/pkg/config"
	"anonboard/internal/pkg/counter"
	"anonboard/internal/pkg/middleware"
	"anonboard/internal/pkg/registry"
	"anonboard/internal/pkg/uploader"
	"anonboard/pkg/database"
	"anonboard/pkg/logger"
	"anonboard/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// @title Anonboard API
// @version 1.0
// @description 匿名讨论区：帖子、评论、投票、举报与管理
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. 配置与日志
	config.LoadConfig()
	cfg := &config.GlobalConfig

	if err := logger.InitLogger(cfg.App.Debug); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Log.Sync()

	// 2. 基础设施
	db, err := database.InitDatabase(cfg.Database, cfg.App.Debug)
	if err != nil {
		logger.Log.Fatal("database unavailable", zap.Error(err))
	}
	rdb, err := database.InitRedis(cfg.Redis)
	if err != nil {
		logger.Log.Fatal("redis unavailable", zap.Error(err))
	}
	blobs, err := uploader.NewBlobStore(cfg.OSS)
	if err != nil {
		logger.Log.Fatal("init oss uploader", zap.Error(err))
	}
	if blobs == nil {
		logger.Log.Warn("oss not configured, image upload disabled")
	}

	notifications := notifservice.NewNotificationService(notifrepo.NewNotificationRepository(db), cfg.Worker)
	notifications.Start()

	// 3. 路由与中间件
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()

	limiter := middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimit.IPQPS), cfg.RateLimit.IPBurst)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go cleanupLimiter(ctx, limiter)
	go metrics.GetGlobalCollector().SampleRuntime(ctx, 15*time.Second)

	r.Use(
		middleware.RecoveryMiddleware(),
		middleware.TraceMiddleware(),
		middleware.LoggerMiddleware(),
		middleware.MetricsMiddleware(),
		middleware.SecurityHeadersMiddleware(),
		cors.New(cors.Config{
			AllowOrigins:     cfg.Server.AllowOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
			AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With", "X-Request-ID", "X-Trace-ID"},
			ExposeHeaders:    []string{"Content-Length", "X-Request-ID", "X-Trace-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		middleware.RateLimitMiddleware(limiter),
	)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", readiness(db, rdb))

	// 4. 业务模块
	err = registry.InitModules(&registry.ModuleContext{
		Config:     cfg,
		DB:         db,
		Redis:      rdb,
		Router:     r,
		Transactor: database.NewTransactor(db),
		Counter:    counter.NewPropagator(db),
		Notifier:   notifications,
		BlobStore:  blobs,
	})
	if err != nil {
		logger.Log.Fatal("init modules", zap.Error(err))
	}

	// 5. 启动与优雅退出
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		IdleTimeout:  time.Minute,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Log.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("server shutdown", zap.Error(err))
	}

	// 请求全部结束后再排空通知队列，超时的通知放弃
	drainCtx, drainCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer drainCancel()
	if left := notifications.Shutdown(drainCtx); left > 0 {
		logger.Log.Warn("notifications abandoned on shutdown", zap.Int("count", left))
	}
	_ = rdb.Close()
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Log.Info("server exited")
}

// readiness 检查数据库与 Redis
func readiness(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		checks := gin.H{"database": "ok", "redis": "ok"}
		status := http.StatusOK
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			checks["database"] = "unavailable"
			status = http.StatusServiceUnavailable
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			checks["redis"] = "unavailable"
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, checks)
	}
}

// cleanupLimiter 定期回收长时间没有请求的 IP 限流器
func cleanupLimiter(ctx context.Context, limiter *middleware.IPRateLimiter) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := limiter.Cleanup(10 * time.Minute); n > 0 {
				logger.Log.Debug("ip limiters evicted", zap.Int("count", n))
			}
		}
	}
}
