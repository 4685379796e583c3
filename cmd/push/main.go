package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/notificationcenter/internal/outbox"
	"github.com/wyfcoding/notificationcenter/internal/push/application"
	"github.com/wyfcoding/notificationcenter/internal/push/domain"
	"github.com/wyfcoding/notificationcenter/internal/push/infrastructure/messaging"
	"github.com/wyfcoding/notificationcenter/internal/push/infrastructure/persistence/mysql"
	"github.com/wyfcoding/notificationcenter/internal/push/infrastructure/sender"
	pushhttp "github.com/wyfcoding/notificationcenter/internal/push/interfaces/http"
	"github.com/wyfcoding/notificationcenter/pkg/cache"
	"github.com/wyfcoding/notificationcenter/pkg/config"
	"github.com/wyfcoding/notificationcenter/pkg/db"
	"github.com/wyfcoding/notificationcenter/pkg/idgen"
	"github.com/wyfcoding/notificationcenter/pkg/logger"
	"github.com/wyfcoding/notificationcenter/pkg/metrics"
	"github.com/wyfcoding/notificationcenter/pkg/middleware"
	"github.com/wyfcoding/notificationcenter/pkg/ratelimit"
)

var configPath = flag.String("config", "configs/push.toml", "config file path")

// dispatchInterval 到期通知（计划发送与重试）的轮询间隔
const dispatchInterval = 10 * time.Second

// dispatchBatchSize 每轮处理的最大通知数
const dispatchBatchSize = 100

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}); err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := idgen.Init(cfg.Snowflake.NodeID); err != nil {
		logger.Fatal(ctx, "failed to init idgen", "error", err)
	}

	database, err := db.Init(db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to init database", "error", err)
	}
	defer database.Close()

	redisCache, err := cache.New(cache.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		MaxPoolSize:  cfg.Redis.MaxPoolSize,
		ConnTimeout:  cfg.Redis.ConnTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to init redis", "error", err)
	}
	defer redisCache.Close()

	m := metrics.New(cfg.ServiceName)
	if err := m.Register(); err != nil {
		logger.Fatal(ctx, "failed to register metrics", "error", err)
	}

	// 组装推送上下文
	outboxMgr := outbox.NewManager(database.DB)
	repo := mysql.NewPushRepository(database.DB)
	publisher := messaging.NewOutboxEventPublisher(outboxMgr)
	selector := domain.NewProviderSelector(nil)
	pushSender := sender.NewLoggingSender()

	command := application.NewPushCommand(database, repo, publisher, selector, pushSender, redisCache, m)
	query := application.NewPushQuery(repo, redisCache)
	service := application.NewPushService(command, query)
	handler := pushhttp.NewPushHandler(service)

	// 到期通知调度循环
	go runDispatcher(ctx, command)

	engine := buildEngine(cfg, m, redisCache)
	api := engine.Group("/api/v1")
	api.Use(middleware.JWTAuth(cfg.Auth.JWTSecret, cfg.Auth.Issuer))
	handler.RegisterRoutes(api)

	runServer(ctx, cfg, engine)
}

// runDispatcher 周期性处理到期的计划通知与重试通知
func runDispatcher(ctx context.Context, command *application.PushCommand) {
	ticker := time.NewTicker(dispatchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			dispatched, err := command.DispatchDue(ctx, dispatchBatchSize)
			if err != nil {
				logger.Error(ctx, "dispatch due notifications failed", "error", err)
				continue
			}
			if dispatched > 0 {
				logger.Info(ctx, "dispatched due notifications", "count", dispatched)
			}
		}
	}
}

// buildEngine 构建 gin 引擎并挂载通用中间件
func buildEngine(cfg *config.Config, m *metrics.Metrics, redisCache *cache.RedisCache) *gin.Engine {
	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(middleware.Recovery(), middleware.Logging(), middleware.CORS(), middleware.Metrics(m))

	if cfg.RateLimit.Enabled {
		limiter := ratelimit.NewRedisRateLimiter(redisCache.GetClient())
		engine.Use(middleware.RateLimit(limiter, ratelimit.PerSecond(cfg.RateLimit.Rate, cfg.RateLimit.Burst)))
	}

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": cfg.ServiceName})
	})
	if cfg.Metrics.Enabled {
		engine.GET(cfg.Metrics.Path, gin.WrapH(m.Handler()))
	}

	return engine
}

// runServer 启动 HTTP 服务并在收到信号后优雅停机
func runServer(ctx context.Context, cfg *config.Config, engine *gin.Engine) {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info(ctx, "http server starting", "addr", srv.Addr, "service", cfg.ServiceName)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "http server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info(context.Background(), "shutting down http server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "http server shutdown failed", "error", err)
	}
}
