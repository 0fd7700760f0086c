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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/wyfcoding/optionselector/internal/selection/application"
	"github.com/wyfcoding/optionselector/internal/selection/domain"
	"github.com/wyfcoding/optionselector/internal/selection/infrastructure/messaging"
	selection_mysql "github.com/wyfcoding/optionselector/internal/selection/infrastructure/persistence/mysql"
	selection_redis "github.com/wyfcoding/optionselector/internal/selection/infrastructure/persistence/redis"
	http_server "github.com/wyfcoding/optionselector/internal/selection/interfaces/http"
	"github.com/wyfcoding/optionselector/pkg/cache"
	"github.com/wyfcoding/optionselector/pkg/config"
	"github.com/wyfcoding/optionselector/pkg/db"
	"github.com/wyfcoding/optionselector/pkg/logger"
	"github.com/wyfcoding/optionselector/pkg/metrics"
	"github.com/wyfcoding/optionselector/pkg/middleware"
	"github.com/wyfcoding/optionselector/pkg/mq"
	"github.com/wyfcoding/optionselector/pkg/ratelimit"
	"github.com/wyfcoding/optionselector/pkg/utils"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "configs/selector/config.toml", "path to config file")
	flag.Parse()

	// 1. Config
	cfg, err := config.LoadWithDefaults(configPath)
	if err != nil {
		panic(fmt.Sprintf("load config failed: %v", err))
	}

	// 2. Logger
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
		panic(fmt.Sprintf("init logger failed: %v", err))
	}
	log := logger.Get()

	// 3. Engine
	engineCfg := domain.DefaultEngineConfig()
	if err := cfg.UnmarshalKey("engine", &engineCfg); err != nil {
		panic(fmt.Sprintf("parse engine config failed: %v", err))
	}
	engine, err := domain.NewEngine(engineCfg, nil)
	if err != nil {
		panic(fmt.Sprintf("init selection engine failed: %v", err))
	}

	// 4. Database
	var database *db.DB
	if err := utils.RetryWithBackoff(5, time.Second, 10*time.Second, func() error {
		var dbErr error
		database, dbErr = db.Init(db.Config{
			Driver:             cfg.Database.Driver,
			DSN:                cfg.Database.DSN,
			MaxOpenConns:       cfg.Database.MaxOpenConns,
			MaxIdleConns:       cfg.Database.MaxIdleConns,
			ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
			LogEnabled:         cfg.Database.LogEnabled,
			SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
		})
		return dbErr
	}); err != nil {
		panic(fmt.Sprintf("connect db failed: %v", err))
	}
	defer database.Close()

	if err := database.AutoMigrate(&selection_mysql.SelectionModel{}, &messaging.OutboxMessage{}); err != nil {
		panic(fmt.Sprintf("migrate db failed: %v", err))
	}

	// 5. Redis
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
		panic(fmt.Sprintf("connect redis failed: %v", err))
	}
	defer redisCache.Close()

	// 6. Kafka
	producer, err := mq.NewProducer(mq.KafkaConfig{
		Brokers:        cfg.Kafka.Brokers,
		GroupID:        cfg.Kafka.GroupID,
		SessionTimeout: cfg.Kafka.SessionTimeout,
	})
	if err != nil {
		panic(fmt.Sprintf("create kafka producer failed: %v", err))
	}
	defer producer.Close()

	eventsTopic := cfg.Kafka.Topic
	if eventsTopic == "" {
		eventsTopic = "selection.results"
	}

	// 7. Metrics
	m := metrics.New("selector")
	if cfg.Metrics.Enabled {
		if err := m.Register(); err != nil {
			panic(fmt.Sprintf("register metrics failed: %v", err))
		}
	}

	// 8. Infrastructure & Application
	repo := selection_mysql.NewSelectionRepository(database.DB)
	latestCache := selection_redis.NewSelectionRedisCache(redisCache.GetClient())
	outbox := messaging.NewOutboxEventPublisher(database.DB)
	relay := messaging.NewOutboxRelay(outbox, producer, eventsTopic, log)

	commandService := application.NewCommandService(engine, repo, latestCache, outbox, m, log)
	queryService := application.NewQueryService(repo, latestCache, log)

	// 9. HTTP
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(
		middleware.GinRecoveryMiddleware(),
		middleware.GinLoggingMiddleware(),
		middleware.GinMetricsMiddleware(m),
		middleware.GinCORSMiddleware(),
	)
	if cfg.RateLimit.Enabled {
		limiter := ratelimit.NewRedisRateLimiter(redisCache.GetClient())
		r.Use(middleware.RateLimitMiddleware(limiter, cfg.RateLimit))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": cfg.ServiceName})
	})
	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	handler := http_server.NewSelectionHandler(commandService, queryService)
	handler.RegisterRoutes(r.Group("/api"))

	// 10. Start
	g, ctx := errgroup.WithContext(context.Background())

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}
	g.Go(func() error {
		log.Info("HTTP server starting", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		log.Info("outbox relay starting", "topic", eventsTopic)
		if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	// 11. Graceful Shutdown
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
			log.Info("shutting down servers...")
		case <-ctx.Done():
			log.Info("context cancelled, shutting down...")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited with error", "error", err)
	}
}
