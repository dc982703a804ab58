package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloud-wave-best-zizon/store-service/internal/events"
	"github.com/cloud-wave-best-zizon/store-service/internal/handler"
	"github.com/cloud-wave-best-zizon/store-service/internal/repository"
	"github.com/cloud-wave-best-zizon/store-service/internal/service"
	"github.com/cloud-wave-best-zizon/store-service/pkg/config"
	"github.com/cloud-wave-best-zizon/store-service/pkg/logging"
	"github.com/cloud-wave-best-zizon/store-service/pkg/middleware"
	"github.com/cloud-wave-best-zizon/store-service/pkg/mtls"
	"github.com/cloud-wave-best-zizon/store-service/pkg/tracing"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

func main() {
	// Config 로드
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	// Logger 초기화
	logger, err := logging.New(cfg.LogLevel, cfg.LocalMode)
	if err != nil {
		log.Fatal("Failed to create logger: ", err)
	}
	defer logger.Sync()

	shutdownTracing := tracing.Init(cfg.ProjectName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 저장소 초기화
	productRepo, closeRepo, err := repository.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open product store", zap.Error(err))
	}

	if cfg.RedisAddr != "" {
		rdb, err := repository.NewRedisClient(ctx, cfg.RedisAddr, logger)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer rdb.Close()
		productRepo = repository.NewCachedRepository(productRepo, rdb, cfg.CacheTTL, logger)
	}

	var publisher service.EventPublisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		producer := events.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		defer producer.Close()
		publisher = producer
		logger.Info("Publishing product events",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic", cfg.KafkaTopic))
	}

	// Service, Handler 초기화
	productService := service.NewProductService(productRepo, publisher, logger)
	productHandler := handler.NewProductHandler(productService, logger)

	if !cfg.LocalMode {
		gin.SetMode(gin.ReleaseMode)
	}

	// Gin Router 설정
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.ProjectName))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Metrics())

	router.GET("/metrics", middleware.PrometheusHandler())
	productHandler.RegisterRoutes(router.Group(cfg.RootPath))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var source *mtls.Source
	if cfg.TLS.Enabled {
		source, err = mtls.NewSource(ctx, cfg.TLS, logger)
		if err != nil {
			logger.Fatal("Failed to initialize SPIRE TLS", zap.Error(err))
		}
		srv.TLSConfig = source.ServerConfig()
		go source.Watch(ctx, time.Minute)
	}

	// Server 시작
	go func() {
		logger.Info("Starting server",
			zap.String("port", cfg.Port),
			zap.String("root_path", cfg.RootPath),
			zap.Bool("mtls", cfg.TLS.Enabled))

		var err error
		if srv.TLSConfig != nil {
			err = srv.ListenAndServeTLS("", "")
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", zap.Error(err))
			stop()
		}
	}()

	// Graceful Shutdown
	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := closeRepo(shutdownCtx); err != nil {
		logger.Error("Failed to close product store", zap.Error(err))
	}
	if source != nil {
		if err := source.Close(); err != nil {
			logger.Error("Failed to close X509 source", zap.Error(err))
		}
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("Failed to flush traces", zap.Error(err))
	}

	logger.Info("Server exited", zap.String("project", cfg.ProjectName))
}
