package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rtcdiag/internal/core/services"
	httphandlers "rtcdiag/internal/handlers/http"
	"rtcdiag/internal/infrastructure/middleware"
	"rtcdiag/internal/infrastructure/monitoring"
	"rtcdiag/internal/infrastructure/statsdump"
	"rtcdiag/pkg/config"
	"rtcdiag/pkg/logger"
	"rtcdiag/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	startTime := time.Now()

	// Try multiple config paths
	configPaths := []string{
		os.Getenv("RTCDIAG_CONFIG"),
		"configs/config.yaml",
		"./configs/config.yaml",
		"config.yaml",
	}

	var cfg *config.Config
	var err error

	for _, path := range configPaths {
		if path == "" {
			continue
		}
		cfg, err = config.Load(path)
		if err == nil {
			break
		}
	}

	if cfg == nil || err != nil {
		// Fallback to defaults if config cannot be loaded
		cfg = config.DefaultConfig()
	}

	// Initialize logger
	zapLogger := logger.New(cfg.Logging.Level)
	defer zapLogger.Sync()

	log := zapLogger.Sugar()
	if err != nil {
		log.Warnw("failed to load config, using defaults", "error", err)
	}

	// Initialize tracing
	tracerProvider, err := tracing.Init(cfg.Tracing)
	if err != nil {
		log.Fatalw("failed to initialize tracing", "error", err)
	}

	// Initialize monitoring
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := monitoring.NewPrometheusCollector(registry)

	// Initialize services
	parser := statsdump.NewDefaultRegistry()
	scoringService := services.NewScoringService(cfg.ScoringThresholds())
	summaryService := services.NewSummaryService(scoringService)
	analysisService := services.NewAnalysisService(parser, summaryService,
		services.WithRecorder(collector),
		services.WithLogger(zapLogger),
		services.WithMaxDumpBytes(cfg.Analysis.MaxDumpBytes),
	)

	healthChecker := monitoring.NewHealthChecker()
	healthChecker.AddParserCheck(parser, 2*time.Second)

	// Initialize HTTP handlers
	analysisHandler := httphandlers.NewAnalysisHandler(analysisService, cfg.Analysis.MaxDumpBytes)

	// Configure Gin
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		middleware.RecoveryMiddleware(zapLogger),
		middleware.RequestIDMiddleware(),
		middleware.TracingMiddleware(),
		requestLogger(zapLogger),
		middleware.NewHTTPRateLimitMiddleware(cfg),
		middleware.ErrorHandlerMiddleware(zapLogger),
	)

	analysisHandler.SetupRoutes(router)

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		status := healthChecker.CheckAll(ctx)
		code := http.StatusOK
		if status.Status != "healthy" {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":    status.Status,
			"timestamp": status.Timestamp,
			"checks":    status.Checks,
			"uptime":    time.Since(startTime).String(),
		})
	})

	// Prometheus metrics endpoint
	if cfg.Monitoring.PrometheusEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})))
		log.Info("Prometheus metrics enabled")
	}

	// Create HTTP server with timeouts
	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		log.Infof("Starting rtcdiag analyzer on %s", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for shutdown signals or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Fatalw("Server failed", "error", err)
	case sig := <-sigChan:
		log.Infow("Received shutdown signal", "signal", sig)
	}

	log.Info("Shutting down rtcdiag analyzer...")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Shutdown HTTP server gracefully
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Error during server shutdown", "error", err)
		// Force close if graceful shutdown fails
		if closeErr := srv.Close(); closeErr != nil {
			log.Errorw("Error force closing server", "error", closeErr)
		}
	} else {
		log.Info("Server shutdown gracefully")
	}

	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Error flushing traces", "error", err)
	}

	log.Info("rtcdiag analyzer stopped")
}

// requestLogger logs one line per request with the request id attached.
func requestLogger(zapLogger *zap.Logger) gin.HandlerFunc {
	cl := logger.NewContextLogger(zapLogger)
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		cl.LogInfo(c.Request.Context(), "http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Int("body_bytes", c.Writer.Size()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
