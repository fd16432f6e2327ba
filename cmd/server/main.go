package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"habitledger/internal/app"
	"habitledger/internal/config"
	"habitledger/internal/handler"
	"habitledger/internal/httpserver"
	"habitledger/pkg/logger"
	"habitledger/pkg/mq"
	"habitledger/pkg/outbox"
)

func main() {
	cfg, err := config.FromEnvironment()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr := logger.NewLoggerWithLevel(cfg.LogLevel)
	defer logr.Sync()

	logr.Info("Starting habitledger server...",
		zap.String("db_host", cfg.DB.Host),
		zap.Int("db_port", cfg.DB.Port),
		zap.String("redis_addr", cfg.Redis.Addr),
		zap.String("timezone", cfg.Progress.Timezone),
	)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	a, err := app.New(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("Failed to initialize", zap.Error(err))
	}
	defer a.Close()

	// Outbox dispatcher：MQ 未配置时事件留在 outbox 中，之后可补发
	var publisher *mq.Publisher
	if cfg.MQ.URL != "" {
		logr.Info("Initializing MQ publisher...", zap.String("queue", cfg.MQ.Queue))
		publisher, err = mq.NewPublisher(cfg.MQ.URL, mq.CompletionBindings(cfg.MQ.Queue)...)
		if err != nil {
			logr.Fatal("Failed to init MQ publisher", zap.Error(err))
		}
		defer publisher.Close()

		dispatcher := outbox.NewDispatcher(a.Outbox, publisher, logr).
			WithInterval(cfg.Outbox.Interval).
			WithBatchSize(cfg.Outbox.BatchSize).
			WithMaxRetries(cfg.Outbox.MaxRetries)
		go dispatcher.Start(ctx)
	} else {
		logr.Warn("MQ not configured, outbox events will accumulate until replayed")
	}

	checks := map[string]httpserver.Pinger{"db": a.DB}
	if a.Redis != nil {
		checks["redis"] = httpserver.PingFunc(func(ctx context.Context) error {
			return a.Redis.Ping(ctx).Err()
		})
	}
	if publisher != nil {
		checks["mq"] = httpserver.PingFunc(func(context.Context) error {
			if !publisher.IsConnected() {
				return errors.New("publisher disconnected")
			}
			return nil
		})
	}

	router := httpserver.NewRouter(httpserver.Deps{
		Progress:  handler.NewProgressHandler(a.Service, logr),
		JWTSecret: cfg.JWT.Secret,
		Logger:    logr,
		Checks:    checks,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logr.Info("HTTP server starting", zap.String("addr", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 优雅退出处理
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Info("Shutting down habitledger gracefully...")

	// 先停 dispatcher，再关 HTTP
	stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		logr.Info("HTTP server stopped")
	}

	logr.Info("habitledger shutdown complete")
}
