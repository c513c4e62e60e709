package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kevinaaaquil/bookstore/backend/config"
	"github.com/kevinaaaquil/bookstore/backend/handlers"
	"github.com/kevinaaaquil/bookstore/backend/middleware"
	"github.com/kevinaaaquil/bookstore/backend/service"
	"github.com/kevinaaaquil/bookstore/backend/store"
	"github.com/kevinaaaquil/bookstore/backend/utils"
	"github.com/redis/go-redis/v9"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	utils.InitLogger(cfg.LogLevel)

	if err := run(cfg); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	var st store.Store
	switch cfg.StoreDriver {
	case config.StoreMemory:
		slog.Warn("using in-memory store; data is lost on restart")
		st = store.NewMemory()
	default:
		db, err := store.NewMongoDB(ctx, cfg.MongoURI, cfg.DBName)
		if err != nil {
			return err
		}
		defer func() {
			if err := db.Disconnect(context.Background()); err != nil {
				slog.Error("mongodb disconnect", "error", err)
			}
		}()
		st = db
	}
	if err := st.EnsureIndexes(ctx); err != nil {
		return err
	}

	var covers service.CoverStore
	if cfg.S3Bucket != "" {
		s3Covers, err := service.NewS3Covers(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3AccessKeyID, cfg.S3SecretKey)
		if err != nil {
			return err
		}
		covers = s3Covers
	} else {
		slog.Warn("AWS_S3_BUCKET not set; cover uploads are disabled")
	}

	var limiter *middleware.RateLimiter
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer client.Close()
		var err error
		if limiter, err = middleware.NewRateLimiter(client, "", cfg.RateLimit, cfg.RateWindow); err != nil {
			return err
		}
	} else {
		slog.Warn("REDIS_ADDR not set; rate limiting is disabled")
	}

	tokens := service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	auth := service.NewAuthService(st, tokens)
	if cfg.HasBootstrapAdmin() {
		if err := auth.EnsureAdmin(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return err
		}
	}

	api := &handlers.API{
		Guard:          service.NewGuard(tokens, st),
		Auth:           auth,
		Catalog:        service.NewCatalogService(st, covers),
		Orders:         service.NewOrderService(st),
		Metrics:        middleware.NewMetrics(),
		Limiter:        limiter,
		MaxUploadBytes: cfg.MaxUploadMB << 20,
		AllowedOrigins: cfg.CORSOrigins,
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", server.Addr, "store", cfg.StoreDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	slog.Info("server stopped")
	return nil
}
