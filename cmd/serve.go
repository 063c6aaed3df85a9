package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"storefront-service/internal/cart"
	"storefront-service/internal/catalog"
	"storefront-service/internal/handler"
	mid "storefront-service/internal/middleware"
	"storefront-service/internal/session"
	"storefront-service/pkg/config"
	"storefront-service/pkg/database"
	"storefront-service/pkg/jwtutil"
	"storefront-service/pkg/logger"
	"storefront-service/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	appConfig, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	log.Info("Starting "+serviceName, appConfig.LogConfig()...)

	prometheus.InitMetrics(appConfig.Metrics.Prefix, promclient.DefaultRegisterer)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	if err := database.InitDB(appConfig); err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer database.Close()
	db := database.GetDB()
	log.Info("Database connection established")

	store, closeStore, err := newSessionStore(appConfig, db, log)
	if err != nil {
		return err
	}
	defer closeStore()

	jwtUtil := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		SigningKey:      appConfig.JWT.SigningKey,
		ExpirationHours: appConfig.JWT.ExpirationHours,
	})

	catalogStore := catalog.NewStore(db, log, appConfig.Catalog.RelatedLimit)
	cartRepo := cart.NewRepository(db, log)
	catalogHandler := handler.NewCatalogHandler(catalogStore, appConfig.Catalog.FeaturedLimit)
	cartHandler := handler.NewCartHandler(
		cart.NewResolver(cartRepo),
		cart.NewService(cartRepo, catalogStore),
		session.NewManager(store, &appConfig.Session),
	)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)
	e.Use(logger.Middleware())

	// Routes
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/health", handler.HealthCheck(serviceName))

	api := e.Group("/api", mid.OptionalAuthMiddleware(jwtUtil))
	handler.RegisterRoutes(api, catalogHandler, cartHandler)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting server", zap.String("port", appConfig.Server.Port))
		if err := e.Start(":" + appConfig.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// newSessionStore builds the configured session backend and its cleanup
func newSessionStore(appConfig *config.Config, db *gorm.DB, log *zap.Logger) (session.Store, func(), error) {
	switch appConfig.Session.Backend {
	case config.SessionBackendRedis:
		rdb, err := session.DialRedis(&appConfig.Session)
		if err != nil {
			return nil, nil, fmt.Errorf("connect session redis: %w", err)
		}
		log.Info("Session store ready",
			zap.String("backend", config.SessionBackendRedis),
			zap.String("addr", appConfig.Session.RedisAddr))
		store := session.NewRedisStore(rdb, appConfig.Session.TTL, log)
		return store, func() {
			if err := store.Close(); err != nil {
				log.Warn("Failed to close session redis", zap.Error(err))
			}
		}, nil
	default:
		log.Info("Session store ready", zap.String("backend", config.SessionBackendDatabase))
		return session.NewDBStore(db, appConfig.Session.TTL, log), func() {}, nil
	}
}
