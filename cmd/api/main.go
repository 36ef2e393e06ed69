package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/safar/stonecart/internal/api"
	"github.com/safar/stonecart/internal/auth"
	"github.com/safar/stonecart/internal/cart"
	"github.com/safar/stonecart/internal/catalog"
	"github.com/safar/stonecart/internal/config"
	"github.com/safar/stonecart/internal/database"
	"github.com/safar/stonecart/internal/logger"
	"github.com/safar/stonecart/internal/orders"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.NewForEnvironment(os.Getenv("APP_ENV")).Fatal("Load config", zap.Error(err))
	}

	log := logger.New(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: "stdout"})
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	db, err := database.NewConnection(ctx, &cfg.Database, log)
	if err != nil {
		log.Fatal("Connect to database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := migrate(ctx, db, log); err != nil {
			log.Fatal("Apply migrations", zap.Error(err))
		}
	}

	var readerOpts []catalog.Option
	if cfg.Redis.URL != "" {
		client, err := catalog.Connect(ctx, cfg.Redis.URL)
		if err != nil {
			log.Warn("Product cache disabled", zap.Error(err))
		} else {
			defer client.Close()
			readerOpts = append(readerOpts, catalog.WithCache(catalog.NewRedisCache(client, cfg.Redis.ProductTTL)))
			log.Info("Product cache enabled", zap.Duration("ttl", cfg.Redis.ProductTTL))
		}
	}

	products := catalog.NewReader(db, log, readerOpts...)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := api.NewRouter(api.Deps{
		Carts:    cart.NewManager(db, products, log),
		Orders:   orders.NewProcessor(db, log, cfg.Checkout.TotalsTolerance),
		Queries:  orders.NewQueryService(db),
		Products: products,
		DB:       db,
		Verifier: auth.NewVerifier(cfg.Auth.JWTSecret),
		Logger:   log,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("Server starting", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server stopped")
}

func migrate(ctx context.Context, db *sql.DB, log *zap.Logger) error {
	m, err := database.NewMigrator(ctx, db, log)
	if err != nil {
		return err
	}
	defer m.Close()

	return m.Up()
}
