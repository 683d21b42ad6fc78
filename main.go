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

	"github.com/dcode-github/six_cities/backend/config"
	"github.com/dcode-github/six_cities/backend/controllers"
	"github.com/dcode-github/six_cities/backend/logger"
	"github.com/dcode-github/six_cities/backend/middleware"
	"github.com/dcode-github/six_cities/backend/repository"
	"github.com/dcode-github/six_cities/backend/routes"
	"github.com/dcode-github/six_cities/backend/utils"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(logger.Options{Level: cfg.LogLevel, Color: cfg.LogColor, JSON: cfg.LogFormat == config.LogFormatJSON})
	slog.SetDefault(log)

	if cfg.JWTKey == "" {
		return &config.ConfigurationError{Key: "JWT_KEY", Err: errors.New("must be set to serve the API")}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := config.ConnectDB(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer func() {
		if err := config.CloseDBConnection(client); err != nil {
			slog.Error("Error closing MongoDB connection", "error", err)
		}
	}()

	config.InitCollections(client, cfg.DBName)

	users := repository.NewUserRepository(config.UserCollection)
	offers := repository.NewOfferRepository(config.OfferCollection)
	if err := users.EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := offers.EnsureIndexes(ctx); err != nil {
		return err
	}

	cache := offerCache(ctx, cfg)
	if c, ok := cache.(*controllers.RedisOfferCache); ok {
		defer c.Close()
	}

	router := mux.NewRouter()
	router.Use(middleware.Logging(log))
	routes.Routes(router, routes.Dependencies{
		Users:     users,
		Offers:    offers,
		Comments:  repository.NewCommentRepository(config.CommentCollection),
		Favorites: repository.NewFavoriteRepository(config.FavoriteCollection),
		Cache:     cache,
		Tokens:    utils.NewTokenService(cfg.JWTKey),
	})

	corsOptions := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        corsOptions.Handler(router),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Server running", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		slog.Info("Server gracefully stopped")
		return nil
	})

	return g.Wait()
}

// offerCache falls back to no caching when Redis is not configured or not reachable.
func offerCache(ctx context.Context, cfg *config.Config) controllers.OfferCache {
	if cfg.RedisAddr == "" {
		slog.Warn("REDIS_ADD not set, offer list caching disabled")
		return controllers.NoopCache{}
	}
	redisClient, err := config.InitRedis(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		slog.Warn("Redis unavailable, offer list caching disabled", "error", err)
		return controllers.NoopCache{}
	}
	return controllers.NewRedisOfferCache(redisClient)
}
