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

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/AnshRaj112/pinvent-backend/internal/config"
	"github.com/AnshRaj112/pinvent-backend/internal/database"
	"github.com/AnshRaj112/pinvent-backend/internal/logging"
	"github.com/AnshRaj112/pinvent-backend/internal/middleware"
	"github.com/AnshRaj112/pinvent-backend/internal/routes"
	"github.com/AnshRaj112/pinvent-backend/internal/services"
	"github.com/AnshRaj112/pinvent-backend/pkg/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongo, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, logger)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := mongo.Disconnect(); err != nil {
			logger.Warn("MongoDB disconnect failed", zap.Error(err))
		}
	}()

	hasher := utils.NewBcryptHasher()
	users := services.NewMongoUserStore(mongo.DB, hasher)
	resetRepo := services.NewMongoResetTokenRepository(mongo.DB)
	productStore := services.NewMongoProductStore(mongo.DB)

	indexCtx, cancelIndexes := context.WithTimeout(ctx, 30*time.Second)
	for name, ensure := range map[string]func(context.Context) error{
		"users":    users.EnsureIndexes,
		"tokens":   resetRepo.EnsureIndexes,
		"products": productStore.EnsureIndexes,
	} {
		if err := ensure(indexCtx); err != nil {
			logger.Warn("Failed to ensure indexes", zap.String("collection", name), zap.Error(err))
		}
	}
	cancelIndexes()

	var limiter *middleware.RedisRateLimiter
	if cfg.RedisURI != "" {
		var rdb *redis.Client
		rdb, err = database.ConnectRedis(ctx, cfg.RedisURI, logger)
		if err != nil {
			logger.Warn("Redis unavailable, auth rate limiting disabled", zap.Error(err))
		} else {
			defer func() { _ = rdb.Close() }()
			limiter = middleware.NewRedisRateLimiter(rdb, "pinvent:auth",
				middleware.DefaultAuthMaxRequests, middleware.DefaultAuthWindow, middleware.DefaultBlockDuration, logger)
		}
	}

	var uploader services.ImageUploader
	if cfg.CloudinaryEnabled() {
		cld, err := services.NewCloudinaryService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			logger.Warn("Failed to initialize Cloudinary, image uploads disabled", zap.Error(err))
		} else {
			uploader = cld
		}
	} else {
		logger.Warn("Cloudinary credentials not found, image uploads disabled")
	}

	resets := services.NewResetTokenManager(resetRepo, users, cfg.ResetTokenTTL)
	services.StartResetTokenSweeper(ctx, resets, cfg.SweepInterval, logger)

	auth := services.NewAuthService(services.AuthDeps{
		Users:       users,
		Hasher:      hasher,
		Sessions:    services.NewSessionIssuer(cfg.JWTSecret, cfg.SessionTTL),
		Resets:      resets,
		Mailer:      services.NewSMTPMailer(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPassword, cfg.MailFrom),
		FrontendURL: cfg.FrontendURL,
		Logger:      logger,
	})

	router := routes.NewRouter(routes.Deps{
		Auth:           auth,
		Products:       services.NewProductService(productStore, uploader),
		Limiter:        limiter,
		AllowedOrigins: cfg.AllowedOrigins,
		Production:     cfg.IsProduction(),
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Pinvent backend running", zap.String("addr", srv.Addr), zap.String("env", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Graceful shutdown failed", zap.Error(err))
	}
}
