package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/sefazor/ourphotos-albums/internal/config"
	"github.com/sefazor/ourphotos-albums/internal/handler"
	"github.com/sefazor/ourphotos-albums/internal/repository"
	"github.com/sefazor/ourphotos-albums/internal/repository/memory"
	"github.com/sefazor/ourphotos-albums/internal/repository/mongodb"
	"github.com/sefazor/ourphotos-albums/internal/repository/postgres"
	"github.com/sefazor/ourphotos-albums/internal/server"
	"github.com/sefazor/ourphotos-albums/internal/service"
	"github.com/sefazor/ourphotos-albums/pkg/database"
	"github.com/sefazor/ourphotos-albums/pkg/jwt"
	"github.com/sefazor/ourphotos-albums/pkg/logger"
	"github.com/sefazor/ourphotos-albums/pkg/oauth"
	"github.com/sefazor/ourphotos-albums/pkg/oauthstate"
	"github.com/sefazor/ourphotos-albums/pkg/qrcode"
	"github.com/sefazor/ourphotos-albums/pkg/storage"
	"github.com/sefazor/ourphotos-albums/pkg/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// Config'i yükle
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	// Storage services
	blobs, err := openBlobStore(ctx, cfg, log)
	if err != nil {
		return err
	}

	states, closeStates, err := openStateStore(cfg, log)
	if err != nil {
		return err
	}
	defer closeStates()

	google, err := oauth.NewGoogleProvider(ctx, cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURI)
	if err != nil {
		return fmt.Errorf("init google provider: %w", err)
	}

	policy, err := service.ParseFavoritePolicy(cfg.FavoritePolicy)
	if err != nil {
		return err
	}

	if cfg.JWT.Secret == "" {
		log.Warn("JWT_SECRET is not set; every authenticated request will fail")
	}
	tokens := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Expiry)

	// Services
	albumService := service.NewAlbumService(store, blobs, qrcode.NewQRService(cfg.FrontendURL), log)
	imageService := service.NewImageService(store, blobs, service.ImageServiceConfig{
		AllowedTypes:   cfg.AllowedMimeTypes,
		FavoritePolicy: policy,
	}, log)
	authService := service.NewAuthService(store.Users(), google, states, tokens, cfg.FrontendURL, log)

	// Validator'ı önce tanımla
	validator := utils.NewValidator()

	app := server.New(cfg, server.Handlers{
		Album: handler.NewAlbumHandler(albumService, validator),
		Image: handler.NewImageHandler(imageService, validator),
		Auth:  handler.NewAuthHandler(authService),
	}, tokens, log)

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("shutdown failed", zap.Error(err))
	}
	return nil
}

func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.Store, func(), error) {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := database.NewPostgres(cfg.Database.URL, cfg.Env == "development")
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		// Run migrations
		if err := postgres.Migrate(db); err != nil {
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		log.Info("using postgres store")
		return postgres.NewStore(db), func() {
			if err := database.ClosePostgres(db); err != nil {
				log.Error("close postgres", zap.Error(err))
			}
		}, nil

	case "mongodb":
		client, db, err := database.NewMongo(ctx, cfg.Database.URL, cfg.Database.Name)
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongodb: %w", err)
		}
		store := mongodb.NewStore(client, db, cfg.Database.Transactions)
		if err := store.EnsureIndexes(ctx); err != nil {
			return nil, nil, fmt.Errorf("ensure indexes: %w", err)
		}
		log.Info("using mongodb store", zap.String("database", cfg.Database.Name))
		return store, func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(shutdownCtx); err != nil {
				log.Error("close mongodb", zap.Error(err))
			}
		}, nil

	default:
		log.Warn("using in-memory store; data is lost on restart")
		return memory.NewStore(), func() {}, nil
	}
}

func openBlobStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (storage.BlobStore, error) {
	switch cfg.StorageDriver {
	case "minio":
		s, err := storage.NewMinioStorage(ctx, cfg.Minio, log)
		if err != nil {
			return nil, fmt.Errorf("init minio storage: %w", err)
		}
		return s, nil
	case "images":
		return storage.NewCloudflareImages(
			cfg.CloudflareImages.AccountID,
			cfg.CloudflareImages.Token,
			cfg.CloudflareImages.Hash,
			log,
		), nil
	default:
		s, err := storage.NewCloudflareStorage(ctx, cfg.R2, log)
		if err != nil {
			return nil, fmt.Errorf("init R2 storage: %w", err)
		}
		return s, nil
	}
}

func openStateStore(cfg *config.Config, log *zap.Logger) (oauthstate.Store, func(), error) {
	if cfg.Redis.Addr == "" {
		log.Info("REDIS_ADDR not set, keeping OAuth state in memory")
		return oauthstate.NewMemoryStore(cfg.Redis.StateTTL), func() {}, nil
	}

	client, err := database.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	return oauthstate.NewRedisStore(client, cfg.Redis.StateTTL), func() {
		if err := client.Close(); err != nil {
			log.Error("close redis", zap.Error(err))
		}
	}, nil
}
