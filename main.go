package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ejjays/assets-management/cache"
	"github.com/ejjays/assets-management/chat"
	"github.com/ejjays/assets-management/config"
	"github.com/ejjays/assets-management/database"
	"github.com/ejjays/assets-management/handlers"
	"github.com/ejjays/assets-management/logger"
	"github.com/ejjays/assets-management/middleware"
	"github.com/ejjays/assets-management/repository"
	"github.com/ejjays/assets-management/routes"
	"github.com/ejjays/assets-management/seed"
	"github.com/ejjays/assets-management/snapshot"
	"github.com/ejjays/assets-management/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("invalid configuration", zap.Error(err))
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	defer log.Sync()

	ctx := context.Background()

	// Storage. The Mongo client connects on first use.
	var (
		repo repository.AssetRepository
		db   *database.Mongo
	)
	switch cfg.StoreDriver {
	case "memory":
		log.Warn("using in-memory asset store; data is lost on restart")
		repo = repository.NewMemoryAssetRepository()
	default:
		db = database.NewMongo(cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection, log)
		repo = repository.NewMongoAssetRepository(db)
	}

	if cfg.SeedDemoAssets > 0 {
		seedCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		n, err := seed.IfEmpty(seedCtx, repo, seed.Drafts(uint64(time.Now().UnixNano()), cfg.Taxonomy, cfg.SeedDemoAssets, time.Now()))
		cancel()
		if err != nil {
			log.Error("failed to seed demo assets", zap.Error(err))
		} else if n > 0 {
			log.Info("seeded demo assets", zap.Int("count", n))
		}
	}

	// Shared state for the limiter and idempotency keys lives in Redis when
	// configured, in process memory otherwise.
	var (
		redisClient *redis.Client
		responses   cache.ResponseStore
	)
	if cfg.RedisAddr != "" {
		redisClient, err = cache.NewRedisClient(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			log.Fatal("redis unavailable", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		defer redisClient.Close()
		responses = cache.NewRedisResponseStore(redisClient, cache.DefaultKeyPrefix, cfg.IdempotencyTTL)
	} else {
		responses = cache.NewMemoryResponseStore(4096, cfg.IdempotencyTTL)
	}

	chatLimiter, err := middleware.NewLimiter(cfg.ChatRateLimit, redisClient)
	if err != nil {
		log.Fatal("invalid chat rate limit", zap.Error(err))
	}

	// Chat: hosted model first, keyword answers as fallback.
	advisor := &chat.FallbackAdvisor{Secondary: chat.KeywordAdvisor{}, Log: log}
	if cfg.GeminiAPIKey != "" {
		gemini, err := chat.NewGeminiAdvisor(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Warn("hosted model disabled", zap.Error(err))
		} else {
			advisor.Primary = gemini
			log.Info("hosted model enabled", zap.String("model", cfg.GeminiModel))
		}
	}
	chatHandler := handlers.NewChatHandler(advisor, 0, log)
	chatHub := websocket.NewHub(chatHandler, chatLimiter, log)

	var uploader *snapshot.Uploader
	if cfg.SnapshotBucket != "" {
		uploader, err = snapshot.New(ctx, snapshot.Config{
			Bucket:    cfg.SnapshotBucket,
			Region:    cfg.SnapshotRegion,
			Endpoint:  cfg.SnapshotEndpoint,
			PathStyle: cfg.SnapshotPathStyle,
			Prefix:    cfg.SnapshotPrefix,
		})
		if err != nil {
			log.Warn("snapshots disabled", zap.Error(err))
		}
	}

	deps := routes.Deps{
		Assets: handlers.NewAssetHandler(repo, handlers.AssetOptions{
			Taxonomy:         cfg.Taxonomy,
			StoreTimeout:     cfg.StoreTimeout,
			StrictValuePatch: cfg.StrictValuePatch,
			PublicBaseURL:    cfg.PublicBaseURL,
		}, log),
		Snapshots:   handlers.NewSnapshotHandler(repo, uploader, cfg.StoreTimeout, log),
		Chat:        chatHandler,
		ChatSocket:  chatHub,
		Metrics:     middleware.NewMetrics(),
		ChatLimiter: chatLimiter,
		Idempotency: responses,
		Log:         log,
	}
	if db != nil {
		deps.DB = db
	}

	router := mux.NewRouter()
	routes.RegisterRoutes(router, deps)

	// Static frontend last, so API routes match first.
	if cfg.StaticDir != "" {
		router.PathPrefix("/").Handler(http.FileServer(http.Dir(cfg.StaticDir)))
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("asset service listening",
			zap.String("addr", srv.Addr),
			zap.String("environment", cfg.Environment),
			zap.String("store", cfg.StoreDriver),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	<-quit
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log.Info("closing chat connections", zap.Int("clients", chatHub.Len()))
	chatHub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced shutdown", zap.Error(err))
	}

	if db != nil {
		db.Disconnect()
	}
	log.Info("server stopped")
}
