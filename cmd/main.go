package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/oksasatya/go-marketplace-api/config"
	"github.com/oksasatya/go-marketplace-api/internal/container"
	"github.com/oksasatya/go-marketplace-api/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/go-marketplace-api/internal/infrastructure/postgres"
	"github.com/oksasatya/go-marketplace-api/internal/infrastructure/redisrepo"
	"github.com/oksasatya/go-marketplace-api/internal/infrastructure/upload"
	"github.com/oksasatya/go-marketplace-api/internal/interface/middleware"
	"github.com/oksasatya/go-marketplace-api/internal/router"
	"github.com/oksasatya/go-marketplace-api/pkg/helpers"
	"github.com/oksasatya/go-marketplace-api/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	// Redis client when configured (session cache, redis storage backend)
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer func() { _ = redisClient.Close() }()
	}

	// Storage backend
	switch cfg.StorageBackend {
	case "memory":
		container.SetUserRepo(memory.NewUserRepository())
		container.SetItemRepo(memory.NewItemRepository())
	case "postgres":
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		defer pool.Close()
		if err := runMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("migration failed: %v", err)
		}
		container.SetUserRepo(pginfra.NewUserRepository(pool))
		container.SetItemRepo(pginfra.NewItemRepository(pool))
	case "redis":
		if redisClient == nil {
			log.Fatal("STORAGE_BACKEND=redis requires REDIS_ADDR")
		}
		container.SetUserRepo(redisrepo.NewUserRepository(redisClient))
		container.SetItemRepo(redisrepo.NewItemRepository(redisClient))
	default:
		log.Fatalf("unknown storage backend %q", cfg.StorageBackend)
	}

	// Upload storage
	uploads, cleanupUploads, err := buildUploads(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to init upload storage: %v", err)
	}
	defer cleanupUploads()
	container.SetUploads(uploads)

	// Elasticsearch (optional secondary index)
	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			log.Fatalf("failed to init elasticsearch client: %v", err)
		}
		container.SetES(es)
	}

	// RabbitMQ listing events (optional)
	if cfg.RabbitMQURL != "" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEventQueue)
		if err != nil {
			log.Fatalf("failed to init rabbitmq publisher: %v", err)
		}
		defer pub.Close()
		container.SetRabbitPub(pub)
	}

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetRedis(redisClient)
	container.SetTokens(helpers.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL))

	// Gin engine and global middleware
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	if origins := cfg.CORSOrigins(); len(origins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	if cfg.HTTPLogEnabled || cfg.Env == "development" {
		r.Use(gin.Logger())
	}

	reg := router.NewRegistry(r)
	router.InitModules(reg)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Fatalf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}

func buildUploads(ctx context.Context, cfg *config.Config) (upload.Storage, func(), error) {
	switch cfg.UploadBackend {
	case "gcs":
		client, err := upload.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			return nil, nil, err
		}
		return upload.NewGCS(client, cfg.GCSBucket), func() { _ = client.Close() }, nil
	case "local":
		local, err := upload.NewLocal(cfg.UploadDir)
		if err != nil {
			return nil, nil, err
		}
		return local, func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown upload backend %q", cfg.UploadBackend)
}

func runMigrations(dsn string, migrationsDir string, logger *logrus.Logger) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", migrationsDir), "postgres", driver)
	if err != nil {
		return err
	}
	logger.Info("running migrations...")
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to run")
		return nil
	}
	return err
}
