package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-marketplace-api/config"
	"github.com/oksasatya/go-marketplace-api/internal/domain/entity"
	"github.com/oksasatya/go-marketplace-api/internal/domain/repository"
	pginfra "github.com/oksasatya/go-marketplace-api/internal/infrastructure/postgres"
	"github.com/oksasatya/go-marketplace-api/internal/infrastructure/redisrepo"
	"github.com/oksasatya/go-marketplace-api/pkg/helpers"
)

// Seeds the demo user and demo listing into the configured backend.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	var users repository.UserRepository
	var items repository.ItemRepository

	switch cfg.StorageBackend {
	case "postgres":
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		defer pool.Close()
		users = pginfra.NewUserRepository(pool)
		items = pginfra.NewItemRepository(pool)
	case "redis":
		if cfg.RedisAddr == "" {
			log.Fatal("STORAGE_BACKEND=redis requires REDIS_ADDR")
		}
		rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer func() { _ = rdb.Close() }()
		users = redisrepo.NewUserRepository(rdb)
		items = redisrepo.NewItemRepository(rdb)
	default:
		log.Fatalf("seeding requires a persistent backend, got %q", cfg.StorageBackend)
	}

	hash, err := helpers.HashPassword("ossi123")
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}
	u := &entity.User{Username: "ossi", Email: "ossi.miilukangas@hotmail.com", Password: hash}
	if err := users.Create(u); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			log.Fatal("demo user already seeded")
		}
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%d username=%s\n", u.ID, u.Username)

	it := &entity.Item{
		OwnerID:      u.ID,
		Title:        "Testituote",
		Desc:         "Helvetin hyvä tuote",
		Category:     "Ajoneuvot",
		Location:     "Oulu",
		Images:       []string{},
		Price:        99999.99,
		Date:         "2021-02-11",
		DeliveryType: "pickup",
		Name:         "Ossi",
		Tel:          "0129091249",
	}
	if err := items.Create(it); err != nil {
		log.Fatalf("failed to seed item: %v", err)
	}
	fmt.Printf("seeded item: id=%d title=%s\n", it.ID, it.Title)
}
