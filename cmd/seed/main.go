// Command seed creates the demo account, a sample project and its tasks.
package main

import (
	"context"
	"log"
	"time"

	"github.com/iliyamo/taskflow-api/internal/cache"
	"github.com/iliyamo/taskflow-api/internal/config"
	"github.com/iliyamo/taskflow-api/internal/database"
	"github.com/iliyamo/taskflow-api/internal/seed"
	"github.com/iliyamo/taskflow-api/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// the API caches listings; drop the demo owner's pages when rows change
	var c cache.Cache
	if cfg.Cache.Enabled {
		rdb, err := config.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Printf("redis unreachable at %s: %v", cfg.Redis.Address(), err)
		}
		defer rdb.Close()
		c = cache.NewRedis(rdb)
	}

	res, err := seed.Run(ctx, db, utils.NewPasswordHasher(cfg.Auth.BcryptCost), c)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	if res == (seed.Result{}) {
		log.Printf("seed data already present for %s", seed.Username)
		return
	}
	log.Printf("seeded user=%t project=%t tasks=%d (login %s / %s)",
		res.UserCreated, res.ProjectCreated, res.TasksCreated, seed.Username, seed.Password)
}
