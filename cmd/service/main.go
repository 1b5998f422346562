package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"channel-scheduler/internal/schedule"
)

func main() {
	cfg, err := loadConfigFromEnv()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("schedule-service: pg: %v", err)
	}
	defer pool.Close()

	if err := schedule.AutoMigrate(ctx, pool); err != nil {
		log.Fatalf("schedule-service: migrate: %v", err)
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("schedule-service: invalid REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(opt)
	defer rdb.Close()

	srv := schedule.NewServer(schedule.NewPostgresStore(pool), rdb, cfg.EventsChannel)

	r := srv.Router(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middleware.Timeout(cfg.Timeout),
		schedule.BodyLimit(cfg.MaxBodyBytes),
	)

	log.Printf("schedule-service listening on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatalf("schedule-service: %v", err)
	}
}
