package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"channel-scheduler/internal/realtime"
)

type Config struct {
	Port            string
	RedisURL        string
	EventsChannel   string
	FrontendBaseURL string
}

func loadConfigFromEnv() Config {
	return Config{
		Port:            getenv("PORT", "3004"),
		RedisURL:        getenv("REDIS_URL", "redis://localhost:6379"),
		EventsChannel:   getenv("EVENTS_CHANNEL", "broadcast"),
		FrontendBaseURL: getenv("FRONTEND_BASE_URL", ""),
	}
}

func main() {
	cfg := loadConfigFromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("realtime-service: invalid REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(opt)
	defer rdb.Close()

	hub := realtime.NewHub()
	srv := realtime.NewServer(hub, rdb, ctx, cfg.FrontendBaseURL, cfg.EventsChannel)

	go hub.Run()
	go srv.RunRedisSubscriber()

	r := srv.Router(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
	)

	httpSrv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	log.Printf("realtime-service listening on :%s", cfg.Port)
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("realtime-service: %v", err)
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
