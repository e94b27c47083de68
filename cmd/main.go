package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"entregas/config"
	"entregas/pkg/api"
	"entregas/pkg/auth"
	"entregas/pkg/bot"
	"entregas/pkg/jobs"
	"entregas/pkg/logger"
	"entregas/pkg/ratelimit"
	"entregas/pkg/realtime"
	"entregas/service"
	"entregas/storage"
	"entregas/storage/memory"
	"entregas/storage/postgres"
)

func main() {
	// 1. Config and logger
	cfg := config.Load()
	log := logger.New(cfg.ServiceName, cfg.LoggerLevel)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Storage
	stg, err := newStorage(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize storage", logger.Error(err))
		os.Exit(1)
	}
	defer stg.Close()

	// 3. Realtime fan-out: redis when several instances share the load
	var bus realtime.Bus = realtime.NewLocalBus()
	if cfg.RedisEnabled {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr(), Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Error("redis ping failed", logger.String("addr", cfg.RedisAddr()), logger.Error(err))
			os.Exit(1)
		}
		defer func() { _ = rdb.Close() }()
		bus = realtime.NewRedisBus(rdb, log)
		log.Info("Redis connected", logger.String("addr", cfg.RedisAddr()))
	}

	hub := realtime.NewHub(log, originChecker(cfg.CORSOrigins))
	go func() {
		if err := bus.Subscribe(ctx, hub.Deliver); err != nil {
			log.Error("realtime subscription stopped", logger.Error(err))
		}
	}()

	// 4. Services
	svc := service.New(stg, log, service.Options{
		Tokens:        auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL),
		Bus:           bus,
		AdminEmails:   cfg.AdminEmails,
		MinWithdrawal: cfg.MinWithdrawalCents,
	})

	// 5. Telegram bot, optional
	if cfg.TelegramBotToken != "" {
		tg, err := bot.New(cfg, svc, log)
		if err != nil {
			log.Error("failed to initialize telegram bot", logger.Error(err))
			os.Exit(1)
		}
		svc.Notification().AttachPusher(tg)
		go tg.Start()
		defer tg.Stop()
	} else {
		log.Info("TG_BOT_TOKEN not set, telegram notifications disabled")
	}

	// 6. Scheduled jobs
	scheduler, err := jobs.New(cfg, svc, log)
	if err != nil {
		log.Error("failed to schedule jobs", logger.Error(err))
		os.Exit(1)
	}
	scheduler.Start()

	// 7. HTTP API
	var limiter *ratelimit.Store
	if cfg.RateLimitRPS > 0 {
		limiter = ratelimit.NewStore(cfg.RateLimitRPS, cfg.RateLimitBurst)
		limiter.StartJanitor(ctx)
	}
	server := api.New(cfg, svc, hub, limiter, log)
	go func() {
		if err := server.Run(); err != nil {
			log.Error("http server stopped", logger.Error(err))
			stop()
		}
	}()

	log.Info("🚀 entregas is running", logger.Int("port", cfg.HTTPPort), logger.String("storage", cfg.StorageDriver))

	// 8. Graceful shutdown
	<-ctx.Done()
	log.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", logger.Error(err))
	}
	scheduler.Stop(shutdownCtx)
}

func newStorage(ctx context.Context, cfg config.Config, log logger.ILogger) (storage.IStorage, error) {
	if cfg.StorageDriver == config.StorageMemory {
		log.Warning("using in-memory storage, data is lost on restart")
		return memory.New(memory.WithDefaultTariffs()), nil
	}
	return postgres.New(ctx, cfg, log)
}

// originChecker mirrors the CORS allow-list for websocket upgrades.
func originChecker(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := allowed[strings.ToLower(origin)]
		return ok
	}
}
