package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"handyhub/config"
	"handyhub/internal/redis"
	"handyhub/internal/repository"
	"handyhub/internal/server"
	"handyhub/pkg/database"
	"handyhub/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	l := logger.New(cfg.LogMode)
	logger.SetGlobalLogger(l)
	defer l.Sync()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close() }()

	if err := repository.InitSchema(db); err != nil {
		log.Fatalf("Failed to apply GORM migrations: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	var rdb *goredis.Client
	if cfg.RedisEnabled() {
		rdb = redis.NewClient(redis.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer func() { _ = rdb.Close() }()
		if err := redis.Ping(ctx, rdb); err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
	} else {
		l.Logger.Warn("REDIS_HOST not set, running single instance without rate limiting")
	}
	if !cfg.AuthEnabled() {
		l.Logger.Warn("JWT_SECRET not set, requests are not authenticated")
	}

	app := server.NewApp(cfg, db, rdb, l)
	workers := app.Start(ctx, stop)

	srv := server.New(cfg, l)
	srv.SetupRoutes(app.Handlers)
	if err := srv.Start(ctx); err != nil {
		l.Logger.Error("server stopped", zap.Error(err))
		stop()
		<-workers
		os.Exit(1)
	}

	stop()
	if err := <-workers; err != nil {
		l.Logger.Error("background workers stopped", zap.Error(err))
		os.Exit(1)
	}
}
