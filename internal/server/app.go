package server

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"handyhub/config"
	"handyhub/internal/events"
	"handyhub/internal/handler"
	"handyhub/internal/redis"
	"handyhub/internal/repository"
	"handyhub/internal/services"
	"handyhub/internal/websocket"
	"handyhub/pkg/logger"
)

// App holds the wired chat backend. Background workers start with Run.
type App struct {
	Chat       *services.ChatService
	Hub        *websocket.Hub
	Dispatcher *events.Dispatcher
	Handlers   *Handlers

	bridge *websocket.RedisBridge
	log    *logger.Logger
}

// NewApp wires the chat backend on db. With rdb nil the instance runs alone:
// fan-out goes straight to the local hub, presence is kept in memory and
// sends are not rate limited.
func NewApp(cfg *config.Config, db *gorm.DB, rdb *goredis.Client, l *logger.Logger) *App {
	if l == nil {
		l = logger.NewNop()
	}
	store := repository.NewStore(db)
	hub := websocket.NewHub(l)

	var (
		publisher events.Publisher = hub
		presence  websocket.PresenceTracker
		limiter   *redis.RateLimiter
		bridge    *websocket.RedisBridge
	)
	if rdb != nil {
		publisher = redis.NewPublisher(rdb)
		presence = redis.NewPresenceStore(rdb, cfg.PresenceTTL)
		limiter = redis.NewRateLimiter(rdb, redis.RateLimitConfig{
			MessageLimit:  cfg.MessageRateLimit,
			MessageWindow: cfg.MessageRateWindow,
		})
		bridge = websocket.NewRedisBridge(redis.NewSubscriber(rdb), hub)
	} else {
		presence = websocket.NewMemoryPresence()
	}

	dispatcher := events.NewDispatcher(publisher, cfg.FanoutQueueSize, l)
	conversations := services.NewConversationService(store, cfg.ConversationSource, l)
	chat := services.NewChatService(store, conversations, dispatcher, l)
	auth := services.NewAuthService(cfg)
	router := websocket.NewRouter(hub, chat, presence, dispatcher, l)

	handlers := &Handlers{
		Chat:      handler.NewChatHandler(chat),
		WebSocket: websocket.NewHandler(auth, hub, router, presence, cfg.CORSOrigins, l),
		Auth:      auth,
		Health:    healthCheck(db, rdb),
	}
	if limiter != nil {
		handlers.Limiter = limiter
	}

	l.Logger.Info("chat backend wired",
		zap.String("conversation_source", conversations.Source()),
		zap.Bool("redis", rdb != nil),
		zap.Bool("auth", auth.Enabled()))

	return &App{
		Chat:       chat,
		Hub:        hub,
		Dispatcher: dispatcher,
		Handlers:   handlers,
		bridge:     bridge,
		log:        l,
	}
}

// Run drives the hub, the fan-out worker and, when present, the Redis
// bridge until ctx ends.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Hub.Run(ctx)
		return nil
	})
	g.Go(func() error {
		a.Dispatcher.Run(ctx)
		return nil
	})
	if a.bridge != nil {
		g.Go(func() error {
			err := a.bridge.Run(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				a.log.Logger.Error("redis bridge stopped", zap.Error(err))
				return err
			}
			return nil
		})
	}
	return g.Wait()
}

// Start runs the workers in the background. A worker failure calls stop, so
// the HTTP server does not keep accepting sends it can no longer fan out.
// The returned channel yields Run's result once.
func (a *App) Start(ctx context.Context, stop context.CancelFunc) <-chan error {
	done := make(chan error, 1)
	go func() {
		err := a.Run(ctx)
		if err != nil {
			a.log.Logger.Error("background workers failed, shutting down", zap.Error(err))
			stop()
		}
		done <- err
	}()
	return done
}

func healthCheck(db *gorm.DB, rdb *goredis.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
		if rdb != nil {
			if err := redis.Ping(ctx, rdb); err != nil {
				return err
			}
		}
		return nil
	}
}
