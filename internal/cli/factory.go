package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/tgadmin/internal/config"
	"github.com/aretw0/tgadmin/internal/tree"
	redisadapter "github.com/aretw0/tgadmin/pkg/adapters/redis"
	"github.com/aretw0/tgadmin/pkg/adapters/telegram"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
)

// TransportFactory connects to the chat service.
type TransportFactory func(cfg *config.Config, logger *slog.Logger) (Transport, error)

func telegramTransport(cfg *config.Config, logger *slog.Logger) (Transport, error) {
	bot, err := telegram.New(cfg.Telegram.Token,
		telegram.WithLogger(logger),
		telegram.WithPollTimeout(cfg.Telegram.PollTimeout),
		telegram.WithEndpoint(cfg.Telegram.APIEndpoint, nil),
	)
	if err != nil {
		return nil, err
	}
	logger.Info("Connected to Telegram", "bot", bot.Username())
	return bot, nil
}

// createLocker connects to redis when redis.addr is set. Without it the
// returned locker is nil and the document is only guarded within this process.
func createLocker(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*redisadapter.Locker, func(), error) {
	if cfg.Redis.Addr == "" {
		return nil, func() {}, nil
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	locker := redisadapter.NewLocker(client,
		redisadapter.WithPrefix(cfg.Redis.Prefix),
		redisadapter.WithPollInterval(cfg.Redis.PollInterval),
	)
	if err := locker.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
	}

	logger.Info("Distributed document lock enabled", "addr", cfg.Redis.Addr, "prefix", cfg.Redis.Prefix)
	return locker, func() {
		if err := client.Close(); err != nil {
			logger.Warn("Failed to close redis client", "err", err)
		}
	}, nil
}

// createDocument loads the managed file, guarded by locker when one is given.
func createDocument(path string, cfg *config.Config, locker *redisadapter.Locker, logger *slog.Logger) (*tree.Document, error) {
	opts := []tree.Option{tree.WithLogger(logger)}
	if locker != nil {
		opts = append(opts, tree.WithLocker(locker, cfg.Redis.LockTTL))
	}
	doc, err := tree.Load(path, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return doc, nil
}

// createRegistry returns a registry with the Go runtime and process collectors.
func createRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}
