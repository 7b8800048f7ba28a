// Package main is the command-line entry point for the world engine
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/events"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/KirkDiggler/rpg-world/internal/config"
	"github.com/KirkDiggler/rpg-world/internal/engine"
	"github.com/KirkDiggler/rpg-world/internal/observe"
	"github.com/KirkDiggler/rpg-world/internal/redis"
	"github.com/KirkDiggler/rpg-world/internal/repositories/worldstate"
)

var (
	configPath    string
	redisEndpoint string
	timeout       time.Duration
	roomID        int64
	userID        int64
)

var rootCmd = &cobra.Command{
	Use:   "worldctl",
	Short: "Inspect and seed RPG worlds",
	Long:  `worldctl talks directly to the world store to import templates, copy worlds and read event history.`,

	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&redisEndpoint, "redis", "", "redis endpoint; overrides config")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "command timeout")
	rootCmd.PersistentFlags().Int64Var(&roomID, "room-id", 0, "room recorded on logged events")
	rootCmd.PersistentFlags().Int64Var(&userID, "user-id", 0, "user recorded on logged events")

	rootCmd.AddCommand(importTemplateCmd)
	rootCmd.AddCommand(copyWorldCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(eventsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(reportFailure(os.Stderr, err))
	}
}

// session is an engine connected to the configured store
type session struct {
	engine  engine.Engine
	ctx     context.Context
	cleanup func()
}

func openSession() (*session, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if redisEndpoint != "" {
		cfg.Redis.Endpoint = redisEndpoint
		cfg.Redis.SentinelMaster = ""
	}
	slog.SetDefault(cfg.Logger(os.Stderr))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	shutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:   cfg.Telemetry.ServiceName,
		EnableMetrics: cfg.Telemetry.EnableMetrics,
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to init telemetry: %w", err)
	}

	var client redis.Client
	cleanup := func() {
		if client != nil {
			if err := client.Close(); err != nil {
				slog.Warn("failed to close redis client", "error", err)
			}
		}
		if err := shutdown(context.Background()); err != nil {
			slog.Warn("failed to flush telemetry", "error", err)
		}
		cancel()
	}

	client, err = cfg.RedisClient()
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	repo, err := worldstate.NewRedis(&worldstate.Config{
		Client:      client,
		MaxAttempts: cfg.Engine.MaxTxAttempts,
	})
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to create world store: %w", err)
	}

	metrics, err := observe.NewMetrics(otel.GetMeterProvider())
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	eng, err := engine.New(&engine.Config{
		Repository:       repo,
		EventBus:         events.NewBus(),
		Metrics:          metrics,
		RecentEventLimit: cfg.Engine.RecentEventLimit,
	})
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	var caller engine.Caller
	if roomID > 0 {
		caller.RoomID = &roomID
	}
	if userID > 0 {
		caller.UserID = &userID
	}

	return &session{
		engine:  eng,
		ctx:     engine.WithCaller(ctx, caller),
		cleanup: cleanup,
	}, nil
}
