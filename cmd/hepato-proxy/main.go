// Command hepato-proxy serves the HepatoDB screens as a JSON API in front of
// an upstream HepatoDB instance.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/hepatodb-client/internal/api"
	"github.com/Sternrassler/hepatodb-client/internal/config"
	"github.com/Sternrassler/hepatodb-client/pkg/client"
	"github.com/Sternrassler/hepatodb-client/pkg/logging"
	"github.com/Sternrassler/hepatodb-client/pkg/resource"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("hepato-proxy failed")
	}
}

// run starts the proxy and blocks until ctx is cancelled or the server fails.
func run(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("hepato-proxy", flag.ContinueOnError)
	configPath := flags.String("config", os.Getenv("HEPATO_CONFIG"), "path to the YAML configuration file")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	logging.Setup(cfg.LoggingConfig())
	logger := logging.NewLogger("main")

	rdb := cfg.RedisClient()
	if rdb != nil {
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("Connected to Redis")
	} else {
		logger.Info().Msg("No Redis configured, running with in-process cache only")
	}

	hepato, err := client.New(cfg.ClientConfig(rdb))
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	defer hepato.Close()

	if *configPath != "" {
		go func() {
			if err := config.Watch(ctx, *configPath, config.ApplyLogLevel); err != nil {
				logger.Warn().Err(err).Msg("Config watch disabled")
			}
		}()
	}

	server := api.New(hepato, api.Config{
		Addr:           cfg.Server.Addr,
		MaxConnections: cfg.Server.MaxConnections,
		SessionTTL:     cfg.Sessions.TTL,
	})

	logger.Info().
		Str("upstream", cfg.API.BaseURL).
		Int("page_size", resource.DefaultPageSize).
		Int("max_concurrency", cfg.API.MaxConcurrency).
		Msg("HepatoDB client configured")

	errs := make(chan error, 1)
	go func() { errs <- server.Start() }()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errs
}
