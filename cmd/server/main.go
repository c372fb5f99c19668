package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"

	"github.com/atmx/trading-account/internal/config"
	"github.com/atmx/trading-account/internal/store"
	"github.com/atmx/trading-account/internal/trade"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	app := &cli.App{
		Name:  "account-server",
		Usage: "trading account HTTP service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a TOML config file",
				EnvVars: []string{"CONFIG_FILE"},
			},
			&cli.StringFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "listen port (overrides config and PORT)",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if port := c.String("port"); port != "" {
		cfg.Port = port
		if err := cfg.Valid(); err != nil {
			return err
		}
	}

	oracle, err := cfg.Oracle()
	if err != nil {
		return err
	}
	slog.Info("price table loaded", "symbols", oracle.Symbols())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Event fan-out ---
	wsHub := trade.NewWSHub()
	go wsHub.Run(ctx)

	publishers := trade.MultiPublisher{wsHub}
	if cfg.Redis.URL != "" {
		opt, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("invalid redis url: %w", err)
		}
		rdb := redis.NewClient(opt)
		defer rdb.Close()
		publishers = append(publishers, trade.NewRedisPublisher(rdb, cfg.Redis.Channel))
		slog.Info("Redis event publishing enabled", "channel", cfg.Redis.Channel)
	}

	// Accounts live for the lifetime of the process.
	svc := trade.NewService(store.NewMemoryStore(), oracle, publishers)

	if cfg.Demo.Username != "" {
		deposit, err := cfg.DemoDeposit()
		if err != nil {
			return err
		}
		if _, err := svc.Open(ctx, cfg.Demo.Username, deposit); err != nil {
			return fmt.Errorf("seed demo account: %w", err)
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      newRouter(svc, wsHub, cfg.RequestTimeout),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("trading-account listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	slog.Info("shutting down trading-account...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
	}
	return nil
}
