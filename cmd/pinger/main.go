package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"pingboard/internal/config"
	"pingboard/internal/display"
	"pingboard/internal/pinger"
	"pingboard/internal/providers/pingapi"

	"github.com/spf13/pflag"
)

func main() {
	flags := pflag.NewFlagSet("pinger", pflag.ExitOnError)
	flags.String("url", "", "ping endpoint to sample (default from config)")
	flags.Duration("interval", 0, "time between requests (default from config)")
	flags.Duration("timeout", 0, "per-request timeout, 0 for none")
	flags.String("label", "", "line printed when sampling starts")
	_ = flags.Parse(os.Args[1:])

	// Load configuration
	cfg, err := config.LoadWithFlags(flags)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("pinger failed", "error", err)
		os.Exit(1)
	}
}

// run samples until ctx ends, then tears the controller down
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	client, err := pingapi.NewClient(cfg.Ping.URL, pingapi.WithTimeout(cfg.Ping.Timeout))
	if err != nil {
		return fmt.Errorf("failed to create ping client: %w", err)
	}

	term := display.NewTerminal(os.Stdout, client.URL()+" ")
	defer func() {
		_ = term.Close()
	}()

	controller := pinger.NewController(client, term, term,
		pinger.WithInterval(cfg.Ping.Interval),
		pinger.WithLabel(cfg.Ping.Label),
		pinger.WithLogger(logger),
	)
	if err := controller.Start(ctx); err != nil {
		return fmt.Errorf("failed to start sampling: %w", err)
	}
	defer controller.Teardown()

	<-ctx.Done()
	return nil
}
