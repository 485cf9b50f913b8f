// Command dativetop-server serves the DativeTop registry of OLD instances.
// Usage: go run ./cmd/dativetop-server [-addr 127.0.0.1:6543] [-log-level info] [-dev]
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dativetop/dativetop-server/internal/cli"
	"github.com/dativetop/dativetop-server/internal/logging"
	"github.com/dativetop/dativetop-server/internal/registry"
	"github.com/dativetop/dativetop-server/internal/server"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "dativetop-server: %v\n", err)
		os.Exit(1)
	}
}

func run(rawArgs []string) error {
	args, err := cli.ParseArgs(rawArgs, server.DefaultListenAddr)
	if err != nil {
		return err
	}

	logOpts := logging.Options{Level: args.LogLevel, Console: args.Dev}
	base, err := logging.New("", logOpts)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	logger := base.With(logging.Field{Key: "component", Value: "dativetop-server"})

	reg, err := registry.NewRegistry(registry.DefaultSeed(), base.With(logging.Field{Key: "component", Value: "registry"}))
	if err != nil {
		return fmt.Errorf("creating registry: %w", err)
	}

	cfg := server.DefaultConfig()
	cfg.ListenAddr = args.Addr
	cfg.Logger = base.With(logging.Field{Key: "component", Value: "server"})

	s, err := server.NewServer(cfg, reg)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	srv := s.HTTPServer()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting dativetop-server", logging.Field{Key: "addr", Value: srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case sig := <-quit:
		logger.Info("shutting down", logging.Field{Key: "signal", Value: sig.String()})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
