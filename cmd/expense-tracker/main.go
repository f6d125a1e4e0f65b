package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"expensetracker/internal/cli"
	apphttp "expensetracker/internal/http"
	"expensetracker/internal/log"
	"expensetracker/internal/tracker"
)

func main() {
	// Load .env file for local development
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	opts := tracker.Options{StrictAmount: cfg.StrictAmount, Logger: logger}
	events := cli.InitEvents(logger, cfg)
	if events != nil {
		defer events.Close()
		opts.Events = events
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := tracker.NewApp(repo, opts)
	if err := app.Start(ctx); err != nil {
		logger.Error("Failed to load expenses", log.FieldError, err.Error(), log.FieldDBPath, cfg.SQLiteDBPath)
		os.Exit(1)
	}

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		logger.Error("Failed to listen", log.FieldError, err.Error(), "addr", cfg.Addr)
		os.Exit(1)
	}

	srv := apphttp.NewServer(cfg.Addr, app, apphttp.Options{Pinger: repo, Logger: logger})
	url := cli.WindowURL(ln.Addr().String())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting expense tracker", "url", url, log.FieldDBPath, repo.Path(), log.FieldOperation, log.OpStartup)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.OpenBrowser {
		cli.OpenWindow(logger, url)
	}

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
