// Package cli provides the startup steps of cmd/expense-tracker: logging,
// configuration, the database, change events and the browser window.
package cli

import (
	"fmt"
	"io"
	"net"
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/browser"

	"expensetracker/internal/amqp"
	"expensetracker/internal/config"
	"expensetracker/internal/log"
	"expensetracker/internal/storage"
)

var openURL = browser.OpenURL

func init() {
	// The launched browser must not write into our log stream
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
}

// SetupLogger initializes structured logging at the given level and sets it
// as the default logger.
func SetupLogger(level string) *log.Logger {
	logger := log.New(log.Config{
		Level:     log.ParseLevel(level),
		Component: log.ComponentApp,
		Output:    os.Stdout,
	})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as the file is optional.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}
	return cfg
}

// InitSQLite opens the expense database. Returns the repository or exits the
// process on failure.
func InitSQLite(logger *log.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.WithComponent(log.ComponentStorage).Error(fmt.Sprintf("Could not Open %q Database", dbPath),
			log.FieldError, err.Error(), log.FieldDBPath, dbPath)
		os.Exit(1)
	}
	logger.WithComponent(log.ComponentStorage).Info("Database opened",
		log.FieldDBPath, dbPath, log.FieldOperation, log.OpStartup)
	return repo
}

// InitEvents connects the change-event publisher. It returns nil when events
// are disabled or the broker is unreachable; the tracker works without it.
func InitEvents(logger *log.Logger, cfg *config.Config) *amqp.Client {
	if !cfg.EventsEnabled() {
		return nil
	}
	logger = logger.WithComponent(log.ComponentAMQP)
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("AMQP unavailable, change events disabled", log.FieldError, err.Error())
		return nil
	}
	logger.Info("AMQP connected", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return client
}

// WindowURL is the address the browser window opens for a listener address.
func WindowURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr + "/"
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port) + "/"
}

// OpenWindow shows url in the default browser. Failure is logged with the
// URL so the user can open it by hand.
func OpenWindow(logger *log.Logger, url string) {
	logger = logger.WithComponent(log.ComponentWindow)
	if err := openURL(url); err != nil {
		logger.Warn("Could not open browser, open the URL manually", "url", url, log.FieldError, err.Error())
		return
	}
	logger.Info("Window opened", "url", url)
}
