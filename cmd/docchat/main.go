// Command docchat is a terminal client for a document question-answering
// service.
//
// Usage:
//
//	DOCCHAT_TOKEN=... docchat -tenant acme [flags]
//
// Flags:
//
//	-config string        Path to config file (default: ~/.docchat/config.yaml)
//	-base-url string      Service base URL (default: http://localhost:8000)
//	-tenant string        Tenant id
//	-token string         Bearer token (overrides DOCCHAT_TOKEN)
//	-session string       Session id to resume
//	-sessions             List the tenant's stored sessions and exit
//	-store string         Session store: file, sqlite, redis, none
//	-timeout duration     Fallback timeout (default: 7s)
//	-log string           Log file path (default: ~/.docchat/docchat.log)
//	-ask string           Ask a single question and print the answer
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/fwojciec/docchat"
	bt "github.com/fwojciec/docchat/bubbletea"
	dchttp "github.com/fwojciec/docchat/http"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "docchat: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", "", "Path to config file (default: ~/.docchat/config.yaml)")
		baseURL    = flag.String("base-url", "", "Service base URL")
		tenant     = flag.String("tenant", "", "Tenant id")
		token      = flag.String("token", "", "Bearer token (overrides DOCCHAT_TOKEN)")
		sessionID  = flag.String("session", "", "Session id to resume")
		listOnly   = flag.Bool("sessions", false, "List the tenant's stored sessions and exit")
		storeKind  = flag.String("store", "", "Session store: file, sqlite, redis, none")
		timeout    = flag.Duration("timeout", 0, "Fallback timeout (default: 7s)")
		logPath    = flag.String("log", "", "Log file path (default: ~/.docchat/docchat.log)")
		question   = flag.String("ask", "", "Ask a single question and print the answer")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	explicit := *configPath != ""
	path := *configPath
	if !explicit {
		path = filepath.Join(home, ".docchat", "config.yaml")
	}
	fc, err := loadConfigFile(path, explicit)
	if err != nil {
		return err
	}

	// Env vars are read here and passed as values.
	cfg, err := resolveConfig(
		flagValues{
			BaseURL:         *baseURL,
			TenantID:        *tenant,
			Token:           *token,
			FallbackTimeout: *timeout,
			StoreKind:       *storeKind,
			LogPath:         *logPath,
		},
		envValues{
			Token:    os.Getenv("DOCCHAT_TOKEN"),
			BaseURL:  os.Getenv("DOCCHAT_BASE_URL"),
			TenantID: os.Getenv("DOCCHAT_TENANT"),
		},
		fc, home)
	if err != nil {
		return err
	}

	logger, closeLog, err := openLogger(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	store, closeStore, err := openStore(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Error("close session store", "error", err)
		}
	}()

	if *listOnly {
		if store == nil {
			return errors.New("-sessions requires a session store")
		}
		return listSessions(ctx, store, cfg.TenantID, os.Stdout)
	}

	session, err := loadOrCreateSession(ctx, store, *sessionID, cfg.TenantID)
	if err != nil {
		return err
	}

	client := dchttp.New(docchat.StaticToken(cfg.Token), dchttp.WithBaseURL(cfg.BaseURL))
	opts := []docchat.ChatOption{
		docchat.WithFallbackTimeout(cfg.FallbackTimeout),
		docchat.WithLogger(logger),
	}
	if store != nil {
		opts = append(opts, docchat.WithStore(store))
	}
	chat := docchat.NewChat(client, &session, opts...)
	logger.Info("docchat started", "base_url", cfg.BaseURL, "tenant", cfg.TenantID, "store", cfg.Store.Kind)

	if *question != "" {
		return runAsk(ctx, chat, *question, os.Stdout)
	}

	submit := func(ctx context.Context, text string, onEvent func(docchat.Event)) (*docchat.Request, error) {
		return chat.Submit(ctx, text, docchat.WithEventHandler(onEvent))
	}
	if err := bt.Run(ctx, bt.New(submit, session, docchat.DefaultTheme())); err != nil {
		return fmt.Errorf("TUI: %w", err)
	}

	if id := chat.Session().ID; id != "" && store != nil {
		fmt.Fprintf(os.Stderr, "Session saved. Resume with: docchat -session %s\n", id)
	}
	return nil
}

// openLogger writes JSON logs to path so they never interleave with the
// terminal UI.
func openLogger(path, level string) (*slog.Logger, func(), error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: lvl}))
	return logger, func() { f.Close() }, nil
}
