package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mrshanahan/keep-notes/internal/auth"
	"github.com/mrshanahan/keep-notes/internal/cache"
	"github.com/mrshanahan/keep-notes/internal/config"
	"github.com/mrshanahan/keep-notes/internal/filestore"
	"github.com/mrshanahan/keep-notes/internal/logging"
	"github.com/mrshanahan/keep-notes/internal/server"
	"github.com/mrshanahan/keep-notes/internal/utils"
	notesdb "github.com/mrshanahan/keep-notes/pkg/notes-db"
	"github.com/mrshanahan/keep-notes/pkg/persist"
	"github.com/mrshanahan/keep-notes/pkg/store"
)

func main() {
	exitCode := Run()
	os.Exit(exitCode)
}

func Run() int {
	if len(os.Args) > 1 && utils.Any(os.Args[1:], func(x string) bool { return x == "-h" || x == "--help" || x == "-?" }) {
		printHelp()
		return 0
	}

	flags := flag.NewFlagSet("keep-notes", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	configPath := flags.String("config", os.Getenv("NOTES_API_CONFIG"), "path to a TOML config file")
	if err := flags.Parse(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		printHelp()
		return 1
	}

	cfg, err := config.Load(*configPath, os.Getenv)
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		return 1
	}
	logOutput, closeLog := logging.Output(cfg.LogFile, cfg.LogToStderr)
	defer closeLog()
	logger := logging.New(logOutput, cfg.LogLevel, cfg.LogFormatJSON)
	slog.SetDefault(logger)

	key := cfg.StorageKey
	if key == "" {
		key = persist.DefaultKey
	}
	kv, closeKV, err := openBackend(cfg, key)
	if err != nil {
		slog.Error("failed to open storage backend",
			"backend", cfg.Backend,
			"err", err)
		return 1
	}
	defer closeKV()

	notesStore := store.Open(persist.NewAdapter(kv, key), store.WithLogger(logger))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := server.Options{
		Store:        notesStore,
		Logger:       logger,
		AllowOrigins: cfg.AllowOrigins,
	}
	if !cfg.DisableAuth {
		authConfig, err := auth.BuildAuthConfig(ctx, cfg.ClientID, cfg.AuthProviderURL, cfg.RedirectURL)
		if err != nil {
			slog.Error("failed to initialize authentication",
				"authProviderUrl", cfg.AuthProviderURL,
				"err", err)
			return 1
		}
		opts.Auth = authConfig
		opts.Verifier = auth.NewVerifier(authConfig)
		opts.Nonces = cache.NewTimedCache(server.NonceTTL, 100)
	} else {
		slog.Warn("disabling authentication framework - THIS SHOULD ONLY BE RUN FOR TESTING!")
	}

	app := server.New(opts)

	go func() {
		<-ctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			slog.Error("failed to shut down cleanly", "err", err)
		}
	}()

	slog.Info("listening for requests",
		"port", cfg.Port,
		"backend", cfg.Backend)
	if err := app.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
		slog.Error("failed to initialize HTTP server",
			"err", err)
		return 1
	}
	return 0
}

func openBackend(cfg *config.Config, key string) (persist.KeyValueStore, func(), error) {
	switch cfg.Backend {
	case config.BackendMemory:
		slog.Warn("using in-memory storage; notes will not survive a restart")
		return persist.NewMemoryStore(), func() {}, nil

	case config.BackendFile:
		fs, err := filestore.New(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("using file storage", "dir", cfg.DataDir)
		return fs, func() {}, nil

	case config.BackendSQLite:
		if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
			return nil, nil, fmt.Errorf("failed to create notes directory %s: %w", cfg.DataDir, err)
		}
		dbPath := cfg.DBPath()
		if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
			slog.Info("DB does not exist; it will be created during initialization",
				"path", dbPath)
		}
		db, err := notesdb.Initialize(dbPath)
		if err != nil {
			return nil, nil, err
		}
		if updatedOn, err := notesdb.GetUpdatedOn(db, key); err != nil {
			slog.Warn("failed to read last save time", "key", key, "err", err)
		} else if !updatedOn.IsZero() {
			slog.Info("found saved notes", "key", key, "updatedOn", updatedOn)
		}
		kv := notesdb.NewKVStore(db)
		closeKV := func() {
			if err := kv.Close(); err != nil {
				slog.Warn("failed to close DB", "path", dbPath, "err", err)
			}
		}
		return kv, closeKV, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend: %q", cfg.Backend)
	}
}

func printHelp() {
	fmt.Fprintf(os.Stderr, `
keep-notes [-h|--help|-?] [-config PATH]

OPTIONS:
	-h|--help|-?	Display this help message and exit
	-config PATH	TOML config file (default: $NOTES_API_CONFIG)

ENVIRONMENT VARIABLES (override the config file):
	NOTES_API_AUTH_PROVIDER_URL: (required unless auth is disabled) Base URL of the authorization server
	NOTES_API_REDIRECT_URL:      (required unless auth is disabled) OAuth redirect URL (.../auth/callback)
	NOTES_API_CLIENT_ID:         (optional) OAuth client ID (default: %s)
	NOTES_API_DISABLE_AUTH:      (optional) Any non-empty value disables authentication
	NOTES_API_BACKEND:           (optional) sqlite, file or memory (default: %s)
	NOTES_API_DB_DIR:            (optional) Directory holding notes data (default: %s)
	NOTES_API_STORAGE_KEY:       (optional) Key the collection is stored under (default: %s)
	NOTES_API_PORT:              (optional) Port on which API should be hosted (default: %d)
	NOTES_API_ALLOW_ORIGINS:     (optional) CORS allowed origins (default: %s)
	NOTES_API_LOG_LEVEL:         (optional) debug, info, warn or error (default: info)
	NOTES_API_LOG_FILE:          (optional) Rotated log file; logs go to stderr when unset
`,
		config.DefaultClientID,
		config.BackendSQLite,
		config.DefaultNotesDirectory,
		persist.DefaultKey,
		config.DefaultPort,
		config.DefaultAllowOrigins)
}
