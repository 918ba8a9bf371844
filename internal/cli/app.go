package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"

	"github.com/ridelinkapp/ridelink/internal/config"
	"github.com/ridelinkapp/ridelink/internal/directory"
	"github.com/ridelinkapp/ridelink/internal/identity"
	"github.com/ridelinkapp/ridelink/internal/localstore"
	"github.com/ridelinkapp/ridelink/internal/logging"
	"github.com/ridelinkapp/ridelink/internal/media"
	"github.com/ridelinkapp/ridelink/internal/reconcile"
	"github.com/ridelinkapp/ridelink/internal/session"
)

// App wires the reconcilers to their real backends and dispatches
// subcommands.
type App struct {
	config        *config.Config
	log           logging.Logger
	authenticator *reconcile.Authenticator
	deleter       *reconcile.Deleter
	replicator    *reconcile.Replicator
	sessions      session.Store
	db            *sql.DB
	rdb           *redis.Client
	reader        *bufio.Reader
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	log := newLogger(cfg.LogLevel)

	db, err := localstore.InitDatabase(ctx, cfg.LocalDSN)
	if err != nil {
		return nil, fmt.Errorf("initializing local database: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Directory.Addr,
		Password: cfg.Directory.Password,
		DB:       cfg.Directory.DB,
	})

	provider := identity.NewRESTClient(cfg.Identity.BaseURL, cfg.Identity.APIKey)
	remote := directory.NewRedisStore(rdb, log)
	local := localstore.NewSQLiteStore(db)
	sessions := session.NewSQLiteStore(db)

	var purger reconcile.MediaPurger
	if cfg.Media.AccessKey != "" {
		p, err := media.NewPurger(ctx, media.Config{
			Region:       cfg.Media.Region,
			AccessKey:    cfg.Media.AccessKey,
			SecretKey:    cfg.Media.SecretKey,
			BaseEndpoint: cfg.Media.Endpoint,
			Bucket:       cfg.Media.Bucket,
		})
		if err != nil {
			return nil, fmt.Errorf("initializing media storage: %w", err)
		}
		purger = p
	}

	return &App{
		config:        cfg,
		log:           log,
		authenticator: reconcile.NewAuthenticator(provider, local, remote, sessions, log),
		deleter:       reconcile.NewDeleter(provider, local, remote, purger, log),
		replicator:    reconcile.NewReplicator(remote, local, log),
		sessions:      sessions,
		db:            db,
		rdb:           rdb,
		reader:        bufio.NewReader(os.Stdin),
	}, nil
}

func newLogger(level string) logging.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	return logging.NewSlogLogger(slog.New(h))
}

// Run executes one subcommand and returns its error.
func (a *App) Run(ctx context.Context, args []string) error {
	defer a.Close()

	if len(args) == 0 {
		usage()
		return nil
	}

	switch args[0] {
	case "login":
		return a.cmdLogin(ctx, args[1:])
	case "logout":
		return a.cmdLogout(ctx)
	case "whoami":
		return a.cmdWhoami(ctx)
	case "delete":
		return a.cmdDelete(ctx, args[1:])
	case "sync":
		return a.cmdSync(ctx, args[1:])
	case "watch":
		return a.cmdWatch(ctx)
	case "status":
		return a.cmdStatus(ctx)
	default:
		usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func (a *App) Close() {
	if a.db != nil {
		_ = a.db.Close()
	}
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
}

func usage() {
	fmt.Println(`usage: ridelinkctl <command> [arguments]

commands:
  login <email> <role>   sign in and reconcile the local account
  logout                 clear the stored session
  whoami                 print the stored session
  delete <email>         delete the account from every store
  sync                   replicate the remote directory into the local cache
  watch                  keep replicating on remote changes until interrupted
  status                 report whether the local cache is stale`)
}
