package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/jackc/pgx/v5/pgxpool"

	dbembed "github.com/reactroom/reactroom/db"
	"github.com/reactroom/reactroom/internal/auth"
	"github.com/reactroom/reactroom/internal/config"
	"github.com/reactroom/reactroom/internal/db"
	"github.com/reactroom/reactroom/internal/handlers"
	"github.com/reactroom/reactroom/internal/logger"
	"github.com/reactroom/reactroom/internal/ownership"
	"github.com/reactroom/reactroom/internal/permissions"
	"github.com/reactroom/reactroom/internal/server"
	"github.com/reactroom/reactroom/internal/version"
	"github.com/reactroom/reactroom/internal/youtube"
)

// outboundTimeout caps every outbound Google call. Exceeding it surfaces as a
// transport error; nothing is retried.
const outboundTimeout = 10 * time.Second

func provideConfig() (config.Config, error) {
	cfgPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func provideDBConn(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	conn, err := db.Open(context.Background(), cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			conn.Close()
			return nil
		},
	})
	return conn, nil
}

func provideHTTPClient() *http.Client {
	return &http.Client{Timeout: outboundTimeout}
}

func provideYouTubeClient(log *slog.Logger, client *http.Client, cfg config.Config) *youtube.Client {
	return youtube.NewClient(log, client, cfg.Google)
}

// The signing key lives for the process lifetime only; a restart invalidates
// every claim issued before it.
func provideClaimCodec() (*auth.Codec, error) {
	key, err := auth.NewSigningKey()
	if err != nil {
		return nil, err
	}
	return auth.NewCodec(key), nil
}

func provideOwnership(log *slog.Logger, provider *youtube.Client, codec *auth.Codec, store *permissions.Service) *ownership.Service {
	return ownership.NewService(log, provider, codec, store)
}

type serverParams struct {
	fx.In

	Logger   *slog.Logger
	Config   config.Config
	Handlers []server.Handler `group:"server_handlers"`
}

func provideServer(params serverParams) *server.Server {
	return server.NewServer(params.Logger, params.Config.Server.Addr, params.Handlers...)
}

func provideServerHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

func startServer(lc fx.Lifecycle, logger *slog.Logger, srv *server.Server, shutdowner fx.Shutdowner) {
	fmt.Printf("Starting reactroom %s\n", version.GetInfo())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server failed", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Stop(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server stop: %w", err)
			}
			return nil
		},
	})
}

func runMigrate(args []string) {
	cfg, err := provideConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)

	migrationsFS, err := fs.Sub(dbembed.MigrationsFS, "migrations")
	if err != nil {
		logger.Error("migrations fs", slog.Any("error", err))
		os.Exit(1)
	}
	command := "up"
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}
	if err := db.RunMigrate(logger.L, cfg.Postgres, migrationsFS, command, args); err != nil {
		logger.Error("migrate failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func main() {
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		runMigrate(os.Args[2:])
		return
	}

	fx.New(
		fx.Provide(
			provideConfig,
			provideLogger,
			provideDBConn,
			provideHTTPClient,
			provideClaimCodec,

			provideYouTubeClient,
			permissions.NewService,
			provideOwnership,

			provideServerHandler(handlers.NewHealthHandler),
			provideServerHandler(handlers.NewAuthHandler),
			provideServerHandler(handlers.NewPermissionsHandler),

			provideServer,
		),
		fx.Invoke(
			startServer,
		),
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger.With(slog.String("component", "fx"))}
		}),
	).Run()
}
