package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/brewvote/server/internal/api"
	"github.com/brewvote/server/internal/api/handlers"
	"github.com/brewvote/server/internal/audit"
	"github.com/brewvote/server/internal/auth"
	"github.com/brewvote/server/internal/config"
	"github.com/brewvote/server/internal/domain/access"
	"github.com/brewvote/server/internal/domain/events"
	"github.com/brewvote/server/internal/domain/shortcodes"
	"github.com/brewvote/server/internal/domain/voters"
	"github.com/brewvote/server/internal/metrics"
	"github.com/brewvote/server/internal/storage/postgres"
	"github.com/brewvote/server/internal/telemetry"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type serveOptions struct {
	host    string
	port    int
	migrate bool
}

func newServeCommand(global *globalOptions) *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server and handle requests until SIGINT or SIGTERM.

Examples:
  # Configuration from environment variables
  server serve

  # Listen on a specific address and apply pending migrations first
  server serve --host 127.0.0.1 --port 9090 --migrate

  # Configuration file with debug logging
  server serve --config /etc/brewvote/config.yaml --log-level debug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, global, opts)
		},
	}
	cmd.Flags().StringVar(&opts.host, "host", "", "server host address (default: all interfaces)")
	cmd.Flags().IntVar(&opts.port, "port", 0, "server port (default: 8080)")
	cmd.Flags().BoolVar(&opts.migrate, "migrate", false, "apply pending migrations before serving")
	return cmd
}

func runServer(ctx context.Context, global *globalOptions, opts *serveOptions) error {
	cfg, err := config.Load(global.configPath)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	global.applyLogFlags(&cfg)
	if opts.host != "" {
		cfg.Server.Host = opts.host
	}
	if opts.port != 0 {
		cfg.Server.Port = opts.port
	}

	logger := config.NewLogger(cfg.Logging)
	logger.Info().Str("version", Version).Str("environment", cfg.Environment).Msg("starting brewvote server")

	metrics.Init(Version, GitCommit, BuildDate)

	shutdownTracing, err := telemetry.InitTracing(ctx, cfg.Tracing, Version)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Error().Err(err).Msg("tracing shutdown error")
		}
	}()

	if opts.migrate {
		if err := postgres.MigrateUp(cfg.Database.URL); err != nil {
			return err
		}
		logger.Info().Msg("migrations applied")
	}

	openCtx, openCancel := context.WithTimeout(ctx, 10*time.Second)
	pool, err := postgres.Open(openCtx, cfg.Database)
	openCancel()
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer pool.Close()

	collectorCtx, collectorCancel := context.WithCancel(ctx)
	defer collectorCancel()
	dbCollector := metrics.NewDBCollector(pool)
	go dbCollector.Start(collectorCtx, 15*time.Second)
	defer dbCollector.Stop()

	repo, err := postgres.NewRepository(pool)
	if err != nil {
		return err
	}

	handler := api.NewRouter(ctx, buildDeps(cfg, logger, repo))

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}
	return gracefulShutdown(server, cfg.Server.ShutdownTimeout, logger)
}

// buildDeps wires the domain services over the repository.
func buildDeps(cfg config.Config, logger zerolog.Logger, repo *postgres.Repository) api.Deps {
	resolver := shortcodes.NewResolver(repo.ShortCodes(), logger)
	minter := shortcodes.NewMinter(repo.ShortCodes(), logger)
	registrar := voters.NewRegistrar(repo.Voters(), logger)
	guard := access.NewGuard(repo.Access(), logger)

	migrations := func() (uint, bool, error) {
		return postgres.MigrationVersion(cfg.Database.URL)
	}

	return api.Deps{
		Config:  cfg,
		Logger:  logger,
		JWT:     auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, ""),
		Ballots: events.NewBallotLoader(repo.Events(), resolver, registrar, logger),
		Brewers: events.NewBrewerFeedback(repo.Events(), resolver, logger),
		Gateway: events.NewGateway(repo.Events(), guard, minter, audit.NewLogger(logger), logger),
		Sheets:  events.NewPrintSheet(repo.Events(), resolver, guard),
		Health:  handlers.NewHealthChecker(repo, migrations, Version, GitCommit),
		Build:   api.BuildInfo{Version: Version, GitCommit: GitCommit, BuildDate: BuildDate},
	}
}

func gracefulShutdown(server *http.Server, timeout time.Duration, logger zerolog.Logger) error {
	logger.Info().Msg("shutting down")
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
