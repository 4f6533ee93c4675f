package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/taskboard/client/internal/adapters/devserver"
	"github.com/taskboard/client/internal/adapters/storage"
	"github.com/taskboard/client/internal/application/app"
	"github.com/taskboard/client/internal/domain/entities"
	"github.com/taskboard/client/internal/domain/state"
	"github.com/taskboard/client/internal/infrastructure/config"
	"github.com/taskboard/client/internal/infrastructure/logger"
	"github.com/taskboard/client/internal/infrastructure/metrics"
)

// Options are the persistent flags shared by every client command.
type Options struct {
	Output string
	Theme  string
	Board  int
}

// Bind registers the options on flags.
func (o *Options) Bind(flags *pflag.FlagSet) {
	flags.StringVarP(&o.Output, "output", "o", formatText, "Output format (text, yaml, json)")
	flags.StringVar(&o.Theme, "theme", "", "Color theme (light, dark)")
	flags.IntVarP(&o.Board, "board", "b", 0, "Taskboard to act on instead of the default one")
}

// runtime is one client invocation: configuration, persisted session and the App.
type runtime struct {
	cfg      *config.Config
	logger   *logger.Logger
	storage  storage.Store
	app      *app.App
	metrics  *metrics.Metrics
	opts     *Options
	renderer *Renderer
	errOut   io.Writer
}

func setup(ctx context.Context, opts *Options, out, errOut io.Writer) (*runtime, error) {
	if !validFormat(opts.Output) {
		return nil, fmt.Errorf("unknown output format %q", opts.Output)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	store, err := storage.Open(ctx, cfg.Session)
	if err != nil {
		appLogger.Close()
		return nil, fmt.Errorf("failed to open session storage: %w", err)
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	a, err := app.New(ctx, app.Deps{
		API:     cfg.API,
		Storage: store,
		Logger:  appLogger,
		Metrics: m,
	})
	if err != nil {
		store.Close()
		appLogger.Close()
		return nil, err
	}

	r := &runtime{
		cfg:     cfg,
		logger:  appLogger,
		storage: store,
		app:     a,
		metrics: m,
		opts:    opts,
		errOut:  errOut,
	}

	if opts.Theme != "" {
		mode := entities.ThemeMode(opts.Theme)
		if !mode.IsValid() {
			r.Close()
			return nil, fmt.Errorf("unknown theme %q", opts.Theme)
		}
		a.Dispatch(ctx, state.ChangeTheme{Mode: mode})
	}
	r.renderer = NewRenderer(out, opts.Output, a.State().ThemeMode)

	return r, nil
}

func (r *runtime) Close() {
	r.app.Close()
	if err := r.metrics.WriteTextfile(r.cfg.Metrics.File); err != nil {
		r.logger.Warnw("Failed to write metrics", "file", r.cfg.Metrics.File, "error", err)
	}
	if err := r.storage.Close(); err != nil {
		r.logger.Warnw("Failed to close session storage", "error", err)
	}
	r.logger.Close()
}

// requireLogin fails unless a session token is persisted.
func (r *runtime) requireLogin() error {
	if !r.app.State().IsLoggedIn {
		return errors.New("not logged in; run `taskboard login` first")
	}
	return nil
}

// loadBoards fetches the boards and applies --board.
func (r *runtime) loadBoards(ctx context.Context) error {
	if err := r.requireLogin(); err != nil {
		return err
	}
	if _, err := r.app.Loader.LoadBoards(ctx); err != nil {
		return err
	}
	if r.opts.Board != 0 && !r.app.State().ActiveTaskboard.Is(r.opts.Board) {
		return r.app.Loader.SelectBoard(ctx, r.opts.Board)
	}
	return nil
}

// printNotice shows the notice left by the last operation, if any.
func (r *runtime) printNotice() {
	notice := r.app.State().SnackbarState
	if !notice.IsOpen {
		return
	}
	fmt.Fprintln(r.errOut, r.renderer.Notice(notice))
	r.app.Dispatch(context.Background(), state.CloseSnackbar{})
}

// withApp wraps a command body with setup, the notice and teardown.
func withApp(opts *Options, fn func(ctx context.Context, r *runtime, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		r, err := setup(ctx, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer r.Close()

		err = fn(ctx, r, args)
		r.printNotice()
		return err
	}
}

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the development taskboard service",
		Long:  "Start an in-memory taskboard service that implements the REST surface the client consumes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), port)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (defaults to devserver.port)")

	return cmd
}

func runServer(ctx context.Context, port int) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	if port == 0 {
		port = cfg.DevServer.Port
	}

	srv := devserver.New(cfg.DevServer, cfg.Metrics.Enabled, appLogger)

	appLogger.Infow("Starting taskboard devserver",
		"port", port,
		"environment", cfg.App.Environment,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(fmt.Sprintf(":%d", port))
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// NewMigrateCommand creates the migrate command with subcommands
func NewMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Session database migration commands",
		Long:  "Manage migrations of the SQL session storage (up, down, version)",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Run all up migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration(cmd.OutOrStdout(), "up")
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Run all down migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration(cmd.OutOrStdout(), "down")
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print current migration version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showMigrationVersion(cmd.OutOrStdout())
		},
	})

	return migrateCmd
}

func openMigrator() (*migrate.Migrate, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	var dialect string
	switch cfg.Session.Backend {
	case config.BackendSQLite:
		dialect = storage.DialectSQLite
	case config.BackendPostgres:
		dialect = storage.DialectPostgres
	default:
		return nil, fmt.Errorf("session backend %q has no migrations", cfg.Session.Backend)
	}

	db, err := sqlx.Open(dialect, cfg.Session.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	m, err := storage.NewMigrator(db, dialect)
	if err != nil {
		db.Close()
		return nil, err
	}
	return m, nil
}

func runMigration(out io.Writer, direction string) error {
	m, err := openMigrator()
	if err != nil {
		return err
	}
	defer m.Close()

	switch direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	}

	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Fprintln(out, "No migrations to run")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Fprintf(out, "Migration %s completed successfully\n", direction)
	return nil
}

func showMigrationVersion(out io.Writer) error {
	m, err := openMigrator()
	if err != nil {
		return err
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Fprintln(out, "No migrations applied")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	fmt.Fprintf(out, "Current migration version: %d\n", version)
	fmt.Fprintf(out, "Dirty: %t\n", dirty)
	return nil
}
