package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zjrosen/bloom/internal/config"
	"github.com/zjrosen/bloom/internal/flags"
	"github.com/zjrosen/bloom/internal/guide"
	"github.com/zjrosen/bloom/internal/infrastructure/sqlite"
	"github.com/zjrosen/bloom/internal/log"
	"github.com/zjrosen/bloom/internal/metrics"
	"github.com/zjrosen/bloom/internal/pattern"
	"github.com/zjrosen/bloom/internal/session"
	"github.com/zjrosen/bloom/internal/tracing"
	"github.com/zjrosen/bloom/internal/zen"
	"github.com/zjrosen/bloom/internal/zen/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the zen server",
	Long: `Run the zen server: user profiles, zen coins, achievements, the mood
diary and the leaderboard over a JSON API, plus a WebSocket breathing guide
for remote clients and Prometheus metrics at /metrics.

Example:
  bloom serve                        # listen on 127.0.0.1:8470
  bloom serve --addr :9000           # listen on every interface
  bloom serve --db /tmp/zen.db       # use another database`,
	RunE: runServe,
}

var (
	serveAddr string
	serveDB   string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "address to listen on (overrides server.addr)")
	serveCmd.Flags().StringVar(&serveDB, "db", "", "database path (overrides server.db_path)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cleanupLog, err := initLogging("bloom-serve")
	if err != nil {
		return err
	}
	defer cleanupLog()

	sc := cfg.Server
	if serveAddr != "" {
		sc.Addr = serveAddr
	}
	if serveDB != "" {
		sc.DBPath = config.ExpandHome(serveDB)
	}
	if err := config.ValidateServer(sc); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := config.ValidateTracing(cfg.Tracing); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	registry := flags.New(cfg.Flags)

	tp, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("starting tracing: %w", err)
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	m := metrics.New(true)

	db, err := sqlite.NewDB(sc.DBPath)
	if err != nil {
		return fmt.Errorf("opening zen database: %w", err)
	}
	defer func() { _ = db.Close() }()

	svc := zen.NewService(db.ZenRepository(),
		zen.WithServiceMetrics(m),
		zen.WithLeaderboardTTL(sc.LeaderboardTTL),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := api.Deps{Service: svc, Metrics: m, Tracer: tp.Tracer()}
	if registry.Enabled(flags.FlagRemoteGuide) {
		catalog, err := pattern.LoadCatalog(cfg.PatternsFile)
		if err != nil {
			return fmt.Errorf("loading patterns: %w", err)
		}
		deps.Guide = guide.NewHandler(catalog,
			guide.WithMetrics(m),
			guide.WithSessionOptions(
				session.WithInterval(cfg.TickInterval),
				session.WithTracer(tp.Tracer()),
				session.WithMetrics(m),
			),
		)
		if cfg.PatternsFile != "" {
			startPatternsWatcher(ctx, catalog, cfg.PatternsFile)
		}
	}

	log.Info(log.CatAPI, "Zen server starting", "addr", sc.Addr, "db", sc.DBPath, "guide", deps.Guide != nil)
	fmt.Fprintf(cmd.OutOrStdout(), "Zen server listening on %s\n", sc.Addr)
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop")

	if err := api.NewServer(sc.Addr, api.NewRouter(deps)).ListenAndServe(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Zen server stopped")
	return nil
}
