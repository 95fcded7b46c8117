package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/shaharia-lab/zephyr"
	"github.com/shaharia-lab/zephyr/internal/api"
	"github.com/shaharia-lab/zephyr/internal/build"
	"github.com/shaharia-lab/zephyr/internal/config"
	"github.com/shaharia-lab/zephyr/internal/logger"
	"github.com/shaharia-lab/zephyr/internal/scheduler"
	"github.com/shaharia-lab/zephyr/internal/server"
	"github.com/shaharia-lab/zephyr/internal/service"
	"github.com/shaharia-lab/zephyr/internal/storage"
	"github.com/shaharia-lab/zephyr/taskpool"
)

// NewServeCmd returns the "serve" subcommand that starts the dispatch daemon.
func NewServeCmd(cfg *config.AppConfig) *cobra.Command {
	var port int
	var configFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the zephyr dispatch daemon",
		Long: `Start the zephyr HTTP daemon. It serves the REST API for emitting events
and managing listeners, exposes Prometheus metrics, and runs the scheduled
event sources declared in the listener config file.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// CLI flags override env config.
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if cmd.Flags().Changed("config") {
				cfg.ConfigFile = configFile
			}

			serverURL := fmt.Sprintf("http://localhost:%d", cfg.Port)
			logFile := filepath.Join(cfg.LogDir(), "zephyr.log")
			printBanner(build.Version, serverURL, logFile)

			if err := runServe(cfg); err != nil {
				fmt.Fprintf(os.Stderr, "An error occurred. Please check the logs at: %s\n", logFile)
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&port, "port", cfg.Port, "HTTP server port (overrides PORT env var)")
	cmd.Flags().StringVar(&configFile, "config", cfg.ConfigFile, "Listener definition file (overrides ZEPHYR_CONFIG_FILE env var)")

	return cmd
}

func runServe(cfg *config.AppConfig) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	for _, dir := range []string{cfg.DataDir, cfg.LogDir()} {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	sysLogger, err := logger.NewSystemLogger(cfg.LogDir(), cfg.SlogLevel(), false)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}

	sysLogger.Info("zephyr starting",
		slog.Int("port", cfg.Port),
		slog.String("data_dir", cfg.DataDir),
		slog.String("version", build.Version),
		slog.String("commit", build.CommitSHA),
		slog.String("build_date", build.BuildDate),
	)

	db, fresh, err := storage.NewSQLiteDB(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close() //nolint:errcheck
	if fresh {
		sysLogger.Info("database initialized", "path", cfg.DBPath())
	}

	deliveryStore := storage.NewSQLiteDeliveryStore(db)

	pool := taskpool.New(cfg.PoolWorkers, cfg.PoolCapacity, sysLogger)
	registerBuiltinTasks(pool, sysLogger)

	promReg := prometheus.NewRegistry()

	dispatcher := zephyr.New(
		zephyr.WithLogger(sysLogger),
		zephyr.WithQueueBackend(pool),
		zephyr.WithAsyncWorkers(cfg.AsyncWorkers),
		zephyr.WithMetrics(promReg),
	)

	sched, err := scheduler.New(dispatcher, sysLogger)
	if err != nil {
		return fmt.Errorf("creating scheduler: %w", err)
	}

	var sources []config.ScheduledSource
	if path := resolveConfigFile(cfg); path != "" {
		fileCfg, err := config.LoadFile(path)
		if err != nil {
			return fmt.Errorf("loading listener config: %w", err)
		}
		descs, err := fileCfg.Descriptors()
		if err != nil {
			return fmt.Errorf("expanding listener config: %w", err)
		}
		for _, d := range descs {
			id, err := dispatcher.Register(d)
			if err != nil {
				return fmt.Errorf("registering listener from %s: %w", path, err)
			}
			sysLogger.Info("listener registered",
				"id", id, "event_type", d.EventType, "kind", d.Kind)
		}
		sources = fileCfg.Sources
		sysLogger.Info("listener config loaded",
			"path", path, "listeners", len(descs), "sources", len(sources))
	}

	if err := sched.Start(ctx, sources); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}

	dispatchSvc := service.NewDispatchService(dispatcher, deliveryStore, sysLogger)

	if cfg.HistoryRetentionDays > 0 {
		go pruneHistory(ctx, deliveryStore, cfg.HistoryRetentionDays, sysLogger)
	}

	apiSrv := api.New(dispatchSvc, sysLogger)
	srv := server.New(apiSrv, promReg, cfg.Port, sysLogger)

	sysLogger.Info("server ready", "url", fmt.Sprintf("http://localhost:%d", cfg.Port))

	runErr := srv.Run(ctx)

	// Drain in dependency order: no new emissions, then in-flight deliveries,
	// then pending history writes, then queued tasks.
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := sched.Stop(); err != nil {
		sysLogger.Warn("scheduler shutdown", "error", err)
	}
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		sysLogger.Warn("dispatcher shutdown", "error", err)
	}
	if err := dispatchSvc.Drain(shutdownCtx); err != nil {
		sysLogger.Warn("history drain", "error", err)
	}
	pool.Close()

	sysLogger.Info("zephyr stopped")
	return runErr
}

// registerBuiltinTasks installs the task functions queued targets may name in
// the config file. Embedded users register their own on their pool.
func registerBuiltinTasks(pool *taskpool.Pool, sysLogger *slog.Logger) {
	pool.RegisterTask("log", func(_ context.Context, evt zephyr.Event) error {
		sysLogger.Info("queued event", "event_id", evt.ID, "event_type", evt.Type)
		return nil
	})
}

func resolveConfigFile(cfg *config.AppConfig) string {
	if cfg.ConfigFile != "" {
		return cfg.ConfigFile
	}
	return config.FindConfigFile(".", cfg.DataDir)
}

// pruneHistory deletes delivery history older than the retention window, once
// at startup and then every 12 hours.
func pruneHistory(ctx context.Context, store storage.DeliveryStore, retentionDays int, sysLogger *slog.Logger) {
	retention := time.Duration(retentionDays) * 24 * time.Hour

	prune := func() {
		n, err := store.Prune(ctx, time.Now().UTC().Add(-retention))
		if err != nil {
			sysLogger.Warn("history prune failed", "error", err)
			return
		}
		if n > 0 {
			sysLogger.Info("history pruned", "deleted", n, "retention_days", retentionDays)
		}
	}

	prune()
	ticker := time.NewTicker(12 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			prune()
		}
	}
}

// printBanner writes the startup banner to stdout. It is the only output
// visible in the terminal during normal operation; all structured logs go
// to the log file instead.
func printBanner(version, serverURL, logFile string) {
	fmt.Print(`
 _____          _
|__  /___ _ __ | |__  _   _ _ __
  / // _ \ '_ \| '_ \| | | | '__|
 / /|  __/ |_) | | | | |_| | |
/____\___| .__/|_| |_|\__, |_|
         |_|          |___/

`)
	fmt.Printf("Zephyr %s running.\n", version)
	fmt.Printf("API: %s/api\n", serverURL)
	fmt.Printf("Logs: %s\n\n", logFile)
}
