package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/tmsentinel/market-sentinel/internal/api"
	"github.com/tmsentinel/market-sentinel/internal/config"
	"github.com/tmsentinel/market-sentinel/internal/kafka"
	"github.com/tmsentinel/market-sentinel/internal/ledger"
	"github.com/tmsentinel/market-sentinel/internal/marketdata"
	"github.com/tmsentinel/market-sentinel/internal/metrics"
	"github.com/tmsentinel/market-sentinel/internal/monitor"
	"github.com/tmsentinel/market-sentinel/internal/notify"
	"github.com/tmsentinel/market-sentinel/internal/sentiment"
	"github.com/tmsentinel/market-sentinel/internal/tracker"
)

// daemonEnv marks the re-executed child so it does not detach again.
const daemonEnv = "SENTINEL_DAEMONIZED"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		statusFlag      bool
		testFlag        bool
		performanceFlag bool
		daemonFlag      bool
	)

	cmd := &cobra.Command{
		Use:   "sentinel",
		Short: "Market signal monitor and position lifecycle tracker",
		Long: `Market Sentinel scores technical, sentiment, and macro indicators for a
configured ticker universe, alerts on new strong signals, and tracks every
alerted signal as a position until take-profit, stop-loss, or timeout.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			switch {
			case statusFlag:
				return printStatus(cfg)
			case performanceFlag:
				return printPerformance(cfg)
			case testFlag:
				return runOnce(cmd.Context(), cfg)
			case daemonFlag && os.Getenv(daemonEnv) == "":
				return daemonize()
			default:
				return runMonitor(cfg)
			}
		},
	}

	cmd.Flags().BoolVar(&statusFlag, "status", false, "print monitor liveness and statistics")
	cmd.Flags().BoolVar(&testFlag, "test", false, "run exactly one analysis cycle and exit")
	cmd.Flags().BoolVar(&performanceFlag, "performance", false, "print 7-day and 30-day performance metrics")
	cmd.Flags().BoolVar(&daemonFlag, "daemon", false, "detach from the terminal before entering the loop")

	return cmd
}

// runMonitor is the default mode: guard against a duplicate instance, wire
// every collaborator, and enter the polling loop until interrupted.
func runMonitor(cfg *config.Config) error {
	pid, err := monitor.ReadPIDFile(cfg.Storage.PIDFile)
	if err != nil {
		return err
	}
	if monitor.ProcessAlive(pid) {
		return fmt.Errorf("monitor already running (pid %d)", pid)
	}
	if err := monitor.WritePIDFile(cfg.Storage.PIDFile); err != nil {
		return err
	}
	defer func() {
		if err := monitor.RemovePIDFile(cfg.Storage.PIDFile); err != nil {
			log.Printf("Warning: %v", err)
		}
	}()

	deps, err := buildDeps(cfg)
	if err != nil {
		return err
	}
	defer deps.close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var srv *http.Server
	if cfg.Server.Enabled {
		srv = startHTTPServer(cfg, deps)
	}

	err = deps.monitor.Run(ctx)

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Printf("Warning: HTTP server shutdown: %v", shutdownErr)
		}
	}
	if trackerErr := deps.tracker.Shutdown(); trackerErr != nil {
		log.Printf("Warning: %v", trackerErr)
	}
	return err
}

// runOnce executes a single cycle regardless of the active-hours window.
func runOnce(ctx context.Context, cfg *config.Config) error {
	deps, err := buildDeps(cfg)
	if err != nil {
		return err
	}
	defer deps.close()

	alerted, err := deps.monitor.RunCycle(ctx)
	if err != nil {
		return err
	}
	if alerted {
		fmt.Println("Cycle complete: new alerts sent")
	} else {
		fmt.Println("Cycle complete: no new alerts")
	}
	return deps.tracker.Shutdown()
}

func printStatus(cfg *config.Config) error {
	pid, err := monitor.ReadPIDFile(cfg.Storage.PIDFile)
	if err != nil {
		return err
	}
	if monitor.ProcessAlive(pid) {
		fmt.Printf("Monitor: RUNNING (pid %d)\n", pid)
	} else {
		fmt.Println("Monitor: STOPPED")
	}

	state := monitor.LoadState(cfg.Storage.StateFile)
	if state.Stats.StartedAt != nil {
		fmt.Printf("Started:     %s\n", state.Stats.StartedAt.Format(time.RFC3339))
	}
	fmt.Printf("Checks:      %d\n", state.Stats.ChecksCount)
	fmt.Printf("Alerts sent: %d\n", state.Stats.AlertsSent)
	if state.Stats.LastCheck != nil {
		fmt.Printf("Last check:  %s\n", state.Stats.LastCheck.Format(time.RFC3339))
	}

	if len(state.LastSignals) > 0 {
		fmt.Println("Tracked signals:")
		for ticker, action := range state.LastSignals {
			fmt.Printf("  %-10s %s\n", ticker, action)
		}
	}
	return nil
}

func printPerformance(cfg *config.Config) error {
	store, err := buildStore(cfg)
	if err != nil {
		return err
	}
	tr := tracker.New(store, cfg.Trading.HoldingTimeoutMinutes)
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("Warning: %v", err)
		}
	}()

	for _, days := range []int{7, 30} {
		m := tr.Metrics(days, "")
		fmt.Printf("=== Last %d days ===\n", days)
		fmt.Printf("Signals:     %d (%d open)\n", m.TotalSignals, m.OpenCount)
		fmt.Printf("Win rate:    %.1f%% (%dW / %dL / %dN)\n",
			m.WinRate*100, m.WinCount, m.LossCount, m.NeutralCount)
		fmt.Printf("Avg return:  %+.2f%%\n", m.AvgReturnPercent)
		fmt.Printf("Avg holding: %dm\n", m.AvgHoldingTimeMinutes)
		if m.BestTrade != nil {
			fmt.Printf("Best trade:  %s %s %+.2f%%\n", m.BestTrade.Ticker, m.BestTrade.Action, m.BestTrade.PnlPercent)
		}
		if m.WorstTrade != nil {
			fmt.Printf("Worst trade: %s %s %+.2f%%\n", m.WorstTrade.Ticker, m.WorstTrade.Action, m.WorstTrade.PnlPercent)
		}
		fmt.Println()
	}
	return nil
}

// daemonize re-executes the current binary detached from the terminal.
func daemonize() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to locate executable: %w", err)
	}

	cmd := exec.Command(exe)
	cmd.Env = append(os.Environ(), daemonEnv+"=1")
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}
	fmt.Printf("Monitor started in background (pid %d)\n", cmd.Process.Pid)
	return nil
}

// deps bundles the wired collaborators and their cleanup.
type deps struct {
	tracker  *tracker.Tracker
	monitor  *monitor.Monitor
	registry *prometheus.Registry
	closers  []func() error
}

func (d *deps) close() {
	for _, fn := range d.closers {
		if err := fn(); err != nil {
			log.Printf("Warning: %v", err)
		}
	}
}

func buildDeps(cfg *config.Config) (*deps, error) {
	d := &deps{registry: prometheus.NewRegistry()}

	store, err := buildStore(cfg)
	if err != nil {
		return nil, err
	}
	d.closers = append(d.closers, store.Close)
	d.tracker = tracker.New(store, cfg.Trading.HoldingTimeoutMinutes)

	var cache *marketdata.Cache
	if cfg.Redis.Enabled {
		cache, err = marketdata.NewCache(cfg.Redis)
		if err != nil {
			log.Printf("Warning: %v (continuing without cache)", err)
		} else {
			d.closers = append(d.closers, cache.Close)
			log.Println("Connected to Redis cache")
		}
	}
	market := marketdata.NewYahooProvider(cache)

	var sentimentProvider sentiment.Provider = sentiment.Neutral()
	if cfg.News.APIKey != "" {
		sentimentProvider = sentiment.NewNews(sentiment.NewNewsClient(cfg.News))
		log.Println("News sentiment enabled")
	}

	var notifier monitor.Notifier
	if cfg.Notify.WebhookURL != "" {
		notifier = notify.NewDiscord(cfg.Notify)
	}

	var events monitor.EventPublisher
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		d.closers = append(d.closers, producer.Close)
		events = producer
		log.Printf("Kafka producer initialized (brokers: %v)", cfg.Kafka.Brokers)
	}

	d.monitor = monitor.New(cfg, market, sentimentProvider, d.tracker, notifier, events, metrics.New(d.registry))
	return d, nil
}

// buildStore selects the ledger backend. The Postgres backend runs pending
// migrations before use.
func buildStore(cfg *config.Config) (ledger.Store, error) {
	if cfg.Storage.LedgerBackend == "postgres" {
		connString := cfg.Database.ConnectionString()
		if err := runMigrations(cfg.Storage.MigrationsDir, connString); err != nil {
			return nil, err
		}
		store, err := ledger.NewPostgresStore(connString)
		if err != nil {
			return nil, err
		}
		log.Println("Using PostgreSQL position ledger")
		return store, nil
	}

	store, err := ledger.NewFileStore(cfg.Storage.LedgerFile)
	if err != nil {
		return nil, err
	}
	log.Printf("Using file position ledger at %s", cfg.Storage.LedgerFile)
	return store, nil
}

func runMigrations(migrationsDir, databaseURL string) error {
	m, err := migrate.New("file://"+migrationsDir, databaseURL)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

func startHTTPServer(cfg *config.Config, d *deps) *http.Server {
	handler := api.NewHandler(d.tracker, d.monitor)
	router := api.SetupRoutes(handler, d.registry)

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting HTTP server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
		}
	}()
	return srv
}
