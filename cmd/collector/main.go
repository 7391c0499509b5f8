package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/good-yellow-bee/alertcef/internal/cef"
	"github.com/good-yellow-bee/alertcef/internal/collector"
	"github.com/good-yellow-bee/alertcef/internal/logfile"
	"github.com/good-yellow-bee/alertcef/internal/metrics"
	"github.com/good-yellow-bee/alertcef/internal/source"
	"github.com/good-yellow-bee/alertcef/internal/storage"
	"github.com/good-yellow-bee/alertcef/pkg/config"
	"github.com/spf13/cobra"
)

var (
	configFile string
	once       bool
)

var rootCmd = &cobra.Command{
	Use:   "alertcef-collector",
	Short: "AlertCEF Collector - Security alert collection service",
	Long: `AlertCEF Collector polls the detection API for every onboarded
tenant, filters alerts against the managed-device inventory, assigns
correlation ids and writes CEF lines to per-tenant log files.`,
	RunE: runCollector,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("alertcef-collector %s\n", config.Version)
		fmt.Printf("  commit: %s\n", config.Commit)
		fmt.Printf("  built:  %s\n", config.BuildTime)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "collector.yaml", "config file path")
	rootCmd.Flags().BoolVar(&once, "once", false, "run a single polling cycle and exit")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCollector(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Get master key from environment
	masterKey := os.Getenv("ALERTCEF_MASTER_KEY")
	if masterKey == "" {
		return fmt.Errorf("ALERTCEF_MASTER_KEY environment variable is required")
	}

	// Auto-create data directory
	dbDir := filepath.Dir(cfg.Database.Path)
	if err := os.MkdirAll(dbDir, 0750); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	// Initialize storage
	store := storage.NewSQLiteStorage(cfg.Database.Path, []byte(masterKey))
	if err := store.Open(); err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	if err := store.Migrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	if err := store.EnsureSettings(); err != nil {
		return fmt.Errorf("ensure settings: %w", err)
	}

	log.Printf("database initialized at %s", cfg.Database.Path)

	// Optional ClickHouse archive
	var archiveRepo storage.ArchiveRepository
	if cfg.Archive.Enabled {
		archive := storage.NewClickHouseArchive(&storage.ClickHouseConfig{
			Addresses:     cfg.Archive.Addresses,
			Database:      cfg.Archive.Database,
			Username:      cfg.Archive.Username,
			Password:      cfg.Archive.Password,
			Compression:   cfg.Archive.Compression,
			RetentionDays: cfg.Archive.RetentionDays,
		})
		if err := archive.Open(); err != nil {
			return fmt.Errorf("open archive: %w", err)
		}
		defer archive.Close()
		if err := archive.Migrate(); err != nil {
			return fmt.Errorf("migrate archive: %w", err)
		}
		archiveRepo = archive.Archive()
		log.Printf("archive enabled at %v", cfg.Archive.Addresses)
	}

	// Build the pipeline
	client := source.NewClient(source.Config{
		Timeout:   cfg.Source.Timeout,
		RateLimit: cfg.Source.RateLimit,
		RateBurst: cfg.Source.RateBurst,
	})
	encoder := cef.NewEncoder(cfg.CEF.Vendor, cfg.CEF.Product, cfg.CEF.Version)
	writer := logfile.NewWriter(cfg.Logs.PrimaryDir, cfg.Logs.FallbackDir)

	pipeline := collector.NewPipeline(store, client, encoder, writer, archiveRepo)
	scheduler := collector.NewScheduler(store, pipeline, cfg.Scheduler.TenantConcurrency)

	// Setup signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Printf("received signal %v, shutting down...", sig)
		cancel()
	}()

	// Ops server with health and status endpoints
	ops := metrics.NewServer(cfg.Ops.Address,
		func(ctx context.Context) error {
			return store.Ping(ctx)
		},
		func(ctx context.Context) (map[string]any, error) {
			settings, err := store.Settings().Get(ctx)
			if err != nil {
				return nil, err
			}
			count, err := store.Events().Count(ctx)
			if err != nil {
				return nil, err
			}
			return map[string]any{
				"version":               config.Version,
				"poll_interval_minutes": settings.PollIntervalMinutes,
				"alerts_persisted":      count,
			}, nil
		},
	)
	go func() {
		if err := ops.Start(); err != nil {
			log.Printf("%v", err)
		}
	}()
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		ops.Shutdown(shutdownCtx)
	}()

	log.Printf("starting alertcef-collector %s", config.Version)

	if once {
		scheduler.RunCycle(ctx)
		log.Printf("single cycle complete")
		return nil
	}

	if err := scheduler.Run(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run collector: %w", err)
	}

	log.Printf("collector stopped")
	return nil
}
