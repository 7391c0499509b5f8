package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/good-yellow-bee/alertcef/internal/shipper"
	"github.com/good-yellow-bee/alertcef/pkg/config"
	"github.com/spf13/cobra"
)

var (
	configFile string
	once       bool
)

var rootCmd = &cobra.Command{
	Use:   "alertcef-shipper",
	Short: "AlertCEF Shipper - CEF log forwarder",
	Long: `AlertCEF Shipper scans the collector's log directories for unsent
files, sends each CEF line to the SIEM as a UDP datagram and renames
fully transmitted files so they are never sent twice.`,
	RunE: runShipper,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("alertcef-shipper %s\n", config.Version)
		fmt.Printf("  commit: %s\n", config.Commit)
		fmt.Printf("  built:  %s\n", config.BuildTime)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "shipper.yaml", "config file path")
	rootCmd.Flags().BoolVar(&once, "once", false, "run a single ship pass and exit")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runShipper(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	s := shipper.New(shipper.Config{
		Dirs:     cfg.Directories,
		SIEMAddr: fmt.Sprintf("%s:%d", cfg.SIEM.Host, cfg.SIEM.Port),
		MinAge:   cfg.MinAge,
	})

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

	log.Printf("starting alertcef-shipper %s", config.Version)
	log.Printf("shipping to %s:%d from %d directories", cfg.SIEM.Host, cfg.SIEM.Port, len(cfg.Directories))

	if once {
		if err := s.Run(ctx); err != nil {
			return fmt.Errorf("ship pass: %w", err)
		}
		log.Printf("single pass complete")
		return nil
	}

	if cfg.Watch {
		if err := s.Watch(ctx, cfg.Interval); err != nil {
			return fmt.Errorf("run shipper: %w", err)
		}
	} else {
		if err := runLoop(ctx, s, cfg); err != nil {
			return fmt.Errorf("run shipper: %w", err)
		}
	}

	log.Printf("shipper stopped")
	return nil
}

// runLoop runs ship passes on a fixed interval until cancelled.
func runLoop(ctx context.Context, s *shipper.Shipper, cfg *Config) error {
	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		if err := s.Run(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Printf("ship pass: %v", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
