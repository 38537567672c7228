package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"mailbox-bridge/internal/bridge"
	"mailbox-bridge/internal/config"
	"mailbox-bridge/internal/logging"
)

var (
	brConfigPath string
	brSchemaPath string
	brListen     string
	brPrintOnly  bool
	brLogFile    string
)

var bridgeCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Run a local stand-in bridge agent",
	Long:  "bridge polls the data buffer and forwards snapshots to a local sink, and accepts commands over HTTP that it writes to the command buffer. It substitutes for the downloaded agent during development.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(brConfigPath, brSchemaPath)
		if err != nil {
			return err
		}
		overrideBufferPaths(cfg)

		interval, err := cfg.Interval()
		if err != nil {
			return err
		}
		if envTick := os.Getenv("POLL_INTERVAL"); envTick != "" {
			d, err := time.ParseDuration(envTick)
			if err != nil {
				return err
			}
			interval = d
		}

		forward, cleanup, err := newSnapshotWriter(brPrintOnly, false, brLogFile)
		if err != nil {
			return err
		}
		defer cleanup()

		agent := bridge.NewAgent(cfg.DataBuffer, cfg.CommandBuffer, forward, interval)
		defer agent.Cleanup()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		log := logging.New()
		ctx = logging.NewContext(ctx, log)

		srv := bridge.NewServer(agent)
		go func() {
			log.Info("admin listening", "addr", brListen)
			if err := srv.Start(ctx, brListen); err != nil && err != http.ErrServerClosed {
				log.Error("admin server failed", "err", err)
			}
		}()

		go agent.Run(ctx)

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		<-sigs

		cancel()
		return nil
	},
}

func init() {
	bridgeCmd.Flags().StringVar(&brConfigPath, "config", "config/mailbox.yaml", "Path to configuration YAML")
	bridgeCmd.Flags().StringVar(&brSchemaPath, "schema", "schemas/mailbox.cue", "Path to CUE schema file")
	bridgeCmd.Flags().StringVar(&brListen, "listen", ":8080", "Admin HTTP listen address")
	bridgeCmd.Flags().BoolVar(&brPrintOnly, "print-only", false, "Print forwarded snapshots to STDOUT instead of mirroring to DB")
	bridgeCmd.Flags().StringVar(&brLogFile, "log-file", "", "Path to export forwarded snapshot history (JSONL)")
}
