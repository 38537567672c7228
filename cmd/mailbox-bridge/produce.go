package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"mailbox-bridge/internal/command"
	"mailbox-bridge/internal/config"
	"mailbox-bridge/internal/logging"
	"mailbox-bridge/internal/mailbox"
	"mailbox-bridge/internal/producer"
	"mailbox-bridge/internal/telemetry"
)

var (
	prodConfigPath string
	prodSchemaPath string
	prodTick       time.Duration
	prodPrintOnly  bool
	prodLogFile    string
	prodTUI        bool
)

var produceCmd = &cobra.Command{
	Use:   "produce",
	Short: "Run the telemetry producer loop",
	Long:  "produce generates telemetry into the data buffer each cycle and dispatches commands the agent delivers through the command buffer.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(prodConfigPath, prodSchemaPath)
		if err != nil {
			return err
		}
		overrideBufferPaths(cfg)

		tickInterval := prodTick
		if tickInterval == 0 {
			if tickInterval, err = cfg.Interval(); err != nil {
				return err
			}
		}
		if envTick := os.Getenv("POLL_INTERVAL"); envTick != "" {
			d, err := time.ParseDuration(envTick)
			if err != nil {
				return err
			}
			tickInterval = d
		}

		extra, cleanup, err := newSnapshotWriter(prodPrintOnly, prodTUI, prodLogFile)
		if err != nil {
			return err
		}
		defer cleanup()

		// The data buffer is always written; extra sinks observe.
		writer := producer.NewMultiWriter(mailbox.NewDataBuffer(cfg.DataBuffer), extra)

		dispatcher := command.NewDispatcher()
		for _, cs := range cfg.Commands {
			if cs.Run != "" {
				dispatcher.Register(cs.Name, command.ShellHandler(cs.Run))
			} else {
				dispatcher.Register(cs.Name, command.LogHandler(cs.Name))
			}
		}

		gen := telemetry.NewGenerator(cfg.Attributes, time.Now().UnixNano())
		p := producer.New(cfg, gen, writer, dispatcher, tickInterval)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		ctx = logging.NewContext(ctx, logging.New())

		go p.Run(ctx)

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		<-sigs

		cancel()
		return nil
	},
}

// overrideBufferPaths applies env overrides so the producer can follow a
// relocated agent without editing the config file.
func overrideBufferPaths(cfg *config.Config) {
	if p := os.Getenv("DATA_BUFFER_PATH"); p != "" {
		cfg.DataBuffer = p
	}
	if p := os.Getenv("COMMAND_BUFFER_PATH"); p != "" {
		cfg.CommandBuffer = p
	}
}

func init() {
	produceCmd.Flags().StringVar(&prodConfigPath, "config", "config/mailbox.yaml", "Path to configuration YAML")
	produceCmd.Flags().StringVar(&prodSchemaPath, "schema", "schemas/mailbox.cue", "Path to CUE schema file")
	produceCmd.Flags().DurationVar(&prodTick, "tick", 0, "Cycle interval (defaults to poll_interval from config)")
	produceCmd.Flags().BoolVar(&prodPrintOnly, "print-only", false, "Print snapshots to STDOUT instead of mirroring to DB")
	produceCmd.Flags().StringVar(&prodLogFile, "log-file", "", "Path to export snapshot/command history (JSONL)")
	produceCmd.Flags().BoolVar(&prodTUI, "tui", false, "Render snapshots in a terminal UI")
}
