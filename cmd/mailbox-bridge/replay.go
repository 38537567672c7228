package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mailbox-bridge/internal/mailbox"
	"mailbox-bridge/internal/producer"
)

var (
	replayInput      string
	replaySpeed      float64
	replayPrintOnly  bool
	replayIntoBuffer string
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a snapshot history file",
	Long:  "replay feeds recorded snapshots back into a sink or into a data buffer file, pacing by the recorded timestamps.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if replayInput == "" {
			return fmt.Errorf("input file required")
		}
		if replayIntoBuffer != "" {
			return producer.ReplayLogFile(replayInput, mailbox.NewDataBuffer(replayIntoBuffer), replaySpeed)
		}
		writer, cleanup, err := newSnapshotWriter(replayPrintOnly, false, "")
		if err != nil {
			return err
		}
		defer cleanup()
		return producer.ReplayLogFile(replayInput, writer, replaySpeed)
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to snapshot history file (JSONL)")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Playback speed multiplier")
	replayCmd.Flags().BoolVar(&replayPrintOnly, "print-only", false, "Print snapshots to STDOUT instead of mirroring to DB")
	replayCmd.Flags().StringVar(&replayIntoBuffer, "into-buffer", "", "Replay into a data buffer file at this path")
	replayCmd.MarkFlagRequired("input")
}
