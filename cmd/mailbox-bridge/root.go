package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mailbox-bridge",
	Short: "File-mailbox telemetry bridge toolkit",
	Long:  "mailbox-bridge runs a telemetry producer and a local bridge agent that exchange JSON buffer files with a cloud plug-and-play agent.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(produceCmd)
	rootCmd.AddCommand(bridgeCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(replayCmd)
}
