package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mailbox-bridge/internal/config"
	"mailbox-bridge/internal/mailbox"
)

var (
	sendConfigPath string
	sendSchemaPath string
)

var sendCmd = &cobra.Command{
	Use:   "send NAME [PARAM...]",
	Short: "Write a single command to the command buffer",
	Long:  "send writes a three-key command record to the command buffer, as the agent would on a cloud command. Useful for testing a producer without the cloud side.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(sendConfigPath, sendSchemaPath)
		if err != nil {
			return err
		}
		overrideBufferPaths(cfg)

		buf := mailbox.NewCommandBuffer(cfg.CommandBuffer)
		c := mailbox.Command{
			Name:       args[0],
			Parameters: strings.Join(args[1:], " "),
			Timestamp:  float64(time.Now().UnixNano()) / float64(time.Second),
		}
		if err := buf.Write(c); err != nil {
			return err
		}
		fmt.Printf("wrote %s to %s\n", c.Name, cfg.CommandBuffer)
		return nil
	},
}

func init() {
	sendCmd.Flags().StringVar(&sendConfigPath, "config", "config/mailbox.yaml", "Path to configuration YAML")
	sendCmd.Flags().StringVar(&sendSchemaPath, "schema", "schemas/mailbox.cue", "Path to CUE schema file")
}
