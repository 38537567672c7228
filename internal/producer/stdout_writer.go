// Writer implementations printing snapshots to STDOUT
package producer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"mailbox-bridge/internal/command"
	"mailbox-bridge/internal/mailbox"
	"mailbox-bridge/internal/telemetry"
)

const (
	colorReset   = "\x1b[0m"
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorBlue    = "\x1b[34m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
	colorGray    = "\x1b[90m"
)

// StdoutWriter prints snapshots to STDOUT, either as raw JSON lines or
// colorized key=value rows.
type StdoutWriter struct {
	out      io.Writer
	colorize bool
	now      func() time.Time
}

// NewStdoutWriter creates a StdoutWriter printing JSON lines.
func NewStdoutWriter() *StdoutWriter {
	return &StdoutWriter{out: os.Stdout, now: time.Now}
}

// NewColorStdoutWriter creates a StdoutWriter printing colorized rows.
func NewColorStdoutWriter() *StdoutWriter {
	return &StdoutWriter{out: os.Stdout, colorize: true, now: time.Now}
}

// Write outputs a single snapshot.
func (w *StdoutWriter) Write(snap telemetry.Snapshot) error {
	if !w.colorize {
		data, _ := json.Marshal(snap)
		fmt.Fprintln(w.out, string(data))
		return nil
	}
	line := fmt.Sprintf("%s[%s]%s", colorGray, w.now().Format(time.RFC3339), colorReset)
	for _, k := range snap.Keys() {
		c := colorCyan
		if _, isStr := snap[k].(string); isStr {
			c = colorGreen
		}
		line += fmt.Sprintf(" %s%s=%v%s", c, k, snap[k], colorReset)
	}
	fmt.Fprintln(w.out, line)
	return nil
}

// WriteCommand prints a dispatched command.
func (w *StdoutWriter) WriteCommand(cmd mailbox.Command, outcome command.Outcome) error {
	if !w.colorize {
		data, _ := json.Marshal(map[string]any{
			"command_name": cmd.Name,
			"parameters":   cmd.Parameters,
			"timestamp":    cmd.Timestamp,
			"outcome":      outcome.String(),
		})
		fmt.Fprintln(w.out, string(data))
		return nil
	}
	oc := colorGreen
	switch outcome {
	case command.Unrecognized:
		oc = colorYellow
	case command.Failed:
		oc = colorRed
	}
	fmt.Fprintf(w.out, "%s[%s]%s %sCMD%s %s%s%s params=%q %s%s%s\n",
		colorGray, w.now().Format(time.RFC3339), colorReset,
		colorMagenta, colorReset,
		colorBlue, cmd.Name, colorReset,
		cmd.Parameters,
		oc, outcome, colorReset)
	return nil
}
