package producer

import (
	"io"

	"mailbox-bridge/internal/command"
	"mailbox-bridge/internal/mailbox"
	"mailbox-bridge/internal/telemetry"
)

// MultiWriter fans snapshots out to multiple writers.
type MultiWriter struct {
	writers []SnapshotWriter
}

// NewMultiWriter creates a new MultiWriter.
func NewMultiWriter(writers ...SnapshotWriter) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write sends a snapshot to all writers. All writers are attempted even
// when one fails; the first error is returned.
func (mw *MultiWriter) Write(snap telemetry.Snapshot) error {
	var first error
	for _, w := range mw.writers {
		if err := w.Write(snap); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// WriteCommand forwards a command record to writers that support it.
func (mw *MultiWriter) WriteCommand(cmd mailbox.Command, outcome command.Outcome) error {
	var first error
	for _, w := range mw.writers {
		if cs, ok := w.(CommandSink); ok {
			if err := cs.WriteCommand(cmd, outcome); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}

// Close closes any writers that hold resources.
func (mw *MultiWriter) Close() error {
	var first error
	for _, w := range mw.writers {
		if c, ok := w.(io.Closer); ok {
			if err := c.Close(); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}
