package producer

import (
	"errors"
	"testing"

	"mailbox-bridge/internal/command"
	"mailbox-bridge/internal/mailbox"
	"mailbox-bridge/internal/telemetry"
)

func TestMultiWriterFanOut(t *testing.T) {
	a := &MockWriter{}
	b := &MockWriter{}
	mw := NewMultiWriter(a, b)

	if err := mw.Write(telemetry.Snapshot{"x": 1}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(a.Snaps) != 1 || len(b.Snaps) != 1 {
		t.Errorf("fan-out incomplete: %d/%d", len(a.Snaps), len(b.Snaps))
	}
}

func TestMultiWriterContinuesPastFailure(t *testing.T) {
	failing := &MockWriter{Err: errors.New("disk full")}
	healthy := &MockWriter{}
	mw := NewMultiWriter(failing, healthy)

	err := mw.Write(telemetry.Snapshot{"x": 1})
	if err == nil {
		t.Fatalf("expected error from failing writer")
	}
	if len(healthy.Snaps) != 1 {
		t.Errorf("healthy writer skipped after failure")
	}
}

type snapshotOnlyWriter struct{ n int }

func (w *snapshotOnlyWriter) Write(telemetry.Snapshot) error { w.n++; return nil }

func TestMultiWriterForwardsCommands(t *testing.T) {
	sink := &MockWriter{}
	plain := &snapshotOnlyWriter{}
	mw := NewMultiWriter(plain, sink)

	cmd := mailbox.Command{Name: "Command_A", Timestamp: 1}
	if err := mw.WriteCommand(cmd, command.Executed); err != nil {
		t.Fatalf("WriteCommand: %v", err)
	}
	if len(sink.Commands) != 1 {
		t.Errorf("command not forwarded to sink")
	}
}
