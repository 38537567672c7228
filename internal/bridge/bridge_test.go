package bridge

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mailbox-bridge/internal/mailbox"
	"mailbox-bridge/internal/telemetry"
)

// MockForward collects forwarded snapshots.
type MockForward struct {
	Snaps []telemetry.Snapshot
	Err   error
}

func (m *MockForward) Write(snap telemetry.Snapshot) error {
	if m.Err != nil {
		return m.Err
	}
	m.Snaps = append(m.Snaps, snap)
	return nil
}

func newTestAgent(t *testing.T) (*Agent, *mailbox.DataBuffer, *MockForward) {
	t.Helper()
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "data-buffer.json")
	cmdPath := filepath.Join(dir, "command-buffer.json")
	fw := &MockForward{}
	a := NewAgent(dataPath, cmdPath, fw, time.Second)
	return a, mailbox.NewDataBuffer(dataPath), fw
}

func TestAgentForwardsNewSnapshot(t *testing.T) {
	a, data, fw := newTestAgent(t)

	if err := data.Write(telemetry.Snapshot{"random_number": 42}); err != nil {
		t.Fatalf("seed data buffer: %v", err)
	}
	a.poll(context.Background())

	if len(fw.Snaps) != 1 {
		t.Fatalf("expected 1 forward, got %d", len(fw.Snaps))
	}
	if fw.Snaps[0]["random_number"] != float64(42) {
		t.Errorf("unexpected snapshot: %v", fw.Snaps[0])
	}
}

func TestAgentSkipsUnchangedBuffer(t *testing.T) {
	a, data, fw := newTestAgent(t)

	if err := data.Write(telemetry.Snapshot{"n": 1}); err != nil {
		t.Fatalf("seed data buffer: %v", err)
	}
	a.poll(context.Background())
	a.poll(context.Background())

	if len(fw.Snaps) != 1 {
		t.Errorf("unchanged buffer forwarded again: %d", len(fw.Snaps))
	}
	if st := a.Status(); st.Forwarded != 1 {
		t.Errorf("Forwarded = %d, want 1", st.Forwarded)
	}
}

func TestAgentForwardsAfterChange(t *testing.T) {
	a, data, fw := newTestAgent(t)

	if err := data.Write(telemetry.Snapshot{"n": 1}); err != nil {
		t.Fatalf("first write: %v", err)
	}
	a.poll(context.Background())

	if err := data.Write(telemetry.Snapshot{"n": 2}); err != nil {
		t.Fatalf("second write: %v", err)
	}
	bumpMtime(t, data.Path)
	a.poll(context.Background())

	if len(fw.Snaps) != 2 {
		t.Fatalf("expected 2 forwards, got %d", len(fw.Snaps))
	}
	if fw.Snaps[1]["n"] != float64(2) {
		t.Errorf("stale snapshot forwarded: %v", fw.Snaps[1])
	}
}

func TestAgentMissingBufferIsQuiet(t *testing.T) {
	a, _, fw := newTestAgent(t)
	a.poll(context.Background())
	if len(fw.Snaps) != 0 {
		t.Errorf("forwarded from missing buffer")
	}
}

func TestAgentRetriesAfterForwardFailure(t *testing.T) {
	a, data, fw := newTestAgent(t)

	if err := data.Write(telemetry.Snapshot{"n": 1}); err != nil {
		t.Fatalf("write: %v", err)
	}
	fw.Err = context.DeadlineExceeded
	a.poll(context.Background())
	if len(fw.Snaps) != 0 {
		t.Fatalf("forward should have failed")
	}

	// Same mtime, but the last successful forward never happened, so
	// the next poll retries.
	fw.Err = nil
	a.poll(context.Background())
	if len(fw.Snaps) != 1 {
		t.Errorf("failed snapshot not retried: %d", len(fw.Snaps))
	}
}

func TestAgentSendCommand(t *testing.T) {
	a, _, _ := newTestAgent(t)
	fixed := time.Unix(1700000000, 0).UTC()
	a.now = func() time.Time { return fixed }

	cmd, err := a.SendCommand("Command_A", "x y")
	if err != nil {
		t.Fatalf("SendCommand: %v", err)
	}
	if cmd.Timestamp != 1700000000.0 {
		t.Errorf("timestamp = %v, want 1700000000", cmd.Timestamp)
	}

	got, ok, err := mailbox.NewCommandBuffer(a.commands.Path).Read()
	if err != nil || !ok {
		t.Fatalf("read back: ok=%v err=%v", ok, err)
	}
	if got != cmd {
		t.Errorf("buffer mismatch: %+v != %+v", got, cmd)
	}
	if st := a.Status(); st.CommandsSent != 1 || st.LastCommand == nil {
		t.Errorf("status not updated: %+v", st)
	}
}

func TestAgentCleanup(t *testing.T) {
	a, _, _ := newTestAgent(t)
	if _, err := a.SendCommand("Command_A", ""); err != nil {
		t.Fatalf("SendCommand: %v", err)
	}
	if err := a.Cleanup(); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	_, ok, err := mailbox.NewCommandBuffer(a.commands.Path).Read()
	if err != nil {
		t.Fatalf("read after cleanup: %v", err)
	}
	if ok {
		t.Errorf("command buffer survived cleanup")
	}
}

// bumpMtime pushes the file's mtime forward so back-to-back writes in a
// test register as distinct polls.
func bumpMtime(t *testing.T, path string) {
	t.Helper()
	future := time.Now().Add(time.Minute)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
}
