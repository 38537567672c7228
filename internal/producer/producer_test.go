package producer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mailbox-bridge/internal/command"
	"mailbox-bridge/internal/config"
	"mailbox-bridge/internal/mailbox"
	"mailbox-bridge/internal/telemetry"
)

// MockWriter collects snapshots and command records for validation.
type MockWriter struct {
	Snaps    []telemetry.Snapshot
	Commands []mailbox.Command
	Err      error
}

func (w *MockWriter) Write(snap telemetry.Snapshot) error {
	if w.Err != nil {
		return w.Err
	}
	w.Snaps = append(w.Snaps, snap)
	return nil
}

func (w *MockWriter) WriteCommand(cmd mailbox.Command, _ command.Outcome) error {
	w.Commands = append(w.Commands, cmd)
	return nil
}

func newTestProducer(t *testing.T, writer SnapshotWriter) (*Producer, *mailbox.CommandBuffer, *int) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		DataBuffer:    filepath.Join(dir, "data-buffer.json"),
		CommandBuffer: filepath.Join(dir, "command-buffer.json"),
	}
	calls := 0
	d := command.NewDispatcher()
	d.Register("Command_A", func(ctx context.Context, params string) error {
		calls++
		return nil
	})
	gen := telemetry.NewGenerator(nil, 1)
	p := New(cfg, gen, writer, d, time.Second)
	return p, mailbox.NewCommandBuffer(cfg.CommandBuffer), &calls
}

func TestProducer_CycleWritesSnapshot(t *testing.T) {
	w := &MockWriter{}
	p, _, _ := newTestProducer(t, w)

	p.cycle(context.Background())

	if len(w.Snaps) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(w.Snaps))
	}
	if len(w.Snaps[0]) == 0 {
		t.Errorf("empty snapshot written")
	}
	if p.Cycles() != 1 {
		t.Errorf("Cycles() = %d, want 1", p.Cycles())
	}
}

func TestProducer_DispatchesCommandOnce(t *testing.T) {
	w := &MockWriter{}
	p, cmds, calls := newTestProducer(t, w)

	cmd := mailbox.Command{Name: "Command_A", Parameters: "", Timestamp: 1700000000.0}
	if err := cmds.Write(cmd); err != nil {
		t.Fatalf("write command: %v", err)
	}

	// The agent leaves the same record in place; two cycles must
	// execute the handler only once.
	p.cycle(context.Background())
	p.cycle(context.Background())

	if *calls != 1 {
		t.Errorf("handler ran %d times, want 1", *calls)
	}
	if len(w.Commands) != 1 {
		t.Errorf("command recorded %d times, want 1", len(w.Commands))
	}
}

func TestProducer_WriteFailureDoesNotAbortCycle(t *testing.T) {
	// Data buffer in a directory that does not exist: the write fails
	// every cycle, but generation and command polling continue.
	dir := t.TempDir()
	cfg := &config.Config{
		DataBuffer:    filepath.Join(dir, "missing", "data-buffer.json"),
		CommandBuffer: filepath.Join(dir, "command-buffer.json"),
	}
	calls := 0
	d := command.NewDispatcher()
	d.Register("Command_A", func(ctx context.Context, params string) error {
		calls++
		return nil
	})
	mock := &MockWriter{}
	writer := NewMultiWriter(mailbox.NewDataBuffer(cfg.DataBuffer), mock)
	p := New(cfg, telemetry.NewGenerator(nil, 1), writer, d, time.Second)

	if err := mailbox.NewCommandBuffer(cfg.CommandBuffer).Write(mailbox.Command{Name: "Command_A", Timestamp: 1}); err != nil {
		t.Fatalf("write command: %v", err)
	}

	p.cycle(context.Background())
	p.cycle(context.Background())

	if p.Cycles() != 2 {
		t.Errorf("Cycles() = %d, want 2", p.Cycles())
	}
	// The healthy sink still received both snapshots.
	if len(mock.Snaps) != 2 {
		t.Errorf("mock received %d snapshots, want 2", len(mock.Snaps))
	}
	if calls != 1 {
		t.Errorf("handler ran %d times, want 1", calls)
	}
}

func TestProducer_MalformedCommandBufferIsSkipped(t *testing.T) {
	w := &MockWriter{}
	p, cmds, calls := newTestProducer(t, w)

	if err := writeRaw(cmds.Path, "{broken"); err != nil {
		t.Fatalf("writeRaw: %v", err)
	}
	p.cycle(context.Background())

	if *calls != 0 {
		t.Errorf("handler ran on malformed buffer")
	}
	if len(w.Snaps) != 1 {
		t.Errorf("snapshot write skipped, got %d", len(w.Snaps))
	}
}

func writeRaw(path, contents string) error {
	return os.WriteFile(path, []byte(contents), 0644)
}

func TestProducer_RunStopsOnCancel(t *testing.T) {
	w := &MockWriter{}
	p, _, _ := newTestProducer(t, w)
	p.tickInterval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not stop after cancel")
	}
	if p.Cycles() == 0 {
		t.Errorf("no cycles ran")
	}
}
