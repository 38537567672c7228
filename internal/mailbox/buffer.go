package mailbox

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"mailbox-bridge/internal/telemetry"
)

// writeAtomic marshals v and replaces path in one rename. Readers polling
// the file either see the previous document or the new one, never a
// partial write, so no advisory locking is needed.
func writeAtomic(path string, v any) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}

// DataBuffer is the telemetry side of the mailbox: a single flat JSON
// object, fully replaced on every producer cycle.
type DataBuffer struct {
	Path string
}

// NewDataBuffer returns a data buffer at path.
func NewDataBuffer(path string) *DataBuffer {
	return &DataBuffer{Path: path}
}

// Write replaces the buffer with snap. The previous contents are
// discarded entirely; last write wins.
func (b *DataBuffer) Write(snap telemetry.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	return writeAtomic(b.Path, snap)
}

// Read returns the current snapshot. Numbers decode as float64 per
// encoding/json; key set and values are otherwise exactly as written.
func (b *DataBuffer) Read() (telemetry.Snapshot, error) {
	data, err := os.ReadFile(b.Path)
	if err != nil {
		return nil, err
	}
	var snap telemetry.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("data buffer %s: %w", b.Path, err)
	}
	return snap, nil
}

// ModTime returns the buffer's last modification time, or the zero time
// if the file does not exist yet.
func (b *DataBuffer) ModTime() (time.Time, error) {
	fi, err := os.Stat(b.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	return fi.ModTime(), nil
}

// CommandBuffer is the command side of the mailbox: written by the agent
// when a cloud command arrives, read by the producer on its own cadence.
type CommandBuffer struct {
	Path string
}

// NewCommandBuffer returns a command buffer at path.
func NewCommandBuffer(path string) *CommandBuffer {
	return &CommandBuffer{Path: path}
}

// Write replaces the buffer with cmd using the same atomic rename as the
// data side.
func (b *CommandBuffer) Write(cmd Command) error {
	if cmd.Name == "" {
		return fmt.Errorf("command with empty command_name")
	}
	return writeAtomic(b.Path, cmd)
}

// Read returns the current command. ok is false when no command has been
// delivered yet (the file does not exist); a malformed file is an error.
func (b *CommandBuffer) Read() (cmd Command, ok bool, err error) {
	data, err := os.ReadFile(b.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Command{}, false, nil
		}
		return Command{}, false, err
	}
	if err := json.Unmarshal(data, &cmd); err != nil {
		return Command{}, false, fmt.Errorf("command buffer %s: %w", b.Path, err)
	}
	if cmd.Name == "" {
		return Command{}, false, fmt.Errorf("command buffer %s: missing command_name", b.Path)
	}
	return cmd, true, nil
}

// Remove deletes the buffer so stale commands are not re-executed at next
// startup. Absence is not an error.
func (b *CommandBuffer) Remove() error {
	if err := os.Remove(b.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
