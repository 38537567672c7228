// Local stand-in for the downloaded plug-and-play agent
package bridge

import (
	"context"
	"sync"
	"time"

	"mailbox-bridge/internal/logging"
	"mailbox-bridge/internal/mailbox"
	"mailbox-bridge/internal/telemetry"
)

// ForwardWriter receives snapshots read from the data buffer. The
// producer package's writers all satisfy it.
type ForwardWriter interface {
	Write(telemetry.Snapshot) error
}

// Agent polls the data buffer like the real agent does and forwards new
// snapshots to a sink instead of the cloud. Commands injected through
// SendCommand land in the command buffer exactly as cloud commands would.
type Agent struct {
	data     *mailbox.DataBuffer
	commands *mailbox.CommandBuffer
	forward  ForwardWriter
	interval time.Duration
	now      func() time.Time

	mu           sync.Mutex
	lastMod      time.Time
	lastSnap     telemetry.Snapshot
	lastCmd      *mailbox.Command
	forwarded    int
	commandsSent int
}

// Status is a point-in-time view of the agent for the admin endpoints.
type Status struct {
	Forwarded    int              `json:"forwarded"`
	CommandsSent int              `json:"commands_sent"`
	LastForward  time.Time        `json:"last_forward"`
	LastCommand  *mailbox.Command `json:"last_command,omitempty"`
}

// NewAgent creates an agent polling dataPath and writing commandPath.
func NewAgent(dataPath, commandPath string, forward ForwardWriter, interval time.Duration) *Agent {
	return &Agent{
		data:     mailbox.NewDataBuffer(dataPath),
		commands: mailbox.NewCommandBuffer(commandPath),
		forward:  forward,
		interval: interval,
		now:      time.Now,
	}
}

// Run starts the polling loop and stops when the context is done.
func (a *Agent) Run(ctx context.Context) {
	log := logging.FromContext(ctx)
	log.Info("starting bridge agent", "poll_interval", a.interval)
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.poll(ctx)
		case <-ctx.Done():
			log.Info("stopping bridge agent")
			return
		}
	}
}

// poll forwards the data buffer if it changed since the last poll. The
// producer replaces the file by rename, so the mtime check is reliable.
func (a *Agent) poll(ctx context.Context) {
	log := logging.FromContext(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()

	mod, err := a.data.ModTime()
	if err != nil {
		log.Error("data buffer stat failed", "err", err)
		return
	}
	if mod.IsZero() || !mod.After(a.lastMod) {
		return
	}
	snap, err := a.data.Read()
	if err != nil {
		log.Error("data buffer unreadable", "err", err)
		return
	}
	if err := a.forward.Write(snap); err != nil {
		// Do not advance lastMod; retry this snapshot next poll.
		log.Error("forward failed", "err", err)
		return
	}
	a.lastMod = mod
	a.lastSnap = snap
	a.forwarded++
}

// SendCommand writes a command to the buffer with the current Unix time,
// the same record the agent produces for a cloud command.
func (a *Agent) SendCommand(name, parameters string) (mailbox.Command, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	cmd := mailbox.Command{
		Name:       name,
		Parameters: parameters,
		Timestamp:  float64(a.now().UnixNano()) / float64(time.Second),
	}
	if err := a.commands.Write(cmd); err != nil {
		return mailbox.Command{}, err
	}
	a.lastCmd = &cmd
	a.commandsSent++
	return cmd, nil
}

// Snapshot returns a copy of the most recently forwarded snapshot.
func (a *Agent) Snapshot() telemetry.Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastSnap.Clone()
}

// Status returns forwarding counters and the last injected command.
func (a *Agent) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Status{
		Forwarded:    a.forwarded,
		CommandsSent: a.commandsSent,
		LastForward:  a.lastMod,
		LastCommand:  a.lastCmd,
	}
}

// Cleanup removes the command buffer so a stale command is not executed
// at the producer's next startup.
func (a *Agent) Cleanup() error {
	return a.commands.Remove()
}
