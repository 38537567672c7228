// Producer orchestrating telemetry cycles and command dispatch
package producer

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"mailbox-bridge/internal/command"
	"mailbox-bridge/internal/config"
	"mailbox-bridge/internal/logging"
	"mailbox-bridge/internal/mailbox"
	"mailbox-bridge/internal/telemetry"
)

// SnapshotWriter is an interface to support different output writers.
type SnapshotWriter interface {
	Write(telemetry.Snapshot) error
}

// CommandSink is optionally implemented by writers that also record
// dispatched commands.
type CommandSink interface {
	WriteCommand(mailbox.Command, command.Outcome) error
}

// Producer runs the cooperative cycle of the mailbox convention: generate
// data, replace the data buffer, poll the command buffer, dispatch.
type Producer struct {
	id           string
	gen          *telemetry.Generator
	writer       SnapshotWriter
	commands     *mailbox.CommandBuffer
	dispatcher   *command.Dispatcher
	tickInterval time.Duration

	mu       sync.Mutex
	lastSnap telemetry.Snapshot
	cycles   int
}

// New creates a producer. The writer usually fans out to the data buffer
// plus any extra sinks; the command buffer path comes from cfg.
func New(cfg *config.Config, gen *telemetry.Generator, writer SnapshotWriter, dispatcher *command.Dispatcher, tickInterval time.Duration) *Producer {
	return &Producer{
		id:           uuid.NewString(),
		gen:          gen,
		writer:       writer,
		commands:     mailbox.NewCommandBuffer(cfg.CommandBuffer),
		dispatcher:   dispatcher,
		tickInterval: tickInterval,
	}
}

// ID returns the producer instance id.
func (p *Producer) ID() string { return p.id }

// Snapshot returns a copy of the most recently generated snapshot.
func (p *Producer) Snapshot() telemetry.Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSnap.Clone()
}

// Cycles returns how many cycles have completed.
func (p *Producer) Cycles() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cycles
}

// Run starts the producer loop and stops when the context is done.
func (p *Producer) Run(ctx context.Context) {
	log := logging.FromContext(ctx)
	log.Info("starting producer", "producer_id", p.id, "tick_interval", p.tickInterval)
	ticker := time.NewTicker(p.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.cycle(ctx)
		case <-ctx.Done():
			log.Info("stopping producer", "producer_id", p.id)
			return
		}
	}
}

// cycle performs one pass: generate, write, poll, dispatch. Every failure
// is logged and dropped; the next tick retries unconditionally.
func (p *Producer) cycle(ctx context.Context) {
	log := logging.FromContext(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.cycles++

	snap := p.gen.Generate()
	p.lastSnap = snap

	if err := p.writer.Write(snap); err != nil {
		// This cycle's telemetry is lost; the buffer keeps its previous
		// contents until a later cycle succeeds.
		log.Error("snapshot write failed", "err", err)
	}

	cmd, ok, err := p.commands.Read()
	if err != nil {
		log.Error("command buffer unreadable", "err", err)
		return
	}
	if !ok {
		return
	}
	outcome := p.dispatcher.Dispatch(ctx, cmd)
	if outcome == command.Duplicate {
		return
	}
	if cs, isSink := p.writer.(CommandSink); isSink {
		if err := cs.WriteCommand(cmd, outcome); err != nil {
			log.Error("command record write failed", "err", err)
		}
	}
}
