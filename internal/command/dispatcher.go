// Command dispatch with timestamp de-duplication
package command

import (
	"context"

	"mailbox-bridge/internal/logging"
	"mailbox-bridge/internal/mailbox"
)

// Handler executes one command with its raw parameter string.
type Handler func(ctx context.Context, params string) error

// Outcome reports what Dispatch did with a command.
type Outcome int

const (
	// Executed means a registered handler ran.
	Executed Outcome = iota
	// Duplicate means the timestamp matched the last processed command.
	Duplicate
	// Unrecognized means the name is not in the registry.
	Unrecognized
	// Failed means the handler returned an error.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Executed:
		return "executed"
	case Duplicate:
		return "duplicate"
	case Unrecognized:
		return "unrecognized"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Dispatcher routes commands from the buffer to registered handlers.
// The last-processed timestamp lives on the instance, so independent
// dispatchers (one per producer, or per test) do not interfere.
type Dispatcher struct {
	handlers map[string]Handler
	last     float64
	haveLast bool
}

// NewDispatcher returns an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string]Handler)}
}

// Register adds a handler for name, replacing any previous one.
func (d *Dispatcher) Register(name string, h Handler) {
	d.handlers[name] = h
}

// Recognized reports whether a handler is registered for name.
func (d *Dispatcher) Recognized(name string) bool {
	_, ok := d.handlers[name]
	return ok
}

// Dispatch processes one command read from the buffer. The agent rewrites
// the same file until a new command arrives, so a timestamp equal to the
// last processed one is a no-op. Unrecognized names are logged and
// dropped; the timestamp still advances so they are not re-logged every
// cycle.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd mailbox.Command) Outcome {
	log := logging.FromContext(ctx)
	if d.haveLast && cmd.Timestamp == d.last {
		return Duplicate
	}
	d.last = cmd.Timestamp
	d.haveLast = true

	h, ok := d.handlers[cmd.Name]
	if !ok {
		log.Warn("command not recognized", "command", cmd.Name)
		return Unrecognized
	}
	log.Info("dispatching command", "command", cmd.Name, "parameters", cmd.Parameters)
	if err := h(ctx, cmd.Parameters); err != nil {
		log.Error("command failed", "command", cmd.Name, "err", err)
		return Failed
	}
	return Executed
}
