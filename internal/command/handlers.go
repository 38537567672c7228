package command

import (
	"context"
	"os/exec"
	"strings"

	"mailbox-bridge/internal/logging"
)

// LogHandler returns a handler that only records the invocation. Used for
// recognized commands with no configured action.
func LogHandler(name string) Handler {
	return func(ctx context.Context, params string) error {
		logging.FromContext(ctx).Info("command handled", "command", name, "parameters", params)
		return nil
	}
}

// ShellHandler returns a handler that runs script through sh. The
// command parameters are available as positional arguments ($1, $2, ...
// and "$@") inside the script.
func ShellHandler(script string) Handler {
	return func(ctx context.Context, params string) error {
		args := append([]string{"-c", script, "sh"}, strings.Fields(params)...)
		cmd := exec.CommandContext(ctx, "sh", args...)
		out, err := cmd.CombinedOutput()
		log := logging.FromContext(ctx)
		if len(out) > 0 {
			log.Info("command output", "output", strings.TrimSpace(string(out)))
		}
		return err
	}
}
