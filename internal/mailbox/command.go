// File-based JSON mailbox shared with the plug-and-play agent
package mailbox

import "strings"

// Command is the fixed three-key record the agent writes to the command
// buffer when the cloud side issues a command. Timestamp is Unix time as
// a float and doubles as the de-duplication key.
type Command struct {
	Name       string  `json:"command_name"`
	Parameters string  `json:"parameters"`
	Timestamp  float64 `json:"timestamp"`
}

// Args splits the space-separated parameter string. The agent joins
// arguments with a leading space, so empty fields are discarded.
func (c Command) Args() []string {
	return strings.Fields(c.Parameters)
}
