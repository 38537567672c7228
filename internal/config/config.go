// YAML config loader with CUE validation integration
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default buffer locations shared with the plug-and-play agent.
const (
	DefaultDataBuffer    = "/home/weston/demo/data-buffer.json"
	DefaultCommandBuffer = "/home/weston/demo/command-buffer.json"
	DefaultPollInterval  = 5 * time.Second
)

// Attribute describes one generated telemetry attribute. The name must
// match the attribute's local name in the cloud device template; it is
// written to the data buffer untransformed.
type Attribute struct {
	Name    string   `yaml:"name"`
	Type    string   `yaml:"type"` // int, float, or choice
	Min     float64  `yaml:"min"`
	Max     float64  `yaml:"max"`
	Choices []string `yaml:"choices"`
}

// CommandSpec declares a recognized command name and an optional shell
// action to run when it is dispatched. Commands without an action are
// logged only.
type CommandSpec struct {
	Name string `yaml:"name"`
	Run  string `yaml:"run"`
}

// Config is the root configuration for the producer and the local bridge.
type Config struct {
	DataBuffer    string        `yaml:"data_buffer"`
	CommandBuffer string        `yaml:"command_buffer"`
	PollInterval  string        `yaml:"poll_interval"`
	Attributes    []Attribute   `yaml:"attributes"`
	Commands      []CommandSpec `yaml:"commands"`
}

// Interval parses the configured poll interval, falling back to the
// 5 second default when unset.
func (c *Config) Interval() (time.Duration, error) {
	if c.PollInterval == "" {
		return DefaultPollInterval, nil
	}
	d, err := time.ParseDuration(c.PollInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid poll_interval %q: %w", c.PollInterval, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("poll_interval must be positive, got %s", d)
	}
	return d, nil
}

// Load loads YAML config and validates it against a CUE schema.
func Load(configPath, cueSchemaPath string) (*Config, error) {
	if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.check(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DataBuffer == "" {
		c.DataBuffer = DefaultDataBuffer
	}
	if c.CommandBuffer == "" {
		c.CommandBuffer = DefaultCommandBuffer
	}
}

// check enforces constraints that the CUE schema cannot express across
// entries, like duplicate names.
func (c *Config) check() error {
	if _, err := c.Interval(); err != nil {
		return err
	}
	seen := make(map[string]bool)
	for _, a := range c.Attributes {
		if a.Name == "" {
			return fmt.Errorf("attribute with empty name")
		}
		if seen[a.Name] {
			return fmt.Errorf("duplicate attribute %q", a.Name)
		}
		seen[a.Name] = true
		switch a.Type {
		case "int", "float":
			if a.Max < a.Min {
				return fmt.Errorf("attribute %q: max %v below min %v", a.Name, a.Max, a.Min)
			}
		case "choice":
			if len(a.Choices) == 0 {
				return fmt.Errorf("attribute %q: choice type requires choices", a.Name)
			}
		default:
			return fmt.Errorf("attribute %q: unknown type %q", a.Name, a.Type)
		}
	}
	names := make(map[string]bool)
	for _, cs := range c.Commands {
		if cs.Name == "" {
			return fmt.Errorf("command with empty name")
		}
		if names[cs.Name] {
			return fmt.Errorf("duplicate command %q", cs.Name)
		}
		names[cs.Name] = true
	}
	return nil
}
