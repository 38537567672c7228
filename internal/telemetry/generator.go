package telemetry

import (
	"math"
	"math/rand"

	"mailbox-bridge/internal/config"
)

// Generator produces demo telemetry snapshots from configured attribute
// specs, in the spirit of the random-number/random-color sample app.
type Generator struct {
	attrs []config.Attribute
	rand  *rand.Rand
}

// DefaultAttributes is used when the config declares no attributes.
var DefaultAttributes = []config.Attribute{
	{Name: "random_number", Type: "int", Min: 0, Max: 100},
	{Name: "random_color", Type: "choice", Choices: []string{"red", "green", "blue", "yellow", "purple"}},
}

// NewGenerator creates a generator for the given attribute specs.
func NewGenerator(attrs []config.Attribute, seed int64) *Generator {
	if len(attrs) == 0 {
		attrs = DefaultAttributes
	}
	return &Generator{attrs: attrs, rand: rand.New(rand.NewSource(seed))}
}

// Generate returns a fresh snapshot with one value per attribute.
func (g *Generator) Generate() Snapshot {
	snap := make(Snapshot, len(g.attrs))
	for _, a := range g.attrs {
		switch a.Type {
		case "int":
			span := int(a.Max) - int(a.Min)
			if span <= 0 {
				snap[a.Name] = int(a.Min)
				continue
			}
			snap[a.Name] = int(a.Min) + g.rand.Intn(span+1)
		case "float":
			v := a.Min + g.rand.Float64()*(a.Max-a.Min)
			// Two decimals keeps the buffer readable when inspected by hand.
			snap[a.Name] = math.Round(v*100) / 100
		case "choice":
			snap[a.Name] = a.Choices[g.rand.Intn(len(a.Choices))]
		}
	}
	return snap
}
