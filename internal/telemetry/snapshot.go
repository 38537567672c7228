// Telemetry snapshot types for the data buffer convention
package telemetry

import (
	"fmt"
	"sort"
)

// Snapshot maps attribute local names to scalar values. Keys pass through
// to the data buffer untransformed; the cloud template is the only place
// attribute names are declared.
type Snapshot map[string]any

// Validate rejects values that are not plain scalars. The agent forwards
// the buffer contents as-is, so anything beyond string/integer/decimal
// would silently diverge from the device template.
func (s Snapshot) Validate() error {
	for k, v := range s {
		switch v.(type) {
		case string, int, int32, int64, float32, float64:
		default:
			return fmt.Errorf("attribute %q: non-scalar value %T", k, v)
		}
	}
	return nil
}

// Clone returns a shallow copy. Values are scalars, so a shallow copy is
// a full copy.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Keys returns the attribute names in sorted order.
func (s Snapshot) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
