package telemetry

import "testing"

func TestSnapshotValidate(t *testing.T) {
	good := Snapshot{"s": "x", "i": 7, "f": 1.5}
	if err := good.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	bad := []Snapshot{
		{"nested": map[string]any{}},
		{"list": []int{1}},
		{"flag": true},
	}
	for _, s := range bad {
		if err := s.Validate(); err == nil {
			t.Errorf("expected error for %v", s)
		}
	}
}

func TestSnapshotCloneIsIndependent(t *testing.T) {
	orig := Snapshot{"a": 1}
	c := orig.Clone()
	c["a"] = 2
	if orig["a"] != 1 {
		t.Errorf("clone mutated the original")
	}
}

func TestSnapshotKeysSorted(t *testing.T) {
	s := Snapshot{"b": 1, "a": 2, "c": 3}
	keys := s.Keys()
	if len(keys) != 3 || keys[0] != "a" || keys[2] != "c" {
		t.Errorf("Keys() = %v", keys)
	}
}
