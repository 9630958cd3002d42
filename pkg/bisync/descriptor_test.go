package bisync

import "testing"

func TestNameUnion(t *testing.T) {
	a := SideMap{"x": {}, "shared": {}}
	b := SideMap{"y": {}, "shared": {}}

	union := nameUnion(a, b)
	expected := map[string]bool{"x": true, "y": true, "shared": true}
	if len(union) != len(expected) {
		t.Fatalf("expected %d names, got %d: %v", len(expected), len(union), union)
	}
	for name := range expected {
		if _, ok := union[name]; !ok {
			t.Errorf("expected %q in the union", name)
		}
	}
}
