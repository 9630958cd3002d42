package bisync

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEngineRunFirstPassCopiesAndRecordsSnapshot(t *testing.T) {
	rootA := t.TempDir()
	rootB := t.TempDir()
	if err := os.WriteFile(filepath.Join(rootA, "doc.txt"), []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}

	pair := Pair{Name: "test-pair", RootA: rootA, RootB: rootB}
	engine := Engine{}
	engine.Run([]Pair{pair}, nil, Callbacks{}, Options{})

	if _, err := os.Stat(filepath.Join(rootB, "doc.txt")); err != nil {
		t.Fatalf("expected doc.txt to be copied to B: %v", err)
	}

	paths := sidecarPaths(pair)
	if _, err := os.Stat(paths[0]); err != nil {
		t.Errorf("expected a snapshot sidecar in root A: %v", err)
	}

	status, ok := engine.Status(pair)
	if !ok {
		t.Fatal("expected a recorded run status")
	}
	if status.Outcome != RunOutcomeOK {
		t.Errorf("expected outcome ok, got %s", status.Outcome)
	}
}

func TestEngineRunIsIdempotentOnSecondPass(t *testing.T) {
	rootA := t.TempDir()
	rootB := t.TempDir()
	if err := os.WriteFile(filepath.Join(rootA, "doc.txt"), []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}

	pair := Pair{RootA: rootA, RootB: rootB}
	engine := Engine{}

	var firstPassLines, secondPassLines []string
	engine.Run([]Pair{pair}, nil, Callbacks{Log: func(l string) { firstPassLines = append(firstPassLines, l) }}, Options{})
	engine.Run([]Pair{pair}, nil, Callbacks{Log: func(l string) { secondPassLines = append(secondPassLines, l) }}, Options{})

	for _, line := range secondPassLines {
		t.Errorf("expected no mutation log lines on the idempotent second pass, got: %s", line)
	}
	_ = firstPassLines
}

func TestEngineSkipsDisabledPair(t *testing.T) {
	rootA := t.TempDir()
	rootB := t.TempDir()
	if err := os.WriteFile(filepath.Join(rootA, "doc.txt"), []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}

	pair := Pair{RootA: rootA, RootB: rootB, Disabled: true}
	engine := Engine{}
	engine.Run([]Pair{pair}, nil, Callbacks{}, Options{})

	if _, err := os.Stat(filepath.Join(rootB, "doc.txt")); !os.IsNotExist(err) {
		t.Error("expected a disabled pair to never be reconciled")
	}
	status, ok := engine.Status(pair)
	if !ok || status.Outcome != RunOutcomeSkipped {
		t.Errorf("expected a skipped status, got %+v (ok=%v)", status, ok)
	}
}

func TestEngineSkipsPairWithMissingRoot(t *testing.T) {
	rootA := t.TempDir()
	missingRootB := filepath.Join(rootA, "does-not-exist")

	pair := Pair{RootA: rootA, RootB: missingRootB}
	engine := Engine{}
	engine.Run([]Pair{pair}, nil, Callbacks{}, Options{})

	status, ok := engine.Status(pair)
	if !ok || status.Outcome != RunOutcomeSkipped {
		t.Errorf("expected a skipped status for a missing root, got %+v (ok=%v)", status, ok)
	}
}

func TestEngineDryRunDoesNotWriteSnapshot(t *testing.T) {
	rootA := t.TempDir()
	rootB := t.TempDir()
	if err := os.WriteFile(filepath.Join(rootA, "doc.txt"), []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}

	pair := Pair{RootA: rootA, RootB: rootB}
	engine := Engine{}
	engine.Run([]Pair{pair}, nil, Callbacks{}, Options{DryRun: true})

	if _, err := os.Stat(filepath.Join(rootB, "doc.txt")); !os.IsNotExist(err) {
		t.Error("expected dry-run to leave root B untouched")
	}
	paths := sidecarPaths(pair)
	if _, err := os.Stat(paths[0]); !os.IsNotExist(err) {
		t.Error("expected dry-run to skip writing a snapshot")
	}
}

func TestEngineStopAbortsRemainingPairs(t *testing.T) {
	rootA1, rootB1 := t.TempDir(), t.TempDir()
	rootA2, rootB2 := t.TempDir(), t.TempDir()
	if err := os.WriteFile(filepath.Join(rootA2, "doc.txt"), []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}

	control := NewControl()
	control.Stop.Store(true)

	engine := Engine{}
	engine.Run([]Pair{{RootA: rootA1, RootB: rootB1}, {RootA: rootA2, RootB: rootB2}}, control, Callbacks{}, Options{})

	if _, err := os.Stat(filepath.Join(rootB2, "doc.txt")); !os.IsNotExist(err) {
		t.Error("expected the stop flag to prevent any pair from being processed")
	}
}
