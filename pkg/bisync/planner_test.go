package bisync

import "testing"

func descriptor(relPath string, modTime float64, size int64, digest string) FileDescriptor {
	return FileDescriptor{
		RelPath:  relPath,
		Absolute: "/abs/" + relPath,
		ModTime:  modTime,
		Size:     size,
		Digest:   digest,
	}
}

func floatPtr(v float64) *float64 { return &v }

// TestPlanFirstRunCopy covers spec scenario 1: a file exists only on A with
// no prior snapshot, so it's copied to B.
func TestPlanFirstRunCopy(t *testing.T) {
	pair := Pair{RootA: "/A", RootB: "/B"}
	mapA := SideMap{"doc.txt": descriptor("doc.txt", 100, 10, "d1")}
	mapB := SideMap{}

	actions := Plan(pair, mapA, mapB, SnapshotDocument{}, nil)

	if len(actions) != 1 {
		t.Fatalf("expected exactly one action, got %d: %+v", len(actions), actions)
	}
	if actions[0].Kind != ActionCopyAToB {
		t.Errorf("expected copy-A-to-B, got %s", actions[0].Kind)
	}
	if actions[0].Path != "doc.txt" {
		t.Errorf("expected path doc.txt, got %s", actions[0].Path)
	}
}

// TestPlanPropagatedDeletion covers spec scenario 2: a file known on both
// sides previously, now missing from B and unchanged on A, is deleted from A
// when the pair is not conservative.
func TestPlanPropagatedDeletion(t *testing.T) {
	pair := Pair{RootA: "/A", RootB: "/B", Conservative: false}
	mapA := SideMap{"notes.md": descriptor("notes.md", 100, 20, "d1")}
	mapB := SideMap{}
	snapshot := SnapshotDocument{
		"notes.md": {ModTimeA: floatPtr(100), ModTimeB: floatPtr(100), SizeA: 20, SizeB: 20},
	}

	actions := Plan(pair, mapA, mapB, snapshot, nil)

	if len(actions) != 1 {
		t.Fatalf("expected exactly one action, got %d: %+v", len(actions), actions)
	}
	if actions[0].Kind != ActionDeleteA {
		t.Errorf("expected delete-A, got %s", actions[0].Kind)
	}
}

// TestPlanRestoredDeletionConservative covers spec scenario 3: same setup as
// scenario 2, but conservative=true restores B instead of deleting A.
func TestPlanRestoredDeletionConservative(t *testing.T) {
	pair := Pair{RootA: "/A", RootB: "/B", Conservative: true}
	mapA := SideMap{"notes.md": descriptor("notes.md", 100, 20, "d1")}
	mapB := SideMap{}
	snapshot := SnapshotDocument{
		"notes.md": {ModTimeA: floatPtr(100), ModTimeB: floatPtr(100), SizeA: 20, SizeB: 20},
	}

	actions := Plan(pair, mapA, mapB, snapshot, nil)

	if len(actions) != 1 {
		t.Fatalf("expected exactly one action, got %d: %+v", len(actions), actions)
	}
	if actions[0].Kind != ActionCopyAToB {
		t.Errorf("expected copy-A-to-B (restore), got %s", actions[0].Kind)
	}
}

// TestPlanConflictResolvedByNewest covers spec scenario 4.
func TestPlanConflictResolvedByNewest(t *testing.T) {
	pair := Pair{RootA: "/A", RootB: "/B", ConflictPolicy: ConflictPolicyNewestWins}
	mapA := SideMap{"report.docx": descriptor("report.docx", 100, 1000, "dA")}
	mapB := SideMap{"report.docx": descriptor("report.docx", 105, 1200, "dB")}

	actions := Plan(pair, mapA, mapB, SnapshotDocument{}, nil)

	if len(actions) != 1 {
		t.Fatalf("expected exactly one action, got %d: %+v", len(actions), actions)
	}
	if actions[0].Kind != ActionCopyBToA {
		t.Errorf("expected copy-B-to-A (B is newer), got %s", actions[0].Kind)
	}
}

// TestPlanRenamePropagation covers spec scenario 5: a file renamed on A is
// detected via matching content digest across the symmetric difference and
// propagated as a single rename on B, without any copy or delete.
func TestPlanRenamePropagation(t *testing.T) {
	pair := Pair{RootA: "/A", RootB: "/B"}
	mapA := SideMap{"new.bin": descriptor("new.bin", 100, 50, "D")}
	mapB := SideMap{"old.bin": descriptor("old.bin", 90, 50, "D")}
	snapshot := SnapshotDocument{
		"old.bin": {ModTimeA: floatPtr(90), ModTimeB: floatPtr(90), SizeA: 50, SizeB: 50, DigestA: "D", DigestB: "D"},
	}

	actions := Plan(pair, mapA, mapB, snapshot, nil)

	if len(actions) != 1 {
		t.Fatalf("expected exactly one action, got %d: %+v", len(actions), actions)
	}
	if actions[0].Kind != ActionRenameB {
		t.Fatalf("expected rename-B, got %s", actions[0].Kind)
	}
	if actions[0].FromRelPath != "old.bin" || actions[0].Path != "new.bin" {
		t.Errorf("expected rename from old.bin to new.bin, got from=%s to=%s", actions[0].FromRelPath, actions[0].Path)
	}
}

// TestPlanIdempotence covers P1: given identical side maps (as would result
// from a second run with no external mutation), planning produces no
// actions.
func TestPlanIdempotence(t *testing.T) {
	pair := Pair{RootA: "/A", RootB: "/B"}
	mapA := SideMap{"doc.txt": descriptor("doc.txt", 100, 10, "d1")}
	mapB := SideMap{"doc.txt": descriptor("doc.txt", 100, 10, "d1")}
	snapshot := SnapshotDocument{
		"doc.txt": {ModTimeA: floatPtr(100), ModTimeB: floatPtr(100), SizeA: 10, SizeB: 10, DigestA: "d1", DigestB: "d1"},
	}

	actions := Plan(pair, mapA, mapB, snapshot, nil)
	if len(actions) != 0 {
		t.Fatalf("expected an empty plan on the second run, got %+v", actions)
	}
}

// TestPlanFuzzyEqualEmitsNoAction covers P4: paths whose mtimes are within
// MTIMEFuzz and whose sizes match produce no action, even without a
// snapshot.
func TestPlanFuzzyEqualEmitsNoAction(t *testing.T) {
	pair := Pair{RootA: "/A", RootB: "/B"}
	mapA := SideMap{"doc.txt": descriptor("doc.txt", 100.0, 10, "d1")}
	mapB := SideMap{"doc.txt": descriptor("doc.txt", 100.9, 10, "d1")}

	actions := Plan(pair, mapA, mapB, SnapshotDocument{}, nil)
	if len(actions) != 0 {
		t.Fatalf("expected no action for fuzzy-equal paths, got %+v", actions)
	}
}

// TestPlanConservativeNeverDeletes covers P3: in conservative mode, no
// delete-* action is ever emitted, across a variety of one-sided scenarios.
func TestPlanConservativeNeverDeletes(t *testing.T) {
	pair := Pair{RootA: "/A", RootB: "/B", Conservative: true}
	mapA := SideMap{
		"onlyA1.txt": descriptor("onlyA1.txt", 100, 10, "x1"),
		"onlyA2.txt": descriptor("onlyA2.txt", 200, 20, "x2"),
	}
	mapB := SideMap{
		"onlyB1.txt": descriptor("onlyB1.txt", 300, 30, "x3"),
	}
	snapshot := SnapshotDocument{
		"onlyA1.txt": {ModTimeA: floatPtr(100), ModTimeB: floatPtr(100), SizeA: 10, SizeB: 10},
		"onlyB1.txt": {ModTimeA: floatPtr(300), ModTimeB: floatPtr(300), SizeA: 30, SizeB: 30},
	}

	actions := Plan(pair, mapA, mapB, snapshot, nil)
	for _, action := range actions {
		if action.Kind == ActionDeleteA || action.Kind == ActionDeleteB {
			t.Fatalf("expected no delete actions in conservative mode, got %+v", action)
		}
	}
}

func TestPlanConflictPreferPolicies(t *testing.T) {
	mapA := SideMap{"x.txt": descriptor("x.txt", 100, 10, "dA")}
	mapB := SideMap{"x.txt": descriptor("x.txt", 200, 20, "dB")}

	preferA := Pair{RootA: "/A", RootB: "/B", ConflictPolicy: ConflictPolicyPreferA}
	actions := Plan(preferA, mapA, mapB, SnapshotDocument{}, nil)
	if len(actions) != 1 || actions[0].Kind != ActionCopyAToB {
		t.Fatalf("expected copy-A-to-B under prefer-A, got %+v", actions)
	}

	preferB := Pair{RootA: "/A", RootB: "/B", ConflictPolicy: ConflictPolicyPreferB}
	actions = Plan(preferB, mapA, mapB, SnapshotDocument{}, nil)
	if len(actions) != 1 || actions[0].Kind != ActionCopyBToA {
		t.Fatalf("expected copy-B-to-A under prefer-B, got %+v", actions)
	}
}

func TestPlanTiedMtimeBreaksOnSize(t *testing.T) {
	pair := Pair{RootA: "/A", RootB: "/B", ConflictPolicy: ConflictPolicyNewestWins}
	mapA := SideMap{"x.txt": descriptor("x.txt", 100, 500, "dA")}
	mapB := SideMap{"x.txt": descriptor("x.txt", 100.5, 900, "dB")}

	actions := Plan(pair, mapA, mapB, SnapshotDocument{}, nil)
	if len(actions) != 1 || actions[0].Kind != ActionCopyBToA {
		t.Fatalf("expected the larger side (B) to win a mtime tie, got %+v", actions)
	}
}
