package bisync

import (
	"testing"
	"time"
)

func TestStatusLockRecordAndGet(t *testing.T) {
	var lock statusLock

	if _, ok := lock.get("unknown"); ok {
		t.Error("expected no status for an unrecorded pair")
	}

	now := time.Now()
	lock.record("p1", RunStatus{Timestamp: now, Outcome: RunOutcomeOK})

	status, ok := lock.get("p1")
	if !ok {
		t.Fatal("expected a recorded status")
	}
	if status.Outcome != RunOutcomeOK {
		t.Errorf("expected ok outcome, got %s", status.Outcome)
	}
}

func TestRunOutcomeString(t *testing.T) {
	cases := map[RunOutcome]string{
		RunOutcomeOK:      "ok",
		RunOutcomeError:   "error",
		RunOutcomeSkipped: "skipped",
		RunOutcome(99):    "unknown",
	}
	for outcome, expected := range cases {
		if got := outcome.String(); got != expected {
			t.Errorf("String() = %q, expected %q", got, expected)
		}
	}
}
