package bisync

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/FilippoHoch/bisync-go/pkg/logging"
)

// Options configures a single engine Run invocation across all pairs.
type Options struct {
	// RetentionDays is how many days of archive/trash buckets to keep; zero
	// or negative disables retention pruning entirely.
	RetentionDays int
	// DryRun, when true, plans and logs every pair's actions without
	// mutating anything and without persisting a new snapshot.
	DryRun bool
	// Verbose enables per-file scan debug logging.
	Verbose bool
}

// Engine orchestrates reconciliation of a list of pairs, one at a time, end
// to end: scan, load snapshot, plan, execute, rescan, save snapshot, prune
// retention. It never aborts the whole batch because of a single pair's
// error; it logs and moves on. The only thing that stops the batch early is
// the driver setting the Stop control flag.
type Engine struct {
	Logger *logging.Logger

	// status records each pair's most recent run outcome, queryable via
	// Status. The zero Engine value is usable: statusLock initializes its
	// table lazily on first write.
	status statusLock
}

// Status returns the last recorded outcome of reconciling the given pair,
// and whether any run has completed for it yet in this process.
func (e *Engine) Status(pair Pair) (RunStatus, bool) {
	return e.status.get(pair.ID())
}

// Run processes every pair in order, returning only once all pairs have been
// processed or the driver has requested a stop.
func (e *Engine) Run(pairs []Pair, control *Control, callbacks Callbacks, options Options) {
	for _, pair := range pairs {
		if control != nil && control.Stop.Load() {
			callbacks.logf("stop requested, aborting remaining pairs")
			return
		}
		e.runPairRecovered(pair, control, callbacks, options)
	}
}

// runPairRecovered wraps runPair with panic recovery so that an unexpected
// bug in processing one pair can never take down the whole batch; it's
// reported the same way a mutation-class error would be.
func (e *Engine) runPairRecovered(pair Pair, control *Control, logger Callbacks, options Options) {
	defer func() {
		if r := recover(); r != nil {
			logger.logf("pair %s: internal error: %v", pairLabel(pair), r)
			e.status.record(pair.ID(), RunStatus{Timestamp: time.Now(), Outcome: RunOutcomeError})
		}
	}()
	e.runPair(pair, control, logger, options)
}

func (e *Engine) runPair(pair Pair, control *Control, logger Callbacks, options Options) {
	label := pairLabel(pair)

	if pair.Disabled {
		logger.logf("pair %s: skipped (disabled)", label)
		e.status.record(pair.ID(), RunStatus{Timestamp: time.Now(), Outcome: RunOutcomeSkipped})
		return
	}

	if !isDirectory(pair.RootA) || !isDirectory(pair.RootB) {
		logger.logf("pair %s: skipped (one or both roots are missing)", label)
		e.status.record(pair.ID(), RunStatus{Timestamp: time.Now(), Outcome: RunOutcomeSkipped})
		return
	}

	scanOptions := func(previous SideMap) ScanOptions {
		return ScanOptions{
			Include:  pair.IncludeGlobs,
			Exclude:  pair.ExcludeGlobs,
			Stop:     stopFlag(control),
			Previous: previous,
			Verbose:  options.Verbose,
			Logger:   e.Logger,
		}
	}

	mapA := Scan(pair.RootA, scanOptions(nil))
	mapB := Scan(pair.RootB, scanOptions(nil))
	if control != nil && control.Stop.Load() {
		logger.logf("pair %s: scan interrupted by stop, skipping this pair", label)
		e.status.record(pair.ID(), RunStatus{Timestamp: time.Now(), Outcome: RunOutcomeSkipped})
		return
	}

	snapshot := LoadSnapshot(pair)
	actions := Plan(pair, mapA, mapB, snapshot, stopFlag(control))

	executor := Executor{Mutator: Mutator{Logger: e.Logger}, DryRun: options.DryRun}
	failed := executor.Run(pair, actions, control, Callbacks{
		Log:      logger.Log,
		Progress: logger.Progress,
		Status:   logger.Status,
	})

	newMapA := Scan(pair.RootA, scanOptions(mapA))
	newMapB := Scan(pair.RootB, scanOptions(mapB))

	if !options.DryRun {
		SaveSnapshot(pair, BuildSnapshot(newMapA, newMapB))

		mutator := Mutator{Logger: e.Logger}
		mutator.CleanupRetention(pair.RootA, ReservedArchiveDirectory, options.RetentionDays)
		mutator.CleanupRetention(pair.RootA, ReservedTrashDirectory, options.RetentionDays)
		mutator.CleanupRetention(pair.RootB, ReservedArchiveDirectory, options.RetentionDays)
		mutator.CleanupRetention(pair.RootB, ReservedTrashDirectory, options.RetentionDays)
	}

	outcome := RunOutcomeOK
	if failed > 0 {
		outcome = RunOutcomeError
	}
	e.status.record(pair.ID(), RunStatus{Timestamp: time.Now(), Outcome: outcome, Failed: failed})
}

func pairLabel(pair Pair) string {
	if pair.Name != "" {
		return pair.Name
	}
	return fmt.Sprintf("%s <-> %s", pair.RootA, pair.RootB)
}

func isDirectory(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// stopFlag extracts the Stop flag from a possibly-nil Control so that Scan
// and Plan can be called uniformly whether or not a Control was supplied.
func stopFlag(control *Control) *atomic.Bool {
	if control == nil {
		return nil
	}
	return &control.Stop
}
