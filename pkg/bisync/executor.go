package bisync

import (
	"fmt"
	"time"
)

// Callbacks are the capability interface the engine uses to report progress
// back to whatever is driving it (a GUI, a headless scheduler, or a test).
// They are invoked from the engine's single worker goroutine and must be
// safe to call from there; a typical driver forwards them into a
// thread-safe queue drained by its own UI goroutine.
type Callbacks struct {
	// Log receives one line of human-readable status text per call.
	Log func(line string)
	// Progress reports cumulative progress through the current plan.
	Progress func(doneActions, totalActions int, doneBytes, totalBytes int64)
	// Status reports instantaneous throughput and estimated time remaining.
	// known is false when throughput is effectively zero, in which case eta
	// should be treated as "unknown" rather than literally zero.
	Status func(bytesPerSecond float64, eta time.Duration, known bool)
}

// logf calls Log if set, formatting like fmt.Sprintf.
func (c Callbacks) logf(format string, args ...interface{}) {
	if c.Log != nil {
		c.Log(fmt.Sprintf(format, args...))
	}
}

// executorPauseInterval is how long the executor sleeps between polls of the
// pause flag while paused.
const executorPauseInterval = 100 * time.Millisecond

// Executor applies a planned action list in order via a Mutator, observing
// pause/stop signals between actions and reporting progress as it goes.
type Executor struct {
	Mutator Mutator
	// DryRun, when true, logs what each action would do without invoking the
	// Mutator and without advancing any real filesystem state.
	DryRun bool
}

// Run executes the plan for pair, returning the number of actions that failed
// with an error (a failure never aborts the run; it's logged and execution
// continues with the next action).
func (e Executor) Run(pair Pair, actions []Action, control *Control, callbacks Callbacks) (failed int) {
	totalActions := len(actions)
	var totalBytes int64
	for _, action := range actions {
		if action.Size > 0 {
			totalBytes += action.Size
		}
	}

	start := time.Now()
	var doneActions int
	var doneBytes int64

	for _, action := range actions {
		if control != nil && control.Stop.Load() {
			break
		}
		for control != nil && control.Pause.Load() && !control.Stop.Load() {
			time.Sleep(executorPauseInterval)
		}
		if control != nil && control.Stop.Load() {
			break
		}

		if err := e.dispatch(pair, action, callbacks); err != nil {
			failed++
			callbacks.logf("%s: error processing %s: %v", action.Kind, action.Path, err)
		}

		doneActions++
		if action.Size > 0 {
			doneBytes += action.Size
		}

		elapsed := time.Since(start).Seconds()
		var throughput float64
		if elapsed > 0 {
			throughput = float64(doneBytes) / elapsed
		}

		if callbacks.Progress != nil {
			callbacks.Progress(doneActions, totalActions, doneBytes, totalBytes)
		}
		if callbacks.Status != nil {
			if throughput > 1 {
				remaining := float64(totalBytes - doneBytes)
				eta := time.Duration(remaining/throughput) * time.Second
				callbacks.Status(throughput, eta, true)
			} else {
				callbacks.Status(0, 0, false)
			}
		}
	}

	return failed
}

// dispatch applies (or, in dry-run mode, logs) a single action.
func (e Executor) dispatch(pair Pair, action Action, callbacks Callbacks) error {
	if e.DryRun {
		callbacks.logf("[dry-run] %s: %s (%s)", action.Kind, action.Path, formatBytes(max64(action.Size, 0)))
		return nil
	}

	ts := newTimestamp()
	var err error
	switch action.Kind {
	case ActionCopyAToB:
		err = e.Mutator.Copy(ts, action.SourceAbsolute, action.DestinationAbsolute, pair.RootB, action.Path)
	case ActionCopyBToA:
		err = e.Mutator.Copy(ts, action.SourceAbsolute, action.DestinationAbsolute, pair.RootA, action.Path)
	case ActionDeleteA:
		err = e.Mutator.Remove(ts, action.Path, pair.RootA, pair.UseTrash)
	case ActionDeleteB:
		err = e.Mutator.Remove(ts, action.Path, pair.RootB, pair.UseTrash)
	case ActionRenameA:
		err = e.Mutator.Move(ts, action.SourceAbsolute, action.DestinationAbsolute, pair.RootA, action.Path)
	case ActionRenameB:
		err = e.Mutator.Move(ts, action.SourceAbsolute, action.DestinationAbsolute, pair.RootB, action.Path)
	}

	if err == nil {
		callbacks.logf("%s: %s (%s)", action.Kind, action.Path, formatBytes(max64(action.Size, 0)))
	}
	return err
}

// formatBytes renders a byte count with binary prefixes up to PiB, with one
// decimal place for anything of a kibibyte or more.
func formatBytes(n int64) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}
	units := []string{"KiB", "MiB", "GiB", "TiB", "PiB"}
	value := float64(n) / 1024
	unit := 0
	for value >= 1024 && unit < len(units)-1 {
		value /= 1024
		unit++
	}
	return fmt.Sprintf("%.1f %s", value, units[unit])
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
