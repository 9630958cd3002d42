package bisync

import (
	"path/filepath"
	"sort"
	"sync/atomic"
)

// MTIMEFuzz is the tolerance applied to modification-time comparisons, to
// absorb coarse filesystem timestamp resolution (notably FAT/exFAT at 2
// second granularity). It does not absorb arbitrary clock skew between the
// two roots.
const MTIMEFuzz = 1.0

// Plan consumes the two scanner side maps plus the loaded snapshot and
// produces an ordered action list: first any renames detected across the
// symmetric difference, then a per-path reconciliation pass over the union of
// both maps in lexicographic order. stop, if non-nil, is polled between
// per-path iterations so a caller can abandon planning early; no partial plan
// safety is implied beyond "whatever was appended before the stop was
// observed."
func Plan(pair Pair, mapA, mapB SideMap, snapshot SnapshotDocument, stop *atomic.Bool) []Action {
	var actions []Action

	handled := make(map[string]bool)
	actions = append(actions, detectRenames(pair, mapA, mapB, snapshot, handled)...)

	names := make([]string, 0, len(mapA)+len(mapB))
	for name := range nameUnion(mapA, mapB) {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if stop != nil && stop.Load() {
			break
		}
		if handled[name] {
			continue
		}
		if action, ok := reconcilePath(pair, name, mapA[name], mapB[name], mapA, mapB, snapshot[name]); ok {
			actions = append(actions, action)
		}
	}

	return actions
}

// detectRenames implements planner step 1: rename detection by content digest
// across the symmetric difference between the two side maps.
func detectRenames(pair Pair, mapA, mapB SideMap, snapshot SnapshotDocument, handled map[string]bool) []Action {
	onlyA := make(SideMap)
	for name, descriptor := range mapA {
		if _, present := mapB[name]; !present {
			onlyA[name] = descriptor
		}
	}
	onlyB := make(SideMap)
	for name, descriptor := range mapB {
		if _, present := mapA[name]; !present {
			onlyB[name] = descriptor
		}
	}

	indexA := uniqueDigestIndex(onlyA)
	indexB := uniqueDigestIndex(onlyB)

	var actions []Action
	for digest, rA := range indexA {
		rB, ok := indexB[digest]
		if !ok {
			continue
		}

		_, prevA := snapshot[rA]
		_, prevB := snapshot[rB]

		switch {
		case prevB && !prevA:
			descriptor := mapB[rB]
			actions = append(actions, Action{
				Kind:                ActionRenameB,
				Path:                rA,
				FromRelPath:         rB,
				SourceAbsolute:      descriptor.Absolute,
				DestinationAbsolute: filepath.Join(pair.RootB, filepath.FromSlash(rA)),
				Size:                descriptor.Size,
			})
		case prevA && !prevB:
			descriptor := mapA[rA]
			actions = append(actions, Action{
				Kind:                ActionRenameA,
				Path:                rB,
				FromRelPath:         rA,
				SourceAbsolute:      descriptor.Absolute,
				DestinationAbsolute: filepath.Join(pair.RootA, filepath.FromSlash(rB)),
				Size:                descriptor.Size,
			})
		default:
			// Both or neither were known previously: ambiguous. Fall through
			// to normal per-path handling on the next pass, which degrades
			// to a copy-and-delete.
			continue
		}

		handled[rA] = true
		handled[rB] = true
	}

	return actions
}

// uniqueDigestIndex builds a digest-to-relpath index over side, restricted to
// entries with a non-empty digest, excluding any digest shared by more than
// one path (duplicate content). Rename detection is best-effort: missing it
// only downgrades to copy+delete semantics on the next run.
func uniqueDigestIndex(side SideMap) map[string]string {
	counts := make(map[string]int)
	firstPath := make(map[string]string)
	for name, descriptor := range side {
		if descriptor.Digest == "" {
			continue
		}
		counts[descriptor.Digest]++
		if counts[descriptor.Digest] == 1 {
			firstPath[descriptor.Digest] = name
		}
	}
	index := make(map[string]string, len(firstPath))
	for digest, count := range counts {
		if count == 1 {
			index[digest] = firstPath[digest]
		}
	}
	return index
}

// reconcilePath implements planner step 2 for a single relative path.
func reconcilePath(pair Pair, name string, a, b FileDescriptor, mapA, mapB SideMap, prev SnapshotEntry) (Action, bool) {
	_, hasA := mapA[name]
	_, hasB := mapB[name]

	switch {
	case hasA && !hasB:
		return onlyOneSide(pair, name, a, true, prev), true
	case hasB && !hasA:
		return onlyOneSide(pair, name, b, false, prev), true
	default:
		return bothSides(pair, name, a, b)
	}
}

// onlyOneSide handles the "only A has it" / "only B has it" cases. present
// indicates which side is non-empty: true for A, false for B.
func onlyOneSide(pair Pair, name string, descriptor FileDescriptor, present bool, prev SnapshotEntry) Action {
	if pair.Conservative {
		return restoreAction(pair, name, descriptor, present)
	}

	// present == true means A has it and B doesn't: the relevant "did the
	// other side have it last time" question is about B, and the "has this
	// side changed since" question is about A (and vice versa).
	var otherHadIt bool
	var thisSidePrevModTime *float64
	if present {
		otherHadIt = prev.ModTimeB != nil
		thisSidePrevModTime = prev.ModTimeA
	} else {
		otherHadIt = prev.ModTimeA != nil
		thisSidePrevModTime = prev.ModTimeB
	}

	unchangedSinceLastRun := thisSidePrevModTime != nil && mtimesWithinFuzz(descriptor.ModTime, *thisSidePrevModTime)

	if otherHadIt && unchangedSinceLastRun {
		return deleteAction(pair, name, descriptor, present)
	}
	return restoreAction(pair, name, descriptor, present)
}

// restoreAction builds the copy action that propagates the non-empty side's
// content to the side that's missing it.
func restoreAction(pair Pair, name string, descriptor FileDescriptor, present bool) Action {
	if present {
		return Action{
			Kind:                ActionCopyAToB,
			Path:                name,
			SourceAbsolute:      descriptor.Absolute,
			DestinationAbsolute: filepath.Join(pair.RootB, filepath.FromSlash(name)),
			Size:                descriptor.Size,
		}
	}
	return Action{
		Kind:                ActionCopyBToA,
		Path:                name,
		SourceAbsolute:      descriptor.Absolute,
		DestinationAbsolute: filepath.Join(pair.RootA, filepath.FromSlash(name)),
		Size:                descriptor.Size,
	}
}

// deleteAction builds the delete action for the side that currently has the
// file, because the other side deleted it and this side hasn't changed since.
func deleteAction(pair Pair, name string, descriptor FileDescriptor, present bool) Action {
	if present {
		return Action{
			Kind:                ActionDeleteA,
			Path:                name,
			DestinationAbsolute: descriptor.Absolute,
			Size:                descriptor.Size,
		}
	}
	return Action{
		Kind:                ActionDeleteB,
		Path:                name,
		DestinationAbsolute: descriptor.Absolute,
		Size:                descriptor.Size,
	}
}

// bothSides handles paths present on both roots: either no action (content
// considered identical) or a conflict resolved per the pair's policy.
func bothSides(pair Pair, name string, a, b FileDescriptor) (Action, bool) {
	if mtimesWithinFuzz(a.ModTime, b.ModTime) && a.Size == b.Size {
		return Action{}, false
	}

	switch pair.ConflictPolicy {
	case ConflictPolicyPreferA:
		return copyAToB(pair, name, a), true
	case ConflictPolicyPreferB:
		return copyBToA(pair, name, b), true
	default: // ConflictPolicyNewestWins
		if a.ModTime-b.ModTime > MTIMEFuzz {
			return copyAToB(pair, name, a), true
		}
		if b.ModTime-a.ModTime > MTIMEFuzz {
			return copyBToA(pair, name, b), true
		}
		// Mtimes are effectively tied, so sizes must differ (otherwise the
		// no-action branch above would have matched). Propagate the larger
		// side, for deterministic behavior on clock-identical writes.
		if a.Size >= b.Size {
			return copyAToB(pair, name, a), true
		}
		return copyBToA(pair, name, b), true
	}
}

func copyAToB(pair Pair, name string, a FileDescriptor) Action {
	return Action{
		Kind:                ActionCopyAToB,
		Path:                name,
		SourceAbsolute:      a.Absolute,
		DestinationAbsolute: filepath.Join(pair.RootB, filepath.FromSlash(name)),
		Size:                a.Size,
	}
}

func copyBToA(pair Pair, name string, b FileDescriptor) Action {
	return Action{
		Kind:                ActionCopyBToA,
		Path:                name,
		SourceAbsolute:      b.Absolute,
		DestinationAbsolute: filepath.Join(pair.RootA, filepath.FromSlash(name)),
		Size:                b.Size,
	}
}

// mtimesWithinFuzz reports whether two modification times are equal to
// within MTIMEFuzz.
func mtimesWithinFuzz(a, b float64) bool {
	delta := a - b
	if delta < 0 {
		delta = -delta
	}
	return delta <= MTIMEFuzz
}
