package bisync

import (
	"path/filepath"

	"github.com/FilippoHoch/bisync-go/pkg/encoding"
)

// SnapshotEntry is the persisted per-path memory of the last successfully
// reconciled state. A nil ModTime on a side means the file did not exist
// there as of the last successful reconciliation. Readers must tolerate
// unknown JSON keys, since the sidecar format may gain fields over time.
type SnapshotEntry struct {
	ModTimeA *float64 `json:"A"`
	ModTimeB *float64 `json:"B"`
	SizeA    int64    `json:"sizeA"`
	SizeB    int64    `json:"sizeB"`
	DigestA  string   `json:"hashA"`
	DigestB  string   `json:"hashB"`
}

// SnapshotDocument is the full persisted mapping from relative path to
// snapshot entry for one pair.
type SnapshotDocument map[string]SnapshotEntry

// sidecarPaths returns the two physical sidecar locations for a pair, root A
// first.
func sidecarPaths(pair Pair) [2]string {
	name := SnapshotFilePrefix + pair.ID() + SnapshotFileSuffix
	return [2]string{
		filepath.Join(pair.RootA, name),
		filepath.Join(pair.RootB, name),
	}
}

// LoadSnapshot loads the persisted snapshot for a pair. It tries root A's
// sidecar first, then root B's; the first path that parses to a non-empty
// document wins. Missing, unreadable, or corrupt sidecars are treated as
// first-ever-run: an empty snapshot, never an error.
func LoadSnapshot(pair Pair) SnapshotDocument {
	for _, path := range sidecarPaths(pair) {
		var document SnapshotDocument
		if err := encoding.LoadAndUnmarshalJSON(path, &document); err != nil {
			continue
		}
		if len(document) > 0 {
			return document
		}
	}
	return SnapshotDocument{}
}

// BuildSnapshot computes the snapshot document that should be persisted after
// a run, from the post-execution side maps of both roots.
func BuildSnapshot(mapA, mapB SideMap) SnapshotDocument {
	document := make(SnapshotDocument, len(mapA)+len(mapB))
	for name := range nameUnion(mapA, mapB) {
		entry := SnapshotEntry{}
		if a, ok := mapA[name]; ok {
			modTime := a.ModTime
			entry.ModTimeA = &modTime
			entry.SizeA = a.Size
			entry.DigestA = a.Digest
		}
		if b, ok := mapB[name]; ok {
			modTime := b.ModTime
			entry.ModTimeB = &modTime
			entry.SizeB = b.Size
			entry.DigestB = b.Digest
		}
		document[name] = entry
	}
	return document
}

// SaveSnapshot writes document to both of the pair's sidecar locations.
// Failures to write either copy are swallowed: the next run simply starts
// from a stale or empty snapshot, which is always safe (it can only produce
// more copies, never more deletions).
func SaveSnapshot(pair Pair, document SnapshotDocument) {
	for _, path := range sidecarPaths(pair) {
		_ = encoding.MarshalAndSaveJSON(path, document)
	}
}
