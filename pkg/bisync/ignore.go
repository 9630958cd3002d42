package bisync

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ReservedArchiveDirectory is the reserved per-root subtree into which
// victims of overwrites are displaced prior to being overwritten.
const ReservedArchiveDirectory = ".sync_archive"

// ReservedTrashDirectory is the reserved per-root subtree into which victims
// of explicit deletions are displaced when a pair's UseTrash flag is set.
const ReservedTrashDirectory = ".sync_trash"

// SnapshotFilePrefix and SnapshotFileSuffix identify the engine's own
// metadata sidecar files so that the scanner can exclude them from side maps.
const (
	SnapshotFilePrefix = ".bisync_state_"
	SnapshotFileSuffix = ".json"
)

// DefaultExcludeGlobs seeds the exclude list with the usual suspects: editor
// swap files, OS-generated thumbnail caches, and Windows desktop metadata.
// Pair configuration can extend this list but does not need to repeat it.
var DefaultExcludeGlobs = []string{
	"*.tmp",
	"*.temp",
	"*.swp",
	"Thumbs.db",
	".DS_Store",
	"desktop.ini",
}

// isReservedPath reports whether any component of rel equals one of the
// reserved directory names. The scanner prunes these subtrees outright during
// the walk; this check exists as defense in depth in case a reserved name
// appears somewhere the walk didn't prune (e.g. a future refactor).
func isReservedPath(rel string) bool {
	for _, component := range strings.Split(rel, "/") {
		if component == ReservedArchiveDirectory || component == ReservedTrashDirectory {
			return true
		}
	}
	return false
}

// isSnapshotSidecarName reports whether name is one of the engine's own
// per-pair snapshot files.
func isSnapshotSidecarName(name string) bool {
	return strings.HasPrefix(name, SnapshotFilePrefix) && strings.HasSuffix(name, SnapshotFileSuffix)
}

// globMatches reports whether pattern matches rel. If pattern contains no
// slash, it is also matched against rel's final path component, so a bare
// "*.tmp" matches at any depth while "build/*.tmp" only matches directly
// under a root-level "build" directory. This resolves the spec's open
// question about glob semantics: full relative-path matching with standard
// single-star/doublestar wildcards, plus basename fallback for slash-free
// patterns.
func globMatches(pattern, rel string) bool {
	if ok, _ := doublestar.Match(pattern, rel); ok {
		return true
	}
	if !strings.Contains(pattern, "/") {
		if ok, _ := doublestar.Match(pattern, path.Base(rel)); ok {
			return true
		}
	}
	return false
}

// filter decides whether a scanned relative path should be kept, applying
// the engine's own reserved-name and sidecar rules, then the include list (if
// non-empty), then the exclude list.
type filter struct {
	include []string
	exclude []string
}

// newFilter builds a filter from a pair's configured globs, appending the
// default exclude seed.
func newFilter(include, exclude []string) filter {
	combined := make([]string, 0, len(exclude)+len(DefaultExcludeGlobs))
	combined = append(combined, exclude...)
	combined = append(combined, DefaultExcludeGlobs...)
	return filter{include: include, exclude: combined}
}

// accepts reports whether rel should be included in the side map.
func (f filter) accepts(rel string) bool {
	if isReservedPath(rel) {
		return false
	}
	if isSnapshotSidecarName(path.Base(rel)) {
		return false
	}
	if len(f.include) > 0 {
		matched := false
		for _, pattern := range f.include {
			if globMatches(pattern, rel) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	for _, pattern := range f.exclude {
		if globMatches(pattern, rel) {
			return false
		}
	}
	return true
}
