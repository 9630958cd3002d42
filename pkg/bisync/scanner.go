package bisync

import (
	"encoding/hex"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/FilippoHoch/bisync-go/pkg/logging"
)

// scannerCopyBufferSize is the size of the buffer used while streaming file
// contents through the digest function. 32KB matches the default buffer size
// io.Copy uses internally when none is supplied.
const scannerCopyBufferSize = 32 * 1024

// ScanOptions controls the behavior of Scan.
type ScanOptions struct {
	// Include and Exclude are the glob lists from the owning pair.
	Include []string
	Exclude []string
	// Stop, if non-nil, is polled between directory entries; once it reports
	// true the walk is abandoned and the partial map accumulated so far is
	// returned.
	Stop *atomic.Bool
	// Previous, if non-nil, is the side map from a prior scan of the same
	// root. When an entry's size and modification time are unchanged from
	// Previous, its digest is reused instead of being recomputed, which
	// avoids rehashing unmodified files on every reconciliation pass.
	Previous SideMap
	// Verbose, when true, logs one debug line per file skipped due to a
	// filter, a symlink, or a read failure. Off by default, matching the
	// spec's "not logged unless fatal" policy for scan-time errors.
	Verbose bool
	// Logger receives verbose debug output, if any. May be nil.
	Logger *logging.Logger
}

// Scan walks root depth-first and returns a side map of its filtered
// contents. Directories named .sync_archive or .sync_trash are pruned
// entirely. Symlinks are skipped. The snapshot sidecar files are excluded
// regardless of the filter configuration.
func Scan(root string, options ScanOptions) SideMap {
	result := make(SideMap, defaultInitialCapacity(options.Previous))
	f := newFilter(options.Include, options.Exclude)

	filepath.WalkDir(root, func(absolute string, entry fs.DirEntry, err error) error {
		if options.Stop != nil && options.Stop.Load() {
			return filepath.SkipAll
		}
		if err != nil {
			// The path couldn't be read (permission denied, vanished between
			// readdir and stat, etc). Drop it silently and keep walking.
			return nil
		}
		if absolute == root {
			return nil
		}

		rel, relErr := filepath.Rel(root, absolute)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if entry.IsDir() {
			if entry.Name() == ReservedArchiveDirectory || entry.Name() == ReservedTrashDirectory {
				return filepath.SkipDir
			}
			return nil
		}

		// Symlinks (including broken ones) are skipped entirely.
		if entry.Type()&fs.ModeSymlink != 0 {
			if options.Verbose {
				options.Logger.Debugf("scan: skipping symlink %s", rel)
			}
			return nil
		}
		if !entry.Type().IsRegular() {
			return nil
		}

		if !f.accepts(rel) {
			if options.Verbose {
				options.Logger.Debugf("scan: filtered %s", rel)
			}
			return nil
		}

		descriptor, ok := scanFile(absolute, rel, options.Previous)
		if !ok {
			if options.Verbose {
				options.Logger.Debugf("scan: unable to read %s", rel)
			}
			return nil
		}
		result[rel] = descriptor
		return nil
	})

	return result
}

// defaultInitialCapacity picks a starting map capacity to avoid a handful of
// rounds of doubling on insert, without over-allocating when there's no
// previous scan to size against.
func defaultInitialCapacity(previous SideMap) int {
	if len(previous) > 0 {
		return len(previous)
	}
	return 64
}

// scanFile stats and, if necessary, hashes a single file. It returns ok=false
// only when nothing at all could be obtained about the file (it vanished or
// couldn't be stat'd), in which case the caller drops the entry entirely. A
// file that can be stat'd but not fully read is still included, with an empty
// digest, per the spec's error-handling policy for scan-time failures.
func scanFile(absolute, rel string, previous SideMap) (FileDescriptor, bool) {
	info, err := os.Stat(absolute)
	if err != nil {
		return FileDescriptor{}, false
	}

	descriptor := FileDescriptor{
		RelPath:  rel,
		Absolute: absolute,
		ModTime:  float64(info.ModTime().UnixNano()) / 1e9,
		Size:     info.Size(),
	}

	if prior, ok := previous[rel]; ok && prior.Size == descriptor.Size && modTimesEqual(prior.ModTime, descriptor.ModTime) && prior.Digest != "" {
		descriptor.Digest = prior.Digest
		return descriptor, true
	}

	digest, err := digestFile(absolute)
	if err != nil {
		// Stat succeeded but the read failed (permission change, I/O error
		// mid-read, file removed out from under us). Keep the metadata we
		// have and leave the digest empty; it simply won't participate in
		// rename detection or size/mtime-equal shortcuts that rely on it.
		return descriptor, true
	}
	descriptor.Digest = digest
	return descriptor, true
}

// modTimesEqual compares two real-valued modification times for exact
// equality (used only to decide whether a cached digest may be reused; the
// coarser MTIME_FUZZ tolerance is applied separately during planning).
func modTimesEqual(a, b float64) bool {
	return a == b
}

// digestFile computes the content digest of the file at absolute, streaming
// its contents through the configured hash function in fixed-size chunks.
func digestFile(absolute string) (string, error) {
	file, err := os.Open(absolute)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := newDigester()
	buffer := make([]byte, scannerCopyBufferSize)
	if _, err := io.CopyBuffer(hasher, file, buffer); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
