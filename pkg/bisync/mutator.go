package bisync

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/FilippoHoch/bisync-go/pkg/logging"
)

// timestampLayout is the format used for archive/trash bucket directory
// names: strict YYYYMMDD_HHMMSS in local time.
const timestampLayout = "20060102_150405"

// newTimestamp resolves a new bucket timestamp. It's called once per action
// by the executor (not once per displaced file) so that independent
// displacements performed while executing a single action land in the same
// archive bucket.
func newTimestamp() string {
	return time.Now().Format(timestampLayout)
}

// Mutator performs every mutating filesystem operation the engine issues:
// copy, move, and remove, each pre-displacing any victim into the affected
// root's archive or trash subtree, plus retention pruning of those subtrees.
// It is the only component that touches destination files, which is what
// makes invariant I1 enforceable in one place: nothing is overwritten without
// first surviving under .sync_archive, and a removal with useTrash set first
// moves the file under .sync_trash. A removal without useTrash, or one whose
// trash move fails, unlinks the file permanently.
type Mutator struct {
	// Logger receives warnings, e.g. when a trash move falls back to a
	// permanent delete. May be nil.
	Logger *logging.Logger
}

// Copy copies src to dst, first archiving dst under dstRoot if it already
// exists, then performing a metadata-preserving copy. ts is the bucket
// timestamp resolved once for the whole action by the caller.
func (m Mutator) Copy(ts, src, dst, dstRoot, rel string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("unable to create destination directory: %w", err)
	}
	if err := m.archiveIfExists(ts, dst, dstRoot, rel); err != nil {
		return err
	}
	return copyFilePreservingMetadata(src, dst)
}

// Move performs a rename from src to dst within a single root, archiving any
// existing dst first.
func (m Mutator) Move(ts, src, dst, root, rel string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("unable to create destination directory: %w", err)
	}
	if err := m.archiveIfExists(ts, dst, root, rel); err != nil {
		return err
	}
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("unable to rename file: %w", err)
	}
	return nil
}

// Remove deletes the file at root/rel. If useTrash is set, the file is first
// moved into root's .sync_trash bucket; if that move fails for any reason,
// Remove falls back to a permanent unlink and logs a warning.
func (m Mutator) Remove(ts, rel, root string, useTrash bool) error {
	absolute := filepath.Join(root, filepath.FromSlash(rel))

	if useTrash {
		if err := m.displace(ts, absolute, root, rel, ReservedTrashDirectory); err == nil {
			return nil
		} else {
			m.Logger.Warnf("unable to move %s to trash, deleting permanently: %v", rel, err)
		}
	}

	if err := os.Remove(absolute); err != nil {
		return fmt.Errorf("unable to remove file: %w", err)
	}
	return nil
}

// archiveIfExists displaces the file currently at absolute into root's
// archive bucket, if there is one. A missing destination is not an error.
func (m Mutator) archiveIfExists(ts, absolute, root, rel string) error {
	if _, err := os.Lstat(absolute); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("unable to stat existing destination: %w", err)
	}
	return m.displace(ts, absolute, root, rel, ReservedArchiveDirectory)
}

// displace moves the file at absolute into root/<reserved>/<ts>/rel,
// creating intermediate directories as needed.
func (m Mutator) displace(ts, absolute, root, rel, reserved string) error {
	destination := filepath.Join(root, reserved, ts, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(destination), 0755); err != nil {
		return fmt.Errorf("unable to create %s directory: %w", reserved, err)
	}
	if err := os.Rename(absolute, destination); err != nil {
		return fmt.Errorf("unable to move file into %s: %w", reserved, err)
	}
	return nil
}

// copyFilePreservingMetadata copies src to dst and then copies src's
// modification time onto dst.
func copyFilePreservingMetadata(src, dst string) error {
	source, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("unable to open source file: %w", err)
	}
	defer source.Close()

	info, err := source.Stat()
	if err != nil {
		return fmt.Errorf("unable to stat source file: %w", err)
	}

	destination, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("unable to create destination file: %w", err)
	}

	if _, err := io.Copy(destination, source); err != nil {
		destination.Close()
		return fmt.Errorf("unable to copy file contents: %w", err)
	}
	if err := destination.Close(); err != nil {
		return fmt.Errorf("unable to close destination file: %w", err)
	}

	modTime := info.ModTime()
	if err := os.Chtimes(dst, modTime, modTime); err != nil {
		return fmt.Errorf("unable to preserve modification time: %w", err)
	}
	return nil
}

// CleanupRetention prunes bucket directories under root/which that are older
// than days. A bucket's age is taken from parsing its name as a
// YYYYMMDD_HHMMSS timestamp; if the name doesn't parse, the directory's own
// modification time is used instead. Errors while pruning are swallowed: a
// failed prune just means the bucket is retried on the next run.
func (m Mutator) CleanupRetention(root, which string, days int) {
	if days <= 0 {
		return
	}

	dir := filepath.Join(root, which)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	cutoff := time.Now().AddDate(0, 0, -days)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		age := bucketAge(entry)
		if age.Before(cutoff) {
			_ = os.RemoveAll(filepath.Join(dir, entry.Name()))
		}
	}
}

// bucketAge determines the effective timestamp of a retention bucket.
func bucketAge(entry os.DirEntry) time.Time {
	if parsed, err := time.ParseInLocation(timestampLayout, entry.Name(), time.Local); err == nil {
		return parsed
	}
	if info, err := entry.Info(); err == nil {
		return info.ModTime()
	}
	return time.Now()
}
