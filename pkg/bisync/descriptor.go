package bisync

// FileDescriptor is the transient, per-file record produced by a scan and
// consumed by the planner and executor. Relative paths always use forward
// slashes, regardless of host platform; Absolute uses platform-native
// separators since it's passed directly to filesystem calls.
type FileDescriptor struct {
	// RelPath is the POSIX-style path relative to the scanned root.
	RelPath string
	// Absolute is the platform-native absolute path to the file.
	Absolute string
	// ModTime is the file's modification time, in seconds since the Unix
	// epoch, as a real value (sub-second resolution is preserved where the
	// underlying filesystem provides it).
	ModTime float64
	// Size is the file size in bytes.
	Size int64
	// Digest is the hex-encoded content digest, or the empty string if it
	// could not be computed (e.g. the file could not be fully read).
	Digest string
}

// SideMap is a mapping from relative path to file descriptor, as produced by
// scanning one root. The absence of a key means no such file existed under
// that root at scan time, subject to the configured filters.
type SideMap map[string]FileDescriptor

// nameUnion returns the set of relative paths present in either of two side
// maps, used to drive reconciliation over the symmetric union of both sides.
func nameUnion(a, b SideMap) map[string]struct{} {
	union := make(map[string]struct{}, len(a)+len(b))
	for name := range a {
		union[name] = struct{}{}
	}
	for name := range b {
		union[name] = struct{}{}
	}
	return union
}
