package bisync

// ActionKind identifies what kind of mutation an Action represents.
type ActionKind uint8

const (
	// ActionCopyAToB copies a file from root A to root B.
	ActionCopyAToB ActionKind = iota
	// ActionCopyBToA copies a file from root B to root A.
	ActionCopyBToA
	// ActionDeleteA removes a file from root A.
	ActionDeleteA
	// ActionDeleteB removes a file from root B.
	ActionDeleteB
	// ActionRenameA moves a file within root A from one relative path to
	// another, following a rename detected on root B.
	ActionRenameA
	// ActionRenameB moves a file within root B from one relative path to
	// another, following a rename detected on root A.
	ActionRenameB
)

// String returns the log-line prefix for the action kind, such as
// "copy A->B", "delete B", or "rename A". Each prefix starts with its family
// word ("copy", "delete", or "rename"), which is what lets a reader classify a
// log line at a glance, per the executor's logging contract.
func (k ActionKind) String() string {
	switch k {
	case ActionCopyAToB:
		return "copy A->B"
	case ActionCopyBToA:
		return "copy B->A"
	case ActionDeleteA:
		return "delete A"
	case ActionDeleteB:
		return "delete B"
	case ActionRenameA:
		return "rename A"
	case ActionRenameB:
		return "rename B"
	default:
		return "unknown"
	}
}

// Action is a single planned mutation against one side of a pair. Source is
// empty for deletes. For renames, FromRelPath carries the path the file is
// moving away from and Path carries the path it's moving to; for copies and
// deletes, Path is the only relevant relative path.
type Action struct {
	// Kind identifies the mutation to perform.
	Kind ActionKind
	// Path is the target relative path for the action.
	Path string
	// FromRelPath is the originating relative path, set only for rename
	// actions.
	FromRelPath string
	// SourceAbsolute is the absolute path to read from. Empty for deletes.
	SourceAbsolute string
	// DestinationAbsolute is the absolute path to write to (or remove, for
	// deletes).
	DestinationAbsolute string
	// Size is the byte count used for progress accounting. For deletes it's
	// the size of the file being removed.
	Size int64
}
