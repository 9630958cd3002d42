package bisync

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// ConflictPolicy determines which side wins when both roots have modified the
// same relative path since the last reconciliation.
type ConflictPolicy uint8

const (
	// ConflictPolicyNewestWins propagates the side with the more recent
	// modification time, breaking ties (mtimes within MTIMEFuzz) by
	// propagating the larger file.
	ConflictPolicyNewestWins ConflictPolicy = iota
	// ConflictPolicyPreferA always propagates root A over root B.
	ConflictPolicyPreferA
	// ConflictPolicyPreferB always propagates root B over root A.
	ConflictPolicyPreferB
)

// String returns a human-readable name for the policy. The names match the
// conflictPolicy values accepted by the YAML configuration loader.
func (p ConflictPolicy) String() string {
	switch p {
	case ConflictPolicyNewestWins:
		return "newest-wins"
	case ConflictPolicyPreferA:
		return "prefer-A"
	case ConflictPolicyPreferB:
		return "prefer-B"
	default:
		return "unknown"
	}
}

// Pair describes one configured bidirectional synchronization relationship
// between two local directory roots. A Pair is immutable for the duration of
// a single reconciliation run: it is owned by the configuration layer and
// passed by value into the engine.
type Pair struct {
	// Name is an optional human-readable label for the pair, used only in
	// logging; it plays no role in identity or reconciliation.
	Name string
	// RootA is the absolute path to the first root.
	RootA string
	// RootB is the absolute path to the second root.
	RootB string
	// Conservative, when true, means a file present on only one side is
	// always treated as "missing and should be restored" rather than as a
	// possible deletion to propagate. When false, one-sided presence can
	// result in a delete-* action if the snapshot indicates the other side
	// used to have the file.
	Conservative bool
	// UseTrash indicates whether explicit deletions should displace their
	// victim into .sync_trash rather than unlinking it outright. It is only
	// meaningful when Conservative is false, since conservative pairs never
	// emit delete-* actions.
	UseTrash bool
	// ConflictPolicy selects how two-sided disagreements are resolved.
	ConflictPolicy ConflictPolicy
	// IncludeGlobs, if non-empty, restricts the pair to paths matching at
	// least one of these patterns.
	IncludeGlobs []string
	// ExcludeGlobs additionally excludes paths matching any of these
	// patterns, regardless of IncludeGlobs.
	ExcludeGlobs []string
	// Disabled marks a pair as configured but not currently active; the
	// engine facade skips disabled pairs the same way it skips pairs whose
	// roots are missing, but logs a distinguishable message.
	Disabled bool
	// IntervalSeconds and SilentHours are consumed only by the external
	// scheduler; the engine itself never reads them.
	IntervalSeconds int
	SilentHours     [2]int
}

// ID computes the pair's stable identity: the first 10 hex characters of the
// MD5 digest of the lowercased roots joined by "|". Root paths are compared
// case-insensitively and platform separators are not normalized here since
// callers are expected to supply paths already in a canonical form for their
// platform; this keeps the identity stable across repeated runs on the same
// pair regardless of incidental casing differences.
func (p Pair) ID() string {
	joined := strings.ToLower(p.RootA) + "|" + strings.ToLower(p.RootB)
	sum := md5.Sum([]byte(joined))
	return hex.EncodeToString(sum[:])[:10]
}
