package bisync

import (
	"crypto/md5"
	"hash"
)

// DigestAlgorithm identifies the content hashing algorithm used to detect
// identical and renamed files. It is kept as a single named constant (rather
// than hard-wired into the scanner) so that a future change of algorithm is a
// single-site change. The algorithm is MD5: the threat model here is
// accidental collision between unrelated files on a personal synchronization
// pair, not an adversary, so cryptographic strength isn't required, and MD5
// keeps the on-disk snapshot format stable.
const DigestAlgorithm = "md5"

// newDigester returns a new hash.Hash implementing DigestAlgorithm.
func newDigester() hash.Hash {
	return md5.New()
}
