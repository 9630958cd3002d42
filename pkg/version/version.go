// Package version holds the program's version identifier.
package version

import "fmt"

const (
	// Major is the current major version.
	Major = 0
	// Minor is the current minor version.
	Minor = 1
	// Patch is the current patch version.
	Patch = 0
)

// String returns the version in "major.minor.patch" form.
func String() string {
	return fmt.Sprintf("%d.%d.%d", Major, Minor, Patch)
}
