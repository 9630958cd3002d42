// Package configuration loads the YAML document describing which directory
// pairs bisync should reconcile and with what policies, the way the
// reference project's pkg/configuration/global package loads its own
// top-level YAML configuration.
package configuration

import (
	"fmt"

	"github.com/FilippoHoch/bisync-go/pkg/bisync"
	"github.com/FilippoHoch/bisync-go/pkg/encoding"
)

// PairConfiguration is the YAML representation of one configured pair. It is
// converted to a bisync.Pair via ToInternal before being handed to the
// engine; the YAML shape stays deliberately simple since it's meant to be
// hand-edited.
type PairConfiguration struct {
	Name            string   `yaml:"name"`
	RootA           string   `yaml:"rootA"`
	RootB           string   `yaml:"rootB"`
	Conservative    bool     `yaml:"conservative"`
	UseTrash        bool     `yaml:"useTrash"`
	ConflictPolicy  string   `yaml:"conflictPolicy"`
	Include         []string `yaml:"include"`
	Exclude         []string `yaml:"exclude"`
	Disabled        bool     `yaml:"disabled"`
	IntervalSeconds int      `yaml:"intervalSeconds"`
	SilentHours     []int    `yaml:"silentHours"`
}

// Configuration is the top-level YAML document.
type Configuration struct {
	// RetentionDays is how many days of archive/trash history to keep.
	RetentionDays int `yaml:"retentionDays"`
	// Pairs lists every configured synchronization pair.
	Pairs []PairConfiguration `yaml:"pairs"`
}

// Load reads and parses a YAML configuration file at path.
func Load(path string) (*Configuration, error) {
	configuration := &Configuration{}
	if err := encoding.LoadAndUnmarshalYAML(path, configuration); err != nil {
		return nil, err
	}
	return configuration, nil
}

// ToInternal converts the YAML pairs into the engine's Pair type, validating
// the conflict policy name along the way.
func (c *Configuration) ToInternal() ([]bisync.Pair, error) {
	pairs := make([]bisync.Pair, 0, len(c.Pairs))
	for _, p := range c.Pairs {
		policy, err := parseConflictPolicy(p.ConflictPolicy)
		if err != nil {
			return nil, fmt.Errorf("pair %q: %w", p.Name, err)
		}

		pair := bisync.Pair{
			Name:            p.Name,
			RootA:           p.RootA,
			RootB:           p.RootB,
			Conservative:    p.Conservative,
			UseTrash:        p.UseTrash,
			ConflictPolicy:  policy,
			IncludeGlobs:    p.Include,
			ExcludeGlobs:    p.Exclude,
			Disabled:        p.Disabled,
			IntervalSeconds: p.IntervalSeconds,
		}
		if len(p.SilentHours) == 2 {
			pair.SilentHours = [2]int{p.SilentHours[0], p.SilentHours[1]}
		}
		pairs = append(pairs, pair)
	}
	return pairs, nil
}

// parseConflictPolicy converts a YAML conflict policy name to its internal
// representation, defaulting to newest-wins when unspecified.
func parseConflictPolicy(name string) (bisync.ConflictPolicy, error) {
	switch name {
	case "", "newest-wins":
		return bisync.ConflictPolicyNewestWins, nil
	case "prefer-A":
		return bisync.ConflictPolicyPreferA, nil
	case "prefer-B":
		return bisync.ConflictPolicyPreferB, nil
	default:
		return 0, fmt.Errorf("unknown conflict policy: %s", name)
	}
}
