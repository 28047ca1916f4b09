package environment

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// parseVersion reads a manifest version. "1.2.3" and "v1.2.3" are equivalent.
func parseVersion(raw string) (*semver.Version, error) {
	v, err := semver.NewVersion(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing version %q: %w", raw, err)
	}
	return v, nil
}

// IsNewer reports whether candidate is a later release than current.
func IsNewer(candidate, current string) (bool, error) {
	c, err := parseVersion(candidate)
	if err != nil {
		return false, err
	}
	cur, err := parseVersion(current)
	if err != nil {
		return false, err
	}
	return c.GreaterThan(cur), nil
}
