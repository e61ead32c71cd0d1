package updater

import (
	"fmt"
	"strconv"
	"strings"
)

// Semver represents a semantic version. Pre-release and build suffixes are
// dropped when parsing.
type Semver struct {
	Major int
	Minor int
	Patch int
}

// ParseSemver parses a version string like "1.2.3", "v1.2.3" or "1.2.3-rc.1".
func ParseSemver(s string) (Semver, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "v")
	if i := strings.IndexAny(s, "-+"); i >= 0 {
		s = s[:i]
	}
	parts := strings.SplitN(s, ".", 3)
	if len(parts) != 3 {
		return Semver{}, fmt.Errorf("invalid semver: %q", s)
	}

	var v [3]int
	for i, name := range []string{"major", "minor", "patch"} {
		n, err := strconv.Atoi(parts[i])
		if err != nil || n < 0 {
			return Semver{}, fmt.Errorf("invalid %s version %q", name, parts[i])
		}
		v[i] = n
	}

	return Semver{Major: v[0], Minor: v[1], Patch: v[2]}, nil
}

// String returns the version as "major.minor.patch".
func (v Semver) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// LessThan returns true if v < other.
func (v Semver) LessThan(other Semver) bool {
	if v.Major != other.Major {
		return v.Major < other.Major
	}
	if v.Minor != other.Minor {
		return v.Minor < other.Minor
	}
	return v.Patch < other.Patch
}
