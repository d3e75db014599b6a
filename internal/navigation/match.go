package navigation

import (
	"fmt"
	"strings"
)

// MatchPolicy decides which catalog entry, if any, is active for a path.
type MatchPolicy string

const (
	// MatchExact marks an entry active only when its path equals the current path.
	MatchExact MatchPolicy = "exact"

	// MatchLongestPrefix also activates an entry for its sub-pages
	// (/profile/edit activates /profile). Prefixes only match on segment
	// boundaries, and the longest matching path wins.
	MatchLongestPrefix MatchPolicy = "prefix"
)

// ParseMatchPolicy maps a config value onto a policy. Empty means MatchExact.
func ParseMatchPolicy(s string) (MatchPolicy, error) {
	switch MatchPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", MatchExact:
		return MatchExact, nil
	case MatchLongestPrefix:
		return MatchLongestPrefix, nil
	default:
		return "", fmt.Errorf("unknown navigation match policy %q", s)
	}
}

func (p MatchPolicy) match(c *Catalog, currentPath string) int {
	if p == MatchLongestPrefix {
		return matchLongestPrefix(c, currentPath)
	}
	if i, ok := c.byPath[currentPath]; ok {
		return i
	}
	return -1
}

func matchLongestPrefix(c *Catalog, currentPath string) int {
	best, bestLen := -1, -1
	for i, e := range c.entries {
		if !pathWithin(currentPath, e.Path) {
			continue
		}
		// strict comparison keeps the earliest entry on equal length
		if len(e.Path) > bestLen {
			best, bestLen = i, len(e.Path)
		}
	}
	return best
}

// pathWithin reports whether p is base itself or lies under it.
func pathWithin(p, base string) bool {
	if p == base {
		return true
	}
	prefix := strings.TrimSuffix(base, "/") + "/"
	return strings.HasPrefix(p, prefix)
}
