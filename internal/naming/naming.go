// Package naming picks display names that stay unique inside a sibling group
// using the "Name (2)", "Name (3)" numbering scheme.
package naming

import (
	"regexp"
	"strconv"
)

var suffix = regexp.MustCompile(`^(.*) \((\d+)\)$`)

// ResolveUniqueName returns candidate unchanged when no sibling uses it.
// Otherwise it strips a trailing " (n)", treats a sibling named exactly like
// the base as slot 1, and returns "base (m)" for the smallest m >= 2 that no
// sibling occupies.
func ResolveUniqueName(candidate string, siblings []string) string {
	taken := false
	for _, s := range siblings {
		if s == candidate {
			taken = true
			break
		}
	}
	if !taken {
		return candidate
	}

	base := Base(candidate)
	used := map[int]bool{}
	for _, s := range siblings {
		if s == base {
			used[1] = true
			continue
		}
		if b, k, ok := split(s); ok && b == base {
			used[k] = true
		}
	}
	m := 2
	for used[m] {
		m++
	}
	return base + " (" + strconv.Itoa(m) + ")"
}

// Base strips one trailing " (n)" counter from name.
func Base(name string) string {
	if b, _, ok := split(name); ok {
		return b
	}
	return name
}

func split(name string) (string, int, bool) {
	m := suffix.FindStringSubmatch(name)
	if m == nil {
		return "", 0, false
	}
	k, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, false
	}
	return m[1], k, true
}
