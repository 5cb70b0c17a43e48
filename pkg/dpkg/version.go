package dpkg

import (
	"net/url"
	"strconv"
	"strings"
)

// Version is a parsed Debian version, [epoch:]upstream[-revision]
type Version struct {
	Epoch    int
	Upstream string
	Revision string
}

// ParseVersion splits a Debian version string. The epoch ends at the first
// colon and the revision starts after the last hyphen. A missing or
// non-numeric epoch is 0.
func ParseVersion(s string) Version {
	var v Version
	s = strings.TrimSpace(s)

	if i := strings.IndexByte(s, ':'); i >= 0 {
		v.Epoch, _ = strconv.Atoi(s[:i])
		s = s[i+1:]
	}
	if i := strings.LastIndexByte(s, '-'); i >= 0 {
		v.Revision = s[i+1:]
		s = s[:i]
	}
	v.Upstream = s
	return v
}

// Compare returns -1, 0 or 1 as v sorts before, equal to or after o
func (v Version) Compare(o Version) int {
	switch {
	case v.Epoch < o.Epoch:
		return -1
	case v.Epoch > o.Epoch:
		return 1
	}
	if c := compareFragment(v.Upstream, o.Upstream); c != 0 {
		return c
	}
	return compareFragment(v.Revision, o.Revision)
}

// CompareVersions compares two Debian version strings the way dpkg does
func CompareVersions(a, b string) int {
	return ParseVersion(a).Compare(ParseVersion(b))
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// order ranks one character of a non-digit run: '~' before the end of the
// string, the end before letters, letters before everything else
func order(s string, i int) int {
	if i >= len(s) {
		return 0
	}
	c := s[i]
	switch {
	case c == '~':
		return -1
	case isDigit(c):
		return 0
	case isAlpha(c):
		return int(c)
	default:
		return int(c) + 256
	}
}

// compareFragment compares alternating non-digit and digit runs
func compareFragment(a, b string) int {
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		for (i < len(a) && !isDigit(a[i])) || (j < len(b) && !isDigit(b[j])) {
			ac, bc := order(a, i), order(b, j)
			if ac != bc {
				return sign(ac - bc)
			}
			i++
			j++
		}

		for i < len(a) && a[i] == '0' {
			i++
		}
		for j < len(b) && b[j] == '0' {
			j++
		}

		diff := 0
		for i < len(a) && isDigit(a[i]) && j < len(b) && isDigit(b[j]) {
			if diff == 0 {
				diff = int(a[i]) - int(b[j])
			}
			i++
			j++
		}
		if i < len(a) && isDigit(a[i]) {
			return 1
		}
		if j < len(b) && isDigit(b[j]) {
			return -1
		}
		if diff != 0 {
			return sign(diff)
		}
	}
	return 0
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

// archiveVersion decodes the version part of a .deb file name; APT writes
// the epoch colon as %3a
func archiveVersion(s string) string {
	if v, err := url.PathUnescape(s); err == nil {
		return v
	}
	return s
}
