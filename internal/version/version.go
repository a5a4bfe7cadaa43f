// Package version compares dotted version strings and validates the
// MAJOR.MINOR.PATCH[-PRERELEASE][+BUILD] format used by release tags.
package version

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var semVerRe = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)(?:-([0-9A-Za-z-]+(?:\.[0-9A-Za-z-]+)*))?(?:\+[0-9A-Za-z-]+)?$`)

type Version struct {
	Major int
	Minor int
	Patch int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0 or 1 when v1 is lower than, equal to or greater than v2.
// Only the numeric segments count: pre-release and build suffixes are ignored,
// missing or unparseable segments are treated as 0.
func Compare(v1, v2 string) int {
	a, b := segments(v1), segments(v2)
	n := max(len(a), len(b))
	for i := 0; i < n; i++ {
		x, y := at(a, i), at(b, i)
		if x < y {
			return -1
		}
		if x > y {
			return 1
		}
	}
	return 0
}

func Greater(v1, v2 string) bool        { return Compare(v1, v2) > 0 }
func GreaterOrEqual(v1, v2 string) bool { return Compare(v1, v2) >= 0 }
func Less(v1, v2 string) bool           { return Compare(v1, v2) < 0 }
func LessOrEqual(v1, v2 string) bool    { return Compare(v1, v2) <= 0 }

func IsValidSemVer(s string) bool {
	return semVerRe.MatchString(s)
}

// Parse returns the numeric core of a valid semantic version.
func Parse(s string) (Version, bool) {
	m := semVerRe.FindStringSubmatch(s)
	if m == nil {
		return Version{}, false
	}
	var v Version
	var err error
	if v.Major, err = strconv.Atoi(m[1]); err != nil {
		return Version{}, false
	}
	if v.Minor, err = strconv.Atoi(m[2]); err != nil {
		return Version{}, false
	}
	if v.Patch, err = strconv.Atoi(m[3]); err != nil {
		return Version{}, false
	}
	return v, true
}

// NextMajor, NextMinor and NextPatch return s unchanged when it is not a valid version.
func NextMajor(s string) string {
	v, ok := Parse(s)
	if !ok {
		return s
	}
	return Version{Major: v.Major + 1}.String()
}

func NextMinor(s string) string {
	v, ok := Parse(s)
	if !ok {
		return s
	}
	return Version{Major: v.Major, Minor: v.Minor + 1}.String()
}

func NextPatch(s string) string {
	v, ok := Parse(s)
	if !ok {
		return s
	}
	return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}.String()
}

func segments(s string) []int {
	if i := strings.IndexAny(s, "-+"); i >= 0 {
		s = s[:i]
	}
	parts := strings.Split(s, ".")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			n = 0
		}
		out[i] = n
	}
	return out
}

func at(xs []int, i int) int {
	if i < len(xs) {
		return xs[i]
	}
	return 0
}
