// Package version orders version strings carried as attribute values.
//
// Accepted format: RELEASE[-PRERELEASE][+BUILD]
//   - RELEASE: dot-separated identifiers (alphanumeric, no hyphens)
//   - PRERELEASE: dot-separated identifiers (alphanumeric and hyphens)
//   - BUILD: ignored for ordering
//
// Strings that do not parse are ordered lexicographically.
package version

import (
	"cmp"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var pattern = regexp.MustCompile(
	`^([a-zA-Z0-9.]+)(?:-([a-zA-Z0-9.-]+))?(?:\+[a-zA-Z0-9.-]+)?$`,
)

// segment is one dot-separated identifier. Numeric segments sort before
// alphanumeric ones and compare by value.
type segment struct {
	numeric bool
	num     uint64
	text    string
}

func parseSegment(s string) segment {
	if s != "" && strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' }) < 0 {
		if n, err := strconv.ParseUint(s, 10, 64); err == nil {
			return segment{numeric: true, num: n, text: s}
		}
	}
	return segment{text: s}
}

func compareSegment(a, b segment) int {
	if a.numeric != b.numeric {
		if a.numeric {
			return -1
		}
		return 1
	}
	if a.numeric {
		return cmp.Compare(a.num, b.num)
	}
	return strings.Compare(a.text, b.text)
}

// Parsed is a version split into release and prerelease segments.
type Parsed struct {
	Release    []string
	Prerelease []string

	release    []segment
	prerelease []segment
}

// IsPrerelease reports whether the version carries a prerelease part.
func (p Parsed) IsPrerelease() bool {
	return len(p.prerelease) > 0
}

// ParseError reports a version string that does not match the accepted format.
type ParseError struct {
	Version string
}

func (e *ParseError) Error() string {
	return "bad version " + strconv.Quote(e.Version)
}

// Parse splits s into its release and prerelease segments.
func Parse(s string) (Parsed, error) {
	m := pattern.FindStringSubmatch(s)
	if m == nil {
		return Parsed{}, &ParseError{Version: s}
	}
	p := Parsed{Release: strings.Split(m[1], ".")}
	if m[2] != "" {
		p.Prerelease = strings.Split(m[2], ".")
	}
	for _, r := range p.Release {
		p.release = append(p.release, parseSegment(r))
	}
	for _, r := range p.Prerelease {
		p.prerelease = append(p.prerelease, parseSegment(r))
	}
	return p, nil
}

// Compare returns -1, 0 or 1 as a is lower than, equal to, or higher than b.
// A prerelease orders before the same release without one.
func Compare(a, b string) int {
	pa, errA := Parse(a)
	pb, errB := Parse(b)
	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}
	if c := slices.CompareFunc(pa.release, pb.release, compareSegment); c != 0 {
		return c
	}
	if pa.IsPrerelease() != pb.IsPrerelease() {
		if pa.IsPrerelease() {
			return -1
		}
		return 1
	}
	return slices.CompareFunc(pa.prerelease, pb.prerelease, compareSegment)
}

// Sort orders versions from lowest to highest.
func Sort(versions []string) {
	slices.SortStableFunc(versions, Compare)
}

// Max returns the higher of a and b.
func Max(a, b string) string {
	if Compare(a, b) >= 0 {
		return a
	}
	return b
}
