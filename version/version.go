// Package version models the semantic software version of a cluster node.
package version

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
)

// Version is a major.minor.patch software version.
// The zero value is 0.0.0 and sorts before every released version.
type Version struct {
	Major int
	Minor int
	Patch int
}

// Well-known versions referenced by feature gates.
var (
	V1_0_0  = Version{1, 0, 0}
	V2_11_0 = Version{2, 11, 0}
	V2_12_0 = Version{2, 12, 0}
	V2_13_0 = Version{2, 13, 0}
	V2_14_0 = Version{2, 14, 0}
	V2_16_0 = Version{2, 16, 0}
	V2_17_0 = Version{2, 17, 0}
	V2_19_0 = Version{2, 19, 0}
	V3_0_0  = Version{3, 0, 0}
	V3_2_0  = Version{3, 2, 0}
)

// current is the locally running version. Overridden at link time with
// -ldflags "-X github.com/hupe1980/knnspace/version.current=3.1.0".
var current = "3.1.0"

// Current returns the locally running version.
func Current() Version {
	v, err := Parse(current)
	if err != nil {
		return V3_0_0
	}
	return v
}

// Parse parses "major.minor.patch". A leading "v" and a pre-release or build
// suffix ("-SNAPSHOT", "+abc") are accepted and ignored. Missing minor or patch
// components default to zero.
func Parse(s string) (Version, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(s), "v")
	if i := strings.IndexAny(raw, "-+"); i >= 0 {
		raw = raw[:i]
	}
	if raw == "" {
		return Version{}, fmt.Errorf("invalid version %q", s)
	}

	parts := strings.Split(raw, ".")
	if len(parts) > 3 {
		return Version{}, fmt.Errorf("invalid version %q: too many components", s)
	}

	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("invalid version %q: bad component %q", s, p)
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// MustParse is like Parse but panics on error. Intended for constants in tests.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Compare returns -1, 0 or +1.
func (v Version) Compare(o Version) int {
	if n := cmp.Compare(v.Major, o.Major); n != 0 {
		return n
	}
	if n := cmp.Compare(v.Minor, o.Minor); n != 0 {
		return n
	}
	return cmp.Compare(v.Patch, o.Patch)
}

// OnOrAfter reports whether v >= o.
func (v Version) OnOrAfter(o Version) bool { return v.Compare(o) >= 0 }

// Before reports whether v < o.
func (v Version) Before(o Version) bool { return v.Compare(o) < 0 }

// IsZero reports whether v is the zero version.
func (v Version) IsZero() bool { return v == Version{} }

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// MarshalText implements encoding.TextMarshaler.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Version) UnmarshalText(b []byte) error {
	p, err := Parse(string(b))
	if err != nil {
		return err
	}
	*v = p
	return nil
}

// Min returns the smallest version in vs, or false if vs is empty.
func Min(vs []Version) (Version, bool) {
	if len(vs) == 0 {
		return Version{}, false
	}
	m := vs[0]
	for _, v := range vs[1:] {
		if v.Before(m) {
			m = v
		}
	}
	return m, true
}
