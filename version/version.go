// Package version parses and orders engine client API versions.
package version

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Version is a major.minor.patch triple.
type Version struct {
	Major, Minor, Patch int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// FromPacked decodes the engine's packed client API number, major in the high 16 bits.
func FromPacked(raw uint64) Version {
	return Version{Major: int(raw >> 16), Minor: int(raw & 0xffff)}
}

// Parse reads "2", "2.1" or "v2.1.3". Anything after a '-' or '+' is ignored.
func Parse(s string) (Version, error) {
	core := strings.TrimPrefix(strings.TrimSpace(s), "v")
	if i := strings.IndexAny(core, "-+"); i >= 0 {
		core = core[:i]
	}

	parts := strings.Split(core, ".")
	if len(parts) == 0 || len(parts) > 3 {
		return Version{}, fmt.Errorf("malformed version %q", s)
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("malformed version %q", s)
		}
		nums[i] = n
	}

	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// Compare returns 1 if a > b, -1 if a < b, and 0 if equal.
func Compare(a, b string) (int, error) {
	av, err := Parse(a)
	if err != nil {
		return 0, err
	}

	bv, err := Parse(b)
	if err != nil {
		return 0, err
	}

	return av.Compare(bv), nil
}

func (v Version) Compare(other Version) int {
	for _, pair := range []lo.Tuple2[int, int]{
		{A: v.Major, B: other.Major},
		{A: v.Minor, B: other.Minor},
		{A: v.Patch, B: other.Patch},
	} {
		switch {
		case pair.A > pair.B:
			return 1
		case pair.A < pair.B:
			return -1
		}
	}

	return 0
}
