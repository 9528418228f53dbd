package config

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
)

// ParseVersion parses "major.minor.patch". Missing trailing components are
// zero.
func ParseVersion(s string) (common.Version, error) {
	parts := strings.Split(s, ".")
	if s == "" || len(parts) > 3 {
		return 0, errors.Newf("invalid version %q", s)
	}

	var nums [3]uint32
	for i, part := range parts {
		n, err := strconv.ParseUint(part, 10, 16)
		if err != nil {
			return 0, errors.Wrapf(err, "invalid version %q", s)
		}
		nums[i] = uint32(n)
	}
	return common.CreateVersion(nums[0], nums[1], nums[2]), nil
}
