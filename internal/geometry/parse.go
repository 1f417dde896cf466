package geometry

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseBox parses the [x,y,w,h] form produced by Box.String.
func ParseBox(value string) (Box, error) {
	trimmed := strings.TrimSpace(value)
	trimmed = strings.TrimPrefix(trimmed, "[")
	trimmed = strings.TrimSuffix(trimmed, "]")
	parts := strings.Split(trimmed, ",")
	if len(parts) != 4 {
		return Box{}, fmt.Errorf("box %q: need four components", value)
	}
	nums := make([]int, 4)
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return Box{}, fmt.Errorf("box %q: bad component %q", value, part)
		}
		nums[i] = n
	}
	return Box{X: nums[0], Y: nums[1], W: nums[2], H: nums[3]}, nil
}
