package pedigree

import (
	"strconv"
	"strings"

	"github.com/matzehuels/pedigree/pkg/errors"
)

// Generation bounds. Requests outside the range are clamped, not rejected.
const (
	MinGenerations     = 1
	MaxGenerations     = 5
	DefaultGenerations = 3
)

// ClampGenerations limits g to [MinGenerations, MaxGenerations].
func ClampGenerations(g int) int {
	return min(max(g, MinGenerations), MaxGenerations)
}

// ParseGenerations parses a generations query value. An empty value yields
// DefaultGenerations; a non-integer is an INVALID_INPUT error; any integer
// is clamped.
func ParseGenerations(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultGenerations, nil
	}
	g, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "generations must be an integer, got %q", s)
	}
	return ClampGenerations(g), nil
}
