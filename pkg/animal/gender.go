package animal

import (
	"strings"

	"github.com/matzehuels/pedigree/pkg/errors"
)

// Gender is the recorded sex of an animal.
type Gender string

const (
	Female  Gender = "female"
	Male    Gender = "male"
	Unknown Gender = "unknown"
)

// ParseGender accepts any casing of female, male or unknown. An empty string
// parses as Unknown.
func ParseGender(s string) (Gender, error) {
	switch g := Gender(strings.ToLower(strings.TrimSpace(s))); g {
	case Female, Male, Unknown:
		return g, nil
	case "":
		return Unknown, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidInput, "invalid gender %q (must be female, male or unknown)", s)
	}
}

// Valid reports whether g is one of the known genders.
func (g Gender) Valid() bool {
	return g == Female || g == Male || g == Unknown
}

// Glyph returns the display symbol for g.
func (g Gender) Glyph() string {
	switch g {
	case Female:
		return "♀"
	case Male:
		return "♂"
	default:
		return "?"
	}
}
