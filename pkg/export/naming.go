package export

import (
	"strings"
	"time"
	"unicode"

	"github.com/matzehuels/pedigree/pkg/pedigree"
)

// PlaceholderName stands in for a root animal without a name.
const PlaceholderName = "animal"

const stampLayout = "20060102_1504"

// FileName returns pedigree_<name>_<YYYYMMDD_HHMM>.<ext> for the root of
// tree, stamped with at in its own location.
func FileName(tree *pedigree.Node, ext string, at time.Time) string {
	name := ""
	if tree != nil {
		name = tree.Name
	}
	return "pedigree_" + sanitize(name) + "_" + at.Format(stampLayout) + "." + ext
}

// sanitize collapses whitespace runs to a single underscore and replaces
// characters that are unsafe in file names or object keys.
func sanitize(name string) string {
	joined := strings.Join(strings.Fields(name), "_")
	if joined == "" {
		return PlaceholderName
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, joined)
}
