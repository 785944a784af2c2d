package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeName lowercases `name` and drops all whitespace, so that
// "Order number" and " order  Number" compare equal.
func NormalizeName(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	name = strings.ToLower(name)
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}
