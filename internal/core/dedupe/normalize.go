package dedupe

import (
	"regexp"
	"strings"
)

// Trailing branch qualifiers common in Korean store names (main branch,
// branch, store, station branch, direct-operated branch). Only a trailing
// match is stripped so mid-name occurrences survive.
var branchSuffixRe = regexp.MustCompile(`\s*(본점|지점|점|역점|직영점)\s*$`)

var whitespaceRe = regexp.MustCompile(`\s+`)

// NormalizeName canonicalizes a place name for dedup matching: trim,
// case-fold, strip a trailing branch suffix, collapse internal whitespace.
// Pure and total; the empty string maps to itself.
func NormalizeName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = branchSuffixRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
