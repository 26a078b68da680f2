package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

func MatchName(name string, matchers []string) bool {
	name = NormalizeName(name)
	for _, m := range matchers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}

var trailingDigitsRegex = regexp.MustCompile(`(\d+)$`)

// ImageRefId extracts the numeric identifier embedded in an image
// reference, e.g. "/images/chara_stand_100701.png" -> "100701".
// Returns "" when the reference carries no trailing digit run.
func ImageRefId(ref string) string {
	base := ref
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	return trailingDigitsRegex.FindString(base)
}

var digitsOnlyRegex = regexp.MustCompile(`^\d+$`)

func IsNumeric(s string) bool {
	return s != "" && digitsOnlyRegex.MatchString(s)
}
